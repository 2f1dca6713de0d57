package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/wicket/internal/livestore"
	"github.com/fortuna/wicket/internal/match"
)

func newTestLiveStore(t *testing.T) *livestore.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return livestore.NewWithClient(client)
}

func seedLive(t *testing.T, store *livestore.Store, id string) {
	t.Helper()
	_, err := store.Upsert(context.Background(), &match.LiveMatchRecord{
		MatchID:  id,
		Format:   match.FormatT20,
		HomeTeam: match.Team{ID: "ind", Name: "India"},
		AwayTeam: match.Team{ID: "aus", Name: "Australia"},
		Status:   "Live",
	})
	require.NoError(t, err)
}

func TestGetLiveMatches(t *testing.T) {
	live := newTestLiveStore(t)
	seedLive(t, live, "m-1")
	seedLive(t, live, "m-2")
	h := NewHandler(nil, live, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matches/live", nil)
	rr := httptest.NewRecorder()
	h.GetLiveMatches(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var records []match.LiveMatchRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &records))
	assert.Len(t, records, 2)
}

func TestGetLiveMatchesEmptySetIsArray(t *testing.T) {
	h := NewHandler(nil, newTestLiveStore(t), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matches/live", nil)
	rr := httptest.NewRecorder()
	h.GetLiveMatches(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	// Empty set must serialize as [], never null
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestGetMatchLiveHit(t *testing.T) {
	live := newTestLiveStore(t)
	seedLive(t, live, "m-3")
	h := NewHandler(nil, live, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matches/m-3", nil)
	req = mux.SetURLVars(req, map[string]string{"matchID": "m-3"})
	rr := httptest.NewRecorder()
	h.GetMatch(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Stage string                `json:"stage"`
		Match match.LiveMatchRecord `json:"match"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "live", body.Stage)
	assert.Equal(t, "m-3", body.Match.MatchID)
}

func TestGetMatchRejectsBadID(t *testing.T) {
	h := NewHandler(nil, newTestLiveStore(t), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matches/bad%20id", nil)
	req = mux.SetURLVars(req, map[string]string{"matchID": "bad id"})
	rr := httptest.NewRecorder()
	h.GetMatch(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Invalid match ID", body["error"])
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?page=3&limit=abc&zero=0", nil)
	assert.Equal(t, 3, queryInt(req, "page", 1))
	assert.Equal(t, 20, queryInt(req, "limit", 20))
	assert.Equal(t, 1, queryInt(req, "zero", 1))
	assert.Equal(t, 5, queryInt(req, "missing", 5))
}
