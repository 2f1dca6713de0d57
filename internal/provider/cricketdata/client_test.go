package cricketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", 6000)
}

func TestCurrentMatches(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/currentMatches", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Write([]byte(`{
			"status": "success",
			"data": [
				{"id": "m-1", "name": "India vs Australia", "matchType": "t20", "status": "Live"},
				{"id": "m-2", "name": "England vs Pakistan", "matchType": "odi", "status": "Live"}
			]
		}`))
	})

	matches, err := client.CurrentMatches(context.Background())
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "m-1", matches[0].ID)
	assert.Equal(t, "t20", matches[0].MatchType)
}

func TestMatchInfo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/matchInfo", r.URL.Path)
		assert.Equal(t, "m-9", r.URL.Query().Get("id"))
		w.Write([]byte(`{
			"status": "success",
			"data": {
				"id": "m-9",
				"matchType": "t20",
				"status": "India won by 45 runs",
				"matchWinner": "ind",
				"teamInfo": [{"id": "ind", "name": "India"}, {"id": "aus", "name": "Australia"}],
				"score": [{"r": 183, "w": 7, "o": 20, "inning": "India Inning 1", "team": "ind"}]
			}
		}`))
	})

	m, err := client.MatchInfo(context.Background(), "m-9")
	require.NoError(t, err)
	assert.Equal(t, "ind", m.WinnerRef)
	require.Len(t, m.Score, 1)
	assert.Equal(t, 183, *m.Score[0].Runs)
}

func TestMatchInfoEmptyPayloadIsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success", "data": {}}`))
	})

	_, err := client.MatchInfo(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEndpointUnavailable(t *testing.T) {
	for _, code := range []int{http.StatusForbidden, http.StatusNotFound} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		})

		_, err := client.CurrentMatches(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEndpointUnavailable, "status %d", code)
		assert.False(t, IsTransient(err), "status %d must not be retried", code)
	}
}

func TestServerErrorIsTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.CurrentMatches(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestRateLimitedResponseIsTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.CurrentMatches(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestHTMLBodyRejected(t *testing.T) {
	// Some outages serve an HTML error page with a 200.
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>Service temporarily unavailable</body></html>`))
	})

	_, err := client.CurrentMatches(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTML body")
	assert.True(t, IsTransient(err))
}

func TestEnvelopeFailureStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "failure", "reason": "api key exhausted"}`))
	})

	_, err := client.CurrentMatches(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key exhausted")
}

func TestPlayerInfo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/playerInfo", r.URL.Path)
		w.Write([]byte(`{"status": "success", "data": {"id": "p-1", "name": "Virat Kohli"}}`))
	})

	p, err := client.PlayerInfo(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Virat Kohli", p.Name)
}
