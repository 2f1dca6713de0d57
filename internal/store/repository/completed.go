package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/wicket/internal/match"
	"github.com/fortuna/wicket/internal/store"
)

// Enricher resolves player ids to display names. Lookups are best effort; a
// failed lookup never fails the read that triggered it.
type Enricher interface {
	ResolveName(ctx context.Context, playerID string) (string, error)
}

// CompletedRepository handles completed-match persistence.
type CompletedRepository struct {
	db       *store.Database
	enricher Enricher
}

// NewCompletedRepository creates a new completed-match repository. The
// enricher may be nil, in which case reads skip name enrichment.
func NewCompletedRepository(db *store.Database, enricher Enricher) *CompletedRepository {
	return &CompletedRepository{db: db, enricher: enricher}
}

const completedColumns = `match_id, name, format, venue, start_time, end_time,
	home_team, away_team, final_score, innings, batting, bowling, result, ingested_at`

// Upsert validates and persists a completed record. Records failing
// validation are rejected, not coerced.
func (r *CompletedRepository) Upsert(ctx context.Context, rec *match.CompletedMatchRecord) (*match.CompletedMatchRecord, error) {
	if err := match.ValidateCompleted(rec); err != nil {
		return nil, err
	}
	if err := r.upsert(ctx, r.db.DB(), rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// UpsertInTx persists a completed record inside a caller-owned transaction.
// Used by the transition engine so the completed write and the live delete
// commit or abort together.
func (r *CompletedRepository) UpsertInTx(ctx context.Context, tx *sql.Tx, rec *match.CompletedMatchRecord) error {
	if err := match.ValidateCompleted(rec); err != nil {
		return err
	}
	return r.upsert(ctx, tx, rec)
}

// BeginTx opens a transaction on the completed store.
func (r *CompletedRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.DB().BeginTx(ctx, nil)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (r *CompletedRepository) upsert(ctx context.Context, ex execer, rec *match.CompletedMatchRecord) error {
	homeTeam, err := json.Marshal(rec.HomeTeam)
	if err != nil {
		return fmt.Errorf("encoding home team: %w", err)
	}
	awayTeam, err := json.Marshal(rec.AwayTeam)
	if err != nil {
		return fmt.Errorf("encoding away team: %w", err)
	}
	result, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	finalScore, err := marshalNullable(rec.FinalScore)
	if err != nil {
		return fmt.Errorf("encoding final score: %w", err)
	}
	innings, err := marshalNullable(rec.Innings)
	if err != nil {
		return fmt.Errorf("encoding innings: %w", err)
	}
	batting, err := marshalNullable(rec.Batting)
	if err != nil {
		return fmt.Errorf("encoding batting: %w", err)
	}
	bowling, err := marshalNullable(rec.Bowling)
	if err != nil {
		return fmt.Errorf("encoding bowling: %w", err)
	}

	query := `
		INSERT INTO completed_matches (` + completedColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (match_id) DO UPDATE SET
			name = EXCLUDED.name,
			format = EXCLUDED.format,
			venue = EXCLUDED.venue,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			home_team = EXCLUDED.home_team,
			away_team = EXCLUDED.away_team,
			final_score = EXCLUDED.final_score,
			innings = EXCLUDED.innings,
			batting = EXCLUDED.batting,
			bowling = EXCLUDED.bowling,
			result = EXCLUDED.result,
			ingested_at = EXCLUDED.ingested_at,
			updated_at = NOW()
	`

	_, err = ex.ExecContext(ctx, query,
		rec.MatchID, nullString(rec.Name), string(rec.Format), nullString(rec.Venue),
		nullTime(rec.StartTime), rec.EndTime,
		homeTeam, awayTeam, finalScore, innings, batting, bowling, result, rec.IngestedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting completed match %s: %w", rec.MatchID, err)
	}
	return nil
}

// GetByID finds a completed match. Returns nil when none exists. Batting and
// bowling entries carrying a player id but no resolved name are enriched
// in-memory for the caller; the enriched record is written back
// opportunistically.
func (r *CompletedRepository) GetByID(ctx context.Context, matchID string) (*match.CompletedMatchRecord, error) {
	query := `SELECT ` + completedColumns + ` FROM completed_matches WHERE match_id = $1`

	rec, err := scanCompleted(r.db.DB().QueryRowContext(ctx, query, matchID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying completed match %s: %w", matchID, err)
	}

	r.enrichNames(ctx, rec)
	return rec, nil
}

// ListFilter narrows and pages the completed listing.
type ListFilter struct {
	Format string
	Page   int
	Limit  int
}

// List returns a page of completed matches, newest first, plus the total
// count for the filter. Listed records go through the same name enrichment as
// GetByID; the resolver caches lookups, so a page costs at most one fetch per
// still-unresolved player id.
func (r *CompletedRepository) List(ctx context.Context, filter ListFilter) ([]*match.CompletedMatchRecord, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	where := ""
	args := []interface{}{}
	if filter.Format != "" {
		where = "WHERE format = $1"
		args = append(args, filter.Format)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM completed_matches " + where
	if err := r.db.DB().QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting completed matches: %w", err)
	}

	query := fmt.Sprintf(`SELECT `+completedColumns+`
		FROM completed_matches %s
		ORDER BY end_time DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, offset)

	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying completed matches: %w", err)
	}
	defer rows.Close()

	var records []*match.CompletedMatchRecord
	for rows.Next() {
		rec, err := scanCompleted(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning completed match: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, rec := range records {
		r.enrichNames(ctx, rec)
	}

	return records, total, nil
}

// enrichNames patches missing player names for the caller and persists the
// enriched record in the background. Failures only cost the enrichment.
func (r *CompletedRepository) enrichNames(ctx context.Context, rec *match.CompletedMatchRecord) {
	if r.enricher == nil {
		return
	}
	if !patchNames(ctx, r.enricher, rec) {
		return
	}

	// Write-back is fire and forget; the caller already has the patched copy.
	snapshot := *rec
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.upsert(ctx, r.db.DB(), &snapshot); err != nil {
			log.Printf("⚠️  enrichment write-back failed for %s: %v", snapshot.MatchID, err)
		}
	}()
}

// patchNames fills empty player names that carry an id, in place, and reports
// whether anything changed. Lookup failures leave the entry as it was.
func patchNames(ctx context.Context, enricher Enricher, rec *match.CompletedMatchRecord) bool {
	patched := false
	for i := range rec.Batting {
		e := &rec.Batting[i]
		if e.PlayerID == "" || e.PlayerName != "" {
			continue
		}
		name, err := enricher.ResolveName(ctx, e.PlayerID)
		if err != nil || name == "" {
			continue
		}
		e.PlayerName = name
		patched = true
	}
	for i := range rec.Bowling {
		e := &rec.Bowling[i]
		if e.PlayerID == "" || e.PlayerName != "" {
			continue
		}
		name, err := enricher.ResolveName(ctx, e.PlayerID)
		if err != nil || name == "" {
			continue
		}
		e.PlayerName = name
		patched = true
	}
	return patched
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCompleted(row rowScanner) (*match.CompletedMatchRecord, error) {
	var (
		rec        match.CompletedMatchRecord
		name       sql.NullString
		venue      sql.NullString
		startTime  sql.NullTime
		format     string
		homeTeam   []byte
		awayTeam   []byte
		finalScore []byte
		innings    []byte
		batting    []byte
		bowling    []byte
		result     []byte
	)

	err := row.Scan(
		&rec.MatchID, &name, &format, &venue, &startTime, &rec.EndTime,
		&homeTeam, &awayTeam, &finalScore, &innings, &batting, &bowling,
		&result, &rec.IngestedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Name = name.String
	rec.Venue = venue.String
	rec.Format = match.Format(format)
	if startTime.Valid {
		rec.StartTime = startTime.Time
	}

	if err := json.Unmarshal(homeTeam, &rec.HomeTeam); err != nil {
		return nil, fmt.Errorf("decoding home team: %w", err)
	}
	if err := json.Unmarshal(awayTeam, &rec.AwayTeam); err != nil {
		return nil, fmt.Errorf("decoding away team: %w", err)
	}
	if err := json.Unmarshal(result, &rec.Result); err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	if err := unmarshalNullable(finalScore, &rec.FinalScore); err != nil {
		return nil, fmt.Errorf("decoding final score: %w", err)
	}
	if err := unmarshalNullable(innings, &rec.Innings); err != nil {
		return nil, fmt.Errorf("decoding innings: %w", err)
	}
	if err := unmarshalNullable(batting, &rec.Batting); err != nil {
		return nil, fmt.Errorf("decoding batting: %w", err)
	}
	if err := unmarshalNullable(bowling, &rec.Bowling); err != nil {
		return nil, fmt.Errorf("decoding bowling: %w", err)
	}

	return &rec, nil
}

func marshalNullable(v interface{}) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case *match.Score:
		if t == nil {
			return nil, nil
		}
	case []match.InningsScore:
		if len(t) == 0 {
			return nil, nil
		}
	case []match.BattingEntry:
		if len(t) == 0 {
			return nil, nil
		}
	case []match.BowlingEntry:
		if len(t) == 0 {
			return nil, nil
		}
	}
	return json.Marshal(v)
}

func unmarshalNullable(data []byte, out interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
