package match

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidID means the match id is empty or contains characters outside
	// the allow-listed set.
	ErrInvalidID = errors.New("invalid match id")

	// ErrIncompleteRecord means a completed record is missing a mandatory field.
	ErrIncompleteRecord = errors.New("incomplete completed-match record")
)

// ValidID reports whether id is non-empty and contains only allow-listed
// characters. Provider ids are opaque but always alphanumeric with dashes and
// underscores; anything else is treated as a corrupt payload.
func ValidID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}

// ValidateCompleted checks a record before it may be persisted to the
// completed store. Records failing validation are rejected, never coerced.
func ValidateCompleted(rec *CompletedMatchRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: nil record", ErrIncompleteRecord)
	}
	if !ValidID(rec.MatchID) {
		return fmt.Errorf("%w: %q", ErrInvalidID, rec.MatchID)
	}
	if rec.Result == nil {
		return fmt.Errorf("%w: missing result for %s", ErrIncompleteRecord, rec.MatchID)
	}
	switch rec.Result.Winner() {
	case WinnerHome, WinnerAway, WinnerDraw:
	default:
		return fmt.Errorf("%w: malformed result winner %q for %s", ErrIncompleteRecord, rec.Result.Winner(), rec.MatchID)
	}
	if rec.EndTime.IsZero() {
		return fmt.Errorf("%w: missing end time for %s", ErrIncompleteRecord, rec.MatchID)
	}
	if rec.HomeTeam.ID == "" || rec.AwayTeam.ID == "" {
		return fmt.Errorf("%w: unresolved teams for %s", ErrIncompleteRecord, rec.MatchID)
	}
	if rec.HomeTeam.ID == rec.AwayTeam.ID {
		return fmt.Errorf("%w: home and away resolve to the same team for %s", ErrIncompleteRecord, rec.MatchID)
	}
	return nil
}

// ValidateLive checks the minimum shape required to hold a record in the live
// store. Live records must never carry a result; results only exist in the
// completed store.
func ValidateLive(rec *LiveMatchRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: nil record", ErrIncompleteRecord)
	}
	if !ValidID(rec.MatchID) {
		return fmt.Errorf("%w: %q", ErrInvalidID, rec.MatchID)
	}
	if rec.HomeTeam.ID == "" && rec.AwayTeam.ID == "" {
		return fmt.Errorf("%w: no resolvable teams for %s", ErrIncompleteRecord, rec.MatchID)
	}
	return nil
}
