package cricketdata

import (
	"encoding/json"
	"strings"
)

// PlayerRef is a player identity pulled out of whichever nested shape the
// provider used on this fetch. Name may be empty; enrichment fills it later.
type PlayerRef struct {
	ID   string
	Name string
}

// playerExtractor tries one known payload shape. Extractors are tried in
// order, stopping at the first success.
type playerExtractor func(raw json.RawMessage) (PlayerRef, bool)

var playerExtractors = []playerExtractor{
	extractPlayerString,
	extractPlayerFlat,
	extractPlayerNested,
	extractPlayerFullName,
	extractPlayerIDOnly,
}

// ExtractPlayer resolves a player reference from a raw batsman/bowler field.
// Returns ok=false when no shape matches; callers must treat that as "no
// player", never substitute a placeholder.
func ExtractPlayer(raw json.RawMessage) (PlayerRef, bool) {
	if len(raw) == 0 {
		return PlayerRef{}, false
	}
	for _, extract := range playerExtractors {
		if ref, ok := extract(raw); ok {
			return ref, true
		}
	}
	return PlayerRef{}, false
}

// Shape: "V Kohli" — a bare name with no id.
func extractPlayerString(raw json.RawMessage) (PlayerRef, bool) {
	var name string
	if err := json.Unmarshal(raw, &name); err != nil || name == "" {
		return PlayerRef{}, false
	}
	return PlayerRef{Name: name}, true
}

// Shape: {"id": "p123", "name": "V Kohli"}. The name is required here: an
// object without one may still carry its name under another key, so the later
// shapes must get their turn. Id-only objects are handled last.
func extractPlayerFlat(raw json.RawMessage) (PlayerRef, bool) {
	var v struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &v); err != nil || v.Name == "" {
		return PlayerRef{}, false
	}
	return PlayerRef{ID: v.ID, Name: v.Name}, true
}

// Shape: {"player": {"id": "p123", "name": "V Kohli"}}
func extractPlayerNested(raw json.RawMessage) (PlayerRef, bool) {
	var v struct {
		Player struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"player"`
	}
	if err := json.Unmarshal(raw, &v); err != nil || (v.Player.ID == "" && v.Player.Name == "") {
		return PlayerRef{}, false
	}
	return PlayerRef{ID: v.Player.ID, Name: v.Player.Name}, true
}

// Shape: {"id": "p123", "fullName": "Virat Kohli"}
func extractPlayerFullName(raw json.RawMessage) (PlayerRef, bool) {
	var v struct {
		ID       string `json:"id"`
		FullName string `json:"fullName"`
	}
	if err := json.Unmarshal(raw, &v); err != nil || v.FullName == "" {
		return PlayerRef{}, false
	}
	return PlayerRef{ID: v.ID, Name: v.FullName}, true
}

// Shape: {"id": "p123"} with no name under any known key. The id alone is
// still worth keeping; enrichment resolves the name later.
func extractPlayerIDOnly(raw json.RawMessage) (PlayerRef, bool) {
	var v struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &v); err != nil || v.ID == "" {
		return PlayerRef{}, false
	}
	return PlayerRef{ID: v.ID}, true
}

// TeamRefForEntry resolves which team a score entry belongs to. The explicit
// team field wins; otherwise the innings title is matched against the known
// team names ("India Inning 1" → India's ref).
func TeamRefForEntry(entry ScoreEntry, teams []TeamInfo) string {
	if entry.TeamRef != "" {
		return entry.TeamRef
	}
	title := strings.ToLower(entry.Inning)
	for _, t := range teams {
		if t.Name != "" && strings.HasPrefix(title, strings.ToLower(t.Name)) {
			return t.Ref()
		}
		if t.ShortName != "" && strings.HasPrefix(title, strings.ToLower(t.ShortName)) {
			return t.Ref()
		}
	}
	return ""
}
