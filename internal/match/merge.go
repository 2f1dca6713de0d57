package match

// MergeLive overlays an incoming partial record on top of an existing one,
// field by field. A field the incoming payload did not carry keeps its stored
// value: a partial fetch must not erase data an earlier poll populated.
// Bookkeeping fields (UpdateCount, CreatedAt, ExpiresAt) are owned by the live
// store and left untouched here.
func MergeLive(existing, incoming *LiveMatchRecord) *LiveMatchRecord {
	if existing == nil {
		return incoming
	}
	if incoming == nil {
		return existing
	}

	merged := *existing

	if incoming.Name != "" {
		merged.Name = incoming.Name
	}
	if incoming.Format != "" {
		merged.Format = incoming.Format
	}
	if incoming.Venue != "" {
		merged.Venue = incoming.Venue
	}
	if !incoming.StartTime.IsZero() {
		merged.StartTime = incoming.StartTime
	}
	if incoming.Status != "" {
		merged.Status = incoming.Status
	}
	merged.HomeTeam = mergeTeam(existing.HomeTeam, incoming.HomeTeam)
	merged.AwayTeam = mergeTeam(existing.AwayTeam, incoming.AwayTeam)

	if incoming.Score != nil {
		merged.Score = mergeScore(existing.Score, incoming.Score)
	}
	if len(incoming.Innings) > 0 {
		merged.Innings = incoming.Innings
	}
	if len(incoming.Batting) > 0 {
		merged.Batting = incoming.Batting
	}
	if len(incoming.Bowling) > 0 {
		merged.Bowling = incoming.Bowling
	}
	if incoming.Partnership != nil {
		merged.Partnership = incoming.Partnership
	}
	if incoming.LastWicket != nil {
		merged.LastWicket = incoming.LastWicket
	}

	return &merged
}

func mergeTeam(existing, incoming Team) Team {
	if incoming.ID == "" {
		return existing
	}
	merged := incoming
	if merged.Name == "" {
		merged.Name = existing.Name
	}
	if merged.ShortName == "" {
		merged.ShortName = existing.ShortName
	}
	if merged.ImageURL == "" {
		merged.ImageURL = existing.ImageURL
	}
	return merged
}

func mergeScore(existing, incoming *Score) *Score {
	if existing == nil {
		return incoming
	}
	merged := *incoming
	if merged.Runs == nil {
		merged.Runs = existing.Runs
	}
	if merged.Wickets == nil {
		merged.Wickets = existing.Wickets
	}
	if merged.Overs == nil {
		merged.Overs = existing.Overs
	}
	if merged.Balls == nil {
		merged.Balls = existing.Balls
	}
	return &merged
}
