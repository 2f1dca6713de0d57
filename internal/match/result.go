package match

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Winner is the provider-asserted outcome side.
type Winner string

const (
	WinnerHome Winner = "home"
	WinnerAway Winner = "away"
	WinnerDraw Winner = "draw"
)

// MarginType qualifies the victory margin.
type MarginType string

const (
	MarginRuns    MarginType = "runs"
	MarginWickets MarginType = "wickets"
)

// ResultSource records where a result came from. Only the two provider-backed
// values exist; there is deliberately no constructor for a locally computed
// result.
type ResultSource string

const (
	SourceProvider   ResultSource = "provider"
	SourceParsedNote ResultSource = "parsed-from-provider-note"
)

var errUnknownResultSource = errors.New("unknown result data source")

// Result is a provider-asserted match outcome. The source field is unexported
// so a Result can only be built through FromProvider or FromParsedNote.
type Result struct {
	winner     Winner
	winnerName string
	margin     *int
	marginType MarginType
	resultText string
	dataSource ResultSource
}

// FromProvider builds a Result from the provider's structured result object.
func FromProvider(winner Winner, winnerName string, margin *int, marginType MarginType, text string) *Result {
	return &Result{
		winner:     winner,
		winnerName: winnerName,
		margin:     margin,
		marginType: marginType,
		resultText: text,
		dataSource: SourceProvider,
	}
}

// FromParsedNote builds a Result from a free-text result note that has been
// cross-checked against a provider-asserted winner reference.
func FromParsedNote(winner Winner, winnerName string, margin *int, marginType MarginType, note string) *Result {
	return &Result{
		winner:     winner,
		winnerName: winnerName,
		margin:     margin,
		marginType: marginType,
		resultText: note,
		dataSource: SourceParsedNote,
	}
}

func (r *Result) Winner() Winner         { return r.winner }
func (r *Result) WinnerName() string     { return r.winnerName }
func (r *Result) Margin() *int           { return r.margin }
func (r *Result) MarginType() MarginType { return r.marginType }
func (r *Result) Text() string           { return r.resultText }
func (r *Result) DataSource() ResultSource { return r.dataSource }

type resultJSON struct {
	Winner     Winner       `json:"winner"`
	WinnerName string       `json:"winner_name,omitempty"`
	Margin     *int         `json:"margin,omitempty"`
	MarginType MarginType   `json:"margin_type,omitempty"`
	ResultText string       `json:"result_text,omitempty"`
	DataSource ResultSource `json:"data_source"`
}

// MarshalJSON flattens the result for storage and API responses.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Winner:     r.winner,
		WinnerName: r.winnerName,
		Margin:     r.margin,
		MarginType: r.marginType,
		ResultText: r.resultText,
		DataSource: r.dataSource,
	})
}

// UnmarshalJSON restores a stored result. Any data source other than the two
// provider-backed values is rejected: a fabricated result must not round-trip
// back into the system through storage.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.DataSource != SourceProvider && raw.DataSource != SourceParsedNote {
		return fmt.Errorf("%w: %q", errUnknownResultSource, raw.DataSource)
	}
	r.winner = raw.Winner
	r.winnerName = raw.WinnerName
	r.margin = raw.Margin
	r.marginType = raw.MarginType
	r.resultText = raw.ResultText
	r.dataSource = raw.DataSource
	return nil
}
