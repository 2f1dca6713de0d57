// Package classify turns a raw provider payload into a lifecycle
// classification. The heuristics are an ordered list of named rules; the
// first rule that matches wins, so the priority order is explicit and
// testable in isolation.
package classify

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fortuna/wicket/internal/match"
	"github.com/fortuna/wicket/internal/provider/cricketdata"
)

// Confidence grades how trustworthy a classification is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Classification is the classifier's verdict on a raw payload.
type Classification struct {
	Stage      match.Stage
	Confidence Confidence
	Reason     string
}

// IsCompleted reports a trustworthy completed verdict. Anything below high
// confidence is not enough to migrate a match.
func (c Classification) IsCompleted() bool {
	return c.Stage == match.StageCompleted && c.Confidence == ConfidenceHigh
}

// IsLive reports a trustworthy live verdict.
func (c Classification) IsLive() bool {
	return c.Stage == match.StageLive && c.Confidence == ConfidenceHigh
}

// Rule is one named classification heuristic. Apply returns ok=false when the
// rule has no opinion on the payload.
type Rule struct {
	Name  string
	Apply func(m *cricketdata.Match, now time.Time) (Classification, bool)
}

// rules in priority order. First match wins.
var rules = []Rule{
	{Name: "state-code", Apply: ruleStateCode},
	{Name: "status-finished", Apply: ruleStatusFinished},
	{Name: "result-note", Apply: ruleResultNote},
	{Name: "innings-marker", Apply: ruleInningsMarker},
	{Name: "is-live-flag", Apply: ruleIsLiveFlag},
	{Name: "time-window", Apply: ruleTimeWindow},
}

// Classify runs the rule list over the payload and then cross-checks the
// verdict against scorecard evidence.
func Classify(m *cricketdata.Match) Classification {
	return classifyAt(m, time.Now())
}

func classifyAt(m *cricketdata.Match, now time.Time) Classification {
	c := Classification{Stage: match.StageUpcoming, Confidence: ConfidenceLow, Reason: "no signal matched"}
	for _, rule := range rules {
		if verdict, ok := rule.Apply(m, now); ok {
			verdict.Reason = rule.Name + ": " + verdict.Reason
			c = verdict
			break
		}
	}
	return reconcileWithScorecard(m, c)
}

var finishedStates = []string{
	"complete", "completed", "finished", "result",
	"abandon", "abandoned", "cancel", "cancelled", "no result",
}

var liveStates = []string{
	"inprogress", "in progress", "live",
	"innings break", "rain delay", "tea", "lunch", "drinks", "stumps", "delay",
}

// ruleStateCode trusts the canonical state code unless the free-text status
// explicitly contradicts it. State codes go stale faster than the status
// text, so the status wins in both directions: a finished status overrides a
// live code, and a live status overrides a finished code.
func ruleStateCode(m *cricketdata.Match, _ time.Time) (Classification, bool) {
	state := strings.ToLower(strings.TrimSpace(m.State))
	if state == "" {
		return Classification{}, false
	}
	if containsAny(state, finishedStates) {
		if !statusSaysFinished(m.Status) && statusSaysLive(m.Status) {
			log.Printf("[classify] conflict for %s: state %q says finished but status %q says live (status wins)", m.ID, m.State, m.Status)
			return Classification{
				Stage:      match.StageLive,
				Confidence: ConfidenceHigh,
				Reason:     fmt.Sprintf("terminal state %q overridden by live status %q", m.State, m.Status),
			}, true
		}
		return Classification{
			Stage:      match.StageCompleted,
			Confidence: ConfidenceHigh,
			Reason:     fmt.Sprintf("terminal state code %q", m.State),
		}, true
	}
	if containsAny(state, liveStates) {
		if statusSaysFinished(m.Status) {
			log.Printf("[classify] conflict for %s: state %q says live but status %q says finished (status wins)", m.ID, m.State, m.Status)
			return Classification{
				Stage:      match.StageCompleted,
				Confidence: ConfidenceHigh,
				Reason:     fmt.Sprintf("stale live state %q overridden by finished status %q", m.State, m.Status),
			}, true
		}
		return Classification{
			Stage:      match.StageLive,
			Confidence: ConfidenceHigh,
			Reason:     fmt.Sprintf("in-progress state code %q", m.State),
		}, true
	}
	return Classification{}, false
}

var finishedStatusMarkers = []string{
	"won by", "win by", "match tied", "tied", "no result",
	"abandoned", "match drawn", "drawn", "finished", "completed", "complete",
}

func statusSaysFinished(status string) bool {
	return containsAny(strings.ToLower(status), finishedStatusMarkers)
}

func statusSaysLive(status string) bool {
	return containsAny(strings.ToLower(status), liveStatusMarkers)
}

// ruleStatusFinished matches a finished/result marker in the free-text status.
func ruleStatusFinished(m *cricketdata.Match, _ time.Time) (Classification, bool) {
	if !statusSaysFinished(m.Status) {
		return Classification{}, false
	}
	return Classification{
		Stage:      match.StageCompleted,
		Confidence: ConfidenceHigh,
		Reason:     fmt.Sprintf("finished marker in status %q", m.Status),
	}, true
}

// ruleResultNote matches a free-text result note ("won by N runs", "tied",
// "no result", "abandoned").
func ruleResultNote(m *cricketdata.Match, _ time.Time) (Classification, bool) {
	note := strings.ToLower(m.Note)
	if note == "" || !containsAny(note, finishedStatusMarkers) {
		return Classification{}, false
	}
	return Classification{
		Stage:      match.StageCompleted,
		Confidence: ConfidenceHigh,
		Reason:     fmt.Sprintf("result note %q", m.Note),
	}, true
}

var liveStatusMarkers = []string{
	"1st innings", "2nd innings", "3rd innings", "4th innings",
	"innings", "live", "in progress", "opt to", "elected to", "need", "require",
}

// ruleInningsMarker matches live markers in the free-text status.
func ruleInningsMarker(m *cricketdata.Match, _ time.Time) (Classification, bool) {
	status := strings.ToLower(m.Status)
	if status == "" || !containsAny(status, liveStatusMarkers) {
		return Classification{}, false
	}
	return Classification{
		Stage:      match.StageLive,
		Confidence: ConfidenceHigh,
		Reason:     fmt.Sprintf("live marker in status %q", m.Status),
	}, true
}

// ruleIsLiveFlag trusts the provider's boolean flag at medium confidence. The
// documented provider inconsistency (flag stuck on after the match ends) is
// handled one rule earlier by ruleStatusFinished, but guard here too in case
// the status text arrives later in the rule order someday.
func ruleIsLiveFlag(m *cricketdata.Match, _ time.Time) (Classification, bool) {
	if m.IsLive == nil || !*m.IsLive {
		return Classification{}, false
	}
	if statusSaysFinished(m.Status) {
		log.Printf("[classify] conflict for %s: isLive flag set but status %q says finished (status wins)", m.ID, m.Status)
		return Classification{
			Stage:      match.StageCompleted,
			Confidence: ConfidenceHigh,
			Reason:     fmt.Sprintf("stale isLive flag overridden by finished status %q", m.Status),
		}, true
	}
	return Classification{
		Stage:      match.StageLive,
		Confidence: ConfidenceMedium,
		Reason:     "provider isLive flag",
	}, true
}

// ruleTimeWindow falls back to the scheduled start time.
func ruleTimeWindow(m *cricketdata.Match, now time.Time) (Classification, bool) {
	start := m.StartTime()
	if start.IsZero() {
		return Classification{}, false
	}
	if start.After(now) {
		return Classification{
			Stage:      match.StageUpcoming,
			Confidence: ConfidenceHigh,
			Reason:     fmt.Sprintf("start time %s is in the future", start.Format(time.RFC3339)),
		}, true
	}
	if len(m.Score) > 0 {
		return Classification{
			Stage:      match.StageLive,
			Confidence: ConfidenceMedium,
			Reason:     "start time passed and score data present",
		}, true
	}
	return Classification{}, false
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
