package feedback

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Entry is one rated interaction. Entries are immutable once accepted; the
// store is append-only and never mutates or deletes what it has written.
type Entry struct {
	Timestamp           string   `json:"timestamp"`
	SessionID           string   `json:"session_id"`
	UserQuery           string   `json:"user_query"`
	BotResponse         string   `json:"bot_response"`
	Rating              int      `json:"rating"`
	FeedbackText        string   `json:"feedback_text,omitempty"`
	EscalationTriggered bool     `json:"escalation_triggered"`
	ToolsUsed           []string `json:"tools_used"`
	ResponseTime        float64  `json:"response_time"`
}

// Stats are derived read-side aggregates over the full log, computed at query
// time rather than incrementally maintained.
type Stats struct {
	TotalFeedback      int            `json:"total_feedback"`
	AverageRating      float64        `json:"average_rating"`
	EscalationRate     float64        `json:"escalation_rate"` // percentage
	ToolUsage          map[string]int `json:"tool_usage"`
	RatingDistribution map[string]int `json:"rating_distribution"`
}

// Store is the durable collection of rated interactions.
//
// Record returns (false, nil) for an out-of-range rating: validation is a
// locally recovered condition, not an error. A non-nil error always means the
// underlying persistence failed.
type Store interface {
	Record(entry Entry) (bool, error)
	Stats() (Stats, error)
	Recent(limit int) ([]Entry, error)
	Export(destination string) (string, error)
}

func validRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

// computeStats derives aggregates from the full set of entries. Shared by
// every Store implementation so the numbers cannot drift between backends.
func computeStats(entries []Entry) Stats {
	if len(entries) == 0 {
		return Stats{TotalFeedback: 0}
	}

	total := len(entries)
	ratingSum := 0
	escalations := 0
	toolUsage := make(map[string]int)
	distribution := map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}

	for _, entry := range entries {
		ratingSum += entry.Rating
		if entry.EscalationTriggered {
			escalations++
		}
		for _, tool := range entry.ToolsUsed {
			toolUsage[tool]++
		}
		distribution[strconv.Itoa(entry.Rating)]++
	}

	return Stats{
		TotalFeedback:      total,
		AverageRating:      round2(float64(ratingSum) / float64(total)),
		EscalationRate:     round2(float64(escalations) / float64(total) * 100),
		ToolUsage:          toolUsage,
		RatingDistribution: distribution,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// recentWindow returns the last limit entries in insertion order.
func recentWindow(entries []Entry, limit int) []Entry {
	if limit <= 0 || len(entries) == 0 {
		return []Entry{}
	}
	if limit >= len(entries) {
		return entries
	}
	return entries[len(entries)-limit:]
}

// exportFilename builds the auto-generated snapshot name used when the caller
// does not specify a destination.
func exportFilename(now time.Time) string {
	return fmt.Sprintf("feedback_export_%s.json", now.Format("20060102_150405"))
}
