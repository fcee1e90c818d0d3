// Package analytics summarizes the interaction log per day.
package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"belle/internal/intent"
	"belle/internal/storage"
)

// CategoryOther groups tasks with no known leading tag.
const CategoryOther = "other"

// DailyStats is the usage of one calendar day.
type DailyStats struct {
	Date          string         `json:"date"`
	TotalTurns    int            `json:"total_turns"`
	TotalIntents  int            `json:"total_intents"`
	Failures      int            `json:"failures"`
	FallbackTurns int            `json:"fallback_turns"`
	Sessions      int            `json:"sessions_ended"`
	ByCategory    map[string]int `json:"by_category"`
}

// Category maps a normalized task to the capability bucket it routes to.
func Category(task string) string {
	if tag := intent.LeadingTag(task); tag != "" {
		return tag
	}
	if strings.Contains(task, intent.TagImage) {
		return intent.TagImage
	}
	return CategoryOther
}

// AnalyzeDailyLogs counts the events that fall on targetDate in its location.
func AnalyzeDailyLogs(events []storage.Event, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	stats := &DailyStats{
		Date:       startOfDay.Format("2006-01-02"),
		ByCategory: make(map[string]int),
	}

	for _, event := range events {
		if event.Timestamp.Before(startOfDay) || !event.Timestamp.Before(endOfDay) {
			continue
		}
		if event.UserMessage == "" {
			continue
		}
		stats.TotalTurns++
		stats.Failures += event.Failures
		if event.Exit {
			stats.Sessions++
		}
		if len(event.Tasks) == 0 {
			stats.FallbackTurns++
		}
		for _, task := range event.Tasks {
			stats.TotalIntents++
			stats.ByCategory[Category(task)]++
		}
	}
	return stats
}

// GenerateReportSummary renders the stats as plain text for the console.
func (ds *DailyStats) GenerateReportSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage for %s:\n\n", ds.Date)
	fmt.Fprintf(&b, "- Turns: %d\n", ds.TotalTurns)
	fmt.Fprintf(&b, "- Intents: %d\n", ds.TotalIntents)
	fmt.Fprintf(&b, "- Turns answered by fallback chat: %d\n", ds.FallbackTurns)
	fmt.Fprintf(&b, "- Provider failures: %d\n", ds.Failures)
	fmt.Fprintf(&b, "- Sessions ended: %d\n", ds.Sessions)

	if len(ds.ByCategory) > 0 {
		b.WriteString("\nIntents by category:\n")
		names := make([]string, 0, len(ds.ByCategory))
		for name := range ds.ByCategory {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "- %s: %d\n", name, ds.ByCategory[name])
		}
	}
	return b.String()
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
