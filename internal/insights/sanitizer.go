// Package insights asks an external analysis service for workout
// recommendations. Logs are stripped to a minimal summary before
// leaving the process; nothing user-identifying crosses the wire.
package insights

import (
	"fmt"
	"time"

	"github.com/Z-testacc/ActiLeap/internal/domain"
)

// MinLogsForInsights is the history floor below which no request is
// made; too little data produces generic advice.
const MinLogsForInsights = 5

// maxLogsPerRequest caps the history sent upstream.
const maxLogsPerRequest = 50

// LogSummary is the sanitized projection of one workout log.
type LogSummary struct {
	Date      string   `json:"date"`
	Title     string   `json:"title"`
	Duration  int      `json:"duration_min"`
	Calories  int      `json:"calories"`
	Exercises []string `json:"exercises"`
}

// Summarize reduces logs to their sanitized form, newest first, capped
// at maxLogsPerRequest.
func Summarize(logs []domain.WorkoutLog) []LogSummary {
	if len(logs) > maxLogsPerRequest {
		logs = logs[:maxLogsPerRequest]
	}

	summaries := make([]LogSummary, 0, len(logs))
	for _, log := range logs {
		summaries = append(summaries, LogSummary{
			Date:      log.Date.UTC().Format(time.DateOnly),
			Title:     log.WorkoutTitle,
			Duration:  log.Duration,
			Calories:  log.Calories,
			Exercises: summarizeExercises(log.Exercises),
		})
	}
	return summaries
}

func summarizeExercises(exercises []domain.Exercise) []string {
	out := make([]string, 0, len(exercises))
	for _, ex := range exercises {
		out = append(out, fmt.Sprintf("%s %dx%d", ex.Name, ex.Sets, ex.Reps))
	}
	return out
}
