package leaderboard

import (
	"github.com/aimd54/design-contest/internal/service/scoring"
)

// Stats summarizes a leaderboard's final scores.
type Stats struct {
	Entries     int     `json:"entries"`
	TopScore    int     `json:"top_score"`
	BottomScore int     `json:"bottom_score"`
	MeanScore   float64 `json:"mean_score"`
	MedianScore float64 `json:"median_score"`
	// Ties counts entries sharing their final score with the entry ranked just above.
	Ties int `json:"ties"`
}

// Summarize computes Stats over ranked entries.
func Summarize(entries []Entry) Stats {
	stats := Stats{Entries: len(entries)}
	if len(entries) == 0 {
		return stats
	}

	finals := make([]int, len(entries))
	for i, e := range entries {
		finals[i] = e.FinalScore
		if i > 0 && e.FinalScore == entries[i-1].FinalScore {
			stats.Ties++
		}
	}

	stats.TopScore = entries[0].FinalScore
	stats.BottomScore = entries[len(entries)-1].FinalScore
	stats.MeanScore, _ = scoring.Mean(finals)
	stats.MedianScore, _ = scoring.Median(finals)
	return stats
}
