package analytics

import "trading-journal/internal/models"

// StreakSummary holds the segmented streak list and its extremes. Positive
// values are win streaks, negative values are loss streaks.
type StreakSummary struct {
	Streaks       []int `json:"streaks"`
	Current       int   `json:"current"`
	MaxWinStreak  int   `json:"maxWinStreak"`
	MaxLoseStreak int   `json:"maxLoseStreak"`
}

// Streaks segments the completed trades, in date order, into consecutive
// win and non-win runs.
func Streaks(trades []models.Trade) StreakSummary {
	sorted := SortByDate(Completed(trades))
	results := make([]models.Result, len(sorted))
	for i, t := range sorted {
		results[i] = t.Result
	}
	return StreaksOf(results)
}

// StreaksOf folds an already ordered result sequence. Anything that is not a
// win, breakeven included, extends a loss streak.
func StreaksOf(results []models.Result) StreakSummary {
	summary := StreakSummary{Streaks: []int{}}
	var streaks []int
	current := 0

	for _, r := range results {
		if r.IsWin() {
			if current >= 0 {
				current++
			} else {
				streaks = append(streaks, current)
				current = 1
			}
		} else {
			if current <= 0 {
				current--
			} else {
				streaks = append(streaks, current)
				current = -1
			}
		}

		if current > summary.MaxWinStreak {
			summary.MaxWinStreak = current
		}
		if -current > summary.MaxLoseStreak {
			summary.MaxLoseStreak = -current
		}
	}
	streaks = append(streaks, current)

	for _, s := range streaks {
		if s != 0 {
			summary.Streaks = append(summary.Streaks, s)
		}
	}
	summary.Current = current
	return summary
}
