package analytics

import (
	"reflect"
	"testing"

	"trading-journal/internal/models"
)

func results(rs ...models.Result) []models.Trade {
	trades := make([]models.Trade, len(rs))
	for i, r := range rs {
		trades[i] = models.Trade{ID: string(rune('a' + i)), Date: base.AddDate(0, 0, i), Result: r}
	}
	return trades
}

func TestStreaksExample(t *testing.T) {
	W, L := models.ResultWin, models.ResultLoss
	got := Streaks(results(W, W, L, W, L, L, L))

	if !reflect.DeepEqual(got.Streaks, []int{2, -1, 1, -3}) {
		t.Errorf("Streaks = %v, want [2 -1 1 -3]", got.Streaks)
	}
	if got.MaxWinStreak != 2 || got.MaxLoseStreak != 3 {
		t.Errorf("max win/lose = %d/%d, want 2/3", got.MaxWinStreak, got.MaxLoseStreak)
	}
	if got.Current != -3 {
		t.Errorf("Current = %d, want -3", got.Current)
	}
}

func TestStreaksTreatsBreakevenAsNonWin(t *testing.T) {
	got := Streaks(results(models.ResultTPHit, models.ResultBreakeven, models.ResultSLHit, models.ResultWin))
	if !reflect.DeepEqual(got.Streaks, []int{1, -2, 1}) {
		t.Errorf("Streaks = %v, want [1 -2 1]", got.Streaks)
	}
}

func TestStreaksSingleRunAndPending(t *testing.T) {
	trades := results(models.ResultWin, models.ResultPending, models.ResultWin)
	got := Streaks(trades)
	if !reflect.DeepEqual(got.Streaks, []int{2}) {
		t.Errorf("Streaks = %v, want [2]", got.Streaks)
	}
}

func TestStreaksIgnoreInputOrder(t *testing.T) {
	W, L := models.ResultWin, models.ResultLoss
	trades := results(W, W, L, W, L, L, L)
	reversed := make([]models.Trade, len(trades))
	for i := range trades {
		reversed[len(trades)-1-i] = trades[i]
	}
	if got := Streaks(reversed); !reflect.DeepEqual(got.Streaks, []int{2, -1, 1, -3}) {
		t.Errorf("Streaks(reversed) = %v", got.Streaks)
	}
}

func TestStreaksEmpty(t *testing.T) {
	got := Streaks(nil)
	if len(got.Streaks) != 0 || got.MaxWinStreak != 0 || got.MaxLoseStreak != 0 {
		t.Errorf("Streaks(nil) = %+v, want empty", got)
	}
	if got.Streaks == nil {
		t.Error("Streaks should be an empty slice, not nil")
	}
}
