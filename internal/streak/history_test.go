package streak

import (
	"testing"

	"github.com/dukerupert/stoke/internal/model"
)

func TestRecentHistoryLength(t *testing.T) {
	today := date(2024, 5, 10)
	for _, window := range []int{1, 7, 30} {
		got := RecentHistory(nil, today, window)
		if len(got) != window {
			t.Errorf("window %d: len = %d, want %d", window, len(got), window)
		}
	}
}

func TestRecentHistoryDefaultWindow(t *testing.T) {
	got := RecentHistory(nil, date(2024, 5, 10), 0)
	if len(got) != DefaultWindowDays {
		t.Errorf("len = %d, want %d", len(got), DefaultWindowDays)
	}
}

func TestRecentHistoryOrdering(t *testing.T) {
	// Presence on day today-k maps to index windowDays-1-k, oldest first.
	today := date(2024, 5, 10)
	entries := []model.HabitEntry{
		fullEntry(today),                   // k=0 → index 6
		partialEntry(today.AddDate(0, 0, -2), "x"), // k=2 → index 4
		fullEntry(today.AddDate(0, 0, -6)), // k=6 → index 0
	}
	got := RecentHistory(entries, today, 7)

	want := []bool{true, false, true, false, false, false, true}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRecentHistoryCountsAnyValue(t *testing.T) {
	// Presence alone counts; even an explicit miss marks the day.
	today := date(2024, 5, 10)
	entries := []model.HabitEntry{{
		TargetDate: today.Format(model.DateLayout),
		Value:      model.EntryValue{Kind: model.ValueMiss},
	}}
	got := RecentHistory(entries, today, 7)
	if !got[6] {
		t.Error("explicit-miss entry should still mark the day present")
	}
}

func TestRecentHistoryIgnoresOutOfWindow(t *testing.T) {
	today := date(2024, 5, 10)
	entries := []model.HabitEntry{
		fullEntry(today.AddDate(0, 0, -7)),
		fullEntry(today.AddDate(0, 0, 1)),
	}
	got := RecentHistory(entries, today, 7)
	for i, present := range got {
		if present {
			t.Errorf("index %d = true, want all false", i)
		}
	}
}
