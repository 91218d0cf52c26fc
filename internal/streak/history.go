package streak

import (
	"time"

	"github.com/dukerupert/stoke/internal/model"
)

// DefaultWindowDays is the sparkline window shown in clients.
const DefaultWindowDays = 7

// RecentHistory projects the entry history onto a fixed-length window of
// booleans, oldest day first, ending at today. An element is true when any
// entry exists for that calendar day; presence alone counts here, unlike the
// streak scan's full-completion rule.
func RecentHistory(entries []model.HabitEntry, today time.Time, windowDays int) []bool {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		present[e.TargetDate] = true
	}

	window := make([]bool, windowDays)
	day := startOfDay(today).AddDate(0, 0, -(windowDays - 1))
	for i := 0; i < windowDays; i++ {
		window[i] = present[day.Format(model.DateLayout)]
		day = day.AddDate(0, 0, 1)
	}
	return window
}
