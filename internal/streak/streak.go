package streak

import (
	"time"

	"github.com/dukerupert/stoke/internal/model"
)

// MaxLookbackDays caps how far back an evaluation scans. Streaks are never
// evaluated further back than a year.
const MaxLookbackDays = 365

// Shield and multiplier policy constants.
const (
	shieldInterval    = 7 // one shield earned per 7 full-completion days
	tierTwoStreak     = 7
	tierThreeStreak   = 14
	MultiplierBase    = 1.0
	MultiplierTierII  = 1.2
	MultiplierTierIII = 1.5
)

// Info is the result of evaluating a goal's entry history against a reference
// date. It is recomputed from raw history on every evaluation and never
// persisted, so it is always a pure function of current data.
type Info struct {
	CurrentStreak int     `json:"current_streak"`
	Multiplier    float64 `json:"multiplier"`
	HasShield     bool    `json:"has_shield"`
	ShieldActive  bool    `json:"shield_active"`
	LastCompleted *string `json:"last_completed_date"`
}

// Evaluate computes the current streak for one goal given its entry history
// and a reference date. Entries may arrive in any order; the caller passes at
// most one entry per target date (duplicates are undefined, first found wins).
//
// A day with an exactly-true value grows the streak. A partial or show-up day
// keeps the run alive without growing it. A missed day breaks the run unless
// a shield is available: one shield is earned per 7 full-completion days
// accumulated so far, and at most one shield is spent per run. A second
// consecutive miss always breaks, no matter how many shields are nominally
// earned.
//
// The scan covers the MaxLookbackDays window ending at today and is evaluated
// in chronological order, so shields are backed by the completions that came
// before the miss they forgive.
func Evaluate(entries []model.HabitEntry, today time.Time) Info {
	info := Info{Multiplier: MultiplierBase}
	if len(entries) == 0 {
		return info
	}

	byDate := make(map[string]model.HabitEntry, len(entries))
	for _, e := range entries {
		if _, ok := byDate[e.TargetDate]; !ok {
			byDate[e.TargetDate] = e
		}
	}

	var (
		streak        int
		misses        int
		shieldUsed    bool
		lastCompleted string
	)

	day := startOfDay(today).AddDate(0, 0, -(MaxLookbackDays - 1))
	for i := 0; i < MaxLookbackDays; i++ {
		key := day.Format(model.DateLayout)
		if e, ok := byDate[key]; ok {
			misses = 0
			if e.Value.Kind == model.ValueFull {
				streak++
			}
			lastCompleted = key
		} else {
			misses++
			// First miss of a run is forgiven when the run has banked at
			// least one shield and none has been spent yet.
			if streak/shieldInterval > 0 && misses == 1 && !shieldUsed {
				shieldUsed = true
			} else {
				streak = 0
				misses = 0
				shieldUsed = false
				lastCompleted = ""
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	info.CurrentStreak = streak
	info.Multiplier = multiplierFor(streak)
	info.HasShield = streak/shieldInterval > 0
	info.ShieldActive = shieldUsed
	if lastCompleted != "" {
		info.LastCompleted = &lastCompleted
	}
	return info
}

func multiplierFor(streak int) float64 {
	switch {
	case streak >= tierThreeStreak:
		return MultiplierTierIII
	case streak >= tierTwoStreak:
		return MultiplierTierII
	default:
		return MultiplierBase
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
