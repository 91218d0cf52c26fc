package streak

import (
	"math"

	"github.com/dukerupert/stoke/internal/model"
)

// Points computes the award for one entry. A nil template means the habit's
// configuration is gone, so zero is returned rather than erroring.
//
// Only a full completion earns the streak multiplier, rounded half-up to the
// nearest integer. Partial and show-up entries collapse to the same fixed
// reward regardless of streak length or template configuration. An explicit
// miss earns nothing.
func Points(v model.EntryValue, tmpl *model.HabitTemplate, info Info) int {
	if tmpl == nil {
		return 0
	}

	switch v.Kind {
	case model.ValueFull:
		base := tmpl.BasePoints
		if base <= 0 {
			base = model.DefaultBasePoints
		}
		return int(math.Round(float64(base) * info.Multiplier))
	case model.ValuePartial:
		return model.DefaultPartialPoints
	default:
		return 0
	}
}
