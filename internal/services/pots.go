package services

import (
	"sort"

	"bilancio/internal/core"
)

// ResolvePotLimit returns the active monthly limit for a pot's category in a
// given month. Resolution order: a month-specific override for the category,
// then the category's default override, then the pot's baseline limit.
func ResolvePotLimit(pot core.PotDefinition, overrides []core.PotOverride, month core.Month) core.Money {
	var categoryDefault *core.PotOverride
	for i, o := range overrides {
		if o.Category != pot.Category {
			continue
		}
		if o.Month == month {
			return o.Limit
		}
		if o.Month.IsZero() {
			categoryDefault = &overrides[i]
		}
	}
	if categoryDefault != nil {
		return categoryDefault.Limit
	}
	return pot.DefaultLimit
}

// potDraw is one synthetic withdrawal of a pot's monthly limit.
type potDraw struct {
	date  core.Date
	cents int64
}

// potDraws apportions a pot's monthly limit evenly across its trigger days
// within the month. Trigger days past the month's end are clamped to the last
// day. Division is cent-exact: each draw gets limit/n cents and the remainder
// is spread one cent at a time over the earliest draws, so the draws always
// sum to the limit.
func potDraws(pot core.PotDefinition, limit core.Money, month core.Month) []potDraw {
	n := len(pot.TriggerDays)
	if n == 0 || limit.Cents <= 0 {
		return nil
	}

	days := make([]int, n)
	copy(days, pot.TriggerDays)
	sort.Ints(days)

	share := limit.Cents / int64(n)
	remainder := limit.Cents % int64(n)

	draws := make([]potDraw, 0, n)
	for i, day := range days {
		cents := share
		if int64(i) < remainder {
			cents++
		}
		draws = append(draws, potDraw{date: month.DateOn(day), cents: cents})
	}
	return draws
}
