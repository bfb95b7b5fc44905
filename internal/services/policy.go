package services

import "bilancio/internal/core"

// Policy holds the declarative exception tables consulted during
// materialization and forecasting. Both tables are loaded once from
// configuration; nothing in the engine special-cases a category inline.
type Policy struct {
	// AutoCompleteCategories lists categories whose materialized instances
	// are created already settled instead of pending (e.g. direct debits
	// that clear the moment they are booked).
	AutoCompleteCategories []string

	// Skips suppresses materialization and forecast application of a rule
	// for one specific (category, month) pair, modelling known one-off
	// exceptions such as a payment already received outside normal cadence.
	Skips []SkipRule
}

// SkipRule names one (category, month) combination to leave alone.
type SkipRule struct {
	Category string
	Month    core.Month
}

// AutoCompletes reports whether instances of the category are pre-settled.
func (p Policy) AutoCompletes(category string) bool {
	for _, c := range p.AutoCompleteCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Skipped reports whether the (category, month) pair is on the skip list.
func (p Policy) Skipped(category string, month core.Month) bool {
	for _, s := range p.Skips {
		if s.Category == category && s.Month == month {
			return true
		}
	}
	return false
}
