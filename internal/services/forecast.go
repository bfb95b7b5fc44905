package services

import (
	"bilancio/internal/core"
)

// ForecastHorizonDays bounds how far ahead the simulator is willing to walk
// (about five years). Requests past the horizon are truncated to it.
const ForecastHorizonDays = 1825

// ForecastInput is everything the simulator needs. Today is captured once by
// the caller; the day-loop itself never reads the clock, so two runs over the
// same input produce identical series.
type ForecastInput struct {
	Transactions []core.Transaction
	Rules        []core.RecurringRule
	Pots         []core.PotDefinition
	Overrides    []core.PotOverride
	From         core.Date
	To           core.Date
	Today        core.Date
}

// DailyPoint is one day of the projected bank trajectory.
type DailyPoint struct {
	Date    core.Date  `json:"date"`
	Balance core.Money `json:"balance"`
}

// Simulator projects a day-by-day bank balance trajectory: completed history
// replayed exactly up to today, then rule-driven obligations, scheduled
// one-off pending movements, and periodic pot draws layered on future days.
type Simulator struct {
	policy Policy
}

// NewSimulator creates a simulator with the given exception policy.
func NewSimulator(policy Policy) *Simulator {
	return &Simulator{policy: policy}
}

// Run walks each calendar day from From to To inclusive and records the
// running bank balance after that day's contributions. The balance is seeded
// with every completed bank movement dated strictly before From. A To before
// From yields an empty series.
func (s *Simulator) Run(in ForecastInput) []DailyPoint {
	if in.To.Before(in.From.Time) {
		return nil
	}
	to := in.To
	if horizon := (core.Date{Time: in.From.AddDate(0, 0, ForecastHorizonDays)}); to.After(horizon.Time) {
		to = horizon
	}

	completed := make(map[core.Date]int64)
	pendingOneOff := make(map[core.Date]int64)
	for _, t := range in.Transactions {
		if t.Account != core.Bank {
			continue
		}
		switch {
		case t.Status == core.Completed:
			completed[t.Date] += t.Signed()
		case !t.IsRecurring:
			// Recurring pending instances are covered by their rule on
			// future days; counting both would double-apply them.
			pendingOneOff[t.Date] += t.Signed()
		}
	}

	running := int64(0)
	for date, cents := range completed {
		if date.Before(in.From.Time) {
			running += cents
		}
	}

	var (
		series       []DailyPoint
		month        core.Month
		futureEvents map[int]int64
	)
	for day := in.From; !day.After(to.Time); day = day.Next() {
		if day.After(in.Today.Time) {
			if m := day.Month(); futureEvents == nil || m != month {
				month = m
				futureEvents = s.monthEvents(in, month)
			}
			running += futureEvents[day.Day()]
			running += pendingOneOff[day]
		} else {
			running += completed[day]
		}
		series = append(series, DailyPoint{Date: day, Balance: core.Money{Cents: running}})
	}
	return series
}

// monthEvents precomputes the hypothetical contributions for one future
// month, keyed by day: active bank rules on their clamped day (minus skip
// exceptions) and each pot's limit split across its trigger days.
func (s *Simulator) monthEvents(in ForecastInput, month core.Month) map[int]int64 {
	events := make(map[int]int64)
	for _, rule := range in.Rules {
		if !rule.Active || rule.Account != core.Bank {
			continue
		}
		if s.policy.Skipped(rule.Category, month) {
			continue
		}
		signed := rule.Amount.Cents
		if rule.Type == core.Expense {
			signed = -signed
		}
		events[month.ClampDay(rule.DayOfMonth)] += signed
	}
	for _, pot := range in.Pots {
		limit := ResolvePotLimit(pot, in.Overrides, month)
		for _, draw := range potDraws(pot, limit, month) {
			events[draw.date.Day()] -= draw.cents
		}
	}
	return events
}

// StablePositiveDate reports the day the balance becomes permanently
// non-negative within the series: the day after the last negative point. If
// the series never dips below zero the first day is reported. ok is false
// when the series is empty or still negative at its end, meaning stability is
// not achievable within the horizon.
func StablePositiveDate(series []DailyPoint) (core.Date, bool) {
	if len(series) == 0 {
		return core.Date{}, false
	}
	lastNegative := -1
	for i, p := range series {
		if p.Balance.Cents < 0 {
			lastNegative = i
		}
	}
	if lastNegative == -1 {
		return series[0].Date, true
	}
	if lastNegative == len(series)-1 {
		return core.Date{}, false
	}
	return series[lastNegative+1].Date, true
}
