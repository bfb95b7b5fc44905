package services

import (
	"testing"

	"bilancio/internal/core"
)

func smokingPot() core.PotDefinition {
	return core.PotDefinition{
		ID:           "smoking",
		DisplayName:  "Smoking",
		Category:     "Sigarette",
		TriggerDays:  []int{1, 8, 15, 22},
		DefaultLimit: core.Money{Cents: 4000},
	}
}

func TestResolvePotLimit(t *testing.T) {
	pot := smokingPot()
	overrides := []core.PotOverride{
		{Category: "Sigarette", Limit: core.Money{Cents: 3000}},
		{Category: "Sigarette", Month: core.MonthOf(2025, 8), Limit: core.Money{Cents: 2000}},
		{Category: "Spesa", Month: core.MonthOf(2025, 8), Limit: core.Money{Cents: 9999}},
	}

	tests := []struct {
		name      string
		overrides []core.PotOverride
		month     core.Month
		want      int64
	}{
		{"month specific wins", overrides, core.MonthOf(2025, 8), 2000},
		{"category default next", overrides, core.MonthOf(2025, 9), 3000},
		{"baseline when no overrides", nil, core.MonthOf(2025, 8), 4000},
		{"other category ignored", overrides[2:], core.MonthOf(2025, 8), 4000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePotLimit(pot, tt.overrides, tt.month)
			if got.Cents != tt.want {
				t.Errorf("expected %d cents, got %d", tt.want, got.Cents)
			}
		})
	}
}

func TestPotDrawsEvenSplit(t *testing.T) {
	draws := potDraws(smokingPot(), core.Money{Cents: 4000}, core.MonthOf(2025, 7))
	if len(draws) != 4 {
		t.Fatalf("expected 4 draws, got %d", len(draws))
	}
	for i, d := range draws {
		if d.cents != 1000 {
			t.Errorf("draw %d: expected 1000 cents, got %d", i, d.cents)
		}
	}
	wantDates := []core.Date{
		core.NewDate(2025, 7, 1),
		core.NewDate(2025, 7, 8),
		core.NewDate(2025, 7, 15),
		core.NewDate(2025, 7, 22),
	}
	for i, d := range draws {
		if d.date != wantDates[i] {
			t.Errorf("draw %d: expected %s, got %s", i, wantDates[i], d.date)
		}
	}
}

func TestPotDrawsRemainderGoesToEarliestDraws(t *testing.T) {
	pot := core.PotDefinition{
		ID:          "food",
		DisplayName: "Groceries",
		Category:    "Spesa",
		TriggerDays: []int{20, 1, 10},
	}
	draws := potDraws(pot, core.Money{Cents: 1000}, core.MonthOf(2025, 7))
	if len(draws) != 3 {
		t.Fatalf("expected 3 draws, got %d", len(draws))
	}

	// 1000 / 3 = 333 with 1 cent left for the earliest trigger day.
	wantCents := []int64{334, 333, 333}
	var total int64
	for i, d := range draws {
		if d.cents != wantCents[i] {
			t.Errorf("draw %d: expected %d cents, got %d", i, wantCents[i], d.cents)
		}
		total += d.cents
	}
	if total != 1000 {
		t.Errorf("draws must sum to the limit, got %d", total)
	}
	if draws[0].date.Day() != 1 {
		t.Errorf("expected trigger days sorted, first draw on day %d", draws[0].date.Day())
	}
}

func TestPotDrawsClampTriggerDays(t *testing.T) {
	pot := core.PotDefinition{
		ID:          "late",
		DisplayName: "Late",
		Category:    "Varie",
		TriggerDays: []int{31},
	}
	draws := potDraws(pot, core.Money{Cents: 500}, core.MonthOf(2025, 2))
	if len(draws) != 1 {
		t.Fatalf("expected 1 draw, got %d", len(draws))
	}
	if draws[0].date != core.NewDate(2025, 2, 28) {
		t.Errorf("expected clamp to 2025-02-28, got %s", draws[0].date)
	}
}

func TestPotDrawsDegenerateInputs(t *testing.T) {
	pot := smokingPot()
	if draws := potDraws(pot, core.Money{Cents: 0}, core.MonthOf(2025, 7)); draws != nil {
		t.Errorf("expected no draws for zero limit, got %v", draws)
	}
	pot.TriggerDays = nil
	if draws := potDraws(pot, core.Money{Cents: 4000}, core.MonthOf(2025, 7)); draws != nil {
		t.Errorf("expected no draws without trigger days, got %v", draws)
	}
}
