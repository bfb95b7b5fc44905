package services

import (
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
)

// Materializer expands recurring rules into concrete monthly transaction
// instances. It is pure over its inputs apart from id generation; the caller
// supplies the reference date and the audit timestamp.
type Materializer struct {
	policy Policy
}

// NewMaterializer creates a materializer with the given exception policy.
func NewMaterializer(policy Policy) *Materializer {
	return &Materializer{policy: policy}
}

// Materialize returns the transaction instances that are missing for the
// reference month. For each active rule it checks whether an instance already
// exists (same rule id, date inside the reference month); if not, it builds
// one dated at the rule's day-of-month clamped to the month's last day.
//
// Running it twice over the same state yields nothing the second time: the
// instances returned by the first run satisfy the existence check.
func (m *Materializer) Materialize(rules []core.RecurringRule, existing []core.Transaction, reference core.Date, now time.Time) []core.Transaction {
	month := reference.Month()

	materialized := make(map[string]bool)
	for _, t := range existing {
		if t.IsRecurring && t.RecurringID != "" && t.Date.Month() == month {
			materialized[t.RecurringID] = true
		}
	}

	var created []core.Transaction
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		if materialized[rule.ID] {
			continue
		}
		if m.policy.Skipped(rule.Category, month) {
			continue
		}

		status := core.Pending
		if m.policy.AutoCompletes(rule.Category) {
			status = core.Completed
		}

		created = append(created, core.Transaction{
			ID:          uuid.NewString(),
			Date:        month.DateOn(rule.DayOfMonth),
			Amount:      rule.Amount,
			Type:        rule.Type,
			Category:    rule.Category,
			Account:     rule.Account,
			Status:      status,
			IsRecurring: true,
			RecurringID: rule.ID,
			Note:        rule.Note,
			CreatedAt:   now,
		})
	}
	return created
}
