package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	Bank Account = "bank"
	Cash Account = "cash"

	Pending   Status = "pending"
	Completed Status = "completed"

	Monthly Frequency = "monthly"
)

type (
	TransactionType string
	Account         string
	Status          string
	Frequency       string

	// Transaction is a single dated money movement. Amount is always a
	// magnitude; the sign is carried by Type.
	Transaction struct {
		ID          string          `json:"id"`
		Date        Date            `json:"date"`
		Amount      Money           `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		Account     Account         `json:"account"`
		Status      Status          `json:"status"`
		IsRecurring bool            `json:"isRecurring"`
		RecurringID string          `json:"recurringId,omitempty"`
		Note        string          `json:"note,omitempty"`
		CreatedAt   time.Time       `json:"createdAt"`
	}

	// RecurringRule is a template for a monthly obligation. DayOfMonth is
	// clamped to the last day of shorter months at materialization time.
	RecurringRule struct {
		ID         string          `json:"id"`
		Type       TransactionType `json:"type"`
		Category   string          `json:"category"`
		Amount     Money           `json:"amount"`
		Note       string          `json:"note,omitempty"`
		Account    Account         `json:"account"`
		DayOfMonth int             `json:"dayOfMonth"`
		Active     bool            `json:"active"`
		Frequency  Frequency       `json:"frequency"`
	}

	// PotDefinition is a named sub-budget drawn against a category on fixed
	// trigger days each month.
	PotDefinition struct {
		ID           string `json:"id"`
		DisplayName  string `json:"displayName"`
		Category     string `json:"category"`
		TriggerDays  []int  `json:"triggerDays"`
		DefaultLimit Money  `json:"defaultLimit"`
	}

	// PotOverride replaces a pot's limit for one category, either as a new
	// default (Month zero) or scoped to a single calendar month.
	PotOverride struct {
		Category string `json:"category"`
		Month    Month  `json:"month,omitzero"`
		Limit    Money  `json:"limit"`
	}
)

var (
	ErrInvalidDay      = errors.New("invalid day of month")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidAccount  = errors.New("invalid account")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrEmptyID         = errors.New("empty id")
	ErrEmptyCategory   = errors.New("empty category")
	ErrMissingRuleLink = errors.New("recurring transaction without rule reference")
)

// Signed returns the transaction's contribution in cents: positive for
// income, negative for expenses.
func (t Transaction) Signed() int64 {
	if t.Type == Income {
		return t.Amount.Cents
	}
	return -t.Amount.Cents
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (a Account) Validate() error {
	switch a {
	case Bank, Cash:
		return nil
	default:
		return ErrInvalidAccount
	}
}

func (s Status) Validate() error {
	switch s {
	case Pending, Completed:
		return nil
	default:
		return ErrInvalidStatus
	}
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if err := t.Account.Validate(); err != nil {
		return err
	}
	if err := t.Status.Validate(); err != nil {
		return err
	}
	if t.IsRecurring && strings.TrimSpace(t.RecurringID) == "" {
		return ErrMissingRuleLink
	}
	return nil
}

func (r RecurringRule) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyID
	}
	if err := r.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if r.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if err := r.Account.Validate(); err != nil {
		return err
	}
	if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
		return ErrInvalidDay
	}
	switch r.Frequency {
	case Monthly:
	default:
		return errors.New("invalid frequency")
	}
	return nil
}

func (p PotDefinition) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(p.Category) == "" {
		return ErrEmptyCategory
	}
	if len(p.TriggerDays) == 0 {
		return errors.New("pot has no trigger days")
	}
	for _, d := range p.TriggerDays {
		if d < 1 || d > 31 {
			return ErrInvalidDay
		}
	}
	if p.DefaultLimit.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
