package core

import (
	"errors"
	"testing"
)

func validTransaction() Transaction {
	return Transaction{
		ID:       "t1",
		Date:     NewDate(2025, 3, 1),
		Amount:   Money{Cents: 50000},
		Type:     Expense,
		Category: "Rent",
		Account:  Bank,
		Status:   Pending,
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{name: "valid", mutate: func(*Transaction) {}, wantErr: nil},
		{name: "empty id", mutate: func(tx *Transaction) { tx.ID = " " }, wantErr: ErrEmptyID},
		{name: "negative amount", mutate: func(tx *Transaction) { tx.Amount.Cents = -1 }, wantErr: ErrInvalidAmount},
		{name: "zero amount allowed", mutate: func(tx *Transaction) { tx.Amount.Cents = 0 }, wantErr: nil},
		{name: "bad type", mutate: func(tx *Transaction) { tx.Type = "transfer" }, wantErr: ErrInvalidType},
		{name: "bad account", mutate: func(tx *Transaction) { tx.Account = "wallet" }, wantErr: ErrInvalidAccount},
		{name: "bad status", mutate: func(tx *Transaction) { tx.Status = "done" }, wantErr: ErrInvalidStatus},
		{name: "empty category", mutate: func(tx *Transaction) { tx.Category = "" }, wantErr: ErrEmptyCategory},
		{name: "recurring without rule id", mutate: func(tx *Transaction) { tx.IsRecurring = true }, wantErr: ErrMissingRuleLink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransaction_Signed(t *testing.T) {
	in := validTransaction()
	in.Type = Income
	if got := in.Signed(); got != 50000 {
		t.Errorf("income Signed() = %d, want 50000", got)
	}
	out := validTransaction()
	if got := out.Signed(); got != -50000 {
		t.Errorf("expense Signed() = %d, want -50000", got)
	}
}

func TestRecurringRule_Validate(t *testing.T) {
	valid := RecurringRule{
		ID:         "r1",
		Type:       Expense,
		Category:   "Rent",
		Amount:     Money{Cents: 50000},
		Account:    Bank,
		DayOfMonth: 1,
		Active:     true,
		Frequency:  Monthly,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid rule rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*RecurringRule)
	}{
		{name: "day zero", mutate: func(r *RecurringRule) { r.DayOfMonth = 0 }},
		{name: "day 32", mutate: func(r *RecurringRule) { r.DayOfMonth = 32 }},
		{name: "unknown frequency", mutate: func(r *RecurringRule) { r.Frequency = "weekly" }},
		{name: "empty category", mutate: func(r *RecurringRule) { r.Category = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			if err := r.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestPotDefinition_Validate(t *testing.T) {
	valid := PotDefinition{
		ID:           "smoking",
		DisplayName:  "Smoking",
		Category:     "Smoking",
		TriggerDays:  []int{1, 8, 15, 22},
		DefaultLimit: Money{Cents: 4000},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid pot rejected: %v", err)
	}

	noDays := valid
	noDays.TriggerDays = nil
	if err := noDays.Validate(); err == nil {
		t.Error("expected error for pot without trigger days")
	}

	badDay := valid
	badDay.TriggerDays = []int{0}
	if !errors.Is(badDay.Validate(), ErrInvalidDay) {
		t.Error("expected ErrInvalidDay for trigger day 0")
	}
}

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "12.34", want: 1234},
		{in: "12,34", want: 1234},
		{in: "12.345", want: 1234},
		{in: "12.346", want: 1235},
		{in: "0", want: 0},
		{in: "7", want: 700},
		{in: "-1", wantErr: true},
		{in: "+1", wantErr: true},
		{in: "", wantErr: true},
		{in: "1.2.3", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMoney_String(t *testing.T) {
	if got := (Money{Cents: -1234}).String(); got != "-12.34" {
		t.Errorf("String() = %q, want -12.34", got)
	}
	if got := (Money{Cents: 5}).String(); got != "0.05" {
		t.Errorf("String() = %q, want 0.05", got)
	}
}
