package core

import (
	"math/rand"
	"testing"
)

func tx(id string, date Date, amount int64, typ TransactionType, account Account, status Status) Transaction {
	return Transaction{
		ID:       id,
		Date:     date,
		Amount:   Money{Cents: amount},
		Type:     typ,
		Category: "general",
		Account:  account,
		Status:   status,
	}
}

func TestComputeBalances_EmptyInput(t *testing.T) {
	got := ComputeBalances(nil, Actual, NewDate(2025, 3, 15))
	want := Balances{}
	if got != want {
		t.Errorf("ComputeBalances(nil) = %+v, want all zeros", got)
	}
}

func TestComputeBalances_ActualVsForecast(t *testing.T) {
	ref := NewDate(2025, 3, 15)
	txs := []Transaction{
		tx("a", NewDate(2025, 3, 1), 100000, Income, Bank, Completed),
		tx("b", NewDate(2025, 3, 5), 30000, Expense, Bank, Completed),
		tx("c", NewDate(2025, 3, 20), 20000, Expense, Bank, Pending),
	}

	tests := []struct {
		name     string
		mode     Mode
		wantBank int64
	}{
		{name: "actual counts completed only", mode: Actual, wantBank: 70000},
		{name: "forecast counts pending too", mode: Forecast, wantBank: 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBalances(txs, tt.mode, ref)
			if got.Bank.Cents != tt.wantBank {
				t.Errorf("bank balance = %d, want %d", got.Bank.Cents, tt.wantBank)
			}
		})
	}
}

func TestComputeBalances_PendingRemovalDoesNotChangeActual(t *testing.T) {
	ref := NewDate(2025, 3, 15)
	txs := []Transaction{
		tx("a", NewDate(2025, 3, 1), 100000, Income, Bank, Completed),
		tx("b", NewDate(2025, 3, 5), 30000, Expense, Bank, Completed),
		tx("c", NewDate(2025, 3, 20), 20000, Expense, Bank, Pending),
		tx("d", NewDate(2025, 3, 21), 5000, Expense, Cash, Pending),
	}

	withPending := ComputeBalances(txs, Actual, ref)
	withoutPending := ComputeBalances(txs[:2], Actual, ref)
	if withPending != withoutPending {
		t.Errorf("actual balances changed when pending entries were removed: %+v vs %+v",
			withPending, withoutPending)
	}
}

func TestComputeBalances_FutureMonthsExcluded(t *testing.T) {
	ref := NewDate(2025, 3, 15)
	txs := []Transaction{
		tx("past", NewDate(2025, 2, 10), 5000, Income, Bank, Completed),
		tx("current", NewDate(2025, 3, 31), 1000, Income, Bank, Completed),
		tx("next-month", NewDate(2025, 4, 1), 99999, Income, Bank, Completed),
		tx("next-year", NewDate(2026, 1, 1), 99999, Income, Bank, Completed),
	}

	for _, mode := range []Mode{Actual, Forecast} {
		got := ComputeBalances(txs, mode, ref)
		if got.Bank.Cents != 6000 {
			t.Errorf("mode %s: bank balance = %d, want 6000 (future months must be excluded)",
				mode, got.Bank.Cents)
		}
		if got.Income.Cents != 1000 {
			t.Errorf("mode %s: monthly income = %d, want 1000 (current month only)",
				mode, got.Income.Cents)
		}
	}
}

func TestComputeBalances_ZeroAmountIsNetNeutral(t *testing.T) {
	ref := NewDate(2025, 3, 15)
	base := []Transaction{
		tx("a", NewDate(2025, 3, 1), 100, Income, Cash, Completed),
	}
	withZero := append(base, tx("z", NewDate(2025, 3, 2), 0, Expense, Cash, Completed))

	if got, want := ComputeBalances(withZero, Actual, ref).Cash, ComputeBalances(base, Actual, ref).Cash; got != want {
		t.Errorf("zero-amount transaction changed the balance: %v vs %v", got, want)
	}
}

func TestComputeBalances_OrderIndependent(t *testing.T) {
	ref := NewDate(2025, 6, 30)
	var txs []Transaction
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		typ := Income
		if i%3 == 0 {
			typ = Expense
		}
		account := Bank
		if i%2 == 0 {
			account = Cash
		}
		txs = append(txs, tx(string(rune('a'+i%26)), NewDate(2025, 6, 1+i%28),
			int64(rng.Intn(100000)), typ, account, Completed))
	}

	want := ComputeBalances(txs, Forecast, ref)
	shuffled := make([]Transaction, len(txs))
	copy(shuffled, txs)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if got := ComputeBalances(shuffled, Forecast, ref); got != want {
		t.Errorf("balances depend on input order: %+v vs %+v", got, want)
	}
}

func TestComputeBalances_PartitionsByAccount(t *testing.T) {
	ref := NewDate(2025, 3, 15)
	txs := []Transaction{
		tx("bank-in", NewDate(2025, 3, 1), 1000, Income, Bank, Completed),
		tx("cash-in", NewDate(2025, 3, 1), 500, Income, Cash, Completed),
		tx("cash-out", NewDate(2025, 3, 2), 200, Expense, Cash, Completed),
	}
	got := ComputeBalances(txs, Actual, ref)
	if got.Bank.Cents != 1000 {
		t.Errorf("bank = %d, want 1000", got.Bank.Cents)
	}
	if got.Cash.Cents != 300 {
		t.Errorf("cash = %d, want 300", got.Cash.Cents)
	}
}
