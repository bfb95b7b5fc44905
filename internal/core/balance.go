package core

// Mode selects which transactions contribute to a balance figure.
type Mode string

const (
	// Actual counts settled movements only: "what do I have right now".
	Actual Mode = "actual"
	// Forecast counts every movement scheduled in the period regardless of
	// settlement: "what will I have at period end if everything clears".
	Forecast Mode = "forecast"
)

// Balances is the aggregated view over the two accounts, plus the income and
// expense subtotals for the reference month.
type Balances struct {
	Bank    Money `json:"bankBalance"`
	Cash    Money `json:"cashBalance"`
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
}

// ComputeBalances folds transactions into per-account running totals.
//
// Transactions dated in months after the reference month never contribute in
// either mode. In Actual mode pending entries are ignored entirely. The
// Income/Expense subtotals cover only the reference calendar month, under the
// same mode rules. Addition is over integer cents, so the result is exact and
// independent of input order.
func ComputeBalances(transactions []Transaction, mode Mode, reference Date) Balances {
	refMonth := reference.Month()
	var b Balances
	for _, t := range transactions {
		txMonth := t.Date.Month()
		if txMonth.After(refMonth) {
			continue
		}
		if mode == Actual && t.Status != Completed {
			continue
		}
		signed := t.Signed()
		switch t.Account {
		case Bank:
			b.Bank.Cents += signed
		case Cash:
			b.Cash.Cents += signed
		}
		if txMonth == refMonth {
			switch t.Type {
			case Income:
				b.Income.Cents += t.Amount.Cents
			case Expense:
				b.Expense.Cents += t.Amount.Cents
			}
		}
	}
	return b
}
