// Package ledger derives the financial position of a bond from its
// transaction history.
package ledger

import (
	"math"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/holdings/internal/models"
)

// DaysPerMonth is the fixed month length used for holding periods.
// Calendar months are deliberately not used.
const DaysPerMonth = 30

// CalculateBondTotals computes the totals of bond as of now.
func CalculateBondTotals(bond *models.Bond) models.BondTotals {
	return CalculateBondTotalsAt(bond, time.Now())
}

// CalculateBondTotalsAt computes the totals of bond. now is only used as the
// end of the holding period when the bond has no transactions.
// The bond's transaction slice is not modified.
func CalculateBondTotalsAt(bond *models.Bond, now time.Time) models.BondTotals {
	txs := SortTransactions(bond.Transactions)

	var (
		invested   = decimal.Zero
		current    = decimal.Zero
		rescued    = decimal.Zero
		liquidated bool
	)

	for _, tx := range txs {
		switch tx.Type {
		case models.TxInvestment:
			invested = invested.Add(tx.TransactionValue)
			current = current.Add(tx.TransactionValue)
		case models.TxCorrection:
			current = current.Add(tx.TransactionValue)
		case models.TxRescue:
			rescued = rescued.Add(tx.TransactionValue)
			current = current.Sub(tx.TransactionValue)
		case models.TxLiquidation:
			current = tx.CurrentValue
			liquidated = true
		}
	}

	totals := models.BondTotals{
		TotalInvested: invested,
		CurrentValue:  current,
		TotalRescued:  rescued,
		Profit:        current.Sub(invested).Add(rescued),
		IsLiquidated:  liquidated,
	}

	end := now
	if len(txs) > 0 {
		end = txs[len(txs)-1].Date
	}
	totals.HoldingMonths = HoldingMonths(bond.BuyDate, end)

	if invested.IsZero() {
		return totals
	}

	pct := totals.Profit.Div(invested).InexactFloat64()
	totals.ProfitPercentage = &pct
	totals.ProfitPercentageMonthly = MonthlyRate(pct, totals.HoldingMonths)
	totals.ProfitPercentageAnnual = AnnualRate(totals.ProfitPercentageMonthly)

	return totals
}

// SortTransactions returns a copy of txs stable-sorted by date ascending.
// Transactions sharing a date keep their original relative order.
func SortTransactions(txs []models.Transaction) []models.Transaction {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b models.Transaction) int {
		return a.Date.Compare(b.Date)
	})
	return sorted
}

// HoldingMonths returns the whole days between from and to divided by DaysPerMonth.
// The result is negative when to precedes from.
func HoldingMonths(from, to time.Time) float64 {
	days := math.Trunc(to.Sub(from).Hours() / 24)
	return days / DaysPerMonth
}

// MonthlyRate converts a total-period return into the effective monthly rate
// over months: (1+total)^(1/months) - 1. A non-positive period yields 0, and a
// loss of the whole capital or more yields -1.
func MonthlyRate(total, months float64) float64 {
	if months <= 0 {
		return 0
	}
	base := 1 + total
	if base <= 0 {
		return -1
	}
	return math.Pow(base, 1/months) - 1
}

// AnnualRate compounds a monthly rate over twelve months.
func AnnualRate(monthly float64) float64 {
	if monthly <= -1 {
		return -1
	}
	return math.Pow(1+monthly, 12) - 1
}
