package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/holdings/internal/models"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func at(days int) time.Time {
	return day0.AddDate(0, 0, days)
}

func tx(days int, typ models.TransactionType, value string) models.Transaction {
	return models.Transaction{Date: at(days), Type: typ, TransactionValue: d(value)}
}

func liquidation(days int, current string) models.Transaction {
	return models.Transaction{Date: at(days), Type: models.TxLiquidation, CurrentValue: d(current)}
}

func newBond(txs ...models.Transaction) *models.Bond {
	return &models.Bond{ID: "b1", Name: "CDB", BuyDate: day0, Transactions: txs}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "%s: expected %s, got %s", field, want, got)
}

func TestCalculateBondTotals_RescueExample(t *testing.T) {
	bond := newBond(
		tx(0, models.TxInvestment, "1000"),
		tx(30, models.TxRescue, "200"),
	)

	totals := CalculateBondTotalsAt(bond, at(365))

	assertDecimal(t, "1000", totals.TotalInvested, "total_invested")
	assertDecimal(t, "200", totals.TotalRescued, "total_rescued")
	assertDecimal(t, "800", totals.CurrentValue, "current_value")
	assertDecimal(t, "0", totals.Profit, "profit")
	assert.False(t, totals.IsLiquidated)

	pct, err := totals.Percentage()
	require.NoError(t, err)
	assert.Equal(t, 0.0, pct)
	assert.Equal(t, 1.0, totals.HoldingMonths)
	assert.InDelta(t, 0.0, totals.ProfitPercentageMonthly, 1e-12)
}

func TestCalculateBondTotals_LiquidationExample(t *testing.T) {
	bond := newBond(
		tx(0, models.TxInvestment, "1000"),
		liquidation(60, "1100"),
	)

	totals := CalculateBondTotalsAt(bond, at(365))

	assertDecimal(t, "1100", totals.CurrentValue, "current_value")
	assertDecimal(t, "100", totals.Profit, "profit")
	assert.True(t, totals.IsLiquidated)

	pct, err := totals.Percentage()
	require.NoError(t, err)
	assert.InDelta(t, 0.1, pct, 1e-12)
	assert.Equal(t, 2.0, totals.HoldingMonths)
	assert.InDelta(t, math.Sqrt(1.1)-1, totals.ProfitPercentageMonthly, 1e-12)
	assert.InDelta(t, math.Pow(1.1, 6)-1, totals.ProfitPercentageAnnual, 1e-9)
}

func TestCalculateBondTotals_Correction(t *testing.T) {
	bond := newBond(
		tx(0, models.TxInvestment, "1000"),
		tx(10, models.TxCorrection, "-50.25"),
		tx(20, models.TxCorrection, "75.50"),
	)

	totals := CalculateBondTotalsAt(bond, at(365))

	assertDecimal(t, "1000", totals.TotalInvested, "total_invested")
	assertDecimal(t, "1025.25", totals.CurrentValue, "current_value")
	assertDecimal(t, "0", totals.TotalRescued, "total_rescued")
	assertDecimal(t, "25.25", totals.Profit, "profit")
}

func TestCalculateBondTotals_Empty(t *testing.T) {
	totals := CalculateBondTotalsAt(newBond(), at(90))

	assert.True(t, totals.TotalInvested.IsZero())
	assert.True(t, totals.CurrentValue.IsZero())
	assert.True(t, totals.TotalRescued.IsZero())
	assert.True(t, totals.Profit.IsZero())
	assert.Nil(t, totals.ProfitPercentage)
	assert.Equal(t, 0.0, totals.ProfitPercentageMonthly)
	assert.Equal(t, 0.0, totals.ProfitPercentageAnnual)
	assert.Equal(t, 3.0, totals.HoldingMonths, "holding period runs to now without transactions")

	_, err := totals.Percentage()
	assert.ErrorIs(t, err, models.ErrUndefinedReturn)
}

func TestCalculateBondTotals_ZeroInvestmentIsUndefined(t *testing.T) {
	bond := newBond(tx(5, models.TxCorrection, "10"))

	totals := CalculateBondTotalsAt(bond, at(90))

	assertDecimal(t, "10", totals.CurrentValue, "current_value")
	assertDecimal(t, "10", totals.Profit, "profit")
	assert.Nil(t, totals.ProfitPercentage)
	assert.Equal(t, 0.0, totals.ProfitPercentageMonthly)
}

func TestCalculateBondTotals_SameDayHasNoMonthlyRate(t *testing.T) {
	bond := newBond(
		tx(0, models.TxInvestment, "1000"),
		tx(0, models.TxCorrection, "10"),
	)

	totals := CalculateBondTotalsAt(bond, at(90))

	require.NotNil(t, totals.ProfitPercentage)
	assert.InDelta(t, 0.01, *totals.ProfitPercentage, 1e-12)
	assert.Equal(t, 0.0, totals.HoldingMonths)
	assert.Equal(t, 0.0, totals.ProfitPercentageMonthly)
}

func TestCalculateBondTotals_LiquidationNotLastIsHonoured(t *testing.T) {
	bond := newBond(
		tx(0, models.TxInvestment, "1000"),
		liquidation(30, "1200"),
		tx(60, models.TxRescue, "1200"),
	)

	totals := CalculateBondTotalsAt(bond, at(365))

	assertDecimal(t, "0", totals.CurrentValue, "current_value")
	assertDecimal(t, "1200", totals.TotalRescued, "total_rescued")
	assertDecimal(t, "200", totals.Profit, "profit")
	assert.True(t, totals.IsLiquidated)
}

func TestCalculateBondTotals_OutOfOrderInput(t *testing.T) {
	// The liquidation override precedes the correction once sorted.
	bond := newBond(
		tx(90, models.TxCorrection, "5"),
		liquidation(60, "1100"),
		tx(0, models.TxInvestment, "1000"),
	)

	totals := CalculateBondTotalsAt(bond, at(365))

	assertDecimal(t, "1105", totals.CurrentValue, "current_value")
	assertDecimal(t, "105", totals.Profit, "profit")
	assert.Equal(t, 3.0, totals.HoldingMonths)
	assert.Equal(t, 90, int(bond.Transactions[0].Date.Sub(day0).Hours()/24), "input must not be reordered")
}

func TestCalculateBondTotals_SortInvariance(t *testing.T) {
	txs := []models.Transaction{
		tx(0, models.TxInvestment, "1000"),
		tx(15, models.TxInvestment, "500"),
		tx(31, models.TxCorrection, "42.17"),
		tx(45, models.TxRescue, "300"),
		liquidation(75, "1400"),
		tx(80, models.TxCorrection, "-3"),
	}
	want := CalculateBondTotalsAt(newBond(txs...), at(365))

	permutations := [][]int{
		{5, 4, 3, 2, 1, 0},
		{2, 0, 4, 1, 5, 3},
		{1, 3, 5, 0, 2, 4},
	}
	for _, perm := range permutations {
		shuffled := make([]models.Transaction, len(txs))
		for i, j := range perm {
			shuffled[i] = txs[j]
		}
		got := CalculateBondTotalsAt(newBond(shuffled...), at(365))

		assert.True(t, want.TotalInvested.Equal(got.TotalInvested))
		assert.True(t, want.CurrentValue.Equal(got.CurrentValue))
		assert.True(t, want.TotalRescued.Equal(got.TotalRescued))
		assert.True(t, want.Profit.Equal(got.Profit))
		require.NotNil(t, got.ProfitPercentage)
		assert.Equal(t, *want.ProfitPercentage, *got.ProfitPercentage)
		assert.Equal(t, want.ProfitPercentageMonthly, got.ProfitPercentageMonthly)
		assert.Equal(t, want.IsLiquidated, got.IsLiquidated)
	}
}

func TestCalculateBondTotals_ProfitIdentity(t *testing.T) {
	cases := [][]models.Transaction{
		{tx(0, models.TxInvestment, "100")},
		{tx(0, models.TxInvestment, "100"), tx(1, models.TxRescue, "150")},
		{tx(0, models.TxInvestment, "0.01"), tx(3, models.TxCorrection, "-0.02")},
		{tx(0, models.TxInvestment, "999.99"), liquidation(40, "0"), tx(41, models.TxInvestment, "1")},
	}
	for i, txs := range cases {
		totals := CalculateBondTotalsAt(newBond(txs...), at(365))
		want := totals.CurrentValue.Sub(totals.TotalInvested).Add(totals.TotalRescued)
		assert.True(t, want.Equal(totals.Profit), "case %d", i)
	}
}

func TestSortTransactions_StableOnEqualDates(t *testing.T) {
	a := models.Transaction{ID: "a", Date: at(1)}
	b := models.Transaction{ID: "b", Date: at(1)}
	c := models.Transaction{ID: "c", Date: at(0)}

	sorted := SortTransactions([]models.Transaction{a, b, c})

	ids := []string{sorted[0].ID, sorted[1].ID, sorted[2].ID}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestMonthlyRate(t *testing.T) {
	tests := []struct {
		name   string
		total  float64
		months float64
		want   float64
	}{
		{"zero months", 0.5, 0, 0},
		{"negative months", 0.5, -1, 0},
		{"one month", 0.05, 1, 0.05},
		{"twelve months", math.Pow(1.01, 12) - 1, 12, 0.01},
		{"total loss", -1, 6, -1},
		{"worse than total loss", -1.5, 6, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MonthlyRate(tt.total, tt.months), 1e-12)
		})
	}
}

func TestHoldingMonths_TruncatesPartialDays(t *testing.T) {
	assert.Equal(t, 1.0, HoldingMonths(day0, at(30).Add(23*time.Hour)))
	assert.Equal(t, 0.5, HoldingMonths(day0, at(15)))
}
