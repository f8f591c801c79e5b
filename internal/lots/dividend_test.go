package lots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/holdings/internal/models"
)

func TestDistributeDividend_Proportional(t *testing.T) {
	holders := []models.StockLot{lot("l1", "30", 0), lot("l2", "70", 5)}
	req := DividendRequest{Ticker: "PETR4", Amount: q("100"), Date: jan1.AddDate(0, 1, 0), Description: "JCP 2024"}

	dividends, err := DistributeDividendWithIDs(holders, req, seqIDs())
	require.NoError(t, err)

	require.Len(t, dividends, 2)
	assert.Equal(t, "l1", dividends[0].StockID)
	assert.True(t, dividends[0].Amount.Equal(q("30")))
	assert.Equal(t, "l2", dividends[1].StockID)
	assert.True(t, dividends[1].Amount.Equal(q("70")))
	for _, d := range dividends {
		assert.Equal(t, "JCP 2024", d.Description)
		assert.Equal(t, "u1", d.UserID)
		assert.Equal(t, req.Date, d.Date)
	}
}

func TestDistributeDividend_IncludesClosedLotsBoughtBeforeDate(t *testing.T) {
	sold := lot("sold", "50", 0)
	when := jan1.AddDate(0, 3, 0)
	price := q("35")
	sold.SellDate = &when
	sold.SellPrice = &price

	holders := []models.StockLot{
		sold,
		lot("open", "50", 1),
		lot("later", "100", 60),
	}
	other := lot("other", "100", 0)
	other.Ticker = "VALE3"
	holders = append(holders, other)

	req := DividendRequest{Ticker: "PETR4", Amount: q("10"), Date: jan1.AddDate(0, 0, 30), Description: "div"}

	dividends, err := DistributeDividend(holders, req)
	require.NoError(t, err)

	require.Len(t, dividends, 2)
	assert.Equal(t, "sold", dividends[0].StockID)
	assert.True(t, dividends[0].Amount.Equal(q("5")))
	assert.Equal(t, "open", dividends[1].StockID)
	assert.True(t, dividends[1].Amount.Equal(q("5")))
}

func TestDistributeDividend_BuyDateOnPaymentDateIsEligible(t *testing.T) {
	holders := []models.StockLot{lot("l1", "10", 0)}

	dividends, err := DistributeDividend(holders, DividendRequest{Ticker: "PETR4", Amount: q("1"), Date: jan1})
	require.NoError(t, err)
	assert.Len(t, dividends, 1)
}

func TestDistributeDividend_SumsExactlyToAmount(t *testing.T) {
	holders := []models.StockLot{lot("l1", "1", 0), lot("l2", "1", 1), lot("l3", "1", 2)}
	req := DividendRequest{Ticker: "PETR4", Amount: q("100"), Date: jan1.AddDate(0, 1, 0)}

	dividends, err := DistributeDividend(holders, req)
	require.NoError(t, err)

	total := q("0")
	for _, d := range dividends {
		total = total.Add(d.Amount)
	}
	assert.True(t, total.Equal(q("100")), "got %s", total)
}

func TestDistributeDividend_NoShareholders(t *testing.T) {
	holders := []models.StockLot{lot("l1", "10", 90)}

	_, err := DistributeDividend(holders, DividendRequest{Ticker: "PETR4", Amount: q("1"), Date: jan1})

	assert.ErrorIs(t, err, models.ErrNoShareholders)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDistributeDividend_RejectsNonPositiveAmount(t *testing.T) {
	holders := []models.StockLot{lot("l1", "10", 0)}

	_, err := DistributeDividend(holders, DividendRequest{Ticker: "PETR4", Amount: q("0"), Date: jan1})

	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestSameBatch(t *testing.T) {
	d := models.Dividend{Date: time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC), Description: "JCP"}

	assert.True(t, SameBatch(d, "2024-03-15", "JCP"))
	assert.False(t, SameBatch(d, "2024-03-16", "JCP"))
	assert.False(t, SameBatch(d, "2024-03-15", "jcp"))
}
