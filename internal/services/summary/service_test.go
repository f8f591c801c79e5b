package summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/holdings/internal/common"
	"github.com/bobmcallan/holdings/internal/interfaces"
	"github.com/bobmcallan/holdings/internal/models"
	"github.com/bobmcallan/holdings/internal/services/bond"
	"github.com/bobmcallan/holdings/internal/services/stock"
	"github.com/bobmcallan/holdings/internal/storage/memory"
)

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func q(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func setup(t *testing.T) (*Service, *memory.Manager, context.Context) {
	t.Helper()
	logger := common.NewSilentLogger()
	store := memory.NewManager()
	price := func(_ context.Context, ticker string) decimal.Decimal {
		if ticker == "PETR4" {
			return q("30")
		}
		return decimal.Zero
	}
	bonds := bond.NewService(store, logger)
	stocks := stock.NewService(store, price, logger)
	svc := NewService(store, bonds, stocks, "USD", logger)

	ctx := common.WithUserContext(context.Background(), &common.UserContext{UserID: "alice"})
	require.NoError(t, store.WalletStore().CreateWallet(ctx, &models.Wallet{ID: "w1", UserID: "alice", Name: "Main"}))

	_, err := bonds.CreateBond(ctx, interfaces.CreateBondInput{
		WalletID: "w1", Name: "CDB", BuyDate: jan1, InitialValue: q("1000"),
	})
	require.NoError(t, err)
	_, err = stocks.Buy(ctx, interfaces.BuyInput{WalletID: "w1", Ticker: "PETR4", Quantity: q("10"), BuyPrice: q("20"), BuyDate: jan1})
	require.NoError(t, err)
	return svc, store, ctx
}

func TestWalletSummary(t *testing.T) {
	svc, _, ctx := setup(t)

	sum, err := svc.WalletSummary(ctx, "w1")
	require.NoError(t, err)

	assert.Equal(t, "Main", sum.Name)
	assert.Equal(t, "USD", sum.Currency)
	assert.Equal(t, 1, sum.BondCount)
	assert.Equal(t, 1, sum.PositionCount)
	assert.True(t, q("1000").Equal(sum.BondsInvested))
	assert.True(t, q("1000").Equal(sum.BondsValue))
	assert.True(t, q("200").Equal(sum.StocksCost))
	assert.True(t, q("300").Equal(sum.StocksValue))
	assert.True(t, q("100").Equal(sum.StocksProfit))
	assert.True(t, q("1300").Equal(sum.TotalValue))
	assert.True(t, q("100").Equal(sum.TotalProfit))
	assert.Equal(t, "$1,300.00", sum.Display["total_value"])
	assert.Equal(t, "$100.00", sum.Display["stocks_profit"])
}

func TestWalletSummary_UserCurrencyOverride(t *testing.T) {
	svc, store, ctx := setup(t)
	require.NoError(t, store.InternalStore().SetUserKV(ctx, "alice", DisplayCurrencyKey, "eur"))

	sum, err := svc.WalletSummary(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "EUR", sum.Currency)
	assert.Equal(t, common.FormatMoney(q("1300"), "EUR"), sum.Display["total_value"])
}

func TestWalletSummary_UnknownWallet(t *testing.T) {
	svc, _, ctx := setup(t)
	_, err := svc.WalletSummary(ctx, "nope")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}
