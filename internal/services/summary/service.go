// Package summary totals a wallet across its bonds and stock positions
package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/holdings/internal/common"
	"github.com/bobmcallan/holdings/internal/interfaces"
	"github.com/bobmcallan/holdings/internal/models"
)

// Compile-time interface check
var _ interfaces.SummaryService = (*Service)(nil)

// DisplayCurrencyKey is the per-user setting that overrides the configured display currency.
const DisplayCurrencyKey = "display_currency"

// Service implements SummaryService
type Service struct {
	storage  interfaces.StorageManager
	bonds    interfaces.BondService
	stocks   interfaces.StockService
	currency string
	logger   *common.Logger
	now      func() time.Time
}

// NewService creates a new summary service. currency is the default
// display currency for formatted totals.
func NewService(storage interfaces.StorageManager, bonds interfaces.BondService, stocks interfaces.StockService, currency string, logger *common.Logger) *Service {
	return &Service{
		storage:  storage,
		bonds:    bonds,
		stocks:   stocks,
		currency: currency,
		logger:   logger,
		now:      time.Now,
	}
}

// displayCurrency returns the user's preferred currency when set and known.
func (s *Service) displayCurrency(ctx context.Context, userID string) string {
	kv, err := s.storage.InternalStore().GetUserKV(ctx, userID, DisplayCurrencyKey)
	if err == nil && kv != nil {
		code := strings.ToUpper(strings.TrimSpace(kv.Value))
		if common.IsKnownCurrency(code) {
			return code
		}
	}
	return s.currency
}

// WalletSummary computes the totals of one wallet.
func (s *Service) WalletSummary(ctx context.Context, walletID string) (*models.WalletSummary, error) {
	userID := common.ResolveUserID(ctx)

	wallet, err := s.storage.WalletStore().GetWallet(ctx, userID, walletID)
	if err != nil {
		return nil, err
	}

	bonds, err := s.bonds.ListBonds(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bonds: %w", err)
	}
	positions, err := s.stocks.Positions(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute positions: %w", err)
	}

	sum := &models.WalletSummary{
		WalletID:    wallet.ID,
		Name:        wallet.Name,
		Currency:    s.displayCurrency(ctx, userID),
		BondCount:   len(bonds),
		GeneratedAt: s.now(),
	}

	for _, b := range bonds {
		sum.BondsInvested = sum.BondsInvested.Add(b.Totals.TotalInvested)
		sum.BondsValue = sum.BondsValue.Add(b.Totals.CurrentValue)
		sum.BondsProfit = sum.BondsProfit.Add(b.Totals.Profit)
	}

	for _, p := range positions {
		if p.OpenQuantity.IsPositive() {
			sum.PositionCount++
		}
		sum.StocksCost = sum.StocksCost.Add(p.Cost)
		sum.StocksValue = sum.StocksValue.Add(p.MarketValue)
		sum.StocksProfit = sum.StocksProfit.Add(p.UnrealizedGain).Add(p.RealizedGain)
		sum.Dividends = sum.Dividends.Add(p.Dividends)
	}

	sum.TotalValue = sum.BondsValue.Add(sum.StocksValue)
	sum.TotalProfit = sum.BondsProfit.Add(sum.StocksProfit).Add(sum.Dividends)
	sum.Display = display(sum)

	s.logger.Debug().
		Str("wallet_id", walletID).
		Int("bonds", sum.BondCount).
		Int("positions", sum.PositionCount).
		Str("total_value", sum.TotalValue.String()).
		Msg("Wallet summary computed")

	return sum, nil
}

func display(sum *models.WalletSummary) map[string]string {
	fields := map[string]decimal.Decimal{
		"bonds_invested": sum.BondsInvested,
		"bonds_value":    sum.BondsValue,
		"bonds_profit":   sum.BondsProfit,
		"stocks_cost":    sum.StocksCost,
		"stocks_value":   sum.StocksValue,
		"stocks_profit":  sum.StocksProfit,
		"dividends":      sum.Dividends,
		"total_value":    sum.TotalValue,
		"total_profit":   sum.TotalProfit,
	}
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = common.FormatMoney(v, sum.Currency)
	}
	return out
}
