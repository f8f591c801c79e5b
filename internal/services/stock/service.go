// Package stock manages stock lots, FIFO sales and dividend distribution
package stock

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/holdings/internal/common"
	"github.com/bobmcallan/holdings/internal/interfaces"
	"github.com/bobmcallan/holdings/internal/lots"
	"github.com/bobmcallan/holdings/internal/models"
)

// Compile-time interface check
var _ interfaces.StockService = (*Service)(nil)

// Service implements StockService.
// Sales are serialised per (user, wallet, ticker) and dividend writes per
// (user, ticker) so concurrent requests never read the same open lots.
type Service struct {
	storage interfaces.StorageManager
	price   interfaces.PriceFunc
	logger  *common.Logger
	locks   *keyedMutex
	now     func() time.Time
}

// NewService creates a new stock service. price may be nil, in which case
// positions are valued at zero.
func NewService(storage interfaces.StorageManager, price interfaces.PriceFunc, logger *common.Logger) *Service {
	if price == nil {
		price = func(context.Context, string) decimal.Decimal { return decimal.Zero }
	}
	return &Service{
		storage: storage,
		price:   price,
		logger:  logger,
		locks:   newKeyedMutex(),
		now:     time.Now,
	}
}

func normTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

func (s *Service) requireWallet(ctx context.Context, userID, walletID string) error {
	exists, err := s.storage.WalletStore().WalletExists(ctx, userID, walletID)
	if err != nil {
		return fmt.Errorf("failed to check wallet: %w", err)
	}
	if !exists {
		return fmt.Errorf("wallet %s: %w", walletID, models.ErrNotFound)
	}
	return nil
}

func deref(in []*models.StockLot) []models.StockLot {
	out := make([]models.StockLot, 0, len(in))
	for _, l := range in {
		out = append(out, *l)
	}
	return out
}

// Buy records a new open lot.
func (s *Service) Buy(ctx context.Context, in interfaces.BuyInput) (*models.StockLot, error) {
	userID := common.ResolveUserID(ctx)

	ticker := normTicker(in.Ticker)
	if ticker == "" {
		return nil, models.NewValidationError("ticker", "ticker is required")
	}
	if !in.Quantity.IsPositive() {
		return nil, models.NewValidationError("quantity", "quantity must be greater than zero")
	}
	if in.BuyPrice.IsNegative() {
		return nil, models.NewValidationError("buy_price", "buy price must not be negative")
	}
	if in.BuyDate.IsZero() {
		return nil, models.NewValidationError("buy_date", "buy date is required")
	}
	if err := s.requireWallet(ctx, userID, in.WalletID); err != nil {
		return nil, err
	}

	now := s.now()
	lot := &models.StockLot{
		ID:         uuid.New().String(),
		UserID:     userID,
		WalletID:   in.WalletID,
		Ticker:     ticker,
		Name:       strings.TrimSpace(in.Name),
		Type:       strings.TrimSpace(in.Type),
		Quantity:   in.Quantity,
		BuyPrice:   in.BuyPrice,
		BuyDate:    in.BuyDate,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if err := s.storage.StockStore().CreateLot(ctx, lot); err != nil {
		return nil, fmt.Errorf("failed to create lot: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("wallet_id", lot.WalletID).
		Str("ticker", ticker).
		Str("quantity", lot.Quantity.String()).
		Msg("Stock lot bought")
	return lot, nil
}

// Sell closes open lots FIFO and persists the outcome atomically.
func (s *Service) Sell(ctx context.Context, req models.SaleRequest) (*models.SaleResult, error) {
	userID := common.ResolveUserID(ctx)

	req.Ticker = normTicker(req.Ticker)
	if req.Ticker == "" {
		return nil, models.NewValidationError("ticker", "ticker is required")
	}
	if err := s.requireWallet(ctx, userID, req.WalletID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(tickerKey(userID, req.Ticker))
	defer unlock()

	open, err := s.storage.StockStore().ListOpenLots(ctx, userID, req.WalletID, req.Ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to load open lots: %w", err)
	}

	result, err := lots.Sell(deref(open), req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for i := range result.UpdatedLots {
		result.UpdatedLots[i].ModifiedAt = now
	}
	for i := range result.NewLots {
		result.NewLots[i].CreatedAt = now
		result.NewLots[i].ModifiedAt = now
	}

	if err := s.storage.StockStore().ApplySale(ctx, userID, result); err != nil {
		return nil, fmt.Errorf("failed to apply sale: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("wallet_id", req.WalletID).
		Str("ticker", req.Ticker).
		Bool("total", req.IsTotal).
		Str("sold", result.SoldQuantity().String()).
		Int("split_lots", len(result.NewLots)).
		Msg("Stock sale applied")
	return result, nil
}

// ListLots returns the wallet's lots, optionally for one ticker.
func (s *Service) ListLots(ctx context.Context, walletID, ticker string) ([]*models.StockLot, error) {
	userID := common.ResolveUserID(ctx)
	if err := s.requireWallet(ctx, userID, walletID); err != nil {
		return nil, err
	}
	return s.storage.StockStore().ListLots(ctx, userID, walletID, normTicker(ticker))
}

// Positions aggregates the wallet's lots per ticker, ordered by ticker.
// Fully sold tickers are kept for their realised profit.
func (s *Service) Positions(ctx context.Context, walletID string) ([]models.StockPosition, error) {
	userID := common.ResolveUserID(ctx)
	if err := s.requireWallet(ctx, userID, walletID); err != nil {
		return nil, err
	}

	all, err := s.storage.StockStore().ListLots(ctx, userID, walletID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}
	if len(all) == 0 {
		return []models.StockPosition{}, nil
	}

	dividends, err := s.storage.StockStore().ListDividends(ctx, userID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list dividends: %w", err)
	}
	paid := make(map[string]decimal.Decimal, len(dividends))
	for _, d := range dividends {
		paid[d.StockID] = paid[d.StockID].Add(d.Amount)
	}

	byTicker := make(map[string]*models.StockPosition)
	for _, l := range all {
		p, ok := byTicker[l.Ticker]
		if !ok {
			p = &models.StockPosition{Ticker: l.Ticker}
			byTicker[l.Ticker] = p
		}
		if l.Name != "" {
			p.Name = l.Name
		}
		if l.Type != "" {
			p.Type = l.Type
		}
		if l.IsOpen() {
			p.OpenQuantity = p.OpenQuantity.Add(l.Quantity)
			p.OpenLots++
			p.Cost = p.Cost.Add(l.Cost())
		} else {
			p.RealizedGain = p.RealizedGain.Add(l.RealizedProfit())
		}
		p.Dividends = p.Dividends.Add(paid[l.ID])
	}

	positions := make([]models.StockPosition, 0, len(byTicker))
	for _, p := range byTicker {
		if p.OpenQuantity.IsPositive() {
			p.AverageBuyPrice = p.Cost.Div(p.OpenQuantity)
			p.CurrentPrice = s.price(ctx, p.Ticker)
			p.MarketValue = p.CurrentPrice.Mul(p.OpenQuantity)
			if p.CurrentPrice.IsPositive() {
				p.UnrealizedGain = p.MarketValue.Sub(p.Cost)
				if p.Cost.IsPositive() {
					pct := p.UnrealizedGain.Div(p.Cost).InexactFloat64()
					p.UnrealizedPct = &pct
				}
			}
		}
		positions = append(positions, *p)
	}
	slices.SortFunc(positions, func(a, b models.StockPosition) int {
		return strings.Compare(a.Ticker, b.Ticker)
	})
	return positions, nil
}

// DistributeDividend splits a dividend across every lot of the ticker the
// user held on the payment date, in any wallet.
func (s *Service) DistributeDividend(ctx context.Context, req lots.DividendRequest) ([]models.Dividend, error) {
	userID := common.ResolveUserID(ctx)

	req.Ticker = normTicker(req.Ticker)
	if req.Ticker == "" {
		return nil, models.NewValidationError("ticker", "ticker is required")
	}
	req.Description = strings.TrimSpace(req.Description)

	unlock := s.locks.Lock(tickerKey(userID, req.Ticker))
	defer unlock()

	held, err := s.storage.StockStore().ListLotsByTicker(ctx, userID, req.Ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to load lots: %w", err)
	}

	dividends, err := lots.DistributeDividend(deref(held), req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for i := range dividends {
		dividends[i].CreatedAt = now
	}

	if err := s.storage.StockStore().CreateDividends(ctx, dividends); err != nil {
		return nil, fmt.Errorf("failed to store dividends: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("ticker", req.Ticker).
		Str("amount", req.Amount.String()).
		Int("records", len(dividends)).
		Msg("Dividend distributed")
	return dividends, nil
}

// ListDividends returns the user's dividends, newest first.
func (s *Service) ListDividends(ctx context.Context, ticker string) ([]*models.Dividend, error) {
	return s.storage.StockStore().ListDividends(ctx, common.ResolveUserID(ctx), normTicker(ticker))
}

// ReverseDividend deletes every dividend of the user paid on the calendar
// day of date with the given description, and returns how many were removed.
func (s *Service) ReverseDividend(ctx context.Context, date time.Time, description string) (int, error) {
	userID := common.ResolveUserID(ctx)
	if date.IsZero() {
		return 0, models.NewValidationError("date", "date is required")
	}

	day := common.DayKey(date)
	n, err := s.storage.StockStore().DeleteDividendBatch(ctx, userID, day, strings.TrimSpace(description))
	if err != nil {
		return 0, fmt.Errorf("failed to reverse dividend: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("dividend batch %s %q: %w", day, description, models.ErrNotFound)
	}

	s.logger.Info().Str("user_id", userID).Str("day", day).Int("removed", n).Msg("Dividend batch reversed")
	return n, nil
}
