package surrealdb

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/holdings/internal/common"
	"github.com/bobmcallan/holdings/internal/models"
)

// StockStore persists lots in stock_lot and dividend payments in dividend.
// Tickers are stored upper-cased.
type StockStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewStockStore(db *surrealdb.DB, logger *common.Logger) *StockStore {
	return &StockStore{db: db, logger: logger}
}

func normTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

func (s *StockStore) CreateLot(ctx context.Context, lot *models.StockLot) error {
	rec := toLotRecord(lot)
	rec.Ticker = normTicker(rec.Ticker)

	sql := "UPSERT $rid CONTENT $lot"
	vars := map[string]any{"rid": surrealmodels.NewRecordID(tableLot, lot.ID), "lot": rec}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]lotRecord](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to create lot after retries: %w", err)
		}
	}
	return nil
}

func (s *StockStore) GetLot(ctx context.Context, userID, lotID string) (*models.StockLot, error) {
	rec, err := surrealdb.Select[lotRecord](ctx, s.db, surrealmodels.NewRecordID(tableLot, lotID))
	if err != nil && !isNotFoundError(err) {
		return nil, fmt.Errorf("failed to select lot: %w", err)
	}
	if rec == nil || rec.LotID == "" || rec.UserID != userID {
		return nil, fmt.Errorf("lot %s: %w", lotID, models.ErrNotFound)
	}
	return rec.toModel()
}

func (s *StockStore) ListLots(ctx context.Context, userID, walletID, ticker string) ([]*models.StockLot, error) {
	sql := "SELECT * FROM stock_lot WHERE user_id = $user_id AND wallet_id = $wallet_id"
	vars := map[string]any{"user_id": userID, "wallet_id": walletID}
	if ticker != "" {
		sql += " AND ticker = $ticker"
		vars["ticker"] = normTicker(ticker)
	}
	sql += " ORDER BY ticker ASC, buy_date ASC, created_at ASC"
	return s.queryLots(ctx, sql, vars)
}

func (s *StockStore) ListOpenLots(ctx context.Context, userID, walletID, ticker string) ([]*models.StockLot, error) {
	sql := `SELECT * FROM stock_lot
		WHERE user_id = $user_id AND wallet_id = $wallet_id AND ticker = $ticker AND open = true
		ORDER BY buy_date ASC, created_at ASC`
	vars := map[string]any{"user_id": userID, "wallet_id": walletID, "ticker": normTicker(ticker)}

	lots, err := s.queryLots(ctx, sql, vars)
	if err != nil {
		return nil, err
	}
	// Database ordering of equal datetimes is not guaranteed stable.
	slices.SortStableFunc(lots, func(a, b *models.StockLot) int {
		return a.BuyDate.Compare(b.BuyDate)
	})
	return lots, nil
}

func (s *StockStore) ListLotsByTicker(ctx context.Context, userID, ticker string) ([]*models.StockLot, error) {
	sql := "SELECT * FROM stock_lot WHERE user_id = $user_id AND ticker = $ticker ORDER BY buy_date ASC, created_at ASC"
	vars := map[string]any{"user_id": userID, "ticker": normTicker(ticker)}
	return s.queryLots(ctx, sql, vars)
}

func (s *StockStore) queryLots(ctx context.Context, sql string, vars map[string]any) ([]*models.StockLot, error) {
	results, err := surrealdb.Query[[]lotRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to query lots: %w", err)
	}

	rows := firstResult(results)
	lots := make([]*models.StockLot, 0, len(rows))
	for _, r := range rows {
		lot, err := r.toModel()
		if err != nil {
			return nil, err
		}
		lots = append(lots, lot)
	}
	return lots, nil
}

// ApplySale writes every updated lot and every split lot in one transaction.
// Lots belonging to another user are rejected before anything is written.
func (s *StockStore) ApplySale(ctx context.Context, userID string, result *models.SaleResult) error {
	tx := newTx()
	for _, group := range [][]models.StockLot{result.UpdatedLots, result.NewLots} {
		for i := range group {
			lot := &group[i]
			if lot.UserID != userID {
				return fmt.Errorf("lot %s: %w", lot.ID, models.ErrNotFound)
			}
			rec := toLotRecord(lot)
			rec.Ticker = normTicker(rec.Ticker)
			tx.upsert(tableLot, lot.ID, rec)
		}
	}
	if err := tx.commit(ctx, s.db); err != nil {
		return fmt.Errorf("failed to apply sale: %w", err)
	}
	return nil
}

// CreateDividends writes a whole distribution batch in one transaction.
func (s *StockStore) CreateDividends(ctx context.Context, dividends []models.Dividend) error {
	tx := newTx()
	for i := range dividends {
		rec := toDividendRecord(&dividends[i])
		rec.Ticker = normTicker(rec.Ticker)
		tx.upsert(tableDividend, dividends[i].ID, rec)
	}
	if err := tx.commit(ctx, s.db); err != nil {
		return fmt.Errorf("failed to create dividends: %w", err)
	}
	return nil
}

func (s *StockStore) ListDividends(ctx context.Context, userID, ticker string) ([]*models.Dividend, error) {
	sql := "SELECT * FROM dividend WHERE user_id = $user_id"
	vars := map[string]any{"user_id": userID}
	if ticker != "" {
		sql += " AND ticker = $ticker"
		vars["ticker"] = normTicker(ticker)
	}
	sql += " ORDER BY date DESC, created_at ASC"

	results, err := surrealdb.Query[[]dividendRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list dividends: %w", err)
	}

	rows := firstResult(results)
	out := make([]*models.Dividend, 0, len(rows))
	for _, r := range rows {
		d, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *StockStore) DeleteDividendBatch(ctx context.Context, userID, day, description string) (int, error) {
	sql := "DELETE dividend WHERE user_id = $user_id AND day = $day AND description = $description RETURN BEFORE"
	vars := map[string]any{"user_id": userID, "day": day, "description": description}

	results, err := surrealdb.Query[[]dividendRecord](ctx, s.db, sql, vars)
	if err != nil {
		return 0, fmt.Errorf("failed to delete dividend batch: %w", err)
	}
	return len(firstResult(results)), nil
}
