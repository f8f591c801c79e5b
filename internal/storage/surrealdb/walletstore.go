package surrealdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/holdings/internal/common"
	"github.com/bobmcallan/holdings/internal/models"
)

// WalletStore persists wallets in the wallet table.
type WalletStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewWalletStore(db *surrealdb.DB, logger *common.Logger) *WalletStore {
	return &WalletStore{db: db, logger: logger}
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *WalletStore) CreateWallet(ctx context.Context, wallet *models.Wallet) error {
	return s.save(ctx, wallet)
}

func (s *WalletStore) UpdateWallet(ctx context.Context, wallet *models.Wallet) error {
	if _, err := s.GetWallet(ctx, wallet.UserID, wallet.ID); err != nil {
		return err
	}
	return s.save(ctx, wallet)
}

func (s *WalletStore) save(ctx context.Context, wallet *models.Wallet) error {
	sql := "UPSERT $rid CONTENT $wallet"
	vars := map[string]any{
		"rid":    surrealmodels.NewRecordID(tableWallet, wallet.ID),
		"wallet": toWalletRecord(wallet),
	}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]walletRecord](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to save wallet after retries: %w", err)
		}
	}
	return nil
}

func (s *WalletStore) GetWallet(ctx context.Context, userID, walletID string) (*models.Wallet, error) {
	rec, err := surrealdb.Select[walletRecord](ctx, s.db, surrealmodels.NewRecordID(tableWallet, walletID))
	if err != nil && !isNotFoundError(err) {
		return nil, fmt.Errorf("failed to select wallet: %w", err)
	}
	// Another user's wallet is reported as missing.
	if rec == nil || rec.WalletID == "" || rec.UserID != userID {
		return nil, fmt.Errorf("wallet %s: %w", walletID, models.ErrNotFound)
	}
	return rec.toModel(), nil
}

func (s *WalletStore) ListWallets(ctx context.Context, userID string) ([]*models.Wallet, error) {
	sql := "SELECT * FROM wallet WHERE user_id = $user_id ORDER BY name_key ASC"
	vars := map[string]any{"user_id": userID}

	results, err := surrealdb.Query[[]walletRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}

	rows := firstResult(results)
	wallets := make([]*models.Wallet, 0, len(rows))
	for _, r := range rows {
		wallets = append(wallets, r.toModel())
	}
	return wallets, nil
}

func (s *WalletStore) DeleteWallet(ctx context.Context, userID, walletID string) error {
	if _, err := s.GetWallet(ctx, userID, walletID); err != nil {
		return err
	}
	if _, err := surrealdb.Delete[walletRecord](ctx, s.db, surrealmodels.NewRecordID(tableWallet, walletID)); err != nil {
		return fmt.Errorf("failed to delete wallet: %w", err)
	}
	return nil
}

func (s *WalletStore) WalletExists(ctx context.Context, userID, walletID string) (bool, error) {
	_, err := s.GetWallet(ctx, userID, walletID)
	if err == nil {
		return true, nil
	}
	if isModelNotFound(err) {
		return false, nil
	}
	return false, err
}
