// Package surrealdb implements holdings storage on SurrealDB.
package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/bobmcallan/holdings/internal/common"
	"github.com/bobmcallan/holdings/internal/interfaces"
)

// Table names.
const (
	tableUser        = "user"
	tableUserKV      = "user_kv"
	tableWallet      = "wallet"
	tableBond        = "bond"
	tableTransaction = "bond_transaction"
	tableLot         = "stock_lot"
	tableDividend    = "dividend"
)

// schema is applied on every start; all statements are idempotent.
var schema = []string{
	"DEFINE TABLE IF NOT EXISTS " + tableUser + " SCHEMALESS",
	"DEFINE TABLE IF NOT EXISTS " + tableUserKV + " SCHEMALESS",
	"DEFINE TABLE IF NOT EXISTS " + tableWallet + " SCHEMALESS",
	"DEFINE TABLE IF NOT EXISTS " + tableBond + " SCHEMALESS",
	"DEFINE TABLE IF NOT EXISTS " + tableTransaction + " SCHEMALESS",
	"DEFINE TABLE IF NOT EXISTS " + tableLot + " SCHEMALESS",
	"DEFINE TABLE IF NOT EXISTS " + tableDividend + " SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS wallet_user ON " + tableWallet + " FIELDS user_id",
	"DEFINE INDEX IF NOT EXISTS bond_user_wallet ON " + tableBond + " FIELDS user_id, wallet_id",
	"DEFINE INDEX IF NOT EXISTS tx_bond ON " + tableTransaction + " FIELDS bond_id",
	"DEFINE INDEX IF NOT EXISTS lot_user_wallet_ticker ON " + tableLot + " FIELDS user_id, wallet_id, ticker",
	"DEFINE INDEX IF NOT EXISTS dividend_user_day ON " + tableDividend + " FIELDS user_id, day",
}

// Manager implements interfaces.StorageManager using SurrealDB.
type Manager struct {
	db     *surrealdb.DB
	logger *common.Logger

	internalStore *InternalStore
	walletStore   *WalletStore
	bondStore     *BondStore
	stockStore    *StockStore
}

// NewManager creates a new StorageManager connected to SurrealDB.
func NewManager(ctx context.Context, logger *common.Logger, config *common.Config) (*Manager, error) {
	db, err := surrealdb.New(config.Storage.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Storage.Username,
		"pass": config.Storage.Password,
	}); err != nil {
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Storage.Namespace, config.Storage.Database); err != nil {
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	if err := ApplySchema(ctx, db); err != nil {
		return nil, err
	}

	m := NewManagerFromDB(db, logger)

	logger.Info().
		Str("address", config.Storage.Address).
		Str("namespace", config.Storage.Namespace).
		Str("database", config.Storage.Database).
		Msg("SurrealDB storage manager initialized")

	return m, nil
}

// NewManagerFromDB wraps an already connected database.
func NewManagerFromDB(db *surrealdb.DB, logger *common.Logger) *Manager {
	return &Manager{
		db:            db,
		logger:        logger,
		internalStore: NewInternalStore(db, logger),
		walletStore:   NewWalletStore(db, logger),
		bondStore:     NewBondStore(db, logger),
		stockStore:    NewStockStore(db, logger),
	}
}

// ApplySchema defines the tables and indexes used by the stores.
// SurrealDB v3 errors on querying non-existent tables.
func ApplySchema(ctx context.Context, db *surrealdb.DB) error {
	for _, stmt := range schema {
		if _, err := surrealdb.Query[any](ctx, db, stmt, nil); err != nil {
			return fmt.Errorf("failed to apply schema %q: %w", stmt, err)
		}
	}
	return nil
}

func (m *Manager) InternalStore() interfaces.InternalStore {
	return m.internalStore
}

func (m *Manager) WalletStore() interfaces.WalletStore {
	return m.walletStore
}

func (m *Manager) BondStore() interfaces.BondStore {
	return m.bondStore
}

func (m *Manager) StockStore() interfaces.StockStore {
	return m.stockStore
}

func (m *Manager) Close() error {
	m.db.Close(context.Background())
	return nil
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
