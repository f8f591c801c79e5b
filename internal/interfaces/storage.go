// Package interfaces defines service contracts for holdings
package interfaces

import (
	"context"

	"github.com/bobmcallan/holdings/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	InternalStore() InternalStore
	WalletStore() WalletStore
	BondStore() BondStore
	StockStore() StockStore

	// Lifecycle
	Close() error
}

// InternalStore manages user accounts and per-user config.
type InternalStore interface {
	// User accounts
	GetUser(ctx context.Context, userID string) (*models.InternalUser, error)
	// GetUserByEmail matches the email case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (*models.InternalUser, error)
	SaveUser(ctx context.Context, user *models.InternalUser) error
	DeleteUser(ctx context.Context, userID string) error
	ListUsers(ctx context.Context) ([]string, error)

	// Per-user key-value config
	GetUserKV(ctx context.Context, userID, key string) (*models.UserKeyValue, error)
	SetUserKV(ctx context.Context, userID, key, value string) error
	ListUserKV(ctx context.Context, userID string) ([]*models.UserKeyValue, error)
}

// WalletStore persists wallets. Every method is scoped to the owning user.
type WalletStore interface {
	CreateWallet(ctx context.Context, wallet *models.Wallet) error
	GetWallet(ctx context.Context, userID, walletID string) (*models.Wallet, error)
	ListWallets(ctx context.Context, userID string) ([]*models.Wallet, error)
	UpdateWallet(ctx context.Context, wallet *models.Wallet) error
	DeleteWallet(ctx context.Context, userID, walletID string) error
	WalletExists(ctx context.Context, userID, walletID string) (bool, error)
}

// BondStore persists bonds and their transactions.
// CreateBond and DeleteBond write the bond and its transactions atomically.
type BondStore interface {
	CreateBond(ctx context.Context, bond *models.Bond) error
	GetBond(ctx context.Context, userID, bondID string) (*models.Bond, error)
	ListBonds(ctx context.Context, userID, walletID string) ([]*models.Bond, error)
	UpdateBond(ctx context.Context, bond *models.Bond) error
	DeleteBond(ctx context.Context, userID, bondID string) error

	AddTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, userID, bondID, txID string) error
}

// StockStore persists stock lots and dividends.
type StockStore interface {
	CreateLot(ctx context.Context, lot *models.StockLot) error
	GetLot(ctx context.Context, userID, lotID string) (*models.StockLot, error)
	// ListLots returns every lot in the wallet; ticker filters when non-empty.
	ListLots(ctx context.Context, userID, walletID, ticker string) ([]*models.StockLot, error)
	// ListOpenLots returns the open lots of ticker ordered by buy date ascending.
	ListOpenLots(ctx context.Context, userID, walletID, ticker string) ([]*models.StockLot, error)
	// ListLotsByTicker returns every lot of ticker the user holds or held, across wallets.
	ListLotsByTicker(ctx context.Context, userID, ticker string) ([]*models.StockLot, error)
	// ApplySale writes all lot updates and split lots in a single transaction.
	ApplySale(ctx context.Context, userID string, result *models.SaleResult) error

	// CreateDividends inserts a distribution batch in a single transaction.
	CreateDividends(ctx context.Context, dividends []models.Dividend) error
	ListDividends(ctx context.Context, userID, ticker string) ([]*models.Dividend, error)
	// DeleteDividendBatch removes every dividend of the user matching the
	// calendar day ("2006-01-02") and description. Returns the count deleted.
	DeleteDividendBatch(ctx context.Context, userID, day, description string) (int, error)
}
