package interfaces

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/holdings/internal/lots"
	"github.com/bobmcallan/holdings/internal/models"
)

// WalletService manages wallets for the user in context.
type WalletService interface {
	CreateWallet(ctx context.Context, name, description string) (*models.Wallet, error)
	GetWallet(ctx context.Context, walletID string) (*models.Wallet, error)
	ListWallets(ctx context.Context) ([]*models.Wallet, error)
	UpdateWallet(ctx context.Context, walletID, name, description string) (*models.Wallet, error)
	DeleteWallet(ctx context.Context, walletID string) error
}

// CreateBondInput carries the fields of a new bond.
type CreateBondInput struct {
	WalletID       string
	Name           string
	Type           string
	Description    string
	BuyDate        time.Time
	ExpirationDate *time.Time
	InitialValue   decimal.Decimal
}

// UpdateBondInput carries editable bond metadata. Nil fields are left unchanged.
type UpdateBondInput struct {
	Name           *string
	Type           *string
	Description    *string
	ExpirationDate *time.Time
}

// TransactionInput carries a new bond transaction.
type TransactionInput struct {
	Date             time.Time
	Type             models.TransactionType
	TransactionValue decimal.Decimal
	CurrentValue     decimal.Decimal
}

// BondService manages bonds and their lifecycle transactions.
type BondService interface {
	CreateBond(ctx context.Context, in CreateBondInput) (*models.BondView, error)
	GetBond(ctx context.Context, bondID string) (*models.BondView, error)
	ListBonds(ctx context.Context, walletID string) ([]*models.BondView, error)
	UpdateBond(ctx context.Context, bondID string, in UpdateBondInput) (*models.BondView, error)
	DeleteBond(ctx context.Context, bondID string) error
	AddTransaction(ctx context.Context, bondID string, in TransactionInput) (*models.BondView, error)
	DeleteTransaction(ctx context.Context, bondID, txID string) (*models.BondView, error)
}

// BuyInput carries a stock purchase.
type BuyInput struct {
	WalletID string
	Ticker   string
	Name     string
	Type     string
	Quantity decimal.Decimal
	BuyPrice decimal.Decimal
	BuyDate  time.Time
}

// StockService manages stock lots, sales and dividends.
type StockService interface {
	Buy(ctx context.Context, in BuyInput) (*models.StockLot, error)
	Sell(ctx context.Context, req models.SaleRequest) (*models.SaleResult, error)
	ListLots(ctx context.Context, walletID, ticker string) ([]*models.StockLot, error)
	Positions(ctx context.Context, walletID string) ([]models.StockPosition, error)
	DistributeDividend(ctx context.Context, req lots.DividendRequest) ([]models.Dividend, error)
	ListDividends(ctx context.Context, ticker string) ([]*models.Dividend, error)
	ReverseDividend(ctx context.Context, date time.Time, description string) (int, error)
}

// SummaryService totals a wallet across bonds and stocks.
type SummaryService interface {
	WalletSummary(ctx context.Context, walletID string) (*models.WalletSummary, error)
}
