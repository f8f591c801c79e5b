package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet groups bonds and stock lots for a user.
type Wallet struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
}

// WalletSummary totals every bond and stock position in a wallet.
type WalletSummary struct {
	WalletID      string            `json:"wallet_id"`
	Name          string            `json:"name"`
	Currency      string            `json:"currency"`
	BondsInvested decimal.Decimal   `json:"bonds_invested"`
	BondsValue    decimal.Decimal   `json:"bonds_value"`
	BondsProfit   decimal.Decimal   `json:"bonds_profit"`
	StocksCost    decimal.Decimal   `json:"stocks_cost"`
	StocksValue   decimal.Decimal   `json:"stocks_value"`
	StocksProfit  decimal.Decimal   `json:"stocks_profit"`
	Dividends     decimal.Decimal   `json:"dividends"`
	TotalValue    decimal.Decimal   `json:"total_value"`
	TotalProfit   decimal.Decimal   `json:"total_profit"`
	Display       map[string]string `json:"display"`
	BondCount     int               `json:"bond_count"`
	PositionCount int               `json:"position_count"`
	GeneratedAt   time.Time         `json:"generated_at"`
}
