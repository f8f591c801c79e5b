// Package models defines data structures for holdings
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a bond lifecycle event.
type TransactionType string

const (
	TxInvestment  TransactionType = "INVESTMENT"
	TxRescue      TransactionType = "RESCUE"
	TxCorrection  TransactionType = "CORRECTION"
	TxLiquidation TransactionType = "LIQUIDATION"
)

// validTransactionTypes lists all accepted bond transaction types.
var validTransactionTypes = map[TransactionType]bool{
	TxInvestment:  true,
	TxRescue:      true,
	TxCorrection:  true,
	TxLiquidation: true,
}

// ValidTransactionType returns true if t is a known bond transaction type.
func ValidTransactionType(t TransactionType) bool {
	return validTransactionTypes[t]
}

// ParseTransactionType normalises s and validates it against the known types.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if !ValidTransactionType(t) {
		return "", NewValidationError("type", fmt.Sprintf("invalid transaction type %q; must be INVESTMENT, RESCUE, CORRECTION, or LIQUIDATION", s))
	}
	return t, nil
}

// Transaction is a single event in a bond's history.
// TransactionValue is a signed delta whose meaning depends on Type.
// CurrentValue is the valuation snapshot at this event and is only
// authoritative for LIQUIDATION.
type Transaction struct {
	ID               string          `json:"id"`
	BondID           string          `json:"bond_id"`
	UserID           string          `json:"user_id"`
	Date             time.Time       `json:"date"`
	Type             TransactionType `json:"type"`
	TransactionValue decimal.Decimal `json:"transaction_value"`
	CurrentValue     decimal.Decimal `json:"current_value"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Bond is a fixed-income holding inside a wallet.
type Bond struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	WalletID       string        `json:"wallet_id"`
	Name           string        `json:"name"`
	Type           string        `json:"type"`
	Description    string        `json:"description,omitempty"`
	BuyDate        time.Time     `json:"buy_date"`
	ExpirationDate *time.Time    `json:"expiration_date,omitempty"`
	Transactions   []Transaction `json:"transactions,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	ModifiedAt     time.Time     `json:"modified_at"`
}

// BondTotals is the derived financial position of a bond.
type BondTotals struct {
	TotalInvested decimal.Decimal `json:"total_invested"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	TotalRescued  decimal.Decimal `json:"total_rescued"`
	Profit        decimal.Decimal `json:"profit"`

	// ProfitPercentage is nil when nothing was invested and the return is undefined.
	ProfitPercentage        *float64 `json:"profit_percentage"`
	ProfitPercentageMonthly float64  `json:"profit_percentage_monthly"`
	ProfitPercentageAnnual  float64  `json:"profit_percentage_annual"`
	HoldingMonths           float64  `json:"holding_months"`
	IsLiquidated            bool     `json:"is_liquidated"`
}

// Percentage returns the total-period return, or ErrUndefinedReturn when
// the bond has no invested capital.
func (t BondTotals) Percentage() (float64, error) {
	if t.ProfitPercentage == nil {
		return 0, ErrUndefinedReturn
	}
	return *t.ProfitPercentage, nil
}

// BondView pairs a bond with its computed totals for presentation.
type BondView struct {
	Bond
	Totals BondTotals `json:"totals"`
}
