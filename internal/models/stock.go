package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLot is one purchase of a ticker. A lot is open until SellDate is set.
type StockLot struct {
	ID         string           `json:"id"`
	UserID     string           `json:"user_id"`
	WalletID   string           `json:"wallet_id"`
	Ticker     string           `json:"ticker"`
	Name       string           `json:"name,omitempty"`
	Type       string           `json:"type,omitempty"`
	Quantity   decimal.Decimal  `json:"quantity"`
	BuyPrice   decimal.Decimal  `json:"buy_price"`
	BuyDate    time.Time        `json:"buy_date"`
	SellDate   *time.Time       `json:"sell_date,omitempty"`
	SellPrice  *decimal.Decimal `json:"sell_price,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	ModifiedAt time.Time        `json:"modified_at"`
}

// IsOpen reports whether the lot is still held.
func (l StockLot) IsOpen() bool {
	return l.SellDate == nil
}

// Cost returns quantity × buy price.
func (l StockLot) Cost() decimal.Decimal {
	return l.Quantity.Mul(l.BuyPrice)
}

// RealizedProfit returns the gain of a closed lot, or zero while open.
func (l StockLot) RealizedProfit() decimal.Decimal {
	if l.IsOpen() || l.SellPrice == nil {
		return decimal.Zero
	}
	return l.SellPrice.Sub(l.BuyPrice).Mul(l.Quantity)
}

// SaleRequest asks to sell part or all of the open quantity of a ticker in a wallet.
// Amount is ignored when IsTotal is set.
type SaleRequest struct {
	WalletID  string          `json:"wallet_id"`
	Ticker    string          `json:"ticker"`
	IsTotal   bool            `json:"is_total"`
	Amount    decimal.Decimal `json:"amount"`
	SellPrice decimal.Decimal `json:"sell_price"`
	SellDate  time.Time       `json:"sell_date"`
}

// SaleResult holds the lots mutated by a sale and the split lots it creates.
type SaleResult struct {
	UpdatedLots []StockLot `json:"updated_lots"`
	NewLots     []StockLot `json:"new_lots"`
}

// SoldQuantity returns the quantity closed by the sale.
func (r SaleResult) SoldQuantity() decimal.Decimal {
	sold := decimal.Zero
	for _, l := range r.UpdatedLots {
		if !l.IsOpen() {
			sold = sold.Add(l.Quantity)
		}
	}
	for _, l := range r.NewLots {
		if !l.IsOpen() {
			sold = sold.Add(l.Quantity)
		}
	}
	return sold
}

// StockPosition aggregates all lots of one ticker inside a wallet.
type StockPosition struct {
	Ticker          string          `json:"ticker"`
	Name            string          `json:"name,omitempty"`
	Type            string          `json:"type,omitempty"`
	OpenQuantity    decimal.Decimal `json:"open_quantity"`
	OpenLots        int             `json:"open_lots"`
	AverageBuyPrice decimal.Decimal `json:"average_buy_price"`
	Cost            decimal.Decimal `json:"cost"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	MarketValue     decimal.Decimal `json:"market_value"`
	UnrealizedGain  decimal.Decimal `json:"unrealized_gain"`
	// UnrealizedPct is nil when the open cost is zero or no price is known.
	UnrealizedPct *float64        `json:"unrealized_pct"`
	RealizedGain  decimal.Decimal `json:"realized_gain"`
	Dividends     decimal.Decimal `json:"dividends"`
}
