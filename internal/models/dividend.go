package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dividend is a cash payment recorded against a single stock lot.
// A distribution batch is identified by the calendar day of Date and Description.
type Dividend struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	StockID     string          `json:"stock_id"`
	Ticker      string          `json:"ticker"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}
