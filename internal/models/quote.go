package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RealTimeQuote is the latest price of a ticker from a market-data provider.
type RealTimeQuote struct {
	Ticker    string          `json:"ticker"`
	Close     decimal.Decimal `json:"close"`
	Previous  decimal.Decimal `json:"previous_close"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
}
