package interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/holdings/internal/models"
)

// QuoteClient fetches real-time prices from a market-data provider.
type QuoteClient interface {
	GetRealTimeQuote(ctx context.Context, ticker string) (*models.RealTimeQuote, error)
}

// PriceFunc returns the current price of ticker, or zero when unavailable.
type PriceFunc func(ctx context.Context, ticker string) decimal.Decimal
