// Package lots allocates stock sales across FIFO-ordered lots and
// distributes dividends across the holders of a ticker.
package lots

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/holdings/internal/models"
)

// IDFunc generates identifiers for lots created by a split.
type IDFunc func() string

// NewID returns a random UUID string.
func NewID() string {
	return uuid.New().String()
}

// Sell partitions the open lots of a ticker according to req.
//
// Lots are consumed oldest BuyDate first. Closed lots in the input are
// ignored. A lot that covers the remaining quantity is split: the original
// keeps the unsold quantity and stays open, and a new closed lot carrying
// the sold quantity is returned in NewLots. Lots after the breakpoint are
// not part of the result. The input slice and its lots are not modified.
func Sell(lots []models.StockLot, req models.SaleRequest) (*models.SaleResult, error) {
	return SellWithIDs(lots, req, NewID)
}

// SellWithIDs is Sell with an explicit ID generator for split lots.
func SellWithIDs(lots []models.StockLot, req models.SaleRequest, newID IDFunc) (*models.SaleResult, error) {
	open := OpenFIFO(lots)
	if len(open) == 0 {
		return nil, fmt.Errorf("no open lots for %s: %w", req.Ticker, models.ErrNotFound)
	}
	if req.SellPrice.IsNegative() {
		return nil, models.NewValidationError("sell_price", "sell price must not be negative")
	}
	if req.SellDate.IsZero() {
		return nil, models.NewValidationError("sell_date", "sell date is required")
	}

	if req.IsTotal {
		return sellTotal(open, req), nil
	}

	if !req.Amount.IsPositive() {
		return nil, models.NewValidationError("amount", "amount must be greater than zero")
	}

	available := TotalQuantity(open)
	if req.Amount.GreaterThan(available) {
		return nil, fmt.Errorf("cannot sell %s %s, only %s open: %w",
			req.Amount, req.Ticker, available, models.ErrInsufficientBalance)
	}

	result := &models.SaleResult{}
	remaining := req.Amount

	for _, lot := range open {
		if !remaining.IsPositive() {
			break
		}

		if lot.Quantity.LessThanOrEqual(remaining) {
			result.UpdatedLots = append(result.UpdatedLots, closeLot(lot, req.SellPrice, req.SellDate))
			remaining = remaining.Sub(lot.Quantity)
			continue
		}

		kept := lot
		kept.Quantity = lot.Quantity.Sub(remaining)
		result.UpdatedLots = append(result.UpdatedLots, kept)

		sold := lot
		sold.ID = newID()
		sold.Quantity = remaining
		result.NewLots = append(result.NewLots, closeLot(sold, req.SellPrice, req.SellDate))

		remaining = decimal.Zero
	}

	return result, nil
}

func sellTotal(open []models.StockLot, req models.SaleRequest) *models.SaleResult {
	result := &models.SaleResult{UpdatedLots: make([]models.StockLot, 0, len(open))}
	for _, lot := range open {
		result.UpdatedLots = append(result.UpdatedLots, closeLot(lot, req.SellPrice, req.SellDate))
	}
	return result
}

func closeLot(lot models.StockLot, price decimal.Decimal, date time.Time) models.StockLot {
	sellDate := date
	sellPrice := price
	lot.SellDate = &sellDate
	lot.SellPrice = &sellPrice
	return lot
}

// OpenFIFO returns the open lots stable-sorted by BuyDate ascending.
func OpenFIFO(lots []models.StockLot) []models.StockLot {
	open := make([]models.StockLot, 0, len(lots))
	for _, l := range lots {
		if l.IsOpen() {
			open = append(open, l)
		}
	}
	slices.SortStableFunc(open, func(a, b models.StockLot) int {
		return a.BuyDate.Compare(b.BuyDate)
	})
	return open
}

// TotalQuantity sums the quantity of lots.
func TotalQuantity(lots []models.StockLot) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lots {
		total = total.Add(l.Quantity)
	}
	return total
}
