package lots

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/holdings/internal/models"
)

// DividendRequest describes a cash dividend paid for a ticker.
type DividendRequest struct {
	Ticker      string
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}

// EligibleLots returns the lots of ticker bought on or before date, open or
// closed. Holders at the payment date keep their share even if they sold later.
func EligibleLots(lots []models.StockLot, ticker string, date time.Time) []models.StockLot {
	var eligible []models.StockLot
	for _, l := range lots {
		if !strings.EqualFold(l.Ticker, ticker) {
			continue
		}
		if l.BuyDate.After(date) {
			continue
		}
		eligible = append(eligible, l)
	}
	return eligible
}

// DistributeDividend splits req.Amount across the eligible lots in
// proportion to their quantity. Each record gets perUnit × quantity where
// perUnit = amount / Σquantity; the residue left by decimal division is
// added to the first record so the batch sums exactly to the amount.
func DistributeDividend(lots []models.StockLot, req DividendRequest) ([]models.Dividend, error) {
	return DistributeDividendWithIDs(lots, req, NewID)
}

// DistributeDividendWithIDs is DistributeDividend with an explicit ID generator.
func DistributeDividendWithIDs(lots []models.StockLot, req DividendRequest, newID IDFunc) ([]models.Dividend, error) {
	if !req.Amount.IsPositive() {
		return nil, models.NewValidationError("amount", "dividend amount must be greater than zero")
	}
	if req.Date.IsZero() {
		return nil, models.NewValidationError("date", "dividend date is required")
	}

	eligible := EligibleLots(lots, req.Ticker, req.Date)
	total := TotalQuantity(eligible)
	if len(eligible) == 0 || !total.IsPositive() {
		return nil, fmt.Errorf("dividend for %s on %s: %w", req.Ticker, req.Date.Format("2006-01-02"), models.ErrNoShareholders)
	}

	perUnit := req.Amount.Div(total)

	dividends := make([]models.Dividend, 0, len(eligible))
	assigned := decimal.Zero
	for _, l := range eligible {
		share := perUnit.Mul(l.Quantity)
		assigned = assigned.Add(share)
		dividends = append(dividends, models.Dividend{
			ID:          newID(),
			UserID:      l.UserID,
			StockID:     l.ID,
			Ticker:      l.Ticker,
			Amount:      share,
			Date:        req.Date,
			Description: req.Description,
		})
	}

	if residue := req.Amount.Sub(assigned); !residue.IsZero() {
		dividends[0].Amount = dividends[0].Amount.Add(residue)
	}

	return dividends, nil
}

// SameBatch reports whether d belongs to the batch identified by the
// calendar day (UTC, "2006-01-02") and description.
func SameBatch(d models.Dividend, day, description string) bool {
	return d.Date.UTC().Format("2006-01-02") == day && d.Description == description
}
