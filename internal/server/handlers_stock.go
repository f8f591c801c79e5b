package server

import (
	"net/http"

	"github.com/bobmcallan/holdings/internal/interfaces"
	"github.com/bobmcallan/holdings/internal/lots"
	"github.com/bobmcallan/holdings/internal/models"
)

type buyRequest struct {
	Ticker   string      `json:"ticker"`
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	Quantity amountField `json:"quantity"`
	BuyPrice amountField `json:"buy_price"`
	BuyDate  string      `json:"buy_date"`
}

type sellRequest struct {
	Ticker    string      `json:"ticker"`
	IsTotal   bool        `json:"is_total"`
	Amount    amountField `json:"amount"`
	SellPrice amountField `json:"sell_price"`
	SellDate  string      `json:"sell_date"`
}

type dividendRequest struct {
	Ticker      string      `json:"ticker"`
	Amount      amountField `json:"amount"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
}

func (req buyRequest) input(walletID string) (interfaces.BuyInput, error) {
	in := interfaces.BuyInput{
		WalletID: walletID,
		Ticker:   req.Ticker,
		Name:     req.Name,
		Type:     req.Type,
	}
	var err error
	if in.Quantity, err = parseAmount("quantity", req.Quantity, true); err != nil {
		return in, err
	}
	if in.BuyPrice, err = parseAmount("buy_price", req.BuyPrice, true); err != nil {
		return in, err
	}
	if in.BuyDate, err = parseDate("buy_date", req.BuyDate); err != nil {
		return in, err
	}
	return in, nil
}

func (req sellRequest) sale(walletID string) (models.SaleRequest, error) {
	sale := models.SaleRequest{
		WalletID: walletID,
		Ticker:   req.Ticker,
		IsTotal:  req.IsTotal,
	}
	var err error
	if sale.Amount, err = parseAmount("amount", req.Amount, !req.IsTotal); err != nil {
		return sale, err
	}
	if sale.SellPrice, err = parseAmount("sell_price", req.SellPrice, true); err != nil {
		return sale, err
	}
	if sale.SellDate, err = parseDate("sell_date", req.SellDate); err != nil {
		return sale, err
	}
	return sale, nil
}

// handleWalletStocks handles GET (positions) and POST (buy) on /api/wallets/{id}/stocks.
func (s *Server) handleWalletStocks(w http.ResponseWriter, r *http.Request, walletID string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	ctx := r.Context()

	if r.Method == http.MethodGet {
		positions, err := s.app.StockService.Positions(ctx, walletID)
		if err != nil {
			s.writeServiceError(w, err, "list positions")
			return
		}
		if positions == nil {
			positions = []models.StockPosition{}
		}
		WriteData(w, http.StatusOK, positions)
		return
	}

	var req buyRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	in, err := req.input(walletID)
	if err != nil {
		s.writeServiceError(w, err, "buy stock")
		return
	}
	lot, err := s.app.StockService.Buy(ctx, in)
	if err != nil {
		s.writeServiceError(w, err, "buy stock")
		return
	}
	WriteData(w, http.StatusCreated, lot)
}

// handleStockSell handles POST /api/wallets/{id}/stocks/sell.
func (s *Server) handleStockSell(w http.ResponseWriter, r *http.Request, walletID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req sellRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	sale, err := req.sale(walletID)
	if err != nil {
		s.writeServiceError(w, err, "sell stock")
		return
	}
	result, err := s.app.StockService.Sell(r.Context(), sale)
	if err != nil {
		s.writeServiceError(w, err, "sell stock")
		return
	}
	WriteData(w, http.StatusOK, map[string]interface{}{
		"updated_lots":  result.UpdatedLots,
		"new_lots":      result.NewLots,
		"sold_quantity": result.SoldQuantity(),
	})
}

// handleWalletLots handles GET /api/wallets/{id}/lots?ticker=.
func (s *Server) handleWalletLots(w http.ResponseWriter, r *http.Request, walletID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	result, err := s.app.StockService.ListLots(r.Context(), walletID, r.URL.Query().Get("ticker"))
	if err != nil {
		s.writeServiceError(w, err, "list lots")
		return
	}
	if result == nil {
		result = []*models.StockLot{}
	}
	WriteData(w, http.StatusOK, result)
}

// handleDividends handles GET (list), POST (distribute) and DELETE (reverse) on /api/dividends.
// DELETE takes the batch identity as ?date=&description= query parameters.
func (s *Server) handleDividends(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost, http.MethodDelete) {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		divs, err := s.app.StockService.ListDividends(ctx, r.URL.Query().Get("ticker"))
		if err != nil {
			s.writeServiceError(w, err, "list dividends")
			return
		}
		if divs == nil {
			divs = []*models.Dividend{}
		}
		WriteData(w, http.StatusOK, divs)

	case http.MethodPost:
		var req dividendRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		amount, err := parseAmount("amount", req.Amount, true)
		if err != nil {
			s.writeServiceError(w, err, "distribute dividend")
			return
		}
		date, err := parseDate("date", req.Date)
		if err != nil {
			s.writeServiceError(w, err, "distribute dividend")
			return
		}
		records, err := s.app.StockService.DistributeDividend(ctx, lots.DividendRequest{
			Ticker:      req.Ticker,
			Amount:      amount,
			Date:        date,
			Description: req.Description,
		})
		if err != nil {
			s.writeServiceError(w, err, "distribute dividend")
			return
		}
		WriteData(w, http.StatusCreated, records)

	case http.MethodDelete:
		q := r.URL.Query()
		date, err := parseDate("date", q.Get("date"))
		if err != nil {
			s.writeServiceError(w, err, "reverse dividend")
			return
		}
		n, err := s.app.StockService.ReverseDividend(ctx, date, q.Get("description"))
		if err != nil {
			s.writeServiceError(w, err, "reverse dividend")
			return
		}
		WriteData(w, http.StatusOK, map[string]int{"deleted": n})
	}
}
