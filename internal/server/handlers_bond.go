package server

import (
	"net/http"

	"github.com/bobmcallan/holdings/internal/interfaces"
	"github.com/bobmcallan/holdings/internal/models"
)

type bondRequest struct {
	Name           string      `json:"name"`
	Type           string      `json:"type"`
	Description    string      `json:"description"`
	BuyDate        string      `json:"buy_date"`
	ExpirationDate string      `json:"expiration_date"`
	InitialValue   amountField `json:"initial_value"`
}

type bondUpdateRequest struct {
	Name           *string `json:"name"`
	Type           *string `json:"type"`
	Description    *string `json:"description"`
	ExpirationDate *string `json:"expiration_date"`
}

type transactionRequest struct {
	Date             string      `json:"date"`
	Type             string      `json:"type"`
	TransactionValue amountField `json:"transaction_value"`
	CurrentValue     amountField `json:"current_value"`
}

func (req bondRequest) input(walletID string) (interfaces.CreateBondInput, error) {
	in := interfaces.CreateBondInput{
		WalletID:    walletID,
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
	}
	var err error
	if in.BuyDate, err = parseDate("buy_date", req.BuyDate); err != nil {
		return in, err
	}
	if in.ExpirationDate, err = parseOptionalDate("expiration_date", req.ExpirationDate); err != nil {
		return in, err
	}
	if in.InitialValue, err = parseAmount("initial_value", req.InitialValue, true); err != nil {
		return in, err
	}
	return in, nil
}

func (req transactionRequest) input() (interfaces.TransactionInput, error) {
	var in interfaces.TransactionInput
	var err error
	if in.Type, err = models.ParseTransactionType(req.Type); err != nil {
		return in, err
	}
	if in.Date, err = parseDate("date", req.Date); err != nil {
		return in, err
	}
	if in.TransactionValue, err = parseAmount("transaction_value", req.TransactionValue, in.Type != models.TxLiquidation); err != nil {
		return in, err
	}
	if in.CurrentValue, err = parseAmount("current_value", req.CurrentValue, in.Type == models.TxLiquidation); err != nil {
		return in, err
	}
	return in, nil
}

// handleWalletBonds handles GET (list) and POST (create) on /api/wallets/{id}/bonds.
func (s *Server) handleWalletBonds(w http.ResponseWriter, r *http.Request, walletID string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	ctx := r.Context()

	if r.Method == http.MethodGet {
		bonds, err := s.app.BondService.ListBonds(ctx, walletID)
		if err != nil {
			s.writeServiceError(w, err, "list bonds")
			return
		}
		WriteData(w, http.StatusOK, bonds)
		return
	}

	var req bondRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	in, err := req.input(walletID)
	if err != nil {
		s.writeServiceError(w, err, "create bond")
		return
	}
	view, err := s.app.BondService.CreateBond(ctx, in)
	if err != nil {
		s.writeServiceError(w, err, "create bond")
		return
	}
	WriteData(w, http.StatusCreated, view)
}

// handleBond handles GET, PUT/PATCH and DELETE on /api/bonds/{id}.
func (s *Server) handleBond(w http.ResponseWriter, r *http.Request, bondID string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete) {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		view, err := s.app.BondService.GetBond(ctx, bondID)
		if err != nil {
			s.writeServiceError(w, err, "get bond")
			return
		}
		WriteData(w, http.StatusOK, view)

	case http.MethodDelete:
		if err := s.app.BondService.DeleteBond(ctx, bondID); err != nil {
			s.writeServiceError(w, err, "delete bond")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		var req bondUpdateRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		in := interfaces.UpdateBondInput{
			Name:        req.Name,
			Type:        req.Type,
			Description: req.Description,
		}
		if req.ExpirationDate != nil {
			exp, err := parseOptionalDate("expiration_date", *req.ExpirationDate)
			if err != nil {
				s.writeServiceError(w, err, "update bond")
				return
			}
			in.ExpirationDate = exp
		}
		view, err := s.app.BondService.UpdateBond(ctx, bondID, in)
		if err != nil {
			s.writeServiceError(w, err, "update bond")
			return
		}
		WriteData(w, http.StatusOK, view)
	}
}

// handleBondTransactions handles GET (list) and POST (add) on /api/bonds/{id}/transactions.
func (s *Server) handleBondTransactions(w http.ResponseWriter, r *http.Request, bondID string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	ctx := r.Context()

	if r.Method == http.MethodGet {
		view, err := s.app.BondService.GetBond(ctx, bondID)
		if err != nil {
			s.writeServiceError(w, err, "list transactions")
			return
		}
		txs := view.Transactions
		if txs == nil {
			txs = []models.Transaction{}
		}
		WriteData(w, http.StatusOK, txs)
		return
	}

	var req transactionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		s.writeServiceError(w, err, "add transaction")
		return
	}
	view, err := s.app.BondService.AddTransaction(ctx, bondID, in)
	if err != nil {
		s.writeServiceError(w, err, "add transaction")
		return
	}
	WriteData(w, http.StatusCreated, view)
}

// handleBondTransactionDelete handles DELETE /api/bonds/{id}/transactions/{txid}.
func (s *Server) handleBondTransactionDelete(w http.ResponseWriter, r *http.Request, bondID, txID string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	view, err := s.app.BondService.DeleteTransaction(r.Context(), bondID, txID)
	if err != nil {
		s.writeServiceError(w, err, "delete transaction")
		return
	}
	WriteData(w, http.StatusOK, view)
}
