package server

import (
	"net/http"
)

type walletRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// handleWallets handles GET (list) and POST (create) on /api/wallets.
func (s *Server) handleWallets(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	ctx := r.Context()

	if r.Method == http.MethodGet {
		wallets, err := s.app.WalletService.ListWallets(ctx)
		if err != nil {
			s.writeServiceError(w, err, "list wallets")
			return
		}
		WriteData(w, http.StatusOK, wallets)
		return
	}

	var req walletRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	wallet, err := s.app.WalletService.CreateWallet(ctx, req.Name, req.Description)
	if err != nil {
		s.writeServiceError(w, err, "create wallet")
		return
	}
	WriteData(w, http.StatusCreated, wallet)
}

// handleWallet handles GET, PUT/PATCH and DELETE on /api/wallets/{id}.
func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete) {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		wallet, err := s.app.WalletService.GetWallet(ctx, id)
		if err != nil {
			s.writeServiceError(w, err, "get wallet")
			return
		}
		WriteData(w, http.StatusOK, wallet)

	case http.MethodDelete:
		if err := s.app.WalletService.DeleteWallet(ctx, id); err != nil {
			s.writeServiceError(w, err, "delete wallet")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		var req walletRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		wallet, err := s.app.WalletService.UpdateWallet(ctx, id, req.Name, req.Description)
		if err != nil {
			s.writeServiceError(w, err, "update wallet")
			return
		}
		WriteData(w, http.StatusOK, wallet)
	}
}

// handleWalletSummary handles GET /api/wallets/{id}/summary.
func (s *Server) handleWalletSummary(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	summary, err := s.app.SummaryService.WalletSummary(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err, "build wallet summary")
		return
	}
	WriteData(w, http.StatusOK, summary)
}
