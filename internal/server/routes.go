package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/holdings/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Auth and users
	mux.HandleFunc("/api/auth/register", s.handleAuthRegister)
	mux.HandleFunc("/api/auth/login", s.handleAuthLogin)
	mux.HandleFunc("/api/users/me", s.handleUserMe)
	mux.HandleFunc("/api/users/me/settings", s.handleUserSettings)

	// Wallets
	mux.HandleFunc("/api/wallets/", s.routeWallets)
	mux.HandleFunc("/api/wallets", s.handleWallets)

	// Bonds
	mux.HandleFunc("/api/bonds/", s.routeBonds)

	// Dividends
	mux.HandleFunc("/api/dividends", s.handleDividends)
}

// routeWallets dispatches /api/wallets/{id}[/sub].
func (s *Server) routeWallets(w http.ResponseWriter, r *http.Request) {
	id, sub := splitPath(r, "/api/wallets/")
	if id == "" {
		s.handleWallets(w, r)
		return
	}

	switch sub {
	case "":
		s.handleWallet(w, r, id)
	case "summary":
		s.handleWalletSummary(w, r, id)
	case "bonds":
		s.handleWalletBonds(w, r, id)
	case "stocks":
		s.handleWalletStocks(w, r, id)
	case "stocks/sell":
		s.handleStockSell(w, r, id)
	case "lots":
		s.handleWalletLots(w, r, id)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// routeBonds dispatches /api/bonds/{id}[/transactions[/{txid}]].
func (s *Server) routeBonds(w http.ResponseWriter, r *http.Request) {
	id, sub := splitPath(r, "/api/bonds/")
	if id == "" {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	switch {
	case sub == "":
		s.handleBond(w, r, id)
	case sub == "transactions":
		s.handleBondTransactions(w, r, id)
	case strings.HasPrefix(sub, "transactions/"):
		s.handleBondTransactionDelete(w, r, id, strings.TrimPrefix(sub, "transactions/"))
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}
