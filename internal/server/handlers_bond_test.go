package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/holdings/internal/models"
)

func createBond(t *testing.T, srv *Server, token, walletID string) models.BondView {
	t.Helper()
	rec, env := do(t, srv, http.MethodPost, "/api/wallets/"+walletID+"/bonds", map[string]interface{}{
		"name":            "Tesouro IPCA",
		"type":            "TESOURO",
		"buy_date":        "2024-01-01",
		"expiration_date": "2029-01-01",
		"initial_value":   1000,
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var view models.BondView
	decodeData(t, env, &view)
	return view
}

func TestBondLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "bonds@example.com")
	walletID := createWallet(t, srv, token, "Fixed income")

	view := createBond(t, srv, token, walletID)
	require.Len(t, view.Transactions, 1)
	assert.Equal(t, models.TxInvestment, view.Transactions[0].Type)
	assert.Equal(t, "1000", view.Totals.TotalInvested.String())

	rec, env := do(t, srv, http.MethodPost, "/api/bonds/"+view.ID+"/transactions", map[string]interface{}{
		"date":              "2024-06-01",
		"type":              "correction",
		"transaction_value": "50,00",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeData(t, env, &view)
	assert.Equal(t, "1050", view.Totals.CurrentValue.String())

	rec, _ = do(t, srv, http.MethodPost, "/api/bonds/"+view.ID+"/transactions", map[string]interface{}{
		"date":              "2024-06-01",
		"type":              "COUPON",
		"transaction_value": "10",
	}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, srv, http.MethodPost, "/api/bonds/"+view.ID+"/transactions", map[string]interface{}{
		"date":          "2024-12-01",
		"type":          "LIQUIDATION",
		"current_value": "1100",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeData(t, env, &view)
	assert.True(t, view.Totals.IsLiquidated)
	assert.Equal(t, "100", view.Totals.Profit.String())

	rec, env = do(t, srv, http.MethodGet, "/api/bonds/"+view.ID+"/transactions", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var txs []models.Transaction
	decodeData(t, env, &txs)
	assert.Len(t, txs, 3)

	rec, _ = do(t, srv, http.MethodDelete, "/api/bonds/"+view.ID+"/transactions/"+txs[0].ID, nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, srv, http.MethodDelete, "/api/bonds/"+view.ID+"/transactions/"+txs[2].ID, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, env, &view)
	assert.False(t, view.Totals.IsLiquidated)

	rec, env = do(t, srv, http.MethodPatch, "/api/bonds/"+view.ID, map[string]interface{}{"name": "Renamed"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, env, &view)
	assert.Equal(t, "Renamed", view.Name)

	rec, env = do(t, srv, http.MethodGet, "/api/wallets/"+walletID+"/bonds", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var bonds []models.BondView
	decodeData(t, env, &bonds)
	assert.Len(t, bonds, 1)

	rec, _ = do(t, srv, http.MethodDelete, "/api/bonds/"+view.ID, nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = do(t, srv, http.MethodGet, "/api/bonds/"+view.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBond_Validation(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "bv@example.com")
	walletID := createWallet(t, srv, token, "Main")

	tests := []struct {
		name string
		body map[string]interface{}
		code string
	}{
		{"missing buy date", map[string]interface{}{"name": "X", "initial_value": "100"}, "buy_date"},
		{"malformed amount", map[string]interface{}{"name": "X", "buy_date": "2024-01-01", "initial_value": "abc"}, "initial_value"},
		{"missing amount", map[string]interface{}{"name": "X", "buy_date": "2024-01-01"}, "initial_value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, srv, http.MethodPost, "/api/wallets/"+walletID+"/bonds", tt.body, token)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, env.Code)
		})
	}

	rec, _ := do(t, srv, http.MethodPost, "/api/wallets/missing/bonds", map[string]interface{}{
		"name": "X", "buy_date": "2024-01-01", "initial_value": "100",
	}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteWallet_RefusedWithBonds(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "dw@example.com")
	walletID := createWallet(t, srv, token, "Main")
	createBond(t, srv, token, walletID)

	rec, _ := do(t, srv, http.MethodDelete, "/api/wallets/"+walletID, nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
