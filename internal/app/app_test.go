package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/holdings/internal/common"
	"github.com/bobmcallan/holdings/internal/storage/memory"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	for _, key := range []string{"HOLDINGS_ENV", "HOLDINGS_STORAGE_BACKEND", "HOLDINGS_AUTH_JWT_SECRET", "HOLDINGS_QUOTE_API_KEY", "HOLDINGS_DISPLAY_CURRENCY"} {
		t.Setenv(key, "")
	}
	path := filepath.Join(t.TempDir(), "holdings.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestNewApp_MemoryBackend(t *testing.T) {
	path := writeConfig(t, `
display_currency = "USD"

[storage]
backend = "memory"

[logging]
level = "disabled"
outputs = ["console"]
`)

	a, err := NewApp(path)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "USD", a.Config.DisplayCurrency)
	assert.Nil(t, a.QuoteClient)
	assert.NotNil(t, a.WalletService)
	assert.NotNil(t, a.SummaryService)
	_, ok := a.Storage.(*memory.Manager)
	assert.True(t, ok)
}

func TestNewApp_ProductionRequiresSecret(t *testing.T) {
	path := writeConfig(t, `
environment = "production"

[storage]
backend = "memory"

[logging]
level = "disabled"
`)

	_, err := NewApp(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret")
}

func TestNew_WiresServicesOnSharedStorage(t *testing.T) {
	cfg := common.NewDefaultConfig()
	store := memory.NewManager()
	a := New(cfg, common.NewSilentLogger(), store, nil)
	assert.Same(t, store, a.Storage)

	ctx := context.Background()
	w, err := a.WalletService.CreateWallet(ctx, "Main", "")
	require.NoError(t, err)

	sum, err := a.SummaryService.WalletSummary(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "BRL", sum.Currency)
	assert.Equal(t, 0, sum.BondCount)

	a.Close()
	assert.Nil(t, a.Storage)
}
