// Package app wires configuration, storage, clients and services together.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/holdings/internal/clients/eodhd"
	"github.com/bobmcallan/holdings/internal/common"
	"github.com/bobmcallan/holdings/internal/interfaces"
	"github.com/bobmcallan/holdings/internal/services/bond"
	"github.com/bobmcallan/holdings/internal/services/quote"
	"github.com/bobmcallan/holdings/internal/services/stock"
	"github.com/bobmcallan/holdings/internal/services/summary"
	"github.com/bobmcallan/holdings/internal/services/wallet"
	"github.com/bobmcallan/holdings/internal/storage"
)

// App holds all initialized services, clients and storage.
type App struct {
	Config         *common.Config
	Logger         *common.Logger
	Storage        interfaces.StorageManager
	QuoteClient    interfaces.QuoteClient
	QuoteService   *quote.Service
	WalletService  interfaces.WalletService
	BondService    interfaces.BondService
	StockService   interfaces.StockService
	SummaryService interfaces.SummaryService
	StartupTime    time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and initializes storage, clients and services.
// configPath may be empty, in which case HOLDINGS_CONFIG, then holdings.toml
// next to the binary, then config/holdings.toml are tried.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	common.LoadVersionFromFile()

	binDir := getBinaryDir()
	if configPath == "" {
		configPath = os.Getenv("HOLDINGS_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "holdings.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/holdings.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	for _, key := range config.ValidateRequired() {
		if config.IsProduction() {
			return nil, fmt.Errorf("required config %s is not set", key)
		}
		logger.Warn().Str("key", key).Msg("Required config not set; using development default")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	storageManager, err := storage.NewStorageManager(ctx, logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var quoteClient interfaces.QuoteClient
	if config.Clients.Quote.APIKey != "" {
		quoteClient = eodhd.NewClient(config.Clients.Quote.APIKey,
			eodhd.WithBaseURL(config.Clients.Quote.BaseURL),
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(config.Clients.Quote.RateLimit),
			eodhd.WithTimeout(config.Clients.Quote.GetTimeout()),
		)
	} else {
		logger.Warn().Msg("Quote API key not configured - stock positions will be valued at zero")
	}

	a := New(config, logger, storageManager, quoteClient)
	a.StartupTime = startupStart

	logger.Info().
		Str("storage", config.Storage.Backend).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// New builds the services on top of an existing storage manager.
// quoteClient may be nil.
func New(config *common.Config, logger *common.Logger, storageManager interfaces.StorageManager, quoteClient interfaces.QuoteClient) *App {
	quoteService := quote.NewService(quoteClient, config.Clients.Quote.GetCacheTTL(), logger)
	bondService := bond.NewService(storageManager, logger)
	stockService := stock.NewService(storageManager, quoteService.Price, logger)

	return &App{
		Config:         config,
		Logger:         logger,
		Storage:        storageManager,
		QuoteClient:    quoteClient,
		QuoteService:   quoteService,
		WalletService:  wallet.NewService(storageManager, logger),
		BondService:    bondService,
		StockService:   stockService,
		SummaryService: summary.NewService(storageManager, bondService, stockService, config.DisplayCurrency, logger),
		StartupTime:    time.Now(),
	}
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
