// Package app wires configuration, clients, storage and services into one
// runnable application.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bobmcallan/fnoscan/internal/cache"
	"github.com/bobmcallan/fnoscan/internal/calendar"
	"github.com/bobmcallan/fnoscan/internal/clients/eodhd"
	"github.com/bobmcallan/fnoscan/internal/clients/yahoo"
	"github.com/bobmcallan/fnoscan/internal/common"
	"github.com/bobmcallan/fnoscan/internal/interfaces"
	"github.com/bobmcallan/fnoscan/internal/models"
	"github.com/bobmcallan/fnoscan/internal/services/notify"
	"github.com/bobmcallan/fnoscan/internal/services/refresh"
	"github.com/bobmcallan/fnoscan/internal/services/stocks"
	"github.com/bobmcallan/fnoscan/internal/storage"
)

// App holds all initialized services, clients and background workers.
type App struct {
	Config         *common.Config
	Logger         *common.Logger
	Calendar       *calendar.Calendar
	Cache          *cache.Cache
	Store          interfaces.SnapshotStore
	MarketClient   interfaces.MarketDataProvider
	Universe       []models.UniverseEntry
	StockService   interfaces.StockService
	RefreshService interfaces.RefreshService
	Hub            *notify.Hub
	StartupTime    time.Time

	housekeeping  *Housekeeping
	refreshCancel context.CancelFunc
	refreshDone   chan struct{}
	hubStarted    bool
	closeOnce     sync.Once
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPaths returns the config files to load when none are given on
// the command line: FNOSCAN_CONFIG, then fnoscan.toml next to the binary,
// then config/fnoscan.toml for development.
func ResolveConfigPaths(paths []string) []string {
	if len(paths) > 0 {
		return paths
	}
	if p := os.Getenv("FNOSCAN_CONFIG"); p != "" {
		return []string{p}
	}
	p := filepath.Join(getBinaryDir(), "fnoscan.toml")
	if _, err := os.Stat(p); err == nil {
		return []string{p}
	}
	return []string{"config/fnoscan.toml"}
}

// NewApp loads configuration from paths and initializes the application.
func NewApp(paths ...string) (*App, error) {
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPaths(paths)...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewAppWithConfig(config)
}

// NewAppWithConfig initializes the application from a loaded configuration.
func NewAppWithConfig(config *common.Config) (*App, error) {
	startupStart := time.Now()
	logger := common.NewLoggerFromConfig(config.Logging)

	cal, err := calendar.NewFromConfig(config.Calendar)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize calendar: %w", err)
	}

	universe, err := refresh.LoadUniverse(config.Refresh.UniverseFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load symbol universe: %w", err)
	}

	ctx := context.Background()
	store, err := storage.NewSnapshotStore(ctx, logger, config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	market := newMarketClient(config.Clients, logger)
	snapshots := cache.New()

	stockService := stocks.NewService(snapshots, cal, market, market, logger,
		stocks.WithUniverse(universe),
		stocks.WithHistoryRange(config.Refresh.HistoryRange),
	)
	pipeline := refresh.NewPipeline(market, cal, snapshots, store, universe, config.Refresh, logger)

	hub := notify.NewHub(logger)
	pipeline.OnPublish(hub.Broadcast)

	a := &App{
		Config:         config,
		Logger:         logger,
		Calendar:       cal,
		Cache:          snapshots,
		Store:          store,
		MarketClient:   market,
		Universe:       universe,
		StockService:   stockService,
		RefreshService: pipeline,
		Hub:            hub,
		StartupTime:    startupStart,
		housekeeping:   NewHousekeeping(cal, snapshots, config.Refresh.GetInterval(), logger),
	}

	logger.Info().
		Int("universe", len(universe)).
		Str("provider", config.Clients.Provider).
		Str("storage", config.Storage.Backend).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// newMarketClient builds the configured provider. EODHD without an API key
// falls back to Yahoo.
func newMarketClient(cfg common.ClientsConfig, logger *common.Logger) interfaces.MarketDataProvider {
	if cfg.Provider == "eodhd" {
		if cfg.EODHD.APIKey != "" {
			return eodhd.NewClient(cfg.EODHD.APIKey,
				eodhd.WithLogger(logger),
				eodhd.WithBaseURL(cfg.EODHD.BaseURL),
				eodhd.WithRateLimit(cfg.EODHD.RateLimit),
				eodhd.WithTimeout(cfg.EODHD.GetTimeout()),
				eodhd.WithSymbolSuffix(cfg.EODHD.SymbolSuffix),
			)
		}
		logger.Warn().Msg("EODHD API key not configured - falling back to Yahoo Finance")
	}

	return yahoo.NewClient(
		yahoo.WithLogger(logger),
		yahoo.WithBaseURL(cfg.Yahoo.BaseURL),
		yahoo.WithRateLimit(cfg.Yahoo.RateLimit),
		yahoo.WithTimeout(cfg.Yahoo.GetTimeout()),
		yahoo.WithSymbolSuffix(cfg.Yahoo.SymbolSuffix),
	)
}

// StartHub launches the WebSocket hub event loop.
func (a *App) StartHub() {
	if a.hubStarted {
		return
	}
	a.hubStarted = true
	go a.Hub.Run()
}

// WarmCache seeds the cache from persisted storage, bounded by timeout.
func (a *App) WarmCache(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	warmCache(ctx, a.RefreshService, a.Cache, a.Logger)
}

// StartRefresh launches the background refresh loop.
func (a *App) StartRefresh() {
	if a.refreshCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.refreshCancel = cancel
	a.refreshDone = make(chan struct{})
	go func() {
		defer close(a.refreshDone)
		a.RefreshService.Run(ctx)
	}()
}

// StartHousekeeping schedules the maintenance checks.
func (a *App) StartHousekeeping() error {
	return a.housekeeping.Start(a.Config.Housekeeping)
}

// Close releases all resources held by the App.
// Shutdown order: stop refresh loop, stop housekeeping, stop hub, close storage.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		if a.refreshCancel != nil {
			a.refreshCancel()
			<-a.refreshDone
			a.refreshCancel = nil
		}
		if a.housekeeping != nil {
			a.housekeeping.Stop()
		}
		if a.Hub != nil {
			a.Hub.Stop()
		}
		if a.Store != nil {
			if err := a.Store.Close(); err != nil {
				a.Logger.Warn().Err(err).Msg("Failed to close snapshot store")
			}
		}
	})
}
