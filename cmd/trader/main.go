package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/skinflip/internal/analysis/technical"
	"github.com/Alias1177/skinflip/internal/api/control"
	"github.com/Alias1177/skinflip/internal/api/dmarket"
	"github.com/Alias1177/skinflip/internal/attributes"
	"github.com/Alias1177/skinflip/internal/config"
	"github.com/Alias1177/skinflip/internal/database"
	"github.com/Alias1177/skinflip/internal/notifier"
	"github.com/Alias1177/skinflip/internal/recorder"
	"github.com/Alias1177/skinflip/internal/scheduler"
	"github.com/Alias1177/skinflip/internal/strategy"
	"github.com/Alias1177/skinflip/internal/trading/execution"
	"github.com/Alias1177/skinflip/internal/trading/risk"
	"github.com/Alias1177/skinflip/models"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	// 1. Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	printConfig(cfg)

	// 2. Marketplace client
	market, err := dmarket.NewClient(dmarket.ClientOptions{
		PublicKey:       cfg.DMarket.PublicKey,
		SecretKey:       cfg.DMarket.SecretKey,
		BaseURL:         cfg.DMarket.BaseURL,
		GameID:          cfg.Strategy.GameID,
		RequestTimeout:  cfg.DMarket.RequestTimeout,
		RequestsPerSec:  cfg.DMarket.RequestsPerSec,
		MaxRetries:      cfg.DMarket.MaxRetries,
		MaxRetryTimeout: cfg.DMarket.MaxRetryTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create DMarket client")
	}

	// 3. Storage: Postgres ledger and price history, SQLite journal
	var (
		history models.PriceHistoryStore
		ledger  models.InventoryLedger
	)
	if cfg.DatabaseConfigured() {
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer db.Close()
		history, ledger = db, db
	} else {
		log.Warn().Msg("No database configured: price history and inventory ledger are disabled")
	}

	var journal recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.SQLitePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			log.Warn().Err(err).Msg("Cannot create journal directory")
		}
		rec, err := recorder.NewSQLiteRecorder(cfg.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open journal")
		}
		journal = rec
	}
	defer journal.Close()

	// 4. Alerts: log, journal and optionally Telegram
	sinks := notifier.FanOut{notifier.NewLogSink(log.Logger), journal}
	if cfg.Telegram.BotToken != "" {
		tg, err := notifier.NewTelegramSink(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			log.Error().Err(err).Msg("Telegram alerts disabled")
		} else {
			defer tg.Close()
			sinks = append(sinks, notifier.MinLevel{Level: cfg.Telegram.MinLevel, Next: tg})
		}
	}

	// 5. Engines
	scanner := strategy.NewEngine(cfg.Strategy, market, history,
		attributes.NewEvaluator(), technical.NewAnalyzer(cfg.Volatility))
	riskManager := risk.NewManager(cfg.Risk, ledger, sinks)
	if err := riskManager.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial portfolio load failed")
	}
	executor := execution.NewEngine(cfg.Execution, market, ledger, riskManager, sinks).WithJournal(journal)

	// 6. Scheduler and control API
	runner := scheduler.NewRunner(cfg.Schedule, scanner, riskManager, executor, journal)
	if err := runner.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer runner.Stop()

	api := control.NewServer(runner, ledger, journal, cfg.Control.Token)
	if err := api.Start(ctx, cfg.Control.Addr); err != nil {
		log.Error().Err(err).Msg("Control API stopped")
		cancel()
	}

	<-ctx.Done()
	log.Info().Msg("Shutting down")
}

func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, exiting...")
		cancel()
	}()
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

func printConfig(cfg *config.Config) {
	log.Info().
		Bool("PaperTrading", cfg.Execution.PaperTrading).
		Bool("ManualConfirmation", cfg.Execution.RequireManualConfirmation).
		Float64("DailyLimitUSD", cfg.Execution.DailyLimitUSD).
		Float64("MaxTradeUSD", cfg.Execution.MaxTradeUSD).
		Float64("MaxExposureUSD", cfg.Risk.MaxTotalExposureUSD).
		Str("ScanSpec", cfg.Schedule.ScanSpec).
		Int("Titles", len(cfg.Schedule.Titles)).
		Bool("Database", cfg.DatabaseConfigured()).
		Bool("Telegram", cfg.Telegram.BotToken != "").
		Str("ControlAddr", cfg.Control.Addr).
		Msg("Configuration loaded")
}
