package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"CryptoPilot/internal/api"
	"CryptoPilot/internal/bot"
	"CryptoPilot/internal/collector"
	"CryptoPilot/internal/config"
	"CryptoPilot/internal/fund"
	"CryptoPilot/internal/ledger"
	"CryptoPilot/internal/notifier"
	"CryptoPilot/internal/recorder"
	"CryptoPilot/internal/scheduler"
	"CryptoPilot/internal/strategy"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.Price.Source {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.Price.Symbol)
	case "random_walk":
		return collector.NewRandomWalkFetcher(cfg.Price.Initial, cfg.Price.Volatility)
	case "mock":
		return &collector.MockFetcher{Price: cfg.Price.Initial}
	default:
		return collector.NewCoinGeckoFetcher(cfg.Price.BaseURL, cfg.Price.CoinID, cfg.Price.Currency, cfg.Proxy)
	}
}

func newOracle(ctx context.Context, cfg *config.Config) (strategy.Oracle, error) {
	if cfg.Oracle.Provider == "rules" {
		return strategy.NewRulesOracle(), nil
	}
	if cfg.Oracle.APIKey == "" {
		log.Printf("[WARN] no API key for %s oracle, every cycle will report a failure", cfg.Oracle.Provider)
	}
	return strategy.NewLLMOracle(ctx, strategy.LLMConfig{
		Provider: cfg.Oracle.Provider,
		APIKey:   cfg.Oracle.APIKey,
		BaseURL:  cfg.Oracle.BaseURL,
		Model:    cfg.Oracle.Model,
	})
}

func runBot(parent context.Context) error {
	log.Println("[INFO] CryptoPilot starting...")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := newFetcher(cfg)
	log.Printf("[INFO] price source: %s", fetcher.Name())
	col := collector.NewCollector(fetcher, cfg.Price.Fallback, cfg.Price.Volatility)

	oracle, err := newOracle(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init oracle: %w", err)
	}
	log.Printf("[INFO] signal oracle: %s", oracle.Name())

	store, err := ledger.Open(ctx, cfg.Ledger.Driver, cfg.Ledger.DSN)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer store.Close()
	log.Printf("[INFO] ledger: %s", cfg.Ledger.Driver)

	fm := fund.NewManager(store, cfg.TradingMode(), decimal.NewFromFloat(cfg.Trading.Notional))

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	deps := bot.Deps{
		Collector: col,
		Oracle:    oracle,
		Fund:      fm,
		Scheduler: scheduler.NewCronScheduler(),
		Recorder:  rec,
	}
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		deps.Notifier = tn
	}

	ctrl := bot.New(deps, bot.Config{
		Interval:    cfg.Trading.Interval,
		CallTimeout: cfg.Oracle.CallTimeout,
	})

	hub := api.NewHub(func() interface{} { return ctrl.Dashboard() })
	go hub.Run(ctx, cfg.Server.PushInterval)

	if cfg.Server.JWTSecret == "" {
		log.Println("[WARN] server.jwt_secret is empty, control routes are unauthenticated")
	}
	srv := api.NewServer(ctrl, cfg.Server.JWTSecret, hub)
	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.ListenAndServe(ctx, cfg.Server.Addr) }()

	if tn.Enabled() {
		go tn.StartPolling(ctx, ctrl.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	if cfg.Trading.AutoStart {
		if err := ctrl.Start(ctx); err != nil {
			log.Printf("[ERROR] auto start: %v", err)
		}
	}

	log.Println("[INFO] CryptoPilot is running. Press Ctrl+C to stop.")

	select {
	case <-ctx.Done():
		log.Println("[INFO] shutdown signal received, stopping...")
	case err := <-srvErr:
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
	}

	ctrl.Stop()
	log.Println("[INFO] CryptoPilot stopped")
	return nil
}
