package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Mode != "demo" || cfg.Trading.Notional != 500 || cfg.Trading.Interval != 15*time.Second {
		t.Errorf("trading defaults = %s %v %v", cfg.Mode, cfg.Trading.Notional, cfg.Trading.Interval)
	}
	if cfg.Oracle.CallTimeout != 30*time.Second || cfg.Server.PushInterval != 5*time.Second {
		t.Errorf("timing defaults = %v %v", cfg.Oracle.CallTimeout, cfg.Server.PushInterval)
	}
	if cfg.Ledger.Driver != "file" || cfg.Ledger.DSN != "data/ledger" {
		t.Errorf("ledger defaults = %s %s", cfg.Ledger.Driver, cfg.Ledger.DSN)
	}
	if cfg.Price.Currency != "eur" || cfg.Price.Symbol != "BTC-EUR" || cfg.Price.Volatility != 100 {
		t.Errorf("price defaults = %s %s %v", cfg.Price.Currency, cfg.Price.Symbol, cfg.Price.Volatility)
	}
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	path := writeConfig(t, `
mode: live
trading:
  notional: 250
  interval: 1m
price:
  source: random_walk
  volatility: 250
oracle:
  provider: deepseek
  call_timeout: 10s
ledger:
  driver: sqlite
server:
  push_interval: 2s
`)
	t.Setenv("DEEPSEEK_API_KEY", "ds-key")
	t.Setenv("ANALYSIS_INTERVAL", "30s")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.TradingMode() != "live" || cfg.Trading.Notional != 250 {
		t.Errorf("mode/notional = %s/%v", cfg.Mode, cfg.Trading.Notional)
	}
	if cfg.Trading.Interval != 30*time.Second {
		t.Errorf("env should override interval, got %v", cfg.Trading.Interval)
	}
	if cfg.Oracle.APIKey != "ds-key" || cfg.Oracle.Model != "deepseek-chat" || cfg.Oracle.CallTimeout != 10*time.Second {
		t.Errorf("oracle = %+v", cfg.Oracle)
	}
	if cfg.Ledger.DSN != "data/ledger.db" {
		t.Errorf("sqlite dsn default = %q", cfg.Ledger.DSN)
	}
	if cfg.Price.Volatility != 250 {
		t.Errorf("volatility is an absolute move, got %v", cfg.Price.Volatility)
	}
	if cfg.Telegram.ChatID != "42" || cfg.Server.PushInterval != 2*time.Second {
		t.Errorf("telegram/server = %+v %+v", cfg.Telegram, cfg.Server)
	}
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("TRADE_NOTIONAL", "lots")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for invalid TRADE_NOTIONAL")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "trading: [")); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"mode", func(c *Config) { c.Mode = "paper" }, "mode"},
		{"notional", func(c *Config) { c.Trading.Notional = -1 }, "notional"},
		{"interval", func(c *Config) { c.Trading.Interval = 100 * time.Millisecond }, "interval"},
		{"source", func(c *Config) { c.Price.Source = "binance" }, "price.source"},
		{"volatility", func(c *Config) { c.Price.Volatility = -5 }, "price.volatility"},
		{"provider", func(c *Config) { c.Oracle.Provider = "bard" }, "oracle.provider"},
		{"driver", func(c *Config) { c.Ledger.Driver = "redis" }, "ledger.driver"},
		{"postgres dsn", func(c *Config) { c.Ledger.Driver = "postgres"; c.Ledger.DSN = "" }, "ledger.dsn"},
		{"telegram", func(c *Config) { c.Telegram.BotToken = "t"; c.Telegram.ChatID = "" }, "chat_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}
