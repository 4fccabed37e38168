package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"CryptoPilot/internal/model"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Mode    string `yaml:"mode"`
	Trading struct {
		Notional  float64       `yaml:"notional"`
		Interval  time.Duration `yaml:"interval"`
		AutoStart bool          `yaml:"auto_start"`
	} `yaml:"trading"`
	Price struct {
		Source     string  `yaml:"source"` // coingecko | yahoo | random_walk | mock
		BaseURL    string  `yaml:"base_url"`
		CoinID     string  `yaml:"coin_id"`
		Currency   string  `yaml:"currency"`
		Symbol     string  `yaml:"symbol"`
		Fallback   bool    `yaml:"fallback"`
		Volatility float64 `yaml:"volatility"`
		Initial    float64 `yaml:"initial"`
	} `yaml:"price"`
	Oracle struct {
		Provider    string        `yaml:"provider"` // openai | deepseek | rules
		APIKey      string        `yaml:"api_key"`
		BaseURL     string        `yaml:"base_url"`
		Model       string        `yaml:"model"`
		CallTimeout time.Duration `yaml:"call_timeout"`
	} `yaml:"oracle"`
	Ledger struct {
		Driver string `yaml:"driver"` // memory | file | sqlite | postgres
		DSN    string `yaml:"dsn"`
	} `yaml:"ledger"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Server struct {
		Addr         string        `yaml:"addr"`
		JWTSecret    string        `yaml:"jwt_secret"`
		PushInterval time.Duration `yaml:"push_interval"`
	} `yaml:"server"`
	Proxy string `yaml:"proxy"`
}

// Path returns the config file path from CONFIG_PATH or the default.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads .env, then the YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"TRADING_MODE":       &c.Mode,
		"PRICE_SOURCE":       &c.Price.Source,
		"COINGECKO_BASE_URL": &c.Price.BaseURL,
		"COIN_ID":            &c.Price.CoinID,
		"ORACLE_PROVIDER":    &c.Oracle.Provider,
		"ORACLE_API_KEY":     &c.Oracle.APIKey,
		"ORACLE_BASE_URL":    &c.Oracle.BaseURL,
		"ORACLE_MODEL":       &c.Oracle.Model,
		"LEDGER_DRIVER":      &c.Ledger.Driver,
		"LEDGER_DSN":         &c.Ledger.DSN,
		"SQLITE_PATH":        &c.Database.SQLitePath,
		"TELEGRAM_BOT_TOKEN": &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &c.Telegram.ChatID,
		"SERVER_ADDR":        &c.Server.Addr,
		"JWT_SECRET":         &c.Server.JWTSecret,
		"HTTPS_PROXY":        &c.Proxy,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	// Provider-specific keys only fill in an unset ORACLE_API_KEY.
	if c.Oracle.APIKey == "" {
		switch c.Oracle.Provider {
		case "deepseek":
			c.Oracle.APIKey = os.Getenv("DEEPSEEK_API_KEY")
		case "openai", "":
			c.Oracle.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	if v := os.Getenv("TRADE_NOTIONAL"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("TRADE_NOTIONAL: %w", err)
		}
		c.Trading.Notional = n
	}
	if v := os.Getenv("ANALYSIS_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ANALYSIS_INTERVAL: %w", err)
		}
		c.Trading.Interval = d
	}
	if v := os.Getenv("AUTO_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("AUTO_START: %w", err)
		}
		c.Trading.AutoStart = b
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = string(model.ModeDemo)
	}
	if c.Trading.Notional == 0 {
		c.Trading.Notional = 500
	}
	if c.Trading.Interval == 0 {
		c.Trading.Interval = 15 * time.Second
	}
	if c.Price.Source == "" {
		c.Price.Source = "coingecko"
	}
	if c.Price.CoinID == "" {
		c.Price.CoinID = "bitcoin"
	}
	if c.Price.Currency == "" {
		c.Price.Currency = "eur"
	}
	if c.Price.Symbol == "" {
		c.Price.Symbol = "BTC-EUR"
	}
	if c.Price.Volatility == 0 {
		c.Price.Volatility = 100
	}
	if c.Price.Initial == 0 {
		c.Price.Initial = 50000
	}
	if c.Oracle.Provider == "" {
		c.Oracle.Provider = "openai"
	}
	if c.Oracle.Model == "" {
		switch c.Oracle.Provider {
		case "deepseek":
			c.Oracle.Model = "deepseek-chat"
		default:
			c.Oracle.Model = "gpt-4o-mini"
		}
	}
	if c.Oracle.CallTimeout == 0 {
		c.Oracle.CallTimeout = 30 * time.Second
	}
	if c.Ledger.Driver == "" {
		c.Ledger.Driver = "file"
	}
	if c.Ledger.DSN == "" && c.Ledger.Driver == "file" {
		c.Ledger.DSN = "data/ledger"
	}
	if c.Ledger.DSN == "" && c.Ledger.Driver == "sqlite" {
		c.Ledger.DSN = "data/ledger.db"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/cycles.db"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.PushInterval == 0 {
		c.Server.PushInterval = 5 * time.Second
	}
}

// TradingMode returns the configured mode.
func (c *Config) TradingMode() model.Mode { return model.Mode(c.Mode) }

// Validate checks that all fields are consistent.
func (c *Config) Validate() error {
	if !c.TradingMode().Valid() {
		return fmt.Errorf("mode must be demo or live, got %q", c.Mode)
	}
	if c.Trading.Notional <= 0 {
		return fmt.Errorf("trading.notional must be positive")
	}
	if c.Trading.Interval < time.Second {
		return fmt.Errorf("trading.interval must be at least 1s")
	}
	switch c.Price.Source {
	case "coingecko", "yahoo", "random_walk", "mock":
	default:
		return fmt.Errorf("unknown price.source %q", c.Price.Source)
	}
	if c.Price.Volatility < 0 {
		return fmt.Errorf("price.volatility must not be negative")
	}
	switch c.Oracle.Provider {
	case "openai", "deepseek", "rules":
	default:
		return fmt.Errorf("unknown oracle.provider %q", c.Oracle.Provider)
	}
	switch c.Ledger.Driver {
	case "memory", "file", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown ledger.driver %q", c.Ledger.Driver)
	}
	if c.Ledger.Driver == "postgres" && c.Ledger.DSN == "" {
		return fmt.Errorf("ledger.dsn is required for postgres")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	if c.Server.PushInterval <= 0 {
		return fmt.Errorf("server.push_interval must be positive")
	}
	return nil
}
