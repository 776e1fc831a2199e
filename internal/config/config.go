package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Alias1177/skinflip/internal/analysis/technical"
	"github.com/Alias1177/skinflip/internal/database"
	"github.com/Alias1177/skinflip/internal/scheduler"
	"github.com/Alias1177/skinflip/internal/strategy"
	"github.com/Alias1177/skinflip/internal/trading/execution"
	"github.com/Alias1177/skinflip/internal/trading/risk"
	"github.com/Alias1177/skinflip/models"
)

// DMarketConfig holds marketplace credentials and transport settings.
type DMarketConfig struct {
	PublicKey       string        `yaml:"public_key"`
	SecretKey       string        `yaml:"secret_key"`
	BaseURL         string        `yaml:"base_url"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	RequestsPerSec  int           `yaml:"requests_per_sec"`
	MaxRetries      int           `yaml:"max_retries"`
	MaxRetryTimeout time.Duration `yaml:"max_retry_timeout"`
}

type TelegramConfig struct {
	BotToken string            `yaml:"bot_token"`
	ChatID   int64             `yaml:"chat_id"`
	MinLevel models.AlertLevel `yaml:"min_level"`
}

type ControlConfig struct {
	Addr  string `yaml:"addr"`
	Token string `yaml:"token"`
}

// Config holds all application configuration
type Config struct {
	LogLevel   string                    `yaml:"log_level"`
	SQLitePath string                    `yaml:"sqlite_path"`
	DMarket    DMarketConfig             `yaml:"dmarket"`
	Database   database.ConnectionParams `yaml:"database"`
	Telegram   TelegramConfig            `yaml:"telegram"`
	Control    ControlConfig             `yaml:"control"`
	Strategy   strategy.Config           `yaml:"strategy"`
	Volatility technical.Config          `yaml:"volatility"`
	Risk       risk.Config               `yaml:"risk"`
	Execution  execution.Config          `yaml:"execution"`
	Schedule   scheduler.Config          `yaml:"schedule"`
}

// Default returns the configuration used when neither a file nor the
// environment says otherwise. Trading starts in paper mode.
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		SQLitePath: "data/skinflip.db",
		DMarket: DMarketConfig{
			RequestTimeout:  30 * time.Second,
			RequestsPerSec:  5,
			MaxRetries:      3,
			MaxRetryTimeout: time.Minute,
		},
		Database:   database.ConnectionParams{Port: "5432", SSLMode: "disable"},
		Telegram:   TelegramConfig{MinLevel: models.AlertHigh},
		Control:    ControlConfig{Addr: ":8080"},
		Strategy:   strategy.DefaultConfig(),
		Volatility: technical.DefaultConfig(),
		Risk:       risk.DefaultConfig(),
		Execution:  execution.DefaultConfig(),
		Schedule:   scheduler.DefaultConfig(),
	}
}

// Load builds the configuration: defaults, then the YAML file at path (a
// missing file is fine, an empty path skips it), then .env and the
// environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables.
func (c *Config) applyEnv() error {
	c.LogLevel = getEnvWithDefault("LOG_LEVEL", c.LogLevel)
	c.SQLitePath = getEnvWithDefault("SQLITE_PATH", c.SQLitePath)

	c.DMarket.PublicKey = getEnvWithDefault("DMARKET_PUBLIC_KEY", c.DMarket.PublicKey)
	c.DMarket.SecretKey = getEnvWithDefault("DMARKET_SECRET_KEY", c.DMarket.SecretKey)
	c.DMarket.BaseURL = getEnvWithDefault("DMARKET_BASE_URL", c.DMarket.BaseURL)
	c.DMarket.RequestsPerSec = getEnvIntWithDefault("DMARKET_RPS", c.DMarket.RequestsPerSec)
	c.DMarket.MaxRetries = getEnvIntWithDefault("DMARKET_MAX_RETRIES", c.DMarket.MaxRetries)
	c.DMarket.RequestTimeout = time.Duration(getEnvIntWithDefault("REQUEST_TIMEOUT", int(c.DMarket.RequestTimeout/time.Second))) * time.Second

	c.Database.Host = getEnvWithDefault("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvWithDefault("DB_PORT", c.Database.Port)
	c.Database.User = getEnvWithDefault("DB_USER", c.Database.User)
	c.Database.Password = getEnvWithDefault("DB_PASSWORD", c.Database.Password)
	c.Database.DBName = getEnvWithDefault("DB_NAME", c.Database.DBName)
	c.Database.SSLMode = getEnvWithDefault("DB_SSLMODE", c.Database.SSLMode)

	c.Telegram.BotToken = getEnvWithDefault("TELEGRAM_BOT_TOKEN", c.Telegram.BotToken)
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}
	if v := os.Getenv("TELEGRAM_MIN_LEVEL"); v != "" {
		lvl, err := models.ParseAlertLevel(v)
		if err != nil {
			return fmt.Errorf("TELEGRAM_MIN_LEVEL: %w", err)
		}
		c.Telegram.MinLevel = lvl
	}

	c.Control.Addr = getEnvWithDefault("CONTROL_ADDR", c.Control.Addr)
	c.Control.Token = getEnvWithDefault("CONTROL_TOKEN", c.Control.Token)

	c.Execution.PaperTrading = getEnvBoolWithDefault("PAPER_TRADING", c.Execution.PaperTrading)
	c.Execution.RequireManualConfirmation = getEnvBoolWithDefault("REQUIRE_CONFIRMATION", c.Execution.RequireManualConfirmation)
	c.Execution.DailyLimitUSD = getEnvFloatWithDefault("DAILY_LIMIT_USD", c.Execution.DailyLimitUSD)
	c.Execution.MaxTradeUSD = getEnvFloatWithDefault("MAX_TRADE_USD", c.Execution.MaxTradeUSD)
	c.Execution.Blacklist = getEnvListWithDefault("BLACKLIST", c.Execution.Blacklist)

	c.Risk.MaxTotalExposureUSD = getEnvFloatWithDefault("MAX_EXPOSURE_USD", c.Risk.MaxTotalExposureUSD)

	c.Schedule.ScanSpec = getEnvWithDefault("CRON_SCAN", c.Schedule.ScanSpec)
	c.Schedule.SweepSpec = getEnvWithDefault("CRON_SWEEP", c.Schedule.SweepSpec)
	c.Schedule.RunOnStart = getEnvBoolWithDefault("RUN_ON_START", c.Schedule.RunOnStart)
	c.Schedule.Titles = getEnvListWithDefault("WATCH_TITLES", c.Schedule.Titles)
	return nil
}

// DatabaseConfigured reports whether Postgres connection details were given.
func (c *Config) DatabaseConfigured() bool {
	return c.Database.Host != "" && c.Database.DBName != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	var errs []error
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if len(c.Schedule.Titles) == 0 {
		errs = append(errs, errors.New("schedule.titles: at least one item title is required"))
	}
	if !c.Execution.PaperTrading && (c.DMarket.PublicKey == "" || c.DMarket.SecretKey == "") {
		errs = append(errs, errors.New("dmarket keys are required when paper trading is off"))
	}
	if !c.Execution.PaperTrading && c.Control.Token == "" && !isLoopback(c.Control.Addr) {
		errs = append(errs, fmt.Errorf("control.token is required when paper trading is off and control.addr %q is not loopback", c.Control.Addr))
	}
	if c.Execution.DailyLimitUSD <= 0 || c.Execution.MaxTradeUSD <= 0 {
		errs = append(errs, errors.New("execution limits must be positive"))
	}
	if c.Execution.MaxTradeUSD > c.Execution.DailyLimitUSD {
		errs = append(errs, errors.New("execution.max_trade_usd exceeds execution.daily_limit_usd"))
	}
	if c.Risk.MaxTotalExposureUSD <= 0 || c.Risk.MaxSinglePositionUSD <= 0 {
		errs = append(errs, errors.New("risk limits must be positive"))
	}
	if c.Risk.MinStopLossPct > c.Risk.MaxStopLossPct {
		errs = append(errs, errors.New("risk.min_stop_loss_pct exceeds risk.max_stop_loss_pct"))
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		errs = append(errs, errors.New("telegram.chat_id is required with a bot token"))
	}
	if c.Strategy.FeeFallback == strategy.FeeFallbackDefault && c.Strategy.DefaultFees.Rate <= 0 {
		errs = append(errs, errors.New("strategy.default_fees.rate must be positive"))
	}
	return errors.Join(errs...)
}

// isLoopback reports whether a listen address only accepts local connections.
// An empty host listens on every interface.
func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvListWithDefault splits on ";" since item titles may contain commas.
func getEnvListWithDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
