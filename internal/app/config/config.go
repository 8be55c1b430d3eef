// Package config はアプリケーション設定を環境変数とYAMLファイルから読み込みます。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"goldeye_backend/internal/feature/volatility/domain/timeframe"
	"goldeye_backend/internal/platform/redis"
)

// Provider names accepted by MARKET_PROVIDER.
const (
	ProviderYahoo      = "yahoo"
	ProviderTwelveData = "twelvedata"
)

// Config はサーバーとスナップショットの両バイナリが使う設定です。
type Config struct {
	Port     string `validate:"required,numeric"`
	LogLevel slog.Level
	Redis    redis.Config
	// AllowedOrigins lists the CORS origins of the dashboard. Empty allows all.
	AllowedOrigins []string `validate:"dive,url"`

	Market MarketConfig

	NewsTTL           time.Duration `validate:"gt=0"`
	VolatilityTTL     time.Duration `validate:"gt=0"`
	RefreshInterval   time.Duration `validate:"gte=1m,lte=15m"`
	FetchTimeout      time.Duration `validate:"gt=0"`
	AggregateDeadline time.Duration `validate:"gt=0"`
	Workers           int           `validate:"gte=1,lte=32"`

	Tables Tables
}

// MarketConfig selects and configures the market-data provider.
type MarketConfig struct {
	Provider          string `validate:"oneof=yahoo twelvedata"`
	TwelveDataAPIKey  string `validate:"required_if=Provider twelvedata"`
	TwelveDataBaseURL string `validate:"omitempty,url"`
	YahooBaseURL      string `validate:"omitempty,url"`
	// RateLimit is the number of provider calls allowed per minute. Zero disables limiting.
	RateLimit int `validate:"gte=0"`
}

// Load は .env 読み込み済みのプロセス環境から設定を読み込みます。
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom は getenv から設定を読み込み、GOLDEYE_CONFIG が指すYAMLでテーブルを上書きして検証します。
func LoadFrom(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port: envOr(getenv, "PORT", "8080"),
		Redis: redis.Config{
			Host:     getenv("REDIS_HOST"),
			Port:     envOr(getenv, "REDIS_PORT", "6379"),
			Password: getenv("REDIS_PASSWORD"),
		},
		Market: MarketConfig{
			Provider:          strings.ToLower(envOr(getenv, "MARKET_PROVIDER", ProviderYahoo)),
			TwelveDataAPIKey:  getenv("TWELVE_DATA_API_KEY"),
			TwelveDataBaseURL: getenv("TWELVE_DATA_BASE_URL"),
			YahooBaseURL:      getenv("YAHOO_BASE_URL"),
		},
		AllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS")),
		Tables:         DefaultTables(),
	}

	var errs []error
	cfg.LogLevel = parseLevel(getenv("LOG_LEVEL"), &errs)
	cfg.NewsTTL = duration(getenv, "NEWS_TTL", 5*time.Minute, &errs)
	cfg.VolatilityTTL = duration(getenv, "VOLATILITY_TTL", 15*time.Minute, &errs)
	cfg.RefreshInterval = duration(getenv, "REFRESH_INTERVAL", 5*time.Minute, &errs)
	cfg.FetchTimeout = duration(getenv, "FETCH_TIMEOUT", 8*time.Second, &errs)
	cfg.AggregateDeadline = duration(getenv, "AGGREGATE_DEADLINE", 20*time.Second, &errs)
	cfg.Workers = integer(getenv, "WORKERS", 8, &errs)
	cfg.Market.RateLimit = integer(getenv, "MARKET_RATE_LIMIT", 8, &errs)
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}

	if path := getenv("GOLDEYE_CONFIG"); path != "" {
		if err := loadTables(path, &cfg.Tables); err != nil {
			return Config{}, err
		}
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate は go-playground/validator で設定全体を検証します。
func Validate(cfg Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	vd := cfg.Tables.Volatility
	if _, err := timeframe.PeriodDays(vd.Period); err != nil {
		return fmt.Errorf("invalid config: volatility.period: %w", err)
	}
	if _, err := timeframe.ParseInterval(vd.Interval); err != nil {
		return fmt.Errorf("invalid config: volatility.interval: %w", err)
	}
	return nil
}

// loadTables はYAMLファイルを既定テーブルの上に読み込みます。記載のないキーは既定値のまま残ります。
// ファイルが存在しない場合は警告を出して既定値を使います。
func loadTables(path string, t *Tables) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config file not found; using built-in tables", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, t); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func envOr(getenv func(string) string, key, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func duration(getenv func(string) string, key string, def time.Duration, errs *[]error) time.Duration {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func integer(getenv func(string) string, key string, def int, errs *[]error) int {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func parseLevel(raw string, errs *[]error) slog.Level {
	var l slog.Level
	if strings.TrimSpace(raw) == "" {
		return slog.LevelInfo
	}
	if err := l.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		*errs = append(*errs, fmt.Errorf("LOG_LEVEL: %w", err))
		return slog.LevelInfo
	}
	return l
}
