package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jmanzanog/leek-tracker/internal/domain"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageOracle   = "oracle"
)

type Config struct {
	ServerPort string
	ServerHost string
	LogLevel   string

	PollInterval    time.Duration
	DebounceDelay   time.Duration
	FundConcurrency int
	FundTimeout     time.Duration
	ReloadCoalesce  bool
	ViewVisible     bool

	FundCodes  domain.CodeList
	StockCodes domain.CodeList

	StorageDriver string
	DBDSN         string

	FundBaseURL        string
	StockBaseURL       string
	SymbolDirectoryURL string
}

func Load() (*Config, error) {
	pollInterval, err := time.ParseDuration(getEnvOrDefault("POLL_INTERVAL", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
	}
	if pollInterval <= 0 {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: must be positive, got %s", pollInterval)
	}

	debounce, err := time.ParseDuration(getEnvOrDefault("DEBOUNCE_DELAY", "100ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEBOUNCE_DELAY: %w", err)
	}
	if debounce < 0 {
		return nil, fmt.Errorf("invalid DEBOUNCE_DELAY: must not be negative, got %s", debounce)
	}

	concurrency, err := strconv.Atoi(getEnvOrDefault("FUND_CONCURRENCY", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid FUND_CONCURRENCY: %w", err)
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("invalid FUND_CONCURRENCY: must be at least 1, got %d", concurrency)
	}

	fundTimeout, err := time.ParseDuration(getEnvOrDefault("FUND_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid FUND_TIMEOUT: %w", err)
	}
	if fundTimeout <= 0 {
		return nil, fmt.Errorf("invalid FUND_TIMEOUT: must be positive, got %s", fundTimeout)
	}

	coalesce, err := strconv.ParseBool(getEnvOrDefault("RELOAD_COALESCE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid RELOAD_COALESCE: %w", err)
	}

	visible, err := strconv.ParseBool(getEnvOrDefault("VIEW_VISIBLE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid VIEW_VISIBLE: %w", err)
	}

	driver := getEnvOrDefault("STORAGE_DRIVER", StorageMemory)
	dsn := os.Getenv("DB_DSN")
	switch driver {
	case StorageMemory:
	case StoragePostgres, StorageOracle:
		if dsn == "" {
			return nil, fmt.Errorf("DB_DSN environment variable is required for %s storage", driver)
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER: %s", driver)
	}

	return &Config{
		ServerPort:         getEnvOrDefault("SERVER_PORT", "8080"),
		ServerHost:         getEnvOrDefault("SERVER_HOST", "localhost"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		PollInterval:       pollInterval,
		DebounceDelay:      debounce,
		FundConcurrency:    concurrency,
		FundTimeout:        fundTimeout,
		ReloadCoalesce:     coalesce,
		ViewVisible:        visible,
		FundCodes:          domain.ParseCodeList(os.Getenv("FUND_CODES")),
		StockCodes:         domain.ParseCodeList(os.Getenv("STOCK_CODES")),
		StorageDriver:      driver,
		DBDSN:              dsn,
		FundBaseURL:        getEnvOrDefault("FUND_BASE_URL", "https://fundgz.1234567.com.cn"),
		StockBaseURL:       getEnvOrDefault("STOCK_BASE_URL", "http://hq.sinajs.cn"),
		SymbolDirectoryURL: getEnvOrDefault("SYMBOL_DIRECTORY_URL", "https://leek-hub.vercel.app/api/stocks"),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
