package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/limitbook/internal/domain"
)

// Config holds all runtime configuration for the order book server.
type Config struct {
	Port             int
	LogLevel         string
	ExpiryCutoff     domain.TimeOfDay
	ExpiryWakeBuffer time.Duration
	TickSize         decimal.Decimal
	VWAPWindow       time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	ShutdownTimeout  time.Duration
	JournalDir       string // empty disables the trade journal
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	cutoff, err := domain.ParseTimeOfDay(getStr("EXPIRY_CUTOFF", "16:00:00"))
	if err != nil {
		return nil, fmt.Errorf("invalid EXPIRY_CUTOFF: %w", err)
	}

	wakeBuffer, err := getDuration("EXPIRY_WAKE_BUFFER", 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("invalid EXPIRY_WAKE_BUFFER: %w", err)
	}

	tickSize, err := decimal.NewFromString(getStr("TICK_SIZE", "0.01"))
	if err != nil {
		return nil, fmt.Errorf("invalid TICK_SIZE: %w", err)
	}
	if tickSize.Sign() <= 0 {
		return nil, fmt.Errorf("invalid TICK_SIZE: must be positive")
	}

	vwapWindow, err := getDuration("VWAP_WINDOW", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid VWAP_WINDOW: %w", err)
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:             port,
		LogLevel:         logLevel,
		ExpiryCutoff:     cutoff,
		ExpiryWakeBuffer: wakeBuffer,
		TickSize:         tickSize,
		VWAPWindow:       vwapWindow,
		ReadTimeout:      readTimeout,
		WriteTimeout:     writeTimeout,
		IdleTimeout:      idleTimeout,
		ShutdownTimeout:  shutdownTimeout,
		JournalDir:       getStr("JOURNAL_DIR", ""),
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
