package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/adhish9899/stat-arb/internal/models"
)

// Config holds all application configuration
type Config struct {
	// Pair universe
	Pairs []models.Pair

	// Trading logic
	MinEntryExitSpreadDiffBps float64
	LookBackDays              int
	EntryThresholds           []float64
	SqThreshDiff              float64
	SqTime                    models.TimeOfDay
	SlippagePerLeg            float64
	MinSpreadThresh           float64
	QuantileStep              float64
	SessionStart              models.TimeOfDay
	SessionEnd                models.TimeOfDay

	// Data sources
	DataDir         string
	AlpacaKeyID     string
	AlpacaSecretKey string
	AlpacaDataURL   string

	// Performance
	CacheTTL    time.Duration
	HTTPTimeout time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	pairs, err := parsePairs(getEnv("PAIRS", "GOOGL/GOOG,FOXA/FOX,NWSA/NWS"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse PAIRS: %w", err)
	}

	thresholds, err := parseFloats(getEnv("ENTRY_THRESHOLDS", "0.90,0.95"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ENTRY_THRESHOLDS: %w", err)
	}

	sqTime, err := models.ParseTimeOfDay(getEnv("SQ_TIME", "15:50"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SQ_TIME: %w", err)
	}
	sessionStart, err := models.ParseTimeOfDay(getEnv("SESSION_START", "09:40"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SESSION_START: %w", err)
	}
	sessionEnd, err := models.ParseTimeOfDay(getEnv("SESSION_END", "16:00"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SESSION_END: %w", err)
	}

	cfg := &Config{
		Pairs: pairs,

		// Trading logic
		MinEntryExitSpreadDiffBps: getEnvFloat("MIN_ENTRY_EXIT_SPREAD_DIFF_BPS", 30.0),
		LookBackDays:              getEnvInt("LOOK_BACK_DAYS", 5),
		EntryThresholds:           thresholds,
		SqThreshDiff:              getEnvFloat("SQ_THRESH_DIFF", 0.4),
		SqTime:                    sqTime,
		SlippagePerLeg:            getEnvFloat("SLIPPAGE_PER_LEG", 2.5e-4),
		MinSpreadThresh:           getEnvFloat("MIN_SPREAD_THRESH", 0.45),
		QuantileStep:              getEnvFloat("QUANTILE_STEP", 0.05),
		SessionStart:              sessionStart,
		SessionEnd:                sessionEnd,

		// Data sources
		DataDir:         getEnv("DATA_DIR", ""),
		AlpacaKeyID:     getEnv("ALPACA_KEY_ID", ""),
		AlpacaSecretKey: getEnv("ALPACA_SECRET_KEY", ""),
		AlpacaDataURL:   getEnv("ALPACA_DATA_URL", "https://data.alpaca.markets"),

		// Performance
		CacheTTL:    getEnvDuration("CACHE_TTL_MS", 300000) * time.Millisecond,
		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT_MS", 5000) * time.Millisecond,
	}

	// Validate trading parameters
	if cfg.LookBackDays < 1 {
		return nil, fmt.Errorf("LOOK_BACK_DAYS must be >= 1, got %d", cfg.LookBackDays)
	}
	if cfg.QuantileStep <= 0 {
		return nil, fmt.Errorf("QUANTILE_STEP must be > 0, got %v", cfg.QuantileStep)
	}
	for _, x := range cfg.EntryThresholds {
		if x <= 0.5 || x >= 1.0 {
			return nil, fmt.Errorf("entry threshold %v out of range (0.5, 1.0)", x)
		}
	}
	if cfg.SessionStart >= cfg.SessionEnd {
		return nil, fmt.Errorf("SESSION_START %s must precede SESSION_END %s", cfg.SessionStart, cfg.SessionEnd)
	}

	// Either a local CSV store or API credentials must be available
	if cfg.DataDir == "" && (cfg.AlpacaKeyID == "" || cfg.AlpacaSecretKey == "") {
		return nil, fmt.Errorf("DATA_DIR or ALPACA_KEY_ID and ALPACA_SECRET_KEY must be set")
	}

	return cfg, nil
}

// UseLocalData returns true if price series come from the CSV store
func (c *Config) UseLocalData() bool {
	return c.DataDir != ""
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue int64) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return time.Duration(parsed)
		}
	}
	return time.Duration(defaultValue)
}

func parsePairs(s string) ([]models.Pair, error) {
	var pairs []models.Pair
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		pair, err := models.ParsePair(part)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no pairs configured")
	}
	return pairs, nil
}

func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q: %w", part, err)
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return out, nil
}
