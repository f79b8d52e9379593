package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/adhish9899/stat-arb/internal/cache"
	"github.com/adhish9899/stat-arb/internal/config"
	"github.com/adhish9899/stat-arb/internal/marketdata"
)

var (
	// Global instances
	cfg       *config.Config
	provider  *marketdata.CachedProvider
	dataCache *cache.Cache
	logger    *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stat-arb",
	Short: "Intraday pairs-trading backtester",
	Long: `stat-arb replays intraday ratio spreads for configured share-class
pairs, calibrates entry/exit thresholds from a trailing lookback window,
and reports the simulated P&L of the resulting round trips.`,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Configure logger: default INFO, DEBUG if DEBUG env is truthy
	verbose := false
	if v := os.Getenv("DEBUG"); v == "true" || v == "1" || v == "yes" {
		verbose = true
	}

	zcfg := zap.NewProductionConfig()
	zcfg.EncoderConfig.TimeKey = "time"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		zcfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	var err error
	logger, err = zcfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
}

// initializeApp sets up all dependencies
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dataCache = cache.NewCache(cfg.CacheTTL)

	// Prefer local CSV data when a data directory is configured,
	// otherwise fetch bars from the market data API.
	var source marketdata.Provider
	if cfg.UseLocalData() {
		source = marketdata.NewCSVStore(cfg.DataDir)
		logger.Debug("Using local CSV data", zap.String("dir", cfg.DataDir))
	} else {
		source = marketdata.NewClient(cfg)
		logger.Debug("Using market data API", zap.String("url", cfg.AlpacaDataURL))
	}
	provider = marketdata.NewCachedProvider(source, dataCache)

	return nil
}
