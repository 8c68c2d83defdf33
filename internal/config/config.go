package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Scan    ScanConfig    `mapstructure:"scan"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LedgerConfig describes the node and the tracked issuer/currency pair.
type LedgerConfig struct {
	RPCURL         string `mapstructure:"rpc_url"`
	Issuer         string `mapstructure:"issuer"`
	Currency       string `mapstructure:"currency"`
	PageLimit      int    `mapstructure:"page_limit"`
	RequestTimeout int    `mapstructure:"request_timeout"`
}

// ScanConfig holds scan engine settings.
type ScanConfig struct {
	ExcludeIssuer   bool `mapstructure:"exclude_issuer"`
	LiveUpdate      bool `mapstructure:"live_update"`
	CooldownSeconds int  `mapstructure:"cooldown_seconds"`
}

// MetricsConfig holds the external price/supply feed settings.
type MetricsConfig struct {
	URL            string  `mapstructure:"url"`
	RefreshSeconds int     `mapstructure:"refresh_seconds"`
	FallbackSupply float64 `mapstructure:"fallback_supply"`
}

// LoadConfig resolves configuration in layers:
//  1. built-in defaults
//  2. config.yaml in the working directory
//  3. .env file / environment variables
//  4. command-line flags
//
// Later layers win.
func LoadConfig(args []string) (*Config, error) {
	godotenv.Load(".env")

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.ReadInConfig() // optional file, ignore the error

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setupEnvAliases(v)

	if err := setupFlags(v, args); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ledger.rpc_url", "https://s1.ripple.com:51234/")
	v.SetDefault("ledger.issuer", "")
	v.SetDefault("ledger.currency", "")
	v.SetDefault("ledger.page_limit", 400)
	v.SetDefault("ledger.request_timeout", 30)

	v.SetDefault("scan.exclude_issuer", true)
	v.SetDefault("scan.live_update", false)
	v.SetDefault("scan.cooldown_seconds", 10)

	v.SetDefault("metrics.url", "")
	v.SetDefault("metrics.refresh_seconds", 60)
	v.SetDefault("metrics.fallback_supply", 100_000_000_000)
}

func setupEnvAliases(v *viper.Viper) {
	v.BindEnv("ledger.rpc_url", "LEDGER_RPC_URL")
	v.BindEnv("ledger.issuer", "LEDGER_ISSUER")
	v.BindEnv("ledger.currency", "LEDGER_CURRENCY")
	v.BindEnv("ledger.page_limit", "LEDGER_PAGE_LIMIT")
	v.BindEnv("ledger.request_timeout", "LEDGER_REQUEST_TIMEOUT")

	v.BindEnv("scan.exclude_issuer", "SCAN_EXCLUDE_ISSUER")
	v.BindEnv("scan.live_update", "SCAN_LIVE_UPDATE")
	v.BindEnv("scan.cooldown_seconds", "SCAN_COOLDOWN_SECONDS")

	v.BindEnv("metrics.url", "METRICS_URL")
	v.BindEnv("metrics.refresh_seconds", "METRICS_REFRESH_SECONDS")
	v.BindEnv("metrics.fallback_supply", "METRICS_FALLBACK_SUPPLY")
}

// setupFlags registers flags on a fresh FlagSet so LoadConfig can be called
// more than once per process (tests, subcommands).
func setupFlags(v *viper.Viper, args []string) error {
	fs := pflag.NewFlagSet("trustline-monitor", pflag.ContinueOnError)

	fs.String("ledger.rpc_url", "https://s1.ripple.com:51234/", "Ledger JSON-RPC endpoint (env: LEDGER_RPC_URL)")
	fs.String("ledger.issuer", "", "Token issuer account (env: LEDGER_ISSUER)")
	fs.String("ledger.currency", "", "Token currency code (env: LEDGER_CURRENCY)")
	fs.Int("ledger.page_limit", 400, "Trustlines per page (env: LEDGER_PAGE_LIMIT)")
	fs.Int("ledger.request_timeout", 30, "Request timeout in seconds (env: LEDGER_REQUEST_TIMEOUT)")

	fs.Bool("scan.exclude_issuer", true, "Exclude the issuer account from rankings (env: SCAN_EXCLUDE_ISSUER)")
	fs.Bool("scan.live_update", false, "Rescan automatically after each completion (env: SCAN_LIVE_UPDATE)")
	fs.Int("scan.cooldown_seconds", 10, "Delay between completed scan and rescan (env: SCAN_COOLDOWN_SECONDS)")

	fs.String("metrics.url", "", "Price/supply snapshot endpoint (env: METRICS_URL)")
	fs.Int("metrics.refresh_seconds", 60, "Metrics refresh interval (env: METRICS_REFRESH_SECONDS)")
	fs.Float64("metrics.fallback_supply", 100_000_000_000, "Supply basis when the feed is unavailable (env: METRICS_FALLBACK_SUPPLY)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	return v.BindPFlags(fs)
}

func validateConfig(cfg *Config) error {
	if cfg.Ledger.Issuer == "" {
		return fmt.Errorf("ledger.issuer is required")
	}
	if cfg.Ledger.Currency == "" {
		return fmt.Errorf("ledger.currency is required")
	}
	if cfg.Ledger.PageLimit <= 0 {
		return fmt.Errorf("ledger.page_limit must be positive")
	}
	if cfg.Scan.CooldownSeconds <= 0 {
		return fmt.Errorf("scan.cooldown_seconds must be positive")
	}
	return nil
}
