// Package config loads service configuration from YAML files and
// environment variables, including the exchange coin and transaction
// limit tables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string         `mapstructure:"environment"`
	LogLevel    string         `mapstructure:"log_level"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Email       EmailConfig    `mapstructure:"email"`
	Ledger      LedgerConfig   `mapstructure:"ledger"`
	Wallet      WalletConfig   `mapstructure:"wallet"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	Host           string   `mapstructure:"host"`
	ReadTimeout    int      `mapstructure:"read_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	QueryTimeout    int    `mapstructure:"query_timeout"`
}

type RedisConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	MaxRetries int    `mapstructure:"max_retries"`
	PoolSize   int    `mapstructure:"pool_size"`
}

type EmailConfig struct {
	Provider     string `mapstructure:"provider"` // "sendgrid" or "smtp"
	APIKey       string `mapstructure:"api_key"`
	FromEmail    string `mapstructure:"from_email"`
	FromName     string `mapstructure:"from_name"`
	BaseURL      string `mapstructure:"base_url"` // For confirmation links
	ReplyTo      string `mapstructure:"reply_to"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUsername string `mapstructure:"smtp_username"`
	SMTPPassword string `mapstructure:"smtp_password"`
	SMTPUseTLS   bool   `mapstructure:"smtp_use_tls"`
}

// LedgerConfig contains the exchange network API configuration
type LedgerConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Timeout    int    `mapstructure:"timeout"`
	MaxRetries int    `mapstructure:"max_retries"`
}

// WalletConfig contains withdrawal policy configuration: the subscribed
// coin table, tiered transaction limits, and token expiry. Amounts are
// declared as floats in YAML and converted to decimals when the snapshot
// is built.
type WalletConfig struct {
	TokenExpiryMinutes   int                  `mapstructure:"token_expiry_minutes"`
	AccumulationDelayMs  int                  `mapstructure:"accumulation_delay_ms"`
	PropagatePageFilters bool                 `mapstructure:"propagate_page_filters"`
	MinVerificationTier  int                  `mapstructure:"min_verification_tier"`
	Coins                map[string]CoinEntry `mapstructure:"coins"`
	TransactionLimits    []LimitEntry         `mapstructure:"transaction_limits"`
}

// CoinEntry is the raw YAML shape of a subscribed coin
type CoinEntry struct {
	FullName        string              `mapstructure:"full_name"`
	AllowWithdrawal bool                `mapstructure:"allow_withdrawal"`
	AllowDeposit    bool                `mapstructure:"allow_deposit"`
	WithdrawalFee   float64             `mapstructure:"withdrawal_fee"`
	WithdrawalFees  map[string]FeeEntry `mapstructure:"withdrawal_fees"`
	DepositFees     map[string]FeeEntry `mapstructure:"deposit_fees"`
	Network         string              `mapstructure:"network"`
}

// FeeEntry is the raw YAML shape of a per-network fee rule
type FeeEntry struct {
	Value  float64         `mapstructure:"value"`
	Symbol string          `mapstructure:"symbol"`
	Type   string          `mapstructure:"type"` // "static" or "percentage"
	Levels map[int]float64 `mapstructure:"levels"`
}

// LimitEntry is the raw YAML shape of a tiered transaction limit row
type LimitEntry struct {
	Tier          int     `mapstructure:"tier"`
	Period        string  `mapstructure:"period"` // "24h" or "1mo"
	Type          string  `mapstructure:"type"`   // "withdrawal" or "deposit"
	LimitCurrency string  `mapstructure:"limit_currency"`
	Currency      string  `mapstructure:"currency"`
	Amount        float64 `mapstructure:"amount"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	overrideFromEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Build database URL if not provided
	if config.Database.URL == "" {
		config.Database.URL = fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			config.Database.User,
			config.Database.Password,
			config.Database.Host,
			config.Database.Port,
			config.Database.Name,
			config.Database.SSLMode,
		)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "vaultex_service")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.max_idle_conns", 25)
	viper.SetDefault("database.conn_max_lifetime", 3600)
	viper.SetDefault("database.query_timeout", 30)

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)

	// Email defaults
	viper.SetDefault("email.provider", "")
	viper.SetDefault("email.from_email", "no-reply@vaultex.io")
	viper.SetDefault("email.from_name", "Vaultex")
	viper.SetDefault("email.base_url", "http://localhost:3000")
	viper.SetDefault("email.reply_to", "")
	viper.SetDefault("email.smtp_host", "localhost")
	viper.SetDefault("email.smtp_port", 1025)
	viper.SetDefault("email.smtp_use_tls", false)

	// Ledger defaults
	viper.SetDefault("ledger.base_url", "https://api.vaultex.network")
	viper.SetDefault("ledger.timeout", 30)
	viper.SetDefault("ledger.max_retries", 3)

	// Wallet defaults
	viper.SetDefault("wallet.token_expiry_minutes", 5)
	viper.SetDefault("wallet.accumulation_delay_ms", 500)
	viper.SetDefault("wallet.propagate_page_filters", false)
	viper.SetDefault("wallet.min_verification_tier", 1)
}

func overrideFromEnv() {
	// Server
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			viper.Set("server.port", p)
		}
	}

	// Database
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		viper.Set("database.url", dbURL)
	}

	// Ledger API
	if ledgerKey := os.Getenv("LEDGER_API_KEY"); ledgerKey != "" {
		viper.Set("ledger.api_key", ledgerKey)
	}
	if ledgerBaseURL := os.Getenv("LEDGER_BASE_URL"); ledgerBaseURL != "" {
		viper.Set("ledger.base_url", ledgerBaseURL)
	}

	// Email service
	if emailAPIKey := os.Getenv("EMAIL_API_KEY"); emailAPIKey != "" {
		viper.Set("email.api_key", emailAPIKey)
	}
	if sendgridKey := os.Getenv("SENDGRID_API_KEY"); sendgridKey != "" {
		viper.Set("email.api_key", sendgridKey)
		viper.Set("email.provider", "sendgrid")
	}
	if emailProvider := os.Getenv("EMAIL_PROVIDER"); emailProvider != "" {
		viper.Set("email.provider", emailProvider)
	}
	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		viper.Set("email.base_url", baseURL)
	}
	if fromEmail := os.Getenv("EMAIL_FROM_EMAIL"); fromEmail != "" {
		viper.Set("email.from_email", fromEmail)
	}
}

func validate(config *Config) error {
	if config.Ledger.APIKey == "" && config.Environment == "production" {
		return fmt.Errorf("ledger.api_key is required in production")
	}
	if config.Wallet.TokenExpiryMinutes <= 0 {
		return fmt.Errorf("wallet.token_expiry_minutes must be positive")
	}
	for symbol, coin := range config.Wallet.Coins {
		if coin.WithdrawalFee < 0 {
			return fmt.Errorf("coin %s: withdrawal_fee cannot be negative", symbol)
		}
		for network, fee := range coin.WithdrawalFees {
			if fee.Type != "" && fee.Type != "static" && fee.Type != "percentage" {
				return fmt.Errorf("coin %s network %s: unknown fee type %q", symbol, network, fee.Type)
			}
		}
	}
	for i, limit := range config.Wallet.TransactionLimits {
		switch limit.Period {
		case "24h", "1mo":
		default:
			return fmt.Errorf("transaction_limits[%d]: unknown period %q", i, limit.Period)
		}
		switch limit.Type {
		case "withdrawal", "deposit":
		default:
			return fmt.Errorf("transaction_limits[%d]: unknown type %q", i, limit.Type)
		}
	}
	return nil
}
