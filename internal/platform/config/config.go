package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	RefreshTokenExpiryDuration time.Duration

	// External OAuth providers
	GoogleClientID string

	// Archival sweep
	SweepEnabled  bool
	SweepSchedule string // cron spec

	// Notifications (AMQP); empty URL disables the producer and falls back
	// to log-only delivery.
	AMQPURL        string
	NotifyExchange string

	// Business rules
	MinOpeningBalance decimal.Decimal

	// Rate limiting for the login endpoint, ulule/limiter format (e.g. "5-M").
	LoginRateLimit string

	PosthogAPIKey string
}

// LoadConfig loads configuration from environment variables and a .env file
// if present. Every key has a workable development default; production
// deployments are expected to override the secrets.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "bank-account-api")
	viper.SetDefault("REFRESH_TOKEN_EXPIRY_DURATION", "168h")
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("SWEEP_ENABLED", true)
	viper.SetDefault("SWEEP_SCHEDULE", "0 2 * * *")
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("NOTIFY_EXCHANGE", "bank.notifications")
	viper.SetDefault("MIN_OPENING_BALANCE", "10000")
	viper.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	viper.SetDefault("POSTHOG_API_KEY", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" && cfg.IsProduction {
		log.Println("Warning: JWT_SECRET is the default insecure key. Set it in production.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiry, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiry = time.Hour
		log.Printf("Warning: Invalid JWT_EXPIRY_DURATION (%q). Defaulting to %s.\n", jwtExpiryStr, jwtExpiry)
	}
	cfg.JWTExpiryDuration = jwtExpiry

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	refreshExpiryStr := viper.GetString("REFRESH_TOKEN_EXPIRY_DURATION")
	refreshExpiry, err := time.ParseDuration(refreshExpiryStr)
	if err != nil {
		refreshExpiry = time.Hour * 24 * 7
		log.Printf("Warning: Invalid REFRESH_TOKEN_EXPIRY_DURATION (%q). Defaulting to %s.\n", refreshExpiryStr, refreshExpiry)
	}
	cfg.RefreshTokenExpiryDuration = refreshExpiry

	cfg.GoogleClientID = viper.GetString("GOOGLE_CLIENT_ID")
	if cfg.GoogleClientID == "" {
		log.Println("Warning: GOOGLE_CLIENT_ID not set. Google sign-in will not function.")
	}

	cfg.SweepEnabled = viper.GetBool("SWEEP_ENABLED")
	cfg.SweepSchedule = viper.GetString("SWEEP_SCHEDULE")

	cfg.AMQPURL = viper.GetString("AMQP_URL")
	cfg.NotifyExchange = viper.GetString("NOTIFY_EXCHANGE")

	minBalanceStr := viper.GetString("MIN_OPENING_BALANCE")
	minBalance, err := decimal.NewFromString(minBalanceStr)
	if err != nil {
		minBalance = decimal.NewFromInt(10000)
		log.Printf("Warning: Invalid MIN_OPENING_BALANCE (%q). Defaulting to %s.\n", minBalanceStr, minBalance)
	}
	cfg.MinOpeningBalance = minBalance

	cfg.LoginRateLimit = viper.GetString("LOGIN_RATE_LIMIT")
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")

	return cfg, nil
}
