package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Telegram TelegramConfig
	Ledger   LedgerConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	PublicURL    string
	AllowOrigins string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig backs the session store. An empty Host keeps sessions in memory.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	SessionTTL    time.Duration
	BcryptCost    int
	CookieSecure  bool
	SessionCookie string
}

type TelegramConfig struct {
	BotToken       string
	OperatorChatID int64
}

// LedgerConfig holds the business constants. Each one can be overridden at
// runtime through the settings table.
type LedgerConfig struct {
	SignupReward    decimal.Decimal
	ClickReward     decimal.Decimal
	SaleReward      decimal.Decimal
	MinPayoutAmount decimal.Decimal
}

func (d DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	operatorChat, _ := strconv.ParseInt(getEnv("TELEGRAM_OPERATOR_CHAT_ID", "0"), 10, 64)
	bcryptCost, _ := strconv.Atoi(getEnv("BCRYPT_COST", "10"))
	cookieSecure, _ := strconv.ParseBool(getEnv("COOKIE_SECURE", "false"))

	tokenTTL, err := time.ParseDuration(getEnv("JWT_TTL", "72h"))
	if err != nil {
		return nil, err
	}
	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, err
	}

	ledger, err := loadLedger()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			PublicURL:    getEnv("PUBLIC_URL", "http://localhost:8080"),
			AllowOrigins: getEnv("ALLOW_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "vouchly"),
			Password: getEnv("DB_PASSWORD", "vouchly"),
			Name:     getEnv("DB_NAME", "vouchly"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			TokenTTL:      tokenTTL,
			SessionTTL:    sessionTTL,
			BcryptCost:    bcryptCost,
			CookieSecure:  cookieSecure,
			SessionCookie: getEnv("SESSION_COOKIE", "vouchly_session"),
		},
		Telegram: TelegramConfig{
			BotToken:       getEnv("TELEGRAM_BOT_TOKEN", ""),
			OperatorChatID: operatorChat,
		},
		Ledger: *ledger,
	}

	return cfg, nil
}

func loadLedger() (*LedgerConfig, error) {
	signup, err := getEnvAmount("REFERRAL_SIGNUP_REWARD", DefaultSignupReward)
	if err != nil {
		return nil, err
	}
	click, err := getEnvAmount("REFERRAL_CLICK_REWARD", DefaultClickReward)
	if err != nil {
		return nil, err
	}
	sale, err := getEnvAmount("REFERRAL_SALE_REWARD", DefaultSaleReward)
	if err != nil {
		return nil, err
	}
	minPayout, err := getEnvAmount("PAYOUT_MIN_AMOUNT", DefaultMinPayoutAmount)
	if err != nil {
		return nil, err
	}
	return &LedgerConfig{
		SignupReward:    signup,
		ClickReward:     click,
		SaleReward:      sale,
		MinPayoutAmount: minPayout,
	}, nil
}

// getEnvAmount reads a non-negative decimal.
func getEnvAmount(key, defaultValue string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(getEnv(key, defaultValue))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return v, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Ledger defaults
const (
	DefaultSignupReward    = "100"
	DefaultClickReward     = "0"
	DefaultSaleReward      = "100"
	DefaultMinPayoutAmount = "10"
)
