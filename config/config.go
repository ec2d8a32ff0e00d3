package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	RateFeed RateFeedConfig
	Pricing  PricingConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret      string
	TokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// RateFeedConfig points at the external per-gram metal rate API and
// controls how often the scheduler refreshes from it.
type RateFeedConfig struct {
	BaseURL     string
	APIKey      string
	RefreshCron string
	CacheTTL    time.Duration
}

// PricingConfig carries the pricing policy knobs: the flat tax percentage
// applied by default and the margin multipliers used when a computed price
// is auto-applied.
type PricingConfig struct {
	DefaultTaxPercent decimal.Decimal
	MRPMargin         decimal.Decimal
	CostMargin        decimal.Decimal
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "kanakam"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "your-secret-key"),
			TokenExpiry: parseDuration(getEnv("JWT_TOKEN_EXPIRY", "12h"), 12*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		},
		RateFeed: RateFeedConfig{
			BaseURL:     getEnv("RATE_FEED_URL", ""),
			APIKey:      getEnv("RATE_FEED_API_KEY", ""),
			RefreshCron: getEnv("RATE_FEED_REFRESH_CRON", "0 9 * * *"),
			CacheTTL:    parseDuration(getEnv("RATE_FEED_CACHE_TTL", "10m"), 10*time.Minute),
		},
		Pricing: PricingConfig{
			DefaultTaxPercent: parseDecimal(getEnv("PRICING_DEFAULT_TAX_PERCENT", "3"), "3"),
			MRPMargin:         parseDecimal(getEnv("PRICING_MRP_MARGIN", "1.10"), "1.10"),
			CostMargin:        parseDecimal(getEnv("PRICING_COST_MARGIN", "0.70"), "0.70"),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseDecimal(s, fallback string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Printf("Invalid decimal %s, using default %s", s, fallback)
		return decimal.RequireFromString(fallback)
	}
	return d
}
