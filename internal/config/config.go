package config

import (
	"fmt"
	"os"
	"time"
)

// QuickBooks base URLs per environment.
const (
	authBaseURL        = "https://oauth.platform.intuit.com/oauth2/v1"
	sandboxAPIBaseURL  = "https://sandbox-quickbooks.api.intuit.com/v3"
	productionAPIBase  = "https://quickbooks.api.intuit.com/v3"
	defaultJWTValidity = 24 * time.Hour
)

// QuickBooks holds the OAuth application credentials and resolved base URLs.
// Components receive this value explicitly; nothing reads the environment
// after Load returns.
type QuickBooks struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthBaseURL  string
	APIBaseURL   string
}

// Config contains runtime configuration values.
type Config struct {
	Environment string
	Port        string

	MongoURI      string
	MongoDatabase string
	RedisAddr     string

	JWTSecret   string
	JWTValidity time.Duration

	QuickBooks QuickBooks
}

// Load reads configuration from environment variables. The QuickBooks client
// credentials and the JWT secret are required; everything else has a default.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:   getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "finbooks"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTValidity:   getDuration("JWT_VALIDITY", defaultJWTValidity),
		QuickBooks: QuickBooks{
			ClientID:     os.Getenv("QUICKBOOKS_CLIENT_ID"),
			ClientSecret: os.Getenv("QUICKBOOKS_CLIENT_SECRET"),
			RedirectURI:  os.Getenv("QUICKBOOKS_REDIRECT_URI"),
			AuthBaseURL:  authBaseURL,
			APIBaseURL:   sandboxAPIBaseURL,
		},
	}

	if cfg.Environment == "production" {
		cfg.QuickBooks.APIBaseURL = productionAPIBase
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.QuickBooks.ClientID == "" || cfg.QuickBooks.ClientSecret == "" {
		return nil, fmt.Errorf("QUICKBOOKS_CLIENT_ID and QUICKBOOKS_CLIENT_SECRET are required")
	}
	if cfg.QuickBooks.RedirectURI == "" {
		return nil, fmt.Errorf("QUICKBOOKS_REDIRECT_URI is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
