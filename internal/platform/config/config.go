package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	RunMigrations bool
	Storage       string // postgres or memory

	// Requests per period on the event ingestion routes, in ulule format such as "100-M".
	RateLimit          string
	CORSAllowedOrigins []string

	CreditNotesToContraRevenue bool
	DefaultCurrency            string

	MetricsEnabled  bool
	MetricsEndpoint string
	MetricsService  string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", true)
	viper.SetDefault("RUN_MIGRATIONS", true)
	viper.SetDefault("STORAGE", StoragePostgres)
	viper.SetDefault("RATE_LIMIT", "600-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CREDIT_NOTES_TO_CONTRA_REVENUE", false)
	viper.SetDefault("DEFAULT_CURRENCY", "USD")
	viper.SetDefault("METRICS_ENABLED", false)
	viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	viper.SetDefault("METRICS_SERVICE_NAME", "tenant_ledger")

	// Environment variables override the defaults and anything loaded from .env.
	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:                viper.GetString("PGSQL_URL"),
		Port:                       viper.GetString("PORT"),
		IsProduction:               viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:              viper.GetBool("ENABLE_DB_CHECK"),
		RunMigrations:              viper.GetBool("RUN_MIGRATIONS"),
		Storage:                    strings.ToLower(strings.TrimSpace(viper.GetString("STORAGE"))),
		RateLimit:                  viper.GetString("RATE_LIMIT"),
		CORSAllowedOrigins:         splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		CreditNotesToContraRevenue: viper.GetBool("CREDIT_NOTES_TO_CONTRA_REVENUE"),
		DefaultCurrency:            strings.ToUpper(strings.TrimSpace(viper.GetString("DEFAULT_CURRENCY"))),
		MetricsEnabled:             viper.GetBool("METRICS_ENABLED"),
		MetricsEndpoint:            viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		MetricsService:             viper.GetString("METRICS_SERVICE_NAME"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL must be set when STORAGE is %q", StoragePostgres)
		}
	case StorageMemory:
		log.Println("Warning: using in-memory storage; data is lost on restart.")
	default:
		return nil, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}

	if len(cfg.DefaultCurrency) != 3 {
		return nil, fmt.Errorf("DEFAULT_CURRENCY must be a three-letter code, got %q", cfg.DefaultCurrency)
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
