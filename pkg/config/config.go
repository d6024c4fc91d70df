package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultTimezone = "Pacific/Auckland"

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string
	LogLevel       string

	// DATABASE_URL: runtime connection; DIRECT_URL: direct connection for migrations.
	DatabaseURL string
	DirectURL   string

	// PublicBaseURL is the externally reachable URL of this backend. Install
	// redirects and webhook registration are built from it when set.
	PublicBaseURL string

	// RedisURL enables webhook de-duplication when set.
	RedisURL string

	DB DBConfig

	Shopify ShopifyConfig

	// BypassValidate disables request verification when non-zero and is used as
	// the store id of the synthetic development identity. Never set in production.
	BypassValidate int64

	Timezone      *time.Location
	RootPath      string
	TemporaryPath string

	// AdminAllowedOrigins is the CORS allowlist for the /admin JSON endpoints.
	AdminAllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type ShopifyConfig struct {
	APIKey      string
	APISecret   string
	Scopes      string
	RedirectURL string
	APIVersion  string
}

func (c Config) IsProd() bool {
	return c.AppEnv == "prod"
}

// Validate reports configuration that must not reach a running server.
func (c Config) Validate() error {
	if c.IsProd() {
		if c.Shopify.APISecret == "" {
			return fmt.Errorf("SHOPIFY_API_SECRET is required")
		}
		if c.BypassValidate != 0 {
			return fmt.Errorf("BYPASS_VALIDATE must be 0 in prod")
		}
	}
	return nil
}

func Load() (Config, error) {
	// Convenience for local dev: load variables from .env if present.
	_ = godotenv.Load()

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	bypass, err := strconv.ParseInt(env("BYPASS_VALIDATE", "0"), 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("BYPASS_VALIDATE: %w", err)
	}

	tz, err := time.LoadLocation(env("TIMEZONE", defaultTimezone))
	if err != nil {
		return Config{}, fmt.Errorf("TIMEZONE: %w", err)
	}

	root := os.Getenv("ROOT_PATH")
	if root == "" {
		root, _ = os.Getwd()
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		LogLevel:       env("LOG_LEVEL", "info"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		PublicBaseURL:  strings.TrimRight(strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")), "/"),
		RedisURL:       os.Getenv("REDIS_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "shopkit"),
			User:     env("DB_USER", "shopkit"),
			Password: env("DB_PASSWORD", "shopkit"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		Shopify: ShopifyConfig{
			APIKey:      os.Getenv("SHOPIFY_API_KEY"),
			APISecret:   os.Getenv("SHOPIFY_API_SECRET"),
			Scopes:      env("SCOPES", "read_products"),
			RedirectURL: os.Getenv("SHOPIFY_REDIRECT_URL"),
			APIVersion:  os.Getenv("API_VERSION"),
		},
		BypassValidate:      bypass,
		Timezone:            tz,
		RootPath:            root,
		TemporaryPath:       env("TEMPORARY_PATH", filepath.Join(root, "tmp")),
		AdminAllowedOrigins: envList("ADMIN_ALLOWED_ORIGINS", "https://admin.shopify.com"),
	}, nil
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
