package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                  string
	AllowedOrigin         string
	DataDir               string
	CatalogFile           string
	InvoicesFile          string
	SettingsFile          string
	DatabaseURL           string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	PDFCacheTTLSeconds    int
	AuthSecret            string
	AccessTokenTTLMinutes int
	OperatorUsername      string
	OperatorPassword      string
}

func Load() Config {
	// A missing .env file is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	pdfTTL, err := strconv.Atoi(getEnv("PDF_CACHE_TTL_SECONDS", "3600"))
	if err != nil || pdfTTL < 1 {
		pdfTTL = 3600
	}
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}

	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		AllowedOrigin:         getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DataDir:               getEnv("DATA_DIR", "data"),
		CatalogFile:           os.Getenv("CATALOG_FILE"),
		InvoicesFile:          os.Getenv("INVOICES_FILE"),
		SettingsFile:          os.Getenv("SETTINGS_FILE"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		PDFCacheTTLSeconds:    pdfTTL,
		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,
		OperatorUsername:      strings.TrimSpace(getEnv("OPERATOR_USERNAME", "admin")),
		OperatorPassword:      strings.TrimSpace(os.Getenv("OPERATOR_PASSWORD")),
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// CatalogPath resolves the catalog file location: an explicit CATALOG_FILE
// wins, otherwise the file lives under DATA_DIR.
func (c Config) CatalogPath() string {
	if c.CatalogFile != "" {
		return c.CatalogFile
	}
	return filepath.Join(c.DataDir, "products.csv")
}

func (c Config) InvoicesPath() string {
	if c.InvoicesFile != "" {
		return c.InvoicesFile
	}
	return filepath.Join(c.DataDir, "invoices.csv")
}

func (c Config) SettingsPath() string {
	if c.SettingsFile != "" {
		return c.SettingsFile
	}
	return filepath.Join(c.DataDir, "settings.json")
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
