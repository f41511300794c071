// Package config loads runtime settings from the environment, with an
// optional .env file for development.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"yogao/internal/domain/pass"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting. Values come from YOGAO_* environment
// variables; a .env file in the working directory is read first when
// present.
type Config struct {
	Addr      string // listen address
	DBPath    string // SQLite database file
	Env       string // "development" or "production"
	StaticDir string // static asset directory

	AdminEmail    string // seeded admin account
	AdminPassword string

	ResendKey string // empty disables real email delivery
	EmailFrom string

	CatalogPath string // optional JSON pass catalog override
}

// Load reads the .env file (if any) and the environment.
// POST: Every field is populated, falling back to development defaults
func Load() Config {
	if err := godotenv.Load(); err == nil {
		slog.Info("env_file_loaded", "path", ".env")
	}

	return Config{
		Addr:      envOrDefault("YOGAO_ADDR", ":8080"),
		DBPath:    envOrDefault("YOGAO_DB_PATH", "yogao.db"),
		Env:       envOrDefault("YOGAO_ENV", "development"),
		StaticDir: envOrDefault("YOGAO_STATIC_DIR", "static"),

		AdminEmail:    envOrDefault("YOGAO_ADMIN_EMAIL", "admin@yogao.kr"),
		AdminPassword: envOrDefault("YOGAO_ADMIN_PASSWORD", "change me before opening"),

		ResendKey: os.Getenv("YOGAO_RESEND_KEY"),
		EmailFrom: envOrDefault("YOGAO_EMAIL_FROM", "Yogao <noreply@yogao.kr>"),

		CatalogPath: os.Getenv("YOGAO_CATALOG_PATH"),
	}
}

// Production reports whether the app runs with production hardening.
func (c Config) Production() bool {
	return c.Env == "production"
}

// catalogFile is the JSON shape of a pass catalog override file. Duration
// is either a day count or a month count, not both.
type catalogFile struct {
	Passes []struct {
		ID     string `json:"id"`
		Label  string `json:"label"`
		Price  int    `json:"price"`
		Days   int    `json:"days"`
		Months int    `json:"months"`
	} `json:"passes"`
}

// LoadCatalog builds the pass catalog: the built-in price list, or the
// file named by CatalogPath when the studio has custom pricing.
// POST: Returned catalog is non-empty and validated
func (c Config) LoadCatalog() (*pass.Catalog, error) {
	if c.CatalogPath == "" {
		return pass.DefaultCatalog(), nil
	}

	raw, err := os.ReadFile(c.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", c.CatalogPath, err)
	}
	var file catalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", c.CatalogPath, err)
	}

	defs := make([]pass.Definition, 0, len(file.Passes))
	for _, p := range file.Passes {
		dur := pass.Days(p.Days)
		if p.Months > 0 {
			dur = pass.Months(p.Months)
		}
		defs = append(defs, pass.Definition{
			ID:       p.ID,
			Label:    p.Label,
			Price:    p.Price,
			Duration: dur,
		})
	}
	cat, err := pass.NewCatalog(defs)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", c.CatalogPath, err)
	}
	return cat, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
