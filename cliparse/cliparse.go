// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           int
	DatabaseURL    string
	DatabaseType   string
	BackendAPIKey  string
	CORSOrigins    []string
	GeoProviderURL string
}

// ParseFlags validates flags and falls back to environment variables.
// A .env file in the working directory is loaded first; real environment
// variables win over it, so deployments that set vars directly are safe.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var corsOrigins string

	// Load .env for local development; ignore absence.
	_ = godotenv.Load()

	fs := flag.NewFlagSet("uwezert-verify", flag.ContinueOnError)

	// Network and storage config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database path (sqlite) or URL (postgres)")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.GeoProviderURL, "geo-url", "", "Geo-IP provider base URL")
	fs.StringVar(&corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.BackendAPIKey, "api-key", "", "Admin API key (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 8000 // default
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DB_PATH")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "sqlite" {
			cfg.DatabaseURL = "data/app.db" // default
		} else {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
	}

	// Admin key may stay empty; admin routes then answer 500 until it is
	// configured, which keeps the public surface usable.
	if cfg.BackendAPIKey == "" {
		cfg.BackendAPIKey = os.Getenv("BACKEND_API_KEY")
	}

	if corsOrigins == "" {
		corsOrigins = os.Getenv("CORS_ORIGINS")
	}
	if corsOrigins == "" {
		corsOrigins = "*"
	}
	for _, o := range strings.Split(corsOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if cfg.GeoProviderURL == "" {
		cfg.GeoProviderURL = os.Getenv("GEO_PROVIDER_URL")
	}
	if cfg.GeoProviderURL == "" {
		cfg.GeoProviderURL = "http://ip-api.com/json"
	}

	return cfg, nil
}
