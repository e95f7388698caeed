// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first (godotenv), so
local development matches deployments that set variables directly.

# Config Fields

  - Port: Server listen port (default: 8000)
  - DatabaseURL: SQLite file path or PostgreSQL URL
  - DatabaseType: "sqlite" (default) or "postgres"
  - BackendAPIKey: Static key protecting the admin surface
  - CORSOrigins: Allowed origins for the static confirmation page
  - GeoProviderURL: Geo-IP provider base (default: http://ip-api.com/json)

# CLI Flags

	-p             Server port
	-d             Database path or URL
	-t             Database type
	-api-key       Admin API key (prefer env)
	-cors-origins  Comma-separated origins
	-geo-url       Geo-IP provider base URL

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d   (DB_PATH accepted for sqlite paths)
	DATABASE_TYPE   → -t
	BACKEND_API_KEY → -api-key
	CORS_ORIGINS    → -cors-origins
	GEO_PROVIDER_URL → -geo-url

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if DATABASE_TYPE is unknown, PORT is not a
number, or a postgres URL is missing. The admin key is deliberately not
required at parse time: the public endpoints stay usable and admin
routes answer 500 until the key is configured.
*/
package cliparse
