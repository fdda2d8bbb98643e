// Package config loads runtime configuration for the admagic CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment variables (ADMAGIC_API_URL, API_BASE, ADMAGIC_DB_PATH, ...).
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   base URL of the auth API
//	-d string   local SQLite database path
//	-i int      session revalidation interval (seconds)
//	-t int      request timeout (seconds)
//	-m          in-memory credential store
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://localhost:8000",
//	  "database_path": "admagic.db",
//	  "revalidate_interval": "60s",
//	  "request_timeout": "10s",
//	  "ephemeral": false
//	}
package config
