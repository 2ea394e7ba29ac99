// Package config loads runtime configuration for the restock client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-m string   base URL of the remote mirror blob store
//	-d string   local sqlite database path
//	-i int      background sync interval (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "30s" or integer nanoseconds:
//
//	{
//	  "mirror_base_url": "https://mirror.example.org",
//	  "database_dsn": "restock.db",
//	  "sync_interval": "30s",
//	  "request_timeout": "10s"
//	}
package config
