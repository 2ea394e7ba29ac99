package config

import "time"

// Config holds runtime settings for the restock client.
//
// Fields:
//   - MirrorBaseURL: base URL of the remote mirror blob store.
//   - DatabaseDSN: path/DSN of the local sqlite database.
//   - SyncInterval: period of the background sync ticker.
//   - RequestTimeout: per-request timeout for mirror pull/push calls.
type Config struct {
	MirrorBaseURL  string
	DatabaseDSN    string
	SyncInterval   time.Duration
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.MirrorBaseURL = "http://127.0.0.1:8080"
	c.DatabaseDSN = "restock.db"
	c.SyncInterval = 30 * time.Second
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
