package config

import "time"

// Config holds runtime settings for the sessiongate client.
//
// Fields:
//   - APIBaseURL: base URL of the auth backend (including any path prefix).
//   - RequestTimeout: per-request timeout applied by the HTTP transport.
//   - RenewInterval: how often the background token renewal fires.
//   - SyncInterval: how often the background profile re-sync fires.
//   - DatabaseDSN: sqlite DSN of the local session database.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	RenewInterval  time.Duration
	SyncInterval   time.Duration
	DatabaseDSN    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080/api"
	c.RequestTimeout = 12 * time.Second
	c.RenewInterval = 50 * time.Minute
	c.SyncInterval = 5 * time.Minute
	c.DatabaseDSN = "session.db"
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
