// Package config loads runtime settings for the site client. Sources are
// applied in order: built-in defaults, then an optional JSON file, then
// command-line flags. Later sources win.
package config

import "time"

// Config holds runtime settings for the site client.
//
// Fields:
//   - APIBaseURL: versioned API prefix (e.g. https://example.com/api/v1).
//   - SiteBaseURL: bare site root; hosts the non-versioned /admin/register.
//   - StoreDSN: sqlite DSN for the persisted session slots.
//   - MonitorInterval: how often the session watcher re-validates the token.
type Config struct {
	APIBaseURL      string
	SiteBaseURL     string
	StoreDSN        string
	MonitorInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080/api/v1"
	c.SiteBaseURL = "http://127.0.0.1:8080"
	c.StoreDSN = "siteauth.db"
	c.MonitorInterval = 30 * time.Second
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
