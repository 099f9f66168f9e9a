package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/velora-digital/siteauth/internal/flagx"
	"github.com/velora-digital/siteauth/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations may
// be given as strings like "30s" or as integer nanoseconds.
type JsonConfig struct {
	APIBaseURL      string         `json:"api_base_url"`
	SiteBaseURL     string         `json:"site_base_url"`
	StoreDSN        string         `json:"store_dsn"`
	MonitorInterval timex.Duration `json:"monitor_interval"`
}

// parseJson overlays Config with values loaded from the JSON file given via
// -c/-config. Missing flag means no JSON is loaded. Only fields present in
// the file override the current values. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.SiteBaseURL != "" {
		cfg.SiteBaseURL = jc.SiteBaseURL
	}
	if jc.StoreDSN != "" {
		cfg.StoreDSN = jc.StoreDSN
	}
	if jc.MonitorInterval.Duration != 0 {
		cfg.MonitorInterval = time.Duration(jc.MonitorInterval.Duration)
	}
}
