// Package config loads and validates the driver's TOML configuration file.
package config

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"fupd/pkg/model"
)

// Global holds the [global] section.
type Global struct {
	Server    string   `toml:"server" validate:"required"`
	OutputDir string   `toml:"outputdir" validate:"required"`
	Aggregate bool     `toml:"aggregate" default:"true"`
	Timestamps bool    `toml:"timestamps" default:"false"`
	Sources  []string  `toml:"sources" validate:"required,min=1"`

	CacheDir  string `toml:"cache_dir"`
	CacheTTL  string `toml:"cache_ttl" default:"24h"`

	GeoipASNDB     string `toml:"geoip_asn_db"`
	GeoipCountryDB string `toml:"geoip_country_db"`

	BatchSize         int `toml:"batch_size" default:"200" validate:"gte=1"`
	WriteConcurrency  int `toml:"write_concurrency" default:"4" validate:"gte=1"`
}

// Router is one [[routers]] entry.
type Router struct {
	Hostname string   `toml:"hostname" validate:"required"`
	Style    string   `toml:"style" validate:"required,oneof=prefix-list prefix-set"`
	Filters  []string `toml:"filters" validate:"required,min=1"`
}

// Config is the root document: [global] plus any number of [[routers]].
type Config struct {
	Global  Global   `toml:"global" validate:"required"`
	Routers []Router `toml:"routers" validate:"required,min=1,dive"`
}

// CacheTTLDuration parses Global.CacheTTL as a Go duration string.
func (g Global) CacheTTLDuration() (time.Duration, error) {
	if g.CacheTTL == "" {
		return 0, nil
	}
	return time.ParseDuration(g.CacheTTL)
}

var validate = validator.New()

// Load reads, defaults, and validates the config file at path.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, &model.InvalidConfigError{Reason: err.Error()}
	}

	if err := defaults.Set(&cfg.Global); err != nil {
		return nil, &model.InvalidConfigError{Reason: err.Error()}
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, &model.InvalidConfigError{Reason: err.Error()}
	}

	if _, err := cfg.Global.CacheTTLDuration(); err != nil {
		return nil, &model.InvalidConfigError{Reason: "bad cache_ttl: " + err.Error()}
	}

	for _, r := range cfg.Routers {
		if _, err := model.ParseStyle(r.Style); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// RouterConfigs converts the parsed TOML routers into model.RouterConfig.
func (c *Config) RouterConfigs() ([]model.RouterConfig, error) {
	out := make([]model.RouterConfig, len(c.Routers))
	for i, r := range c.Routers {
		style, err := model.ParseStyle(r.Style)
		if err != nil {
			return nil, err
		}
		out[i] = model.RouterConfig{Hostname: r.Hostname, Style: style, Filters: r.Filters}
	}
	return out, nil
}
