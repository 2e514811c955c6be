// Package config loads the aggregator's YAML configuration: the region
// query defaults and the list of event sources to fan out to.
package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Source types understood by the provider factory.
const (
	TypeTicketmaster = "ticketmaster"
	TypeStatic       = "static"
	TypeMunicipal    = "municipal"
	TypeRendered     = "rendered"
)

// APIKeyEnv is the environment variable consulted for the structured-API
// credential when the config file carries none. Its absence degrades the
// structured adapter to a skip, never a hard failure.
const APIKeyEnv = "TICKETMASTER_API_KEY"

// Source describes one configured event source.
type Source struct {
	// Type selects the adapter: ticketmaster, static, municipal, rendered.
	Type string `yaml:"type"`
	// Name is the source identifier recorded on every event it produces.
	Name string `yaml:"name"`
	// DisplayName is the human-facing label, used as the default venue for
	// rendered-widget events that carry none.
	DisplayName string `yaml:"display_name"`
	// URL is the listing page (scraping types) or API base override
	// (ticketmaster; empty means the public endpoint).
	URL string `yaml:"url"`
	// WidgetOrigin identifies the embedded frame the rendered adapter
	// waits for, e.g. "widget.example-tickets.com".
	WidgetOrigin string `yaml:"widget_origin"`
}

// Config is the top-level application configuration.
type Config struct {
	// Region is the human-readable region label, part of the cache key.
	Region string `yaml:"region"`
	// LatLong is the "lat,long" center point for the structured API query.
	LatLong string `yaml:"latlong"`
	// RadiusKM is the search radius around LatLong.
	RadiusKM int `yaml:"radius_km"`
	// Limit caps the number of results requested and rendered.
	Limit int `yaml:"limit"`
	// Locale is sent as Accept-Language to scraped pages; servers vary
	// their output by it.
	Locale string `yaml:"locale"`
	// Timezone is the IANA zone used to interpret locale date strings.
	Timezone string `yaml:"timezone"`
	// CacheDir holds the short-TTL result cache. "~" expands to $HOME.
	CacheDir string `yaml:"cache_dir"`
	// APIKey is the structured-API credential; the APIKeyEnv environment
	// variable takes precedence when set.
	APIKey string `yaml:"api_key"`
	// Sources is the adapter fan-out list, in invocation order.
	Sources []Source `yaml:"sources"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Region:   "neustadt",
		LatLong:  "49.35,8.14",
		RadiusKM: 25,
		Limit:    50,
		Locale:   "de-DE,de;q=0.9,en;q=0.5",
		Timezone: "Europe/Berlin",
		CacheDir: "~/.cache/event-skill",
		Sources: []Source{
			{Type: TypeTicketmaster, Name: "ticketmaster"},
			{Type: TypeMunicipal, Name: "stadtportal", URL: "https://www.neustadt.eu/veranstaltungen"},
			{
				Type:         TypeRendered,
				Name:         "tourismus",
				DisplayName:  "Tourist-Information Neustadt",
				URL:          "https://www.neustadt.eu/tourismus/events",
				WidgetOrigin: "widget.et4.de",
			},
		},
	}
}

// Normalize fills zero values so partially-filled configs behave.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Region == "" {
		c.Region = def.Region
	}
	if c.LatLong == "" {
		c.LatLong = def.LatLong
	}
	if c.RadiusKM <= 0 {
		c.RadiusKM = def.RadiusKM
	}
	if c.Limit <= 0 {
		c.Limit = def.Limit
	}
	if c.Locale == "" {
		c.Locale = def.Locale
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if c.Sources == nil {
		c.Sources = def.Sources
	}
}

// Load reads the YAML config at path. A missing file yields the defaults;
// any other read or parse fault is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Credential returns the structured-API key, preferring the environment.
func (c *Config) Credential() string {
	if key := os.Getenv(APIKeyEnv); key != "" {
		return key
	}
	return c.APIKey
}

// Location resolves the configured timezone, falling back to UTC when the
// zone database has no entry.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
