// Package config assembles the server configuration from defaults, an
// optional TOML file and environment variables, in that order of precedence,
// and validates the result before anything else starts.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/sakif/jagoan-puasa/internal/game"
	"github.com/sakif/jagoan-puasa/internal/model"
)

var validate = validator.New()

// LookupFunc matches os.LookupEnv so tests can supply their own environment.
type LookupFunc func(key string) (string, bool)

// Config holds everything the server needs to start.
type Config struct {
	Port   int    `validate:"gt=0,lte=65535"`
	DBPath string `validate:"required"`

	// JWTSecret signs player session tokens. Empty disables player routes.
	JWTSecret string `validate:"omitempty,min=16"`

	// AdminPasswordHash is a bcrypt hash. AdminPassword is a plaintext
	// fallback hashed once at startup. Both empty disables the admin route.
	AdminPasswordHash string
	AdminPassword     string

	Timezone      string `validate:"required"`
	CampaignStart string `validate:"required,datetime=2006-01-02"`
	TotalDays     int    `validate:"gt=0,lte=60"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`

	CatalogPath string

	Levels  game.Levels
	Catalog game.Catalog

	// Calendar is derived from Timezone, CampaignStart and TotalDays.
	Calendar game.Calendar `validate:"-"`
}

// Default returns the built-in configuration of the Ramadan 2026 campaign.
func Default() Config {
	return Config{
		Port:          8080,
		DBPath:        "data/jagoan.db",
		Timezone:      "Asia/Jakarta",
		CampaignStart: "2026-02-19",
		TotalDays:     30,
		LogLevel:      "info",
		LogFormat:     "text",
		Levels:        game.DefaultLevels(),
		Catalog:       game.DefaultCatalog(),
	}
}

// fileConfig is the on-disk TOML shape. Zero values leave defaults alone.
type fileConfig struct {
	Campaign struct {
		Start     string `toml:"start"`
		TotalDays int    `toml:"total_days"`
		Timezone  string `toml:"timezone"`
	} `toml:"campaign"`
	Levels   *game.Levels    `toml:"levels"`
	Missions []model.Mission `toml:"missions"`
	Rewards  []model.Reward  `toml:"rewards"`
	Avatars  []string        `toml:"avatars"`
}

// Load builds the configuration. CATALOG_PATH, when set, names a TOML file
// overlaid on the defaults; the remaining environment variables win over both.
func Load(lookup LookupFunc) (*Config, error) {
	cfg := Default()

	get := func(key string) string {
		if v, ok := lookup(key); ok {
			return v
		}
		return ""
	}

	if path := get("CATALOG_PATH"); path != "" {
		cfg.CatalogPath = path
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if v := get("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := get("TOTAL_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid TOTAL_DAYS %q: %w", v, err)
		}
		cfg.TotalDays = days
	}
	setString(&cfg.DBPath, get("DB_PATH"))
	setString(&cfg.JWTSecret, get("JWT_SECRET"))
	setString(&cfg.AdminPasswordHash, get("ADMIN_PASSWORD_HASH"))
	setString(&cfg.AdminPassword, get("ADMIN_PASSWORD"))
	setString(&cfg.Timezone, get("TIMEZONE"))
	setString(&cfg.CampaignStart, get("CAMPAIGN_START"))
	setString(&cfg.LogLevel, get("LOG_LEVEL"))
	setString(&cfg.LogFormat, get("LOG_FORMAT"))

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: loading timezone %q: %w", cfg.Timezone, err)
	}
	start, err := time.ParseInLocation(game.DateLayout, cfg.CampaignStart, loc)
	if err != nil {
		return nil, fmt.Errorf("config: parsing CAMPAIGN_START %q: %w", cfg.CampaignStart, err)
	}
	cfg.Calendar = game.NewCalendar(start, cfg.TotalDays, loc)

	if err := checkUniqueIDs(cfg.Catalog); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: opening catalog %s: %w", path, err)
	}
	defer f.Close()

	var fc fileConfig
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&fc); err != nil {
		return fmt.Errorf("config: decoding catalog %s: %w", path, err)
	}

	setString(&c.CampaignStart, fc.Campaign.Start)
	setString(&c.Timezone, fc.Campaign.Timezone)
	if fc.Campaign.TotalDays != 0 {
		c.TotalDays = fc.Campaign.TotalDays
	}
	if fc.Levels != nil {
		c.Levels = *fc.Levels
	}
	if len(fc.Missions) > 0 {
		c.Catalog.Missions = fc.Missions
	}
	if len(fc.Rewards) > 0 {
		c.Catalog.Rewards = fc.Rewards
	}
	if len(fc.Avatars) > 0 {
		c.Catalog.Avatars = fc.Avatars
	}
	return nil
}

func checkUniqueIDs(c game.Catalog) error {
	seen := make(map[string]bool, len(c.Missions))
	for _, m := range c.Missions {
		if seen[m.ID] {
			return fmt.Errorf("config: duplicate mission id %q", m.ID)
		}
		seen[m.ID] = true
	}
	seen = make(map[string]bool, len(c.Rewards))
	for _, r := range c.Rewards {
		if seen[r.ID] {
			return fmt.Errorf("config: duplicate reward id %q", r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
