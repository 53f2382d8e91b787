package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/chatrpg/internal/game/combat"
	"github.com/udisondev/chatrpg/internal/game/encounter"
	"github.com/udisondev/chatrpg/internal/telemetry"
)

// EnvPrefix prefixes every environment override, e.g. CHATRPG_DB_HOST.
const EnvPrefix = "CHATRPG_"

// Config holds all configuration for the chat RPG service.
type Config struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// Catalog
	CatalogDir string `yaml:"catalog_dir" env:"CATALOG_DIR"` // empty: built-in catalog
	Seed       int64  `yaml:"seed" env:"SEED"`               // 0: fresh seed per session

	// Database
	Database DatabaseConfig `yaml:"database" envPrefix:"DB_"`

	// Rates
	Rates Rates `yaml:"rates" envPrefix:"RATES_"`

	// Combat
	Combat Combat `yaml:"combat" envPrefix:"COMBAT_"`

	Telemetry telemetry.Config `yaml:"telemetry" envPrefix:"TELEMETRY_"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"NAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
	MaxConns int32  `yaml:"max_conns" env:"MAX_CONNS"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
	if d.MaxConns > 0 {
		dsn += fmt.Sprintf("&pool_max_conns=%d", d.MaxConns)
	}
	return dsn
}

// Rates holds reward multipliers applied to victories.
type Rates struct {
	Experience float64 `yaml:"experience" env:"EXPERIENCE"`
	Currency   float64 `yaml:"currency" env:"CURRENCY"`
	LootAmount float64 `yaml:"loot_amount" env:"LOOT_AMOUNT"`
}

// DefaultRates returns x1 multipliers.
func DefaultRates() Rates {
	return Rates{Experience: 1.0, Currency: 1.0, LootAmount: 1.0}
}

// Combat holds combat tunables. Chances are percents.
type Combat struct {
	CritMultiplier float64 `yaml:"crit_multiplier" env:"CRIT_MULTIPLIER"`
	MaxDodge       float64 `yaml:"max_dodge" env:"MAX_DODGE"`
	MaxCrit        float64 `yaml:"max_crit" env:"MAX_CRIT"`
	FleeChance     float64 `yaml:"flee_chance" env:"FLEE_CHANCE"`
	MaxFleeChance  float64 `yaml:"max_flee_chance" env:"MAX_FLEE_CHANCE"`
}

// DefaultCombat mirrors combat.DefaultTuning and encounter.DefaultRules.
func DefaultCombat() Combat {
	t := combat.DefaultTuning()
	r := encounter.DefaultRules()
	return Combat{
		CritMultiplier: t.CritMultiplier,
		MaxDodge:       t.MaxDodge,
		MaxCrit:        t.MaxCrit,
		FleeChance:     r.FleeChance,
		MaxFleeChance:  r.MaxFleeChance,
	}
}

// Default returns Config with sensible defaults.
func Default() Config {
	return Config{
		LogLevel: "info",
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "chatrpg",
			Password: "chatrpg",
			DBName:   "chatrpg",
			SSLMode:  "disable",
		},
		Rates:  DefaultRates(),
		Combat: DefaultCombat(),
	}
}

// Load reads config from a YAML file and applies CHATRPG_* environment
// overrides on top. A missing file yields defaults plus overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	for name, v := range map[string]float64{
		"rates.experience":  c.Rates.Experience,
		"rates.currency":    c.Rates.Currency,
		"rates.loot_amount": c.Rates.LootAmount,
	} {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	if c.Combat.CritMultiplier < 0 {
		errs = append(errs, fmt.Errorf("combat.crit_multiplier must not be negative, got %v", c.Combat.CritMultiplier))
	}
	for name, v := range map[string]float64{
		"combat.max_dodge":       c.Combat.MaxDodge,
		"combat.max_crit":        c.Combat.MaxCrit,
		"combat.flee_chance":     c.Combat.FleeChance,
		"combat.max_flee_chance": c.Combat.MaxFleeChance,
	} {
		if v < 0 || v > 100 {
			errs = append(errs, fmt.Errorf("%s must be within [0,100], got %v", name, v))
		}
	}
	return errors.Join(errs...)
}

// Tuning converts the combat section.
func (c Config) Tuning() combat.Tuning {
	return combat.Tuning{
		CritMultiplier: c.Combat.CritMultiplier,
		MaxDodge:       c.Combat.MaxDodge,
		MaxCrit:        c.Combat.MaxCrit,
	}
}

// Rules converts the rates and flee settings.
func (c Config) Rules() encounter.Rules {
	return encounter.Rules{
		FleeChance:           c.Combat.FleeChance,
		MaxFleeChance:        c.Combat.MaxFleeChance,
		ExpMultiplier:        c.Rates.Experience,
		CurrencyMultiplier:   c.Rates.Currency,
		LootAmountMultiplier: c.Rates.LootAmount,
	}
}

// ParseLogLevel maps a level name to slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
