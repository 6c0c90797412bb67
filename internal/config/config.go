// Package config loads runtime settings. Sources, lowest precedence first:
// built-in defaults, a YAML file, a .env file, FOODRESCUE_* environment
// variables. Command-line flags are applied on top by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "FOODRESCUE_"

// Config holds the application configuration.
type Config struct {
	DBPath   string `yaml:"db"`
	Addr     string `yaml:"addr"`
	LogPath  string `yaml:"log"`
	LogLevel string `yaml:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format"`
	// Timezone is the IANA name every timestamp is normalized to. "Local"
	// selects the host zone.
	Timezone   string `yaml:"timezone"`
	MinMeals   int    `yaml:"min_meals"`
	MaxMeals   int    `yaml:"max_meals"`
	CodeLength int    `yaml:"code_length"`
	TopN       int    `yaml:"top_n"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBPath:     "foodrescue.sqlite3",
		Addr:       ":8080",
		LogLevel:   "info",
		LogFormat:  "text",
		Timezone:   "Local",
		MinMeals:   1,
		MaxMeals:   2000,
		CodeLength: 4,
		TopN:       5,
	}
}

// Sources says where Load reads from.
type Sources struct {
	// File is a YAML config file. Empty skips it; a named file must exist.
	File string
	// EnvFile is a dotenv file. A missing file is not an error.
	EnvFile string
	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds a Config from defaults and src, then validates it.
func Load(src Sources) (Config, error) {
	cfg := Default()

	if src.File != "" {
		data, err := os.ReadFile(src.File)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", src.File, err)
		}
	}

	dotenv := map[string]string{}
	if src.EnvFile != "" {
		m, err := godotenv.Read(src.EnvFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("reading env file: %w", err)
		default:
			dotenv = m
		}
	}

	lookup := src.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			return v, true
		}
		v, ok := dotenv[EnvPrefix+key]
		return v, ok
	}

	if err := cfg.applyEnv(env); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeYAML rejects unknown keys so that typos do not pass silently.
func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(env func(string) (string, bool)) error {
	strs := map[string]*string{
		"DB":         &c.DBPath,
		"ADDR":       &c.Addr,
		"LOG":        &c.LogPath,
		"LOG_LEVEL":  &c.LogLevel,
		"LOG_FORMAT": &c.LogFormat,
		"TIMEZONE":   &c.Timezone,
	}
	for key, dst := range strs {
		if v, ok := env(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"MIN_MEALS":   &c.MinMeals,
		"MAX_MEALS":   &c.MaxMeals,
		"CODE_LENGTH": &c.CodeLength,
		"TOP_N":       &c.TopN,
	}
	for key, dst := range ints {
		v, ok := env(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: not an integer: %q", EnvPrefix, key, v)
		}
		*dst = n
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if c.MinMeals < 1 {
		return fmt.Errorf("min_meals must be at least 1, got %d", c.MinMeals)
	}
	if c.MaxMeals < c.MinMeals {
		return fmt.Errorf("max_meals (%d) is below min_meals (%d)", c.MaxMeals, c.MinMeals)
	}
	if c.CodeLength < 4 || c.CodeLength > 12 {
		return fmt.Errorf("code_length must be between 4 and 12, got %d", c.CodeLength)
	}
	if c.TopN < 1 {
		return fmt.Errorf("top_n must be at least 1, got %d", c.TopN)
	}
	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Level resolves LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return l, nil
}
