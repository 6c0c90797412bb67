package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Sources{LookupEnv: noEnv})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoadPrecedence(t *testing.T) {
	file := writeFile(t, "foodrescue.yaml", `
db: from-yaml.sqlite3
addr: ":9000"
timezone: Asia/Kolkata
max_meals: 500
top_n: 3
log_format: json
`)
	dotenv := writeFile(t, ".env", "FOODRESCUE_ADDR=:9100\nFOODRESCUE_TOP_N=7\n")

	cfg, err := Load(Sources{
		File:      file,
		EnvFile:   dotenv,
		LookupEnv: envMap(map[string]string{"FOODRESCUE_TOP_N": "9", "TOP_N": "1"}),
	})
	require.NoError(t, err)

	assert.Equal(t, "from-yaml.sqlite3", cfg.DBPath, "yaml over default")
	assert.Equal(t, ":9100", cfg.Addr, "dotenv over yaml")
	assert.Equal(t, 9, cfg.TopN, "environment over dotenv")
	assert.Equal(t, 500, cfg.MaxMeals)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 1, cfg.MinMeals)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())
}

func TestLoadMissingEnvFileIsFine(t *testing.T) {
	_, err := Load(Sources{EnvFile: filepath.Join(t.TempDir(), "nope.env"), LookupEnv: noEnv})
	assert.NoError(t, err)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(Sources{File: filepath.Join(t.TempDir(), "nope.yaml"), LookupEnv: noEnv})
	assert.Error(t, err)
}

func TestLoadRejectsUnknownYAMLKeys(t *testing.T) {
	file := writeFile(t, "c.yaml", "db: x.sqlite3\nmax_meal: 10\n")

	_, err := Load(Sources{File: file, LookupEnv: noEnv})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_meal")
}

func TestLoadEmptyYAML(t *testing.T) {
	file := writeFile(t, "c.yaml", "")

	cfg, err := Load(Sources{File: file, LookupEnv: noEnv})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadBadEnvInteger(t *testing.T) {
	_, err := Load(Sources{LookupEnv: envMap(map[string]string{"FOODRESCUE_MAX_MEALS": "lots"})})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FOODRESCUE_MAX_MEALS")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"empty db", func(c *Config) { c.DBPath = "" }},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
		{"zero min", func(c *Config) { c.MinMeals = 0 }},
		{"inverted bounds", func(c *Config) { c.MinMeals, c.MaxMeals = 10, 5 }},
		{"short code", func(c *Config) { c.CodeLength = 3 }},
		{"zero top", func(c *Config) { c.TopN = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.edit(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "DEBUG"

	l, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)
}
