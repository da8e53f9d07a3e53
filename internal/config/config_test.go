package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))
	return tmpFile
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Defaults(), *cfg)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 800*time.Millisecond, cfg.SubmitDelay.Std())
	assert.Equal(t, time.Second, cfg.LoginDelay.Std())
	assert.True(t, cfg.Seed)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `{
		"port": 9090,
		"locale": "sv",
		"submit_delay": "50ms",
		"seed": false
	}`)
	t.Setenv("JOBTRACK_PORT", "7070")
	t.Setenv("JOBTRACK_LOGIN_DELAY", "0s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port, "environment wins over file")
	assert.Equal(t, "sv", cfg.Locale)
	assert.Equal(t, 50*time.Millisecond, cfg.SubmitDelay.Std())
	assert.Zero(t, cfg.LoginDelay.Std())
	assert.False(t, cfg.Seed)
	assert.Equal(t, "info", cfg.LogLevel, "absent keys keep defaults")
}

func TestLoad_EnvErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non-numeric port", key: "JOBTRACK_PORT", value: "eighty"},
		{name: "bad duration", key: "JOBTRACK_SUBMIT_DELAY", value: "soon"},
		{name: "bad bool", key: "JOBTRACK_SEED", value: "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			cfg, err := Load("")
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "parse env:")
		})
	}
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, `{ invalid json }`), Defaults())
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadFile_FileNotFound(t *testing.T) {
	cfg, err := LoadFile("/nonexistent/path/config.json", Defaults())
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFile_EmptyPath(t *testing.T) {
	cfg, err := LoadFile("", Defaults())
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{name: "port out of range", mutate: func(c *Config) { c.Port = 70000 }, wantMsg: "port"},
		{name: "negative page size", mutate: func(c *Config) { c.PageSize = -1 }, wantMsg: "page_size"},
		{name: "page size above max", mutate: func(c *Config) { c.PageSize = 101 }, wantMsg: "page_size"},
		{name: "negative submit delay", mutate: func(c *Config) { c.SubmitDelay = Duration(-time.Second) }, wantMsg: "submit_delay"},
		{name: "negative login delay", mutate: func(c *Config) { c.LoginDelay = Duration(-time.Second) }, wantMsg: "login_delay"},
		{name: "unknown log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantMsg: "log_format"},
		{name: "bad locale", mutate: func(c *Config) { c.Locale = "not a locale!" }, wantMsg: "locale"},
		{name: "missing seed file", mutate: func(c *Config) { c.SeedFile = "/nonexistent/seed.json" }, wantMsg: "seed file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}

	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_SeedFileSchema(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"id":1,"companyName":"Stripe"}]`), 0o644))
	cfg := Defaults()
	cfg.SeedFile = bad
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid seed file")

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`[{"id":7,"companyName":"Stripe","jobTitle":"SRE","jobType":"Remote","status":"Applied","location":"Dublin"}]`), 0o644))
	cfg.SeedFile = good
	assert.NoError(t, cfg.Validate())
}

func TestLanguageTag(t *testing.T) {
	cfg := Config{Locale: "sv"}
	assert.Equal(t, language.Swedish, cfg.LanguageTag())

	cfg.Locale = "???"
	assert.Equal(t, language.English, cfg.LanguageTag())
}

func TestMergeWithDefaults(t *testing.T) {
	flags := Config{Port: 3000}
	merged := flags.MergeWithDefaults(Defaults())

	assert.Equal(t, 3000, merged.Port)
	assert.Equal(t, "info", merged.LogLevel)
	assert.Equal(t, 10, merged.PageSize)
	assert.Equal(t, Defaults().SubmitDelay, merged.SubmitDelay)
	assert.False(t, merged.Seed, "bools are not merged")
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{Port: 1234, Locale: "de"}
	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, 1234, merged.Port)
	assert.Equal(t, "de", merged.Locale)
	assert.Empty(t, merged.LogLevel)
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Std())

	out, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(out))

	assert.Error(t, d.UnmarshalText([]byte("later")))
}

type envTestConfig struct {
	Port int `env:"JOBTRACK_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig
	require.NoError(t, ParseEnv(&cfg))
	assert.Equal(t, 123, cfg.Port)
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("JOBTRACK_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}
