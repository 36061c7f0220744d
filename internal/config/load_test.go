package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	return path
}

func TestLoadOrDefault_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[database]
path = "/var/lib/ingest/state.db"

[sweep]
poll_interval = "90s"
workers = 8
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/ingest/state.db", cfg.Database.Path)
	assert.Equal(t, 8, cfg.Sweep.Workers)
	assert.Equal(t, 90*time.Second, cfg.PollInterval())

	// Unset sections keep their defaults.
	assert.Equal(t, defaultDialTimeout, cfg.SFTP.DialTimeout)
	assert.Equal(t, defaultSearchMaxDepth, cfg.Sweep.SearchMaxDepth)
}

func TestLoad_UnknownKeySuggestsClosest(t *testing.T) {
	path := writeConfig(t, `
[sweep]
workes = 8
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sweep.workes")
	assert.Contains(t, err.Error(), "sweep.workers")
}

func TestLoad_UnknownKeyWithoutSuggestion(t *testing.T) {
	path := writeConfig(t, `completely_unrelated_setting = true`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestLoad_AccumulatesValidationErrors(t *testing.T) {
	path := writeConfig(t, `
[sweep]
poll_interval = "1s"
workers = 0

[logging]
log_level = "loud"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sweep.poll_interval")
	assert.Contains(t, err.Error(), "sweep.workers")
	assert.Contains(t, err.Error(), "logging.log_level")
}

func TestLoad_MalformedTOML(t *testing.T) {
	path := writeConfig(t, `[sweep`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, Validate(DefaultConfig()))
}

func TestDurationAccessors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 5*time.Minute, cfg.PollInterval())
	assert.Equal(t, 15*time.Second, cfg.DialTimeout())
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"abc", "", 3},
		{"workers", "workers", 0},
		{"worker", "workers", 1},
		{"pol_interval", "poll_interval", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshtein(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}
