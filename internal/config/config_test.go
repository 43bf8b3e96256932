package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("ALLOW_ORIGINS", "")

	cfg := LoadFrom("")

	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "cookie", cfg.SessionStore)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("ALLOW_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("API_BASE_URL", "http://api.test/")
	t.Setenv("GIN_MODE", "release")

	cfg := LoadFrom("")

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, "http://api.test", cfg.APIBaseURL)
	assert.True(t, cfg.IsProduction())
}

func TestLoadFrom_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TB_TEST_PORT_MARKER=1\nWEB_PORT=9999\n"), 0o600))

	// godotenv never overrides variables that are already set
	t.Setenv("WEB_PORT", "")
	os.Unsetenv("WEB_PORT")
	t.Cleanup(func() { os.Unsetenv("TB_TEST_PORT_MARKER") })

	cfg := LoadFrom(path)

	assert.Equal(t, "9999", cfg.WebPort)
	assert.Equal(t, "1", os.Getenv("TB_TEST_PORT_MARKER"))
}

func TestLoadFrom_MissingFileIsIgnored(t *testing.T) {
	cfg := LoadFrom(filepath.Join(t.TempDir(), "nope.env"))
	assert.NotNil(t, cfg)
}
