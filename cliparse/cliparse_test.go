// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CANTEEN_API_URL", "http://api.test/")
	t.Setenv("SESSION_SECRET", "test-secret")
}

func TestParseFlags_EnvVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("PROFILE_LOAD_WAIT", "2s")

	cfg, err := ParseFlags([]string{})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "http://api.test", cfg.APIURL, "trailing slash should be trimmed")
	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, "postgres://test", cfg.DatabaseURL)
	assert.True(t, cfg.SecureCookie)
	assert.Equal(t, 2*time.Second, cfg.LoadWait)
	assert.Equal(t, DefaultSessionMaxAge, cfg.SessionMaxAge)
}

func TestParseFlags_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := ParseFlags([]string{})
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, DefaultDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, DefaultLoadWait, cfg.LoadWait)
	assert.False(t, cfg.SecureCookie)
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"-p", "8080", "-a", "http://cli.test", "-session-secret", "s1", "-load-wait", "250ms"})
	require.NoError(t, err)

	// CLI should override env
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "http://cli.test", cfg.APIURL)
	assert.Equal(t, "s1", cfg.SessionSecret)
	assert.Equal(t, 250*time.Millisecond, cfg.LoadWait)
}

func TestParseFlags_MissingRequired(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing API URL", map[string]string{"SESSION_SECRET": "s"}},
		{"missing secret", map[string]string{"CANTEEN_API_URL": "http://api.test"}},
		{"bad database type", map[string]string{"CANTEEN_API_URL": "http://api.test", "SESSION_SECRET": "s", "DATABASE_TYPE": "mysql"}},
		{"bad port", map[string]string{"CANTEEN_API_URL": "http://api.test", "SESSION_SECRET": "s", "PORT": "abc"}},
		{"bad duration", map[string]string{"CANTEEN_API_URL": "http://api.test", "SESSION_SECRET": "s", "PROFILE_LOAD_WAIT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"CANTEEN_API_URL", "SESSION_SECRET", "DATABASE_TYPE", "PORT", "PROFILE_LOAD_WAIT"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := ParseFlags([]string{})
			assert.Error(t, err)
		})
	}
}

func TestParseFlags_EnvFile(t *testing.T) {
	t.Setenv("CANTEEN_API_URL", "")
	t.Setenv("SESSION_SECRET", "")
	// godotenv does not override variables that are already set, including empty ones,
	// so clear them for this test.
	os.Unsetenv("CANTEEN_API_URL")
	os.Unsetenv("SESSION_SECRET")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CANTEEN_API_URL=http://dotenv.test\nSESSION_SECRET=dotenv-secret\n"), 0o600))

	cfg, err := ParseFlags([]string{"-env-file", path})
	require.NoError(t, err)

	assert.Equal(t, "http://dotenv.test", cfg.APIURL)
	assert.Equal(t, "dotenv-secret", cfg.SessionSecret)
}

func TestParseFlags_MissingExplicitEnvFile(t *testing.T) {
	setRequiredEnv(t)

	_, err := ParseFlags([]string{"-env-file", filepath.Join(t.TempDir(), "nope.env")})
	assert.Error(t, err)
}
