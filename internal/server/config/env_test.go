package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv_Variables(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	t.Chdir(t.TempDir())

	t.Setenv("VAULT_GRPC_ADDR", ":6000")
	t.Setenv("VAULT_KDF_ITERATIONS", "250000")
	t.Setenv("VAULT_PASSWORD_REQUIRE_SYMBOL", "true")
	t.Setenv("VAULT_RATE_LIMIT_WINDOW", "2m")
	t.Setenv("VAULT_DEFAULT_STORAGE_QUOTA", "2048")
	t.Setenv("VAULT_CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, ":6000", cfg.EndpointAddrGRPC)
	assert.Equal(t, 250000, cfg.KDFIterations)
	assert.True(t, cfg.PasswordRequireSymbol)
	assert.Equal(t, 2*time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, int64(2048), cfg.DefaultStorageQuota)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func Test_parseEnv_DotEnvFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("VAULT_TEST_ONLY_BUCKET=from-file\nVAULT_LOG_LEVEL=debug\n"), 0o600))
	t.Setenv("VAULT_LOG_LEVEL", "warn")
	t.Setenv("VAULT_S3_BUCKET", "")
	os.Unsetenv("VAULT_S3_BUCKET")
	t.Cleanup(func() { os.Unsetenv("VAULT_TEST_ONLY_BUCKET") })

	os.Args = []string{"testbin", "-env-file", envPath}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	// Variables already in the environment win over the file.
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "from-file", os.Getenv("VAULT_TEST_ONLY_BUCKET"))
	assert.Equal(t, "vault", cfg.S3Bucket)
}

func Test_parseEnv_Errors(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Chdir(t.TempDir())

	t.Run("missing explicit env file", func(t *testing.T) {
		os.Args = []string{"testbin", "-env-file", "nope.env"}
		require.Panics(t, func() { parseEnv(&Config{}) })
	})

	t.Run("malformed int", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv("VAULT_KDF_ITERATIONS", "lots")
		require.Panics(t, func() { parseEnv(&Config{}) })
	})

	t.Run("malformed duration", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv("VAULT_RATE_LIMIT_WINDOW", "5 minutes")
		require.Panics(t, func() { parseEnv(&Config{}) })
	})
}
