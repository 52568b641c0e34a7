package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/vaultshare/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// parseEnv loads the .env file (the one named by -env-file, or ./.env if it
// exists) without overriding variables already set in the process, then
// applies every VAULT_* variable that is present. Malformed values panic.
func parseEnv(config *Config) {
	envFile := flagx.EnvFileFlag()
	explicit := envFile != ""
	if !explicit {
		envFile = defaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			panic(fmt.Errorf("loading %s: %w", envFile, err))
		}
	}

	envString("VAULT_GRPC_ADDR", &config.EndpointAddrGRPC)
	envString("VAULT_HTTP_ADDR", &config.EndpointAddrHTTP)
	envString("VAULT_PUBLIC_BASE_URL", &config.PublicBaseURL)
	envString("VAULT_DATABASE_DSN", &config.DatabaseDSN)
	envString("VAULT_SECRET_KEY", &config.SecretKey)
	envDuration("VAULT_ACCESS_TOKEN_TTL", &config.AccessTokenValidityDuration)
	envString("VAULT_KEK", &config.KEK)

	envString("VAULT_S3_USER", &config.S3RootUser)
	envString("VAULT_S3_PASSWORD", &config.S3RootPassword)
	envString("VAULT_S3_BUCKET", &config.S3Bucket)
	envString("VAULT_S3_REGION", &config.S3Region)
	envString("VAULT_S3_ENDPOINT", &config.S3BaseEndpoint)
	envDuration("VAULT_PRESIGN_TTL", &config.PresignTTL)

	envString("VAULT_KDF_ALGORITHM", &config.KDFAlgorithm)
	envInt("VAULT_KDF_ITERATIONS", &config.KDFIterations)
	envInt("VAULT_SALT_LENGTH", &config.SaltLength)
	envInt("VAULT_KEY_LENGTH", &config.KeyLength)
	envString("VAULT_FILE_CIPHER", &config.FileCipher)
	envInt("VAULT_MAX_CONCURRENT_KDF", &config.MaxConcurrentKDF)

	envInt("VAULT_PASSWORD_MIN_LENGTH", &config.PasswordMinLength)
	envBool("VAULT_PASSWORD_REQUIRE_UPPER", &config.PasswordRequireUpper)
	envBool("VAULT_PASSWORD_REQUIRE_LOWER", &config.PasswordRequireLower)
	envBool("VAULT_PASSWORD_REQUIRE_DIGIT", &config.PasswordRequireDigit)
	envBool("VAULT_PASSWORD_REQUIRE_SYMBOL", &config.PasswordRequireSymbol)

	envInt("VAULT_RATE_LIMIT_ATTEMPTS", &config.RateLimitAttempts)
	envInt("VAULT_RATE_LIMIT_TOKEN_ATTEMPTS", &config.RateLimitTokenAttempts)
	envDuration("VAULT_RATE_LIMIT_WINDOW", &config.RateLimitWindow)

	envDuration("VAULT_STATS_RECENT_WINDOW", &config.StatsRecentWindow)
	envDuration("VAULT_ACCESS_LOG_RETENTION", &config.AccessLogRetention)
	envDuration("VAULT_MAINTENANCE_INTERVAL", &config.MaintenanceInterval)
	if v, ok := os.LookupEnv("VAULT_DEFAULT_STORAGE_QUOTA"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			panic(fmt.Errorf("VAULT_DEFAULT_STORAGE_QUOTA: %w", err))
		}
		config.DefaultStorageQuota = n
	}

	if v, ok := os.LookupEnv("VAULT_CORS_ORIGINS"); ok {
		config.CORSOrigins = splitList(v)
	}
	envBool("VAULT_TRUST_PROXY_HEADERS", &config.TrustProxyHeaders)
	envString("VAULT_LOG_LEVEL", &config.LogLevel)
}

func envString(name string, dst *string) {
	if v, ok := os.LookupEnv(name); ok {
		*dst = v
	}
}

func envInt(name string, dst *int) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		panic(fmt.Errorf("%s: %w", name, err))
	}
	*dst = n
}

func envBool(name string, dst *bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		panic(fmt.Errorf("%s: %w", name, err))
	}
	*dst = b
}

func envDuration(name string, dst *time.Duration) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		panic(fmt.Errorf("%s: %w", name, err))
	}
	*dst = d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
