package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/vaultshare/internal/flagx"
	"github.com/dmitrijs2005/vaultshare/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON configuration file. Durations
// accept "90s"-style strings or integer nanoseconds. Absent or zero-valued
// fields leave the current setting untouched; booleans are pointers so that
// an explicit false can be told apart from a missing key.
type JsonConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	PublicBaseURL               string         `json:"public_base_url"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	KEK                         string         `json:"kek"`

	S3RootUser     string         `json:"s3_root_user"`
	S3RootPassword string         `json:"s3_root_password"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Region       string         `json:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint"`
	PresignTTL     timex.Duration `json:"presign_ttl"`

	KDFAlgorithm     string `json:"kdf_algorithm"`
	KDFIterations    int    `json:"kdf_iterations"`
	SaltLength       int    `json:"salt_length"`
	KeyLength        int    `json:"key_length"`
	FileCipher       string `json:"file_cipher"`
	MaxConcurrentKDF int    `json:"max_concurrent_kdf"`

	PasswordMinLength     int   `json:"password_min_length"`
	PasswordRequireUpper  *bool `json:"password_require_upper"`
	PasswordRequireLower  *bool `json:"password_require_lower"`
	PasswordRequireDigit  *bool `json:"password_require_digit"`
	PasswordRequireSymbol *bool `json:"password_require_symbol"`

	RateLimitAttempts      int            `json:"rate_limit_attempts"`
	RateLimitTokenAttempts int            `json:"rate_limit_token_attempts"`
	RateLimitWindow        timex.Duration `json:"rate_limit_window"`

	StatsRecentWindow   timex.Duration `json:"stats_recent_window"`
	AccessLogRetention  timex.Duration `json:"access_log_retention"`
	MaintenanceInterval timex.Duration `json:"maintenance_interval"`
	DefaultStorageQuota int64          `json:"default_storage_quota"`

	CORSOrigins       []string `json:"cors_origins"`
	TrustProxyHeaders *bool    `json:"trust_proxy_headers"`
	LogLevel          string   `json:"log_level"`
}

// parseJson overlays values from the file named by -c/-config. It panics if
// the file cannot be read or parsed.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.PublicBaseURL, c.PublicBaseURL)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setString(&config.KEK, c.KEK)

	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setDuration(&config.PresignTTL, c.PresignTTL)

	setString(&config.KDFAlgorithm, c.KDFAlgorithm)
	setInt(&config.KDFIterations, c.KDFIterations)
	setInt(&config.SaltLength, c.SaltLength)
	setInt(&config.KeyLength, c.KeyLength)
	setString(&config.FileCipher, c.FileCipher)
	setInt(&config.MaxConcurrentKDF, c.MaxConcurrentKDF)

	setInt(&config.PasswordMinLength, c.PasswordMinLength)
	setBool(&config.PasswordRequireUpper, c.PasswordRequireUpper)
	setBool(&config.PasswordRequireLower, c.PasswordRequireLower)
	setBool(&config.PasswordRequireDigit, c.PasswordRequireDigit)
	setBool(&config.PasswordRequireSymbol, c.PasswordRequireSymbol)

	setInt(&config.RateLimitAttempts, c.RateLimitAttempts)
	setInt(&config.RateLimitTokenAttempts, c.RateLimitTokenAttempts)
	setDuration(&config.RateLimitWindow, c.RateLimitWindow)

	setDuration(&config.StatsRecentWindow, c.StatsRecentWindow)
	setDuration(&config.AccessLogRetention, c.AccessLogRetention)
	setDuration(&config.MaintenanceInterval, c.MaintenanceInterval)
	if c.DefaultStorageQuota != 0 {
		config.DefaultStorageQuota = c.DefaultStorageQuota
	}

	if len(c.CORSOrigins) > 0 {
		config.CORSOrigins = c.CORSOrigins
	}
	setBool(&config.TrustProxyHeaders, c.TrustProxyHeaders)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
