package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_grpc":               "www.example:9000",
		"endpoint_addr_http":               "www.example:8000",
		"database_dsn":                     "auth.db",
		"refresh_token_store":              "redis",
		"redis_addr":                       "cache:6379",
		"redis_db":                         3,
		"jwt_algorithm":                    "PS256",
		"jwt_secret_key":                   "my_secret_key",
		"jwt_private_key":                  "/keys/priv.pem",
		"jwt_public_key":                   "/keys/pub.pem",
		"access_token_validity_duration":   "90s",
		"refresh_token_validity_duration":  "72h",
		"password_reset_validity_duration": "30m",
		"reset_base_url":                   "https://example.com/reset",
		"s3_region":                        "region",
		"s3_base_endpoint":                 "base_endpoint",
		"s3_root_user":                     "user",
		"s3_root_password":                 "password",
		"login_rate_limit_rpm":             0,
		"log_level":                        "warn",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{LoginRateLimitRPM: 60}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "www.example:8000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "auth.db", cfg.DatabaseDSN)
		assert.Equal(t, "redis", cfg.RefreshTokenStore)
		assert.Equal(t, "cache:6379", cfg.RedisAddr)
		assert.Equal(t, 3, cfg.RedisDB)
		assert.Equal(t, "PS256", cfg.JWTAlgorithm)
		assert.Equal(t, "my_secret_key", cfg.JWTSecretKey)
		assert.Equal(t, "/keys/priv.pem", cfg.JWTPrivateKeyPath)
		assert.Equal(t, "/keys/pub.pem", cfg.JWTPublicKeyPath)
		assert.Equal(t, 90*time.Second, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 72*time.Hour, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, 30*time.Minute, cfg.PasswordResetValidityDuration)
		assert.Equal(t, "https://example.com/reset", cfg.ResetBaseURL)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
		assert.Equal(t, "user", cfg.S3RootUser)
		assert.Equal(t, "password", cfg.S3RootPassword)
		assert.Equal(t, 0, cfg.LoginRateLimitRPM, "explicit zero disables the limiter")
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"log_level": "error"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "error", cfg.LogLevel)
		assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
		assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 60, cfg.LoginRateLimitRPM)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddrGRPC:            "defaults:1234",
			DatabaseDSN:                 "auth.db",
			JWTSecretKey:                "key",
			AccessTokenValidityDuration: 2 * time.Minute,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrGRPC)
		assert.Equal(t, "auth.db", cfg.DatabaseDSN)
		assert.Equal(t, "key", cfg.JWTSecretKey)
		assert.Equal(t, 2*time.Minute, cfg.AccessTokenValidityDuration)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
