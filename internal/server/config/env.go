package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv is replaced in tests so a stray .env in the working directory
// does not leak into them.
var loadDotEnv = func() { _ = godotenv.Load() }

// parseEnv overlays Config with environment variables. A .env file in the
// working directory, when present, seeds variables that are not already set.
//
// Lifetimes use the units operators already know from the flags:
// JWT_ACCESS_LIFETIME in minutes, JWT_REFRESH_LIFETIME in days and
// FORGOTTEN_PASSWORD_EXPIRATION_DURATION in hours.
//
// A malformed numeric value panics, as the other sources do.
func parseEnv(config *Config) {
	loadDotEnv()

	envString("GRPC_ADDR", &config.EndpointAddrGRPC)
	envString("HTTP_ADDR", &config.EndpointAddrHTTP)
	envString("DATABASE_DSN", &config.DatabaseDSN)
	envString("REFRESH_TOKEN_STORE", &config.RefreshTokenStore)
	envString("REDIS_ADDR", &config.RedisAddr)
	envString("REDIS_PASSWORD", &config.RedisPassword)
	envInt("REDIS_DB", &config.RedisDB)
	envString("JWT_ALGORITHM", &config.JWTAlgorithm)
	envString("JWT_SECRET_KEY", &config.JWTSecretKey)
	envString("JWT_PRIVATE_KEY", &config.JWTPrivateKeyPath)
	envString("JWT_PUBLIC_KEY", &config.JWTPublicKeyPath)
	envDuration("JWT_ACCESS_LIFETIME", time.Minute, &config.AccessTokenValidityDuration)
	envDuration("JWT_REFRESH_LIFETIME", 24*time.Hour, &config.RefreshTokenValidityDuration)
	envDuration("FORGOTTEN_PASSWORD_EXPIRATION_DURATION", time.Hour, &config.PasswordResetValidityDuration)
	envString("FORGOTTEN_PASSWORD_BASE_URL", &config.ResetBaseURL)
	envString("RESET_SINK", &config.ResetSink)
	envString("S3_REGION", &config.S3Region)
	envString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	envString("S3_ROOT_USER", &config.S3RootUser)
	envString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	envInt("LOGIN_RATE_LIMIT_RPM", &config.LoginRateLimitRPM)
	envString("LOG_LEVEL", &config.LogLevel)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = n
}

func envDuration(key string, unit time.Duration, dst *time.Duration) {
	var n int
	if _, ok := os.LookupEnv(key); !ok {
		return
	}
	envInt(key, &n)
	*dst = time.Duration(n) * unit
}
