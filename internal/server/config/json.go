package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// Lifetimes use timex.Duration, which accepts both strings such as "15m" and
// integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, the fields that are present are
// copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrGRPC              string          `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP              string          `json:"endpoint_addr_http"`
	DatabaseDSN                   string          `json:"database_dsn"`
	RefreshTokenStore             string          `json:"refresh_token_store"`
	RedisAddr                     string          `json:"redis_addr"`
	RedisPassword                 string          `json:"redis_password"`
	RedisDB                       *int            `json:"redis_db"`
	JWTAlgorithm                  string          `json:"jwt_algorithm"`
	JWTSecretKey                  string          `json:"jwt_secret_key"`
	JWTPrivateKeyPath             string          `json:"jwt_private_key"`
	JWTPublicKeyPath              string          `json:"jwt_public_key"`
	AccessTokenValidityDuration   *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration  *timex.Duration `json:"refresh_token_validity_duration"`
	PasswordResetValidityDuration *timex.Duration `json:"password_reset_validity_duration"`
	ResetBaseURL                  string          `json:"reset_base_url"`
	ResetSink                     string          `json:"reset_sink"`
	S3Region                      string          `json:"s3_region"`
	S3BaseEndpoint                string          `json:"s3_base_endpoint"`
	S3RootUser                    string          `json:"s3_root_user"`
	S3RootPassword                string          `json:"s3_root_password"`
	LoginRateLimitRPM             *int            `json:"login_rate_limit_rpm"`
	LogLevel                      string          `json:"log_level"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags. If neither
// is set, nothing is loaded. Keys missing from the file leave the current
// value untouched. If the file cannot be read or contains invalid JSON, the
// function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RefreshTokenStore, c.RefreshTokenStore)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	if c.RedisDB != nil {
		config.RedisDB = *c.RedisDB
	}
	setString(&config.JWTAlgorithm, c.JWTAlgorithm)
	setString(&config.JWTSecretKey, c.JWTSecretKey)
	setString(&config.JWTPrivateKeyPath, c.JWTPrivateKeyPath)
	setString(&config.JWTPublicKeyPath, c.JWTPublicKeyPath)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.PasswordResetValidityDuration != nil {
		config.PasswordResetValidityDuration = c.PasswordResetValidityDuration.Duration
	}
	setString(&config.ResetBaseURL, c.ResetBaseURL)
	setString(&config.ResetSink, c.ResetSink)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	if c.LoginRateLimitRPM != nil {
		config.LoginRateLimitRPM = *c.LoginRateLimitRPM
	}
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
