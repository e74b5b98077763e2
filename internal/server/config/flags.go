package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string    gRPC bind address (e.g., ":50051")
//	-w string    REST bind address (e.g., ":8080")
//	-d string    PostgreSQL DSN
//	-store string refresh token store: postgres or redis
//	-redis string Redis address
//	-alg string  JWT signing algorithm
//	-s string    JWT shared secret (HS* algorithms)
//	-priv string private key location (file path or s3://bucket/key)
//	-pub string  public key location (file path or s3://bucket/key)
//	-t int       access token validity, minutes
//	-r int       refresh token validity, days
//	-rh int      password reset validity, hours
//	-u string    password reset base URL
//	-l string    log level
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and converted to
//     time.Duration values in their respective units.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-w", "-d", "-store", "-redis", "-alg", "-s", "-priv", "-pub", "-t", "-r", "-rh", "-u", "-reset-sink", "-l",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "address and port to run REST server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RefreshTokenStore, "store", config.RefreshTokenStore, "refresh token store (postgres|redis)")
	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "redis address")
	fs.StringVar(&config.JWTAlgorithm, "alg", config.JWTAlgorithm, "JWT signing algorithm")
	fs.StringVar(&config.JWTSecretKey, "s", config.JWTSecretKey, "JWT secret key")
	fs.StringVar(&config.JWTPrivateKeyPath, "priv", config.JWTPrivateKeyPath, "JWT private key location")
	fs.StringVar(&config.JWTPublicKeyPath, "pub", config.JWTPublicKeyPath, "JWT public key location")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Hours()/24), "refresh token validity (in days)")
	passwordResetValidityDuration := fs.Int("rh", int(config.PasswordResetValidityDuration.Hours()), "password reset validity (in hours)")

	fs.StringVar(&config.ResetBaseURL, "u", config.ResetBaseURL, "password reset base URL")
	fs.StringVar(&config.ResetSink, "reset-sink", config.ResetSink, "where reset links go (log|stdout)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// only explicitly passed lifetimes are converted, so sub-unit values
	// coming from JSON survive
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * 24 * time.Hour
		case "rh":
			config.PasswordResetValidityDuration = time.Duration(*passwordResetValidityDuration) * time.Hour
		}
	})
}
