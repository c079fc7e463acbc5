package config

import (
	"fmt"
	"time"
)

const envPrefix = "JOURNAL_"

// parseEnv overlays JOURNAL_* variables. Durations use time.ParseDuration.
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"GRPC_ADDR":    &config.EndpointAddrGRPC,
		"HTTP_ADDR":    &config.EndpointAddrHTTP,
		"DATABASE_DSN": &config.DatabaseDSN,
		"SECRET_KEY":   &config.SecretKey,
		"REDIS_URL":    &config.RedisURL,
		"LOG_LEVEL":    &config.LogLevel,
		"S3_USER":      &config.S3RootUser,
		"S3_PASSWORD":  &config.S3RootPassword,
		"S3_BUCKET":    &config.S3Bucket,
		"S3_REGION":    &config.S3Region,
		"S3_ENDPOINT":  &config.S3BaseEndpoint,
	}
	for name, dst := range strs {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"ACCESS_TOKEN_TTL":  &config.AccessTokenValidityDuration,
		"REFRESH_TOKEN_TTL": &config.RefreshTokenValidityDuration,
	}
	for name, dst := range durations {
		v, ok := lookup(envPrefix + name)
		if !ok || v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
	}
	return nil
}
