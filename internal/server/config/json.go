package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophgram/internal/flagx"
	"github.com/dmitrijs2005/gophgram/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept both
// strings such as "168h" and integer nanoseconds. Absent keys leave the
// current value untouched.
type JsonConfig struct {
	EndpointAddr         *string         `json:"endpoint_addr"`
	DatabaseDriver       *string         `json:"database_driver"`
	DatabaseDSN          *string         `json:"database_dsn"`
	TokenKey             *string         `json:"token_key"`
	SecretKey            *string         `json:"secret_key"`
	TokenFormat          *string         `json:"token_format"`
	TokenMaxAge          *timex.Duration `json:"token_max_age"`
	KDFIterations        *int            `json:"kdf_iterations"`
	KDFKeyLength         *int            `json:"kdf_key_length"`
	HashWorkers          *int            `json:"hash_workers"`
	IdentityCacheTTL     *timex.Duration `json:"identity_cache_ttl"`
	AccessKeyMaxAttempts *int            `json:"access_key_max_attempts"`
	RequestTimeout       *timex.Duration `json:"request_timeout"`
}

// parseJson loads configuration values from the JSON file named by the
// -c or -config flag. Without the flag nothing is loaded. An unreadable file
// or invalid JSON panics.
func parseJson(config *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.TokenKey, c.TokenKey)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.TokenFormat, c.TokenFormat)
	setInt(&config.KDFIterations, c.KDFIterations)
	setInt(&config.KDFKeyLength, c.KDFKeyLength)
	setInt(&config.HashWorkers, c.HashWorkers)
	setInt(&config.AccessKeyMaxAttempts, c.AccessKeyMaxAttempts)

	if c.TokenMaxAge != nil {
		config.TokenMaxAge = c.TokenMaxAge.Duration
	}
	if c.IdentityCacheTTL != nil {
		config.IdentityCacheTTL = c.IdentityCacheTTL.Duration
	}
	if c.RequestTimeout != nil {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
