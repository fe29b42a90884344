package server

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Config carries everything the API server needs to start. The CLI
// populates it from flags, environment, and the config file.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `mapstructure:"addr"`
	// DSN is the sqlite data source, e.g. "file:compass.db" or
	// "file::memory:?cache=shared" for tests.
	DSN string `mapstructure:"dsn"`
	// SigningKey signs bearer tokens.
	SigningKey string `mapstructure:"signing_key"`
	// TokenTTL bounds token validity. Defaults to 72h.
	TokenTTL time.Duration `mapstructure:"token_ttl"`
	// Issuer is stamped into tokens and verified on the way back in.
	Issuer string `mapstructure:"issuer"`
}

// Validate checks the config before the server starts.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DSN, validation.Required),
		validation.Field(&c.SigningKey, validation.Required, validation.Length(16, 0)),
	)
}

func (c Config) tokenTTL() time.Duration {
	if c.TokenTTL <= 0 {
		return 72 * time.Hour
	}
	return c.TokenTTL
}

func (c Config) issuer() string {
	if c.Issuer == "" {
		return "compass"
	}
	return c.Issuer
}
