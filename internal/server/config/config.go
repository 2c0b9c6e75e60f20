// Package config handles configuration for the account server: defaults,
// a JSON file overlay, ACCOUNTS_* environment variables and command-line
// flags, applied in that order.
package config

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DefaultSecretKey is the development signing secret set by LoadDefaults.
const DefaultSecretKey = "secretKey"

// Reset delivery channels.
const (
	DeliveryLog      = "log"
	DeliverySendGrid = "sendgrid"
)

// Config holds runtime settings for the account server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the HTTP API.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty runs on in-memory storage.
//   - SecretKey: secret the token signing keys are derived from.
//   - SessionTokenValidityDuration / ResetTokenValidityDuration: token lifetimes.
//   - PasswordHashCost: bcrypt cost.
//   - ResetDelivery: "log" or "sendgrid".
//   - SendGridAPIKey / MailFromAddress / MailFromName: outgoing mail settings.
type Config struct {
	EndpointAddrHTTP             string        `env:"ACCOUNTS_HTTP_ADDR"`
	DatabaseDSN                  string        `env:"ACCOUNTS_DATABASE_DSN"`
	SecretKey                    string        `env:"ACCOUNTS_SECRET_KEY"`
	SessionTokenValidityDuration time.Duration `env:"ACCOUNTS_SESSION_TOKEN_TTL"`
	ResetTokenValidityDuration   time.Duration `env:"ACCOUNTS_RESET_TOKEN_TTL"`
	PasswordHashCost             int           `env:"ACCOUNTS_PASSWORD_HASH_COST"`
	ResetDelivery                string        `env:"ACCOUNTS_RESET_DELIVERY"`
	LogLevel                     string        `env:"ACCOUNTS_LOG_LEVEL"`
	SendGridAPIKey               string        `env:"ACCOUNTS_SENDGRID_API_KEY"`
	MailFromAddress              string        `env:"ACCOUNTS_MAIL_FROM_ADDRESS"`
	MailFromName                 string        `env:"ACCOUNTS_MAIL_FROM_NAME"`
	ShutdownTimeout              time.Duration `env:"ACCOUNTS_SHUTDOWN_TIMEOUT"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret is insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = DefaultSecretKey
	c.SessionTokenValidityDuration = 60 * time.Minute
	c.ResetTokenValidityDuration = 15 * time.Minute
	c.PasswordHashCost = bcrypt.DefaultCost
	c.ResetDelivery = DeliveryLog
	c.LogLevel = "info"
	c.MailFromName = "Accounts"
	c.ShutdownTimeout = 15 * time.Second
}

// UsesDefaultSecret reports whether tokens would be signed with the
// well-known development secret.
func (c *Config) UsesDefaultSecret() bool {
	return c.SecretKey == DefaultSecretKey
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key must not be empty"))
	}
	if c.SessionTokenValidityDuration <= 0 {
		errs = append(errs, fmt.Errorf("session token validity must be positive, got %s", c.SessionTokenValidityDuration))
	}
	if c.ResetTokenValidityDuration <= 0 {
		errs = append(errs, fmt.Errorf("reset token validity must be positive, got %s", c.ResetTokenValidityDuration))
	}

	switch c.ResetDelivery {
	case DeliveryLog:
	case DeliverySendGrid:
		if c.SendGridAPIKey == "" {
			errs = append(errs, errors.New("sendgrid delivery requires a SendGrid API key"))
		}
		if c.MailFromAddress == "" {
			errs = append(errs, errors.New("sendgrid delivery requires a sender address"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown reset delivery %q", c.ResetDelivery))
	}

	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
