package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/accountkeeper/internal/flagx"
	"github.com/dmitrijs2005/accountkeeper/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept both strings
// such as "15m" and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration"`
	ResetTokenValidityDuration   timex.Duration `json:"reset_token_validity_duration"`
	PasswordHashCost             int            `json:"password_hash_cost"`
	ResetDelivery                string         `json:"reset_delivery"`
	LogLevel                     string         `json:"log_level"`
	SendGridAPIKey               string         `json:"sendgrid_api_key"`
	MailFromAddress              string         `json:"mail_from_address"`
	MailFromName                 string         `json:"mail_from_name"`
	ShutdownTimeout              timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads the file named by -c/-config (or $ACCOUNTS_CONFIG) into
// config. Only keys present with a non-zero value override the current ones.
func parseJson(config *Config) error {
	jsonConfigFile := flagx.ConfigFilePath()

	// nothing to load
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.ResetDelivery, c.ResetDelivery)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.SendGridAPIKey, c.SendGridAPIKey)
	setString(&config.MailFromAddress, c.MailFromAddress)
	setString(&config.MailFromName, c.MailFromName)

	if c.SessionTokenValidityDuration.Duration != 0 {
		config.SessionTokenValidityDuration = c.SessionTokenValidityDuration.Duration
	}
	if c.ResetTokenValidityDuration.Duration != 0 {
		config.ResetTokenValidityDuration = c.ResetTokenValidityDuration.Duration
	}
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.PasswordHashCost != 0 {
		config.PasswordHashCost = c.PasswordHashCost
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
