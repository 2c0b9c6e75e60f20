package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays ACCOUNTS_* variables. Unset variables keep the current
// value.
func parseEnv(config *Config) error {
	return env.Parse(config)
}
