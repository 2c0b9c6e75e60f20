package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "127.0.0.1:9090", "-d", "db", "-s", "secret",
				"-t", "5", "-r", "3", "-k", "12", "-n", "sendgrid", "-l", "debug"},
			expected: &Config{
				EndpointAddrHTTP:             "127.0.0.1:9090",
				DatabaseDSN:                  "db",
				SecretKey:                    "secret",
				SessionTokenValidityDuration: 5 * time.Minute,
				ResetTokenValidityDuration:   3 * time.Minute,
				PasswordHashCost:             12,
				ResetDelivery:                "sendgrid",
				LogLevel:                     "debug",
			},
		},
		{
			name: "foreign flags are ignored",
			args: []string{"-username", "root", "-a=:1", "-x", "y"},
			expected: &Config{
				EndpointAddrHTTP: ":1",
			},
		},
		{
			name:    "bad int",
			args:    []string{"-t", "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.args...)

			config := &Config{}
			err := parseFlags(config)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestParseFlags_KeepsDurationsWhenUnset(t *testing.T) {
	withArgs(t)

	config := &Config{ResetTokenValidityDuration: 90 * time.Second}
	require.NoError(t, parseFlags(config))

	assert.Equal(t, 90*time.Second, config.ResetTokenValidityDuration)
}
