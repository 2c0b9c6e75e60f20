package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/flagx"
)

// Flags owns the short flag names read by parseFlags.
var Flags = []string{"-a", "-d", "-s", "-t", "-r", "-k", "-n", "-l"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   token signing secret
//	-t int      session token validity, minutes
//	-r int      reset token validity, minutes
//	-k int      bcrypt cost
//	-n string   reset delivery ("log" or "sendgrid")
//	-l string   log level
//
// Duration flags are given in minutes.
func parseFlags(config *Config) error {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], Flags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidity := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session token validity (in minutes)")
	resetValidity := fs.Int("r", int(config.ResetTokenValidityDuration.Minutes()), "reset token validity (in minutes)")

	fs.IntVar(&config.PasswordHashCost, "k", config.PasswordHashCost, "bcrypt cost")
	fs.StringVar(&config.ResetDelivery, "n", config.ResetDelivery, "reset token delivery: log or sendgrid")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Durations change only when their flag is given.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.SessionTokenValidityDuration = time.Duration(*sessionValidity) * time.Minute
		case "r":
			config.ResetTokenValidityDuration = time.Duration(*resetValidity) * time.Minute
		}
	})

	return nil
}
