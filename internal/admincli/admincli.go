// Package admincli bootstraps ADMIN accounts from the command line.
package admincli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/accountkeeper/internal/flagx"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
	"golang.org/x/term"
)

// Flags owns the flag names read by ParseFlags.
var Flags = []string{"-username", "-email", "-first", "-last"}

var ErrPasswordMismatch = errors.New("passwords do not match")

// Options describe the account to create.
type Options struct {
	UserName  string
	Email     string
	FirstName string
	LastName  string
}

// Registrar is the part of the account service the CLI needs.
type Registrar interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
}

// PasswordReader prompts for a secret and returns it without echo.
type PasswordReader func(prompt string) (string, error)

// ParseFlags reads Options from args, ignoring flags it does not own.
func ParseFlags(args []string) (Options, error) {
	var o Options

	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.UserName, "username", "", "admin username")
	fs.StringVar(&o.Email, "email", "", "admin email")
	fs.StringVar(&o.FirstName, "first", "", "first name")
	fs.StringVar(&o.LastName, "last", "", "last name")

	if err := fs.Parse(flagx.FilterArgs(args, Flags)); err != nil {
		return o, err
	}
	if o.UserName == "" || o.Email == "" {
		return o, errors.New("-username and -email are required")
	}
	return o, nil
}

// TerminalPassword reads a password from stdin with echo turned off.
func TerminalPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadPasswordTwice asks for the password and its confirmation.
func ReadPasswordTwice(read PasswordReader) (string, error) {
	first, err := read("Password: ")
	if err != nil {
		return "", err
	}
	second, err := read("Repeat password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", ErrPasswordMismatch
	}
	return first, nil
}

// Run creates the ADMIN account described by o and reports the outcome on out.
func Run(ctx context.Context, out io.Writer, r Registrar, o Options, read PasswordReader) error {
	password, err := ReadPasswordTwice(read)
	if err != nil {
		return err
	}

	u, err := r.Register(ctx, services.RegisterInput{
		UserName:  o.UserName,
		Password:  password,
		FirstName: o.FirstName,
		LastName:  o.LastName,
		Email:     o.Email,
		Role:      string(models.RoleAdmin),
	})
	if err != nil {
		return fmt.Errorf("error creating admin: %w", err)
	}

	fmt.Fprintf(out, "admin %q created (id %d)\n", u.UserName, u.ID)
	return nil
}
