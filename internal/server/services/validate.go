package services

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
)

const (
	maxNameLength  = 100
	maxEmailLength = 254
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,64}$`)

func validateUsername(username string) error {
	if username == "" {
		return common.Validationf("username is required")
	}
	if !usernamePattern.MatchString(username) {
		return common.Validationf("username must be 1-64 letters, digits, '_', '.' or '-'")
	}
	return nil
}

// normalizeEmail trims and lowercases email and checks it is a bare address.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", common.Validationf("email is required")
	}
	if len(email) > maxEmailLength {
		return "", common.Validationf("email must be at most %d characters", maxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", common.Validationf("email %q is not a valid address", email)
	}
	return email, nil
}

func validateName(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return common.Validationf("%s is required", field)
	}
	if len(value) > maxNameLength {
		return common.Validationf("%s must be at most %d characters", field, maxNameLength)
	}
	return nil
}
