// Package validate holds the identifier and secret rules shared by the
// server, the seeding tools and the client auth flow.
//
// Empty input is accepted by both predicates: an untouched field is not yet
// invalid. Callers that require a value check for emptiness themselves.
package validate

import (
	"fmt"
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	TagIdentifier = "identifier"
	TagSecret     = "secret"

	minSecretLen = 8
	maxSecretLen = 20
)

var identifierRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Identifier reports whether s is empty or shaped like local@domain.tld.
func Identifier(s string) bool {
	if s == "" {
		return true
	}
	return identifierRe.MatchString(s)
}

// Secret reports whether s is empty or 8-20 ASCII letters and digits with at
// least one lower case letter, one upper case letter and one digit.
func Secret(s string) bool {
	if s == "" {
		return true
	}
	if len(s) < minSecretLen || len(s) > maxSecretLen {
		return false
	}

	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case r > unicode.MaxASCII:
			return false
		case 'a' <= r && r <= 'z':
			lower = true
		case 'A' <= r && r <= 'Z':
			upper = true
		case '0' <= r && r <= '9':
			digit = true
		default:
			return false
		}
	}
	return lower && upper && digit
}

// Register installs the identifier and secret tags on v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation(TagIdentifier, func(fl validator.FieldLevel) bool {
		return Identifier(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register %s: %w", TagIdentifier, err)
	}
	if err := v.RegisterValidation(TagSecret, func(fl validator.FieldLevel) bool {
		return Secret(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register %s: %w", TagSecret, err)
	}
	return nil
}

// New returns a validator with the custom tags registered.
func New() *validator.Validate {
	v := validator.New()
	if err := Register(v); err != nil {
		// tag names are constants; registration only fails on programmer error
		panic(err)
	}
	return v
}
