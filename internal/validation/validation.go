// Package validation provides request shape checks and display formatting
// helpers shared by the services.
package validation

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// emailRegex accepts local@domain.tld shapes: word/dot/hyphen local part,
	// at least one dot in the domain.
	emailRegex = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)
	// nicknameRegex accepts 1-10 non-whitespace characters.
	nicknameRegex = regexp.MustCompile(`^\S{1,10}$`)
)

// validate checks required-field tags on request payload structs.
var validate = validator.New()

// EmailIsValid reports whether s looks like an email address.
func EmailIsValid(s string) bool {
	return emailRegex.MatchString(s)
}

// NicknameIsValid reports whether s is an acceptable nickname.
func NicknameIsValid(s string) bool {
	return nicknameRegex.MatchString(s)
}

// FormatCount renders a counter for list views. Values under 1000 print as
// plain decimals; everything else truncates to integer thousands with a "k"
// suffix. This is a single flat rule: 1000 and 999999 both go through the
// same division.
func FormatCount(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%dk", n/1000)
}

// Struct runs validator tags (e.g. `validate:"required"`) against a request
// payload. A non-nil error means at least one required field is missing.
func Struct(v interface{}) error {
	return validate.Struct(v)
}
