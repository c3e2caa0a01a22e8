// Package username normalizes usernames and checks that they are free
// while a user sets up or edits their profile.
package username

import (
	"regexp"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Length bounds of a username
const (
	MinLength = 3
	MaxLength = 15
)

var pattern = regexp.MustCompile(`^[a-z0-9_]{3,15}$`)

// Normalize turns free-form input into a username candidate: lowercased,
// surrounding space trimmed, inner whitespace runs replaced by a single
// underscore and everything outside [a-z0-9_] dropped.
func Normalize(raw string) string {
	lowered := Lower(strings.TrimSpace(raw))

	var b strings.Builder
	b.Grow(len(lowered))

	inSpace := false
	for _, r := range lowered {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('_')
			}
			inSpace = true
			continue
		}
		inSpace = false

		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// Lower lowercases s the way usernames are stored
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Validate checks that s is a well-formed, normalized username
func Validate(s string) error {
	return validation.Validate(s,
		validation.Required.Error("username is required"),
		validation.Match(pattern).Error("username must be 3-15 characters of a-z, 0-9 or _"),
	)
}

// Rule returns Validate as an ozzo rule for use in struct validation
func Rule() validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		return Validate(s)
	})
}
