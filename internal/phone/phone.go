// Package phone normalizes lead phone numbers into the carrier's international format.
package phone

import (
	"fmt"
	"strings"
)

// DefaultPrefix is prepended to numbers that carry no international prefix.
const DefaultPrefix = "+91"

// ValidationError reports a number whose digit count does not match the
// configured country policy.
type ValidationError struct {
	Number string
	Got    int
	Want   int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("phone: invalid number %q: got %d digits, want %d", e.Number, e.Got, e.Want)
}

// Normalize returns raw unchanged when it already starts with "+",
// otherwise it prepends prefix. No digit-count check happens here.
func Normalize(raw, prefix string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "+") {
		return raw
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + raw
}

// Digits strips every non-digit character.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate checks that number carries exactly want digits.
func Validate(number string, want int) error {
	if got := len(Digits(number)); got != want {
		return &ValidationError{Number: number, Got: got, Want: want}
	}
	return nil
}
