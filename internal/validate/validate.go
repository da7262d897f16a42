// Package validate holds the input bounds shared by every service: password
// policy, email shape, and the length limits of user-authored text.  Handlers
// and the realtime channel call these before touching the store.
package validate

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Bounds, in runes.
const (
	NameMin         = 2
	NameMax         = 50
	EmailMin        = 6
	EmailMax        = 100
	PasswordMin     = 12
	PasswordMax     = 50
	PasswordClasses = 3
	PasswordBytes   = 72
	BioMax          = 500
	VilleMax        = 100
	PhotoMax        = 255
	MessageMin      = 5
	MessageMax      = 5000
	CommentMax      = 1000
	StarsMin        = 1
	StarsMax        = 5
	TitleMin        = 3
	TitleMax        = 100
	DescriptionMin  = 10
	DescriptionMax  = 2000
	LocationMax     = 100
	PriceMax        = 1_000_000
	StoryMin        = 10
	StoryMax        = 5000
)

// Error collects per-field problems.  Its zero value holds none.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a problem for field, keeping the first one reported.
func (e *Error) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Err returns e as an error, or nil when no field failed.
func (e *Error) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Field builds a single-field error.
func Field(field, msg string) error {
	e := &Error{}
	e.Add(field, msg)
	return e
}

// Length checks the rune length of s against [min, max].  A min of 0 makes
// the field optional.
func (e *Error) Length(field, s string, min, max int) {
	n := utf8.RuneCountInString(s)
	switch {
	case min > 0 && n == 0:
		e.Add(field, "is required")
	case n < min:
		e.Add(field, fmt.Sprintf("must be at least %d characters", min))
	case n > max:
		e.Add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

// Email checks the address shape and length.
func (e *Error) Email(field, s string) {
	n := utf8.RuneCountInString(s)
	if n < EmailMin || n > EmailMax {
		e.Add(field, fmt.Sprintf("must be between %d and %d characters", EmailMin, EmailMax))
		return
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || !strings.Contains(s[strings.LastIndex(s, "@"):], ".") {
		e.Add(field, "is not a valid email address")
	}
}

// Password enforces the length bounds and requires at least PasswordClasses
// of the four character classes (upper, lower, digit, special).
func (e *Error) Password(field, s string) {
	n := utf8.RuneCountInString(s)
	if n < PasswordMin || n > PasswordMax {
		e.Add(field, fmt.Sprintf("must be between %d and %d characters", PasswordMin, PasswordMax))
		return
	}
	if len(s) > PasswordBytes {
		e.Add(field, "is too long once encoded")
		return
	}
	if PasswordClassCount(s) < PasswordClasses {
		e.Add(field, "must mix at least 3 of: uppercase, lowercase, digit, special character")
	}
}

// PasswordClassCount reports how many of the four character classes s uses.
func PasswordClassCount(s string) int {
	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsSpace(r):
			special = true
		}
	}
	n := 0
	for _, ok := range []bool{upper, lower, digit, special} {
		if ok {
			n++
		}
	}
	return n
}

// Stars checks a rating value.
func (e *Error) Stars(field string, v int) {
	if v < StarsMin || v > StarsMax {
		e.Add(field, fmt.Sprintf("must be between %d and %d", StarsMin, StarsMax))
	}
}

// ID checks that a referenced identifier is positive.
func (e *Error) ID(field string, v uint64) {
	if v == 0 {
		e.Add(field, "must be a positive integer")
	}
}
