package submission

import (
	"net/mail"
	"regexp"
	"strings"
)

// Minimum lengths enforced on trimmed input.
const (
	minNameLen    = 2
	minCommentLen = 10
	minPhoneDigit = 10
)

// phonePattern accepts digits plus the usual separators: spaces, +, -, ( and ).
var phonePattern = regexp.MustCompile(`^[\d\s+\-()]+$`)

// FieldError describes a single invalid field.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return e.Reason
}

// Name trims the input and requires at least two characters.
func Name(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", FieldError{Field: "name", Reason: "Name cannot be empty"}
	}
	if len([]rune(v)) < minNameLen {
		return "", FieldError{Field: "name", Reason: "Name must be at least 2 characters long"}
	}
	return v, nil
}

// Phone accepts digits and separators only, and requires at least ten digit
// characters once separators are stripped. The returned value is trimmed but
// keeps its separators.
func Phone(s string) (string, error) {
	if !phonePattern.MatchString(s) {
		return "", FieldError{Field: "phone", Reason: "Invalid phone number format"}
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < minPhoneDigit {
		return "", FieldError{Field: "phone", Reason: "Phone number must contain at least 10 digits"}
	}
	return strings.TrimSpace(s), nil
}

// Email requires a syntactically valid bare address (local@domain) with a
// dotted domain of valid DNS labels.
func Email(s string) (string, error) {
	invalid := FieldError{Field: "email", Reason: "Invalid email format"}

	v := strings.TrimSpace(s)
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return "", invalid
	}

	at := strings.LastIndex(v, "@")
	domain := v[at+1:]
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return "", invalid
	}
	for _, label := range labels {
		if !validDomainLabel(label) {
			return "", invalid
		}
	}
	return v, nil
}

func validDomainLabel(label string) bool {
	if len(label) == 0 || len(label) > 63 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
		default:
			return false
		}
	}
	return true
}

// Comment trims the input and requires at least ten characters.
func Comment(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", FieldError{Field: "comment", Reason: "Comment cannot be empty"}
	}
	if len([]rune(v)) < minCommentLen {
		return "", FieldError{Field: "comment", Reason: "Comment must be at least 10 characters long"}
	}
	return v, nil
}

// Rating requires an integer between 1 and 5 inclusive.
func Rating(n int) (int, error) {
	if n < 1 || n > 5 {
		return 0, FieldError{Field: "rating", Reason: "Rating must be between 1 and 5"}
	}
	return n, nil
}
