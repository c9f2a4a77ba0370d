package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Error is a rejected-input failure. Handlers map it to a 400 with the
// reason; it is distinct from not-found and storage failures.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return e.Reason }

// Errorf builds a validation error with a formatted reason.
func Errorf(format string, args ...any) *Error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}

// Rules holds the configurable validation bounds, set once at startup.
type Rules struct {
	MaxBodyLen              int
	RequireRecipientContact bool
}

var rules = Rules{MaxBodyLen: 240, RequireRecipientContact: true}

func SetRules(r Rules) {
	if r.MaxBodyLen <= 0 {
		r.MaxBodyLen = 240
	}
	rules = r
}

func MaxBodyLen() int                { return rules.MaxBodyLen }
func RecipientContactRequired() bool { return rules.RequireRecipientContact }

var (
	spaceRun = regexp.MustCompile(`\s+`)
	// Deliberately loose: local-part "@" domain "." suffix. Full RFC 5322
	// compliance is not a goal.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// CleanSpace collapses runs of whitespace to single spaces and trims.
func CleanSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// Body trims the body and enforces non-empty plus the configured bound.
func Body(body string) (string, error) {
	cleaned := strings.TrimSpace(body)
	if cleaned == "" {
		return "", Errorf("message body is required")
	}
	if n := len([]rune(cleaned)); n > rules.MaxBodyLen {
		return "", Errorf("message body must be %d characters or fewer", rules.MaxBodyLen)
	}
	return cleaned, nil
}

// OptionalEmail validates and lower-cases an optional email. Empty input is
// accepted and returned as the empty string.
func OptionalEmail(value string) (string, error) {
	cleaned := strings.ToLower(strings.TrimSpace(value))
	if cleaned == "" {
		return "", nil
	}
	if !emailPattern.MatchString(cleaned) {
		return "", Errorf("senderNotifyEmail must be a valid email address")
	}
	return cleaned, nil
}

// LooksLikeEmail reports whether a free-text contact value parses as an
// email. Used by callers to decide delivery affordances; the store itself
// never enforces a contact format.
func LooksLikeEmail(value string) bool {
	return emailPattern.MatchString(strings.TrimSpace(value))
}
