package validator

import (
	"fmt"
	"net/url"
	"strings"
)

// Violation codes reported to clients.
const (
	CodeRequired    = "required"
	CodeInvalidType = "invalid_type"
	CodeTooSmall    = "too_small"
	CodeTooBig      = "too_big"
	CodeInvalidEnum = "invalid_enum_value"
	CodeInvalidURL  = "invalid_url"
	CodeNotUnique   = "not_unique"
)

// Violation describes one field that failed validation. Path elements are field
// names (string) or array indices (int).
type Violation struct {
	Code    string `json:"code"`
	Path    []any  `json:"path"`
	Message string `json:"message"`
}

// Field joins the path with dots, e.g. "genre.1". The root is "".
func (v Violation) Field() string {
	parts := make([]string, len(v.Path))
	for i, p := range v.Path {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ".")
}

// Error carries every violation found in a payload.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		field := v.Field()
		if field == "" {
			field = "(root)"
		}
		parts = append(parts, field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator collects violations in the order they are found.
type Validator struct {
	Violations []Violation
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// Valid reports whether no violation was recorded.
func (v *Validator) Valid() bool {
	return len(v.Violations) == 0
}

// AddError records a violation unless the same path already failed.
func (v *Validator) AddError(code, message string, path ...any) {
	violation := Violation{
		Code:    code,
		Path:    append([]any{}, path...),
		Message: message,
	}
	key := violation.Field()
	for _, existing := range v.Violations {
		if existing.Field() == key {
			return
		}
	}
	v.Violations = append(v.Violations, violation)
}

// Check records a violation when ok is false.
func (v *Validator) Check(ok bool, code, message string, path ...any) {
	if !ok {
		v.AddError(code, message, path...)
	}
}

// Err returns nil when valid, otherwise an *Error holding a copy of the violations.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return &Error{Violations: append([]Violation(nil), v.Violations...)}
}

// In reports whether value is one of list.
func In(value string, list ...string) bool {
	for i := range list {
		if value == list[i] {
			return true
		}
	}
	return false
}

// Unique reports whether values holds no duplicates.
func Unique(values []string) bool {
	seen := make(map[string]bool, len(values))
	for _, value := range values {
		if seen[value] {
			return false
		}
		seen[value] = true
	}
	return true
}

// IsHTTPURL reports whether value is an absolute http or https URL with a host.
func IsHTTPURL(value string) bool {
	u, err := url.ParseRequestURI(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
