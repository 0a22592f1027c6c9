package config

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorization.
const (
	ErrCodeConfigNotFound   = "CONFIG_NOT_FOUND"
	ErrCodeConfigParse      = "CONFIG_PARSE"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
)

// UserError is a configuration problem reported to the user together with
// where it happened and how to fix it.
type UserError struct {
	Code       string // e.g. "CONFIG_NOT_FOUND"
	Message    string
	Context    string // file path, line or field
	Suggestion string
	Underlying error
}

// Error returns the message and its location.
func (e *UserError) Error() string {
	if e.Context == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (at %s)", e.Message, e.Context)
}

// Unwrap returns the underlying error.
func (e *UserError) Unwrap() error {
	return e.Underlying
}

// Is matches another UserError with the same code.
func (e *UserError) Is(target error) bool {
	if t, ok := target.(*UserError); ok {
		return e.Code == t.Code
	}
	return false
}

// Format returns the error with its code, location and suggestion.
func (e *UserError) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, "\n  Location: %s", e.Context)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}
	return b.String()
}

// ErrorList collects validation errors so they can be reported together.
type ErrorList struct {
	errors []*UserError
}

// AddValidation records a validation error for field.
func (l *ErrorList) AddValidation(field, message, suggestion string) {
	l.errors = append(l.errors, &UserError{
		Code:       ErrCodeValidationFailed,
		Message:    fmt.Sprintf("%s: %s", field, message),
		Context:    field,
		Suggestion: suggestion,
	})
}

// Errors returns a copy of the collected errors.
func (l *ErrorList) Errors() []*UserError {
	out := make([]*UserError, len(l.errors))
	copy(out, l.errors)
	return out
}

func (l *ErrorList) Error() string {
	if len(l.errors) == 1 {
		return l.errors[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d errors occurred:\n", len(l.errors))
	for i, err := range l.errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// Format returns every error in its detailed form.
func (l *ErrorList) Format() string {
	parts := make([]string, len(l.errors))
	for i, err := range l.errors {
		parts[i] = err.Format()
	}
	return strings.Join(parts, "\n")
}

// AsError returns the list as an error, or nil if it is empty.
func (l *ErrorList) AsError() error {
	if len(l.errors) == 0 {
		return nil
	}
	return l
}

// NewConfigNotFoundError reports a missing configuration file.
func NewConfigNotFoundError(path string) *UserError {
	return &UserError{
		Code:       ErrCodeConfigNotFound,
		Message:    fmt.Sprintf("configuration file not found: %s", path),
		Context:    path,
		Suggestion: "Check the --config path, or omit it to run with flags only.",
	}
}

// NewYAMLParseError translates a YAML decoding error into a user-friendly one.
func NewYAMLParseError(path string, err error) *UserError {
	errStr := err.Error()
	var message, suggestion string

	switch {
	case strings.Contains(errStr, "not found in type"):
		message = "unknown setting"
		suggestion = "Check the spelling of the key. Supported sections: agent, defaults, sources, sources_file, log."
	case strings.Contains(errStr, "cannot unmarshal !!map into []string"):
		message = "invalid scopes format"
		suggestion = "Scopes are a list of names, e.g.\n  scopes:\n    - \"@acme\""
	case strings.Contains(errStr, "cannot unmarshal !!seq into"):
		message = "expected an object but found a list"
		suggestion = "Check that you're using 'key: value' format instead of '- item' list format."
	case strings.Contains(errStr, "into bool"):
		message = "expected true or false"
		suggestion = "Boolean settings take true or false without quotes."
	case strings.Contains(errStr, "did not find expected key"):
		message = "missing required field or incorrect indentation"
		suggestion = "YAML is sensitive to indentation. Use 2 spaces (not tabs) for each level."
	case strings.Contains(errStr, "found character that cannot start"):
		message = "invalid character in YAML"
		suggestion = "Quote values that start with special characters, such as scopes: \"@acme\"."
	default:
		message = "invalid YAML syntax"
		suggestion = "Check your YAML syntax. Common issues: incorrect indentation, missing colons, or unquoted special characters."
	}

	context := path
	if parts := strings.SplitN(errStr, "line ", 2); len(parts) == 2 {
		context = fmt.Sprintf("%s (line %s)", path, strings.SplitN(parts[1], ":", 2)[0])
	}

	return &UserError{
		Code:       ErrCodeConfigParse,
		Message:    message,
		Context:    context,
		Suggestion: suggestion,
		Underlying: err,
	}
}

// GetUserError extracts a UserError from an error chain, if present.
func GetUserError(err error) *UserError {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue
	}
	return nil
}
