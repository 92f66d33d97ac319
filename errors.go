package omsvalues

import (
	"fmt"
	"strings"

	"github.com/ijknabla/omsvalues/cref"
)

// Error codes reported by the engine.
const (
	ErrCodeNotFound          = "not_found"
	ErrCodeTypeMismatch      = "type_mismatch"
	ErrCodeInvalidScope      = "invalid_scope"
	ErrCodeInvalidState      = "invalid_state"
	ErrCodeNameCollision     = "name_collision"
	ErrCodeAmbiguousBinding  = "ambiguous_binding"
	ErrCodeMalformedFragment = "malformed_fragment"
)

// Sentinels for errors.Is. Any *Error with the same code matches.
var (
	ErrNotFound          = &Error{Code: ErrCodeNotFound}
	ErrTypeMismatch      = &Error{Code: ErrCodeTypeMismatch}
	ErrInvalidScope      = &Error{Code: ErrCodeInvalidScope}
	ErrInvalidState      = &Error{Code: ErrCodeInvalidState}
	ErrNameCollision     = &Error{Code: ErrCodeNameCollision}
	ErrAmbiguousBinding  = &Error{Code: ErrCodeAmbiguousBinding}
	ErrMalformedFragment = &Error{Code: ErrCodeMalformedFragment}
)

// Error describes a failed lookup, mutation or import.
type Error struct {
	Code     string    // One of the ErrCode constants
	Name     cref.Name // Qualified name involved, if any
	Location string    // Document location for malformed fragments (e.g. "resources/a.ssv: ParameterSet/Parameters/Parameter[2]")
	Message  string    // Human-readable description
	Err      error     // Underlying cause
}

// Error formats the error as "omsvalues: <code> <name> at <location>: <message>: <cause>".
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("omsvalues: ")
	b.WriteString(e.Code)
	if !e.Name.IsEmpty() {
		fmt.Fprintf(&b, " %q", e.Name.String())
	}
	if e.Location != "" {
		b.WriteString(" at ")
		b.WriteString(e.Location)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func notFound(name cref.Name) error {
	return &Error{Code: ErrCodeNotFound, Name: name, Message: "no value in any layer"}
}

func typeMismatch(name cref.Name, have, want Type) error {
	return &Error{
		Code:    ErrCodeTypeMismatch,
		Name:    name,
		Message: fmt.Sprintf("holds %s, not %s", have, want),
	}
}

func malformed(location, format string, args ...any) error {
	return &Error{
		Code:     ErrCodeMalformedFragment,
		Location: location,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Policy validation codes.
const (
	ErrCodeUnknownState  = "unknown_state"
	ErrCodeUnknownSource = "unknown_source"
	ErrCodeUnknownWrite  = "unknown_write"
	ErrCodeEmptyOrder    = "empty_order"
	ErrCodeEarlyRuntime  = "early_runtime"
)

// ValidationError aggregates problems found in a policy table.
type ValidationError struct {
	Issues []Issue
}

// Error formats validation issues as a multi-line message.
func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "policy validation failed: no errors"
	}

	var b strings.Builder
	if len(e.Issues) == 1 {
		b.WriteString("policy validation failed: 1 error\n")
	} else {
		fmt.Fprintf(&b, "policy validation failed: %d errors\n", len(e.Issues))
	}

	for _, is := range e.Issues {
		fmt.Fprintf(&b, "  - %s: %s (%s)\n", is.Path, is.Code, is.Message)
	}

	return strings.TrimRight(b.String(), "\n")
}

// Issue is a single policy problem.
type Issue struct {
	Path    string // Dot notation (e.g., "simulation.external.read")
	Code    string // Error code (e.g., "unknown_source")
	Message string
}
