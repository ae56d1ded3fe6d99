// Package wassetteerr provides the closed set of structured error kinds
// shared by the component lifecycle, policy, store, and invocation
// packages.
package wassetteerr

import "fmt"

// Code identifies one of the error kinds the core can report. The set is
// closed: callers should switch on known codes and treat anything else as
// an internal error.
type Code string

const (
	// Input errors: caused by the caller's request.
	CodeUnsupportedURI    Code = "unsupported_uri"
	CodeUnknownField      Code = "unknown_field"
	CodeMissingField      Code = "missing_field"
	CodeTypeMismatch      Code = "type_mismatch"
	CodeOutOfRange        Code = "out_of_range"
	CodeInvalidToolName   Code = "invalid_tool_name"
	CodeToolNotFound      Code = "tool_not_found"
	CodeToolNameCollision Code = "tool_name_collision"
	CodeComponentNotFound Code = "component_not_found"

	// Environment errors: transient or external, may be retried by the caller.
	CodeFetchFailed         Code = "fetch_failed"
	CodeCacheIOFailed       Code = "cache_io_failed"
	CodePolicyParseFailed   Code = "policy_parse_failed"
	CodePolicyPersistFailed Code = "policy_persist_failed"

	// Component errors: raised by or about the loaded component.
	CodeInvalidComponent    Code = "invalid_component"
	CodeIntrospectionFailed Code = "introspection_failed"
	CodeUnsupportedType     Code = "unsupported_type"
	CodeExecutionTrapped    Code = "execution_trapped"
	CodeCapabilityDenied    Code = "capability_denied"

	// Lifecycle errors.
	CodeCancelled Code = "cancelled"

	// Bridge-specific, reported alongside CodeTypeMismatch/CodeMissingField
	// when the caller needs a more specific diagnostic kind.
	CodeDecodingFailed Code = "decoding_failed"
	CodeEncodingFailed Code = "encoding_failed"
)

// Error is the structured error type returned across package boundaries.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Details map[string]interface{}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]interface{})}
}

// Wrap creates an error wrapping an existing cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause, Details: make(map[string]interface{})}
}

// WithDetail attaches a single piece of machine-readable context.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	e.Details[key] = value
	return e
}

// WithDetails merges machine-readable context into the error.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// Is reports whether err is a *Error carrying the given code.
func Is(err error, code Code) bool {
	e, ok := err.(*Error)
	return ok && e.Code == code
}

// NotFound creates a component_not_found error.
func NotFound(componentID string) *Error {
	return New(CodeComponentNotFound, fmt.Sprintf("component %q not found", componentID)).
		WithDetail("component_id", componentID)
}

// ToolNotFound creates a tool_not_found error.
func ToolNotFound(toolName string) *Error {
	return New(CodeToolNotFound, fmt.Sprintf("tool %q not found", toolName)).
		WithDetail("tool_name", toolName)
}

// ToolNameCollision creates a tool_name_collision error naming the offending
// tool and the component that already owns it.
func ToolNameCollision(toolName, ownerComponentID string) *Error {
	return New(CodeToolNameCollision, fmt.Sprintf("tool name %q is already registered", toolName)).
		WithDetail("tool_name", toolName).
		WithDetail("owner_component_id", ownerComponentID)
}

// TypeMismatch creates a type_mismatch error for a JSON decode failure.
func TypeMismatch(field, expected string, got interface{}) *Error {
	return New(CodeTypeMismatch, fmt.Sprintf("field %q: expected %s", field, expected)).
		WithDetail("field", field).
		WithDetail("expected", expected).
		WithDetail("got", got)
}

// MissingField creates a missing_field error.
func MissingField(field string) *Error {
	return New(CodeMissingField, fmt.Sprintf("missing required field %q", field)).
		WithDetail("field", field)
}

// UnknownField creates an unknown_field error.
func UnknownField(field string) *Error {
	return New(CodeUnknownField, fmt.Sprintf("unknown field %q", field)).
		WithDetail("field", field)
}

// OutOfRange creates an out_of_range error for a numeric bounds check.
func OutOfRange(field string, value interface{}, width int) *Error {
	return New(CodeOutOfRange, fmt.Sprintf("field %q: value %v out of range for %d-bit type", field, value, width)).
		WithDetail("field", field).
		WithDetail("value", value).
		WithDetail("width", width)
}

// CapabilityDenied creates a capability_denied error for a disallowed
// network/storage/environment access attempted by a running component.
func CapabilityDenied(kind, resource string) *Error {
	return New(CodeCapabilityDenied, fmt.Sprintf("%s access to %q denied by policy", kind, resource)).
		WithDetail("kind", kind).
		WithDetail("resource", resource)
}

// FetchFailed creates a fetch_failed error.
func FetchFailed(sourceURI string, err error) *Error {
	return Wrap(CodeFetchFailed, fmt.Sprintf("failed to fetch %s", sourceURI), err).
		WithDetail("source_uri", sourceURI)
}

// PolicyPersistFailed creates a policy_persist_failed error.
func PolicyPersistFailed(componentID string, err error) *Error {
	return Wrap(CodePolicyPersistFailed, fmt.Sprintf("failed to persist policy for %q", componentID), err).
		WithDetail("component_id", componentID)
}

// Cancelled creates a cancelled error.
func Cancelled(operation string) *Error {
	return New(CodeCancelled, fmt.Sprintf("%s cancelled", operation)).
		WithDetail("operation", operation)
}
