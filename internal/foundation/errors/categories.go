package errors

import "maps"

// ErrorCategory represents the broad category of an error for classification and routing.
type ErrorCategory string

const (
	// CategoryConfig represents user-facing configuration and input errors.
	CategoryConfig ErrorCategory = "config"
	// CategoryValidation represents violations of document or operation constraints.
	CategoryValidation ErrorCategory = "validation"
	// CategoryNotFound represents references to sections, items, or pages that do not exist.
	CategoryNotFound ErrorCategory = "not_found"
	// CategoryStorage represents persistence failures (page store, revisions).
	CategoryStorage ErrorCategory = "storage"
	// CategoryNetwork represents external transport errors (NATS, HTTP).
	CategoryNetwork ErrorCategory = "network"
	// CategoryInternal represents programming errors and broken invariants.
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution completely
	SeverityError   ErrorSeverity = "error"   // Fails the current operation
	SeverityWarning ErrorSeverity = "warning" // Operation was a no-op; surfaced as a notice
	SeverityInfo    ErrorSeverity = "info"    // Informational only
)

// RetryStrategy indicates whether and how an operation may be retried.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryImmediate  RetryStrategy = "immediate"
	RetryBackoff    RetryStrategy = "backoff"
	RetryUserAction RetryStrategy = "user_action"
)

// ErrorContext carries structured key/value context attached to an error.
type ErrorContext map[string]any

// Set returns a copy of the context with key set to value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	out := make(ErrorContext, len(c)+1)
	maps.Copy(out, c)
	out[key] = value
	return out
}

// Merge returns a copy of the context with all entries of other applied on top.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	out := make(ErrorContext, len(c)+len(other))
	maps.Copy(out, c)
	maps.Copy(out, other)
	return out
}
