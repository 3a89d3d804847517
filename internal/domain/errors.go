package domain

import "errors"

// Error kinds surfaced by services. Handlers translate these to HTTP status
// codes; callers should match with errors.Is.
var (
	ErrValidation          = errors.New("validation error")
	ErrAuth                = errors.New("authentication error")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrStorage             = errors.New("storage error")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrNotFound            = errors.New("not found")
)

// Error carries a user-facing message together with its kind and the
// underlying cause, if any.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// NewValidationError reports bad or missing input.
func NewValidationError(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

// NewAuthError reports a missing or invalid credential.
func NewAuthError(message string) error {
	return &Error{Kind: ErrAuth, Message: message}
}

// NewStorageError wraps a persistence failure.
func NewStorageError(message string, err error) error {
	return &Error{Kind: ErrStorage, Message: message, Err: err}
}

// NewUpstreamError wraps a failure talking to the completion provider.
func NewUpstreamError(message string, err error) error {
	return &Error{Kind: ErrUpstreamUnavailable, Message: message, Err: err}
}

// Message returns the user-facing message of err when it is a *Error,
// otherwise fallback.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return fallback
}

// ErrCacheMiss is returned by caches when a key is absent.
var ErrCacheMiss = errors.New("cache miss")
