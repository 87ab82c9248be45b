package pushover

import (
	"fmt"
	"strings"
	"time"
)

// ErrorKind classifies API failures so callers can decide whether to retry.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindRejected
	KindRateLimited
	KindServer
	KindConnectivity
)

func (k ErrorKind) String() string {
	switch k {
	case KindRejected:
		return "rejected"
	case KindRateLimited:
		return "rate_limited"
	case KindServer:
		return "server"
	case KindConnectivity:
		return "connectivity"
	}
	return "unknown"
}

// ValidationError reports a malformed or missing field. It is always raised
// before any network I/O and is never retryable.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// APIError reports a failure after transmission. Kind distinguishes
// rate-limited, rejected, server, connectivity and unknown failures;
// ResetAt is set only for rate-limited errors.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Messages   []string
	ResetAt    time.Time
	cause      error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindRateLimited:
		if e.ResetAt.IsZero() {
			return "pushover: rate limited"
		}
		return fmt.Sprintf("pushover: rate limited, resets at %s", e.ResetAt.Format(time.RFC3339))
	case KindRejected:
		msg := strings.Join(e.Messages, "; ")
		if msg == "" {
			msg = "request rejected"
		}
		return fmt.Sprintf("pushover: %s (status %d)", msg, e.StatusCode)
	case KindServer:
		return fmt.Sprintf("pushover: server error (status %d), retry later", e.StatusCode)
	case KindConnectivity:
		return fmt.Sprintf("pushover: connection failed: %v", e.cause)
	}
	if e.cause != nil {
		return fmt.Sprintf("pushover: %v", e.cause)
	}
	return fmt.Sprintf("pushover: unexpected response (status %d)", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// Retryable reports whether the failure is worth retrying. Rejected requests
// stay rejected; rate-limited, server and connectivity failures may clear.
func (e *APIError) Retryable() bool {
	switch e.Kind {
	case KindRateLimited, KindServer, KindConnectivity:
		return true
	}
	return false
}
