// Package conversation implements the multi-turn streaming client used by
// every AI call in the wizard.
package conversation

import (
	"fmt"
	"strings"
)

// ErrorCode is a stable classification of a failed AI call.
type ErrorCode string

const (
	// CodeThrottled means the provider rate-limited the call. Retriable.
	CodeThrottled ErrorCode = "THROTTLED"
	// CodeAccessDenied means credentials are missing or rejected.
	CodeAccessDenied ErrorCode = "ACCESS_DENIED"
	// CodeModelNotAvailable means the resolved model cannot serve requests.
	CodeModelNotAvailable ErrorCode = "MODEL_NOT_AVAILABLE"
	// CodeInvalidRequest covers malformed requests and client misuse.
	CodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// CodeUnknown is everything the classifier cannot place.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Error is the typed error surfaced on the OnError channel and returned
// from SendMessage.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Retriable reports whether the client-level backoff loop may retry.
// Only throttling is retried; everything else fails fast.
func (e *Error) Retriable() bool { return e.Code == CodeThrottled }

// Classify maps a provider error onto the client's error taxonomy. The
// provider SDKs do not share an error surface, so classification goes by
// status-code and message substrings. modelID is included in the
// model-unavailable message so the user can see what was resolved.
func Classify(err error, modelID string) *Error {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*Error); ok {
		return ce
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "429", "rate limit", "rate_limit", "throttl", "too many requests", "quota", "overloaded"):
		return &Error{Code: CodeThrottled, Message: "request was throttled by the model provider", Cause: err}
	case containsAny(msg, "401", "403", "access denied", "permission", "unauthorized", "api key", "authentication", "credential"):
		return &Error{Code: CodeAccessDenied, Message: "access to the model provider was denied", Cause: err}
	case containsAny(msg, "model not found", "model_not_found", "no such model", "does not exist", "not supported", "unavailable", "404"):
		return &Error{Code: CodeModelNotAvailable, Message: fmt.Sprintf("model %q is not available", modelID), Cause: err}
	case containsAny(msg, "400", "invalid", "bad request", "validation"):
		return &Error{Code: CodeInvalidRequest, Message: "the model provider rejected the request", Cause: err}
	default:
		return &Error{Code: CodeUnknown, Message: err.Error(), Cause: err}
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
