package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Category classifies an *APIError.
type Category string

const (
	CategoryNetwork       Category = "network"        // no response, status 0
	CategoryTimeout       Category = "timeout"        // attempt deadline fired, status 408
	CategoryAuthExpired   Category = "auth_expired"   // 401
	CategoryAuthForbidden Category = "auth_forbidden" // 403
	CategoryNotFound      Category = "not_found"      // 404
	CategoryValidation    Category = "validation"     // 422
	CategoryRateLimited   Category = "rate_limited"   // 429
	CategoryServer        Category = "server"         // 5xx
	CategoryHTTP          Category = "http"           // any other non-2xx

	// Failures that never reach the backend or happen after it answered.
	CategoryCanceled Category = "canceled" // caller's context ended, status 0
	CategoryRequest  Category = "request"  // request could not be built, status 0
	CategoryDecode   Category = "decode"   // 2xx body did not match the target type
)

const (
	MsgNetworkFailure = "Network connection failed. Please check your internet connection."
	MsgTimeout        = "Request timeout. Please try again."
	MsgTokenRefreshed = "Token refreshed. Please retry the request."
)

// APIError is the single failure type returned by the client.
type APIError struct {
	// Message is user facing: the backend's "message" field when present.
	Message string

	// Status is the HTTP error status. 0 means there is no failing status:
	// no response was received, or a 2xx body could not be decoded. 408 is
	// also used for client side timeouts.
	Status int

	// Details is the parsed error body, {"originalError": ...} for failures
	// without a response, or {"status": ...} for decode failures.
	Details map[string]any

	Category Category

	Method    string
	URL       string
	RequestID string

	// TokenRefreshed marks a 401 after which a refresh succeeded and the
	// request is worth retrying. Only surfaced when replay is disabled.
	TokenRefreshed bool

	// Cause is the underlying error (transport error, context error, decode error).
	Cause error
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Method != "" {
		b.WriteString(e.Method)
		b.WriteString(" ")
	}
	if e.URL != "" {
		b.WriteString(e.URL)
		b.WriteString(": ")
	}
	if e.Status != 0 {
		b.WriteString(fmt.Sprintf("http %d", e.Status))
	} else {
		b.WriteString("request failed")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil && e.Cause.Error() != e.Message {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *APIError) Unwrap() error { return e.Cause }

// categorize maps an HTTP status onto its Category.
func categorize(status int) Category {
	switch {
	case status == http.StatusUnauthorized:
		return CategoryAuthExpired
	case status == http.StatusForbidden:
		return CategoryAuthForbidden
	case status == http.StatusNotFound:
		return CategoryNotFound
	case status == http.StatusRequestTimeout:
		return CategoryTimeout
	case status == http.StatusUnprocessableEntity:
		return CategoryValidation
	case status == http.StatusTooManyRequests:
		return CategoryRateLimited
	case status >= 500:
		return CategoryServer
	default:
		return CategoryHTTP
	}
}

// AsAPIError extracts *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func IsStatus(err error, status int) bool {
	ae, ok := AsAPIError(err)
	return ok && ae.Status == status
}

func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

func IsTimeout(err error) bool {
	ae, ok := AsAPIError(err)
	return ok && ae.Category == CategoryTimeout
}

func IsNetwork(err error) bool {
	ae, ok := AsAPIError(err)
	return ok && ae.Category == CategoryNetwork
}

// IsRetryAfterRefresh reports whether err is the "token refreshed, retry" signal.
func IsRetryAfterRefresh(err error) bool {
	ae, ok := AsAPIError(err)
	return ok && ae.TokenRefreshed
}
