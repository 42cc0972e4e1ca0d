package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// DefaultErrorMessage is used when a failed response carries no readable message.
const DefaultErrorMessage = "request failed"

// Error is the single error shape every gateway operation reports. Status is
// zero when no response was received.
type Error struct {
	Status  int
	Message string
	Code    string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return DefaultErrorMessage
	}
	return e.Message
}

// Unwrap exposes the transport error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsUnauthorized reports whether err is a 401 or 403 gateway error.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

// IsNetwork reports whether err is a gateway error raised without a response.
func IsNetwork(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 0
}

// IsStatus reports whether err is a gateway error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

// decodeError turns a failed response body into an Error. It never fails: a
// body that is empty, not JSON, or lacks a message yields fallback.
func decodeError(status int, body []byte, fallback string) *Error {
	if fallback == "" {
		fallback = DefaultErrorMessage
	}
	apiErr := &Error{Status: status, Message: fallback}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return apiErr
	}
	apiErr.Code = parsed.Code

	var errText string
	if len(parsed.Error) > 0 && json.Unmarshal(parsed.Error, &errText) == nil && strings.TrimSpace(errText) != "" {
		apiErr.Message = strings.TrimSpace(errText)
		return apiErr
	}
	if msg := strings.TrimSpace(parsed.Message); msg != "" {
		apiErr.Message = msg
	}
	return apiErr
}

// NetworkErrorMessage is reported when no response was received.
const NetworkErrorMessage = DefaultErrorMessage + ": network unavailable"

func networkError(err error) *Error {
	return &Error{Message: NetworkErrorMessage, Err: err}
}
