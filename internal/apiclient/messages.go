package apiclient

import (
	"fmt"
	"net/http"
)

// ConnectivityMessage is reported when every attempt failed without an HTTP answer or transport detail.
const ConnectivityMessage = "Connection error. Please check your internet connection."

var statusMessages = map[int]string{
	http.StatusBadRequest:          "Invalid request. Please check the information you entered.",
	http.StatusUnauthorized:        "Your session has expired. Please sign in again.",
	http.StatusForbidden:           "You are not allowed to perform this action.",
	http.StatusNotFound:            "The requested resource was not found.",
	http.StatusTooManyRequests:     "Too many requests. Please wait a moment.",
	http.StatusInternalServerError: "Server error. Please try again later.",
	http.StatusBadGateway:          "The server is unreachable. Please try again later.",
	http.StatusServiceUnavailable:  "The service is temporarily unavailable.",
	http.StatusGatewayTimeout:      "The server did not respond. Please try again.",
}

const defaultStatusMessage = "An unexpected error occurred."

// StatusMessage returns the user-facing message for an HTTP status.
func StatusMessage(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return defaultStatusMessage
}

// NonRetryableHTTPError is a 4xx answer (other than 429) returned without retrying.
type NonRetryableHTTPError struct {
	Status  int
	Message string
}

func (e *NonRetryableHTTPError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

// RetryExhaustedError means every allowed attempt failed with a retryable error.
type RetryExhaustedError struct {
	Attempts int
	// Status is the last HTTP status seen, 0 if the last attempt never got a response.
	Status  int
	Message string
	Cause   error
}

func (e *RetryExhaustedError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("giving up after %d attempts (last status %d): %s", e.Attempts, e.Status, e.Message)
	}
	return fmt.Sprintf("giving up after %d attempts: %s", e.Attempts, e.Message)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Cause
}
