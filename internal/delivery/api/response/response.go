// Package response defines the JSON envelope every API response is written in.
package response

import "github.com/labstack/echo/v4"

// Envelope is the uniform response body: {code, message?, data?}.
// Message and Data are omitted from the JSON when empty.
type Envelope struct {
	Code    int    `json:"code"`              // Mirrors the HTTP status code
	Message string `json:"message,omitempty"` // Human readable message, set on error responses
	Data    any    `json:"data,omitempty"`    // Payload, or the list of validation messages
}

// New returns an envelope carrying only a code.
func New(code int) Envelope {
	return Envelope{Code: code}
}

// NewWithMessage returns an envelope carrying a code and a message.
func NewWithMessage(code int, message string) Envelope {
	return Envelope{Code: code, Message: message}
}

// NewWithData returns an envelope carrying a code and a payload.
func NewWithData(code int, data any) Envelope {
	return Envelope{Code: code, Data: data}
}

// NewEnvelope returns an envelope carrying a code, a message and a payload.
func NewEnvelope(code int, message string, data any) Envelope {
	return Envelope{Code: code, Message: message, Data: data}
}

// JSON writes env with the given HTTP status.
func JSON(c echo.Context, statusCode int, env Envelope) error {
	return c.JSON(statusCode, env)
}

// Success returns a successful response
func Success(c echo.Context, statusCode int, data any) error {
	return JSON(c, statusCode, NewWithData(statusCode, data))
}
