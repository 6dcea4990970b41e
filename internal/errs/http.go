// Package errs define custom error types and utilities.
//
// Its purpose is to create specific error structures..
// (e.g. FieldErrors for payload validation or HTTPError for API responses)..
// to ensure the client receive meaningful, actionable, and consistent..
// error messages.
//
// - Return consistent error shapes to API clients (JSON).
// - Support field-level validation errors for request payloads.
// - Provide errors that play nicely with Go's standard errors package.
package errs

import "strings"

// StatusError is the value of the "status" marker in every error body.
const StatusError = "error"

// FieldError represents a field-level validation error.
// Example:
//
//	{ "field": "rating", "error": "must be in range 0 to 100" }
type FieldError struct {
	// Field is the JSON key the error relates to (e.g. "rating").
	Field string `json:"field"`

	// Error is the human-readable error message.
	Error string `json:"error"`
}

// HTTPError is the main custom error type for API responses.
//
// It implements the `error` interface via Error().
// Fields:
//   - Code: machine-friendly error code (e.g. "USER_ALREADY_EXISTS"), logs only.
//   - Message: human-friendly message.
//   - Status: HTTP status code.
//   - Errors: list of per-field errors (validation).
//
// It is never serialized directly: Body() builds the wire shape.
type HTTPError struct {
	Code    string
	Message string
	Status  int

	// Errors holds field-level validation errors.
	Errors []FieldError
}

// ErrorBody is the JSON shape shared by every error response:
//
//	{ "status": "error", "message": "no such user" }
//	{ "status": "error", "message": [{ "field": "rating", "error": "..." }] }
type ErrorBody struct {
	Status  string `json:"status"`
	Message any    `json:"message"`
}

// Error makes *HTTPError satisfy the built-in `error` interface.
//
// Here it returns the Message, so printing/logging the error shows the message.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is customizes how errors.Is(...) treats HTTPError.
//
// This implementation returns true if `target` is also a *HTTPError.
// It does NOT compare Code/Status/etc, only the type.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)

	return ok
}

// Body converts the error into the response body.
//
// When field errors are present the message is the field error list,
// otherwise it is the plain message string.
func (e *HTTPError) Body() ErrorBody {
	if len(e.Errors) > 0 {
		return ErrorBody{Status: StatusError, Message: e.Errors}
	}
	return ErrorBody{Status: StatusError, Message: e.Message}
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"Bad Request" -> "BAD_REQUEST"
//
// Used to create stable machine-readable error codes from HTTP status text.
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
