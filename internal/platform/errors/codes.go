package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Input errors
	CodeValidation   Code = "VALIDATION"
	CodeInvalidInput Code = "INVALID_INPUT"

	// Account errors
	CodeDuplicateEmail     Code = "DUPLICATE_EMAIL"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"

	// Session errors
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeInvalidToken Code = "INVALID_TOKEN"
	CodeExpiredToken Code = "EXPIRED_TOKEN"

	// Resource errors
	CodeNotFound Code = "NOT_FOUND"

	// Throttling
	CodeRateLimited Code = "RATE_LIMITED"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// BadRequest - validation failures, bad input, uniqueness conflicts
	case CodeValidation,
		CodeInvalidInput,
		CodeDuplicateEmail:
		return http.StatusBadRequest

	// Unauthorized - missing or rejected credentials
	case CodeInvalidCredentials,
		CodeUnauthorized,
		CodeInvalidToken,
		CodeExpiredToken:
		return http.StatusUnauthorized

	case CodeNotFound:
		return http.StatusNotFound

	case CodeRateLimited:
		return http.StatusTooManyRequests

	default:
		return http.StatusInternalServerError
	}
}

// HTTPStatus maps an error to an HTTP status code.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return GetCode(err).HTTPStatus()
}
