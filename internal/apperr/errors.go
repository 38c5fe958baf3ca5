// Package apperr defines the domain error taxonomy. Every failure a client
// can observe is one of these errors: a stable code, a human-readable
// message, and the HTTP status it maps to at the boundary.
package apperr

import "net/http"

// Error is a typed domain failure carrying a stable code/message/status triple.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches errors by code so that derived copies (WithStatus, WithMessage)
// still compare equal to their base error under errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithStatus returns a copy of the error with a different HTTP status.
// The code and message are unchanged.
func (e *Error) WithStatus(status int) *Error {
	clone := *e
	clone.Status = status
	return &clone
}

// WithMessage returns a copy of the error with a different message.
func (e *Error) WithMessage(message string) *Error {
	clone := *e
	clone.Message = message
	return &clone
}

var (
	// ErrInternal is the fallback for unanticipated failures. Internals are
	// never exposed to the client.
	ErrInternal = &Error{Code: "internal_error", Message: "Internal server error.", Status: http.StatusInternalServerError}

	// ErrValidation covers malformed or out-of-range input.
	ErrValidation = &Error{Code: "validation_error", Message: "This field is invalid.", Status: http.StatusUnprocessableEntity}

	// ErrDuplicateIdentity is returned when an email or username is already taken.
	ErrDuplicateIdentity = &Error{Code: "duplicate_identity", Message: "Username or email already exists.", Status: http.StatusUnprocessableEntity}

	// ErrInvalidCredentials covers unknown email and password mismatch alike.
	ErrInvalidCredentials = &Error{Code: "invalid_credentials", Message: "Email or password is incorrect.", Status: http.StatusUnauthorized}

	// ErrInactiveUser means credentials or token were valid but the account
	// is deactivated. Status is 400 on the token-auth path; the login path
	// overrides it to 401.
	ErrInactiveUser = &Error{Code: "inactive_user", Message: "User is inactive.", Status: http.StatusBadRequest}

	// ErrInvalidToken covers bad signatures, malformed payloads, wrong token
	// types, and unresolvable subjects.
	ErrInvalidToken = &Error{Code: "invalid_token", Message: "Invalid token.", Status: http.StatusUnauthorized}

	// ErrTokenExpired means the signature verified but the token is past expiry.
	ErrTokenExpired = &Error{Code: "token_expired", Message: "Token has expired.", Status: http.StatusUnauthorized}

	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = &Error{Code: "not_found", Message: "User does not exist.", Status: http.StatusNotFound}

	// ErrUnauthorized covers requests whose identity could not be established.
	ErrUnauthorized = &Error{Code: "unauthorized", Message: "Could not validate credentials.", Status: http.StatusUnauthorized}

	// ErrForbidden means the caller is authenticated but lacks the required role.
	ErrForbidden = &Error{Code: "forbidden", Message: "User is not a superuser.", Status: http.StatusForbidden}

	// ErrRateLimited is declared for the taxonomy but not raised anywhere yet.
	ErrRateLimited = &Error{Code: "rate_limited", Message: "Rate limit exceeded.", Status: http.StatusTooManyRequests}
)

// From coerces any error into an *Error, degrading unknown errors to
// ErrInternal so nothing leaks unmapped to a client.
func From(err error) *Error {
	if typed, ok := err.(*Error); ok { //nolint:errorlint // From is the mapping boundary
		return typed
	}
	return ErrInternal
}
