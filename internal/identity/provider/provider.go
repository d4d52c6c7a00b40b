// Package provider defines the credential backend contract: the system of
// record for email/password pairs. Profile and directory documents live
// elsewhere; the provider only knows accounts.
package provider

import (
	"context"
	"errors"
	"fmt"

	id "github.com/ahmadsobohhh/UnityPlatform/pkg/domain"
)

//go:generate mockgen -source=provider.go -destination=mocks/provider_mock.go -package=mocks

// ErrorCode classifies credential failures. Codes are stable identifiers;
// the service layer owns the user-facing message for each.
type ErrorCode string

const (
	CodeMissingEmail      ErrorCode = "MissingEmail"
	CodeMissingPassword   ErrorCode = "MissingPassword"
	CodeWrongPassword     ErrorCode = "WrongPassword"
	CodeInvalidEmail      ErrorCode = "InvalidEmail"
	CodeUserNotFound      ErrorCode = "UserNotFound"
	CodeWeakPassword      ErrorCode = "WeakPassword"
	CodeEmailAlreadyInUse ErrorCode = "EmailAlreadyInUse"
	CodeUnknown           ErrorCode = "Unknown"
)

// Error is a coded credential failure.
type Error struct {
	Code  ErrorCode
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("credential error %s: %v", e.Code, e.cause)
	}
	return fmt.Sprintf("credential error %s", e.Code)
}

func (e *Error) Unwrap() error { return e.cause }

// NewError creates a coded credential error.
func NewError(code ErrorCode) error {
	return &Error{Code: code}
}

// WrapError attaches a code to an underlying cause.
func WrapError(cause error, code ErrorCode) error {
	return &Error{Code: code, cause: cause}
}

// CodeOf extracts the credential error code, or CodeUnknown when err is not
// a provider error.
func CodeOf(err error) ErrorCode {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return CodeUnknown
}

// IsProviderError reports whether err carries a credential error code.
func IsProviderError(err error) bool {
	var pe *Error
	return errors.As(err, &pe)
}

// Session is the result of a successful sign-in.
type Session struct {
	UID   id.UserID
	Email string
	Token string
}

// Account is the result of creating credentials.
type Account struct {
	UID   id.UserID
	Email string
}

// CredentialProvider authenticates and provisions email/password accounts.
type CredentialProvider interface {
	// SignIn verifies credentials and mints a session. Failures carry an
	// ErrorCode via *Error.
	SignIn(ctx context.Context, email, password string) (Session, error)

	// CreateUser provisions a new account. Fails with CodeEmailAlreadyInUse
	// when the email is taken.
	CreateUser(ctx context.Context, email, password string) (Account, error)

	// UpdateDisplayName sets the account's display name. Cosmetic: callers
	// may treat failures as non-fatal.
	UpdateDisplayName(ctx context.Context, uid id.UserID, displayName string) error
}
