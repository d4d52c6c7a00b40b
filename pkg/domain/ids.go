// Package domain holds identifier types shared across features.
//
// UserIDs are opaque strings minted by the credential provider, so the type
// only enforces non-emptiness. ClassIDs are minted by this service as UUIDs
// and are validated as such at trust boundaries.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "github.com/ahmadsobohhh/UnityPlatform/pkg/domain-errors"
)

// UserID is the credential provider's account identifier.
type UserID string

// ClassID identifies a classroom.
type ClassID string

func (u UserID) String() string  { return string(u) }
func (c ClassID) String() string { return string(c) }

// NewClassID mints a fresh classroom identifier.
func NewClassID() ClassID {
	return ClassID(uuid.NewString())
}

// ParseUserID validates an externally supplied user id.
// Provider uids are opaque, so the only invariant is non-emptiness.
func ParseUserID(raw string) (UserID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user id cannot be empty")
	}
	return UserID(raw), nil
}

// ParseClassID validates an externally supplied class id.
func ParseClassID(raw string) (ClassID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "class id cannot be empty")
	}
	if _, err := uuid.Parse(raw); err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "class id is not a valid UUID")
	}
	return ClassID(raw), nil
}
