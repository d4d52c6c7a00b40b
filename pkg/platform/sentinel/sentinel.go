package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers
// return these (optionally wrapped) so services can translate them into domain
// errors with user-facing messages.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: document does not exist in the store
// - ErrConflict: conditional create lost to an existing document
// - ErrExpired: token/session has expired
// - ErrUnavailable: store or downstream dependency temporarily unreachable
// - ErrExhausted: bounded retry budget spent without success
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
	ErrExhausted   = errors.New("exhausted")
)
