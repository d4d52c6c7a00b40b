// Package docstore defines the generic document store the whole core writes
// through: string-keyed JSON documents grouped into named collections, with
// an equality query supporting ordering and a result limit.
//
// Collections are slash paths mirroring the data layout:
//
//	usernames/{normalizedKey}
//	users/{uid}
//	users/{uid}/classrooms/{classId}
//	users/{uid}/classes/{classId}
//	classes/{classId}
//	classes/{classId}/members/{uid}
//
// Implementations return pkg/platform/sentinel errors for factual states
// (ErrNotFound, ErrConflict); anything else is an infrastructure fault the
// service layer surfaces generically.
package docstore

import "context"

// Query selects documents within one collection. Zero values mean "no
// constraint": an empty Field matches everything, Limit 0 is unlimited.
type Query struct {
	// Field/Equals filter on equality of a top-level document field.
	Field  string
	Equals any

	// OrderBy sorts on a top-level field; Desc flips the direction.
	OrderBy string
	Desc    bool

	// Limit caps the result count.
	Limit int
}

// Store is the only storage dependency of the core.
//
// Values cross the boundary as JSON: Set/Create/Merge marshal their value,
// Get/Query unmarshal into dest (a pointer, or a pointer to a slice for
// Query).
type Store interface {
	// Get loads a document. Returns sentinel.ErrNotFound if absent.
	Get(ctx context.Context, collection, id string, dest any) error

	// Create writes a document only if it does not exist yet, returning
	// sentinel.ErrConflict otherwise. This is the conditional write the
	// uniqueness reservations build on.
	Create(ctx context.Context, collection, id string, value any) error

	// Set writes the full document, replacing any previous content.
	Set(ctx context.Context, collection, id string, value any) error

	// Merge upserts the given top-level fields, leaving absent fields of an
	// existing document untouched.
	Merge(ctx context.Context, collection, id string, fields map[string]any) error

	// Delete removes a document. Deleting an absent document is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Query loads matching documents into dest (pointer to slice).
	Query(ctx context.Context, collection string, q Query, dest any) error
}
