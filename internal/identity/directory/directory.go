// Package directory maps normalized username keys to account identity. It is
// the uniqueness domain for usernames: one entry per key, reserved once,
// never overwritten.
package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/ahmadsobohhh/UnityPlatform/internal/docstore"
	"github.com/ahmadsobohhh/UnityPlatform/internal/identity/models"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/platform/sentinel"
)

// Collection is the directory's document collection.
const Collection = "usernames"

// NormalizeUsername produces the directory key: trimmed and lower-cased.
// Whitespace-only input normalizes to the empty string, which is never a
// valid key.
func NormalizeUsername(username string) string {
	key := strings.TrimSpace(username)
	if key == "" {
		return ""
	}
	return strings.ToLower(key)
}

// Directory reads and reserves username entries.
type Directory struct {
	store docstore.Store
}

func New(store docstore.Store) *Directory {
	return &Directory{store: store}
}

// Lookup resolves a raw username to its entry. Empty keys report
// sentinel.ErrNotFound without touching the store.
func (d *Directory) Lookup(ctx context.Context, username string) (models.UsernameEntry, error) {
	key := NormalizeUsername(username)
	if key == "" {
		return models.UsernameEntry{}, sentinel.ErrNotFound
	}

	var entry models.UsernameEntry
	if err := d.store.Get(ctx, Collection, key, &entry); err != nil {
		return models.UsernameEntry{}, err
	}
	return entry, nil
}

// Reserve claims a key for an account. The store's conditional create makes
// this safe under concurrent registrations: exactly one writer wins, the rest
// see sentinel.ErrConflict. Re-registration under an existing key fails, it
// never overwrites.
func (d *Directory) Reserve(ctx context.Context, username string, entry models.UsernameEntry) error {
	key := NormalizeUsername(username)
	if key == "" {
		return fmt.Errorf("empty username key: %w", sentinel.ErrConflict)
	}
	return d.store.Create(ctx, Collection, key, entry)
}
