// Package profiles persists user profile documents keyed by provider uid.
package profiles

import (
	"context"

	"github.com/ahmadsobohhh/UnityPlatform/internal/docstore"
	"github.com/ahmadsobohhh/UnityPlatform/internal/identity/models"
	id "github.com/ahmadsobohhh/UnityPlatform/pkg/domain"
)

// Collection is the profile document collection.
const Collection = "users"

// Store reads and writes profile documents.
type Store struct {
	store docstore.Store
}

func New(store docstore.Store) *Store {
	return &Store{store: store}
}

// Save writes a full profile document, replacing any existing one.
func (s *Store) Save(ctx context.Context, profile models.UserProfile) error {
	return s.store.Set(ctx, Collection, string(profile.UID), profile)
}

// FindByUID loads the profile for a uid. Returns sentinel.ErrNotFound when
// the account has no profile document.
func (s *Store) FindByUID(ctx context.Context, uid id.UserID) (models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.store.Get(ctx, Collection, string(uid), &profile); err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}
