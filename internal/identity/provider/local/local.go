// Package local implements the credential provider on top of the document
// store, with bcrypt password hashes and locally signed session tokens.
package local

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ahmadsobohhh/UnityPlatform/internal/docstore"
	"github.com/ahmadsobohhh/UnityPlatform/internal/identity/provider"
	"github.com/ahmadsobohhh/UnityPlatform/internal/identity/tokens"
	id "github.com/ahmadsobohhh/UnityPlatform/pkg/domain"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/platform/sentinel"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/requestcontext"
)

// Collection holds credential accounts keyed by lower-cased email.
const Collection = "accounts"

// MinPasswordLength mirrors the weakest password the backend accepts.
const MinPasswordLength = 6

type account struct {
	UID          id.UserID       `json:"uid"`
	Email        string          `json:"email"`
	DisplayName  string          `json:"displayName,omitempty"`
	PasswordHash string          `json:"passwordHash"`
	CreatedAt    docstore.Millis `json:"createdAt"`
}

// Provider stores accounts in the document store.
type Provider struct {
	store  docstore.Store
	tokens *tokens.Service
	cost   int
}

// New creates a local provider. tokens signs the sessions handed out by
// SignIn.
func New(store docstore.Store, tokenService *tokens.Service) *Provider {
	return &Provider{store: store, tokens: tokenService, cost: bcrypt.DefaultCost}
}

func accountKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (provider.Session, error) {
	key := accountKey(email)
	if key == "" {
		return provider.Session{}, provider.NewError(provider.CodeMissingEmail)
	}
	if password == "" {
		return provider.Session{}, provider.NewError(provider.CodeMissingPassword)
	}

	var acct account
	if err := p.store.Get(ctx, Collection, key, &acct); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return provider.Session{}, provider.WrapError(err, provider.CodeUserNotFound)
		}
		return provider.Session{}, provider.WrapError(err, provider.CodeUnknown)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return provider.Session{}, provider.WrapError(err, provider.CodeWrongPassword)
	}

	token, err := p.tokens.GenerateSessionToken(acct.UID, acct.Email)
	if err != nil {
		return provider.Session{}, provider.WrapError(err, provider.CodeUnknown)
	}

	return provider.Session{UID: acct.UID, Email: acct.Email, Token: token}, nil
}

func (p *Provider) CreateUser(ctx context.Context, email, password string) (provider.Account, error) {
	key := accountKey(email)
	if key == "" {
		return provider.Account{}, provider.NewError(provider.CodeMissingEmail)
	}
	if !strings.Contains(key, "@") || strings.HasPrefix(key, "@") || strings.HasSuffix(key, "@") {
		return provider.Account{}, provider.NewError(provider.CodeInvalidEmail)
	}
	if password == "" {
		return provider.Account{}, provider.NewError(provider.CodeMissingPassword)
	}
	if len(password) < MinPasswordLength {
		return provider.Account{}, provider.NewError(provider.CodeWeakPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return provider.Account{}, provider.WrapError(err, provider.CodeUnknown)
	}

	acct := account{
		UID:          id.UserID(uuid.NewString()),
		Email:        key,
		PasswordHash: string(hash),
		CreatedAt:    docstore.At(requestcontext.Now(ctx)),
	}

	if err := p.store.Create(ctx, Collection, key, acct); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return provider.Account{}, provider.WrapError(err, provider.CodeEmailAlreadyInUse)
		}
		return provider.Account{}, provider.WrapError(err, provider.CodeUnknown)
	}

	return provider.Account{UID: acct.UID, Email: acct.Email}, nil
}

func (p *Provider) UpdateDisplayName(ctx context.Context, uid id.UserID, displayName string) error {
	// Accounts are keyed by email, so find the account by uid first.
	var accts []account
	if err := p.store.Query(ctx, Collection, docstore.Query{Field: "uid", Equals: string(uid), Limit: 1}, &accts); err != nil {
		return provider.WrapError(err, provider.CodeUnknown)
	}
	if len(accts) == 0 {
		return provider.NewError(provider.CodeUserNotFound)
	}

	return p.store.Merge(ctx, Collection, accountKey(accts[0].Email), map[string]any{
		"displayName": displayName,
	})
}
