// Package service orchestrates login and registration across the credential
// provider, the username directory, and the profile store.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ahmadsobohhh/UnityPlatform/internal/identity/device"
	"github.com/ahmadsobohhh/UnityPlatform/internal/identity/directory"
	"github.com/ahmadsobohhh/UnityPlatform/internal/identity/metrics"
	"github.com/ahmadsobohhh/UnityPlatform/internal/identity/models"
	"github.com/ahmadsobohhh/UnityPlatform/internal/identity/provider"
	id "github.com/ahmadsobohhh/UnityPlatform/pkg/domain"
	dErrors "github.com/ahmadsobohhh/UnityPlatform/pkg/domain-errors"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/email"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/platform/audit"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/platform/sentinel"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/requestcontext"
)

type DirectoryStore interface {
	Lookup(ctx context.Context, username string) (models.UsernameEntry, error)
	Reserve(ctx context.Context, username string, entry models.UsernameEntry) error
}

type ProfileStore interface {
	Save(ctx context.Context, profile models.UserProfile) error
	FindByUID(ctx context.Context, uid id.UserID) (models.UserProfile, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Destination tells the client which surface to load after login.
type Destination string

const (
	DestinationTeacher Destination = "teacher"
	DestinationStudent Destination = "student"
)

// Service orchestrates identity flows.
type Service struct {
	directory      DirectoryStore
	profiles       ProfileStore
	credentials    provider.CredentialProvider
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(dir DirectoryStore, profiles ProfileStore, credentials provider.CredentialProvider, opts ...Option) *Service {
	s := &Service{
		directory:   dir,
		profiles:    profiles,
		credentials: credentials,
		logger:      slog.Default(),
		tracer:      otel.Tracer("identity"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult is the authenticated session plus the routing decision.
type LoginResult struct {
	UID         id.UserID
	Email       string
	Username    string
	Role        models.Role
	Destination Destination
	Token       string
}

// Login authenticates by username or email. Identifiers containing "@" are
// treated as emails; anything else resolves through the username directory
// first.
func (s *Service) Login(ctx context.Context, identifier, password string) (LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Login")
	defer span.End()
	start := time.Now()

	result, err := s.login(ctx, identifier, password)
	s.observeLogin(start)
	if err != nil {
		span.RecordError(err)
		s.incrementLogin("failure")
		s.logAudit(ctx, audit.Event{
			Action: audit.ActionLoginFailed,
			Reason: dErrors.Message(err),
		})
		return LoginResult{}, err
	}

	s.incrementLogin("success")
	s.logAudit(ctx, audit.Event{
		Action: audit.ActionLoginSucceeded,
		UserID: result.UID,
		Role:   string(result.Role),
	})
	return result, nil
}

func (s *Service) login(ctx context.Context, identifier, password string) (LoginResult, error) {
	input := strings.TrimSpace(identifier)

	loginEmail := input
	var directoryUID id.UserID
	if !strings.Contains(input, "@") {
		entry, err := s.directory.Lookup(ctx, input)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return LoginResult{}, dErrors.New(dErrors.CodeNotFound, "Username not found.")
			}
			return LoginResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "Network or permissions error.")
		}
		loginEmail = entry.Email
		directoryUID = entry.UID
	}

	session, err := s.credentials.SignIn(ctx, loginEmail, password)
	if err != nil {
		return LoginResult{}, s.mapSignInError(err)
	}

	// The directory's uid wins when both are known. A mismatch means the
	// directory entry and the credential account diverged; log it and carry on
	// with the directory's answer.
	uid := session.UID
	if directoryUID != "" {
		if uid != "" && uid != directoryUID {
			s.logger.WarnContext(ctx, "directory uid disagrees with credential provider",
				"directory_uid", directoryUID,
				"provider_uid", uid,
			)
		}
		uid = directoryUID
	}

	profile, err := s.profiles.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "authenticated account has no profile document",
				"uid", uid,
			)
			return LoginResult{}, dErrors.Wrap(err, dErrors.CodeNotFound, "Login Failed!")
		}
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "Network or permissions error.")
	}

	return LoginResult{
		UID:         uid,
		Email:       session.Email,
		Username:    profile.Username,
		Role:        profile.Role,
		Destination: destinationFor(profile.Role),
		Token:       session.Token,
	}, nil
}

// destinationFor routes teachers to the teacher surface and everyone else,
// including accounts with missing or unrecognized roles, to the student one.
func destinationFor(role models.Role) Destination {
	if role == models.RoleTeacher {
		return DestinationTeacher
	}
	return DestinationStudent
}

func (s *Service) mapSignInError(err error) error {
	switch provider.CodeOf(err) {
	case provider.CodeMissingEmail:
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "Missing Email")
	case provider.CodeMissingPassword:
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "Missing Password")
	case provider.CodeInvalidEmail:
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "Invalid Email")
	case provider.CodeWrongPassword:
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, "Wrong Password")
	case provider.CodeUserNotFound:
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, "Account does not exist")
	default:
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, "Login Failed!")
	}
}

// RegistrationInput carries the sign-up form. Teachers supply a real email;
// students get a synthetic one derived from the username.
type RegistrationInput struct {
	Username        string
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	Role            models.Role
}

// RegistrationResult is the provisioned account.
type RegistrationResult struct {
	UID      id.UserID
	Username string
	Email    string
	Role     models.Role
}

// Register provisions a credential account, reserves the username, and writes
// the profile document.
func (s *Service) Register(ctx context.Context, input RegistrationInput) (RegistrationResult, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Register")
	defer span.End()
	start := time.Now()

	role := models.RoleStudent
	if input.Role == models.RoleTeacher {
		role = models.RoleTeacher
	}

	result, err := s.register(ctx, input, role)
	s.observeRegister(start)
	if err != nil {
		span.RecordError(err)
		s.incrementRegistration(role, "failure")
		return RegistrationResult{}, err
	}

	s.incrementRegistration(role, "success")
	s.logAudit(ctx, audit.Event{
		Action: audit.ActionUserRegistered,
		UserID: result.UID,
		Role:   string(role),
	})
	return result, nil
}

func (s *Service) register(ctx context.Context, input RegistrationInput, role models.Role) (RegistrationResult, error) {
	username := strings.TrimSpace(input.Username)
	key := directory.NormalizeUsername(username)
	if key == "" {
		return RegistrationResult{}, dErrors.New(dErrors.CodeBadRequest, "Missing Username")
	}
	if role == models.RoleTeacher && strings.TrimSpace(input.Email) == "" {
		return RegistrationResult{}, dErrors.New(dErrors.CodeBadRequest, "Missing Email")
	}
	if input.Password == "" {
		return RegistrationResult{}, dErrors.New(dErrors.CodeBadRequest, "Missing Password")
	}
	if input.Password != input.ConfirmPassword {
		return RegistrationResult{}, dErrors.New(dErrors.CodeBadRequest, "Passwords do not match")
	}

	// Advisory uniqueness check before provisioning anything. The reservation
	// below is the authoritative one.
	if _, err := s.directory.Lookup(ctx, key); err == nil {
		return RegistrationResult{}, dErrors.New(dErrors.CodeConflict, "Username already taken")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return RegistrationResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "Network or permissions error.")
	}

	accountEmail := strings.TrimSpace(input.Email)
	if role != models.RoleTeacher {
		accountEmail = models.SyntheticEmail(key)
	}

	account, err := s.credentials.CreateUser(ctx, accountEmail, input.Password)
	if err != nil {
		return RegistrationResult{}, s.mapCreateUserError(err)
	}

	// Cosmetic only. The account exists either way.
	if err := s.credentials.UpdateDisplayName(ctx, account.UID, username); err != nil {
		s.logger.WarnContext(ctx, "failed to set display name",
			"uid", account.UID,
			"error", err,
		)
	}

	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if role == models.RoleTeacher && firstName == "" && lastName == "" {
		// Teachers registering without names get a best-effort split of their
		// email's local part so rosters show something readable.
		firstName, lastName = email.DeriveNameFromEmail(account.Email)
	}

	profile := models.UserProfile{
		UID:       account.UID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Email:     account.Email,
		Role:      role,
	}
	entry := models.UsernameEntry{UID: account.UID, Email: account.Email, Role: role}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.profiles.Save(gctx, profile)
	})
	g.Go(func() error {
		return s.directory.Reserve(gctx, key, entry)
	})
	if err := g.Wait(); err != nil {
		// The credential account is already provisioned and a sibling write may
		// have landed. There is no rollback; the login path tolerates the
		// partial state and the next attempt surfaces the conflict.
		s.logger.ErrorContext(ctx, "registration writes failed after provisioning",
			"uid", account.UID,
			"error", err,
		)
		if errors.Is(err, sentinel.ErrConflict) {
			return RegistrationResult{}, dErrors.Wrap(err, dErrors.CodeConflict, "Username already taken")
		}
		return RegistrationResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "Register failed")
	}

	return RegistrationResult{
		UID:      account.UID,
		Username: username,
		Email:    account.Email,
		Role:     role,
	}, nil
}

// mapCreateUserError keeps the historical client behavior: known codes map to
// fixed messages, unknown provider codes surface as the raw code string, and
// anything else falls back to "Register failed".
func (s *Service) mapCreateUserError(err error) error {
	if !provider.IsProviderError(err) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "Register failed")
	}
	switch code := provider.CodeOf(err); code {
	case provider.CodeMissingEmail:
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "Missing Email")
	case provider.CodeMissingPassword:
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "Missing Password")
	case provider.CodeInvalidEmail:
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "Invalid Email")
	case provider.CodeWeakPassword:
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "Weak Password")
	case provider.CodeEmailAlreadyInUse:
		return dErrors.Wrap(err, dErrors.CodeConflict, "Email already in use")
	default:
		return dErrors.Wrap(err, dErrors.CodeBadRequest, string(code))
	}
}

// Profile returns the profile document for an authenticated user.
func (s *Service) Profile(ctx context.Context, uid id.UserID) (models.UserProfile, error) {
	profile, err := s.profiles.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.UserProfile{}, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return models.UserProfile{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "Network or permissions error.")
	}
	return profile, nil
}

func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	event.Timestamp = requestcontext.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	event.Device = device.Describe(requestcontext.UserAgent(ctx))
	event.ClientIP = requestcontext.ClientIP(ctx)
	s.logger.InfoContext(ctx, string(event.Action),
		"event", event.Action,
		"user_id", event.UserID,
		"log_type", "audit",
	)
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, event)
}

func (s *Service) incrementLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementLogin(outcome)
	}
}

func (s *Service) incrementRegistration(role models.Role, outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementRegistration(string(role), outcome)
	}
}

func (s *Service) observeLogin(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveLogin(start)
	}
}

func (s *Service) observeRegister(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveRegister(start)
	}
}
