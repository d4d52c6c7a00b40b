package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ahmadsobohhh/UnityPlatform/internal/docstore/memory"
	"github.com/ahmadsobohhh/UnityPlatform/internal/identity/directory"
	"github.com/ahmadsobohhh/UnityPlatform/internal/identity/models"
	"github.com/ahmadsobohhh/UnityPlatform/internal/identity/profiles"
	"github.com/ahmadsobohhh/UnityPlatform/internal/identity/provider"
	"github.com/ahmadsobohhh/UnityPlatform/internal/identity/provider/mocks"
	dErrors "github.com/ahmadsobohhh/UnityPlatform/pkg/domain-errors"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/platform/audit"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/platform/sentinel"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/requestcontext"
)

type fixture struct {
	dir         *directory.Directory
	profiles    *profiles.Store
	credentials *mocks.MockCredentialProvider
	audit       *audit.MemoryPublisher
	service     *Service
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		dir:         directory.New(memory.New()),
		profiles:    profiles.New(memory.New()),
		credentials: mocks.NewMockCredentialProvider(ctrl),
		audit:       audit.NewMemoryPublisher(),
	}
	f.service = New(f.dir, f.profiles, f.credentials, WithAuditPublisher(f.audit))
	return f
}

func TestLogin_ByEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.profiles.Save(ctx, models.UserProfile{
		UID: "uid-1", Username: "MsFrizzle", Email: "frizzle@example.com", Role: models.RoleTeacher,
	}))
	f.credentials.EXPECT().
		SignIn(gomock.Any(), "frizzle@example.com", "hunter22").
		Return(provider.Session{UID: "uid-1", Email: "frizzle@example.com", Token: "tok"}, nil)

	result, err := f.service.Login(ctx, "frizzle@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, DestinationTeacher, result.Destination)
	assert.Equal(t, "MsFrizzle", result.Username)
	assert.Equal(t, "tok", result.Token)

	events := f.audit.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionLoginSucceeded, events[0].Action)
}

func TestLogin_AuditCarriesClientMetadata(t *testing.T) {
	f := newFixture(t)
	ctx := requestcontext.WithUserAgent(context.Background(),
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	ctx = requestcontext.WithClientIP(ctx, "203.0.113.7")

	require.NoError(t, f.profiles.Save(ctx, models.UserProfile{
		UID: "uid-1", Username: "MsFrizzle", Email: "frizzle@example.com", Role: models.RoleTeacher,
	}))
	f.credentials.EXPECT().
		SignIn(gomock.Any(), "frizzle@example.com", "hunter22").
		Return(provider.Session{UID: "uid-1", Email: "frizzle@example.com", Token: "tok"}, nil)

	_, err := f.service.Login(ctx, "frizzle@example.com", "hunter22")
	require.NoError(t, err)

	events := f.audit.Events()
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Device, "Chrome")
	assert.Equal(t, "203.0.113.7", events[0].ClientIP)
}

func TestLogin_ByUsernameResolvesEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.dir.Reserve(ctx, "ada", models.UsernameEntry{
		UID: "uid-2", Email: "ada@students.example", Role: models.RoleStudent,
	}))
	require.NoError(t, f.profiles.Save(ctx, models.UserProfile{
		UID: "uid-2", Username: "Ada", Email: "ada@students.example", Role: models.RoleStudent,
	}))
	f.credentials.EXPECT().
		SignIn(gomock.Any(), "ada@students.example", "hunter22").
		Return(provider.Session{UID: "uid-2", Email: "ada@students.example", Token: "tok"}, nil)

	result, err := f.service.Login(ctx, "  ADA ", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, DestinationStudent, result.Destination)
	assert.Equal(t, "Ada", result.Username)
}

func TestLogin_UsernameNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Login(context.Background(), "ghost", "pw")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	assert.Equal(t, "Username not found.", dErrors.Message(err))
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)

	f.credentials.EXPECT().
		SignIn(gomock.Any(), "ada@students.example", "nope").
		Return(provider.Session{}, provider.NewError(provider.CodeWrongPassword))

	_, err := f.service.Login(context.Background(), "ada@students.example", "nope")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Equal(t, "Wrong Password", dErrors.Message(err))

	events := f.audit.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionLoginFailed, events[0].Action)
	assert.Equal(t, "Wrong Password", events[0].Reason)
}

func TestLogin_AccountDoesNotExist(t *testing.T) {
	f := newFixture(t)

	f.credentials.EXPECT().
		SignIn(gomock.Any(), "ghost@example.com", "pw").
		Return(provider.Session{}, provider.NewError(provider.CodeUserNotFound))

	_, err := f.service.Login(context.Background(), "ghost@example.com", "pw")
	assert.Equal(t, "Account does not exist", dErrors.Message(err))
}

func TestLogin_UnknownFailureFallsBack(t *testing.T) {
	f := newFixture(t)

	f.credentials.EXPECT().
		SignIn(gomock.Any(), "ada@students.example", "pw").
		Return(provider.Session{}, errors.New("backend melted"))

	_, err := f.service.Login(context.Background(), "ada@students.example", "pw")
	assert.Equal(t, "Login Failed!", dErrors.Message(err))
}

func TestLogin_ProfileMissingFails(t *testing.T) {
	f := newFixture(t)

	f.credentials.EXPECT().
		SignIn(gomock.Any(), "ada@students.example", "pw").
		Return(provider.Session{UID: "uid-9", Email: "ada@students.example", Token: "tok"}, nil)

	_, err := f.service.Login(context.Background(), "ada@students.example", "pw")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestLogin_DirectoryUIDWinsOnMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.dir.Reserve(ctx, "ada", models.UsernameEntry{
		UID: "uid-directory", Email: "ada@students.example", Role: models.RoleStudent,
	}))
	require.NoError(t, f.profiles.Save(ctx, models.UserProfile{
		UID: "uid-directory", Username: "Ada", Email: "ada@students.example", Role: models.RoleStudent,
	}))
	f.credentials.EXPECT().
		SignIn(gomock.Any(), "ada@students.example", "pw").
		Return(provider.Session{UID: "uid-provider", Email: "ada@students.example", Token: "tok"}, nil)

	result, err := f.service.Login(ctx, "ada", "pw")
	require.NoError(t, err)
	assert.Equal(t, "uid-directory", string(result.UID))
}

func TestLogin_UnrecognizedRoleRoutesToStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.profiles.Save(ctx, models.UserProfile{
		UID: "uid-1", Username: "Odd", Email: "odd@example.com", Role: "superintendent",
	}))
	f.credentials.EXPECT().
		SignIn(gomock.Any(), "odd@example.com", "pw").
		Return(provider.Session{UID: "uid-1", Email: "odd@example.com", Token: "tok"}, nil)

	result, err := f.service.Login(ctx, "odd@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, DestinationStudent, result.Destination)
}

func TestRegister_Student(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.credentials.EXPECT().
		CreateUser(gomock.Any(), "ada@students.example", "hunter22").
		Return(provider.Account{UID: "uid-1", Email: "ada@students.example"}, nil)
	f.credentials.EXPECT().
		UpdateDisplayName(gomock.Any(), gomock.Any(), "Ada").
		Return(nil)

	result, err := f.service.Register(ctx, RegistrationInput{
		Username:        "  Ada ",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
		Role:            models.RoleStudent,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", result.Username)
	assert.Equal(t, "ada@students.example", result.Email)

	// Both sides of the paired write landed.
	entry, err := f.dir.Lookup(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, result.UID, entry.UID)

	profile, err := f.profiles.FindByUID(ctx, result.UID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Username)
	assert.Equal(t, models.RoleStudent, profile.Role)

	events := f.audit.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionUserRegistered, events[0].Action)
}

func TestRegister_TeacherUsesProvidedEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.credentials.EXPECT().
		CreateUser(gomock.Any(), "frizzle@example.com", "hunter22").
		Return(provider.Account{UID: "uid-1", Email: "frizzle@example.com"}, nil)
	f.credentials.EXPECT().
		UpdateDisplayName(gomock.Any(), gomock.Any(), "MsFrizzle").
		Return(nil)

	result, err := f.service.Register(ctx, RegistrationInput{
		Username:        "MsFrizzle",
		FirstName:       "Valerie",
		LastName:        "Frizzle",
		Email:           " frizzle@example.com ",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
		Role:            models.RoleTeacher,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, result.Role)

	profile, err := f.profiles.FindByUID(ctx, result.UID)
	require.NoError(t, err)
	assert.Equal(t, "Valerie", profile.FirstName)
	assert.Equal(t, "Frizzle", profile.LastName)
}

func TestRegister_TeacherNamesDerivedFromEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.credentials.EXPECT().
		CreateUser(gomock.Any(), "valerie.frizzle@example.com", "hunter22").
		Return(provider.Account{UID: "uid-1", Email: "valerie.frizzle@example.com"}, nil)
	f.credentials.EXPECT().
		UpdateDisplayName(gomock.Any(), gomock.Any(), "MsFrizzle").
		Return(nil)

	result, err := f.service.Register(ctx, RegistrationInput{
		Username:        "MsFrizzle",
		Email:           "valerie.frizzle@example.com",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
		Role:            models.RoleTeacher,
	})
	require.NoError(t, err)

	profile, err := f.profiles.FindByUID(ctx, result.UID)
	require.NoError(t, err)
	assert.Equal(t, "Valerie", profile.FirstName)
	assert.Equal(t, "Frizzle", profile.LastName)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		input   RegistrationInput
		message string
	}{
		{
			name:    "missing username",
			input:   RegistrationInput{Username: "  ", Password: "pw123456", ConfirmPassword: "pw123456"},
			message: "Missing Username",
		},
		{
			name:    "teacher missing email",
			input:   RegistrationInput{Username: "Ada", Password: "pw123456", ConfirmPassword: "pw123456", Role: models.RoleTeacher},
			message: "Missing Email",
		},
		{
			name:    "missing password",
			input:   RegistrationInput{Username: "Ada"},
			message: "Missing Password",
		},
		{
			name:    "password mismatch",
			input:   RegistrationInput{Username: "Ada", Password: "pw123456", ConfirmPassword: "different"},
			message: "Passwords do not match",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.Register(ctx, tc.input)
			require.Error(t, err)
			assert.Equal(t, tc.message, dErrors.Message(err))
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		})
	}
}

func TestRegister_UsernameTaken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.dir.Reserve(ctx, "ada", models.UsernameEntry{UID: "uid-0"}))

	_, err := f.service.Register(ctx, RegistrationInput{
		Username: "Ada", Password: "pw123456", ConfirmPassword: "pw123456",
	})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, "Username already taken", dErrors.Message(err))
}

func TestRegister_EmailAlreadyInUse(t *testing.T) {
	f := newFixture(t)

	f.credentials.EXPECT().
		CreateUser(gomock.Any(), "ada@students.example", "pw123456").
		Return(provider.Account{}, provider.NewError(provider.CodeEmailAlreadyInUse))

	_, err := f.service.Register(context.Background(), RegistrationInput{
		Username: "Ada", Password: "pw123456", ConfirmPassword: "pw123456",
	})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, "Email already in use", dErrors.Message(err))
}

func TestRegister_UnknownProviderCodeSurfacesRaw(t *testing.T) {
	f := newFixture(t)

	f.credentials.EXPECT().
		CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(provider.Account{}, provider.NewError(provider.ErrorCode("OperationNotAllowed")))

	_, err := f.service.Register(context.Background(), RegistrationInput{
		Username: "Ada", Password: "pw123456", ConfirmPassword: "pw123456",
	})
	assert.Equal(t, "OperationNotAllowed", dErrors.Message(err))
}

func TestRegister_NonProviderErrorFallsBack(t *testing.T) {
	f := newFixture(t)

	f.credentials.EXPECT().
		CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(provider.Account{}, errors.New("backend melted"))

	_, err := f.service.Register(context.Background(), RegistrationInput{
		Username: "Ada", Password: "pw123456", ConfirmPassword: "pw123456",
	})
	assert.Equal(t, "Register failed", dErrors.Message(err))
}

func TestRegister_DisplayNameFailureIsNonFatal(t *testing.T) {
	f := newFixture(t)

	f.credentials.EXPECT().
		CreateUser(gomock.Any(), "ada@students.example", "pw123456").
		Return(provider.Account{UID: "uid-1", Email: "ada@students.example"}, nil)
	f.credentials.EXPECT().
		UpdateDisplayName(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("display name service down"))

	_, err := f.service.Register(context.Background(), RegistrationInput{
		Username: "Ada", Password: "pw123456", ConfirmPassword: "pw123456",
	})
	assert.NoError(t, err)
}

// raceDirectory reports the key free on Lookup but loses the Reserve,
// simulating a concurrent registration landing between the check and the
// reservation.
type raceDirectory struct {
	*directory.Directory
}

func (d *raceDirectory) Lookup(ctx context.Context, username string) (models.UsernameEntry, error) {
	return models.UsernameEntry{}, sentinel.ErrNotFound
}

func TestRegister_ReservationRaceSurfacesConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.dir.Reserve(ctx, "ada", models.UsernameEntry{UID: "uid-0"}))
	svc := New(&raceDirectory{f.dir}, f.profiles, f.credentials)

	f.credentials.EXPECT().
		CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(provider.Account{UID: "uid-1", Email: "ada@students.example"}, nil)
	f.credentials.EXPECT().
		UpdateDisplayName(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)

	_, err := svc.Register(ctx, RegistrationInput{
		Username: "Ada", Password: "pw123456", ConfirmPassword: "pw123456",
	})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, "Username already taken", dErrors.Message(err))

	// The winner's entry is untouched.
	entry, lookupErr := f.dir.Lookup(ctx, "ada")
	require.NoError(t, lookupErr)
	assert.Equal(t, "uid-0", string(entry.UID))
}
