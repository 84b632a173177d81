package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	clientapi "github.com/jvegav/EcoTrade/internal/client/api"
	"github.com/jvegav/EcoTrade/internal/client/provider"

	"github.com/jvegav/EcoTrade/internal/api/dto"
	"github.com/jvegav/EcoTrade/internal/auth"
	"github.com/jvegav/EcoTrade/internal/client/credstore"
	"github.com/jvegav/EcoTrade/internal/config"
	"github.com/jvegav/EcoTrade/internal/domain"
	apperrors "github.com/jvegav/EcoTrade/pkg/util"
)

type fakeBackend struct {
	users          map[string]*domain.User
	created        []dto.RegisterRequest
	delegatedReg   []dto.DelegatedRegisterRequest
	delegatedLog   []string
	passthroughErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{users: map[string]*domain.User{}}
}

func (f *fakeBackend) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, apperrors.NewNotFound("user", nil)
	}
	return user, nil
}

func (f *fakeBackend) CreateUser(_ context.Context, req dto.RegisterRequest) (*domain.User, error) {
	f.created = append(f.created, req)
	hash, err := auth.HashPassword(req.Password, 4)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:           int64(len(f.created)),
		Name:         req.Name,
		Email:        req.Email,
		Nationality:  req.Nationality,
		PasswordHash: hash,
	}
	f.users[req.Email] = user
	return user, nil
}

func (f *fakeBackend) DelegatedRegister(_ context.Context, req dto.DelegatedRegisterRequest) (*clientapi.AuthResult, error) {
	f.delegatedReg = append(f.delegatedReg, req)
	if f.passthroughErr != nil {
		return nil, f.passthroughErr
	}
	return &clientapi.AuthResult{Success: true}, nil
}

func (f *fakeBackend) DelegatedLogin(_ context.Context, email string) (*clientapi.AuthResult, error) {
	f.delegatedLog = append(f.delegatedLog, email)
	if f.passthroughErr != nil {
		return nil, f.passthroughErr
	}
	return &clientapi.AuthResult{Success: true}, nil
}

type fakeProvider struct {
	session *provider.Session
	err     error
	signUps []map[string]any
}

func (f *fakeProvider) SignInWithPassword(context.Context, string, string) (*provider.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeProvider) SignUp(_ context.Context, _, _ string, metadata map[string]any) (*provider.Session, error) {
	f.signUps = append(f.signUps, metadata)
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeProvider) CurrentSession(context.Context) (*provider.Session, error) {
	return f.session, nil
}

func newTestStore(t *testing.T) *credstore.Store {
	t.Helper()
	return credstore.New(filepath.Join(t.TempDir(), "session.json"), zap.NewNop())
}

func seedUser(t *testing.T, backend *fakeBackend, email, password string) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, 4)
	require.NoError(t, err)
	user := &domain.User{ID: 7, Name: "Marie", Email: email, PasswordHash: hash}
	backend.users[email] = user
	return user
}

func TestDirectLoginSucceedsWithMatchingPassword(t *testing.T) {
	backend := newFakeBackend()
	seedUser(t, backend, "marie@example.com", "password123")
	store := newTestStore(t)
	c := NewController(config.ModeDirect, backend, nil, store, zap.NewNop())

	var announced *domain.Identity
	c.OnSuccess(func(id domain.Identity) { announced = &id })

	identity, err := c.Login(context.Background(), "marie@example.com", "password123")

	require.NoError(t, err)
	assert.Equal(t, "Marie", identity.DisplayName)
	require.NotNil(t, identity.InternalID)
	assert.Equal(t, int64(7), *identity.InternalID)
	require.NotNil(t, announced)
	assert.Equal(t, "marie@example.com", announced.Email)

	record := store.Current()
	require.NotNil(t, record)
	assert.Equal(t, "marie@example.com", record.Identity.Email)
}

func TestDirectLoginWrongPassword(t *testing.T) {
	backend := newFakeBackend()
	seedUser(t, backend, "marie@example.com", "password123")
	store := newTestStore(t)
	c := NewController(config.ModeDirect, backend, nil, store, zap.NewNop())

	fired := false
	c.OnSuccess(func(domain.Identity) { fired = true })

	_, err := c.Login(context.Background(), "marie@example.com", "wrongpassword")

	assert.ErrorIs(t, err, ErrIncorrectPassword)
	assert.EqualError(t, err, "incorrect password")
	assert.False(t, fired)
	assert.Nil(t, store.Current())
}

func TestDirectLoginUnknownUser(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(t)
	c := NewController(config.ModeDirect, backend, nil, store, zap.NewNop())

	_, err := c.Login(context.Background(), "ghost@example.com", "whatever")

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NotEqual(t, ErrIncorrectPassword.Error(), err.Error())
}

func TestDirectRegisterCommitsIdentity(t *testing.T) {
	backend := newFakeBackend()
	path := filepath.Join(t.TempDir(), "session.json")
	store := credstore.New(path, zap.NewNop())
	c := NewController(config.ModeDirect, backend, nil, store, zap.NewNop())

	identity, err := c.Register(context.Background(), RegisterForm{
		Name:        "Marie",
		Email:       "marie@example.com",
		Password:    "password123",
		Nationality: "FR",
	})

	require.NoError(t, err)
	assert.Equal(t, "Marie", identity.DisplayName)
	require.Len(t, backend.created, 1)
	assert.Equal(t, "marie@example.com", backend.created[0].Email)

	// The persisted record survives a fresh load from disk.
	reloaded := credstore.New(path, zap.NewNop())
	require.NoError(t, reloaded.Load())
	record := reloaded.Current()
	require.NotNil(t, record)
	assert.Equal(t, "Marie", record.Identity.DisplayName)
	assert.Equal(t, "marie@example.com", record.Identity.Email)
}

func TestDelegatedLoginSurfacesProviderMessageVerbatim(t *testing.T) {
	prov := &fakeProvider{err: &provider.Error{Status: 400, Message: "Invalid login credentials"}}
	store := newTestStore(t)
	c := NewController(config.ModeDelegated, newFakeBackend(), prov, store, zap.NewNop())

	_, err := c.Login(context.Background(), "marie@example.com", "password123")

	assert.EqualError(t, err, "Invalid login credentials")
	assert.Nil(t, store.Current())
}

func TestDelegatedLoginCommitsCredential(t *testing.T) {
	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	prov := &fakeProvider{session: &provider.Session{
		AccessToken: "token-abc",
		TokenType:   "bearer",
		ExpiresAt:   expires,
		User: provider.User{
			ID:           "ext-1",
			Email:        "marie@example.com",
			UserMetadata: map[string]any{"name": "Marie"},
		},
	}}
	backend := newFakeBackend()
	store := newTestStore(t)
	c := NewController(config.ModeDelegated, backend, prov, store, zap.NewNop())

	identity, err := c.Login(context.Background(), "marie@example.com", "password123")

	require.NoError(t, err)
	assert.Equal(t, "Marie", identity.DisplayName)
	require.NotNil(t, identity.ExternalID)
	assert.Equal(t, "ext-1", *identity.ExternalID)

	record := store.Current()
	require.NotNil(t, record)
	require.NotNil(t, record.Credential)
	assert.Equal(t, "token-abc", record.Credential.AccessToken)
	assert.Equal(t, []string{"marie@example.com"}, backend.delegatedLog)
}

func TestDelegatedLoginSurvivesPassthroughFailure(t *testing.T) {
	prov := &fakeProvider{session: &provider.Session{
		AccessToken: "token-abc",
		User:        provider.User{ID: "ext-1", Email: "marie@example.com"},
	}}
	backend := newFakeBackend()
	backend.passthroughErr = errors.New("backend unreachable")
	store := newTestStore(t)
	c := NewController(config.ModeDelegated, backend, prov, store, zap.NewNop())

	identity, err := c.Login(context.Background(), "marie@example.com", "password123")

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultDisplayName, identity.DisplayName)
	assert.NotNil(t, store.Current())
}

func TestDelegatedRegisterPassesDisplayNameInMetadata(t *testing.T) {
	prov := &fakeProvider{session: &provider.Session{
		AccessToken: "token-abc",
		User: provider.User{
			ID:           "ext-2",
			Email:        "paul@example.com",
			UserMetadata: map[string]any{"name": "Paul"},
		},
	}}
	backend := newFakeBackend()
	store := newTestStore(t)
	c := NewController(config.ModeDelegated, backend, prov, store, zap.NewNop())

	_, err := c.Register(context.Background(), RegisterForm{
		Name:        "Paul",
		Email:       "paul@example.com",
		Password:    "password123",
		Nationality: "BE",
	})

	require.NoError(t, err)
	require.Len(t, prov.signUps, 1)
	assert.Equal(t, "Paul", prov.signUps[0]["name"])
	require.Len(t, backend.delegatedReg, 1)
	assert.Equal(t, "ext-2", backend.delegatedReg[0].ExternalID)
}

func TestLogoutClearsStore(t *testing.T) {
	backend := newFakeBackend()
	seedUser(t, backend, "marie@example.com", "password123")
	store := newTestStore(t)
	c := NewController(config.ModeDirect, backend, nil, store, zap.NewNop())

	_, err := c.Login(context.Background(), "marie@example.com", "password123")
	require.NoError(t, err)
	require.NotNil(t, store.Current())

	require.NoError(t, c.Logout())
	assert.Nil(t, store.Current())
}
