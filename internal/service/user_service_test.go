package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvegav/EcoTrade/internal/auth"
	"github.com/jvegav/EcoTrade/internal/config"
	"github.com/jvegav/EcoTrade/internal/events"
	"github.com/jvegav/EcoTrade/internal/repository"
	apperrors "github.com/jvegav/EcoTrade/pkg/util"
)

func newUserService() (*UserService, events.Dispatcher) {
	cfg := config.Config{}
	cfg.Auth.BcryptCost = 4
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewUserService(cfg, UserDependencies{
		UserRepo:   repository.NewInMemoryUserRepository(),
		Dispatcher: dispatcher,
	})
	return svc, dispatcher
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, _ := newUserService()

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:        "Marie",
		Email:       "Marie@Example.com",
		Password:    "password123",
		Nationality: "FR",
	})

	require.NoError(t, err)
	assert.Equal(t, "marie@example.com", user.Email)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.NoError(t, auth.ComparePassword(user.PasswordHash, "password123"))
	assert.Error(t, auth.ComparePassword(user.PasswordHash, "wrongpassword"))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Marie", Email: "marie@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "Other", Email: "MARIE@example.com", Password: "secret99"})

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

func TestRegisterRequiresMandatoryFields(t *testing.T) {
	svc, _ := newUserService()

	_, err := svc.Register(context.Background(), RegisterInput{Email: "marie@example.com"})

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestSyncDelegatedCreatesOnce(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	input := DelegatedRegisterInput{
		Name:       "Marie",
		Email:      "marie@example.com",
		ExternalID: "ext-1",
	}

	first, created, err := svc.SyncDelegated(ctx, input)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, first.ExternalID)
	assert.Equal(t, "ext-1", *first.ExternalID)
	assert.Empty(t, first.PasswordHash)

	second, created, err := svc.SyncDelegated(ctx, input)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestGetByEmailUnknownIsNotFound(t *testing.T) {
	svc, _ := newUserService()

	_, err := svc.GetByEmail(context.Background(), "ghost@example.com")

	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteRemovesUser(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Marie", Email: "marie@example.com", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, user.ID))

	_, err = svc.GetByID(ctx, user.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestExistsByEmail(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Marie", Email: "marie@example.com", Password: "password123"})
	require.NoError(t, err)

	exists, err := svc.ExistsByEmail(ctx, "marie@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.ExistsByEmail(ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}
