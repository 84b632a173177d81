package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jvegav/EcoTrade/internal/auth"
	"github.com/jvegav/EcoTrade/internal/config"
	"github.com/jvegav/EcoTrade/internal/domain"
	"github.com/jvegav/EcoTrade/internal/events"
	"github.com/jvegav/EcoTrade/internal/repository"
	apperrors "github.com/jvegav/EcoTrade/pkg/util"
)

// UserService coordinates user workflows for both registration modes.
type UserService struct {
	users      repository.UserRepository
	cache      *EmailExistsCache
	dispatcher events.Dispatcher
	bcryptCost int
}

// UserDependencies bundles requirements for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Cache      *EmailExistsCache
	Dispatcher events.Dispatcher
}

// RegisterInput is the direct-mode registration payload.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	Nationality string
}

// DelegatedRegisterInput syncs a provider-registered account into the user table.
type DelegatedRegisterInput struct {
	Name        string
	Email       string
	Nationality string
	ExternalID  string
}

// NewUserService builds the service.
func NewUserService(cfg config.Config, deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account from a direct-mode registration. The
// plaintext password is hashed here and never stored.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Name == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("name, email and password are required", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		Nationality:  strings.TrimSpace(input.Nationality),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.EventUserCreated, events.UserEventPayload{UserID: user.ID, Email: user.Email})
	return user, nil
}

// SyncDelegated makes sure a provider-authenticated account has a backing user
// record. Existing accounts are returned as-is; new ones are created without a
// password hash, identity alone never authorizes in this mode.
func (s *UserService) SyncDelegated(ctx context.Context, input DelegatedRegisterInput) (*domain.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, false, apperrors.NewValidationError("email is required", nil)
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if err != pgx.ErrNoRows {
		return nil, false, err
	}

	user := &domain.User{
		Name:        strings.TrimSpace(input.Name),
		Email:       email,
		Nationality: strings.TrimSpace(input.Nationality),
	}
	if input.ExternalID != "" {
		ext := input.ExternalID
		user.ExternalID = &ext
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, err
	}
	s.publishEvent(ctx, events.EventUserCreated, events.UserEventPayload{UserID: user.ID, Email: user.Email})
	return user, true, nil
}

// GetByID fetches one user by internal id.
func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err == pgx.ErrNoRows {
		return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	return user, err
}

// GetByEmail resolves an email address to its user record.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err == pgx.ErrNoRows {
		return nil, apperrors.NewNotFound("user", map[string]any{"email": email})
	}
	return user, err
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Update modifies name and nationality of an existing user.
func (s *UserService) Update(ctx context.Context, id int64, name, nationality string) (*domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		user.Name = strings.TrimSpace(name)
	}
	if nationality != "" {
		user.Nationality = strings.TrimSpace(nationality)
	}
	if err := s.users.Update(ctx, user); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}
	return user, nil
}

// Delete removes a user and cascades to its products.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return err
	}
	s.publishEvent(ctx, events.EventUserDeleted, events.UserEventPayload{UserID: user.ID, Email: user.Email})
	return nil
}

// ExistsByEmail answers the availability check, consulting the cache first.
func (s *UserService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if exists, ok := s.cache.Get(ctx, email); ok {
		return exists, nil
	}
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	s.cache.Set(ctx, email, exists)
	return exists, nil
}

func (s *UserService) publishEvent(ctx context.Context, eventType events.EventType, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
