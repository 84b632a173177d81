// Package session orchestrates login and registration against the two
// authentication backends and owns the committed identity.
package session

import (
	"context"

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

// Fixed direct-mode failure messages. The two classes are deliberately kept
// apart: a failed password check must never read like a missing account.
var (
	ErrIncorrectPassword = apperrors.NewCredentialMismatch("incorrect password")
	ErrUserNotFound      = apperrors.NewNotFound("user", map[string]any{
		"reason": "user not found or invalid credentials",
	})
)

// Backend is the slice of the API client the controller uses.
type Backend interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, req dto.RegisterRequest) (*domain.User, error)
	DelegatedRegister(ctx context.Context, req dto.DelegatedRegisterRequest) (*clientapi.AuthResult, error)
	DelegatedLogin(ctx context.Context, email string) (*clientapi.AuthResult, error)
}

// RegisterForm is the collected registration input.
type RegisterForm struct {
	Name        string
	Email       string
	Password    string
	Nationality string
}

// Controller drives the session lifecycle. The operating mode is fixed at
// construction; it is configuration, not a runtime branch users can select.
type Controller struct {
	mode      config.SessionMode
	backend   Backend
	provider  provider.Provider
	store     *credstore.Store
	logger    *zap.Logger
	onSuccess func(domain.Identity)
}

// NewController builds a controller for the configured mode.
func NewController(mode config.SessionMode, backend Backend, authProvider provider.Provider, store *credstore.Store, logger *zap.Logger) *Controller {
	return &Controller{
		mode:     mode,
		backend:  backend,
		provider: authProvider,
		store:    store,
		logger:   logger,
	}
}

// OnSuccess registers the callback the UI uses to leave the login view.
func (c *Controller) OnSuccess(fn func(domain.Identity)) {
	c.onSuccess = fn
}

// Login authenticates and commits the resulting identity.
func (c *Controller) Login(ctx context.Context, email, password string) (domain.Identity, error) {
	if c.mode == config.ModeDirect {
		return c.loginDirect(ctx, email, password)
	}
	return c.loginDelegated(ctx, email, password)
}

// Register creates an account and commits the resulting identity.
func (c *Controller) Register(ctx context.Context, form RegisterForm) (domain.Identity, error) {
	if c.mode == config.ModeDirect {
		return c.registerDirect(ctx, form)
	}
	return c.registerDelegated(ctx, form)
}

// Logout clears the persisted identity. The next startup begins signed out.
func (c *Controller) Logout() error {
	return c.store.Clear()
}

func (c *Controller) loginDirect(ctx context.Context, email, password string) (domain.Identity, error) {
	user, err := c.backend.GetUserByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return domain.Identity{}, ErrUserNotFound
		}
		return domain.Identity{}, err
	}

	if auth.ComparePassword(user.PasswordHash, password) != nil {
		return domain.Identity{}, ErrIncorrectPassword
	}

	identity := domain.NewIdentityFromUser(user)
	return identity, c.commit(identity, nil)
}

func (c *Controller) registerDirect(ctx context.Context, form RegisterForm) (domain.Identity, error) {
	user, err := c.backend.CreateUser(ctx, dto.RegisterRequest{
		Name:        form.Name,
		Email:       form.Email,
		Password:    form.Password,
		Nationality: form.Nationality,
	})
	if err != nil {
		return domain.Identity{}, err
	}

	identity := domain.NewIdentityFromUser(user)
	return identity, c.commit(identity, nil)
}

func (c *Controller) loginDelegated(ctx context.Context, email, password string) (domain.Identity, error) {
	sess, err := c.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		// The provider's own message reaches the user verbatim.
		return domain.Identity{}, err
	}

	identity := domain.NewIdentityFromProvider(sess.User.ID, sess.User.Email, sess.User.UserMetadata)
	if err := c.commit(identity, credentialFromSession(sess)); err != nil {
		return domain.Identity{}, err
	}

	// Best-effort record sync; the session is already established.
	if _, err := c.backend.DelegatedLogin(ctx, sess.User.Email); err != nil {
		c.logger.Warn("delegated login passthrough failed", zap.Error(err))
	}
	return identity, nil
}

func (c *Controller) registerDelegated(ctx context.Context, form RegisterForm) (domain.Identity, error) {
	metadata := map[string]any{}
	if form.Name != "" {
		metadata["name"] = form.Name
	}
	sess, err := c.provider.SignUp(ctx, form.Email, form.Password, metadata)
	if err != nil {
		return domain.Identity{}, err
	}

	identity := domain.NewIdentityFromProvider(sess.User.ID, sess.User.Email, sess.User.UserMetadata)
	if err := c.commit(identity, credentialFromSession(sess)); err != nil {
		return domain.Identity{}, err
	}

	externalID := ""
	if identity.ExternalID != nil {
		externalID = *identity.ExternalID
	}
	if _, err := c.backend.DelegatedRegister(ctx, dto.DelegatedRegisterRequest{
		Name:        form.Name,
		Email:       form.Email,
		Nationality: form.Nationality,
		ExternalID:  externalID,
	}); err != nil {
		c.logger.Warn("delegated register passthrough failed", zap.Error(err))
	}
	return identity, nil
}

// commit persists the identity and fires the UI success callback. The store
// write is atomic with respect to the read the UI performs right after.
func (c *Controller) commit(identity domain.Identity, cred *domain.Credential) error {
	if err := c.store.Commit(credstore.Record{Identity: identity, Credential: cred}); err != nil {
		return err
	}
	if c.onSuccess != nil {
		c.onSuccess(identity)
	}
	return nil
}

func credentialFromSession(sess *provider.Session) *domain.Credential {
	return &domain.Credential{
		AccessToken: sess.AccessToken,
		TokenType:   sess.TokenType,
		ExpiresAt:   sess.ExpiresAt,
	}
}
