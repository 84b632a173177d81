// Package resolver maps an externally-issued identity onto the backend's
// internal numeric user id.
package resolver

import (
	"context"
	"errors"
	"strings"

	"github.com/jvegav/EcoTrade/internal/domain"
	apperrors "github.com/jvegav/EcoTrade/pkg/util"
)

// ErrNotFound reports that no user matches the email. Callers treat it as
// "cannot resolve" and show a message; it is never fatal.
var ErrNotFound = errors.New("no user for email")

// UserLookup is the single backend operation the resolver depends on.
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Resolver performs the email to internal-id lookup. It holds no state: the
// stored Identity only carries the external shape, so every profile view
// resolves afresh rather than trusting a cached id.
type Resolver struct {
	api UserLookup
}

// New constructs a resolver.
func New(api UserLookup) *Resolver {
	return &Resolver{api: api}
}

// Resolve returns the full user record for the email, including the internal
// id needed for catalog queries.
func (r *Resolver) Resolve(ctx context.Context, email string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrNotFound
	}

	user, err := r.api.GetUserByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}
