package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvegav/EcoTrade/internal/domain"
	apperrors "github.com/jvegav/EcoTrade/pkg/util"
)

type stubLookup struct {
	user  *domain.User
	err   error
	calls []string
}

func (s *stubLookup) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.calls = append(s.calls, email)
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func TestResolveReturnsFullRecord(t *testing.T) {
	lookup := &stubLookup{user: &domain.User{ID: 42, Email: "marie@example.com", Name: "Marie"}}
	r := New(lookup)

	user, err := r.Resolve(context.Background(), "marie@example.com")

	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, []string{"marie@example.com"}, lookup.calls)
}

func TestResolveTrimsEmail(t *testing.T) {
	lookup := &stubLookup{user: &domain.User{ID: 1, Email: "marie@example.com"}}
	r := New(lookup)

	_, err := r.Resolve(context.Background(), "  marie@example.com  ")

	require.NoError(t, err)
	assert.Equal(t, []string{"marie@example.com"}, lookup.calls)
}

func TestResolveMapsMissingUserToSentinel(t *testing.T) {
	lookup := &stubLookup{err: apperrors.NewNotFound("user", nil)}
	r := New(lookup)

	_, err := r.Resolve(context.Background(), "ghost@example.com")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveEmptyEmailNeverHitsBackend(t *testing.T) {
	lookup := &stubLookup{}
	r := New(lookup)

	_, err := r.Resolve(context.Background(), "   ")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, lookup.calls)
}

func TestResolvePropagatesOtherErrors(t *testing.T) {
	boom := errors.New("gateway timeout")
	lookup := &stubLookup{err: boom}
	r := New(lookup)

	_, err := r.Resolve(context.Background(), "marie@example.com")

	assert.ErrorIs(t, err, boom)
}
