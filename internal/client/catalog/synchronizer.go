// Package catalog keeps an in-memory product snapshot consistent with server
// state.
package catalog

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/jvegav/EcoTrade/internal/domain"
)

// State is the catalog state visible to the UI.
type State int

const (
	// StateLoading covers both the initial state and any in-flight fetch.
	StateLoading State = iota
	// StateLoaded means the snapshot reflects the last completed fetch.
	// Whether it is empty is a property of the snapshot, not a fourth state.
	StateLoaded
)

// Scope identifies which catalog subset a snapshot holds.
type Scope string

const (
	ScopeAll   Scope = "all"
	ScopeOwner Scope = "owner"
)

// Snapshot is the product list as last fetched, replaced only wholesale.
type Snapshot struct {
	Scope    Scope
	OwnerID  int64
	Products []domain.Product
}

// Empty reports whether the snapshot holds no products.
func (s Snapshot) Empty() bool {
	return len(s.Products) == 0
}

// Lister is the catalog slice of the API client.
type Lister interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListProductsByOwner(ctx context.Context, ownerID int64) ([]domain.Product, error)
}

// Synchronizer exposes the catalog as a single consistent snapshot. Each
// load fully supersedes the previous snapshot. Concurrent loads all run to
// completion and the last response to arrive is the one kept; no request is
// cancelled or de-duplicated. A fetch failure degrades to an empty loaded
// snapshot with a logged diagnostic instead of an error state.
type Synchronizer struct {
	api    Lister
	logger *zap.Logger

	mu       sync.Mutex
	inFlight int
	loaded   bool
	snapshot Snapshot
}

// NewSynchronizer constructs a synchronizer in the loading state.
func NewSynchronizer(api Lister, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{api: api, logger: logger}
}

// LoadAll replaces the snapshot with the full catalog.
func (s *Synchronizer) LoadAll(ctx context.Context) Snapshot {
	s.begin()
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		s.logger.Error("catalog fetch failed", zap.Error(err))
		products = nil
	}
	return s.finish(Snapshot{Scope: ScopeAll, Products: products})
}

// LoadForOwner replaces the snapshot with one owner's catalog.
func (s *Synchronizer) LoadForOwner(ctx context.Context, ownerID int64) Snapshot {
	s.begin()
	products, err := s.api.ListProductsByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("catalog fetch failed", zap.Int64("owner_id", ownerID), zap.Error(err))
		products = nil
	}
	return s.finish(Snapshot{Scope: ScopeOwner, OwnerID: ownerID, Products: products})
}

// State returns the current UI-visible state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight > 0 || !s.loaded {
		return StateLoading
	}
	return StateLoaded
}

// Current returns the last installed snapshot.
func (s *Synchronizer) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// begin enters the loading state synchronously, before any network call.
func (s *Synchronizer) begin() {
	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()
}

func (s *Synchronizer) finish(snapshot Snapshot) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
	s.loaded = true
	s.snapshot = snapshot
	return snapshot
}
