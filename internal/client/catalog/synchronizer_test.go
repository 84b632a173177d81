package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jvegav/EcoTrade/internal/domain"
)

type stubLister struct {
	all     []domain.Product
	byOwner map[int64][]domain.Product
	err     error
}

func (s *stubLister) ListProducts(context.Context) ([]domain.Product, error) {
	return s.all, s.err
}

func (s *stubLister) ListProductsByOwner(_ context.Context, ownerID int64) ([]domain.Product, error) {
	return s.byOwner[ownerID], s.err
}

func TestLoadAllInstallsSnapshot(t *testing.T) {
	lister := &stubLister{all: []domain.Product{{ID: 1, Name: "Lampe"}, {ID: 2, Name: "Chaise"}}}
	s := NewSynchronizer(lister, zap.NewNop())

	assert.Equal(t, StateLoading, s.State())

	snapshot := s.LoadAll(context.Background())

	assert.Equal(t, StateLoaded, s.State())
	assert.Equal(t, ScopeAll, snapshot.Scope)
	assert.Len(t, snapshot.Products, 2)
	assert.Equal(t, snapshot, s.Current())
}

func TestEmptyCatalogIsLoadedNotLoading(t *testing.T) {
	s := NewSynchronizer(&stubLister{}, zap.NewNop())

	snapshot := s.LoadAll(context.Background())

	assert.Equal(t, StateLoaded, s.State())
	assert.True(t, snapshot.Empty())
}

func TestFetchFailureDegradesToEmptySnapshot(t *testing.T) {
	lister := &stubLister{err: errors.New("connection refused")}
	s := NewSynchronizer(lister, zap.NewNop())

	snapshot := s.LoadAll(context.Background())

	assert.Equal(t, StateLoaded, s.State())
	assert.True(t, snapshot.Empty())
}

func TestLoadForOwnerScopesSnapshot(t *testing.T) {
	lister := &stubLister{byOwner: map[int64][]domain.Product{
		7: {{ID: 3, Name: "Vélo", OwnerID: 7}},
	}}
	s := NewSynchronizer(lister, zap.NewNop())

	snapshot := s.LoadForOwner(context.Background(), 7)

	assert.Equal(t, ScopeOwner, snapshot.Scope)
	assert.Equal(t, int64(7), snapshot.OwnerID)
	assert.Len(t, snapshot.Products, 1)
}

// gatedLister blocks each call until the test releases it, so response
// ordering can be forced.
type gatedLister struct {
	mu    sync.Mutex
	gates []chan []domain.Product
}

func (g *gatedLister) register() chan []domain.Product {
	g.mu.Lock()
	defer g.mu.Unlock()
	gate := make(chan []domain.Product)
	g.gates = append(g.gates, gate)
	return gate
}

func (g *gatedLister) waitForCalls(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		g.mu.Lock()
		count := len(g.gates)
		g.mu.Unlock()
		if count >= n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected %d calls, saw %d", n, count)
		}
		time.Sleep(time.Millisecond)
	}
}

func (g *gatedLister) release(t *testing.T, i int, products []domain.Product) {
	t.Helper()
	g.mu.Lock()
	gate := g.gates[i]
	g.mu.Unlock()
	gate <- products
}

func (g *gatedLister) ListProducts(context.Context) ([]domain.Product, error) {
	return <-g.register(), nil
}

func (g *gatedLister) ListProductsByOwner(context.Context, int64) ([]domain.Product, error) {
	return <-g.register(), nil
}

func TestLastResponseToArriveWins(t *testing.T) {
	lister := &gatedLister{}
	s := NewSynchronizer(lister, zap.NewNop())

	ownerProducts := []domain.Product{{ID: 3, Name: "Vélo", OwnerID: 7}}
	allProducts := []domain.Product{{ID: 1, Name: "Lampe"}, {ID: 3, Name: "Vélo", OwnerID: 7}}

	ownerDone := make(chan struct{})
	allDone := make(chan struct{})
	go func() {
		defer close(ownerDone)
		s.LoadForOwner(context.Background(), 7)
	}()
	lister.waitForCalls(t, 1)
	go func() {
		defer close(allDone)
		s.LoadAll(context.Background())
	}()
	lister.waitForCalls(t, 2)

	assert.Equal(t, StateLoading, s.State())

	// The full-catalog response arrives first, the owner-scoped one last.
	lister.release(t, 1, allProducts)
	<-allDone
	lister.release(t, 0, ownerProducts)
	<-ownerDone

	final := s.Current()
	require.Equal(t, ScopeOwner, final.Scope)
	assert.Equal(t, ownerProducts, final.Products)
	assert.Equal(t, StateLoaded, s.State())
}
