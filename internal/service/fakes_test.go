package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/asset_management/internal/database"
	"github.com/locvowork/asset_management/internal/domain"
)

var errStoreDown = errors.New("connection refused")

var fastReads = ReadRetry{MaxRetries: 2, InitialInterval: time.Millisecond}

// faultyAssets wraps the memory store with injectable failures.
type faultyAssets struct {
	*database.MemoryAssetStore

	findFailures   int32 // remaining FindByID calls that fail
	updateCalls    int32
	updateErr      error
	failUpdatesFor map[string]bool
	beforeUpdate   func()
}

func (f *faultyAssets) FindByID(ctx context.Context, kind domain.AssetKind, id string) (*domain.Asset, error) {
	if atomic.AddInt32(&f.findFailures, -1) >= 0 {
		return nil, errStoreDown
	}
	return f.MemoryAssetStore.FindByID(ctx, kind, id)
}

func (f *faultyAssets) UpdateConditional(ctx context.Context, kind domain.AssetKind, id, expectedOwner string, patch domain.AssetPatch) (*domain.Asset, error) {
	atomic.AddInt32(&f.updateCalls, 1)
	if f.beforeUpdate != nil {
		hook := f.beforeUpdate
		f.beforeUpdate = nil
		hook()
	}
	if f.updateErr != nil || f.failUpdatesFor[id] {
		return nil, errors.Wrap(errStoreDown, "update")
	}
	return f.MemoryAssetStore.UpdateConditional(ctx, kind, id, expectedOwner, patch)
}

type recordingIndexer struct {
	mu      sync.Mutex
	indexed []domain.Asset
	err     error
}

func (r *recordingIndexer) IndexAsset(_ context.Context, a domain.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexed = append(r.indexed, a)
	return r.err
}

// AssetsOwnedBy replays the recorded writes; the last write per asset wins.
func (r *recordingIndexer) AssetsOwnedBy(_ context.Context, employeeID string) ([]domain.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	latest := make(map[string]domain.Asset)
	for _, a := range r.indexed {
		latest[indexRef(a.Kind, a.ID)] = a
	}
	var owned []domain.Asset
	for _, a := range latest {
		if a.AssignedTo == employeeID {
			owned = append(owned, a)
		}
	}
	return owned, nil
}

type fixture struct {
	assets    *faultyAssets
	employees *database.MemoryEmployeeStore
	indexer   *recordingIndexer
	coord     *AssignmentService
	sweep     *ReconcileService
	guard     *DeletionGuard
	hr        *EmployeeService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		assets:    &faultyAssets{MemoryAssetStore: database.NewMemoryAssetStore()},
		employees: database.NewMemoryEmployeeStore(),
		indexer:   &recordingIndexer{},
	}
	f.coord = NewAssignmentService(f.assets, f.employees, f.indexer, fastReads)
	f.sweep = NewReconcileService(f.assets, fastReads, 3)
	f.guard = NewDeletionGuard(f.assets, f.employees, fastReads)
	f.hr = NewEmployeeService(f.employees, f.guard, fastReads)

	for _, e := range []domain.Employee{
		{ID: "alice", Name: "Alice", EmployeeID: "E-1", Email: "alice@corp.io", Status: domain.EmployeeActive},
		{ID: "bob", Name: "Bob", EmployeeID: "E-2", Email: "bob@corp.io", Status: domain.EmployeeActive, Manager: "alice"},
		{ID: "carol", Name: "Carol", EmployeeID: "E-3", Email: "carol@corp.io", Status: domain.EmployeeActive},
	} {
		e := e
		require.NoError(t, f.employees.Save(ctx, &e))
	}
	for _, a := range []domain.Asset{
		{ID: "dev-1", Kind: domain.KindDevice, Name: "ThinkPad", Status: domain.StatusAvailable},
		{ID: "dev-2", Kind: domain.KindDevice, Name: "MacBook", Status: domain.StatusAvailable},
		{ID: "cmp-1", Kind: domain.KindComponent, Name: "RAM", Status: domain.StatusAvailable},
		{ID: "acc-1", Kind: domain.KindAccount, Name: "GitHub", Status: domain.StatusExpired, AssignmentStatus: domain.AssignmentAvailable},
	} {
		a := a
		require.NoError(t, f.assets.Save(ctx, &a))
	}
	return f
}

func (f *fixture) asset(t *testing.T, kind domain.AssetKind, id string) *domain.Asset {
	t.Helper()
	a, err := f.assets.MemoryAssetStore.FindByID(context.Background(), kind, id)
	require.NoError(t, err)
	return a
}

// drift writes the owner reference directly, the way the generic update
// path does.
func (f *fixture) drift(t *testing.T, kind domain.AssetKind, id, owner string) {
	t.Helper()
	a := f.asset(t, kind, id)
	a.AssignedTo = owner
	require.NoError(t, f.assets.Save(context.Background(), a))
}
