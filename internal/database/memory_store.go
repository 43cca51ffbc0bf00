package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/locvowork/asset_management/internal/domain"
)

// MemoryAssetStore is an in-memory AssetRepository. Documents are copied
// in and out so callers never share state with the store. Safe for
// concurrent use.
type MemoryAssetStore struct {
	mu     sync.RWMutex
	assets map[domain.AssetKind]map[string]domain.Asset
	now    func() time.Time
}

// NewMemoryAssetStore creates an empty store.
func NewMemoryAssetStore() *MemoryAssetStore {
	s := &MemoryAssetStore{
		assets: make(map[domain.AssetKind]map[string]domain.Asset, len(domain.AllKinds)),
		now:    time.Now,
	}
	for _, k := range domain.AllKinds {
		s.assets[k] = make(map[string]domain.Asset)
	}
	return s
}

func (s *MemoryAssetStore) collection(kind domain.AssetKind) (map[string]domain.Asset, error) {
	c, ok := s.assets[kind]
	if !ok {
		return nil, domain.InvalidKind(string(kind))
	}
	return c, nil
}

// FindByID returns a copy of the asset.
func (s *MemoryAssetStore) FindByID(_ context.Context, kind domain.AssetKind, id string) (*domain.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.collection(kind)
	if err != nil {
		return nil, err
	}
	a, ok := c[id]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNoSuchDocument, "%s %s", kind, id)
	}
	return &a, nil
}

// FindAllByKind returns every asset of the kind ordered by id.
func (s *MemoryAssetStore) FindAllByKind(_ context.Context, kind domain.AssetKind) ([]domain.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.collection(kind)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Asset, 0, len(c))
	for _, a := range c {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CountByFilter counts assets matching every non-empty filter field.
func (s *MemoryAssetStore) CountByFilter(_ context.Context, kind domain.AssetKind, filter domain.AssetFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.collection(kind)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, a := range c {
		if filter.AssignedTo != "" && a.AssignedTo != filter.AssignedTo {
			continue
		}
		if filter.InstalledIn != "" && a.InstalledIn != filter.InstalledIn {
			continue
		}
		n++
	}
	return n, nil
}

// UpdateConditional applies patch only if the asset is still owned by expectedOwner.
func (s *MemoryAssetStore) UpdateConditional(_ context.Context, kind domain.AssetKind, id, expectedOwner string, patch domain.AssetPatch) (*domain.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.collection(kind)
	if err != nil {
		return nil, err
	}
	a, ok := c[id]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNoSuchDocument, "%s %s", kind, id)
	}
	if a.AssignedTo != expectedOwner {
		return nil, errors.Wrapf(domain.ErrPreconditionFailed, "%s %s owned by %q", kind, id, a.AssignedTo)
	}
	patch.Apply(&a, s.now())
	c[id] = a
	return &a, nil
}

// Save writes the asset unconditionally.
func (s *MemoryAssetStore) Save(_ context.Context, a *domain.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.collection(a.Kind)
	if err != nil {
		return err
	}
	if a.ID == "" {
		return errors.New("asset id is required")
	}
	a.UpdatedAt = s.now()
	c[a.ID] = *a
	return nil
}

// Delete removes the asset; deleting a missing asset is not an error.
func (s *MemoryAssetStore) Delete(_ context.Context, kind domain.AssetKind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.collection(kind)
	if err != nil {
		return err
	}
	delete(c, id)
	return nil
}

// MemoryEmployeeStore is an in-memory EmployeeRepository.
type MemoryEmployeeStore struct {
	mu        sync.RWMutex
	employees map[string]domain.Employee
}

// NewMemoryEmployeeStore creates an empty store.
func NewMemoryEmployeeStore() *MemoryEmployeeStore {
	return &MemoryEmployeeStore{employees: make(map[string]domain.Employee)}
}

func (s *MemoryEmployeeStore) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.employees[id]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNoSuchDocument, "employee %s", id)
	}
	return &e, nil
}

func (s *MemoryEmployeeStore) List(_ context.Context) ([]domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryEmployeeStore) CountByFilter(_ context.Context, filter domain.EmployeeFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, e := range s.employees {
		if filter.Manager != "" && e.Manager != filter.Manager {
			continue
		}
		if filter.Email != "" && e.Email != filter.Email {
			continue
		}
		if filter.EmployeeID != "" && e.EmployeeID != filter.EmployeeID {
			continue
		}
		n++
	}
	return n, nil
}

func (s *MemoryEmployeeStore) Save(_ context.Context, e *domain.Employee) error {
	if e.ID == "" {
		return errors.New("employee id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = *e
	return nil
}

func (s *MemoryEmployeeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.employees, id)
	return nil
}
