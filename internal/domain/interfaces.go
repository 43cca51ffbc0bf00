package domain

import "context"

// AssetRepository is the document-store boundary for the three asset
// collections. UpdateConditional must apply the patch in one atomic step
// guarded on the asset's current owner being expectedOwner ("" = unowned).
// It returns ErrPreconditionFailed when the guard does not hold and
// ErrNoSuchDocument when the asset is gone.
type AssetRepository interface {
	FindByID(ctx context.Context, kind AssetKind, id string) (*Asset, error)
	FindAllByKind(ctx context.Context, kind AssetKind) ([]Asset, error)
	CountByFilter(ctx context.Context, kind AssetKind, filter AssetFilter) (int64, error)
	UpdateConditional(ctx context.Context, kind AssetKind, id, expectedOwner string, patch AssetPatch) (*Asset, error)

	// Save is the generic field-level write path: last write wins, no
	// ownership guard. Drift introduced here is repaired by the sweep.
	Save(ctx context.Context, a *Asset) error
	Delete(ctx context.Context, kind AssetKind, id string) error
}

// EmployeeRepository defines the interface for employee data access
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (*Employee, error)
	List(ctx context.Context) ([]Employee, error)
	CountByFilter(ctx context.Context, filter EmployeeFilter) (int64, error)
	Save(ctx context.Context, e *Employee) error
	Delete(ctx context.Context, id string) error
}

// AssetIndexer mirrors committed ownership changes into a search index.
type AssetIndexer interface {
	IndexAsset(ctx context.Context, a Asset) error
}

// NopIndexer discards index writes.
type NopIndexer struct{}

func (NopIndexer) IndexAsset(context.Context, Asset) error { return nil }

// OwnershipIndex answers owner lookups from the search side. Results may
// lag the store; the index audit compares the two.
type OwnershipIndex interface {
	AssetsOwnedBy(ctx context.Context, employeeID string) ([]Asset, error)
}
