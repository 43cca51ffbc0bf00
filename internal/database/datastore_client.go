package database

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/pkg/errors"

	"github.com/locvowork/asset_management/internal/domain"
)

const (
	employeeEntity = "Employee"

	// maxBatch is the Datastore limit on entities per PutMulti call.
	maxBatch = 500
)

// DatastoreClient wraps the cloud datastore client
type DatastoreClient struct {
	client *datastore.Client
}

// NewDatastoreClient dials Datastore for the project. An empty project id
// lets the client detect it from the environment or the emulator.
func NewDatastoreClient(ctx context.Context, projectID string) (*DatastoreClient, error) {
	if projectID == "" {
		projectID = datastore.DetectProjectID
	}
	client, err := datastore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore client: %w", err)
	}
	return &DatastoreClient{client: client}, nil
}

// Close releases the underlying connection.
func (dc *DatastoreClient) Close() error {
	if dc == nil || dc.client == nil {
		return nil
	}
	return dc.client.Close()
}

// Assets returns the AssetRepository view of the client.
func (dc *DatastoreClient) Assets() *DatastoreAssetRepository {
	return &DatastoreAssetRepository{client: dc.client}
}

// Employees returns the EmployeeRepository view of the client.
func (dc *DatastoreClient) Employees() *DatastoreEmployeeRepository {
	return &DatastoreEmployeeRepository{client: dc.client}
}

// DatastoreAssetRepository stores each asset kind as its own entity kind,
// keyed by the asset id.
type DatastoreAssetRepository struct {
	client *datastore.Client
}

func assetKey(kind domain.AssetKind, id string) (*datastore.Key, error) {
	if !kind.Valid() {
		return nil, domain.InvalidKind(string(kind))
	}
	// an empty name would make an incomplete key, which Get rejects as invalid
	if id == "" {
		return nil, errors.Wrapf(domain.ErrNoSuchDocument, "%s with empty id", kind)
	}
	return datastore.NameKey(kind.EntityName(), id, nil), nil
}

func employeeKey(id string) (*datastore.Key, error) {
	if id == "" {
		return nil, errors.Wrap(domain.ErrNoSuchDocument, "employee with empty id")
	}
	return datastore.NameKey(employeeEntity, id, nil), nil
}

func (r *DatastoreAssetRepository) FindByID(ctx context.Context, kind domain.AssetKind, id string) (*domain.Asset, error) {
	key, err := assetKey(kind, id)
	if err != nil {
		return nil, err
	}
	var a domain.Asset
	if err := r.client.Get(ctx, key, &a); err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return nil, errors.Wrapf(domain.ErrNoSuchDocument, "%s %s", kind, id)
		}
		return nil, err
	}
	a.ID, a.Kind = id, kind
	return &a, nil
}

func (r *DatastoreAssetRepository) FindAllByKind(ctx context.Context, kind domain.AssetKind) ([]domain.Asset, error) {
	if !kind.Valid() {
		return nil, domain.InvalidKind(string(kind))
	}
	var assets []domain.Asset
	keys, err := r.client.GetAll(ctx, datastore.NewQuery(kind.EntityName()), &assets)
	if err != nil {
		return nil, err
	}
	for i := range assets {
		assets[i].ID = keys[i].Name
		assets[i].Kind = kind
	}
	return assets, nil
}

func (r *DatastoreAssetRepository) CountByFilter(ctx context.Context, kind domain.AssetKind, filter domain.AssetFilter) (int64, error) {
	if !kind.Valid() {
		return 0, domain.InvalidKind(string(kind))
	}
	q := datastore.NewQuery(kind.EntityName()).KeysOnly()
	if filter.AssignedTo != "" {
		q = q.FilterField("assignedTo", "=", filter.AssignedTo)
	}
	if filter.InstalledIn != "" {
		q = q.FilterField("installedIn", "=", filter.InstalledIn)
	}
	n, err := r.client.Count(ctx, q)
	return int64(n), err
}

// UpdateConditional reads, compares the owner and writes inside one
// transaction. Datastore retries the transaction on contention, so the
// comparison always runs against the committed owner.
func (r *DatastoreAssetRepository) UpdateConditional(ctx context.Context, kind domain.AssetKind, id, expectedOwner string, patch domain.AssetPatch) (*domain.Asset, error) {
	key, err := assetKey(kind, id)
	if err != nil {
		return nil, err
	}

	var updated domain.Asset
	_, err = r.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var a domain.Asset
		if err := tx.Get(key, &a); err != nil {
			if errors.Is(err, datastore.ErrNoSuchEntity) {
				return errors.Wrapf(domain.ErrNoSuchDocument, "%s %s", kind, id)
			}
			return err
		}
		if a.AssignedTo != expectedOwner {
			return errors.Wrapf(domain.ErrPreconditionFailed, "%s %s owned by %q", kind, id, a.AssignedTo)
		}
		patch.Apply(&a, time.Now())
		if _, err := tx.Put(key, &a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	updated.ID, updated.Kind = id, kind
	return &updated, nil
}

func (r *DatastoreAssetRepository) Save(ctx context.Context, a *domain.Asset) error {
	key, err := assetKey(a.Kind, a.ID)
	if err != nil {
		return err
	}
	a.UpdatedAt = time.Now()
	_, err = r.client.Put(ctx, key, a)
	return err
}

// BatchSave writes assets of mixed kinds with PutMulti, maxBatch at a time.
func (r *DatastoreAssetRepository) BatchSave(ctx context.Context, assets []domain.Asset) error {
	keys := make([]*datastore.Key, len(assets))
	now := time.Now()
	for i := range assets {
		key, err := assetKey(assets[i].Kind, assets[i].ID)
		if err != nil {
			return err
		}
		keys[i] = key
		assets[i].UpdatedAt = now
	}

	for start := 0; start < len(assets); start += maxBatch {
		end := min(start+maxBatch, len(assets))
		if _, err := r.client.PutMulti(ctx, keys[start:end], assets[start:end]); err != nil {
			return errors.Wrapf(err, "put assets %d..%d", start, end)
		}
	}
	return nil
}

func (r *DatastoreAssetRepository) Delete(ctx context.Context, kind domain.AssetKind, id string) error {
	key, err := assetKey(kind, id)
	if err != nil {
		return err
	}
	return r.client.Delete(ctx, key)
}

// DatastoreEmployeeRepository stores employees under the Employee kind.
type DatastoreEmployeeRepository struct {
	client *datastore.Client
}

func (r *DatastoreEmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	key, err := employeeKey(id)
	if err != nil {
		return nil, err
	}
	var e domain.Employee
	if err := r.client.Get(ctx, key, &e); err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return nil, errors.Wrapf(domain.ErrNoSuchDocument, "employee %s", id)
		}
		return nil, err
	}
	e.ID = id
	return &e, nil
}

func (r *DatastoreEmployeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	var employees []domain.Employee
	keys, err := r.client.GetAll(ctx, datastore.NewQuery(employeeEntity), &employees)
	if err != nil {
		return nil, err
	}
	for i := range employees {
		employees[i].ID = keys[i].Name
	}
	return employees, nil
}

func (r *DatastoreEmployeeRepository) CountByFilter(ctx context.Context, filter domain.EmployeeFilter) (int64, error) {
	q := datastore.NewQuery(employeeEntity).KeysOnly()
	if filter.Manager != "" {
		q = q.FilterField("manager", "=", filter.Manager)
	}
	if filter.Email != "" {
		q = q.FilterField("email", "=", filter.Email)
	}
	if filter.EmployeeID != "" {
		q = q.FilterField("employeeId", "=", filter.EmployeeID)
	}
	n, err := r.client.Count(ctx, q)
	return int64(n), err
}

func (r *DatastoreEmployeeRepository) Save(ctx context.Context, e *domain.Employee) error {
	key, err := employeeKey(e.ID)
	if err != nil {
		return err
	}
	_, err = r.client.Put(ctx, key, e)
	return err
}

func (r *DatastoreEmployeeRepository) Delete(ctx context.Context, id string) error {
	key, err := employeeKey(id)
	if err != nil {
		return err
	}
	return r.client.Delete(ctx, key)
}
