package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/locvowork/asset_management/internal/domain"
	"github.com/locvowork/asset_management/internal/repository/builder"
)

var assetColumns = []string{
	"id", "name", "type", "serial_number", "username", "manufacturer", "model",
	"status", "assigned_to", "assignment_status", "installed_in", "updated_at",
}

type assetRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewAssetRepository creates a Postgres backed AssetRepository. Each asset
// kind lives in its own table.
func NewAssetRepository(db *sql.DB) domain.AssetRepository {
	return &assetRepository{db: db, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAsset(row rowScanner, kind domain.AssetKind) (*domain.Asset, error) {
	var a domain.Asset
	var assignedTo, installedIn sql.NullString
	if err := row.Scan(&a.ID, &a.Name, &a.Type, &a.SerialNumber, &a.Username, &a.Manufacturer, &a.Model,
		&a.Status, &assignedTo, &a.AssignmentStatus, &installedIn, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Kind = kind
	a.AssignedTo = assignedTo.String
	a.InstalledIn = installedIn.String
	return &a, nil
}

// nullable maps the empty reference to SQL NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func table(kind domain.AssetKind) (string, error) {
	if !kind.Valid() {
		return "", domain.InvalidKind(string(kind))
	}
	return kind.Table(), nil
}

func (r *assetRepository) FindByID(ctx context.Context, kind domain.AssetKind, id string) (*domain.Asset, error) {
	t, err := table(kind)
	if err != nil {
		return nil, err
	}
	query, args := builder.NewSQLBuilder().
		Select(assetColumns...).
		From(t).
		Where("id = ?", id).
		Build()

	a, err := scanAsset(r.db.QueryRowContext(ctx, query, args...), kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(domain.ErrNoSuchDocument, "%s %s", kind, id)
	}
	return a, err
}

func (r *assetRepository) FindAllByKind(ctx context.Context, kind domain.AssetKind) ([]domain.Asset, error) {
	t, err := table(kind)
	if err != nil {
		return nil, err
	}
	query, args := builder.NewSQLBuilder().
		Select(assetColumns...).
		From(t).
		OrderBy("id ASC").
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		a, err := scanAsset(rows, kind)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}

func (r *assetRepository) CountByFilter(ctx context.Context, kind domain.AssetKind, filter domain.AssetFilter) (int64, error) {
	t, err := table(kind)
	if err != nil {
		return 0, err
	}
	b := builder.NewSQLBuilder().Select("COUNT(*)").From(t)
	if filter.AssignedTo != "" {
		b.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.InstalledIn != "" {
		b.Where("installed_in = ?", filter.InstalledIn)
	}
	query, args := b.Build()

	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateConditional issues a single UPDATE guarded on the current owner.
// When no row matches, a follow-up existence probe tells a lost race apart
// from a missing asset.
func (r *assetRepository) UpdateConditional(ctx context.Context, kind domain.AssetKind, id, expectedOwner string, patch domain.AssetPatch) (*domain.Asset, error) {
	t, err := table(kind)
	if err != nil {
		return nil, err
	}

	b := builder.NewSQLBuilder().Update(t)
	if patch.AssignedTo != nil {
		b.Set("assigned_to", nullable(*patch.AssignedTo))
	}
	if patch.Status != nil {
		b.Set("status", *patch.Status)
	}
	if patch.AssignmentStatus != nil {
		b.Set("assignment_status", *patch.AssignmentStatus)
	}
	query, args := b.Set("updated_at", r.now()).
		Where("id = ?", id).
		Where("assigned_to IS NOT DISTINCT FROM ?", nullable(expectedOwner)).
		Returning(assetColumns...).
		Build()

	a, err := scanAsset(r.db.QueryRowContext(ctx, query, args...), kind)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	probe, probeArgs := builder.NewSQLBuilder().Select("1").From(t).Where("id = ?", id).Build()
	var one int
	switch err := r.db.QueryRowContext(ctx, probe, probeArgs...).Scan(&one); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, errors.Wrapf(domain.ErrNoSuchDocument, "%s %s", kind, id)
	case err != nil:
		return nil, err
	}
	return nil, errors.Wrapf(domain.ErrPreconditionFailed, "%s %s", kind, id)
}

func (r *assetRepository) Save(ctx context.Context, a *domain.Asset) error {
	t, err := table(a.Kind)
	if err != nil {
		return err
	}
	a.UpdatedAt = r.now()
	query, args := builder.NewSQLBuilder().
		Insert(t, assetColumns...).
		Values(a.ID, a.Name, a.Type, a.SerialNumber, a.Username, a.Manufacturer, a.Model,
			a.Status, nullable(a.AssignedTo), a.AssignmentStatus, nullable(a.InstalledIn), a.UpdatedAt).
		OnConflictUpdate("id", assetColumns[1:]...).
		Build()

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *assetRepository) Delete(ctx context.Context, kind domain.AssetKind, id string) error {
	t, err := table(kind)
	if err != nil {
		return err
	}
	query, args := builder.NewSQLBuilder().Delete(t).Where("id = ?", id).Build()
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}
