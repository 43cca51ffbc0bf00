package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/asset_management/internal/domain"
)

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

const guardedDeviceUpdate = "UPDATE devices SET assigned_to = $1, status = $2, updated_at = $3 WHERE id = $4 AND assigned_to IS NOT DISTINCT FROM $5 RETURNING id, name, type, serial_number, username, manufacturer, model, status, assigned_to, assignment_status, installed_in, updated_at"

func newAssetRepo(t *testing.T) (*assetRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &assetRepository{db: db, now: func() time.Time { return fixedNow }}, mock
}

func strp(s string) *string { return &s }

func TestAssetRepositoryUpdateConditional(t *testing.T) {
	patch := domain.AssetPatch{AssignedTo: strp("emp-1"), Status: strp(domain.StatusInUse)}

	t.Run("guard holds", func(t *testing.T) {
		repo, mock := newAssetRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(guardedDeviceUpdate)).
			WithArgs("emp-1", domain.StatusInUse, fixedNow, "d-1", nil).
			WillReturnRows(sqlmock.NewRows(assetColumns).
				AddRow("d-1", "ThinkPad", "laptop", "SN-1", "", "Lenovo", "X1", domain.StatusInUse, "emp-1", "", nil, fixedNow))

		a, err := repo.UpdateConditional(context.Background(), domain.KindDevice, "d-1", "", patch)
		require.NoError(t, err)
		assert.Equal(t, "emp-1", a.AssignedTo)
		assert.Equal(t, domain.KindDevice, a.Kind)
		assert.Empty(t, a.InstalledIn)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("owner changed", func(t *testing.T) {
		repo, mock := newAssetRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(guardedDeviceUpdate)).
			WillReturnRows(sqlmock.NewRows(assetColumns))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM devices WHERE id = $1")).
			WithArgs("d-1").
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

		_, err := repo.UpdateConditional(context.Background(), domain.KindDevice, "d-1", "", patch)
		assert.True(t, errors.Is(err, domain.ErrPreconditionFailed))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("asset missing", func(t *testing.T) {
		repo, mock := newAssetRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(guardedDeviceUpdate)).
			WillReturnRows(sqlmock.NewRows(assetColumns))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM devices WHERE id = $1")).
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

		_, err := repo.UpdateConditional(context.Background(), domain.KindDevice, "d-1", "", patch)
		assert.True(t, errors.Is(err, domain.ErrNoSuchDocument))
	})

	t.Run("release guards on the current owner", func(t *testing.T) {
		repo, mock := newAssetRepo(t)
		release := "UPDATE accounts SET assigned_to = $1, status = $2, assignment_status = $3, updated_at = $4 WHERE id = $5 AND assigned_to IS NOT DISTINCT FROM $6"
		mock.ExpectQuery(regexp.QuoteMeta(release)).
			WithArgs(nil, domain.StatusActive, domain.AssignmentAvailable, fixedNow, "a-1", "emp-1").
			WillReturnRows(sqlmock.NewRows(assetColumns).
				AddRow("a-1", "ci", "", "", "svc-ci", "", "", domain.StatusActive, nil, domain.AssignmentAvailable, nil, fixedNow))

		a, err := repo.UpdateConditional(context.Background(), domain.KindAccount, "a-1", "emp-1", domain.AssetPatch{
			AssignedTo:       strp(""),
			Status:           strp(domain.StatusActive),
			AssignmentStatus: strp(domain.AssignmentAvailable),
		})
		require.NoError(t, err)
		assert.False(t, a.IsAssigned())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAssetRepositoryFindByIDNotFound(t *testing.T) {
	repo, mock := newAssetRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM components WHERE id = $1")).
		WithArgs("c-9").
		WillReturnRows(sqlmock.NewRows(assetColumns))

	_, err := repo.FindByID(context.Background(), domain.KindComponent, "c-9")
	assert.True(t, errors.Is(err, domain.ErrNoSuchDocument))
}

func TestAssetRepositoryCountByFilter(t *testing.T) {
	repo, mock := newAssetRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM components WHERE installed_in = $1")).
		WithArgs("d-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountByFilter(context.Background(), domain.KindComponent, domain.AssetFilter{InstalledIn: "d-1"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepositoryRejectsUnknownKind(t *testing.T) {
	repo, _ := newAssetRepo(t)
	_, err := repo.FindAllByKind(context.Background(), "printer")
	assert.True(t, domain.IsInvalidKind(err))
}
