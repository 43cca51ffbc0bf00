package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"github.com/locvowork/asset_management/internal/domain"
)

// ReadRetry bounds how often a failed store read is retried. Writes are
// never retried.
type ReadRetry struct {
	MaxRetries      int
	InitialInterval time.Duration
}

// DefaultReadRetry is used when no policy is configured.
var DefaultReadRetry = ReadRetry{MaxRetries: 3, InitialInterval: 50 * time.Millisecond}

func (r ReadRetry) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if r.InitialInterval > 0 {
		b.InitialInterval = r.InitialInterval
	}
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(r.MaxRetries, 0))), ctx)
}

// translate maps a store error into the failure taxonomy. Errors already in
// the taxonomy pass through.
func translate(err error, entity, id, op string) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, domain.ErrNoSuchDocument) {
		return domain.NotFound(entity, id)
	}
	return domain.StoreUnavailable(op, err)
}

// readWithRetry runs a store read under the retry policy. Caller mistakes
// such as NotFound are permanent and returned on the first attempt.
func readWithRetry[T any](ctx context.Context, policy ReadRetry, entity, id, op string, read func() (T, error)) (T, error) {
	v, err := backoff.RetryWithData(func() (T, error) {
		v, err := read()
		if err == nil {
			return v, nil
		}
		err = translate(err, entity, id, op)
		if !domain.IsStoreUnavailable(err) || ctx.Err() != nil {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, policy.backOff(ctx))
	// a context cancelled between attempts surfaces as a bare ctx error
	return v, translate(err, entity, id, op)
}

func loadEmployee(ctx context.Context, repo domain.EmployeeRepository, policy ReadRetry, id string) (*domain.Employee, error) {
	return readWithRetry(ctx, policy, "employee", id, "get employee", func() (*domain.Employee, error) {
		return repo.GetByID(ctx, id)
	})
}

func loadAsset(ctx context.Context, repo domain.AssetRepository, policy ReadRetry, kind domain.AssetKind, id string) (*domain.Asset, error) {
	return readWithRetry(ctx, policy, "asset", id, "get "+string(kind), func() (*domain.Asset, error) {
		return repo.FindByID(ctx, kind, id)
	})
}

func countAssets(ctx context.Context, repo domain.AssetRepository, policy ReadRetry, kind domain.AssetKind, filter domain.AssetFilter) (int64, error) {
	return readWithRetry(ctx, policy, "asset", "", "count "+string(kind), func() (int64, error) {
		return repo.CountByFilter(ctx, kind, filter)
	})
}

func countEmployees(ctx context.Context, repo domain.EmployeeRepository, policy ReadRetry, filter domain.EmployeeFilter) (int64, error) {
	return readWithRetry(ctx, policy, "employee", "", "count employees", func() (int64, error) {
		return repo.CountByFilter(ctx, filter)
	})
}

// employeeNames resolves owner display names for conflict reasons. It does
// a single read without retry; the checker falls back to Unknown.
type employeeNames struct {
	repo domain.EmployeeRepository
}

func (n employeeNames) OwnerName(ctx context.Context, id string) (string, error) {
	e, err := n.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return e.Name, nil
}
