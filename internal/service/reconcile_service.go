package service

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/locvowork/asset_management/internal/domain"
	"github.com/locvowork/asset_management/internal/logger"
	"github.com/locvowork/asset_management/internal/metrics"
	"github.com/locvowork/asset_management/internal/policy"
	"github.com/locvowork/asset_management/pkg/dataflow"
)

// ReconcileResult summarizes one sweep. Failed documents are left as they
// were and picked up by the next run.
type ReconcileResult struct {
	Kind    domain.AssetKind `json:"kind"`
	Total   int              `json:"total"`
	Updated int              `json:"updated"`
	Failed  int              `json:"failed"`
}

// ReconcileService repairs the derived assignment fields of assets whose
// owner reference was changed outside the AssignmentService.
type ReconcileService struct {
	assets  domain.AssetRepository
	reads   ReadRetry
	workers int
}

func NewReconcileService(assets domain.AssetRepository, reads ReadRetry, workers int) *ReconcileService {
	if workers < 1 {
		workers = 1
	}
	return &ReconcileService{assets: assets, reads: reads, workers: workers}
}

// ReconcileAssignmentStatus rewrites the assignment mirror of every asset
// of kind that disagrees with its owner reference. It is idempotent: a
// second run with no concurrent writers reports Updated == 0.
//
// The mirror differs by kind. Accounts keep it in assignmentStatus and
// their lifecycle status is never written. Devices and components keep it
// in status itself, so a sweep of those kinds can move status between
// available and in_use; under_repair and disposed are left alone.
//
// On cancellation the counts reached so far are returned with ctx.Err().
func (s *ReconcileService) ReconcileAssignmentStatus(ctx context.Context, rawKind string) (ReconcileResult, error) {
	kind, err := domain.ParseAssetKind(rawKind)
	if err != nil {
		return ReconcileResult{}, err
	}
	ctx = logger.WithLogger(ctx, map[string]interface{}{"operation": "reconcile", "kind": string(kind)})

	assets, err := readWithRetry(ctx, s.reads, "asset", "", "list "+string(kind), func() ([]domain.Asset, error) {
		return s.assets.FindAllByKind(ctx, kind)
	})
	if err != nil {
		return ReconcileResult{Kind: kind}, err
	}

	drifted := dataflow.Filter(ctx, dataflow.From(ctx, assets...), func(a domain.Asset) bool {
		if _, ok := policy.ExpectedMirror(a); ok {
			return true
		}
		metrics.RecordReconciled(string(kind), "unchanged")
		return false
	})

	var updated, failed int64
	err = dataflow.ForEach(ctx, drifted, func(ctx context.Context, a domain.Asset) error {
		if err := s.reconcileOne(ctx, kind, a); err != nil {
			return errors.Wrapf(err, "%s %s", kind, a.ID)
		}
		atomic.AddInt64(&updated, 1)
		metrics.RecordReconciled(string(kind), "updated")
		return nil
	}, dataflow.WithWorkers(s.workers), dataflow.WithErrorHandler(func(err error) bool {
		atomic.AddInt64(&failed, 1)
		metrics.RecordReconciled(string(kind), "failed")
		logger.WarnLog(ctx, "skipping document during reconciliation", err)
		return true
	}))

	result := ReconcileResult{
		Kind:    kind,
		Total:   len(assets),
		Updated: int(atomic.LoadInt64(&updated)),
		Failed:  int(atomic.LoadInt64(&failed)),
	}
	if err != nil {
		logger.WarnLog(ctx, "reconciliation interrupted after %d updates", result.Updated, err)
		return result, err
	}
	logger.InfoLog(ctx, "reconciled %d %s assets: %d updated, %d failed", result.Total, kind, result.Updated, result.Failed)
	return result, nil
}

// reconcileOne writes the expected mirror. The write is guarded on the
// owner value that was read, so a concurrent reassignment turns into a
// skipped document instead of a stale mirror.
func (s *ReconcileService) reconcileOne(ctx context.Context, kind domain.AssetKind, a domain.Asset) error {
	patch, _ := policy.ExpectedMirror(a)
	if _, err := s.assets.UpdateConditional(ctx, kind, a.ID, a.AssignedTo, patch); err != nil {
		return err
	}
	logger.DebugLog(ctx, "corrected %s %s", kind, a.ID)
	return nil
}
