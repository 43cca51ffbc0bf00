package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/locvowork/asset_management/internal/domain"
	"github.com/locvowork/asset_management/internal/logger"
	"github.com/locvowork/asset_management/internal/metrics"
	"github.com/locvowork/asset_management/internal/ownership"
	"github.com/locvowork/asset_management/internal/policy"
)

// ReasonConcurrentChange is reported when a conditional update lost a race
// but the fresh state would have allowed the request.
const ReasonConcurrentChange = "asset was modified concurrently, retry the request"

// AssignmentService moves an asset between owners one document at a time.
// The ownership check and the write are tied together by a conditional
// update on the owner the check saw.
type AssignmentService struct {
	assets    domain.AssetRepository
	employees domain.EmployeeRepository
	checker   *ownership.Checker
	indexer   domain.AssetIndexer
	reads     ReadRetry
}

func NewAssignmentService(assets domain.AssetRepository, employees domain.EmployeeRepository, indexer domain.AssetIndexer, reads ReadRetry) *AssignmentService {
	if indexer == nil {
		indexer = domain.NopIndexer{}
	}
	return &AssignmentService{
		assets:    assets,
		employees: employees,
		checker:   ownership.NewChecker(employeeNames{repo: employees}),
		indexer:   indexer,
		reads:     reads,
	}
}

// Assign makes employeeID the owner of the asset.
func (s *AssignmentService) Assign(ctx context.Context, employeeID, kind, assetID string) (*domain.Asset, error) {
	return s.transition(ctx, policy.ActionAssign, employeeID, kind, assetID)
}

// Unassign releases the asset on behalf of its current owner.
func (s *AssignmentService) Unassign(ctx context.Context, employeeID, kind, assetID string) (*domain.Asset, error) {
	return s.transition(ctx, policy.ActionUnassign, employeeID, kind, assetID)
}

func (s *AssignmentService) transition(ctx context.Context, action policy.Action, employeeID, rawKind, assetID string) (*domain.Asset, error) {
	ctx = logger.WithLogger(ctx, map[string]interface{}{
		"operation":   string(action),
		"kind":        rawKind,
		"asset_id":    assetID,
		"employee_id": employeeID,
	})

	a, err := s.apply(ctx, action, employeeID, rawKind, assetID)
	metrics.RecordTransition(rawKind, string(action), outcome(err))
	if err != nil {
		if domain.IsStoreUnavailable(err) {
			logger.ErrorLog(ctx, "ownership transition failed", err)
		} else {
			logger.InfoLog(ctx, "ownership transition refused: %v", err)
		}
		return nil, err
	}

	if err := s.indexer.IndexAsset(ctx, *a); err != nil {
		logger.WarnLog(ctx, "failed to index ownership change", err)
	}
	logger.DebugLog(ctx, "ownership transition committed")
	return a, nil
}

func (s *AssignmentService) apply(ctx context.Context, action policy.Action, employeeID, rawKind, assetID string) (*domain.Asset, error) {
	kind, err := domain.ParseAssetKind(rawKind)
	if err != nil {
		return nil, err
	}
	target, err := policy.TargetState(kind, action)
	if err != nil {
		return nil, err
	}

	if _, err := loadEmployee(ctx, s.employees, s.reads, employeeID); err != nil {
		return nil, err
	}
	asset, err := loadAsset(ctx, s.assets, s.reads, kind, assetID)
	if err != nil {
		return nil, err
	}

	if d := s.check(ctx, action, asset, employeeID); !d.Allowed {
		return nil, domain.Conflict(d.Reason)
	}

	owner := employeeID
	if action == policy.ActionUnassign {
		owner = ""
	}

	updated, err := s.assets.UpdateConditional(ctx, kind, assetID, asset.AssignedTo, target.Patch(owner))
	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, domain.ErrPreconditionFailed):
		return nil, s.raceLost(ctx, action, kind, assetID, employeeID)
	case errors.Is(err, domain.ErrNoSuchDocument):
		return nil, domain.NotFound("asset", assetID)
	default:
		return nil, domain.StoreUnavailable("update "+string(kind), err)
	}
}

// raceLost re-reads the asset after a failed conditional update and
// reports the conflict as seen from the fresh state.
func (s *AssignmentService) raceLost(ctx context.Context, action policy.Action, kind domain.AssetKind, assetID, employeeID string) error {
	metrics.RecordRaceLost(string(kind), string(action))
	logger.WarnLog(ctx, "conditional update lost to a concurrent writer")
	fresh, err := loadAsset(ctx, s.assets, s.reads, kind, assetID)
	if err != nil {
		return err
	}
	if d := s.check(ctx, action, fresh, employeeID); !d.Allowed {
		return domain.Conflict(d.Reason)
	}
	return domain.Conflict(ReasonConcurrentChange)
}

func (s *AssignmentService) check(ctx context.Context, action policy.Action, asset *domain.Asset, employeeID string) domain.Decision {
	if action == policy.ActionAssign {
		return s.checker.CheckAssign(ctx, asset, employeeID)
	}
	return s.checker.CheckUnassign(asset, employeeID)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case domain.IsConflict(err):
		return metrics.OutcomeRejected
	case domain.IsStoreUnavailable(err):
		return metrics.OutcomeError
	}
	return metrics.OutcomeRejected
}
