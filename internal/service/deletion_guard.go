package service

import (
	"context"
	"fmt"

	"github.com/locvowork/asset_management/internal/domain"
	"github.com/locvowork/asset_management/internal/metrics"
	"github.com/locvowork/asset_management/internal/ownership"
)

// DeletionGuard refuses deletes that would leave dangling owner, manager
// or installation references. It only reads.
type DeletionGuard struct {
	assets    domain.AssetRepository
	employees domain.EmployeeRepository
	names     employeeNames
	reads     ReadRetry
}

func NewDeletionGuard(assets domain.AssetRepository, employees domain.EmployeeRepository, reads ReadRetry) *DeletionGuard {
	return &DeletionGuard{assets: assets, employees: employees, names: employeeNames{repo: employees}, reads: reads}
}

// CanDeleteEmployee allows the delete only when the employee owns no asset
// of any kind and manages nobody.
func (g *DeletionGuard) CanDeleteEmployee(ctx context.Context, id string) (domain.Decision, error) {
	if _, err := loadEmployee(ctx, g.employees, g.reads, id); err != nil {
		return domain.Decision{}, err
	}

	var owned int64
	for _, kind := range domain.AllKinds {
		n, err := countAssets(ctx, g.assets, g.reads, kind, domain.AssetFilter{AssignedTo: id})
		if err != nil {
			return domain.Decision{}, err
		}
		owned += n
	}
	if owned > 0 {
		return g.record("employee", domain.Reject(fmt.Sprintf("employee still owns %d assets", owned))), nil
	}

	reports, err := countEmployees(ctx, g.employees, g.reads, domain.EmployeeFilter{Manager: id})
	if err != nil {
		return domain.Decision{}, err
	}
	if reports > 0 {
		return g.record("employee", domain.Reject(fmt.Sprintf("employee manages %d other employees", reports))), nil
	}
	return g.record("employee", domain.Allow()), nil
}

// CanDeleteAsset allows the delete only for unowned assets, and for devices
// only when no component is installed in them.
func (g *DeletionGuard) CanDeleteAsset(ctx context.Context, rawKind, id string) (domain.Decision, error) {
	kind, err := domain.ParseAssetKind(rawKind)
	if err != nil {
		return domain.Decision{}, err
	}
	a, err := loadAsset(ctx, g.assets, g.reads, kind, id)
	if err != nil {
		return domain.Decision{}, err
	}

	if a.IsAssigned() {
		name, err := g.names.OwnerName(ctx, a.AssignedTo)
		if err != nil || name == "" {
			name = ownership.UnknownOwner
		}
		return g.record(string(kind), domain.Reject("asset is assigned to employee "+name)), nil
	}

	if kind == domain.KindDevice {
		n, err := countAssets(ctx, g.assets, g.reads, domain.KindComponent, domain.AssetFilter{InstalledIn: id})
		if err != nil {
			return domain.Decision{}, err
		}
		if n > 0 {
			return g.record(string(kind), domain.Reject(fmt.Sprintf("device has %d installed components", n))), nil
		}
	}
	return g.record(string(kind), domain.Allow()), nil
}

func (g *DeletionGuard) record(entity string, d domain.Decision) domain.Decision {
	metrics.RecordDeletionCheck(entity, d.Allowed)
	return d
}
