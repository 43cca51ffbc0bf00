package service

import (
	"context"
	"sort"
	"strings"

	"github.com/locvowork/asset_management/internal/domain"
	"github.com/locvowork/asset_management/internal/logger"
)

// IndexDrift compares what the store and the ownership index say an
// employee owns. Entries are "kind:id".
type IndexDrift struct {
	EmployeeID string   `json:"employeeId"`
	Stored     int      `json:"stored"`
	Indexed    int      `json:"indexed"`
	Missing    []string `json:"missing,omitempty"`
	Stale      []string `json:"stale,omitempty"`
}

// Consistent reports whether index and store agree.
func (d IndexDrift) Consistent() bool {
	return len(d.Missing) == 0 && len(d.Stale) == 0
}

// IndexAudit cross-checks the ownership index against the store. The store
// is authoritative; the index is written best-effort after each commit.
type IndexAudit struct {
	assets domain.AssetRepository
	index  domain.OwnershipIndex
	reads  ReadRetry
}

func NewIndexAudit(assets domain.AssetRepository, index domain.OwnershipIndex, reads ReadRetry) *IndexAudit {
	return &IndexAudit{assets: assets, index: index, reads: reads}
}

// CheckEmployee lists assets the store assigns to employeeID that the index
// is missing, and index entries the store no longer backs. The employee
// does not need to exist: stale entries for deleted employees are reported.
func (s *IndexAudit) CheckEmployee(ctx context.Context, employeeID string) (IndexDrift, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return IndexDrift{}, domain.Invalid("employee id is required")
	}
	ctx = logger.WithLogger(ctx, map[string]interface{}{"operation": "index_audit", "employee_id": employeeID})
	drift := IndexDrift{EmployeeID: employeeID}

	stored := make(map[string]bool)
	for _, kind := range domain.AllKinds {
		assets, err := readWithRetry(ctx, s.reads, "asset", "", "list "+string(kind), func() ([]domain.Asset, error) {
			return s.assets.FindAllByKind(ctx, kind)
		})
		if err != nil {
			return drift, err
		}
		for _, a := range assets {
			if a.AssignedTo == employeeID {
				stored[indexRef(kind, a.ID)] = true
			}
		}
	}

	indexed, err := readWithRetry(ctx, s.reads, "employee", employeeID, "search ownership index", func() ([]domain.Asset, error) {
		return s.index.AssetsOwnedBy(ctx, employeeID)
	})
	if err != nil {
		return drift, err
	}

	seen := make(map[string]bool, len(indexed))
	for _, a := range indexed {
		ref := indexRef(a.Kind, a.ID)
		if seen[ref] {
			continue
		}
		seen[ref] = true
		if !stored[ref] {
			drift.Stale = append(drift.Stale, ref)
		}
	}
	for ref := range stored {
		if !seen[ref] {
			drift.Missing = append(drift.Missing, ref)
		}
	}
	sort.Strings(drift.Missing)
	sort.Strings(drift.Stale)
	drift.Stored, drift.Indexed = len(stored), len(seen)

	if !drift.Consistent() {
		logger.WarnLog(ctx, "ownership index drift: %d missing, %d stale", len(drift.Missing), len(drift.Stale))
	}
	return drift, nil
}

func indexRef(kind domain.AssetKind, id string) string {
	return string(kind) + ":" + id
}
