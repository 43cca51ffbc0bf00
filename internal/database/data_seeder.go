package database

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/locvowork/asset_management/internal/domain"
	"github.com/locvowork/asset_management/internal/logger"
	"github.com/locvowork/asset_management/pkg/dataflow"
)

// Fixtures is the YAML layout accepted by the seeder.
type Fixtures struct {
	Employees  []EmployeeFixture `yaml:"employees"`
	Devices    []AssetFixture    `yaml:"devices"`
	Components []AssetFixture    `yaml:"components"`
	Accounts   []AssetFixture    `yaml:"accounts"`
}

type EmployeeFixture struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	EmployeeID string `yaml:"employeeId"`
	Email      string `yaml:"email"`
	Department string `yaml:"department"`
	Position   string `yaml:"position"`
	Status     string `yaml:"status"`
	Manager    string `yaml:"manager"`
}

type AssetFixture struct {
	ID               string `yaml:"id"`
	Name             string `yaml:"name"`
	Type             string `yaml:"type"`
	SerialNumber     string `yaml:"serialNumber"`
	Username         string `yaml:"username"`
	Manufacturer     string `yaml:"manufacturer"`
	Model            string `yaml:"model"`
	Status           string `yaml:"status"`
	AssignedTo       string `yaml:"assignedTo"`
	AssignmentStatus string `yaml:"assignmentStatus"`
	InstalledIn      string `yaml:"installedIn"`
}

func (f AssetFixture) asset(kind domain.AssetKind) domain.Asset {
	return domain.Asset{
		ID:               f.ID,
		Kind:             kind,
		Name:             f.Name,
		Type:             f.Type,
		SerialNumber:     f.SerialNumber,
		Username:         f.Username,
		Manufacturer:     f.Manufacturer,
		Model:            f.Model,
		Status:           f.Status,
		AssignedTo:       f.AssignedTo,
		AssignmentStatus: f.AssignmentStatus,
		InstalledIn:      f.InstalledIn,
	}
}

// LoadFixtures decodes fixtures from r.
func LoadFixtures(r io.Reader) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode fixtures: %w", err)
	}
	return &f, nil
}

// LoadFixturesFile decodes fixtures from a YAML file.
func LoadFixturesFile(path string) (*Fixtures, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return LoadFixtures(file)
}

// Assets flattens the three asset lists, tagging each with its kind.
func (f *Fixtures) Assets() []domain.Asset {
	assets := make([]domain.Asset, 0, len(f.Devices)+len(f.Components)+len(f.Accounts))
	for _, d := range f.Devices {
		assets = append(assets, d.asset(domain.KindDevice))
	}
	for _, c := range f.Components {
		assets = append(assets, c.asset(domain.KindComponent))
	}
	for _, a := range f.Accounts {
		assets = append(assets, a.asset(domain.KindAccount))
	}
	return assets
}

// SeedStats reports what a seed run wrote.
type SeedStats struct {
	Employees int
	Assets    int
}

// IndexAdmin is implemented by ownership indexes that can load many
// documents at once and be dropped wholesale.
type IndexAdmin interface {
	BulkIndexAssets(ctx context.Context, assets []domain.Asset) error
	DeleteIndex(ctx context.Context) error
}

// BatchSaver is implemented by stores with a multi-document write.
type BatchSaver interface {
	BatchSave(ctx context.Context, assets []domain.Asset) error
}

// DataSeeder writes fixtures through the repository interfaces, so it
// works against every backend.
type DataSeeder struct {
	employees domain.EmployeeRepository
	assets    domain.AssetRepository
	indexer   domain.AssetIndexer
	workers   int
}

func NewDataSeeder(employees domain.EmployeeRepository, assets domain.AssetRepository, indexer domain.AssetIndexer, workers int) *DataSeeder {
	if indexer == nil {
		indexer = domain.NopIndexer{}
	}
	return &DataSeeder{employees: employees, assets: assets, indexer: indexer, workers: workers}
}

// SeedData writes employees first and then assets. Owner references that
// point at unknown employees are written as-is and logged.
func (ds *DataSeeder) SeedData(ctx context.Context, f *Fixtures) (SeedStats, error) {
	start := time.Now()
	now := start.UTC()

	known := make(map[string]bool, len(f.Employees))
	for _, ef := range f.Employees {
		e := domain.Employee{
			ID:         ef.ID,
			Name:       ef.Name,
			EmployeeID: ef.EmployeeID,
			Email:      ef.Email,
			Department: ef.Department,
			Position:   ef.Position,
			Status:     ef.Status,
			Manager:    ef.Manager,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := ds.employees.Save(ctx, &e); err != nil {
			return SeedStats{}, fmt.Errorf("failed to insert employee %s: %w", e.ID, err)
		}
		known[e.ID] = true
	}

	assets := f.Assets()
	for i, a := range assets {
		if a.AssignedTo != "" && !known[a.AssignedTo] {
			logger.WarnLog(ctx, "%s %s is assigned to unknown employee %s", a.Kind, a.ID, a.AssignedTo)
		}
		assets[i].UpdatedAt = now
	}
	if err := ds.saveAssets(ctx, assets); err != nil {
		return SeedStats{}, err
	}
	ds.indexAssets(ctx, assets)

	stats := SeedStats{Employees: len(f.Employees), Assets: len(assets)}
	logger.InfoLog(ctx, "Seeded %d employees and %d assets in %v", stats.Employees, stats.Assets, time.Since(start))
	return stats, nil
}

// ClearData deletes every asset, drops the ownership index when the
// indexer supports it, and then deletes every employee.
func (ds *DataSeeder) ClearData(ctx context.Context) error {
	streams := make([]dataflow.Stream[domain.Asset], 0, len(domain.AllKinds))
	for _, kind := range domain.AllKinds {
		assets, err := ds.assets.FindAllByKind(ctx, kind)
		if err != nil {
			return fmt.Errorf("failed to list %s assets: %w", kind, err)
		}
		for i := range assets {
			assets[i].Kind = kind
		}
		streams = append(streams, dataflow.From(ctx, assets...))
	}

	err := dataflow.ForEach(ctx, dataflow.FanIn(ctx, streams...), func(ctx context.Context, a domain.Asset) error {
		if err := ds.assets.Delete(ctx, a.Kind, a.ID); err != nil {
			return fmt.Errorf("failed to delete %s %s: %w", a.Kind, a.ID, err)
		}
		return nil
	}, dataflow.WithWorkers(ds.workers))
	if err != nil {
		return err
	}

	if admin, ok := ds.indexer.(IndexAdmin); ok {
		if err := admin.DeleteIndex(ctx); err != nil {
			return fmt.Errorf("failed to drop ownership index: %w", err)
		}
	}

	employees, err := ds.employees.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list employees: %w", err)
	}
	for _, e := range employees {
		if err := ds.employees.Delete(ctx, e.ID); err != nil {
			return fmt.Errorf("failed to delete employee %s: %w", e.ID, err)
		}
	}

	logger.InfoLog(ctx, "Cleared all assets and employees")
	return nil
}

func (ds *DataSeeder) saveAssets(ctx context.Context, assets []domain.Asset) error {
	if bs, ok := ds.assets.(BatchSaver); ok {
		if err := bs.BatchSave(ctx, assets); err != nil {
			return fmt.Errorf("failed to batch insert assets: %w", err)
		}
		return nil
	}

	return dataflow.ForEach(ctx, dataflow.From(ctx, assets...), func(ctx context.Context, a domain.Asset) error {
		if err := ds.assets.Save(ctx, &a); err != nil {
			return fmt.Errorf("failed to insert %s %s: %w", a.Kind, a.ID, err)
		}
		return nil
	}, dataflow.WithWorkers(ds.workers))
}

// indexAssets is best-effort: the store is already written.
func (ds *DataSeeder) indexAssets(ctx context.Context, assets []domain.Asset) {
	if admin, ok := ds.indexer.(IndexAdmin); ok {
		if err := admin.BulkIndexAssets(ctx, assets); err != nil {
			logger.WarnLog(ctx, "failed to bulk index %d assets", len(assets), err)
		}
		return
	}

	_ = dataflow.ForEach(ctx, dataflow.From(ctx, assets...), func(ctx context.Context, a domain.Asset) error {
		if err := ds.indexer.IndexAsset(ctx, a); err != nil {
			logger.WarnLog(ctx, "failed to index %s %s", a.Kind, a.ID, err)
		}
		return nil
	}, dataflow.WithWorkers(ds.workers))
}
