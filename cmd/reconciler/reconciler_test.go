package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/asset_management/internal/database"
	"github.com/locvowork/asset_management/internal/domain"
	"github.com/locvowork/asset_management/internal/service"
)

// staticIndex serves fixed owner lookups.
type staticIndex map[string][]domain.Asset

func (s staticIndex) AssetsOwnedBy(_ context.Context, employeeID string) ([]domain.Asset, error) {
	return s[employeeID], nil
}

func memoryCore(t *testing.T) coreLoader {
	t.Helper()
	ctx := context.Background()
	assets := database.NewMemoryAssetStore()
	employees := database.NewMemoryEmployeeStore()

	require.NoError(t, employees.Save(ctx, &domain.Employee{ID: "alice", Name: "Alice", Status: domain.EmployeeActive}))
	require.NoError(t, employees.Save(ctx, &domain.Employee{ID: "bob", Name: "Bob", Status: domain.EmployeeActive}))
	require.NoError(t, assets.Save(ctx, &domain.Asset{
		ID: "acc-1", Kind: domain.KindAccount, Status: domain.StatusActive,
		AssignedTo: "alice", AssignmentStatus: domain.AssignmentAvailable,
	}))

	index := staticIndex{
		"alice": {{ID: "acc-1", Kind: domain.KindAccount, AssignedTo: "alice"}},
		"bob":   {{ID: "dev-7", Kind: domain.KindDevice, AssignedTo: "bob"}},
	}

	reads := service.ReadRetry{}
	c := &core{
		sweep: service.NewReconcileService(assets, reads, 2),
		guard: service.NewDeletionGuard(assets, employees, reads),
		audit: service.NewIndexAudit(assets, index, reads),
		close: func() {},
	}
	return func(context.Context) (*core, error) { return c, nil }
}

func run(t *testing.T, load coreLoader, args ...string) (string, error) {
	t.Helper()
	return runContext(t, context.Background(), load, args...)
}

func runContext(t *testing.T, ctx context.Context, load coreLoader, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(load)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestSweepCommand(t *testing.T) {
	load := memoryCore(t)

	out, err := run(t, load, "sweep", "--kind", "account")
	require.NoError(t, err)

	var res service.ReconcileResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 1, res.Updated)

	out, err = run(t, load, "sweep")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Zero(t, res.Updated)
}

func TestSweepCommandReportsPartialCountsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := runContext(t, ctx, memoryCore(t), "sweep", "--kind", "account")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, exitStore, exitCode(err))

	var res service.ReconcileResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, domain.KindAccount, res.Kind)
	assert.Equal(t, 1, res.Total)
}

func TestSweepCommandUnknownKind(t *testing.T) {
	_, err := run(t, memoryCore(t), "sweep", "--kind", "printer")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestCanDeleteCommands(t *testing.T) {
	load := memoryCore(t)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{"employee owning assets", []string{"can-delete", "employee", "alice"}, exitRejected, "employee still owns 1 assets"},
		{"free employee", []string{"can-delete", "employee", "bob"}, exitOK, `"allowed":true`},
		{"assigned account", []string{"can-delete", "asset", "account", "acc-1"}, exitRejected, "asset is assigned to employee Alice"},
		{"missing employee", []string{"can-delete", "employee", "ghost"}, exitUsage, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, load, tt.args...)
			assert.Equal(t, tt.wantCode, exitCode(err))
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

func TestExitCodeOfLoaderFailure(t *testing.T) {
	failing := func(context.Context) (*core, error) {
		return nil, withCode(exitStore, domain.StoreUnavailable("connect", assert.AnError))
	}
	_, err := run(t, failing, "can-delete", "employee", "alice")
	assert.Equal(t, exitStore, exitCode(err))
}

func TestIndexCheckCommand(t *testing.T) {
	load := memoryCore(t)

	tests := []struct {
		name     string
		employee string
		wantCode int
		wantOut  string
	}{
		{"index agrees", "alice", exitOK, `"indexed":1`},
		{"stale entry", "bob", exitRejected, `"stale":["device:dev-7"]`},
		{"blank id", " ", exitUsage, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, load, "index-check", tt.employee)
			assert.Equal(t, tt.wantCode, exitCode(err))
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

func TestIndexCheckWithoutIndex(t *testing.T) {
	noIndex := func(context.Context) (*core, error) {
		return &core{close: func() {}}, nil
	}
	_, err := run(t, noIndex, "index-check", "alice")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
	assert.Contains(t, err.Error(), "ES_URL")
}
