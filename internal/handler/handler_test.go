package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/asset_management/internal/database"
	"github.com/locvowork/asset_management/internal/domain"
	"github.com/locvowork/asset_management/internal/service"
	"github.com/locvowork/asset_management/internal/service/serviceutils"
)

type testEnv struct {
	e         *echo.Echo
	assets    *database.MemoryAssetStore
	assign    *AssignmentHandler
	employees *EmployeeHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	assets := database.NewMemoryAssetStore()
	employees := database.NewMemoryEmployeeStore()

	require.NoError(t, employees.Save(ctx, &domain.Employee{ID: "alice", Name: "Alice", EmployeeID: "E-1", Email: "alice@corp.io", Status: domain.EmployeeActive}))
	require.NoError(t, employees.Save(ctx, &domain.Employee{ID: "bob", Name: "Bob", EmployeeID: "E-2", Email: "bob@corp.io", Status: domain.EmployeeActive}))
	require.NoError(t, assets.Save(ctx, &domain.Asset{ID: "dev-1", Kind: domain.KindDevice, Status: domain.StatusAvailable}))

	reads := service.ReadRetry{}
	guard := service.NewDeletionGuard(assets, employees, reads)
	env := &testEnv{
		e:      echo.New(),
		assets: assets,
		assign: NewAssignmentHandler(
			service.NewAssignmentService(assets, employees, nil, reads),
			service.NewReconcileService(assets, reads, 2),
			guard,
		),
		employees: NewEmployeeHandler(service.NewEmployeeService(employees, guard, reads)),
	}
	env.assign.RegisterRoutes(env.e)
	env.employees.RegisterRoutes(env.e)
	return env
}

func (env *testEnv) call(method, path, body string) (*httptest.ResponseRecorder, serviceutils.Response) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	var resp serviceutils.Response
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func TestAssignHandlerStatusMapping(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.call(http.MethodPost, "/employees/alice/assets/device/dev-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	rec, resp = env.call(http.MethodPost, "/employees/bob/assets/device/dev-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "owned by employee Alice", resp.Error)
	assert.Equal(t, string(domain.CodeConflict), resp.Code)

	rec, _ = env.call(http.MethodPost, "/employees/ghost/assets/device/dev-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp = env.call(http.MethodPost, "/employees/bob/assets/printer/dev-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(domain.CodeInvalidKind), resp.Code)

	rec, _ = env.call(http.MethodDelete, "/employees/alice/assets/device/dev-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReconcileHandler(t *testing.T) {
	env := newTestEnv(t)
	drifted := domain.Asset{ID: "dev-2", Kind: domain.KindDevice, Status: domain.StatusAvailable, AssignedTo: "bob"}
	require.NoError(t, env.assets.Save(context.Background(), &drifted))

	rec, resp := env.call(http.MethodPost, "/assets/device/reconcile", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 2, data["total"])
	assert.EqualValues(t, 1, data["updated"])
}

func TestDeletableHandlers(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.call(http.MethodGet, "/employees/bob/deletable", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{"allowed": true}, resp.Data)

	rec, _ = env.call(http.MethodGet, "/assets/device/nope/deletable", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmployeeHandlers(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.call(http.MethodPost, "/employees", `{"name":"Dana","employeeId":"E-9","email":"dana@corp.io","status":"active","manager":"alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := resp.Data.(map[string]interface{})
	assert.NotEmpty(t, created["id"])

	rec, resp = env.call(http.MethodPut, "/employees/bob", `{"name":"Bob","employeeId":"E-2","email":"bob@corp.io","status":"active","manager":"bob"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "employee cannot be their own manager", resp.Error)

	rec, _ = env.call(http.MethodPost, "/employees", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, _ = env.call(http.MethodPost, "/employees/bob/assets/device/dev-1", "")
	rec, resp = env.call(http.MethodDelete, "/employees/bob", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "employee still owns 1 assets", resp.Error)
}
