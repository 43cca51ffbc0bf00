package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/asset_management/internal/service"
	"github.com/locvowork/asset_management/internal/service/serviceutils"
)

// AssignmentHandler exposes ownership transitions, the reconciliation sweep
// and the deletion guards. Callers are assumed to be authorized upstream.
type AssignmentHandler struct {
	assignments *service.AssignmentService
	sweep       *service.ReconcileService
	guard       *service.DeletionGuard
}

func NewAssignmentHandler(assignments *service.AssignmentService, sweep *service.ReconcileService, guard *service.DeletionGuard) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, sweep: sweep, guard: guard}
}

func (h *AssignmentHandler) AssignHandler(c echo.Context) error {
	a, err := h.assignments.Assign(c.Request().Context(), c.Param("employeeId"), c.Param("kind"), c.Param("assetId"))
	if err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to assign asset", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Asset assigned successfully", a)
}

func (h *AssignmentHandler) UnassignHandler(c echo.Context) error {
	a, err := h.assignments.Unassign(c.Request().Context(), c.Param("employeeId"), c.Param("kind"), c.Param("assetId"))
	if err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to unassign asset", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Asset unassigned successfully", a)
}

func (h *AssignmentHandler) ReconcileHandler(c echo.Context) error {
	res, err := h.sweep.ReconcileAssignmentStatus(c.Request().Context(), c.Param("kind"))
	if err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to reconcile assignment status", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Assignment status reconciled", res)
}

func (h *AssignmentHandler) EmployeeDeletableHandler(c echo.Context) error {
	d, err := h.guard.CanDeleteEmployee(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to check employee deletion", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Deletion check completed", d)
}

func (h *AssignmentHandler) AssetDeletableHandler(c echo.Context) error {
	d, err := h.guard.CanDeleteAsset(c.Request().Context(), c.Param("kind"), c.Param("id"))
	if err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to check asset deletion", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Deletion check completed", d)
}

// RegisterRoutes mounts the ownership endpoints.
func (h *AssignmentHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/employees/:employeeId/assets/:kind/:assetId", h.AssignHandler)
	e.DELETE("/employees/:employeeId/assets/:kind/:assetId", h.UnassignHandler)
	e.POST("/assets/:kind/reconcile", h.ReconcileHandler)
	e.GET("/employees/:id/deletable", h.EmployeeDeletableHandler)
	e.GET("/assets/:kind/:id/deletable", h.AssetDeletableHandler)
}
