package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/asset_management/internal/domain"
	"github.com/locvowork/asset_management/internal/service"
	"github.com/locvowork/asset_management/internal/service/serviceutils"
)

type EmployeeHandler struct {
	svc *service.EmployeeService
}

func NewEmployeeHandler(svc *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

func (h *EmployeeHandler) CreateHandler(c echo.Context) error {
	var req domain.Employee
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	if err := h.svc.Create(c.Request().Context(), &req); err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to create employee", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Employee created successfully", req)
}

func (h *EmployeeHandler) GetHandler(c echo.Context) error {
	emp, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to get employee", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employee retrieved successfully", emp)
}

func (h *EmployeeHandler) UpdateHandler(c echo.Context) error {
	var req domain.Employee
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	req.ID = c.Param("id")

	if err := h.svc.Update(c.Request().Context(), &req); err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to update employee", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employee updated successfully", req)
}

func (h *EmployeeHandler) DeleteHandler(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to delete employee", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employee deleted successfully", nil)
}

func (h *EmployeeHandler) ListHandler(c echo.Context) error {
	employees, err := h.svc.List(c.Request().Context())
	if err != nil {
		return serviceutils.ResponseDomainError(c, "Failed to list employees", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employees listed successfully", employees)
}

// RegisterRoutes mounts the employee CRUD endpoints.
func (h *EmployeeHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/employees", h.CreateHandler)
	e.GET("/employees", h.ListHandler)
	e.GET("/employees/:id", h.GetHandler)
	e.PUT("/employees/:id", h.UpdateHandler)
	e.DELETE("/employees/:id", h.DeleteHandler)
}
