// Package serviceutils holds the JSON envelope shared by HTTP handlers.
package serviceutils

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/asset_management/internal/domain"
	"github.com/locvowork/asset_management/internal/logger"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// ResponseSuccess writes a successful envelope.
func ResponseSuccess(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// ResponseError writes a failed envelope with an explicit status.
func ResponseError(c echo.Context, status int, message string, err error) error {
	resp := Response{Message: message}
	if err != nil {
		resp.Error = err.Error()
		resp.Code = string(domain.CodeOf(err))
	}
	if status >= http.StatusInternalServerError {
		logger.ErrorLog(c.Request().Context(), message, err)
		// store details stay in the log
		resp.Error = http.StatusText(status)
	}
	return c.JSON(status, resp)
}

// ResponseDomainError picks the status from the failure taxonomy.
func ResponseDomainError(c echo.Context, message string, err error) error {
	return ResponseError(c, StatusFromError(err), message, err)
}

// StatusFromError maps a taxonomy error to an HTTP status. Caller mistakes
// are 4xx, store faults and unknown errors are 500.
func StatusFromError(err error) int {
	switch domain.CodeOf(err) {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict, domain.CodeInvalidKind, domain.CodeInvalid:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
