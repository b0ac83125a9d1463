package acceptance

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ems/ems/internal/domain/dispatch"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/update_acceptance/:case_id", h.UpdateAcceptance)
	api.GET("/case_data/:case_id", h.CaseData)
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, errorResponse{Success: false, Message: msg})
}

type updateAcceptanceRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateAcceptance(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("case_id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusNotFound, "Case not found")
	}
	var req updateAcceptanceRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	err = h.svc.UpdateAcceptance(c.Request().Context(), id, req.Status)
	switch {
	case errors.Is(err, ErrInvalidStatus):
		return fail(c, http.StatusBadRequest, "Invalid status provided.")
	case errors.Is(err, dispatch.ErrNotFound):
		return fail(c, http.StatusNotFound, "Case not found")
	case err != nil:
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    fmt.Sprintf("Case %d status updated to %s", id, req.Status),
		"new_status": req.Status,
	})
}

func (h *Handler) CaseData(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("case_id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusNotFound, "Case not found")
	}
	data, err := h.svc.CaseData(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, dispatch.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Case not found")
		}
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, struct {
		Success bool `json:"success"`
		*CaseData
	}{Success: true, CaseData: data})
}
