package crew

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.GET("/metrics", h.Metrics)
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, errorResponse{Success: false, Message: msg})
}

type registerRequest struct {
	CrewName     string `json:"crew_name"`
	Password     string `json:"password"`
	HospitalName string `json:"hospital_name"`
	HospitalID   string `json:"hospital_id"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	err := h.svc.Register(c.Request().Context(), RegisterInput{
		CrewName:     req.CrewName,
		Password:     req.Password,
		HospitalName: req.HospitalName,
		HospitalID:   req.HospitalID,
	})
	switch {
	case errors.Is(err, ErrMissingFields):
		return fail(c, http.StatusBadRequest, "All fields are required for registration.")
	case errors.Is(err, ErrDuplicate):
		return fail(c, http.StatusConflict, "Crew Name already registered. Please log in.")
	case err != nil:
		return fail(c, http.StatusInternalServerError, "Database error during registration: "+err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Registration successful. Please log in.",
	})
}

type loginRequest struct {
	CrewName string `json:"crew_name"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	token, err := h.svc.Login(c.Request().Context(), req.CrewName, req.Password)
	switch {
	case errors.Is(err, ErrMissingFields):
		return fail(c, http.StatusBadRequest, "Name and Password are required.")
	case errors.Is(err, ErrInvalidCredentials):
		return fail(c, http.StatusUnauthorized, "Invalid Crew Name or Password.")
	case err != nil:
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Welcome, " + req.CrewName + "!",
		"token":   token,
	})
}

func (h *Handler) Metrics(c echo.Context) error {
	m, err := h.svc.Metrics(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error retrieving metrics: "+err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":       true,
		"user_count":    m.CrewCount,
		"patient_count": m.CaseCount,
	})
}
