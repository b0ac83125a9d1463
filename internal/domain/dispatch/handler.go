package dispatch

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ems/ems/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/analyze", h.Analyze)
	api.POST("/suggest-alternative/:case_id", h.SuggestAlternative)
	api.POST("/receive_hospital_update/:case_id", h.ReceiveHospitalUpdate)
	api.GET("/get_case_status/:case_id", h.GetCaseStatus)
	api.GET("/cases", h.ListCases)
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, errorResponse{Success: false, Message: msg})
}

func caseID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("case_id"), 10, 64)
}

type analyzeRequest struct {
	Vitals          string  `json:"vitals"`
	Symptoms        string  `json:"symptoms"`
	CurrentLocation string  `json:"current_location"`
	CrewName        *string `json:"crew_name"`
}

type analyzeResponse struct {
	Success         bool        `json:"success"`
	Prediction      string      `json:"prediction"`
	IsCritical      bool        `json:"is_critical"`
	Route           interface{} `json:"route"`
	DashboardStatus string      `json:"dashboard_status"`
	CriticalCount   int         `json:"critical_count"`
	NewCaseID       *int64      `json:"new_case_id"`
	ModelVerdict    string      `json:"model_verdict,omitempty"`
}

func (h *Handler) Analyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.Analyze(c.Request().Context(), AnalyzeInput{
		Vitals:          req.Vitals,
		Symptoms:        req.Symptoms,
		CurrentLocation: req.CurrentLocation,
		CrewName:        req.CrewName,
	})
	if err != nil {
		if errors.Is(err, ErrNoVitals) {
			return fail(c, http.StatusBadRequest, "Vitals data is missing.")
		}
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	resp := analyzeResponse{
		Success:         true,
		Prediction:      res.Prediction,
		IsCritical:      res.IsCritical,
		Route:           struct{}{},
		DashboardStatus: res.DashboardStatus,
		CriticalCount:   res.CriticalCount,
		NewCaseID:       res.CaseID,
		ModelVerdict:    res.ModelVerdict,
	}
	if res.Route != nil {
		resp.Route = res.Route
	}
	return c.JSON(http.StatusOK, resp)
}

type suggestAlternativeRequest struct {
	CurrentHospital string `json:"current_hospital"`
}

func (h *Handler) SuggestAlternative(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return fail(c, http.StatusNotFound, "Case not found.")
	}
	var req suggestAlternativeRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	route, err := h.svc.SuggestAlternative(c.Request().Context(), id, req.CurrentHospital)
	switch {
	case errors.Is(err, ErrNotFound):
		return fail(c, http.StatusNotFound, "Case not found.")
	case errors.Is(err, ErrNoHospitals):
		return fail(c, http.StatusNotFound, "No other hospitals available in network.")
	case err != nil:
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":      true,
		"new_hospital": route,
	})
}

type hospitalUpdateRequest struct {
	Status string `json:"status"`
}

func (h *Handler) ReceiveHospitalUpdate(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return fail(c, http.StatusNotFound, "Case not found.")
	}
	var req hospitalUpdateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	if err := h.svc.ReceiveStatus(c.Request().Context(), id, req.Status); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fail(c, http.StatusNotFound, "Case not found.")
		}
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Status updated for Case " + strconv.FormatInt(id, 10),
	})
}

func (h *Handler) GetCaseStatus(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]interface{}{"success": false, "status": "NOT_FOUND"})
	}
	status, err := h.svc.Status(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{"success": false, "status": "NOT_FOUND"})
		}
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "status": status})
}

type caseSummary struct {
	ID               int64   `json:"id"`
	Timestamp        string  `json:"timestamp"`
	CrewName         *string `json:"crew_name"`
	Vitals           string  `json:"vitals"`
	Hospital         string  `json:"hospital"`
	ETAMin           int     `json:"eta_min"`
	AcceptanceStatus string  `json:"acceptance_status"`
}

func (h *Handler) ListCases(c echo.Context) error {
	pg := pagination.FromContext(c)
	cases, err := h.svc.ListCases(c.Request().Context(), pg.Limit)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error retrieving cases: "+err.Error())
	}
	summaries := make([]caseSummary, 0, len(cases))
	for _, cs := range cases {
		summaries = append(summaries, caseSummary{
			ID:               cs.ID,
			Timestamp:        cs.CreatedAt.Format("2006-01-02 15:04:05"),
			CrewName:         cs.CrewName,
			Vitals:           cs.VitalsSnapshot,
			Hospital:         cs.HospitalName,
			ETAMin:           cs.SimulatedETAMin,
			AcceptanceStatus: cs.AcceptanceStatus,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "cases": summaries})
}
