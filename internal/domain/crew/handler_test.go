package crew

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler(caseCount int) (*Handler, *echo.Echo) {
	svc, _ := newTestService(caseCount)
	return NewHandler(svc), echo.New()
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return body
}

const registerBody = `{"crew_name":"unit-7","password":"field-pass","hospital_name":"SPARSH Hospital","hospital_id":"H-001"}`

func TestHandler_Register(t *testing.T) {
	h, e := newTestHandler(0)
	c, rec := postJSON(e, "/api/register", registerBody)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if decodeBody(t, rec)["message"] != "Registration successful. Please log in." {
		t.Error("unexpected message")
	}
}

func TestHandler_Register_MissingFields(t *testing.T) {
	h, e := newTestHandler(0)
	c, rec := postJSON(e, "/api/register", `{"crew_name":"unit-7"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_Register_Duplicate(t *testing.T) {
	h, e := newTestHandler(0)
	c, _ := postJSON(e, "/api/register", registerBody)
	if err := h.Register(c); err != nil {
		t.Fatalf("first register: %v", err)
	}

	c, rec := postJSON(e, "/api/register", registerBody)
	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if decodeBody(t, rec)["message"] != "Crew Name already registered. Please log in." {
		t.Error("unexpected message")
	}
}

func TestHandler_Login(t *testing.T) {
	h, e := newTestHandler(0)
	c, _ := postJSON(e, "/api/register", registerBody)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}

	c, rec := postJSON(e, "/api/login", `{"crew_name":"unit-7","password":"field-pass"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != "Welcome, unit-7!" {
		t.Errorf("message = %v", body["message"])
	}
	if token, _ := body["token"].(string); token == "" {
		t.Error("expected a token")
	}
}

func TestHandler_Login_BadCredentials(t *testing.T) {
	h, e := newTestHandler(0)

	c, rec := postJSON(e, "/api/login", `{"crew_name":"ghost","password":"nope"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if decodeBody(t, rec)["message"] != "Invalid Crew Name or Password." {
		t.Error("unexpected message")
	}
}

func TestHandler_Metrics(t *testing.T) {
	h, e := newTestHandler(3)
	c, _ := postJSON(e, "/api/register", registerBody)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	rec := httptest.NewRecorder()
	if err := h.Metrics(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["user_count"] != float64(1) {
		t.Errorf("user_count = %v", body["user_count"])
	}
	if body["patient_count"] != float64(3) {
		t.Errorf("patient_count = %v", body["patient_count"])
	}
}
