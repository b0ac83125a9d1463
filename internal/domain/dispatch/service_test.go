package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ems/ems/internal/domain/triage"
)

// -- Mock Repository --

type mockRepo struct {
	cases     map[int64]*Case
	nextID    int64
	createErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{cases: make(map[int64]*Case)}
}

func copyCase(c *Case) *Case {
	dup := *c
	dup.RejectedHistory = append([]string(nil), c.RejectedHistory...)
	return &dup
}

func (m *mockRepo) Create(_ context.Context, c *Case) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	c.ID = m.nextID
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = c.CreatedAt
	m.cases[c.ID] = copyCase(c)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Case, error) {
	c, ok := m.cases[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyCase(c), nil
}

func (m *mockRepo) UpdateRouting(_ context.Context, c *Case) error {
	if _, ok := m.cases[c.ID]; !ok {
		return ErrNotFound
	}
	m.cases[c.ID] = copyCase(c)
	return nil
}

func (m *mockRepo) SetAcceptanceStatus(_ context.Context, id int64, status string) error {
	c, ok := m.cases[id]
	if !ok {
		return ErrNotFound
	}
	c.AcceptanceStatus = status
	return nil
}

func (m *mockRepo) List(_ context.Context, limit int) ([]*Case, error) {
	var result []*Case
	for _, c := range m.cases {
		result = append(result, copyCase(c))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockRepo) Count(_ context.Context) (int, error) {
	return len(m.cases), nil
}

// -- Tests --

var testNoon = time.Date(2025, 3, 14, 12, 0, 0, 0, time.Local)

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	svc := NewService(repo, "Station Road, Yelahanka", zerolog.Nop())
	svc.now = func() time.Time { return testNoon }
	return svc, repo
}

func TestAnalyze_CriticalReading(t *testing.T) {
	svc, repo := newTestService()

	res, err := svc.Analyze(context.Background(), AnalyzeInput{
		Vitals:   "70,190,110,135,85,101,27",
		Symptoms: "severe chest pain",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Prediction != "Likely Critical — Immediate attention advised" {
		t.Errorf("prediction = %q", res.Prediction)
	}
	if !res.IsCritical {
		t.Error("expected critical")
	}
	if res.DashboardStatus != "HIGH PRIORITY" || res.CriticalCount != 3 {
		t.Errorf("dashboard = %q/%d, want HIGH PRIORITY/3", res.DashboardStatus, res.CriticalCount)
	}
	if res.Route == nil {
		t.Fatal("expected a route")
	}
	if res.Route.Name != "SPARSH Hospital" {
		t.Errorf("route = %q, want SPARSH Hospital", res.Route.Name)
	}
	if res.Route.DistanceKm != "6.0" {
		t.Errorf("distance_km = %q, want 6.0", res.Route.DistanceKm)
	}
	if res.Route.SimulatedETA != 9 {
		t.Errorf("simulated_eta = %d, want 9", res.Route.SimulatedETA)
	}
	if res.CaseID == nil {
		t.Fatal("expected a case id")
	}

	stored := repo.cases[*res.CaseID]
	if stored.MEWSScore != 9 {
		t.Errorf("stored mews = %d, want 9", stored.MEWSScore)
	}
	if stored.AcceptanceStatus != StatusAwaiting {
		t.Errorf("stored status = %q, want %q", stored.AcceptanceStatus, StatusAwaiting)
	}
	var trend map[string][]json.Number
	if err := json.Unmarshal([]byte(stored.VitalsTrend), &trend); err != nil {
		t.Fatalf("stored trend is not JSON: %v", err)
	}
	if len(trend["hr_trend"]) != 5 {
		t.Errorf("trend points = %d, want 5", len(trend["hr_trend"]))
	}
}

func TestAnalyze_StableReading(t *testing.T) {
	svc, _ := newTestService()

	res, err := svc.Analyze(context.Background(), AnalyzeInput{Vitals: "40,120,80,80,98,36.6,16"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Prediction != "Stable / Non-critical" {
		t.Errorf("prediction = %q", res.Prediction)
	}
	if res.IsCritical {
		t.Error("expected non-critical")
	}
	if res.DashboardStatus != "STANDARD PRIORITY" || res.CriticalCount != 1 {
		t.Errorf("dashboard = %q/%d, want STANDARD PRIORITY/1", res.DashboardStatus, res.CriticalCount)
	}
	if res.Route == nil || res.CaseID == nil {
		t.Fatal("stable readings still get a route and a case")
	}
}

func TestAnalyze_NoVitals(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Analyze(context.Background(), AnalyzeInput{Vitals: "   "}); !errors.Is(err, ErrNoVitals) {
		t.Fatalf("err = %v, want ErrNoVitals", err)
	}
}

func TestAnalyze_UndeterminedReading(t *testing.T) {
	svc, repo := newTestService()

	res, err := svc.Analyze(context.Background(), AnalyzeInput{Vitals: "N/A,N/A,N/A,N/A,N/A,N/A,N/A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Prediction != "UNDETERMINED" {
		t.Errorf("prediction = %q, want UNDETERMINED", res.Prediction)
	}
	if res.IsCritical {
		t.Error("undetermined readings are non-critical")
	}
	if res.CaseID == nil {
		t.Fatal("undetermined readings are still dispatched and saved")
	}
	if repo.cases[*res.CaseID].MEWSScore != 0 {
		t.Errorf("mews = %d, want 0", repo.cases[*res.CaseID].MEWSScore)
	}
}

type stubAdvisor struct {
	verdict string
	err     error
	seen    triage.Vitals
}

func (a *stubAdvisor) Classify(_ context.Context, v triage.Vitals) (string, error) {
	a.seen = v
	return a.verdict, a.err
}

func TestAnalyze_AdvisorVerdictAnnotates(t *testing.T) {
	svc, _ := newTestService()
	adv := &stubAdvisor{verdict: "Critical"}
	svc.advisor = adv

	res, err := svc.Analyze(context.Background(), AnalyzeInput{Vitals: "70,190,110,135,85,101,27"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ModelVerdict != "Critical" {
		t.Errorf("model verdict = %q, want Critical", res.ModelVerdict)
	}
	if len(adv.seen) != triage.FieldCount {
		t.Errorf("advisor saw %d fields, want %d", len(adv.seen), triage.FieldCount)
	}
}

func TestAnalyze_AdvisorFailureIgnored(t *testing.T) {
	svc, _ := newTestService()
	svc.advisor = &stubAdvisor{err: errors.New("classifier down")}

	res, err := svc.Analyze(context.Background(), AnalyzeInput{Vitals: "40,120,80,80,98,36.6,16"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ModelVerdict != "" {
		t.Errorf("model verdict = %q, want empty", res.ModelVerdict)
	}
	if res.Route == nil || res.CaseID == nil {
		t.Fatal("dispatch must not depend on the classifier")
	}
}

func TestAnalyze_PersistenceFailureStillRoutes(t *testing.T) {
	svc, repo := newTestService()
	repo.createErr = errors.New("disk full")

	res, err := svc.Analyze(context.Background(), AnalyzeInput{Vitals: "40,120,80,80,98,36.6,16"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Route == nil {
		t.Error("route must survive a persistence failure")
	}
	if res.CaseID != nil {
		t.Error("case id must be nil when the case was not saved")
	}
}

func TestAnalyze_DefaultOrigin(t *testing.T) {
	svc, repo := newTestService()

	res, err := svc.Analyze(context.Background(), AnalyzeInput{Vitals: "40,120,80,80,98,36.6,16"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Route.OriginAddress != "Station Road, Yelahanka" {
		t.Errorf("origin = %q, want station default", res.Route.OriginAddress)
	}
	if repo.cases[*res.CaseID].OriginAddress != "Station Road, Yelahanka" {
		t.Error("stored origin must match the default")
	}
}

func analyzeCase(t *testing.T, svc *Service) int64 {
	t.Helper()
	res, err := svc.Analyze(context.Background(), AnalyzeInput{Vitals: "40,120,80,80,98,36.6,16"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.CaseID == nil {
		t.Fatal("analyze did not save a case")
	}
	return *res.CaseID
}

func TestSuggestAlternative(t *testing.T) {
	svc, repo := newTestService()
	id := analyzeCase(t, svc)
	repo.cases[id].AcceptanceStatus = StatusRejected

	route, err := svc.SuggestAlternative(context.Background(), id, "SPARSH Hospital")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route.Name != "Navya Multispeciality Hospital" {
		t.Errorf("new hospital = %q, want Navya Multispeciality Hospital", route.Name)
	}
	if route.SimulatedETA != 11 {
		t.Errorf("eta = %d, want 11", route.SimulatedETA)
	}

	c := repo.cases[id]
	if c.HospitalName != "Navya Multispeciality Hospital" {
		t.Errorf("stored hospital = %q", c.HospitalName)
	}
	if c.AcceptanceStatus != StatusAwaiting {
		t.Errorf("status = %q, want reset to %q", c.AcceptanceStatus, StatusAwaiting)
	}
	if len(c.RejectedHistory) != 1 || c.RejectedHistory[0] != "SPARSH Hospital" {
		t.Errorf("history = %v, want [SPARSH Hospital]", c.RejectedHistory)
	}
}

func TestSuggestAlternative_DuplicateRejection(t *testing.T) {
	svc, repo := newTestService()
	id := analyzeCase(t, svc)

	if _, err := svc.SuggestAlternative(context.Background(), id, "SPARSH Hospital"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.SuggestAlternative(context.Background(), id, "SPARSH Hospital"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := repo.cases[id].RejectedHistory; len(got) != 1 {
		t.Errorf("history = %v, want a single entry", got)
	}
}

func TestSuggestAlternative_NeverReturnsRejected(t *testing.T) {
	svc, repo := newTestService()
	id := analyzeCase(t, svc)

	seen := map[string]bool{}
	rejected := repo.cases[id].HospitalName
	for i := 0; i < 5; i++ {
		route, err := svc.SuggestAlternative(context.Background(), id, rejected)
		if err != nil {
			t.Fatalf("reroute %d: %v", i, err)
		}
		if seen[route.Name] {
			t.Fatalf("hospital %q offered twice", route.Name)
		}
		seen[route.Name] = true
		rejected = route.Name
	}
}

func TestSuggestAlternative_Exhausted(t *testing.T) {
	svc, repo := newTestService()
	id := analyzeCase(t, svc)

	var last string
	for i := 0; i < 5; i++ {
		route, err := svc.SuggestAlternative(context.Background(), id, repo.cases[id].HospitalName)
		if err != nil {
			t.Fatalf("reroute %d: %v", i, err)
		}
		last = route.Name
	}
	before := copyCase(repo.cases[id])

	_, err := svc.SuggestAlternative(context.Background(), id, last)
	if !errors.Is(err, ErrNoHospitals) {
		t.Fatalf("err = %v, want ErrNoHospitals", err)
	}

	after := repo.cases[id]
	if after.HospitalName != before.HospitalName || after.AcceptanceStatus != before.AcceptanceStatus {
		t.Error("exhausted reroute must not mutate the case")
	}
	if len(after.RejectedHistory) != len(before.RejectedHistory) {
		t.Errorf("history grew on exhaustion: %v", after.RejectedHistory)
	}
}

func TestSuggestAlternative_NotFound(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.SuggestAlternative(context.Background(), 99, "SPARSH Hospital"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestReceiveStatus(t *testing.T) {
	svc, repo := newTestService()
	id := analyzeCase(t, svc)

	if err := svc.ReceiveStatus(context.Background(), id, StatusAccepted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.cases[id].AcceptanceStatus != StatusAccepted {
		t.Errorf("status = %q, want %q", repo.cases[id].AcceptanceStatus, StatusAccepted)
	}

	// The ambulance side stores what the hospital sent, verbatim.
	if err := svc.ReceiveStatus(context.Background(), id, "something else"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.cases[id].AcceptanceStatus != "something else" {
		t.Errorf("status = %q, want verbatim value", repo.cases[id].AcceptanceStatus)
	}
}

func TestReceiveStatus_NotFound(t *testing.T) {
	svc, _ := newTestService()

	if err := svc.ReceiveStatus(context.Background(), 42, StatusAccepted); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStatus(t *testing.T) {
	svc, _ := newTestService()
	id := analyzeCase(t, svc)

	status, err := svc.Status(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != StatusAwaiting {
		t.Errorf("status = %q, want %q", status, StatusAwaiting)
	}

	if _, err := svc.Status(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListCases_NewestFirst(t *testing.T) {
	svc, repo := newTestService()
	base := testNoon
	for i := 0; i < 3; i++ {
		repo.nextID++
		repo.cases[repo.nextID] = &Case{
			ID:               repo.nextID,
			VitalsSnapshot:   "40,120,80,80,98,36.6,16",
			AcceptanceStatus: StatusAwaiting,
			CreatedAt:        base.Add(time.Duration(i) * time.Minute),
		}
	}

	cases, err := svc.ListCases(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("len = %d, want 2", len(cases))
	}
	if !cases[0].CreatedAt.After(cases[1].CreatedAt) {
		t.Error("expected newest first")
	}
}
