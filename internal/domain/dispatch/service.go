package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ems/ems/internal/domain/hospital"
	"github.com/ems/ems/internal/domain/routing"
	"github.com/ems/ems/internal/domain/triage"
)

// ErrNoVitals is returned by Analyze when the request carries no vitals
// string at all.
var ErrNoVitals = errors.New("vitals data is missing")

// ErrNoHospitals is returned by SuggestAlternative when every hospital in
// the network has already rejected the case.
var ErrNoHospitals = errors.New("no other hospitals available in network")

// Advisor is an optional external classifier consulted during Analyze.
// Its verdict only annotates the result; failures never block dispatch.
type Advisor interface {
	Classify(ctx context.Context, v triage.Vitals) (string, error)
}

// AnalyzeInput is one incoming patient reading from the field client.
type AnalyzeInput struct {
	Vitals          string
	Symptoms        string
	CurrentLocation string
	CrewName        *string
}

// RouteInfo is the hospital assignment as serialized to the field client.
type RouteInfo struct {
	Name          string          `json:"name"`
	Specialty     string          `json:"specialty"`
	Address       string          `json:"address"`
	LatLon        string          `json:"lat_lon"`
	DistanceKm    string          `json:"distance_km"`
	SimulatedETA  int             `json:"simulated_eta"`
	Doctor        hospital.Doctor `json:"doctor"`
	OriginAddress string          `json:"origin_address,omitempty"`
}

// AnalyzeResult carries everything the analyze endpoint reports back. Route
// is nil when no hospital could be assigned; CaseID is nil when the case
// could not be persisted. Neither condition fails the analysis itself.
type AnalyzeResult struct {
	Prediction      string
	IsCritical      bool
	Route           *RouteInfo
	DashboardStatus string
	CriticalCount   int
	CaseID          *int64
	ModelVerdict    string
}

type Service struct {
	repo          Repository
	defaultOrigin string
	advisor       Advisor
	log           zerolog.Logger
	now           func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithAdvisor attaches an external classifier to Analyze.
func WithAdvisor(a Advisor) Option {
	return func(s *Service) { s.advisor = a }
}

func NewService(repo Repository, defaultOrigin string, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{repo: repo, defaultOrigin: defaultOrigin, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze triages one reading, assigns the best hospital and persists the
// case. When persistence fails the analysis is still returned so the crew
// keeps a route; the failure is only logged.
func (s *Service) Analyze(ctx context.Context, in AnalyzeInput) (*AnalyzeResult, error) {
	if strings.TrimSpace(in.Vitals) == "" {
		return nil, ErrNoVitals
	}

	now := s.now()
	v := triage.ParseVitals(in.Vitals)
	assessment := triage.Assess(v, in.Symptoms)
	mews := triage.MEWSScore(v)
	trend := triage.SimulateTrend(v, now)
	dashStatus, critCount := triage.DashboardStatus(v)

	origin := in.CurrentLocation
	if origin == "" {
		origin = s.defaultOrigin
	}

	result := &AnalyzeResult{
		Prediction:      assessment.Prediction,
		IsCritical:      assessment.Critical,
		DashboardStatus: dashStatus,
		CriticalCount:   critCount,
	}

	if s.advisor != nil {
		verdict, err := s.advisor.Classify(ctx, v)
		if err != nil {
			s.log.Warn().Err(err).Msg("classifier verdict unavailable")
		} else {
			result.ModelVerdict = verdict
		}
	}

	eng := routing.NewEngine(hospital.LoadAt(now))
	route, err := eng.Dispatch(assessment.Critical)
	if err != nil {
		// An empty network is not a client error; the reading is still
		// analyzed, just not dispatched.
		s.log.Warn().Err(err).Msg("no hospital assigned for analyzed reading")
		return result, nil
	}
	result.Route = routeInfo(route, origin)

	c := &Case{
		CrewName:          in.CrewName,
		VitalsSnapshot:    v.Join(),
		Symptoms:          in.Symptoms,
		AIPrediction:      assessment.Prediction,
		IsCritical:        assessment.Critical,
		MEWSScore:         mews,
		VitalsTrend:       trend.JSON(),
		OriginAddress:     origin,
		HospitalName:      route.Hospital.Name,
		HospitalSpecialty: route.Hospital.Specialty,
		DistanceKm:        route.Hospital.DistanceKm,
		SimulatedETAMin:   route.ETAMinutes,
		AcceptanceStatus:  StatusAwaiting,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		s.log.Error().Err(err).Msg("case not saved")
		return result, nil
	}
	result.CaseID = &c.ID

	return result, nil
}

// SuggestAlternative records the rejection of the currently assigned
// hospital and re-dispatches the case to the cheapest hospital not yet in
// the rejection history. Nothing is written when the network is exhausted.
func (s *Service) SuggestAlternative(ctx context.Context, id int64, rejectedHospital string) (*RouteInfo, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	history := c.RejectedHistory
	if rejectedHospital != "" && !containsName(history, rejectedHospital) {
		history = append(history, rejectedHospital)
	}

	eng := routing.NewEngine(hospital.LoadAt(s.now()))
	route, err := eng.Reroute(history)
	if err != nil {
		if errors.Is(err, routing.ErrNoRoute) {
			return nil, ErrNoHospitals
		}
		return nil, err
	}

	c.HospitalName = route.Hospital.Name
	c.HospitalSpecialty = route.Hospital.Specialty
	c.DistanceKm = route.Hospital.DistanceKm
	c.SimulatedETAMin = route.ETAMinutes
	c.AcceptanceStatus = StatusAwaiting
	c.RejectedHistory = history
	if err := s.repo.UpdateRouting(ctx, c); err != nil {
		return nil, fmt.Errorf("update routing: %w", err)
	}

	return routeInfo(route, ""), nil
}

// ReceiveStatus applies an acceptance status pushed from the hospital side.
// The value is stored verbatim; the hospital side owns validation.
func (s *Service) ReceiveStatus(ctx context.Context, id int64, status string) error {
	if err := s.repo.SetAcceptanceStatus(ctx, id, status); err != nil {
		return err
	}
	s.log.Info().Int64("case_id", id).Str("status", status).Msg("acceptance status updated via hospital push")
	return nil
}

// Status returns the current acceptance status of a case.
func (s *Service) Status(ctx context.Context, id int64) (string, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return c.AcceptanceStatus, nil
}

// GetCase loads one case by id.
func (s *Service) GetCase(ctx context.Context, id int64) (*Case, error) {
	return s.repo.GetByID(ctx, id)
}

// ListCases returns the most recent cases, newest first.
func (s *Service) ListCases(ctx context.Context, limit int) ([]*Case, error) {
	return s.repo.List(ctx, limit)
}

// CountCases reports the total number of stored cases.
func (s *Service) CountCases(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func routeInfo(r routing.Route, origin string) *RouteInfo {
	return &RouteInfo{
		Name:          r.Hospital.Name,
		Specialty:     r.Hospital.Specialty,
		Address:       r.Hospital.Address,
		LatLon:        r.Hospital.LatLon,
		DistanceKm:    fmt.Sprintf("%.1f", r.Hospital.DistanceKm),
		SimulatedETA:  r.ETAMinutes,
		Doctor:        r.Hospital.Doctor,
		OriginAddress: origin,
	}
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
