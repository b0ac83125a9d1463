// Package acceptance is the hospital-side view of a dispatched case: the
// dashboard projection and the accept/reject/hold decision, pushed back to
// the ambulance server.
package acceptance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ems/ems/internal/domain/dispatch"
	"github.com/ems/ems/internal/domain/triage"
)

// ErrInvalidStatus is returned for decision values outside the accepted
// hospital vocabulary.
var ErrInvalidStatus = errors.New("invalid status provided")

// CaseStore is the slice of the case repository the hospital side needs.
// Satisfied by dispatch.Repository.
type CaseStore interface {
	GetByID(ctx context.Context, id int64) (*dispatch.Case, error)
	SetAcceptanceStatus(ctx context.Context, id int64, status string) error
}

// Notifier pushes a decided status back to the ambulance server.
type Notifier interface {
	PushStatus(ctx context.Context, caseID int64, status string) error
}

type Service struct {
	store    CaseStore
	notifier Notifier
	log      zerolog.Logger
}

func NewService(store CaseStore, notifier Notifier, log zerolog.Logger) *Service {
	return &Service{store: store, notifier: notifier, log: log}
}

// UpdateAcceptance records a hospital decision for a case and pushes it to
// the ambulance server. The local write is authoritative; a failed push is
// logged and swallowed so the hospital's own record is never rolled back.
func (s *Service) UpdateAcceptance(ctx context.Context, id int64, status string) error {
	switch status {
	case dispatch.StatusAccepted, dispatch.StatusRejected, dispatch.StatusOnHold:
	default:
		return ErrInvalidStatus
	}

	if err := s.store.SetAcceptanceStatus(ctx, id, status); err != nil {
		return err
	}

	if err := s.notifier.PushStatus(ctx, id, status); err != nil {
		s.log.Error().Err(err).Int64("case_id", id).Msg("failed to push status to ambulance server")
	} else {
		s.log.Info().Int64("case_id", id).Str("status", status).Msg("status pushed to ambulance server")
	}
	return nil
}

// PatientVitals is the display-formatted vitals block for the dashboard.
type PatientVitals struct {
	Age  string `json:"age"`
	BP   string `json:"bp"`
	HR   string `json:"hr"`
	O2   string `json:"o2"`
	Temp string `json:"temp"`
	RR   string `json:"rr"`
}

// CaseData is the dashboard projection of one case.
type CaseData struct {
	CaseID             int64           `json:"case_id"`
	Timestamp          string          `json:"timestamp"`
	CrewName           string          `json:"crew_name"`
	PatientNameDisplay string          `json:"patient_name_display"`
	PatientVitals      PatientVitals   `json:"patient_vitals"`
	SymptomsText       string          `json:"symptoms_text"`
	AIPrediction       string          `json:"ai_prediction"`
	IsCritical         bool            `json:"is_critical"`
	HospitalName       string          `json:"hospital_name"`
	OriginAddress      string          `json:"origin_address"`
	ETAMin             int             `json:"eta_min"`
	TriageStatus       string          `json:"triage_status"`
	MEWSScore          int             `json:"mews_score"`
	VitalsTrend        json.RawMessage `json:"vitals_trend"`
	AcceptanceStatus   string          `json:"acceptance_status"`
}

// CaseData builds the dashboard view of a case.
func (s *Service) CaseData(ctx context.Context, id int64) (*CaseData, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v := triage.ParseVitals(c.VitalsSnapshot)

	triageStatus := "STANDARD TRIAGE"
	if c.IsCritical {
		triageStatus = "CRITICAL CARE"
	}

	crew := "N/A"
	if c.CrewName != nil && *c.CrewName != "" {
		crew = *c.CrewName
	}

	hospitalName := c.HospitalName
	if hospitalName == "" {
		hospitalName = "N/A"
	}

	symptoms := c.Symptoms
	if symptoms == "" {
		symptoms = "No remarks."
	}

	var trend json.RawMessage
	if c.VitalsTrend != "" && json.Valid([]byte(c.VitalsTrend)) {
		trend = json.RawMessage(c.VitalsTrend)
	}

	return &CaseData{
		CaseID:             c.ID,
		Timestamp:          c.CreatedAt.Format("15:04:05 PM"),
		CrewName:           crew,
		PatientNameDisplay: fmt.Sprintf("Patient #%d", c.ID),
		PatientVitals: PatientVitals{
			Age:  v[triage.FieldAge],
			BP:   fmt.Sprintf("%s / %s mmHg", v[triage.FieldBPSys], v[triage.FieldBPDia]),
			HR:   v[triage.FieldHeartRate] + " bpm",
			O2:   v[triage.FieldSpO2] + " %",
			Temp: v[triage.FieldTemp] + " °F",
			RR:   v[triage.FieldRespRate] + " breaths/min",
		},
		SymptomsText:     symptoms,
		AIPrediction:     strings.SplitN(c.AIPrediction, ":", 2)[0],
		IsCritical:       c.IsCritical,
		HospitalName:     hospitalName,
		OriginAddress:    c.OriginAddress,
		ETAMin:           c.SimulatedETAMin,
		TriageStatus:     triageStatus,
		MEWSScore:        c.MEWSScore,
		VitalsTrend:      trend,
		AcceptanceStatus: c.AcceptanceStatus,
	}, nil
}
