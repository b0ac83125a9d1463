package dispatch

import "time"

// Acceptance lifecycle for a case. StatusAwaiting is the initial value on
// every dispatch and re-dispatch; the other three arrive from the hospital
// side and are stored verbatim.
const (
	StatusAwaiting = "AWAITING RESPONSE"
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
	StatusOnHold   = "ON HOLD"
)

// Case maps to the dispatch_case table. It is the ambulance-side record of
// truth for one patient run: the triage snapshot taken at dispatch time plus
// the currently assigned hospital.
type Case struct {
	ID                int64     `db:"id" json:"id"`
	CrewName          *string   `db:"crew_name" json:"crew_name,omitempty"`
	VitalsSnapshot    string    `db:"vitals_snapshot" json:"vitals_snapshot"`
	Symptoms          string    `db:"symptoms_snapshot" json:"symptoms_snapshot"`
	AIPrediction      string    `db:"ai_prediction" json:"ai_prediction"`
	IsCritical        bool      `db:"is_critical" json:"is_critical"`
	MEWSScore         int       `db:"mews_score" json:"mews_score"`
	VitalsTrend       string    `db:"vitals_trend" json:"vitals_trend"`
	OriginAddress     string    `db:"origin_address" json:"origin_address"`
	HospitalName      string    `db:"hospital_name" json:"hospital_name"`
	HospitalSpecialty string    `db:"hospital_specialty" json:"hospital_specialty"`
	DistanceKm        float64   `db:"distance_km" json:"distance_km"`
	SimulatedETAMin   int       `db:"simulated_eta_min" json:"simulated_eta_min"`
	AcceptanceStatus  string    `db:"acceptance_status" json:"acceptance_status"`
	RejectedHistory   []string  `db:"rejected_history" json:"rejected_history"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
