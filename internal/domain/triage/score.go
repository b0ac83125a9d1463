package triage

import "strings"

// Dashboard priority labels derived from the early-warning score.
const (
	StatusHigh     = "HIGH PRIORITY"
	StatusMedium   = "MEDIUM PRIORITY"
	StatusStandard = "STANDARD PRIORITY"
)

// Predictions produced by the dispatch criticality assessment.
const (
	PredictionCritical     = "Likely Critical — Immediate attention advised"
	PredictionSerious      = "Potentially Serious — Monitor and expedite transport"
	PredictionStable       = "Stable / Non-critical"
	PredictionUndetermined = "UNDETERMINED"
)

// dangerKeywords boost the dispatch risk score by two points per match.
// Matching is substring-based on the lowercased symptom text, so a report
// containing "severe pain" also matches "severe" and counts twice.
var dangerKeywords = []string{
	"unconscious", "bleeding", "chest pain", "respiratory arrest",
	"no pulse", "collapse", "seizure", "severe",
	"breathing difficulty", "fracture", "trauma", "stroke", "severe pain",
}

// Fallback defaults applied by the criticality assessment when a vitals
// field is absent from the snapshot.
const (
	defaultAge      = 40
	defaultBPSys    = 120.0
	defaultHR       = 80.0
	defaultSpO2     = 98.0
	defaultTemp     = 36.6
	defaultRespRate = 16.0
)

// vitalScore is the shared four-vital contribution used by both the MEWS
// score and the dispatch risk score.
func vitalScore(bpSys, hr, respRate, spO2 float64) int {
	score := 0

	switch {
	case respRate < 9 || respRate > 25:
		score += 3
	case respRate > 20:
		score += 2
	case respRate > 15:
		score++
	}

	switch {
	case hr < 40 || hr > 130:
		score += 3
	case hr > 110:
		score += 2
	case hr < 50 || hr > 90:
		score++
	}

	switch {
	case bpSys < 70 || bpSys > 200:
		score += 3
	case bpSys < 90:
		score += 2
	case bpSys > 180:
		score++
	}

	if spO2 < 90 {
		score += 2
	}

	return score
}

// MEWSScore computes the early-warning score from systolic BP, heart rate,
// respiratory rate and SpO2. A parse failure on any of the four inputs
// degrades to zero rather than failing the request.
func MEWSScore(v Vitals) int {
	bpSys, err := v.strict(FieldBPSys)
	if err != nil {
		return 0
	}
	hr, err := v.strict(FieldHeartRate)
	if err != nil {
		return 0
	}
	respRate, err := v.strict(FieldRespRate)
	if err != nil {
		return 0
	}
	spO2, err := v.strict(FieldSpO2)
	if err != nil {
		return 0
	}
	return vitalScore(bpSys, hr, respRate, spO2)
}

// DashboardStatus maps the early-warning score onto the dashboard priority
// label and its 1..3 severity count.
func DashboardStatus(v Vitals) (string, int) {
	mews := MEWSScore(v)
	switch {
	case mews >= 5:
		return StatusHigh, 3
	case mews >= 3:
		return StatusMedium, 2
	default:
		return StatusStandard, 1
	}
}

// Assessment is the dispatch criticality decision for one vitals snapshot.
type Assessment struct {
	Prediction string
	Critical   bool
	RiskScore  int
}

// SymptomBoost returns two points for every danger keyword found in the
// symptom text. Matches are not deduplicated.
func SymptomBoost(symptoms string) int {
	text := strings.ToLower(symptoms)
	boost := 0
	for _, kw := range dangerKeywords {
		if strings.Contains(text, kw) {
			boost += 2
		}
	}
	return boost
}

// Assess combines the four-vital score with the symptom keyword boost and
// classifies the dispatch. Missing fields fall back to population defaults;
// a present but unparseable field yields the UNDETERMINED prediction and a
// non-critical classification.
func Assess(v Vitals, symptoms string) Assessment {
	bpSys, err := v.numeric(FieldBPSys, defaultBPSys)
	if err != nil {
		return Assessment{Prediction: PredictionUndetermined}
	}
	hr, err := v.numeric(FieldHeartRate, defaultHR)
	if err != nil {
		return Assessment{Prediction: PredictionUndetermined}
	}
	spO2, err := v.numeric(FieldSpO2, defaultSpO2)
	if err != nil {
		return Assessment{Prediction: PredictionUndetermined}
	}
	respRate, err := v.numeric(FieldRespRate, defaultRespRate)
	if err != nil {
		return Assessment{Prediction: PredictionUndetermined}
	}
	if _, err := v.numeric(FieldAge, defaultAge); err != nil {
		return Assessment{Prediction: PredictionUndetermined}
	}
	if _, err := v.numeric(FieldTemp, defaultTemp); err != nil {
		return Assessment{Prediction: PredictionUndetermined}
	}

	total := vitalScore(bpSys, hr, respRate, spO2) + SymptomBoost(symptoms)

	switch {
	case total >= 6:
		return Assessment{Prediction: PredictionCritical, Critical: true, RiskScore: total}
	case total >= 3:
		return Assessment{Prediction: PredictionSerious, Critical: true, RiskScore: total}
	default:
		return Assessment{Prediction: PredictionStable, RiskScore: total}
	}
}
