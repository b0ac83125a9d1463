package triage

import (
	"strconv"
	"strings"
)

// FieldCount is the number of positional fields in a vitals snapshot. The
// order is age, systolic BP, diastolic BP, heart rate, SpO2, temperature,
// respiratory rate.
const FieldCount = 7

// Sentinel marks a vitals field that was absent from the raw input.
const Sentinel = "N/A"

// Positional indexes into a Vitals snapshot.
const (
	FieldAge = iota
	FieldBPSys
	FieldBPDia
	FieldHeartRate
	FieldSpO2
	FieldTemp
	FieldRespRate
)

// Vitals is an ordered snapshot of the seven raw vitals fields as received
// from the crew client. Entries may be empty, non-numeric, or the Sentinel;
// numeric consumers apply their own fallbacks.
type Vitals []string

// ParseVitals splits a raw comma-separated vitals string and pads it with
// the Sentinel up to FieldCount entries. Input longer than FieldCount is
// kept intact. ParseVitals never fails.
func ParseVitals(raw string) Vitals {
	v := Vitals(strings.Split(raw, ","))
	for len(v) < FieldCount {
		v = append(v, Sentinel)
	}
	return v
}

// Join renders the snapshot back into its persisted comma-joined form.
func (v Vitals) Join() string {
	return strings.Join(v, ",")
}

// field returns the raw value at index i, or "" when the snapshot is short.
func (v Vitals) field(i int) string {
	if i >= len(v) {
		return ""
	}
	return v[i]
}

// numeric parses field i, substituting def when the field is missing or
// empty. A present but unparseable value is a hard parse failure.
func (v Vitals) numeric(i int, def float64) (float64, error) {
	raw := strings.TrimSpace(v.field(i))
	if raw == "" {
		return def, nil
	}
	return strconv.ParseFloat(raw, 64)
}

// strict parses field i with no fallback default.
func (v Vitals) strict(i int) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(v.field(i)), 64)
}
