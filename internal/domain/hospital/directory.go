package hospital

import (
	"math/rand"
	"strings"
	"time"
)

// Specialty tags assigned to network hospitals by name-substring rule.
const (
	SpecialtyTraumaER     = "General Trauma & ER"
	SpecialtyOncology     = "Oncology ONLY"
	SpecialtyCriticalNeur = "Critical Care & Neuro"
	SpecialtyCritical     = "General Critical Care"
)

// criticalTags are the specialty fragments that qualify a hospital for a
// critical dispatch.
var criticalTags = []string{
	"Critical Care", "Trauma", "Neuro", "Oncology",
	SpecialtyCriticalNeur, SpecialtyCritical,
}

// Doctor is the simulated on-duty physician attached to a hospital.
type Doctor struct {
	Name          string `json:"name"`
	Qualification string `json:"qualification"`
	Shift         string `json:"shift"`
}

// Hospital is one entry in the fixed dispatch network. Instances are
// immutable for the process lifetime; distance and traffic are simulated.
type Hospital struct {
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	LatLon        string  `json:"lat_lon"`
	Specialty     string  `json:"specialty"`
	DistanceKm    float64 `json:"distance_km"`
	TrafficFactor float64 `json:"traffic_factor"`
	Doctor        Doctor  `json:"doctor"`
}

// Directory is the fixed hospital network, loaded once at process start
// and passed by reference to the routing engine.
type Directory struct {
	hospitals []Hospital
}

type seedHospital struct {
	name    string
	address string
	latLon  string
}

var networkSeed = []seedHospital{
	{"SPARSH Hospital", "No. 1474/138, International Airport Road, Kogilu Cross, Yelahanka", "13.0862,77.6322"},
	{"Navya Multispeciality Hospital", "BB Road, Gandhi Nagar, Nehru Nagar, Bengaluru", "13.099681,77.597516"},
	{"K K Hospital", "#9, A-1/A-2, 9th A Cross Rd, Sector A, Yelahanka New Town", "13.097029,77.589406"},
	{"Cytecare Cancer Hospitals", "Near Bagalur Cross, Yelahanka", "13.1166,77.6253"},
	{"Aster CMI Hospital", "New International Airport Road, near Sahakara Nagar", "13.0531,77.5996"},
	{"Government General Hospital", "Yelahanka Old Town, next to the Old Anjanaya Temple", "13.0991,77.5995"},
}

// Load builds the directory using the current wall clock for the off-hours
// traffic multiplier.
func Load() *Directory {
	return LoadAt(time.Now())
}

// LoadAt builds the directory as of the given local time. The traffic
// factor folds in a ×1.2 off-hours multiplier when the hour is before 07:00
// or after 20:00.
func LoadAt(now time.Time) *Directory {
	offHours := 1.0
	if h := now.Hour(); h < 7 || h > 20 {
		offHours = 1.2
	}

	const baseDistance = 6.0
	hospitals := make([]Hospital, 0, len(networkSeed))
	for i, seed := range networkSeed {
		specialty := specialtyFor(seed.name)
		traffic := 1.0 + float64(i%4)*0.1 + float64(i%5)*0.05
		hospitals = append(hospitals, Hospital{
			Name:          seed.name,
			Address:       seed.address,
			LatLon:        seed.latLon,
			Specialty:     specialty,
			DistanceKm:    round1(baseDistance + float64(i)*0.4 + float64(i%3)*0.2),
			TrafficFactor: round2(round2(traffic) * offHours),
			Doctor:        simulateDoctor(specialty),
		})
	}
	return &Directory{hospitals: hospitals}
}

// specialtyFor assigns the specialty tag by name-substring rule.
func specialtyFor(name string) string {
	switch {
	case strings.Contains(name, "Cancer") || strings.Contains(name, "Oncology") || strings.Contains(name, "Cytecare"):
		return SpecialtyOncology
	case strings.Contains(name, "SPARSH") || strings.Contains(name, "Aster"):
		return SpecialtyCriticalNeur
	case strings.Contains(name, "Multi") || strings.Contains(name, "Government"):
		return SpecialtyCritical
	default:
		return SpecialtyTraumaER
	}
}

// All returns the full network in directory order.
func (d *Directory) All() []Hospital {
	return d.hospitals
}

// Len reports the network size.
func (d *Directory) Len() int {
	return len(d.hospitals)
}

// Eligible filters the network for an initial dispatch. Critical cases are
// limited to hospitals carrying a critical-care specialty tag; an empty
// match, or a non-critical case, falls back to the full network.
func (d *Directory) Eligible(critical bool) []Hospital {
	if !critical {
		return d.hospitals
	}
	var out []Hospital
	for _, h := range d.hospitals {
		for _, tag := range criticalTags {
			if strings.Contains(h.Specialty, tag) {
				out = append(out, h)
				break
			}
		}
	}
	if len(out) == 0 {
		return d.hospitals
	}
	return out
}

// Remaining filters the full network against a rejection history. Re-routes
// ignore the specialty filter entirely: any hospital not yet rejected is a
// candidate.
func (d *Directory) Remaining(rejected []string) []Hospital {
	excluded := make(map[string]struct{}, len(rejected))
	for _, name := range rejected {
		excluded[name] = struct{}{}
	}
	var out []Hospital
	for _, h := range d.hospitals {
		if _, ok := excluded[h.Name]; !ok {
			out = append(out, h)
		}
	}
	return out
}

func simulateDoctor(specialty string) Doctor {
	var names, quals []string
	switch {
	case strings.Contains(specialty, "Cardiology"):
		names = []string{"Dr. Anjali Rao", "Dr. Vikas Reddy"}
		quals = []string{"MD, Interventional Cardiologist", "DM, Cardiovascular Surgeon"}
	case strings.Contains(specialty, "Critical Care") || strings.Contains(specialty, "Multi"):
		names = []string{"Dr. Priya Sharma", "Dr. Rohan Kumar"}
		quals = []string{"MD, Critical Care Specialist", "DNB, Emergency Medicine"}
	case strings.Contains(specialty, "Neuro"):
		names = []string{"Dr. Sanjeev Reddy", "Dr. Lakshmi V"}
		quals = []string{"DM, Neurologist", "MS, Neuro Surgeon"}
	default:
		names = []string{"Dr. Vivek Menon", "Dr. Sara Khan"}
		quals = []string{"MBBS, Emergency Physician", "MD, General Surgery Resident"}
	}

	i := rand.Intn(len(names))
	shift := "Day Shift"
	if strings.Contains(specialty, "24/7") {
		shift = "24/7 (On Call)"
	}
	return Doctor{Name: names[i], Qualification: quals[i], Shift: shift}
}

func round1(x float64) float64 {
	return float64(int(x*10+0.5)) / 10
}

func round2(x float64) float64 {
	return float64(int(x*100+0.5)) / 100
}
