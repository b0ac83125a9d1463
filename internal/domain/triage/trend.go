package triage

import (
	"encoding/json"
	"math"
	"math/rand"
	"time"
)

const (
	trendPoints      = 5
	trendStepMinutes = 5
)

// Trend is a short synthesized history of the three charted vitals ending
// at the current reading. It exists for display only and feeds no dispatch
// decision.
type Trend struct {
	TimeLabels []string  `json:"time_labels"`
	HRTrend    []int     `json:"hr_trend"`
	BPSysTrend []int     `json:"bp_sys_trend"`
	O2Trend    []float64 `json:"o2_trend"`
}

// SimulateTrend synthesizes five samples spaced five minutes apart ending
// at now. The first four points jitter around the current reading (heart
// rate ±4, systolic BP ±5, SpO2 ±1); the final point is the exact current
// reading. A parse failure on any charted vital returns nil.
func SimulateTrend(v Vitals, now time.Time) *Trend {
	hrBase, err := v.strict(FieldHeartRate)
	if err != nil {
		return nil
	}
	bpBase, err := v.strict(FieldBPSys)
	if err != nil {
		return nil
	}
	o2Base, err := v.strict(FieldSpO2)
	if err != nil {
		return nil
	}

	t := &Trend{
		TimeLabels: make([]string, 0, trendPoints),
		HRTrend:    make([]int, 0, trendPoints),
		BPSysTrend: make([]int, 0, trendPoints),
		O2Trend:    make([]float64, 0, trendPoints),
	}

	for i := 0; i < trendPoints; i++ {
		offset := time.Duration(trendPoints-1-i) * trendStepMinutes * time.Minute
		t.TimeLabels = append(t.TimeLabels, now.Add(-offset).Format("15:04"))

		if i < trendPoints-1 {
			t.HRTrend = append(t.HRTrend, int(math.Round(hrBase+jitter(4))))
			t.BPSysTrend = append(t.BPSysTrend, int(math.Round(bpBase+jitter(5))))
			t.O2Trend = append(t.O2Trend, math.Round((o2Base+jitter(1))*10)/10)
		} else {
			t.HRTrend = append(t.HRTrend, int(hrBase))
			t.BPSysTrend = append(t.BPSysTrend, int(bpBase))
			t.O2Trend = append(t.O2Trend, o2Base)
		}
	}

	return t
}

// JSON renders the trend for persistence on the case record. A nil trend
// encodes as an empty object.
func (t *Trend) JSON() string {
	if t == nil {
		return "{}"
	}
	b, err := json.Marshal(t)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// jitter returns a uniform random value in [-amplitude, amplitude].
func jitter(amplitude float64) float64 {
	return (rand.Float64()*2 - 1) * amplitude
}
