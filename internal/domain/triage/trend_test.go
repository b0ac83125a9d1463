package triage

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSimulateTrend_ShapeAndLabels(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tr := SimulateTrend(Vitals{"40", "120", "80", "75", "98", "98.6", "16"}, now)
	if tr == nil {
		t.Fatal("expected trend, got nil")
	}
	if len(tr.TimeLabels) != 5 || len(tr.HRTrend) != 5 || len(tr.BPSysTrend) != 5 || len(tr.O2Trend) != 5 {
		t.Fatalf("expected 5 samples per series, got %d/%d/%d/%d",
			len(tr.TimeLabels), len(tr.HRTrend), len(tr.BPSysTrend), len(tr.O2Trend))
	}
	wantLabels := []string{"11:40", "11:45", "11:50", "11:55", "12:00"}
	for i, want := range wantLabels {
		if tr.TimeLabels[i] != want {
			t.Errorf("label %d: expected %s, got %s", i, want, tr.TimeLabels[i])
		}
	}
}

func TestSimulateTrend_LastPointIsExactReading(t *testing.T) {
	tr := SimulateTrend(Vitals{"70", "190", "110", "135", "85", "101", "27"}, time.Now())
	if tr == nil {
		t.Fatal("expected trend, got nil")
	}
	if tr.HRTrend[4] != 135 {
		t.Errorf("expected final heart rate 135, got %d", tr.HRTrend[4])
	}
	if tr.BPSysTrend[4] != 190 {
		t.Errorf("expected final systolic 190, got %d", tr.BPSysTrend[4])
	}
	if tr.O2Trend[4] != 85 {
		t.Errorf("expected final SpO2 85, got %v", tr.O2Trend[4])
	}
}

func TestSimulateTrend_JitterStaysBounded(t *testing.T) {
	tr := SimulateTrend(Vitals{"40", "120", "80", "75", "98", "98.6", "16"}, time.Now())
	if tr == nil {
		t.Fatal("expected trend, got nil")
	}
	for i := 0; i < 4; i++ {
		if tr.HRTrend[i] < 71 || tr.HRTrend[i] > 79 {
			t.Errorf("heart rate sample %d out of jitter bounds: %d", i, tr.HRTrend[i])
		}
		if tr.BPSysTrend[i] < 115 || tr.BPSysTrend[i] > 125 {
			t.Errorf("systolic sample %d out of jitter bounds: %d", i, tr.BPSysTrend[i])
		}
		if tr.O2Trend[i] < 97 || tr.O2Trend[i] > 99 {
			t.Errorf("SpO2 sample %d out of jitter bounds: %v", i, tr.O2Trend[i])
		}
	}
}

func TestSimulateTrend_UnparseableVitals(t *testing.T) {
	if tr := SimulateTrend(ParseVitals("70,190"), time.Now()); tr != nil {
		t.Error("expected nil trend for short vitals")
	}
	if got := (*Trend)(nil).JSON(); got != "{}" {
		t.Errorf("expected empty JSON object, got %q", got)
	}
}

func TestTrend_JSONRoundTrips(t *testing.T) {
	tr := SimulateTrend(Vitals{"40", "120", "80", "75", "98", "98.6", "16"}, time.Now())
	var decoded Trend
	if err := json.Unmarshal([]byte(tr.JSON()), &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decoded.TimeLabels) != 5 {
		t.Errorf("expected 5 labels after round trip, got %d", len(decoded.TimeLabels))
	}
}
