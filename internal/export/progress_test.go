package export

import "testing"

func TestTrackerMonotonic(t *testing.T) {
	var observed []float64
	tr := NewTracker(func(_ Phase, percent float64) {
		observed = append(observed, percent)
	})

	tr.Set(PhaseFetch, 10)
	tr.Set(PhaseFetch, 5) // regression, dropped
	tr.Set(PhaseNormalize, 40)
	tr.Set(PhaseNormalize, 40) // no movement, dropped
	tr.Set(PhaseDone, 250)     // clamped

	want := []float64{10, 40, 100}
	if len(observed) != len(want) {
		t.Fatalf("observed=%v, want %v", observed, want)
	}
	for i := range want {
		if observed[i] != want[i] {
			t.Fatalf("observed=%v, want %v", observed, want)
		}
	}
	if tr.Percent() != 100 {
		t.Fatalf("Percent=%v, want 100", tr.Percent())
	}
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker(nil)
	tr.Set(PhaseConcat, 80)
	tr.Reset()
	if tr.Percent() != 0 {
		t.Fatalf("Percent=%v after Reset, want 0", tr.Percent())
	}
	// Progress climbs again after an explicit reset.
	tr.Set(PhaseFetch, 15)
	if tr.Percent() != 15 {
		t.Fatalf("Percent=%v, want 15", tr.Percent())
	}
}
