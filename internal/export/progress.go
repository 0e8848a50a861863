package export

import "sync"

// Phase names the pipeline step a progress value belongs to.
type Phase string

const (
	PhaseFetch     Phase = "fetch"
	PhaseNormalize Phase = "normalize"
	PhaseConcat    Phase = "concat"
	PhaseDeliver   Phase = "deliver"
	PhaseDone      Phase = "done"
)

// Fixed progress spans per phase, in percent of the whole export.
const (
	fetchEnd     = 20.0
	normalizeEnd = 75.0
	concatEnd    = 95.0
)

// Tracker keeps export progress monotonic non-decreasing from 0 to 100. A
// failed export leaves the value where the failure happened; only an explicit
// Reset returns it to zero.
type Tracker struct {
	mu       sync.Mutex
	percent  float64
	phase    Phase
	observer func(phase Phase, percent float64)
}

// NewTracker creates a tracker reporting to observer (may be nil).
func NewTracker(observer func(phase Phase, percent float64)) *Tracker {
	return &Tracker{phase: PhaseFetch, observer: observer}
}

// Set advances progress. Regressions are dropped so engine sub-progress
// jitter and out-of-order completions can never move the bar backwards.
func (t *Tracker) Set(phase Phase, percent float64) {
	t.mu.Lock()
	if percent > 100 {
		percent = 100
	}
	if percent <= t.percent {
		t.mu.Unlock()
		return
	}
	t.percent = percent
	t.phase = phase
	observer := t.observer
	t.mu.Unlock()

	if observer != nil {
		observer(phase, percent)
	}
}

// Percent returns the current progress value.
func (t *Tracker) Percent() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.percent
}

// Reset returns progress to zero for a retry.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.percent = 0
	t.phase = PhaseFetch
	t.mu.Unlock()
}
