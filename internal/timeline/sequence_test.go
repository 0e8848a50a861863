package timeline

import (
	"errors"
	"math"
	"testing"
)

// makeSequence builds a sequence of synthetic clips with the given durations.
func makeSequence(durations ...float64) Sequence {
	seq := make(Sequence, len(durations))
	for i, d := range durations {
		seq[i] = NewClip("clip.mp4", d, true)
	}
	return seq
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestClipAtTime(t *testing.T) {
	tests := []struct {
		name      string
		durations []float64
		t         float64
		wantIndex int
		wantLocal float64
	}{
		{"start of first clip", []float64{3, 5}, 0, 0, 0},
		{"inside first clip", []float64{3, 5}, 2.999, 0, 2.999},
		{"boundary belongs to next clip", []float64{3, 5}, 3.0, 1, 0},
		{"inside second clip", []float64{3, 5}, 4.5, 1, 1.5},
		{"exact total clamps to last clip end", []float64{3, 5}, 8.0, 1, 5},
		{"past total clamps to last clip end", []float64{3, 5}, 8.7, 1, 5},
		{"negative time clamps to zero", []float64{3, 5}, -1, 0, 0},
		{"single clip interior", []float64{10}, 7.25, 0, 7.25},
		{"interior boundary in three clips", []float64{2, 2, 2}, 4.0, 2, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := makeSequence(tc.durations...).ClipAtTime(tc.t)
			if got.Index != tc.wantIndex {
				t.Errorf("Index=%d, want %d", got.Index, tc.wantIndex)
			}
			if !almostEqual(got.LocalTime, tc.wantLocal) {
				t.Errorf("LocalTime=%v, want %v", got.LocalTime, tc.wantLocal)
			}
		})
	}
}

func TestClipAtTimeEmptySequence(t *testing.T) {
	got := Sequence{}.ClipAtTime(1.0)
	if got.Index != -1 {
		t.Fatalf("Index=%d, want -1 for empty sequence", got.Index)
	}
}

// Every time strictly below the total must land inside exactly one clip,
// with the local offset consistent with the clip's start time.
func TestClipAtTimeMappingConsistency(t *testing.T) {
	seq := makeSequence(1.5, 0.25, 4, 2.75)
	total := seq.TotalDuration()

	for tick := 0.0; tick < total; tick += 0.05 {
		pos := seq.ClipAtTime(tick)
		start, err := seq.StartTime(pos.Index)
		if err != nil {
			t.Fatalf("t=%v: StartTime(%d): %v", tick, pos.Index, err)
		}
		if tick < start || tick >= start+seq[pos.Index].DurationSeconds {
			t.Fatalf("t=%v mapped to clip %d spanning [%v, %v)", tick, pos.Index, start, start+seq[pos.Index].DurationSeconds)
		}
		if !almostEqual(pos.LocalTime, tick-start) {
			t.Fatalf("t=%v: LocalTime=%v, want %v", tick, pos.LocalTime, tick-start)
		}
	}
}

func TestStartTime(t *testing.T) {
	seq := makeSequence(3, 5, 2)

	tests := []struct {
		index int
		want  float64
	}{
		{0, 0},
		{1, 3},
		{2, 8},
	}
	for _, tc := range tests {
		got, err := seq.StartTime(tc.index)
		if err != nil {
			t.Fatalf("StartTime(%d): %v", tc.index, err)
		}
		if !almostEqual(got, tc.want) {
			t.Errorf("StartTime(%d)=%v, want %v", tc.index, got, tc.want)
		}
	}

	if _, err := seq.StartTime(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("StartTime(3) err=%v, want ErrIndexOutOfRange", err)
	}
	if _, err := seq.StartTime(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("StartTime(-1) err=%v, want ErrIndexOutOfRange", err)
	}
}

func TestTotalDurationRecomputed(t *testing.T) {
	seq := makeSequence(3, 5)
	if got := seq.TotalDuration(); !almostEqual(got, 8) {
		t.Fatalf("TotalDuration=%v, want 8", got)
	}
	seq = append(seq, NewClip("extra.mp4", 2, false))
	if got := seq.TotalDuration(); !almostEqual(got, 10) {
		t.Fatalf("TotalDuration after append=%v, want 10", got)
	}
}
