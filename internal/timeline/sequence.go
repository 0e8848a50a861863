package timeline

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned by StartTime for an index past the sequence.
var ErrIndexOutOfRange = errors.New("clip index out of range")

// Sequence is an ordered list of clips; insertion order is playback order.
type Sequence []Clip

// Position locates a global time inside a sequence: the clip index plus the
// offset into that clip. Index is -1 for an empty sequence.
type Position struct {
	Index     int
	LocalTime float64
}

// TotalDuration sums all clip durations. It is recomputed on every call so a
// caller can never observe a stale total after the sequence changes.
func (s Sequence) TotalDuration() float64 {
	var total float64
	for _, c := range s {
		total += c.DurationSeconds
	}
	return total
}

// StartTime returns the global time at which clip i begins.
func (s Sequence) StartTime(i int) (float64, error) {
	if i < 0 || i >= len(s) {
		return 0, fmt.Errorf("%w: %d (sequence has %d clips)", ErrIndexOutOfRange, i, len(s))
	}
	var start float64
	for _, c := range s[:i] {
		start += c.DurationSeconds
	}
	return start, nil
}

// ClipAtTime maps a global time to a clip and local offset. A time exactly on
// a clip boundary belongs to the next clip (start-inclusive, end-exclusive),
// so every global time below the total maps to exactly one clip. Times at or
// past the total clamp to the end of the last clip rather than erroring.
func (s Sequence) ClipAtTime(t float64) Position {
	if len(s) == 0 {
		return Position{Index: -1}
	}
	if t < 0 {
		t = 0
	}

	var start float64
	for i, c := range s {
		end := start + c.DurationSeconds
		if t < end {
			return Position{Index: i, LocalTime: t - start}
		}
		start = end
	}

	last := len(s) - 1
	return Position{Index: last, LocalTime: s[last].DurationSeconds}
}
