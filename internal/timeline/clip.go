package timeline

import "github.com/google/uuid"

// Clip is one playable video unit: an immutable source reference with a
// probed duration. Identity lives in ID, not in the source path; two
// uploads of the same file are distinct clips.
type Clip struct {
	ID              string
	Source          string
	DurationSeconds float64
	Fixed           bool
}

// NewClip mints a clip with a fresh identity token.
func NewClip(source string, durationSeconds float64, fixed bool) Clip {
	return Clip{
		ID:              uuid.NewString(),
		Source:          source,
		DurationSeconds: durationSeconds,
		Fixed:           fixed,
	}
}
