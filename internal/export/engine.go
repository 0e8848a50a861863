package export

import (
	"context"
	"io"
)

// ExecSpec describes one transcode invocation. InputSeconds is the duration
// of the material being processed; the engine reports progress as the ratio
// of processed time to it.
type ExecSpec struct {
	Args         []string
	InputSeconds float64
	OnProgress   func(ratio float64)
}

// Engine is the transcode-engine boundary: addressable byte storage plus a
// command runner with fractional progress. Implementations must tolerate
// concurrent Exec calls; the pipeline normalizes clips in parallel.
type Engine interface {
	// WriteInput stores bytes under a name in the engine's storage.
	WriteInput(name string, src io.Reader) (int64, error)
	// Exec runs one transcode command to completion.
	Exec(ctx context.Context, spec ExecSpec) error
	// ReadOutput opens a stored entry for reading.
	ReadOutput(name string) (io.ReadCloser, error)
	// Remove deletes a stored entry. Best effort; callers swallow failures.
	Remove(name string) error
}
