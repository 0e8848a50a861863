package playback

import "errors"

// ErrSuperseded is returned by a Handle's Play when a newer load or seek
// request interrupted it. The scheduler treats it as benign; any other play
// failure reverts playback to paused.
var ErrSuperseded = errors.New("play request superseded")

// Readiness is the load state of a handle's current source.
type Readiness int

const (
	ReadinessNone Readiness = iota
	ReadinessMetadata
	ReadinessCanPlayThrough
)

// HandleEvents carries the callbacks a handle fires as its media advances.
// Callbacks may be invoked from the handle's own reader goroutine.
type HandleEvents struct {
	Ready      func()
	TimeUpdate func(seconds float64)
	Ended      func()
	Failed     func(err error)
}

// Handle is one underlying single-clip player: the platform media primitive
// behind each of the scheduler's two slots. Load is asynchronous; the Ready
// callback fires once the source is seekable and playable.
type Handle interface {
	Load(source string)
	Play() error
	Pause()
	Seek(seconds float64)
	CurrentTime() float64
	Readiness() Readiness
	SetVolume(v float64)
	SetMuted(m bool)
	Subscribe(ev HandleEvents)
}
