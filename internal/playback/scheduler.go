package playback

import (
	"errors"
	"log"
	"sync"

	"clipdeck/internal/timeline"
)

// emitEpsilon suppresses time-update feedback oscillation: a global time is
// only re-emitted once it has moved this far from the last emitted value.
const emitEpsilon = 0.05

// Events carries the scheduler's outbound notifications. All callbacks are
// optional and are invoked outside the scheduler's lock.
type Events struct {
	TimeUpdated func(global float64)
	ClipChanged func(index int)
	Ended       func()
	Failed      func(err error)
}

// slot is one of the two player positions behind the scheduler.
type slot struct {
	handle    Handle
	clipID    string // identity of the loaded clip, "" when empty
	clipIndex int
	ready     bool
}

// Scheduler presents a clip sequence as one continuous playback stream. It
// owns two player handles and swaps between them at clip boundaries so the
// preloaded next clip starts with no visible gap. Handles must deliver their
// events asynchronously, never from within a command call.
//
// All state transitions run under one lock: events from either handle and
// commands from the caller are serialized into single-writer transitions.
type Scheduler struct {
	mu   sync.Mutex
	seq  timeline.Sequence
	logr *log.Logger

	slots  [2]slot
	active int

	current     int
	ended       bool
	playing     bool
	pendingSeek float64
	pendingPlay bool

	volume float64
	muted  bool

	lastEmitted float64
	events      Events
}

// NewScheduler wires two handles into a scheduler over seq and begins loading
// the first clip paused at time zero. An empty sequence produces an inert
// scheduler that ignores transport commands.
func NewScheduler(seq timeline.Sequence, primary, secondary Handle, logr *log.Logger, events Events) *Scheduler {
	s := &Scheduler{
		seq:    seq,
		logr:   logr,
		events: events,
		volume: 1.0,
	}
	s.slots[0] = slot{handle: primary, clipIndex: -1}
	s.slots[1] = slot{handle: secondary, clipIndex: -1}

	for i := range s.slots {
		i := i
		s.slots[i].handle.Subscribe(HandleEvents{
			Ready:      func() { s.onReady(i) },
			TimeUpdate: func(t float64) { s.onTimeUpdate(i, t) },
			Ended:      func() { s.onEnded(i) },
			Failed:     func(err error) { s.onFailed(i, err) },
		})
	}

	if len(seq) > 0 {
		s.mu.Lock()
		s.beginLoad(s.active, 0, 0, false)
		s.preload()
		s.mu.Unlock()
	}
	return s
}

// Play resumes playback, or restarts from the beginning when the sequence
// previously ran to its natural end.
func (s *Scheduler) Play() {
	s.mu.Lock()
	if len(s.seq) == 0 {
		s.mu.Unlock()
		return
	}

	if s.ended {
		// Restart, not resume: back to clip zero at time zero.
		s.ended = false
		s.playing = true
		s.current = 0
		s.beginLoad(s.active, 0, 0, true)
		s.preload()
		s.lastEmitted = 0
		emits := s.notifyTime(0)
		emits = append(emits, s.notifyClip(0)...)
		s.mu.Unlock()
		fire(emits)
		return
	}

	s.playing = true
	if !s.slots[s.active].ready {
		s.pendingPlay = true
		s.mu.Unlock()
		return
	}
	emits := s.playActive()
	s.mu.Unlock()
	fire(emits)
}

// Pause suspends the active handle. A manual pause never counts as a natural
// end, so a later Play resumes in place.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	s.playing = false
	s.pendingPlay = false
	s.slots[s.active].handle.Pause()
	s.mu.Unlock()
}

// Seek moves playback to a global time, clamped to the sequence bounds. Any
// seek clears the natural-end flag, regardless of target.
func (s *Scheduler) Seek(global float64) {
	s.mu.Lock()
	if len(s.seq) == 0 {
		s.mu.Unlock()
		return
	}

	if global < 0 {
		global = 0
	}
	if total := s.seq.TotalDuration(); global > total {
		global = total
	}

	s.ended = false
	pos := s.seq.ClipAtTime(global)

	var emits []func()
	if pos.Index == s.current && s.slots[s.active].ready {
		s.slots[s.active].handle.Seek(pos.LocalTime)
	} else {
		changed := pos.Index != s.current
		s.current = pos.Index
		s.beginLoad(s.active, pos.Index, pos.LocalTime, s.playing)
		s.preload()
		if changed {
			emits = append(emits, s.notifyClip(pos.Index)...)
		}
	}
	s.lastEmitted = global
	emits = append(emits, s.notifyTime(global)...)
	s.mu.Unlock()
	fire(emits)
}

// SetVolume applies a volume to both handles so a boundary swap never causes
// an audible jump.
func (s *Scheduler) SetVolume(v float64) {
	s.mu.Lock()
	s.volume = v
	for i := range s.slots {
		s.slots[i].handle.SetVolume(v)
	}
	s.mu.Unlock()
}

// SetMuted applies the mute flag to both handles.
func (s *Scheduler) SetMuted(m bool) {
	s.mu.Lock()
	s.muted = m
	for i := range s.slots {
		s.slots[i].handle.SetMuted(m)
	}
	s.mu.Unlock()
}

// CurrentClipIndex returns the index of the clip playback currently sits in.
func (s *Scheduler) CurrentClipIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// HasEnded reports whether playback previously reached the end of the last
// clip without an intervening seek or restart.
func (s *Scheduler) HasEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// IsPlaying reports the global play intent.
func (s *Scheduler) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Position returns the current global time.
func (s *Scheduler) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, err := s.seq.StartTime(s.current)
	if err != nil {
		return 0
	}
	return start + s.slots[s.active].handle.CurrentTime()
}

// beginLoad points a slot at a clip and defers seek and playback until the
// handle signals ready. Caller holds the lock.
func (s *Scheduler) beginLoad(slotIdx, clipIndex int, localTime float64, autoplay bool) {
	sl := &s.slots[slotIdx]
	sl.clipID = s.seq[clipIndex].ID
	sl.clipIndex = clipIndex
	sl.ready = false
	s.pendingSeek = localTime
	s.pendingPlay = autoplay
	sl.handle.Load(s.seq[clipIndex].Source)
	s.logf("load slot=%d clip=%d local=%.3f autoplay=%v", slotIdx, clipIndex, localTime, autoplay)
}

// preload opportunistically points the inactive slot at the next clip. Its
// completion is observed only at the boundary. Loaded identity is compared by
// clip ID so two clips sharing a filename never alias. Caller holds the lock.
func (s *Scheduler) preload() {
	next := s.current + 1
	if next >= len(s.seq) {
		return
	}
	in := &s.slots[1-s.active]
	if in.clipID == s.seq[next].ID {
		return
	}
	in.clipID = s.seq[next].ID
	in.clipIndex = next
	in.ready = false
	in.handle.Load(s.seq[next].Source)
	s.logf("preload slot=%d clip=%d", 1-s.active, next)
}

func (s *Scheduler) onReady(slotIdx int) {
	s.mu.Lock()
	sl := &s.slots[slotIdx]
	sl.ready = true
	if slotIdx != s.active {
		// Preload finished; nothing to do until the boundary.
		s.mu.Unlock()
		return
	}

	sl.handle.Seek(s.pendingSeek)
	sl.handle.SetVolume(s.volume)
	sl.handle.SetMuted(s.muted)

	var emits []func()
	if s.pendingPlay || s.playing {
		s.pendingPlay = false
		emits = s.playActive()
	}
	s.mu.Unlock()
	fire(emits)
}

func (s *Scheduler) onTimeUpdate(slotIdx int, local float64) {
	s.mu.Lock()
	if slotIdx != s.active {
		s.mu.Unlock()
		return
	}
	start, err := s.seq.StartTime(s.current)
	if err != nil {
		s.mu.Unlock()
		return
	}
	global := start + local
	if abs(global-s.lastEmitted) <= emitEpsilon {
		s.mu.Unlock()
		return
	}
	s.lastEmitted = global
	emits := s.notifyTime(global)
	s.mu.Unlock()
	fire(emits)
}

func (s *Scheduler) onEnded(slotIdx int) {
	s.mu.Lock()
	if slotIdx != s.active {
		s.mu.Unlock()
		return
	}

	if s.current >= len(s.seq)-1 {
		// Natural end of the whole sequence.
		s.ended = true
		s.playing = false
		s.logf("sequence ended at clip %d", s.current)
		var emits []func()
		if s.events.Ended != nil {
			emits = append(emits, s.events.Ended)
		}
		s.mu.Unlock()
		fire(emits)
		return
	}

	next := s.current + 1
	in := &s.slots[1-s.active]
	var emits []func()

	if in.clipID == s.seq[next].ID && in.ready && in.handle.Readiness() >= ReadinessCanPlayThrough {
		// Instant swap: the preloaded handle takes over with no load phase.
		s.slots[s.active].handle.Pause()
		in.handle.Seek(0)
		in.handle.SetVolume(s.volume)
		in.handle.SetMuted(s.muted)
		if s.playing {
			if err := in.handle.Play(); err != nil && !errors.Is(err, ErrSuperseded) {
				s.playing = false
				emits = append(emits, s.notifyFailure(err)...)
			}
		}
		s.active = 1 - s.active
		s.current = next
		s.logf("swap to slot=%d clip=%d", s.active, next)
	} else {
		// Preload miss: reload on the same slot. A brief gap is the
		// degraded fallback here.
		s.current = next
		s.beginLoad(s.active, next, 0, s.playing)
		s.logf("preload miss, reload clip=%d", next)
	}

	start, err := s.seq.StartTime(next)
	if err == nil {
		s.lastEmitted = start
		emits = append(emits, s.notifyTime(start)...)
	}
	emits = append(emits, s.notifyClip(next)...)
	s.preload()
	s.mu.Unlock()
	fire(emits)
}

func (s *Scheduler) onFailed(slotIdx int, err error) {
	s.mu.Lock()
	var emits []func()
	if slotIdx == s.active {
		// Recoverable: play state reverts, clip index is untouched.
		s.playing = false
		s.pendingPlay = false
		emits = s.notifyFailure(err)
	}
	s.logf("slot=%d failed: %v", slotIdx, err)
	s.mu.Unlock()
	fire(emits)
}

// playActive starts the active handle, translating rejection into a paused
// state. Caller holds the lock.
func (s *Scheduler) playActive() []func() {
	if err := s.slots[s.active].handle.Play(); err != nil && !errors.Is(err, ErrSuperseded) {
		s.playing = false
		return s.notifyFailure(err)
	}
	return nil
}

func (s *Scheduler) notifyTime(global float64) []func() {
	if s.events.TimeUpdated == nil {
		return nil
	}
	return []func(){func() { s.events.TimeUpdated(global) }}
}

func (s *Scheduler) notifyClip(index int) []func() {
	if s.events.ClipChanged == nil {
		return nil
	}
	return []func(){func() { s.events.ClipChanged(index) }}
}

func (s *Scheduler) notifyFailure(err error) []func() {
	if s.events.Failed == nil {
		return nil
	}
	return []func(){func() { s.events.Failed(err) }}
}

func (s *Scheduler) logf(format string, args ...any) {
	if s.logr != nil {
		s.logr.Printf("playback: "+format, args...)
	}
}

func fire(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
