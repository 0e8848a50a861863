// Package mpv implements the playback.Handle interface over mpv's JSON IPC
// protocol. Each handle owns one mpv process; the preview runs two of them so
// the scheduler can preload and swap at clip boundaries.
package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"clipdeck/internal/playback"
)

const (
	connectAttempts = 40
	connectBackoff  = 50 * time.Millisecond

	timePosPropertyID = 1
	eofPropertyID     = 2
)

// Handle drives a single mpv process through its IPC socket.
type Handle struct {
	socket string
	cmd    *exec.Cmd
	conn   net.Conn

	mu        sync.Mutex
	events    playback.HandleEvents
	readiness playback.Readiness
	timePos   float64
	atEOF     bool
	reqID     int
	closed    bool
}

type request struct {
	Command   []any `json:"command"`
	RequestID int   `json:"request_id"`
}

type message struct {
	Event  string `json:"event"`
	Reason string `json:"reason"`
	Name   string `json:"name"`
	ID     int    `json:"id"`
	Data   any    `json:"data"`
}

// Spawn starts an idle mpv process with an IPC socket and connects to it.
// The caller must Close the handle to release the process and socket.
func Spawn(ctx context.Context, binary string) (*Handle, error) {
	if binary == "" {
		binary = "mpv"
	}
	bin, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("locate mpv: %w", err)
	}

	socket := filepath.Join(os.TempDir(), "clipdeck-mpv-"+uuid.NewString()[:8]+".sock")
	cmd := exec.CommandContext(ctx, bin,
		"--idle=yes",
		"--input-ipc-server="+socket,
		"--no-terminal",
		"--keep-open=always",
		"--pause",
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start mpv: %w", err)
	}

	h := &Handle{socket: socket, cmd: cmd}
	if err := h.connect(); err != nil {
		_ = cmd.Process.Kill()
		return nil, err
	}

	go h.readLoop()

	if err := h.send("observe_property", timePosPropertyID, "time-pos"); err != nil {
		h.Close()
		return nil, err
	}
	// keep-open holds the file loaded at EOF instead of unloading it, so the
	// end of a clip surfaces as the eof-reached property, not an end-file event.
	if err := h.send("observe_property", eofPropertyID, "eof-reached"); err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

// connect waits for mpv to create its IPC socket and dials it.
func (h *Handle) connect() error {
	var lastErr error
	for i := 0; i < connectAttempts; i++ {
		conn, err := net.Dial("unix", h.socket)
		if err == nil {
			h.conn = conn
			return nil
		}
		lastErr = err
		time.Sleep(connectBackoff)
	}
	return fmt.Errorf("connect to mpv socket %s: %w", h.socket, lastErr)
}

// Close quits mpv and releases the socket.
func (h *Handle) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()

	_ = h.send("quit")
	if h.conn != nil {
		_ = h.conn.Close()
	}
	if h.cmd != nil && h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
		_ = h.cmd.Wait()
	}
	_ = os.Remove(h.socket)
}

// Load replaces the current file. Readiness drops until mpv reports the new
// file loaded.
func (h *Handle) Load(source string) {
	h.mu.Lock()
	h.readiness = playback.ReadinessNone
	h.timePos = 0
	h.atEOF = false
	h.mu.Unlock()
	_ = h.send("loadfile", source, "replace")
}

// Play unpauses mpv.
func (h *Handle) Play() error {
	if err := h.send("set_property", "pause", false); err != nil {
		return fmt.Errorf("mpv play: %w", err)
	}
	return nil
}

// Pause suspends playback.
func (h *Handle) Pause() {
	_ = h.send("set_property", "pause", true)
}

// Seek jumps to an absolute position within the loaded file.
func (h *Handle) Seek(seconds float64) {
	_ = h.send("seek", seconds, "absolute")
}

// CurrentTime returns the last observed playback position.
func (h *Handle) CurrentTime() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.timePos
}

// Readiness reports the load state of the current file.
func (h *Handle) Readiness() playback.Readiness {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.readiness
}

// SetVolume maps the scheduler's 0..1 volume onto mpv's 0..100 scale.
func (h *Handle) SetVolume(v float64) {
	_ = h.send("set_property", "volume", v*100)
}

// SetMuted toggles mpv's mute property.
func (h *Handle) SetMuted(m bool) {
	_ = h.send("set_property", "mute", m)
}

// Subscribe registers the scheduler's event callbacks.
func (h *Handle) Subscribe(ev playback.HandleEvents) {
	h.mu.Lock()
	h.events = ev
	h.mu.Unlock()
}

func (h *Handle) send(command ...any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn == nil {
		return fmt.Errorf("mpv connection not established")
	}
	h.reqID++
	payload, err := json.Marshal(request{Command: command, RequestID: h.reqID})
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	_, err = h.conn.Write(payload)
	return err
}

// readLoop decodes newline-delimited IPC messages until the connection drops.
func (h *Handle) readLoop() {
	scanner := bufio.NewScanner(h.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		h.dispatch(scanner.Bytes())
	}
}

// dispatch translates one IPC message into handle events.
func (h *Handle) dispatch(raw []byte) {
	var msg message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}

	h.mu.Lock()
	ev := h.events
	h.mu.Unlock()

	switch msg.Event {
	case "file-loaded":
		// Local files buffer instantly; file-loaded is the can-play-through
		// signal for this backend.
		h.mu.Lock()
		h.readiness = playback.ReadinessCanPlayThrough
		h.mu.Unlock()
		if ev.Ready != nil {
			ev.Ready()
		}

	case "property-change":
		switch msg.ID {
		case timePosPropertyID:
			pos, ok := msg.Data.(float64)
			if !ok {
				return
			}
			h.mu.Lock()
			h.timePos = pos
			h.mu.Unlock()
			if ev.TimeUpdate != nil {
				ev.TimeUpdate(pos)
			}

		case eofPropertyID:
			at, ok := msg.Data.(bool)
			if !ok {
				return
			}
			h.mu.Lock()
			fire := at && !h.atEOF
			h.atEOF = at
			h.mu.Unlock()
			// Ended fires on the rising edge only; seeking back into the
			// file clears eof-reached and re-arms it.
			if fire && ev.Ended != nil {
				ev.Ended()
			}
		}

	case "end-file":
		// keep-open means the current file never unloads at EOF; end-file
		// only arrives for load errors and deliberate replacements.
		if msg.Reason == "error" && ev.Failed != nil {
			ev.Failed(fmt.Errorf("mpv failed to play current file"))
		}
	}
}

var _ playback.Handle = (*Handle)(nil)
