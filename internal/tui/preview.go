package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

const seekStep = 5.0

// Transport is the playback control surface the preview screen drives.
type Transport interface {
	Play()
	Pause()
	Seek(global float64)
	Position() float64
	CurrentClipIndex() int
	IsPlaying() bool
	HasEnded() bool
	SetMuted(muted bool)
}

// PreviewClip describes one entry of the preview's clip list.
type PreviewClip struct {
	Label    string
	Duration float64
}

// PreviewModel is the interactive preview screen: a clip list with the
// current clip highlighted, a seek bar over the whole sequence, and
// transport key bindings. Playback state changes arrive as messages sent
// from the scheduler's event callbacks; key presses call the transport
// directly.
type PreviewModel struct {
	transport Transport
	clips     []PreviewClip
	total     float64

	bar     progress.Model
	global  float64
	current int
	playing bool
	ended   bool
	muted   bool
	err     error

	quitting bool
}

// NewPreviewModel builds the preview screen for the given merged sequence.
func NewPreviewModel(transport Transport, clips []PreviewClip) PreviewModel {
	total := 0.0
	for _, c := range clips {
		total += c.Duration
	}
	return PreviewModel{
		transport: transport,
		clips:     clips,
		total:     total,
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
	}
}

// Init satisfies the tea.Model interface.
func (m PreviewModel) Init() tea.Cmd {
	return nil
}

// Update satisfies the tea.Model interface.
func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeMsg:
		m.global = msg.Global
		return m, nil

	case ClipMsg:
		m.current = msg.Index
		m.ended = false
		return m, nil

	case PlaybackEndedMsg:
		m.ended = true
		m.playing = false
		return m, nil

	case PlaybackErrorMsg:
		m.err = msg.Err
		m.playing = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m PreviewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case " ":
		if m.playing && !m.ended {
			m.transport.Pause()
			m.playing = false
		} else {
			// After a natural end this restarts from the top; the
			// scheduler owns that distinction.
			m.transport.Play()
			m.playing = true
			m.ended = false
			m.err = nil
		}
		return m, nil

	case "left":
		target := m.global - seekStep
		if target < 0 {
			target = 0
		}
		m.transport.Seek(target)
		m.global = target
		m.ended = false
		return m, nil

	case "right":
		target := m.global + seekStep
		if m.total > 0 && target > m.total {
			target = m.total
		}
		m.transport.Seek(target)
		m.global = target
		m.ended = false
		return m, nil

	case "m":
		m.muted = !m.muted
		m.transport.SetMuted(m.muted)
		return m, nil
	}
	return m, nil
}

// View satisfies the tea.Model interface.
func (m PreviewModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Preview"))
	b.WriteString("\n\n")

	for i, clip := range m.clips {
		marker := "  "
		label := clip.Label
		if i == m.current {
			marker = "▶ "
			label = HeaderStyle.Render(label)
		}
		fmt.Fprintf(&b, "%s%2d. %s  %s\n", marker, i+1, label, FaintStyle.Render(formatClock(clip.Duration)))
	}

	b.WriteByte('\n')
	ratio := 0.0
	if m.total > 0 {
		ratio = m.global / m.total
	}
	b.WriteString(m.bar.ViewAs(ratio))
	fmt.Fprintf(&b, " %s / %s\n", formatClock(m.global), formatClock(m.total))

	state := "paused"
	switch {
	case m.err != nil:
		state = "error"
	case m.ended:
		state = "ended"
	case m.playing:
		state = "playing"
	}
	b.WriteString(StatusStyle(state).Render(state))
	if m.muted {
		b.WriteString(FaintStyle.Render("  [muted]"))
	}
	if m.err != nil {
		fmt.Fprintf(&b, "  %v", m.err)
	}
	b.WriteByte('\n')

	b.WriteString(FaintStyle.Render("\nspace play/pause · ←/→ seek 5s · m mute · q quit\n"))
	return b.String()
}

// Err returns any playback failure shown on screen when the program exited.
func (m PreviewModel) Err() error {
	return m.err
}

func formatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	if total >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
