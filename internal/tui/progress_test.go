package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestRowUpdateMsg(t *testing.T) {
	m := NewProgressModel("Export", []Column{
		{Header: "POS", Width: 4},
		{Header: "STATUS", Width: 13},
		{Header: "CLIP", Width: 20},
	})
	m.AddRow("clip:001", []string{"1", "pending", "intro.mp4"})
	m.AddRow("clip:002", []string{"2", "pending", "upload-1.mov"})

	updated, _ := m.Update(RowUpdateMsg{
		Key:    "clip:001",
		Fields: map[string]string{"STATUS": "normalized"},
	})
	m = updated.(ProgressModel)

	if m.rows[0].Fields[1] != "normalized" {
		t.Errorf("expected STATUS=normalized, got %q", m.rows[0].Fields[1])
	}
	// Second row unchanged.
	if m.rows[1].Fields[1] != "pending" {
		t.Errorf("expected row 2 STATUS=pending, got %q", m.rows[1].Fields[1])
	}
}

func TestRowUpdateMsg_UnknownKey(t *testing.T) {
	m := NewProgressModel("Export", []Column{
		{Header: "STATUS", Width: 13},
	})
	m.AddRow("clip:001", []string{"pending"})

	updated, _ := m.Update(RowUpdateMsg{
		Key:    "clip:999",
		Fields: map[string]string{"STATUS": "normalized"},
	})
	m = updated.(ProgressModel)

	if m.rows[0].Fields[0] != "pending" {
		t.Errorf("expected STATUS unchanged, got %q", m.rows[0].Fields[0])
	}
}

func TestPercentMsgMonotonic(t *testing.T) {
	m := NewProgressModel("Export", []Column{{Header: "STATUS", Width: 13}})

	updated, _ := m.Update(PercentMsg{Phase: "normalize", Percent: 40})
	m = updated.(ProgressModel)
	if m.Percent() != 40 {
		t.Fatalf("Percent=%v, want 40", m.Percent())
	}

	// A stale lower value must not rewind the bar.
	updated, _ = m.Update(PercentMsg{Phase: "fetch", Percent: 15})
	m = updated.(ProgressModel)
	if m.Percent() != 40 {
		t.Errorf("Percent=%v after stale update, want 40", m.Percent())
	}
	if m.phase != "normalize" {
		t.Errorf("phase=%q after stale update, want normalize", m.phase)
	}
}

func TestWorkDoneMsg(t *testing.T) {
	m := NewProgressModel("Export", []Column{{Header: "STATUS", Width: 13}})

	updated, cmd := m.Update(WorkDoneMsg{})
	m = updated.(ProgressModel)

	if !m.Done() {
		t.Error("expected Done() to be true after WorkDoneMsg")
	}
	if m.Percent() != 100 {
		t.Errorf("Percent=%v after WorkDoneMsg, want 100", m.Percent())
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}

func TestErrorMsg(t *testing.T) {
	m := NewProgressModel("Export", []Column{{Header: "STATUS", Width: 13}})

	updated, cmd := m.Update(ErrorMsg{Err: tea.ErrProgramKilled})
	m = updated.(ProgressModel)

	if !m.Done() {
		t.Error("expected Done() to be true after ErrorMsg")
	}
	if m.Err() == nil {
		t.Error("expected Err() to be non-nil")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}

func TestView(t *testing.T) {
	m := NewProgressModel("Export", []Column{
		{Header: "POS", Width: 4},
		{Header: "STATUS", Width: 13},
		{Header: "CLIP", Width: 20},
	})
	m.AddRow("clip:001", []string{"1", "pending", "intro.mp4"})
	m.AddRow("clip:002", []string{"2", "normalized", "upload-1.mov"})

	view := m.View()

	for _, want := range []string{"Export", "POS", "STATUS", "CLIP", "intro.mp4", "pending", "normalized"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestViewShowsPhaseWhileRunning(t *testing.T) {
	m := NewProgressModel("Export", []Column{{Header: "STATUS", Width: 13}})
	m.AddRow("clip:001", []string{"pending"})

	updated, _ := m.Update(PercentMsg{Phase: "concat", Percent: 80})
	m = updated.(ProgressModel)

	view := m.View()
	if !strings.Contains(view, "concat") {
		t.Error("expected view to show the active phase")
	}
	if !strings.Contains(view, "80%") {
		t.Error("expected view to show the percent readout")
	}
}

func TestViewHidesSpinnerWhenDone(t *testing.T) {
	m := NewProgressModel("Export", []Column{{Header: "STATUS", Width: 13}})
	m.AddRow("clip:001", []string{"delivered"})
	updated, _ := m.Update(WorkDoneMsg{})
	m = updated.(ProgressModel)

	view := m.View()
	for _, frame := range spinnerFrames {
		if strings.Contains(view, frame) {
			t.Fatal("expected no spinner frame after done")
		}
	}
}

func TestTickMsg(t *testing.T) {
	m := NewProgressModel("Export", []Column{{Header: "STATUS", Width: 13}})
	m.AddRow("clip:001", []string{"pending"})

	updated, cmd := m.Update(tickMsg{})
	m = updated.(ProgressModel)

	if m.tick != 1 {
		t.Errorf("expected tick=1 after tickMsg, got %d", m.tick)
	}
	if cmd == nil {
		t.Error("expected next tick command")
	}
}

func TestTickStopsAfterDone(t *testing.T) {
	m := NewProgressModel("Export", []Column{{Header: "STATUS", Width: 13}})
	updated, _ := m.Update(WorkDoneMsg{})
	m = updated.(ProgressModel)

	updated, cmd := m.Update(tickMsg{})
	m = updated.(ProgressModel)

	if cmd != nil {
		t.Error("expected no tick command after done")
	}
}

func TestCtrlC(t *testing.T) {
	m := NewProgressModel("Export", []Column{{Header: "STATUS", Width: 13}})

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(ProgressModel)

	if !m.Done() {
		t.Error("expected Done() to be true after ctrl+c")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}

func TestNonEmptyOrDash(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "-"},
		{"  ", "-"},
		{"hello", "hello"},
		{" hello ", "hello"},
	}
	for _, tt := range tests {
		got := NonEmptyOrDash(tt.input)
		if got != tt.want {
			t.Errorf("NonEmptyOrDash(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  string
	}{
		{"short", 10, "short"},
		{"a longer string here", 10, "a longe..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"", 5, ""},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		got := TruncateWithEllipsis(tt.input, tt.max)
		if got != tt.want {
			t.Errorf("TruncateWithEllipsis(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
		}
	}
}

func TestMarqueeText(t *testing.T) {
	tests := []struct {
		text    string
		width   int
		tick    int
		want    string
		wantLen int
	}{
		// Text fits: returned as-is (no marquee)
		{"short", 10, 0, "short", 5},
		// Text exceeds: marquee sliding window, always width chars
		{"hello world here", 5, 0, "hello", 5},
		{"hello world here", 5, 1, "ello ", 5},
		{"hello world here", 5, 5, " worl", 5},
		// Wraps around with gap
		{"abcdef", 4, 0, "abcd", 4},
		{"abcdef", 4, 6, "   a", 4},
	}
	for _, tt := range tests {
		got := marqueeText(tt.text, tt.width, tt.tick)
		if len(got) != tt.wantLen {
			t.Errorf("marqueeText(%q, %d, %d) length = %d, want %d", tt.text, tt.width, tt.tick, len(got), tt.wantLen)
		}
		if got != tt.want {
			t.Errorf("marqueeText(%q, %d, %d) = %q, want %q", tt.text, tt.width, tt.tick, got, tt.want)
		}
	}
}
