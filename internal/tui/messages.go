package tui

// RowUpdateMsg updates a single row's fields by column name.
type RowUpdateMsg struct {
	Key    string
	Fields map[string]string
}

// PercentMsg updates the overall pipeline progress bar.
type PercentMsg struct {
	Phase   string
	Percent float64
}

// WorkDoneMsg signals that all background work has completed.
type WorkDoneMsg struct{}

// ErrorMsg signals a fatal error; the TUI should quit.
type ErrorMsg struct {
	Err error
}

// TimeMsg carries the current global playback time in seconds.
type TimeMsg struct {
	Global float64
}

// ClipMsg announces that playback moved to a new clip.
type ClipMsg struct {
	Index int
}

// PlaybackEndedMsg signals natural end of the final clip.
type PlaybackEndedMsg struct{}

// PlaybackErrorMsg reports a playback failure; the transport stays open so
// the user can seek elsewhere or quit.
type PlaybackErrorMsg struct {
	Err error
}
