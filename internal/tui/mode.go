package tui

import (
	"io"
	"os"
	"runtime"
	"strings"
)

// OutputMode selects how the export and preview commands render progress.
type OutputMode int

const (
	// ModeTUI runs the bubbletea screens.
	ModeTUI OutputMode = iota
	// ModePlain prints phase lines and a final table.
	ModePlain
	// ModeJSON emits a structured result for scripting.
	ModeJSON
)

// DetectMode picks the output mode for a command writer. Explicit flags win;
// otherwise the TUI runs only on a real terminal.
func DetectMode(out io.Writer, noProgress, jsonOutput bool) OutputMode {
	switch {
	case jsonOutput:
		return ModeJSON
	case noProgress:
		return ModePlain
	case !isInteractive(out):
		return ModePlain
	}
	return ModeTUI
}

// isInteractive reports whether out is a character device with a usable TERM.
func isInteractive(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	term := os.Getenv("TERM")
	return term != "" && !strings.EqualFold(term, "dumb")
}
