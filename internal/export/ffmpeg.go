package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DirEngine implements Engine over a scratch directory and a local ffmpeg
// binary. Entry names are plain file names inside the scratch directory;
// commands run with that directory as the working dir so manifest references
// resolve without absolute paths.
type DirEngine struct {
	FFmpegPath string
	Dir        string
	LogsDir    string
}

// NewDirEngine locates ffmpeg and prepares the scratch directory.
func NewDirEngine(dir, logsDir string) (*DirEngine, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("locate ffmpeg: %w", err)
	}
	for _, d := range []string{dir, logsDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", d, err)
		}
	}
	return &DirEngine{FFmpegPath: ffmpegPath, Dir: dir, LogsDir: logsDir}, nil
}

func (e *DirEngine) WriteInput(name string, src io.Reader) (int64, error) {
	f, err := os.Create(filepath.Join(e.Dir, name))
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

func (e *DirEngine) ReadOutput(name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(e.Dir, name))
}

func (e *DirEngine) Remove(name string) error {
	err := os.Remove(filepath.Join(e.Dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Exec runs ffmpeg with machine-readable progress on stdout. Stderr is kept
// in a per-invocation log file for diagnosis.
func (e *DirEngine) Exec(ctx context.Context, spec ExecSpec) error {
	args := append([]string{"-progress", "pipe:1", "-nostats"}, spec.Args...)

	cmd := exec.CommandContext(ctx, e.FFmpegPath, args...)
	cmd.Dir = e.Dir

	logPath := filepath.Join(e.LogsDir, "ffmpeg-"+time.Now().Format("150405.000000")+".log")
	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("open ffmpeg log: %w", err)
	}
	defer logFile.Close()
	fmt.Fprintf(logFile, "ffmpeg %s\n\n", strings.Join(args, " "))
	cmd.Stderr = logFile

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	scanErr := scanProgress(stdout, spec)

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w (see %s)", err, logPath)
	}
	if scanErr != nil {
		return fmt.Errorf("read ffmpeg progress: %w (see %s)", scanErr, logPath)
	}
	return nil
}

// scanProgress feeds -progress lines to the spec callback until the stream
// ends. A non-nil return means the pipe broke mid-run and reported progress
// is incomplete.
func scanProgress(r io.Reader, spec ExecSpec) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if spec.OnProgress == nil {
			continue
		}
		if seconds, ok := parseProgressLine(line); ok && spec.InputSeconds > 0 {
			ratio := seconds / spec.InputSeconds
			if ratio > 1 {
				ratio = 1
			}
			spec.OnProgress(ratio)
		}
		if strings.HasPrefix(line, "progress=") && strings.TrimPrefix(line, "progress=") == "end" {
			spec.OnProgress(1)
		}
	}
	return scanner.Err()
}

// parseProgressLine extracts processed seconds from an ffmpeg -progress
// key=value line. Only out_time_us is consulted; it is present in every
// progress block.
func parseProgressLine(line string) (float64, bool) {
	value, ok := strings.CutPrefix(line, "out_time_us=")
	if !ok {
		return 0, false
	}
	us, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || us < 0 {
		return 0, false
	}
	return float64(us) / 1e6, true
}

var _ Engine = (*DirEngine)(nil)
