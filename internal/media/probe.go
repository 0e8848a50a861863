package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Info summarizes the ffprobe view of one media file.
type Info struct {
	FormatName      string
	DurationSeconds float64
	Width           int
	Height          int
	VideoCodec      string
	HasVideo        bool
}

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Probe runs ffprobe against path and extracts format and first-video-stream
// metadata.
func Probe(ctx context.Context, runner Runner, path string) (Info, error) {
	if runner == nil {
		runner = CmdRunner{}
	}

	args := []string{
		"-v", "error",
		"-show_format",
		"-show_streams",
		"-print_format", "json",
		path,
	}

	result, err := runner.Run(ctx, "ffprobe", args, RunOptions{})
	if err != nil {
		stderr := strings.TrimSpace(string(result.Stderr))
		if stderr != "" {
			return Info{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, stderr)
		}
		return Info{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	if len(result.Stdout) == 0 {
		return Info{}, fmt.Errorf("ffprobe %s: produced no output", path)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(result.Stdout, &parsed); err != nil {
		return Info{}, fmt.Errorf("decode ffprobe output: %w", err)
	}

	info := Info{FormatName: parsed.Format.FormatName}
	if parsed.Format.Duration != "" {
		if v, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil {
			info.DurationSeconds = v
		}
	}
	for _, s := range parsed.Streams {
		if s.CodecType == "video" {
			info.HasVideo = true
			info.VideoCodec = s.CodecName
			info.Width = s.Width
			info.Height = s.Height
			break
		}
	}
	return info, nil
}
