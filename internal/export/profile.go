package export

import "fmt"

// Profile is the fixed normalization target. Every clip is re-encoded to
// these exact parameters so the final concatenation can stream-copy: inputs
// with identical codec, rate, and pixel format splice without stalls.
type Profile struct {
	VideoCodec   string
	CRF          int
	Preset       string
	FPS          int
	PixelFormat  string
	AudioCodec   string
	AudioBitrate string
	SampleRate   int
	FastStart    bool
}

// DefaultProfile returns the baseline normalization target.
func DefaultProfile() Profile {
	return Profile{
		VideoCodec:   "libx264",
		CRF:          23,
		Preset:       "veryfast",
		FPS:          30,
		PixelFormat:  "yuv420p",
		AudioCodec:   "aac",
		AudioBitrate: "128k",
		SampleRate:   44100,
		FastStart:    true,
	}
}

// NormalizeArgs builds the deterministic re-encode command for one clip. The
// same profile applied to every clip is what makes the later stream copy
// safe.
func (p Profile) NormalizeArgs(input, output string) []string {
	args := []string{
		"-y",
		"-i", input,
		"-c:v", p.VideoCodec,
		"-crf", fmt.Sprintf("%d", p.CRF),
		"-preset", p.Preset,
		"-r", fmt.Sprintf("%d", p.FPS),
		"-pix_fmt", p.PixelFormat,
		"-c:a", p.AudioCodec,
		"-b:a", p.AudioBitrate,
		"-ar", fmt.Sprintf("%d", p.SampleRate),
	}
	if p.FastStart {
		args = append(args, "-movflags", "+faststart")
	}
	return append(args, output)
}

// ConcatArgs builds the stream-copy concatenation over a manifest of
// normalized entries.
func ConcatArgs(manifest, output string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", manifest,
		"-c", "copy",
		output,
	}
}
