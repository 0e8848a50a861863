package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures the fixed sequence, upload slots, and export encoding for
// a project.
type Config struct {
	Version  int            `yaml:"version"`
	Fixed    []FixedClip    `yaml:"fixed"`
	Slots    []SlotConfig   `yaml:"slots"`
	Encoding EncodingConfig `yaml:"encoding"`
	Limits   LimitsConfig   `yaml:"limits"`
	Preview  PreviewConfig  `yaml:"preview"`
}

// FixedClip names one clip of the non-removable base sequence, in playback
// order.
type FixedClip struct {
	Path string `yaml:"path"`
}

// SlotConfig declares an upload slot anchored after a 1-based position in the
// fixed sequence. Anchors are fixed at project creation.
type SlotConfig struct {
	Anchor int `yaml:"anchor"`
}

// EncodingConfig is the normalization target applied to every clip before
// concatenation.
type EncodingConfig struct {
	VideoCodec   string `yaml:"video_codec"`
	CRF          int    `yaml:"crf"`
	Preset       string `yaml:"preset"`
	FPS          int    `yaml:"fps"`
	PixelFormat  string `yaml:"pix_fmt"`
	AudioCodec   string `yaml:"audio_codec"`
	AudioBitrate string `yaml:"audio_bitrate"`
	SampleRate   int    `yaml:"sample_rate"`
	FastStart    *bool  `yaml:"faststart,omitempty"`
}

// FastStartValue returns the effective faststart flag applying defaults.
func (e EncodingConfig) FastStartValue() bool {
	if e.FastStart == nil {
		return true
	}
	return *e.FastStart
}

// LimitsConfig bounds accepted uploads.
type LimitsConfig struct {
	MaxUploadMB int64    `yaml:"max_upload_mb"`
	MinWidth    int      `yaml:"min_width"`
	MinHeight   int      `yaml:"min_height"`
	Formats     []string `yaml:"formats"`
}

// PreviewConfig controls the interactive preview.
type PreviewConfig struct {
	MpvBinary string  `yaml:"mpv_binary"`
	Volume    float64 `yaml:"volume"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Encoding: EncodingConfig{
			VideoCodec:   "libx264",
			CRF:          23,
			Preset:       "veryfast",
			FPS:          30,
			PixelFormat:  "yuv420p",
			AudioCodec:   "aac",
			AudioBitrate: "128k",
			SampleRate:   44100,
			FastStart:    boolPtr(true),
		},
		Limits: LimitsConfig{
			MaxUploadMB: 200,
			MinWidth:    640,
			MinHeight:   360,
			Formats:     []string{"mp4", "mov", "webm", "matroska"},
		},
		Preview: PreviewConfig{
			Volume: 1.0,
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise
// returns the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ApplyDefaults ensures nested fields fall back to sensible defaults when
// the YAML omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Encoding.VideoCodec == "" {
		c.Encoding.VideoCodec = defaults.Encoding.VideoCodec
	}
	if c.Encoding.CRF == 0 {
		c.Encoding.CRF = defaults.Encoding.CRF
	}
	if c.Encoding.Preset == "" {
		c.Encoding.Preset = defaults.Encoding.Preset
	}
	if c.Encoding.FPS == 0 {
		c.Encoding.FPS = defaults.Encoding.FPS
	}
	if c.Encoding.PixelFormat == "" {
		c.Encoding.PixelFormat = defaults.Encoding.PixelFormat
	}
	if c.Encoding.AudioCodec == "" {
		c.Encoding.AudioCodec = defaults.Encoding.AudioCodec
	}
	if c.Encoding.AudioBitrate == "" {
		c.Encoding.AudioBitrate = defaults.Encoding.AudioBitrate
	}
	if c.Encoding.SampleRate == 0 {
		c.Encoding.SampleRate = defaults.Encoding.SampleRate
	}
	if c.Limits.MaxUploadMB == 0 {
		c.Limits.MaxUploadMB = defaults.Limits.MaxUploadMB
	}
	if c.Limits.MinWidth == 0 {
		c.Limits.MinWidth = defaults.Limits.MinWidth
	}
	if c.Limits.MinHeight == 0 {
		c.Limits.MinHeight = defaults.Limits.MinHeight
	}
	if len(c.Limits.Formats) == 0 {
		c.Limits.Formats = defaults.Limits.Formats
	}
	if c.Preview.Volume == 0 {
		c.Preview.Volume = defaults.Preview.Volume
	}
}

func boolPtr(v bool) *bool {
	return &v
}
