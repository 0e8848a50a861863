package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"clipdeck/internal/config"
	"clipdeck/internal/export"
	"clipdeck/internal/logx"
	"clipdeck/internal/media"
	"clipdeck/internal/paths"
	"clipdeck/internal/timeline"
)

// session bundles the resolved project, its config, and a file logger.
// Commands open one at the start of their run and close it on exit.
type session struct {
	pp     paths.ProjectPaths
	cfg    config.Config
	logger *log.Logger
	closer io.Closer
}

func openSession() (*session, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(pp.Root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("project directory does not exist: %s", pp.Root)
	}

	if err := pp.EnsureDirs(); err != nil {
		return nil, err
	}

	logger, closer, err := logx.New(pp)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		closer.Close()
		return nil, err
	}

	return &session{pp: pp, cfg: cfg, logger: logger, closer: closer}, nil
}

func (s *session) Close() {
	if s.closer != nil {
		s.closer.Close()
	}
}

func (s *session) limits() media.Limits {
	return media.Limits{
		MaxBytes:  s.cfg.Limits.MaxUploadMB * 1024 * 1024,
		MinWidth:  s.cfg.Limits.MinWidth,
		MinHeight: s.cfg.Limits.MinHeight,
		Formats:   s.cfg.Limits.Formats,
	}
}

func (s *session) profile() export.Profile {
	enc := s.cfg.Encoding
	return export.Profile{
		VideoCodec:   enc.VideoCodec,
		CRF:          enc.CRF,
		Preset:       enc.Preset,
		FPS:          enc.FPS,
		PixelFormat:  enc.PixelFormat,
		AudioCodec:   enc.AudioCodec,
		AudioBitrate: enc.AudioBitrate,
		SampleRate:   enc.SampleRate,
		FastStart:    enc.FastStartValue(),
	}
}

// resolveUploadPath resolves a --slot value: absolute paths pass through,
// otherwise the uploads directory is tried before the project root.
func (s *session) resolveUploadPath(value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	inUploads := filepath.Join(s.pp.UploadsDir, value)
	if exists, _ := paths.FileExists(inUploads); exists {
		return inUploads
	}
	return filepath.Join(s.pp.Root, value)
}

// parseSlotArgs parses repeated --slot anchor=path flags into a map keyed by
// anchor. Anchors must be numeric and unique within one invocation.
func parseSlotArgs(values []string) (map[int]string, error) {
	filled := make(map[int]string, len(values))
	for _, value := range values {
		anchorStr, path, ok := strings.Cut(value, "=")
		if !ok || strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("invalid --slot %q (want anchor=path)", value)
		}
		anchor, err := strconv.Atoi(strings.TrimSpace(anchorStr))
		if err != nil {
			return nil, fmt.Errorf("invalid --slot anchor %q", anchorStr)
		}
		if _, dup := filled[anchor]; dup {
			return nil, fmt.Errorf("slot anchor %d given twice", anchor)
		}
		filled[anchor] = strings.TrimSpace(path)
	}
	return filled, nil
}

// buildSequence probes the fixed clips, validates and probes any slot
// uploads, and returns the merged playback order. onStatus, when non-nil,
// receives human-readable phase updates.
func (s *session) buildSequence(ctx context.Context, runner media.Runner, slotPaths map[int]string, onStatus func(string)) (timeline.Sequence, error) {
	status := func(msg string) {
		if onStatus != nil {
			onStatus(msg)
		}
	}

	if len(s.cfg.Fixed) == 0 {
		return nil, fmt.Errorf("no fixed clips configured in %s", s.pp.ConfigFile)
	}

	configured := make(map[int]bool, len(s.cfg.Slots))
	for _, slot := range s.cfg.Slots {
		configured[slot.Anchor] = true
	}
	for anchor := range slotPaths {
		if !configured[anchor] {
			return nil, fmt.Errorf("no slot configured at anchor %d", anchor)
		}
	}

	fixed := make([]timeline.Clip, 0, len(s.cfg.Fixed))
	for i, fc := range s.cfg.Fixed {
		path := s.pp.ResolveClipPath(fc.Path)
		status(fmt.Sprintf("probing fixed clip %d/%d", i+1, len(s.cfg.Fixed)))
		info, err := media.Probe(ctx, runner, path)
		if err != nil {
			return nil, fmt.Errorf("probe fixed clip %q: %w", fc.Path, err)
		}
		fixed = append(fixed, timeline.NewClip(path, info.DurationSeconds, true))
		s.logger.Printf("fixed clip %d: %s (%.2fs)", i+1, path, info.DurationSeconds)
	}

	limits := s.limits()
	slots := make([]timeline.Slot, 0, len(s.cfg.Slots))
	anchors := make([]int, 0, len(s.cfg.Slots))
	for _, sc := range s.cfg.Slots {
		anchors = append(anchors, sc.Anchor)
	}
	sort.Ints(anchors)

	for _, anchor := range anchors {
		slot := timeline.Slot{Anchor: anchor}
		if value, ok := slotPaths[anchor]; ok {
			path := s.resolveUploadPath(value)
			status(fmt.Sprintf("validating upload for slot %d", anchor))
			if err := media.Validate(ctx, runner, path, limits); err != nil {
				return nil, fmt.Errorf("slot %d upload rejected: %w", anchor, err)
			}
			info, err := media.Probe(ctx, runner, path)
			if err != nil {
				return nil, fmt.Errorf("probe upload %q: %w", value, err)
			}
			clip := timeline.NewClip(path, info.DurationSeconds, false)
			slot.Clip = &clip
			s.logger.Printf("slot %d: %s (%.2fs)", anchor, path, info.DurationSeconds)
		}
		slots = append(slots, slot)
	}

	return timeline.Merge(fixed, slots), nil
}
