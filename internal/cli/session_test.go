package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipdeck/internal/config"
	"clipdeck/internal/media"
	"clipdeck/internal/paths"
)

// stubRunner answers ffprobe invocations with canned JSON keyed by the file
// path in the final argument.
type stubRunner struct {
	outputs map[string]string
}

func (s stubRunner) Run(_ context.Context, _ string, args []string, _ media.RunOptions) (media.RunResult, error) {
	path := args[len(args)-1]
	out, ok := s.outputs[path]
	if !ok {
		return media.RunResult{}, fmt.Errorf("no stub output for %s", path)
	}
	return media.RunResult{Stdout: []byte(out)}, nil
}

func probeJSON(format string, duration float64, width, height int) string {
	return fmt.Sprintf(`{
		"format": {"format_name": %q, "duration": "%0.2f"},
		"streams": [{"codec_type": "video", "codec_name": "h264", "width": %d, "height": %d}]
	}`, format, duration, width, height)
}

func TestParseSlotArgs(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    map[int]string
		wantErr string
	}{
		{
			name:   "single",
			values: []string{"2=clip.mp4"},
			want:   map[int]string{2: "clip.mp4"},
		},
		{
			name:   "multiple",
			values: []string{"1=a.mp4", "3=b.mov"},
			want:   map[int]string{1: "a.mp4", 3: "b.mov"},
		},
		{
			name:   "empty",
			values: nil,
			want:   map[int]string{},
		},
		{
			name:    "missing separator",
			values:  []string{"clip.mp4"},
			wantErr: "want anchor=path",
		},
		{
			name:    "empty path",
			values:  []string{"1="},
			wantErr: "want anchor=path",
		},
		{
			name:    "non-numeric anchor",
			values:  []string{"x=clip.mp4"},
			wantErr: "invalid --slot anchor",
		},
		{
			name:    "duplicate anchor",
			values:  []string{"1=a.mp4", "1=b.mp4"},
			wantErr: "given twice",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseSlotArgs(tc.values)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("err=%v, want containing %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSlotArgs: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for k, v := range tc.want {
				if got[k] != v {
					t.Errorf("anchor %d=%q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestSession(t *testing.T) *session {
	t.Helper()
	root := t.TempDir()
	pp, err := paths.Resolve(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := pp.EnsureDirs(); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	return &session{pp: pp, cfg: cfg, logger: discardLogger()}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBuildSequenceMergesUploads(t *testing.T) {
	s := newTestSession(t)

	intro := filepath.Join(s.pp.ClipsDir, "intro.mp4")
	outro := filepath.Join(s.pp.ClipsDir, "outro.mp4")
	upload := filepath.Join(s.pp.UploadsDir, "guest.mov")
	for _, p := range []string{intro, outro, upload} {
		writeFile(t, p)
	}

	s.cfg.Fixed = []config.FixedClip{{Path: "intro.mp4"}, {Path: "outro.mp4"}}
	s.cfg.Slots = []config.SlotConfig{{Anchor: 1}}

	runner := stubRunner{outputs: map[string]string{
		intro:  probeJSON("mov,mp4,m4a,3gp,3g2,mj2", 10, 1280, 720),
		outro:  probeJSON("mov,mp4,m4a,3gp,3g2,mj2", 8, 1280, 720),
		upload: probeJSON("mov,mp4,m4a,3gp,3g2,mj2", 5, 1920, 1080),
	}}

	seq, err := s.buildSequence(context.Background(), runner, map[int]string{1: "guest.mov"}, nil)
	if err != nil {
		t.Fatalf("buildSequence: %v", err)
	}

	if len(seq) != 3 {
		t.Fatalf("len=%d, want 3", len(seq))
	}
	wantSources := []string{intro, upload, outro}
	for i, want := range wantSources {
		if seq[i].Source != want {
			t.Errorf("seq[%d].Source=%q, want %q", i, seq[i].Source, want)
		}
	}
	if !seq[0].Fixed || seq[1].Fixed || !seq[2].Fixed {
		t.Errorf("fixed flags wrong: %v %v %v", seq[0].Fixed, seq[1].Fixed, seq[2].Fixed)
	}
	if got := seq.TotalDuration(); got != 23 {
		t.Errorf("TotalDuration=%v, want 23", got)
	}
}

func TestBuildSequenceEmptySlotOmitted(t *testing.T) {
	s := newTestSession(t)

	intro := filepath.Join(s.pp.ClipsDir, "intro.mp4")
	writeFile(t, intro)
	s.cfg.Fixed = []config.FixedClip{{Path: "intro.mp4"}}
	s.cfg.Slots = []config.SlotConfig{{Anchor: 1}}

	runner := stubRunner{outputs: map[string]string{
		intro: probeJSON("mov,mp4,m4a,3gp,3g2,mj2", 10, 1280, 720),
	}}

	seq, err := s.buildSequence(context.Background(), runner, map[int]string{}, nil)
	if err != nil {
		t.Fatalf("buildSequence: %v", err)
	}
	if len(seq) != 1 {
		t.Fatalf("len=%d, want 1 (empty slot contributes nothing)", len(seq))
	}
}

func TestBuildSequenceRejectsUnknownAnchor(t *testing.T) {
	s := newTestSession(t)
	s.cfg.Fixed = []config.FixedClip{{Path: "intro.mp4"}}
	s.cfg.Slots = nil

	_, err := s.buildSequence(context.Background(), stubRunner{}, map[int]string{1: "x.mp4"}, nil)
	if err == nil || !strings.Contains(err.Error(), "no slot configured at anchor 1") {
		t.Fatalf("err=%v, want unknown anchor rejection", err)
	}
}

func TestBuildSequenceRejectsBadUpload(t *testing.T) {
	s := newTestSession(t)

	intro := filepath.Join(s.pp.ClipsDir, "intro.mp4")
	tiny := filepath.Join(s.pp.UploadsDir, "tiny.mp4")
	writeFile(t, intro)
	writeFile(t, tiny)

	s.cfg.Fixed = []config.FixedClip{{Path: "intro.mp4"}}
	s.cfg.Slots = []config.SlotConfig{{Anchor: 1}}

	runner := stubRunner{outputs: map[string]string{
		intro: probeJSON("mov,mp4,m4a,3gp,3g2,mj2", 10, 1280, 720),
		tiny:  probeJSON("mov,mp4,m4a,3gp,3g2,mj2", 5, 320, 240),
	}}

	_, err := s.buildSequence(context.Background(), runner, map[int]string{1: "tiny.mp4"}, nil)
	if err == nil || !strings.Contains(err.Error(), "RESOLUTION_TOO_LOW") {
		t.Fatalf("err=%v, want resolution rejection", err)
	}
}

func TestProfileFromEncodingConfig(t *testing.T) {
	s := newTestSession(t)
	s.cfg.Encoding.CRF = 18
	s.cfg.Encoding.Preset = "slow"

	profile := s.profile()
	if profile.CRF != 18 || profile.Preset != "slow" {
		t.Errorf("profile=%+v, want CRF 18 preset slow", profile)
	}
	if profile.VideoCodec != "libx264" || !profile.FastStart {
		t.Errorf("profile defaults lost: %+v", profile)
	}
}

func TestLimitsFromConfig(t *testing.T) {
	s := newTestSession(t)
	s.cfg.Limits.MaxUploadMB = 10

	limits := s.limits()
	if limits.MaxBytes != 10*1024*1024 {
		t.Errorf("MaxBytes=%d, want %d", limits.MaxBytes, 10*1024*1024)
	}
	if limits.MinWidth != 640 || limits.MinHeight != 360 {
		t.Errorf("resolution floor lost: %+v", limits)
	}
}
