package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveWithFlag(t *testing.T) {
	dir := t.TempDir()
	pp, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if pp.Root != dir {
		t.Errorf("Root=%q, want %q", pp.Root, dir)
	}
	if pp.ConfigFile != filepath.Join(dir, "clipdeck.yaml") {
		t.Errorf("ConfigFile=%q", pp.ConfigFile)
	}
	if pp.WorkDir != filepath.Join(dir, ".clipdeck", "work") {
		t.Errorf("WorkDir=%q", pp.WorkDir)
	}
}

func TestEnsureDirs(t *testing.T) {
	pp, err := Resolve(t.TempDir())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := pp.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	for _, dir := range []string{pp.ClipsDir, pp.UploadsDir, pp.WorkDir, pp.ExportsDir, pp.LogsDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %s missing after EnsureDirs", dir)
		}
	}
}

func TestResolveClipPath(t *testing.T) {
	pp, err := Resolve(t.TempDir())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := pp.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}

	inClips := filepath.Join(pp.ClipsDir, "intro.mp4")
	if err := os.WriteFile(inClips, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := pp.ResolveClipPath("intro.mp4"); got != inClips {
		t.Errorf("ResolveClipPath=%q, want clips dir hit %q", got, inClips)
	}
	if got := pp.ResolveClipPath("missing.mp4"); got != filepath.Join(pp.Root, "missing.mp4") {
		t.Errorf("ResolveClipPath=%q, want project-root fallback", got)
	}
	abs := filepath.Join(pp.Root, "elsewhere.mp4")
	if got := pp.ResolveClipPath(abs); got != abs {
		t.Errorf("ResolveClipPath=%q, want absolute passthrough", got)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if ok, err := FileExists(file); err != nil || !ok {
		t.Errorf("FileExists(file)=(%v, %v), want (true, nil)", ok, err)
	}
	if ok, err := FileExists(dir); err != nil || ok {
		t.Errorf("FileExists(dir)=(%v, %v), want (false, nil)", ok, err)
	}
	if ok, err := FileExists(filepath.Join(dir, "nope")); err != nil || ok {
		t.Errorf("FileExists(missing)=(%v, %v), want (false, nil)", ok, err)
	}
}
