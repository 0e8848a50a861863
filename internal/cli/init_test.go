package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveInitDir(t *testing.T) {
	t.Run("project flag takes precedence", func(t *testing.T) {
		dir, err := resolveInitDir("/custom/path", []string{"ignored"})
		if err != nil {
			t.Fatal(err)
		}
		if dir != "/custom/path" {
			t.Fatalf("got %s, want /custom/path", dir)
		}
	})

	t.Run("dot uses cwd", func(t *testing.T) {
		cwd, _ := os.Getwd()
		dir, err := resolveInitDir("", []string{"."})
		if err != nil {
			t.Fatal(err)
		}
		if dir != cwd {
			t.Fatalf("got %s, want %s", dir, cwd)
		}
	})

	t.Run("named arg creates subdirectory", func(t *testing.T) {
		cwd, _ := os.Getwd()
		dir, err := resolveInitDir("", []string{"my-deck"})
		if err != nil {
			t.Fatal(err)
		}
		want := filepath.Join(cwd, "my-deck")
		if dir != want {
			t.Fatalf("got %s, want %s", dir, want)
		}
	})
}

func TestNextAvailableDir(t *testing.T) {
	base := t.TempDir()

	t.Run("returns clipdeck-1 when empty", func(t *testing.T) {
		dir, err := nextAvailableDir(base)
		if err != nil {
			t.Fatal(err)
		}
		want := filepath.Join(base, "clipdeck-1")
		if dir != want {
			t.Fatalf("got %s, want %s", dir, want)
		}
	})

	t.Run("skips existing directories", func(t *testing.T) {
		if err := os.Mkdir(filepath.Join(base, "clipdeck-1"), 0o755); err != nil {
			t.Fatal(err)
		}
		dir, err := nextAvailableDir(base)
		if err != nil {
			t.Fatal(err)
		}
		want := filepath.Join(base, "clipdeck-2")
		if dir != want {
			t.Fatalf("got %s, want %s", dir, want)
		}
	})
}

func TestInitCreatesProjectSkeleton(t *testing.T) {
	prevProject := projectDir
	defer func() { projectDir = prevProject }()
	projectDir = filepath.Join(t.TempDir(), "deck")

	cmd := newInitCmd()
	stdout := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, rel := range []string{"clipdeck.yaml", "clips", "uploads", "exports", "logs", ".clipdeck/work"} {
		if _, err := os.Stat(filepath.Join(projectDir, rel)); err != nil {
			t.Errorf("expected %s after init: %v", rel, err)
		}
	}
	if !strings.Contains(stdout.String(), "Initialized project") {
		t.Errorf("unexpected output: %q", stdout.String())
	}
}

func TestInitIsIdempotent(t *testing.T) {
	prevProject := projectDir
	defer func() { projectDir = prevProject }()
	projectDir = filepath.Join(t.TempDir(), "deck")

	for i := 0; i < 2; i++ {
		cmd := newInitCmd()
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("init run %d: %v", i+1, err)
		}
		if i == 1 && !strings.Contains(out.String(), "already initialized") {
			t.Errorf("second init output: %q", out.String())
		}
	}
}
