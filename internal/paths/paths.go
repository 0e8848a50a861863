package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProjectPaths captures canonical locations for a clipdeck project.
type ProjectPaths struct {
	Root       string
	ConfigFile string
	ClipsDir   string
	UploadsDir string
	MetaDir    string
	WorkDir    string
	ExportsDir string
	LogsDir    string
}

// Resolve determines the project root using the optional --project flag or
// the current working directory when the flag is empty.
func Resolve(projectFlag string) (ProjectPaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("resolve project root: %w", err)
	}

	return newProjectPaths(root), nil
}

func newProjectPaths(root string) ProjectPaths {
	metaDir := filepath.Join(root, ".clipdeck")
	return ProjectPaths{
		Root:       root,
		ConfigFile: filepath.Join(root, "clipdeck.yaml"),
		ClipsDir:   filepath.Join(root, "clips"),
		UploadsDir: filepath.Join(root, "uploads"),
		MetaDir:    metaDir,
		WorkDir:    filepath.Join(metaDir, "work"),
		ExportsDir: filepath.Join(root, "exports"),
		LogsDir:    filepath.Join(root, "logs"),
	}
}

// ResolveClipPath turns a config-relative clip path into an absolute one.
// Paths are tried relative to the clips directory first, then the project
// root; absolute paths pass through untouched.
func (p ProjectPaths) ResolveClipPath(value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	inClips := filepath.Join(p.ClipsDir, value)
	if exists, _ := FileExists(inClips); exists {
		return inClips
	}
	return filepath.Join(p.Root, value)
}

// EnsureRoot makes sure the project root exists on disk.
func (p ProjectPaths) EnsureRoot() error {
	if err := os.MkdirAll(p.Root, 0o755); err != nil {
		return fmt.Errorf("create project root: %w", err)
	}
	return nil
}

// EnsureDirs creates the standard clips/uploads/exports/logs hierarchy
// alongside the hidden .clipdeck metadata directory.
func (p ProjectPaths) EnsureDirs() error {
	dirs := []string{p.ClipsDir, p.UploadsDir, p.MetaDir, p.WorkDir, p.ExportsDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}
