package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"clipdeck/internal/config"
	"clipdeck/internal/logx"
	"clipdeck/internal/paths"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a clipdeck project",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}

	return cmd
}

func resolveInitDir(projectFlag string, args []string) (string, error) {
	if projectFlag != "" {
		return projectFlag, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	if len(args) > 0 {
		if args[0] == "." {
			return cwd, nil
		}
		return filepath.Join(cwd, args[0]), nil
	}

	return nextAvailableDir(cwd)
}

func nextAvailableDir(base string) (string, error) {
	for i := 1; ; i++ {
		candidate := filepath.Join(base, fmt.Sprintf("clipdeck-%d", i))
		if _, err := os.Stat(candidate); err != nil {
			if os.IsNotExist(err) {
				return candidate, nil
			}
			return "", err
		}
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := resolveInitDir(projectDir, args)
	if err != nil {
		return err
	}

	pp, err := paths.Resolve(dir)
	if err != nil {
		return err
	}

	if err := pp.EnsureRoot(); err != nil {
		return err
	}
	if err := pp.EnsureDirs(); err != nil {
		return err
	}

	logger, closer, err := logx.New(pp)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Printf("clipdeck init: project=%s", pp.Root)

	created, err := ensureConfig(pp, logger)
	if err != nil {
		return err
	}

	if !created {
		cmd.Printf("Project already initialized at %s\n", pp.Root)
		return nil
	}

	cmd.Printf("Initialized project at %s\n", pp.Root)
	cmd.Printf("  created clipdeck.yaml\n")
	cmd.Printf("Drop base clips into clips/, list them under fixed: in clipdeck.yaml,\n")
	cmd.Printf("and declare slots: anchors for user uploads.\n")

	return nil
}

func ensureConfig(pp paths.ProjectPaths, logger Logger) (bool, error) {
	exists, err := paths.FileExists(pp.ConfigFile)
	if err != nil {
		return false, fmt.Errorf("check config: %w", err)
	}
	if exists {
		logger.Printf("config exists: %s", pp.ConfigFile)
		return false, nil
	}

	cfg := config.Default()
	if err := cfg.Save(pp.ConfigFile); err != nil {
		return false, err
	}
	logger.Printf("created config: %s", pp.ConfigFile)
	return true, nil
}

// Logger keeps the subset of log.Logger used locally, enabling easy testing.
type Logger interface {
	Printf(format string, v ...any)
}
