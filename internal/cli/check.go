package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"clipdeck/internal/config"
	"clipdeck/internal/media"
)

var checkStrict bool

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check external tool availability and config validity",
		RunE:  runCheck,
	}

	cmd.Flags().BoolVar(&checkStrict, "strict", false, "fail when required tools are missing or the config is invalid")

	return cmd
}

type toolStatus struct {
	Tool      string `json:"tool"`
	Required  bool   `json:"required"`
	Path      string `json:"path,omitempty"`
	Version   string `json:"version,omitempty"`
	Satisfied bool   `json:"satisfied"`
	Error     string `json:"error,omitempty"`
}

func runCheck(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()
	s.logger.Printf("clipdeck check: project=%s", s.pp.Root)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runner := media.CmdRunner{}
	statuses := []toolStatus{
		detectTool(ctx, runner, "ffmpeg", "-version", true),
		detectTool(ctx, runner, "ffprobe", "-version", true),
		detectTool(ctx, runner, "mpv", "--version", false),
	}
	for _, st := range statuses {
		s.logger.Printf("tool %s: path=%s version=%s satisfied=%v error=%s", st.Tool, st.Path, st.Version, st.Satisfied, st.Error)
	}

	validations := s.cfg.ValidateStrict(s.pp.Root)
	for _, v := range validations {
		if v.Level == "warning" {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", v.Message)
		}
	}

	if checkStrict {
		if err := ensureStrict(statuses); err != nil {
			return err
		}
		if config.HasErrors(validations) {
			var msgs []string
			for _, v := range validations {
				if v.Level == "error" {
					msgs = append(msgs, v.Message)
				}
			}
			return errors.New("config validation failed: " + strings.Join(msgs, "; "))
		}
	}

	if outputJSON {
		payload := struct {
			Project     string                    `json:"project"`
			Tools       []toolStatus              `json:"tools"`
			Validations []config.ValidationResult `json:"validations,omitempty"`
		}{
			Project:     s.pp.Root,
			Tools:       statuses,
			Validations: validations,
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printCheckResult(cmd, s.pp.Root, statuses, validations)
	return nil
}

func detectTool(ctx context.Context, runner media.Runner, name, versionFlag string, required bool) toolStatus {
	st := toolStatus{Tool: name, Required: required}

	path, err := exec.LookPath(name)
	if err != nil {
		st.Error = "not found in PATH"
		return st
	}
	st.Path = path

	res, err := runner.Run(ctx, path, []string{versionFlag}, media.RunOptions{})
	if err != nil {
		st.Error = fmt.Sprintf("version probe failed: %v", err)
		return st
	}
	st.Version = firstVersionToken(string(res.Stdout))
	st.Satisfied = true
	return st
}

// firstVersionToken pulls a bare version out of tool banner output like
// "ffmpeg version 6.1.1 Copyright ..." or "mpv 0.37.0 Copyright ...".
func firstVersionToken(banner string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(banner), "\n")
	for _, field := range strings.Fields(line) {
		if field == "" {
			continue
		}
		c := field[0]
		if c >= '0' && c <= '9' {
			return strings.TrimSuffix(field, ",")
		}
	}
	return ""
}

func printCheckResult(cmd *cobra.Command, project string, statuses []toolStatus, validations []config.ValidationResult) {
	bold := lipgloss.NewStyle().Bold(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	faint := lipgloss.NewStyle().Faint(true)

	cmd.Println(bold.Render("Project:") + " " + project)
	cmd.Println()

	for _, st := range statuses {
		if st.Satisfied {
			headline := green.Render("✓") + " " + bold.Render(st.Tool)
			if st.Version != "" {
				headline += " v" + st.Version
			}
			cmd.Println(headline)
			cmd.Println(faint.Render("  " + st.Path))
		} else {
			mark := red.Render("✗")
			if !st.Required {
				mark = yellow.Render("–")
			}
			headline := mark + " " + bold.Render(st.Tool)
			if st.Error != "" {
				headline += faint.Render(" (" + st.Error + ")")
			}
			if !st.Required {
				headline += faint.Render(" (optional, needed for preview)")
			}
			cmd.Println(headline)
		}
		cmd.Println()
	}

	if len(validations) == 0 {
		cmd.Println(green.Render("✓") + " " + bold.Render("config"))
		return
	}
	cmd.Println(red.Render("✗") + " " + bold.Render("config"))
	for _, v := range validations {
		cmd.Println(faint.Render(fmt.Sprintf("  %s: %s", v.Level, v.Message)))
	}
}

func ensureStrict(statuses []toolStatus) error {
	var failures []string
	for _, st := range statuses {
		if st.Satisfied || !st.Required {
			continue
		}
		msg := st.Tool
		if st.Error != "" {
			msg = fmt.Sprintf("%s (%s)", st.Tool, st.Error)
		}
		failures = append(failures, msg)
	}
	if len(failures) == 0 {
		return nil
	}
	return errors.New("tool check failed: " + strings.Join(failures, ", "))
}
