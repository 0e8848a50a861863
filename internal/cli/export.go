package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"clipdeck/internal/export"
	"clipdeck/internal/media"
	"clipdeck/internal/timeline"
	"clipdeck/internal/tui"
)

var (
	exportSlotArgs    []string
	exportConcurrency int
	exportNoProgress  bool
	exportOutputDir   string
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the merged sequence into a single video file",
		RunE:  runExport,
	}

	defaultConcurrency := runtime.NumCPU()
	if defaultConcurrency < 1 {
		defaultConcurrency = 1
	}

	cmd.Flags().StringArrayVar(&exportSlotArgs, "slot", nil, "Fill a slot as anchor=path (repeat for multiple)")
	cmd.Flags().IntVar(&exportConcurrency, "concurrency", defaultConcurrency, "Concurrent ffmpeg normalize processes")
	cmd.Flags().BoolVar(&exportNoProgress, "no-progress", false, "Disable interactive progress output")
	cmd.Flags().StringVar(&exportOutputDir, "output", "", "Directory for the delivered file (defaults to exports/)")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()
	s.logger.Printf("clipdeck export: project=%s", s.pp.Root)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	slotPaths, err := parseSlotArgs(exportSlotArgs)
	if err != nil {
		return err
	}

	var sw *tui.StatusWriter
	onStatus := func(string) {}
	if !outputJSON {
		sw = tui.NewStatusWriter(cmd.ErrOrStderr())
		onStatus = sw.Update
	}
	seq, err := s.buildSequence(ctx, media.CmdRunner{}, slotPaths, onStatus)
	if sw != nil {
		sw.Stop()
	}
	if err != nil {
		return err
	}

	engine, err := export.NewDirEngine(s.pp.WorkDir, s.pp.LogsDir)
	if err != nil {
		return err
	}

	outputDir := exportOutputDir
	if outputDir == "" {
		outputDir = s.pp.ExportsDir
	}

	pipeline := &export.Pipeline{
		Engine:    engine,
		Profile:   s.profile(),
		OutputDir: outputDir,
		Logger:    s.logger,
	}

	mode := tui.DetectMode(cmd.OutOrStdout(), exportNoProgress, outputJSON)
	var artifact export.Artifact
	switch mode {
	case tui.ModeTUI:
		artifact, err = runExportTUI(ctx, cmd, pipeline, seq)
	default:
		artifact, err = runExportPlain(ctx, cmd, pipeline, seq, mode)
	}
	if err != nil {
		return err
	}

	if outputJSON {
		out, jerr := json.MarshalIndent(artifact, "", "  ")
		if jerr != nil {
			return fmt.Errorf("encode export json: %w", jerr)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "exported %s (%d bytes, %s)\n", artifact.Path, artifact.Bytes, artifact.Method)
	return nil
}

func runExportTUI(ctx context.Context, cmd *cobra.Command, pipeline *export.Pipeline, seq timeline.Sequence) (export.Artifact, error) {
	model := tui.NewProgressModel("Export", []tui.Column{
		{Header: "POS", Width: 4},
		{Header: "STATUS", Width: 13},
		{Header: "CLIP", Width: 32},
	})
	for i, clip := range seq {
		model.AddRow(rowKey(i), []string{
			fmt.Sprintf("%d", i+1),
			"pending",
			filepath.Base(clip.Source),
		})
	}

	var (
		mu       sync.Mutex
		artifact export.Artifact
		runErr   error
	)
	err := tui.RunWithWork(cmd.OutOrStdout(), model, func(send func(tea.Msg)) {
		a, err := pipeline.Run(ctx, seq, export.Options{
			Concurrency: exportConcurrency,
			Progress: func(phase export.Phase, percent float64) {
				send(tui.PercentMsg{Phase: string(phase), Percent: percent})
			},
			ClipStatus: func(index int, status string) {
				send(tui.RowUpdateMsg{Key: rowKey(index), Fields: map[string]string{"STATUS": status}})
			},
		})
		mu.Lock()
		artifact, runErr = a, err
		mu.Unlock()
		if err != nil {
			send(tui.ErrorMsg{Err: err})
			return
		}
		for i := range seq {
			send(tui.RowUpdateMsg{Key: rowKey(i), Fields: map[string]string{"STATUS": "delivered"}})
		}
	})
	mu.Lock()
	defer mu.Unlock()
	if runErr != nil {
		return export.Artifact{}, runErr
	}
	if err != nil {
		return export.Artifact{}, err
	}
	return artifact, nil
}

func runExportPlain(ctx context.Context, cmd *cobra.Command, pipeline *export.Pipeline, seq timeline.Sequence, mode tui.OutputMode) (export.Artifact, error) {
	opts := export.Options{Concurrency: exportConcurrency}
	if mode == tui.ModePlain {
		var lastPhase export.Phase
		opts.Progress = func(phase export.Phase, percent float64) {
			if phase != lastPhase {
				fmt.Fprintf(cmd.OutOrStdout(), "%s...\n", phase)
				lastPhase = phase
			}
		}
	}
	return pipeline.Run(ctx, seq, opts)
}

func rowKey(index int) string {
	return fmt.Sprintf("clip:%03d", index+1)
}
