package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"clipdeck/internal/media"
	"clipdeck/internal/playback"
	"clipdeck/internal/playback/mpv"
	"clipdeck/internal/tui"
)

var (
	previewSlotArgs []string
	previewMpvPath  string
)

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Play the merged sequence gaplessly with transport controls",
		RunE:  runPreview,
	}

	cmd.Flags().StringArrayVar(&previewSlotArgs, "slot", nil, "Fill a slot as anchor=path (repeat for multiple)")
	cmd.Flags().StringVar(&previewMpvPath, "mpv", "", "Path to the mpv binary (defaults to config, then PATH)")

	return cmd
}

func runPreview(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()
	s.logger.Printf("clipdeck preview: project=%s", s.pp.Root)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	slotPaths, err := parseSlotArgs(previewSlotArgs)
	if err != nil {
		return err
	}

	sw := tui.NewStatusWriter(cmd.ErrOrStderr())
	seq, err := s.buildSequence(ctx, media.CmdRunner{}, slotPaths, sw.Update)
	if err != nil {
		sw.Stop()
		return err
	}
	if len(seq) == 0 {
		sw.Stop()
		return fmt.Errorf("nothing to play")
	}

	mpvBinary := previewMpvPath
	if mpvBinary == "" {
		mpvBinary = s.cfg.Preview.MpvBinary
	}

	// Two players: one on screen, one preloading the next clip so the
	// boundary swap is instant.
	sw.Update("starting players")
	primary, err := mpv.Spawn(ctx, mpvBinary)
	if err != nil {
		sw.Stop()
		return fmt.Errorf("spawn mpv: %w", err)
	}
	defer primary.Close()
	secondary, err := mpv.Spawn(ctx, mpvBinary)
	if err != nil {
		sw.Stop()
		return fmt.Errorf("spawn mpv: %w", err)
	}
	defer secondary.Close()
	sw.Stop()

	// Scheduler events race the program start; the pointer is published
	// once the program exists and events before that are dropped.
	var program atomic.Pointer[tea.Program]
	send := func(msg tea.Msg) {
		if p := program.Load(); p != nil {
			p.Send(msg)
		}
	}

	sched := playback.NewScheduler(seq, primary, secondary, s.logger, playback.Events{
		TimeUpdated: func(global float64) { send(tui.TimeMsg{Global: global}) },
		ClipChanged: func(index int) { send(tui.ClipMsg{Index: index}) },
		Ended:       func() { send(tui.PlaybackEndedMsg{}) },
		Failed:      func(err error) { send(tui.PlaybackErrorMsg{Err: err}) },
	})
	sched.SetVolume(s.cfg.Preview.Volume)

	clips := make([]tui.PreviewClip, len(seq))
	for i, clip := range seq {
		label := filepath.Base(clip.Source)
		if !clip.Fixed {
			label += " (upload)"
		}
		clips[i] = tui.PreviewClip{Label: label, Duration: clip.DurationSeconds}
	}

	model := tui.NewPreviewModel(sched, clips)
	p := tea.NewProgram(model, tea.WithOutput(cmd.OutOrStdout()))
	program.Store(p)

	finalModel, err := p.Run()
	sched.Pause()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(tui.PreviewModel); ok && m.Err() != nil {
		s.logger.Printf("preview ended with playback error: %v", m.Err())
	}
	return nil
}
