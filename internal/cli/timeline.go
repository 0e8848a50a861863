package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"clipdeck/internal/media"
	"clipdeck/internal/tui"
)

var timelineSlotArgs []string

func newTimelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show the merged playback order without playing or exporting",
		RunE:  runTimeline,
	}

	cmd.Flags().StringArrayVar(&timelineSlotArgs, "slot", nil, "Fill a slot as anchor=path (repeat for multiple)")

	return cmd
}

type timelineRow struct {
	Position int     `json:"position"`
	Type     string  `json:"type"`
	Start    float64 `json:"start_seconds"`
	Duration float64 `json:"duration_seconds"`
	Source   string  `json:"source"`
}

func runTimeline(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()
	s.logger.Printf("clipdeck timeline: project=%s", s.pp.Root)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	slotPaths, err := parseSlotArgs(timelineSlotArgs)
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

	rows := make([]timelineRow, 0, len(seq))
	for i, clip := range seq {
		start, err := seq.StartTime(i)
		if err != nil {
			return err
		}
		kind := "fixed"
		if !clip.Fixed {
			kind = "upload"
		}
		rows = append(rows, timelineRow{
			Position: i + 1,
			Type:     kind,
			Start:    start,
			Duration: clip.DurationSeconds,
			Source:   clip.Source,
		})
	}

	if outputJSON {
		payload := struct {
			Project      string        `json:"project"`
			Rows         []timelineRow `json:"timeline"`
			TotalSeconds float64       `json:"total_seconds"`
		}{
			Project:      s.pp.Root,
			Rows:         rows,
			TotalSeconds: seq.TotalDuration(),
		}
		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode timeline json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Project: %s\n", s.pp.Root)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "POS\tTYPE\tSTART\tDURATION\tSOURCE")
	for _, row := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			row.Position,
			row.Type,
			formatSeconds(row.Start),
			formatSeconds(row.Duration),
			filepath.Base(row.Source),
		)
	}
	w.Flush()
	fmt.Fprintf(cmd.OutOrStdout(), "total %s over %d clip(s)\n", formatSeconds(seq.TotalDuration()), len(seq))
	return nil
}

func formatSeconds(seconds float64) string {
	total := int(seconds)
	if total >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
