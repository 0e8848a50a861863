package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"clipdeck/internal/paths"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the fixed sequence and slot layout",
		RunE:  runStatus,
	}
	return cmd
}

type statusFixedRow struct {
	Position int    `json:"position"`
	Path     string `json:"path"`
	Exists   bool   `json:"exists"`
	SlotHere bool   `json:"slot_after"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()
	s.logger.Printf("clipdeck status: project=%s", s.pp.Root)

	slotAfter := make(map[int]bool, len(s.cfg.Slots))
	for _, slot := range s.cfg.Slots {
		slotAfter[slot.Anchor] = true
	}

	rows := make([]statusFixedRow, 0, len(s.cfg.Fixed))
	for i, fc := range s.cfg.Fixed {
		exists, _ := paths.FileExists(s.pp.ResolveClipPath(fc.Path))
		rows = append(rows, statusFixedRow{
			Position: i + 1,
			Path:     fc.Path,
			Exists:   exists,
			SlotHere: slotAfter[i+1],
		})
	}

	if outputJSON {
		return writeStatusJSON(cmd, s.pp.Root, rows, len(s.cfg.Slots))
	}

	writeStatusTable(cmd, s.pp.Root, rows, len(s.cfg.Slots))
	return nil
}

func writeStatusTable(cmd *cobra.Command, project string, rows []statusFixedRow, slotCount int) {
	fmt.Fprintf(cmd.OutOrStdout(), "Project: %s\n", project)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "POS\tFIXED CLIP\tPRESENT\tSLOT AFTER")
	for _, row := range rows {
		present := "yes"
		if !row.Exists {
			present = "MISSING"
		}
		slot := "-"
		if row.SlotHere {
			slot = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", row.Position, row.Path, present, slot)
	}
	w.Flush()

	fmt.Fprintf(cmd.OutOrStdout(), "%d fixed clip(s), %d slot(s)\n", len(rows), slotCount)
	if slotCount > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Fill slots per run with --slot anchor=path on preview/export/timeline.")
	}
}

func writeStatusJSON(cmd *cobra.Command, project string, rows []statusFixedRow, slotCount int) error {
	payload := struct {
		Project string           `json:"project"`
		Fixed   []statusFixedRow `json:"fixed"`
		Slots   int              `json:"slots"`
	}{
		Project: project,
		Fixed:   rows,
		Slots:   slotCount,
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode status json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
