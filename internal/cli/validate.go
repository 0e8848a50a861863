package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"clipdeck/internal/media"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check files against the project's upload limits",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runValidate,
	}
	return cmd
}

type validateResult struct {
	File     string `json:"file"`
	Accepted bool   `json:"accepted"`
	Code     string `json:"code,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()
	s.logger.Printf("clipdeck validate: project=%s files=%d", s.pp.Root, len(args))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runner := media.CmdRunner{}
	limits := s.limits()

	results := make([]validateResult, 0, len(args))
	rejected := 0
	for _, arg := range args {
		path := s.resolveUploadPath(arg)
		result := validateResult{File: arg, Accepted: true}
		if err := media.Validate(ctx, runner, path, limits); err != nil {
			result.Accepted = false
			var verr *media.ValidationError
			if errors.As(err, &verr) {
				result.Code = string(verr.Code)
				result.Detail = verr.Detail
			} else {
				result.Code = string(media.CodeLoadError)
				result.Detail = err.Error()
			}
			rejected++
		}
		s.logger.Printf("validate %s: accepted=%v code=%s", path, result.Accepted, result.Code)
		results = append(results, result)
	}

	if outputJSON {
		out, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("encode validate json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	} else {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "FILE\tRESULT\tCODE\tDETAIL")
		for _, r := range results {
			verdict := "accepted"
			if !r.Accepted {
				verdict = "rejected"
			}
			code := r.Code
			if code == "" {
				code = "-"
			}
			detail := r.Detail
			if detail == "" {
				detail = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.File, verdict, code, detail)
		}
		w.Flush()
	}

	if rejected > 0 {
		return fmt.Errorf("%d of %d file(s) rejected", rejected, len(args))
	}
	return nil
}
