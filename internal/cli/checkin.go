package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/horizonte/internal/model"
	"github.com/roach88/horizonte/internal/tracker"
)

// NewCheckInCommand creates the checkin command.
func NewCheckInCommand(opts *RootOptions) *cobra.Command {
	var (
		kind       string
		text       string
		sets       []string
		reflection string
		review     bool
	)
	cmd := &cobra.Command{
		Use:   "checkin",
		Short: "Record a check-in for every active goal",
		Long: `Record a check-in for every active goal.

Progress comes from --set flags and, when the suggestion service is
configured, from proposals derived from --text. A --set for a goal wins
over a proposal. Goals with neither keep their progress.

  horizonte checkin --set 1=45 --set 2=30:"paid off the card"
  horizonte checkin --text "ran 12k on sunday, saved 500" --review`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			req := tracker.CheckInRequest{Reflection: reflection, Review: review}
			if req.Type, err = model.ParseCheckInType(kind); err != nil {
				return a.out.Fail(err)
			}
			if req.Manual, err = parseManual(sets); err != nil {
				return a.out.Fail(err)
			}
			if text == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return a.out.Fail(fmt.Errorf("read report from stdin: %w", err))
				}
				text = string(data)
			}
			req.Text = text

			res, err := a.tracker.CheckIn(cmd.Context(), req)
			if err != nil {
				return a.out.Fail(err)
			}
			return a.emit(a.render.CheckIn(res), res)
		},
	}
	cmd.Flags().StringVar(&kind, "type", string(model.CheckInMonthly), "monthly, quarterly or yearly")
	cmd.Flags().StringVar(&text, "text", "", `free-form progress report ("-" reads stdin)`)
	cmd.Flags().StringArrayVar(&sets, "set", nil, "goal=percent[:comment], repeatable")
	cmd.Flags().StringVar(&reflection, "reflection", "", "one-line summary of the period")
	cmd.Flags().BoolVar(&review, "review", false, "ask the suggestion service for a written summary")
	return cmd
}

// parseManual reads --set values of the form ref=percent[:comment]. The
// percent may carry a trailing "%".
func parseManual(values []string) (map[string]tracker.ManualUpdate, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]tracker.ManualUpdate, len(values))
	for _, v := range values {
		ref, rest, ok := strings.Cut(v, "=")
		ref = strings.TrimSpace(ref)
		if !ok || ref == "" {
			return nil, fmt.Errorf("%w: --set %q: want goal=percent[:comment]", errUsage, v)
		}
		pct, comment, _ := strings.Cut(rest, ":")
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(pct), "%"))
		if err != nil {
			return nil, fmt.Errorf("%w: --set %q: percent %q is not a number", errUsage, v, pct)
		}
		if _, dup := out[ref]; dup {
			return nil, fmt.Errorf("%w: --set given twice for %q", errUsage, ref)
		}
		out[ref] = tracker.ManualUpdate{Percent: n, Comment: strings.TrimSpace(comment)}
	}
	return out, nil
}
