package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewMilestoneCommand creates the milestone command group.
func NewMilestoneCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "milestone",
		Aliases: []string{"ms"},
		Short:   "Manage the milestones of a goal",
	}
	cmd.AddCommand(newMilestoneAddCommand(opts))
	cmd.AddCommand(newMilestoneSuggestCommand(opts))
	cmd.AddCommand(newMilestoneDoneCommand(opts))
	return cmd
}

func newMilestoneAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <goal> <title>...",
		Short: "Append milestones; each argument is one milestone",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			g, err := a.tracker.AddMilestones(args[0], args[1:]...)
			if err != nil {
				return a.out.Fail(err)
			}
			return a.emit(fmt.Sprintf("%s now has %d milestone(s)\n", g.Title, len(g.Milestones)), g)
		},
	}
}

func newMilestoneSuggestCommand(opts *RootOptions) *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "suggest <goal>",
		Short: "Ask the suggestion service for a milestone breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			titles, g, err := a.tracker.SuggestMilestones(cmd.Context(), args[0], apply)
			if err != nil {
				return a.out.Fail(err)
			}

			var b strings.Builder
			b.WriteString(a.render.Milestones(titles))
			if apply {
				fmt.Fprintf(&b, "Added %d milestone(s) to %s\n", len(titles), g.Title)
			} else {
				b.WriteString("Run again with --apply to add them.\n")
			}
			return a.emit(b.String(), map[string]any{
				"goal_id":    g.ID,
				"milestones": titles,
				"applied":    apply,
			})
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "append the suggestions to the goal")
	return cmd
}

func newMilestoneDoneCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "done <goal> <milestone>",
		Short: "Mark a milestone completed",
		Long:  "Mark a milestone completed. <milestone> is its number in `show` or its id.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			g, err := a.tracker.CompleteMilestone(args[0], args[1])
			if err != nil {
				return a.out.Fail(err)
			}
			text := fmt.Sprintf("%s: %d/%d milestones done\n", g.Title, g.CompletedMilestones(), len(g.Milestones))
			return a.emit(text, g)
		},
	}
}
