package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/horizonte/internal/model"
	"github.com/roach88/horizonte/internal/render"
	"github.com/roach88/horizonte/internal/tracker"
)

// NewInitCommand creates the init command.
func NewInitCommand(opts *RootOptions) *cobra.Command {
	var (
		name  string
		reset bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the data directory and settings template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			res, err := a.tracker.Init(name, reset)
			if err != nil {
				return a.out.Fail(err)
			}

			var b strings.Builder
			switch {
			case res.Created:
				fmt.Fprintf(&b, "Initialized %s\n", a.home)
			default:
				fmt.Fprintf(&b, "Using existing data in %s\n", a.home)
			}
			if res.SettingsAdded {
				b.WriteString("Wrote settings.yaml template\n")
			}
			switch {
			case res.Reset:
				b.WriteString("Goals cleared (previous file kept in backups)\n")
			case res.GoalsKept > 0:
				fmt.Fprintf(&b, "%d goal(s) kept; use --reset to start over\n", res.GoalsKept)
			}
			return a.emit(b.String(), res)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "your name, used in check-ins")
	cmd.Flags().BoolVar(&reset, "reset", false, "clear existing goals")
	return cmd
}

// smartFlags binds the five SMART criteria flags.
func smartFlags(cmd *cobra.Command, s *model.SmartCriteria) {
	cmd.Flags().StringVar(&s.Specific, "specific", "", "what exactly will be achieved")
	cmd.Flags().StringVar(&s.Measurable, "measurable", "", "how progress is measured")
	cmd.Flags().StringVar(&s.Achievable, "achievable", "", "why it is realistic")
	cmd.Flags().StringVar(&s.Relevant, "relevant", "", "why it matters")
	cmd.Flags().StringVar(&s.TimeBound, "time-bound", "", "the deadline")
}

// NewAddCommand creates the add command.
func NewAddCommand(opts *RootOptions) *cobra.Command {
	var (
		description string
		category    string
		horizon     string
		progress    int
		smart       model.SmartCriteria
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a goal",
		Long: "Add a goal. Without --category the suggestion service picks one (default life); " +
			"blank SMART criteria are filled in from a suggestion when the service is configured.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			in := tracker.NewGoal{
				Title:       strings.Join(args, " "),
				Description: description,
				Smart:       smart,
				Progress:    progress,
			}
			if in.Horizon, err = model.ParseHorizon(horizon); err != nil {
				return a.out.Fail(err)
			}
			if cmd.Flags().Changed("category") {
				c, err := model.ParseCategory(category)
				if err != nil {
					return a.out.Fail(err)
				}
				in.Category = &c
			}

			g, err := a.tracker.AddGoal(cmd.Context(), in)
			if err != nil {
				return a.out.Fail(err)
			}
			text := fmt.Sprintf("Added %s %s (%s, %s)\n", render.ShortID(g.ID), g.Title, g.Category.Label(), g.Horizon.Label())
			return a.emit(text, g)
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "longer description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "financial, life, health, professional or other")
	cmd.Flags().StringVar(&horizon, "horizon", string(model.HorizonShort), "short, mid or long")
	cmd.Flags().IntVar(&progress, "progress", 0, "starting progress percentage")
	smartFlags(cmd, &smart)
	return cmd
}

// NewListCommand creates the list command.
func NewListCommand(opts *RootOptions) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List goals",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			var filter *model.Status
			if status != "" {
				s, err := model.ParseStatus(status)
				if err != nil {
					return a.out.Fail(err)
				}
				filter = &s
			}
			goals, err := a.tracker.Goals(filter)
			if err != nil {
				return a.out.Fail(err)
			}
			if goals == nil {
				goals = []model.Goal{}
			}
			return a.emit(a.render.Goals(goals), goals)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only goals with this status (active|completed|abandoned)")
	return cmd
}

// NewShowCommand creates the show command.
func NewShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <goal>",
		Short: "Show a goal with its milestones and progress history",
		Long:  "Show a goal. <goal> is its number in `list`, its id, or a unique id prefix.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			detail, err := a.tracker.Show(args[0])
			if err != nil {
				return a.out.Fail(err)
			}
			return a.emit(a.render.Goal(detail.Goal, detail.Timeline), detail)
		},
	}
}

// NewCompleteCommand creates the complete command.
func NewCompleteCommand(opts *RootOptions) *cobra.Command {
	return newStatusCommand(opts, "complete", "Mark a goal as completed", "Completed",
		func(t *tracker.Tracker, ref, reason string) (model.Goal, error) { return t.Complete(ref, reason) })
}

// NewAbandonCommand creates the abandon command.
func NewAbandonCommand(opts *RootOptions) *cobra.Command {
	return newStatusCommand(opts, "abandon", "Mark a goal as abandoned", "Abandoned",
		func(t *tracker.Tracker, ref, reason string) (model.Goal, error) { return t.Abandon(ref, reason) })
}

func newStatusCommand(opts *RootOptions, use, short, verb string,
	apply func(*tracker.Tracker, string, string) (model.Goal, error)) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   use + " <goal>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			g, err := apply(a.tracker, args[0], reason)
			if err != nil {
				return a.out.Fail(err)
			}
			return a.emit(fmt.Sprintf("%s: %s\n", verb, g.Title), g)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the status changed")
	return cmd
}

// NewEditCommand creates the edit command.
func NewEditCommand(opts *RootOptions) *cobra.Command {
	var (
		title, description, category, horizon, status string
		progress                                      int
		smart                                         model.SmartCriteria
	)
	cmd := &cobra.Command{
		Use:   "edit <goal>",
		Short: "Change fields of a goal",
		Long:  "Change fields of a goal. Only the flags given are applied.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			e := tracker.Edit{Smart: smart}
			if flags.Changed("title") {
				e.Title = &title
			}
			if flags.Changed("description") {
				e.Description = &description
			}
			if flags.Changed("progress") {
				e.Progress = &progress
			}
			if flags.Changed("category") {
				c, err := model.ParseCategory(category)
				if err != nil {
					return a.out.Fail(err)
				}
				e.Category = &c
			}
			if flags.Changed("horizon") {
				h, err := model.ParseHorizon(horizon)
				if err != nil {
					return a.out.Fail(err)
				}
				e.Horizon = &h
			}
			if flags.Changed("status") {
				s, err := model.ParseStatus(status)
				if err != nil {
					return a.out.Fail(err)
				}
				e.Status = &s
			}
			if e.IsZero() {
				return a.out.Fail(fmt.Errorf("%w: nothing to change, pass at least one field flag", errUsage))
			}

			g, err := a.tracker.EditGoal(args[0], e)
			if err != nil {
				return a.out.Fail(err)
			}
			return a.emit(fmt.Sprintf("Updated: %s\n", g.Title), g)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category")
	cmd.Flags().StringVar(&horizon, "horizon", "", "new horizon")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	cmd.Flags().IntVar(&progress, "progress", 0, "new progress percentage")
	smartFlags(cmd, &smart)
	return cmd
}
