package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command group.
func NewHistoryCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse past check-ins",
	}
	cmd.AddCommand(newHistoryListCommand(opts))
	cmd.AddCommand(newHistoryShowCommand(opts))
	return cmd
}

func newHistoryListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List check-ins, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			paths, err := a.tracker.Store().CheckIns.List()
			if err != nil {
				return a.out.Fail(err)
			}
			names := make([]string, len(paths))
			for i, p := range paths {
				names[i] = filepath.Base(p)
			}
			return a.emit(a.render.History(paths), names)
		},
	}
}

func newHistoryShowCommand(opts *RootOptions) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <checkin>",
		Short: "Print a check-in narrative",
		Long:  "Print a check-in narrative. <checkin> is its number in `history list` or its file name.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			checkins := a.tracker.Store().CheckIns
			path, err := checkins.Resolve(args[0])
			if err != nil {
				return a.out.Fail(err)
			}
			md, err := checkins.ReadNarrative(path)
			if err != nil {
				return a.out.Fail(err)
			}
			text := md
			if !raw {
				text = a.render.Markdown(md)
			}
			return a.emit(text, map[string]string{"path": path, "markdown": md})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the markdown source")
	return cmd
}

// NewAnalyticsCommand creates the analytics command.
func NewAnalyticsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "analytics",
		Aliases: []string{"progress"},
		Short:   "Show progress trends across check-ins",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			p, err := a.tracker.Progress()
			if err != nil {
				return a.out.Fail(err)
			}
			return a.emit(a.render.Progress(p.Totals, p.Report), p)
		},
	}
}

// NewDueCommand creates the due command.
func NewDueCommand(opts *RootOptions) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "due",
		Short: "Tell whether this month's check-in is still pending",
		Long: "Tell whether this month's check-in is still pending. With --exit-code the " +
			"command exits 1 while it is pending, for use in shell prompts and cron.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			d, err := a.tracker.Due()
			if err != nil {
				return a.out.Fail(err)
			}
			if err := a.emit(a.render.Due(d), d); err != nil {
				return err
			}
			if strict && !d.Done {
				return NewExitError(ExitFailure, "check-in pending for "+d.Period)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "exit-code", false, "exit 1 while the check-in is pending")
	return cmd
}
