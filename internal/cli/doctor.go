package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Validate the data files against their schema",
		Long: "Validate goals.json, config.json and every check-in record. Files that fail " +
			"are the ones normal commands silently treat as empty. Exits 1 when any file fails.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			checks, err := a.tracker.Doctor()
			if err != nil {
				return a.out.Fail(err)
			}
			if err := a.emit(a.render.Doctor(checks), checks); err != nil {
				return err
			}
			bad := 0
			for _, c := range checks {
				if !c.OK() {
					bad++
				}
			}
			if bad > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d file(s) failed validation", bad))
			}
			return nil
		},
	}
}
