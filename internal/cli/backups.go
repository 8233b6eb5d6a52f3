package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/horizonte/internal/atomicfile"
	"github.com/roach88/horizonte/internal/mirror"
)

// NewBackupsCommand creates the backups command group.
func NewBackupsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backups",
		Short: "List, restore and mirror file backups",
	}
	cmd.AddCommand(newBackupsListCommand(opts))
	cmd.AddCommand(newBackupsRestoreCommand(opts))
	cmd.AddCommand(newBackupsPushCommand(opts))
	return cmd
}

type backupView struct {
	Name  string `json:"name"`
	File  string `json:"file"`
	Taken string `json:"taken"`
	Bytes int64  `json:"bytes"`
}

func viewBackups(backups []atomicfile.Backup) []backupView {
	out := make([]backupView, len(backups))
	for i, b := range backups {
		out[i] = backupView{
			Name:  filepath.Base(b.Path),
			File:  b.Base,
			Taken: b.Stamp.Format(atomicfile.StampLayout),
			Bytes: b.Size,
		}
	}
	return out
}

func newBackupsListCommand(opts *RootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			backups, err := a.tracker.Backups()
			if err != nil {
				return a.out.Fail(err)
			}
			if file != "" {
				kept := backups[:0]
				for _, b := range backups {
					if b.Base == file {
						kept = append(kept, b)
					}
				}
				backups = kept
			}
			return a.emit(a.render.Backups(backups), viewBackups(backups))
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "only backups of this file, e.g. goals.json")
	return cmd
}

func newBackupsRestoreCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup>",
		Short: "Replace a file with one of its backups",
		Long:  "Replace a file with one of its backups. The current file is backed up first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			target, err := a.tracker.RestoreBackup(args[0])
			if err != nil {
				return a.out.Fail(err)
			}
			return a.emit(fmt.Sprintf("Restored %s from %s\n", filepath.Base(target), filepath.Base(args[0])),
				map[string]string{"backup": filepath.Base(args[0]), "target": target})
		},
	}
}

func newBackupsPushCommand(opts *RootOptions) *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Upload backups missing from the mirror bucket",
		Long: "Upload backups missing from the mirror bucket configured under `mirror` in " +
			"settings.yaml. Backup names never change, so objects already present are skipped.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			m, err := mirror.New(cmd.Context(), a.settings.Mirror,
				mirror.WithConcurrency(concurrency),
				mirror.WithLogger(a.logger))
			if err != nil {
				return a.out.Fail(err)
			}
			backups, err := a.tracker.Backups()
			if err != nil {
				return a.out.Fail(err)
			}
			res, err := m.Push(cmd.Context(), backups)
			if err != nil {
				return a.out.Fail(err)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Uploaded %d, already mirrored %d\n", len(res.Uploaded), len(res.Skipped))
			for _, name := range res.Uploaded {
				fmt.Fprintf(&b, "  + %s\n", m.Key(name))
			}
			return a.emit(b.String(), res)
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", mirror.DefaultConcurrency, "parallel uploads")
	return cmd
}
