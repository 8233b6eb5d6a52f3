package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/horizonte/internal/clock"
	"github.com/roach88/horizonte/internal/config"
	"github.com/roach88/horizonte/internal/render"
	"github.com/roach88/horizonte/internal/store"
	"github.com/roach88/horizonte/internal/suggest"
	"github.com/roach88/horizonte/internal/tracker"
)

// app is the per-invocation wiring shared by every command.
type app struct {
	home     string
	settings config.Settings
	logger   *slog.Logger
	clock    clock.Clock
	tracker  *tracker.Tracker
	out      *OutputFormatter
	render   *render.Renderer
}

// newApp resolves the data root and settings and builds the tracker. Errors
// are already reported and carry their exit code.
func newApp(cmd *cobra.Command, opts *RootOptions) (*app, error) {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	home, err := config.ResolveHome(opts.Home)
	if err != nil {
		return nil, out.Fail(fmt.Errorf("%w: %w", errSettings, err))
	}
	settings, err := config.Load(home)
	if err != nil {
		return nil, out.Fail(fmt.Errorf("%w: %w", errSettings, err))
	}

	level := settings.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	logger := config.NewLogger(level, cmd.ErrOrStderr())
	clk := clock.OrSystem(opts.Clock)

	storeOpts := []store.Option{
		store.WithBackupKeep(settings.BackupKeep),
		store.WithClock(clk),
		store.WithLogger(logger),
	}
	if settings.Lock {
		storeOpts = append(storeOpts, store.WithLocking())
	}
	if settings.StrictUpdates {
		storeOpts = append(storeOpts, store.WithStrictUpdates())
	}
	st := store.Open(store.Layout{Root: home}, storeOpts...)

	trackerOpts := []tracker.Option{
		tracker.WithSuggestions(newSuggester(opts, settings, logger)),
		tracker.WithClock(clk),
		tracker.WithLogger(logger),
	}
	if opts.IDs != nil {
		trackerOpts = append(trackerOpts, tracker.WithIDs(opts.IDs))
	}

	out.VerboseLog("data root %s", home)
	return &app{
		home:     home,
		settings: settings,
		logger:   logger,
		clock:    clk,
		tracker:  tracker.New(st, trackerOpts...),
		out:      out,
		render:   render.New(cmd.OutOrStdout(), !opts.NoColor),
	}, nil
}

func newSuggester(opts *RootOptions, settings config.Settings, logger *slog.Logger) suggest.Service {
	switch {
	case opts.Suggest != nil:
		return opts.Suggest
	case settings.Suggest.Enabled():
		return suggest.NewClient(suggest.Options{
			BaseURL: settings.Suggest.BaseURL,
			APIKey:  settings.Suggest.APIKey,
			Model:   settings.Suggest.Model,
			Timeout: settings.Suggest.Timeout,
			Logger:  logger,
		})
	default:
		logger.Debug("suggestions disabled", "reason", "OPENROUTER_API_KEY not set")
		return suggest.Disabled{}
	}
}

// emit writes text or the JSON envelope, turning a write failure into an
// exit error.
func (a *app) emit(text string, data any) error {
	if err := a.out.Emit(text, data); err != nil {
		return WrapExitError(ExitFailure, "write output", err)
	}
	return nil
}
