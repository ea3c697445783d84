package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"github.com/tartampluch/go-chaldean-clock/internal/command"
	"github.com/tartampluch/go-chaldean-clock/internal/config"
	"github.com/tartampluch/go-chaldean-clock/internal/engine"
	"github.com/tartampluch/go-chaldean-clock/internal/script"
	"github.com/tartampluch/go-chaldean-clock/internal/server"
	"github.com/tartampluch/go-chaldean-clock/internal/session"
	"github.com/tartampluch/go-chaldean-clock/internal/ui"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Version    bool
	Debug      bool
	ConfigPath string
	StatePath  string
	ScriptPath string

	logCloser io.Closer
}

func (o *RootOptions) closeLog() {
	if o.logCloser != nil {
		_ = o.logCloser.Close() // Best effort close
	}
}

// NewRootCommand creates the root command. Without a subcommand it opens the
// desktop clock, like "run".
func NewRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           config.CLIName,
		Short:         config.CmdShortRoot,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if opts.Version {
				return
			}
			opts.logCloser = setupLogging(opts.Debug, cmd.ErrOrStderr())
			logStartupInfo()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Version {
				printVersion(cmd.OutOrStdout())
				return nil
			}
			return runDesktop(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Version, config.FlagVersion, false, config.FlagDescVersion)
	cmd.PersistentFlags().BoolVar(&opts.Debug, config.FlagDebug, false, config.FlagDescDebug)
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, config.FlagConfig, "", config.FlagDescConfig)
	cmd.PersistentFlags().StringVar(&opts.StatePath, config.FlagState, "", config.FlagDescState)
	cmd.PersistentFlags().StringVar(&opts.ScriptPath, config.FlagScript, "", config.FlagDescScript)

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newSimulateCommand(opts))
	cmd.AddCommand(newScheduleCommand(opts))

	return cmd
}

func newRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdUseRun,
		Short: config.CmdShortRun,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDesktop(cmd.Context(), opts)
		},
	}
}

func newSimulateCommand(opts *RootOptions) *cobra.Command {
	var frames int
	var lines []string

	cmd := &cobra.Command{
		Use:   config.CmdUseSimulate,
		Short: config.CmdShortSimulate,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulation(cmd.Context(), opts, frames, lines, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&frames, config.FlagFrames, config.DefaultSimFrames, config.FlagDescFrames)
	cmd.Flags().StringArrayVar(&lines, config.FlagCommand, nil, config.FlagDescCommand)
	return cmd
}

func newScheduleCommand(opts *RootOptions) *cobra.Command {
	var hours int

	cmd := &cobra.Command{
		Use:   config.CmdUseSchedule,
		Short: config.CmdShortSchedule,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed(config.FlagHours) {
				hours = 0
			}
			return runSchedule(cmd.Context(), opts, hours, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&hours, config.FlagHours, config.DefaultScheduleHours, config.FlagDescHours)
	return cmd
}

// -----------------------------------------------------------------------------
// Session assembly
// -----------------------------------------------------------------------------

// loadParams reads the configuration. Rejected values are logged and replaced
// by defaults, so a broken file never prevents startup.
func loadParams(opts *RootOptions) config.Params {
	path := opts.ConfigPath
	if path == "" {
		if p, err := config.DefaultConfigPath(); err == nil {
			path = p
		}
	}
	p, err := config.Load(path)
	if err != nil {
		slog.Warn(config.ErrInvalidConfiguration,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
	}
	return p
}

// newSession builds a session and restores the snapshot file if one exists.
func newSession(opts *RootOptions) (*session.Session, error) {
	s := session.New(loadParams(opts))
	if opts.StatePath == "" {
		return s, nil
	}
	if err := s.Load(opts.StatePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		if errors.Is(err, engine.ErrInvalidLabel) {
			slog.Warn(config.ErrStateParse,
				config.LogKeyComponent, config.CompMain,
				config.LogKeyError, err,
			)
			return s, nil
		}
		return nil, err
	}
	return s, nil
}

func saveSession(opts *RootOptions, s *session.Session) error {
	if opts.StatePath == "" {
		return nil
	}
	return s.Save(opts.StatePath)
}

// scriptHook returns an init hook running the configured Lua file or URL once
// the session display is ready. The first failure is kept in errp.
func scriptHook(ctx context.Context, opts *RootOptions, eng *script.Engine, errp *error) func() {
	return func() {
		if opts.ScriptPath == "" {
			return
		}
		if err := eng.RunSource(ctx, opts.ScriptPath); err != nil {
			*errp = err
			slog.Error(config.ErrScriptLoad,
				config.LogKeyComponent, config.CompMain,
				config.LogKeyError, err,
			)
		}
	}
}

// -----------------------------------------------------------------------------
// Runners
// -----------------------------------------------------------------------------

// runDesktop opens the clock window and blocks until it closes. Unlike the
// headless commands it persists the clock in the user config dir by default.
func runDesktop(ctx context.Context, opts *RootOptions) error {
	if opts.StatePath == "" {
		if p, err := session.DefaultStatePath(); err == nil {
			opts.StatePath = p
		}
	}

	s, err := newSession(opts)
	if err != nil {
		return err
	}

	a := app.NewWithID(config.AppID)
	a.Preferences().SetString(config.PrefLastRun, config.Version)

	eng := script.New(s)
	srv := server.NewScheduleServer(s.Params.ServerPort)
	gui := ui.NewClockApp(a, ctx, s, eng, srv)

	var scriptErr error
	gui.OnSessionInit(scriptHook(ctx, opts, eng, &scriptErr))

	// Lifecycle Bridge: quit the UI when the context is cancelled.
	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		a.Quit()
	}()

	gui.Run()

	return saveSession(opts, s)
}

// runSimulation drives a headless session: init, plugin commands, then frames.
func runSimulation(ctx context.Context, opts *RootOptions, frames int, lines []string, out io.Writer) error {
	s, err := newSession(opts)
	if err != nil {
		return err
	}
	eng := script.New(s)
	s.SetEventRunner(eng.Runner())

	loop := &session.Loop{}
	s.Install(loop)
	var scriptErr error
	loop.OnSessionInit(scriptHook(ctx, opts, eng, &scriptErr))

	loop.Start()
	if scriptErr != nil {
		return scriptErr
	}

	// Rejected commands are logged and skipped, like in the other hosts.
	for _, line := range lines {
		if err := command.Run(s, line); err != nil {
			slog.Warn(config.ErrCommandRejected,
				config.LogKeyComponent, config.CompMain,
				config.LogKeyCommand, line,
				config.LogKeyError, err,
			)
			continue
		}
		slog.Info(config.MsgCommandExec,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyCommand, line,
		)
	}
	// Events reserved by commands run before the first frame.
	s.RunReserved()

	loop.Step(max(frames, 0))

	slog.Info(config.MsgSimulationDone,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyFrames, s.Frames(),
	)

	c := s.Clock
	_, _ = fmt.Fprintf(out, config.MsgStateOutput,
		c.CurrentDay(), c.CurrentHour(), c.Ruler(), c.Paused(), c.TickAccumulator(), c.TicksPerHour())

	return saveSession(opts, s)
}

// runSchedule prints the upcoming planetary hours of the saved clock.
func runSchedule(ctx context.Context, opts *RootOptions, hours int, out io.Writer) error {
	s, err := newSession(opts)
	if err != nil {
		return err
	}
	if hours == 0 {
		hours = s.Params.ScheduleHours
	}
	hours = min(max(hours, 1), config.MaxScheduleHours)

	gen := &engine.ScheduleGenerator{Clock: engine.RealClock{}}
	feed, _, err := gen.Generate(ctx, s.Clock, hours)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrScheduleFailed, err)
	}
	_, err = out.Write(feed)
	return err
}
