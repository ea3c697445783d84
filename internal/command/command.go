// Package command implements the plugin commands a game script issues
// against the clock. A command line is parsed once into a tagged Command and
// executed through a handler table keyed by its Kind.
package command

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tartampluch/go-chaldean-clock/internal/config"
	"github.com/tartampluch/go-chaldean-clock/internal/engine"
)

var (
	ErrUnknownCommand  = errors.New(config.ErrUnknownCommand)
	ErrMissingArgument = errors.New(config.ErrMissingArgument)
	ErrInvalidArgument = errors.New(config.ErrInvalidArgument)
)

// Kind tags a plugin command.
type Kind int

const (
	KindSetHour Kind = iota
	KindSetDay
	KindAdvanceHour
	KindPauseTime
	KindResumeTime
	KindRegisterEvent
	KindHideClock
	KindShowClock

	kindCount
)

var kindNames = [kindCount]string{
	KindSetHour:       "SetHour",
	KindSetDay:        "SetDay",
	KindAdvanceHour:   "AdvanceHour",
	KindPauseTime:     "PauseTime",
	KindResumeTime:    "ResumeTime",
	KindRegisterEvent: "RegisterEvent",
	KindHideClock:     "HideClock",
	KindShowClock:     "ShowClock",
}

// String returns the canonical command name.
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Kinds lists every command kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := range kindCount {
		kinds = append(kinds, k)
	}
	return kinds
}

// Command is a validated plugin command. Only the fields used by Kind are set:
// N for SetHour, SetDay and AdvanceHour; Planet and EventID for RegisterEvent.
type Command struct {
	Kind    Kind
	N       int
	Planet  engine.Planet
	EventID int
}

func (c Command) String() string {
	switch c.Kind {
	case KindSetHour, KindSetDay, KindAdvanceHour:
		return fmt.Sprintf("%s %d", c.Kind, c.N)
	case KindRegisterEvent:
		return fmt.Sprintf("%s %s %d", c.Kind, c.Planet, c.EventID)
	default:
		return c.Kind.String()
	}
}

// Parse splits a command line on whitespace and parses it with ParseArgs.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty line", ErrUnknownCommand)
	}
	return ParseArgs(fields[0], fields[1:])
}

// ParseArgs validates a command name and its arguments. Names match
// case-insensitively. Extra arguments are ignored.
func ParseArgs(name string, args []string) (Command, error) {
	kind, ok := lookupKind(name)
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	cmd := Command{Kind: kind}

	var err error
	switch kind {
	case KindSetHour, KindSetDay:
		cmd.N, err = intArg(kind, args, 0)
	case KindAdvanceHour:
		cmd.N = 1
		if len(args) > 0 {
			cmd.N, err = intArg(kind, args, 0)
			if err == nil && cmd.N < 0 {
				err = fmt.Errorf("%w: %s count %d", ErrInvalidArgument, kind, cmd.N)
			}
		}
	case KindRegisterEvent:
		if len(args) < 2 {
			return Command{}, fmt.Errorf("%w: %s needs a planet and an event id", ErrMissingArgument, kind)
		}
		cmd.Planet, err = engine.ParsePlanet(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		cmd.EventID, err = intArg(kind, args, 1)
	}
	if err != nil {
		return Command{}, err
	}
	return cmd, nil
}

func lookupKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if strings.EqualFold(n, name) {
			return Kind(k), true
		}
	}
	return 0, false
}

func intArg(kind Kind, args []string, i int) (int, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("%w: %s", ErrMissingArgument, kind)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidArgument, kind, args[i])
	}
	return n, nil
}

// Target is the clock surface commands act on. *session.Session satisfies it.
type Target interface {
	SetHour(n int) error
	SetDay(n int) error
	AdvanceHour(times int)
	Pause()
	Resume()
	RegisterHandler(label string, eventID int) error
	HideDisplay()
	ShowDisplay()
	RefreshDisplay()
}

type handler func(t Target, c Command) error

// handlers holds one entry per Kind; TestHandlersCoverEveryKind keeps it total.
var handlers = map[Kind]handler{
	KindSetHour: func(t Target, c Command) error { return t.SetHour(c.N) },
	KindSetDay:  func(t Target, c Command) error { return t.SetDay(c.N) },
	KindAdvanceHour: func(t Target, c Command) error {
		t.AdvanceHour(c.N)
		return nil
	},
	KindPauseTime: func(t Target, _ Command) error {
		t.Pause()
		return nil
	},
	KindResumeTime: func(t Target, _ Command) error {
		t.Resume()
		return nil
	},
	KindRegisterEvent: func(t Target, c Command) error {
		return t.RegisterHandler(c.Planet.String(), c.EventID)
	},
	KindHideClock: func(t Target, _ Command) error {
		t.HideDisplay()
		return nil
	},
	KindShowClock: func(t Target, _ Command) error {
		t.ShowDisplay()
		return nil
	},
}

// Execute applies c to t and refreshes the display, even when the handler
// rejected the command.
func Execute(t Target, c Command) error {
	h, ok := handlers[c.Kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, c.Kind)
	}

	err := h(t, c)
	t.RefreshDisplay()

	log := slog.With(
		config.LogKeyComponent, config.CompCommand,
		config.LogKeyCommand, c.String(),
	)
	if err != nil {
		log.Warn(config.ErrCommandRejected, config.LogKeyError, err)
		return fmt.Errorf("%s: %w", config.ErrCommandRejected, err)
	}
	log.Debug(config.MsgCommandExec)
	return nil
}

// Run parses line and executes it.
func Run(t Target, line string) error {
	c, err := Parse(line)
	if err != nil {
		return err
	}
	return Execute(t, c)
}
