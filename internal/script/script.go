// Package script exposes the clock to Lua. Scripts read the clock through
// script calls, issue plugin commands and define the common events bound to
// planetary hours.
//
// An Engine shares the single-writer rule of the session it wraps: it must
// only be used from the goroutine that drives the frame hooks.
package script

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Shopify/go-lua"

	"github.com/tartampluch/go-chaldean-clock/internal/command"
	"github.com/tartampluch/go-chaldean-clock/internal/config"
	"github.com/tartampluch/go-chaldean-clock/internal/session"
)

const (
	// GlobalClock is the name of the Lua table holding the script calls.
	GlobalClock = "clock"

	// eventsKey names the registry table of common event functions.
	eventsKey = "chaldean.events"
)

// Engine is a Lua state bound to one session. Fetcher serves RunURL and
// defaults to an HTTPFetcher.
type Engine struct {
	Fetcher Fetcher

	state   *lua.State
	session *session.Session
	defined map[int]bool
}

// New opens a Lua state with the standard libraries and the clock table.
func New(s *session.Session) *Engine {
	e := &Engine{
		Fetcher: NewHTTPFetcher(),
		state:   lua.NewState(),
		session: s,
		defined: make(map[int]bool),
	}
	lua.OpenLibraries(e.state)

	e.state.NewTable()
	e.state.SetField(lua.RegistryIndex, eventsKey)

	e.state.NewTable()
	lua.SetFunctions(e.state, e.clockFunctions(), 0)
	e.state.SetGlobal(GlobalClock)
	return e
}

func (e *Engine) clockFunctions() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "current_hour", Function: e.currentHour},
		{Name: "current_day", Function: e.currentDay},
		{Name: "planetary_ruler", Function: e.planetaryRuler},
		{Name: "is_day_hour", Function: e.isDayHour},
		{Name: "is_night_hour", Function: e.isNightHour},
		{Name: "command", Function: e.command},
		{Name: "register_event", Function: e.registerEvent},
		{Name: "define_event", Function: e.defineEvent},
	}
}

// Run executes a chunk of Lua source.
func (e *Engine) Run(src string) error {
	if err := lua.DoString(e.state, src); err != nil {
		return fmt.Errorf("%s: %w", config.ErrScriptLoad, err)
	}
	return nil
}

// RunFile executes the Lua file at path.
func (e *Engine) RunFile(path string) error {
	if err := lua.DoFile(e.state, path); err != nil {
		return fmt.Errorf("%s: %s: %w", config.ErrScriptLoad, path, err)
	}
	slog.Info(config.MsgScriptLoaded,
		config.LogKeyComponent, config.CompScript,
		config.LogKeyFile, path,
		config.LogKeyCount, len(e.defined),
	)
	return nil
}

// Defined reports whether a Lua function is bound to eventID.
func (e *Engine) Defined(eventID int) bool {
	return e.defined[eventID]
}

// RunEvent calls the function defined for eventID with the id as argument.
// It reports false when no function is defined.
func (e *Engine) RunEvent(eventID int) (bool, error) {
	if !e.defined[eventID] {
		slog.Debug(config.MsgEventUndefined,
			config.LogKeyComponent, config.CompScript,
			config.LogKeyEventID, eventID,
		)
		return false, nil
	}

	l := e.state
	top := l.Top()
	defer l.SetTop(top)

	l.Field(lua.RegistryIndex, eventsKey)
	l.RawGetInt(-1, eventID)
	l.PushInteger(eventID)
	if err := l.ProtectedCall(1, 0, 0); err != nil {
		return true, fmt.Errorf("%s: event %d: %w", config.ErrScriptEvent, eventID, err)
	}
	return true, nil
}

// Runner adapts RunEvent to a session event runner. Script failures are
// logged and do not stop the frame.
func (e *Engine) Runner() session.EventRunner {
	return func(eventID int) {
		if _, err := e.RunEvent(eventID); err != nil {
			slog.Error(config.ErrScriptEvent,
				config.LogKeyComponent, config.CompScript,
				config.LogKeyEventID, eventID,
				config.LogKeyError, err,
			)
		}
	}
}

// -----------------------------------------------------------------------------
// Script calls
// -----------------------------------------------------------------------------

func (e *Engine) currentHour(l *lua.State) int {
	l.PushInteger(e.session.CurrentHour())
	return 1
}

func (e *Engine) currentDay(l *lua.State) int {
	l.PushInteger(e.session.CurrentDay())
	return 1
}

func (e *Engine) planetaryRuler(l *lua.State) int {
	l.PushString(e.session.RulerLabel())
	return 1
}

func (e *Engine) isDayHour(l *lua.State) int {
	l.PushBoolean(e.session.IsDayPeriod())
	return 1
}

func (e *Engine) isNightHour(l *lua.State) int {
	l.PushBoolean(e.session.IsNightPeriod())
	return 1
}

// command(line) runs a plugin command and returns true, or false and the
// error message.
func (e *Engine) command(l *lua.State) int {
	line := lua.CheckString(l, 1)
	return pushResult(l, command.Run(e.session, line))
}

// register_event(planet, id) binds a planetary hour to a common event.
func (e *Engine) registerEvent(l *lua.State) int {
	label := lua.CheckString(l, 1)
	id := lua.CheckInteger(l, 2)
	cmd, err := command.ParseArgs(command.KindRegisterEvent.String(), []string{label, strconv.Itoa(id)})
	if err != nil {
		return pushResult(l, err)
	}
	return pushResult(l, command.Execute(e.session, cmd))
}

// define_event(id, fn) stores fn as the body of common event id.
func (e *Engine) defineEvent(l *lua.State) int {
	id := lua.CheckInteger(l, 1)
	lua.CheckType(l, 2, lua.TypeFunction)

	l.Field(lua.RegistryIndex, eventsKey)
	l.PushValue(2)
	l.RawSetInt(-2, id)
	l.Pop(1)
	e.defined[id] = true

	slog.Debug(config.MsgEventDefined,
		config.LogKeyComponent, config.CompScript,
		config.LogKeyEventID, id,
	)
	return 0
}

func pushResult(l *lua.State, err error) int {
	if err != nil {
		l.PushBoolean(false)
		l.PushString(err.Error())
		return 2
	}
	l.PushBoolean(true)
	return 1
}
