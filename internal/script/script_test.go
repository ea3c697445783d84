package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-chaldean-clock/internal/config"
	"github.com/tartampluch/go-chaldean-clock/internal/session"
)

func newEngine(t *testing.T) (*Engine, *session.Session) {
	t.Helper()
	p := config.DefaultParams()
	p.SecondsPerHour = 1
	s := session.New(p)
	e := New(s)
	s.SetEventRunner(e.Runner())
	return e, s
}

func globalString(e *Engine, name string) string {
	e.state.Global(name)
	defer e.state.Pop(1)
	v, _ := e.state.ToString(-1)
	return v
}

func TestScriptCalls_ReadTheClock(t *testing.T) {
	e, s := newEngine(t)
	require.NoError(t, s.SetDay(2))
	require.NoError(t, s.SetHour(13))

	err := e.Run(`
		assert(clock.current_hour() == 13, "hour")
		assert(clock.current_day() == 2, "day")
		assert(clock.is_night_hour(), "night")
		assert(not clock.is_day_hour(), "day period")
		ruler = clock.planetary_ruler()
	`)
	require.NoError(t, err)

	assert.Equal(t, s.RulerLabel(), globalString(e, "ruler"))
}

func TestCommand_RunsPluginCommands(t *testing.T) {
	e, s := newEngine(t)

	err := e.Run(`
		assert(clock.command("SetDay 5"))
		assert(clock.command("sethour 3"))
		assert(clock.command("PauseTime"))
	`)
	require.NoError(t, err)

	assert.Equal(t, 5, s.CurrentDay())
	assert.Equal(t, 3, s.CurrentHour())
	assert.True(t, s.Clock.Paused())
}

func TestCommand_ReportsRejection(t *testing.T) {
	e, s := newEngine(t)

	err := e.Run(`ok, msg = clock.command("SetHour 0")`)
	require.NoError(t, err)

	assert.Contains(t, globalString(e, "msg"), config.ErrOutOfRangeSet)
	assert.Equal(t, 1, s.CurrentHour())

	require.NoError(t, e.Run(`ok, msg = clock.command("Teleport")`))
	assert.Contains(t, globalString(e, "msg"), config.ErrUnknownCommand)
}

func TestRegisterEvent(t *testing.T) {
	e, s := newEngine(t)

	require.NoError(t, e.Run(`assert(clock.register_event("venus", 3))`))
	assert.Equal(t, map[string]int{"Venus": 3}, s.Clock.Registry().Entries())

	require.NoError(t, e.Run(`ok, msg = clock.register_event("Pluto", 3)`))
	assert.Contains(t, globalString(e, "msg"), config.ErrInvalidLabel)
}

func TestDefineEvent_RunsOnDispatch(t *testing.T) {
	e, s := newEngine(t)

	err := e.Run(`
		fired = ""
		clock.register_event("Jupiter", 7)
		clock.define_event(7, function(id)
			fired = fired .. id .. ":" .. clock.planetary_ruler()
			clock.command("AdvanceHour")
		end)
	`)
	require.NoError(t, err)
	assert.True(t, e.Defined(7))

	loop := &session.Loop{}
	s.Install(loop)
	loop.Step(60)

	assert.Equal(t, "7:Jupiter", globalString(e, "fired"))
	assert.Equal(t, "Mars", s.RulerLabel(), "the event advanced the clock after the tick")
}

func TestRunEvent_Undefined(t *testing.T) {
	e, _ := newEngine(t)

	ran, err := e.RunEvent(42)

	assert.False(t, ran)
	assert.NoError(t, err)
}

func TestRunEvent_ScriptErrorIsReported(t *testing.T) {
	e, _ := newEngine(t)
	require.NoError(t, e.Run(`clock.define_event(1, function() error("boom") end)`))

	top := e.state.Top()
	ran, err := e.RunEvent(1)

	assert.True(t, ran)
	assert.ErrorContains(t, err, config.ErrScriptEvent)
	assert.Equal(t, top, e.state.Top(), "stack restored")

	assert.NotPanics(t, func() { e.Runner()(1) })
}

func TestRun_SyntaxError(t *testing.T) {
	e, _ := newEngine(t)

	err := e.Run(`clock.current_hour(`)

	assert.ErrorContains(t, err, config.ErrScriptLoad)
}

func TestRunFile(t *testing.T) {
	e, s := newEngine(t)
	path := filepath.Join(t.TempDir(), "events.lua")
	src := `clock.register_event("Moon", 2)
clock.define_event(2, function() end)
`
	require.NoError(t, os.WriteFile(path, []byte(src), config.FilePermUserRW))

	require.NoError(t, e.RunFile(path))
	assert.True(t, e.Defined(2))
	assert.Equal(t, map[string]int{"Moon": 2}, s.Clock.Registry().Entries())

	err := e.RunFile(filepath.Join(t.TempDir(), "missing.lua"))
	assert.ErrorContains(t, err, config.ErrScriptLoad)
}
