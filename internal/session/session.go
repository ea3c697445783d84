package session

import (
	"log/slog"

	"github.com/tartampluch/go-chaldean-clock/internal/config"
	"github.com/tartampluch/go-chaldean-clock/internal/engine"
)

// Host exposes the lifecycle extension points a session attaches to.
// OnSessionInit hooks run once per session; OnFrameTick hooks run once per
// rendered frame, always on the same goroutine.
type Host interface {
	OnSessionInit(hook func())
	OnFrameTick(hook func())
}

// Display is the on-screen renderer of the clock. It only reads state.
type Display interface {
	Show()
	Hide()
	Refresh()
}

// EventRunner executes a reserved common event.
type EventRunner func(eventID int)

// Option configures a Session.
type Option func(*Session)

// WithDisplay attaches the clock renderer.
func WithDisplay(d Display) Option {
	return func(s *Session) { s.display = d }
}

// WithEventRunner sets the executor of reserved common events.
func WithEventRunner(r EventRunner) Option {
	return func(s *Session) { s.runner = r }
}

// Session is the single authoritative time source of a game session. It owns
// the clock and its event registry and is handed to every subsystem that
// needs time.
//
// Planetary events dispatched by the clock are reserved, then executed after
// the current frame tick has returned, so common events may freely issue
// commands without re-entering the clock.
type Session struct {
	Params config.Params
	Clock  *engine.ClockState

	display  Display
	runner   EventRunner
	reserved []int
	frames   int
	started  bool
}

// New creates a session with a running clock built from p.
func New(p config.Params, opts ...Option) *Session {
	p.Normalize()
	s := &Session{Params: p}
	s.Clock = engine.NewClockState(p, engine.NewCycleRegistry(), s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Install registers the session on the host lifecycle.
func (s *Session) Install(h Host) {
	h.OnSessionInit(s.Init)
	h.OnFrameTick(s.Frame)
}

// SetDisplay attaches or replaces the renderer after construction.
func (s *Session) SetDisplay(d Display) {
	s.display = d
}

// SetEventRunner attaches or replaces the common event executor.
func (s *Session) SetEventRunner(r EventRunner) {
	s.runner = r
}

// Init prepares the display. Later calls are no-ops.
func (s *Session) Init() {
	if s.started {
		return
	}
	s.started = true

	if s.Params.ShowDisplay {
		s.ShowDisplay()
	} else {
		s.HideDisplay()
	}

	slog.Info(config.MsgSessionInit,
		config.LogKeyComponent, config.CompSession,
		config.LogKeyDay, s.Clock.CurrentDay(),
		config.LogKeyHour, s.Clock.CurrentHour(),
		config.LogKeyRuler, s.Clock.Ruler(),
	)
}

// Frame advances the clock by one tick, runs the common events reserved
// during the tick and refreshes the display.
func (s *Session) Frame() {
	s.frames++
	s.Clock.Tick()
	s.RunReserved()
	s.RefreshDisplay()
}

// Frames returns the number of frames processed.
func (s *Session) Frames() int {
	return s.frames
}

// DispatchEvent implements engine.Dispatcher by reserving the event.
func (s *Session) DispatchEvent(eventID int) {
	s.reserved = append(s.reserved, eventID)
	slog.Debug(config.MsgEventReserved,
		config.LogKeyComponent, config.CompSession,
		config.LogKeyEventID, eventID,
	)
}

// Reserved returns the ids waiting to run.
func (s *Session) Reserved() []int {
	return append([]int(nil), s.reserved...)
}

// RunReserved executes the events reserved so far, in order. Events reserved
// while they run wait for the next call.
func (s *Session) RunReserved() {
	if len(s.reserved) == 0 {
		return
	}
	batch := s.reserved
	s.reserved = nil

	for _, id := range batch {
		if s.runner == nil {
			continue
		}
		s.runner(id)
		slog.Debug(config.MsgEventRun,
			config.LogKeyComponent, config.CompSession,
			config.LogKeyEventID, id,
		)
	}
}

// -----------------------------------------------------------------------------
// Boundary operations
// -----------------------------------------------------------------------------

// SetHour overwrites the hour; see engine.ClockState.SetHour.
func (s *Session) SetHour(n int) error {
	return s.Clock.SetHour(n)
}

// SetDay overwrites the day; see engine.ClockState.SetDay.
func (s *Session) SetDay(n int) error {
	return s.Clock.SetDay(n)
}

// AdvanceHour advances the clock times hours, one rollover at a time.
func (s *Session) AdvanceHour(times int) {
	for range times {
		s.Clock.AdvanceHour()
	}
}

// Pause halts the clock.
func (s *Session) Pause() {
	s.Clock.Pause()
	slog.Info(config.MsgClockPaused, config.LogKeyComponent, config.CompSession)
}

// Resume restarts the clock.
func (s *Session) Resume() {
	s.Clock.Resume()
	slog.Info(config.MsgClockResumed, config.LogKeyComponent, config.CompSession)
}

// RegisterHandler binds a planetary label to a common event.
func (s *Session) RegisterHandler(label string, eventID int) error {
	return s.Clock.Registry().Register(label, eventID)
}

// HideDisplay hides the clock renderer, if any.
func (s *Session) HideDisplay() {
	if s.display == nil {
		return
	}
	s.display.Hide()
	slog.Debug(config.MsgDisplayHidden, config.LogKeyComponent, config.CompSession)
}

// ShowDisplay shows the clock renderer, if any.
func (s *Session) ShowDisplay() {
	if s.display == nil {
		return
	}
	s.display.Show()
	slog.Debug(config.MsgDisplayShown, config.LogKeyComponent, config.CompSession)
}

// RefreshDisplay redraws the clock renderer, if any.
func (s *Session) RefreshDisplay() {
	if s.display != nil {
		s.display.Refresh()
	}
}

func (s *Session) CurrentHour() int    { return s.Clock.CurrentHour() }
func (s *Session) CurrentDay() int     { return s.Clock.CurrentDay() }
func (s *Session) RulerLabel() string  { return s.Clock.Ruler().String() }
func (s *Session) IsDayPeriod() bool   { return s.Clock.IsDayPeriod() }
func (s *Session) IsNightPeriod() bool { return s.Clock.IsNightPeriod() }
