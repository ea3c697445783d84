package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-chaldean-clock/internal/config"
)

// WallClock abstracts time.Now() to allow deterministic testing.
// It anchors the projection of game hours onto real time.
type WallClock interface {
	Now() time.Time
}

// RealClock implements WallClock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// AdvanceListener is notified after every natural hour advance, once the
// ruler has been evaluated and any planetary event dispatched.
type AdvanceListener func(day, hour int, ruler Planet)

// ClockState owns the in-game hour and day and advances them on a fixed-rate
// tick. It has two states, running and paused; only a running clock moves.
//
// A ClockState has a single writer and is not safe for concurrent use.
type ClockState struct {
	hour            int
	day             int
	paused          bool
	tickAccumulator int

	hoursPerDay  int
	ticksPerHour int

	registry   *CycleRegistry
	dispatcher Dispatcher
	listeners  []AdvanceListener

	// dispatching is set while the ruler is evaluated and handlers run.
	dispatching bool
}

// NewClockState creates a running clock at the configured starting hour and
// day. Params are normalized on a copy, so out-of-range values fall back to
// their defaults. A nil registry is replaced by an empty one.
func NewClockState(p config.Params, registry *CycleRegistry, dispatcher Dispatcher) *ClockState {
	p.Normalize()
	if registry == nil {
		registry = NewCycleRegistry()
	}
	return &ClockState{
		hour:         p.StartingHour,
		day:          p.StartingDay,
		hoursPerDay:  p.HoursPerDay,
		ticksPerHour: p.TicksPerHour(),
		registry:     registry,
		dispatcher:   dispatcher,
	}
}

// SetDispatcher replaces the side channel used on hour advances.
func (c *ClockState) SetDispatcher(d Dispatcher) {
	c.dispatcher = d
}

// AddListener registers fn to run after every natural hour advance.
func (c *ClockState) AddListener(fn AdvanceListener) {
	c.listeners = append(c.listeners, fn)
}

// Registry exposes the planetary event bindings of this clock.
func (c *ClockState) Registry() *CycleRegistry {
	return c.registry
}

// Tick consumes one frame. Every TicksPerHour frames the accumulator resets
// and the clock advances one hour. Dropped frames are lost time.
func (c *ClockState) Tick() {
	if c.paused || c.refuseReentry() {
		return
	}
	c.tickAccumulator++
	if c.tickAccumulator >= c.ticksPerHour {
		c.tickAccumulator = 0
		c.AdvanceHour()
	}
}

// AdvanceHour moves to the next hour, rolling over to hour 1 of the next day
// past HoursPerDay, then re-evaluates the ruler and dispatches its event.
func (c *ClockState) AdvanceHour() {
	if c.paused || c.refuseReentry() {
		return
	}

	c.hour++
	if c.hour > c.hoursPerDay {
		c.hour = 1
		// The calendar stops at MaxDay; hours keep cycling through it.
		c.day = min(c.day+1, config.MaxDay)
	}

	ruler := c.Ruler()
	slog.Debug(config.MsgHourAdvanced,
		config.LogKeyComponent, config.CompClock,
		config.LogKeyDay, c.day,
		config.LogKeyHour, c.hour,
		config.LogKeyRuler, ruler,
	)

	c.dispatching = true
	defer func() { c.dispatching = false }()

	c.registry.DispatchIfRegistered(ruler, c.dispatcher)
	for _, fn := range c.listeners {
		fn(c.day, c.hour, ruler)
	}
}

func (c *ClockState) refuseReentry() bool {
	if !c.dispatching {
		return false
	}
	slog.Warn(config.MsgReentrantAdvance,
		config.LogKeyComponent, config.CompClock,
		config.LogKeyDay, c.day,
		config.LogKeyHour, c.hour,
	)
	return true
}

// SetHour overwrites the hour without rollover or dispatch.
// Values below 1 are rejected; values above HoursPerDay are clamped.
func (c *ClockState) SetHour(n int) error {
	if n < 1 {
		return c.rejectSet("hour", n)
	}
	c.hour = min(n, c.hoursPerDay)
	return nil
}

// SetDay overwrites the day without dispatch. Values below 1 are rejected;
// values above config.MaxDay are clamped.
func (c *ClockState) SetDay(n int) error {
	if n < 1 {
		return c.rejectSet("day", n)
	}
	c.day = min(n, config.MaxDay)
	return nil
}

func (c *ClockState) rejectSet(field string, n int) error {
	slog.Warn(config.MsgSetRejected,
		config.LogKeyComponent, config.CompClock,
		config.LogKeyField, field,
		config.LogKeyValue, n,
	)
	return fmt.Errorf("%w: %s %d", ErrOutOfRangeSet, field, n)
}

// Pause freezes the clock mid-hour. The accumulator is kept.
func (c *ClockState) Pause() {
	c.paused = true
}

// Resume restarts a paused clock from the same accumulator value.
func (c *ClockState) Resume() {
	c.paused = false
}

func (c *ClockState) CurrentHour() int     { return c.hour }
func (c *ClockState) CurrentDay() int      { return c.day }
func (c *ClockState) Paused() bool         { return c.paused }
func (c *ClockState) TickAccumulator() int { return c.tickAccumulator }
func (c *ClockState) TicksPerHour() int    { return c.ticksPerHour }
func (c *ClockState) HoursPerDay() int     { return c.hoursPerDay }

// Ruler returns the planet ruling the current hour.
func (c *ClockState) Ruler() Planet {
	return RulerFor(c.day, c.hour)
}

// IsDayPeriod reports whether the hour falls in the first half of the
// configured day.
func (c *ClockState) IsDayPeriod() bool {
	return c.hour >= 1 && c.hour <= c.hoursPerDay/2
}

// IsNightPeriod is the complement of IsDayPeriod.
func (c *ClockState) IsNightPeriod() bool {
	return !c.IsDayPeriod()
}

// Snapshot is the serializable form of a clock and its event bindings.
type Snapshot struct {
	Hour            int            `yaml:"hour" json:"hour"`
	Day             int            `yaml:"day" json:"day"`
	Paused          bool           `yaml:"paused" json:"paused"`
	TickAccumulator int            `yaml:"tick_accumulator" json:"tick_accumulator"`
	Events          map[string]int `yaml:"events,omitempty" json:"events,omitempty"`
}

// Snapshot captures the current state.
func (c *ClockState) Snapshot() Snapshot {
	return Snapshot{
		Hour:            c.hour,
		Day:             c.day,
		Paused:          c.paused,
		TickAccumulator: c.tickAccumulator,
		Events:          c.registry.Entries(),
	}
}

// Restore replaces the state with s, clamping every field into range.
// Bindings with unknown labels are skipped and reported in the returned error;
// the rest of the snapshot is still applied.
func (c *ClockState) Restore(s Snapshot) error {
	c.hour = min(max(s.Hour, 1), c.hoursPerDay)
	c.day = min(max(s.Day, 1), config.MaxDay)
	c.paused = s.Paused
	c.tickAccumulator = min(max(s.TickAccumulator, 0), c.ticksPerHour-1)

	c.registry.Reset()
	var errs []error
	for label, id := range s.Events {
		if err := c.registry.Register(label, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
