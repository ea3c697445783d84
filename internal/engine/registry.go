package engine

import (
	"log/slog"

	"github.com/tartampluch/go-chaldean-clock/internal/config"
)

// Dispatcher is the host side channel receiving planetary events.
// Implementations must not call back into Tick or AdvanceHour synchronously.
type Dispatcher interface {
	DispatchEvent(eventID int)
}

// DispatcherFunc adapts a plain function to Dispatcher.
type DispatcherFunc func(eventID int)

// DispatchEvent implements Dispatcher.
func (f DispatcherFunc) DispatchEvent(eventID int) {
	f(eventID)
}

// CycleRegistry maps a planetary ruler to the event fired when it rules.
// Each planet holds at most one event id; the last registration wins.
type CycleRegistry struct {
	handlers map[Planet]int
}

// NewCycleRegistry returns an empty registry.
func NewCycleRegistry() *CycleRegistry {
	return &CycleRegistry{handlers: make(map[Planet]int)}
}

// Register binds label to eventID. An eventID <= 0 removes the binding.
// Unknown labels are rejected with ErrInvalidLabel and leave the registry as is.
func (r *CycleRegistry) Register(label string, eventID int) error {
	p, err := ParsePlanet(label)
	if err != nil {
		return err
	}

	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyRuler, p,
	)
	if eventID <= 0 {
		delete(r.handlers, p)
		log.Debug(config.MsgHandlerRemoved)
		return nil
	}

	r.handlers[p] = eventID
	log.Debug(config.MsgHandlerSet, config.LogKeyEventID, eventID)
	return nil
}

// Lookup returns the event registered for p.
func (r *CycleRegistry) Lookup(p Planet) (int, bool) {
	id, ok := r.handlers[p]
	return id, ok
}

// DispatchIfRegistered calls d exactly once with the event bound to p.
// It reports whether a dispatch happened.
func (r *CycleRegistry) DispatchIfRegistered(p Planet, d Dispatcher) bool {
	id, ok := r.handlers[p]
	if !ok || d == nil {
		return false
	}
	slog.Debug(config.MsgEventDispatched,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyRuler, p,
		config.LogKeyEventID, id,
	)
	d.DispatchEvent(id)
	return true
}

// Entries returns a copy of the bindings keyed by label.
func (r *CycleRegistry) Entries() map[string]int {
	out := make(map[string]int, len(r.handlers))
	for p, id := range r.handlers {
		out[string(p)] = id
	}
	return out
}

// Reset drops every binding.
func (r *CycleRegistry) Reset() {
	clear(r.handlers)
}

// Len returns the number of bound planets.
func (r *CycleRegistry) Len() int {
	return len(r.handlers)
}

