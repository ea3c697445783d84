package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-chaldean-clock/internal/config"
)

// ClockReader is the read-only view of a clock needed to project its hours.
type ClockReader interface {
	CurrentHour() int
	CurrentDay() int
	HoursPerDay() int
	Paused() bool
	TickAccumulator() int
	TicksPerHour() int
}

// HourEntry is one projected game hour.
type HourEntry struct {
	Day   int
	Hour  int
	Ruler Planet
	Start time.Time
	End   time.Time
}

// ScheduleGenerator renders the upcoming planetary hours of a running clock
// as an iCalendar feed, placing each game hour on the wall clock.
type ScheduleGenerator struct {
	Clock WallClock // Interface for time mocking.

	// FormatSummary allows the UI to inject localized strings into the logic layer.
	FormatSummary func(day, hour int, ruler Planet) string

	// FormatDescription returns the text attached to an hour; defaults to the
	// English meaning of the ruler.
	FormatDescription func(ruler Planet) string
}

// Project lists the current hour followed by the next ones, count in total.
// A paused clock has no projection since its hours never end.
func (g *ScheduleGenerator) Project(c ClockReader, count int) []HourEntry {
	if c.Paused() || count < 1 {
		return nil
	}

	hourLen := ticksToDuration(c.TicksPerHour())
	start := g.Clock.Now().Add(-ticksToDuration(c.TickAccumulator()))

	day, hour := c.CurrentDay(), c.CurrentHour()
	entries := make([]HourEntry, 0, count)
	for range count {
		entries = append(entries, HourEntry{
			Day:   day,
			Hour:  hour,
			Ruler: RulerFor(day, hour),
			Start: start,
			End:   start.Add(hourLen),
		})
		start = start.Add(hourLen)
		hour++
		if hour > c.HoursPerDay() {
			hour = 1
			day++
		}
	}
	return entries
}

// ticksToDuration multiplies before dividing so whole seconds stay exact.
func ticksToDuration(ticks int) time.Duration {
	return time.Duration(ticks) * time.Second / config.TicksPerSecond
}

// Generate returns the iCalendar document and the entries it contains.
func (g *ScheduleGenerator) Generate(ctx context.Context, c ClockReader, count int) ([]byte, []HourEntry, error) {
	start := time.Now()
	log := slog.With(config.LogKeyComponent, config.CompEngine)

	entries := g.Project(c, count)
	if len(entries) == 0 {
		return []byte(config.StubVCalendar), nil, nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(g.Clock.Now().UTC())

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		event := g.createEvent(e)
		event.Props.Set(dtStampProp)
		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	log.Debug(config.MsgGenSuccess,
		config.LogKeyCount, len(entries),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), entries, nil
}

func (g *ScheduleGenerator) createEvent(e HourEntry) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, e.Day, e.Hour, config.ICalDomain))

	summary := fmt.Sprintf(config.FallbackSummary, e.Day, e.Hour, e.Ruler)
	if g.FormatSummary != nil {
		summary = g.FormatSummary(e.Day, e.Hour, e.Ruler)
	}
	event.Props.SetText(config.PropSummary, summary)

	description := e.Ruler.Meaning()
	if g.FormatDescription != nil {
		description = g.FormatDescription(e.Ruler)
	}
	event.Props.SetText(config.PropDescription, description)

	dtStart := ical.NewProp(config.PropDTStart)
	dtStart.SetDateTime(e.Start.UTC())
	event.Props.Set(dtStart)

	dtEnd := ical.NewProp(config.PropDTEnd)
	dtEnd.SetDateTime(e.End.UTC())
	event.Props.Set(dtEnd)

	return event
}
