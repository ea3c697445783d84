package engine_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-chaldean-clock/internal/config"
	"github.com/tartampluch/go-chaldean-clock/internal/engine"
)

// MockClock controls wall time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

func TestProject_AnchorsCurrentHourOnWallClock(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	c := newClock(t, func(p *config.Params) { p.StartingHour = 23 }, nil)
	// 30 of 60 ticks elapsed: the current hour started half a second ago.
	for range 30 {
		c.Tick()
	}

	gen := &engine.ScheduleGenerator{Clock: MockClock{CurrentTime: now}}
	entries := gen.Project(c, 3)

	require.Len(t, entries, 3)
	assert.Equal(t, now.Add(-500*time.Millisecond), entries[0].Start)
	assert.Equal(t, now.Add(500*time.Millisecond), entries[0].End)
	assert.Equal(t, entries[0].End, entries[1].Start)

	assert.Equal(t, engine.HourEntry{Day: 1, Hour: 23, Ruler: engine.RulerFor(1, 23), Start: entries[0].Start, End: entries[0].End}, entries[0])
	assert.Equal(t, 24, entries[1].Hour)
	assert.Equal(t, 2, entries[2].Day, "projection rolls over to the next day")
	assert.Equal(t, 1, entries[2].Hour)
	assert.Equal(t, engine.Sun, entries[2].Ruler)
}

func TestProject_PausedClockHasNoHours(t *testing.T) {
	c := newClock(t, nil, nil)
	c.Pause()

	gen := &engine.ScheduleGenerator{Clock: MockClock{CurrentTime: time.Now()}}

	assert.Empty(t, gen.Project(c, 10))
}

func TestGenerate_ICSContent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := config.DefaultParams() // 60 seconds per hour
	c := engine.NewClockState(p, nil, nil)

	gen := &engine.ScheduleGenerator{Clock: MockClock{CurrentTime: now}}
	ics, entries, err := gen.Generate(context.Background(), c, 8)

	require.NoError(t, err)
	require.Len(t, entries, 8)

	icsStr := string(ics)
	assert.Contains(t, icsStr, "BEGIN:VCALENDAR")
	assert.Contains(t, icsStr, "PRODID:"+config.ICalProdid)
	assert.Equal(t, 8, strings.Count(icsStr, "BEGIN:VEVENT"))
	assert.Contains(t, icsStr, "SUMMARY:Day 1\\, Hour 1: Saturn")
	assert.Contains(t, icsStr, "SUMMARY:Day 1\\, Hour 8: Saturn", "cycle restarts on the eighth hour")
	assert.Contains(t, icsStr, "DTSTART:20250601T120000Z")
	assert.Contains(t, icsStr, "DTSTART:20250601T120100Z", "one game hour lasts one real minute")
	assert.Contains(t, icsStr, fmt.Sprintf("UID:"+config.FormatUID, 1, 3, config.ICalDomain))
}

func TestGenerate_LocalizedFormatters(t *testing.T) {
	c := engine.NewClockState(config.DefaultParams(), nil, nil)
	gen := &engine.ScheduleGenerator{
		Clock: MockClock{CurrentTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		FormatSummary: func(day, hour int, ruler engine.Planet) string {
			return fmt.Sprintf("Jour %d Heure %d %s", day, hour, ruler)
		},
		FormatDescription: func(ruler engine.Planet) string {
			return "influence " + ruler.Key()
		},
	}

	ics, _, err := gen.Generate(context.Background(), c, 1)

	require.NoError(t, err)
	assert.Contains(t, string(ics), "SUMMARY:Jour 1 Heure 1 Saturn")
	assert.Contains(t, string(ics), "DESCRIPTION:influence saturn")
}

func TestGenerate_PausedReturnsStub(t *testing.T) {
	c := newClock(t, nil, nil)
	c.Pause()

	gen := &engine.ScheduleGenerator{Clock: MockClock{CurrentTime: time.Now()}}
	ics, entries, err := gen.Generate(context.Background(), c, 5)

	require.NoError(t, err)
	assert.Nil(t, entries)
	assert.Equal(t, config.StubVCalendar, string(ics))
}

func TestGenerate_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newClock(t, nil, nil)
	gen := &engine.ScheduleGenerator{Clock: MockClock{CurrentTime: time.Now()}}

	_, _, err := gen.Generate(ctx, c, 5)

	assert.Equal(t, context.Canceled, err, "Should return context canceled error")
}
