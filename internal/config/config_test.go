package config_test

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-chaldean-clock/internal/config"
)

// TestConstants_Integrity ensures critical constants are not empty or malformed.
func TestConstants_Integrity(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"AppName", config.AppName},
		{"AppID", config.AppID},
		{"Version", config.Version},
		{"ICalVersion", config.ICalVersion},
		{"ICalProdid", config.ICalProdid},
		{"EnvPrefix", config.EnvPrefix},
		{"UserAgent", config.UserAgent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.value, "Critical constant %s should not be empty", tt.name)
		})
	}
}

// TestUserAgent_Format ensures the UA string follows the standard format.
func TestUserAgent_Format(t *testing.T) {
	assert.True(t, strings.HasPrefix(config.UserAgent, "Go-Chaldean-Clock/"), "UserAgent must start with AppName/")
	assert.True(t, strings.HasSuffix(config.UserAgent, config.Version))
}

// TestDefaults_Sanity checks that default values make sense logically.
func TestDefaults_Sanity(t *testing.T) {
	p := config.DefaultParams()
	assert.Empty(t, p.Normalize(), "Defaults must already be normalized")

	assert.Equal(t, 24, config.ReferenceHoursPerDay, "The Chaldean cycle is defined over a 24 hour day")
	assert.Equal(t, 7, config.PlanetCount)
	assert.Equal(t, 3600, p.TicksPerHour(), "60 frames per second times 60 seconds")
	assert.Equal(t, time.Second/60, config.FrameInterval)
}

func TestNormalize_Clamps(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Params)
		check  func(*testing.T, config.Params)
		field  string
	}{
		{
			name:   "Zero hours per day",
			mutate: func(p *config.Params) { p.HoursPerDay = 0 },
			check:  func(t *testing.T, p config.Params) { assert.Equal(t, 24, p.HoursPerDay) },
			field:  "hours_per_day",
		},
		{
			name:   "Negative seconds per hour",
			mutate: func(p *config.Params) { p.SecondsPerHour = -5 },
			check:  func(t *testing.T, p config.Params) { assert.Equal(t, 60, p.SecondsPerHour) },
			field:  "seconds_per_hour",
		},
		{
			name:   "Seconds per hour overflowing the tick count",
			mutate: func(p *config.Params) { p.SecondsPerHour = math.MaxInt / 30 },
			check:  func(t *testing.T, p config.Params) { assert.Equal(t, config.MaxSecondsPerHour, p.SecondsPerHour) },
			field:  "seconds_per_hour",
		},
		{
			name:   "Hours per day too long",
			mutate: func(p *config.Params) { p.HoursPerDay = math.MaxInt },
			check:  func(t *testing.T, p config.Params) { assert.Equal(t, config.MaxHoursPerDay, p.HoursPerDay) },
			field:  "hours_per_day",
		},
		{
			name:   "Starting day too far",
			mutate: func(p *config.Params) { p.StartingDay = math.MaxInt },
			check:  func(t *testing.T, p config.Params) { assert.Equal(t, config.MaxDay, p.StartingDay) },
			field:  "starting_day",
		},
		{
			name:   "Starting hour above day length",
			mutate: func(p *config.Params) { p.HoursPerDay = 10; p.StartingHour = 12 },
			check:  func(t *testing.T, p config.Params) { assert.Equal(t, 10, p.StartingHour) },
			field:  "starting_hour",
		},
		{
			name:   "Starting hour zero",
			mutate: func(p *config.Params) { p.StartingHour = 0 },
			check:  func(t *testing.T, p config.Params) { assert.Equal(t, 1, p.StartingHour) },
			field:  "starting_hour",
		},
		{
			name:   "Starting day zero",
			mutate: func(p *config.Params) { p.StartingDay = 0 },
			check:  func(t *testing.T, p config.Params) { assert.Equal(t, 1, p.StartingDay) },
			field:  "starting_day",
		},
		{
			name:   "Negative display position",
			mutate: func(p *config.Params) { p.DisplayX = -1 },
			check:  func(t *testing.T, p config.Params) { assert.Equal(t, 0, p.DisplayX) },
			field:  "display_x",
		},
		{
			name:   "Unsupported language",
			mutate: func(p *config.Params) { p.Language = "xx" },
			check:  func(t *testing.T, p config.Params) { assert.Equal(t, "en", p.Language) },
			field:  "language",
		},
		{
			name:   "Port out of range",
			mutate: func(p *config.Params) { p.ServerPort = "70000" },
			check:  func(t *testing.T, p config.Params) { assert.Equal(t, config.DefaultPort, p.ServerPort) },
			field:  "server_port",
		},
		{
			name:   "Schedule too long",
			mutate: func(p *config.Params) { p.ScheduleHours = 1000 },
			check:  func(t *testing.T, p config.Params) { assert.Equal(t, config.MaxScheduleHours, p.ScheduleHours) },
			field:  "schedule_hours",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := config.DefaultParams()
			tt.mutate(&p)

			adj := p.Normalize()

			require.Len(t, adj, 1)
			assert.Equal(t, tt.field, adj[0].Field)
			tt.check(t, p)
		})
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	p, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.NoError(t, err)
	assert.Equal(t, config.DefaultParams(), p)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	content := "starting_hour: 5\nstarting_day: 3\nhours_per_day: 12\nshow_display: false\nseconds_per_hour: 2\nlanguage: fr\n"
	require.NoError(t, os.WriteFile(path, []byte(content), config.FilePermUserRW))

	p, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, 5, p.StartingHour)
	assert.Equal(t, 3, p.StartingDay)
	assert.Equal(t, 12, p.HoursPerDay)
	assert.False(t, p.ShowDisplay)
	assert.Equal(t, 2, p.SecondsPerHour)
	assert.Equal(t, "fr", p.Language)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, config.DefaultPort, p.ServerPort)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("starting_hour: 5\n"), config.FilePermUserRW))

	t.Setenv("CHALDEAN_STARTING_HOUR", "9")
	t.Setenv("CHALDEAN_SHOW_DISPLAY", "false")

	p, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9, p.StartingHour)
	assert.False(t, p.ShowDisplay)
}

func TestLoad_InvalidValuesDegradeToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("hours_per_day: -3\nstarting_hour: 40\n"), config.FilePermUserRW))

	p, err := config.Load(path)

	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidConfigurationValue)
	assert.Contains(t, err.Error(), "hours_per_day: "+config.ErrConfigOutOfRange)
	assert.Equal(t, 24, p.HoursPerDay)
	assert.Equal(t, 24, p.StartingHour)
}

func TestLoad_HugeSecondsPerHourIsCapped(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	content := "seconds_per_hour: " + strconv.Itoa(math.MaxInt/30) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), config.FilePermUserRW))

	p, err := config.Load(path)

	assert.ErrorIs(t, err, config.ErrInvalidConfigurationValue)
	assert.Equal(t, config.MaxSecondsPerHour, p.SecondsPerHour)
	assert.Equal(t, config.TicksPerSecond*config.MaxSecondsPerHour, p.TicksPerHour())
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("starting_hour: [not, a, number\n"), config.FilePermUserRW))

	p, err := config.Load(path)

	assert.ErrorIs(t, err, config.ErrInvalidConfigurationValue)
	assert.Contains(t, err.Error(), config.ErrConfigParse)
	assert.Equal(t, config.DefaultParams(), p)
}

func TestLoad_MalformedEnvIgnored(t *testing.T) {
	t.Setenv("CHALDEAN_SECONDS_PER_HOUR", "fast")

	p, err := config.Load("")

	assert.ErrorIs(t, err, config.ErrInvalidConfigurationValue)
	assert.Equal(t, config.DefaultSecondsPerHour, p.SecondsPerHour)
}
