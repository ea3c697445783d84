package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfigurationValue marks parameters that were malformed or out of
// range. Load never fails on it: offending fields fall back to defaults.
var ErrInvalidConfigurationValue = errors.New(ErrInvalidConfiguration)

// Params holds the values recognized when a clock session is initialized.
// Each field can come from the YAML file and be overridden by a CHALDEAN_*
// environment variable.
type Params struct {
	StartingHour   int    `yaml:"starting_hour" env:"STARTING_HOUR"`
	StartingDay    int    `yaml:"starting_day" env:"STARTING_DAY"`
	HoursPerDay    int    `yaml:"hours_per_day" env:"HOURS_PER_DAY"`
	ShowDisplay    bool   `yaml:"show_display" env:"SHOW_DISPLAY"`
	SecondsPerHour int    `yaml:"seconds_per_hour" env:"SECONDS_PER_HOUR"`
	DisplayX       int    `yaml:"display_x" env:"DISPLAY_X"`
	DisplayY       int    `yaml:"display_y" env:"DISPLAY_Y"`
	Language       string `yaml:"language" env:"LANGUAGE"`
	ServerPort     string `yaml:"server_port" env:"SERVER_PORT"`
	ScheduleHours  int    `yaml:"schedule_hours" env:"SCHEDULE_HOURS"`
}

// Adjustment records a field that Normalize replaced.
type Adjustment struct {
	Field string
	Old   any
	New   any
}

// DefaultParams returns the values used when nothing is configured.
func DefaultParams() Params {
	return Params{
		StartingHour:   DefaultStartingHour,
		StartingDay:    DefaultStartingDay,
		HoursPerDay:    DefaultHoursPerDay,
		ShowDisplay:    DefaultShowDisplay,
		SecondsPerHour: DefaultSecondsPerHour,
		DisplayX:       DefaultDisplayX,
		DisplayY:       DefaultDisplayY,
		Language:       DefaultLanguage,
		ServerPort:     DefaultPort,
		ScheduleHours:  DefaultScheduleHours,
	}
}

// TicksPerHour is the number of frames that make one in-game hour.
func (p Params) TicksPerHour() int {
	return TicksPerSecond * p.SecondsPerHour
}

// Normalize clamps every field into its valid range and reports what changed.
// HoursPerDay is fixed first because StartingHour is bounded by it.
func (p *Params) Normalize() []Adjustment {
	var adj []Adjustment
	fix := func(field string, old, repl any) {
		adj = append(adj, Adjustment{Field: field, Old: old, New: repl})
	}

	if p.HoursPerDay < 1 {
		fix("hours_per_day", p.HoursPerDay, DefaultHoursPerDay)
		p.HoursPerDay = DefaultHoursPerDay
	} else if p.HoursPerDay > MaxHoursPerDay {
		fix("hours_per_day", p.HoursPerDay, MaxHoursPerDay)
		p.HoursPerDay = MaxHoursPerDay
	}
	if p.SecondsPerHour < 1 {
		fix("seconds_per_hour", p.SecondsPerHour, DefaultSecondsPerHour)
		p.SecondsPerHour = DefaultSecondsPerHour
	} else if p.SecondsPerHour > MaxSecondsPerHour {
		fix("seconds_per_hour", p.SecondsPerHour, MaxSecondsPerHour)
		p.SecondsPerHour = MaxSecondsPerHour
	}
	if p.StartingHour < 1 {
		fix("starting_hour", p.StartingHour, 1)
		p.StartingHour = 1
	} else if p.StartingHour > p.HoursPerDay {
		fix("starting_hour", p.StartingHour, p.HoursPerDay)
		p.StartingHour = p.HoursPerDay
	}
	if p.StartingDay < 1 {
		fix("starting_day", p.StartingDay, DefaultStartingDay)
		p.StartingDay = DefaultStartingDay
	} else if p.StartingDay > MaxDay {
		fix("starting_day", p.StartingDay, MaxDay)
		p.StartingDay = MaxDay
	}
	if p.DisplayX < 0 {
		fix("display_x", p.DisplayX, 0)
		p.DisplayX = 0
	}
	if p.DisplayY < 0 {
		fix("display_y", p.DisplayY, 0)
		p.DisplayY = 0
	}
	if !slices.Contains(SupportedLanguages, p.Language) {
		fix("language", p.Language, DefaultLanguage)
		p.Language = DefaultLanguage
	}
	if port, err := strconv.Atoi(p.ServerPort); err != nil || port < MinPort || port > MaxPort {
		fix("server_port", p.ServerPort, DefaultPort)
		p.ServerPort = DefaultPort
	}
	if p.ScheduleHours < 1 {
		fix("schedule_hours", p.ScheduleHours, DefaultScheduleHours)
		p.ScheduleHours = DefaultScheduleHours
	} else if p.ScheduleHours > MaxScheduleHours {
		fix("schedule_hours", p.ScheduleHours, MaxScheduleHours)
		p.ScheduleHours = MaxScheduleHours
	}
	return adj
}

// Load reads Params from the YAML file at path (a missing file is not an
// error), applies environment overrides and normalizes the result.
// The returned Params are always usable. The error, when non-nil, describes
// what was ignored or replaced and wraps ErrInvalidConfigurationValue.
func Load(path string) (Params, error) {
	log := slog.With(LogKeyComponent, CompConfig, LogKeyFile, path)
	p := DefaultParams()
	var problems []error

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Debug(MsgConfigMissing)
		case err != nil:
			problems = append(problems, fmt.Errorf("%s: %w", ErrConfigRead, err))
		default:
			fromFile := DefaultParams()
			if err := yaml.Unmarshal(data, &fromFile); err != nil {
				problems = append(problems, fmt.Errorf("%s: %w", ErrConfigParse, err))
			} else {
				p = fromFile
			}
		}
	}

	withEnv := p
	if err := env.ParseWithOptions(&withEnv, env.Options{Prefix: EnvPrefix}); err != nil {
		problems = append(problems, fmt.Errorf("%s: %w", ErrConfigEnv, err))
	} else {
		p = withEnv
	}

	for _, a := range p.Normalize() {
		log.Warn(MsgConfigAdjusted,
			LogKeyField, a.Field,
			LogKeyOld, a.Old,
			LogKeyNew, a.New,
		)
		problems = append(problems, fmt.Errorf("%s: %s", a.Field, ErrConfigOutOfRange))
	}

	log.Info(MsgConfigLoaded,
		LogKeyCount, len(problems),
	)

	if len(problems) > 0 {
		return p, fmt.Errorf("%w: %w", ErrInvalidConfigurationValue, errors.Join(problems...))
	}
	return p, nil
}

// DefaultConfigPath returns the config file location inside the user config dir.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrConfigDir, err)
	}
	return filepath.Join(dir, AppID, ConfigFileName), nil
}
