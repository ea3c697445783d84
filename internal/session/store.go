package session

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tartampluch/go-chaldean-clock/internal/config"
	"github.com/tartampluch/go-chaldean-clock/internal/engine"
)

// Save writes the clock snapshot to path as YAML.
func (s *Session) Save(path string) error {
	data, err := yaml.Marshal(s.Clock.Snapshot())
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrStateEncode, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), config.DirPermUserRWX); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStateWrite, err)
	}
	if err := os.WriteFile(path, data, config.FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStateWrite, err)
	}

	slog.Info(config.MsgStateSaved,
		config.LogKeyComponent, config.CompSession,
		config.LogKeyFile, path,
	)
	return nil
}

// Load restores the clock from a snapshot file written by Save.
// Values are clamped on restore; unknown planet labels are skipped and
// reported in the returned error.
func (s *Session) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrStateRead, err)
	}

	var snap engine.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStateParse, err)
	}

	restoreErr := s.Clock.Restore(snap)
	s.RefreshDisplay()

	slog.Info(config.MsgStateLoaded,
		config.LogKeyComponent, config.CompSession,
		config.LogKeyFile, path,
		config.LogKeyDay, s.Clock.CurrentDay(),
		config.LogKeyHour, s.Clock.CurrentHour(),
	)
	return restoreErr
}

// DefaultStatePath returns the snapshot location inside the user config dir.
func DefaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrConfigDir, err)
	}
	return filepath.Join(dir, config.AppID, config.StateFileName), nil
}
