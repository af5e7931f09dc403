// Package config persists user settings (recent repositories, window
// geometry, last opened repository) as YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const (
	appName = "gitrepo-go"

	MaxRecentRepos        = 10
	DefaultWindowGeometry = "1200x760"

	keyRecentRepos    = "recent_repos"
	keyWindowGeometry = "window_geometry"
	keyLastRepo       = "last_repo"
)

// Settings is the persisted application state.
type Settings struct {
	RecentRepos    []string `mapstructure:"recent_repos"`
	WindowGeometry string   `mapstructure:"window_geometry"`
	LastRepo       string   `mapstructure:"last_repo"`

	path string
}

// DefaultPath is settings.yaml under the XDG config directory.
func DefaultPath() (string, error) {
	return xdg.ConfigFile(filepath.Join(appName, "settings.yaml"))
}

// Load reads the settings at path. A missing or unreadable file yields
// defaults; the problem is logged and never returned.
func Load(path string) *Settings {
	s := &Settings{WindowGeometry: DefaultWindowGeometry, path: path}
	if path == "" {
		return s
	}

	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("settings unreadable, using defaults", slog.String("path", path), slog.Any("error", err))
		}
		return s
	}
	if err := v.Unmarshal(s); err != nil {
		slog.Warn("settings malformed, using defaults", slog.String("path", path), slog.Any("error", err))
		return &Settings{WindowGeometry: DefaultWindowGeometry, path: path}
	}
	s.RecentRepos = normalizeRecent(s.RecentRepos)
	if s.WindowGeometry == "" {
		s.WindowGeometry = DefaultWindowGeometry
	}
	return s
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault(keyWindowGeometry, DefaultWindowGeometry)
	return v
}

// Path is where Save writes.
func (s *Settings) Path() string { return s.path }

// Save writes the settings back to their file.
func (s *Settings) Save() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	v := newViper(s.path)
	v.Set(keyRecentRepos, s.RecentRepos)
	v.Set(keyWindowGeometry, s.WindowGeometry)
	v.Set(keyLastRepo, s.LastRepo)
	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write settings %s: %w", s.path, err)
	}
	return nil
}

// AddRecent moves path to the front of the recent list and saves.
func (s *Settings) AddRecent(path string) error {
	abs := absPath(path)
	if abs == "" {
		return nil
	}
	s.RecentRepos = normalizeRecent(append([]string{abs}, s.RecentRepos...))
	s.LastRepo = abs
	return s.Save()
}

// RemoveRecent drops path from the recent list and saves.
func (s *Settings) RemoveRecent(path string) error {
	abs := absPath(path)
	s.RecentRepos = slices.DeleteFunc(s.RecentRepos, func(p string) bool { return p == abs || p == path })
	if s.LastRepo == abs {
		s.LastRepo = ""
	}
	return s.Save()
}

// ClearRecent empties the recent list and saves.
func (s *Settings) ClearRecent() error {
	s.RecentRepos = nil
	return s.Save()
}

// SetWindowGeometry records the last window geometry ("WxH+X+Y") and saves.
func (s *Settings) SetWindowGeometry(geometry string) error {
	if geometry == "" || geometry == s.WindowGeometry {
		return nil
	}
	s.WindowGeometry = geometry
	return s.Save()
}

func absPath(p string) string {
	if p == "" {
		return ""
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

// normalizeRecent keeps the first occurrence of each absolute path, most
// recent first, capped at MaxRecentRepos.
func normalizeRecent(paths []string) []string {
	out := make([]string, 0, min(len(paths), MaxRecentRepos))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs := absPath(p)
		if abs == "" || seen[abs] {
			continue
		}
		seen[abs] = true
		out = append(out, abs)
		if len(out) == MaxRecentRepos {
			break
		}
	}
	return out
}
