package gui

import (
	"log/slog"
	"strings"

	darkmode "github.com/thiagokokada/dark-mode-go"
)

type ThemePreference int

const (
	ThemeAuto ThemePreference = iota
	ThemeLight
	ThemeDark
)

func (p ThemePreference) String() string {
	switch p {
	case ThemeLight:
		return "light"
	case ThemeDark:
		return "dark"
	default:
		return "auto"
	}
}

type colorPalette struct {
	ThemeName string
	LogError  string
	LogWarn   string
	LogHint   string
	LogInfo   string
	LogHeader string
	Current   string
}

var (
	lightPalette = colorPalette{
		ThemeName: "azure light",
		LogError:  "#b3261e",
		LogWarn:   "#9a6700",
		LogHint:   "#0969da",
		LogInfo:   "#57606a",
		LogHeader: "#1f2328",
		Current:   "#dff5de",
	}
	darkPalette = colorPalette{
		ThemeName: "azure dark",
		LogError:  "#ff7b72",
		LogWarn:   "#d29922",
		LogHint:   "#79c0ff",
		LogInfo:   "#8b949e",
		LogHeader: "#e6edf3",
		Current:   "#1f3d2b",
	}
	detectDarkMode = darkmode.IsDarkMode
)

func ThemePreferenceFromString(raw string) ThemePreference {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ThemeDark.String():
		return ThemeDark
	case ThemeLight.String():
		return ThemeLight
	default:
		return ThemeAuto
	}
}

func paletteForPreference(pref ThemePreference) colorPalette {
	switch pref {
	case ThemeDark:
		return darkPalette
	case ThemeLight:
		return lightPalette
	default:
		if detectDarkMode != nil {
			dark, err := detectDarkMode()
			if err != nil {
				slog.Debug("detect dark-mode", slog.Any("error", err))
			} else if dark {
				return darkPalette
			}
		}
		return lightPalette
	}
}

func (p colorPalette) isDark() bool {
	return strings.Contains(strings.ToLower(p.ThemeName), "dark")
}
