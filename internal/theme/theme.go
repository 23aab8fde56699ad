package theme

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// Mode is the persisted display preference.
type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// CookieName is the key holding the preference on the web surface.
const CookieName = "theme"

var modes = [...]Mode{ModeLight, ModeDark}

var (
	// ErrUnknownMode is returned when a stored value is not "dark" or "light".
	ErrUnknownMode = errors.New("unknown theme mode")
	// ErrNoPreference is returned by a Store when nothing was saved for a subject.
	ErrNoPreference = errors.New("no theme preference stored")
)

// Store persists one mode per subject.
type Store interface {
	LoadMode(ctx context.Context, subject string) (Mode, error)
	SaveMode(ctx context.Context, subject string, mode Mode) error
}

// Palette holds the semantic colors a surface needs for one mode.
//
// Surfaces should depend on these roles rather than mode-specific literals.
type Palette struct {
	Background string
	Surface    string
	Foreground string
	Muted      string
	Border     string
	Accent     string
	AccentText string
	Success    string
	Danger     string
	Control    string
	Icon       string
}

var palettes = map[Mode]Palette{
	ModeLight: {
		Background: "#F9FAFB",
		Surface:    "#FFFFFF",
		Foreground: "#111827",
		Muted:      "#4B5563",
		Border:     "#D1D5DB",
		Accent:     "#2563EB",
		AccentText: "#FFFFFF",
		Success:    "#16A34A",
		Danger:     "#DC2626",
		Control:    "#E5E7EB",
		Icon:       "#374151",
	},
	ModeDark: {
		Background: "#111827",
		Surface:    "#1F2937",
		Foreground: "#FFFFFF",
		Muted:      "#D1D5DB",
		Border:     "#4B5563",
		Accent:     "#2563EB",
		AccentText: "#FFFFFF",
		Success:    "#4ADE80",
		Danger:     "#F87171",
		Control:    "#374151",
		Icon:       "#EAB308",
	},
}

// ParseMode accepts exactly the persisted literals "dark" and "light".
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.TrimSpace(raw)); m {
	case ModeLight, ModeDark:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, raw)
	}
}

// Resolve applies the preference rule: dark when stored as dark, or when
// nothing is stored and the platform prefers dark; light otherwise.
//
// An empty stored value means "absent". Any other unrecognised value counts
// as present-but-not-dark and resolves to light.
func Resolve(stored string, platformDark bool) Mode {
	if strings.TrimSpace(stored) == "" {
		if platformDark {
			return ModeDark
		}
		return ModeLight
	}
	if m, err := ParseMode(stored); err == nil {
		return m
	}
	return ModeLight
}

// ResolveStored loads the subject's preference from store and resolves it.
// Storage failures degrade to the platform preference; the error is returned
// only so callers can log it.
func ResolveStored(ctx context.Context, store Store, subject string, platformDark bool) (Mode, error) {
	if store == nil || subject == "" {
		return Resolve("", platformDark), nil
	}

	stored, err := store.LoadMode(ctx, subject)
	switch {
	case err == nil:
		return Resolve(stored.String(), platformDark), nil
	case errors.Is(err, ErrNoPreference):
		return Resolve("", platformDark), nil
	default:
		return Resolve("", platformDark), fmt.Errorf("load theme for %s: %w", subject, err)
	}
}

// Persist saves mode for subject, logging rather than failing: the caller
// has already switched the display.
func Persist(ctx context.Context, store Store, subject string, mode Mode, logger *log.Logger) {
	if store == nil || subject == "" {
		return
	}
	if err := store.SaveMode(ctx, subject, mode); err != nil && logger != nil {
		logger.Warn("theme_persist_failed", "subject", subject, "mode", mode, "err", err)
	}
}

// Toggle returns the opposite mode.
func (m Mode) Toggle() Mode {
	if m == ModeDark {
		return ModeLight
	}
	return ModeDark
}

// IsDark reports whether m is the dark mode.
func (m Mode) IsDark() bool { return m == ModeDark }

func (m Mode) String() string { return string(m) }

// LogoPath is the static asset path of the logo drawn for m.
func (m Mode) LogoPath() string {
	if m == ModeDark {
		return "/dark-logo.png"
	}
	return "/light-logo.png"
}

// PaletteFor returns a copy of the palette for m. Unknown modes get light.
func PaletteFor(m Mode) Palette {
	if p, ok := palettes[m]; ok {
		return p
	}
	return palettes[ModeLight]
}
