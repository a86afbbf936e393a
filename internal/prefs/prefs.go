// Package prefs persists dexterm user preferences in
// ~/.config/dexterm/prefs.toml. Loading never fails: missing or unreadable
// files yield defaults.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/dexterm/internal/state"
)

// Prefs holds user preferences.
type Prefs struct {
	Theme    string `toml:"theme"`
	Sort     string `toml:"sort"`
	Category string `toml:"category"`
}

const (
	defaultPrefsPath = "~/.config/dexterm/prefs.toml"
	defaultTheme     = "Nightfox"
)

// Default returns the preferences used when nothing is stored.
func Default() Prefs {
	return Prefs{Theme: defaultTheme, Sort: string(state.SortByID), Category: state.AllCategories}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from path, falling back to defaults for anything
// missing or invalid.
func Load(path string) Prefs {
	resolved, err := resolvePath(path)
	if err != nil {
		return Default()
	}
	bytes, err := os.ReadFile(resolved)
	if err != nil {
		return Default()
	}

	var p Prefs
	if err := toml.Unmarshal(bytes, &p); err != nil {
		return Default()
	}
	return p.normalize()
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p.normalize())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

// Query returns the first-page query the preferences start the list with.
func (p Prefs) Query() state.Query {
	p = p.normalize()
	sort, _ := state.ParseSort(p.Sort)
	return state.DefaultQuery().WithCategory(p.Category).WithSort(sort)
}

// Remember copies the sort and category of q into the preferences.
func (p Prefs) Remember(q state.Query) Prefs {
	q = q.Normalize()
	p.Sort = string(q.Sort)
	p.Category = q.Category
	return p
}

func (p Prefs) normalize() Prefs {
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	sort, err := state.ParseSort(p.Sort)
	if err != nil {
		sort = state.SortByID
	}
	p.Sort = string(sort)
	p.Category = strings.ToLower(strings.TrimSpace(p.Category))
	if p.Category == "" {
		p.Category = state.AllCategories
	}
	return p
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
