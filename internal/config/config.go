// Package config persists viewer preferences across runs. Secrets (API keys)
// are environment-only and never written here.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Path is the preferences file location, relative to the working directory.
const Path = "config/studio.json"

// Prefs holds viewer preferences. AI credentials come from the environment,
// not from this file.
type Prefs struct {
	WindowWidth  int    `json:"window_width"`
	WindowHeight int    `json:"window_height"`
	AutoRotate   bool   `json:"auto_rotate"`
	GridVisible  bool   `json:"grid_visible"`
	ShowFPS      bool   `json:"show_fps"`
	AIModel      string `json:"ai_model,omitempty"`
}

// Default returns the default preferences: 1280x800, auto-rotate and grid on.
func Default() Prefs {
	return Prefs{
		WindowWidth:  1280,
		WindowHeight: 800,
		AutoRotate:   true,
		GridVisible:  true,
		ShowFPS:      false,
	}
}

// Load reads preferences from Path. A missing or invalid file yields
// Default() without creating anything.
func Load() Prefs {
	data, err := os.ReadFile(Path)
	if err != nil {
		return Default()
	}
	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return Default()
	}
	if p.WindowWidth <= 0 || p.WindowHeight <= 0 {
		d := Default()
		p.WindowWidth, p.WindowHeight = d.WindowWidth, d.WindowHeight
	}
	return p
}

// Save writes preferences to Path, creating the config directory if needed.
func Save(p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(Path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(Path, data, 0644)
}
