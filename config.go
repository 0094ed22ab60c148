package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
)

//go:embed ptzctrl.default.json
var defaultConfigJSON []byte

// Config holds all ptzctrl configuration
type Config struct {
	Addr      string       `json:"addr"`
	Accent    string       `json:"accent"`
	Reconnect bool         `json:"reconnect"`
	Keys      KeyMapConfig `json:"keys"`
}

// KeyMapConfig defines key bindings in config file format
type KeyMapConfig struct {
	Activate         []string `json:"activate"`
	ModeRecall       []string `json:"mode_recall"`
	ModeSet          []string `json:"mode_set"`
	ModeLabel        []string `json:"mode_label"`
	ToggleProtection []string `json:"toggle_protection"`
	CommandPalette   []string `json:"command_palette"`
	ToggleDebug      []string `json:"toggle_debug"`
	ShowKeys         []string `json:"show_keys"`
	CyclePane        []string `json:"cycle_pane"`
	ClosePane        []string `json:"close_pane"`
	Quit             []string `json:"quit"`

	Save       []string `json:"save"`
	SaveAndSet []string `json:"save_and_set"`

	Up    []string `json:"up"`
	Down  []string `json:"down"`
	Left  []string `json:"left"`
	Right []string `json:"right"`
}

// DefaultConfig returns the embedded configuration.
func DefaultConfig() Config {
	var cfg Config
	if err := json.Unmarshal(defaultConfigJSON, &cfg); err != nil {
		panic("embedded default config is invalid: " + err.Error())
	}
	return cfg
}

// LoadConfig reads path if given, otherwise the first config file found in
// the search path. Keys missing from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	if path != "" {
		return loadConfigFile(path)
	}
	paths := []string{
		"ptzctrl.json",
		filepath.Join(os.Getenv("HOME"), ".config", "ptzctrl", "ptzctrl.json"),
	}
	for _, p := range paths {
		if cfg, err := loadConfigFile(p); err == nil {
			return cfg, nil
		}
	}
	return DefaultConfig(), nil
}

func loadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ToKeyMap converts config to KeyMap
func (c *Config) ToKeyMap() KeyMap {
	return KeyMap{
		Activate:         binding(c.Keys.Activate, "activate"),
		ModeRecall:       binding(c.Keys.ModeRecall, "recall mode"),
		ModeSet:          binding(c.Keys.ModeSet, "set mode"),
		ModeLabel:        binding(c.Keys.ModeLabel, "label mode"),
		ToggleProtection: binding(c.Keys.ToggleProtection, "on-air protection"),
		CommandPalette:   binding(c.Keys.CommandPalette, "commands"),
		ToggleDebug:      binding(c.Keys.ToggleDebug, "debug"),
		ShowKeys:         binding(c.Keys.ShowKeys, "keys"),
		CyclePane:        binding(c.Keys.CyclePane, "cycle pane"),
		ClosePane:        binding(c.Keys.ClosePane, "close pane"),
		Quit:             binding(c.Keys.Quit, "quit"),
		Save:             binding(c.Keys.Save, "save"),
		SaveAndSet:       binding(c.Keys.SaveAndSet, "save + set"),
		Up:               binding(c.Keys.Up, "up"),
		Down:             binding(c.Keys.Down, "down"),
		Left:             binding(c.Keys.Left, "left"),
		Right:            binding(c.Keys.Right, "right"),
	}
}

// binding creates a key binding, returning a disabled binding if keys is empty
func binding(keys []string, help string) key.Binding {
	if len(keys) == 0 {
		return key.NewBinding(key.WithDisabled())
	}
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(keyLabel(keys[0]), help),
	)
}

func keyLabel(k string) string {
	switch k {
	case " ":
		return "space"
	case "up":
		return "↑"
	case "down":
		return "↓"
	case "left":
		return "←"
	case "right":
		return "→"
	}
	return k
}
