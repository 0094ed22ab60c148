// Package prefs persists small client-side display preferences in a YAML
// file. Values are read once when the store is opened and written through
// on every Set.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// KeyProtection holds the on-air change protection toggle.
const KeyProtection = "on_air_change_protection"

const (
	On  = "on"
	Off = "off"
)

// Store is a flat string map backed by a file.
type Store struct {
	path   string
	values map[string]string
	log    *zap.Logger
}

// DefaultPath returns $XDG_CONFIG_HOME/ptzctrl/prefs.yaml, falling back to
// ~/.config/ptzctrl/prefs.yaml.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "ptzctrl", "prefs.yaml")
}

// Open loads the file at path. A missing file is an empty store.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{path: path, values: map[string]string{}, log: log}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read prefs: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("parse prefs %s: %w", path, err)
	}
	if s.values == nil {
		s.values = map[string]string{}
	}
	return s, nil
}

// Get returns the stored value for key, or def when unset.
func (s *Store) Get(key, def string) string {
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// Set stores value under key and rewrites the file.
func (s *Store) Set(key, value string) error {
	prev, had := s.values[key]
	s.values[key] = value
	if err := s.save(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

// Protected reports the on-air change protection flag. Anything other than
// "on" or "off" in the file reads as off.
func (s *Store) Protected() bool {
	switch v := s.Get(KeyProtection, Off); v {
	case On:
		return true
	case Off:
		return false
	default:
		s.log.Warn("invalid stored toggle, using off", zap.String("key", KeyProtection), zap.String("value", v))
		return false
	}
}

// SetProtected persists the on-air change protection flag.
func (s *Store) SetProtected(on bool) error {
	v := Off
	if on {
		v = On
	}
	return s.Set(KeyProtection, v)
}
