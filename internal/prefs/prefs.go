// Package prefs persists local client preferences across runs in an embedded
// Pebble database: the theme choice and the last visited route.
package prefs

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Theme values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

var (
	keyTheme     = []byte("pref:theme")
	keyLastRoute = []byte("pref:lastRoute")
)

// Store is the durable preference store. Pebble serializes access
// internally, so a Store may be shared across goroutines.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) the preference database at path.
func Open(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open prefs db at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(key []byte) (string, error) {
	value, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	out := string(value)
	closer.Close()
	return out, nil
}

func (s *Store) set(key []byte, value string) error {
	return s.db.Set(key, []byte(value), pebble.Sync)
}

// Theme returns the persisted theme, defaulting to light when never set or
// unreadable.
func (s *Store) Theme() string {
	v, err := s.get(keyTheme)
	if err != nil || (v != ThemeLight && v != ThemeDark) {
		return ThemeLight
	}
	return v
}

// SetTheme persists the theme choice. Only light and dark are accepted.
func (s *Store) SetTheme(theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("unknown theme %q", theme)
	}
	return s.set(keyTheme, theme)
}

// ToggleTheme flips between light and dark and returns the new value.
func (s *Store) ToggleTheme() (string, error) {
	next := ThemeDark
	if s.Theme() == ThemeDark {
		next = ThemeLight
	}
	if err := s.set(keyTheme, next); err != nil {
		return "", err
	}
	return next, nil
}

// LastRoute returns the last visited route, or empty when never recorded.
// The login flow uses it to send the user back where they were.
func (s *Store) LastRoute() string {
	v, err := s.get(keyLastRoute)
	if err != nil {
		return ""
	}
	return v
}

// SetLastRoute records the route the user is on.
func (s *Store) SetLastRoute(route string) error {
	return s.set(keyLastRoute, route)
}
