// Package settings persists the application's key/value state as a single
// JSON object on disk. Every mutation is flushed before it returns.
package settings

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"weatherwall/log"
)

// Keys used by the application. Unknown keys in the file are kept as-is.
const (
	KeyMapboxToken = "mapbox-access-token"
	KeyPollenKey   = "google-pollen-api-key"
	KeyLastLat     = "last_lat"
	KeyLastLon     = "last_lon"
)

const (
	appDirName = "WeatherWallpaper"
	fileName   = "settings.json"
)

// Store is the in-memory mapping plus the file it is flushed to.
type Store struct {
	path   string
	mu     sync.Mutex
	values map[string]any
}

// Load reads path once. A missing directory, missing file or corrupt JSON all
// yield an empty mapping.
func Load(path string) *Store {
	s := &Store{path: path, values: map[string]any{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("settings: read %s: %v", path, err)
		}
		return s
	}
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		log.Warnf("settings: %s is corrupt, starting empty: %v", path, err)
		return s
	}
	if values != nil {
		s.values = values
	}
	return s
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Get returns the stored value or def when the key is absent.
func (s *Store) Get(key string, def any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	return ok
}

// String returns the value for key if it is a string, else def.
func (s *Store) String(key, def string) string {
	if v, ok := s.Get(key, nil).(string); ok {
		return v
	}
	return def
}

// Float returns the numeric value for key. JSON numbers and numeric strings
// are accepted; anything else reports false.
func (s *Store) Float(key string) (float64, bool) {
	switch v := s.Get(key, nil).(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

// Set stores value under key and writes the whole mapping to disk.
func (s *Store) Set(key string, value any) error {
	return s.SetMany(map[string]any{key: value})
}

// SetMany applies all pairs and flushes once.
func (s *Store) SetMany(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	maps.Copy(s.values, values)
	return s.save()
}

// Snapshot returns a copy of the current mapping.
func (s *Store) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.values)
}

// save must be called with mu held. The file is replaced by rename, so a
// failed write leaves the previous contents in place.
func (s *Store) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	tmp, err := os.CreateTemp(dir, fileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
