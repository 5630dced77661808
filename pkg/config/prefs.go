package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// KeyFullMapHeight is the persisted key for the one user-facing preference.
const KeyFullMapHeight = "fullMapHeight"

// PrefStore provides persistence for user preferences. Reads that fail or
// find no value fall back to the caller's default; writes report their error
// so callers can log without blocking on it.
type PrefStore interface {
	// Get retrieves a preference value. ok is false when the key is unset.
	Get(key string) (value interface{}, ok bool, err error)

	// Set stores a preference value and persists it.
	Set(key string, value interface{}) error
}

// FilePrefs implements PrefStore using a JSON file.
type FilePrefs struct {
	path string
	data map[string]interface{}
	mu   sync.RWMutex
}

// NewFilePrefs creates a new file-based preference store.
// If path is empty, defaults to ~/.obsmap/prefs.json
func NewFilePrefs(path string) (*FilePrefs, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".obsmap", "prefs.json")
	}

	store := &FilePrefs{
		path: path,
		data: make(map[string]interface{}),
	}

	// Load existing prefs, but don't fail if the file doesn't exist yet.
	if err := store.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load prefs from %s: %w", path, err)
	}

	return store, nil
}

// Path returns the backing file path.
func (s *FilePrefs) Path() string {
	return s.path
}

func (s *FilePrefs) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]interface{})
			return nil
		}
		return err
	}
	defer file.Close()

	data := make(map[string]interface{})
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		return fmt.Errorf("failed to decode prefs file: %w", err)
	}

	s.data = data
	return nil
}

// save writes the preferences to disk atomically via a temp file.
func (s *FilePrefs) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create prefs directory: %w", err)
	}

	tempPath := s.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp prefs file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.data); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode prefs: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp prefs file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace prefs file: %w", err)
	}

	return nil
}

// Get retrieves a preference value.
func (s *FilePrefs) Get(key string) (interface{}, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	return value, ok, nil
}

// Set stores a preference value and persists it.
func (s *FilePrefs) Set(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// FullMapHeight reads the enhancement toggle from the given store.
// Unset keys, unreadable values, and store errors all default to enabled.
func FullMapHeight(store PrefStore) bool {
	value, ok, err := store.Get(KeyFullMapHeight)
	if err != nil || !ok {
		return true
	}
	enabled, ok := value.(bool)
	if !ok {
		return true
	}
	return enabled
}

// SetFullMapHeight persists the enhancement toggle.
func SetFullMapHeight(store PrefStore, enabled bool) error {
	return store.Set(KeyFullMapHeight, enabled)
}
