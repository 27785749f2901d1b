// Package keyfile persists the explorer API key in a JSON config file under
// the user's home directory. The file is created with owner-only permissions
// and rewritten atomically, and unknown fields written by other tools or
// future versions survive a round trip.
package keyfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName  = ".tornadoview"
	configFileName = "config.json"

	dirMode  = 0o700
	fileMode = 0o600
)

// ErrNotFound is returned when no API key has been stored yet.
var ErrNotFound = errors.New("api key not found")

// Store reads and writes the API key config file.
type Store struct {
	path string
}

// DefaultPath returns the standard config file location under the user's
// home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// New creates a store backed by the config file at the given path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the config file location the store operates on.
func (s *Store) Path() string {
	return s.path
}

// Get returns the stored API key. ErrNotFound is returned when the file does
// not exist or holds no key.
func (s *Store) Get() (string, error) {
	cfg, err := s.read()
	if err != nil {
		return "", err
	}

	key, _ := cfg["api_key"].(string)
	if key == "" {
		return "", ErrNotFound
	}
	return key, nil
}

// Set stores the API key, creating the config directory on first use and
// preserving any other fields already present in the file.
func (s *Store) Set(key string) error {
	cfg, err := s.read()
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if cfg == nil {
		cfg = map[string]any{}
	}

	cfg["api_key"] = key
	return s.write(cfg)
}

// Delete removes the stored API key, keeping other fields intact. Deleting a
// key that was never stored is not an error.
func (s *Store) Delete() error {
	cfg, err := s.read()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	if _, ok := cfg["api_key"]; !ok {
		return nil
	}
	delete(cfg, "api_key")
	return s.write(cfg)
}

// read loads the config file. A missing file maps to ErrNotFound.
func (s *Store) read() (map[string]any, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg map[string]any
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", s.path, err)
	}
	return cfg, nil
}

// write replaces the config file atomically with owner-only permissions.
func (s *Store) write(cfg map[string]any) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, configFileName+".*")
	if err != nil {
		return fmt.Errorf("creating temp config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("restricting config file permissions: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("writing config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing config file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing config file: %w", err)
	}
	return nil
}
