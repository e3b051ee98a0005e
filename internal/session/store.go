// ABOUTME: File-backed persistence for the credential session and cookie jar
// ABOUTME: Stores session.json in the XDG config directory with 0600 permissions

package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

const stateFileName = "session.json"

// StoreError reports a failed load, save or delete of the state file.
type StoreError struct {
	Op   string // "load", "save", "delete"
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return e.Op + " session " + e.Path + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// state is the on-disk shape, keyed by API base URL so that switching
// --api-url does not leak a token to a different backend.
type state struct {
	Profiles map[string]profile `json:"profiles"`
}

type profile struct {
	Snapshot
	Cookies []StoredCookie `json:"cookies,omitempty"`
}

// Store reads and writes session state under a config directory.
type Store struct {
	configDir string
}

// NewStore creates a store rooted at configDir. An empty configDir
// disables persistence.
func NewStore(configDir string) *Store {
	return &Store{configDir: configDir}
}

// DefaultConfigDir returns the default config directory following the XDG base directory layout
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "board")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "board")
}

// Dir returns the config directory.
func (s *Store) Dir() string {
	return s.configDir
}

func (s *Store) path() string {
	return filepath.Join(s.configDir, stateFileName)
}

// Load restores the session and cookies saved for baseURL into sess and jar.
// A missing or corrupt file yields an empty session, not an error.
func (s *Store) Load(baseURL string, sess *Session, jar *Jar) error {
	if s.configDir == "" {
		return nil
	}

	st, err := s.read()
	if err != nil {
		return err
	}

	p, ok := st.Profiles[baseURL]
	if !ok {
		return nil
	}
	sess.Set(p.AccessToken, p.User)
	if jar != nil {
		jar.Import(p.Cookies)
	}
	return nil
}

// Save writes the session and cookies for baseURL, keeping other profiles.
func (s *Store) Save(baseURL string, sess *Session, jar *Jar) error {
	if s.configDir == "" {
		return nil
	}

	st, err := s.read()
	if err != nil {
		return err
	}

	p := profile{Snapshot: sess.Snapshot()}
	if jar != nil {
		p.Cookies = jar.Export()
	}
	if p.AccessToken == "" && p.User == nil && len(p.Cookies) == 0 {
		delete(st.Profiles, baseURL)
	} else {
		st.Profiles[baseURL] = p
	}

	if err := os.MkdirAll(s.configDir, 0700); err != nil {
		return &StoreError{Op: "save", Path: s.path(), Err: err}
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return &StoreError{Op: "save", Path: s.path(), Err: err}
	}

	// Write to a temp file first so a crash never leaves a truncated file
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return &StoreError{Op: "save", Path: s.path(), Err: err}
	}
	if err := os.Rename(tmp, s.path()); err != nil {
		return &StoreError{Op: "save", Path: s.path(), Err: err}
	}
	return nil
}

// Delete removes the state file entirely.
func (s *Store) Delete() error {
	if s.configDir == "" {
		return nil
	}
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StoreError{Op: "delete", Path: s.path(), Err: err}
	}
	return nil
}

func (s *Store) read() (*state, error) {
	st := &state{Profiles: make(map[string]profile)}

	data, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return nil, &StoreError{Op: "load", Path: s.path(), Err: err}
	}

	if err := json.Unmarshal(data, st); err != nil {
		// Invalid JSON, start fresh
		return &state{Profiles: make(map[string]profile)}, nil
	}
	if st.Profiles == nil {
		st.Profiles = make(map[string]profile)
	}
	return st, nil
}
