// Package state persists the availability baseline between runs as a small
// JSON file. The file is read once at run start and replaced wholesale
// after a successful fetch; it is never mutated on a failed one.
//
// Concurrent invocations sharing one state file are unsafe (read-modify-
// write race). The intended deployment is a single scheduled run at a time,
// so no file locking is used.
package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	domain "ticketwatch/pkg/types"
)

// State is the persisted baseline from the last successful fetch.
type State struct {
	// LastChecked is the ISO-8601 time of the last successful fetch,
	// empty on first run.
	LastChecked string `json:"last_checked,omitempty"`
	// AvailableIDs is the canonical sorted set of available slot ids
	// (calendar mode).
	AvailableIDs []string `json:"last_available_ids"`
	// PageFlag is the last page classification (page mode).
	PageFlag domain.Flag `json:"last_page_flag,omitempty"`
}

// Default returns the first-run state: nothing checked, nothing available,
// page classification unknown.
func Default() State {
	return State{
		AvailableIDs: []string{},
		PageFlag:     domain.FlagUnknown,
	}
}

// Store reads and writes the state file.
type Store struct {
	path string
	log  *slog.Logger
}

// NewStore creates a Store for the given file path.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		path: path,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		s.log = l
	}
}

// Load reads the persisted state. A missing, unreadable, or corrupt file is
// treated as a first run, never as a fatal error; missing fields fall back
// to their first-run defaults so older state files keep loading.
func (s *Store) Load() State {
	st := Default()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("state file unreadable, starting from defaults", "path", s.path, "error", err)
		}
		return st
	}

	if err := json.Unmarshal(data, &st); err != nil {
		s.log.Warn("state file corrupt, starting from defaults", "path", s.path, "error", err)
		return Default()
	}

	if st.AvailableIDs == nil {
		st.AvailableIDs = []string{}
	}
	st.PageFlag = domain.ParseFlag(string(st.PageFlag))

	return st
}

// Save replaces the state file with st. The write goes through a temp file
// and rename so a crash mid-write cannot leave a truncated state file.
func (s *Store) Save(st State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp state file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing state file: %w", err)
	}

	s.log.Info("state saved", "path", s.path, "available", len(st.AvailableIDs))
	return nil
}
