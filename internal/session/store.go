// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is a small durable string-to-string store, the client-side analogue
// of the browser's local storage. Exactly two keys are in use: the session
// credential and the serialized current-user snapshot.
//
// Writes are persisted immediately; a broken or missing state file is
// indistinguishable from an empty store.
type Store struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// OpenStore loads (or lazily creates) the state file at path.
func OpenStore(path string) (*Store, error) {
	store := &Store{path: path, values: map[string]string{}}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read state file %s: %w", path, err)
	}
	// A corrupt state file means "logged out", never a startup failure.
	if jsonErr := json.Unmarshal(raw, &store.values); jsonErr != nil {
		store.values = map[string]string{}
	}
	return store, nil
}

// Get returns the stored value for key, empty when absent.
func (s *Store) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// Set stores value under key and persists the file.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.flushLocked()
}

// Delete removes key and persists the file. Deleting an absent key is a
// no-op.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	raw, err := json.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("session: encode state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session: create state dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("session: write state file: %w", err)
	}
	return nil
}
