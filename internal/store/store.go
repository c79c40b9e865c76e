// Package store wraps an embedded BadgerDB database holding the small
// amount of state that must survive restarts: the session token, the
// first-launch flag, and the in-progress bill-creation draft.
package store

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
)

const (
	keyAuthToken = "auth-token"
	keyLaunched  = "launched"
	keyBillDraft = "bill-draft"
)

// Store is a synchronous key-value store over BadgerDB. Safe for concurrent
// use. Device-storage corruption is out of scope; reads treat any underlying
// failure as an absent value.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store at the given directory.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store: path is required")
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("store: create directory %s: %w", path, err)
	}

	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a store backed by memory only. Used by tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open in-memory database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get retrieves a value. Returns (nil, false) when the key is absent.
func (s *Store) Get(key string) ([]byte, bool) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false
	}
	return value, true
}

// Set stores a value under key, overwriting any previous value.
func (s *Store) Set(key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("store: set %s: %w", key, err)
	}
	return nil
}

// Delete removes a key. Idempotent.
func (s *Store) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", key, err)
	}
	return nil
}

// Wipe removes every key. Called by session teardown.
func (s *Store) Wipe() error {
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("store: wipe: %w", err)
	}
	return nil
}

// Token returns the persisted session token, if any.
func (s *Store) Token() (string, bool) {
	v, ok := s.Get(keyAuthToken)
	if !ok || len(v) == 0 {
		return "", false
	}
	return string(v), true
}

// SetToken persists the session token.
func (s *Store) SetToken(token string) error {
	return s.Set(keyAuthToken, []byte(token))
}

// ClearToken removes the persisted session token.
func (s *Store) ClearToken() error {
	return s.Delete(keyAuthToken)
}

// FirstRun reports whether the app has never completed a launch.
func (s *Store) FirstRun() bool {
	_, ok := s.Get(keyLaunched)
	return !ok
}

// MarkLaunched records that the first launch has completed.
func (s *Store) MarkLaunched() error {
	return s.Set(keyLaunched, []byte("1"))
}
