// Package storage provides the key-value stores that back persisted client state.
package storage

import (
	"fmt"
	"path/filepath"
	"regexp"
)

// Backend names a KV implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// KV is a string key-value store. Values are opaque JSON documents.
type KV interface {
	// Get returns the value and whether the key exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}

// IsValidBackend checks if a backend name is supported.
func IsValidBackend(b Backend) bool {
	switch b {
	case BackendFile, BackendSQLite, BackendMemory:
		return true
	}
	return false
}

// Open creates the store for a backend rooted at dataDir.
func Open(backend Backend, dataDir string) (KV, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(filepath.Join(dataDir, "kv"))
	case BackendSQLite:
		return NewSQLiteStore(filepath.Join(dataDir, "nexus.db"))
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
