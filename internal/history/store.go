package history

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/diogo/nexus-go/internal/logger"
	"github.com/diogo/nexus-go/internal/storage"
	"github.com/diogo/nexus-go/pkg/models"
)

// Storage keys.
const (
	KeyHistory = "nexus_search_history"
	KeySaved   = "nexus_saved_searches"
	KeyTheme   = "nexus_theme"
)

// Store reads and writes history state in a KV.
// Missing or corrupt values load as empty state.
type Store struct {
	kv  storage.KV
	log *slog.Logger
}

// NewStore creates a store over kv.
func NewStore(kv storage.KV, log *slog.Logger) *Store {
	if log == nil {
		log = logger.Discard()
	}
	return &Store{kv: kv, log: log.With("component", "history")}
}

// loadJSON decodes key into v. It reports false when the key is absent,
// unreadable or malformed.
func (s *Store) loadJSON(key string, v any) bool {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		s.log.Warn("failed to read stored state", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.log.Debug("ignoring malformed stored state", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Store) saveJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.kv.Set(key, string(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// LoadHistory returns the stored history, newest first.
func (s *Store) LoadHistory() []models.HistoryEntry {
	var entries []models.HistoryEntry
	if !s.loadJSON(KeyHistory, &entries) {
		return []models.HistoryEntry{}
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return entries
}

// SaveHistory replaces the stored history.
func (s *Store) SaveHistory(entries []models.HistoryEntry) error {
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	return s.saveJSON(KeyHistory, entries)
}

// ClearHistory removes all history entries.
func (s *Store) ClearHistory() error {
	if err := s.kv.Delete(KeyHistory); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// LoadSaved returns the saved searches, newest first.
func (s *Store) LoadSaved() []models.SavedSearch {
	var saved []models.SavedSearch
	if !s.loadJSON(KeySaved, &saved) {
		return []models.SavedSearch{}
	}
	return saved
}

// SaveSaved replaces the saved searches.
func (s *Store) SaveSaved(saved []models.SavedSearch) error {
	if saved == nil {
		saved = []models.SavedSearch{}
	}
	return s.saveJSON(KeySaved, saved)
}

// ClearSaved removes all saved searches.
func (s *Store) ClearSaved() error {
	if err := s.kv.Delete(KeySaved); err != nil {
		return fmt.Errorf("failed to clear saved searches: %w", err)
	}
	return nil
}

// LoadTheme returns the stored theme and whether one was set.
func (s *Store) LoadTheme() (models.Theme, bool) {
	var theme models.Theme
	if !s.loadJSON(KeyTheme, &theme) {
		return "", false
	}
	if !models.IsValidTheme(theme) {
		s.log.Debug("ignoring malformed stored state", "key", KeyTheme, "value", theme)
		return "", false
	}
	return theme, true
}

// SaveTheme stores the theme preference as a JSON string.
func (s *Store) SaveTheme(theme models.Theme) error {
	if !models.IsValidTheme(theme) {
		return fmt.Errorf("invalid theme: %s", theme)
	}
	return s.saveJSON(KeyTheme, theme)
}
