// Package history manages query history, saved searches and the theme preference.
package history

import (
	"strings"

	"github.com/diogo/nexus-go/pkg/models"
)

// MaxEntries is the number of history entries kept.
const MaxEntries = 20

// VisualInquiryLabel names history entries submitted with only an image.
const VisualInquiryLabel = "Visual Inquiry"

// Label returns the text recorded in history for a submitted query.
func Label(query string) string {
	if query == "" {
		return VisualInquiryLabel
	}
	return query
}

// Push returns a new history with entry at the front. Any older entry with the
// same query is dropped and the result is capped at MaxEntries.
func Push(entries []models.HistoryEntry, entry models.HistoryEntry) []models.HistoryEntry {
	result := make([]models.HistoryEntry, 0, MaxEntries)
	result = append(result, entry)

	for _, e := range entries {
		if len(result) == MaxEntries {
			break
		}
		if e.Query == entry.Query {
			continue
		}
		result = append(result, e)
	}

	return result
}

// PrependSaved returns a new saved list with s at the front.
// Saved searches are never deduplicated or capped.
func PrependSaved(saved []models.SavedSearch, s models.SavedSearch) []models.SavedSearch {
	result := make([]models.SavedSearch, 0, len(saved)+1)
	result = append(result, s)
	return append(result, saved...)
}

// Search finds entries matching the query, case-insensitively.
func Search(entries []models.HistoryEntry, query string) []models.HistoryEntry {
	var results []models.HistoryEntry
	for _, entry := range entries {
		if containsIgnoreCase(entry.Query, query) {
			results = append(results, entry)
		}
	}
	return results
}

// containsIgnoreCase checks if s contains substr (case-insensitive).
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
