package models

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// SearchResult is the normalized outcome of one search.
type SearchResult struct {
	Answer       string        `json:"answer"`
	Sources      []Source      `json:"sources"`
	Images       []string      `json:"images,omitempty"`
	Transparency *Transparency `json:"transparency,omitempty"`
	IsError      bool          `json:"is_error"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// ErrorResult builds the terminal result reported for a failed search.
func ErrorResult(err error) *SearchResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &SearchResult{
		Answer:       "",
		Sources:      []Source{},
		IsError:      true,
		ErrorMessage: msg,
	}
}

// Source represents a grounding citation.
type Source struct {
	Title string     `json:"title"`
	URI   string     `json:"uri"`
	Type  SourceType `json:"type"`
}

// Transparency holds the per-mode explanation attached to a result.
type Transparency struct {
	Confidence  int    `json:"confidence"`
	Reasoning   string `json:"reasoning"`
	BiasWarning string `json:"bias_warning,omitempty"`
}

// UniqueSources drops sources whose URI was already seen. First occurrence wins.
func UniqueSources(sources []Source) []Source {
	seen := make(map[string]bool, len(sources))
	result := make([]Source, 0, len(sources))

	for _, s := range sources {
		if seen[s.URI] {
			continue
		}
		seen[s.URI] = true
		result = append(result, s)
	}

	return result
}

// HistoryEntry represents a submitted query.
type HistoryEntry struct {
	Query     string    `json:"query"`
	Mode      Mode      `json:"mode"`
	Timestamp time.Time `json:"timestamp"`
}

// SavedSearch represents a search the user bookmarked.
type SavedSearch struct {
	Query     string    `json:"query"`
	Mode      Mode      `json:"mode"`
	Timestamp time.Time `json:"timestamp"`
}

// DecodeDataURI splits a "data:<mime>;base64,<payload>" URI.
func DecodeDataURI(uri string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URI")
	}

	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URI")
	}

	mimeType, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("data URI is not base64 encoded")
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode data URI: %w", err)
	}

	return mimeType, data, nil
}
