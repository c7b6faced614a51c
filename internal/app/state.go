// Package app holds the client state and the search submission flow.
package app

import (
	"errors"
	"slices"
	"time"

	"github.com/diogo/nexus-go/internal/history"
	"github.com/diogo/nexus-go/internal/query"
	"github.com/diogo/nexus-go/pkg/models"
)

var (
	// ErrEmptySubmission is returned when there is neither query text nor an image.
	ErrEmptySubmission = errors.New("empty submission")
	// ErrStaleResult is returned when a newer submission superseded the search.
	ErrStaleResult = errors.New("stale result discarded")
	// ErrNoCurrentQuery is returned when saving without a current query.
	ErrNoCurrentQuery = errors.New("no current query to save")
)

// State is the complete client state. Update methods return a new value and
// never touch persistence.
type State struct {
	Mode         models.Mode
	Tone         models.Tone
	CurrentQuery string
	Location     *models.Location
	Result       *models.SearchResult
	Loading      bool
	Token        string
	History      []models.HistoryEntry
	Saved        []models.SavedSearch
	Theme        models.Theme
}

// Submission is a search that has begun and awaits its result.
type Submission struct {
	Token   string
	Options models.SearchOptions
}

// NewState returns the initial state for the given defaults.
func NewState(mode models.Mode, tone models.Tone) State {
	if mode == "" {
		mode = models.ModeAll
	}
	if tone == "" {
		tone = models.ToneStandard
	}
	return State{
		Mode:    mode,
		Tone:    tone,
		History: []models.HistoryEntry{},
		Saved:   []models.SavedSearch{},
	}
}

// Clone returns a deep copy of the slices and pointers held by s.
func (s State) Clone() State {
	s.History = slices.Clone(s.History)
	s.Saved = slices.Clone(s.Saved)
	if s.Location != nil {
		loc := *s.Location
		s.Location = &loc
	}
	return s
}

// Begin starts a submission for a resolved query. The resolved mode and tone
// become current and any earlier in-flight submission becomes stale.
func (s State) Begin(token string, res query.Resolution, visual *models.VisualInput) (State, Submission) {
	s.CurrentQuery = res.Query
	s.Mode = res.Mode
	s.Tone = res.Tone
	s.Loading = true
	s.Token = token

	sub := Submission{
		Token: token,
		Options: models.SearchOptions{
			Query:    res.Query,
			Mode:     res.Mode,
			Tone:     res.Tone,
			Location: s.Location,
			Visual:   visual,
		},
	}
	return s, sub
}

// Complete applies the result of sub. It reports false, leaving s unchanged,
// when sub's token is not current. Only successful results are recorded in
// history, under the mode the search ran with.
func (s State) Complete(sub Submission, result *models.SearchResult, now time.Time) (State, bool) {
	if sub.Token == "" || sub.Token != s.Token {
		return s, false
	}

	s.Result = result
	s.Loading = false

	if result != nil && !result.IsError {
		s.History = history.Push(s.History, models.HistoryEntry{
			Query:     history.Label(sub.Options.Query),
			Mode:      sub.Options.Mode,
			Timestamp: now,
		})
	}
	return s, true
}

// WithLocation caches the device location.
func (s State) WithLocation(loc *models.Location) State {
	s.Location = loc
	return s
}

// SaveCurrent bookmarks the current query with the current mode.
func (s State) SaveCurrent(now time.Time) (State, error) {
	if s.CurrentQuery == "" {
		return s, ErrNoCurrentQuery
	}
	s.Saved = history.PrependSaved(s.Saved, models.SavedSearch{
		Query:     s.CurrentQuery,
		Mode:      s.Mode,
		Timestamp: now,
	})
	return s, nil
}

// ClearHistory drops all history entries.
func (s State) ClearHistory() State {
	s.History = []models.HistoryEntry{}
	return s
}

// ClearSaved drops all saved searches.
func (s State) ClearSaved() State {
	s.Saved = []models.SavedSearch{}
	return s
}

// SetTheme sets the display theme.
func (s State) SetTheme(theme models.Theme) State {
	s.Theme = theme
	return s
}

// ToggleTheme flips between light and dark. An unset theme becomes dark.
func (s State) ToggleTheme() State {
	if s.Theme == models.ThemeDark {
		s.Theme = models.ThemeLight
	} else {
		s.Theme = models.ThemeDark
	}
	return s
}

// Reset returns to the home view, keeping preferences and stored lists.
func (s State) Reset() State {
	s.CurrentQuery = ""
	s.Result = nil
	s.Loading = false
	s.Token = ""
	return s
}
