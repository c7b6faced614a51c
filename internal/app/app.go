package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diogo/nexus-go/internal/geo"
	"github.com/diogo/nexus-go/internal/history"
	"github.com/diogo/nexus-go/internal/logger"
	"github.com/diogo/nexus-go/internal/query"
	"github.com/diogo/nexus-go/pkg/models"
)

// Searcher runs one search. *client.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, opts models.SearchOptions) *models.SearchResult
}

// Options configures an App.
type Options struct {
	Searcher Searcher
	Store    *history.Store
	Locator  geo.Locator

	Mode     models.Mode
	Tone     models.Tone
	Location *models.Location

	// Incognito keeps history in memory only.
	Incognito bool

	Logger *slog.Logger
	Now    func() time.Time
}

// App serializes state updates and commits them to the store.
type App struct {
	mu    sync.Mutex
	state State

	searcher  Searcher
	store     *history.Store
	locator   geo.Locator
	incognito bool
	log       *slog.Logger
	now       func() time.Time
	newToken  func() string
}

// New creates an App, loading persisted history, saved searches and theme.
func New(opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	locator := opts.Locator
	if locator == nil {
		locator = geo.Disabled{}
	}

	state := NewState(opts.Mode, opts.Tone)
	if opts.Location != nil {
		state = state.WithLocation(opts.Location)
	}
	if opts.Store != nil {
		state.History = opts.Store.LoadHistory()
		state.Saved = opts.Store.LoadSaved()
		if theme, ok := opts.Store.LoadTheme(); ok {
			state.Theme = theme
		}
	}

	return &App{
		state:     state,
		searcher:  opts.Searcher,
		store:     opts.Store,
		locator:   locator,
		incognito: opts.Incognito,
		log:       log.With("component", "app"),
		now:       now,
		newToken:  uuid.NewString,
	}
}

// State returns a snapshot of the current state.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Clone()
}

// SetMode changes the current mode.
func (a *App) SetMode(mode models.Mode) error {
	if !models.IsValidMode(mode) {
		return fmt.Errorf("invalid mode: %s", mode)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Mode = mode
	return nil
}

// SetTone changes the current tone.
func (a *App) SetTone(tone models.Tone) error {
	if !models.IsValidTone(tone) {
		return fmt.Errorf("invalid tone: %s", tone)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Tone = tone
	return nil
}

// Accepts reports whether raw, with visual attached, would start a search.
// A prefix with no text after it and no attachment does not.
func (a *App) Accepts(raw string, visual *models.VisualInput) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := query.Resolve(raw, a.state.Mode, a.state.Tone, visual != nil)
	return ok
}

// Submit resolves raw, runs the search and commits the result.
// An empty submission returns ErrEmptySubmission and changes nothing.
// When a newer submission started meanwhile the result is returned with
// ErrStaleResult and not applied.
func (a *App) Submit(ctx context.Context, raw string, visual *models.VisualInput) (*models.SearchResult, error) {
	a.mu.Lock()
	res, ok := query.Resolve(raw, a.state.Mode, a.state.Tone, visual != nil)
	if !ok {
		a.mu.Unlock()
		return nil, ErrEmptySubmission
	}

	var sub Submission
	a.state, sub = a.state.Begin(a.newToken(), res, visual)
	a.mu.Unlock()

	a.log.Debug("submission started",
		"token", sub.Token,
		"mode", sub.Options.Mode,
		"tone", sub.Options.Tone,
		"prefix", res.Prefix,
	)

	if sub.Options.Mode == models.ModeLocal && sub.Options.Location == nil {
		sub.Options.Location = a.locate(ctx)
	}

	result := a.searcher.Search(ctx, sub.Options)

	a.mu.Lock()
	defer a.mu.Unlock()

	next, applied := a.state.Complete(sub, result, a.now())
	if !applied {
		a.log.Debug("discarding stale result", "token", sub.Token, "current", a.state.Token)
		return result, ErrStaleResult
	}
	a.state = next

	if !result.IsError {
		a.persistHistory()
	}
	return result, nil
}

// locate does a best-effort location lookup and caches a hit.
func (a *App) locate(ctx context.Context) *models.Location {
	loc, err := a.locator.Locate(ctx)
	if err != nil {
		a.log.Debug("location lookup failed", "error", err)
		return nil
	}

	a.mu.Lock()
	if a.state.Location == nil {
		a.state = a.state.WithLocation(loc)
	}
	a.mu.Unlock()
	return loc
}

// Rerun submits a stored query with its stored mode.
func (a *App) Rerun(ctx context.Context, q string, mode models.Mode) (*models.SearchResult, error) {
	if mode != "" {
		if err := a.SetMode(mode); err != nil {
			return nil, err
		}
	}
	return a.Submit(ctx, q, nil)
}

// SaveCurrent bookmarks the current query and persists the saved list.
func (a *App) SaveCurrent() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	next, err := a.state.SaveCurrent(a.now())
	if err != nil {
		return err
	}
	a.state = next

	if a.store != nil {
		if err := a.store.SaveSaved(a.state.Saved); err != nil {
			return err
		}
	}
	return nil
}

// ClearHistory drops all history entries.
func (a *App) ClearHistory() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state = a.state.ClearHistory()
	if a.store != nil && !a.incognito {
		return a.store.ClearHistory()
	}
	return nil
}

// ClearSaved drops all saved searches.
func (a *App) ClearSaved() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state = a.state.ClearSaved()
	if a.store != nil {
		return a.store.ClearSaved()
	}
	return nil
}

// SetTheme sets and persists the theme.
func (a *App) SetTheme(theme models.Theme) error {
	if !models.IsValidTheme(theme) {
		return fmt.Errorf("invalid theme: %s", theme)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.state = a.state.SetTheme(theme)
	return a.persistTheme()
}

// ToggleTheme flips and persists the theme.
func (a *App) ToggleTheme() (models.Theme, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state = a.state.ToggleTheme()
	return a.state.Theme, a.persistTheme()
}

// Reset clears the current query and result.
func (a *App) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = a.state.Reset()
}

// persistHistory writes history; callers hold a.mu.
// Write failures are logged, the in-memory state stays authoritative.
func (a *App) persistHistory() {
	if a.store == nil || a.incognito {
		return
	}
	if err := a.store.SaveHistory(a.state.History); err != nil {
		a.log.Warn("failed to persist history", "error", err)
	}
}

func (a *App) persistTheme() error {
	if a.store == nil {
		return nil
	}
	return a.store.SaveTheme(a.state.Theme)
}
