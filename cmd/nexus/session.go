package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/diogo/nexus-go/internal/app"
	"github.com/diogo/nexus-go/internal/auth"
	"github.com/diogo/nexus-go/internal/geo"
	"github.com/diogo/nexus-go/internal/history"
	"github.com/diogo/nexus-go/internal/storage"
	"github.com/diogo/nexus-go/pkg/client"
	"github.com/diogo/nexus-go/pkg/models"
)

// session holds the opened storage, client and app for one command.
type session struct {
	kv     storage.KV
	store  *history.Store
	client *client.Client
	app    *app.App
}

// openSession opens storage and builds the app. The Gemini client is only
// created when withClient is set.
func openSession(ctx context.Context, withClient bool) (*session, error) {
	mode, tone, err := searchDefaults()
	if err != nil {
		return nil, err
	}
	loc, err := fixedLocation()
	if err != nil {
		return nil, err
	}

	kv, err := storage.Open(cfg.StorageBackend, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	s := &session{kv: kv, store: history.NewStore(kv, appLog)}

	var searcher app.Searcher
	if withClient {
		c, err := newClient(ctx)
		if err != nil {
			kv.Close()
			return nil, err
		}
		s.client = c
		searcher = c
	}

	s.app = app.New(app.Options{
		Searcher:  searcher,
		Store:     s.store,
		Locator:   newLocator(loc),
		Mode:      mode,
		Tone:      tone,
		Location:  loc,
		Incognito: flagIncognito || cfg.Incognito,
		Logger:    appLog,
	})

	if theme := s.app.State().Theme; theme != "" {
		setTheme(theme)
	}
	return s, nil
}

// Close releases the client and the store.
func (s *session) Close() {
	if s.client != nil {
		s.client.Close()
	}
	if err := s.kv.Close(); err != nil {
		appLog.Debug("close storage", "error", err)
	}
}

// searchDefaults merges the mode and tone flags over the config.
func searchDefaults() (models.Mode, models.Tone, error) {
	mode := cfg.DefaultMode
	if flagMode != "" {
		mode = models.Mode(flagMode)
	}
	if !models.IsValidMode(mode) {
		return "", "", fmt.Errorf("invalid mode: %s", mode)
	}
	if mode == models.ModeLive {
		return "", "", fmt.Errorf("live mode runs through 'nexus live'")
	}

	tone := cfg.DefaultTone
	if flagTone != "" {
		tone = models.Tone(flagTone)
	}
	if !models.IsValidTone(tone) {
		return "", "", fmt.Errorf("invalid tone: %s", tone)
	}
	return mode, tone, nil
}

// fixedLocation returns the --location flag or the configured location.
func fixedLocation() (*models.Location, error) {
	if flagLocation != "" {
		return models.ParseLocation(flagLocation)
	}
	return cfg.FixedLocation(), nil
}

func newLocator(fixed *models.Location) geo.Locator {
	if fixed != nil {
		return geo.StaticLocator{Location: fixed}
	}
	if !cfg.Geolocation {
		return geo.Disabled{}
	}
	locator, err := geo.NewIPLocator(cfg.GeolocationURL, 10)
	if err != nil {
		appLog.Warn("geolocation unavailable", "error", err)
		return geo.Disabled{}
	}
	return locator
}

func newClient(ctx context.Context) (*client.Client, error) {
	cred, err := auth.Resolve(flagAPIKey, cfg.KeyFile)
	if err != nil {
		if errors.Is(err, auth.ErrNoAPIKey) {
			render.RenderError(err)
			render.RenderInfo("Run 'nexus auth set-key' or set GEMINI_API_KEY")
			return nil, errReported
		}
		return nil, err
	}
	appLog.Debug("using API key", "source", cred.Source, "origin", cred.Origin)

	c, err := client.New(ctx, client.Config{
		APIKey: cred.Key,
		Models: client.ModelSet{
			Default: cfg.ModelDefault,
			Pro:     cfg.ModelPro,
			Image:   cfg.ModelImage,
			Live:    cfg.ModelLive,
		},
		DefaultMode: cfg.DefaultMode,
		DefaultTone: cfg.DefaultTone,
		Logger:      appLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return c, nil
}
