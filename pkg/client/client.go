// Package client provides the Gemini-backed Nexus search client.
package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/diogo/nexus-go/internal/logger"
	"github.com/diogo/nexus-go/pkg/models"
	"google.golang.org/genai"
)

// ModelSet names the model used for each tier.
type ModelSet struct {
	Default string
	Pro     string
	Image   string
	Live    string
}

// DefaultModels returns the stock model names.
func DefaultModels() ModelSet {
	return ModelSet{
		Default: models.ModelDefault,
		Pro:     models.ModelPro,
		Image:   models.ModelImage,
		Live:    models.ModelLive,
	}
}

// For selects the model for a search mode.
func (s ModelSet) For(mode models.Mode) string {
	switch mode {
	case models.ModeResearch, models.ModeExplainable, models.ModePersonal:
		return s.Pro
	case models.ModeImages:
		return s.Image
	default:
		return s.Default
	}
}

// withDefaults fills empty names from DefaultModels.
func (s ModelSet) withDefaults() ModelSet {
	d := DefaultModels()
	if s.Default == "" {
		s.Default = d.Default
	}
	if s.Pro == "" {
		s.Pro = d.Pro
	}
	if s.Image == "" {
		s.Image = d.Image
	}
	if s.Live == "" {
		s.Live = d.Live
	}
	return s
}

// Client is the main Nexus search client.
type Client struct {
	gen         Generator
	genai       *genai.Client
	models      ModelSet
	defaultMode models.Mode
	defaultTone models.Tone
	log         *slog.Logger
}

// Config holds client configuration options.
type Config struct {
	APIKey      string
	BaseURL     string
	Models      ModelSet
	DefaultMode models.Mode
	DefaultTone models.Tone
	Logger      *slog.Logger
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Models:      DefaultModels(),
		DefaultMode: models.ModeAll,
		DefaultTone: models.ToneStandard,
	}
}

// New creates a client talking to the Gemini API.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := NewWithGenerator(gc.Models, cfg)
	c.genai = gc
	return c, nil
}

// NewWithGenerator creates a client over an existing generator.
func NewWithGenerator(gen Generator, cfg Config) *Client {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	c := &Client{
		gen:         gen,
		models:      cfg.Models.withDefaults(),
		defaultMode: cfg.DefaultMode,
		defaultTone: cfg.DefaultTone,
		log:         log.With("component", "client"),
	}
	if c.defaultMode == "" {
		c.defaultMode = models.ModeAll
	}
	if c.defaultTone == "" {
		c.defaultTone = models.ToneStandard
	}
	return c
}

// Models returns the model names in use.
func (c *Client) Models() ModelSet {
	return c.models
}

// GenAI returns the underlying SDK client, nil for generator-backed clients.
func (c *Client) GenAI() *genai.Client {
	return c.genai
}

// Close releases resources.
func (c *Client) Close() error {
	// genai.Client holds no connections of its own
	return nil
}

// SetDefaultMode sets the default mode.
func (c *Client) SetDefaultMode(mode models.Mode) {
	c.defaultMode = mode
}

// SetDefaultTone sets the default tone.
func (c *Client) SetDefaultTone(tone models.Tone) {
	c.defaultTone = tone
}

// applyDefaults fills in missing options with defaults.
func (c *Client) applyDefaults(opts *models.SearchOptions) {
	if opts.Mode == "" {
		opts.Mode = c.defaultMode
	}
	if opts.Tone == "" {
		opts.Tone = c.defaultTone
	}
}
