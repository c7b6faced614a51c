package client

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/diogo/nexus-go/pkg/models"
	"google.golang.org/genai"
)

// buildContents creates the request contents. The visual attachment, when
// present, comes before the text part.
func buildContents(opts models.SearchOptions) ([]*genai.Content, error) {
	parts := make([]*genai.Part, 0, 2)

	if opts.Visual != nil {
		data, err := base64.StdEncoding.DecodeString(opts.Visual.RawData())
		if err != nil {
			return nil, fmt.Errorf("failed to decode visual input: %w", err)
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				Data:     data,
				MIMEType: opts.Visual.MIMEType,
			},
		})
	}

	if opts.Query != "" || len(parts) == 0 {
		parts = append(parts, &genai.Part{Text: opts.Query})
	}

	return []*genai.Content{{Role: genai.RoleUser, Parts: parts}}, nil
}

// Search performs one request to the model and normalizes the response.
// Failures are reported as an error result and never returned as errors.
func (c *Client) Search(ctx context.Context, opts models.SearchOptions) (result *models.SearchResult) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("search panicked", "panic", r)
			result = models.ErrorResult(fmt.Errorf("search failed: %v", r))
		}
	}()

	c.applyDefaults(&opts)

	contents, err := buildContents(opts)
	if err != nil {
		return models.ErrorResult(err)
	}

	model := c.models.For(opts.Mode)
	config := BuildConfig(opts)

	c.log.Debug("generating content",
		"model", model,
		"mode", opts.Mode,
		"tone", opts.Tone,
		"has_location", opts.Location != nil,
		"has_visual", opts.Visual != nil,
	)

	resp, err := c.gen.GenerateContent(ctx, model, contents, config)
	if err != nil {
		c.log.Warn("search request failed", "model", model, "error", err)
		return models.ErrorResult(err)
	}
	if resp == nil {
		return models.ErrorResult(errors.New("empty response from model"))
	}

	result = Normalize(resp, opts.Mode)
	c.log.Debug("search complete",
		"sources", len(result.Sources),
		"images", len(result.Images),
	)
	return result
}
