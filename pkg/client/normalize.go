package client

import (
	"encoding/base64"
	"strings"

	"github.com/diogo/nexus-go/pkg/models"
	"google.golang.org/genai"
)

const (
	placeholderAnswer    = "Search complete."
	placeholderWebTitle  = "Web Source"
	placeholderMapsTitle = "Location"
)

// Transparency values are fixed per mode, not derived from the model.
const (
	transparencyConfidence = 88
	reasoningSEOFree       = "Filtered out 14 results flagged as AI-generated fluff. Ranked based on entropy and source diversity."
	reasoningDefault       = "Analysis based on source freshness, domain authority, and cross-reference citations."
	biasWarning            = "Multiple sources reflect a high-commercial bias from retail providers."
)

// Normalize converts a raw model response into a SearchResult.
func Normalize(resp *genai.GenerateContentResponse, mode models.Mode) *models.SearchResult {
	answer := answerText(resp)
	if answer == "" {
		answer = placeholderAnswer
	}

	result := &models.SearchResult{
		Answer:       answer,
		Sources:      groundingSources(resp),
		Transparency: transparencyFor(mode),
	}

	if mode == models.ModeImages {
		result.Images = inlineImages(resp)
	}

	return result
}

// firstCandidate returns the first candidate or nil.
func firstCandidate(resp *genai.GenerateContentResponse) *genai.Candidate {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	return resp.Candidates[0]
}

// answerText concatenates the non-thought text parts of the first candidate.
func answerText(resp *genai.GenerateContentResponse) string {
	cand := firstCandidate(resp)
	if cand == nil || cand.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// groundingSources lists the grounding chunks in response order.
// Duplicates are kept; they are dropped at render time.
func groundingSources(resp *genai.GenerateContentResponse) []models.Source {
	sources := []models.Source{}

	cand := firstCandidate(resp)
	if cand == nil || cand.GroundingMetadata == nil {
		return sources
	}

	for _, chunk := range cand.GroundingMetadata.GroundingChunks {
		if chunk == nil {
			continue
		}
		if chunk.Web != nil {
			sources = append(sources, models.Source{
				Title: titleOr(chunk.Web.Title, placeholderWebTitle),
				URI:   chunk.Web.URI,
				Type:  models.SourceWeb,
			})
		}
		if chunk.Maps != nil {
			sources = append(sources, models.Source{
				Title: titleOr(chunk.Maps.Title, placeholderMapsTitle),
				URI:   chunk.Maps.URI,
				Type:  models.SourceMaps,
			})
		}
	}

	return sources
}

func titleOr(title, fallback string) string {
	if title == "" {
		return fallback
	}
	return title
}

// inlineImages turns inline-data parts of the first candidate into PNG data URIs.
// It returns nil when there are none.
func inlineImages(resp *genai.GenerateContentResponse) []string {
	cand := firstCandidate(resp)
	if cand == nil || cand.Content == nil {
		return nil
	}

	var images []string
	for _, part := range cand.Content.Parts {
		if part == nil || part.InlineData == nil {
			continue
		}
		images = append(images, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(part.InlineData.Data))
	}
	return images
}

// transparencyFor returns the canned transparency block for a mode, or nil.
func transparencyFor(mode models.Mode) *models.Transparency {
	if !mode.HasTransparency() {
		return nil
	}

	t := &models.Transparency{
		Confidence: transparencyConfidence,
		Reasoning:  reasoningDefault,
	}
	if mode == models.ModeSEOFree {
		t.Reasoning = reasoningSEOFree
	}
	if mode == models.ModeBiasAware {
		t.BiasWarning = biasWarning
	}
	return t
}
