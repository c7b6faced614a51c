package client

import (
	"github.com/diogo/nexus-go/pkg/models"
	"google.golang.org/genai"
)

const baseInstruction = "You are Nexus, a world-class search assistant. "

// ResearchThinkingBudget is the reasoning token budget for research mode.
const ResearchThinkingBudget int32 = 32768

// modeClauses holds the instruction appended for each mode.
// all, local, images and live add nothing.
var modeClauses = map[models.Mode]string{
	models.ModeExplainable: "TRANSPARENCY MODE: You must explain exactly why you prioritized certain information and provide a confidence score (0-100). ",
	models.ModeOutcome:     "INTENT MODE: Structure the answer as a goal-oriented roadmap (Steps, Compare, Build). ",
	models.ModeTemporal:    "TEMPORAL MODE: Contrast current information with historical context or deprecated consensus. ",
	models.ModeExpert:      "EXPERT MODE: Prioritize citations from primary sources, academic journals, and verified practitioners. ",
	models.ModeBiasAware:   "BIAS AWARE: Explicitly label potential commercial, political, or geographic biases in the results. ",
	models.ModeSEOFree:     "ANTI-SEO MODE: Penalize keyword stuffing and affiliate spam. Reward human-written content and first-hand experience. ",
	models.ModePersonal:    "PERSONAL KNOWLEDGE MODE: Simulate searching a user's unified personal database (Emails, Notes, PDF). Connect dots across their life history. ",
	models.ModeResearch:    "RESEARCH MODE: Use deep reasoning and exhaustive detail. ",
}

var toneClauses = map[models.Tone]string{
	models.ToneAcademic: "Provide deep, scholarly answers with technical detail.",
	models.ToneConcise:  "Provide extremely brief, bulleted answers.",
	models.ToneELI5:     "Explain concepts like I'm five years old.",
	models.ToneStandard: "Provide helpful, well-formatted summaries.",
}

// SystemInstruction builds the system prompt for a mode and tone.
func SystemInstruction(mode models.Mode, tone models.Tone) string {
	instruction := baseInstruction + modeClauses[mode]

	clause, ok := toneClauses[tone]
	if !ok {
		clause = toneClauses[models.ToneStandard]
	}
	return instruction + clause
}

// BuildConfig assembles the generation config for a search.
func BuildConfig(opts models.SearchOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: SystemInstruction(opts.Mode, opts.Tone)}},
		},
	}

	if opts.Mode == models.ModeLocal {
		cfg.Tools = []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}}
		if opts.Location != nil {
			cfg.ToolConfig = &genai.ToolConfig{
				RetrievalConfig: &genai.RetrievalConfig{
					LatLng: &genai.LatLng{
						Latitude:  genai.Ptr(opts.Location.Latitude),
						Longitude: genai.Ptr(opts.Location.Longitude),
					},
				},
			}
		}
	} else {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	if opts.Mode == models.ModeResearch {
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(ResearchThinkingBudget),
		}
	}

	return cfg
}
