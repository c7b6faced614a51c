// Package models defines data structures for Nexus search requests and results.
package models

// Mode represents the search mode for Nexus queries.
type Mode string

const (
	ModeAll         Mode = "all"
	ModeLocal       Mode = "local"
	ModeImages      Mode = "images"
	ModeResearch    Mode = "research"
	ModeLive        Mode = "live"
	ModeExplainable Mode = "explainable"
	ModeOutcome     Mode = "outcome"
	ModeTemporal    Mode = "temporal"
	ModeExpert      Mode = "expert"
	ModeBiasAware   Mode = "biasAware"
	ModeSEOFree     Mode = "seoFree"
	ModePersonal    Mode = "personal"
)

// Tone controls the closing instruction of the system prompt.
type Tone string

const (
	ToneStandard Tone = "standard"
	ToneAcademic Tone = "academic"
	ToneConcise  Tone = "concise"
	ToneELI5     Tone = "eli5"
)

// SourceType tells where a grounding source came from.
type SourceType string

const (
	SourceWeb  SourceType = "web"
	SourceMaps SourceType = "maps"
)

// Theme is the persisted display preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Default model names per tier.
const (
	ModelDefault = "gemini-3-flash-preview"
	ModelPro     = "gemini-3-pro-preview"
	ModelImage   = "gemini-2.5-flash-image"
	ModelLive    = "gemini-2.5-flash-native-audio-preview-12-2025"
)

// AvailableModes contains all valid modes, in menu order.
var AvailableModes = []Mode{
	ModeAll,
	ModeLocal,
	ModeImages,
	ModeResearch,
	ModeLive,
	ModeExplainable,
	ModeOutcome,
	ModeTemporal,
	ModeExpert,
	ModeBiasAware,
	ModeSEOFree,
	ModePersonal,
}

// AvailableTones contains all valid tones.
var AvailableTones = []Tone{
	ToneStandard,
	ToneAcademic,
	ToneConcise,
	ToneELI5,
}

// IsValidMode checks if a mode is valid.
func IsValidMode(m Mode) bool {
	for _, valid := range AvailableModes {
		if m == valid {
			return true
		}
	}
	return false
}

// IsValidTone checks if a tone is valid.
func IsValidTone(t Tone) bool {
	switch t {
	case ToneStandard, ToneAcademic, ToneConcise, ToneELI5:
		return true
	}
	return false
}

// IsValidTheme checks if a theme is valid.
func IsValidTheme(t Theme) bool {
	return t == ThemeLight || t == ThemeDark
}

// HasTransparency reports whether results in this mode carry transparency metadata.
func (m Mode) HasTransparency() bool {
	switch m {
	case ModeExplainable, ModeBiasAware, ModeSEOFree:
		return true
	}
	return false
}
