// Package query resolves shorthand prefixes in raw query text.
package query

import (
	"strings"

	"github.com/diogo/nexus-go/pkg/models"
)

// Prefix maps a shorthand token to a mode or tone override.
// Exactly one of Mode and Tone is set.
type Prefix struct {
	Token string
	Mode  models.Mode
	Tone  models.Tone
}

// Prefixes is matched in order; the first hit wins.
var Prefixes = []Prefix{
	{Token: "img:", Mode: models.ModeImages},
	{Token: "images:", Mode: models.ModeImages},
	{Token: "local:", Mode: models.ModeLocal},
	{Token: "research:", Mode: models.ModeResearch},
	{Token: "explain:", Mode: models.ModeExplainable},
	{Token: "outcome:", Mode: models.ModeOutcome},
	{Token: "temporal:", Mode: models.ModeTemporal},
	{Token: "expert:", Mode: models.ModeExpert},
	{Token: "bias:", Mode: models.ModeBiasAware},
	{Token: "seofree:", Mode: models.ModeSEOFree},
	{Token: "personal:", Mode: models.ModePersonal},
	{Token: "eli5:", Tone: models.ToneELI5},
	{Token: "academic:", Tone: models.ToneAcademic},
	{Token: "concise:", Tone: models.ToneConcise},
	{Token: "standard:", Tone: models.ToneStandard},
}

// Resolution is the outcome of resolving a raw query.
type Resolution struct {
	Query string
	Mode  models.Mode
	Tone  models.Tone
	// Prefix is the matched token, empty when none matched.
	Prefix string
}

// Resolve strips a recognized prefix from raw and applies its override to the
// current mode and tone. ok is false when nothing is left to submit: no text
// after stripping and no visual attachment.
func Resolve(raw string, mode models.Mode, tone models.Tone, hasVisual bool) (res Resolution, ok bool) {
	res = Resolution{
		Query: strings.TrimSpace(raw),
		Mode:  mode,
		Tone:  tone,
	}

	for _, p := range Prefixes {
		if !hasPrefixFold(res.Query, p.Token) {
			continue
		}
		res.Query = strings.TrimSpace(res.Query[len(p.Token):])
		res.Prefix = p.Token
		if p.Mode != "" {
			res.Mode = p.Mode
		}
		if p.Tone != "" {
			res.Tone = p.Tone
		}
		break
	}

	if res.Query == "" && !hasVisual {
		return res, false
	}
	return res, true
}

// hasPrefixFold is a case-insensitive strings.HasPrefix for ASCII tokens.
func hasPrefixFold(s, token string) bool {
	return len(s) >= len(token) && strings.EqualFold(s[:len(token)], token)
}

// Lookup returns the prefix entry for a token such as "eli5:".
func Lookup(token string) (Prefix, bool) {
	for _, p := range Prefixes {
		if strings.EqualFold(p.Token, token) {
			return p, true
		}
	}
	return Prefix{}, false
}
