package domain

import "strings"

// Phase is the externally visible state of a generation session.
type Phase string

const (
	PhaseInput      Phase = "input"
	PhaseGeneration Phase = "generation"
)

// GeneratedAd is one advertisement produced for a session, either sourced from
// the image API or substituted as a placeholder when generation fails.
type GeneratedAd struct {
	ID             string `json:"id"`
	ImageURL       string `json:"image_url"`
	Rating         int    `json:"rating,omitempty"`
	AdType         string `json:"ad_type,omitempty"`
	IsRegenerating bool   `json:"is_regenerating"`
}

// Rated reports whether the ad carries a user rating.
func (a GeneratedAd) Rated() bool {
	return a.Rating >= MinRating && a.Rating <= MaxRating
}

// Rating bounds accepted from the presentation layer.
const (
	MinRating = 1
	MaxRating = 5
)

// AdTypeSpec names a creative template and the type-specific instructions
// appended to the base prompt. Immutable once resolved for a generation pass.
type AdTypeSpec struct {
	Type   string `json:"type"`
	Prompt string `json:"prompt"`
}

// DescriptionPlaceholder is the token substituted with the enhanced product
// description inside a base prompt template.
const DescriptionPlaceholder = "{DESCRIPTION}"

// PromptConfig is the resolved prompt configuration for one generation or
// regeneration pass: built-in defaults, optionally overlaid by remote config.
type PromptConfig struct {
	BasePrompt string       `json:"basePrompt"`
	AdTypes    []AdTypeSpec `json:"adTypes"`
}

// RenderBasePrompt substitutes the product description into the base prompt
// template.
func (c PromptConfig) RenderBasePrompt(description string) string {
	return strings.ReplaceAll(c.BasePrompt, DescriptionPlaceholder, strings.TrimSpace(description))
}

// FindAdType returns the spec whose label matches (case-insensitive), or the
// first configured type when unmatched.
func (c PromptConfig) FindAdType(label string) AdTypeSpec {
	needle := strings.ToLower(strings.TrimSpace(label))
	for _, spec := range c.AdTypes {
		if strings.ToLower(spec.Type) == needle {
			return spec
		}
	}
	if len(c.AdTypes) > 0 {
		return c.AdTypes[0]
	}
	return AdTypeSpec{}
}

// Clone returns a deep copy so a resolved config is never shared mutably
// between passes.
func (c PromptConfig) Clone() PromptConfig {
	out := PromptConfig{BasePrompt: c.BasePrompt}
	if len(c.AdTypes) > 0 {
		out.AdTypes = append([]AdTypeSpec(nil), c.AdTypes...)
	}
	return out
}
