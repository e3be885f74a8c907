package promptcfg

import "adstudio/internal/domain"

// Built-in prompt configuration. The remote document can override the base
// prompt template and the ad type list wholesale; anything it omits keeps
// these values.
const defaultBasePrompt = `Create a professional ecommerce ad for this product. The product description is: "{DESCRIPTION}". Keep the product as the hero of the composition, use clean commercial lighting, and leave space for headline copy.`

const (
	TypeCreativeConcept  = "Creative Concept Ad"
	TypeBenefitHighlight = "Benefit Highlight Ad"
	TypeEcommerceStyle   = "Ecommerce-Style Ad"
)

func defaultAdTypes() []domain.AdTypeSpec {
	return []domain.AdTypeSpec{
		{
			Type:   TypeCreativeConcept,
			Prompt: "Design an imaginative concept-driven scene around the product with bold colours and an unexpected setting that stops the scroll.",
		},
		{
			Type:   TypeBenefitHighlight,
			Prompt: "Showcase the product's strongest benefit as the visual focal point, with clear space for a short supporting callout.",
		},
		{
			Type:   TypeEcommerceStyle,
			Prompt: "Present the product on a clean, softly shadowed studio background in a polished ecommerce listing style.",
		},
	}
}

// Defaults returns a fresh copy of the built-in configuration.
func Defaults() domain.PromptConfig {
	return domain.PromptConfig{
		BasePrompt: defaultBasePrompt,
		AdTypes:    defaultAdTypes(),
	}
}
