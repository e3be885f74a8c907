package studio

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
	"adstudio/internal/promptcfg"
	"adstudio/internal/providers/image"
	"adstudio/internal/providers/prompt"
)

// regenerationSuffix is appended to the type prompt when the user asks for a
// replacement image.
const regenerationSuffix = "Take a noticeably more creative, eye-catching angle than the previous version while keeping the product accurate."

const completionMessage = "Your ads are ready!"

// Options wires the studio's collaborators.
type Options struct {
	Enhancer    prompt.Enhancer
	Resolver    *promptcfg.Resolver
	Generator   image.Generator
	Placeholder *image.Placeholder
	Logger      *infra.Logger
	ImageSize   string
	Quality     string
	RevealDelay time.Duration
}

// Studio drives the generation and regeneration flows over a session.
type Studio struct {
	enhancer    prompt.Enhancer
	resolver    *promptcfg.Resolver
	generator   image.Generator
	placeholder *image.Placeholder
	logger      *infra.Logger
	imageSize   string
	quality     string
	revealDelay time.Duration
}

// NewStudio constructs the orchestrator with defaults for optional pieces.
func NewStudio(opts Options) *Studio {
	enhancer := opts.Enhancer
	if enhancer == nil {
		enhancer = prompt.NewPassthroughEnhancer()
	}
	placeholder := opts.Placeholder
	if placeholder == nil {
		placeholder = image.NewPlaceholder()
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	revealDelay := opts.RevealDelay
	if revealDelay < 0 {
		revealDelay = 0
	}
	return &Studio{
		enhancer:    enhancer,
		resolver:    opts.Resolver,
		generator:   opts.Generator,
		placeholder: placeholder,
		logger:      logger,
		imageSize:   opts.ImageSize,
		quality:     opts.Quality,
		revealDelay: revealDelay,
	}
}

// Generate runs the full batch flow: enhance the description, resolve prompt
// configuration, request one image per ad type sequentially, and install the
// results. Any failure abandons partial results and substitutes the canonical
// placeholder batch; the loading flag always clears so the session is never
// stuck.
func (s *Studio) Generate(ctx context.Context, sess *Session, description string, source image.SourceImage) error {
	description = strings.TrimSpace(description)
	if description == "" || source.IsZero() {
		return domain.ErrInvalidInput
	}

	sess.beginGeneration(description, source)
	animator := animateProgress(sess)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("studio: generation panicked")
			sess.fail(fmt.Sprintf("unexpected failure: %v", r))
			sess.setAds(s.fallbackBatch())
		}
		animator.Stop()
		sess.completeProgress(completionMessage)
		if s.revealDelay > 0 {
			time.Sleep(s.revealDelay)
		}
		sess.finish()
	}()

	enhanced := s.enhance(ctx, description)
	cfg := s.resolveConfig(ctx)
	basePrompt := cfg.RenderBasePrompt(enhanced)

	ads := make([]domain.GeneratedAd, 0, len(cfg.AdTypes))
	for _, spec := range cfg.AdTypes {
		locators, err := s.generator.Edit(ctx, image.EditRequest{
			Prompt:  combinePrompts(basePrompt, spec.Prompt),
			Source:  source,
			Count:   1,
			Size:    s.imageSize,
			Quality: s.quality,
		})
		if err != nil || len(locators) == 0 {
			if err == nil {
				err = image.ErrMissingImageData
			}
			s.logger.Warn().Err(err).Str("ad_type", spec.Type).Msg("studio: batch generation failed, substituting placeholders")
			sess.fail(err.Error())
			sess.setAds(s.fallbackBatch())
			return nil
		}
		ads = append(ads, domain.GeneratedAd{
			ID:       adID(spec.Type),
			ImageURL: locators[0],
			AdType:   spec.Type,
		})
	}
	sess.setAds(ads)
	s.logger.Info().Int("count", len(ads)).Msg("studio: batch generated")
	return nil
}

// Regenerate reruns enhancement and a single image request for one existing
// ad, replacing its image in place. Missing ads make the call a no-op; any
// failure degrades to a randomized placeholder. The rating is cleared and the
// regenerating flag reset on every path.
func (s *Studio) Regenerate(ctx context.Context, sess *Session, adID string) {
	ad, ok := sess.beginRegeneration(adID)
	if !ok {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("studio: regeneration panicked")
			sess.completeRegeneration(adID, s.placeholder.Random())
		}
	}()

	description, source := sess.inputs()
	if strings.TrimSpace(description) == "" || source.IsZero() {
		sess.completeRegeneration(adID, s.placeholder.Random())
		return
	}

	enhanced := s.enhance(ctx, description)
	cfg := s.resolveConfig(ctx)
	spec := cfg.FindAdType(ad.AdType)
	promptText := combinePrompts(cfg.RenderBasePrompt(enhanced), spec.Prompt, regenerationSuffix)

	locators, err := s.generator.Edit(ctx, image.EditRequest{
		Prompt:  promptText,
		Source:  source,
		Count:   1,
		Size:    s.imageSize,
		Quality: s.quality,
	})
	if err != nil || len(locators) == 0 {
		s.logger.Warn().Err(err).Str("ad_id", adID).Msg("studio: regeneration failed, substituting placeholder")
		sess.completeRegeneration(adID, s.placeholder.Random())
		return
	}
	sess.completeRegeneration(adID, locators[0])
}

// enhance is best-effort: any enhancer error keeps the original description.
func (s *Studio) enhance(ctx context.Context, description string) string {
	enhanced, err := s.enhancer.Enhance(ctx, description)
	if err != nil || strings.TrimSpace(enhanced) == "" {
		return description
	}
	return enhanced
}

// resolveConfig is re-run for every generation and regeneration pass; remote
// failures silently keep the built-in defaults.
func (s *Studio) resolveConfig(ctx context.Context) domain.PromptConfig {
	if s.resolver == nil {
		return promptcfg.Defaults()
	}
	return s.resolver.Resolve(ctx)
}

// fallbackBatch is the fixed set of three placeholder ads, one per canonical
// ad type. It replaces the whole batch, never mixing with API-sourced ads.
func (s *Studio) fallbackBatch() []domain.GeneratedAd {
	types := []string{
		promptcfg.TypeCreativeConcept,
		promptcfg.TypeBenefitHighlight,
		promptcfg.TypeEcommerceStyle,
	}
	ads := make([]domain.GeneratedAd, 0, len(types))
	for _, t := range types {
		ads = append(ads, domain.GeneratedAd{
			ID:       adID(t),
			ImageURL: s.placeholder.Stock(t),
			AdType:   t,
		})
	}
	return ads
}

func combinePrompts(parts ...string) string {
	var kept []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

// adID embeds the ad-type label so identifiers remain readable in logs and
// downloads while staying unique per batch.
func adID(adType string) string {
	slug := strings.ToLower(strings.TrimSpace(adType))
	slug = strings.NewReplacer(" ", "-", "/", "-").Replace(slug)
	return fmt.Sprintf("%s-%s", slug, uuid.NewString()[:8])
}
