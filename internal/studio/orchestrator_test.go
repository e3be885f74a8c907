package studio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"adstudio/internal/domain"
	"adstudio/internal/promptcfg"
	"adstudio/internal/providers/image"
)

type fakeGenerator struct {
	mu      sync.Mutex
	calls   []image.EditRequest
	failOn  int // 1-based call index that fails; 0 means never
	err     error
	locator string
}

func (f *fakeGenerator) Edit(ctx context.Context, req image.EditRequest) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.failOn > 0 && len(f.calls) >= f.failOn {
		err := f.err
		if err == nil {
			err = errors.New("generation failed")
		}
		return nil, err
	}
	locator := f.locator
	if locator == "" {
		locator = fmt.Sprintf("https://cdn.example.com/ads/%d.png", len(f.calls))
	}
	return []string{locator}, nil
}

type fakeEnhancer struct {
	prefix string
}

func (f *fakeEnhancer) Enhance(ctx context.Context, description string) (string, error) {
	return f.prefix + description, nil
}

func newTestStudio(gen image.Generator) *Studio {
	return NewStudio(Options{
		Generator:   gen,
		Placeholder: image.NewPlaceholder(),
	})
}

func validSource() image.SourceImage {
	return image.SourceImage{Data: []byte{0x89, 'P', 'N', 'G'}, MIME: "image/png"}
}

func TestGenerateProducesOneAdPerTypeInOrder(t *testing.T) {
	gen := &fakeGenerator{}
	st := newTestStudio(gen)
	sess := NewSession()

	if err := st.Generate(context.Background(), sess, "Blue ceramic mug", validSource()); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	snap := sess.Snapshot()
	if snap.Phase != domain.PhaseGeneration {
		t.Fatalf("Phase = %q, want generation", snap.Phase)
	}
	if snap.Loading {
		t.Fatal("Loading should be cleared when the batch completes")
	}
	if snap.Error != "" {
		t.Fatalf("Error = %q, want empty", snap.Error)
	}
	if snap.Progress != 100 {
		t.Fatalf("Progress = %d, want 100", snap.Progress)
	}

	wantTypes := []string{
		promptcfg.TypeCreativeConcept,
		promptcfg.TypeBenefitHighlight,
		promptcfg.TypeEcommerceStyle,
	}
	if len(snap.Ads) != len(wantTypes) {
		t.Fatalf("got %d ads, want %d", len(snap.Ads), len(wantTypes))
	}
	seenIDs := map[string]bool{}
	for i, ad := range snap.Ads {
		if ad.AdType != wantTypes[i] {
			t.Fatalf("ad %d type = %q, want %q", i, ad.AdType, wantTypes[i])
		}
		if ad.ImageURL == "" {
			t.Fatalf("ad %d has empty image url", i)
		}
		if ad.IsRegenerating {
			t.Fatalf("ad %d is marked regenerating", i)
		}
		if seenIDs[ad.ID] {
			t.Fatalf("duplicate ad id %q", ad.ID)
		}
		seenIDs[ad.ID] = true
		if !strings.Contains(ad.ID, "ad-") {
			t.Fatalf("ad id %q does not embed the ad-type label", ad.ID)
		}
	}

	if len(gen.calls) != 3 {
		t.Fatalf("generator received %d calls, want 3", len(gen.calls))
	}
	wantPrefix := `Create a professional ecommerce ad for this product. The product description is: "Blue ceramic mug"`
	for i, call := range gen.calls {
		if !strings.HasPrefix(call.Prompt, wantPrefix) {
			t.Fatalf("call %d prompt = %q, want prefix %q", i, call.Prompt, wantPrefix)
		}
		if call.Count != 1 {
			t.Fatalf("call %d count = %d, want 1", i, call.Count)
		}
	}
	if gen.calls[0].Prompt == gen.calls[1].Prompt {
		t.Fatal("per-type prompts should differ")
	}
}

func TestGenerateUsesEnhancedDescription(t *testing.T) {
	gen := &fakeGenerator{}
	st := NewStudio(Options{
		Generator: gen,
		Enhancer:  &fakeEnhancer{prefix: "Enhanced: "},
	})
	sess := NewSession()

	if err := st.Generate(context.Background(), sess, "Blue ceramic mug", validSource()); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !strings.Contains(gen.calls[0].Prompt, `"Enhanced: Blue ceramic mug"`) {
		t.Fatalf("prompt does not embed enhanced description: %q", gen.calls[0].Prompt)
	}
}

func TestGenerateFailureSubstitutesWholesaleFallback(t *testing.T) {
	gen := &fakeGenerator{failOn: 2, err: errors.New("invalid image")}
	st := newTestStudio(gen)
	sess := NewSession()

	if err := st.Generate(context.Background(), sess, "Blue ceramic mug", validSource()); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	snap := sess.Snapshot()
	if snap.Error != "invalid image" {
		t.Fatalf("Error = %q, want %q", snap.Error, "invalid image")
	}
	if snap.Loading {
		t.Fatal("Loading should be cleared after a failed batch")
	}
	if len(snap.Ads) != 3 {
		t.Fatalf("got %d ads, want 3 placeholders", len(snap.Ads))
	}
	placeholder := image.NewPlaceholder()
	wantTypes := []string{
		promptcfg.TypeCreativeConcept,
		promptcfg.TypeBenefitHighlight,
		promptcfg.TypeEcommerceStyle,
	}
	for i, ad := range snap.Ads {
		if ad.AdType != wantTypes[i] {
			t.Fatalf("placeholder %d type = %q, want %q", i, ad.AdType, wantTypes[i])
		}
		if ad.ImageURL != placeholder.Stock(wantTypes[i]) {
			t.Fatalf("placeholder %d url = %q, want stock reference", i, ad.ImageURL)
		}
		// The partially generated first ad must not survive.
		if strings.HasPrefix(ad.ImageURL, "https://cdn.example.com/ads/") {
			t.Fatalf("placeholder %d kept an API-sourced image %q", i, ad.ImageURL)
		}
	}
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	st := newTestStudio(&fakeGenerator{})

	if err := st.Generate(context.Background(), NewSession(), "   ", validSource()); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if err := st.Generate(context.Background(), NewSession(), "Blue ceramic mug", image.SourceImage{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func generateBatch(t *testing.T, st *Studio, gen *fakeGenerator) *Session {
	t.Helper()
	sess := NewSession()
	if err := st.Generate(context.Background(), sess, "Blue ceramic mug", validSource()); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	return sess
}

func TestRegenerateReplacesOnlyTargetAd(t *testing.T) {
	gen := &fakeGenerator{}
	st := newTestStudio(gen)
	sess := generateBatch(t, st, gen)

	before := sess.Snapshot().Ads
	target := before[1]
	if err := sess.Rate(target.ID, 4); err != nil {
		t.Fatalf("Rate returned error: %v", err)
	}

	gen.locator = "https://cdn.example.com/ads/regenerated.png"
	st.Regenerate(context.Background(), sess, target.ID)

	after := sess.Snapshot().Ads
	for i, ad := range after {
		if ad.ID != before[i].ID || ad.AdType != before[i].AdType {
			t.Fatalf("ad %d identity changed by regeneration", i)
		}
		if ad.IsRegenerating {
			t.Fatalf("ad %d still marked regenerating", i)
		}
		if ad.ID == target.ID {
			if ad.ImageURL != "https://cdn.example.com/ads/regenerated.png" {
				t.Fatalf("target image url = %q", ad.ImageURL)
			}
			if ad.Rating != 0 {
				t.Fatalf("target rating = %d, want cleared", ad.Rating)
			}
		} else if ad.ImageURL != before[i].ImageURL {
			t.Fatalf("sibling ad %d image changed", i)
		}
	}

	// The regeneration prompt carries the "more creative" instruction.
	last := gen.calls[len(gen.calls)-1]
	if !strings.Contains(last.Prompt, "more creative") {
		t.Fatalf("regeneration prompt missing creative suffix: %q", last.Prompt)
	}
}

func TestRegenerateFailureFallsBackToPlaceholder(t *testing.T) {
	gen := &fakeGenerator{}
	st := newTestStudio(gen)
	sess := generateBatch(t, st, gen)

	target := sess.Snapshot().Ads[0]
	if err := sess.Rate(target.ID, 5); err != nil {
		t.Fatalf("Rate returned error: %v", err)
	}

	gen.failOn = 1 // every subsequent call fails
	st.Regenerate(context.Background(), sess, target.ID)

	snap := sess.Snapshot()
	if snap.Error != "" {
		t.Fatalf("regeneration surfaced a batch error: %q", snap.Error)
	}
	got, _ := sess.Ad(target.ID)
	if got.ImageURL == target.ImageURL {
		t.Fatal("image url should have been replaced by a placeholder")
	}
	if !strings.Contains(got.ImageURL, "picsum.photos") {
		t.Fatalf("fallback url = %q, want randomized placeholder", got.ImageURL)
	}
	if got.Rating != 0 {
		t.Fatalf("rating = %d, want cleared even on fallback", got.Rating)
	}
	if got.IsRegenerating {
		t.Fatal("IsRegenerating should be reset on the failure path")
	}
}

func TestRegenerateUnknownAdIsNoOp(t *testing.T) {
	gen := &fakeGenerator{}
	st := newTestStudio(gen)
	sess := generateBatch(t, st, gen)

	before := sess.Snapshot()
	callsBefore := len(gen.calls)
	st.Regenerate(context.Background(), sess, "missing-id")
	after := sess.Snapshot()

	if len(gen.calls) != callsBefore {
		t.Fatal("regenerating a missing ad must not issue requests")
	}
	for i := range before.Ads {
		if before.Ads[i] != after.Ads[i] {
			t.Fatalf("ad %d changed: %#v vs %#v", i, before.Ads[i], after.Ads[i])
		}
	}
}

func TestRegenerateWithoutInputsFallsBack(t *testing.T) {
	gen := &fakeGenerator{}
	st := newTestStudio(gen)
	sess := generateBatch(t, st, gen)
	target := sess.Snapshot().Ads[0]

	// Simulate a session whose retained inputs were lost.
	sess.mu.Lock()
	sess.description = ""
	sess.source = image.SourceImage{}
	sess.mu.Unlock()

	callsBefore := len(gen.calls)
	st.Regenerate(context.Background(), sess, target.ID)

	if len(gen.calls) != callsBefore {
		t.Fatal("no image request expected when inputs are unavailable")
	}
	got, _ := sess.Ad(target.ID)
	if !strings.Contains(got.ImageURL, "picsum.photos") {
		t.Fatalf("fallback url = %q, want randomized placeholder", got.ImageURL)
	}
	if got.IsRegenerating {
		t.Fatal("IsRegenerating should be reset")
	}
}

func TestRateBounds(t *testing.T) {
	gen := &fakeGenerator{}
	st := newTestStudio(gen)
	sess := generateBatch(t, st, gen)
	adID := sess.Snapshot().Ads[0].ID

	for _, invalid := range []int{0, 6, -1} {
		if err := sess.Rate(adID, invalid); !errors.Is(err, domain.ErrInvalidRating) {
			t.Fatalf("Rate(%d) = %v, want ErrInvalidRating", invalid, err)
		}
	}
	for _, valid := range []int{1, 5} {
		if err := sess.Rate(adID, valid); err != nil {
			t.Fatalf("Rate(%d) returned error: %v", valid, err)
		}
	}
	if err := sess.Rate("missing-id", 3); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Rate on missing ad = %v, want ErrNotFound", err)
	}
}
