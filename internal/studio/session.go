package studio

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"adstudio/internal/domain"
	"adstudio/internal/providers/image"
)

// Session owns the state of one generation flow. All reads and writes go
// through its methods; every transition is applied atomically under the lock
// and external readers only ever see immutable snapshots.
type Session struct {
	mu sync.Mutex

	id              string
	phase           domain.Phase
	loading         bool
	err             string
	progress        int
	progressMessage string
	description     string
	source          image.SourceImage
	ads             []domain.GeneratedAd
	createdAt       time.Time
}

// Snapshot is the externally visible view of a session.
type Snapshot struct {
	ID              string               `json:"id"`
	Phase           domain.Phase         `json:"phase"`
	Loading         bool                 `json:"loading"`
	Error           string               `json:"error,omitempty"`
	Progress        int                  `json:"progress"`
	ProgressMessage string               `json:"progress_message,omitempty"`
	Ads             []domain.GeneratedAd `json:"ads"`
	CreatedAt       time.Time            `json:"created_at"`
}

// NewSession creates a session in the input-collection phase.
func NewSession() *Session {
	return &Session{
		id:        uuid.NewString(),
		phase:     domain.PhaseInput,
		createdAt: time.Now().UTC(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	ads := make([]domain.GeneratedAd, len(s.ads))
	copy(ads, s.ads)
	return Snapshot{
		ID:              s.id,
		Phase:           s.phase,
		Loading:         s.loading,
		Error:           s.err,
		Progress:        s.progress,
		ProgressMessage: s.progressMessage,
		Ads:             ads,
		CreatedAt:       s.createdAt,
	}
}

// beginGeneration transitions Input -> Generation: prior results and error are
// discarded, progress resets, and the submitted inputs are retained for later
// regeneration calls.
func (s *Session) beginGeneration(description string, source image.SourceImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = domain.PhaseGeneration
	s.loading = true
	s.err = ""
	s.progress = 0
	s.progressMessage = ""
	s.description = strings.TrimSpace(description)
	s.source = source
	s.ads = nil
}

// inputs returns the retained submission inputs for regeneration.
func (s *Session) inputs() (string, image.SourceImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.description, s.source
}

// advanceProgress raises the cosmetic progress value; it never moves backwards.
func (s *Session) advanceProgress(value int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value > 100 {
		value = 100
	}
	if value > s.progress {
		s.progress = value
	}
	if message != "" {
		s.progressMessage = message
	}
}

// completeProgress forces the indicator to 100% with a completion message.
func (s *Session) completeProgress(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = 100
	s.progressMessage = message
}

// setAds installs a finished batch.
func (s *Session) setAds(ads []domain.GeneratedAd) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ads = ads
}

// fail records the batch-level error message.
func (s *Session) fail(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = message
}

// finish clears the loading flag, revealing results.
func (s *Session) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

// Rate stores a rating on one ad. Bounds are enforced at the presentation
// boundary before this is reached; they are re-checked here as the contract.
func (s *Session) Rate(adID string, value int) error {
	if value < domain.MinRating || value > domain.MaxRating {
		return domain.ErrInvalidRating
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.ads {
		if s.ads[i].ID == adID {
			s.ads[i].Rating = value
			return nil
		}
	}
	return domain.ErrNotFound
}

// Ad returns a copy of one ad.
func (s *Session) Ad(adID string) (domain.GeneratedAd, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ad := range s.ads {
		if ad.ID == adID {
			return ad, true
		}
	}
	return domain.GeneratedAd{}, false
}

// beginRegeneration flips IsRegenerating for the target ad, leaving siblings
// untouched. It reports false when the ad does not exist, which makes the
// whole regeneration a no-op.
func (s *Session) beginRegeneration(adID string) (domain.GeneratedAd, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.ads {
		if s.ads[i].ID == adID {
			s.ads[i].IsRegenerating = true
			return s.ads[i], true
		}
	}
	return domain.GeneratedAd{}, false
}

// completeRegeneration replaces the ad's image, clears its rating (the
// underlying image changed) and always resets the regenerating flag.
func (s *Session) completeRegeneration(adID, imageURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.ads {
		if s.ads[i].ID == adID {
			s.ads[i].ImageURL = imageURL
			s.ads[i].Rating = 0
			s.ads[i].IsRegenerating = false
			return
		}
	}
}
