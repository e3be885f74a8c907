package prompt

import (
	"context"
	"strings"
)

// Enhancer rewrites a raw product description into a richer one for image
// generation. Enhancement is best-effort: implementations backed by a remote
// model fall back to returning the original text rather than failing.
type Enhancer interface {
	Enhance(ctx context.Context, description string) (string, error)
}

// PassthroughEnhancer returns the description unchanged. It is the terminal
// fallback for remote enhancers.
type PassthroughEnhancer struct{}

func NewPassthroughEnhancer() *PassthroughEnhancer {
	return &PassthroughEnhancer{}
}

func (p *PassthroughEnhancer) Enhance(ctx context.Context, description string) (string, error) {
	return strings.TrimSpace(description), nil
}

var _ Enhancer = (*PassthroughEnhancer)(nil)
