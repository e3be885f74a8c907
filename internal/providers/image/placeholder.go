package image

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Placeholder supplies stock creative references when real generation is
// unavailable, so the interface is never left empty.
type Placeholder struct{}

func NewPlaceholder() *Placeholder {
	return &Placeholder{}
}

var stockImages = map[string]string{
	"creative concept ad":  "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=1024&h=1024&fit=crop",
	"benefit highlight ad": "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=1024&h=1024&fit=crop",
	"ecommerce-style ad":   "https://images.unsplash.com/photo-1526170375885-4d8ecf77b99f?w=1024&h=1024&fit=crop",
}

const genericStockImage = "https://images.unsplash.com/photo-1472851294608-062f824d29cc?w=1024&h=1024&fit=crop"

// Stock returns the fixed placeholder reference for an ad type.
func (p *Placeholder) Stock(adType string) string {
	if url, ok := stockImages[strings.ToLower(strings.TrimSpace(adType))]; ok {
		return url
	}
	return genericStockImage
}

// Random returns a randomized placeholder reference, used when a single
// regeneration falls back.
func (p *Placeholder) Random() string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/1024/1024", uuid.NewString()[:8])
}
