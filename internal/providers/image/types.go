package image

import "context"

// SourceImage describes the uploaded product image in whichever shape it
// arrived: raw bytes, a data: URI, a bare base64 string, or a remote URL.
type SourceImage struct {
	Data     []byte
	URL      string
	MIME     string
	Filename string
}

// IsZero reports whether no image reference was supplied at all.
func (s SourceImage) IsZero() bool {
	return len(s.Data) == 0 && s.URL == ""
}

// EditRequest is a normalized image-edit request. Count locators are produced
// by sequential calls against the edit endpoint, never concurrent ones.
type EditRequest struct {
	Prompt  string
	Source  SourceImage
	Count   int
	Size    string
	Quality string
}

// Generator is the contract implemented by image providers.
type Generator interface {
	Edit(ctx context.Context, req EditRequest) ([]string, error)
}
