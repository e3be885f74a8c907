package image

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMissingImageData indicates that the response parsed as JSON but carried
// no recognizable image locator anywhere.
var ErrMissingImageData = errors.New("imagegen: missing image data in response")

type editResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// extractLocator pulls an image locator (URL or embedded data reference) out
// of a generation response. Extraction strategies are tried in order: the
// documented data-list shape first, then a generic recursive scan of the whole
// document for anything locator-shaped.
func extractLocator(raw []byte) (string, error) {
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", fmt.Errorf("imagegen: decode response: %w", err)
	}
	strategies := []func([]byte) (string, bool){
		extractFromDataList,
		extractFromScan,
	}
	for _, strategy := range strategies {
		if locator, ok := strategy(raw); ok {
			return locator, nil
		}
	}
	return "", ErrMissingImageData
}

func extractFromDataList(raw []byte) (string, bool) {
	var decoded editResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", false
	}
	if len(decoded.Data) == 0 {
		return "", false
	}
	first := decoded.Data[0]
	if url := strings.TrimSpace(first.URL); url != "" {
		return url, true
	}
	if b64 := strings.TrimSpace(first.B64JSON); b64 != "" {
		return "data:image/png;base64," + b64, true
	}
	return "", false
}

func extractFromScan(raw []byte) (string, bool) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", false
	}
	return scanForLocator(doc)
}

// scanForLocator walks maps (in sorted key order, so results are stable) and
// slices depth-first, returning the first string that looks like an image
// locator.
func scanForLocator(node any) (string, bool) {
	switch v := node.(type) {
	case string:
		if looksLikeLocator(v) {
			return strings.TrimSpace(v), true
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if locator, ok := scanForLocator(v[k]); ok {
				return locator, true
			}
		}
	case []any:
		for _, item := range v {
			if locator, ok := scanForLocator(item); ok {
				return locator, true
			}
		}
	}
	return "", false
}

func looksLikeLocator(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "data:image/")
}
