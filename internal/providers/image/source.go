package image

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrNoSourceImage indicates that no transmittable image could be produced
// from the supplied reference.
var ErrNoSourceImage = errors.New("imagegen: no transmittable source image")

// blob is the source image normalized into multipart-ready bytes.
type blob struct {
	data     []byte
	mime     string
	filename string
}

// normalizeSource converts whatever reference the caller supplied into raw
// bytes: inline data wins, then data: URIs, then remote URLs (downloaded),
// then bare base64 payloads.
func normalizeSource(ctx context.Context, client *http.Client, src SourceImage) (*blob, error) {
	if len(src.Data) > 0 {
		return &blob{
			data:     src.Data,
			mime:     defaultMIME(src.MIME),
			filename: defaultFilename(src.Filename, src.MIME),
		}, nil
	}
	ref := strings.TrimSpace(src.URL)
	if ref == "" {
		return nil, ErrNoSourceImage
	}
	switch {
	case strings.HasPrefix(ref, "data:"):
		return decodeDataURI(ref, src.Filename)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return download(ctx, client, ref, src.Filename)
	default:
		data, err := base64.StdEncoding.DecodeString(ref)
		if err != nil {
			return nil, fmt.Errorf("imagegen: unrecognized source image reference: %w", ErrNoSourceImage)
		}
		return &blob{
			data:     data,
			mime:     defaultMIME(src.MIME),
			filename: defaultFilename(src.Filename, src.MIME),
		}, nil
	}
}

func decodeDataURI(uri, filename string) (*blob, error) {
	rest := strings.TrimPrefix(uri, "data:")
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return nil, fmt.Errorf("imagegen: malformed data uri: %w", ErrNoSourceImage)
	}
	mime := strings.TrimSuffix(meta, ";base64")
	var data []byte
	var err error
	if strings.HasSuffix(meta, ";base64") {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("imagegen: decode data uri: %w", ErrNoSourceImage)
		}
	} else {
		data = []byte(payload)
	}
	if len(data) == 0 {
		return nil, ErrNoSourceImage
	}
	return &blob{data: data, mime: defaultMIME(mime), filename: defaultFilename(filename, mime)}, nil
}

func download(ctx context.Context, client *http.Client, ref, filename string) (*blob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("imagegen: build download request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imagegen: download source image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("imagegen: source image download status %d: %w", resp.StatusCode, ErrNoSourceImage)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("imagegen: read source image: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoSourceImage
	}
	mime := resp.Header.Get("Content-Type")
	return &blob{data: data, mime: defaultMIME(mime), filename: defaultFilename(filename, mime)}, nil
}

func defaultMIME(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if strings.HasPrefix(mime, "image/") {
		return mime
	}
	return "image/png"
}

func defaultFilename(filename, mime string) string {
	filename = strings.TrimSpace(filename)
	if filename != "" {
		return filename
	}
	switch defaultMIME(mime) {
	case "image/jpeg", "image/jpg":
		return "source.jpg"
	case "image/webp":
		return "source.webp"
	default:
		return "source.png"
	}
}
