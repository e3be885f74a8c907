package image

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type stubTransport struct {
	status int
	body   []byte
	mime   string
	err    error
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	header := http.Header{}
	if s.mime != "" {
		header.Set("Content-Type", s.mime)
	}
	return &http.Response{
		StatusCode: s.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(string(s.body))),
	}, nil
}

func TestNormalizeSourceInlineData(t *testing.T) {
	got, err := normalizeSource(context.Background(), http.DefaultClient, SourceImage{
		Data:     []byte{0xde, 0xad},
		MIME:     "image/jpeg",
		Filename: "product.jpg",
	})
	if err != nil {
		t.Fatalf("normalizeSource returned error: %v", err)
	}
	if string(got.data) != string([]byte{0xde, 0xad}) {
		t.Fatalf("data = %v", got.data)
	}
	if got.mime != "image/jpeg" || got.filename != "product.jpg" {
		t.Fatalf("mime/filename = %q/%q", got.mime, got.filename)
	}
}

func TestNormalizeSourceDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	got, err := normalizeSource(context.Background(), http.DefaultClient, SourceImage{
		URL: "data:image/png;base64," + payload,
	})
	if err != nil {
		t.Fatalf("normalizeSource returned error: %v", err)
	}
	if string(got.data) != "png-bytes" {
		t.Fatalf("data = %q", got.data)
	}
	if got.mime != "image/png" {
		t.Fatalf("mime = %q", got.mime)
	}
}

func TestNormalizeSourceBareBase64(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("raw-bytes"))
	got, err := normalizeSource(context.Background(), http.DefaultClient, SourceImage{URL: payload})
	if err != nil {
		t.Fatalf("normalizeSource returned error: %v", err)
	}
	if string(got.data) != "raw-bytes" {
		t.Fatalf("data = %q", got.data)
	}
}

func TestNormalizeSourceRemoteURL(t *testing.T) {
	client := &http.Client{Transport: &stubTransport{
		status: http.StatusOK,
		body:   []byte("downloaded"),
		mime:   "image/webp",
	}}
	got, err := normalizeSource(context.Background(), client, SourceImage{URL: "https://cdn.example.com/product.webp"})
	if err != nil {
		t.Fatalf("normalizeSource returned error: %v", err)
	}
	if string(got.data) != "downloaded" || got.mime != "image/webp" {
		t.Fatalf("blob = %q/%q", got.data, got.mime)
	}
}

func TestNormalizeSourceRemoteFailure(t *testing.T) {
	client := &http.Client{Transport: &stubTransport{status: http.StatusNotFound}}
	_, err := normalizeSource(context.Background(), client, SourceImage{URL: "https://cdn.example.com/missing.png"})
	if !errors.Is(err, ErrNoSourceImage) {
		t.Fatalf("err = %v, want ErrNoSourceImage", err)
	}
}

func TestNormalizeSourceEmpty(t *testing.T) {
	_, err := normalizeSource(context.Background(), http.DefaultClient, SourceImage{})
	if !errors.Is(err, ErrNoSourceImage) {
		t.Fatalf("err = %v, want ErrNoSourceImage", err)
	}
}

func TestNormalizeSourceGarbageReference(t *testing.T) {
	_, err := normalizeSource(context.Background(), http.DefaultClient, SourceImage{URL: "!!not-base64!!"})
	if !errors.Is(err, ErrNoSourceImage) {
		t.Fatalf("err = %v, want ErrNoSourceImage", err)
	}
}
