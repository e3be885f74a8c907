package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"adstudio/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("imagegen: api key is required")

// Options configures the OpenAI image-edit client.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestDelay   time.Duration
	RequestTimeout time.Duration
}

// Client performs multipart calls against the image-edit endpoint. Requests
// are strictly sequential; after each completed request a fixed delay passes
// before the next is issued. No delay precedes the first request or trails
// the last one.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
	delay      time.Duration
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gpt-image-1"
	}
	delay := opts.RequestDelay
	if delay <= 0 {
		delay = time.Second
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     logger,
		delay:      delay,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Edit produces req.Count image locators through sequential edit calls. The
// caller decides whether to retry or fall back; the client never retries.
func (c *Client) Edit(ctx context.Context, req EditRequest) ([]string, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("imagegen: prompt is required")
	}
	source, err := normalizeSource(ctx, c.httpClient, req.Source)
	if err != nil {
		return nil, err
	}
	count := req.Count
	if count <= 0 {
		count = 1
	}
	locators := make([]string, 0, count)
	for i := 0; i < count; i++ {
		locator, err := c.editOnce(ctx, renditionPrompt(prompt, i), source, req.Size, req.Quality)
		if err != nil {
			return nil, err
		}
		locators = append(locators, locator)
		if i < count-1 {
			if err := c.waitBetween(ctx); err != nil {
				return nil, err
			}
		}
	}
	return locators, nil
}

// waitBetween pauses for the configured delay, measured from the completion of
// the previous request so slow responses never shrink the gap.
func (c *Client) waitBetween(ctx context.Context) error {
	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("imagegen: wait between requests: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func (c *Client) editOnce(ctx context.Context, prompt string, source *blob, size, quality string) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fields := map[string]string{
		"model":  c.model,
		"prompt": prompt,
		"n":      "1",
	}
	if size = strings.TrimSpace(size); size != "" {
		fields["size"] = size
	}
	if quality = strings.TrimSpace(quality); quality != "" {
		fields["quality"] = quality
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return "", fmt.Errorf("imagegen: write field %s: %w", name, err)
		}
	}
	part, err := writer.CreateFormFile("image", source.filename)
	if err != nil {
		return "", fmt.Errorf("imagegen: create image part: %w", err)
	}
	if _, err := part.Write(source.data); err != nil {
		return "", fmt.Errorf("imagegen: write image part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("imagegen: close multipart body: %w", err)
	}

	endpoint := c.baseURL + "/images/edits"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("imagegen: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("imagegen: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("imagegen: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var envelope errorEnvelope
		if err := json.Unmarshal(raw, &envelope); err == nil && strings.TrimSpace(envelope.Error.Message) != "" {
			return "", errors.New(strings.TrimSpace(envelope.Error.Message))
		}
		return "", fmt.Errorf("imagegen: image edit failed with status %d", resp.StatusCode)
	}
	locator, err := extractLocator(raw)
	if err != nil {
		return "", err
	}
	c.logger.Debug().
		Str("model", c.model).
		Str("size", size).
		Msg("imagegen: generated image asset")
	return locator, nil
}

// renditionPrompt appends a per-iteration distinguishing suffix so repeated
// calls for the same logical ad are never byte-identical.
func renditionPrompt(prompt string, index int) string {
	return fmt.Sprintf("%s\n\nRendition #%d (variation token %s).", prompt, index+1, uuid.NewString()[:8])
}
