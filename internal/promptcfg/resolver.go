package promptcfg

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/sync/singleflight"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
)

// Each overridable field is validated against its own schema so a malformed
// field drops only itself: a valid basePrompt still applies when the adTypes
// list is broken, and vice versa.
const (
	basePromptSchema = `{"type": "string", "minLength": 1}`

	adTypesSchema = `{
		"type": "array",
		"minItems": 1,
		"items": {
			"type": "object",
			"properties": {
				"type": {"type": "string", "minLength": 1},
				"prompt": {"type": "string"}
			},
			"required": ["type", "prompt"]
		}
	}`
)

// Options configures the remote prompt-config resolver.
type Options struct {
	URL            string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Resolver layers an optional remote prompt-config document over built-in
// defaults. Fetch or parse failures never interrupt callers; the resolver
// always produces a usable configuration.
type Resolver struct {
	url        string
	httpClient *http.Client
	logger     *infra.Logger
	basePrompt *jsonschema.Schema
	adTypes    *jsonschema.Schema
	group      singleflight.Group
}

type remoteDocument struct {
	BasePrompt string `json:"basePrompt"`
	AdTypes    []struct {
		Type   string `json:"type"`
		Prompt string `json:"prompt"`
	} `json:"adTypes"`
}

// NewResolver constructs a resolver. An empty URL disables remote fetching
// entirely and Resolve returns the defaults.
func NewResolver(opts Options) (*Resolver, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	basePrompt, err := compileSchema("base-prompt.json", basePromptSchema)
	if err != nil {
		return nil, err
	}
	adTypes, err := compileSchema("ad-types.json", adTypesSchema)
	if err != nil {
		return nil, err
	}
	return &Resolver{
		url:        strings.TrimSpace(opts.URL),
		httpClient: httpClient,
		logger:     logger,
		basePrompt: basePrompt,
		adTypes:    adTypes,
	}, nil
}

func compileSchema(name, doc string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(doc)); err != nil {
		return nil, err
	}
	return compiler.Compile(name)
}

// Resolve fetches the remote document and merges it over the defaults. Each
// top-level generation and each regeneration triggers a fresh fetch; the
// singleflight group only collapses fetches that are in flight at the same
// moment, it never caches results.
func (r *Resolver) Resolve(ctx context.Context) domain.PromptConfig {
	cfg := Defaults()
	if r == nil || r.url == "" {
		return cfg
	}
	v, _, _ := r.group.Do(r.url, func() (any, error) {
		return r.fetch(ctx), nil
	})
	doc, ok := v.(*remoteDocument)
	if !ok || doc == nil {
		return cfg
	}
	return merge(cfg, doc)
}

func (r *Resolver) fetch(ctx context.Context) *remoteDocument {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		r.logger.Debug().Err(err).Msg("promptcfg: build request")
		return nil
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Debug().Err(err).Msg("promptcfg: fetch remote config")
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		r.logger.Debug().Int("status", resp.StatusCode).Msg("promptcfg: remote config unavailable")
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		r.logger.Debug().Err(err).Msg("promptcfg: read remote config")
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		r.logger.Debug().Err(err).Msg("promptcfg: decode remote config")
		return nil
	}
	doc := &remoteDocument{}
	if field, ok := fields["basePrompt"]; ok && r.validField("basePrompt", r.basePrompt, field) {
		_ = json.Unmarshal(field, &doc.BasePrompt)
	}
	if field, ok := fields["adTypes"]; ok && r.validField("adTypes", r.adTypes, field) {
		_ = json.Unmarshal(field, &doc.AdTypes)
	}
	return doc
}

// validField checks one overridable field against its schema. Invalid fields
// are dropped individually and keep their built-in default.
func (r *Resolver) validField(name string, schema *jsonschema.Schema, raw json.RawMessage) bool {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		r.logger.Debug().Err(err).Str("field", name).Msg("promptcfg: decode remote config field")
		return false
	}
	if err := schema.Validate(generic); err != nil {
		r.logger.Debug().Err(err).Str("field", name).Msg("promptcfg: remote config field failed validation")
		return false
	}
	return true
}

// merge applies total, per-field override rules: a non-empty basePrompt
// replaces the default template, a non-empty adTypes list replaces the default
// list wholesale. Blank entries inside the list are skipped.
func merge(cfg domain.PromptConfig, doc *remoteDocument) domain.PromptConfig {
	if base := strings.TrimSpace(doc.BasePrompt); base != "" {
		cfg.BasePrompt = base
	}
	if len(doc.AdTypes) > 0 {
		var specs []domain.AdTypeSpec
		for _, t := range doc.AdTypes {
			label := strings.TrimSpace(t.Type)
			if label == "" {
				continue
			}
			specs = append(specs, domain.AdTypeSpec{Type: label, Prompt: strings.TrimSpace(t.Prompt)})
		}
		if len(specs) > 0 {
			cfg.AdTypes = specs
		}
	}
	return cfg
}
