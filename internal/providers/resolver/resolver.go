package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/GriffinCanCode/storefetch/internal/providers/http/client"
	"github.com/GriffinCanCode/storefetch/internal/providers/scraper"
	"github.com/GriffinCanCode/storefetch/internal/shared/types"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultEndpoint = "https://store.rg-adguard.net/api/GetFiles"
	DefaultType     = "ProductId"
	DefaultRing     = "RP"
	DefaultLang     = "en-US"

	// TypeURL looks a product up by its store detail-page URL
	TypeURL = "url"
)

var (
	// ErrEmptyTarget is returned for a lookup without identifier or URL
	ErrEmptyTarget = errors.New("resolver target is empty")
	// ErrRequest wraps transport failures and an open breaker
	ErrRequest = errors.New("resolver request failed")
)

// StatusError reports a non-2xx resolver response
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("resolver returned %s", e.Status)
	}
	return fmt.Sprintf("resolver returned HTTP %d", e.Code)
}

// Config holds the endpoint and the default form values
type Config struct {
	Endpoint string
	Type     string
	Ring     string
	Lang     string
}

// DefaultConfig returns the public resolver with retail ring settings
func DefaultConfig() Config {
	return Config{
		Endpoint: DefaultEndpoint,
		Type:     DefaultType,
		Ring:     DefaultRing,
		Lang:     DefaultLang,
	}
}

// Query builds a lookup for target using the configured defaults
func (c Config) Query(target string) Query {
	return c.complete(Query{Target: target})
}

func (c Config) complete(q Query) Query {
	if q.Type == "" {
		q.Type = c.Type
	}
	if q.Ring == "" {
		q.Ring = c.Ring
	}
	if q.Lang == "" {
		q.Lang = c.Lang
	}
	return q
}

// Query is one resolver lookup. Type, Ring and Lang are forwarded as given.
type Query struct {
	Type   string `json:"type"`
	Target string `json:"url"`
	Ring   string `json:"ring"`
	Lang   string `json:"lang"`
}

// Form returns the url-encoded form fields the resolver expects
func (q Query) Form() map[string]string {
	return map[string]string{
		"type": q.Type,
		"url":  q.Target,
		"ring": q.Ring,
		"lang": q.Lang,
	}
}

// Resolver posts lookups to the resolver endpoint
type Resolver struct {
	cfg    Config
	client *client.Client
	log    *zap.Logger
}

// New creates a resolver. Empty config fields take the defaults.
func New(cfg Config, c *client.Client, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{cfg: cfg.withDefaults(), client: c, log: log}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Endpoint == "" {
		c.Endpoint = def.Endpoint
	}
	q := def.complete(Query{Type: c.Type, Ring: c.Ring, Lang: c.Lang})
	c.Type, c.Ring, c.Lang = q.Type, q.Ring, q.Lang
	return c
}

// Config returns the effective configuration
func (r *Resolver) Config() Config {
	return r.cfg
}

// Fetch posts the lookup form and returns the page as UTF-8 text
func (r *Resolver) Fetch(ctx context.Context, q Query) (string, error) {
	q.Target = strings.TrimSpace(q.Target)
	if q.Target == "" {
		return "", ErrEmptyTarget
	}
	q = r.cfg.complete(q)

	req, err := r.client.Request(ctx)
	if err != nil {
		return "", err
	}
	req.SetHeader("Accept", "text/html").SetFormData(q.Form())

	resp, err := r.client.ExecuteWithBreaker(func() (*resty.Response, error) {
		resp, err := req.Post(r.cfg.Endpoint)
		if err != nil {
			return nil, err
		}
		// only server-side failures count against the breaker
		if resp.StatusCode() >= http.StatusInternalServerError {
			return resp, &StatusError{Code: resp.StatusCode(), Status: resp.Status()}
		}
		return resp, nil
	})
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return "", statusErr
		}
		return "", fmt.Errorf("%w: %w", ErrRequest, err)
	}
	if !resp.IsSuccess() {
		return "", &StatusError{Code: resp.StatusCode(), Status: resp.Status()}
	}

	r.log.Debug("resolver responded",
		zap.String("type", q.Type),
		zap.String("target", q.Target),
		zap.Int("bytes", len(resp.Body())),
		zap.Duration("elapsed", resp.Time()))

	return scraper.DecodeHTML(resp.Body(), resp.Header().Get("Content-Type")), nil
}

// Resolve fetches the page for q and extracts its file records
func (r *Resolver) Resolve(ctx context.Context, q Query) ([]types.FileDescriptor, error) {
	page, err := r.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	files := scraper.Extract(page)
	if len(files) == 0 {
		r.log.Info("resolver returned no files",
			zap.String("target", strings.TrimSpace(q.Target)),
			zap.String("notice", scraper.Notice(page)))
	}
	return files, nil
}
