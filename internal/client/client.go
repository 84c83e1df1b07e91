// Package client talks to the backend guide store. The core treats
// it as a plain CRUD contract; conflict detection and confirmation
// dialogs live in the surrounding shell.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/guidecraft/guidecraft/pkg/guide"
)

// Metadata describes a stored guide resource.
type Metadata struct {
	ResourceName string    `json:"resourceName"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// Backend is the remote guide CRUD contract. A failed call never
// rolls back in-memory editor state; callers surface the error and
// keep editing.
type Backend interface {
	Save(ctx context.Context, g guide.Guide, resourceName string, meta *Metadata) (*Metadata, error)
	List(ctx context.Context) ([]guide.Guide, error)
	Delete(ctx context.Context, resourceName string) error
}

// HTTPBackend implements Backend against a JSON HTTP API.
type HTTPBackend struct {
	base   *url.URL
	client *http.Client
	logger *zap.Logger
}

var _ Backend = (*HTTPBackend)(nil)

func NewHTTPBackend(baseURL string, logger *zap.Logger, opts ...Option) (*HTTPBackend, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid backend URL")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	transport := http.DefaultTransport
	for _, opt := range opts {
		transport = opt(transport)
	}

	return &HTTPBackend{
		base:   base,
		client: &http.Client{Transport: transport, Timeout: 30 * time.Second},
		logger: logger,
	}, nil
}

type saveRequest struct {
	Guide        guide.Guide `json:"guide"`
	ResourceName string      `json:"resourceName,omitempty"`
	Metadata     *Metadata   `json:"metadata,omitempty"`
}

func (b *HTTPBackend) Save(ctx context.Context, g guide.Guide, resourceName string, meta *Metadata) (*Metadata, error) {
	payload := saveRequest{Guide: g, ResourceName: resourceName, Metadata: meta}
	var result Metadata
	if err := b.do(ctx, http.MethodPost, "guides", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *HTTPBackend) List(ctx context.Context) ([]guide.Guide, error) {
	var result struct {
		Guides []guide.Guide `json:"guides"`
	}
	if err := b.do(ctx, http.MethodGet, "guides", nil, &result); err != nil {
		return nil, err
	}
	return result.Guides, nil
}

func (b *HTTPBackend) Delete(ctx context.Context, resourceName string) error {
	return b.do(ctx, http.MethodDelete, "guides/"+url.PathEscape(resourceName), nil, nil)
}

func (b *HTTPBackend) do(ctx context.Context, method, path string, payload, result interface{}) error {
	target := b.base.JoinPath(path)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return errors.WithStack(err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return errors.WithStack(err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "backend request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		b.logger.Debug("backend error response",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", data),
		)
		return errors.Errorf("backend responded %d for %s %s", resp.StatusCode, method, path)
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return errors.Wrap(err, "decoding backend response")
	}
	return nil
}

// Option wraps the backend transport, typically to inject headers.
type Option func(http.RoundTripper) http.RoundTripper

func WithTokenGetter(getter func() (string, error)) Option {
	return setHeaderFn("Authorization", func() (string, error) {
		token, err := getter()
		if err != nil {
			return "", err
		}
		return "Bearer " + token, nil
	})
}

func WithUserAgent(version string) Option {
	return setHeaderFn("User-Agent", func() (string, error) {
		return fmt.Sprintf("guidecraft/%s", version), nil
	})
}

type headerRoundTripper struct {
	next   http.RoundTripper
	header string
	value  func() (string, error)
}

func (rt headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	value, err := rt.value()
	if err != nil {
		return nil, err
	}
	clone := req.Clone(req.Context())
	clone.Header.Set(rt.header, value)
	return rt.next.RoundTrip(clone)
}

func setHeaderFn(header string, value func() (string, error)) Option {
	return func(next http.RoundTripper) http.RoundTripper {
		return headerRoundTripper{next: next, header: header, value: value}
	}
}
