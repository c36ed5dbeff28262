package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

const defaultTimeout = 30 * time.Second

// ESClient is a thin wrapper around the official Elasticsearch client.
type ESClient struct {
	es *elasticsearch.Client
}

var _ Client = (*ESClient)(nil)
var _ Pinger = (*ESClient)(nil)

type esOptions struct {
	username  string
	password  string
	timeout   time.Duration
	transport http.RoundTripper
}

// Option tweaks the Elasticsearch client.
type Option func(*esOptions)

// WithBasicAuth sets basic-auth credentials. Empty values leave the client anonymous.
func WithBasicAuth(username, password string) Option {
	return func(o *esOptions) {
		if username != "" && password != "" {
			o.username = username
			o.password = password
		}
	}
}

// WithTimeout bounds how long a single engine round-trip may wait for response headers.
func WithTimeout(d time.Duration) Option {
	return func(o *esOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithTransport overrides the HTTP transport (useful for tests).
func WithTransport(rt http.RoundTripper) Option {
	return func(o *esOptions) {
		o.transport = rt
	}
}

// NewESClient connects to the given addresses. Retries are disabled: a failed
// round-trip is reported to the caller as is.
func NewESClient(addresses []string, opts ...Option) (*ESClient, error) {
	if len(addresses) == 0 {
		return nil, errors.New("search: at least one address is required")
	}

	o := esOptions{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	transport := o.transport
	if transport == nil {
		base := http.DefaultTransport.(*http.Transport).Clone()
		base.ResponseHeaderTimeout = o.timeout
		transport = base
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    addresses,
		Username:     o.username,
		Password:     o.password,
		Transport:    transport,
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("search: create client: %w", err)
	}
	return &ESClient{es: es}, nil
}

// Search runs body against index and decodes the response.
func (c *ESClient) Search(ctx context.Context, index string, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("search: marshal query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
		return nil, decodeError(res.StatusCode, data)
	}

	var out Response
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("search %s: decode response: %w", index, err)
	}
	return &out, nil
}

// Ping checks that the cluster answers.
func (c *ESClient) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: ping: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return &Error{Status: res.StatusCode, Reason: "ping failed"}
	}
	return nil
}
