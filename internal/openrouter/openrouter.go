// Package openrouter is a typed client for the OpenRouter LLM aggregation
// API. It exposes three operations: text completion, image generation and
// model listing. OpenRouter fronts many third party providers which embed
// the same logical payload in inconsistent reply shapes, so the client's
// main job is normalizing those replies into one decoded result, or a
// failure that says why.
//
// The client performs a single attempt per call: no retries and no internal
// timeouts. Callers needing deadlines or backoff wrap the call site with
// context deadlines or their own retry layer.
package openrouter

import "net/http"

// Client calls the OpenRouter API. Construct with New; configuration is
// immutable afterwards, so a Client is safe for concurrent use.
type Client struct {
	conf   Config
	client *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying *http.Client, mostly useful for
// injecting test transports.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.client = h
	}
}

// New validates conf and returns a ready client. Validation happens once,
// here: a missing credential or default model id fails fast, before any
// network I/O ever happens.
func New(conf Config, opts ...Option) (*Client, error) {
	if err := conf.validate(); err != nil {
		return nil, err
	}
	c := &Client{
		conf:   conf,
		client: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns a copy of the validated configuration.
func (c *Client) Config() Config {
	return c.conf
}
