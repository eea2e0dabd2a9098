package check

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultNetworkTimeout applies when the run does not configure one.
const DefaultNetworkTimeout = 10 * time.Second

// ErrNetworkDisabled is returned by Context.HTTPClient when network access is off.
var ErrNetworkDisabled = errors.New("network access disabled")

// Context is what a check sees of the run: its configuration, the
// network policy and its own metadata. Each invocation gets its own copy.
type Context struct {
	SkipNetwork    bool
	NetworkTimeout time.Duration
	Configuration  map[string]any
	Metadata       map[string]any

	base   context.Context
	client *http.Client
}

// NewContext returns a run-level context.
func NewContext(skipNetwork bool, timeout time.Duration) *Context {
	if timeout <= 0 {
		timeout = DefaultNetworkTimeout
	}
	return &Context{
		SkipNetwork:    skipNetwork,
		NetworkTimeout: timeout,
		Configuration:  map[string]any{},
	}
}

// Specialize copies the context for one check. Profile defaults are
// overlaid with the user's configuration for that check id.
func (c *Context) Specialize(chk *Check, defaults, user map[string]any) *Context {
	cfg := make(map[string]any, len(defaults)+len(user))
	for k, v := range defaults {
		cfg[k] = v
	}
	for k, v := range user {
		cfg[k] = v
	}
	out := *c
	out.Configuration = cfg
	out.Metadata = chk.Metadata
	return &out
}

// WithBase attaches the cancellation context of the run.
func (c *Context) WithBase(ctx context.Context) *Context {
	out := *c
	out.base = ctx
	return &out
}

// Ctx returns the run's cancellation context.
func (c *Context) Ctx() context.Context {
	if c.base == nil {
		return context.Background()
	}
	return c.base
}

// WithHTTPClient replaces the client returned by HTTPClient. Tests use it.
func (c *Context) WithHTTPClient(client *http.Client) *Context {
	out := *c
	out.client = client
	return &out
}

// HTTPClient returns a client bounded by the network timeout, or
// ErrNetworkDisabled.
func (c *Context) HTTPClient() (*http.Client, error) {
	if c.SkipNetwork {
		return nil, ErrNetworkDisabled
	}
	if c.client != nil {
		return c.client, nil
	}
	timeout := c.NetworkTimeout
	if timeout <= 0 {
		timeout = DefaultNetworkTimeout
	}
	return &http.Client{Timeout: timeout}, nil
}

// ConfigString returns a string configuration value.
func (c *Context) ConfigString(key string) (string, bool) {
	v, ok := c.Configuration[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ConfigInt returns an integer configuration value. YAML and JSON decoders
// produce different numeric types, all of which are accepted.
func (c *Context) ConfigInt(key string) (int64, bool) {
	v, ok := c.Configuration[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), true
	case string:
		var i int64
		if _, err := fmt.Sscan(n, &i); err == nil {
			return i, true
		}
	}
	return 0, false
}
