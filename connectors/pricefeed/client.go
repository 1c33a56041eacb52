package pricefeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/kilianp07/energyadvisor/auth"
	"github.com/kilianp07/energyadvisor/core/price"
	"github.com/kilianp07/energyadvisor/infra/logger"
)

const (
	FormatSensor    = "sensor"
	FormatWholesale = "wholesale"
)

type decodeFunc func(body []byte) (*price.SensorState, error)

var decoders = map[string]decodeFunc{
	FormatSensor:    price.ParseState,
	FormatWholesale: decodeWholesale,
}

// Client is a price.Source reading from an HTTP endpoint. It remembers the
// last document so Watch can tell when prices change.
type Client struct {
	url    string
	format string
	decode decodeFunc
	http   *http.Client
	cred   *auth.ClientCred
	token  string
	log    logger.Logger

	mu        sync.Mutex
	last      *price.SensorState
	listeners []func()
}

// New returns a client for url. The default format is "sensor".
func New(url string, opts ...Option) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("price feed url is required")
	}
	c := &Client{
		url:    url,
		format: FormatSensor,
		decode: decoders[FormatSensor],
		http:   &http.Client{Timeout: 10 * time.Second},
		log:    logger.NopLogger{},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Fetch requests the current document. A 401 with client credentials
// configured drops the cached token and retries once.
func (c *Client) Fetch(ctx context.Context) (*price.SensorState, error) {
	st, status, err := c.fetch(ctx)
	if status == http.StatusUnauthorized && c.cred != nil {
		c.log.Warnf("price feed rejected token, refreshing")
		c.cred.Invalidate()
		st, _, err = c.fetch(ctx)
	}
	if err != nil {
		return nil, err
	}
	c.remember(st)
	return st, nil
}

func (c *Client) fetch(ctx context.Context) (*price.SensorState, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	switch {
	case c.cred != nil:
		if err := c.cred.SetAuthHeader(req); err != nil {
			return nil, 0, fmt.Errorf("failed to set auth header: %w", err)
		}
	case c.token != "":
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &price.ExtractionError{Sensor: c.url, Err: fmt.Errorf("%w: %v", price.ErrSensorUnavailable, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusServiceUnavailable:
		return nil, resp.StatusCode, &price.ExtractionError{Sensor: c.url, Err: price.ErrSensorUnavailable}
	case resp.StatusCode != http.StatusOK:
		return nil, resp.StatusCode, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}
	st, err := c.decode(body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode %s response: %w", c.format, err)
	}
	if st.EntityID == "" {
		st.EntityID = c.url
	}
	return st, resp.StatusCode, nil
}

func (c *Client) remember(st *price.SensorState) {
	c.mu.Lock()
	changed := c.last != nil && c.last.Fingerprint() != st.Fingerprint()
	c.last = st
	listeners := append([]func(){}, c.listeners...)
	c.mu.Unlock()
	if !changed {
		return
	}
	for _, fn := range listeners {
		fn()
	}
}

// OnChange registers fn to run when a fetched document differs from the
// previous one.
func (c *Client) OnChange(fn func()) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Watch polls the endpoint every interval until ctx is done. Fetch errors
// are logged and retried on the next tick.
func (c *Client) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.Fetch(ctx); err != nil {
				c.log.Warnf("price feed poll failed: %v", err)
			}
		}
	}
}
