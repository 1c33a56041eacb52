package pricefeed

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/energyadvisor/auth"
	"github.com/kilianp07/energyadvisor/infra/logger"
)

// Option configures a Client.
type Option func(*Client) error

// WithFormat selects the payload decoder.
func WithFormat(format string) Option {
	return func(c *Client) error {
		dec, ok := decoders[format]
		if !ok {
			return fmt.Errorf("unknown price feed format: %s", format)
		}
		c.format = format
		c.decode = dec
		return nil
	}
}

// WithClientCredentials authenticates requests with an OAuth2 token.
func WithClientCredentials(cred *auth.ClientCred) Option {
	return func(c *Client) error {
		c.cred = cred
		return nil
	}
}

// WithBearerToken authenticates requests with a static token.
func WithBearerToken(token string) Option {
	return func(c *Client) error {
		c.token = token
		return nil
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) error {
		if h == nil {
			return fmt.Errorf("http client is nil")
		}
		c.http = h
		return nil
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.http.Timeout = d
		return nil
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) error {
		if l != nil {
			c.log = l
		}
		return nil
	}
}
