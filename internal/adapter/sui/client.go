package sui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"deceit/internal/app/ports"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const (
	DefaultTimeout = 10 * time.Second
	defaultBackoff = 250 * time.Millisecond
	maxBackoff     = 4 * time.Second
)

var ErrUpstream = fmt.Errorf("sui: %w", ports.ErrUpstream)

// StatusError is a non-2xx answer from a Sui endpoint.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sui %s: status %d: %s", e.URL, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUpstream }

func (e *StatusError) retryable() bool {
	return e.Status == consts.StatusTooManyRequests || e.Status >= 500
}

type Config struct {
	GraphQLURL string
	RPCURL     string
	Timeout    time.Duration
	// Retries is the number of extra attempts after a transport failure or
	// a 5xx/429 answer.
	Retries int
	Backoff time.Duration
}

// Client talks to a Sui full node: GraphQL for paged dynamic fields and
// balances, JSON-RPC for object content.
type Client struct {
	cfg  Config
	http *client.Client
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.GraphQLURL) == "" && strings.TrimSpace(cfg.RPCURL) == "" {
		return nil, fmt.Errorf("sui: no endpoint configured")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultBackoff
	}
	hc, err := client.NewClient(
		client.WithDialTimeout(cfg.Timeout),
		client.WithClientReadTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("sui: build http client: %w", err)
	}
	return &Client{cfg: cfg, http: hc}, nil
}

// postJSON sends payload as a JSON POST and returns the raw body of a 2xx
// answer.
func (c *Client) postJSON(ctx context.Context, url string, payload any) ([]byte, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("sui: endpoint is not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var out []byte
	err = retry(ctx, c.cfg.Retries+1, c.cfg.Backoff, func() error {
		req := protocol.AcquireRequest()
		resp := protocol.AcquireResponse()
		defer protocol.ReleaseRequest(req)
		defer protocol.ReleaseResponse(resp)

		req.SetRequestURI(url)
		req.SetMethod(consts.MethodPost)
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(body)

		if err := c.http.DoTimeout(ctx, req, resp, c.cfg.Timeout); err != nil {
			return fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		if code := resp.StatusCode(); code/100 != 2 {
			snippet := resp.Body()
			if len(snippet) > 512 {
				snippet = snippet[:512]
			}
			return &StatusError{URL: url, Status: code, Body: strings.TrimSpace(string(snippet))}
		}
		out = append([]byte(nil), resp.Body()...)
		return nil
	})
	return out, err
}

// retry grows the delay between attempts exponentially up to maxBackoff.
// Client-side status errors are returned without retrying.
func retry(ctx context.Context, attempts int, initial time.Duration, fn func() error) error {
	delay := initial
	var err error
	for i := 0; i < max(1, attempts); i++ {
		if i > 0 {
			t := time.NewTimer(delay)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			}
			delay = min(delay*2, maxBackoff)
		}
		if err = fn(); err == nil {
			return nil
		}
		var se *StatusError
		if errors.As(err, &se) && !se.retryable() {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}
