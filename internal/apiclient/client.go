// Package apiclient is the typed REST client for the clinic backend.
// All remote reads and mutations in the product go through it.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/psiclinic/clinic-cli/pkg/circuitbreaker"
	"github.com/psiclinic/clinic-cli/pkg/errors"
	"github.com/psiclinic/clinic-cli/pkg/logger"
	"github.com/psiclinic/clinic-cli/pkg/metrics"
)

// Config holds client construction parameters.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	RatePerSecond  float64
	RateBurst      int
	BreakerMax     int
	BreakerTimeout time.Duration

	// OnUnauthorized runs once per 401 response, after the in-memory
	// token has been cleared. Front ends use it to route to sign-in.
	OnUnauthorized func()
}

// tokenHolder is the single mutable token the interceptor reads. Updating
// it at sign-in means requests built after the write, including ones
// queued before it, pick up the fresh token.
type tokenHolder struct {
	mu    sync.RWMutex
	token string
}

func (h *tokenHolder) get() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *tokenHolder) set(token string) {
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()
}

// Client is the clinic API client. Zero-value is not usable; construct
// with New.
type Client struct {
	baseURL string
	httpc   *http.Client
	token   *tokenHolder
	limiter *rate.Limiter
	breaker *circuitbreaker.CircuitBreaker
	metrics *metrics.Metrics
	log     *logger.Logger

	onUnauthorized func()
}

func New(cfg Config, m *metrics.Metrics, log *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 20
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 10
	}
	if log == nil {
		log = logger.NewLogger(nil)
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		token:   &tokenHolder{},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		breaker: circuitbreaker.New(circuitbreaker.Settings{
			Name:        "clinic-api",
			MaxFailures: cfg.BreakerMax,
			Timeout:     cfg.BreakerTimeout,
		}),
		metrics:        m,
		log:            log.WithComponent("apiclient"),
		onUnauthorized: cfg.OnUnauthorized,
	}
}

// SetToken imperatively replaces the bearer token used for every
// subsequent request.
func (c *Client) SetToken(token string) {
	c.token.set(token)
}

// Token returns the current bearer token, empty when signed out.
func (c *Client) Token() string {
	return c.token.get()
}

// envelope is the single response schema every endpoint must produce.
// Anything else is a shape mismatch and fails fast.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do issues one request. req (when non-nil) is JSON-encoded; res (when
// non-nil) receives the decoded data field of the response envelope.
func (c *Client) do(ctx context.Context, resource, method, path string, params url.Values, req, res interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var body io.Reader
	if req != nil {
		b := &bytes.Buffer{}
		if err := json.NewEncoder(b).Encode(req); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = b
	}

	u := c.baseURL + path
	if len(params) != 0 {
		u += "?" + params.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if req != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.token.get(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	httpReq.Header.Set("X-Request-ID", uuid.New().String())

	start := time.Now()
	var httpRes *http.Response
	err = c.breaker.Execute(func() error {
		var execErr error
		httpRes, execErr = c.httpc.Do(httpReq)
		return execErr
	})
	c.observe(resource, method, httpRes, start, err)
	if err != nil {
		if _, open := err.(*circuitbreaker.ErrOpen); open {
			return errors.Unavailable("clinic API temporarily unavailable", err)
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer httpRes.Body.Close()

	return c.decode(resource, method, path, httpRes, res)
}

func (c *Client) decode(resource, method, path string, httpRes *http.Response, res interface{}) error {
	var env envelope
	decodeErr := json.NewDecoder(httpRes.Body).Decode(&env)

	if httpRes.StatusCode == http.StatusUnauthorized {
		// Uniform policy: a 401 always clears the in-memory token and
		// notifies the front end, never a per-call-site decision.
		c.token.set("")
		c.log.Warn("unauthorized response, token cleared", "method", method, "path", path)
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return remoteError(httpRes.StatusCode, env)
	}

	if decodeErr != nil {
		if httpRes.StatusCode >= 400 {
			return errors.FromStatusCode(httpRes.StatusCode, "")
		}
		return errors.NewInternal(fmt.Errorf("malformed response for %s %s: %w", method, path, decodeErr))
	}

	if httpRes.StatusCode >= 400 || !env.Success {
		return remoteError(httpRes.StatusCode, env)
	}

	if res != nil {
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return errors.NewInternal(fmt.Errorf("empty data for %s %s", method, path))
		}
		if err := json.Unmarshal(env.Data, res); err != nil {
			return errors.NewInternal(fmt.Errorf("unexpected data shape for %s %s: %w", method, path, err))
		}
	}
	return nil
}

func remoteError(status int, env envelope) error {
	message := ""
	if env.Error != nil {
		message = env.Error.Message
	}
	return errors.FromStatusCode(status, message)
}

func (c *Client) observe(resource, method string, res *http.Response, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	c.metrics.RequestLatency.WithLabelValues(resource, method).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.RequestFailures.WithLabelValues(resource, method).Inc()
		return
	}
	c.metrics.RequestsTotal.WithLabelValues(resource, method, strconv.Itoa(res.StatusCode)).Inc()
}
