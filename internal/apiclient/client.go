// Package apiclient is the typed HTTP client for the CarbonTrack REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/carbontrack/internal/circuitbreaker"
	"github.com/carbontrack/internal/config"
	"github.com/carbontrack/internal/errors"
	"github.com/carbontrack/internal/logging"
	"github.com/carbontrack/internal/retry"
)

// maxResponseBytes bounds how much of a response body is read
const maxResponseBytes = 4 << 20

// Options configures a Client
type Options struct {
	BaseURL          string
	Timeout          time.Duration
	RequestsPerSec   float64
	RetryAttempts    int
	RetryBaseDelay   time.Duration
	BreakerThreshold int
	BreakerCooldown  time.Duration
	HTTPClient       *http.Client
	Logger           *logging.Logger
}

// Client talks to the CarbonTrack backend.
// Every request runs under the caller's context plus a per-request timeout,
// is throttled client-side, and passes through a circuit breaker.
// Idempotent reads are retried on transient failures.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
	retry      *retry.RetryConfig
	breaker    *circuitbreaker.CircuitBreaker
	logger     *logging.Logger
}

// New creates a client from explicit options
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	limit := rate.Inf
	burst := 1
	if opts.RequestsPerSec > 0 {
		limit = rate.Limit(opts.RequestsPerSec)
		if b := int(opts.RequestsPerSec); b > 1 {
			burst = b
		}
	}

	retryCfg := retry.DefaultRetryConfig()
	if opts.RetryAttempts > 0 {
		retryCfg.MaxAttempts = opts.RetryAttempts
	}
	if opts.RetryBaseDelay > 0 {
		retryCfg.InitialDelay = opts.RetryBaseDelay
	}
	retryCfg.ShouldRetry = errors.IsRetryable

	breakerCfg := circuitbreaker.DefaultConfig("carbontrack-api")
	if opts.BreakerThreshold > 0 {
		breakerCfg.MaxFailures = opts.BreakerThreshold
	}
	if opts.BreakerCooldown > 0 {
		breakerCfg.Timeout = opts.BreakerCooldown
	}
	breakerCfg.IsFailure = errors.IsTransient
	breakerCfg.Logger = logger

	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: httpClient,
		timeout:    timeout,
		limiter:    rate.NewLimiter(limit, burst),
		retry:      retryCfg,
		breaker:    circuitbreaker.NewCircuitBreaker(breakerCfg),
		logger:     logger.WithField("component", "apiclient"),
	}
}

// NewFromConfig creates a client from the application config
func NewFromConfig(cfg config.APIConfig, logger *logging.Logger) *Client {
	return New(Options{
		BaseURL:          cfg.BaseURL,
		Timeout:          cfg.RequestTimeout,
		RequestsPerSec:   cfg.RequestsPerSec,
		RetryAttempts:    cfg.RetryAttempts,
		RetryBaseDelay:   cfg.RetryBaseDelay,
		BreakerThreshold: cfg.BreakerThreshold,
		BreakerCooldown:  cfg.BreakerCooldown,
		Logger:           logger,
	})
}

// BaseURL returns the API root the client targets
func (c *Client) BaseURL() string {
	return c.baseURL
}

// response is a completed HTTP exchange with a 2xx status
type response struct {
	status int
	body   []byte
}

// call performs one logical request. GETs are retried; writes are attempted once.
func (c *Client) call(ctx context.Context, method, path, token string, payload interface{}) (*response, error) {
	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.NewInternalError("encode request", err)
		}
		body = encoded
	}

	var resp *response
	attempt := func(ctx context.Context, _ int) error {
		r, err := c.once(ctx, method, path, token, body)
		if err != nil {
			return err
		}
		resp = r
		return nil
	}

	var err error
	if method == http.MethodGet {
		err = retry.Do(ctx, c.retry, attempt)
	} else {
		err = attempt(ctx, 1)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) once(ctx context.Context, method, path, token string, body []byte) (*response, error) {
	var resp *response
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		r, err := c.roundTrip(ctx, method, path, token, body)
		resp = r
		return err
	})
	if stderrors.Is(err, circuitbreaker.ErrCircuitOpen) || stderrors.Is(err, circuitbreaker.ErrTooManyRequests) {
		return nil, errors.NewNetworkError(method+" "+path, err)
	}
	return resp, err
}

func (c *Client) roundTrip(ctx context.Context, method, path, token string, body []byte) (*response, error) {
	op := method + " " + path

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.NewNetworkError(op, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.NewInternalError("build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithField("op", op).WithError(err).Debug("Request failed before a response arrived")
		return nil, errors.NewNetworkError(op, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.NewNetworkError(op, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"op":       op,
		"status":   httpResp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("API request completed")

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return &response{status: httpResp.StatusCode, body: respBody}, errors.FromResponse(httpResp.StatusCode, respBody)
	}
	return &response{status: httpResp.StatusCode, body: respBody}, nil
}

// envelope is the {success, data, message} wrapper some endpoints use
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// unwrap returns the data block of an envelope, or body itself when it is not one.
// A success=false envelope on a read is reported as a system error.
func unwrap(body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed, nil
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil || env.Success == nil {
		return trimmed, nil
	}
	if !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = "backend reported failure"
		}
		return nil, &errors.CategorizedError{
			Category:   errors.CategorySystem,
			StatusCode: http.StatusOK,
			Code:       "UNSUCCESSFUL_RESPONSE",
			Message:    msg,
		}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return []byte("null"), nil
	}
	return env.Data, nil
}

// decode unwraps body and unmarshals it into out
func decode(body []byte, out interface{}) error {
	data, err := unwrap(body)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.NewInternalError(fmt.Sprintf("decode %T", out), err)
	}
	return nil
}

// get issues a GET and decodes the result
func (c *Client) get(ctx context.Context, path, token string, out interface{}) error {
	resp, err := c.call(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return err
	}
	return decode(resp.body, out)
}
