package evaluators

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ClientConfig configures the shared HTTP transport for evaluator clients.
// An explicit config value is threaded into each client constructor at
// startup; there is no ambient global.
type ClientConfig struct {
	// BaseURL is the evaluation service base URL (e.g. "http://localhost:8000").
	BaseURL string

	// Timeout is a backstop request timeout applied by the HTTP client.
	// The per-condition deadline set by the engine is usually shorter and
	// governs in practice. Default: 30s.
	Timeout time.Duration

	// MaxIdleConns bounds the connection pool. Default: 10.
	MaxIdleConns int

	// MaxIdleConnsPerHost bounds per-host idle connections. Default: 10.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long idle connections are kept. Default: 90s.
	IdleConnTimeout time.Duration
}

// applyDefaults fills zero-valued fields with defaults.
func (c *ClientConfig) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 10
	}
	if c.MaxIdleConnsPerHost == 0 {
		c.MaxIdleConnsPerHost = 10
	}
	if c.IdleConnTimeout == 0 {
		c.IdleConnTimeout = 90 * time.Second
	}
}

// HTTPClient is the base implementation embedded by concrete evaluator
// clients. It owns the pooled HTTP client and the request/response
// plumbing; concrete clients supply the endpoint path and interpret the
// verdict.
//
// HTTPClient performs exactly one network call per evaluate. Retries are
// the condition evaluator's responsibility so that retry policy is applied
// per error class, not blindly inside the adapter.
type HTTPClient struct {
	name    string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPClient creates the shared transport for an evaluator client.
func NewHTTPClient(name string, cfg ClientConfig, logger *slog.Logger) *HTTPClient {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPClient{
		name:    name,
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		logger: logger.With("evaluator", name),
	}
}

// Name returns the check name this client serves.
func (c *HTTPClient) Name() string {
	return c.name
}

// postEvaluation sends an evaluation request to path and decodes the
// response, classifying failures into the package's error taxonomy.
func (c *HTTPClient) postEvaluation(ctx context.Context, path string, reqBody *EvaluationRequest) (*EvaluationResponse, error) {
	endpoint := c.baseURL + path

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal evaluation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	c.logger.Debug("sending evaluation request", "endpoint", endpoint)

	resp, err := c.client.Do(req)
	if err != nil {
		elapsed := time.Since(start)
		return nil, &UnavailableError{
			Check:    c.name,
			Endpoint: endpoint,
			Timeout:  errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded),
			Elapsed:  elapsed,
			Cause:    err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnavailableError{
			Check:    c.name,
			Endpoint: endpoint,
			Timeout:  errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded),
			Elapsed:  time.Since(start),
			Cause:    fmt.Errorf("failed to read response: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RejectedError{
			Check:      c.name,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var evalResp EvaluationResponse
	if err := json.Unmarshal(body, &evalResp); err != nil {
		return nil, &MalformedError{
			Check:       c.name,
			Endpoint:    endpoint,
			RawResponse: string(body),
			Cause:       err,
		}
	}
	if evalResp.Passed == nil {
		return nil, &MalformedError{
			Check:       c.name,
			Endpoint:    endpoint,
			RawResponse: string(body),
			Cause:       errors.New("response missing required field \"passed\""),
		}
	}

	c.logger.Debug("evaluation response received",
		"endpoint", endpoint,
		"passed", *evalResp.Passed,
		"elapsed", time.Since(start),
	)

	return &evalResp, nil
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
