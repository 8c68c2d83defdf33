package ledger

// Package ledger contains the JSON-RPC client for an XRPL-style node.
// This file is the transport layer: it knows how to send one request and
// read one response, with rate limiting and a circuit breaker in front, and
// nothing about scan semantics. Retries deliberately do not happen here —
// a failed call is the scan's problem.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"trustline-monitor/internal/infra/log"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultRPCURL is the public mainnet JSON-RPC endpoint.
	DefaultRPCURL = "https://s1.ripple.com:51234/"

	defaultTimeout      = 30 * time.Second
	defaultResponseSize = 10 * 1024 * 1024
)

// Client is a JSON-RPC client for a single node.
type Client struct {
	rpcURL          string
	httpClient      *http.Client
	rateLimiter     *rate.Limiter
	circuitBreaker  *gobreaker.CircuitBreaker
	maxResponseSize int64
}

func NewClient(rpcURL string, timeout time.Duration) *Client {
	if rpcURL == "" {
		rpcURL = DefaultRPCURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	// Public nodes throttle aggressively; stay well under their limits.
	rateLimiter := rate.NewLimiter(rate.Limit(10), 20)

	circuitBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "LedgerRPC",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		rpcURL:          rpcURL,
		rateLimiter:     rateLimiter,
		circuitBreaker:  circuitBreaker,
		maxResponseSize: defaultResponseSize,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DisableKeepAlives: false,
				MaxIdleConns:      10,
				IdleConnTimeout:   90 * time.Second,
			},
		},
	}
}

type rpcRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// call sends one JSON-RPC request through the rate limiter and circuit
// breaker and returns the raw response body.
func (c *Client) call(ctx context.Context, method string, params any) ([]byte, error) {
	requestID := log.GenerateRequestID()
	startTime := time.Now()

	if ctx.Err() != nil {
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var respBody []byte
	_, err := c.circuitBreaker.Execute(func() (any, error) {
		body, err := c.doRequest(ctx, requestID, method, params, startTime)
		if err != nil {
			return nil, err
		}
		respBody = body
		return body, nil
	})
	if err != nil {
		log.LogError("ledger request failed",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.Error(err))
		return nil, err
	}

	log.LogResponse(requestID, http.StatusOK, time.Since(startTime).Milliseconds(), zap.String("method", method))
	return respBody, nil
}

func (c *Client) doRequest(ctx context.Context, requestID, method string, params any, startTime time.Time) ([]byte, error) {
	payload, err := json.Marshal(rpcRequest{Method: method, Params: []any{params}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log.LogRequest(requestID, http.MethodPost, method, zap.String("url", c.rpcURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.LogResponse(requestID, 0, time.Since(startTime).Milliseconds(), zap.String("method", method), zap.Error(err))
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize))
	if err != nil {
		log.LogResponse(requestID, resp.StatusCode, time.Since(startTime).Milliseconds(), zap.String("method", method), zap.Error(err))
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.LogResponse(requestID, resp.StatusCode, time.Since(startTime).Milliseconds(), zap.String("method", method))
		return nil, fmt.Errorf("node returned status %d: %s", resp.StatusCode, truncate(respBody, 200))
	}

	return respBody, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
