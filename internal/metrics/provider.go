package metrics

// Package metrics polls an external price/supply endpoint on a fixed
// interval and keeps the latest snapshot in an atomic pointer. The scan
// engine only ever reads TotalSupply from it, as the denominator for
// percentage-of-supply figures. Unlike the scan path, this boundary is
// allowed to retry: a missed refresh just means a slightly stale snapshot.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"trustline-monitor/internal/infra/log"
	"trustline-monitor/internal/infra/retry"

	"go.uber.org/zap"
)

// DefaultFallbackSupply is used as the supply basis before the first
// successful refresh (100B units, the full issuance of the tracked token).
const DefaultFallbackSupply = 100_000_000_000

// Snapshot is one observation of the external metrics feed.
type Snapshot struct {
	Price       float64   `json:"price"`
	TotalSupply float64   `json:"totalSupply"`
	FetchedAt   time.Time `json:"-"`
}

// Provider refreshes the snapshot periodically. All methods are safe for
// concurrent use; readers never block a refresh.
type Provider struct {
	url            string
	interval       time.Duration
	fallbackSupply float64
	httpClient     *http.Client
	snapshot       atomic.Pointer[Snapshot]
}

func NewProvider(url string, interval time.Duration, fallbackSupply float64) *Provider {
	if interval <= 0 {
		interval = time.Minute
	}
	if fallbackSupply <= 0 {
		fallbackSupply = DefaultFallbackSupply
	}
	return &Provider{
		url:            url,
		interval:       interval,
		fallbackSupply: fallbackSupply,
		httpClient:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Run refreshes the snapshot until the context is cancelled. It refreshes
// once immediately so the first scan usually has a real supply figure.
func (p *Provider) Run(ctx context.Context) {
	if err := p.Refresh(ctx); err != nil {
		log.LogWarn("initial metrics refresh failed, using fallback supply",
			zap.Float64("fallback_supply", p.fallbackSupply), zap.Error(err))
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Refresh(ctx); err != nil {
				log.LogWarn("metrics refresh failed", zap.Error(err))
			}
		}
	}
}

// Refresh fetches the endpoint once, retrying transient HTTP failures.
func (p *Provider) Refresh(ctx context.Context) error {
	if p.url == "" {
		return fmt.Errorf("metrics url is not configured")
	}

	var snap Snapshot
	err := retry.Do(ctx, retry.Options{MaxRetries: 3, BaseDelay: 500 * time.Millisecond, MaxDelay: 5 * time.Second}, func() error {
		return p.fetch(ctx, &snap)
	})
	if err != nil {
		return err
	}

	snap.FetchedAt = time.Now()
	p.snapshot.Store(&snap)
	log.LogDebug("metrics snapshot refreshed",
		zap.Float64("price", snap.Price),
		zap.Float64("total_supply", snap.TotalSupply))
	return nil
}

func (p *Provider) fetch(ctx context.Context, snap *Snapshot) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch metrics: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read metrics response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       body,
			RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	if err := json.Unmarshal(body, snap); err != nil {
		return fmt.Errorf("failed to decode metrics response: %w", err)
	}
	return nil
}

// Snapshot returns the latest observation, or nil before the first
// successful refresh.
func (p *Provider) Snapshot() *Snapshot {
	return p.snapshot.Load()
}

// SupplyBasis returns the latest total supply, falling back to the
// configured constant when no usable snapshot exists.
func (p *Provider) SupplyBasis() float64 {
	if snap := p.snapshot.Load(); snap != nil && snap.TotalSupply > 0 {
		return snap.TotalSupply
	}
	return p.fallbackSupply
}
