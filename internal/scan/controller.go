package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"trustline-monitor/internal/infra/log"

	"go.uber.org/zap"
)

// Controller owns the scan lifecycle. It is the single writer of the scan
// state and the published holder list; everything external reads through
// State and Holders. At most one scan runs at a time.
type Controller struct {
	fetcher PageFetcher
	supply  SupplySource
	known   KnownAccounts
	issuer  string

	scheduler *Scheduler

	mu            sync.Mutex
	status        Status
	recordsSeen   int
	message       string
	errorDetail   string
	holders       []Holder
	updatedAt     time.Time
	excludeIssuer bool
	cancel        context.CancelFunc

	wg sync.WaitGroup
}

// Options configures a Controller.
type Options struct {
	Issuer        string
	ExcludeIssuer bool
	Cooldown      time.Duration
	Known         KnownAccounts
}

func NewController(fetcher PageFetcher, supply SupplySource, opts Options) *Controller {
	c := &Controller{
		fetcher:       fetcher,
		supply:        supply,
		known:         opts.Known,
		issuer:        opts.Issuer,
		excludeIssuer: opts.ExcludeIssuer,
		status:        StatusIdle,
		message:       "idle",
	}
	c.scheduler = NewScheduler(opts.Cooldown, c.Start)
	return c
}

// Start begins a new scan. A no-op while one is already running. The scan
// runs on its own goroutine; callers that need the result synchronously can
// Wait.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.status == StatusScanning {
		c.mu.Unlock()
		return
	}

	// A rescan over existing data stays quiet: no progress messages, no
	// status churn beyond the final transition.
	background := len(c.holders) > 0

	c.status = StatusScanning
	c.recordsSeen = 0
	c.errorDetail = ""
	if !background {
		c.message = "initializing scan"
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	exclude := c.excludeIssuer
	c.mu.Unlock()

	c.reevaluateScheduler()

	log.LogInfo("scan started", zap.Bool("background", background), zap.Bool("exclude_issuer", exclude))

	c.wg.Add(1)
	go c.run(ctx, background, exclude)
}

// Stop cancels a running scan. It only raises the cancellation signal; the
// Aborted transition and its message are committed in exactly one place, the
// loop-result path in run, so the two paths into Aborted cannot race over
// the state.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.status != StatusScanning {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	c.mu.Unlock()

	c.scheduler.Disable()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the currently running scan (if any) has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) run(ctx context.Context, background, exclude bool) {
	defer c.wg.Done()

	var onProgress ProgressFunc
	if !background {
		onProgress = c.reportProgress
	}

	records, err := RunLoop(ctx, c.fetcher, onProgress)

	switch {
	case err == nil:
		basis := c.supply.SupplyBasis()
		holders := Aggregate(records, basis, exclude, c.issuer, c.known)

		c.mu.Lock()
		c.holders = holders
		c.updatedAt = time.Now()
		c.status = StatusComplete
		c.recordsSeen = len(records)
		c.message = fmt.Sprintf("scan complete: %d trustlines, %d holders", len(records), len(holders))
		c.mu.Unlock()

		log.LogSuccess("scan complete",
			zap.Int("trustlines", len(records)),
			zap.Int("holders", len(holders)),
			zap.Float64("supply_basis", basis))

	case errors.Is(err, context.Canceled):
		c.mu.Lock()
		c.status = StatusAborted
		c.message = "scan stopped"
		c.mu.Unlock()

		c.scheduler.Disable()
		log.LogWarn("scan aborted")

	default:
		c.mu.Lock()
		c.status = StatusErrored
		c.message = "scan failed"
		c.errorDetail = err.Error()
		c.mu.Unlock()

		// A persistent failure must not loop through live-update retries.
		c.scheduler.Disable()
		log.LogError("scan failed", zap.Error(err))
	}

	c.reevaluateScheduler()
}

func (c *Controller) reportProgress(recordsSoFar int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusScanning {
		return
	}
	c.recordsSeen = recordsSoFar
	c.message = fmt.Sprintf("scanning: %d trustlines", recordsSoFar)
}

func (c *Controller) reevaluateScheduler() {
	c.mu.Lock()
	scanning := c.status == StatusScanning
	complete := c.status == StatusComplete
	count := len(c.holders)
	c.mu.Unlock()

	c.scheduler.Reevaluate(scanning, complete, count)
}

// ToggleExcludeIssuer flips the issuer filter for the next scan. Existing
// results are left alone; the filter only applies at aggregation time.
func (c *Controller) ToggleExcludeIssuer() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.excludeIssuer = !c.excludeIssuer
	return c.excludeIssuer
}

// ToggleLiveUpdate flips continuous rescanning and immediately re-evaluates
// the scheduler, so enabling with no data kicks off a scan right away.
func (c *Controller) ToggleLiveUpdate() bool {
	enabled := !c.scheduler.Enabled()
	c.scheduler.SetEnabled(enabled)
	c.reevaluateScheduler()
	return enabled
}

// LiveUpdateEnabled reports the scheduler flag.
func (c *Controller) LiveUpdateEnabled() bool {
	return c.scheduler.Enabled()
}

// State returns a snapshot of the current scan state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Status:      c.status,
		RecordsSeen: c.recordsSeen,
		Message:     c.message,
		ErrorDetail: c.errorDetail,
	}
}

// Holders returns the published holder list and its timestamp. The slice is
// copied so callers can't disturb the published result.
func (c *Controller) Holders() ([]Holder, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Holder, len(c.holders))
	copy(out, c.holders)
	return out, c.updatedAt
}
