package scan

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type stubSupply struct{ v float64 }

func (s stubSupply) SupplyBasis() float64 { return s.v }

// scriptFetcher runs an arbitrary script keyed by call number (1-based).
// The script can be swapped between scans.
type scriptFetcher struct {
	mu     sync.Mutex
	calls  int
	script func(call int, cursor Cursor) (Page, error)
}

func (f *scriptFetcher) FetchPage(ctx context.Context, cursor Cursor) (Page, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	script := f.script
	f.mu.Unlock()
	return script(call, cursor)
}

func (f *scriptFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// setScript swaps the script and restarts the call counter, so per-call
// scripts behave the same on every scan.
func (f *scriptFetcher) setScript(script func(call int, cursor Cursor) (Page, error)) {
	f.mu.Lock()
	f.script = script
	f.calls = 0
	f.mu.Unlock()
}

// twoPageScript serves two pages of holders and then stops.
func twoPageScript(call int, cursor Cursor) (Page, error) {
	switch call {
	case 1:
		return Page{
			Records:    []TrustlineRecord{{Account: "A", Balance: "-500"}, {Account: "B", Balance: "300"}},
			NextCursor: makeCursor("p2"),
		}, nil
	default:
		return Page{Records: []TrustlineRecord{{Account: "C", Balance: "-100"}}}, nil
	}
}

func newTestController(fetcher PageFetcher, supply float64) *Controller {
	return NewController(fetcher, stubSupply{v: supply}, Options{
		Issuer:   "issuer",
		Cooldown: time.Hour, // never fires within a test
	})
}

func TestController_SuccessPublishesRankedList(t *testing.T) {
	fetcher := &scriptFetcher{script: twoPageScript}
	c := newTestController(fetcher, 1000)

	c.Start()
	c.Wait()

	state := c.State()
	if state.Status != StatusComplete {
		t.Fatalf("expected complete, got %s (%s)", state.Status, state.ErrorDetail)
	}
	if state.RecordsSeen != 3 {
		t.Fatalf("expected 3 records seen, got %d", state.RecordsSeen)
	}
	if !strings.Contains(state.Message, "complete") {
		t.Fatalf("unexpected message: %q", state.Message)
	}

	holders, updatedAt := c.Holders()
	if len(holders) != 2 {
		t.Fatalf("expected 2 holders, got %d", len(holders))
	}
	if holders[0].Account != "A" || holders[1].Account != "C" {
		t.Fatalf("unexpected ranking: %+v", holders)
	}
	if updatedAt.IsZero() {
		t.Fatalf("timestamp not set on publish")
	}
}

func TestController_StartWhileScanningIsNoOp(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	fetcher := &scriptFetcher{script: func(call int, cursor Cursor) (Page, error) {
		close(entered)
		<-release
		return Page{Records: []TrustlineRecord{{Account: "A", Balance: "-1"}}}, nil
	}}
	c := newTestController(fetcher, 1000)

	c.Start()
	<-entered
	c.Start() // must not spawn a second scan
	close(release)
	c.Wait()

	if got := fetcher.callCount(); got != 1 {
		t.Fatalf("expected a single fetch, got %d", got)
	}
	if state := c.State(); state.Status != StatusComplete {
		t.Fatalf("expected complete, got %s", state.Status)
	}
}

func TestController_StopAbortsWithoutTouchingPublishedList(t *testing.T) {
	fetcher := &scriptFetcher{script: twoPageScript}
	c := newTestController(fetcher, 1000)

	c.Start()
	c.Wait()
	published, publishedAt := c.Holders()
	if len(published) != 2 {
		t.Fatalf("setup: expected 2 holders, got %d", len(published))
	}

	// Second scan blocks on its first page so Stop lands mid-scan.
	entered := make(chan struct{})
	release := make(chan struct{})
	fetcher.setScript(func(call int, cursor Cursor) (Page, error) {
		close(entered)
		<-release
		// The in-flight page completes and hands back a cursor; the loop's
		// next cancellation check must end the scan.
		return Page{
			Records:    []TrustlineRecord{{Account: "Z", Balance: "-9999"}},
			NextCursor: makeCursor("more"),
		}, nil
	})

	c.Start()
	<-entered
	c.Stop()
	close(release)
	c.Wait()

	state := c.State()
	if state.Status != StatusAborted {
		t.Fatalf("expected aborted, got %s", state.Status)
	}
	if state.Message != "scan stopped" {
		t.Fatalf("unexpected abort message: %q", state.Message)
	}
	if state.ErrorDetail != "" {
		t.Fatalf("abort must not be reported as an error: %q", state.ErrorDetail)
	}

	holders, updatedAt := c.Holders()
	if len(holders) != 2 || holders[0].Account != "A" {
		t.Fatalf("aborted scan must not publish partial results: %+v", holders)
	}
	if !updatedAt.Equal(publishedAt) {
		t.Fatalf("timestamp must be untouched by an aborted scan")
	}
	if c.LiveUpdateEnabled() {
		t.Fatalf("stop must disable live update")
	}
}

func TestController_FetchErrorEntersErroredAndDisablesLiveUpdate(t *testing.T) {
	fetchErr := errors.New("connection refused")
	fetcher := &scriptFetcher{script: func(call int, cursor Cursor) (Page, error) {
		return Page{}, fetchErr
	}}
	c := newTestController(fetcher, 1000)

	// Enabling live update with no data starts the scan immediately.
	c.ToggleLiveUpdate()
	c.Wait()

	state := c.State()
	if state.Status != StatusErrored {
		t.Fatalf("expected errored, got %s", state.Status)
	}
	if !strings.Contains(state.ErrorDetail, "connection refused") {
		t.Fatalf("error detail must surface the cause verbatim: %q", state.ErrorDetail)
	}
	if c.LiveUpdateEnabled() {
		t.Fatalf("a failed scan must disable live update")
	}
	if holders, _ := c.Holders(); len(holders) != 0 {
		t.Fatalf("failed scan must not publish holders: %+v", holders)
	}
}

func TestController_InitialScanReportsProgress(t *testing.T) {
	var midScan State
	fetcher := &scriptFetcher{}
	c := newTestController(fetcher, 1000)
	fetcher.setScript(func(call int, cursor Cursor) (Page, error) {
		if call == 2 {
			// Page 1's progress report has landed by the time page 2 starts.
			midScan = c.State()
		}
		return twoPageScript(call, cursor)
	})

	c.Start()
	c.Wait()

	if midScan.RecordsSeen != 2 {
		t.Fatalf("expected 2 records reported after page 1, got %d", midScan.RecordsSeen)
	}
	if !strings.Contains(midScan.Message, "scanning") {
		t.Fatalf("expected a scanning progress message, got %q", midScan.Message)
	}
}

func TestController_BackgroundRescanStaysQuiet(t *testing.T) {
	fetcher := &scriptFetcher{script: twoPageScript}
	c := newTestController(fetcher, 1000)

	c.Start()
	c.Wait()
	completionMsg := c.State().Message

	var observed []State
	var mu sync.Mutex
	fetcher.setScript(func(call int, cursor Cursor) (Page, error) {
		mu.Lock()
		observed = append(observed, c.State())
		mu.Unlock()
		return twoPageScript(call, cursor)
	})

	c.Start() // holder data exists, so this is a background update
	c.Wait()

	for i, s := range observed {
		if s.Message != completionMsg {
			t.Fatalf("background rescan changed the message mid-scan (page %d): %q", i+1, s.Message)
		}
		if s.RecordsSeen != 0 {
			t.Fatalf("background rescan reported progress (page %d): %d", i+1, s.RecordsSeen)
		}
	}

	if state := c.State(); state.Status != StatusComplete || state.RecordsSeen != 3 {
		t.Fatalf("background rescan must still finish normally: %+v", state)
	}
}

func TestController_ToggleExcludeIssuerAffectsNextScanOnly(t *testing.T) {
	script := func(call int, cursor Cursor) (Page, error) {
		return Page{Records: []TrustlineRecord{
			{Account: "issuer", Balance: "-9000"},
			{Account: "holder", Balance: "-100"},
		}}, nil
	}
	fetcher := &scriptFetcher{script: script}
	c := newTestController(fetcher, 10000)

	c.Start()
	c.Wait()
	holders, _ := c.Holders()
	if len(holders) != 2 {
		t.Fatalf("expected issuer included initially, got %+v", holders)
	}

	c.ToggleExcludeIssuer()
	holders, _ = c.Holders()
	if len(holders) != 2 {
		t.Fatalf("toggle must not re-aggregate existing results")
	}

	c.Start()
	c.Wait()
	holders, _ = c.Holders()
	if len(holders) != 1 || holders[0].Account != "holder" || holders[0].Rank != 1 {
		t.Fatalf("expected issuer excluded on next scan, got %+v", holders)
	}
}

func TestController_TerminalStatesCanRestart(t *testing.T) {
	fetchErr := errors.New("boom")
	fetcher := &scriptFetcher{script: func(call int, cursor Cursor) (Page, error) {
		return Page{}, fetchErr
	}}
	c := newTestController(fetcher, 1000)

	c.Start()
	c.Wait()
	if c.State().Status != StatusErrored {
		t.Fatalf("setup: expected errored")
	}

	fetcher.setScript(twoPageScript)
	c.Start()
	c.Wait()

	state := c.State()
	if state.Status != StatusComplete {
		t.Fatalf("expected a restart from errored to succeed, got %s", state.Status)
	}
	if state.ErrorDetail != "" {
		t.Fatalf("error detail must be cleared on restart: %q", state.ErrorDetail)
	}
}
