package commands

// Continuous mode: scan with live-update enabled until interrupted. The
// metrics feed refreshes in parallel on its own interval.

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"trustline-monitor/internal/config"
	"trustline-monitor/internal/infra/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Scan continuously with live updates",
	Long:  `Run the scanner with live-update enabled: each completed scan arms a cooldown timer, and the holder list is rebuilt after every rescan.`,
	RunE:  runMonitor,
	// Config flags (--ledger.issuer etc.) are parsed by the config layer.
	DisableFlagParsing: true,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		log.LogError("Failed to load config", zap.Error(err))
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	controller, provider := buildController(cfg)

	var wg sync.WaitGroup
	if cfg.Metrics.URL != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			provider.Run(ctx)
		}()
	}

	// Enabling live-update with no data kicks off the first scan
	// immediately; every completion after that arms the cooldown.
	if !controller.LiveUpdateEnabled() {
		controller.ToggleLiveUpdate()
	}

	log.LogSuccess("Trustline monitor is running",
		zap.String("issuer", cfg.Ledger.Issuer),
		zap.String("currency", cfg.Ledger.Currency),
		zap.Int("cooldown_seconds", cfg.Scan.CooldownSeconds))

	statusTicker := time.NewTicker(30 * time.Second)
	defer statusTicker.Stop()

	for {
		select {
		case <-statusTicker.C:
			state := controller.State()
			holders, updatedAt := controller.Holders()
			log.LogInfo("monitor status",
				zap.String("status", string(state.Status)),
				zap.String("message", state.Message),
				zap.Int("holders", len(holders)),
				zap.Time("updated_at", updatedAt))
		case <-ctx.Done():
			log.LogInfo("Shutdown signal received, gracefully stopping...")
			controller.Stop()

			done := make(chan struct{})
			go func() {
				controller.Wait()
				wg.Wait()
				close(done)
			}()

			select {
			case <-done:
				log.LogSuccess("Trustline monitor stopped gracefully")
			case <-time.After(10 * time.Second):
				log.LogWarn("Timeout waiting for monitor to stop")
			}
			return nil
		}
	}
}
