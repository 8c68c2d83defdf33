package commands

// One-shot mode: run a single scan to completion and print the ranked
// holder list.

import (
	"context"
	"fmt"
	"time"

	"trustline-monitor/internal/accounts"
	"trustline-monitor/internal/config"
	"trustline-monitor/internal/infra/log"
	"trustline-monitor/internal/ledger"
	"trustline-monitor/internal/metrics"
	"trustline-monitor/internal/scan"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a single scan and print the ranked holder list",
	Long:  `Fetch every trustline held against the configured issuer, aggregate them into a ranked, tiered holder list, and print it.`,
	RunE:  runScan,
	// Config flags (--ledger.issuer etc.) are parsed by the config layer.
	DisableFlagParsing: true,
}

// buildController wires the ledger client, metrics provider and scan
// controller from config. Shared by the scan and monitor commands.
func buildController(cfg *config.Config) (*scan.Controller, *metrics.Provider) {
	client := ledger.NewClient(cfg.Ledger.RPCURL, time.Duration(cfg.Ledger.RequestTimeout)*time.Second)
	fetcher := ledger.NewTrustlineFetcher(client, cfg.Ledger.Issuer, cfg.Ledger.Currency, cfg.Ledger.PageLimit)
	provider := metrics.NewProvider(cfg.Metrics.URL,
		time.Duration(cfg.Metrics.RefreshSeconds)*time.Second,
		cfg.Metrics.FallbackSupply)

	controller := scan.NewController(fetcher, provider, scan.Options{
		Issuer:        cfg.Ledger.Issuer,
		ExcludeIssuer: cfg.Scan.ExcludeIssuer,
		Cooldown:      time.Duration(cfg.Scan.CooldownSeconds) * time.Second,
		Known:         accounts.Table(),
	})
	return controller, provider
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		log.LogError("Failed to load config", zap.Error(err))
		return fmt.Errorf("failed to load config: %w", err)
	}

	controller, provider := buildController(cfg)

	// One refresh up front so the percentage denominator is real when the
	// feed is configured; the fallback covers the rest.
	if cfg.Metrics.URL != "" {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		if err := provider.Refresh(ctx); err != nil {
			log.LogWarn("metrics refresh failed, using fallback supply", zap.Error(err))
		}
		cancel()
	}

	controller.Start()
	controller.Wait()

	state := controller.State()
	if state.Status == scan.StatusErrored {
		return fmt.Errorf("scan failed: %s", state.ErrorDetail)
	}

	holders, updatedAt := controller.Holders()
	printHolders(holders, updatedAt)
	return nil
}

func printHolders(holders []scan.Holder, updatedAt time.Time) {
	fmt.Printf("\n%-5s %-36s %18s %8s  %-12s %s\n", "RANK", "ACCOUNT", "BALANCE", "SHARE", "TIER", "LABEL")
	for _, h := range holders {
		label := h.WalletLabel
		if label != "" && h.WalletType != "" {
			label = fmt.Sprintf("%s (%s)", h.WalletLabel, h.WalletType)
		}
		fmt.Printf("%-5d %-36s %18.2f %7.3f%%  %-12s %s\n",
			h.Rank, h.Account, h.Balance, h.Percentage, h.Tier, label)
	}
	fmt.Printf("\n%d holders, updated %s\n", len(holders), updatedAt.Format(time.RFC3339))
}
