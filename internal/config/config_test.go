package config

import (
	"strings"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig([]string{
		"--ledger.issuer=rIssuerAccount",
		"--ledger.currency=XYZ",
	})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Ledger.Issuer != "rIssuerAccount" || cfg.Ledger.Currency != "XYZ" {
		t.Fatalf("flag values not applied: %+v", cfg.Ledger)
	}
	if cfg.Ledger.PageLimit != 400 {
		t.Fatalf("expected default page limit 400, got %d", cfg.Ledger.PageLimit)
	}
	if cfg.Ledger.RPCURL == "" {
		t.Fatalf("expected a default RPC URL")
	}
	if !cfg.Scan.ExcludeIssuer {
		t.Fatalf("expected exclude_issuer to default to true")
	}
	if cfg.Scan.CooldownSeconds != 10 {
		t.Fatalf("expected default cooldown 10s, got %d", cfg.Scan.CooldownSeconds)
	}
	if cfg.Metrics.FallbackSupply != 100_000_000_000 {
		t.Fatalf("unexpected fallback supply: %f", cfg.Metrics.FallbackSupply)
	}
}

func TestLoadConfig_RequiresIssuerAndCurrency(t *testing.T) {
	if _, err := LoadConfig([]string{"--ledger.currency=XYZ"}); err == nil || !strings.Contains(err.Error(), "issuer") {
		t.Fatalf("expected an issuer validation error, got %v", err)
	}
	if _, err := LoadConfig([]string{"--ledger.issuer=rX"}); err == nil || !strings.Contains(err.Error(), "currency") {
		t.Fatalf("expected a currency validation error, got %v", err)
	}
}

func TestLoadConfig_RejectsBadValues(t *testing.T) {
	_, err := LoadConfig([]string{
		"--ledger.issuer=rX",
		"--ledger.currency=XYZ",
		"--scan.cooldown_seconds=0",
	})
	if err == nil || !strings.Contains(err.Error(), "cooldown") {
		t.Fatalf("expected a cooldown validation error, got %v", err)
	}
	_, err = LoadConfig([]string{
		"--ledger.issuer=rX",
		"--ledger.currency=XYZ",
		"--ledger.page_limit=0",
	})
	if err == nil || !strings.Contains(err.Error(), "page_limit") {
		t.Fatalf("expected a page limit validation error, got %v", err)
	}
}

func TestLoadConfig_CanBeCalledRepeatedly(t *testing.T) {
	for i := 0; i < 3; i++ {
		if _, err := LoadConfig([]string{"--ledger.issuer=rX", "--ledger.currency=XYZ"}); err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
	}
}
