package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load with defaults should succeed: %v", err)
	}

	if cfg.App.Name != "buywatch" {
		t.Fatalf("app.name = %q", cfg.App.Name)
	}
	if cfg.Scheduler.CycleInterval != 60*time.Second {
		t.Fatalf("cycle interval = %s", cfg.Scheduler.CycleInterval)
	}
	if cfg.Scheduler.SourceDelay != 800*time.Millisecond {
		t.Fatalf("source delay = %s", cfg.Scheduler.SourceDelay)
	}
	if cfg.Alerting.Cooldown != 90*time.Second {
		t.Fatalf("cooldown = %s", cfg.Alerting.Cooldown)
	}
	if !cfg.Capture.Headless {
		t.Fatal("capture should default to headless")
	}
	if cfg.Server.Addr != ":3000" {
		t.Fatalf("server addr = %q", cfg.Server.Addr)
	}
}

func TestLoadFileWithSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
alerting:
  webhook_url: https://discord.test/webhook
  cooldown: 2m
sources:
  - name: Oni Contract
    url: https://example.test/market?item=1
    faction: oni
  - name: Paused Item
    url: https://example.test/market?item=2
    enabled: false
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Alerting.Cooldown != 2*time.Minute {
		t.Fatalf("cooldown = %s", cfg.Alerting.Cooldown)
	}
	if len(cfg.Sources) != 2 {
		t.Fatalf("expected 2 seed sources, got %d", len(cfg.Sources))
	}
	if cfg.Sources[0].Faction != "oni" {
		t.Fatalf("faction = %q", cfg.Sources[0].Faction)
	}
	if cfg.Sources[1].Enabled == nil || *cfg.Sources[1].Enabled {
		t.Fatal("second seed should be disabled")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	cfg.Scheduler.CycleInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero cycle interval should fail validation")
	}

	cfg.Scheduler.CycleInterval = time.Minute
	cfg.Sources = []SourceSeed{{Name: "", URL: "https://example.test"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("seed without name should fail validation")
	}
}
