package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
subscription:
  tag_file: tags.txt
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !cfg.Subscription.NotifyOnTimestampOnlyChange {
		t.Error("notify_on_ts_change should default to true")
	}
	if cfg.Subscription.AggregateRecords {
		t.Error("aggregate_records should default to false")
	}
	if cfg.Subscription.MinPublishIntervalMs != 1000 {
		t.Errorf("Expected default min publish interval 1000, got %d", cfg.Subscription.MinPublishIntervalMs)
	}
	if cfg.Queue.Capacity != 65536 {
		t.Errorf("Expected default queue capacity 65536, got %d", cfg.Queue.Capacity)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := writeConfig(t, `
subscription:
  tag_file: tags.txt
  aggregate_records: true
  notify_on_ts_change: false
  min_publish_interval_ms: 250
queue:
  capacity: 128
nats:
  url: nats://localhost:4222
  subject: tagspectra.events
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !cfg.Subscription.AggregateRecords {
		t.Error("aggregate_records override not applied")
	}
	if cfg.Subscription.NotifyOnTimestampOnlyChange {
		t.Error("notify_on_ts_change override not applied")
	}
	if cfg.Subscription.MinPublishIntervalMs != 250 {
		t.Errorf("Expected min publish interval 250, got %d", cfg.Subscription.MinPublishIntervalMs)
	}
	if cfg.Queue.Capacity != 128 {
		t.Errorf("Expected queue capacity 128, got %d", cfg.Queue.Capacity)
	}
	if cfg.NATS.Subject != "tagspectra.events" {
		t.Errorf("Unexpected NATS subject: %s", cfg.NATS.Subject)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}

	path := writeConfig(t, `
subscription:
  tag_file: tags.txt
  min_publish_interval_ms: -5
`)
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error for non-positive min publish interval")
	}

	path = writeConfig(t, `
queue:
  capacity: 4
`)
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error for missing tag file")
	}
}
