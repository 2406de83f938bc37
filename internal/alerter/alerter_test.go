package alerter

import (
	"TagSpectra/internal/config"
	"TagSpectra/internal/engine/pipeline"
	"testing"
)

type fakeNotifier struct {
	sent []string
}

func (n *fakeNotifier) Send(subject, body string) error {
	n.sent = append(n.sent, subject)
	return nil
}

func TestAlerter_FiresOncePerRule(t *testing.T) {
	stats := pipeline.Stats{QueueDropped: 10}
	notifier := &fakeNotifier{}
	cfg := &config.AlerterConfig{
		CheckInterval: "1s",
		Rules: []config.AlerterRule{
			{Metric: "queue_dropped", Threshold: 5},
			{Metric: "delivery_failures", Threshold: 1},
		},
	}

	a, err := NewAlerter(cfg, func() pipeline.Stats { return stats }, notifier)
	if err != nil {
		t.Fatalf("NewAlerter failed: %v", err)
	}

	a.evaluate()
	if len(notifier.sent) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(notifier.sent))
	}

	// Counters only grow; the already-fired rule must stay quiet while a
	// newly tripped one still fires.
	stats.QueueDropped = 20
	stats.DeliveryFailures = 3
	a.evaluate()
	if len(notifier.sent) != 2 {
		t.Fatalf("Expected 2 alerts total, got %d", len(notifier.sent))
	}
}

func TestAlerter_UnknownMetricSkipped(t *testing.T) {
	notifier := &fakeNotifier{}
	cfg := &config.AlerterConfig{
		CheckInterval: "1s",
		Rules:         []config.AlerterRule{{Metric: "no_such_metric", Threshold: 1}},
	}

	a, err := NewAlerter(cfg, func() pipeline.Stats { return pipeline.Stats{} }, notifier)
	if err != nil {
		t.Fatalf("NewAlerter failed: %v", err)
	}

	a.evaluate()
	if len(notifier.sent) != 0 {
		t.Errorf("Expected no alerts for unknown metric, got %d", len(notifier.sent))
	}
}

func TestAlerter_InvalidInterval(t *testing.T) {
	cfg := &config.AlerterConfig{CheckInterval: "soon"}
	if _, err := NewAlerter(cfg, func() pipeline.Stats { return pipeline.Stats{} }, &fakeNotifier{}); err == nil {
		t.Error("Expected error for invalid check interval")
	}
}
