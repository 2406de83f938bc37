package alerter

import (
	"TagSpectra/internal/config"
	"TagSpectra/internal/engine/pipeline"
	"TagSpectra/internal/model"
	"fmt"
	"log"
	"sync"
	"time"
)

// StatsFunc yields the current pipeline counters.
type StatsFunc func() pipeline.Stats

// Alerter periodically evaluates pipeline counters against configured
// threshold rules and notifies the operator when a rule trips. Each rule
// fires at most once per run so a degrading pipeline does not flood the
// inbox; counters are cumulative, so a tripped rule stays tripped.
type Alerter struct {
	stats         StatsFunc
	rules         []config.AlerterRule
	notifier      model.Notifier
	checkInterval time.Duration
	fired         map[string]bool
	stopChan      chan struct{}
	wg            sync.WaitGroup
}

// NewAlerter creates a new Alerter instance.
func NewAlerter(cfg *config.AlerterConfig, stats StatsFunc, notifier model.Notifier) (*Alerter, error) {
	interval, err := time.ParseDuration(cfg.CheckInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid check_interval for alerter: %w", err)
	}

	return &Alerter{
		stats:         stats,
		rules:         cfg.Rules,
		notifier:      notifier,
		checkInterval: interval,
		fired:         make(map[string]bool),
		stopChan:      make(chan struct{}),
	}, nil
}

// Start begins the periodic evaluation of alert rules.
func (a *Alerter) Start() {
	log.Println("Alerter started")

	a.wg.Add(1)
	defer a.wg.Done()

	ticker := time.NewTicker(a.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.evaluate()
		case <-a.stopChan:
			return
		}
	}
}

// Stop shuts down the evaluation loop.
func (a *Alerter) Stop() {
	close(a.stopChan)
	a.wg.Wait()
	log.Println("Alerter stopped")
}

func (a *Alerter) evaluate() {
	stats := a.stats()
	for _, rule := range a.rules {
		value, ok := metricValue(stats, rule.Metric)
		if !ok {
			log.Printf("Alerter rule references unknown metric '%s', skipping", rule.Metric)
			continue
		}
		if value < rule.Threshold || a.fired[rule.Metric] {
			continue
		}
		a.fired[rule.Metric] = true

		subject := fmt.Sprintf("[TagSpectra] %s exceeded threshold", rule.Metric)
		body := fmt.Sprintf("Pipeline metric %s reached %d (threshold %d) at %s.",
			rule.Metric, value, rule.Threshold, time.Now().Format(time.RFC3339))
		if err := a.notifier.Send(subject, body); err != nil {
			log.Printf("Failed to send alert for metric '%s': %v", rule.Metric, err)
			a.fired[rule.Metric] = false
		}
	}
}

func metricValue(stats pipeline.Stats, metric string) (uint64, bool) {
	switch metric {
	case "events_received":
		return stats.EventsReceived, true
	case "records_emitted":
		return stats.RecordsEmitted, true
	case "delivery_failures":
		return stats.DeliveryFailures, true
	case "queue_dropped":
		return stats.QueueDropped, true
	default:
		return 0, false
	}
}
