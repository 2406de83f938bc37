package pipeline

import (
	"TagSpectra/internal/engine/inbound"
	"TagSpectra/internal/engine/passthrough"
	"TagSpectra/internal/engine/recordaggregator"
	"TagSpectra/internal/model"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Stats is a point-in-time snapshot of the pipeline counters.
type Stats struct {
	EventsReceived    uint64
	RecordsEmitted    uint64
	DeliveryFailures  uint64
	QueueDropped      uint64
}

// Pipeline owns the drain/flush cycle: on each tick it drains the inbound
// queue, routes every event through the record aggregator or the passthrough
// path, and delivers finished records to the configured sinks. Records whose
// delivery fails are routed to the failure sink rather than discarded.
type Pipeline struct {
	queue     *inbound.Queue
	agg       *recordaggregator.RecordAggregator
	aggregate bool
	sinks     []model.Sink
	failure   model.Sink
	interval  time.Duration

	eventsReceived   atomic.Uint64
	recordsEmitted   atomic.Uint64
	deliveryFailures atomic.Uint64

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a pipeline draining queue every interval. When aggregate is
// false the aggregator is bypassed and events map 1:1 to records. failure
// may be nil, in which case failed deliveries are only logged and counted.
func New(queue *inbound.Queue, agg *recordaggregator.RecordAggregator, aggregate bool, sinks []model.Sink, failure model.Sink, interval time.Duration) *Pipeline {
	return &Pipeline{
		queue:     queue,
		agg:       agg,
		aggregate: aggregate,
		sinks:     sinks,
		failure:   failure,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

// Start launches the cycle goroutine. Cycles never overlap: a single
// goroutine owns the aggregator's working set, so no locking is needed there.
func (p *Pipeline) Start() {
	p.wg.Add(1)
	go p.run()
	log.Printf("Pipeline started, draining every %s (aggregate=%v)", p.interval, p.aggregate)
}

// Stop runs one final cycle, force-flushes any partial rows still open, and
// waits for the cycle goroutine to exit. Callers must stop the subscription
// first so no new events race the final drain.
func (p *Pipeline) Stop() {
	close(p.done)
	p.wg.Wait()

	p.Cycle()
	if p.aggregate {
		if records := p.agg.FlushAll(); len(records) > 0 {
			p.deliver(records, p.agg.Header())
		}
	}
	log.Println("Pipeline stopped.")
}

func (p *Pipeline) run() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.Cycle()
		case <-p.done:
			return
		}
	}
}

// Cycle performs one drain/aggregate/emit pass. Exported so the host (or a
// test) can drive the pipeline without the ticker.
func (p *Pipeline) Cycle() {
	events := p.queue.PollAll()
	p.eventsReceived.Add(uint64(len(events)))

	if !p.aggregate {
		if records := passthrough.Emit(events); len(records) > 0 {
			p.deliver(records, "")
		}
		return
	}

	for _, ev := range events {
		p.agg.Aggregate(ev)
	}
	if records := p.agg.ReadyRecords(); len(records) > 0 {
		p.deliver(records, p.agg.Header())
	}
}

// deliver hands a batch of finished records to every sink. The records have
// already left the working set, so a failed delivery does not disturb
// aggregation state; the batch goes to the failure sink instead.
func (p *Pipeline) deliver(records []model.Record, header string) {
	p.recordsEmitted.Add(uint64(len(records)))
	for _, sink := range p.sinks {
		if err := sink.Write(records, header); err != nil {
			p.deliveryFailures.Add(uint64(len(records)))
			log.Printf("Failed to deliver %d records: %v", len(records), err)
			if p.failure != nil {
				if ferr := p.failure.Write(records, header); ferr != nil {
					log.Printf("Failure sink also failed, %d records lost: %v", len(records), ferr)
				}
			}
		}
	}
}

// Stats returns a snapshot of the pipeline counters. Safe to call from other
// goroutines; the working set itself is never touched here.
func (p *Pipeline) Stats() Stats {
	return Stats{
		EventsReceived:   p.eventsReceived.Load(),
		RecordsEmitted:   p.recordsEmitted.Load(),
		DeliveryFailures: p.deliveryFailures.Load(),
		QueueDropped:     p.queue.Dropped(),
	}
}
