package inbound

import (
	"TagSpectra/internal/model"
	"strconv"
	"sync"
	"testing"
	"time"
)

func event(tag string, value string) model.ChangeEvent {
	return model.ChangeEvent{Tag: tag, Timestamp: time.UnixMilli(100), Value: value}
}

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue(16)
	for i := 0; i < 5; i++ {
		q.Push(event("temp", strconv.Itoa(i)))
	}

	events := q.PollAll()
	if len(events) != 5 {
		t.Fatalf("Expected 5 events, got %d", len(events))
	}
	for i, ev := range events {
		if ev.Value != strconv.Itoa(i) {
			t.Errorf("Expected value %d at position %d, got %s", i, i, ev.Value)
		}
	}
}

func TestQueue_PollAllEmpties(t *testing.T) {
	q := NewQueue(16)
	q.Push(event("temp", "1"))

	if got := q.PollAll(); len(got) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(got))
	}
	if got := q.PollAll(); got != nil {
		t.Errorf("Expected nil from empty queue, got %v", got)
	}
	if q.Len() != 0 {
		t.Errorf("Expected empty queue, got length %d", q.Len())
	}
}

func TestQueue_OverflowDropsOldest(t *testing.T) {
	q := NewQueue(4)
	for i := 0; i < 6; i++ {
		q.Push(event("temp", strconv.Itoa(i)))
	}

	if q.Dropped() != 2 {
		t.Errorf("Expected 2 dropped events, got %d", q.Dropped())
	}
	events := q.PollAll()
	if len(events) != 4 {
		t.Fatalf("Expected 4 events, got %d", len(events))
	}
	if events[0].Value != "2" || events[3].Value != "5" {
		t.Errorf("Expected oldest events dropped, got first=%s last=%s", events[0].Value, events[3].Value)
	}
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	q := NewQueue(10000)
	var wg sync.WaitGroup
	producers, perProducer := 8, 100

	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(event("temp", "v"))
			}
		}()
	}
	wg.Wait()

	if got := len(q.PollAll()); got != producers*perProducer {
		t.Errorf("Expected %d events, got %d", producers*perProducer, got)
	}
}
