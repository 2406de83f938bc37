package subscription

import (
	"TagSpectra/internal/config"
	"TagSpectra/internal/engine/inbound"
	"TagSpectra/internal/engine/protocol"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Service manages tag subscriptions against the telemetry transport. Each
// subscription decodes incoming wire lines, filters them against the
// subscribed tag set, and pushes the resulting change events into the
// subscriber-owned inbound queue. The delivery goroutine never blocks on the
// consumer: the queue absorbs (and, at capacity, sheds) bursts.
type Service struct {
	nc      *nats.Conn
	subject string

	mu   sync.Mutex
	subs map[string]*activeSub
}

type activeSub struct {
	sub *nats.Subscription
	// lastValue tracks the most recently delivered value per tag, used to
	// suppress timestamp-only changes when the subscriber opted out of them.
	lastValue map[string]string
}

// NewService connects to the transport.
func NewService(cfg config.NATSConfig) (*Service, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &Service{
		nc:      nc,
		subject: cfg.Subject,
		subs:    make(map[string]*activeSub),
	}, nil
}

// Subscribe registers interest in the given tags and returns an opaque
// subscription handle. Events for tags outside the set are discarded at this
// boundary. When notifyOnTimestampOnlyChange is false, events whose value is
// unchanged from the previous delivery for the same tag are suppressed.
// minPublishInterval is announced to the source alongside the tag set; the
// source decides how to honor it.
func (s *Service) Subscribe(tags []string, queue *inbound.Queue, notifyOnTimestampOnlyChange bool, minPublishInterval time.Duration) (string, error) {
	wanted := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if tag != "" {
			wanted[tag] = struct{}{}
		}
	}

	state := &activeSub{lastValue: make(map[string]string)}

	// NATS dispatches messages of one subscription on a single goroutine,
	// so state.lastValue needs no locking.
	sub, err := s.nc.Subscribe(s.subject, func(msg *nats.Msg) {
		ev, err := protocol.ParseLine(string(msg.Data))
		if err != nil {
			log.Printf("Dropping malformed change event: %v", err)
			return
		}
		if _, ok := wanted[ev.Tag]; !ok {
			return
		}
		if !notifyOnTimestampOnlyChange {
			if last, seen := state.lastValue[ev.Tag]; seen && last == ev.Value {
				return
			}
			state.lastValue[ev.Tag] = ev.Value
		}
		queue.Push(ev)
	})
	if err != nil {
		return "", fmt.Errorf("failed to subscribe to %q: %w", s.subject, err)
	}
	state.sub = sub

	handle := uuid.NewString()
	s.mu.Lock()
	s.subs[handle] = state
	s.mu.Unlock()

	// Announce the subscription to the source so it can adjust its publish
	// cadence. Best effort; a source that ignores it just publishes at its
	// own pace.
	announce := fmt.Sprintf("%s,%d,%s", handle, minPublishInterval.Milliseconds(), strings.Join(tags, ";"))
	if err := s.nc.Publish(s.subject+".subscribe", []byte(announce)); err != nil {
		log.Printf("Failed to announce subscription %s: %v", handle, err)
	}

	log.Printf("Subscribed to '%s' with %d tags (handle %s)", s.subject, len(wanted), handle)
	return handle, nil
}

// Unsubscribe stops future deliveries for the given handle. Events already
// queued stay in the queue; whether they are ever drained is the consumer's
// business.
func (s *Service) Unsubscribe(handle string) error {
	s.mu.Lock()
	state, ok := s.subs[handle]
	delete(s.subs, handle)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("unknown subscription handle %q", handle)
	}
	if err := state.sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe %s: %w", handle, err)
	}
	if err := s.nc.Publish(s.subject+".unsubscribe", []byte(handle)); err != nil {
		log.Printf("Failed to announce unsubscription %s: %v", handle, err)
	}
	return nil
}

// Close drops all subscriptions and closes the transport connection.
func (s *Service) Close() {
	s.mu.Lock()
	for handle, state := range s.subs {
		if err := state.sub.Unsubscribe(); err != nil {
			log.Printf("Failed to unsubscribe %s during close: %v", handle, err)
		}
	}
	s.subs = make(map[string]*activeSub)
	s.mu.Unlock()

	if s.nc != nil {
		s.nc.Close()
		log.Println("NATS connection closed.")
	}
}
