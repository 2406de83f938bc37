package subscription

import (
	"TagSpectra/internal/config"
	"TagSpectra/internal/engine/protocol"
	"TagSpectra/internal/model"
	"log"

	"github.com/nats-io/nats.go"
)

// Publisher is the source side of the transport: it publishes change events
// as wire lines to the configured subject. Used by the probe.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher connects to the transport.
func NewPublisher(cfg config.NATSConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &Publisher{nc: nc, subject: cfg.Subject}, nil
}

// Publish serializes one change event to its wire line and publishes it.
// Events that already carry their raw line are sent verbatim.
func (p *Publisher) Publish(ev model.ChangeEvent) error {
	line := ev.Raw
	if line == "" {
		line = protocol.FormatLine(ev)
	}
	return p.nc.Publish(p.subject, []byte(line))
}

// Close drains and closes the transport connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
}
