package nats

import (
	"context"
	"fmt"

	"review-rag-be/internal/pkg/logger"
	"review-rag-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher handles sending events to the NATS bus.
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewPublisher(url string, log logger.ILogger) (*Publisher, error) {
	nc, js, err := connect(url, log)
	if err != nil {
		return nil, err
	}
	ensureStream(js, log)
	return &Publisher{nc: nc, js: js}, nil
}

// Publish sends the event payload to events.<type>. The event timestamp is
// carried in the message header.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	subject := Subject(event.EventType())

	msg := nats.NewMsg(subject)
	msg.Data = event.Payload()
	msg.Header.Set(headerOccurredAt, event.Timestamp().UTC().Format(timeLayout))

	if _, err := p.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
