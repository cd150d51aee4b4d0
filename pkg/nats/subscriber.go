package nats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"review-rag-be/internal/pkg/logger"
	"review-rag-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	headerOccurredAt = "Occurred-At"
	timeLayout       = time.RFC3339Nano
)

// EventHandler is a function that processes an event.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber handles listening for events from NATS.
type Subscriber struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger logger.ILogger

	mu       sync.Mutex
	contexts []jetstream.ConsumeContext
}

func NewSubscriber(url string, log logger.ILogger) (*Subscriber, error) {
	nc, js, err := connect(url, log)
	if err != nil {
		return nil, err
	}
	ensureStream(js, log)
	return &Subscriber{nc: nc, js: js, logger: log}, nil
}

// Subscribe registers a durable consumer for subject. Every delivery is
// acked after one handler attempt: handler errors are logged, not
// redelivered.
func (s *Subscriber) Subscribe(ctx context.Context, subject string, durableName string, handler EventHandler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		evt := ToEvent(msg.Subject(), msg.Data(), msg.Headers())
		if err := handler(ctx, evt); err != nil {
			s.logger.Error("NATS", "Handler failed", map[string]interface{}{
				"subject": msg.Subject(),
				"error":   err.Error(),
			})
		}
		if err := msg.Ack(); err != nil {
			s.logger.Warn("NATS", "Ack failed", map[string]interface{}{
				"subject": msg.Subject(),
				"error":   err.Error(),
			})
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	s.mu.Lock()
	s.contexts = append(s.contexts, cc)
	s.mu.Unlock()

	s.logger.Info("NATS", "Subscribed", map[string]interface{}{
		"subject": subject,
		"durable": durableName,
	})
	return nil
}

// ToEvent rebuilds an event from a delivered message. A missing or invalid
// timestamp header falls back to the receive time.
func ToEvent(subject string, data []byte, header nats.Header) events.BaseEvent {
	occurredAt := time.Now()
	if raw := header.Get(headerOccurredAt); raw != "" {
		if t, err := time.Parse(timeLayout, raw); err == nil {
			occurredAt = t
		}
	}
	return events.BaseEvent{
		Type:       EventType(subject),
		Data:       data,
		OccurredAt: occurredAt,
	}
}

// Close stops all consumers and closes the connection.
func (s *Subscriber) Close() {
	s.mu.Lock()
	for _, cc := range s.contexts {
		cc.Stop()
	}
	s.contexts = nil
	s.mu.Unlock()

	if s.nc != nil {
		s.nc.Close()
	}
}
