package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	id "vetgate/pkg/domain"
	"vetgate/pkg/requestcontext"
)

// Sink receives events after they are durably stored. Sink failures are
// logged, never surfaced to the emitting request.
type Sink interface {
	Forward(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. Persistence goes through the
// Store; optional sinks (Kafka) fan the event out afterwards.
type Publisher struct {
	store  Store
	sinks  []Sink
	logger *slog.Logger
}

type PublisherOption func(*Publisher)

func WithSink(sink Sink) PublisherOption {
	return func(p *Publisher) {
		if sink != nil {
			p.sinks = append(p.sinks, sink)
		}
	}
}

func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = requestcontext.Now(ctx).UTC()
	}
	event.Payload = withRequestMetadata(ctx, event.Payload)
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, sink := range p.sinks {
		if err := sink.Forward(ctx, event); err != nil {
			p.logger.Warn("audit sink forward failed",
				"event_type", event.Type,
				"event_id", event.ID,
				"error", err,
			)
		}
	}
	return nil
}

func (p *Publisher) ListByCandidate(ctx context.Context, candidateID id.CandidateID) ([]Event, error) {
	return p.store.ListByCandidate(ctx, candidateID)
}

// withRequestMetadata stamps the caller's request identity onto the payload so
// stored events answer who triggered the action. Events emitted off-request
// (queue workers) carry none and pass through untouched.
func withRequestMetadata(ctx context.Context, payload map[string]string) map[string]string {
	stamp := func(key, value string) {
		if value == "" {
			return
		}
		if payload == nil {
			payload = make(map[string]string)
		}
		if _, exists := payload[key]; !exists {
			payload[key] = value
		}
	}
	stamp("request_id", requestcontext.RequestID(ctx))
	stamp("client_ip", requestcontext.ClientIP(ctx))
	stamp("user_agent", requestcontext.UserAgent(ctx))
	return payload
}
