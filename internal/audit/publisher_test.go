package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "vetgate/pkg/domain"
	"vetgate/pkg/requestcontext"
)

type recordingSink struct {
	events []Event
	err    error
}

func (s *recordingSink) Forward(_ context.Context, event Event) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type PublisherSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *PublisherSuite) TestEmitStampsAndStores() {
	publisher := NewPublisher(s.store)
	candidateID := id.NewCandidateID()

	err := publisher.Emit(s.ctx, Event{
		Type:        EventCandidateCreated,
		CandidateID: candidateID,
		Payload:     map[string]string{"full_name": "Ada Chen"},
	})
	s.Require().NoError(err)

	events, err := publisher.ListByCandidate(s.ctx, candidateID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(EventCandidateCreated, events[0].Type)
	s.NotZero(events[0].ID)
	s.False(events[0].OccurredAt.IsZero())
}

func (s *PublisherSuite) TestEmitStampsRequestMetadata() {
	publisher := NewPublisher(s.store)
	candidateID := id.NewCandidateID()

	ctx := requestcontext.WithRequestID(s.ctx, "req-123")
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.7", "curl/8.0")
	fixed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	ctx = requestcontext.WithTime(ctx, fixed)

	err := publisher.Emit(ctx, Event{
		Type:        EventJobEnqueued,
		CandidateID: candidateID,
		Payload:     map[string]string{"job_id": "abc"},
	})
	s.Require().NoError(err)

	events, err := publisher.ListByCandidate(s.ctx, candidateID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal("abc", events[0].Payload["job_id"])
	s.Equal("req-123", events[0].Payload["request_id"])
	s.Equal("203.0.113.7", events[0].Payload["client_ip"])
	s.Equal("curl/8.0", events[0].Payload["user_agent"])
	s.Equal(fixed, events[0].OccurredAt)

	s.Run("off-request emit stays unstamped", func() {
		workerCandidate := id.NewCandidateID()
		s.Require().NoError(publisher.Emit(s.ctx, Event{
			Type:        EventJobFailed,
			CandidateID: workerCandidate,
		}))
		events, err := publisher.ListByCandidate(s.ctx, workerCandidate)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Empty(events[0].Payload)
	})
}

func (s *PublisherSuite) TestEmitFansOutToSinks() {
	sink := &recordingSink{}
	publisher := NewPublisher(s.store, WithSink(sink))

	err := publisher.Emit(s.ctx, Event{Type: EventRunCompleted, CandidateID: id.NewCandidateID()})
	s.Require().NoError(err)
	s.Require().Len(sink.events, 1)
	s.Equal(EventRunCompleted, sink.events[0].Type)
}

func (s *PublisherSuite) TestSinkFailureDoesNotFailEmit() {
	sink := &recordingSink{err: errors.New("broker down")}
	publisher := NewPublisher(s.store,
		WithSink(sink),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	candidateID := id.NewCandidateID()

	err := publisher.Emit(s.ctx, Event{Type: EventJobFailed, CandidateID: candidateID})
	s.Require().NoError(err, "store write succeeded; sink failure is logged only")

	events, err := publisher.ListByCandidate(s.ctx, candidateID)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *PublisherSuite) TestListRecentOrdersNewestFirst() {
	publisher := NewPublisher(s.store)
	base := time.Now().UTC()
	for i, eventType := range []EventType{EventCandidateCreated, EventJobEnqueued, EventRunCompleted} {
		s.Require().NoError(publisher.Emit(s.ctx, Event{
			Type:        eventType,
			CandidateID: id.NewCandidateID(),
			OccurredAt:  base.Add(time.Duration(i) * time.Second),
		}))
	}

	events, err := s.store.ListRecent(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(EventRunCompleted, events[0].Type)
}
