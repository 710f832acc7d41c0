//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"vetgate/internal/audit"
	id "vetgate/pkg/domain"
	"vetgate/pkg/testutil/containers"
)

type KafkaSinkSuite struct {
	suite.Suite
	broker string
	ctx    context.Context
}

func TestKafkaSinkSuite(t *testing.T) {
	suite.Run(t, new(KafkaSinkSuite))
}

func (s *KafkaSinkSuite) SetupSuite() {
	s.broker = containers.GetManager().GetRedpanda(s.T()).Broker
	s.ctx = context.Background()
}

func (s *KafkaSinkSuite) consumer(topic string) *kgo.Client {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	s.T().Cleanup(client.Close)
	return client
}

func (s *KafkaSinkSuite) TestForwardDeliversEventKeyedByCandidate() {
	topic := "vetgate.audit.events.forward-test"
	sink, err := audit.NewKafkaSink(s.ctx, []string{s.broker}, audit.WithKafkaTopic(topic))
	s.Require().NoError(err)

	candidateID := id.NewCandidateID()
	publisher := audit.NewPublisher(audit.NewInMemoryStore(), audit.WithSink(sink))
	s.Require().NoError(publisher.Emit(s.ctx, audit.Event{
		Type:        audit.EventRunCompleted,
		CandidateID: candidateID,
		Payload:     map[string]string{"traffic_light": "GREEN", "progress": "4/4"},
	}))
	s.Require().NoError(sink.Close(s.ctx))

	consumer := s.consumer(topic)
	fetchCtx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	s.Require().NoError(fetches.Err())

	records := fetches.Records()
	s.Require().Len(records, 1)
	s.Equal(candidateID.String(), string(records[0].Key))

	var event audit.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &event))
	s.Equal(audit.EventRunCompleted, event.Type)
	s.Equal("4/4", event.Payload["progress"])
	s.False(event.OccurredAt.IsZero())
}

func (s *KafkaSinkSuite) TestNewKafkaSinkIdempotentTopicCreation() {
	topic := "vetgate.audit.events.idempotent-test"

	first, err := audit.NewKafkaSink(s.ctx, []string{s.broker}, audit.WithKafkaTopic(topic))
	s.Require().NoError(err)
	s.Require().NoError(first.Close(s.ctx))

	second, err := audit.NewKafkaSink(s.ctx, []string{s.broker}, audit.WithKafkaTopic(topic))
	s.Require().NoError(err)
	s.Require().NoError(second.Close(s.ctx))
}
