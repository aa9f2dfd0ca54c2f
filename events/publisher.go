package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"helpsync/types"
)

// ReportSummary is the message published after every bulk operation
type ReportSummary struct {
	RunID             string          `json:"run_id"`
	Operation         types.Operation `json:"operation"`
	KnowledgeSourceID string          `json:"knowledge_source_id,omitempty"`
	SuccessCount      int             `json:"success_count"`
	FailureCount      int             `json:"failure_count"`
	SuccessRate       float64         `json:"success_rate"`
	FailedIDs         []string        `json:"failed_ids,omitempty"`
}

// Summarize builds the published message from a report
func Summarize(r types.SyncReport) ReportSummary {
	s := ReportSummary{
		RunID:             r.RunID,
		Operation:         r.Operation,
		KnowledgeSourceID: r.KnowledgeSourceID,
		SuccessCount:      r.SuccessCount,
		FailureCount:      r.FailureCount,
		SuccessRate:       r.SuccessRate(),
	}
	for _, item := range r.Items {
		if item.Outcome == types.OutcomeFailure {
			s.FailedIDs = append(s.FailedIDs, item.ItemID)
		}
	}
	return s
}

// Publisher sends report summaries to a topic
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher connects a synchronous producer
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	return NewPublisherFromProducer(producer, topic), nil
}

// NewPublisherFromProducer wraps an existing producer
func NewPublisherFromProducer(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

// Save publishes the summary of r keyed by run id
func (p *Publisher) Save(_ context.Context, r types.SyncReport) error {
	data, err := json.Marshal(Summarize(r))
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(r.RunID),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		return fmt.Errorf("failed to publish report %s: %w", r.RunID, err)
	}
	return nil
}

// Close closes the producer
func (p *Publisher) Close() error {
	return p.producer.Close()
}
