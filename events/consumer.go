package events

import (
	"context"
	"errors"
	"log"

	"github.com/IBM/sarama"
)

// Handler processes one message value. Returning false leaves the offset
// uncommitted so the message is read again after a restart or rebalance.
type Handler interface {
	HandleMessage(ctx context.Context, value []byte) (mark bool, err error)
}

// ConsumerConfig selects the brokers, topic and group of a Consumer
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Handler Handler
}

// Consumer feeds sync requests from a Kafka consumer group to a Handler
type Consumer struct {
	group   sarama.ConsumerGroup
	handler Handler
	topic   string
	groupID string
}

// NewConsumer joins the consumer group; it fails when no broker is reachable
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Version = sarama.V3_6_0_0
	saramaCfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	// Requests published while the server was down are stale
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaCfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}
	return &Consumer{group: group, handler: cfg.Handler, topic: cfg.Topic, groupID: cfg.GroupID}, nil
}

// Run consumes until ctx is cancelled or the consumer is closed.
// Every rebalance ends a session and Run joins the next one.
func (c *Consumer) Run(ctx context.Context) {
	go func() {
		for err := range c.group.Errors() {
			log.Printf("❌ Kafka consumer error: %v", err)
		}
	}()

	log.Printf("✅ Listening for sync requests (group: %s, topic: %s)", c.groupID, c.topic)
	for {
		err := c.group.Consume(ctx, []string{c.topic}, session{handler: c.handler})
		if errors.Is(err, sarama.ErrClosedConsumerGroup) {
			break
		}
		if err != nil {
			log.Printf("⚠️  Kafka session ended: %v", err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	log.Println("Kafka consumer stopped")
}

// Close leaves the consumer group
func (c *Consumer) Close() error {
	return c.group.Close()
}

// session implements sarama.ConsumerGroupHandler for one generation of the group
type session struct {
	handler Handler
}

func (session) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (session) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (s session) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			log.Printf("📥 Sync request at partition=%d offset=%d", msg.Partition, msg.Offset)

			mark, err := s.handler.HandleMessage(sess.Context(), msg.Value)
			if err != nil {
				log.Printf("❌ Sync request at offset %d failed: %v", msg.Offset, err)
			}
			if mark {
				sess.MarkMessage(msg, "")
			}
		case <-sess.Context().Done():
			return nil
		}
	}
}
