package issues

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Producer publishes catalog events so that every dashboard replica reloads together.
type Producer struct {
	Writer *kafka.Writer
}

// NewProducer initializes a Kafka writer for the issue events topic.
func NewProducer(brokers []string, topic string, transport kafka.RoundTripper) *Producer {
	return &Producer{
		Writer: &kafka.Writer{
			Addr:      kafka.TCP(brokers...),
			Topic:     topic,
			Balancer:  &kafka.LeastBytes{},
			Transport: transport,
		},
	}
}

// PublishCatalogRefresh asks all consumers to reload the filter catalog.
func (p *Producer) PublishCatalogRefresh(ctx context.Context) error {
	event := IssueEvent{
		EventType:     EventCatalogRefresh,
		EventID:       uuid.New().String(),
		EventTime:     time.Now().UTC(),
		SchemaVersion: "v1",
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.EventType),
		Value: payload,
	})
}

// Close cleans up the Kafka writer
func (p *Producer) Close() error {
	return p.Writer.Close()
}
