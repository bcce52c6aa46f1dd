package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/ciaa/ciaa-dashboard/internal/config"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func TestNewDialer(t *testing.T) {
	local := NewDialer(config.KafkaConfig{Brokers: []string{"localhost:9092"}})
	if local.SASLMechanism != nil || local.TLS != nil {
		t.Error("local dialer should not use SASL or TLS")
	}

	cloud := NewDialer(config.KafkaConfig{Brokers: []string{"b:9092"}, APIKey: "key", APISecret: "secret"})
	if cloud.SASLMechanism == nil || cloud.SASLMechanism.Name() != "PLAIN" {
		t.Errorf("SASL mechanism = %v, want PLAIN", cloud.SASLMechanism)
	}
	if cloud.TLS == nil {
		t.Error("expected TLS when credentials are set")
	}

	transport, ok := NewTransport(config.KafkaConfig{APIKey: "key", APISecret: "secret"}).(*kafka.Transport)
	if !ok || transport.SASL == nil || transport.TLS == nil {
		t.Errorf("transport = %#v, want SASL over TLS", transport)
	}
}

func TestRunEventProcessor_NoBrokers(t *testing.T) {
	err := RunEventProcessor(context.Background(), config.KafkaConfig{}, nil, zap.NewNop())
	if !errors.Is(err, ErrNoBrokers) {
		t.Errorf("err = %v, want ErrNoBrokers", err)
	}
}
