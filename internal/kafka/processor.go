// Package kafka connects the dashboard to the issue events topic.
package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"time"

	"github.com/ciaa/ciaa-dashboard/events/modules/issues"
	"github.com/ciaa/ciaa-dashboard/internal/config"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.uber.org/zap"
)

// ErrNoBrokers is returned when the processor is started without brokers.
var ErrNoBrokers = errors.New("no kafka brokers configured")

// NewDialer returns a dialer for the configured cluster. SASL/PLAIN over TLS is used
// when credentials are set; otherwise a plain connection for local development.
func NewDialer(cfg config.KafkaConfig) *kafka.Dialer {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if cfg.APIKey != "" && cfg.APISecret != "" {
		dialer.SASLMechanism = plain.Mechanism{
			Username: cfg.APIKey,
			Password: cfg.APISecret,
		}
		dialer.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return dialer
}

// NewTransport returns the writer transport matching NewDialer.
func NewTransport(cfg config.KafkaConfig) kafka.RoundTripper {
	transport := &kafka.Transport{DialTimeout: 10 * time.Second}
	if cfg.APIKey != "" && cfg.APISecret != "" {
		transport.SASL = plain.Mechanism{
			Username: cfg.APIKey,
			Password: cfg.APISecret,
		}
		transport.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return transport
}

// RunEventProcessor checks that the first broker is reachable, then consumes issue events
// in the background until ctx is done. Refreshes go through refresher.
func RunEventProcessor(ctx context.Context, cfg config.KafkaConfig, refresher issues.CatalogRefresher, logger *zap.Logger) error {
	if !cfg.Enabled() {
		return ErrNoBrokers
	}
	dialer := NewDialer(cfg)

	var err error
	for i := 1; i <= 3; i++ {
		logger.Sugar().Infof("Kafka connection attempt %d/3...", i)
		var conn *kafka.Conn
		conn, err = dialer.DialContext(ctx, "tcp", cfg.Brokers[0])
		if err == nil {
			_ = conn.Close()
			break
		}
		if i < 3 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}
	if err != nil {
		return err
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MaxBytes: 10e6,
		Dialer:   dialer,
	})

	go func() {
		defer reader.Close()
		logger.Info("Kafka event processor started, listening for issue events", zap.String("topic", cfg.Topic))

		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("failed to read issue event", zap.Error(err))
				continue
			}
			if err := issues.HandleIssueEvent(ctx, msg.Value, refresher, logger); err != nil {
				logger.Error("failed to handle issue event",
					zap.Int64("offset", msg.Offset), zap.Int("partition", msg.Partition), zap.Error(err))
			}
		}
	}()

	return nil
}
