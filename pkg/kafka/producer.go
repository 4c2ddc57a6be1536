package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"
)

const defaultProduceTimeout = 5 * time.Second

// KafkaProducer publishes records synchronously.
type KafkaProducer struct {
	client *kgo.Client
	logger *logrus.Logger
}

// NewKafkaProducer creates a producer. The connection is established lazily
// by franz-go on first produce.
func NewKafkaProducer(brokers []string, clientID string, logger *logrus.Logger) (*KafkaProducer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}
	if clientID == "" {
		clientID = "clara"
	}
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.ProducerLinger(5 * time.Millisecond),
		kgo.RecordDeliveryTimeout(defaultProduceTimeout),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return &KafkaProducer{
		client: client,
		logger: logger,
	}, nil
}

func (p *KafkaProducer) Close() error {
	p.client.Close()
	return nil
}

// ProduceMessage writes one record and waits for the broker ack.
func (p *KafkaProducer) ProduceMessage(ctx context.Context, topic string, key []byte, value []byte, headers map[string]string) error {
	record := &kgo.Record{
		Topic:   topic,
		Key:     key,
		Value:   value,
		Headers: recordHeaders(headers),
	}

	ctx, cancel := context.WithTimeout(ctx, defaultProduceTimeout)
	defer cancel()

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}
	return nil
}

func (p *KafkaProducer) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultProduceTimeout)
	defer cancel()

	if err := p.client.Ping(ctx); err != nil {
		return fmt.Errorf("kafka health check failed: %w", err)
	}
	return nil
}

func recordHeaders(headers map[string]string) []kgo.RecordHeader {
	if len(headers) == 0 {
		return nil
	}
	out := make([]kgo.RecordHeader, 0, len(headers))
	for k, v := range headers {
		out = append(out, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return out
}
