package broker

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// KafkaBroker publishes opaque payloads to Kafka. The topic travels on the
// message so one writer serves every outbox topic.
type KafkaBroker struct {
	writer *kafka.Writer
}

func NewKafkaBroker(brokers string) *KafkaBroker {
	return &KafkaBroker{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers),
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (b *KafkaBroker) Publish(ctx context.Context, topic string, key, value []byte) error {
	return b.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
	})
}

func (b *KafkaBroker) Close() error {
	return b.writer.Close()
}
