package sink

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes each document as one message keyed by its output path.
type Kafka struct {
	writer messageWriter
	topic  string
}

// NewKafka creates a writer for topic on brokers.
func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
		topic: topic,
	}
}

func (k *Kafka) Name() string { return "kafka" }

func (k *Kafka) Write(ctx context.Context, obj Object) error {
	err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(obj.Key),
		Value: []byte(obj.Content),
		Headers: []kafka.Header{
			{Key: "tag", Value: []byte(obj.Tag)},
			{Key: "source", Value: []byte(obj.Source)},
		},
	})
	if err != nil {
		return &RetryableError{Sink: k.Name(), Message: fmt.Sprintf("publish %s to %s: %v", obj.Key, k.topic, err)}
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
