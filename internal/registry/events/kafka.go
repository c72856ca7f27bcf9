package events

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"walletreg/internal/registry/models"
	"walletreg/internal/registry/service"
	"walletreg/pkg/requestcontext"
)

const (
	headerEventType = "event_type"
	headerRequestID = "request_id"
)

var _ service.EventSink = (*KafkaSink)(nil)

// Producer is the slice of *kgo.Client the sink needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaSink publishes notifications synchronously to one topic.
type KafkaSink struct {
	producer Producer
	topic    string
}

func NewKafkaSink(producer Producer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Emit(ctx context.Context, event models.WalletVerified) error {
	msg, err := NewMessage(event)
	if err != nil {
		return err
	}
	return s.Publish(ctx, msg)
}

// Publish produces msg and waits for the broker acknowledgement.
func (s *KafkaSink) Publish(ctx context.Context, msg Message) error {
	return s.PublishAll(ctx, []Message{msg})
}

// PublishAll produces msgs in order and waits until all are acknowledged.
func (s *KafkaSink) PublishAll(ctx context.Context, msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}
	records := make([]*kgo.Record, len(msgs))
	for i, msg := range msgs {
		records[i] = s.record(ctx, msg)
	}
	if err := s.producer.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", s.topic, err)
	}
	return nil
}

func (s *KafkaSink) record(ctx context.Context, msg Message) *kgo.Record {
	headers := []kgo.RecordHeader{{Key: headerEventType, Value: []byte(msg.EventType)}}
	if reqID := requestcontext.RequestID(ctx); reqID != "" {
		headers = append(headers, kgo.RecordHeader{Key: headerRequestID, Value: []byte(reqID)})
	}
	return &kgo.Record{
		Topic:   s.topic,
		Key:     []byte(msg.Key),
		Value:   msg.Payload,
		Headers: headers,
	}
}
