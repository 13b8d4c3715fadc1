// Package events publishes domain events to an external broker.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

type Message struct {
	Key       string
	EventType string
	Payload   any
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Message) error { return nil }

func (noopPublisher) Close() error { return nil }

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer MessageWriter
	topic  string
}

func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func NewKafkaPublisher(writer MessageWriter, topic string) Publisher {
	return &kafkaPublisher{writer: writer, topic: topic}
}

// New returns a kafka publisher when brokers are configured and a no-op
// publisher otherwise.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return NewNoopPublisher()
	}
	return NewKafkaPublisher(NewKafkaWriter(brokers), topic)
}

func (p *kafkaPublisher) Publish(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg.Payload)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(msg.Key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(msg.EventType)},
		},
	})
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
