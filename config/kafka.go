package config

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// NewKafkaWriter returns a writer for the workflow event topic, or nil when
// no brokers are configured.
func NewKafkaWriter(s KafkaSettings) *kafka.Writer {
	if len(s.Brokers) == 0 || s.Topic == "" {
		return nil
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(s.Brokers...),
		Topic:        s.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	}
}
