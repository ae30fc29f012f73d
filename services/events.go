package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Event types published after each successful mutation.
const (
	EventDealCreated       = "deal.created"
	EventStageAdvanced     = "deal.stage_advanced"
	EventHandoffSet        = "deal.handoff_set"
	EventReleaseAuthorized = "deal.release_authorized"
	EventDocumentRejected  = "deal.document_rejected"
	EventPartnerAction     = "deal.partner_action"
	EventPartnerAlertSent  = "deal.partner_alert_sent"
)

type DealEvent struct {
	Type       string         `json:"type"`
	DealID     int            `json:"deal_id"`
	ActorID    int            `json:"actor_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaEventPublisher writes events keyed by deal id so one deal's events
// stay ordered on a partition.
type KafkaEventPublisher struct {
	writer messageWriter
	log    zerolog.Logger
}

// NewKafkaEventPublisher returns a publisher over w. A nil writer yields a
// publisher that drops events.
func NewKafkaEventPublisher(w *kafka.Writer, log zerolog.Logger) *KafkaEventPublisher {
	p := &KafkaEventPublisher{log: log}
	if w != nil {
		p.writer = w
	}
	return p
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, event DealEvent) error {
	if p == nil || p.writer == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.Itoa(event.DealID)),
		Value: body,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
}
