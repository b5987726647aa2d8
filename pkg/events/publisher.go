package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fitbook/pkg/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingCancelled = "booking.cancelled"

	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
)

// BookingEvent is the payload published on booking lifecycle transitions.
// Keyed by class ID so events for one class stay ordered on one partition.
type BookingEvent struct {
	EventID     string    `json:"event_id"`
	Type        string    `json:"type"`
	BookingID   string    `json:"booking_id"`
	ClassID     string    `json:"class_id"`
	ClientEmail string    `json:"client_email"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type Publisher struct {
	writer *kafka.Writer
	source string
	log    *logger.Logger
}

func NewPublisher(brokers []string, topic, source string, log *logger.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Publisher{
		writer: writer,
		source: source,
		log:    log,
	}, nil
}

// Publish emits a booking event. Failures are the caller's to decide on; the
// booking workflow logs and continues, since the booking itself is already
// committed.
func (p *Publisher) Publish(ctx context.Context, eventType, bookingID, classID, clientEmail string) error {
	event := BookingEvent{
		EventID:     uuid.NewString(),
		Type:        eventType,
		BookingID:   bookingID,
		ClassID:     classID,
		ClientEmail: clientEmail,
		OccurredAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal booking event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(classID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(event.EventID)},
			{Key: HeaderEventType, Value: []byte(eventType)},
			{Key: HeaderSource, Value: []byte(p.source)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish booking event: %w", err)
	}

	p.log.Debug("Booking event published",
		"event_id", event.EventID,
		"type", eventType,
		"booking_id", bookingID,
		"class_id", classID,
	)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
