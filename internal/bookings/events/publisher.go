package events

import (
	"barberbook/pkg/kafka"
	"barberbook/pkg/middleware"
	"barberbook/pkg/model"
	"context"
	"errors"
	"time"
)

const (
	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status_changed"
	TypeBookingUpdated       = "booking.updated"

	SchemaVersion = "1"
	Source        = "barberbook-bookings"
)

// Event is a change to a booking that other systems may react to.
type Event struct {
	Type           string
	Booking        *model.Booking
	PreviousStatus string
}

// Payload is the JSON body of a booking event.
type Payload struct {
	Type           string         `json:"type"`
	Booking        *model.Booking `json:"booking"`
	PreviousStatus string         `json:"previousStatus,omitempty"`
	OccurredAt     time.Time      `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	producer MessagePublisher
}

func NewKafkaPublisher(producer MessagePublisher) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	if event.Booking == nil || event.Booking.ID == "" {
		return errors.New("event has no booking id")
	}

	msg := kafka.NewMessage().
		WithKey(event.Booking.ID).
		WithValue(Payload{
			Type:           event.Type,
			Booking:        event.Booking,
			PreviousStatus: event.PreviousStatus,
			OccurredAt:     time.Now().UTC(),
		}).
		WithEventType(event.Type).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		Build()

	return p.producer.Publish(ctx, msg)
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error {
	return nil
}
