package events

import (
	"barberbook/pkg/kafka"
	"barberbook/pkg/middleware"
	"barberbook/pkg/model"
	"context"
	"errors"
	"testing"
)

type fakeProducer struct {
	messages []kafka.Message
	err      error
}

func (f *fakeProducer) Publish(ctx context.Context, msg kafka.Message) error {
	f.messages = append(f.messages, msg)
	return f.err
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := &fakeProducer{}
	publisher := NewKafkaPublisher(producer)

	booking := &model.Booking{
		ID:           "65f000000000000000000001",
		CustomerName: "Juan Dela Cruz",
		Status:       model.StatusConfirmed,
	}
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-123")

	err := publisher.Publish(ctx, Event{
		Type:           TypeBookingStatusChanged,
		Booking:        booking,
		PreviousStatus: model.StatusPending,
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(producer.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(producer.messages))
	}
	msg := producer.messages[0]

	if msg.Key != booking.ID {
		t.Errorf("Key = %q, want %q", msg.Key, booking.ID)
	}
	if got := msg.GetEventType(); got != TypeBookingStatusChanged {
		t.Errorf("event type = %q, want %q", got, TypeBookingStatusChanged)
	}
	if got := msg.GetCorrelationID(); got != "req-123" {
		t.Errorf("correlation id = %q, want req-123", got)
	}
	if msg.GetEventID() == "" {
		t.Error("expected an event id")
	}
	if got := msg.Headers[kafka.HeaderSource]; got != Source {
		t.Errorf("source = %q, want %q", got, Source)
	}

	var payload Payload
	if err := msg.DecodeValue(&payload); err != nil {
		t.Fatalf("DecodeValue() error = %v", err)
	}
	if payload.Type != TypeBookingStatusChanged {
		t.Errorf("payload type = %q", payload.Type)
	}
	if payload.PreviousStatus != model.StatusPending {
		t.Errorf("previous status = %q, want pending", payload.PreviousStatus)
	}
	if payload.Booking == nil || payload.Booking.ID != booking.ID {
		t.Errorf("payload booking = %+v", payload.Booking)
	}
}

func TestKafkaPublisher_PropagatesProducerError(t *testing.T) {
	wantErr := errors.New("broker down")
	publisher := NewKafkaPublisher(&fakeProducer{err: wantErr})

	err := publisher.Publish(context.Background(), Event{
		Type:    TypeBookingCreated,
		Booking: &model.Booking{ID: "65f000000000000000000001"},
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Publish() error = %v, want %v", err, wantErr)
	}
}

func TestKafkaPublisher_RequiresBookingID(t *testing.T) {
	producer := &fakeProducer{}
	publisher := NewKafkaPublisher(producer)

	if err := publisher.Publish(context.Background(), Event{Type: TypeBookingCreated, Booking: &model.Booking{}}); err == nil {
		t.Error("expected an error for a booking without id")
	}
	if len(producer.messages) != 0 {
		t.Error("nothing should be published")
	}
}
