package kafka

import "errors"

var (
	ErrProducerClosed = errors.New("kafka producer is closed")

	ErrEmptyKey = errors.New("message key cannot be empty")

	// ErrEmptyValue is also returned when the builder could not encode the payload.
	ErrEmptyValue = errors.New("message value cannot be empty")
)
