package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrSlotTaken is returned when the unique active-slot index rejects a write.
	ErrSlotTaken = errors.New("time slot already booked")
)
