package model

import (
	"strings"
	"time"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

type Booking struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	CustomerName string    `json:"customerName" bson:"customer_name" validate:"required,max=100"`
	Phone        string    `json:"phone" bson:"phone" validate:"required,max=32"`
	Service      string    `json:"service" bson:"service" validate:"max=100"`
	Stylist      string    `json:"stylist" bson:"stylist" validate:"max=100"`
	Date         string    `json:"date" bson:"date" validate:"required,isodate"`
	Time         string    `json:"time" bson:"time" validate:"required,clock"`
	Price        Price     `json:"price" bson:"price"`
	Status       string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	Notes        string    `json:"notes" bson:"notes" validate:"max=500"`
	UserID       string    `json:"userId,omitempty" bson:"user_id,omitempty"`
	SlotKey      string    `json:"-" bson:"slot_key,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// BookingRequest is the client payload for creating or editing a booking.
type BookingRequest struct {
	CustomerName string `json:"customerName"`
	Phone        string `json:"phone"`
	Service      string `json:"service"`
	Stylist      string `json:"stylist"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Price        Price  `json:"price"`
	Notes        string `json:"notes"`
}

type StatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=confirmed cancelled"`
}

// BookingFilter narrows a listing. Empty fields do not filter.
type BookingFilter struct {
	Phone  string
	Date   string
	UserID string
}

// IsActiveStatus reports whether a booking in this status holds its slot.
func IsActiveStatus(status string) bool {
	return status == StatusPending || status == StatusConfirmed
}

// SlotKey identifies a (stylist, date, time) slot. Date and time have a fixed
// width so the key stays unambiguous whatever the stylist name contains.
func SlotKey(stylist, date, clock string) string {
	return stylist + "|" + date + "|" + clock
}

// ActiveSlotKey returns the slot the booking currently occupies, or "" when it
// occupies none (no stylist, or cancelled).
func (b *Booking) ActiveSlotKey() string {
	if strings.TrimSpace(b.Stylist) == "" || !IsActiveStatus(b.Status) {
		return ""
	}
	return SlotKey(b.Stylist, b.Date, b.Time)
}

// FromRequest copies the editable fields of req onto the booking.
func (b *Booking) FromRequest(req *BookingRequest) {
	b.CustomerName = req.CustomerName
	b.Phone = req.Phone
	b.Service = req.Service
	b.Stylist = req.Stylist
	b.Date = req.Date
	b.Time = req.Time
	b.Price = req.Price
	b.Notes = req.Notes
}
