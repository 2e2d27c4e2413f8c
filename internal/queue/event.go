// Package queue carries booking lifecycle events to the message broker and
// consumes them into the booking audit log.
package queue

import (
	"context"
	"time"
)

// Booking event types.
const (
	EventBookingCreated   = "booking.created"
	EventBookingCompleted = "booking.completed"
	EventBookingCanceled  = "booking.canceled"
)

// BookingEvent is published after a booking transaction commits.  It holds
// enough to log or notify without reading the primary database.
type BookingEvent struct {
	Type          string    `json:"type"`
	BookingID     string    `json:"booking_id"`
	UserID        string    `json:"user_id"`
	ProductID     string    `json:"product_id"`
	ProductName   string    `json:"product_name,omitempty"`
	TourDateID    string    `json:"tour_date_id,omitempty"`
	Tickets       int       `json:"tickets"`
	Total         float64   `json:"total"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher hands events to the broker.  Callers treat failures as
// best-effort: the database state is already committed.
type Publisher interface {
	Publish(ctx context.Context, ev BookingEvent) error
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, BookingEvent) error { return nil }
func (NoopPublisher) Close() error                                { return nil }
