package model

import "time"

// Booking statuses.  completed and canceled are terminal.
const (
	BookingInProcess = "in-process"
	BookingCompleted = "completed"
	BookingCanceled  = "canceled"
)

// ValidBookingStatus reports whether s is one of the booking statuses.
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingInProcess, BookingCompleted, BookingCanceled:
		return true
	}
	return false
}

// Booking represents a row in the `bookings` table.
//
// Fields:
//
//	TourDateID    - departure the tickets were taken from (tours only).
//	Status        - in-process until the payment provider reports back.
//	Total         - price × tickets at booking time.
//	TransactionID - payment provider reference, unique.
type Booking struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	ProductID     string    `json:"product_id"`
	TourDateID    *string   `json:"tour_date_id,omitempty"`
	Status        string    `json:"status"`
	Tickets       int       `json:"tickets"`
	Total         float64   `json:"total"`
	PaymentMethod string    `json:"payment_method"`
	TransactionID string    `json:"transaction_id"`
	IsLive        bool      `json:"is_live"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Terminal reports whether the booking can no longer change status.
func (b Booking) Terminal() bool {
	return b.Status == BookingCompleted || b.Status == BookingCanceled
}

// BookingDetail is a booking enriched for display.
type BookingDetail struct {
	Booking
	ProductName    string     `json:"product_name"`
	ProductOwnerID string     `json:"product_owner_id"`
	UserFirstName  string     `json:"user_first_name"`
	UserLastName   string     `json:"user_last_name"`
	UserEmail      string     `json:"user_email"`
	TourDate       *time.Time `json:"tour_date,omitempty"`
}
