package model

import "time"

// Rating moderation states.  Only visible ratings count towards a
// product's average.
const (
	RatingVisible = "visible"
	RatingHidden  = "hidden"
)

// Rating is one user's score (1..5) for a product.
type Rating struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Rating    int       `json:"rating"`
	Review    *string   `json:"review,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RatingWithUser adds the reviewer's name and email.
type RatingWithUser struct {
	Rating
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}
