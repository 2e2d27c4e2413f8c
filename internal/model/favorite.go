package model

import "time"

type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FavoriteProduct is a favorite joined with the product it points at.
type FavoriteProduct struct {
	Favorite
	ProductName   string  `json:"product_name"`
	Price         float64 `json:"price"`
	Banner        *string `json:"banner,omitempty"`
	Country       string  `json:"country"`
	AverageRating float64 `json:"average_rating"`
}
