package model

import "time"

// Rental mirrors the `rentals` subtype table (vehicles).
type Rental struct {
	ProductID             string    `json:"product_id"`
	Brand                 string    `json:"brand"`
	Model                 string    `json:"model"`
	Year                  int       `json:"year"`
	Condition             string    `json:"condition"`
	Mileage               int       `json:"mileage"`
	Transmission          string    `json:"transmission"`
	SeatingCapacity       int       `json:"seating_capacity"`
	PickupLocation        string    `json:"pickup_location"`
	MaxDeliveryDistanceKm int       `json:"max_delivery_distance_km"`
	BaseDeliveryFee       float64   `json:"base_delivery_fee"`
	FeePerKm              float64   `json:"fee_per_km"`
	OffersDelivery        bool      `json:"offers_delivery"`
	PricePerDay           float64   `json:"price_per_day"`
	AvailableFrom         time.Time `json:"available_from"`
	AvailableUntil        time.Time `json:"available_until"`
	IsAvailable           bool      `json:"is_available"`
	FuelType              string    `json:"fuel_type"`
	TypeCar               string    `json:"type_car"`
	Color                 string    `json:"color"`
	Doors                 int       `json:"doors"`
	Engine                string    `json:"engine"`
}
