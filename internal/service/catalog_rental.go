package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/repository"
)

// RentalStore is the rental persistence the rental handler needs.
type RentalStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, v model.Rental) error
	Get(ctx context.Context, productID string) (model.Rental, error)
}

const maxRentalWindow = 15 * 24 * time.Hour

var (
	rentalConditions    = []string{"new", "used", "refurbished"}
	rentalTransmissions = []string{"automatic", "manual"}
	rentalFuelTypes     = []string{"gasoline", "diesel", "electric", "hybrid"}
	rentalCarTypes      = []string{"sedan", "SUV", "pickup", "truck", "van"}
)

type rentalInput struct {
	Brand                 string    `json:"brand"`
	Model                 string    `json:"model"`
	Year                  flexInt   `json:"year"`
	Condition             string    `json:"condition"`
	Mileage               flexInt   `json:"mileage"`
	Transmission          string    `json:"transmission"`
	SeatingCapacity       flexInt   `json:"seating_capacity"`
	PickupLocation        string    `json:"pickup_location"`
	MaxDeliveryDistanceKm flexInt   `json:"max_delivery_distance_km"`
	BaseDeliveryFee       flexFloat `json:"base_delivery_fee"`
	FeePerKm              flexFloat `json:"fee_per_km"`
	OffersDelivery        flexBool  `json:"offers_delivery"`
	PricePerDay           flexFloat `json:"price_per_day"`
	AvailableFrom         string    `json:"available_from"`
	AvailableUntil        string    `json:"available_until"`
	IsAvailable           flexBool  `json:"is_available"`
	FuelType              string    `json:"fuel_type"`
	TypeCar               string    `json:"type_car"`
	Color                 string    `json:"color"`
	Doors                 flexInt   `json:"doors"`
	Engine                string    `json:"engine"`
}

// RentalHandler is the subtype handler for vehicle rentals.
type RentalHandler struct{ store RentalStore }

func NewRentalHandler(store RentalStore) *RentalHandler { return &RentalHandler{store: store} }

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func (h *RentalHandler) Validate(raw json.RawMessage, now time.Time) (any, error) {
	var in rentalInput
	if err := decodeJSON(raw, &in); err != nil {
		return nil, err
	}
	required := map[string]string{
		"brand": in.Brand, "model": in.Model, "transmission": in.Transmission,
		"pickup_location": in.PickupLocation, "available_from": in.AvailableFrom,
		"available_until": in.AvailableUntil, "fuel_type": in.FuelType, "type_car": in.TypeCar,
		"color": in.Color, "engine": in.Engine,
	}
	for _, f := range []string{"brand", "model", "transmission", "pickup_location", "available_from",
		"available_until", "fuel_type", "type_car", "color", "engine"} {
		if trimmed(required[f]) == "" {
			return nil, invalid(f, "is required")
		}
	}
	for _, f := range []struct {
		name string
		v    flexInt
	}{{"year", in.Year}, {"mileage", in.Mileage}, {"seating_capacity", in.SeatingCapacity}, {"doors", in.Doors}} {
		if !f.v.Set {
			return nil, invalid(f.name, "is required")
		}
	}
	if !in.PricePerDay.Set || in.PricePerDay.Value <= 0 {
		return nil, invalid("price_per_day", "must be greater than 0")
	}

	cond := in.Condition
	if cond == "" {
		cond = "used"
	}
	if !oneOf(cond, rentalConditions) {
		return nil, invalid("condition", "must be one of new, used, refurbished")
	}
	if !oneOf(in.Transmission, rentalTransmissions) {
		return nil, invalid("transmission", "must be automatic or manual")
	}
	if !oneOf(in.FuelType, rentalFuelTypes) {
		return nil, invalid("fuel_type", "must be one of gasoline, diesel, electric, hybrid")
	}
	if !oneOf(in.TypeCar, rentalCarTypes) {
		return nil, invalid("type_car", "must be one of sedan, SUV, pickup, truck, van")
	}

	from, err := parseDate(in.AvailableFrom)
	if err != nil {
		return nil, invalid("available_from", err.Error())
	}
	until, err := parseDate(in.AvailableUntil)
	if err != nil {
		return nil, invalid("available_until", err.Error())
	}
	if !until.After(from) {
		return nil, invalid("available_until", "must be after available_from")
	}
	if until.Sub(from) > maxRentalWindow {
		return nil, invalid("available_until", "availability window cannot exceed 15 days")
	}

	if in.Year.Value < 1900 || in.Year.Value > now.Year()+1 {
		return nil, invalid("year", fmt.Sprintf("must be between 1900 and %d", now.Year()+1))
	}
	if in.Mileage.Value < 0 {
		return nil, invalid("mileage", "cannot be negative")
	}
	if in.SeatingCapacity.Value < 1 || in.SeatingCapacity.Value > 50 {
		return nil, invalid("seating_capacity", "must be between 1 and 50")
	}
	if in.Doors.Value < 2 || in.Doors.Value > 6 {
		return nil, invalid("doors", "must be between 2 and 6")
	}

	r := model.Rental{
		Brand:                 trimmed(in.Brand),
		Model:                 trimmed(in.Model),
		Year:                  in.Year.Value,
		Condition:             cond,
		Mileage:               in.Mileage.Value,
		Transmission:          in.Transmission,
		SeatingCapacity:       in.SeatingCapacity.Value,
		PickupLocation:        trimmed(in.PickupLocation),
		MaxDeliveryDistanceKm: 15,
		BaseDeliveryFee:       2,
		FeePerKm:              1,
		OffersDelivery:        in.OffersDelivery.Value,
		PricePerDay:           in.PricePerDay.Value,
		AvailableFrom:         from,
		AvailableUntil:        until,
		IsAvailable:           true,
		FuelType:              in.FuelType,
		TypeCar:               in.TypeCar,
		Color:                 trimmed(in.Color),
		Doors:                 in.Doors.Value,
		Engine:                trimmed(in.Engine),
	}
	if in.MaxDeliveryDistanceKm.Set {
		r.MaxDeliveryDistanceKm = in.MaxDeliveryDistanceKm.Value
	}
	if in.BaseDeliveryFee.Set {
		r.BaseDeliveryFee = in.BaseDeliveryFee.Value
	}
	if in.FeePerKm.Set {
		r.FeePerKm = in.FeePerKm.Value
	}
	if in.IsAvailable.Set {
		r.IsAvailable = in.IsAvailable.Value
	}
	return &r, nil
}

func (h *RentalHandler) Insert(ctx context.Context, tx *sql.Tx, productID string, details any) error {
	r, ok := details.(*model.Rental)
	if !ok {
		return fmt.Errorf("rental handler: unexpected details %T", details)
	}
	r.ProductID = productID
	return h.store.CreateTx(ctx, tx, *r)
}

func (h *RentalHandler) Load(ctx context.Context, productID string) (any, error) {
	r, err := h.store.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("rental")
		}
		return nil, err
	}
	return &r, nil
}
