package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/dantour/internal/model"
)

// RentalRepo provides persistence for the rentals subtype.
type RentalRepo struct {
	db *sql.DB
}

func NewRentalRepo(db *sql.DB) *RentalRepo { return &RentalRepo{db: db} }

const rentalColumns = "product_id, brand, model, year, `condition`, mileage, transmission, seating_capacity, " +
	"pickup_location, max_delivery_distance_km, base_delivery_fee, fee_per_km, offers_delivery, " +
	"price_per_day, available_from, available_until, is_available, fuel_type, type_car, color, doors, engine"

// CreateTx inserts the rentals row for an already inserted product.
func (r *RentalRepo) CreateTx(ctx context.Context, tx *sql.Tx, v model.Rental) error {
	q := "INSERT INTO rentals (" + rentalColumns + ") VALUES (" + placeholders(22) + ")"
	_, err := tx.ExecContext(ctx, q,
		v.ProductID, v.Brand, v.Model, v.Year, v.Condition, v.Mileage, v.Transmission, v.SeatingCapacity,
		v.PickupLocation, v.MaxDeliveryDistanceKm, v.BaseDeliveryFee, v.FeePerKm, v.OffersDelivery,
		v.PricePerDay, v.AvailableFrom, v.AvailableUntil, v.IsAvailable, v.FuelType, v.TypeCar, v.Color, v.Doors, v.Engine)
	return err
}

// Get loads the rentals row of a product.
func (r *RentalRepo) Get(ctx context.Context, productID string) (model.Rental, error) {
	var v model.Rental
	err := r.db.QueryRowContext(ctx, "SELECT "+rentalColumns+" FROM rentals WHERE product_id = ?", productID).Scan(
		&v.ProductID, &v.Brand, &v.Model, &v.Year, &v.Condition, &v.Mileage, &v.Transmission, &v.SeatingCapacity,
		&v.PickupLocation, &v.MaxDeliveryDistanceKm, &v.BaseDeliveryFee, &v.FeePerKm, &v.OffersDelivery,
		&v.PricePerDay, &v.AvailableFrom, &v.AvailableUntil, &v.IsAvailable, &v.FuelType, &v.TypeCar, &v.Color, &v.Doors, &v.Engine)
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrNotFound
	}
	return v, err
}
