package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/dantour/internal/model"
)

// TourRepo provides persistence for the tours subtype and its dates.
type TourRepo struct {
	db *sql.DB
}

func NewTourRepo(db *sql.DB) *TourRepo { return &TourRepo{db: db} }

// CreateTx inserts the tours row for an already inserted product.
func (r *TourRepo) CreateTx(ctx context.Context, tx *sql.Tx, t model.Tour) error {
	const q = `INSERT INTO tours (product_id, departure_point, itinerary, expenses, packing_list,
		highlight, included, duration, lat, lng, difficulty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		t.ProductID, t.DeparturePoint, t.Itinerary, t.Expenses, t.PackingList,
		t.Highlight, t.Included, t.Duration, t.Lat, t.Lng, t.Difficulty)
	return err
}

// Get loads the tours row of a product.
func (r *TourRepo) Get(ctx context.Context, productID string) (model.Tour, error) {
	var t model.Tour
	err := r.db.QueryRowContext(ctx, `SELECT product_id, departure_point, itinerary, expenses, packing_list,
		highlight, included, duration, lat, lng, difficulty FROM tours WHERE product_id = ?`, productID).
		Scan(&t.ProductID, &t.DeparturePoint, &t.Itinerary, &t.Expenses, &t.PackingList,
			&t.Highlight, &t.Included, &t.Duration, &t.Lat, &t.Lng, &t.Difficulty)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

// CreateDatesBulkTx inserts multiple tour_dates rows in a single
// statement.  Passing an empty slice has no effect and returns nil.
func (r *TourRepo) CreateDatesBulkTx(ctx context.Context, tx *sql.Tx, dates []model.TourDate) error {
	if len(dates) == 0 {
		return nil
	}
	query := `INSERT INTO tour_dates (id, tour_id, date, max_people, people_booked) VALUES `
	args := make([]any, 0, len(dates)*5)
	for i, d := range dates {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, d.ID, d.TourID, d.Date, d.MaxPeople, d.PeopleBooked)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ListDates returns every date of a tour in chronological order.
func (r *TourRepo) ListDates(ctx context.Context, tourID string) ([]model.TourDate, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, tour_id, date, max_people, people_booked FROM tour_dates WHERE tour_id = ? ORDER BY date ASC, id ASC",
		tourID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.TourDate{}
	for rows.Next() {
		var d model.TourDate
		if err := rows.Scan(&d.ID, &d.TourID, &d.Date, &d.MaxPeople, &d.PeopleBooked); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetDateTx loads a tour date and locks it for the rest of tx.
func (r *TourRepo) GetDateTx(ctx context.Context, tx *sql.Tx, id string) (model.TourDate, error) {
	var d model.TourDate
	err := tx.QueryRowContext(ctx,
		"SELECT id, tour_id, date, max_people, people_booked FROM tour_dates WHERE id = ? FOR UPDATE", id).
		Scan(&d.ID, &d.TourID, &d.Date, &d.MaxPeople, &d.PeopleBooked)
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrNotFound
	}
	return d, err
}

// SetMaxPeopleTx changes the capacity of a date.  The guard keeps
// max_people at or above people_booked.
func (r *TourRepo) SetMaxPeopleTx(ctx context.Context, tx *sql.Tx, id string, maxPeople int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE tour_dates SET max_people = ? WHERE id = ? AND people_booked <= ?",
		maxPeople, id, maxPeople)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCapacityExceeded
	}
	return nil
}

// ReserveTx takes tickets from a date of the given tour.  The increment
// is a single conditional UPDATE, so concurrent bookings can never push
// people_booked past max_people.  ErrNotFound means the date does not
// exist for this tour; ErrCapacityExceeded means it is too full.
func (r *TourRepo) ReserveTx(ctx context.Context, tx *sql.Tx, dateID, tourID string, tickets int) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE tour_dates SET people_booked = people_booked + ?
		  WHERE id = ? AND tour_id = ? AND people_booked + ? <= max_people`,
		tickets, dateID, tourID, tickets)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var owner string
	err = tx.QueryRowContext(ctx, "SELECT tour_id FROM tour_dates WHERE id = ?", dateID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != tourID) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrCapacityExceeded
}

// ReleaseTx gives tickets back to a date, never going below zero.
func (r *TourRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, dateID string, tickets int) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE tour_dates SET people_booked = GREATEST(people_booked - ?, 0) WHERE id = ?",
		tickets, dateID)
	return err
}
