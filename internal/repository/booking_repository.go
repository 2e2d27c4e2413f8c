package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/dantour/internal/model"
)

// BookingRepo provides persistence for bookings.  Capacity on tour dates
// is handled by TourRepo inside the same transaction.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `b.id, b.user_id, b.product_id, b.tour_date_id, b.status, b.tickets, b.total,
	b.payment_method, b.transaction_id, b.is_live, b.created_at, b.updated_at`

func bookingDest(b *model.Booking) []any {
	return []any{&b.ID, &b.UserID, &b.ProductID, &b.TourDateID, &b.Status, &b.Tickets, &b.Total,
		&b.PaymentMethod, &b.TransactionID, &b.IsLive, &b.CreatedAt, &b.UpdatedAt}
}

// CreateTx inserts a booking within the scope of an existing transaction
// and reads back the stored row.  A reused transaction id returns
// ErrDuplicate.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (id, user_id, product_id, tour_date_id, status, tickets, total,
		payment_method, transaction_id, is_live) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, b.ID, b.UserID, b.ProductID, b.TourDateID, b.Status, b.Tickets, b.Total,
		b.PaymentMethod, b.TransactionID, b.IsLive)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		if isForeignKey(err) {
			return ErrNotFound
		}
		return err
	}
	return tx.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings b WHERE b.id = ?", b.ID).
		Scan(bookingDest(b)...)
}

// GetByIDTx loads and locks a booking.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (model.Booking, error) {
	var b model.Booking
	err := tx.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings b WHERE b.id = ? FOR UPDATE", id).
		Scan(bookingDest(&b)...)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	return b, err
}

// GetByTransactionIDTx loads and locks a booking by payment reference.
func (r *BookingRepo) GetByTransactionIDTx(ctx context.Context, tx *sql.Tx, txID string) (model.Booking, error) {
	var b model.Booking
	err := tx.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings b WHERE b.transaction_id = ? FOR UPDATE", txID).
		Scan(bookingDest(&b)...)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	return b, err
}

const bookingDetailSelect = `SELECT ` + bookingColumns + `,
		p.name, p.user_id, COALESCE(u.first_name, ''), COALESCE(u.last_name, ''), u.email, td.date
	FROM bookings b
	JOIN products p    ON p.id = b.product_id
	JOIN users u       ON u.id = b.user_id
	LEFT JOIN tour_dates td ON td.id = b.tour_date_id`

func scanBookingDetail(row interface{ Scan(...any) error }) (model.BookingDetail, error) {
	var d model.BookingDetail
	var tourDate sql.NullTime
	dest := append(bookingDest(&d.Booking),
		&d.ProductName, &d.ProductOwnerID, &d.UserFirstName, &d.UserLastName, &d.UserEmail, &tourDate)
	if err := row.Scan(dest...); err != nil {
		return d, err
	}
	if tourDate.Valid {
		t := tourDate.Time
		d.TourDate = &t
	}
	return d, nil
}

// GetDetail returns a booking with product, guest and date information.
func (r *BookingRepo) GetDetail(ctx context.Context, id string) (*model.BookingDetail, error) {
	d, err := scanBookingDetail(r.db.QueryRowContext(ctx, bookingDetailSelect+" WHERE b.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ListByUser returns the bookings made by a user, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]model.BookingDetail, error) {
	return r.listDetails(ctx, bookingDetailSelect+" WHERE b.user_id = ? ORDER BY b.created_at DESC, b.id DESC", userID)
}

// ListByProduct returns the bookings of a product, newest first.
func (r *BookingRepo) ListByProduct(ctx context.Context, productID string) ([]model.BookingDetail, error) {
	return r.listDetails(ctx, bookingDetailSelect+" WHERE b.product_id = ? ORDER BY b.created_at DESC, b.id DESC", productID)
}

func (r *BookingRepo) listDetails(ctx context.Context, q string, args ...any) ([]model.BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.BookingDetail{}
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateStatusTx sets the status of a booking inside tx.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id, status string) error {
	res, err := tx.ExecContext(ctx, "UPDATE bookings SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	return rowsOrNotFound(n, err)
}

// DeleteTx removes a booking.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	return rowsOrNotFound(n, err)
}
