package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

// PanelRepo runs the host dashboard aggregates.  Every query is scoped to
// bookings of products owned by the host.
type PanelRepo struct {
	db *sqlx.DB
}

// NewPanelRepo wraps the shared pool with sqlx for struct scanning.
func NewPanelRepo(db *sql.DB) *PanelRepo {
	return &PanelRepo{db: sqlx.NewDb(db, "mysql")}
}

// ReservationCounts holds non-canceled booking counts.
type ReservationCounts struct {
	Total     int `db:"total"`
	ThisMonth int `db:"this_month"`
	LastMonth int `db:"last_month"`
}

// ActiveReservations counts non-canceled bookings overall, since
// thisMonth, and in [lastMonth, thisMonth).
func (r *PanelRepo) ActiveReservations(ctx context.Context, hostID string, thisMonth, lastMonth time.Time) (ReservationCounts, error) {
	const q = `SELECT COUNT(*) AS total,
		COALESCE(SUM(b.created_at >= ?), 0) AS this_month,
		COALESCE(SUM(b.created_at >= ? AND b.created_at < ?), 0) AS last_month
		FROM bookings b JOIN products p ON p.id = b.product_id
		WHERE p.user_id = ? AND b.status <> 'canceled'`
	var out ReservationCounts
	err := r.db.GetContext(ctx, &out, q, thisMonth, lastMonth, thisMonth, hostID)
	return out, err
}

// RevenueTotals holds sums of completed booking totals.
type RevenueTotals struct {
	Total    float64 `db:"total"`
	ThisYear float64 `db:"this_year"`
	LastYear float64 `db:"last_year"`
}

// Revenue sums completed bookings overall, since thisYear, and in
// [lastYear, thisYear).
func (r *PanelRepo) Revenue(ctx context.Context, hostID string, thisYear, lastYear time.Time) (RevenueTotals, error) {
	const q = `SELECT COALESCE(SUM(b.total), 0) AS total,
		COALESCE(SUM(CASE WHEN b.created_at >= ? THEN b.total END), 0) AS this_year,
		COALESCE(SUM(CASE WHEN b.created_at >= ? AND b.created_at < ? THEN b.total END), 0) AS last_year
		FROM bookings b JOIN products p ON p.id = b.product_id
		WHERE p.user_id = ? AND b.status = 'completed'`
	var out RevenueTotals
	err := r.db.GetContext(ctx, &out, q, thisYear, lastYear, thisYear, hostID)
	return out, err
}

// FrequentTravelers counts distinct guests with at least two
// non-canceled bookings on the host's products.
func (r *PanelRepo) FrequentTravelers(ctx context.Context, hostID string) (int, error) {
	const q = `SELECT COUNT(*) FROM (
		SELECT b.user_id
		  FROM bookings b JOIN products p ON p.id = b.product_id
		 WHERE p.user_id = ? AND b.status <> 'canceled'
		 GROUP BY b.user_id
		HAVING COUNT(*) >= 2) g`
	var n int
	err := r.db.GetContext(ctx, &n, q, hostID)
	return n, err
}

// MonthCount is one month of booking activity.
type MonthCount struct {
	Month string `db:"month"`
	Count int    `db:"count"`
}

// MonthlyActivity counts non-canceled bookings per "YYYY-MM" since the
// given instant.  Months without bookings are absent.
func (r *PanelRepo) MonthlyActivity(ctx context.Context, hostID string, since time.Time) ([]MonthCount, error) {
	const q = `SELECT DATE_FORMAT(b.created_at, '%Y-%m') AS month, COUNT(*) AS count
		FROM bookings b JOIN products p ON p.id = b.product_id
		WHERE p.user_id = ? AND b.status <> 'canceled' AND b.created_at >= ?
		GROUP BY month ORDER BY month`
	out := []MonthCount{}
	err := r.db.SelectContext(ctx, &out, q, hostID, since)
	return out, err
}

// UpcomingRow is a booking whose date (tour date, else creation time) is
// not in the past.
type UpcomingRow struct {
	ID             string         `db:"id"`
	ProductID      string         `db:"product_id"`
	ProductName    string         `db:"product_name"`
	ProductBanner  sql.NullString `db:"product_banner"`
	Total          float64        `db:"total"`
	Status         string         `db:"status"`
	Date           time.Time      `db:"date"`
	GuestFirstName string         `db:"guest_first_name"`
	GuestLastName  string         `db:"guest_last_name"`
}

// Upcoming lists up to limit bookings dated at or after now, soonest first.
func (r *PanelRepo) Upcoming(ctx context.Context, hostID string, now time.Time, limit int) ([]UpcomingRow, error) {
	const q = `SELECT b.id, p.id AS product_id, p.name AS product_name, p.banner AS product_banner,
		b.total, b.status, COALESCE(td.date, b.created_at) AS date,
		COALESCE(u.first_name, '') AS guest_first_name, COALESCE(u.last_name, '') AS guest_last_name
		FROM bookings b
		JOIN products p         ON p.id = b.product_id
		LEFT JOIN tour_dates td ON td.id = b.tour_date_id
		LEFT JOIN users u       ON u.id = b.user_id
		WHERE p.user_id = ? AND COALESCE(td.date, b.created_at) >= ?
		ORDER BY date ASC, b.id ASC
		LIMIT ?`
	out := []UpcomingRow{}
	err := r.db.SelectContext(ctx, &out, q, hostID, now, limit)
	return out, err
}
