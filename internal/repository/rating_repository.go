package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/dantour/internal/model"
)

// RatingRepo persists ratings.  A user rates a product at most once.
type RatingRepo struct {
	db *sql.DB
}

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{db: db} }

const ratingColumns = "r.id, r.user_id, r.product_id, r.rating, r.review, r.status, r.created_at, r.updated_at"

// CreateTx inserts a rating; a second rating of the same product by the
// same user returns ErrDuplicate.
func (r *RatingRepo) CreateTx(ctx context.Context, tx *sql.Tx, ra *model.Rating) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO ratings (id, user_id, product_id, rating, review, status) VALUES (?, ?, ?, ?, ?, ?)",
		ra.ID, ra.UserID, ra.ProductID, ra.Rating, ra.Review, ra.Status)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		if isForeignKey(err) {
			return ErrNotFound
		}
		return err
	}
	return tx.QueryRowContext(ctx, "SELECT "+ratingColumns+" FROM ratings r WHERE r.id = ?", ra.ID).
		Scan(&ra.ID, &ra.UserID, &ra.ProductID, &ra.Rating, &ra.Review, &ra.Status, &ra.CreatedAt, &ra.UpdatedAt)
}

// GetByIDTx loads and locks a rating.
func (r *RatingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (model.Rating, error) {
	var ra model.Rating
	err := tx.QueryRowContext(ctx, "SELECT "+ratingColumns+" FROM ratings r WHERE r.id = ? FOR UPDATE", id).
		Scan(&ra.ID, &ra.UserID, &ra.ProductID, &ra.Rating, &ra.Review, &ra.Status, &ra.CreatedAt, &ra.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ra, ErrNotFound
	}
	return ra, err
}

// ListByProduct returns the visible ratings of a product with reviewer
// name and email, newest first.
func (r *RatingRepo) ListByProduct(ctx context.Context, productID string) ([]model.RatingWithUser, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+ratingColumns+`,
		TRIM(CONCAT(COALESCE(u.first_name, ''), ' ', COALESCE(u.last_name, ''))), u.email
		FROM ratings r JOIN users u ON u.id = r.user_id
		WHERE r.product_id = ? AND r.status = 'visible'
		ORDER BY r.created_at DESC, r.id DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.RatingWithUser{}
	for rows.Next() {
		var ra model.RatingWithUser
		if err := rows.Scan(&ra.ID, &ra.UserID, &ra.ProductID, &ra.Rating, &ra.Review, &ra.Status,
			&ra.CreatedAt, &ra.UpdatedAt, &ra.UserName, &ra.UserEmail); err != nil {
			return nil, err
		}
		out = append(out, ra)
	}
	return out, rows.Err()
}

// SetStatusTx changes the moderation status.
func (r *RatingRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id, status string) error {
	res, err := tx.ExecContext(ctx, "UPDATE ratings SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	return rowsOrNotFound(n, err)
}

// DeleteTx removes a rating.
func (r *RatingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM ratings WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	return rowsOrNotFound(n, err)
}
