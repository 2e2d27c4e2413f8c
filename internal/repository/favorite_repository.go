package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/dantour/internal/model"
)

type FavoriteRepo struct{ db *sql.DB }

func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

// Add stores a favorite.  Adding the same product twice returns the
// existing row instead of an error.
func (r *FavoriteRepo) Add(ctx context.Context, userID, productID string) (model.Favorite, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO favorites (id, user_id, product_id) VALUES (?, ?, ?)", id, userID, productID)
	if err != nil && !isDuplicate(err) {
		if isForeignKey(err) {
			return model.Favorite{}, ErrNotFound
		}
		return model.Favorite{}, err
	}
	var f model.Favorite
	err = r.db.QueryRowContext(ctx,
		"SELECT id, user_id, product_id, created_at FROM favorites WHERE user_id = ? AND product_id = ?",
		userID, productID).Scan(&f.ID, &f.UserID, &f.ProductID, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return f, ErrNotFound
	}
	return f, err
}

// ListByUser returns a user's favorites with product info.
func (r *FavoriteRepo) ListByUser(ctx context.Context, userID string) ([]model.FavoriteProduct, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT f.id, f.user_id, f.product_id, f.created_at,
		p.name, p.price, p.banner, p.country, p.average_rating
		FROM favorites f JOIN products p ON p.id = f.product_id
		WHERE f.user_id = ? ORDER BY f.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.FavoriteProduct{}
	for rows.Next() {
		var f model.FavoriteProduct
		if err := rows.Scan(&f.ID, &f.UserID, &f.ProductID, &f.CreatedAt,
			&f.ProductName, &f.Price, &f.Banner, &f.Country, &f.AverageRating); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Remove deletes the favorite of a user for a product.
func (r *FavoriteRepo) Remove(ctx context.Context, userID, productID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM favorites WHERE user_id = ? AND product_id = ?", userID, productID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	return rowsOrNotFound(n, err)
}
