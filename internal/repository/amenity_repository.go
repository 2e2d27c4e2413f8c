package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/dantour/internal/model"
)

// AmenityRepo manages product_amenities and their links to products.
type AmenityRepo struct {
	db *sql.DB
}

func NewAmenityRepo(db *sql.DB) *AmenityRepo { return &AmenityRepo{db: db} }

func (r *AmenityRepo) List(ctx context.Context, categoryID string) ([]model.Amenity, error) {
	q := "SELECT id, name, description, product_category_id, created_at, updated_at FROM product_amenities"
	args := []any{}
	if categoryID != "" {
		q += " WHERE product_category_id = ?"
		args = append(args, categoryID)
	}
	rows, err := r.db.QueryContext(ctx, q+" ORDER BY name", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Amenity{}
	for rows.Next() {
		var a model.Amenity
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.ProductCategoryID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AmenityRepo) Get(ctx context.Context, id string) (model.Amenity, error) {
	var a model.Amenity
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, description, product_category_id, created_at, updated_at FROM product_amenities WHERE id = ?", id).
		Scan(&a.ID, &a.Name, &a.Description, &a.ProductCategoryID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrNotFound
	}
	return a, err
}

func (r *AmenityRepo) Create(ctx context.Context, a *model.Amenity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO product_amenities (id, name, description, product_category_id) VALUES (?, ?, ?, ?)",
		a.ID, a.Name, a.Description, a.ProductCategoryID)
	return mapWriteErr(err)
}

func (r *AmenityRepo) Update(ctx context.Context, a model.Amenity) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE product_amenities SET name = ?, description = ?, product_category_id = ? WHERE id = ?",
		a.Name, a.Description, a.ProductCategoryID, a.ID)
	if err != nil {
		return mapWriteErr(err)
	}
	n, err := res.RowsAffected()
	return rowsOrNotFound(n, err)
}

func (r *AmenityRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM product_amenities WHERE id = ?", id)
	if err != nil {
		return mapWriteErr(err)
	}
	n, err := res.RowsAffected()
	return rowsOrNotFound(n, err)
}

// LinkTx bulk-inserts (product, amenity) links.  Duplicate ids in the
// input are ignored; an unknown amenity id returns ErrNotFound.
func (r *AmenityRepo) LinkTx(ctx context.Context, tx *sql.Tx, productID string, amenityIDs []string) error {
	seen := make(map[string]struct{}, len(amenityIDs))
	unique := make([]string, 0, len(amenityIDs))
	for _, id := range amenityIDs {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return nil
	}
	query := "INSERT INTO product_amenities_products (product_id, product_amenity_id) VALUES "
	args := make([]any, 0, len(unique)*2)
	for i, id := range unique {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, productID, id)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	if isForeignKey(err) {
		return ErrNotFound
	}
	return err
}

// UnlinkAllTx removes every amenity link of a product.
func (r *AmenityRepo) UnlinkAllTx(ctx context.Context, tx *sql.Tx, productID string) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM product_amenities_products WHERE product_id = ?", productID)
	return err
}
