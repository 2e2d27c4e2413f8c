package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/iliyamo/dantour/internal/model"
)

// ProductRepo provides persistence for the products table.  Subtype rows
// and amenity links are written by their own repositories inside the same
// transaction.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo returns a new ProductRepo bound to the given database.
func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

// DB exposes the underlying pool.
func (r *ProductRepo) DB() *sql.DB { return r.db }

const productColumns = `p.id, p.name, p.description, p.price, p.address, p.country,
	p.is_approved, p.is_active, p.images, p.files, p.videos, p.banner,
	p.average_rating, p.total_reviews, p.product_type_id, p.product_category_id,
	p.target_product_audience_id, p.user_id, p.created_at, p.updated_at`

const summaryColumns = productColumns + `, t.name, c.name, a.name`

const summaryFrom = ` FROM products p
	JOIN product_types t            ON t.id = p.product_type_id
	JOIN product_categories c       ON c.id = p.product_category_id
	JOIN target_product_audiences a ON a.id = p.target_product_audience_id`

func productDest(p *model.Product) []any {
	return []any{
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Address, &p.Country,
		&p.IsApproved, &p.IsActive, &p.Images, &p.Files, &p.Videos, &p.Banner,
		&p.AverageRating, &p.TotalReviews, &p.ProductTypeID, &p.ProductCategoryID,
		&p.TargetProductAudienceID, &p.UserID, &p.CreatedAt, &p.UpdatedAt,
	}
}

func scanSummary(row interface{ Scan(...any) error }) (model.ProductSummary, error) {
	var s model.ProductSummary
	dest := append(productDest(&s.Product), &s.TypeName, &s.CategoryName, &s.AudienceName)
	return s, row.Scan(dest...)
}

// CreateTx inserts a product within the scope of an existing transaction.
// Unknown taxonomy or owner ids surface as ErrNotFound through the
// foreign keys.
func (r *ProductRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Product) error {
	const q = `INSERT INTO products (id, name, description, price, address, country,
		is_approved, is_active, images, files, videos, banner,
		product_type_id, product_category_id, target_product_audience_id, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		p.ID, p.Name, p.Description, p.Price, p.Address, p.Country,
		p.IsApproved, p.IsActive, p.Images, p.Files, p.Videos, p.Banner,
		p.ProductTypeID, p.ProductCategoryID, p.TargetProductAudienceID, p.UserID)
	if err != nil {
		if isForeignKey(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// GetByID loads the product row only.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (model.Product, error) {
	return r.getByID(ctx, r.db, id, "")
}

// GetByIDTx loads the product row inside tx and takes a shared lock on it
// so the price cannot change until the transaction ends.
func (r *ProductRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (model.Product, error) {
	return r.getByID(ctx, tx, id, " FOR SHARE")
}

func (r *ProductRepo) getByID(ctx context.Context, q querier, id, lock string) (model.Product, error) {
	var p model.Product
	err := q.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products p WHERE p.id = ?"+lock, id).
		Scan(productDest(&p)...)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

// GetDetail returns the product with its taxonomy names, owner and
// amenities aggregated in a single row.  Subtype details are attached
// by the caller.
func (r *ProductRepo) GetDetail(ctx context.Context, id string) (*model.ProductDetail, error) {
	q := `SELECT ` + summaryColumns + `,
		COALESCE(u.username, ''), u.email,
		(SELECT COALESCE(JSON_ARRAYAGG(JSON_OBJECT('id', pa.id, 'name', pa.name)), JSON_ARRAY())
		   FROM product_amenities_products pap
		   JOIN product_amenities pa ON pa.id = pap.product_amenity_id
		  WHERE pap.product_id = p.id) AS amenities` + summaryFrom + `
		JOIN users u ON u.id = p.user_id
		WHERE p.id = ?`
	var (
		d         model.ProductDetail
		amenities []byte
	)
	dest := append(productDest(&d.Product),
		&d.TypeName, &d.CategoryName, &d.AudienceName,
		&d.OwnerUsername, &d.OwnerEmail, &amenities)
	if err := r.db.QueryRowContext(ctx, q, id).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	d.Amenities = []model.AmenityBrief{}
	if len(amenities) > 0 {
		if err := json.Unmarshal(amenities, &d.Amenities); err != nil {
			return nil, err
		}
	}
	return &d, nil
}

// ListByOwner returns every product of a host, newest first.
func (r *ProductRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.ProductSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+summaryColumns+summaryFrom+" WHERE p.user_id = ? ORDER BY p.created_at DESC, p.id DESC",
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ProductSummary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListSimplifiedByOwner returns the short projection of a host's products.
func (r *ProductRepo) ListSimplifiedByOwner(ctx context.Context, ownerID string) ([]model.ProductSimplified, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT p.id, p.name, p.price, p.banner, p.is_active, t.name, p.created_at
		FROM products p JOIN product_types t ON t.id = p.product_type_id
		WHERE p.user_id = ? ORDER BY p.created_at DESC, p.id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ProductSimplified{}
	for rows.Next() {
		var s model.ProductSimplified
		if err := rows.Scan(&s.ID, &s.Name, &s.Price, &s.Banner, &s.IsActive, &s.TypeName, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ProductPatch lists the columns an owner may change.  Nil fields are
// left untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Address     *string
	Country     *string
	IsActive    *bool
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.Address == nil && p.Country == nil && p.IsActive == nil
}

// UpdateTx applies patch to the product.
func (r *ProductRepo) UpdateTx(ctx context.Context, tx *sql.Tx, id string, patch ProductPatch) error {
	if patch.Empty() {
		return nil
	}
	sets := []string{}
	args := []any{}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *patch.Price)
	}
	if patch.Address != nil {
		sets = append(sets, "address = ?")
		args = append(args, *patch.Address)
	}
	if patch.Country != nil {
		sets = append(sets, "country = ?")
		args = append(args, *patch.Country)
	}
	if patch.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *patch.IsActive)
	}
	args = append(args, id)
	res, err := tx.ExecContext(ctx, "UPDATE products SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	return rowsOrNotFound(n, err)
}

// DeleteTx removes the product.  Subtype rows, tour dates, bookings,
// ratings, favorites and faqs go with it through ON DELETE CASCADE.
func (r *ProductRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	return rowsOrNotFound(n, err)
}

// SetApproval flips the admin approval flag.
func (r *ProductRepo) SetApproval(ctx context.Context, id string, approved bool) error {
	res, err := r.db.ExecContext(ctx, "UPDATE products SET is_approved = ? WHERE id = ?", approved, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	return rowsOrNotFound(n, err)
}

// RecomputeRatingTx refreshes average_rating and total_reviews from the
// visible ratings of the product.
func (r *ProductRepo) RecomputeRatingTx(ctx context.Context, tx *sql.Tx, productID string) error {
	const q = `UPDATE products p
		LEFT JOIN (
			SELECT product_id, ROUND(AVG(rating), 2) AS avg_rating, COUNT(*) AS cnt
			  FROM ratings
			 WHERE product_id = ? AND status = 'visible'
			 GROUP BY product_id
		) s ON s.product_id = p.id
		SET p.average_rating = COALESCE(s.avg_rating, 0),
		    p.total_reviews  = COALESCE(s.cnt, 0)
		WHERE p.id = ?`
	res, err := tx.ExecContext(ctx, q, productID, productID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	return rowsOrNotFound(n, err)
}
