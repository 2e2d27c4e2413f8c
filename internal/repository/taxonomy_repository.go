package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/dantour/internal/model"
)

// TaxonomyRepo manages product types, categories and audiences.  The
// three tables share the (id, name, description) shape.
type TaxonomyRepo struct {
	db *sql.DB
}

func NewTaxonomyRepo(db *sql.DB) *TaxonomyRepo { return &TaxonomyRepo{db: db} }

// ---- product types ----

func (r *TaxonomyRepo) ListTypes(ctx context.Context) ([]model.ProductType, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, description, created_at, updated_at FROM product_types ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ProductType{}
	for rows.Next() {
		var t model.ProductType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetType loads a product type by id.
func (r *TaxonomyRepo) GetType(ctx context.Context, id string) (model.ProductType, error) {
	var t model.ProductType
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_at, updated_at FROM product_types WHERE id = ?", id).
		Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

// GetTypeByName loads a product type by case-insensitive name.
func (r *TaxonomyRepo) GetTypeByName(ctx context.Context, name string) (model.ProductType, error) {
	var t model.ProductType
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_at, updated_at FROM product_types WHERE LOWER(name) = ?",
		strings.ToLower(strings.TrimSpace(name))).
		Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

func (r *TaxonomyRepo) CreateType(ctx context.Context, t *model.ProductType) error {
	return r.insertNamed(ctx, "product_types", &t.ID, t.Name, t.Description)
}

func (r *TaxonomyRepo) UpdateType(ctx context.Context, t model.ProductType) error {
	return r.updateNamed(ctx, "product_types", t.ID, t.Name, t.Description)
}

func (r *TaxonomyRepo) DeleteType(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "product_types", id)
}

// ---- categories ----

func (r *TaxonomyRepo) ListCategories(ctx context.Context, typeID string) ([]model.ProductCategory, error) {
	q := "SELECT id, name, description, product_type_id, created_at, updated_at FROM product_categories"
	args := []any{}
	if typeID != "" {
		q += " WHERE product_type_id = ?"
		args = append(args, typeID)
	}
	rows, err := r.db.QueryContext(ctx, q+" ORDER BY name", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ProductCategory{}
	for rows.Next() {
		var c model.ProductCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.ProductTypeID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *TaxonomyRepo) GetCategory(ctx context.Context, id string) (model.ProductCategory, error) {
	var c model.ProductCategory
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, description, product_type_id, created_at, updated_at FROM product_categories WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.Description, &c.ProductTypeID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	return c, err
}

func (r *TaxonomyRepo) CreateCategory(ctx context.Context, c *model.ProductCategory) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO product_categories (id, name, description, product_type_id) VALUES (?, ?, ?, ?)",
		c.ID, c.Name, c.Description, c.ProductTypeID)
	return mapWriteErr(err)
}

func (r *TaxonomyRepo) UpdateCategory(ctx context.Context, c model.ProductCategory) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE product_categories SET name = ?, description = ?, product_type_id = ? WHERE id = ?",
		c.Name, c.Description, c.ProductTypeID, c.ID)
	if err != nil {
		return mapWriteErr(err)
	}
	n, err := res.RowsAffected()
	return rowsOrNotFound(n, err)
}

func (r *TaxonomyRepo) DeleteCategory(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "product_categories", id)
}

// ---- audiences ----

func (r *TaxonomyRepo) ListAudiences(ctx context.Context) ([]model.TargetAudience, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, description, created_at, updated_at FROM target_product_audiences ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.TargetAudience{}
	for rows.Next() {
		var a model.TargetAudience
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *TaxonomyRepo) CreateAudience(ctx context.Context, a *model.TargetAudience) error {
	return r.insertNamed(ctx, "target_product_audiences", &a.ID, a.Name, a.Description)
}

func (r *TaxonomyRepo) UpdateAudience(ctx context.Context, a model.TargetAudience) error {
	return r.updateNamed(ctx, "target_product_audiences", a.ID, a.Name, a.Description)
}

func (r *TaxonomyRepo) DeleteAudience(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "target_product_audiences", id)
}

// ---- shared helpers; table names are constants from this file only ----

func (r *TaxonomyRepo) insertNamed(ctx context.Context, table string, id *string, name, description string) error {
	if *id == "" {
		*id = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO "+table+" (id, name, description) VALUES (?, ?, ?)", *id, name, description)
	return mapWriteErr(err)
}

func (r *TaxonomyRepo) updateNamed(ctx context.Context, table, id, name, description string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE "+table+" SET name = ?, description = ? WHERE id = ?", name, description, id)
	if err != nil {
		return mapWriteErr(err)
	}
	n, err := res.RowsAffected()
	return rowsOrNotFound(n, err)
}

func (r *TaxonomyRepo) deleteByID(ctx context.Context, table, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return mapWriteErr(err)
	}
	n, err := res.RowsAffected()
	return rowsOrNotFound(n, err)
}

// mapWriteErr maps duplicate names to ErrDuplicate and foreign key
// violations (referenced rows, unknown parents) to ErrConflict.
func mapWriteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case isDuplicate(err):
		return ErrDuplicate
	case isForeignKey(err):
		return ErrConflict
	default:
		return err
	}
}
