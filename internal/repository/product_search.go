package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/dantour/internal/model"
)

// ProductCursor marks the last row of a page.  An empty ID means only the
// timestamp is known and strictly older rows are returned.
type ProductCursor struct {
	CreatedAt time.Time
	ID        string
}

// ProductSearchQuery defines filters & keyset pagination for the catalog.
type ProductSearchQuery struct {
	ProductType string
	Search      string
	Country     string
	MinPrice    *float64
	MaxPrice    *float64
	IsApproved  *bool
	IsActive    *bool
	MinRating   *float64
	After       *ProductCursor
	Limit       int
}

// Search returns up to q.Limit products ordered by (created_at, id)
// descending.  Callers ask for one extra row to learn whether another
// page exists.
func (r *ProductRepo) Search(ctx context.Context, q ProductSearchQuery) ([]model.ProductSummary, error) {
	where := []string{}
	args := []any{}

	if q.ProductType != "" {
		where = append(where, "LOWER(t.name) = ?")
		args = append(args, strings.ToLower(q.ProductType))
	}
	if q.Search != "" {
		where = append(where, "(LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ?)")
		like := "%" + strings.ToLower(q.Search) + "%"
		args = append(args, like, like)
	}
	if q.Country != "" {
		where = append(where, "p.country = ?")
		args = append(args, q.Country)
	}
	if q.MinPrice != nil {
		where = append(where, "p.price >= ?")
		args = append(args, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		where = append(where, "p.price <= ?")
		args = append(args, *q.MaxPrice)
	}
	if q.IsApproved != nil {
		where = append(where, "p.is_approved = ?")
		args = append(args, *q.IsApproved)
	}
	if q.IsActive != nil {
		where = append(where, "p.is_active = ?")
		args = append(args, *q.IsActive)
	}
	if q.MinRating != nil {
		where = append(where, "p.average_rating >= ?")
		args = append(args, *q.MinRating)
	}
	if q.After != nil {
		if q.After.ID == "" {
			where = append(where, "p.created_at < ?")
			args = append(args, q.After.CreatedAt)
		} else {
			where = append(where, "(p.created_at < ? OR (p.created_at = ? AND p.id < ?))")
			args = append(args, q.After.CreatedAt, q.After.CreatedAt, q.After.ID)
		}
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	dataSQL := `SELECT ` + summaryColumns + summaryFrom + `
		WHERE ` + cond + `
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ?`
	args = append(args, q.Limit)

	rows, err := r.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ProductSummary, 0, q.Limit)
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
