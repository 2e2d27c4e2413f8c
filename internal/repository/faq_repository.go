package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iliyamo/dantour/internal/model"
)

// FAQRepo is the gorm implementation of product FAQ storage.
type FAQRepo struct {
	db *gorm.DB
}

func NewFAQRepo(db *gorm.DB) *FAQRepo { return &FAQRepo{db: db} }

func (r *FAQRepo) List(ctx context.Context) ([]model.FAQ, error) {
	out := []model.FAQ{}
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *FAQRepo) ListByProduct(ctx context.Context, productID string) ([]model.FAQ, error) {
	out := []model.FAQ{}
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *FAQRepo) Get(ctx context.Context, id string) (model.FAQ, error) {
	var f model.FAQ
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return f, ErrNotFound
	}
	return f, err
}

func (r *FAQRepo) Create(ctx context.Context, f *model.FAQ) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(f).Error
}

// Update changes question and answer.
func (r *FAQRepo) Update(ctx context.Context, id, question, answer string) error {
	res := r.db.WithContext(ctx).Model(&model.FAQ{}).Where("id = ?", id).
		Updates(map[string]interface{}{"question": question, "answer": answer})
	return rowsOrNotFound(res.RowsAffected, res.Error)
}

func (r *FAQRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.FAQ{})
	return rowsOrNotFound(res.RowsAffected, res.Error)
}
