package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/dantour/internal/model"
)

type RatingStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, ra *model.Rating) error
	GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (model.Rating, error)
	ListByProduct(ctx context.Context, productID string) ([]model.RatingWithUser, error)
	SetStatusTx(ctx context.Context, tx *sql.Tx, id, status string) error
	DeleteTx(ctx context.Context, tx *sql.Tx, id string) error
}

// RatingCache refreshes the cached average of a product.
type RatingCache interface {
	RecomputeRatingTx(ctx context.Context, tx *sql.Tx, productID string) error
}

// RatingService keeps products' average_rating and total_reviews in step
// with every rating write.
type RatingService struct {
	tx       TxRunner
	ratings  RatingStore
	products RatingCache
}

func NewRatingService(tx TxRunner, ratings RatingStore, products RatingCache) *RatingService {
	if tx == nil || ratings == nil || products == nil {
		panic("nil dependency passed to NewRatingService")
	}
	return &RatingService{tx: tx, ratings: ratings, products: products}
}

type CreateRatingInput struct {
	UserID    string
	ProductID string
	Rating    int
	Review    *string
}

func (s *RatingService) ListByProduct(ctx context.Context, productID string) ([]model.RatingWithUser, error) {
	if !isUUID(productID) {
		return nil, invalid("product_id", "must be a UUID")
	}
	return s.ratings.ListByProduct(ctx, productID)
}

func (s *RatingService) Create(ctx context.Context, in CreateRatingInput) (model.Rating, error) {
	if !isUUID(in.ProductID) {
		return model.Rating{}, invalid("product_id", "must be a UUID")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return model.Rating{}, invalid("rating", "must be between 1 and 5")
	}
	ra := model.Rating{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		ProductID: in.ProductID,
		Rating:    in.Rating,
		Status:    model.RatingVisible,
	}
	if in.Review != nil {
		if r := trimmed(*in.Review); r != "" {
			ra.Review = &r
		}
	}
	err := s.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		if err := s.ratings.CreateTx(ctx, tx, &ra); err != nil {
			err = fromRepo(err, "product")
			if isConflict(err) {
				return &ConflictError{Message: "you already rated this product"}
			}
			return err
		}
		return s.products.RecomputeRatingTx(ctx, tx, ra.ProductID)
	})
	if err != nil {
		return model.Rating{}, err
	}
	return ra, nil
}

// Delete removes a rating written by callerID.  Admins may delete any.
func (s *RatingService) Delete(ctx context.Context, id, callerID string, isAdmin bool) error {
	return s.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		ra, err := s.ratings.GetByIDTx(ctx, tx, id)
		if err != nil {
			return fromRepo(err, "rating")
		}
		if ra.UserID != callerID && !isAdmin {
			return &ForbiddenError{Message: "not your rating"}
		}
		if err := s.ratings.DeleteTx(ctx, tx, id); err != nil {
			return fromRepo(err, "rating")
		}
		return s.products.RecomputeRatingTx(ctx, tx, ra.ProductID)
	})
}

// Moderate hides or shows a rating.
func (s *RatingService) Moderate(ctx context.Context, id, status string) error {
	if status != model.RatingVisible && status != model.RatingHidden {
		return invalid("status", "must be visible or hidden")
	}
	return s.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		ra, err := s.ratings.GetByIDTx(ctx, tx, id)
		if err != nil {
			return fromRepo(err, "rating")
		}
		if ra.Status == status {
			return nil
		}
		if err := s.ratings.SetStatusTx(ctx, tx, id, status); err != nil {
			return fromRepo(err, "rating")
		}
		return s.products.RecomputeRatingTx(ctx, tx, ra.ProductID)
	})
}

func isConflict(err error) bool {
	_, ok := err.(*ConflictError)
	return ok
}
