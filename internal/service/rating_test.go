package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/repository"
)

type MockRatingStore struct {
	Ratings  map[string]model.Rating
	Products map[string]bool
}

func NewMockRatingStore(productIDs ...string) *MockRatingStore {
	m := &MockRatingStore{Ratings: map[string]model.Rating{}, Products: map[string]bool{}}
	for _, id := range productIDs {
		m.Products[id] = true
	}
	return m
}

func (m *MockRatingStore) CreateTx(ctx context.Context, tx *sql.Tx, ra *model.Rating) error {
	if !m.Products[ra.ProductID] {
		return repository.ErrNotFound
	}
	for _, other := range m.Ratings {
		if other.UserID == ra.UserID && other.ProductID == ra.ProductID {
			return repository.ErrDuplicate
		}
	}
	m.Ratings[ra.ID] = *ra
	return nil
}

func (m *MockRatingStore) GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (model.Rating, error) {
	ra, ok := m.Ratings[id]
	if !ok {
		return ra, repository.ErrNotFound
	}
	return ra, nil
}

func (m *MockRatingStore) ListByProduct(ctx context.Context, productID string) ([]model.RatingWithUser, error) {
	out := []model.RatingWithUser{}
	for _, ra := range m.Ratings {
		if ra.ProductID == productID && ra.Status == model.RatingVisible {
			out = append(out, model.RatingWithUser{Rating: ra})
		}
	}
	return out, nil
}

func (m *MockRatingStore) SetStatusTx(ctx context.Context, tx *sql.Tx, id, status string) error {
	ra, ok := m.Ratings[id]
	if !ok {
		return repository.ErrNotFound
	}
	ra.Status = status
	m.Ratings[id] = ra
	return nil
}

func (m *MockRatingStore) DeleteTx(ctx context.Context, tx *sql.Tx, id string) error {
	if _, ok := m.Ratings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Ratings, id)
	return nil
}

func TestRatingService_Create(t *testing.T) {
	productID := uuid.NewString()
	review := "  great guide  "
	tests := []struct {
		name    string
		in      CreateRatingInput
		wantErr any
	}{
		{name: "valid", in: CreateRatingInput{UserID: "u1", ProductID: productID, Rating: 5, Review: &review}},
		{name: "too low", in: CreateRatingInput{UserID: "u1", ProductID: productID, Rating: 0}, wantErr: &ValidationError{}},
		{name: "too high", in: CreateRatingInput{UserID: "u1", ProductID: productID, Rating: 6}, wantErr: &ValidationError{}},
		{name: "bad product id", in: CreateRatingInput{UserID: "u1", ProductID: "x", Rating: 3}, wantErr: &ValidationError{}},
		{name: "unknown product", in: CreateRatingInput{UserID: "u1", ProductID: uuid.NewString(), Rating: 3}, wantErr: &NotFoundError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := NewMockProductStore()
			svc := NewRatingService(&MockTx{}, NewMockRatingStore(productID), products)
			got, err := svc.Create(context.Background(), tt.in)
			if (err != nil) != (tt.wantErr != nil) {
				t.Fatalf("Create() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if !sameErrType(err, tt.wantErr) {
					t.Errorf("Create() error = %T, want %T", err, tt.wantErr)
				}
				if len(products.Recomputed) != 0 {
					t.Errorf("recomputed %v after a failed create", products.Recomputed)
				}
				return
			}
			if got.Review == nil || *got.Review != "great guide" || got.Status != model.RatingVisible {
				t.Errorf("Create() = %+v", got)
			}
			if len(products.Recomputed) != 1 || products.Recomputed[0] != productID {
				t.Errorf("recomputed = %v, want [%s]", products.Recomputed, productID)
			}
		})
	}
}

func TestRatingService_CreateTwice(t *testing.T) {
	productID := uuid.NewString()
	svc := NewRatingService(&MockTx{}, NewMockRatingStore(productID), NewMockProductStore())
	in := CreateRatingInput{UserID: "u1", ProductID: productID, Rating: 4}
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err := svc.Create(context.Background(), in)
	ce, ok := err.(*ConflictError)
	if !ok || ce.Message != "you already rated this product" {
		t.Errorf("second Create() error = %v, want ConflictError", err)
	}
}

func TestRatingService_DeleteAndModerate(t *testing.T) {
	productID := uuid.NewString()
	store := NewMockRatingStore(productID)
	products := NewMockProductStore()
	svc := NewRatingService(&MockTx{}, store, products)
	ra, err := svc.Create(context.Background(), CreateRatingInput{UserID: "u1", ProductID: productID, Rating: 2})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Moderate(context.Background(), ra.ID, "deleted"); !sameErrType(err, &ValidationError{}) {
		t.Errorf("Moderate(deleted) error = %v, want ValidationError", err)
	}
	if err := svc.Moderate(context.Background(), ra.ID, model.RatingHidden); err != nil {
		t.Fatalf("Moderate(hidden) error = %v", err)
	}
	if err := svc.Moderate(context.Background(), ra.ID, model.RatingHidden); err != nil {
		t.Fatalf("Moderate(hidden) again error = %v", err)
	}
	if len(products.Recomputed) != 2 {
		t.Errorf("recomputed %d times, want 2", len(products.Recomputed))
	}
	list, _ := svc.ListByProduct(context.Background(), productID)
	if len(list) != 0 {
		t.Errorf("ListByProduct() = %d ratings, want hidden rating excluded", len(list))
	}

	if err := svc.Delete(context.Background(), ra.ID, "u2", false); !sameErrType(err, &ForbiddenError{}) {
		t.Errorf("Delete() by other user error = %v, want ForbiddenError", err)
	}
	if err := svc.Delete(context.Background(), ra.ID, "u2", true); err != nil {
		t.Errorf("Delete() by admin error = %v", err)
	}
	if err := svc.Delete(context.Background(), ra.ID, "u1", false); !sameErrType(err, &NotFoundError{}) {
		t.Errorf("Delete() again error = %v, want NotFoundError", err)
	}
}
