package repository

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

// newMockDB returns a sqlmock-backed pool; unmet expectations fail the
// test at cleanup.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

var summaryColumnNames = []string{
	"id", "name", "description", "price", "address", "country",
	"is_approved", "is_active", "images", "files", "videos", "banner",
	"average_rating", "total_reviews", "product_type_id", "product_category_id",
	"target_product_audience_id", "user_id", "created_at", "updated_at",
	"type_name", "category_name", "audience_name",
}

func summaryValues(id string, createdAt time.Time) []driver.Value {
	return []driver.Value{
		id, "Volcano hike", "Sunrise at the crater", 25.5, "Cerro Verde", "SV",
		true, true, `["https://cdn.test/a.jpg"]`, "[]", nil, nil,
		4.5, int64(2), "type-1", "cat-1",
		"aud-1", "host-1", createdAt, createdAt,
		"tours", "Hiking", "Families",
	}
}
