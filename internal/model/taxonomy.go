package model

import "time"

// ProductType names a subtype ("tours", "rental").  The name selects the
// subtype handler when products are read and written.
type ProductType struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductCategory belongs to a product type.
type ProductCategory struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ProductTypeID string    `json:"product_type_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TargetAudience is a row of `target_product_audiences`.
type TargetAudience struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Amenity belongs to a product category and is linked to products
// through `product_amenities_products`.
type Amenity struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	ProductCategoryID string    `json:"product_category_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// AmenityBrief is the projection embedded in a product detail.
type AmenityBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
