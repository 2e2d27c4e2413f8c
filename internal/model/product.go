package model

import "time"

// Product represents a row in the `products` table.  A product is the
// common part of every listing; the type specific columns live in a
// one-to-one subtype table (tours, rentals) keyed by the product id.
//
// Fields:
//
//	ID                      - UUID primary key.
//	Price                   - base price, DECIMAL(10,2).
//	IsApproved              - set by an admin before the listing is public.
//	IsActive                - toggled by the owner.
//	Images/Files/Videos     - public media URLs.
//	Banner                  - optional banner URL.
//	AverageRating           - cache recomputed from visible ratings.
//	TotalReviews            - number of visible ratings.
//	ProductTypeID           - selects the subtype table.
//	UserID                  - owner (host).
type Product struct {
	ID                      string     `json:"id"`
	Name                    string     `json:"name"`
	Description             string     `json:"description"`
	Price                   float64    `json:"price"`
	Address                 string     `json:"address"`
	Country                 string     `json:"country"`
	IsApproved              bool       `json:"is_approved"`
	IsActive                bool       `json:"is_active"`
	Images                  StringList `json:"images"`
	Files                   StringList `json:"files"`
	Videos                  StringList `json:"videos"`
	Banner                  *string    `json:"banner,omitempty"`
	AverageRating           float64    `json:"average_rating"`
	TotalReviews            int        `json:"total_reviews"`
	ProductTypeID           string     `json:"product_type_id"`
	ProductCategoryID       string     `json:"product_category_id"`
	TargetProductAudienceID string     `json:"target_product_audience_id"`
	UserID                  string     `json:"user_id"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

// MediaURLs returns every stored media URL of the product, banner included.
func (p Product) MediaURLs() []string {
	out := make([]string, 0, len(p.Images)+len(p.Files)+len(p.Videos)+1)
	out = append(out, p.Images.NonEmpty()...)
	out = append(out, p.Files.NonEmpty()...)
	out = append(out, p.Videos.NonEmpty()...)
	if p.Banner != nil && *p.Banner != "" {
		out = append(out, *p.Banner)
	}
	return out
}

// ProductSummary is a listing row: the product plus the names of its
// taxonomy references.
type ProductSummary struct {
	Product
	TypeName     string `json:"product_type"`
	CategoryName string `json:"product_category"`
	AudienceName string `json:"target_product_audience"`
}

// ProductDetail is the full read model of a single product.  Details
// holds the subtype payload (*TourDetail or *Rental).
type ProductDetail struct {
	ProductSummary
	OwnerUsername string         `json:"owner_username"`
	OwnerEmail    string         `json:"owner_email"`
	Amenities     []AmenityBrief `json:"amenities"`
	Details       any            `json:"details,omitempty"`
}

// ProductSimplified is the short projection used by host dashboards.
type ProductSimplified struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Banner    *string   `json:"banner,omitempty"`
	IsActive  bool      `json:"is_active"`
	TypeName  string    `json:"product_type"`
	CreatedAt time.Time `json:"created_at"`
}
