package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/repository"
	"github.com/iliyamo/dantour/internal/storage"
	"github.com/iliyamo/dantour/internal/tracing"
)

// ProductStore is the product persistence the catalog needs.
type ProductStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, p *model.Product) error
	GetByID(ctx context.Context, id string) (model.Product, error)
	GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (model.Product, error)
	GetDetail(ctx context.Context, id string) (*model.ProductDetail, error)
	Search(ctx context.Context, q repository.ProductSearchQuery) ([]model.ProductSummary, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.ProductSummary, error)
	ListSimplifiedByOwner(ctx context.Context, ownerID string) ([]model.ProductSimplified, error)
	UpdateTx(ctx context.Context, tx *sql.Tx, id string, patch repository.ProductPatch) error
	DeleteTx(ctx context.Context, tx *sql.Tx, id string) error
	SetApproval(ctx context.Context, id string, approved bool) error
}

// TaxonomyReader resolves the taxonomy references of a product.
type TaxonomyReader interface {
	GetType(ctx context.Context, id string) (model.ProductType, error)
	GetCategory(ctx context.Context, id string) (model.ProductCategory, error)
}

// AmenityLinker writes the product-amenity join rows.
type AmenityLinker interface {
	LinkTx(ctx context.Context, tx *sql.Tx, productID string, amenityIDs []string) error
	UnlinkAllTx(ctx context.Context, tx *sql.Tx, productID string) error
}

// TourDateEditor changes the capacity of a single tour date.
type TourDateEditor interface {
	GetDateTx(ctx context.Context, tx *sql.Tx, id string) (model.TourDate, error)
	SetMaxPeopleTx(ctx context.Context, tx *sql.Tx, id string, maxPeople int) error
}

// CatalogService implements the product read and write pipeline.
type CatalogService struct {
	tx        TxRunner
	products  ProductStore
	taxonomy  TaxonomyReader
	amenities AmenityLinker
	dates     TourDateEditor
	registry  *Registry
	media     storage.ObjectStore
	now       func() time.Time
}

func NewCatalogService(tx TxRunner, products ProductStore, taxonomy TaxonomyReader, amenities AmenityLinker,
	dates TourDateEditor, registry *Registry, media storage.ObjectStore) *CatalogService {
	if tx == nil || products == nil || taxonomy == nil || amenities == nil || dates == nil || registry == nil {
		panic("nil dependency passed to NewCatalogService")
	}
	if media == nil {
		media = storage.Noop{}
	}
	return &CatalogService{tx: tx, products: products, taxonomy: taxonomy, amenities: amenities,
		dates: dates, registry: registry, media: media, now: time.Now}
}

// ProductFilter are the listing filters.  Nil pointers are not applied.
type ProductFilter struct {
	ProductType string
	Search      string
	Country     string
	MinPrice    *float64
	MaxPrice    *float64
	IsApproved  *bool
	IsActive    *bool
	MinRating   *float64
}

// ProductPage is one page of the listing.
type ProductPage struct {
	Items      []model.ProductSummary `json:"products"`
	HasMore    bool                   `json:"hasMore"`
	NextCursor string                 `json:"nextCursor,omitempty"`
}

// ListProducts returns one page ordered newest first.
func (s *CatalogService) ListProducts(ctx context.Context, f ProductFilter, cursor string, limit int) (ProductPage, error) {
	ctx, span := tracing.Start(ctx, "catalog.ListProducts")
	defer span.End()

	after, err := DecodeCursor(cursor)
	if err != nil {
		return ProductPage{}, err
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return ProductPage{}, invalid("min_price", "cannot be greater than max_price")
	}
	limit = clampLimit(limit, DefaultPageLimit, MaxPageLimit)
	typ := trimmed(f.ProductType)
	if typ == "" {
		typ = "tours"
	}
	rows, err := s.products.Search(ctx, repository.ProductSearchQuery{
		ProductType: typ,
		Search:      trimmed(f.Search),
		Country:     trimmed(f.Country),
		MinPrice:    f.MinPrice,
		MaxPrice:    f.MaxPrice,
		IsApproved:  f.IsApproved,
		IsActive:    f.IsActive,
		MinRating:   f.MinRating,
		After:       after,
		Limit:       limit + 1,
	})
	if err != nil {
		return ProductPage{}, err
	}
	page := ProductPage{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		page.HasMore = true
	}
	if page.Items == nil {
		page.Items = []model.ProductSummary{}
	}
	if page.HasMore {
		last := page.Items[len(page.Items)-1]
		page.NextCursor = EncodeCursor(last.CreatedAt, last.ID)
	}
	return page, nil
}

// GetProduct returns the product with its subtype payload.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*model.ProductDetail, error) {
	ctx, span := tracing.Start(ctx, "catalog.GetProduct")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return nil, invalid("id", "must be a UUID")
	}
	d, err := s.products.GetDetail(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "product")
	}
	h, err := s.registry.Lookup(d.TypeName)
	if err != nil {
		return nil, err
	}
	details, err := h.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Details = details
	if d.Amenities == nil {
		d.Amenities = []model.AmenityBrief{}
	}
	return d, nil
}

func (s *CatalogService) ListByOwner(ctx context.Context, ownerID string) ([]model.ProductSummary, error) {
	if _, err := uuid.Parse(ownerID); err != nil {
		return nil, invalid("user_id", "must be a UUID")
	}
	return s.products.ListByOwner(ctx, ownerID)
}

func (s *CatalogService) ListSimplifiedByOwner(ctx context.Context, ownerID string) ([]model.ProductSimplified, error) {
	if _, err := uuid.Parse(ownerID); err != nil {
		return nil, invalid("user_id", "must be a UUID")
	}
	return s.products.ListSimplifiedByOwner(ctx, ownerID)
}

// SetApproval is the admin moderation switch.
func (s *CatalogService) SetApproval(ctx context.Context, id string, approved bool) error {
	return fromRepo(s.products.SetApproval(ctx, id, approved), "product")
}

// writeTimeout bounds the transaction of a product create.
const writeTimeout = 5 * time.Second

// MediaUpload is one uploaded file of a product create request.
type MediaUpload struct {
	Folder      string // storage.FolderImages, FolderBanners, ...
	FileName    string
	ContentType string
	Body        io.Reader
}

// CreateProductInput is a product create request: the JSON payload of
// base and subtype fields plus uploaded media.
type CreateProductInput struct {
	OwnerID string
	Data    json.RawMessage
	Uploads []MediaUpload
}

type productInput struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       flexFloat   `json:"price"`
	Address     string      `json:"address"`
	Country     string      `json:"country"`
	CategoryID  string      `json:"product_category_id"`
	AudienceID  string      `json:"target_product_audience_id"`
	TypeID      string      `json:"product_type_id"`
	Amenities   flexStrings `json:"amenities"`
	IsActive    flexBool    `json:"is_active"`
	Images      flexStrings `json:"images"`
	Files       flexStrings `json:"files"`
	Videos      flexStrings `json:"videos"`
	Banner      string      `json:"banner"`
}

func (in productInput) validate(ownerID string) error {
	if _, err := uuid.Parse(ownerID); err != nil {
		return invalid("user_id", "must be a UUID")
	}
	if trimmed(in.Name) == "" {
		return invalid("name", "is required")
	}
	if trimmed(in.Description) == "" {
		return invalid("description", "is required")
	}
	if !in.Price.Set {
		return invalid("price", "is required")
	}
	if in.Price.Value < 0 {
		return invalid("price", "cannot be negative")
	}
	if trimmed(in.Country) == "" {
		return invalid("country", "is required")
	}
	for _, ref := range [][2]string{
		{"product_category_id", in.CategoryID},
		{"target_product_audience_id", in.AudienceID},
		{"product_type_id", in.TypeID},
	} {
		if !isUUID(ref[1]) {
			return invalid(ref[0], "must be a UUID")
		}
	}
	for _, a := range in.Amenities {
		if !isUUID(a) {
			return invalid("amenities", "must be a list of UUIDs")
		}
	}
	return nil
}

// CreateProduct validates the payload, stores the uploaded media, and
// writes the product, its subtype row, tour dates and amenity links in
// one transaction.  Media stored for a failed transaction are removed.
func (s *CatalogService) CreateProduct(ctx context.Context, in CreateProductInput) (*model.ProductDetail, error) {
	ctx, span := tracing.Start(ctx, "catalog.CreateProduct")
	defer span.End()

	var base productInput
	if err := decodeJSON(in.Data, &base); err != nil {
		return nil, err
	}
	if err := base.validate(in.OwnerID); err != nil {
		return nil, err
	}
	typ, err := s.taxonomy.GetType(ctx, trimmed(base.TypeID))
	if err != nil {
		return nil, fromRepo(err, "product type")
	}
	handler, err := s.registry.Lookup(typ.Name)
	if err != nil {
		return nil, err
	}
	category, err := s.taxonomy.GetCategory(ctx, trimmed(base.CategoryID))
	if err != nil {
		return nil, fromRepo(err, "product category")
	}
	if category.ProductTypeID != typ.ID {
		return nil, invalid("product_category_id", "does not belong to the product type")
	}
	details, err := handler.Validate(in.Data, s.now())
	if err != nil {
		return nil, err
	}

	p := &model.Product{
		ID:                      uuid.NewString(),
		Name:                    trimmed(base.Name),
		Description:             trimmed(base.Description),
		Price:                   base.Price.Value,
		Address:                 trimmed(base.Address),
		Country:                 trimmed(base.Country),
		IsActive:                true,
		Images:                  model.StringList(base.Images).NonEmpty(),
		Files:                   model.StringList(base.Files).NonEmpty(),
		Videos:                  model.StringList(base.Videos).NonEmpty(),
		ProductTypeID:           typ.ID,
		ProductCategoryID:       category.ID,
		TargetProductAudienceID: trimmed(base.AudienceID),
		UserID:                  in.OwnerID,
	}
	if base.IsActive.Set {
		p.IsActive = base.IsActive.Value
	}
	if b := trimmed(base.Banner); b != "" {
		p.Banner = &b
	}

	uploaded, err := s.storeMedia(ctx, typ.Name, category.Name, in.Uploads, p)
	if err != nil {
		s.deleteMedia(ctx, uploaded)
		return nil, err
	}

	// Uploads may take minutes; the writes get a fresh budget.
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	err = s.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		if err := s.products.CreateTx(ctx, tx, p); err != nil {
			return fromRepo(err, "product reference")
		}
		if err := handler.Insert(ctx, tx, p.ID, details); err != nil {
			return err
		}
		if len(base.Amenities) > 0 {
			if err := s.amenities.LinkTx(ctx, tx, p.ID, base.Amenities); err != nil {
				return fromRepo(err, "amenity")
			}
		}
		return nil
	})
	if err != nil {
		s.deleteMedia(ctx, uploaded)
		return nil, err
	}
	zlog.Ctx(ctx).Info().Str("product_id", p.ID).Str("type", typ.Name).Msg("product created")
	return s.GetProduct(ctx, p.ID)
}

// storeMedia uploads each file and records its URL on p.  It returns the
// URLs stored so far, also on failure.
func (s *CatalogService) storeMedia(ctx context.Context, typeName, categoryName string, uploads []MediaUpload, p *model.Product) ([]string, error) {
	stored := make([]string, 0, len(uploads))
	for _, u := range uploads {
		key := storage.ProductKey(typeName, categoryName, u.Folder, u.FileName, s.now())
		url, err := s.media.Upload(ctx, key, u.ContentType, u.Body)
		if err != nil {
			return stored, &UpstreamError{Upstream: "storage", Err: err}
		}
		stored = append(stored, url)
		switch u.Folder {
		case storage.FolderBanners:
			banner := url
			p.Banner = &banner
		case storage.FolderFiles:
			p.Files = append(p.Files, url)
		case storage.FolderVideos:
			p.Videos = append(p.Videos, url)
		default:
			p.Images = append(p.Images, url)
		}
	}
	return stored, nil
}

// deleteMedia removes stored objects best-effort; failures are logged.
func (s *CatalogService) deleteMedia(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	var g errgroup.Group
	g.SetLimit(8)
	for _, u := range urls {
		u := u
		g.Go(func() error {
			if err := s.media.Delete(ctx, u); err != nil {
				zlog.Ctx(ctx).Warn().Err(err).Str("url", u).Msg("media delete failed")
			}
			return nil
		})
	}
	_ = g.Wait()
}

// ProductUpdate is a partial product update.  Nil fields are untouched.
type ProductUpdate struct {
	Name           *string  `json:"name"`
	Description    *string  `json:"description"`
	Price          *float64 `json:"price"`
	Address        *string  `json:"address"`
	Country        *string  `json:"country"`
	IsActive       *bool    `json:"is_active"`
	SelectedDateID *string  `json:"selectedDateId"`
	MaxPeople      *int     `json:"max_people"`
}

// ProductUpdateResult is the updated product and, when a date was
// edited, that date.
type ProductUpdateResult struct {
	Product  model.Product   `json:"product"`
	TourDate *model.TourDate `json:"tourDate,omitempty"`
}

func (u ProductUpdate) patch() (repository.ProductPatch, error) {
	p := repository.ProductPatch{IsActive: u.IsActive}
	if u.Name != nil {
		v := trimmed(*u.Name)
		if v == "" {
			return p, invalid("name", "cannot be empty")
		}
		p.Name = &v
	}
	if u.Description != nil {
		v := trimmed(*u.Description)
		if v == "" {
			return p, invalid("description", "cannot be empty")
		}
		p.Description = &v
	}
	if u.Price != nil {
		if *u.Price <= 0 {
			return p, invalid("price", "must be greater than 0")
		}
		p.Price = u.Price
	}
	if u.Address != nil {
		v := trimmed(*u.Address)
		p.Address = &v
	}
	if u.Country != nil {
		v := trimmed(*u.Country)
		if v == "" {
			return p, invalid("country", "cannot be empty")
		}
		p.Country = &v
	}
	return p, nil
}

// UpdateProduct applies u to a product owned by callerID.
func (s *CatalogService) UpdateProduct(ctx context.Context, id, callerID string, u ProductUpdate) (*ProductUpdateResult, error) {
	ctx, span := tracing.Start(ctx, "catalog.UpdateProduct")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return nil, invalid("id", "must be a UUID")
	}
	patch, err := u.patch()
	if err != nil {
		return nil, err
	}
	editDate := u.SelectedDateID != nil && trimmed(*u.SelectedDateID) != ""
	if editDate && u.MaxPeople == nil {
		return nil, invalid("max_people", "is required with selectedDateId")
	}
	if u.MaxPeople != nil && !editDate {
		return nil, invalid("selectedDateId", "is required with max_people")
	}
	if editDate && *u.MaxPeople <= 0 {
		return nil, invalid("max_people", "must be greater than 0")
	}
	if patch.Empty() && !editDate {
		return nil, invalid("", "no fields to update")
	}

	res := &ProductUpdateResult{}
	err = s.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		cur, err := s.products.GetByIDTx(ctx, tx, id)
		if err != nil {
			return fromRepo(err, "product")
		}
		if cur.UserID != callerID {
			return &ForbiddenError{Message: "you do not own this product"}
		}
		if !patch.Empty() {
			if err := s.products.UpdateTx(ctx, tx, id, patch); err != nil {
				return fromRepo(err, "product")
			}
		}
		if editDate {
			dateID := trimmed(*u.SelectedDateID)
			d, err := s.dates.GetDateTx(ctx, tx, dateID)
			if err != nil {
				return fromRepo(err, "tour date")
			}
			if d.TourID != id {
				return invalid("selectedDateId", "date does not belong to this tour")
			}
			if *u.MaxPeople < d.PeopleBooked {
				return invalid("max_people", "cannot be lower than the people already booked")
			}
			if err := s.dates.SetMaxPeopleTx(ctx, tx, dateID, *u.MaxPeople); err != nil {
				if errors.Is(err, repository.ErrCapacityExceeded) {
					return invalid("max_people", "cannot be lower than the people already booked")
				}
				return err
			}
			d.MaxPeople = *u.MaxPeople
			res.TourDate = &d
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "product")
	}
	res.Product = p
	return res, nil
}

// DeleteProduct removes a product owned by callerID and then its media.
func (s *CatalogService) DeleteProduct(ctx context.Context, id, callerID string) error {
	ctx, span := tracing.Start(ctx, "catalog.DeleteProduct")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return invalid("id", "must be a UUID")
	}
	var media []string
	err := s.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		p, err := s.products.GetByIDTx(ctx, tx, id)
		if err != nil {
			return fromRepo(err, "product")
		}
		if p.UserID != callerID {
			return &ForbiddenError{Message: "you do not own this product"}
		}
		media = p.MediaURLs()
		if err := s.amenities.UnlinkAllTx(ctx, tx, id); err != nil {
			return err
		}
		return fromRepo(s.products.DeleteTx(ctx, tx, id), "product")
	})
	if err != nil {
		return err
	}
	s.deleteMedia(ctx, media)
	zlog.Ctx(ctx).Info().Str("product_id", id).Int("media", len(media)).Msg("product deleted")
	return nil
}

// isUUID reports whether s parses as a UUID.
func isUUID(s string) bool {
	_, err := uuid.Parse(strings.TrimSpace(s))
	return err == nil
}
