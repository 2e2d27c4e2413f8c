package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/service"
)

// TaxonomyStore is implemented by *repository.TaxonomyRepo.
type TaxonomyStore interface {
	ListTypes(ctx context.Context) ([]model.ProductType, error)
	GetType(ctx context.Context, id string) (model.ProductType, error)
	CreateType(ctx context.Context, t *model.ProductType) error
	UpdateType(ctx context.Context, t model.ProductType) error
	DeleteType(ctx context.Context, id string) error

	ListCategories(ctx context.Context, typeID string) ([]model.ProductCategory, error)
	GetCategory(ctx context.Context, id string) (model.ProductCategory, error)
	CreateCategory(ctx context.Context, c *model.ProductCategory) error
	UpdateCategory(ctx context.Context, c model.ProductCategory) error
	DeleteCategory(ctx context.Context, id string) error

	ListAudiences(ctx context.Context) ([]model.TargetAudience, error)
	CreateAudience(ctx context.Context, a *model.TargetAudience) error
	UpdateAudience(ctx context.Context, a model.TargetAudience) error
	DeleteAudience(ctx context.Context, id string) error
}

// AmenityStore is implemented by *repository.AmenityRepo.
type AmenityStore interface {
	List(ctx context.Context, categoryID string) ([]model.Amenity, error)
	Get(ctx context.Context, id string) (model.Amenity, error)
	Create(ctx context.Context, a *model.Amenity) error
	Update(ctx context.Context, a model.Amenity) error
	Delete(ctx context.Context, id string) error
}

// TaxonomyHandler serves product types, categories, audiences and
// amenities.  Reads are public; writes are admin only.
type TaxonomyHandler struct {
	Store     TaxonomyStore
	Amenities AmenityStore
}

func NewTaxonomyHandler(store TaxonomyStore, amenities AmenityStore) *TaxonomyHandler {
	return &TaxonomyHandler{Store: store, Amenities: amenities}
}

type namedReq struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	ProductTypeID     string `json:"product_type_id"`
	ProductCategoryID string `json:"product_category_id"`
}

func (r *namedReq) trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.ProductTypeID = strings.TrimSpace(r.ProductTypeID)
	r.ProductCategoryID = strings.TrimSpace(r.ProductCategoryID)
}

// bindNamed decodes and checks a taxonomy body.  required names the
// fields that must not be blank.
func bindNamed(c echo.Context, required ...string) (namedReq, error) {
	var req namedReq
	if err := c.Bind(&req); err != nil {
		return req, &service.ValidationError{Message: "invalid body"}
	}
	req.trim()
	values := map[string]string{
		"name":                req.Name,
		"description":         req.Description,
		"product_type_id":     req.ProductTypeID,
		"product_category_id": req.ProductCategoryID,
	}
	for _, f := range required {
		if values[f] == "" {
			return req, &service.ValidationError{Field: f, Message: "is required"}
		}
	}
	return req, nil
}

// run executes one store call under the request context and writes its
// result with status.
func run[T any](c echo.Context, status int, call func(ctx context.Context) (T, error)) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	out, err := call(ctx)
	if err != nil {
		return respondError(c, err)
	}
	if status == http.StatusNoContent {
		return c.NoContent(status)
	}
	return c.JSON(status, out)
}

type none struct{}

func discard(err error) (none, error) { return none{}, err }

// ---- product types ----

func (h *TaxonomyHandler) ListTypes(c echo.Context) error {
	return run(c, http.StatusOK, func(ctx context.Context) ([]model.ProductType, error) {
		return h.Store.ListTypes(ctx)
	})
}

func (h *TaxonomyHandler) GetType(c echo.Context) error {
	return run(c, http.StatusOK, func(ctx context.Context) (model.ProductType, error) {
		return h.Store.GetType(ctx, c.Param("id"))
	})
}

func (h *TaxonomyHandler) CreateType(c echo.Context) error {
	req, err := bindNamed(c, "name")
	if err != nil {
		return respondError(c, err)
	}
	return run(c, http.StatusCreated, func(ctx context.Context) (model.ProductType, error) {
		t := model.ProductType{Name: req.Name, Description: req.Description}
		err := h.Store.CreateType(ctx, &t)
		return t, err
	})
}

// UpdateType replaces both name and description; both are required.
func (h *TaxonomyHandler) UpdateType(c echo.Context) error {
	req, err := bindNamed(c, "name", "description")
	if err != nil {
		return respondError(c, err)
	}
	return run(c, http.StatusOK, func(ctx context.Context) (model.ProductType, error) {
		t := model.ProductType{ID: c.Param("id"), Name: req.Name, Description: req.Description}
		err := h.Store.UpdateType(ctx, t)
		return t, err
	})
}

func (h *TaxonomyHandler) DeleteType(c echo.Context) error {
	return run(c, http.StatusNoContent, func(ctx context.Context) (none, error) {
		return discard(h.Store.DeleteType(ctx, c.Param("id")))
	})
}

// ---- categories ----

// ListCategories takes an optional ?product_type_id filter.
func (h *TaxonomyHandler) ListCategories(c echo.Context) error {
	return run(c, http.StatusOK, func(ctx context.Context) ([]model.ProductCategory, error) {
		return h.Store.ListCategories(ctx, strings.TrimSpace(c.QueryParam("product_type_id")))
	})
}

func (h *TaxonomyHandler) GetCategory(c echo.Context) error {
	return run(c, http.StatusOK, func(ctx context.Context) (model.ProductCategory, error) {
		return h.Store.GetCategory(ctx, c.Param("id"))
	})
}

func (h *TaxonomyHandler) CreateCategory(c echo.Context) error {
	req, err := bindNamed(c, "name", "product_type_id")
	if err != nil {
		return respondError(c, err)
	}
	return run(c, http.StatusCreated, func(ctx context.Context) (model.ProductCategory, error) {
		pc := model.ProductCategory{Name: req.Name, Description: req.Description, ProductTypeID: req.ProductTypeID}
		err := h.Store.CreateCategory(ctx, &pc)
		return pc, err
	})
}

func (h *TaxonomyHandler) UpdateCategory(c echo.Context) error {
	req, err := bindNamed(c, "name", "product_type_id")
	if err != nil {
		return respondError(c, err)
	}
	return run(c, http.StatusOK, func(ctx context.Context) (model.ProductCategory, error) {
		pc := model.ProductCategory{ID: c.Param("id"), Name: req.Name, Description: req.Description,
			ProductTypeID: req.ProductTypeID}
		err := h.Store.UpdateCategory(ctx, pc)
		return pc, err
	})
}

func (h *TaxonomyHandler) DeleteCategory(c echo.Context) error {
	return run(c, http.StatusNoContent, func(ctx context.Context) (none, error) {
		return discard(h.Store.DeleteCategory(ctx, c.Param("id")))
	})
}

// ---- audiences ----

func (h *TaxonomyHandler) ListAudiences(c echo.Context) error {
	return run(c, http.StatusOK, func(ctx context.Context) ([]model.TargetAudience, error) {
		return h.Store.ListAudiences(ctx)
	})
}

func (h *TaxonomyHandler) CreateAudience(c echo.Context) error {
	req, err := bindNamed(c, "name")
	if err != nil {
		return respondError(c, err)
	}
	return run(c, http.StatusCreated, func(ctx context.Context) (model.TargetAudience, error) {
		a := model.TargetAudience{Name: req.Name, Description: req.Description}
		err := h.Store.CreateAudience(ctx, &a)
		return a, err
	})
}

func (h *TaxonomyHandler) UpdateAudience(c echo.Context) error {
	req, err := bindNamed(c, "name")
	if err != nil {
		return respondError(c, err)
	}
	return run(c, http.StatusOK, func(ctx context.Context) (model.TargetAudience, error) {
		a := model.TargetAudience{ID: c.Param("id"), Name: req.Name, Description: req.Description}
		err := h.Store.UpdateAudience(ctx, a)
		return a, err
	})
}

func (h *TaxonomyHandler) DeleteAudience(c echo.Context) error {
	return run(c, http.StatusNoContent, func(ctx context.Context) (none, error) {
		return discard(h.Store.DeleteAudience(ctx, c.Param("id")))
	})
}

// ---- amenities ----

// ListAmenities takes an optional ?product_category_id filter.
func (h *TaxonomyHandler) ListAmenities(c echo.Context) error {
	return run(c, http.StatusOK, func(ctx context.Context) ([]model.Amenity, error) {
		return h.Amenities.List(ctx, strings.TrimSpace(c.QueryParam("product_category_id")))
	})
}

func (h *TaxonomyHandler) GetAmenity(c echo.Context) error {
	return run(c, http.StatusOK, func(ctx context.Context) (model.Amenity, error) {
		return h.Amenities.Get(ctx, c.Param("id"))
	})
}

func (h *TaxonomyHandler) CreateAmenity(c echo.Context) error {
	req, err := bindNamed(c, "name", "product_category_id")
	if err != nil {
		return respondError(c, err)
	}
	return run(c, http.StatusCreated, func(ctx context.Context) (model.Amenity, error) {
		a := model.Amenity{Name: req.Name, Description: req.Description, ProductCategoryID: req.ProductCategoryID}
		err := h.Amenities.Create(ctx, &a)
		return a, err
	})
}

func (h *TaxonomyHandler) UpdateAmenity(c echo.Context) error {
	req, err := bindNamed(c, "name", "product_category_id")
	if err != nil {
		return respondError(c, err)
	}
	return run(c, http.StatusOK, func(ctx context.Context) (model.Amenity, error) {
		a := model.Amenity{ID: c.Param("id"), Name: req.Name, Description: req.Description,
			ProductCategoryID: req.ProductCategoryID}
		err := h.Amenities.Update(ctx, a)
		return a, err
	})
}

func (h *TaxonomyHandler) DeleteAmenity(c echo.Context) error {
	return run(c, http.StatusNoContent, func(ctx context.Context) (none, error) {
		return discard(h.Amenities.Delete(ctx, c.Param("id")))
	})
}
