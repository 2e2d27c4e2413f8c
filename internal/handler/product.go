package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/service"
	"github.com/iliyamo/dantour/internal/storage"
)

// Catalog is the product side of the marketplace.  *service.CatalogService
// implements it.
type Catalog interface {
	ListProducts(ctx context.Context, f service.ProductFilter, cursor string, limit int) (service.ProductPage, error)
	GetProduct(ctx context.Context, id string) (*model.ProductDetail, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.ProductSummary, error)
	ListSimplifiedByOwner(ctx context.Context, ownerID string) ([]model.ProductSimplified, error)
	SetApproval(ctx context.Context, id string, approved bool) error
	CreateProduct(ctx context.Context, in service.CreateProductInput) (*model.ProductDetail, error)
	UpdateProduct(ctx context.Context, id, callerID string, u service.ProductUpdate) (*service.ProductUpdateResult, error)
	DeleteProduct(ctx context.Context, id, callerID string) error
}

// ProductHandler serves /api/v1/products.
type ProductHandler struct {
	Catalog       Catalog
	MaxUploadMB   int
	UploadTimeout time.Duration
}

func NewProductHandler(catalog Catalog, maxUploadMB int, uploadTimeout time.Duration) *ProductHandler {
	if catalog == nil {
		panic("nil catalog passed to NewProductHandler")
	}
	if maxUploadMB <= 0 {
		maxUploadMB = 50
	}
	if uploadTimeout < requestTimeout {
		uploadTimeout = 2 * time.Minute
	}
	return &ProductHandler{Catalog: catalog, MaxUploadMB: maxUploadMB, UploadTimeout: uploadTimeout}
}

// BodyLimit is the request size cap of Create in the form echo's
// BodyLimit middleware takes.
func (h *ProductHandler) BodyLimit() string {
	return strconv.Itoa(h.MaxUploadMB) + "M"
}

// List: GET /products with optional filters and a cursor.
func (h *ProductHandler) List(c echo.Context) error {
	f := service.ProductFilter{
		ProductType: strings.TrimSpace(c.QueryParam("product_type")),
		Search:      strings.TrimSpace(c.QueryParam("search")),
		Country:     strings.TrimSpace(c.QueryParam("country")),
	}
	var err error
	if f.MinPrice, err = queryFloat(c, "min_price"); err != nil {
		return respondError(c, err)
	}
	if f.MaxPrice, err = queryFloat(c, "max_price"); err != nil {
		return respondError(c, err)
	}
	if f.MinRating, err = queryFloat(c, "min_rating"); err != nil {
		return respondError(c, err)
	}
	if f.IsApproved, err = queryBool(c, "is_approved"); err != nil {
		return respondError(c, err)
	}
	if f.IsActive, err = queryBool(c, "is_active"); err != nil {
		return respondError(c, err)
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return respondError(c, err)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	page, err := h.Catalog.ListProducts(ctx, f, strings.TrimSpace(c.QueryParam("cursor")), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Get: GET /products/:id.
func (h *ProductHandler) Get(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	p, err := h.Catalog.GetProduct(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// ListByOwner: GET /products/user/:id.
func (h *ProductHandler) ListByOwner(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	items, err := h.Catalog.ListByOwner(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": items})
}

// ListSimplified: GET /products/usersimplified/:id.
func (h *ProductHandler) ListSimplified(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	items, err := h.Catalog.ListSimplifiedByOwner(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": items})
}

// multipartMemory is how much of a multipart body is held in memory;
// larger parts spill to temporary files.
const multipartMemory = 32 << 20

// mediaFields maps multipart part names to storage folders.
var mediaFields = []struct{ field, folder string }{
	{"images", storage.FolderImages},
	{"banner", storage.FolderBanners},
	{"files", storage.FolderFiles},
	{"videos", storage.FolderVideos},
}

// Create: POST /products.  Multipart requests carry the product JSON in
// the "data" field and media in images, banner, files and videos; a
// plain JSON body creates a product without media.
func (h *ProductHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	in := service.CreateProductInput{OwnerID: uid}

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		if err := c.Request().ParseMultipartForm(multipartMemory); err != nil {
			var he *echo.HTTPError
			if errors.As(err, &he) {
				return he
			}
			return badRequest(c, "invalid multipart body")
		}
		form := c.Request().MultipartForm
		defer form.RemoveAll()

		data := form.Value["data"]
		if len(data) == 0 || strings.TrimSpace(data[0]) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "data is required", "field": "data"})
		}
		in.Data = json.RawMessage(data[0])

		files, err := openUploads(form)
		defer func() {
			for _, f := range files {
				_ = f.Close()
			}
		}()
		if err != nil {
			return badRequest(c, "cannot read uploaded file")
		}
		for _, u := range files {
			in.Uploads = append(in.Uploads, service.MediaUpload{
				Folder:      u.folder,
				FileName:    u.header.Filename,
				ContentType: u.header.Header.Get(echo.HeaderContentType),
				Body:        u.File,
			})
		}
	} else {
		body, err := io.ReadAll(io.LimitReader(c.Request().Body, int64(h.MaxUploadMB)<<20))
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		if err != nil || len(strings.TrimSpace(string(body))) == 0 {
			return badRequest(c, "invalid body")
		}
		in.Data = body
	}

	// Media go to object storage inside the call; the catalog keeps its
	// own deadline for the database work.
	ctx, cancel := requestCtx(c)
	if len(in.Uploads) > 0 {
		cancel()
		ctx, cancel = context.WithTimeout(c.Request().Context(), h.UploadTimeout)
	}
	defer cancel()

	p, err := h.Catalog.CreateProduct(ctx, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

type openedUpload struct {
	multipart.File
	folder string
	header *multipart.FileHeader
}

// openUploads opens every media part in mediaFields order.  Parts opened
// before a failure are returned so the caller can close them.
func openUploads(form *multipart.Form) ([]openedUpload, error) {
	var out []openedUpload
	for _, mf := range mediaFields {
		for _, fh := range form.File[mf.field] {
			f, err := fh.Open()
			if err != nil {
				return out, err
			}
			out = append(out, openedUpload{File: f, folder: mf.folder, header: fh})
		}
	}
	return out, nil
}

// Update: PATCH /products/:id by the owner.
func (h *ProductHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var u service.ProductUpdate
	if err := c.Bind(&u); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	res, err := h.Catalog.UpdateProduct(ctx, c.Param("id"), uid, u)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Delete: DELETE /products/:id by the owner.
func (h *ProductHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Catalog.DeleteProduct(ctx, c.Param("id"), uid); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type approvalReq struct {
	IsApproved *bool `json:"is_approved"`
}

// Approve: PATCH /products/:id/approval (admin).
func (h *ProductHandler) Approve(c echo.Context) error {
	var req approvalReq
	if err := c.Bind(&req); err != nil || req.IsApproved == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "is_approved is required", "field": "is_approved"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Catalog.SetApproval(ctx, c.Param("id"), *req.IsApproved); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id"), "is_approved": *req.IsApproved})
}
