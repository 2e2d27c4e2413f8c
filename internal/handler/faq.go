package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/service"
)

// FAQStore is implemented by *repository.FAQRepo.
type FAQStore interface {
	List(ctx context.Context) ([]model.FAQ, error)
	ListByProduct(ctx context.Context, productID string) ([]model.FAQ, error)
	Get(ctx context.Context, id string) (model.FAQ, error)
	Create(ctx context.Context, f *model.FAQ) error
	Update(ctx context.Context, id, question, answer string) error
	Delete(ctx context.Context, id string) error
}

// ProductOwners resolves product ownership.  *repository.ProductRepo
// implements it.
type ProductOwners interface {
	GetByID(ctx context.Context, id string) (model.Product, error)
}

// FAQHandler serves /api/v1/faqs.  Only the owner of a product writes its
// FAQs.
type FAQHandler struct {
	FAQs     FAQStore
	Products ProductOwners
}

func NewFAQHandler(faqs FAQStore, products ProductOwners) *FAQHandler {
	return &FAQHandler{FAQs: faqs, Products: products}
}

type faqReq struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	ProductID string `json:"product_id"`
}

func (r faqReq) validate(needProduct bool) error {
	switch {
	case strings.TrimSpace(r.Question) == "":
		return &service.ValidationError{Field: "question", Message: "is required"}
	case strings.TrimSpace(r.Answer) == "":
		return &service.ValidationError{Field: "answer", Message: "is required"}
	case needProduct && strings.TrimSpace(r.ProductID) == "":
		return &service.ValidationError{Field: "product_id", Message: "is required"}
	}
	return nil
}

func (h *FAQHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	items, err := h.FAQs.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"faqs": items})
}

// ByProduct: GET /faqs/product/:id.
func (h *FAQHandler) ByProduct(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	items, err := h.FAQs.ListByProduct(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"faqs": items})
}

func (h *FAQHandler) Get(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	f, err := h.FAQs.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// ownsProduct reports whether the caller owns productID.
func (h *FAQHandler) ownsProduct(ctx context.Context, uid, productID string) (bool, error) {
	p, err := h.Products.GetByID(ctx, productID)
	if err != nil {
		return false, err
	}
	return p.UserID == uid, nil
}

func (h *FAQHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req faqReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := req.validate(true); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	ok, err := h.ownsProduct(ctx, uid, strings.TrimSpace(req.ProductID))
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your product"})
	}
	f := model.FAQ{
		Question:  strings.TrimSpace(req.Question),
		Answer:    strings.TrimSpace(req.Answer),
		UserID:    uid,
		ProductID: strings.TrimSpace(req.ProductID),
	}
	if err := h.FAQs.Create(ctx, &f); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, f)
}

// owned loads the FAQ addressed by :id and checks product ownership.
func (h *FAQHandler) owned(ctx context.Context, c echo.Context) (model.FAQ, bool, error) {
	uid, err := getUserID(c)
	if err != nil {
		return model.FAQ{}, false, err
	}
	f, err := h.FAQs.Get(ctx, c.Param("id"))
	if err != nil {
		return f, false, err
	}
	ok, err := h.ownsProduct(ctx, uid, f.ProductID)
	return f, ok, err
}

func (h *FAQHandler) Update(c echo.Context) error {
	var req faqReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := req.validate(false); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	f, ok, err := h.owned(ctx, c)
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your product"})
	}
	f.Question, f.Answer = strings.TrimSpace(req.Question), strings.TrimSpace(req.Answer)
	if err := h.FAQs.Update(ctx, f.ID, f.Question, f.Answer); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *FAQHandler) Delete(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	f, ok, err := h.owned(ctx, c)
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your product"})
	}
	if err := h.FAQs.Delete(ctx, f.ID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
