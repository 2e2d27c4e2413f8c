package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/service"
)

// PaymentAccounts is implemented by *service.PaymentAccountService.
type PaymentAccounts interface {
	Create(ctx context.Context, userID string, in service.PaymentAccountInput) (model.PaymentAccount, error)
	List(ctx context.Context, userID string) ([]model.PaymentAccount, error)
	Update(ctx context.Context, id, callerID string, in service.PaymentAccountInput) (model.PaymentAccount, error)
	Delete(ctx context.Context, id, callerID string) error
}

// PaymentAccountHandler serves /api/v1/payment-accounts.  Every route
// acts on the caller's own accounts.
type PaymentAccountHandler struct {
	Accounts PaymentAccounts
}

func NewPaymentAccountHandler(a PaymentAccounts) *PaymentAccountHandler {
	return &PaymentAccountHandler{Accounts: a}
}

func (h *PaymentAccountHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var in service.PaymentAccountInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	a, err := h.Accounts.Create(ctx, uid, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

// Mine: GET /payment-accounts, decrypted.
func (h *PaymentAccountHandler) Mine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	items, err := h.Accounts.List(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"accounts": items})
}

func (h *PaymentAccountHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var in service.PaymentAccountInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	a, err := h.Accounts.Update(ctx, c.Param("id"), uid, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *PaymentAccountHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Accounts.Delete(ctx, c.Param("id"), uid); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
