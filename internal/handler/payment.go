package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dantour/internal/payment"
	"github.com/iliyamo/dantour/internal/service"
)

// maxWebhookBody caps a gateway notification.
const maxWebhookBody = 1 << 20

// Payments is implemented by *service.PaymentService.
type Payments interface {
	Start3DS(ctx context.Context, in service.ThreeDSInput) (*payment.ThreeDSResult, error)
	BlinkCheckout(ctx context.Context, in service.CheckoutInput) (service.CheckoutResult, error)
	Wallets(ctx context.Context) (payment.Wallets, error)
	Payout(ctx context.Context, in service.PayoutInput) (payment.PayoutResult, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) (string, error)
}

// PaymentHandler serves /api/v1/payments and the gateway webhook.
type PaymentHandler struct {
	Payments Payments
}

func NewPaymentHandler(p Payments) *PaymentHandler { return &PaymentHandler{Payments: p} }

// ThreeDS: POST /payments/3ds.
func (h *PaymentHandler) ThreeDS(c echo.Context) error {
	var in service.ThreeDSInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	res, err := h.Payments.Start3DS(ctx, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Checkout: POST /payments/blink/checkout.
func (h *PaymentHandler) Checkout(c echo.Context) error {
	var in service.CheckoutInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	res, err := h.Payments.BlinkCheckout(ctx, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Wallets: GET /payments/blink/wallets (admin).
func (h *PaymentHandler) Wallets(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	ws, err := h.Payments.Wallets(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ws)
}

// Payout: POST /payments/blink/payout (admin).
func (h *PaymentHandler) Payout(c echo.Context) error {
	var in service.PayoutInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	res, err := h.Payments.Payout(ctx, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Webhook: POST /webhook-wompi.  The signature covers the raw body, so
// the body is read as bytes and never re-encoded.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return badRequest(c, "cannot read body")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	outcome, err := h.Payments.HandleWebhook(ctx, body, c.Request().Header.Get(payment.WebhookHeader))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true, "outcome": outcome})
}
