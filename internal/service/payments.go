package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	zlog "github.com/rs/zerolog/log"

	"github.com/iliyamo/dantour/internal/metrics"
	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/payment"
	"github.com/iliyamo/dantour/internal/tracing"
)

// CardGateway is the 3-D Secure card gateway.  *payment.Wompi implements it.
type CardGateway interface {
	Create3DS(ctx context.Context, req payment.ThreeDSRequest) (*payment.ThreeDSResult, error)
	VerifyWebhook(body []byte, signature string) bool
}

// LightningRail is the Lightning payment rail.  *payment.Blink implements it.
type LightningRail interface {
	Wallets(ctx context.Context) (payment.Wallets, error)
	CreateBTCInvoice(ctx context.Context, amountSats int64, walletID string) (payment.Invoice, error)
	CreateUSDInvoice(ctx context.Context, amountCents int64, walletID string) (payment.Invoice, error)
	SendToLightningAddress(ctx context.Context, currency, lnAddress string, amount int64, walletID string) (payment.PayoutResult, error)
}

// BookingTransitioner moves bookings by payment reference.
type BookingTransitioner interface {
	UpdateStatusByTransactionID(ctx context.Context, txID, status string) (bool, error)
}

// AddressBook finds the Lightning address a user receives payouts at.
type AddressBook interface {
	LightningAddress(ctx context.Context, userID string) (string, error)
}

// Webhook outcomes, also used as metric labels.
const (
	WebhookApplied       = "applied"
	WebhookUnknown       = "unknown_transaction"
	WebhookNoTransaction = "no_transaction"
	WebhookMissingHeader = "missing_signature"
	WebhookBadSignature  = "bad_signature"
	WebhookMalformed     = "malformed"
	WebhookFailed        = "failed"
)

// PaymentService fronts the payment collaborators.
type PaymentService struct {
	cards     CardGateway
	lightning LightningRail
	bookings  BookingTransitioner
	addresses AddressBook
}

func NewPaymentService(cards CardGateway, lightning LightningRail, bookings BookingTransitioner, addresses AddressBook) *PaymentService {
	if cards == nil || lightning == nil || bookings == nil || addresses == nil {
		panic("nil dependency passed to NewPaymentService")
	}
	return &PaymentService{cards: cards, lightning: lightning, bookings: bookings, addresses: addresses}
}

func upstream(name string, err error) error {
	if errors.Is(err, payment.ErrInvalidExpiry) {
		return invalid("cardExpiry", "must be MM/YY")
	}
	if errors.Is(err, payment.ErrNotConfigured) {
		return &UpstreamError{Upstream: name, Err: err}
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return &UpstreamError{Upstream: name, Err: err}
}

// ThreeDSInput is a card purchase request.
type ThreeDSInput struct {
	CardNumber string  `json:"cardNumber"`
	CVC        string  `json:"cardCvc"`
	Expiry     string  `json:"cardExpiry"`
	Total      float64 `json:"total"`
	payment.Buyer
}

// Start3DS creates a 3-D Secure transaction and returns where the
// shopper completes it.
func (s *PaymentService) Start3DS(ctx context.Context, in ThreeDSInput) (*payment.ThreeDSResult, error) {
	ctx, span := tracing.Start(ctx, "payments.Start3DS")
	defer span.End()

	switch {
	case len(strings.Join(strings.Fields(in.CardNumber), "")) < 12:
		return nil, invalid("cardNumber", "is not a card number")
	case trimmed(in.CVC) == "":
		return nil, invalid("cardCvc", "is required")
	case trimmed(in.Expiry) == "":
		return nil, invalid("cardExpiry", "is required")
	case in.Total <= 0:
		return nil, invalid("total", "must be greater than 0")
	case trimmed(in.Email) == "":
		return nil, invalid("email", "is required")
	}
	res, err := s.cards.Create3DS(ctx, payment.ThreeDSRequest{
		Card:  payment.Card{Number: in.CardNumber, CVC: trimmed(in.CVC), Expiry: trimmed(in.Expiry)},
		Buyer: in.Buyer,
		Total: in.Total,
	})
	if err != nil {
		return nil, upstream("wompi", err)
	}
	return res, nil
}

// CheckoutInput is a Lightning checkout.  AmountSats, when positive,
// asks for a BTC invoice instead of a USD one for Total.
type CheckoutInput struct {
	Total      float64 `json:"total"`
	AmountSats int64   `json:"amountSats"`
	Email      string  `json:"email"`
}

// CheckoutResult carries the invoice to pay.  TransactionID is the
// payment hash and is what the booking is later created with.
type CheckoutResult struct {
	PaymentRequest string `json:"paymentRequest"`
	TransactionID  string `json:"idTransaccion"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
}

func (s *PaymentService) BlinkCheckout(ctx context.Context, in CheckoutInput) (CheckoutResult, error) {
	ctx, span := tracing.Start(ctx, "payments.BlinkCheckout")
	defer span.End()

	var (
		inv payment.Invoice
		err error
		out CheckoutResult
	)
	switch {
	case in.AmountSats > 0:
		out.Currency, out.Amount = payment.CurrencyBTC, in.AmountSats
		inv, err = s.lightning.CreateBTCInvoice(ctx, in.AmountSats, "")
	case in.Total > 0:
		out.Currency, out.Amount = payment.CurrencyUSD, payment.USDToCents(in.Total)
		inv, err = s.lightning.CreateUSDInvoice(ctx, out.Amount, "")
	default:
		return CheckoutResult{}, invalid("total", "must be greater than 0")
	}
	if err != nil {
		return CheckoutResult{}, upstream("blink", err)
	}
	if inv.PaymentRequest == "" || inv.PaymentHash == "" {
		return CheckoutResult{}, upstream("blink", payment.ErrBadResponse)
	}
	out.PaymentRequest, out.TransactionID = inv.PaymentRequest, inv.PaymentHash
	return out, nil
}

func (s *PaymentService) Wallets(ctx context.Context) (payment.Wallets, error) {
	ws, err := s.lightning.Wallets(ctx)
	if err != nil {
		return payment.Wallets{}, upstream("blink", err)
	}
	return ws, nil
}

// PayoutInput pays a host at their stored Lightning address.
type PayoutInput struct {
	UserID   string `json:"userId"`
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
	WalletID string `json:"walletId"`
}

func (s *PaymentService) Payout(ctx context.Context, in PayoutInput) (payment.PayoutResult, error) {
	ctx, span := tracing.Start(ctx, "payments.Payout")
	defer span.End()

	currency := strings.ToUpper(trimmed(in.Currency))
	if currency == "" {
		currency = payment.CurrencyBTC
	}
	if currency != payment.CurrencyBTC && currency != payment.CurrencyUSD {
		return payment.PayoutResult{}, invalid("currency", "must be BTC or USD")
	}
	if in.Amount <= 0 {
		return payment.PayoutResult{}, invalid("amount", "must be greater than 0")
	}
	if !isUUID(in.UserID) {
		return payment.PayoutResult{}, invalid("userId", "must be a UUID")
	}
	addr, err := s.addresses.LightningAddress(ctx, in.UserID)
	if err != nil {
		return payment.PayoutResult{}, err
	}
	res, err := s.lightning.SendToLightningAddress(ctx, currency, addr, in.Amount, trimmed(in.WalletID))
	if err != nil {
		return payment.PayoutResult{}, upstream("blink", err)
	}
	zlog.Ctx(ctx).Info().Str("user_id", in.UserID).Str("currency", currency).Int64("amount", in.Amount).
		Str("status", res.Status).Msg("lightning payout sent")
	return res, nil
}

// HandleWebhook verifies a gateway notification and completes the
// booking it refers to.  It returns the outcome label; errors carry the
// status the gateway should see.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) (string, error) {
	outcome, err := s.handleWebhook(ctx, body, signature)
	metrics.WebhookOutcomes.WithLabelValues(outcome).Inc()
	return outcome, err
}

func (s *PaymentService) handleWebhook(ctx context.Context, body []byte, signature string) (string, error) {
	if strings.TrimSpace(signature) == "" {
		return WebhookMissingHeader, invalid(payment.WebhookHeader, "header is required")
	}
	if !s.cards.VerifyWebhook(body, strings.TrimSpace(signature)) {
		zlog.Ctx(ctx).Warn().Msg("webhook signature mismatch")
		return WebhookBadSignature, &ForbiddenError{Message: "invalid signature"}
	}
	var p payment.WebhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return WebhookMalformed, invalid("body", "malformed JSON")
	}
	txID := strings.TrimSpace(p.TransactionID)
	if txID == "" {
		zlog.Ctx(ctx).Warn().Msg("webhook without transaction id")
		return WebhookNoTransaction, nil
	}
	found, err := s.bookings.UpdateStatusByTransactionID(ctx, txID, model.BookingCompleted)
	if err != nil {
		return WebhookFailed, err
	}
	if !found {
		return WebhookUnknown, nil
	}
	zlog.Ctx(ctx).Info().Str("transaction_id", txID).Str("result", p.Result).Msg("webhook applied")
	return WebhookApplied, nil
}
