// Package payment holds the clients for the card gateway (Wompi) and the
// Lightning rail (Blink).
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/iliyamo/dantour/internal/config"
	"github.com/iliyamo/dantour/internal/httpclient"
)

var (
	// ErrNotConfigured is returned when the gateway credentials are missing.
	ErrNotConfigured = errors.New("payment: gateway not configured")
	// ErrInvalidExpiry is returned for card expiries not in MM/YY form.
	ErrInvalidExpiry = errors.New("payment: card expiry must be MM/YY")
	// ErrBadResponse is returned when the upstream answers without the
	// fields the flow depends on.
	ErrBadResponse = errors.New("payment: incomplete upstream response")
)

// WebhookHeader carries the hex HMAC-SHA256 of the raw webhook body.
const WebhookHeader = "wompi_hash"

// Card is the card data of a 3DS purchase.
type Card struct {
	Number string
	CVC    string
	Expiry string // MM/YY
}

// Buyer is the billing identity sent with a 3DS purchase.
type Buyer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

// ThreeDSRequest describes a card purchase requiring 3-D Secure.
type ThreeDSRequest struct {
	Card  Card
	Buyer Buyer
	Total float64
}

// ThreeDSResult is the gateway answer; the shopper completes the payment
// at RedirectURL and the gateway later calls the webhook.
type ThreeDSResult struct {
	TransactionID string         `json:"idTransaccion"`
	RedirectURL   string         `json:"urlCompletarPago3Ds"`
	Raw           map[string]any `json:"-"`
}

// WebhookPayload is the subset of the gateway notification we act on.
type WebhookPayload struct {
	TransactionID string `json:"IdTransaccion"`
	Result        string `json:"ResultadoTransaccion"`
	Amount        any    `json:"Monto"`
}

type wompiCard struct {
	Number string `json:"numeroTarjeta"`
	CVV    string `json:"cvv"`
	Month  int    `json:"mesVencimiento"`
	Year   int    `json:"anioVencimiento"`
}

type wompiSettings struct {
	NotifyEmails string `json:"emailsNotificacion"`
	WebhookURL   string `json:"urlWebhook"`
	NotifyPhones string `json:"telefonosNotificacion"`
	NotifyBuyer  bool   `json:"notificarTransaccionCliente"`
}

type wompi3DSBody struct {
	Card        wompiCard     `json:"tarjetaCreditoDebido"`
	Amount      float64       `json:"monto"`
	Settings    wompiSettings `json:"configuracion"`
	RedirectURL string        `json:"urlRedirect"`
	FirstName   string        `json:"nombre"`
	LastName    string        `json:"apellido"`
	Email       string        `json:"email"`
	City        string        `json:"ciudad"`
	Address     string        `json:"direccion"`
	CountryID   string        `json:"idPais"`
	RegionID    string        `json:"idRegion"`
	ZipCode     string        `json:"codigoPostal"`
	Phone       string        `json:"telefono"`
}

// Wompi is the card gateway client.
type Wompi struct {
	cfg    config.WompiConfig
	http   *httpclient.Client
	tokens *TokenCache
}

// NewWompi builds a client whose access token lives in tokens.  When
// tokens is nil a cache fetching from the configured identity endpoint
// is created.
func NewWompi(cfg config.WompiConfig, tokens *TokenCache) *Wompi {
	w := &Wompi{cfg: cfg, http: httpclient.New("wompi", cfg.Timeout)}
	if tokens == nil {
		tokens = NewTokenCache(w.fetchToken, 30*time.Second)
	}
	w.tokens = tokens
	return w
}

func (w *Wompi) configured() bool {
	return w.cfg.ClientID != "" && w.cfg.ClientSecret != ""
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (w *Wompi) fetchToken(ctx context.Context) (string, time.Duration, error) {
	if !w.configured() {
		return "", 0, ErrNotConfigured
	}
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"audience":      {w.cfg.Audience},
		"client_id":     {w.cfg.ClientID},
		"client_secret": {w.cfg.ClientSecret},
	}
	var out tokenResponse
	if err := w.http.PostForm(ctx, w.cfg.TokenURL, form, &out); err != nil {
		return "", 0, errors.Wrap(err, "wompi token")
	}
	if out.AccessToken == "" {
		return "", 0, errors.Wrap(ErrBadResponse, "wompi token")
	}
	return out.AccessToken, time.Duration(out.ExpiresIn) * time.Second, nil
}

// Token exposes the cached access token.
func (w *Wompi) Token(ctx context.Context) (string, error) { return w.tokens.Token(ctx) }

// Create3DS starts a 3-D Secure card purchase.
func (w *Wompi) Create3DS(ctx context.Context, req ThreeDSRequest) (*ThreeDSResult, error) {
	month, year, err := ParseCardExpiry(req.Card.Expiry)
	if err != nil {
		return nil, err
	}
	token, err := w.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	body := wompi3DSBody{
		Card: wompiCard{
			Number: strings.Join(strings.Fields(req.Card.Number), ""),
			CVV:    req.Card.CVC,
			Month:  month,
			Year:   year,
		},
		Amount: req.Total,
		Settings: wompiSettings{
			NotifyEmails: req.Buyer.Email,
			WebhookURL:   w.cfg.WebhookURL,
			NotifyPhones: w.cfg.NotifyPhone,
			NotifyBuyer:  true,
		},
		RedirectURL: w.cfg.RedirectURL,
		FirstName:   req.Buyer.FirstName,
		LastName:    req.Buyer.LastName,
		Email:       req.Buyer.Email,
		City:        req.Buyer.City,
		Address:     req.Buyer.Address,
		CountryID:   req.Buyer.Country,
		RegionID:    req.Buyer.State,
		ZipCode:     req.Buyer.ZipCode,
		Phone:       w.cfg.NotifyPhone,
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)

	var raw map[string]any
	err = w.http.PostJSON(ctx, strings.TrimRight(w.cfg.APIURL, "/")+"/TransaccionCompra/3DS", h, body, &raw)
	var se *httpclient.StatusError
	if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
		w.tokens.Invalidate()
	}
	if err != nil {
		return nil, errors.Wrap(err, "wompi 3ds")
	}
	res := &ThreeDSResult{Raw: raw}
	res.TransactionID, _ = raw["idTransaccion"].(string)
	res.RedirectURL, _ = raw["urlCompletarPago3Ds"].(string)
	if res.TransactionID == "" || res.RedirectURL == "" {
		return nil, ErrBadResponse
	}
	return res, nil
}

// VerifyWebhook checks the hex HMAC-SHA256 signature of a raw webhook body.
func (w *Wompi) VerifyWebhook(body []byte, signature string) bool {
	return VerifySignature(w.cfg.ClientSecret, body, signature)
}

// VerifySignature compares signature with HMAC-SHA256(secret, body) in
// constant time.
func VerifySignature(secret string, body []byte, signature string) bool {
	want, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(want) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), want)
}

// Sign returns the hex HMAC-SHA256 of body, as the gateway computes it.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ParseCardExpiry parses "MM/YY" (or "MM/YYYY") into month and a four
// digit year.
func ParseCardExpiry(s string) (int, int, error) {
	m, y, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return 0, 0, ErrInvalidExpiry
	}
	month, err := strconv.Atoi(strings.TrimSpace(m))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, ErrInvalidExpiry
	}
	y = strings.TrimSpace(y)
	year, err := strconv.Atoi(y)
	if err != nil || year < 0 {
		return 0, 0, ErrInvalidExpiry
	}
	switch len(y) {
	case 2:
		year += 2000
	case 4:
	default:
		return 0, 0, ErrInvalidExpiry
	}
	return month, year, nil
}
