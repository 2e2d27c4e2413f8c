package payment

import (
	"context"
	"math"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/iliyamo/dantour/internal/config"
	"github.com/iliyamo/dantour/internal/httpclient"
)

// Wallet currencies reported by Blink.
const (
	CurrencyBTC = "BTC"
	CurrencyUSD = "USD"
)

// Wallet is one wallet of the Blink account behind the API key.
type Wallet struct {
	ID             string  `json:"id"`
	WalletCurrency string  `json:"walletCurrency"`
	Balance        float64 `json:"balance"`
}

// Wallets groups the account wallets with the default BTC and USD ids.
type Wallets struct {
	BTCWalletID string   `json:"btcWalletId,omitempty"`
	USDWalletID string   `json:"usdWalletId,omitempty"`
	Wallets     []Wallet `json:"wallets"`
}

// Invoice is a Lightning invoice the customer pays.
type Invoice struct {
	PaymentRequest string `json:"paymentRequest"`
	PaymentHash    string `json:"paymentHash"`
	PaymentSecret  string `json:"paymentSecret,omitempty"`
	Satoshis       int64  `json:"satoshis,omitempty"`
}

// GraphQLError is one error entry of a Blink mutation result.
type GraphQLError struct {
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
	Path    []string `json:"path,omitempty"`
}

// PayoutResult is the outcome of a Lightning-address payment.
type PayoutResult struct {
	Status string         `json:"status"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

const (
	walletsQuery = `query Me { me { defaultAccount { wallets { id walletCurrency balance } } } }`

	btcInvoiceMutation = `mutation LnInvoiceCreate($input: LnInvoiceCreateInput!) {
  lnInvoiceCreate(input: $input) { invoice { paymentRequest paymentHash paymentSecret satoshis } errors { message } }
}`

	usdInvoiceMutation = `mutation LnUsdInvoiceCreate($input: LnUsdInvoiceCreateInput!) {
  lnUsdInvoiceCreate(input: $input) { invoice { paymentRequest paymentHash paymentSecret satoshis } errors { message } }
}`

	lnAddressSendMutation = `mutation LnAddressPaymentSend($input: LnAddressPaymentSendInput!) {
  lnAddressPaymentSend(input: $input) { status errors { message code path } }
}`
)

// Blink is the GraphQL client for the Lightning rail.
type Blink struct {
	cfg  config.BlinkConfig
	http *httpclient.Client
}

func NewBlink(cfg config.BlinkConfig) *Blink {
	return &Blink{cfg: cfg, http: httpclient.New("blink", cfg.Timeout)}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []GraphQLError `json:"errors"`
}

func blinkCall[T any](ctx context.Context, b *Blink, query string, vars map[string]any) (T, error) {
	var zero T
	key := strings.TrimSpace(b.cfg.APIKey)
	if key == "" {
		return zero, ErrNotConfigured
	}
	h := http.Header{}
	h.Set("X-API-KEY", key)
	var out gqlResponse[T]
	if err := b.http.PostJSON(ctx, b.cfg.GraphQLURL, h, gqlRequest{Query: query, Variables: vars}, &out); err != nil {
		return zero, errors.Wrap(err, "blink")
	}
	if len(out.Errors) > 0 {
		return zero, errors.Errorf("blink: %s", joinMessages(out.Errors))
	}
	return out.Data, nil
}

func joinMessages(errs []GraphQLError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Wallets lists the wallets of the account.
func (b *Blink) Wallets(ctx context.Context) (Wallets, error) {
	data, err := blinkCall[struct {
		Me *struct {
			DefaultAccount *struct {
				Wallets []Wallet `json:"wallets"`
			} `json:"defaultAccount"`
		} `json:"me"`
	}](ctx, b, walletsQuery, nil)
	if err != nil {
		return Wallets{}, err
	}
	res := Wallets{Wallets: []Wallet{}}
	if data.Me != nil && data.Me.DefaultAccount != nil {
		res.Wallets = data.Me.DefaultAccount.Wallets
	}
	for _, w := range res.Wallets {
		switch w.WalletCurrency {
		case CurrencyBTC:
			if res.BTCWalletID == "" {
				res.BTCWalletID = w.ID
			}
		case CurrencyUSD:
			if res.USDWalletID == "" {
				res.USDWalletID = w.ID
			}
		}
	}
	return res, nil
}

func (b *Blink) walletFor(ctx context.Context, currency, walletID string) (string, error) {
	if walletID != "" {
		return walletID, nil
	}
	ws, err := b.Wallets(ctx)
	if err != nil {
		return "", err
	}
	id := ws.BTCWalletID
	if currency == CurrencyUSD {
		id = ws.USDWalletID
	}
	if id == "" {
		return "", errors.Errorf("blink: no %s wallet on the account", currency)
	}
	return id, nil
}

type invoicePayload struct {
	Invoice *Invoice       `json:"invoice"`
	Errors  []GraphQLError `json:"errors"`
}

// CreateBTCInvoice creates an invoice for amountSats satoshis.
func (b *Blink) CreateBTCInvoice(ctx context.Context, amountSats int64, walletID string) (Invoice, error) {
	wid, err := b.walletFor(ctx, CurrencyBTC, walletID)
	if err != nil {
		return Invoice{}, err
	}
	data, err := blinkCall[struct {
		Res *invoicePayload `json:"lnInvoiceCreate"`
	}](ctx, b, btcInvoiceMutation, map[string]any{
		"input": map[string]any{"walletId": wid, "amount": amountSats},
	})
	if err != nil {
		return Invoice{}, err
	}
	return checkInvoice(data.Res)
}

// CreateUSDInvoice creates a Stablesats invoice for amountCents USD cents.
func (b *Blink) CreateUSDInvoice(ctx context.Context, amountCents int64, walletID string) (Invoice, error) {
	wid, err := b.walletFor(ctx, CurrencyUSD, walletID)
	if err != nil {
		return Invoice{}, err
	}
	data, err := blinkCall[struct {
		Res *invoicePayload `json:"lnUsdInvoiceCreate"`
	}](ctx, b, usdInvoiceMutation, map[string]any{
		"input": map[string]any{"walletId": wid, "amount": amountCents},
	})
	if err != nil {
		return Invoice{}, err
	}
	return checkInvoice(data.Res)
}

func checkInvoice(p *invoicePayload) (Invoice, error) {
	if p == nil {
		return Invoice{}, ErrBadResponse
	}
	if len(p.Errors) > 0 {
		return Invoice{}, errors.Errorf("blink: %s", joinMessages(p.Errors))
	}
	if p.Invoice == nil || p.Invoice.PaymentRequest == "" || p.Invoice.PaymentHash == "" {
		return Invoice{}, ErrBadResponse
	}
	return *p.Invoice, nil
}

// SendToLightningAddress pays amount (sats for BTC, cents for USD) from
// the currency's wallet to lnAddress.
func (b *Blink) SendToLightningAddress(ctx context.Context, currency, lnAddress string, amount int64, walletID string) (PayoutResult, error) {
	wid, err := b.walletFor(ctx, currency, walletID)
	if err != nil {
		return PayoutResult{}, err
	}
	data, err := blinkCall[struct {
		Res *PayoutResult `json:"lnAddressPaymentSend"`
	}](ctx, b, lnAddressSendMutation, map[string]any{
		"input": map[string]any{"lnAddress": strings.TrimSpace(lnAddress), "amount": amount, "walletId": wid},
	})
	if err != nil {
		return PayoutResult{}, err
	}
	if data.Res == nil {
		return PayoutResult{}, ErrBadResponse
	}
	return *data.Res, nil
}

// USDToCents converts a dollar total to whole cents.
func USDToCents(total float64) int64 {
	return int64(math.Round(total * 100))
}
