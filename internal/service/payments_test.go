package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/payment"
)

const webhookSecret = "whsec"

type MockCardGateway struct {
	Requests []payment.ThreeDSRequest
	Err      error
}

func (m *MockCardGateway) Create3DS(ctx context.Context, req payment.ThreeDSRequest) (*payment.ThreeDSResult, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return &payment.ThreeDSResult{TransactionID: "W-1", RedirectURL: "https://pay.test/3ds"}, nil
}

func (m *MockCardGateway) VerifyWebhook(body []byte, signature string) bool {
	return payment.VerifySignature(webhookSecret, body, signature)
}

type MockLightning struct {
	BTC, USD []int64
	Sent     []string
	Err      error
}

func (m *MockLightning) Wallets(ctx context.Context) (payment.Wallets, error) {
	return payment.Wallets{BTCWalletID: "btc-1", USDWalletID: "usd-1"}, m.Err
}

func (m *MockLightning) CreateBTCInvoice(ctx context.Context, amountSats int64, walletID string) (payment.Invoice, error) {
	m.BTC = append(m.BTC, amountSats)
	return payment.Invoice{PaymentRequest: "lnbc1", PaymentHash: "hash-btc"}, m.Err
}

func (m *MockLightning) CreateUSDInvoice(ctx context.Context, amountCents int64, walletID string) (payment.Invoice, error) {
	m.USD = append(m.USD, amountCents)
	return payment.Invoice{PaymentRequest: "lnbc2", PaymentHash: "hash-usd"}, m.Err
}

func (m *MockLightning) SendToLightningAddress(ctx context.Context, currency, lnAddress string, amount int64, walletID string) (payment.PayoutResult, error) {
	m.Sent = append(m.Sent, currency+":"+lnAddress)
	return payment.PayoutResult{Status: "SUCCESS"}, m.Err
}

type MockTransitioner struct {
	Known map[string]string
	Calls []string
	Err   error
}

func (m *MockTransitioner) UpdateStatusByTransactionID(ctx context.Context, txID, status string) (bool, error) {
	m.Calls = append(m.Calls, txID+":"+status)
	if m.Err != nil {
		return false, m.Err
	}
	if _, ok := m.Known[txID]; !ok {
		return false, nil
	}
	m.Known[txID] = status
	return true, nil
}

type MockAddressBook struct {
	Addresses map[string]string
}

func (m *MockAddressBook) LightningAddress(ctx context.Context, userID string) (string, error) {
	a, ok := m.Addresses[userID]
	if !ok {
		return "", notFound("lightning address")
	}
	return a, nil
}

type paymentFixture struct {
	svc       *PaymentService
	cards     *MockCardGateway
	lightning *MockLightning
	bookings  *MockTransitioner
	addresses *MockAddressBook
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		cards:     &MockCardGateway{},
		lightning: &MockLightning{},
		bookings:  &MockTransitioner{Known: map[string]string{"TX-1": model.BookingInProcess}},
		addresses: &MockAddressBook{Addresses: map[string]string{}},
	}
	f.svc = NewPaymentService(f.cards, f.lightning, f.bookings, f.addresses)
	return f
}

func TestPaymentService_HandleWebhook(t *testing.T) {
	signed := func(body string) (string, string) { return body, payment.Sign(webhookSecret, []byte(body)) }
	tests := []struct {
		name        string
		body, sig   string
		wantOutcome string
		wantErr     any
		wantStatus  string
	}{
		{name: "missing header", body: `{"IdTransaccion":"TX-1"}`, wantOutcome: WebhookMissingHeader, wantErr: &ValidationError{}, wantStatus: model.BookingInProcess},
		{name: "bad signature", body: `{"IdTransaccion":"TX-1"}`, sig: "deadbeef", wantOutcome: WebhookBadSignature, wantErr: &ForbiddenError{}, wantStatus: model.BookingInProcess},
		{name: "applied", wantOutcome: WebhookApplied, wantStatus: model.BookingCompleted},
		{name: "unknown transaction", wantOutcome: WebhookUnknown, wantStatus: model.BookingInProcess},
		{name: "no transaction", wantOutcome: WebhookNoTransaction, wantStatus: model.BookingInProcess},
		{name: "malformed", wantOutcome: WebhookMalformed, wantErr: &ValidationError{}, wantStatus: model.BookingInProcess},
	}
	bodies := map[string]string{
		"applied":             `{"IdTransaccion":"TX-1","ResultadoTransaccion":"ExitosaAprobada","Monto":25}`,
		"unknown transaction": `{"IdTransaccion":"TX-404"}`,
		"no transaction":      `{"ResultadoTransaccion":"ExitosaAprobada"}`,
		"malformed":           `{"IdTransaccion":`,
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if b, ok := bodies[tt.name]; ok {
				tt.body, tt.sig = signed(b)
			}
			f := newPaymentFixture()
			outcome, err := f.svc.HandleWebhook(context.Background(), []byte(tt.body), tt.sig)
			if (err != nil) != (tt.wantErr != nil) {
				t.Fatalf("HandleWebhook() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil && !sameErrType(err, tt.wantErr) {
				t.Errorf("HandleWebhook() error = %T, want %T", err, tt.wantErr)
			}
			if outcome != tt.wantOutcome {
				t.Errorf("HandleWebhook() outcome = %q, want %q", outcome, tt.wantOutcome)
			}
			if s := f.bookings.Known["TX-1"]; s != tt.wantStatus {
				t.Errorf("booking status = %q, want %q", s, tt.wantStatus)
			}
		})
	}
}

func TestPaymentService_HandleWebhook_StoreFailure(t *testing.T) {
	f := newPaymentFixture()
	f.bookings.Err = errors.New("db down")
	body := []byte(`{"IdTransaccion":"TX-1"}`)
	outcome, err := f.svc.HandleWebhook(context.Background(), body, payment.Sign(webhookSecret, body))
	if err == nil || outcome != WebhookFailed {
		t.Errorf("HandleWebhook() = %q, %v, want failed", outcome, err)
	}
}

func TestPaymentService_BlinkCheckout(t *testing.T) {
	tests := []struct {
		name         string
		in           CheckoutInput
		wantCurrency string
		wantAmount   int64
		wantErr      bool
	}{
		{name: "usd", in: CheckoutInput{Total: 12.34}, wantCurrency: payment.CurrencyUSD, wantAmount: 1234},
		{name: "sats win", in: CheckoutInput{Total: 5, AmountSats: 2100}, wantCurrency: payment.CurrencyBTC, wantAmount: 2100},
		{name: "nothing to charge", in: CheckoutInput{}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture()
			got, err := f.svc.BlinkCheckout(context.Background(), tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BlinkCheckout() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Currency != tt.wantCurrency || got.Amount != tt.wantAmount || got.TransactionID == "" || got.PaymentRequest == "" {
				t.Errorf("BlinkCheckout() = %+v", got)
			}
		})
	}
}

func TestPaymentService_BlinkCheckout_Upstream(t *testing.T) {
	f := newPaymentFixture()
	f.lightning.Err = errors.New("502 from blink")
	_, err := f.svc.BlinkCheckout(context.Background(), CheckoutInput{Total: 10})
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Upstream != "blink" {
		t.Errorf("BlinkCheckout() error = %v, want blink UpstreamError", err)
	}
}

func TestPaymentService_Start3DS(t *testing.T) {
	valid := ThreeDSInput{
		CardNumber: "4111 1111 1111 1111",
		CVC:        "123",
		Expiry:     "12/28",
		Total:      50,
		Buyer:      payment.Buyer{FirstName: "Ana", Email: "ana@example.com"},
	}
	tests := []struct {
		name    string
		edit    func(in *ThreeDSInput)
		gateErr error
		wantErr any
	}{
		{name: "valid"},
		{name: "short card", edit: func(in *ThreeDSInput) { in.CardNumber = "4111" }, wantErr: &ValidationError{}},
		{name: "no cvc", edit: func(in *ThreeDSInput) { in.CVC = "" }, wantErr: &ValidationError{}},
		{name: "zero total", edit: func(in *ThreeDSInput) { in.Total = 0 }, wantErr: &ValidationError{}},
		{name: "no email", edit: func(in *ThreeDSInput) { in.Email = "" }, wantErr: &ValidationError{}},
		{name: "bad expiry", gateErr: payment.ErrInvalidExpiry, wantErr: &ValidationError{}},
		{name: "gateway down", gateErr: errors.New("timeout"), wantErr: &UpstreamError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture()
			f.cards.Err = tt.gateErr
			in := valid
			if tt.edit != nil {
				tt.edit(&in)
			}
			got, err := f.svc.Start3DS(context.Background(), in)
			if (err != nil) != (tt.wantErr != nil) {
				t.Fatalf("Start3DS() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if !sameErrType(err, tt.wantErr) {
					t.Errorf("Start3DS() error = %T, want %T", err, tt.wantErr)
				}
				return
			}
			if got.RedirectURL == "" || f.cards.Requests[0].Buyer.Email != "ana@example.com" {
				t.Errorf("Start3DS() = %+v", got)
			}
		})
	}
}

func TestPaymentService_Payout(t *testing.T) {
	host := uuid.NewString()
	tests := []struct {
		name     string
		in       PayoutInput
		wantSent string
		wantErr  any
	}{
		{name: "default btc", in: PayoutInput{UserID: host, Amount: 1000}, wantSent: "BTC:host@blink.sv"},
		{name: "usd", in: PayoutInput{UserID: host, Amount: 500, Currency: "usd"}, wantSent: "USD:host@blink.sv"},
		{name: "bad currency", in: PayoutInput{UserID: host, Amount: 1, Currency: "EUR"}, wantErr: &ValidationError{}},
		{name: "zero amount", in: PayoutInput{UserID: host}, wantErr: &ValidationError{}},
		{name: "no address", in: PayoutInput{UserID: uuid.NewString(), Amount: 1}, wantErr: &NotFoundError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture()
			f.addresses.Addresses[host] = "host@blink.sv"
			_, err := f.svc.Payout(context.Background(), tt.in)
			if (err != nil) != (tt.wantErr != nil) {
				t.Fatalf("Payout() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if !sameErrType(err, tt.wantErr) {
					t.Errorf("Payout() error = %T, want %T", err, tt.wantErr)
				}
				return
			}
			if len(f.lightning.Sent) != 1 || f.lightning.Sent[0] != tt.wantSent {
				t.Errorf("sent = %v, want [%s]", f.lightning.Sent, tt.wantSent)
			}
		})
	}
}
