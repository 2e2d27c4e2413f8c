package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iliyamo/dantour/internal/config"
)

func TestParseCardExpiry(t *testing.T) {
	tests := []struct {
		in        string
		wantMonth int
		wantYear  int
		wantErr   bool
	}{
		{in: "08/29", wantMonth: 8, wantYear: 2029},
		{in: "12/2031", wantMonth: 12, wantYear: 2031},
		{in: " 1/30 ", wantMonth: 1, wantYear: 2030},
		{in: "0829", wantErr: true},
		{in: "13/29", wantErr: true},
		{in: "ab/cd", wantErr: true},
		{in: "08/9", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, y, err := ParseCardExpiry(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCardExpiry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (m != tt.wantMonth || y != tt.wantYear) {
				t.Errorf("ParseCardExpiry() = %d/%d, want %d/%d", m, y, tt.wantMonth, tt.wantYear)
			}
		})
	}
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"IdTransaccion":"tx-1"}`)
	sig := Sign("secret", body)

	tests := []struct {
		name string
		sig  string
		body []byte
		want bool
	}{
		{name: "valid", sig: sig, body: body, want: true},
		{name: "uppercase hex", sig: strings.ToUpper(sig), body: body, want: true},
		{name: "tampered body", sig: sig, body: []byte(`{"IdTransaccion":"tx-2"}`), want: false},
		{name: "not hex", sig: "zz", body: body, want: false},
		{name: "empty", sig: "", body: body, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifySignature("secret", tt.body, tt.sig); got != tt.want {
				t.Errorf("VerifySignature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenCacheReusesUntilExpiry(t *testing.T) {
	var calls int32
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTokenCache(func(ctx context.Context) (string, time.Duration, error) {
		n := atomic.AddInt32(&calls, 1)
		return "tok-" + string(rune('0'+n)), time.Hour, nil
	}, time.Minute)
	c.now = func() time.Time { return now }

	first, err := c.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	second, _ := c.Token(context.Background())
	if first != second || atomic.LoadInt32(&calls) != 1 {
		t.Errorf("token refreshed before expiry: %q %q calls=%d", first, second, calls)
	}

	now = now.Add(59*time.Minute + time.Second)
	third, _ := c.Token(context.Background())
	if third == first || atomic.LoadInt32(&calls) != 2 {
		t.Errorf("token not refreshed inside skew window: %q calls=%d", third, calls)
	}
}

func TestTokenCacheSingleFlight(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	c := NewTokenCache(func(ctx context.Context) (string, time.Duration, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "tok", time.Hour, nil
	}, 0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tok, err := c.Token(context.Background()); err != nil || tok != "tok" {
				t.Errorf("Token() = %q, %v", tok, err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("fetch called %d times, want 1", n)
	}
}

func TestWompiCreate3DS(t *testing.T) {
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "abc", "expires_in": 3600})
	})
	mux.HandleFunc("/TransaccionCompra/3DS", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		card := body["tarjetaCreditoDebido"].(map[string]any)
		if card["numeroTarjeta"] != "4111111111111111" || card["anioVencimiento"] != float64(2029) {
			t.Errorf("unexpected card payload: %v", card)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"idTransaccion": "tx-9", "urlCompletarPago3Ds": "https://3ds"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	w := NewWompi(config.WompiConfig{
		TokenURL: srv.URL + "/token", APIURL: srv.URL, ClientID: "id", ClientSecret: "secret",
		Audience: "wompi_api", Timeout: time.Second,
	}, nil)
	req := ThreeDSRequest{Card: Card{Number: "4111 1111 1111 1111", CVC: "123", Expiry: "08/29"}, Total: 25}

	for i := 0; i < 2; i++ {
		res, err := w.Create3DS(context.Background(), req)
		if err != nil {
			t.Fatalf("Create3DS() error = %v", err)
		}
		if res.TransactionID != "tx-9" || res.RedirectURL != "https://3ds" {
			t.Errorf("Create3DS() = %+v", res)
		}
	}
	if n := atomic.LoadInt32(&tokenCalls); n != 1 {
		t.Errorf("token endpoint called %d times, want 1", n)
	}
}

func TestWompiCreate3DSIncompleteResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "abc", "expires_in": 3600})
	})
	mux.HandleFunc("/TransaccionCompra/3DS", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"idTransaccion": "tx-9"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	w := NewWompi(config.WompiConfig{TokenURL: srv.URL + "/token", APIURL: srv.URL, ClientID: "id", ClientSecret: "s", Timeout: time.Second}, nil)
	_, err := w.Create3DS(context.Background(), ThreeDSRequest{Card: Card{Number: "4111", Expiry: "01/30"}, Total: 1})
	if err != ErrBadResponse {
		t.Errorf("Create3DS() error = %v, want ErrBadResponse", err)
	}
}

func TestBlinkCreateUSDInvoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "key" {
			t.Errorf("X-API-KEY = %q", r.Header.Get("X-API-KEY"))
		}
		var req gqlRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch {
		case strings.Contains(req.Query, "query Me"):
			_, _ = w.Write([]byte(`{"data":{"me":{"defaultAccount":{"wallets":[{"id":"w-btc","walletCurrency":"BTC","balance":10},{"id":"w-usd","walletCurrency":"USD","balance":5}]}}}}`))
		case strings.Contains(req.Query, "lnUsdInvoiceCreate"):
			input := req.Variables["input"].(map[string]any)
			if input["walletId"] != "w-usd" || input["amount"] != float64(2550) {
				t.Errorf("unexpected input: %v", input)
			}
			_, _ = w.Write([]byte(`{"data":{"lnUsdInvoiceCreate":{"invoice":{"paymentRequest":"lnbc1","paymentHash":"hash1"},"errors":[]}}}`))
		default:
			t.Errorf("unexpected query %q", req.Query)
		}
	}))
	defer srv.Close()

	b := NewBlink(config.BlinkConfig{GraphQLURL: srv.URL, APIKey: "key", Timeout: time.Second})
	inv, err := b.CreateUSDInvoice(context.Background(), USDToCents(25.5), "")
	if err != nil {
		t.Fatalf("CreateUSDInvoice() error = %v", err)
	}
	if inv.PaymentRequest != "lnbc1" || inv.PaymentHash != "hash1" {
		t.Errorf("CreateUSDInvoice() = %+v", inv)
	}
}

func TestBlinkMutationErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"lnInvoiceCreate":{"invoice":null,"errors":[{"message":"amount too low"}]}}}`))
	}))
	defer srv.Close()

	b := NewBlink(config.BlinkConfig{GraphQLURL: srv.URL, APIKey: "key", Timeout: time.Second})
	_, err := b.CreateBTCInvoice(context.Background(), 1, "w-btc")
	if err == nil || !strings.Contains(err.Error(), "amount too low") {
		t.Errorf("CreateBTCInvoice() error = %v, want amount too low", err)
	}
}

func TestBlinkNotConfigured(t *testing.T) {
	b := NewBlink(config.BlinkConfig{GraphQLURL: "http://unused", Timeout: time.Second})
	if _, err := b.Wallets(context.Background()); err != ErrNotConfigured {
		t.Errorf("Wallets() error = %v, want ErrNotConfigured", err)
	}
}
