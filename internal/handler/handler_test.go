package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/repository"
	"github.com/iliyamo/dantour/internal/service"
	"github.com/iliyamo/dantour/internal/storage"
)

func decodeBody(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, b)
	}
	return m
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantField  string
	}{
		{"validation", &service.ValidationError{Field: "price", Message: "must be positive"}, http.StatusBadRequest, "price"},
		{"validation without field", &service.ValidationError{Message: "malformed JSON"}, http.StatusBadRequest, ""},
		{"not found", &service.NotFoundError{Entity: "product"}, http.StatusNotFound, ""},
		{"wrapped not found", fmt.Errorf("load: %w", &service.NotFoundError{Entity: "booking"}), http.StatusNotFound, ""},
		{"forbidden", &service.ForbiddenError{}, http.StatusForbidden, ""},
		{"conflict", &service.ConflictError{Message: "not enough capacity"}, http.StatusConflict, ""},
		{"unsupported type", &service.UnsupportedTypeError{Type: "cruise"}, http.StatusUnprocessableEntity, ""},
		{"upstream", &service.UpstreamError{Upstream: "blink", Err: errors.New("timeout")}, http.StatusBadGateway, ""},
		{"repository not found", repository.ErrNotFound, http.StatusNotFound, ""},
		{"repository conflict", repository.ErrConflict, http.StatusConflict, ""},
		{"repository duplicate", repository.ErrDuplicate, http.StatusConflict, ""},
		{"no user", errNoUser, http.StatusUnauthorized, ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "/", nil, "", "", "")
			if err := respondError(c, tt.err); err != nil {
				t.Fatalf("respondError() error = %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("respondError() status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := decodeBody(t, rec.Body.Bytes())
			if got, _ := body["field"].(string); got != tt.wantField {
				t.Errorf("respondError() field = %q, want %q", got, tt.wantField)
			}
			if tt.wantStatus == http.StatusInternalServerError && strings.Contains(rec.Body.String(), "boom") {
				t.Errorf("respondError() leaked internal error: %s", rec.Body.String())
			}
		})
	}
}

func TestProductHandler_List(t *testing.T) {
	cat := &MockCatalog{Page: service.ProductPage{Items: []model.ProductSummary{}, HasMore: true, NextCursor: "next"}}
	h := NewProductHandler(cat, 1, 0)

	c, rec := newContext(http.MethodGet,
		"/api/v1/products?product_type=tours&search=volcano&min_price=10&max_price=99.5&is_active=true&min_rating=4&limit=2&cursor=abc",
		nil, "", "", "")
	if err := h.List(c); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("List() status = %d, body %s", rec.Code, rec.Body.String())
	}
	f := cat.Filter
	if f.ProductType != "tours" || f.Search != "volcano" {
		t.Errorf("filter strings = %+v", f)
	}
	if f.MinPrice == nil || *f.MinPrice != 10 || f.MaxPrice == nil || *f.MaxPrice != 99.5 {
		t.Errorf("price filter = %v..%v", f.MinPrice, f.MaxPrice)
	}
	if f.IsActive == nil || !*f.IsActive || f.IsApproved != nil {
		t.Errorf("flag filter = active %v approved %v", f.IsActive, f.IsApproved)
	}
	if f.MinRating == nil || *f.MinRating != 4 {
		t.Errorf("min rating = %v", f.MinRating)
	}
	if cat.Cursor != "abc" || cat.Limit != 2 {
		t.Errorf("cursor, limit = %q, %d", cat.Cursor, cat.Limit)
	}
	body := decodeBody(t, rec.Body.Bytes())
	if body["hasMore"] != true || body["nextCursor"] != "next" {
		t.Errorf("page body = %v", body)
	}
}

func TestProductHandler_List_BadQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"price", "min_price=cheap", "min_price"},
		{"flag", "is_approved=maybe", "is_approved"},
		{"limit", "limit=ten", "limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewProductHandler(&MockCatalog{}, 1, 0)
			c, rec := newContext(http.MethodGet, "/api/v1/products?"+tt.query, nil, "", "", "")
			_ = h.List(c)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("List() status = %d, want 400", rec.Code)
			}
			if got := decodeBody(t, rec.Body.Bytes())["field"]; got != tt.field {
				t.Errorf("List() field = %v, want %s", got, tt.field)
			}
		})
	}
}

func multipartBody(t *testing.T, data string, files map[string][][2]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if data != "" {
		if err := w.WriteField("data", data); err != nil {
			t.Fatal(err)
		}
	}
	for _, field := range []string{"images", "banner", "files", "videos"} {
		for _, f := range files[field] {
			part, err := w.CreateFormFile(field, f[0])
			if err != nil {
				t.Fatal(err)
			}
			_, _ = part.Write([]byte(f[1]))
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func TestProductHandler_Create_Multipart(t *testing.T) {
	cat := &MockCatalog{}
	h := NewProductHandler(cat, 1, 0)
	data := `{"name":"Volcano hike","price":"25"}`
	body, ct := multipartBody(t, data, map[string][][2]string{
		"images": {{"a.jpg", "img-a"}, {"b.jpg", "img-b"}},
		"banner": {{"top.png", "banner"}},
	})

	c, rec := newContext(http.MethodPost, "/api/v1/products", body, ct, "host-1", model.RoleHost)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Create() status = %d, body %s", rec.Code, rec.Body.String())
	}
	if cat.Created.OwnerID != "host-1" {
		t.Errorf("owner = %q", cat.Created.OwnerID)
	}
	if string(cat.Created.Data) != data {
		t.Errorf("data = %s", cat.Created.Data)
	}
	wantFolders := []string{storage.FolderImages, storage.FolderImages, storage.FolderBanners}
	wantBodies := []string{"img-a", "img-b", "banner"}
	if len(cat.Created.Uploads) != len(wantFolders) {
		t.Fatalf("uploads = %d, want %d", len(cat.Created.Uploads), len(wantFolders))
	}
	for i, u := range cat.Created.Uploads {
		if u.Folder != wantFolders[i] || cat.Bodies[i] != wantBodies[i] {
			t.Errorf("upload %d = %s/%s %q", i, u.Folder, u.FileName, cat.Bodies[i])
		}
	}
	if cat.Created.Uploads[2].FileName != "top.png" {
		t.Errorf("banner file name = %q", cat.Created.Uploads[2].FileName)
	}
}

func TestProductHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       func(t *testing.T) (*bytes.Buffer, string)
		uid        string
		catErr     error
		wantStatus int
	}{
		{
			name: "json body",
			body: func(*testing.T) (*bytes.Buffer, string) {
				return bytes.NewBufferString(`{"name":"Jeep"}`), echo.MIMEApplicationJSON
			},
			uid:        "host-1",
			wantStatus: http.StatusCreated,
		},
		{
			name: "multipart without data",
			body: func(t *testing.T) (*bytes.Buffer, string) {
				return multipartBody(t, "", map[string][][2]string{"images": {{"a.jpg", "x"}}})
			},
			uid:        "host-1",
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "empty json",
			body: func(*testing.T) (*bytes.Buffer, string) {
				return bytes.NewBufferString("  "), echo.MIMEApplicationJSON
			},
			uid:        "host-1",
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "anonymous",
			body: func(*testing.T) (*bytes.Buffer, string) {
				return bytes.NewBufferString(`{}`), echo.MIMEApplicationJSON
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "unsupported type",
			body: func(*testing.T) (*bytes.Buffer, string) {
				return bytes.NewBufferString(`{"product_type_id":"x"}`), echo.MIMEApplicationJSON
			},
			uid:        "host-1",
			catErr:     &service.UnsupportedTypeError{Type: "cruise"},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewProductHandler(&MockCatalog{Err: tt.catErr}, 1, 0)
			body, ct := tt.body(t)
			c, rec := newContext(http.MethodPost, "/api/v1/products", body, ct, tt.uid, model.RoleHost)
			_ = h.Create(c)
			if rec.Code != tt.wantStatus {
				t.Errorf("Create() status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestProductHandler_Create_Deadline(t *testing.T) {
	video := strings.Repeat("v", 2<<20)
	tests := []struct {
		name    string
		body    func(t *testing.T) (*bytes.Buffer, string)
		minLeft time.Duration
		maxLeft time.Duration
	}{
		{
			name: "json only",
			body: func(*testing.T) (*bytes.Buffer, string) {
				return bytes.NewBufferString(`{"name":"Jeep"}`), echo.MIMEApplicationJSON
			},
			maxLeft: requestTimeout,
		},
		{
			name: "large video",
			body: func(t *testing.T) (*bytes.Buffer, string) {
				return multipartBody(t, `{"name":"Jeep"}`, map[string][][2]string{"videos": {{"tour.mp4", video}}})
			},
			minLeft: time.Minute,
			maxLeft: 3 * time.Minute,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := &MockCatalog{}
			h := NewProductHandler(cat, 4, 3*time.Minute)
			body, ct := tt.body(t)
			c, rec := newContext(http.MethodPost, "/api/v1/products", body, ct, "host-1", model.RoleHost)
			if err := h.Create(c); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if rec.Code != http.StatusCreated {
				t.Fatalf("Create() status = %d, body %s", rec.Code, rec.Body.String())
			}
			if cat.TimeLeft <= tt.minLeft || cat.TimeLeft > tt.maxLeft {
				t.Errorf("Create() deadline in %v, want (%v, %v]", cat.TimeLeft, tt.minLeft, tt.maxLeft)
			}
		})
	}
}

func TestProductHandler_Create_BodyLimit(t *testing.T) {
	cat := &MockCatalog{}
	h := NewProductHandler(cat, 1, 0)
	if got := h.BodyLimit(); got != "1M" {
		t.Errorf("BodyLimit() = %q, want 1M", got)
	}
	body, ct := multipartBody(t, `{"name":"Jeep"}`, map[string][][2]string{
		"videos": {{"tour.mp4", strings.Repeat("v", 2<<20)}},
	})
	c, _ := newContext(http.MethodPost, "/api/v1/products", body, ct, "host-1", model.RoleHost)

	err := echomw.BodyLimit(h.BodyLimit())(h.Create)(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("Create() error = %v, want 413", err)
	}
	if cat.Created.OwnerID != "" {
		t.Error("Create() reached the catalog with an oversized body")
	}
}

func TestProductHandler_Update(t *testing.T) {
	cat := &MockCatalog{}
	h := NewProductHandler(cat, 1, 0)
	c, rec := newContext(http.MethodPatch, "/api/v1/products/p-1",
		strings.NewReader(`{"price":30,"selectedDateId":"d-1","max_people":12}`), echo.MIMEApplicationJSON,
		"host-1", model.RoleHost)
	if err := h.Update(withParam(c, "id", "p-1")); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Update() status = %d, body %s", rec.Code, rec.Body.String())
	}
	u := cat.Update
	if u.Price == nil || *u.Price != 30 || u.SelectedDateID == nil || *u.SelectedDateID != "d-1" ||
		u.MaxPeople == nil || *u.MaxPeople != 12 || u.Name != nil {
		t.Errorf("update = %+v", u)
	}
	if cat.Caller != "host-1" {
		t.Errorf("caller = %q", cat.Caller)
	}
}

func TestProductHandler_Approve(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"approve", `{"is_approved":true}`, http.StatusOK},
		{"missing flag", `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewProductHandler(&MockCatalog{}, 1, 0)
			c, rec := newContext(http.MethodPatch, "/api/v1/products/p-1/approval", strings.NewReader(tt.body),
				echo.MIMEApplicationJSON, "admin-1", model.RoleAdmin)
			_ = h.Approve(withParam(c, "id", "p-1"))
			if rec.Code != tt.wantStatus {
				t.Errorf("Approve() status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestBookingHandler_Create(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		uid         string
		bookErr     error
		wantStatus  int
		wantTickets int
	}{
		{
			name:        "aliases",
			body:        `{"product_id":"p-1","tour_date_id":["d-1"],"tickets":"2","paymentMethod":"blink","idTransaccion":"tx-1"}`,
			uid:         "guest-1",
			wantStatus:  http.StatusCreated,
			wantTickets: 2,
		},
		{
			name:        "over capacity",
			body:        `{"product_id":"p-1","tour_date_id":"d-1","tickets":50,"transaction_id":"tx-2"}`,
			uid:         "guest-1",
			bookErr:     &service.ConflictError{Message: "not enough capacity"},
			wantStatus:  http.StatusConflict,
			wantTickets: 50,
		},
		{
			name:       "malformed",
			body:       `{"product_id":`,
			uid:        "guest-1",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "anonymous",
			body:       `{}`,
			wantStatus: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &MockBookings{Err: tt.bookErr}
			h := NewBookingHandler(b)
			c, rec := newContext(http.MethodPost, "/api/v1/bookings", strings.NewReader(tt.body),
				echo.MIMEApplicationJSON, tt.uid, model.RoleCustomer)
			_ = h.Create(c)
			if rec.Code != tt.wantStatus {
				t.Fatalf("Create() status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantTickets == 0 {
				return
			}
			if b.Input.Tickets != tt.wantTickets || b.Input.UserID != tt.uid || b.Input.TourDateID != "d-1" {
				t.Errorf("input = %+v", b.Input)
			}
		})
	}
}

func TestBookingHandler_UpdateStatus(t *testing.T) {
	b := &MockBookings{}
	h := NewBookingHandler(b)

	c, rec := newContext(http.MethodPatch, "/api/v1/bookings/b-1/status", strings.NewReader(`{"status":" canceled "}`),
		echo.MIMEApplicationJSON, "guest-1", model.RoleCustomer)
	_ = h.UpdateStatus(withParam(c, "id", "b-1"))
	if rec.Code != http.StatusOK || b.Status != model.BookingCanceled {
		t.Errorf("UpdateStatus() status = %d, got %q", rec.Code, b.Status)
	}

	c, rec = newContext(http.MethodPatch, "/api/v1/bookings/b-1/status", strings.NewReader(`{}`),
		echo.MIMEApplicationJSON, "guest-1", model.RoleCustomer)
	_ = h.UpdateStatus(withParam(c, "id", "b-1"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("UpdateStatus() without status = %d, want 400", rec.Code)
	}
}

func TestPaymentHandler_Webhook(t *testing.T) {
	tests := []struct {
		name        string
		outcome     string
		err         error
		wantStatus  int
		wantOutcome string
	}{
		{"applied", service.WebhookApplied, nil, http.StatusOK, service.WebhookApplied},
		{"unknown transaction", service.WebhookUnknown, nil, http.StatusOK, service.WebhookUnknown},
		{"bad signature", service.WebhookBadSignature, &service.ForbiddenError{Message: "invalid signature"}, http.StatusForbidden, ""},
		{"missing header", service.WebhookMissingHeader, &service.ValidationError{Field: "wompi_hash", Message: "header is required"}, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &MockPayments{Outcome: tt.outcome, Err: tt.err}
			h := NewPaymentHandler(p)
			raw := `{"IdTransaccion":"tx-1", "ResultadoTransaccion":"ExitosaAprobada"}`
			c, rec := newContext(http.MethodPost, "/webhook-wompi", strings.NewReader(raw), echo.MIMEApplicationJSON, "", "")
			c.Request().Header.Set("wompi_hash", "abc123")
			_ = h.Webhook(c)
			if rec.Code != tt.wantStatus {
				t.Fatalf("Webhook() status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if string(p.Body) != raw || p.Signature != "abc123" {
				t.Errorf("Webhook() passed body %q sig %q", p.Body, p.Signature)
			}
			if tt.wantOutcome != "" {
				body := decodeBody(t, rec.Body.Bytes())
				if body["received"] != true || body["outcome"] != tt.wantOutcome {
					t.Errorf("Webhook() body = %v", body)
				}
			}
		})
	}
}

func TestPaymentHandler_Checkout(t *testing.T) {
	p := &MockPayments{}
	h := NewPaymentHandler(p)
	c, rec := newContext(http.MethodPost, "/api/v1/payments/blink/checkout", strings.NewReader(`{"total":12.34}`),
		echo.MIMEApplicationJSON, "guest-1", model.RoleCustomer)
	_ = h.Checkout(c)
	if rec.Code != http.StatusCreated || p.Checkout.Total != 12.34 {
		t.Fatalf("Checkout() status = %d total %v", rec.Code, p.Checkout.Total)
	}
	if decodeBody(t, rec.Body.Bytes())["idTransaccion"] != "hash-1" {
		t.Errorf("Checkout() body = %s", rec.Body.String())
	}

	p.Err = &service.UpstreamError{Upstream: "blink", Err: errors.New("503")}
	c, rec = newContext(http.MethodPost, "/api/v1/payments/blink/checkout", strings.NewReader(`{"total":1}`),
		echo.MIMEApplicationJSON, "guest-1", model.RoleCustomer)
	_ = h.Checkout(c)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("Checkout() upstream failure status = %d, want 502", rec.Code)
	}
}

func TestPanelHandler_HostSelection(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		query    string
		wantHost string
	}{
		{"host sees own panel", model.RoleHost, "", "host-1"},
		{"host cannot look elsewhere", model.RoleHost, "?userId=host-2", "host-1"},
		{"admin looks at another host", model.RoleAdmin, "?userId=host-2", "host-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &MockPanel{}
			h := NewPanelHandler(p)
			c, rec := newContext(http.MethodGet, "/api/v1/panel/active-reservations"+tt.query, nil, "", "host-1", tt.role)
			if err := h.ActiveReservations()(c); err != nil {
				t.Fatalf("ActiveReservations() error = %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if len(p.Hosts) != 1 || p.Hosts[0] != tt.wantHost {
				t.Errorf("host = %v, want %s", p.Hosts, tt.wantHost)
			}
		})
	}
}

func TestPanelHandler_Upcoming(t *testing.T) {
	p := &MockPanel{}
	h := NewPanelHandler(p)
	c, rec := newContext(http.MethodPost, "/api/v1/panel/upcoming?limit=7", nil, "", "host-1", model.RoleHost)
	_ = h.Upcoming(c)
	if rec.Code != http.StatusOK || p.Limit != 7 {
		t.Errorf("Upcoming() status = %d limit = %d", rec.Code, p.Limit)
	}

	c, rec = newContext(http.MethodGet, "/api/v1/panel/upcoming", nil, "", "", "")
	_ = h.Upcoming(c)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Upcoming() anonymous status = %d, want 401", rec.Code)
	}
}

func TestFAQHandler_Ownership(t *testing.T) {
	newHandler := func() (*FAQHandler, *MockFAQs) {
		faqs := &MockFAQs{Items: map[string]model.FAQ{
			"faq-1": {ID: "faq-1", Question: "Q", Answer: "A", UserID: "host-1", ProductID: "p-1"},
		}}
		return NewFAQHandler(faqs, MockOwners{"p-1": "host-1"}), faqs
	}

	t.Run("owner creates", func(t *testing.T) {
		h, faqs := newHandler()
		c, rec := newContext(http.MethodPost, "/api/v1/faqs",
			strings.NewReader(`{"question":"Pets?","answer":"No","product_id":"p-1"}`), echo.MIMEApplicationJSON,
			"host-1", model.RoleHost)
		_ = h.Create(c)
		if rec.Code != http.StatusCreated || len(faqs.Items) != 2 {
			t.Errorf("Create() status = %d items = %d", rec.Code, len(faqs.Items))
		}
	})
	t.Run("other host is forbidden", func(t *testing.T) {
		h, faqs := newHandler()
		c, rec := newContext(http.MethodPost, "/api/v1/faqs",
			strings.NewReader(`{"question":"Pets?","answer":"No","product_id":"p-1"}`), echo.MIMEApplicationJSON,
			"host-2", model.RoleHost)
		_ = h.Create(c)
		if rec.Code != http.StatusForbidden || len(faqs.Items) != 1 {
			t.Errorf("Create() status = %d items = %d", rec.Code, len(faqs.Items))
		}
	})
	t.Run("unknown product", func(t *testing.T) {
		h, _ := newHandler()
		c, rec := newContext(http.MethodPost, "/api/v1/faqs",
			strings.NewReader(`{"question":"Pets?","answer":"No","product_id":"p-9"}`), echo.MIMEApplicationJSON,
			"host-1", model.RoleHost)
		_ = h.Create(c)
		if rec.Code != http.StatusNotFound {
			t.Errorf("Create() status = %d, want 404", rec.Code)
		}
	})
	t.Run("blank answer", func(t *testing.T) {
		h, _ := newHandler()
		c, rec := newContext(http.MethodPost, "/api/v1/faqs",
			strings.NewReader(`{"question":"Pets?","answer":" ","product_id":"p-1"}`), echo.MIMEApplicationJSON,
			"host-1", model.RoleHost)
		_ = h.Create(c)
		if rec.Code != http.StatusBadRequest || decodeBody(t, rec.Body.Bytes())["field"] != "answer" {
			t.Errorf("Create() status = %d body %s", rec.Code, rec.Body.String())
		}
	})
	t.Run("other host cannot delete", func(t *testing.T) {
		h, faqs := newHandler()
		c, rec := newContext(http.MethodDelete, "/api/v1/faqs/faq-1", nil, "", "host-2", model.RoleHost)
		_ = h.Delete(withParam(c, "id", "faq-1"))
		if rec.Code != http.StatusForbidden || len(faqs.Items) != 1 {
			t.Errorf("Delete() status = %d items = %d", rec.Code, len(faqs.Items))
		}
	})
	t.Run("owner updates", func(t *testing.T) {
		h, faqs := newHandler()
		c, rec := newContext(http.MethodPut, "/api/v1/faqs/faq-1",
			strings.NewReader(`{"question":"Kids?","answer":"Yes"}`), echo.MIMEApplicationJSON, "host-1", model.RoleHost)
		_ = h.Update(withParam(c, "id", "faq-1"))
		if rec.Code != http.StatusOK || faqs.Items["faq-1"].Question != "Kids?" {
			t.Errorf("Update() status = %d item = %+v", rec.Code, faqs.Items["faq-1"])
		}
	})
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Hiking the Andes!":     "hiking-the-andes",
		"  10 tips -- for you ": "10-tips-for-you",
		"¡¡¡":                   "",
	}
	for in, want := range tests {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
