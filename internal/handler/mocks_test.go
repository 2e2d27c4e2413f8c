package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dantour/internal/middleware"
	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/payment"
	"github.com/iliyamo/dantour/internal/repository"
	"github.com/iliyamo/dantour/internal/service"
)

// newContext builds an echo context for a direct handler call.  uid and
// role are stored the way JWTAuth stores them; empty uid means anonymous.
func newContext(method, target string, body io.Reader, contentType, uid, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if uid != "" {
		c.Set(middleware.CtxUserID, uid)
		c.Set(middleware.CtxRole, role)
	}
	return c, rec
}

func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

// MockCatalog records the last call of each method.
type MockCatalog struct {
	Filter  service.ProductFilter
	Cursor  string
	Limit   int
	Page    service.ProductPage
	Created service.CreateProductInput
	Bodies  []string
	Update  service.ProductUpdate
	Caller  string
	Err     error

	// TimeLeft is how long CreateProduct's ctx had before its deadline.
	TimeLeft time.Duration
}

func (m *MockCatalog) ListProducts(_ context.Context, f service.ProductFilter, cursor string, limit int) (service.ProductPage, error) {
	m.Filter, m.Cursor, m.Limit = f, cursor, limit
	return m.Page, m.Err
}

func (m *MockCatalog) GetProduct(_ context.Context, id string) (*model.ProductDetail, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	d := &model.ProductDetail{}
	d.ID = id
	return d, nil
}

func (m *MockCatalog) ListByOwner(context.Context, string) ([]model.ProductSummary, error) {
	return []model.ProductSummary{}, m.Err
}

func (m *MockCatalog) ListSimplifiedByOwner(context.Context, string) ([]model.ProductSimplified, error) {
	return []model.ProductSimplified{}, m.Err
}

func (m *MockCatalog) SetApproval(context.Context, string, bool) error { return m.Err }

// CreateProduct drains the upload bodies while they are still open.
func (m *MockCatalog) CreateProduct(ctx context.Context, in service.CreateProductInput) (*model.ProductDetail, error) {
	m.TimeLeft = 0
	if d, ok := ctx.Deadline(); ok {
		m.TimeLeft = time.Until(d)
	}
	m.Created = in
	m.Bodies = nil
	for _, u := range in.Uploads {
		b, _ := io.ReadAll(u.Body)
		m.Bodies = append(m.Bodies, string(b))
	}
	if m.Err != nil {
		return nil, m.Err
	}
	d := &model.ProductDetail{}
	d.ID = "p-1"
	d.UserID = in.OwnerID
	return d, nil
}

func (m *MockCatalog) UpdateProduct(_ context.Context, id, callerID string, u service.ProductUpdate) (*service.ProductUpdateResult, error) {
	m.Update, m.Caller = u, callerID
	if m.Err != nil {
		return nil, m.Err
	}
	return &service.ProductUpdateResult{Product: model.Product{ID: id}}, nil
}

func (m *MockCatalog) DeleteProduct(_ context.Context, _, callerID string) error {
	m.Caller = callerID
	return m.Err
}

// MockBookings records the create input.
type MockBookings struct {
	Input  service.CreateBookingInput
	Status string
	Err    error
}

func (m *MockBookings) CreateBooking(_ context.Context, in service.CreateBookingInput) (model.Booking, error) {
	m.Input = in
	if m.Err != nil {
		return model.Booking{}, m.Err
	}
	return model.Booking{ID: "b-1", UserID: in.UserID, ProductID: in.ProductID, Tickets: in.Tickets,
		Status: model.BookingInProcess, TransactionID: in.TransactionID}, nil
}

func (m *MockBookings) UpdateStatus(_ context.Context, id, _, status string) (model.Booking, error) {
	m.Status = status
	return model.Booking{ID: id, Status: status}, m.Err
}

func (m *MockBookings) DeleteBooking(context.Context, string, string) error { return m.Err }

func (m *MockBookings) GetBooking(_ context.Context, id, _ string) (*model.BookingDetail, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	d := &model.BookingDetail{}
	d.ID = id
	return d, nil
}

func (m *MockBookings) ListForUser(context.Context, string) ([]model.BookingDetail, error) {
	return []model.BookingDetail{}, m.Err
}

func (m *MockBookings) ListForProduct(context.Context, string, string) ([]model.BookingDetail, error) {
	return []model.BookingDetail{}, m.Err
}

// MockPayments answers the webhook with a fixed outcome.
type MockPayments struct {
	Outcome   string
	Err       error
	Body      []byte
	Signature string
	Checkout  service.CheckoutInput
}

func (m *MockPayments) Start3DS(_ context.Context, in service.ThreeDSInput) (*payment.ThreeDSResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &payment.ThreeDSResult{TransactionID: "tx-3ds", RedirectURL: "https://pay.example/3ds"}, nil
}

func (m *MockPayments) BlinkCheckout(_ context.Context, in service.CheckoutInput) (service.CheckoutResult, error) {
	m.Checkout = in
	return service.CheckoutResult{PaymentRequest: "lnbc1", TransactionID: "hash-1", Amount: 1234,
		Currency: payment.CurrencyUSD}, m.Err
}

func (m *MockPayments) Wallets(context.Context) (payment.Wallets, error) {
	return payment.Wallets{}, m.Err
}

func (m *MockPayments) Payout(context.Context, service.PayoutInput) (payment.PayoutResult, error) {
	return payment.PayoutResult{Status: "SUCCESS"}, m.Err
}

func (m *MockPayments) HandleWebhook(_ context.Context, body []byte, signature string) (string, error) {
	m.Body, m.Signature = body, signature
	return m.Outcome, m.Err
}

// MockPanel records the host each aggregate was asked for.
type MockPanel struct {
	mu    sync.Mutex
	Hosts []string
	Limit int
}

func (m *MockPanel) seen(host string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Hosts = append(m.Hosts, host)
}

func (m *MockPanel) ActiveReservations(_ context.Context, host string) (service.ActiveReservations, error) {
	m.seen(host)
	return service.ActiveReservations{Total: 3}, nil
}

func (m *MockPanel) Revenue(_ context.Context, host string) (service.Revenue, error) {
	m.seen(host)
	return service.Revenue{}, nil
}

func (m *MockPanel) FrequentTravelers(_ context.Context, host string) (service.FrequentTravelers, error) {
	m.seen(host)
	return service.FrequentTravelers{}, nil
}

func (m *MockPanel) Activity(_ context.Context, host string) ([]service.MonthActivity, error) {
	m.seen(host)
	return []service.MonthActivity{}, nil
}

func (m *MockPanel) Upcoming(_ context.Context, host string, limit int) (service.UpcomingReservations, error) {
	m.seen(host)
	m.Limit = limit
	return service.UpcomingReservations{}, nil
}

func (m *MockPanel) Summary(_ context.Context, host string) (service.PanelSummary, error) {
	m.seen(host)
	return service.PanelSummary{}, nil
}

// MockUsers is an in-memory UserStore.
type MockUsers struct {
	ByEmail map[string]model.User
	Created []model.User
	Roles   []string
}

func (m *MockUsers) Create(_ context.Context, u model.User, _, role string, _ int) (string, error) {
	if _, ok := m.ByEmail[u.Email]; ok {
		return "", repository.ErrEmailExists
	}
	m.Created = append(m.Created, u)
	m.Roles = append(m.Roles, role)
	return "u-new", nil
}

func (m *MockUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := m.ByEmail[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *MockUsers) GetByID(_ context.Context, id string) (model.User, error) {
	for _, u := range m.ByEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

// MockTokens keeps refresh hashes in memory.
type MockTokens struct {
	Active     map[string]string
	RevokedAll []string
}

func (m *MockTokens) StoreRefresh(_ context.Context, userID, hash string, _ time.Time) error {
	if m.Active == nil {
		m.Active = map[string]string{}
	}
	m.Active[hash] = userID
	return nil
}

func (m *MockTokens) ValidateRefresh(_ context.Context, hash string) (string, error) {
	uid, ok := m.Active[hash]
	if !ok {
		return "", repository.ErrNotFound
	}
	return uid, nil
}

func (m *MockTokens) RevokeByHash(_ context.Context, hash string) error {
	delete(m.Active, hash)
	return nil
}

func (m *MockTokens) RevokeAllForUser(_ context.Context, userID string) error {
	m.RevokedAll = append(m.RevokedAll, userID)
	for h, uid := range m.Active {
		if uid == userID {
			delete(m.Active, h)
		}
	}
	return nil
}

// MockFAQs is an in-memory FAQStore.
type MockFAQs struct {
	Items map[string]model.FAQ
}

func (m *MockFAQs) List(context.Context) ([]model.FAQ, error) {
	out := []model.FAQ{}
	for _, f := range m.Items {
		out = append(out, f)
	}
	return out, nil
}

func (m *MockFAQs) ListByProduct(_ context.Context, productID string) ([]model.FAQ, error) {
	out := []model.FAQ{}
	for _, f := range m.Items {
		if f.ProductID == productID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *MockFAQs) Get(_ context.Context, id string) (model.FAQ, error) {
	f, ok := m.Items[id]
	if !ok {
		return f, repository.ErrNotFound
	}
	return f, nil
}

func (m *MockFAQs) Create(_ context.Context, f *model.FAQ) error {
	f.ID = "faq-new"
	m.Items[f.ID] = *f
	return nil
}

func (m *MockFAQs) Update(_ context.Context, id, q, a string) error {
	f, ok := m.Items[id]
	if !ok {
		return repository.ErrNotFound
	}
	f.Question, f.Answer = q, a
	m.Items[id] = f
	return nil
}

func (m *MockFAQs) Delete(_ context.Context, id string) error {
	if _, ok := m.Items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Items, id)
	return nil
}

// MockOwners maps product ids to owners.
type MockOwners map[string]string

func (m MockOwners) GetByID(_ context.Context, id string) (model.Product, error) {
	owner, ok := m[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	return model.Product{ID: id, UserID: owner}, nil
}
