package service

import (
	"context"
	"database/sql"
	"io"
	"sync"
	"time"

	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/queue"
	"github.com/iliyamo/dantour/internal/repository"
)

// MockTx runs fn with a nil transaction and records the outcome.
type MockTx struct {
	mu        sync.Mutex
	Commits   int
	Rollbacks int
	TimeLeft  time.Duration // until the ctx deadline when the last transaction began; 0 without one
}

func (m *MockTx) RunInTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var left time.Duration
	if d, ok := ctx.Deadline(); ok {
		left = time.Until(d)
	}
	err := fn(nil)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TimeLeft = left
	if err != nil {
		m.Rollbacks++
		return err
	}
	m.Commits++
	return nil
}

type MockProductStore struct {
	Products   map[string]model.Product
	Detail     *model.ProductDetail
	SearchRows []model.ProductSummary
	LastQuery  repository.ProductSearchQuery
	Created    []model.Product
	Patches    map[string]repository.ProductPatch
	Deleted    []string
	CreateErr  error
	Approvals  map[string]bool
	Recomputed []string
	TypeNames  map[string]string // product type id -> name
}

func NewMockProductStore(products ...model.Product) *MockProductStore {
	m := &MockProductStore{Products: map[string]model.Product{}, Patches: map[string]repository.ProductPatch{}, Approvals: map[string]bool{}}
	for _, p := range products {
		m.Products[p.ID] = p
	}
	return m
}

func (m *MockProductStore) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Product) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Created = append(m.Created, *p)
	m.Products[p.ID] = *p
	return nil
}

func (m *MockProductStore) GetByID(ctx context.Context, id string) (model.Product, error) {
	p, ok := m.Products[id]
	if !ok {
		return p, repository.ErrNotFound
	}
	return p, nil
}

func (m *MockProductStore) GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (model.Product, error) {
	return m.GetByID(ctx, id)
}

func (m *MockProductStore) GetDetail(ctx context.Context, id string) (*model.ProductDetail, error) {
	if m.Detail != nil && m.Detail.ID == id {
		d := *m.Detail
		return &d, nil
	}
	p, ok := m.Products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	typeName := "tours"
	if n, ok := m.TypeNames[p.ProductTypeID]; ok {
		typeName = n
	}
	return &model.ProductDetail{ProductSummary: model.ProductSummary{Product: p, TypeName: typeName}}, nil
}

func (m *MockProductStore) Search(ctx context.Context, q repository.ProductSearchQuery) ([]model.ProductSummary, error) {
	m.LastQuery = q
	out := []model.ProductSummary{}
	for _, r := range m.SearchRows {
		if q.After != nil {
			if r.CreatedAt.After(q.After.CreatedAt) {
				continue
			}
			if r.CreatedAt.Equal(q.After.CreatedAt) && (q.After.ID == "" || r.ID >= q.After.ID) {
				continue
			}
		}
		out = append(out, r)
		if len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (m *MockProductStore) ListByOwner(ctx context.Context, ownerID string) ([]model.ProductSummary, error) {
	return nil, nil
}

func (m *MockProductStore) ListSimplifiedByOwner(ctx context.Context, ownerID string) ([]model.ProductSimplified, error) {
	return nil, nil
}

func (m *MockProductStore) UpdateTx(ctx context.Context, tx *sql.Tx, id string, patch repository.ProductPatch) error {
	p, ok := m.Products[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.Patches[id] = patch
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	m.Products[id] = p
	return nil
}

func (m *MockProductStore) DeleteTx(ctx context.Context, tx *sql.Tx, id string) error {
	if _, ok := m.Products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Products, id)
	m.Deleted = append(m.Deleted, id)
	return nil
}

func (m *MockProductStore) SetApproval(ctx context.Context, id string, approved bool) error {
	if _, ok := m.Products[id]; !ok {
		return repository.ErrNotFound
	}
	m.Approvals[id] = approved
	return nil
}

func (m *MockProductStore) RecomputeRatingTx(ctx context.Context, tx *sql.Tx, productID string) error {
	m.Recomputed = append(m.Recomputed, productID)
	return nil
}

type MockTaxonomy struct {
	Types      map[string]model.ProductType
	Categories map[string]model.ProductCategory
}

func (m *MockTaxonomy) GetType(ctx context.Context, id string) (model.ProductType, error) {
	t, ok := m.Types[id]
	if !ok {
		return t, repository.ErrNotFound
	}
	return t, nil
}

func (m *MockTaxonomy) GetCategory(ctx context.Context, id string) (model.ProductCategory, error) {
	c, ok := m.Categories[id]
	if !ok {
		return c, repository.ErrNotFound
	}
	return c, nil
}

type MockAmenities struct {
	Linked   map[string][]string
	Unlinked []string
}

func (m *MockAmenities) LinkTx(ctx context.Context, tx *sql.Tx, productID string, amenityIDs []string) error {
	if m.Linked == nil {
		m.Linked = map[string][]string{}
	}
	m.Linked[productID] = append(m.Linked[productID], amenityIDs...)
	return nil
}

func (m *MockAmenities) UnlinkAllTx(ctx context.Context, tx *sql.Tx, productID string) error {
	m.Unlinked = append(m.Unlinked, productID)
	return nil
}

// MockTourStore keeps tours and dates in memory and implements both the
// subtype store and the capacity operations.
type MockTourStore struct {
	mu        sync.Mutex
	Tours     map[string]model.Tour
	Dates     map[string]model.TourDate
	CreateErr error
}

func NewMockTourStore() *MockTourStore {
	return &MockTourStore{Tours: map[string]model.Tour{}, Dates: map[string]model.TourDate{}}
}

func (m *MockTourStore) CreateTx(ctx context.Context, tx *sql.Tx, t model.Tour) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Tours[t.ProductID] = t
	return nil
}

func (m *MockTourStore) CreateDatesBulkTx(ctx context.Context, tx *sql.Tx, dates []model.TourDate) error {
	for _, d := range dates {
		m.Dates[d.ID] = d
	}
	return nil
}

func (m *MockTourStore) Get(ctx context.Context, productID string) (model.Tour, error) {
	t, ok := m.Tours[productID]
	if !ok {
		return t, repository.ErrNotFound
	}
	return t, nil
}

func (m *MockTourStore) ListDates(ctx context.Context, tourID string) ([]model.TourDate, error) {
	var out []model.TourDate
	for _, d := range m.Dates {
		if d.TourID == tourID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MockTourStore) GetDateTx(ctx context.Context, tx *sql.Tx, id string) (model.TourDate, error) {
	d, ok := m.Dates[id]
	if !ok {
		return d, repository.ErrNotFound
	}
	return d, nil
}

func (m *MockTourStore) SetMaxPeopleTx(ctx context.Context, tx *sql.Tx, id string, maxPeople int) error {
	d, ok := m.Dates[id]
	if !ok {
		return repository.ErrNotFound
	}
	if d.PeopleBooked > maxPeople {
		return repository.ErrCapacityExceeded
	}
	d.MaxPeople = maxPeople
	m.Dates[id] = d
	return nil
}

func (m *MockTourStore) ReserveTx(ctx context.Context, tx *sql.Tx, dateID, tourID string, tickets int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.Dates[dateID]
	if !ok || d.TourID != tourID {
		return repository.ErrNotFound
	}
	if d.PeopleBooked+tickets > d.MaxPeople {
		return repository.ErrCapacityExceeded
	}
	d.PeopleBooked += tickets
	m.Dates[dateID] = d
	return nil
}

func (m *MockTourStore) ReleaseTx(ctx context.Context, tx *sql.Tx, dateID string, tickets int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.Dates[dateID]
	if !ok {
		return nil
	}
	d.PeopleBooked -= tickets
	if d.PeopleBooked < 0 {
		d.PeopleBooked = 0
	}
	m.Dates[dateID] = d
	return nil
}

type MockRentalStore struct {
	Rentals map[string]model.Rental
}

func (m *MockRentalStore) CreateTx(ctx context.Context, tx *sql.Tx, v model.Rental) error {
	if m.Rentals == nil {
		m.Rentals = map[string]model.Rental{}
	}
	m.Rentals[v.ProductID] = v
	return nil
}

func (m *MockRentalStore) Get(ctx context.Context, productID string) (model.Rental, error) {
	r, ok := m.Rentals[productID]
	if !ok {
		return r, repository.ErrNotFound
	}
	return r, nil
}

type MockObjectStore struct {
	mu       sync.Mutex
	Uploaded []string
	Deleted  []string
	FailOn   int // 1-based upload index that fails; 0 never
}

func (m *MockObjectStore) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailOn > 0 && len(m.Uploaded)+1 == m.FailOn {
		return "", io.ErrUnexpectedEOF
	}
	url := "https://cdn.test/" + key
	m.Uploaded = append(m.Uploaded, url)
	return url, nil
}

func (m *MockObjectStore) Delete(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, url)
	return nil
}

type MockBookingStore struct {
	mu       sync.Mutex
	Bookings map[string]model.Booking
	Owners   map[string]string // product id -> owner
}

func NewMockBookingStore() *MockBookingStore {
	return &MockBookingStore{Bookings: map[string]model.Booking{}, Owners: map[string]string{}}
}

func (m *MockBookingStore) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.Bookings {
		if other.TransactionID == b.TransactionID {
			return repository.ErrDuplicate
		}
	}
	m.Bookings[b.ID] = *b
	return nil
}

func (m *MockBookingStore) GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (model.Booking, error) {
	b, ok := m.Bookings[id]
	if !ok {
		return b, repository.ErrNotFound
	}
	return b, nil
}

func (m *MockBookingStore) GetByTransactionIDTx(ctx context.Context, tx *sql.Tx, txID string) (model.Booking, error) {
	for _, b := range m.Bookings {
		if b.TransactionID == txID {
			return b, nil
		}
	}
	return model.Booking{}, repository.ErrNotFound
}

func (m *MockBookingStore) GetDetail(ctx context.Context, id string) (*model.BookingDetail, error) {
	b, ok := m.Bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.BookingDetail{Booking: b, ProductOwnerID: m.Owners[b.ProductID]}, nil
}

func (m *MockBookingStore) ListByUser(ctx context.Context, userID string) ([]model.BookingDetail, error) {
	out := []model.BookingDetail{}
	for _, b := range m.Bookings {
		if b.UserID == userID {
			out = append(out, model.BookingDetail{Booking: b})
		}
	}
	return out, nil
}

func (m *MockBookingStore) ListByProduct(ctx context.Context, productID string) ([]model.BookingDetail, error) {
	out := []model.BookingDetail{}
	for _, b := range m.Bookings {
		if b.ProductID == productID {
			out = append(out, model.BookingDetail{Booking: b})
		}
	}
	return out, nil
}

func (m *MockBookingStore) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id, status string) error {
	b, ok := m.Bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.Status = status
	m.Bookings[id] = b
	return nil
}

func (m *MockBookingStore) DeleteTx(ctx context.Context, tx *sql.Tx, id string) error {
	if _, ok := m.Bookings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Bookings, id)
	return nil
}

type MockPublisher struct {
	mu     sync.Mutex
	Events []queue.BookingEvent
	Err    error
}

func (m *MockPublisher) Publish(ctx context.Context, ev queue.BookingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, ev)
	return m.Err
}

func (m *MockPublisher) Close() error { return nil }
