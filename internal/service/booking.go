package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/iliyamo/dantour/internal/metrics"
	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/queue"
	"github.com/iliyamo/dantour/internal/repository"
	"github.com/iliyamo/dantour/internal/tracing"
)

// BookingStore is the booking persistence the lifecycle needs.
type BookingStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error
	GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (model.Booking, error)
	GetByTransactionIDTx(ctx context.Context, tx *sql.Tx, txID string) (model.Booking, error)
	GetDetail(ctx context.Context, id string) (*model.BookingDetail, error)
	ListByUser(ctx context.Context, userID string) ([]model.BookingDetail, error)
	ListByProduct(ctx context.Context, productID string) ([]model.BookingDetail, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id, status string) error
	DeleteTx(ctx context.Context, tx *sql.Tx, id string) error
}

// CapacityStore moves tickets in and out of tour dates.
type CapacityStore interface {
	ReserveTx(ctx context.Context, tx *sql.Tx, dateID, tourID string, tickets int) error
	ReleaseTx(ctx context.Context, tx *sql.Tx, dateID string, tickets int) error
}

// ProductLookup reads products for ownership and pricing.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (model.Product, error)
	GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (model.Product, error)
}

// BookingService implements the booking lifecycle.
type BookingService struct {
	tx        TxRunner
	bookings  BookingStore
	capacity  CapacityStore
	products  ProductLookup
	publisher queue.Publisher
	now       func() time.Time
}

func NewBookingService(tx TxRunner, bookings BookingStore, capacity CapacityStore, products ProductLookup, publisher queue.Publisher) *BookingService {
	if tx == nil || bookings == nil || capacity == nil || products == nil {
		panic("nil dependency passed to NewBookingService")
	}
	if publisher == nil {
		publisher = queue.NoopPublisher{}
	}
	return &BookingService{tx: tx, bookings: bookings, capacity: capacity, products: products,
		publisher: publisher, now: time.Now}
}

// CreateBookingInput is a booking request of UserID.
type CreateBookingInput struct {
	UserID        string
	ProductID     string
	TourDateID    string
	Tickets       int
	PaymentMethod string
	TransactionID string
	IsLive        bool
}

type bookingRequest struct {
	ProductID     string      `json:"product_id"`
	TourDateID    flexStrings `json:"tour_date_id"`
	TourDate      flexStrings `json:"tour_date"`
	Tickets       flexInt     `json:"tickets"`
	PaymentMethod string      `json:"payment_method"`
	PaymentAlias  string      `json:"paymentMethod"`
	TransactionID string      `json:"transaction_id"`
	TxAlias       string      `json:"idTransaccion"`
	IsLive        flexBool    `json:"is_live"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = trimmed(v); v != "" {
			return v
		}
	}
	return ""
}

// ParseBookingRequest decodes a booking request body.  The tour date may
// be a single id or an array whose first element is used.
func ParseBookingRequest(raw json.RawMessage, userID string) (CreateBookingInput, error) {
	var req bookingRequest
	if err := decodeJSON(raw, &req); err != nil {
		return CreateBookingInput{}, err
	}
	in := CreateBookingInput{
		UserID:        userID,
		ProductID:     trimmed(req.ProductID),
		PaymentMethod: firstNonEmpty(req.PaymentMethod, req.PaymentAlias),
		TransactionID: firstNonEmpty(req.TransactionID, req.TxAlias),
		Tickets:       1,
		IsLive:        req.IsLive.Value,
	}
	dates := req.TourDateID
	if len(dates) == 0 {
		dates = req.TourDate
	}
	if len(dates) > 0 {
		in.TourDateID = trimmed(dates[0])
	}
	if req.Tickets.Set {
		in.Tickets = req.Tickets.Value
	}
	return in, nil
}

func (in CreateBookingInput) validate() error {
	switch {
	case !isUUID(in.UserID):
		return invalid("user_id", "must be a UUID")
	case !isUUID(in.ProductID):
		return invalid("product_id", "must be a UUID")
	case !isUUID(in.TourDateID):
		return invalid("tour_date_id", "must be a UUID")
	case trimmed(in.PaymentMethod) == "":
		return invalid("payment_method", "is required")
	case trimmed(in.TransactionID) == "":
		return invalid("transaction_id", "is required")
	case in.Tickets < 1:
		return invalid("tickets", "must be at least 1")
	}
	return nil
}

// CreateBooking records an in-process booking and takes its tickets
// from the tour date in one transaction.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (model.Booking, error) {
	ctx, span := tracing.Start(ctx, "booking.CreateBooking")
	defer span.End()

	if err := in.validate(); err != nil {
		return model.Booking{}, err
	}
	dateID := in.TourDateID
	b := model.Booking{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		ProductID:     in.ProductID,
		TourDateID:    &dateID,
		Status:        model.BookingInProcess,
		Tickets:       in.Tickets,
		PaymentMethod: trimmed(in.PaymentMethod),
		TransactionID: trimmed(in.TransactionID),
		IsLive:        in.IsLive,
	}
	var productName string
	err := s.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		p, err := s.products.GetByIDTx(ctx, tx, in.ProductID)
		if err != nil {
			return fromRepo(err, "product")
		}
		productName = p.Name
		b.Total = p.Price * float64(in.Tickets)
		if err := s.bookings.CreateTx(ctx, tx, &b); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return &ConflictError{Message: "transaction id already used"}
			}
			return fromRepo(err, "product")
		}
		if err := s.capacity.ReserveTx(ctx, tx, dateID, in.ProductID, in.Tickets); err != nil {
			return fromRepo(err, "tour date")
		}
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	metrics.BookingsCreated.Inc()
	zlog.Ctx(ctx).Info().Str("booking_id", b.ID).Str("product_id", b.ProductID).Int("tickets", b.Tickets).Msg("booking created")
	s.publish(ctx, queue.EventBookingCreated, b, productName)
	return b, nil
}

// UpdateStatusByTransactionID moves the in-process booking with the given
// payment reference to status.  It reports false when no booking matches;
// bookings that already left in-process are left alone and reported as
// found.
func (s *BookingService) UpdateStatusByTransactionID(ctx context.Context, txID, status string) (bool, error) {
	ctx, span := tracing.Start(ctx, "booking.UpdateStatusByTransactionID")
	defer span.End()

	if status != model.BookingCompleted && status != model.BookingCanceled {
		return false, invalid("status", "must be completed or canceled")
	}
	var (
		b     model.Booking
		moved bool
	)
	err := s.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		var err error
		b, err = s.bookings.GetByTransactionIDTx(ctx, tx, txID)
		if err != nil {
			return err
		}
		if b.Status != model.BookingInProcess {
			return nil
		}
		if err := s.transitionTx(ctx, tx, &b, status); err != nil {
			return err
		}
		moved = true
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		zlog.Ctx(ctx).Warn().Str("transaction_id", txID).Msg("no booking for transaction")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if moved {
		s.afterTransition(ctx, b)
	}
	return true, nil
}

// UpdateStatus applies an explicit transition requested by the booking's
// user or the product owner.
func (s *BookingService) UpdateStatus(ctx context.Context, id, callerID, status string) (model.Booking, error) {
	ctx, span := tracing.Start(ctx, "booking.UpdateStatus")
	defer span.End()

	if !model.ValidBookingStatus(status) || status == model.BookingInProcess {
		return model.Booking{}, invalid("status", "must be completed or canceled")
	}
	var b model.Booking
	err := s.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		var err error
		b, err = s.bookings.GetByIDTx(ctx, tx, id)
		if err != nil {
			return fromRepo(err, "booking")
		}
		if b.UserID != callerID {
			p, err := s.products.GetByIDTx(ctx, tx, b.ProductID)
			if err != nil {
				return fromRepo(err, "product")
			}
			if p.UserID != callerID {
				return &ForbiddenError{Message: "not your booking"}
			}
		}
		if b.Terminal() {
			return &ConflictError{Message: "booking is already " + b.Status}
		}
		return s.transitionTx(ctx, tx, &b, status)
	})
	if err != nil {
		return model.Booking{}, err
	}
	s.afterTransition(ctx, b)
	return b, nil
}

// transitionTx writes the new status and gives canceled tickets back.
func (s *BookingService) transitionTx(ctx context.Context, tx *sql.Tx, b *model.Booking, status string) error {
	if err := s.bookings.UpdateStatusTx(ctx, tx, b.ID, status); err != nil {
		return fromRepo(err, "booking")
	}
	if status == model.BookingCanceled && b.TourDateID != nil {
		if err := s.capacity.ReleaseTx(ctx, tx, *b.TourDateID, b.Tickets); err != nil {
			return err
		}
	}
	b.Status = status
	return nil
}

func (s *BookingService) afterTransition(ctx context.Context, b model.Booking) {
	metrics.BookingTransitions.WithLabelValues(b.Status).Inc()
	zlog.Ctx(ctx).Info().Str("booking_id", b.ID).Str("status", b.Status).Msg("booking status changed")
	switch b.Status {
	case model.BookingCompleted:
		s.publish(ctx, queue.EventBookingCompleted, b, "")
	case model.BookingCanceled:
		s.publish(ctx, queue.EventBookingCanceled, b, "")
	}
}

// DeleteBooking removes a booking of callerID, releasing its tickets
// unless it was canceled already.
func (s *BookingService) DeleteBooking(ctx context.Context, id, callerID string) error {
	return s.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		b, err := s.bookings.GetByIDTx(ctx, tx, id)
		if err != nil {
			return fromRepo(err, "booking")
		}
		if b.UserID != callerID {
			return &ForbiddenError{Message: "not your booking"}
		}
		if b.Status != model.BookingCanceled && b.TourDateID != nil {
			if err := s.capacity.ReleaseTx(ctx, tx, *b.TourDateID, b.Tickets); err != nil {
				return err
			}
		}
		return fromRepo(s.bookings.DeleteTx(ctx, tx, id), "booking")
	})
}

// GetBooking returns a booking visible to its user and the product owner.
func (s *BookingService) GetBooking(ctx context.Context, id, callerID string) (*model.BookingDetail, error) {
	d, err := s.bookings.GetDetail(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "booking")
	}
	if d.UserID != callerID && d.ProductOwnerID != callerID {
		return nil, &ForbiddenError{Message: "not your booking"}
	}
	return d, nil
}

func (s *BookingService) ListForUser(ctx context.Context, callerID string) ([]model.BookingDetail, error) {
	return s.bookings.ListByUser(ctx, callerID)
}

// ListForProduct returns the bookings of a product owned by callerID.
func (s *BookingService) ListForProduct(ctx context.Context, productID, callerID string) ([]model.BookingDetail, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fromRepo(err, "product")
	}
	if p.UserID != callerID {
		return nil, &ForbiddenError{Message: "you do not own this product"}
	}
	return s.bookings.ListByProduct(ctx, productID)
}

// publish hands the event to the broker.  Failures are logged only.
func (s *BookingService) publish(ctx context.Context, typ string, b model.Booking, productName string) {
	ev := queue.BookingEvent{
		Type:          typ,
		BookingID:     b.ID,
		UserID:        b.UserID,
		ProductID:     b.ProductID,
		ProductName:   productName,
		Tickets:       b.Tickets,
		Total:         b.Total,
		Status:        b.Status,
		PaymentMethod: b.PaymentMethod,
		TransactionID: b.TransactionID,
		OccurredAt:    s.now().UTC(),
	}
	if b.TourDateID != nil {
		ev.TourDateID = *b.TourDateID
	}
	err := s.publisher.Publish(context.WithoutCancel(ctx), ev)
	metrics.EventsPublished.WithLabelValues(typ, metrics.Result(err)).Inc()
	if err != nil {
		zlog.Ctx(ctx).Warn().Err(err).Str("booking_id", b.ID).Str("type", typ).Msg("publish booking event failed")
	}
}
