package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/repository"
)

// TourStore is the tour persistence the tour handler needs.
type TourStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, t model.Tour) error
	CreateDatesBulkTx(ctx context.Context, tx *sql.Tx, dates []model.TourDate) error
	Get(ctx context.Context, productID string) (model.Tour, error)
	ListDates(ctx context.Context, tourID string) ([]model.TourDate, error)
}

type tourInput struct {
	DeparturePoint string      `json:"departure_point"`
	AvailableDates flexStrings `json:"available_dates"`
	MaxPeople      flexInt     `json:"max_people"`
	Itinerary      flexStrings `json:"itinerary"`
	PackingList    flexStrings `json:"packing_list"`
	Highlight      string      `json:"highlight"`
	Expenses       flexStrings `json:"expenses"`
	Difficulty     string      `json:"difficulty"`
	Included       string      `json:"included"`
	Duration       flexInt     `json:"duration"`
	Lat            flexFloat   `json:"lat"`
	Long           flexFloat   `json:"long"`
	Lng            flexFloat   `json:"lng"`
}

type tourDetails struct {
	tour      model.Tour
	dates     []time.Time
	maxPeople int
}

// TourHandler is the subtype handler for tours.
type TourHandler struct{ store TourStore }

func NewTourHandler(store TourStore) *TourHandler { return &TourHandler{store: store} }

// dateLayouts are tried in order when parsing available dates.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	s = trimmed(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func (h *TourHandler) Validate(raw json.RawMessage, _ time.Time) (any, error) {
	var in tourInput
	if err := decodeJSON(raw, &in); err != nil {
		return nil, err
	}
	if trimmed(in.DeparturePoint) == "" {
		return nil, invalid("departure_point", "is required")
	}
	if len(in.AvailableDates) == 0 {
		return nil, invalid("available_dates", "at least one date is required")
	}
	dates := make([]time.Time, 0, len(in.AvailableDates))
	for _, s := range in.AvailableDates {
		d, err := parseDate(s)
		if err != nil {
			return nil, invalid("available_dates", err.Error())
		}
		dates = append(dates, d)
	}
	if !in.MaxPeople.Set || in.MaxPeople.Value <= 0 {
		return nil, invalid("max_people", "must be greater than 0")
	}
	switch in.Difficulty {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
	default:
		return nil, invalid("difficulty", "must be easy, medium or hard")
	}
	expenses := model.StringList(in.Expenses).NonEmpty()
	if len(expenses) == 0 {
		return nil, invalid("expenses", "at least one expense is required")
	}
	if trimmed(in.Highlight) == "" {
		return nil, invalid("highlight", "is required")
	}
	if trimmed(in.Included) == "" {
		return nil, invalid("included", "is required")
	}
	if !in.Duration.Set || in.Duration.Value <= 0 {
		return nil, invalid("duration", "must be greater than 0")
	}

	t := model.Tour{
		DeparturePoint: trimmed(in.DeparturePoint),
		Itinerary:      model.StringList(in.Itinerary).NonEmpty(),
		Expenses:       expenses,
		PackingList:    model.StringList(in.PackingList).NonEmpty(),
		Highlight:      trimmed(in.Highlight),
		Included:       trimmed(in.Included),
		Duration:       in.Duration.Value,
		Difficulty:     in.Difficulty,
	}
	if in.Lat.Set {
		v := in.Lat.Value
		t.Lat = &v
	}
	switch {
	case in.Long.Set:
		v := in.Long.Value
		t.Lng = &v
	case in.Lng.Set:
		v := in.Lng.Value
		t.Lng = &v
	}
	return &tourDetails{tour: t, dates: dates, maxPeople: in.MaxPeople.Value}, nil
}

func (h *TourHandler) Insert(ctx context.Context, tx *sql.Tx, productID string, details any) error {
	d, ok := details.(*tourDetails)
	if !ok {
		return fmt.Errorf("tour handler: unexpected details %T", details)
	}
	d.tour.ProductID = productID
	if err := h.store.CreateTx(ctx, tx, d.tour); err != nil {
		return err
	}
	rows := make([]model.TourDate, 0, len(d.dates))
	for _, date := range d.dates {
		rows = append(rows, model.TourDate{
			ID:        uuid.NewString(),
			TourID:    productID,
			Date:      date,
			MaxPeople: d.maxPeople,
		})
	}
	return h.store.CreateDatesBulkTx(ctx, tx, rows)
}

func (h *TourHandler) Load(ctx context.Context, productID string) (any, error) {
	t, err := h.store.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("tour")
		}
		return nil, err
	}
	dates, err := h.store.ListDates(ctx, productID)
	if err != nil {
		return nil, err
	}
	if dates == nil {
		dates = []model.TourDate{}
	}
	return &model.TourDetail{Tour: t, TourDates: dates}, nil
}
