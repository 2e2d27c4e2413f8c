package service

import (
	"context"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/dantour/internal/repository"
)

// PanelStore runs the host dashboard aggregates.
type PanelStore interface {
	ActiveReservations(ctx context.Context, hostID string, thisMonth, lastMonth time.Time) (repository.ReservationCounts, error)
	Revenue(ctx context.Context, hostID string, thisYear, lastYear time.Time) (repository.RevenueTotals, error)
	FrequentTravelers(ctx context.Context, hostID string) (int, error)
	MonthlyActivity(ctx context.Context, hostID string, since time.Time) ([]repository.MonthCount, error)
	Upcoming(ctx context.Context, hostID string, now time.Time, limit int) ([]repository.UpcomingRow, error)
}

// Upcoming list limits.
const (
	DefaultUpcomingLimit = 10
	MaxUpcomingLimit     = 50
	summaryUpcomingLimit = 4
)

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

type ActiveReservations struct {
	Total               int `json:"total"`
	ChangeFromLastMonth int `json:"changeFromLastMonth"`
	ThisMonth           int `json:"thisMonth"`
	LastMonth           int `json:"lastMonth"`
}

type Revenue struct {
	Total                     float64 `json:"total"`
	PercentChangeFromLastYear int     `json:"percentChangeFromLastYear"`
	ThisYearTotal             float64 `json:"thisYearTotal"`
	LastYearTotal             float64 `json:"lastYearTotal"`
}

type FrequentTravelers struct {
	Count int `json:"count"`
}

// MonthActivity is one bucket of the 12 month activity chart.
type MonthActivity struct {
	Month string `json:"month"`
	Label string `json:"label"`
	Year  int    `json:"year"`
	Count int    `json:"count"`
}

type UpcomingReservation struct {
	ID            string    `json:"id"`
	ProductName   string    `json:"productName"`
	ProductBanner *string   `json:"productBanner,omitempty"`
	ProductID     string    `json:"productId"`
	Total         float64   `json:"total"`
	Status        string    `json:"status"`
	Date          time.Time `json:"date"`
	GuestName     *string   `json:"guestName"`
}

type UpcomingReservations struct {
	Reservations []UpcomingReservation `json:"reservations"`
	Total        int                   `json:"total"`
}

type PanelSummary struct {
	ActiveReservations   ActiveReservations   `json:"activeReservations"`
	TotalRevenue         Revenue              `json:"totalRevenue"`
	FrequentTravelers    FrequentTravelers    `json:"frequentTravelers"`
	ReservationActivity  []MonthActivity      `json:"reservationActivity"`
	UpcomingReservations UpcomingReservations `json:"upcomingReservations"`
}

// PanelService builds the host dashboard.
type PanelService struct {
	store PanelStore
	now   func() time.Time
}

func NewPanelService(store PanelStore) *PanelService {
	if store == nil {
		panic("nil store passed to NewPanelService")
	}
	return &PanelService{store: store, now: time.Now}
}

func requireHost(hostID string) error {
	if strings.TrimSpace(hostID) == "" {
		return invalid("userId", "is required")
	}
	return nil
}

func monthStart(t time.Time, offset int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(offset), 1, 0, 0, 0, 0, t.Location())
}

func (s *PanelService) ActiveReservations(ctx context.Context, hostID string) (ActiveReservations, error) {
	if err := requireHost(hostID); err != nil {
		return ActiveReservations{}, err
	}
	now := s.now()
	c, err := s.store.ActiveReservations(ctx, hostID, monthStart(now, 0), monthStart(now, -1))
	if err != nil {
		return ActiveReservations{}, err
	}
	out := ActiveReservations{Total: c.Total, ThisMonth: c.ThisMonth, LastMonth: c.LastMonth}
	if c.LastMonth > 0 {
		out.ChangeFromLastMonth = c.ThisMonth - c.LastMonth
	}
	return out, nil
}

func (s *PanelService) Revenue(ctx context.Context, hostID string) (Revenue, error) {
	if err := requireHost(hostID); err != nil {
		return Revenue{}, err
	}
	now := s.now()
	thisYear := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	r, err := s.store.Revenue(ctx, hostID, thisYear, thisYear.AddDate(-1, 0, 0))
	if err != nil {
		return Revenue{}, err
	}
	return Revenue{
		Total:                     r.Total,
		PercentChangeFromLastYear: percentChange(r.ThisYear, r.LastYear),
		ThisYearTotal:             r.ThisYear,
		LastYearTotal:             r.LastYear,
	}, nil
}

// percentChange is the rounded change from last to this, 0 when last is 0.
func percentChange(this, last float64) int {
	if last == 0 {
		return 0
	}
	return int(math.Round((this - last) / last * 100))
}

func (s *PanelService) FrequentTravelers(ctx context.Context, hostID string) (FrequentTravelers, error) {
	if err := requireHost(hostID); err != nil {
		return FrequentTravelers{}, err
	}
	n, err := s.store.FrequentTravelers(ctx, hostID)
	return FrequentTravelers{Count: n}, err
}

// Activity returns 12 monthly buckets ending with the current month.
func (s *PanelService) Activity(ctx context.Context, hostID string) ([]MonthActivity, error) {
	if err := requireHost(hostID); err != nil {
		return nil, err
	}
	now := s.now()
	first := monthStart(now, -11)
	rows, err := s.store.MonthlyActivity(ctx, hostID, first)
	if err != nil {
		return nil, err
	}
	return activityBuckets(first, rows), nil
}

// activityBuckets zero-fills 12 months starting at first.
func activityBuckets(first time.Time, rows []repository.MonthCount) []MonthActivity {
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Month] = r.Count
	}
	out := make([]MonthActivity, 0, 12)
	for i := 0; i < 12; i++ {
		m := monthStart(first, i)
		key := m.Format("2006-01")
		out = append(out, MonthActivity{
			Month: key,
			Label: monthLabels[m.Month()-1],
			Year:  m.Year(),
			Count: counts[key],
		})
	}
	return out
}

func (s *PanelService) Upcoming(ctx context.Context, hostID string, limit int) (UpcomingReservations, error) {
	if err := requireHost(hostID); err != nil {
		return UpcomingReservations{}, err
	}
	limit = clampLimit(limit, DefaultUpcomingLimit, MaxUpcomingLimit)
	rows, err := s.store.Upcoming(ctx, hostID, s.now(), limit)
	if err != nil {
		return UpcomingReservations{}, err
	}
	out := UpcomingReservations{Reservations: make([]UpcomingReservation, 0, len(rows))}
	for _, r := range rows {
		u := UpcomingReservation{
			ID:          r.ID,
			ProductName: r.ProductName,
			ProductID:   r.ProductID,
			Total:       r.Total,
			Status:      r.Status,
			Date:        r.Date,
		}
		if r.ProductBanner.Valid {
			b := r.ProductBanner.String
			u.ProductBanner = &b
		}
		if name := strings.TrimSpace(r.GuestFirstName + " " + r.GuestLastName); name != "" {
			u.GuestName = &name
		}
		out.Reservations = append(out.Reservations, u)
	}
	out.Total = len(out.Reservations)
	return out, nil
}

// Summary runs every aggregate concurrently.
func (s *PanelService) Summary(ctx context.Context, hostID string) (PanelSummary, error) {
	if err := requireHost(hostID); err != nil {
		return PanelSummary{}, err
	}
	var out PanelSummary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.ActiveReservations, err = s.ActiveReservations(gctx, hostID)
		return err
	})
	g.Go(func() (err error) {
		out.TotalRevenue, err = s.Revenue(gctx, hostID)
		return err
	})
	g.Go(func() (err error) {
		out.FrequentTravelers, err = s.FrequentTravelers(gctx, hostID)
		return err
	})
	g.Go(func() (err error) {
		out.ReservationActivity, err = s.Activity(gctx, hostID)
		return err
	})
	g.Go(func() (err error) {
		out.UpcomingReservations, err = s.Upcoming(gctx, hostID, summaryUpcomingLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return PanelSummary{}, err
	}
	return out, nil
}
