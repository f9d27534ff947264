package dashboard

import (
	"barberbook/pkg/auth"
	"barberbook/pkg/logger"
	"barberbook/pkg/model"
	"context"
	"time"
)

// BookingLister is satisfied by the booking service.
type BookingLister interface {
	List(ctx context.Context, caller *auth.Identity, filter model.BookingFilter) ([]*model.Booking, error)
}

type Dashboard struct {
	Metrics   Metrics          `json:"metrics"`
	ByService []GroupStat      `json:"byService"`
	ByStylist []GroupStat      `json:"byStylist"`
	Daily     []DailyPoint     `json:"daily"`
	Bookings  []*model.Booking `json:"bookings"`
	Services  []string         `json:"services"`
	Stylists  []string         `json:"stylists"`
}

type Service struct {
	bookings BookingLister
	log      *logger.Logger
	now      func() time.Time
}

func NewService(bookings BookingLister, log *logger.Logger) *Service {
	return &Service{
		bookings: bookings,
		log:      log,
		now:      time.Now,
	}
}

// Build loads every booking visible to caller and summarises those matching
// f. The pickers list the services and stylists of all bookings.
func (s *Service) Build(ctx context.Context, caller *auth.Identity, f Filter) (*Dashboard, error) {
	all, err := s.bookings.List(ctx, caller, model.BookingFilter{})
	if err != nil {
		return nil, err
	}

	today := s.now()
	filtered := FilterBookings(all, f, today)

	d := &Dashboard{
		Metrics:   ComputeMetrics(filtered),
		ByService: ComputeGroupStats(filtered, ByService),
		ByStylist: ComputeGroupStats(filtered, ByStylist),
		Daily:     ComputeDailySeries(filtered, today, s.log),
		Bookings:  filtered,
		Services:  DistinctValues(all, func(b *model.Booking) string { return b.Service }),
		Stylists:  DistinctValues(all, func(b *model.Booking) string { return b.Stylist }),
	}

	s.log.Debug("Dashboard built",
		"bookings", len(all),
		"filtered", len(filtered),
		"days", len(d.Daily),
	)
	return d, nil
}
