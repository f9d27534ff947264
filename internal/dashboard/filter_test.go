package dashboard

import (
	"barberbook/pkg/auth"
	"barberbook/pkg/logger"
	"barberbook/pkg/model"
	"context"
	"errors"
	"testing"
	"time"
)

func sampleBookings() []*model.Booking {
	return []*model.Booking{
		{ID: "1", CustomerName: "Juan Dela Cruz", Phone: "+639171234567", Service: "Haircut", Stylist: "Jay", Date: "2024-06-01", Status: model.StatusPending, Price: model.PriceFromString("250")},
		{ID: "2", CustomerName: "Maria Santos", Phone: "+639181112222", Service: "Shave", Stylist: "Ana", Date: "2024-06-05", Status: model.StatusConfirmed, Price: model.PriceFromString("150")},
		{ID: "3", CustomerName: "Pedro Reyes", Phone: "+639191234000", Service: "Haircut", Stylist: "Ana", Date: "2024-05-01", Status: model.StatusCancelled},
		{ID: "4", CustomerName: "Jose Rizal", Phone: "+639201234567", Service: "", Stylist: "", Date: "bad", Status: model.StatusPending},
	}
}

func filteredIDs(bookings []*model.Booking) []string {
	ids := make([]string, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}
	return ids
}

func TestFilterBookings(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "no filter", filter: Filter{}, want: []string{"1", "2", "3", "4"}},
		{name: "query matches name case-insensitively", filter: Filter{Query: "MARIA"}, want: []string{"2"}},
		{name: "query matches stylist", filter: Filter{Query: "ana"}, want: []string{"2", "3"}},
		{name: "query matches phone substring", filter: Filter{Query: "1234567"}, want: []string{"1", "4"}},
		{name: "status", filter: Filter{Status: "Cancelled"}, want: []string{"3"}},
		{name: "service", filter: Filter{Service: "Haircut"}, want: []string{"1", "3"}},
		{name: "service and stylist", filter: Filter{Service: "Haircut", Stylist: "Ana"}, want: []string{"3"}},
		{name: "inclusive date range", filter: Filter{From: "2024-06-01", To: "2024-06-05"}, want: []string{"1", "2"}},
		{name: "open-ended from", filter: Filter{From: "2024-06-02"}, want: []string{"2"}},
		{name: "last days", filter: Filter{LastDays: 7}, want: []string{"2"}},
		{name: "explicit range wins over last days", filter: Filter{To: "2024-05-31", LastDays: 7}, want: []string{"3"}},
	}

	now := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filteredIDs(FilterBookings(sampleBookings(), tt.filter, now))
			if len(got) != len(tt.want) {
				t.Fatalf("FilterBookings() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("FilterBookings() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestDistinctValues(t *testing.T) {
	got := DistinctValues(sampleBookings(), func(b *model.Booking) string { return b.Stylist })
	want := []string{"Jay", "Ana"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("DistinctValues() = %v, want %v", got, want)
	}
}

type stubLister struct {
	bookings []*model.Booking
	err      error
	caller   *auth.Identity
}

func (s *stubLister) List(ctx context.Context, caller *auth.Identity, filter model.BookingFilter) ([]*model.Booking, error) {
	s.caller = caller
	return s.bookings, s.err
}

func TestService_Build(t *testing.T) {
	lister := &stubLister{bookings: sampleBookings()}
	svc := NewService(lister, logger.Nop())
	svc.now = func() time.Time { return time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC) }
	admin := &auth.Identity{UserID: "admin-1", Role: model.RoleAdmin}

	d, err := svc.Build(context.Background(), admin, Filter{Service: "Haircut"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if lister.caller != admin {
		t.Error("bookings must be listed as the caller")
	}
	if d.Metrics.TotalBookings != 2 || !d.Metrics.TotalRevenue.Equal(dec("250")) {
		t.Errorf("Metrics = %+v", d.Metrics)
	}
	if len(d.ByService) != 1 || d.ByService[0].Key != "Haircut" {
		t.Errorf("ByService = %+v", d.ByService)
	}
	if len(d.ByStylist) != 2 || d.ByStylist[0].Key != "Jay" {
		t.Errorf("ByStylist = %+v", d.ByStylist)
	}
	if got := filteredIDs(d.Bookings); len(got) != 2 {
		t.Errorf("Bookings = %v", got)
	}
	if len(d.Services) != 2 || len(d.Stylists) != 2 {
		t.Errorf("pickers = %v / %v, want both from the unfiltered list", d.Services, d.Stylists)
	}
	if first := d.Daily[0].Date; first != "2024-04-02" {
		t.Errorf("series starts %s, want 2024-04-02", first)
	}
}

func TestService_BuildPropagatesListError(t *testing.T) {
	wantErr := errors.New("storage down")
	svc := NewService(&stubLister{err: wantErr}, logger.Nop())

	if _, err := svc.Build(context.Background(), nil, Filter{}); !errors.Is(err, wantErr) {
		t.Errorf("Build() error = %v, want %v", err, wantErr)
	}
}
