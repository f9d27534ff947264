package dashboard

import (
	"barberbook/pkg/model"
	"strings"
	"time"
)

// Filter narrows the bookings shown on the dashboard. Zero fields do not
// filter.
type Filter struct {
	Query   string
	Status  string
	Service string
	Stylist string
	From    string
	To      string
	// LastDays keeps bookings dated within that many days before today.
	// It is ignored when From or To is set.
	LastDays int
}

// FilterBookings returns the bookings matching every set field of f, in their
// original order. Date bounds are inclusive; bookings whose date does not
// parse never match a date bound.
func FilterBookings(bookings []*model.Booking, f Filter, today time.Time) []*model.Booking {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	status := strings.ToLower(strings.TrimSpace(f.Status))

	from, hasFrom := ParseBookingDay(f.From)
	to, hasTo := ParseBookingDay(f.To)
	if !hasFrom && !hasTo && f.LastDays > 0 {
		from, hasFrom = truncateDay(today).AddDate(0, 0, -f.LastDays), true
	}

	result := make([]*model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if query != "" && !matchesQuery(b, query) {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		if f.Service != "" && b.Service != f.Service {
			continue
		}
		if f.Stylist != "" && b.Stylist != f.Stylist {
			continue
		}
		if hasFrom || hasTo {
			day, ok := ParseBookingDay(b.Date)
			if !ok || (hasFrom && day.Before(from)) || (hasTo && day.After(to)) {
				continue
			}
		}
		result = append(result, b)
	}
	return result
}

func matchesQuery(b *model.Booking, query string) bool {
	return strings.Contains(strings.ToLower(b.CustomerName), query) ||
		strings.Contains(strings.ToLower(b.Service), query) ||
		strings.Contains(strings.ToLower(b.Stylist), query) ||
		strings.Contains(b.Phone, query)
}

// DistinctValues returns the non-empty keys in order of first appearance.
func DistinctValues(bookings []*model.Booking, key func(b *model.Booking) string) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, b := range bookings {
		v := strings.TrimSpace(key(b))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values
}
