package dashboard

import (
	"barberbook/pkg/logger"
	"barberbook/pkg/model"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	UnknownKey = "Unknown"

	dayLayout = "2006-01-02"

	// seriesWindow is the number of days shown before the earliest anchor,
	// the anchor day included.
	seriesWindow = 30

	// maxSeriesDays bounds the series when stored dates are far apart.
	maxSeriesDays = 5 * 366

	// maxFutureDays keeps a mistyped far-future date from pushing today out
	// of the series.
	maxFutureDays = 366
)

var dateLayouts = []string{
	dayLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

type Metrics struct {
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalBookings int             `json:"totalBookings"`
	AverageTicket decimal.Decimal `json:"averageTicket"`
}

type GroupStat struct {
	Key          string          `json:"key"`
	BookingCount int             `json:"bookingCount"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type DailyPoint struct {
	Date     string          `json:"date"`
	Revenue  decimal.Decimal `json:"revenue"`
	Bookings int             `json:"bookings"`
}

// KeyFunc extracts the grouping key of a booking.
type KeyFunc func(b *model.Booking) string

func ByService(b *model.Booking) string {
	return keyOrUnknown(b.Service)
}

func ByStylist(b *model.Booking) string {
	return keyOrUnknown(b.Stylist)
}

func keyOrUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return UnknownKey
	}
	return s
}

// ComputeMetrics sums the price of every booking. Missing or malformed
// prices count as zero.
func ComputeMetrics(bookings []*model.Booking) Metrics {
	total := decimal.Zero
	for _, b := range bookings {
		total = total.Add(b.Price.Amount())
	}

	m := Metrics{
		TotalRevenue:  total,
		TotalBookings: len(bookings),
		AverageTicket: decimal.Zero,
	}
	if m.TotalBookings > 0 {
		m.AverageTicket = total.DivRound(decimal.NewFromInt(int64(m.TotalBookings)), 2)
	}
	return m
}

// ComputeGroupStats groups bookings by key, ordered by revenue descending.
// Groups with equal revenue keep the order in which their key first appears.
func ComputeGroupStats(bookings []*model.Booking, key KeyFunc) []GroupStat {
	stats := make([]GroupStat, 0)
	index := make(map[string]int)

	for _, b := range bookings {
		k := key(b)
		i, ok := index[k]
		if !ok {
			i = len(stats)
			index[k] = i
			stats = append(stats, GroupStat{Key: k, Revenue: decimal.Zero})
		}
		stats[i].BookingCount++
		stats[i].Revenue = stats[i].Revenue.Add(b.Price.Amount())
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Revenue.GreaterThan(stats[j].Revenue)
	})
	return stats
}

// ComputeDailySeries returns one point per calendar day, zero days included.
// The range runs from seriesWindow-1 days before the earlier of the earliest
// booking and today, through the later of the latest booking and today.
// Bookings with a date that does not parse are logged and skipped.
func ComputeDailySeries(bookings []*model.Booking, today time.Time, log *logger.Logger) []DailyPoint {
	type bucket struct {
		revenue  decimal.Decimal
		bookings int
	}

	todayDay := truncateDay(today)
	earliest, latest := todayDay, todayDay
	buckets := make(map[string]*bucket)

	for _, b := range bookings {
		day, ok := ParseBookingDay(b.Date)
		if !ok {
			if log != nil {
				log.Warn("Skipping booking with invalid date", "id", b.ID, "date", b.Date)
			}
			continue
		}
		if day.Before(earliest) {
			earliest = day
		}
		if day.After(latest) {
			latest = day
		}

		key := day.Format(dayLayout)
		bk, ok := buckets[key]
		if !ok {
			bk = &bucket{revenue: decimal.Zero}
			buckets[key] = bk
		}
		bk.revenue = bk.revenue.Add(b.Price.Amount())
		bk.bookings++
	}

	if limit := todayDay.AddDate(0, 0, maxFutureDays); latest.After(limit) {
		if log != nil {
			log.Warn("Daily series clipped at future limit", "latest", latest.Format(dayLayout), "to", limit.Format(dayLayout))
		}
		latest = limit
	}

	start := earliest.AddDate(0, 0, -(seriesWindow - 1))
	if limit := latest.AddDate(0, 0, -(maxSeriesDays - 1)); start.Before(limit) {
		if log != nil {
			log.Warn("Daily series truncated", "from", start.Format(dayLayout), "to", limit.Format(dayLayout))
		}
		start = limit
	}

	series := make([]DailyPoint, 0, int(latest.Sub(start).Hours()/24)+1)
	for day := start; !day.After(latest); day = day.AddDate(0, 0, 1) {
		key := day.Format(dayLayout)
		point := DailyPoint{Date: key, Revenue: decimal.Zero}
		if bk, ok := buckets[key]; ok {
			point.Revenue = bk.revenue
			point.Bookings = bk.bookings
		}
		series = append(series, point)
	}
	return series
}

// ParseBookingDay reads the calendar day of a stored booking date. Timestamps
// are accepted and reduced to the date as written, whatever their offset.
func ParseBookingDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len(dayLayout) {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			day, err := time.Parse(dayLayout, s[:len(dayLayout)])
			return day, err == nil
		}
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
