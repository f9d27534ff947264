package dashboard

import (
	"barberbook/pkg/logger"
	"barberbook/pkg/model"
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var today = time.Date(2024, 6, 10, 15, 4, 5, 0, time.UTC)

func priced(date, service, stylist, price string) *model.Booking {
	b := &model.Booking{Date: date, Service: service, Stylist: stylist}
	if price != "" {
		b.Price = model.PriceFromString(price)
	}
	return b
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeMetrics_MixedPriceInputs(t *testing.T) {
	var bookings []*model.Booking
	if err := json.Unmarshal([]byte(`[{"price":100},{"price":"200"},{"price":null}]`), &bookings); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	m := ComputeMetrics(bookings)

	if !m.TotalRevenue.Equal(dec("300")) {
		t.Errorf("TotalRevenue = %s, want 300", m.TotalRevenue)
	}
	if m.TotalBookings != 3 {
		t.Errorf("TotalBookings = %d, want 3", m.TotalBookings)
	}
	if !m.AverageTicket.Equal(dec("100")) {
		t.Errorf("AverageTicket = %s, want 100", m.AverageTicket)
	}
}

func TestComputeMetrics_Empty(t *testing.T) {
	for _, input := range [][]*model.Booking{nil, {}} {
		m := ComputeMetrics(input)
		if !m.TotalRevenue.IsZero() || m.TotalBookings != 0 || !m.AverageTicket.IsZero() {
			t.Errorf("ComputeMetrics(%v) = %+v, want zeros", input, m)
		}
	}
}

func TestComputeMetrics_MalformedPriceCountsAsZero(t *testing.T) {
	bookings := []*model.Booking{
		priced("2024-06-01", "", "", "abc"),
		priced("2024-06-01", "", "", "49.50"),
	}

	m := ComputeMetrics(bookings)
	if !m.TotalRevenue.Equal(dec("49.50")) || m.TotalBookings != 2 || !m.AverageTicket.Equal(dec("24.75")) {
		t.Errorf("ComputeMetrics() = %+v", m)
	}
}

func TestComputeGroupStats(t *testing.T) {
	bookings := []*model.Booking{
		priced("2024-06-01", "Shave", "Jay", "100"),
		priced("2024-06-01", "Haircut", "", "300"),
		priced("2024-06-02", "", "Jay", "100"),
		priced("2024-06-02", "Shave", "Ana", "100"),
		priced("2024-06-03", "Beard", "Ana", ""),
	}

	got := ComputeGroupStats(bookings, ByService)
	want := []GroupStat{
		{Key: "Haircut", BookingCount: 1, Revenue: dec("300")},
		{Key: "Shave", BookingCount: 2, Revenue: dec("200")},
		{Key: UnknownKey, BookingCount: 1, Revenue: dec("100")},
		{Key: "Beard", BookingCount: 1, Revenue: dec("0")},
	}
	assertGroups(t, got, want)

	got = ComputeGroupStats(bookings, ByStylist)
	want = []GroupStat{
		{Key: UnknownKey, BookingCount: 1, Revenue: dec("300")},
		{Key: "Jay", BookingCount: 2, Revenue: dec("200")},
		{Key: "Ana", BookingCount: 2, Revenue: dec("100")},
	}
	assertGroups(t, got, want)
}

func TestComputeGroupStats_TiesKeepDiscoveryOrder(t *testing.T) {
	bookings := []*model.Booking{
		priced("2024-06-01", "C", "", "50"),
		priced("2024-06-01", "A", "", "50"),
		priced("2024-06-01", "B", "", "50"),
	}

	got := ComputeGroupStats(bookings, ByService)
	for i, key := range []string{"C", "A", "B"} {
		if got[i].Key != key {
			t.Errorf("position %d = %q, want %q", i, got[i].Key, key)
		}
	}
}

func assertGroups(t *testing.T, got, want []GroupStat) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d groups, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Key != want[i].Key || got[i].BookingCount != want[i].BookingCount || !got[i].Revenue.Equal(want[i].Revenue) {
			t.Errorf("group %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func randomBookings(r *rand.Rand, n int) []*model.Booking {
	services := []string{"", "Haircut", "Shave", "Beard"}
	prices := []string{"", "0", "100", "250.50", "abc", "75"}
	bookings := make([]*model.Booking, n)
	for i := range bookings {
		date := today.AddDate(0, 0, r.Intn(120)-90).Format(dayLayout)
		if r.Intn(10) == 0 {
			date = "not-a-date"
		}
		bookings[i] = priced(date, services[r.Intn(len(services))], services[r.Intn(len(services))], prices[r.Intn(len(prices))])
	}
	return bookings
}

func TestAggregates_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for iteration := 0; iteration < 50; iteration++ {
		bookings := randomBookings(r, r.Intn(40))
		t.Run(fmt.Sprintf("iteration %d", iteration), func(t *testing.T) {
			metrics := ComputeMetrics(bookings)

			if metrics.TotalBookings != len(bookings) {
				t.Errorf("TotalBookings = %d, want %d", metrics.TotalBookings, len(bookings))
			}
			sum := decimal.Zero
			for _, b := range bookings {
				sum = sum.Add(b.Price.Amount())
			}
			if !metrics.TotalRevenue.Equal(sum) {
				t.Errorf("TotalRevenue = %s, want %s", metrics.TotalRevenue, sum)
			}

			for _, key := range []KeyFunc{ByService, ByStylist} {
				groups := ComputeGroupStats(bookings, key)
				count, revenue := 0, decimal.Zero
				for i, g := range groups {
					count += g.BookingCount
					revenue = revenue.Add(g.Revenue)
					if i > 0 && groups[i-1].Revenue.LessThan(g.Revenue) {
						t.Errorf("groups not sorted at %d: %s < %s", i, groups[i-1].Revenue, g.Revenue)
					}
				}
				if count != len(bookings) || !revenue.Equal(metrics.TotalRevenue) {
					t.Errorf("group totals = %d/%s, want %d/%s", count, revenue, len(bookings), metrics.TotalRevenue)
				}
			}

			series := ComputeDailySeries(bookings, today, logger.Nop())
			assertContiguous(t, series)

			counts := make(map[string]int)
			for _, p := range series {
				counts[p.Date] = p.Bookings
			}
			want := make(map[string]int)
			for _, b := range bookings {
				if day, ok := ParseBookingDay(b.Date); ok {
					want[day.Format(dayLayout)]++
				}
			}
			for date, n := range want {
				if counts[date] != n {
					t.Errorf("day %s has %d bookings, want %d", date, counts[date], n)
				}
			}
		})
	}
}

func assertContiguous(t *testing.T, series []DailyPoint) {
	t.Helper()
	for i := 1; i < len(series); i++ {
		prev, _ := time.Parse(dayLayout, series[i-1].Date)
		cur, _ := time.Parse(dayLayout, series[i].Date)
		if !cur.Equal(prev.AddDate(0, 0, 1)) {
			t.Fatalf("gap between %s and %s", series[i-1].Date, series[i].Date)
		}
	}
}

func TestComputeDailySeries_NoParseableDates(t *testing.T) {
	bookings := []*model.Booking{
		priced("tomorrow", "", "", "100"),
		priced("", "", "", "100"),
	}

	for _, input := range [][]*model.Booking{nil, bookings} {
		series := ComputeDailySeries(input, today, logger.Nop())
		if len(series) != 30 {
			t.Fatalf("len = %d, want 30", len(series))
		}
		if series[0].Date != "2024-05-12" || series[29].Date != "2024-06-10" {
			t.Errorf("range = %s..%s, want 2024-05-12..2024-06-10", series[0].Date, series[29].Date)
		}
		for _, p := range series {
			if p.Bookings != 0 || !p.Revenue.IsZero() {
				t.Errorf("day %s = %+v, want zero", p.Date, p)
			}
		}
	}
}

func TestComputeDailySeries_Range(t *testing.T) {
	tests := []struct {
		name      string
		dates     []string
		wantFirst string
		wantLast  string
	}{
		{
			name:      "past bookings extend back",
			dates:     []string{"2024-04-01", "2024-05-01"},
			wantFirst: "2024-03-03",
			wantLast:  "2024-06-10",
		},
		{
			name:      "future bookings extend forward",
			dates:     []string{"2024-06-20"},
			wantFirst: "2024-05-12",
			wantLast:  "2024-06-20",
		},
		{
			name:      "timestamps use the written date",
			dates:     []string{"2024-06-01T23:30:00-08:00", "2024-06-01T00:15:00+08:00"},
			wantFirst: "2024-05-03",
			wantLast:  "2024-06-10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var bookings []*model.Booking
			for _, d := range tt.dates {
				bookings = append(bookings, priced(d, "", "", "10"))
			}

			series := ComputeDailySeries(bookings, today, logger.Nop())
			assertContiguous(t, series)
			if series[0].Date != tt.wantFirst || series[len(series)-1].Date != tt.wantLast {
				t.Errorf("range = %s..%s, want %s..%s", series[0].Date, series[len(series)-1].Date, tt.wantFirst, tt.wantLast)
			}
		})
	}
}

func TestComputeDailySeries_Totals(t *testing.T) {
	bookings := []*model.Booking{
		priced("2024-06-01", "", "", "100"),
		priced("2024-06-01T09:00:00Z", "", "", "200"),
		priced("2024-06-03", "", "", ""),
		priced("06/03/2024", "", "", "999"),
	}

	series := ComputeDailySeries(bookings, today, logger.Nop())
	byDate := make(map[string]DailyPoint)
	for _, p := range series {
		byDate[p.Date] = p
	}

	if p := byDate["2024-06-01"]; p.Bookings != 2 || !p.Revenue.Equal(dec("300")) {
		t.Errorf("2024-06-01 = %+v, want 2 bookings / 300", p)
	}
	if p := byDate["2024-06-02"]; p.Bookings != 0 || !p.Revenue.IsZero() {
		t.Errorf("2024-06-02 = %+v, want zero", p)
	}
	if p := byDate["2024-06-03"]; p.Bookings != 1 || !p.Revenue.IsZero() {
		t.Errorf("2024-06-03 = %+v, want 1 booking / 0", p)
	}
}

func TestComputeDailySeries_BoundedSpan(t *testing.T) {
	bookings := []*model.Booking{priced("0001-01-01", "", "", "1")}

	series := ComputeDailySeries(bookings, today, logger.Nop())
	if len(series) != maxSeriesDays {
		t.Errorf("len = %d, want %d", len(series), maxSeriesDays)
	}
	if series[len(series)-1].Date != "2024-06-10" {
		t.Errorf("last day = %s, want today", series[len(series)-1].Date)
	}
}

func TestComputeDailySeries_FarFutureKeepsToday(t *testing.T) {
	bookings := []*model.Booking{
		priced("9999-01-01", "", "", "50"),
		priced("2024-06-05", "", "", "100"),
	}

	series := ComputeDailySeries(bookings, today, logger.Nop())

	byDate := make(map[string]DailyPoint, len(series))
	for _, p := range series {
		byDate[p.Date] = p
	}
	if _, ok := byDate["2024-06-10"]; !ok {
		t.Error("series must include today")
	}
	if p := byDate["2024-06-05"]; p.Bookings != 1 {
		t.Errorf("2024-06-05 = %+v, want the real booking", p)
	}
	if last := series[len(series)-1].Date; last != "2025-06-11" {
		t.Errorf("last day = %s, want today + %d days", last, maxFutureDays)
	}
}

func TestParseBookingDay(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"2024-06-01", "2024-06-01", true},
		{" 2024-06-01 ", "2024-06-01", true},
		{"2024-06-01T23:59:59+14:00", "2024-06-01", true},
		{"2024-06-01T10:00:00.123Z", "2024-06-01", true},
		{"2024-06-01T10:00", "2024-06-01", true},
		{"2024-06-01 10:00:00", "2024-06-01", true},
		{"2024-02-30", "", false},
		{"2024-06-01garbage", "", false},
		{"June 1", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			day, ok := ParseBookingDay(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseBookingDay(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && day.Format(dayLayout) != tt.want {
				t.Errorf("ParseBookingDay(%q) = %s, want %s", tt.input, day.Format(dayLayout), tt.want)
			}
		})
	}
}
