package repository

import (
	bookingserrors "barberbook/internal/bookings/errors"
	migrations "barberbook/internal/migrations/mongo"
	"barberbook/internal/testutil"
	"barberbook/pkg/model"
	"context"
	"errors"
	"sync"
	"testing"
)

func newMigratedRepository(t *testing.T) BookingRepository {
	t.Helper()
	cfg := testutil.NewMongoConfig(t)

	ctx := context.Background()
	if err := migrations.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
		t.Fatalf("RunMigration() error = %v", err)
	}
	// A second run must be a no-op.
	if err := migrations.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
		t.Fatalf("second RunMigration() error = %v", err)
	}
	return NewMongoBookingRepository(cfg)
}

func newBooking(stylist, date, clock string) *model.Booking {
	return &model.Booking{
		CustomerName: "Juan Dela Cruz",
		Phone:        "+639171234567",
		Service:      "Haircut",
		Stylist:      stylist,
		Date:         date,
		Time:         clock,
		Price:        model.PriceFromString("199.50"),
		Status:       model.StatusPending,
		UserID:       "user-1",
	}
}

func TestMongoBookingRepository_SlotIndex(t *testing.T) {
	repo := newMigratedRepository(t)
	ctx := context.Background()

	first := newBooking("Jay", "2024-06-01", "09:00")
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if first.ID == "" {
		t.Fatal("Create() did not assign an id")
	}

	err := repo.Create(ctx, newBooking("Jay", "2024-06-01", "09:00"))
	if !errors.Is(err, bookingserrors.ErrSlotTaken) {
		t.Fatalf("second Create() error = %v, want ErrSlotTaken", err)
	}

	for i := 0; i < 2; i++ {
		if err := repo.Create(ctx, newBooking("", "2024-06-01", "09:00")); err != nil {
			t.Fatalf("Create() without stylist error = %v", err)
		}
	}

	if _, err := repo.UpdateStatus(ctx, first.ID, model.StatusCancelled, ""); err != nil {
		t.Fatalf("cancel error = %v", err)
	}
	second := newBooking("Jay", "2024-06-01", "09:00")
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Create() on freed slot error = %v", err)
	}

	slot := model.SlotKey("Jay", "2024-06-01", "09:00")
	_, err = repo.UpdateStatus(ctx, first.ID, model.StatusConfirmed, slot)
	if !errors.Is(err, bookingserrors.ErrSlotTaken) {
		t.Errorf("re-confirm error = %v, want ErrSlotTaken", err)
	}

	held, err := repo.FindActiveBySlot(ctx, "Jay", "2024-06-01", "09:00", "")
	if err != nil || held == nil || held.ID != second.ID {
		t.Errorf("FindActiveBySlot() = %+v, %v; want %s", held, err, second.ID)
	}
}

func TestMongoBookingRepository_ConcurrentCreates(t *testing.T) {
	repo := newMigratedRepository(t)
	ctx := context.Background()

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, newBooking("Marco", "2024-06-02", "10:00"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, bookingserrors.ErrSlotTaken):
				conflicts++
			default:
				t.Errorf("Create() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 1 || conflicts != attempts-1 {
		t.Errorf("created = %d, conflicts = %d; want 1 and %d", created, conflicts, attempts-1)
	}
}

func TestMongoBookingRepository_FindAndRoundTrip(t *testing.T) {
	repo := newMigratedRepository(t)
	ctx := context.Background()

	older := newBooking("Ana", "2024-06-03", "09:00")
	newer := newBooking("Ana", "2024-06-03", "10:00")
	other := newBooking("Ana", "2024-06-04", "09:00")
	other.UserID = "user-2"
	for _, b := range []*model.Booking{older, newer, other} {
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	got, err := repo.Find(ctx, model.BookingFilter{Date: "2024-06-03"})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != newer.ID || got[1].ID != older.ID {
		t.Errorf("Find(date) order = %v, want newest first", ids(got))
	}

	got, err = repo.Find(ctx, model.BookingFilter{UserID: "user-2"})
	if err != nil || len(got) != 1 || got[0].ID != other.ID {
		t.Errorf("Find(user) = %v, %v", ids(got), err)
	}

	none, err := repo.Find(ctx, model.BookingFilter{Phone: "+10000000000"})
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("Find(no match) = %v, %v; want empty slice", none, err)
	}

	loaded, err := repo.FindByID(ctx, older.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if loaded.Price.Amount().String() != "199.5" || loaded.Status != model.StatusPending {
		t.Errorf("FindByID() = %+v", loaded)
	}

	if _, err := repo.FindByID(ctx, "not-an-id"); !errors.Is(err, bookingserrors.ErrInvalidID) {
		t.Errorf("FindByID(bad id) error = %v, want ErrInvalidID", err)
	}
	if _, err := repo.FindByID(ctx, "65f000000000000000000000"); !errors.Is(err, bookingserrors.ErrNotFound) {
		t.Errorf("FindByID(missing) error = %v, want ErrNotFound", err)
	}
}

func ids(bookings []*model.Booking) []string {
	out := make([]string, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.ID)
	}
	return out
}
