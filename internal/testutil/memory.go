// Package testutil provides in-memory repositories that behave like the
// Mongo ones, unique indexes included.
package testutil

import (
	autherrors "barberbook/internal/auth/errors"
	bookingserrors "barberbook/internal/bookings/errors"
	"barberbook/pkg/model"
	"context"
	"fmt"
	"sync"
	"time"
)

type BookingRepository struct {
	mu       sync.Mutex
	bookings []*model.Booking
	nextID   int

	// FindErr, when set, is returned by Find.
	FindErr error
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{}
}

func (r *BookingRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

func (r *BookingRepository) slotHeld(slotKey, excludeID string) bool {
	if slotKey == "" {
		return false
	}
	for _, b := range r.bookings {
		if b.ID != excludeID && b.SlotKey == slotKey {
			return true
		}
	}
	return false
}

func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking.SlotKey = booking.ActiveSlotKey()
	if r.slotHeld(booking.SlotKey, "") {
		return bookingserrors.ErrSlotTaken
	}
	r.nextID++
	booking.ID = fmt.Sprintf("%024x", r.nextID)
	booking.CreatedAt = time.Date(2025, 1, 1, 0, 0, r.nextID, 0, time.UTC)
	booking.UpdatedAt = booking.CreatedAt

	stored := *booking
	r.bookings = append(r.bookings, &stored)
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.ID == id {
			found := *b
			return &found, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

// Find returns matches newest first.
func (r *BookingRepository) Find(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FindErr != nil {
		return nil, r.FindErr
	}
	result := make([]*model.Booking, 0)
	for i := len(r.bookings) - 1; i >= 0; i-- {
		b := r.bookings[i]
		if filter.Phone != "" && b.Phone != filter.Phone {
			continue
		}
		if filter.Date != "" && b.Date != filter.Date {
			continue
		}
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		found := *b
		result = append(result, &found)
	}
	return result, nil
}

func (r *BookingRepository) FindActiveBySlot(ctx context.Context, stylist, date, clock, excludeID string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.ID != excludeID && b.Stylist == stylist && b.Date == date && b.Time == clock && model.IsActiveStatus(b.Status) {
			found := *b
			return &found, nil
		}
	}
	return nil, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id, status, slotKey string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slotHeld(slotKey, id) {
		return nil, bookingserrors.ErrSlotTaken
	}
	for _, b := range r.bookings {
		if b.ID == id {
			b.Status = status
			b.SlotKey = slotKey
			b.UpdatedAt = b.UpdatedAt.Add(time.Second)
			updated := *b
			return &updated, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (r *BookingRepository) Update(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slotKey := booking.ActiveSlotKey()
	if r.slotHeld(slotKey, booking.ID) {
		return nil, bookingserrors.ErrSlotTaken
	}
	for i, b := range r.bookings {
		if b.ID == booking.ID {
			stored := *booking
			stored.SlotKey = slotKey
			stored.UpdatedAt = b.UpdatedAt.Add(time.Second)
			r.bookings[i] = &stored
			updated := stored
			return &updated, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

type UserRepository struct {
	mu     sync.Mutex
	users  []*model.User
	nextID int
}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return autherrors.ErrEmailTaken
		}
	}
	r.nextID++
	user.ID = fmt.Sprintf("%024x", 1<<40+r.nextID)
	stored := *user
	r.users = append(r.users, &stored)
	return nil
}

func (r *UserRepository) find(match func(u *model.User) bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if match(u) {
			found := *u
			return &found, nil
		}
	}
	return nil, autherrors.ErrNotFound
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == id })
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email })
}

func (r *UserRepository) FindAll(ctx context.Context) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		found := *u
		users = append(users, &found)
	}
	return users, nil
}

func (r *UserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *UserRepository) update(id string, apply func(u *model.User)) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID == id {
			apply(u)
			updated := *u
			return &updated, nil
		}
	}
	return nil, autherrors.ErrNotFound
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id, name, phone string) (*model.User, error) {
	return r.update(id, func(u *model.User) { u.Name, u.Phone = name, phone })
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.update(id, func(u *model.User) { u.PasswordHash = passwordHash })
	return err
}

func (r *UserRepository) UpdateRole(ctx context.Context, id, role string) (*model.User, error) {
	return r.update(id, func(u *model.User) { u.Role = role })
}
