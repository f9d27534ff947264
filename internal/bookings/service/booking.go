package service

import (
	bookingserrors "barberbook/internal/bookings/errors"
	"barberbook/internal/bookings/events"
	"barberbook/internal/bookings/repository"
	"barberbook/internal/bookings/validator"
	"barberbook/pkg/auth"
	"barberbook/pkg/config"
	apperrors "barberbook/pkg/errors"
	"barberbook/pkg/model"
	"barberbook/pkg/sanitizer"
	"context"
	"errors"
	"strings"
)

type BookingService interface {
	List(ctx context.Context, caller *auth.Identity, filter model.BookingFilter) ([]*model.Booking, error)
	Create(ctx context.Context, caller *auth.Identity, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, caller *auth.Identity, id string) (*model.Booking, error)
	UpdateStatus(ctx context.Context, caller *auth.Identity, id string, update *model.StatusUpdate) (*model.Booking, error)
	Update(ctx context.Context, caller *auth.Identity, id string, req *model.BookingRequest) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &bookingService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// List returns the bookings visible to caller. Customers only ever see their
// own; admins may narrow by owner.
func (s *bookingService) List(ctx context.Context, caller *auth.Identity, filter model.BookingFilter) ([]*model.Booking, error) {
	if caller == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	filter.Phone = s.normalizePhone(filter.Phone)
	filter.Date = strings.TrimSpace(filter.Date)
	filter.UserID = strings.TrimSpace(filter.UserID)
	if !caller.IsAdmin() {
		filter.UserID = caller.UserID
	}

	bookings, err := s.repo.Find(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings",
			"user_id", caller.UserID,
			"error", err,
		)
		return nil, apperrors.Storage("Failed to retrieve bookings", err)
	}

	return bookings, nil
}

func (s *bookingService) Create(ctx context.Context, caller *auth.Identity, req *model.BookingRequest) (*model.Booking, error) {
	if caller == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if req == nil {
		return nil, apperrors.InvalidInput("Booking cannot be empty")
	}

	booking := &model.Booking{
		Status: model.StatusPending,
		UserID: caller.UserID,
	}
	booking.FromRequest(req)
	s.sanitize(booking)

	if err := s.validate(booking); err != nil {
		return nil, err
	}
	if err := s.verifySlotAvailable(ctx, booking, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrSlotTaken) {
			s.cfg.Log.Warn("Booking slot taken concurrently",
				"stylist", booking.Stylist,
				"date", booking.Date,
				"time", booking.Time,
			)
			return nil, apperrors.Conflict("Time slot already booked")
		}
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return nil, apperrors.Storage("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"user_id", booking.UserID,
		"stylist", booking.Stylist,
		"date", booking.Date,
		"time", booking.Time,
	)
	s.publish(ctx, events.Event{Type: events.TypeBookingCreated, Booking: booking})

	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, caller *auth.Identity, id string) (*model.Booking, error) {
	if caller == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(id, err)
	}

	if !caller.IsAdmin() && booking.UserID != caller.UserID {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}

	return booking, nil
}

// UpdateStatus confirms or cancels a booking. Customers may only cancel their
// own bookings.
func (s *bookingService) UpdateStatus(ctx context.Context, caller *auth.Identity, id string, update *model.StatusUpdate) (*model.Booking, error) {
	if caller == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if update == nil {
		return nil, apperrors.InvalidInput("Status update cannot be empty")
	}

	update.Status = strings.ToLower(strings.TrimSpace(update.Status))
	if err := s.validator.ValidateStatus(update); err != nil {
		s.cfg.Log.Warn("Booking status validation failed", "id", id, "error", err)
		return nil, validationError(err)
	}

	existing, err := s.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if !caller.IsAdmin() && update.Status != model.StatusCancelled {
		return nil, apperrors.Forbidden("Customers may only cancel their bookings")
	}

	next := *existing
	next.Status = update.Status

	updated, err := s.repo.UpdateStatus(ctx, existing.ID, next.Status, next.ActiveSlotKey())
	if err != nil {
		if errors.Is(err, bookingserrors.ErrSlotTaken) {
			return nil, apperrors.Conflict("Time slot already booked")
		}
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to update booking status", "id", id, "error", err)
		return nil, apperrors.Storage("Failed to update booking status", err)
	}

	s.cfg.Log.Info("Booking status updated",
		"id", updated.ID,
		"from", existing.Status,
		"to", updated.Status,
		"by", caller.UserID,
	)
	s.publish(ctx, events.Event{
		Type:           events.TypeBookingStatusChanged,
		Booking:        updated,
		PreviousStatus: existing.Status,
	})

	return updated, nil
}

// Update replaces the editable fields of a booking. Admin only.
func (s *bookingService) Update(ctx context.Context, caller *auth.Identity, id string, req *model.BookingRequest) (*model.Booking, error) {
	if caller == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if !caller.IsAdmin() {
		return nil, apperrors.Forbidden("Only admins may edit bookings")
	}
	if req == nil {
		return nil, apperrors.InvalidInput("Booking cannot be empty")
	}

	existing, err := s.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	merged := *existing
	merged.FromRequest(req)
	s.sanitize(&merged)

	if err := s.validate(&merged); err != nil {
		return nil, err
	}
	if err := s.verifySlotAvailable(ctx, &merged, existing.ID); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, &merged)
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrSlotTaken):
			return nil, apperrors.Conflict("Time slot already booked")
		case errors.Is(err, bookingserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
		return nil, apperrors.Storage("Failed to update booking", err)
	}

	s.cfg.Log.Info("Booking updated successfully", "id", updated.ID, "by", caller.UserID)
	s.publish(ctx, events.Event{Type: events.TypeBookingUpdated, Booking: updated})

	return updated, nil
}

// verifySlotAvailable reports a conflict when another active booking holds
// the same stylist, date and time. It performs no write.
func (s *bookingService) verifySlotAvailable(ctx context.Context, booking *model.Booking, excludeID string) error {
	if booking.ActiveSlotKey() == "" {
		return nil
	}

	existing, err := s.repo.FindActiveBySlot(ctx, booking.Stylist, booking.Date, booking.Time, excludeID)
	if err != nil {
		s.cfg.Log.Error("Failed to check slot availability", "error", err)
		return apperrors.Storage("Failed to check slot availability", err)
	}
	if existing != nil {
		s.cfg.Log.Info("Booking slot already taken",
			"existing_id", existing.ID,
			"stylist", booking.Stylist,
			"date", booking.Date,
			"time", booking.Time,
		)
		return apperrors.Conflict("Time slot already booked")
	}
	return nil
}

func (s *bookingService) translateLookupError(id string, err error) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound), errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.NotFoundWithID("Booking", id)
	default:
		s.cfg.Log.Error("Failed to retrieve booking", "id", id, "error", err)
		return apperrors.Storage("Failed to retrieve booking", err)
	}
}

func (s *bookingService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"type", event.Type,
			"id", event.Booking.ID,
			"error", err,
		)
	}
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return apperrors.Validation("Invalid booking", validationErrs.Details())
	}
	return apperrors.Validation("Invalid booking", map[string]any{"error": err.Error()})
}

func (s *bookingService) sanitize(booking *model.Booking) {
	booking.CustomerName = sanitizer.NormalizeName(booking.CustomerName)
	booking.Phone = s.normalizePhone(booking.Phone)
	booking.Service = sanitizer.TrimAndNormalize(booking.Service)
	booking.Stylist = sanitizer.TrimAndNormalize(booking.Stylist)
	booking.Date = strings.TrimSpace(booking.Date)
	booking.Time = strings.TrimSpace(booking.Time)
	booking.Notes = strings.TrimSpace(booking.Notes)
}

func (s *bookingService) normalizePhone(phone string) string {
	return sanitizer.NormalizePhone(phone, s.cfg.DefaultPhoneRegion)
}
