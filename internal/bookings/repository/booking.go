package repository

import (
	bookingserrors "barberbook/internal/bookings/errors"
	"barberbook/pkg/config"
	"barberbook/pkg/model"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	Find(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error)
	FindActiveBySlot(ctx context.Context, stylist, date, clock, excludeID string) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id, status, slotKey string) (*model.Booking, error)
	Update(ctx context.Context, booking *model.Booking) (*model.Booking, error)
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout bounds a store call by timeout, or by the caller's deadline
// when that comes first.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.SlotKey = booking.ActiveSlotKey()

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrSlotTaken
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

// Find returns the bookings matching every non-empty filter field, newest
// first. Ties on created_at fall back to the id, which grows with insertion.
func (r *mongoBookingRepository) Find(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Phone != "" {
		query["phone"] = filter.Phone
	}
	if filter.Date != "" {
		query["date"] = filter.Date
	}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]*model.Booking, 0)
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	if bookings == nil {
		bookings = make([]*model.Booking, 0)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) FindActiveBySlot(ctx context.Context, stylist, date, clock, excludeID string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	query := bson.M{
		"stylist": stylist,
		"date":    date,
		"time":    clock,
		"status":  bson.M{"$in": []string{model.StatusPending, model.StatusConfirmed}},
	}
	if excludeID != "" {
		objectID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, excludeID)
		}
		query["_id"] = bson.M{"$ne": objectID}
	}

	var booking model.Booking
	err := r.collection.FindOne(ctx, query).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check slot: %w", err)
	}
	return &booking, nil
}

// UpdateStatus sets the status and the slot the booking holds afterwards.
// An empty slotKey releases the slot.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id, status, slotKey string) (*model.Booking, error) {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}
	return r.findOneAndUpdate(ctx, id, withSlot(set, slotKey))
}

// Update replaces the editable fields of an existing booking. Status, owner
// and creation time are kept.
func (r *mongoBookingRepository) Update(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	set := bson.M{
		"customer_name": booking.CustomerName,
		"phone":         booking.Phone,
		"service":       booking.Service,
		"stylist":       booking.Stylist,
		"date":          booking.Date,
		"time":          booking.Time,
		"price":         booking.Price,
		"notes":         booking.Notes,
		"updated_at":    time.Now().UTC().Truncate(time.Millisecond),
	}
	return r.findOneAndUpdate(ctx, booking.ID, withSlot(set, booking.ActiveSlotKey()))
}

func withSlot(set bson.M, slotKey string) bson.M {
	if slotKey == "" {
		return bson.M{"$set": set, "$unset": bson.M{"slot_key": ""}}
	}
	set["slot_key"] = slotKey
	return bson.M{"$set": set}
}

func (r *mongoBookingRepository) findOneAndUpdate(ctx context.Context, id string, update bson.M) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated model.Booking
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&updated)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, bookingserrors.ErrNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, bookingserrors.ErrSlotTaken
		default:
			return nil, fmt.Errorf("failed to update booking: %w", err)
		}
	}
	return &updated, nil
}
