package service

import (
	"context"
	"errors"

	bookingserrors "fitbook/internal/bookings/errors"
	"fitbook/internal/bookings/repository"
	"fitbook/internal/bookings/validator"
	classerrors "fitbook/internal/classes/errors"
	classrepository "fitbook/internal/classes/repository"
	"fitbook/pkg/config"
	apperrors "fitbook/pkg/errors"
	"fitbook/pkg/events"
	"fitbook/pkg/model"
	"fitbook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Create(ctx context.Context, classID, clientName, clientEmail string) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetByEmail(ctx context.Context, email string, includeCancelled bool) ([]*model.Booking, error)
	GetByClass(ctx context.Context, classID string) ([]*model.Booking, error)
	Cancel(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (*model.BookingStats, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	classRepo classrepository.ClassRepository
	validator *validator.BookingValidator
	publisher *events.Publisher
	cfg       *config.Config
}

// NewBookingService wires the booking workflow. publisher may be nil, in
// which case no lifecycle events are emitted.
func NewBookingService(
	repo repository.BookingRepository,
	classRepo classrepository.ClassRepository,
	bookingValidator *validator.BookingValidator,
	publisher *events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		classRepo: classRepo,
		validator: bookingValidator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Create books one seat for a client. Preconditions are checked in a fixed
// order (id format, class existence, capacity, duplicate) so the error a
// caller sees is deterministic when several would apply. The booking insert
// and the seat decrement then run in one transaction; the conditional
// decrement's matched count is the final authority on remaining capacity, not
// the earlier read.
func (s *bookingService) Create(ctx context.Context, classID, clientName, clientEmail string) (*model.Booking, error) {
	if _, err := primitive.ObjectIDFromHex(classID); err != nil {
		return nil, apperrors.Validation("Invalid class ID format", map[string]any{"class_id": classID})
	}

	clientEmail = sanitizer.NormalizeEmail(clientEmail)
	clientName = sanitizer.NormalizeName(clientName)

	class, err := s.classRepo.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, classerrors.ErrNotFound) {
			return nil, apperrors.ClassNotFound(classID)
		}
		return nil, apperrors.Database("Failed to retrieve class", "get_class_by_id", err)
	}

	if !class.CanBook(1) {
		return nil, apperrors.Validation("No available slots for this class", map[string]any{"class_id": classID})
	}

	duplicate, err := s.repo.ExistsConfirmed(ctx, classID, clientEmail)
	if err != nil {
		return nil, apperrors.Database("Failed to check duplicate booking", "check_duplicate_booking", err)
	}
	if duplicate {
		return nil, apperrors.DuplicateBooking(classID, clientEmail)
	}

	booking, err := model.NewBooking(classID, clientName, clientEmail, model.StatusConfirmed)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), nil)
	}
	booking.ClassName = class.Name
	classStart := class.StartTime
	booking.ClassStartTime = &classStart
	booking.Instructor = class.Instructor

	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Create(sessCtx, booking); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return apperrors.DuplicateBooking(classID, clientEmail)
			}
			return apperrors.Database("Failed to create booking", "create_booking", err)
		}

		reserved, err := s.classRepo.DecrementAvailableSlots(sessCtx, classID)
		if err != nil {
			return apperrors.Database("Failed to update class slots", "decrement_available_slots", err)
		}
		if !reserved {
			// Seat taken between the check and the commit; abort so the
			// booking insert rolls back with it.
			return apperrors.Validation("No available slots for this class", map[string]any{"class_id": classID})
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "class_id", classID, "client_email", clientEmail, "error", err)
		return nil, err
	}

	s.publish(ctx, events.TypeBookingCreated, booking)

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"class_id", classID,
		"client_email", clientEmail,
	)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.BookingNotFound(id)
		}
		return nil, apperrors.Database("Failed to retrieve booking", "get_booking_by_id", err)
	}
	return booking, nil
}

func (s *bookingService) GetByEmail(ctx context.Context, email string, includeCancelled bool) ([]*model.Booking, error) {
	email = sanitizer.NormalizeEmail(email)
	if email == "" {
		return nil, apperrors.Validation("Email address is required", nil)
	}

	bookings, err := s.repo.FindByEmail(ctx, email, includeCancelled)
	if err != nil {
		return nil, apperrors.Database("Failed to retrieve bookings", "get_bookings_by_email", err)
	}

	s.cfg.Log.Info("Retrieved bookings by email", "client_email", email, "count", len(bookings))
	return bookings, nil
}

func (s *bookingService) GetByClass(ctx context.Context, classID string) ([]*model.Booking, error) {
	if _, err := s.classRepo.FindByID(ctx, classID); err != nil {
		if errors.Is(err, classerrors.ErrNotFound) || errors.Is(err, classerrors.ErrInvalidID) {
			return nil, apperrors.ClassNotFound(classID)
		}
		return nil, apperrors.Database("Failed to retrieve class", "get_class_by_id", err)
	}

	bookings, err := s.repo.FindByClass(ctx, classID)
	if err != nil {
		return nil, apperrors.Database("Failed to retrieve class bookings", "get_bookings_by_class", err)
	}
	return bookings, nil
}

// Cancel transitions a confirmed booking to cancelled and restores its seat.
// Not-found is an error; found-but-not-confirmed returns a quiet false. The
// seat is restored only when the status transition actually happened, so
// cancelling twice can never release two seats.
func (s *bookingService) Cancel(ctx context.Context, id string) (bool, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			return false, apperrors.BookingNotFound(id)
		}
		return false, apperrors.Database("Failed to retrieve booking", "get_booking_by_id", err)
	}

	matched, err := s.repo.UpdateStatus(ctx, id, model.StatusConfirmed, model.StatusCancelled)
	if err != nil {
		return false, apperrors.Database("Failed to cancel booking", "cancel_booking", err)
	}
	if matched == 0 {
		// Already cancelled (possibly concurrently) or never confirmed.
		return false, nil
	}

	restored, err := s.classRepo.IncrementAvailableSlots(ctx, booking.ClassID)
	if err != nil {
		if errors.Is(err, classerrors.ErrInvalidID) {
			restored = false
		} else {
			return false, apperrors.Database("Failed to restore class slot", "increment_available_slots", err)
		}
	}
	if !restored {
		// The class may have been deleted since booking; the cancellation
		// stands and no seat is restored anywhere.
		s.cfg.Log.Warn("Cancelled booking without restoring a seat",
			"booking_id", id,
			"class_id", booking.ClassID,
		)
	}

	s.publish(ctx, events.TypeBookingCancelled, booking)

	s.cfg.Log.Info("Booking cancelled successfully", "id", id, "class_id", booking.ClassID)
	return true, nil
}

func (s *bookingService) Stats(ctx context.Context) (*model.BookingStats, error) {
	bookings, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Database("Failed to retrieve bookings", "get_all_bookings", err)
	}

	stats := &model.BookingStats{TotalBookings: len(bookings)}
	clients := make(map[string]struct{})
	for _, b := range bookings {
		switch b.Status {
		case model.StatusConfirmed:
			stats.ConfirmedBookings++
		case model.StatusCancelled:
			stats.CancelledBookings++
		case model.StatusPending:
			stats.PendingBookings++
		}
		clients[b.ClientEmail] = struct{}{}
	}
	stats.UniqueClients = len(clients)

	if stats.TotalBookings > 0 {
		stats.ConfirmationRate = float64(stats.ConfirmedBookings) / float64(stats.TotalBookings) * 100
		stats.CancellationRate = float64(stats.CancelledBookings) / float64(stats.TotalBookings) * 100
	}

	return stats, nil
}

func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, booking.ID, booking.ClassID, booking.ClientEmail); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
