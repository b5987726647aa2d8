package service

import (
	"context"
	"errors"
	"time"

	bookingrepository "fitbook/internal/bookings/repository"
	classerrors "fitbook/internal/classes/errors"
	"fitbook/internal/classes/repository"
	"fitbook/internal/classes/validator"
	"fitbook/pkg/config"
	apperrors "fitbook/pkg/errors"
	"fitbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClassWithBookings is the enriched catalog view: the class record plus its
// confirmed bookings and derived occupancy figures.
type ClassWithBookings struct {
	Class             *model.FitnessClass `json:"class"`
	Bookings          []*model.Booking    `json:"bookings"`
	IsFull            bool                `json:"is_full"`
	BookingPercentage float64             `json:"booking_percentage"`
}

type ClassService interface {
	Create(ctx context.Context, name, instructor, startTime string, durationMinutes, totalSlots int, description string) (*model.FitnessClass, error)
	GetByID(ctx context.Context, id string) (*model.FitnessClass, error)
	GetAll(ctx context.Context, includePast bool) ([]*model.FitnessClass, error)
	GetUpcoming(ctx context.Context, hoursAhead int) ([]*model.FitnessClass, error)
	GetByInstructor(ctx context.Context, instructor string) ([]*model.FitnessClass, error)
	GetAvailable(ctx context.Context) ([]*model.FitnessClass, error)
	UpdateSlots(ctx context.Context, id string, availableSlots int) (*model.FitnessClass, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*model.ClassStats, error)
	WithBookingInfo(ctx context.Context, id string) (*ClassWithBookings, error)
}

type classService struct {
	repo        repository.ClassRepository
	bookingRepo bookingrepository.BookingRepository
	validator   *validator.ClassValidator
	cfg         *config.Config
}

func NewClassService(
	repo repository.ClassRepository,
	bookingRepo bookingrepository.BookingRepository,
	classValidator *validator.ClassValidator,
	cfg *config.Config,
) ClassService {
	return &classService{
		repo:        repo,
		bookingRepo: bookingRepo,
		validator:   classValidator,
		cfg:         cfg,
	}
}

func (s *classService) Create(ctx context.Context, name, instructor, startTime string, durationMinutes, totalSlots int, description string) (*model.FitnessClass, error) {
	parsedStart, err := s.validator.ParseStartTime(startTime)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), map[string]any{"start_time": startTime})
	}
	if err := s.validator.ValidateSchedule(parsedStart); err != nil {
		return nil, apperrors.Validation(err.Error(), map[string]any{"start_time": startTime})
	}

	name, instructor, err = s.validator.ValidateClassData(name, instructor, durationMinutes, totalSlots)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), nil)
	}

	class, err := model.NewFitnessClass(name, instructor, parsedStart, durationMinutes, totalSlots, description, s.cfg.MinClassDuration)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), nil)
	}

	if err := s.repo.Create(ctx, class); err != nil {
		return nil, apperrors.Database("Failed to create class", "create_class", err)
	}

	s.cfg.Log.Info("Class created successfully",
		"id", class.ID,
		"name", class.Name,
		"instructor", class.Instructor,
		"start_time", class.StartTime,
		"total_slots", class.TotalSlots,
	)
	return class, nil
}

func (s *classService) GetByID(ctx context.Context, id string) (*model.FitnessClass, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, classerrors.ErrNotFound) || errors.Is(err, classerrors.ErrInvalidID) {
			return nil, apperrors.ClassNotFound(id)
		}
		return nil, apperrors.Database("Failed to retrieve class", "get_class_by_id", err)
	}
	return class, nil
}

func (s *classService) GetAll(ctx context.Context, includePast bool) ([]*model.FitnessClass, error) {
	classes, err := s.repo.FindAll(ctx, includePast)
	if err != nil {
		return nil, apperrors.Database("Failed to retrieve classes", "get_all_classes", err)
	}
	return classes, nil
}

func (s *classService) GetUpcoming(ctx context.Context, hoursAhead int) ([]*model.FitnessClass, error) {
	if hoursAhead <= 0 {
		return nil, apperrors.Validation("Hours ahead must be positive", map[string]any{"hours": hoursAhead})
	}

	classes, err := s.repo.FindUpcoming(ctx, hoursAhead)
	if err != nil {
		return nil, apperrors.Database("Failed to retrieve upcoming classes", "get_upcoming_classes", err)
	}
	return classes, nil
}

func (s *classService) GetByInstructor(ctx context.Context, instructor string) ([]*model.FitnessClass, error) {
	if instructor == "" {
		return nil, apperrors.Validation("Instructor name is required", nil)
	}

	classes, err := s.repo.FindByInstructor(ctx, instructor)
	if err != nil {
		return nil, apperrors.Database("Failed to retrieve classes by instructor", "get_classes_by_instructor", err)
	}
	return classes, nil
}

// GetAvailable lists upcoming classes that still have a free seat.
func (s *classService) GetAvailable(ctx context.Context) ([]*model.FitnessClass, error) {
	classes, err := s.repo.FindAll(ctx, false)
	if err != nil {
		return nil, apperrors.Database("Failed to retrieve classes", "get_available_classes", err)
	}

	available := make([]*model.FitnessClass, 0, len(classes))
	for _, class := range classes {
		if !class.IsFull() {
			available = append(available, class)
		}
	}
	return available, nil
}

// UpdateSlots sets a class's available count to an absolute value, bounded
// by 0..total_slots. It is an operator tool; the booking workflow never
// adjusts slots through this path.
func (s *classService) UpdateSlots(ctx context.Context, id string, availableSlots int) (*model.FitnessClass, error) {
	class, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if availableSlots < 0 {
		return nil, apperrors.Validation("Available slots cannot be negative", map[string]any{"available_slots": availableSlots})
	}
	if availableSlots > class.TotalSlots {
		return nil, apperrors.Validation("Available slots cannot exceed total slots", map[string]any{
			"available_slots": availableSlots,
			"total_slots":     class.TotalSlots,
		})
	}

	if err := s.repo.UpdateSlots(ctx, id, availableSlots); err != nil {
		if errors.Is(err, classerrors.ErrNotFound) {
			return nil, apperrors.ClassNotFound(id)
		}
		return nil, apperrors.Database("Failed to update class slots", "update_class_slots", err)
	}

	class.AvailableSlots = availableSlots
	s.cfg.Log.Info("Class slots updated", "id", id, "available_slots", availableSlots)
	return class, nil
}

// Delete removes a class from the catalog, refusing while confirmed bookings
// still point at it.
func (s *classService) Delete(ctx context.Context, id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return apperrors.Validation("Invalid class ID format", map[string]any{"class_id": id})
	}

	count, err := s.bookingRepo.CountConfirmedByClass(ctx, id)
	if err != nil {
		return apperrors.Database("Failed to count class bookings", "count_bookings_by_class", err)
	}
	if count > 0 {
		return apperrors.Validation("Cannot delete class with confirmed bookings", map[string]any{
			"class_id":           id,
			"confirmed_bookings": count,
		})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, classerrors.ErrNotFound) {
			return apperrors.ClassNotFound(id)
		}
		return apperrors.Database("Failed to delete class", "delete_class", err)
	}

	s.cfg.Log.Info("Class deleted", "id", id)
	return nil
}

func (s *classService) Stats(ctx context.Context) (*model.ClassStats, error) {
	classes, err := s.repo.FindAll(ctx, true)
	if err != nil {
		return nil, apperrors.Database("Failed to retrieve classes", "get_all_classes", err)
	}

	now := time.Now()
	stats := &model.ClassStats{TotalClasses: len(classes)}
	for _, class := range classes {
		if class.StartTime.After(now) {
			stats.UpcomingClasses++
		}
		stats.TotalCapacity += class.TotalSlots
		stats.TotalBooked += class.TotalSlots - class.AvailableSlots
		stats.AvailableSlots += class.AvailableSlots
		if class.IsFull() {
			stats.FullyBookedClasses++
		}
	}

	if stats.TotalCapacity > 0 {
		stats.UtilizationRate = float64(stats.TotalBooked) / float64(stats.TotalCapacity) * 100
	}
	if stats.TotalClasses > 0 {
		stats.FullBookingRate = float64(stats.FullyBookedClasses) / float64(stats.TotalClasses) * 100
	}

	return stats, nil
}

func (s *classService) WithBookingInfo(ctx context.Context, id string) (*ClassWithBookings, error) {
	class, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookingRepo.FindByClass(ctx, id)
	if err != nil {
		return nil, apperrors.Database("Failed to retrieve class bookings", "get_bookings_by_class", err)
	}

	return &ClassWithBookings{
		Class:             class,
		Bookings:          bookings,
		IsFull:            class.IsFull(),
		BookingPercentage: class.BookingPercentage(),
	}, nil
}
