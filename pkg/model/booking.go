package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Booking is one client's reservation against a class. The class_name,
// class_start_time and instructor fields are display snapshots captured at
// booking time; they are not reconciled if the class is later edited.
type Booking struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ClassID     string    `json:"class_id" bson:"class_id" validate:"required,mongodb"`
	ClientName  string    `json:"client_name" bson:"client_name" validate:"required,min=2,max=100"`
	ClientEmail string    `json:"client_email" bson:"client_email" validate:"required,email"`
	BookingTime time.Time `json:"booking_time" bson:"booking_time"`
	Status      string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	CreatedAt   time.Time `json:"created_at,omitempty" bson:"created_at,omitempty"`

	ClassName      string     `json:"class_name,omitempty" bson:"class_name,omitempty"`
	ClassStartTime *time.Time `json:"class_start_time,omitempty" bson:"class_start_time,omitempty"`
	Instructor     string     `json:"instructor,omitempty" bson:"instructor,omitempty"`
}

// NewBooking builds a confirmed booking and rejects empty client fields or a
// status outside the closed set.
func NewBooking(classID, clientName, clientEmail, status string) (*Booking, error) {
	if status == "" {
		status = StatusConfirmed
	}
	if !ValidStatus(status) {
		return nil, fmt.Errorf("status must be one of: %s, %s, %s", StatusConfirmed, StatusCancelled, StatusPending)
	}
	if strings.TrimSpace(clientName) == "" {
		return nil, fmt.Errorf("client name cannot be empty")
	}
	if strings.TrimSpace(clientEmail) == "" {
		return nil, fmt.Errorf("client email cannot be empty")
	}
	return &Booking{
		ClassID:     classID,
		ClientName:  strings.TrimSpace(clientName),
		ClientEmail: strings.ToLower(strings.TrimSpace(clientEmail)),
		BookingTime: time.Now().UTC(),
		Status:      status,
	}, nil
}

func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether the booking counts against class capacity.
func (b *Booking) IsActive() bool {
	return b.Status == StatusConfirmed
}

// Cancel transitions confirmed → cancelled. Any other starting state is a
// no-op returning false; there is no un-cancel path.
func (b *Booking) Cancel() bool {
	if b.Status != StatusConfirmed {
		return false
	}
	b.Status = StatusCancelled
	return true
}

// Confirm transitions pending → confirmed.
func (b *Booking) Confirm() bool {
	if b.Status != StatusPending {
		return false
	}
	b.Status = StatusConfirmed
	return true
}

// BookingStats aggregates the full booking set, cancelled included.
type BookingStats struct {
	TotalBookings     int     `json:"total_bookings"`
	ConfirmedBookings int     `json:"confirmed_bookings"`
	CancelledBookings int     `json:"cancelled_bookings"`
	PendingBookings   int     `json:"pending_bookings"`
	UniqueClients     int     `json:"unique_clients"`
	ConfirmationRate  float64 `json:"confirmation_rate"`
	CancellationRate  float64 `json:"cancellation_rate"`
}

// ClassStats aggregates the class catalog.
type ClassStats struct {
	TotalClasses       int     `json:"total_classes"`
	UpcomingClasses    int     `json:"upcoming_classes"`
	TotalCapacity      int     `json:"total_capacity"`
	TotalBooked        int     `json:"total_booked"`
	AvailableSlots     int     `json:"available_slots"`
	FullyBookedClasses int     `json:"fully_booked_classes"`
	UtilizationRate    float64 `json:"utilization_rate"`
	FullBookingRate    float64 `json:"full_booking_rate"`
}
