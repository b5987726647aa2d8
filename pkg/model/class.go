package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoCapacity            = errors.New("total slots must be at least 1")
	ErrNegativeAvailable     = errors.New("available slots cannot be negative")
	ErrAvailableExceedsTotal = errors.New("available slots cannot exceed total slots")
)

// FitnessClass is the canonical record of a scheduled class and its seat
// capacity. AvailableSlots is only ever mutated through Reserve/Release (in
// memory) or the repository's conditional updates (persisted), never by
// direct assignment elsewhere.
type FitnessClass struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name            string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Instructor      string    `json:"instructor" bson:"instructor" validate:"required,min=2,max=100"`
	StartTime       time.Time `json:"start_time" bson:"start_time" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" bson:"duration_minutes" validate:"required,min=1"`
	TotalSlots      int       `json:"total_slots" bson:"total_slots" validate:"required,min=1"`
	AvailableSlots  int       `json:"available_slots" bson:"available_slots" validate:"min=0"`
	Description     string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=500"`
	CreatedAt       time.Time `json:"created_at,omitempty" bson:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// NewFitnessClass builds a class with a full house of available seats and
// fails fast on invalid capacity or a duration below the configured floor.
// Violated states are rejected here, never clamped.
func NewFitnessClass(name, instructor string, startTime time.Time, durationMinutes, totalSlots int, description string, minDurationMinutes int) (*FitnessClass, error) {
	c := &FitnessClass{
		Name:            name,
		Instructor:      instructor,
		StartTime:       startTime,
		DurationMinutes: durationMinutes,
		TotalSlots:      totalSlots,
		AvailableSlots:  totalSlots,
		Description:     description,
	}
	if err := c.CheckInvariants(minDurationMinutes); err != nil {
		return nil, err
	}
	return c, nil
}

// CheckInvariants verifies the seat-accounting invariants and the duration
// floor. It is called at construction and again before persisting any state
// read back from storage.
func (c *FitnessClass) CheckInvariants(minDurationMinutes int) error {
	if c.TotalSlots < 1 {
		return ErrNoCapacity
	}
	if c.AvailableSlots < 0 {
		return ErrNegativeAvailable
	}
	if c.AvailableSlots > c.TotalSlots {
		return ErrAvailableExceedsTotal
	}
	if c.DurationMinutes < minDurationMinutes {
		return fmt.Errorf("class duration must be at least %d minutes", minDurationMinutes)
	}
	return nil
}

// CanBook reports whether slotsNeeded seats remain.
func (c *FitnessClass) CanBook(slotsNeeded int) bool {
	return c.AvailableSlots >= slotsNeeded
}

// Reserve decrements the available count by slots if capacity remains.
// Returns false with no mutation otherwise. This is a capacity-check
// primitive; the workflow treats the storage layer's conditional update as
// the final authority.
func (c *FitnessClass) Reserve(slots int) bool {
	if !c.CanBook(slots) {
		return false
	}
	c.AvailableSlots -= slots
	return true
}

// Release restores slots seats, refusing to exceed the capacity ceiling.
func (c *FitnessClass) Release(slots int) bool {
	if c.AvailableSlots+slots > c.TotalSlots {
		return false
	}
	c.AvailableSlots += slots
	return true
}

func (c *FitnessClass) IsFull() bool {
	return c.AvailableSlots == 0
}

// BookingPercentage reports how much of the capacity is taken, 0-100.
func (c *FitnessClass) BookingPercentage() float64 {
	if c.TotalSlots == 0 {
		return 0
	}
	return float64(c.TotalSlots-c.AvailableSlots) / float64(c.TotalSlots) * 100
}
