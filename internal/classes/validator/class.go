package validator

import (
	"fmt"
	"strings"
	"time"

	"fitbook/pkg/config"
	"fitbook/pkg/logger"
	"fitbook/pkg/sanitizer"
)

// acceptedLayouts are the datetime shapes the catalog API takes for class
// start times, tried in order.
var acceptedLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

type ClassValidator struct {
	cfg *config.Config
	log *logger.Logger
}

func NewClassValidator(cfg *config.Config, log *logger.Logger) *ClassValidator {
	return &ClassValidator{cfg: cfg, log: log}
}

// ParseStartTime parses a class start time. Layouts without a zone are
// interpreted in the configured default timezone.
func (v *ClassValidator) ParseStartTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("start time is required")
	}

	for _, layout := range acceptedLayouts {
		if layout == time.RFC3339 {
			if t, err := time.Parse(layout, value); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, value, v.cfg.Location()); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid datetime format: %s, expected RFC3339 or YYYY-MM-DD HH:MM[:SS]", value)
}

// ValidateSchedule enforces the advance-booking floor and the business-hours
// window on a class start time.
func (v *ClassValidator) ValidateSchedule(startTime time.Time) error {
	now := time.Now()
	if !startTime.After(now) {
		return fmt.Errorf("start time must be in the future")
	}

	minStart := now.Add(time.Duration(v.cfg.BookingAdvanceHours) * time.Hour)
	if startTime.Before(minStart) {
		return fmt.Errorf("class must be scheduled at least %d hour(s) in advance", v.cfg.BookingAdvanceHours)
	}

	if !v.cfg.IsBusinessHours(startTime) {
		return fmt.Errorf("class time %s is outside business hours (%02d:00 - %02d:00)",
			startTime.In(v.cfg.Location()).Format("15:04"), v.cfg.BusinessStartHour, v.cfg.BusinessEndHour)
	}

	return nil
}

// ValidateClassData checks the catalog fields against the configured limits
// and returns the normalized name and instructor.
func (v *ClassValidator) ValidateClassData(name, instructor string, durationMinutes, totalSlots int) (string, string, error) {
	name = sanitizer.NormalizeName(name)
	instructor = sanitizer.NormalizeName(instructor)

	if len(name) < 2 || len(name) > 100 {
		return "", "", fmt.Errorf("name must be between 2 and 100 characters")
	}
	if len(instructor) < 2 || len(instructor) > 100 {
		return "", "", fmt.Errorf("instructor must be between 2 and 100 characters")
	}
	if durationMinutes < v.cfg.MinClassDuration {
		return "", "", fmt.Errorf("duration must be at least %d minutes", v.cfg.MinClassDuration)
	}
	if durationMinutes > v.cfg.MaxClassDuration {
		return "", "", fmt.Errorf("duration must be at most %d minutes", v.cfg.MaxClassDuration)
	}
	if totalSlots < 1 {
		return "", "", fmt.Errorf("total slots must be at least 1")
	}
	if totalSlots > v.cfg.MaxClassCapacity {
		return "", "", fmt.Errorf("total slots must be at most %d", v.cfg.MaxClassCapacity)
	}

	return name, instructor, nil
}
