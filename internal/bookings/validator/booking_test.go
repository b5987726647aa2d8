package validator

import (
	"strings"
	"testing"

	"fitbook/pkg/logger"
	"fitbook/pkg/model"
)

func newTestValidator(t *testing.T) *BookingValidator {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Service: "test"})
	return NewBookingValidator(log)
}

func validBooking() *model.Booking {
	return &model.Booking{
		ClassID:     "64f0c1d2e3a4b5c6d7e8f901",
		ClientName:  "Jane Doe",
		ClientEmail: "jane@example.com",
		Status:      model.StatusConfirmed,
	}
}

func TestValidateAcceptsWellFormedBooking(t *testing.T) {
	v := newTestValidator(t)

	if err := v.Validate(validBooking()); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name   string
		mutate func(*model.Booking)
		field  string
	}{
		{"bad class id", func(b *model.Booking) { b.ClassID = "not-an-oid" }, "ClassID"},
		{"missing name", func(b *model.Booking) { b.ClientName = "" }, "ClientName"},
		{"short name", func(b *model.Booking) { b.ClientName = "J" }, "ClientName"},
		{"bad email", func(b *model.Booking) { b.ClientEmail = "not-an-email" }, "ClientEmail"},
		{"unknown status", func(b *model.Booking) { b.Status = "waitlisted" }, "Status"},
		{"digits in name", func(b *model.Booking) { b.ClientName = "Jane 2 Doe" }, "ClientName"},
		{"double spaces", func(b *model.Booking) { b.ClientName = "Jane  Doe" }, "ClientName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBooking()
			tt.mutate(b)

			err := v.Validate(b)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error mentioning %s, got: %v", tt.field, err)
			}
		})
	}
}
