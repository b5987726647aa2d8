package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "fitbook/pkg/errors"
	"fitbook/pkg/logger"
	"fitbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockBookingService struct {
	createFunc     func(ctx context.Context, classID, clientName, clientEmail string) (*model.Booking, error)
	getByIDFunc    func(ctx context.Context, id string) (*model.Booking, error)
	getByEmailFunc func(ctx context.Context, email string, includeCancelled bool) ([]*model.Booking, error)
	cancelFunc     func(ctx context.Context, id string) (bool, error)
	statsFunc      func(ctx context.Context) (*model.BookingStats, error)
}

func (m *mockBookingService) Create(ctx context.Context, classID, clientName, clientEmail string) (*model.Booking, error) {
	return m.createFunc(ctx, classID, clientName, clientEmail)
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockBookingService) GetByEmail(ctx context.Context, email string, includeCancelled bool) ([]*model.Booking, error) {
	return m.getByEmailFunc(ctx, email, includeCancelled)
}

func (m *mockBookingService) GetByClass(ctx context.Context, classID string) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, id string) (bool, error) {
	return m.cancelFunc(ctx, id)
}

func (m *mockBookingService) Stats(ctx context.Context) (*model.BookingStats, error) {
	return m.statsFunc(ctx)
}

func newTestRouter(svc *mockBookingService) *httprouter.Router {
	log := logger.New(logger.Config{Level: "error", Service: "test"})
	router := httprouter.New()
	NewBookingHandler(svc, log).RegisterRoutes(router)
	return router
}

func TestCreateBookingEndpoint(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, classID, clientName, clientEmail string) (*model.Booking, error) {
			return &model.Booking{ID: "b1", ClassID: classID, ClientName: clientName, ClientEmail: clientEmail, Status: model.StatusConfirmed}, nil
		},
	}
	router := newTestRouter(svc)

	body := `{"class_id":"64f0c1d2e3a4b5c6d7e8f901","client_name":"Jane Doe","client_email":"jane@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateBookingRejectsMalformedBody(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateBookingDuplicateConflict(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, classID, clientName, clientEmail string) (*model.Booking, error) {
			return nil, apperrors.DuplicateBooking(classID, clientEmail)
		},
	}
	router := newTestRouter(svc)

	body := `{"class_id":"64f0c1d2e3a4b5c6d7e8f901","client_name":"Jane Doe","client_email":"jane@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != apperrors.CodeDuplicateBooking {
		t.Errorf("expected code %s, got %s", apperrors.CodeDuplicateBooking, resp.Code)
	}
}

func TestGetBookingsByEmailQuery(t *testing.T) {
	var gotEmail string
	var gotIncludeCancelled bool
	svc := &mockBookingService{
		getByEmailFunc: func(ctx context.Context, email string, includeCancelled bool) ([]*model.Booking, error) {
			gotEmail = email
			gotIncludeCancelled = includeCancelled
			return []*model.Booking{}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?email=jane@example.com&include_cancelled=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotEmail != "jane@example.com" || !gotIncludeCancelled {
		t.Errorf("query parameters not forwarded: email=%q include_cancelled=%v", gotEmail, gotIncludeCancelled)
	}
}

func TestCancelBookingOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		cancelFunc func(ctx context.Context, id string) (bool, error)
		wantStatus int
	}{
		{
			name: "cancelled",
			cancelFunc: func(ctx context.Context, id string) (bool, error) {
				return true, nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "already cancelled",
			cancelFunc: func(ctx context.Context, id string) (bool, error) {
				return false, nil
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown booking",
			cancelFunc: func(ctx context.Context, id string) (bool, error) {
				return false, apperrors.BookingNotFound(id)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&mockBookingService{cancelFunc: tt.cancelFunc})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/64f0c1d2e3a4b5c6d7e8f902/cancel", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestBookingStatsEndpoint(t *testing.T) {
	svc := &mockBookingService{
		statsFunc: func(ctx context.Context) (*model.BookingStats, error) {
			return &model.BookingStats{TotalBookings: 2, ConfirmedBookings: 1, CancelledBookings: 1, UniqueClients: 2, ConfirmationRate: 50, CancellationRate: 50}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data model.BookingStats `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.TotalBookings != 2 || resp.Data.ConfirmationRate != 50 {
		t.Errorf("unexpected stats payload: %+v", resp.Data)
	}
}
