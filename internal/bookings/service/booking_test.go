package service

import (
	"context"
	"errors"
	"testing"
	"time"

	bookingserrors "fitbook/internal/bookings/errors"
	"fitbook/internal/bookings/validator"
	classerrors "fitbook/internal/classes/errors"
	"fitbook/pkg/config"
	mongotx "fitbook/pkg/db/mongo"
	apperrors "fitbook/pkg/errors"
	"fitbook/pkg/logger"
	"fitbook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testClassID   = "64f0c1d2e3a4b5c6d7e8f901"
	testBookingID = "64f0c1d2e3a4b5c6d7e8f902"
)

type mockBookingRepository struct {
	createFunc             func(ctx context.Context, booking *model.Booking) error
	findByIDFunc           func(ctx context.Context, id string) (*model.Booking, error)
	findByEmailFunc        func(ctx context.Context, email string, includeCancelled bool) ([]*model.Booking, error)
	findByClassFunc        func(ctx context.Context, classID string) ([]*model.Booking, error)
	findAllFunc            func(ctx context.Context) ([]*model.Booking, error)
	updateStatusFunc       func(ctx context.Context, id, expectedStatus, newStatus string) (int64, error)
	existsConfirmedFunc    func(ctx context.Context, classID, email string) (bool, error)
	countConfirmedFunc     func(ctx context.Context, classID string) (int64, error)
	ensureIndexesFunc      func(ctx context.Context) error
	executeTransactionFunc func(ctx context.Context, fn mongotx.TransactionFunc) error
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return m.createFunc(ctx, booking)
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockBookingRepository) FindByEmail(ctx context.Context, email string, includeCancelled bool) ([]*model.Booking, error) {
	return m.findByEmailFunc(ctx, email, includeCancelled)
}

func (m *mockBookingRepository) FindByClass(ctx context.Context, classID string) ([]*model.Booking, error) {
	return m.findByClassFunc(ctx, classID)
}

func (m *mockBookingRepository) FindAll(ctx context.Context) ([]*model.Booking, error) {
	return m.findAllFunc(ctx)
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id, expectedStatus, newStatus string) (int64, error) {
	return m.updateStatusFunc(ctx, id, expectedStatus, newStatus)
}

func (m *mockBookingRepository) ExistsConfirmed(ctx context.Context, classID, email string) (bool, error) {
	return m.existsConfirmedFunc(ctx, classID, email)
}

func (m *mockBookingRepository) CountConfirmedByClass(ctx context.Context, classID string) (int64, error) {
	return m.countConfirmedFunc(ctx, classID)
}

func (m *mockBookingRepository) EnsureIndexes(ctx context.Context) error {
	return m.ensureIndexesFunc(ctx)
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if m.executeTransactionFunc != nil {
		return m.executeTransactionFunc(ctx, fn)
	}
	return fn(nil)
}

type mockClassRepository struct {
	createFunc           func(ctx context.Context, class *model.FitnessClass) error
	findByIDFunc         func(ctx context.Context, id string) (*model.FitnessClass, error)
	findAllFunc          func(ctx context.Context, includePast bool) ([]*model.FitnessClass, error)
	findUpcomingFunc     func(ctx context.Context, hoursAhead int) ([]*model.FitnessClass, error)
	findByInstructorFunc func(ctx context.Context, instructor string) ([]*model.FitnessClass, error)
	updateSlotsFunc      func(ctx context.Context, id string, availableSlots int) error
	decrementFunc        func(ctx context.Context, id string) (bool, error)
	incrementFunc        func(ctx context.Context, id string) (bool, error)
	deleteFunc           func(ctx context.Context, id string) error
	ensureIndexesFunc    func(ctx context.Context) error
}

func (m *mockClassRepository) Create(ctx context.Context, class *model.FitnessClass) error {
	return m.createFunc(ctx, class)
}

func (m *mockClassRepository) FindByID(ctx context.Context, id string) (*model.FitnessClass, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockClassRepository) FindAll(ctx context.Context, includePast bool) ([]*model.FitnessClass, error) {
	return m.findAllFunc(ctx, includePast)
}

func (m *mockClassRepository) FindUpcoming(ctx context.Context, hoursAhead int) ([]*model.FitnessClass, error) {
	return m.findUpcomingFunc(ctx, hoursAhead)
}

func (m *mockClassRepository) FindByInstructor(ctx context.Context, instructor string) ([]*model.FitnessClass, error) {
	return m.findByInstructorFunc(ctx, instructor)
}

func (m *mockClassRepository) UpdateSlots(ctx context.Context, id string, availableSlots int) error {
	return m.updateSlotsFunc(ctx, id, availableSlots)
}

func (m *mockClassRepository) DecrementAvailableSlots(ctx context.Context, id string) (bool, error) {
	return m.decrementFunc(ctx, id)
}

func (m *mockClassRepository) IncrementAvailableSlots(ctx context.Context, id string) (bool, error) {
	return m.incrementFunc(ctx, id)
}

func (m *mockClassRepository) Delete(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockClassRepository) EnsureIndexes(ctx context.Context) error {
	return m.ensureIndexesFunc(ctx)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Log: logger.New(logger.Config{Level: "error", Service: "test"}),
	}
}

func newTestService(t *testing.T, repo *mockBookingRepository, classRepo *mockClassRepository) BookingService {
	t.Helper()
	cfg := testConfig(t)
	return NewBookingService(repo, classRepo, validator.NewBookingValidator(cfg.Log), nil, cfg)
}

func testClass(available int) *model.FitnessClass {
	return &model.FitnessClass{
		ID:              testClassID,
		Name:            "Morning Yoga",
		Instructor:      "Priya Sharma",
		StartTime:       time.Now().Add(24 * time.Hour),
		DurationMinutes: 60,
		TotalSlots:      1,
		AvailableSlots:  available,
	}
}

func expectAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if !apperrors.IsAppError(err) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != code {
		t.Fatalf("expected error code %s, got %s", code, appErr.Code)
	}
}

// Walks the full slot lifecycle on a one-seat class: Jane books the last
// seat, a repeat attempt conflicts, Bob is turned away, Jane cancels, and
// Bob takes the freed seat.
func TestBookingLifecycleOnSingleSeatClass(t *testing.T) {
	ctx := context.Background()

	available := 1
	confirmed := map[string]bool{}
	var stored *model.Booking

	classRepo := &mockClassRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.FitnessClass, error) {
			return testClass(available), nil
		},
		decrementFunc: func(ctx context.Context, id string) (bool, error) {
			if available <= 0 {
				return false, nil
			}
			available--
			return true, nil
		},
		incrementFunc: func(ctx context.Context, id string) (bool, error) {
			if available >= 1 {
				return false, nil
			}
			available++
			return true, nil
		},
	}

	repo := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			booking.ID = testBookingID
			stored = booking
			confirmed[booking.ClientEmail] = true
			return nil
		},
		existsConfirmedFunc: func(ctx context.Context, classID, email string) (bool, error) {
			return confirmed[email], nil
		},
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			if stored == nil || stored.ID != id {
				return nil, bookingserrors.ErrNotFound
			}
			return stored, nil
		},
		updateStatusFunc: func(ctx context.Context, id, expectedStatus, newStatus string) (int64, error) {
			if stored == nil || stored.ID != id || stored.Status != expectedStatus {
				return 0, nil
			}
			stored.Status = newStatus
			confirmed[stored.ClientEmail] = false
			return 1, nil
		},
	}

	svc := newTestService(t, repo, classRepo)

	booking, err := svc.Create(ctx, testClassID, "Jane Doe", "jane@example.com")
	if err != nil {
		t.Fatalf("first booking should succeed: %v", err)
	}
	if booking.Status != model.StatusConfirmed {
		t.Errorf("expected confirmed status, got %s", booking.Status)
	}
	if booking.ClassName != "Morning Yoga" || booking.Instructor != "Priya Sharma" {
		t.Errorf("expected class snapshot on booking, got %q / %q", booking.ClassName, booking.Instructor)
	}
	if available != 0 {
		t.Fatalf("expected 0 available slots after booking, got %d", available)
	}

	_, err = svc.Create(ctx, testClassID, "Jane Doe", "JANE@example.com")
	expectAppErrorCode(t, err, apperrors.CodeDuplicateBooking)

	_, err = svc.Create(ctx, testClassID, "Bob Smith", "bob@example.com")
	expectAppErrorCode(t, err, apperrors.CodeValidation)
	if available != 0 {
		t.Fatalf("failed booking must not change slots, got %d", available)
	}

	cancelled, err := svc.Cancel(ctx, testBookingID)
	if err != nil {
		t.Fatalf("cancel should succeed: %v", err)
	}
	if !cancelled {
		t.Fatal("expected cancel to report true")
	}
	if available != 1 {
		t.Fatalf("expected seat restored after cancel, got %d", available)
	}

	if _, err := svc.Create(ctx, testClassID, "Bob Smith", "bob@example.com"); err != nil {
		t.Fatalf("booking the freed seat should succeed: %v", err)
	}
	if available != 0 {
		t.Fatalf("expected 0 available slots after rebooking, got %d", available)
	}
}

func TestCreateRejectsMalformedClassID(t *testing.T) {
	svc := newTestService(t, &mockBookingRepository{}, &mockClassRepository{})

	_, err := svc.Create(context.Background(), "not-an-oid", "Jane Doe", "jane@example.com")
	expectAppErrorCode(t, err, apperrors.CodeValidation)
}

func TestCreateReportsMissingClass(t *testing.T) {
	classRepo := &mockClassRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.FitnessClass, error) {
			return nil, classerrors.ErrNotFound
		},
	}
	svc := newTestService(t, &mockBookingRepository{}, classRepo)

	_, err := svc.Create(context.Background(), testClassID, "Jane Doe", "jane@example.com")
	expectAppErrorCode(t, err, apperrors.CodeClassNotFound)
}

// The pre-check saw a free seat but the conditional decrement matched
// nothing; the transaction must surface the no-slots error.
func TestCreateAbortsWhenDecrementLosesRace(t *testing.T) {
	classRepo := &mockClassRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.FitnessClass, error) {
			return testClass(1), nil
		},
		decrementFunc: func(ctx context.Context, id string) (bool, error) {
			return false, nil
		},
	}
	repo := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			return nil
		},
		existsConfirmedFunc: func(ctx context.Context, classID, email string) (bool, error) {
			return false, nil
		},
	}
	svc := newTestService(t, repo, classRepo)

	_, err := svc.Create(context.Background(), testClassID, "Jane Doe", "jane@example.com")
	expectAppErrorCode(t, err, apperrors.CodeValidation)
}

func TestCreateMapsUniqueIndexViolation(t *testing.T) {
	classRepo := &mockClassRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.FitnessClass, error) {
			return testClass(1), nil
		},
	}
	repo := &mockBookingRepository{
		existsConfirmedFunc: func(ctx context.Context, classID, email string) (bool, error) {
			// Advisory check misses the concurrent insert; the index catches it.
			return false, nil
		},
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		},
	}
	svc := newTestService(t, repo, classRepo)

	_, err := svc.Create(context.Background(), testClassID, "Jane Doe", "jane@example.com")
	expectAppErrorCode(t, err, apperrors.CodeDuplicateBooking)
}

func TestCancelMissingBooking(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return nil, bookingserrors.ErrNotFound
		},
	}
	svc := newTestService(t, repo, &mockClassRepository{})

	_, err := svc.Cancel(context.Background(), testBookingID)
	expectAppErrorCode(t, err, apperrors.CodeBookingNotFound)
}

func TestCancelTwiceRestoresOnlyOneSeat(t *testing.T) {
	increments := 0
	status := model.StatusConfirmed

	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{ID: testBookingID, ClassID: testClassID, Status: status}, nil
		},
		updateStatusFunc: func(ctx context.Context, id, expectedStatus, newStatus string) (int64, error) {
			if status != expectedStatus {
				return 0, nil
			}
			status = newStatus
			return 1, nil
		},
	}
	classRepo := &mockClassRepository{
		incrementFunc: func(ctx context.Context, id string) (bool, error) {
			increments++
			return true, nil
		},
	}
	svc := newTestService(t, repo, classRepo)

	cancelled, err := svc.Cancel(context.Background(), testBookingID)
	if err != nil || !cancelled {
		t.Fatalf("first cancel should succeed, got (%v, %v)", cancelled, err)
	}

	cancelled, err = svc.Cancel(context.Background(), testBookingID)
	if err != nil {
		t.Fatalf("second cancel should not error: %v", err)
	}
	if cancelled {
		t.Fatal("second cancel should report false")
	}
	if increments != 1 {
		t.Fatalf("expected exactly one seat restore, got %d", increments)
	}
}

func TestCancelSurvivesDeletedClass(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{ID: testBookingID, ClassID: testClassID, Status: model.StatusConfirmed}, nil
		},
		updateStatusFunc: func(ctx context.Context, id, expectedStatus, newStatus string) (int64, error) {
			return 1, nil
		},
	}
	classRepo := &mockClassRepository{
		incrementFunc: func(ctx context.Context, id string) (bool, error) {
			return false, errors.New("invalid class id: gone")
		},
	}
	svc := newTestService(t, repo, classRepo)

	// A plain repository error still fails the cancel.
	if _, err := svc.Cancel(context.Background(), testBookingID); err == nil {
		t.Fatal("expected error when slot restore fails hard")
	}

	classRepo.incrementFunc = func(ctx context.Context, id string) (bool, error) {
		return false, nil
	}
	cancelled, err := svc.Cancel(context.Background(), testBookingID)
	if err != nil {
		t.Fatalf("cancel should stand when class no longer exists: %v", err)
	}
	if !cancelled {
		t.Fatal("expected cancel to report true")
	}
}

func TestGetByEmailRequiresEmail(t *testing.T) {
	svc := newTestService(t, &mockBookingRepository{}, &mockClassRepository{})

	_, err := svc.GetByEmail(context.Background(), "   ", false)
	expectAppErrorCode(t, err, apperrors.CodeValidation)
}

func TestGetByEmailNormalizesAddress(t *testing.T) {
	var queried string
	repo := &mockBookingRepository{
		findByEmailFunc: func(ctx context.Context, email string, includeCancelled bool) ([]*model.Booking, error) {
			queried = email
			return nil, nil
		},
	}
	svc := newTestService(t, repo, &mockClassRepository{})

	if _, err := svc.GetByEmail(context.Background(), " Jane@Example.COM ", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queried != "jane@example.com" {
		t.Errorf("expected normalized email, got %q", queried)
	}
}

func TestStats(t *testing.T) {
	repo := &mockBookingRepository{
		findAllFunc: func(ctx context.Context) ([]*model.Booking, error) {
			return []*model.Booking{
				{ClientEmail: "jane@example.com", Status: model.StatusConfirmed},
				{ClientEmail: "jane@example.com", Status: model.StatusCancelled},
				{ClientEmail: "bob@example.com", Status: model.StatusConfirmed},
				{ClientEmail: "amy@example.com", Status: model.StatusPending},
			}, nil
		},
	}
	svc := newTestService(t, repo, &mockClassRepository{})

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalBookings != 4 || stats.ConfirmedBookings != 2 || stats.CancelledBookings != 1 || stats.PendingBookings != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.UniqueClients != 3 {
		t.Errorf("expected 3 unique clients, got %d", stats.UniqueClients)
	}
	if stats.ConfirmationRate != 50 || stats.CancellationRate != 25 {
		t.Errorf("unexpected rates: %+v", stats)
	}
}

func TestStatsEmpty(t *testing.T) {
	repo := &mockBookingRepository{
		findAllFunc: func(ctx context.Context) ([]*model.Booking, error) {
			return nil, nil
		},
	}
	svc := newTestService(t, repo, &mockClassRepository{})

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalBookings != 0 || stats.ConfirmationRate != 0 || stats.CancellationRate != 0 {
		t.Errorf("expected zeroed stats, got %+v", stats)
	}
}
