package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventseating/internal/delivery/http/helpers"
	"eventseating/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeAllocator implements domain.AllocatorService for handler tests.
type fakeAllocator struct {
	assignErr         error
	unassignErr       error
	autoAssignErr     error
	result            *domain.Reservation
	table             *domain.Table
	lastReservationID int64
	lastTableID       int64
	lastIntake        *domain.PaymentIntake
}

func (f *fakeAllocator) Assign(ctx context.Context, reservationID, tableID int64) (*domain.Reservation, error) {
	f.lastReservationID, f.lastTableID = reservationID, tableID
	if f.assignErr != nil {
		return nil, f.assignErr
	}
	return f.result, nil
}

func (f *fakeAllocator) Unassign(ctx context.Context, reservationID int64) (*domain.Reservation, error) {
	f.lastReservationID = reservationID
	if f.unassignErr != nil {
		return nil, f.unassignErr
	}
	return f.result, nil
}

func (f *fakeAllocator) AutoAssign(ctx context.Context, reservationID int64) (*domain.Table, error) {
	f.lastReservationID = reservationID
	if f.autoAssignErr != nil {
		return nil, f.autoAssignErr
	}
	return f.table, nil
}

func (f *fakeAllocator) IngestPayment(ctx context.Context, intake *domain.PaymentIntake) (*domain.Reservation, bool, error) {
	f.lastIntake = intake
	if errs := intake.Validate(); len(errs) > 0 {
		return nil, false, domain.ErrInvalidInput
	}
	return &domain.Reservation{ID: 1, PaymentRef: intake.PaymentRef, Contact: intake.Contact, EventDate: intake.EventDate, SeatCount: intake.SeatCount}, true, nil
}

type fakeEmailService struct {
	sent int
}

func (f *fakeEmailService) SendReservationConfirmation(ctx context.Context, data *domain.ReservationConfirmationEmailData) error {
	f.sent++
	return nil
}

// fakeDashboard implements domain.DashboardService for handler tests.
type fakeDashboard struct {
	snapshotErr error
	auditErr    error
	snapshot    *domain.SeatingSnapshot
	report      *domain.OccupancyReport
	lastDate    string
}

func (f *fakeDashboard) Snapshot(ctx context.Context, eventDate string) (*domain.SeatingSnapshot, error) {
	f.lastDate = eventDate
	if f.snapshotErr != nil {
		return nil, f.snapshotErr
	}
	return f.snapshot, nil
}

func (f *fakeDashboard) AuditOccupancy(ctx context.Context, eventDate string) (*domain.OccupancyReport, error) {
	f.lastDate = eventDate
	if f.auditErr != nil {
		return nil, f.auditErr
	}
	return f.report, nil
}

// fakePaymentService implements domain.PaymentService for handler tests.
type fakePaymentService struct {
	outcome   domain.WebhookOutcome
	result    *domain.Reservation
	err       error
	lastEvent *domain.WebhookEvent
}

func (f *fakePaymentService) HandleWebhookEvent(ctx context.Context, event *domain.WebhookEvent) (domain.WebhookOutcome, *domain.Reservation, error) {
	f.lastEvent = event
	if f.err != nil {
		return "", nil, f.err
	}
	return f.outcome, f.result, nil
}

type fakeVerifier struct {
	ok       bool
	lastBody []byte
}

func (f *fakeVerifier) Verify(header http.Header, body []byte) bool {
	f.lastBody = body
	return f.ok
}

type fakePinger struct {
	err error
}

func (f *fakePinger) PingContext(ctx context.Context) error {
	return f.err
}

// decodeError asserts an error envelope and returns its code.
func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}
