package services

import (
	"context"
	"testing"
	"time"

	"eventseating/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Snapshot(t *testing.T) {
	ctx := context.Background()
	store := newFakeSeatingStore()
	cache := newFakeSnapshotCache()
	svc := NewDashboardService(store, cache, testLogger, testDate, time.Second)

	second := store.seedTable(2, testDate, 4, 1)
	first := store.seedTable(1, testDate, 4, 3)
	store.seedTable(1, "2025-06-14", 4, 0)
	a := store.seedReservation("PAY-A", testDate, 3, &first.ID)
	b := store.seedReservation("PAY-B", testDate, 1, &second.ID)
	c := store.seedReservation("PAY-C", testDate, 5, nil)
	store.seedReservation("PAY-D", "2025-06-14", 2, nil)

	snap, err := svc.Snapshot(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, testDate, snap.EventDate)

	require.Len(t, snap.Tables, 2)
	assert.Equal(t, 1, snap.Tables[0].TableNumber)
	require.Len(t, snap.Tables[0].Reservations, 1)
	assert.Equal(t, a.ID, snap.Tables[0].Reservations[0].ID)
	assert.Equal(t, 2, snap.Tables[1].TableNumber)
	require.Len(t, snap.Tables[1].Reservations, 1)
	assert.Equal(t, b.ID, snap.Tables[1].Reservations[0].ID)

	require.Len(t, snap.Unassigned, 1)
	assert.Equal(t, c.ID, snap.Unassigned[0].ID)
	assert.Equal(t, domain.DateStats{TotalReservations: 3, TotalSeats: 9}, snap.Stats)

	cached, ok := cache.Get(ctx, testDate)
	require.True(t, ok)
	assert.Same(t, snap, cached)

	again, err := svc.Snapshot(ctx, testDate)
	require.NoError(t, err)
	assert.Same(t, snap, again)
	assert.Equal(t, 1, store.reads)
}

func TestDashboardService_SnapshotBuiltDuringInvalidationIsNotServed(t *testing.T) {
	ctx := context.Background()
	store := newFakeSeatingStore()
	cache := newFakeSnapshotCache()
	svc := NewDashboardService(store, cache, testLogger, testDate, time.Second)
	store.seedReservation("PAY-1", testDate, 2, nil)

	// a writer commits and invalidates after the read transaction took its view
	store.onRead = func() { cache.Invalidate(ctx, testDate) }
	_, err := svc.Snapshot(ctx, testDate)
	require.NoError(t, err)
	_, ok := cache.Get(ctx, testDate)
	assert.False(t, ok)

	store.onRead = nil
	snap, err := svc.Snapshot(ctx, testDate)
	require.NoError(t, err)
	cached, ok := cache.Get(ctx, testDate)
	require.True(t, ok)
	assert.Same(t, snap, cached)
	assert.Equal(t, 2, store.reads)
}

func TestDashboardService_Snapshot_EmptyDate(t *testing.T) {
	svc := NewDashboardService(newFakeSeatingStore(), newFakeSnapshotCache(), testLogger, testDate, time.Second)

	snap, err := svc.Snapshot(context.Background(), "2026-01-01")
	require.NoError(t, err)
	assert.Empty(t, snap.Tables)
	assert.NotNil(t, snap.Tables)
	assert.Empty(t, snap.Unassigned)
	assert.Zero(t, snap.Stats.TotalReservations)
}

func TestDashboardService_Snapshot_Errors(t *testing.T) {
	store := newFakeSeatingStore()
	svc := NewDashboardService(store, newFakeSnapshotCache(), testLogger, testDate, time.Second)

	_, err := svc.Snapshot(context.Background(), "June 13")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	store.err = domain.ErrUpstreamUnavailable
	_, err = svc.Snapshot(context.Background(), testDate)
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestDashboardService_SnapshotAfterMutationIsFresh(t *testing.T) {
	ctx := context.Background()
	f := newAllocatorFixture(4)
	dashboard := NewDashboardService(f.store, f.cache, testLogger, testDate, time.Second)
	r := f.store.seedReservation("PAY-1", testDate, 2, nil)

	before, err := dashboard.Snapshot(ctx, testDate)
	require.NoError(t, err)
	require.Len(t, before.Unassigned, 1)

	_, err = f.svc.AutoAssign(ctx, r.ID)
	require.NoError(t, err)

	after, err := dashboard.Snapshot(ctx, testDate)
	require.NoError(t, err)
	assert.Empty(t, after.Unassigned)
	require.Len(t, after.Tables, 1)
	assert.Equal(t, 2, after.Tables[0].CurrentOccupancy)
}

func TestDashboardService_AuditOccupancy(t *testing.T) {
	ctx := context.Background()
	store := newFakeSeatingStore()
	svc := NewDashboardService(store, newFakeSnapshotCache(), testLogger, testDate, time.Second)

	ok := store.seedTable(1, testDate, 4, 3)
	drifted := store.seedTable(2, testDate, 4, 4)
	store.seedReservation("PAY-1", testDate, 3, &ok.ID)
	store.seedReservation("PAY-2", testDate, 1, &drifted.ID)

	report, err := svc.AuditOccupancy(ctx, testDate)
	require.NoError(t, err)
	assert.False(t, report.Consistent)
	assert.Len(t, report.Tables, 2)
	require.Len(t, report.Drifted, 1)
	assert.Equal(t, drifted.ID, report.Drifted[0].TableID)
	assert.Equal(t, 1, report.Drifted[0].AssignedSeats)

	// drift is reported, not repaired
	assert.Equal(t, 4, store.table(t, drifted.ID).CurrentOccupancy)
}

func TestDashboardService_AuditOccupancy_Consistent(t *testing.T) {
	ctx := context.Background()
	f := newAllocatorFixture(4)
	svc := NewDashboardService(f.store, f.cache, testLogger, testDate, time.Second)
	for _, seats := range []int{3, 2, 1, 4} {
		r := f.store.seedReservation("PAY", testDate, seats, nil)
		_, err := f.svc.AutoAssign(ctx, r.ID)
		require.NoError(t, err)
	}

	report, err := svc.AuditOccupancy(ctx, "")
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Empty(t, report.Drifted)
	assert.Len(t, report.Tables, 3)
}
