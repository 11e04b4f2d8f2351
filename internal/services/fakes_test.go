package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"eventseating/internal/domain"

	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var errUniqueViolation = errors.New("duplicate key value violates unique constraint")

// errDateNotLocked is returned by fakeTx for date-scoped reads and writes made before LockEventDate.
var errDateNotLocked = errors.New("event date not locked")

// fakeSeatingStore is an in-memory SeatingStore. Transactions run one at a time against a
// copy of the state that replaces the committed state only when fn succeeds. Each read-write
// transaction records its lock trace; table selection and occupancy changes fail unless the
// event date was locked first.
type fakeSeatingStore struct {
	mu           sync.Mutex
	reservations map[int64]*domain.Reservation
	tables       map[int64]*domain.Table
	nextResID    int64
	nextTableID  int64

	err      error // if set, WithinTx and WithinReadTx fail with it before running fn
	commits  int
	rollback int
	reads    int
	traces   [][]string // lock trace of every read-write transaction, in order
	onRead   func()     // if set, runs inside WithinReadTx before fn
}

func newFakeSeatingStore() *fakeSeatingStore {
	return &fakeSeatingStore{
		reservations: make(map[int64]*domain.Reservation),
		tables:       make(map[int64]*domain.Table),
	}
}

func (f *fakeSeatingStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.SeatingTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	tx := f.begin()
	err := fn(ctx, tx)
	f.traces = append(f.traces, tx.trace)
	if err != nil {
		f.rollback++
		return err
	}
	f.reservations, f.tables = tx.reservations, tx.tables
	f.nextResID, f.nextTableID = tx.nextResID, tx.nextTableID
	f.commits++
	return nil
}

func (f *fakeSeatingStore) WithinReadTx(ctx context.Context, fn func(ctx context.Context, r domain.SeatingReader) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reads++
	tx := f.begin()
	if f.onRead != nil {
		f.onRead()
	}
	return fn(ctx, tx)
}

func (f *fakeSeatingStore) begin() *fakeTx {
	tx := &fakeTx{
		reservations: make(map[int64]*domain.Reservation, len(f.reservations)),
		tables:       make(map[int64]*domain.Table, len(f.tables)),
		nextResID:    f.nextResID,
		nextTableID:  f.nextTableID,
	}
	for id, r := range f.reservations {
		tx.reservations[id] = cloneReservation(r)
	}
	for id, t := range f.tables {
		c := *t
		tx.tables[id] = &c
	}
	return tx
}

// seedTable stores a table directly, bypassing the allocator.
func (f *fakeSeatingStore) seedTable(number int, date string, capacity, occupancy int) *domain.Table {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextTableID++
	t := &domain.Table{ID: f.nextTableID, TableNumber: number, EventDate: date, Capacity: capacity, CurrentOccupancy: occupancy}
	f.tables[t.ID] = t
	c := *t
	return &c
}

// seedReservation stores a reservation directly, optionally seated at tableID without touching occupancy.
func (f *fakeSeatingStore) seedReservation(ref, date string, seats int, tableID *int64) *domain.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextResID++
	r := &domain.Reservation{ID: f.nextResID, PaymentRef: ref, PartyName: "Party " + ref, EventDate: date, SeatCount: seats, Currency: "USD", TableID: tableID}
	f.reservations[r.ID] = r
	return cloneReservation(r)
}

func (f *fakeSeatingStore) reservation(t *testing.T, id int64) *domain.Reservation {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	require.True(t, ok, "reservation %d", id)
	return cloneReservation(r)
}

func (f *fakeSeatingStore) table(t *testing.T, id int64) *domain.Table {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	tbl, ok := f.tables[id]
	require.True(t, ok, "table %d", id)
	c := *tbl
	return &c
}

func (f *fakeSeatingStore) tablesFor(date string) []*domain.Table {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Table
	for _, t := range f.tables {
		if t.EventDate == date {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TableNumber < out[j].TableNumber })
	return out
}

// requireDateLockedFirst checks that every read-write transaction that touched seating
// locked the reservation row and then its event date before any table.
func (f *fakeSeatingStore) requireDateLockedFirst(t *testing.T) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, trace := range f.traces {
		if len(trace) == 0 {
			continue
		}
		require.GreaterOrEqual(t, len(trace), 2, "transaction %d: %v", i, trace)
		require.Regexp(t, `^reservation:\d+$`, trace[0], "transaction %d: %v", i, trace)
		require.Regexp(t, `^date:`, trace[1], "transaction %d: %v", i, trace)
	}
}

// requireConsistent checks every table's counter against its assignments and bounds.
func (f *fakeSeatingStore) requireConsistent(t *testing.T) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	sums := make(map[int64]int)
	for _, r := range f.reservations {
		if r.TableID == nil {
			continue
		}
		tbl, ok := f.tables[*r.TableID]
		require.True(t, ok, "reservation %d points at missing table %d", r.ID, *r.TableID)
		require.Equal(t, tbl.EventDate, r.EventDate, "reservation %d crosses dates", r.ID)
		sums[tbl.ID] += r.SeatCount
	}
	numbers := make(map[string]bool)
	for _, tbl := range f.tables {
		require.Equal(t, sums[tbl.ID], tbl.CurrentOccupancy, "table %d counter drifted", tbl.ID)
		require.GreaterOrEqual(t, tbl.CurrentOccupancy, 0)
		require.LessOrEqual(t, tbl.CurrentOccupancy, tbl.Capacity)
		key := fmt.Sprintf("%s#%d", tbl.EventDate, tbl.TableNumber)
		require.False(t, numbers[key], "table number %s reused", key)
		numbers[key] = true
	}
}

func cloneReservation(r *domain.Reservation) *domain.Reservation {
	c := *r
	if r.TableID != nil {
		id := *r.TableID
		c.TableID = &id
	}
	return &c
}

// lastTrace returns the lock trace of the most recent read-write transaction.
func (f *fakeSeatingStore) lastTrace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.traces) == 0 {
		return nil
	}
	return append([]string(nil), f.traces[len(f.traces)-1]...)
}

type fakeTx struct {
	reservations map[int64]*domain.Reservation
	tables       map[int64]*domain.Table
	nextResID    int64
	nextTableID  int64

	locked map[string]bool
	// trace lists row and date locks as "reservation:<id>", "date:<date>", "table:<id>".
	trace []string
}

func (tx *fakeTx) requireLocked(eventDate string) error {
	if !tx.locked[eventDate] {
		return fmt.Errorf("%w: %s", errDateNotLocked, eventDate)
	}
	return nil
}

func (tx *fakeTx) GetReservationByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	r, ok := tx.reservations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneReservation(r), nil
}

func (tx *fakeTx) GetReservationByPaymentRef(ctx context.Context, paymentRef string) (*domain.Reservation, error) {
	for _, r := range tx.reservations {
		if r.PaymentRef == paymentRef {
			return cloneReservation(r), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (tx *fakeTx) GetTableByID(ctx context.Context, id int64) (*domain.Table, error) {
	t, ok := tx.tables[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (tx *fakeTx) ListTablesByDate(ctx context.Context, eventDate string) ([]*domain.Table, error) {
	out := make([]*domain.Table, 0)
	for _, t := range tx.tables {
		if t.EventDate == eventDate {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TableNumber < out[j].TableNumber })
	return out, nil
}

func (tx *fakeTx) listReservations(eventDate string, assigned bool) []*domain.Reservation {
	out := make([]*domain.Reservation, 0)
	for _, r := range tx.reservations {
		if r.EventDate == eventDate && r.Assigned() == assigned {
			out = append(out, cloneReservation(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (tx *fakeTx) ListAssignedByDate(ctx context.Context, eventDate string) ([]*domain.Reservation, error) {
	return tx.listReservations(eventDate, true), nil
}

func (tx *fakeTx) ListUnassignedByDate(ctx context.Context, eventDate string) ([]*domain.Reservation, error) {
	return tx.listReservations(eventDate, false), nil
}

func (tx *fakeTx) GetDateStats(ctx context.Context, eventDate string) (*domain.DateStats, error) {
	stats := &domain.DateStats{}
	for _, r := range tx.reservations {
		if r.EventDate == eventDate {
			stats.TotalReservations++
			stats.TotalRevenue += r.AmountPaid
			stats.TotalSeats += r.SeatCount
		}
	}
	return stats, nil
}

func (tx *fakeTx) ListOccupancyAudit(ctx context.Context, eventDate string) ([]*domain.OccupancyAuditRow, error) {
	tables, _ := tx.ListTablesByDate(ctx, eventDate)
	out := make([]*domain.OccupancyAuditRow, 0, len(tables))
	for _, t := range tables {
		row := &domain.OccupancyAuditRow{TableID: t.ID, TableNumber: t.TableNumber, Capacity: t.Capacity, CurrentOccupancy: t.CurrentOccupancy}
		for _, r := range tx.reservations {
			if r.AssignedTo(t.ID) {
				row.AssignedSeats += r.SeatCount
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (tx *fakeTx) LockEventDate(ctx context.Context, eventDate string) error {
	if tx.locked == nil {
		tx.locked = make(map[string]bool)
	}
	tx.locked[eventDate] = true
	tx.trace = append(tx.trace, "date:"+eventDate)
	return nil
}

func (tx *fakeTx) GetReservationForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	tx.trace = append(tx.trace, fmt.Sprintf("reservation:%d", id))
	return tx.GetReservationByID(ctx, id)
}

func (tx *fakeTx) GetTableForUpdate(ctx context.Context, id int64) (*domain.Table, error) {
	tx.trace = append(tx.trace, fmt.Sprintf("table:%d", id))
	return tx.GetTableByID(ctx, id)
}

func (tx *fakeTx) FindTableWithRoom(ctx context.Context, eventDate string, seats int) (*domain.Table, error) {
	if err := tx.requireLocked(eventDate); err != nil {
		return nil, err
	}
	tables, _ := tx.ListTablesByDate(ctx, eventDate)
	for _, t := range tables {
		if t.Available() >= seats {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (tx *fakeTx) NextTableNumber(ctx context.Context, eventDate string) (int, error) {
	if err := tx.requireLocked(eventDate); err != nil {
		return 0, err
	}
	max := 0
	for _, t := range tx.tables {
		if t.EventDate == eventDate && t.TableNumber > max {
			max = t.TableNumber
		}
	}
	return max + 1, nil
}

func (tx *fakeTx) InsertReservation(ctx context.Context, r *domain.Reservation) (bool, error) {
	for _, existing := range tx.reservations {
		if existing.PaymentRef == r.PaymentRef {
			return false, nil
		}
	}
	if r.SeatCount < 1 {
		return false, fmt.Errorf("%w: seat_count check", domain.ErrConsistencyFault)
	}
	tx.nextResID++
	r.ID = tx.nextResID
	tx.reservations[r.ID] = cloneReservation(r)
	return true, nil
}

func (tx *fakeTx) InsertTable(ctx context.Context, t *domain.Table) error {
	if err := tx.requireLocked(t.EventDate); err != nil {
		return err
	}
	for _, existing := range tx.tables {
		if existing.EventDate == t.EventDate && existing.TableNumber == t.TableNumber {
			return errUniqueViolation
		}
	}
	tx.nextTableID++
	t.ID = tx.nextTableID
	c := *t
	tx.tables[t.ID] = &c
	return nil
}

func (tx *fakeTx) SetReservationTable(ctx context.Context, reservationID int64, tableID *int64) error {
	r, ok := tx.reservations[reservationID]
	if !ok {
		return domain.ErrNotFound
	}
	if err := tx.requireLocked(r.EventDate); err != nil {
		return err
	}
	if tableID == nil {
		r.TableID = nil
		return nil
	}
	id := *tableID
	r.TableID = &id
	return nil
}

func (tx *fakeTx) AdjustOccupancy(ctx context.Context, tableID int64, delta int) (int, error) {
	t, ok := tx.tables[tableID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if err := tx.requireLocked(t.EventDate); err != nil {
		return 0, err
	}
	next := t.CurrentOccupancy + delta
	if next < 0 || next > t.Capacity {
		return 0, fmt.Errorf("%w: table %d occupancy change %+d out of bounds", domain.ErrConsistencyFault, tableID, delta)
	}
	t.CurrentOccupancy = next
	return next, nil
}

type fixedCapacity int

func (c fixedCapacity) CapacityFor(string) int { return int(c) }

type versionedSnapshot struct {
	snapshot *domain.SeatingSnapshot
	version  int64
}

// fakeSnapshotCache is an in-memory SnapshotCache with per-date versions.
type fakeSnapshotCache struct {
	mu          sync.Mutex
	byDate      map[string]versionedSnapshot
	versions    map[string]int64
	invalidated []string
}

func newFakeSnapshotCache() *fakeSnapshotCache {
	return &fakeSnapshotCache{
		byDate:   make(map[string]versionedSnapshot),
		versions: make(map[string]int64),
	}
}

func (c *fakeSnapshotCache) Get(ctx context.Context, eventDate string) (*domain.SeatingSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byDate[eventDate]
	if !ok || e.version != c.versions[eventDate] {
		return nil, false
	}
	return e.snapshot, true
}

func (c *fakeSnapshotCache) Version(ctx context.Context, eventDate string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[eventDate], true
}

func (c *fakeSnapshotCache) Set(ctx context.Context, snapshot *domain.SeatingSnapshot, version int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byDate[snapshot.EventDate] = versionedSnapshot{snapshot: snapshot, version: version}
}

func (c *fakeSnapshotCache) Invalidate(ctx context.Context, eventDate string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[eventDate]++
	delete(c.byDate, eventDate)
	c.invalidated = append(c.invalidated, eventDate)
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []domain.SeatingEvent
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, event domain.SeatingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// fakeEmailService records confirmation requests.
type fakeEmailService struct {
	mu   sync.Mutex
	sent []*domain.ReservationConfirmationEmailData
	err  error
}

func (e *fakeEmailService) SendReservationConfirmation(ctx context.Context, data *domain.ReservationConfirmationEmailData) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.sent = append(e.sent, data)
	return nil
}

type allocatorFixture struct {
	store     *fakeSeatingStore
	cache     *fakeSnapshotCache
	publisher *fakePublisher
	svc       domain.AllocatorService
}

func newAllocatorFixture(capacity int) *allocatorFixture {
	f := &allocatorFixture{
		store:     newFakeSeatingStore(),
		cache:     newFakeSnapshotCache(),
		publisher: &fakePublisher{},
	}
	f.svc = NewAllocatorService(f.store, fixedCapacity(capacity), f.cache, f.publisher, testLogger, time.Second)
	return f
}
