package domain

import (
	"context"
	"time"
)

// TableWithReservations bundles a table with the reservations seated at it.
// swagger:model TableWithReservations
type TableWithReservations struct {
	*Table
	Reservations []*Reservation `json:"reservations"`
}

// DateStats aggregates all reservations of one event date.
// swagger:model DateStats
type DateStats struct {
	TotalReservations int     `json:"total_reservations"`
	TotalRevenue      float64 `json:"total_revenue"`
	TotalSeats        int     `json:"total_seats"`
}

// SeatingSnapshot is the dashboard view of one event date.
// swagger:model SeatingSnapshot
type SeatingSnapshot struct {
	EventDate  string                   `json:"event_date"`
	Tables     []*TableWithReservations `json:"tables"`
	Unassigned []*Reservation           `json:"unassigned"`
	Stats      DateStats                `json:"stats"`
}

// OccupancyAuditRow compares a table's cached occupancy with the recomputed seat sum.
type OccupancyAuditRow struct {
	TableID          int64 `json:"table_id"`
	TableNumber      int   `json:"table_number"`
	Capacity         int   `json:"capacity"`
	CurrentOccupancy int   `json:"current_occupancy"`
	AssignedSeats    int   `json:"assigned_seats"`
}

// Consistent reports whether the cached counter matches the assignments and stays within bounds.
func (r *OccupancyAuditRow) Consistent() bool {
	return r.CurrentOccupancy == r.AssignedSeats && r.CurrentOccupancy >= 0 && r.CurrentOccupancy <= r.Capacity
}

// OccupancyReport is the result of auditing every table of an event date.
// swagger:model OccupancyReport
type OccupancyReport struct {
	EventDate  string               `json:"event_date"`
	Consistent bool                 `json:"consistent"`
	Tables     []*OccupancyAuditRow `json:"tables"`
	Drifted    []*OccupancyAuditRow `json:"drifted"`
	CheckedAt  time.Time            `json:"checked_at"`
}

// SeatingReader exposes the read side of the store.
type SeatingReader interface {
	GetReservationByID(ctx context.Context, id int64) (*Reservation, error)
	GetReservationByPaymentRef(ctx context.Context, paymentRef string) (*Reservation, error)
	GetTableByID(ctx context.Context, id int64) (*Table, error)
	// ListTablesByDate returns the tables of a date ordered by table number.
	ListTablesByDate(ctx context.Context, eventDate string) ([]*Table, error)
	// ListAssignedByDate returns the seated reservations of a date ordered by creation time.
	ListAssignedByDate(ctx context.Context, eventDate string) ([]*Reservation, error)
	// ListUnassignedByDate returns the unseated reservations of a date ordered by creation time.
	ListUnassignedByDate(ctx context.Context, eventDate string) ([]*Reservation, error)
	GetDateStats(ctx context.Context, eventDate string) (*DateStats, error)
	ListOccupancyAudit(ctx context.Context, eventDate string) ([]*OccupancyAuditRow, error)
}

// SeatingTx is the read-write view of the store inside one transaction.
// Lock order is reservation row, then event date, then tables by ascending id.
type SeatingTx interface {
	SeatingReader

	// LockEventDate serializes writers of one event date until the transaction ends.
	LockEventDate(ctx context.Context, eventDate string) error
	GetReservationForUpdate(ctx context.Context, id int64) (*Reservation, error)
	GetTableForUpdate(ctx context.Context, id int64) (*Table, error)
	// FindTableWithRoom returns the lowest-numbered table of the date with at least seats free,
	// or ErrNotFound.
	FindTableWithRoom(ctx context.Context, eventDate string, seats int) (*Table, error)
	NextTableNumber(ctx context.Context, eventDate string) (int, error)
	// InsertReservation stores r unless its payment reference already exists.
	// Returns false when the reference was already recorded.
	InsertReservation(ctx context.Context, r *Reservation) (bool, error)
	InsertTable(ctx context.Context, t *Table) error
	SetReservationTable(ctx context.Context, reservationID int64, tableID *int64) error
	// AdjustOccupancy adds delta to the table's counter and returns the new value. A result
	// outside [0, capacity] fails with ErrConsistencyFault and changes nothing.
	AdjustOccupancy(ctx context.Context, tableID int64, delta int) (int, error)
}

// SeatingStore runs units of work against the persistent store.
type SeatingStore interface {
	// WithinTx runs fn in a read-write transaction. Any error from fn rolls back.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx SeatingTx) error) error
	// WithinReadTx runs fn against a consistent read-only view.
	WithinReadTx(ctx context.Context, fn func(ctx context.Context, r SeatingReader) error) error
}

// CapacityPolicy decides the seat limit of newly created tables.
type CapacityPolicy interface {
	CapacityFor(eventDate string) int
}

// SnapshotCache caches dashboard snapshots per event date. Every Invalidate bumps the date's
// version; a snapshot stored with an older version is never returned.
type SnapshotCache interface {
	Get(ctx context.Context, eventDate string) (*SeatingSnapshot, bool)
	// Version returns the current version of eventDate. Read it before building a snapshot.
	// ok is false when the cache cannot be used.
	Version(ctx context.Context, eventDate string) (version int64, ok bool)
	// Set stores snapshot as built from the state at version.
	Set(ctx context.Context, snapshot *SeatingSnapshot, version int64)
	Invalidate(ctx context.Context, eventDate string)
}

// AllocatorService places parties at tables while keeping occupancy consistent.
type AllocatorService interface {
	// Assign seats the reservation at the table, moving it off its previous table if any.
	Assign(ctx context.Context, reservationID, tableID int64) (*Reservation, error)
	// Unassign removes the reservation from its table. Unassigned reservations are a no-op.
	Unassign(ctx context.Context, reservationID int64) (*Reservation, error)
	// AutoAssign places the reservation at the lowest-numbered table with room, creating one if needed.
	AutoAssign(ctx context.Context, reservationID int64) (*Table, error)
	// IngestPayment records a paid reservation once per payment reference and tries to seat it.
	// Returns (reservation, created, err): created is false when the payment was already recorded.
	IngestPayment(ctx context.Context, intake *PaymentIntake) (*Reservation, bool, error)
}

// DashboardService serves the operator views.
type DashboardService interface {
	Snapshot(ctx context.Context, eventDate string) (*SeatingSnapshot, error)
	AuditOccupancy(ctx context.Context, eventDate string) (*OccupancyReport, error)
}
