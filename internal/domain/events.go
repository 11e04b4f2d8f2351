package domain

import (
	"context"
	"time"
)

// Seating event types published after a committed change.
const (
	SeatingReservationCreated = "reservation.created"
	SeatingAssigned           = "reservation.assigned"
	SeatingUnassigned         = "reservation.unassigned"
	SeatingTableCreated       = "table.created"
)

// SeatingEvent notifies downstream consumers about a committed seating change.
type SeatingEvent struct {
	Type          string    `json:"type"`
	EventDate     string    `json:"event_date"`
	ReservationID int64     `json:"reservation_id,omitempty"`
	TableID       *int64    `json:"table_id,omitempty"`
	FromTableID   *int64    `json:"from_table_id,omitempty"`
	TableNumber   int       `json:"table_number,omitempty"`
	SeatCount     int       `json:"seat_count,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// SeatingEventPublisher delivers seating events to a message broker.
type SeatingEventPublisher interface {
	Publish(ctx context.Context, event SeatingEvent) error
}
