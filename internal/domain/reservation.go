package domain

import (
	"regexp"
	"time"
)

// eventDateRegexp matches the YYYY-MM-DD partition key format.
var eventDateRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidEventDate reports whether date is a well-formed YYYY-MM-DD calendar date.
func ValidEventDate(date string) bool {
	if !eventDateRegexp.MatchString(date) {
		return false
	}
	_, err := time.Parse(time.DateOnly, date)
	return err == nil
}

// Reservation is one paid party for an event date.
// swagger:model Reservation
type Reservation struct {
	ID         int64     `json:"id"`
	PaymentRef string    `json:"payment_ref"`
	PartyName  string    `json:"party_name"`
	Contact    string    `json:"contact"`
	EventDate  string    `json:"event_date"`
	SeatCount  int       `json:"seat_count"`
	AmountPaid float64   `json:"amount_paid"`
	Currency   string    `json:"currency"`
	TableID    *int64    `json:"table_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewReservation returns an unassigned Reservation. ID is set by the store on insert.
func NewReservation(paymentRef, partyName, contact, eventDate string, seatCount int, amountPaid float64, currency string, createdAt time.Time) *Reservation {
	return &Reservation{
		PaymentRef: paymentRef,
		PartyName:  partyName,
		Contact:    contact,
		EventDate:  eventDate,
		SeatCount:  seatCount,
		AmountPaid: amountPaid,
		Currency:   currency,
		CreatedAt:  createdAt,
	}
}

// Assigned reports whether the reservation currently sits at a table.
func (r *Reservation) Assigned() bool {
	return r.TableID != nil
}

// AssignedTo reports whether the reservation sits at the given table.
func (r *Reservation) AssignedTo(tableID int64) bool {
	return r.TableID != nil && *r.TableID == tableID
}

// Table is a seating table for one event date. CurrentOccupancy caches the sum of the
// seat counts of the reservations assigned to it.
// swagger:model Table
type Table struct {
	ID               int64     `json:"id"`
	TableNumber      int       `json:"table_number"`
	EventDate        string    `json:"event_date"`
	Capacity         int       `json:"capacity"`
	CurrentOccupancy int       `json:"current_occupancy"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewTable returns an empty table. ID is set by the store on insert.
func NewTable(tableNumber int, eventDate string, capacity int, createdAt time.Time) *Table {
	return &Table{
		TableNumber: tableNumber,
		EventDate:   eventDate,
		Capacity:    capacity,
		CreatedAt:   createdAt,
	}
}

// Available returns the number of free seats.
func (t *Table) Available() int {
	return t.Capacity - t.CurrentOccupancy
}

// Fits reports whether a party of seats can sit at the table without exceeding capacity.
func (t *Table) Fits(seats int) bool {
	return t.CurrentOccupancy+seats <= t.Capacity
}

// PaymentIntake is a parsed payment notification, ready to be recorded as a reservation.
type PaymentIntake struct {
	PaymentRef string
	PartyName  string
	Contact    string
	EventDate  string
	SeatCount  int
	Amount     float64
	Currency   string
}

// Validate returns error messages for fields that cannot be stored.
func (p *PaymentIntake) Validate() []string {
	var errs []string
	if p.PaymentRef == "" {
		errs = append(errs, "payment reference is required")
	}
	if !ValidEventDate(p.EventDate) {
		errs = append(errs, "event date must be YYYY-MM-DD")
	}
	if p.SeatCount < 1 {
		errs = append(errs, "seat count must be at least 1")
	}
	return errs
}
