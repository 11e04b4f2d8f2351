package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"eventseating/internal/domain"
	"eventseating/internal/tracing"
)

type allocatorService struct {
	store          domain.SeatingStore
	policy         domain.CapacityPolicy
	cache          domain.SnapshotCache
	publisher      domain.SeatingEventPublisher
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewAllocatorService returns an AllocatorService that keeps table occupancy consistent
// through the store's transactions. Committed changes invalidate the cached snapshot of the
// affected date and are published as seating events.
func NewAllocatorService(
	store domain.SeatingStore,
	policy domain.CapacityPolicy,
	cache domain.SnapshotCache,
	publisher domain.SeatingEventPublisher,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AllocatorService {
	return &allocatorService{
		store:          store,
		policy:         policy,
		cache:          cache,
		publisher:      publisher,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *allocatorService) Assign(ctx context.Context, reservationID, tableID int64) (*domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := tracing.StartSpan(ctx, "allocator.Assign",
		attribute.Int64("reservation.id", reservationID),
		attribute.Int64("table.id", tableID),
	)

	var (
		reservation *domain.Reservation
		events      []domain.SeatingEvent
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.SeatingTx) error {
		r, err := tx.GetReservationForUpdate(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("reservation %d: %w", reservationID, err)
		}
		if err := tx.LockEventDate(ctx, r.EventDate); err != nil {
			return err
		}
		if r.AssignedTo(tableID) {
			reservation = r
			return nil
		}

		tables, err := lockTables(ctx, tx, tableID, r.TableID)
		if err != nil {
			return err
		}
		target := tables[tableID]
		if target.EventDate != r.EventDate {
			return fmt.Errorf("%w: table %d belongs to %s, reservation %d to %s",
				domain.ErrInvalidInput, tableID, target.EventDate, reservationID, r.EventDate)
		}
		if !target.Fits(r.SeatCount) {
			return fmt.Errorf("%w: table %d has %d of %d seats free, party needs %d",
				domain.ErrCapacityExceeded, target.TableNumber, target.Available(), target.Capacity, r.SeatCount)
		}

		var from *int64
		if r.TableID != nil {
			if err := release(ctx, tx, tables[*r.TableID], r.SeatCount); err != nil {
				return err
			}
			from = r.TableID
		}
		if err := seat(ctx, tx, r, target); err != nil {
			return err
		}
		reservation = r
		events = append(events, domain.SeatingEvent{
			Type:          domain.SeatingAssigned,
			EventDate:     r.EventDate,
			ReservationID: r.ID,
			TableID:       r.TableID,
			FromTableID:   from,
			TableNumber:   target.TableNumber,
			SeatCount:     r.SeatCount,
			OccurredAt:    s.now(),
		})
		return nil
	})
	span.End(err)
	if err != nil {
		return nil, fmt.Errorf("assign reservation %d to table %d: %w", reservationID, tableID, err)
	}
	s.afterCommit(ctx, reservation.EventDate, events)
	return reservation, nil
}

func (s *allocatorService) Unassign(ctx context.Context, reservationID int64) (*domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := tracing.StartSpan(ctx, "allocator.Unassign", attribute.Int64("reservation.id", reservationID))

	var (
		reservation *domain.Reservation
		events      []domain.SeatingEvent
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.SeatingTx) error {
		r, err := tx.GetReservationForUpdate(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("reservation %d: %w", reservationID, err)
		}
		if err := tx.LockEventDate(ctx, r.EventDate); err != nil {
			return err
		}
		if !r.Assigned() {
			reservation = r
			return nil
		}

		from := *r.TableID
		table, err := tx.GetTableForUpdate(ctx, from)
		if err != nil {
			return fmt.Errorf("table %d: %w", from, err)
		}
		if err := release(ctx, tx, table, r.SeatCount); err != nil {
			return err
		}
		if err := tx.SetReservationTable(ctx, r.ID, nil); err != nil {
			return err
		}
		r.TableID = nil
		reservation = r
		events = append(events, domain.SeatingEvent{
			Type:          domain.SeatingUnassigned,
			EventDate:     r.EventDate,
			ReservationID: r.ID,
			FromTableID:   &from,
			TableNumber:   table.TableNumber,
			SeatCount:     r.SeatCount,
			OccurredAt:    s.now(),
		})
		return nil
	})
	span.End(err)
	if err != nil {
		return nil, fmt.Errorf("unassign reservation %d: %w", reservationID, err)
	}
	s.afterCommit(ctx, reservation.EventDate, events)
	return reservation, nil
}

func (s *allocatorService) AutoAssign(ctx context.Context, reservationID int64) (*domain.Table, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := tracing.StartSpan(ctx, "allocator.AutoAssign", attribute.Int64("reservation.id", reservationID))

	var (
		table     *domain.Table
		eventDate string
		events    []domain.SeatingEvent
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.SeatingTx) error {
		r, err := tx.GetReservationForUpdate(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("reservation %d: %w", reservationID, err)
		}
		eventDate = r.EventDate
		if err := tx.LockEventDate(ctx, r.EventDate); err != nil {
			return err
		}
		if r.Assigned() {
			table, err = tx.GetTableByID(ctx, *r.TableID)
			return err
		}

		t, created, err := s.placeParty(ctx, tx, r.EventDate, r.SeatCount)
		if err != nil {
			return err
		}
		if created {
			events = append(events, domain.SeatingEvent{
				Type:        domain.SeatingTableCreated,
				EventDate:   t.EventDate,
				TableID:     &t.ID,
				TableNumber: t.TableNumber,
				OccurredAt:  s.now(),
			})
		}
		if err := seat(ctx, tx, r, t); err != nil {
			return err
		}
		table = t
		events = append(events, domain.SeatingEvent{
			Type:          domain.SeatingAssigned,
			EventDate:     r.EventDate,
			ReservationID: r.ID,
			TableID:       r.TableID,
			TableNumber:   t.TableNumber,
			SeatCount:     r.SeatCount,
			OccurredAt:    s.now(),
		})
		return nil
	})
	if table != nil {
		span.SetAttributes(attribute.Int("table.number", table.TableNumber))
	}
	span.End(err)
	if err != nil {
		return nil, fmt.Errorf("auto-assign reservation %d: %w", reservationID, err)
	}
	s.afterCommit(ctx, eventDate, events)
	return table, nil
}

// placeParty returns the lowest-numbered table of eventDate with room for seats, creating the
// next numbered table when none qualifies. The event date must be locked by the caller.
func (s *allocatorService) placeParty(ctx context.Context, tx domain.SeatingTx, eventDate string, seats int) (*domain.Table, bool, error) {
	t, err := tx.FindTableWithRoom(ctx, eventDate, seats)
	if err == nil {
		return t, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("find table with room: %w", err)
	}

	capacity := s.policy.CapacityFor(eventDate)
	if seats > capacity {
		return nil, false, fmt.Errorf("%w: party of %d exceeds table capacity %d", domain.ErrCapacityExceeded, seats, capacity)
	}
	number, err := tx.NextTableNumber(ctx, eventDate)
	if err != nil {
		return nil, false, err
	}
	t = domain.NewTable(number, eventDate, capacity, s.now())
	if err := tx.InsertTable(ctx, t); err != nil {
		return nil, false, err
	}
	return t, true, nil
}

func (s *allocatorService) IngestPayment(ctx context.Context, intake *domain.PaymentIntake) (*domain.Reservation, bool, error) {
	if intake == nil {
		return nil, false, fmt.Errorf("%w: payment intake is nil", domain.ErrInvalidInput)
	}
	if errs := intake.Validate(); len(errs) > 0 {
		return nil, false, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(errs, "; "))
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := tracing.StartSpan(ctx, "allocator.IngestPayment",
		attribute.String("payment.ref", intake.PaymentRef),
		attribute.String("event.date", intake.EventDate),
	)

	r := domain.NewReservation(intake.PaymentRef, intake.PartyName, intake.Contact, intake.EventDate,
		intake.SeatCount, intake.Amount, intake.Currency, s.now())
	var created bool
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.SeatingTx) error {
		var err error
		created, err = tx.InsertReservation(ctx, r)
		if err != nil {
			return err
		}
		if !created {
			r, err = tx.GetReservationByPaymentRef(ctx, intake.PaymentRef)
			return err
		}
		return nil
	})
	span.SetAttributes(attribute.Bool("payment.duplicate", err == nil && !created))
	span.End(err)
	if err != nil {
		return nil, false, fmt.Errorf("record payment %s: %w", intake.PaymentRef, err)
	}
	if !created {
		s.logger.InfoContext(ctx, "duplicate payment ignored", "payment_ref", intake.PaymentRef, "reservation_id", r.ID)
		return r, false, nil
	}

	s.afterCommit(ctx, r.EventDate, []domain.SeatingEvent{{
		Type:          domain.SeatingReservationCreated,
		EventDate:     r.EventDate,
		ReservationID: r.ID,
		SeatCount:     r.SeatCount,
		OccurredAt:    s.now(),
	}})

	table, err := s.AutoAssign(ctx, r.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "reservation left unassigned",
			"reservation_id", r.ID,
			"event_date", r.EventDate,
			"seat_count", r.SeatCount,
			"error", err,
		)
		return r, true, nil
	}
	r.TableID = &table.ID
	return r, true, nil
}

// afterCommit drops the cached snapshot of eventDate and publishes events. Both are best effort.
func (s *allocatorService) afterCommit(ctx context.Context, eventDate string, events []domain.SeatingEvent) {
	if len(events) == 0 {
		return
	}
	s.cache.Invalidate(ctx, eventDate)
	for _, e := range events {
		if err := s.publisher.Publish(ctx, e); err != nil {
			s.logger.WarnContext(ctx, "failed to publish seating event", "type", e.Type, "event_date", e.EventDate, "error", err)
		}
	}
}

// lockTables locks the target and, when set, the previous table in ascending id order.
func lockTables(ctx context.Context, tx domain.SeatingTx, target int64, previous *int64) (map[int64]*domain.Table, error) {
	ids := []int64{target}
	if previous != nil && *previous != target {
		ids = append(ids, *previous)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	tables := make(map[int64]*domain.Table, len(ids))
	for _, id := range ids {
		t, err := tx.GetTableForUpdate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("table %d: %w", id, err)
		}
		tables[id] = t
	}
	return tables, nil
}

// release takes seats off a table. A counter smaller than the party is a prior drift.
func release(ctx context.Context, tx domain.SeatingTx, t *domain.Table, seats int) error {
	if t.CurrentOccupancy < seats {
		return fmt.Errorf("%w: table %d occupancy %d below released party of %d",
			domain.ErrConsistencyFault, t.TableNumber, t.CurrentOccupancy, seats)
	}
	occupancy, err := tx.AdjustOccupancy(ctx, t.ID, -seats)
	if err != nil {
		return err
	}
	t.CurrentOccupancy = occupancy
	return nil
}

// seat charges the party to t and points the reservation at it.
func seat(ctx context.Context, tx domain.SeatingTx, r *domain.Reservation, t *domain.Table) error {
	occupancy, err := tx.AdjustOccupancy(ctx, t.ID, r.SeatCount)
	if err != nil {
		return err
	}
	t.CurrentOccupancy = occupancy
	id := t.ID
	if err := tx.SetReservationTable(ctx, r.ID, &id); err != nil {
		return err
	}
	r.TableID = &id
	return nil
}
