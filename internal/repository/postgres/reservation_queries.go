package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventseating/internal/domain"
)

const reservationColumns = `id, payment_ref, party_name, contact, event_date::text, seat_count, amount_paid, currency, table_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	r := &domain.Reservation{}
	var tableID sql.NullInt64
	if err := row.Scan(
		&r.ID, &r.PaymentRef, &r.PartyName, &r.Contact, &r.EventDate,
		&r.SeatCount, &r.AmountPaid, &r.Currency, &tableID, &r.CreatedAt,
	); err != nil {
		return nil, err
	}
	if tableID.Valid {
		r.TableID = &tableID.Int64
	}
	return r, nil
}

func (s *seatingQueries) getReservation(ctx context.Context, query string, arg any) (*domain.Reservation, error) {
	r, err := scanReservation(s.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *seatingQueries) listReservations(ctx context.Context, query string, args ...any) ([]*domain.Reservation, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reservations := make([]*domain.Reservation, 0)
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

func (s *seatingQueries) GetReservationByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	return s.getReservation(ctx, query, id)
}

func (s *seatingQueries) GetReservationForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`
	return s.getReservation(ctx, query, id)
}

func (s *seatingQueries) GetReservationByPaymentRef(ctx context.Context, paymentRef string) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE payment_ref = $1`
	return s.getReservation(ctx, query, paymentRef)
}

func (s *seatingQueries) ListAssignedByDate(ctx context.Context, eventDate string) ([]*domain.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE event_date = $1 AND table_id IS NOT NULL
		ORDER BY created_at ASC, id ASC
	`
	return s.listReservations(ctx, query, eventDate)
}

func (s *seatingQueries) ListUnassignedByDate(ctx context.Context, eventDate string) ([]*domain.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE event_date = $1 AND table_id IS NULL
		ORDER BY created_at ASC, id ASC
	`
	return s.listReservations(ctx, query, eventDate)
}

func (s *seatingQueries) GetDateStats(ctx context.Context, eventDate string) (*domain.DateStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(amount_paid), 0), COALESCE(SUM(seat_count), 0)
		FROM reservations
		WHERE event_date = $1
	`
	stats := &domain.DateStats{}
	if err := s.q.QueryRowContext(ctx, query, eventDate).Scan(&stats.TotalReservations, &stats.TotalRevenue, &stats.TotalSeats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *seatingQueries) InsertReservation(ctx context.Context, r *domain.Reservation) (bool, error) {
	query := `
		INSERT INTO reservations (payment_ref, party_name, contact, event_date, seat_count, amount_paid, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (payment_ref) DO NOTHING
		RETURNING id
	`
	err := s.q.QueryRowContext(ctx, query,
		r.PaymentRef, r.PartyName, r.Contact, r.EventDate, r.SeatCount, r.AmountPaid, r.Currency, r.CreatedAt,
	).Scan(&r.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("insert reservation: %w", err)
	}
	return true, nil
}

func (s *seatingQueries) SetReservationTable(ctx context.Context, reservationID int64, tableID *int64) error {
	var arg sql.NullInt64
	if tableID != nil {
		arg = sql.NullInt64{Int64: *tableID, Valid: true}
	}
	result, err := s.q.ExecContext(ctx, `UPDATE reservations SET table_id = $2 WHERE id = $1`, reservationID, arg)
	if err != nil {
		return fmt.Errorf("update reservation table: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
