package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventseating/internal/domain"
)

const tableColumns = `id, table_number, event_date::text, capacity, current_occupancy, created_at`

func scanTable(row rowScanner) (*domain.Table, error) {
	t := &domain.Table{}
	if err := row.Scan(&t.ID, &t.TableNumber, &t.EventDate, &t.Capacity, &t.CurrentOccupancy, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *seatingQueries) getTable(ctx context.Context, query string, args ...any) (*domain.Table, error) {
	t, err := scanTable(s.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *seatingQueries) GetTableByID(ctx context.Context, id int64) (*domain.Table, error) {
	return s.getTable(ctx, `SELECT `+tableColumns+` FROM event_tables WHERE id = $1`, id)
}

func (s *seatingQueries) GetTableForUpdate(ctx context.Context, id int64) (*domain.Table, error) {
	return s.getTable(ctx, `SELECT `+tableColumns+` FROM event_tables WHERE id = $1 FOR UPDATE`, id)
}

func (s *seatingQueries) FindTableWithRoom(ctx context.Context, eventDate string, seats int) (*domain.Table, error) {
	query := `
		SELECT ` + tableColumns + `
		FROM event_tables
		WHERE event_date = $1 AND capacity - current_occupancy >= $2
		ORDER BY table_number ASC
		LIMIT 1
		FOR UPDATE
	`
	return s.getTable(ctx, query, eventDate, seats)
}

func (s *seatingQueries) ListTablesByDate(ctx context.Context, eventDate string) ([]*domain.Table, error) {
	query := `
		SELECT ` + tableColumns + `
		FROM event_tables
		WHERE event_date = $1
		ORDER BY table_number ASC
	`
	rows, err := s.q.QueryContext(ctx, query, eventDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tables := make([]*domain.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (s *seatingQueries) NextTableNumber(ctx context.Context, eventDate string) (int, error) {
	var next int
	err := s.q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(table_number), 0) + 1 FROM event_tables WHERE event_date = $1`, eventDate,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next table number: %w", err)
	}
	return next, nil
}

func (s *seatingQueries) InsertTable(ctx context.Context, t *domain.Table) error {
	query := `
		INSERT INTO event_tables (table_number, event_date, capacity, current_occupancy, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	if err := s.q.QueryRowContext(ctx, query, t.TableNumber, t.EventDate, t.Capacity, t.CurrentOccupancy, t.CreatedAt).Scan(&t.ID); err != nil {
		return fmt.Errorf("insert table: %w", err)
	}
	return nil
}

func (s *seatingQueries) AdjustOccupancy(ctx context.Context, tableID int64, delta int) (int, error) {
	query := `
		UPDATE event_tables
		SET current_occupancy = current_occupancy + $2
		WHERE id = $1 AND current_occupancy + $2 BETWEEN 0 AND capacity
		RETURNING current_occupancy
	`
	var occupancy int
	if err := s.q.QueryRowContext(ctx, query, tableID, delta).Scan(&occupancy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: table %d occupancy change %+d out of bounds", domain.ErrConsistencyFault, tableID, delta)
		}
		return 0, fmt.Errorf("adjust occupancy: %w", err)
	}
	return occupancy, nil
}

func (s *seatingQueries) ListOccupancyAudit(ctx context.Context, eventDate string) ([]*domain.OccupancyAuditRow, error) {
	query := `
		SELECT t.id, t.table_number, t.capacity, t.current_occupancy, COALESCE(SUM(r.seat_count), 0)
		FROM event_tables t
		LEFT JOIN reservations r ON r.table_id = t.id
		WHERE t.event_date = $1
		GROUP BY t.id, t.table_number, t.capacity, t.current_occupancy
		ORDER BY t.table_number ASC
	`
	rows, err := s.q.QueryContext(ctx, query, eventDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	audit := make([]*domain.OccupancyAuditRow, 0)
	for rows.Next() {
		a := &domain.OccupancyAuditRow{}
		if err := rows.Scan(&a.TableID, &a.TableNumber, &a.Capacity, &a.CurrentOccupancy, &a.AssignedSeats); err != nil {
			return nil, err
		}
		audit = append(audit, a)
	}
	return audit, rows.Err()
}
