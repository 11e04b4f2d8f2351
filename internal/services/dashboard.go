package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventseating/internal/domain"
)

type dashboardService struct {
	store            domain.SeatingStore
	cache            domain.SnapshotCache
	logger           *slog.Logger
	defaultEventDate string
	contextTimeout   time.Duration
	now              func() time.Time
}

// NewDashboardService returns the operator read side. An empty event date falls back to defaultEventDate.
func NewDashboardService(store domain.SeatingStore, cache domain.SnapshotCache, logger *slog.Logger, defaultEventDate string, timeout time.Duration) domain.DashboardService {
	return &dashboardService{
		store:            store,
		cache:            cache,
		logger:           logger,
		defaultEventDate: defaultEventDate,
		contextTimeout:   timeout,
		now:              time.Now,
	}
}

func (s *dashboardService) eventDate(date string) (string, error) {
	if date == "" {
		date = s.defaultEventDate
	}
	if !domain.ValidEventDate(date) {
		return "", fmt.Errorf("%w: event date %q must be YYYY-MM-DD", domain.ErrInvalidInput, date)
	}
	return date, nil
}

func (s *dashboardService) Snapshot(ctx context.Context, eventDate string) (*domain.SeatingSnapshot, error) {
	date, err := s.eventDate(eventDate)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if snap, ok := s.cache.Get(ctx, date); ok {
		return snap, nil
	}
	version, cacheable := s.cache.Version(ctx, date)

	snap := &domain.SeatingSnapshot{EventDate: date}
	err = s.store.WithinReadTx(ctx, func(ctx context.Context, r domain.SeatingReader) error {
		tables, err := r.ListTablesByDate(ctx, date)
		if err != nil {
			return fmt.Errorf("list tables: %w", err)
		}
		assigned, err := r.ListAssignedByDate(ctx, date)
		if err != nil {
			return fmt.Errorf("list assigned reservations: %w", err)
		}
		unassigned, err := r.ListUnassignedByDate(ctx, date)
		if err != nil {
			return fmt.Errorf("list unassigned reservations: %w", err)
		}
		stats, err := r.GetDateStats(ctx, date)
		if err != nil {
			return fmt.Errorf("date stats: %w", err)
		}

		byTable := make(map[int64][]*domain.Reservation, len(tables))
		for _, res := range assigned {
			byTable[*res.TableID] = append(byTable[*res.TableID], res)
		}
		snap.Tables = make([]*domain.TableWithReservations, 0, len(tables))
		for _, t := range tables {
			seated := byTable[t.ID]
			if seated == nil {
				seated = []*domain.Reservation{}
			}
			snap.Tables = append(snap.Tables, &domain.TableWithReservations{Table: t, Reservations: seated})
		}
		snap.Unassigned = unassigned
		snap.Stats = *stats
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", date, err)
	}
	if cacheable {
		s.cache.Set(ctx, snap, version)
	}
	return snap, nil
}

func (s *dashboardService) AuditOccupancy(ctx context.Context, eventDate string) (*domain.OccupancyReport, error) {
	date, err := s.eventDate(eventDate)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var rows []*domain.OccupancyAuditRow
	err = s.store.WithinReadTx(ctx, func(ctx context.Context, r domain.SeatingReader) error {
		var err error
		rows, err = r.ListOccupancyAudit(ctx, date)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("audit occupancy %s: %w", date, err)
	}

	report := &domain.OccupancyReport{
		EventDate:  date,
		Consistent: true,
		Tables:     rows,
		Drifted:    []*domain.OccupancyAuditRow{},
		CheckedAt:  s.now(),
	}
	for _, row := range rows {
		if row.Consistent() {
			continue
		}
		report.Consistent = false
		report.Drifted = append(report.Drifted, row)
		s.logger.ErrorContext(ctx, "table occupancy drift",
			"event_date", date,
			"table_id", row.TableID,
			"table_number", row.TableNumber,
			"capacity", row.Capacity,
			"current_occupancy", row.CurrentOccupancy,
			"assigned_seats", row.AssignedSeats,
		)
	}
	return report, nil
}
