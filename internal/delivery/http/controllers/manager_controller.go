package controllers

import (
	"log/slog"
	"net/http"

	"eventseating/internal/delivery/http/helpers"
	"eventseating/internal/domain"
)

// AssignTableRequest is the request body for POST /manager/assign-table.
type AssignTableRequest struct {
	ReservationID int64 `json:"reservation_id"`
	TableID       int64 `json:"table_id"`
}

// Validate implements Validator.
func (a AssignTableRequest) Validate() []string {
	var errs []string
	if a.ReservationID <= 0 {
		errs = append(errs, "reservation_id is required")
	}
	if a.TableID <= 0 {
		errs = append(errs, "table_id is required")
	}
	return errs
}

// ReservationRequest is the request body for commands addressing one reservation.
type ReservationRequest struct {
	ReservationID int64 `json:"reservation_id"`
}

// Validate implements Validator.
func (r ReservationRequest) Validate() []string {
	if r.ReservationID <= 0 {
		return []string{"reservation_id is required"}
	}
	return nil
}

// SnapshotSuccessResponse is the success response envelope for GET /manager/data.
type SnapshotSuccessResponse struct {
	Data  *domain.SeatingSnapshot `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// ReservationSuccessResponse is the success response envelope for assign and remove commands.
type ReservationSuccessResponse struct {
	Data  *domain.Reservation `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// TableSuccessResponse is the success response envelope for POST /manager/auto-assign.
type TableSuccessResponse struct {
	Data  *domain.Table     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// OccupancyReportSuccessResponse is the success response envelope for GET /manager/consistency.
type OccupancyReportSuccessResponse struct {
	Data  *domain.OccupancyReport `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// ManagerController serves the operator dashboard and seating commands.
type ManagerController struct {
	Logger    *slog.Logger
	Allocator domain.AllocatorService
	Dashboard domain.DashboardService
}

func NewManagerController(logger *slog.Logger, allocator domain.AllocatorService, dashboard domain.DashboardService) *ManagerController {
	return &ManagerController{
		Logger:    logger,
		Allocator: allocator,
		Dashboard: dashboard,
	}
}

// GetData godoc
// @Summary Seating snapshot for an event date
// @Description Tables ordered by number with their reservations embedded, unassigned reservations and aggregate stats. Without date the configured default event date is used.
// @Tags manager
// @Produce json
// @Param date query string false "Event date (YYYY-MM-DD)"
// @Success 200 {object} controllers.SnapshotSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 503 {object} helpers.APIResponse "error.code: upstream_unavailable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /manager/data [get]
func (c *ManagerController) GetData(w http.ResponseWriter, r *http.Request) {
	snapshot, err := c.Dashboard.Snapshot(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, snapshot)
}

// AssignTable godoc
// @Summary Seat a reservation at a table
// @Description Moves the reservation to the table, releasing its previous table if any. Fails with capacity_exceeded when the party does not fit.
// @Tags manager
// @Accept json
// @Produce json
// @Param body body AssignTableRequest true "Reservation and target table"
// @Success 200 {object} controllers.ReservationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: capacity_exceeded"
// @Failure 500 {object} helpers.APIResponse "error.code: consistency_fault or internal_error"
// @Failure 503 {object} helpers.APIResponse "error.code: upstream_unavailable"
// @Router /manager/assign-table [post]
func (c *ManagerController) AssignTable(w http.ResponseWriter, r *http.Request) {
	var req AssignTableRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	res, err := c.Allocator.Assign(r.Context(), req.ReservationID, req.TableID)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, res)
}

// RemovePlayer godoc
// @Summary Remove a reservation from its table
// @Description Clears the table assignment and frees the seats. Removing an unassigned reservation succeeds without changes.
// @Tags manager
// @Accept json
// @Produce json
// @Param body body ReservationRequest true "Reservation"
// @Success 200 {object} controllers.ReservationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: consistency_fault or internal_error"
// @Failure 503 {object} helpers.APIResponse "error.code: upstream_unavailable"
// @Router /manager/remove-player [post]
func (c *ManagerController) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	var req ReservationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	res, err := c.Allocator.Unassign(r.Context(), req.ReservationID)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, res)
}

// AutoAssign godoc
// @Summary Seat a reservation automatically
// @Description Places the reservation at the lowest-numbered table of its date with room, creating a table when none has room.
// @Tags manager
// @Accept json
// @Produce json
// @Param body body ReservationRequest true "Reservation"
// @Success 200 {object} controllers.TableSuccessResponse "data contains the table the party sits at"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: capacity_exceeded"
// @Failure 503 {object} helpers.APIResponse "error.code: upstream_unavailable"
// @Router /manager/auto-assign [post]
func (c *ManagerController) AutoAssign(w http.ResponseWriter, r *http.Request) {
	var req ReservationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	table, err := c.Allocator.AutoAssign(r.Context(), req.ReservationID)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, table)
}

// GetConsistency godoc
// @Summary Audit table occupancy
// @Description Compares each table's occupancy counter with the seats of its assigned reservations. Drift is reported, not repaired.
// @Tags manager
// @Produce json
// @Param date query string false "Event date (YYYY-MM-DD)"
// @Success 200 {object} controllers.OccupancyReportSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 503 {object} helpers.APIResponse "error.code: upstream_unavailable"
// @Router /manager/consistency [get]
func (c *ManagerController) GetConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := c.Dashboard.AuditOccupancy(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}

func (c *ManagerController) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status, _ := helpers.StatusForError(err); status >= http.StatusInternalServerError {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	helpers.WriteDomainError(w, err)
}
