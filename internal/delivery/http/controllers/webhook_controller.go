package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"eventseating/internal/delivery/http/helpers"
	"eventseating/internal/domain"
)

// maxWebhookBytes bounds webhook bodies; the signature covers the raw bytes.
const maxWebhookBytes = 1 << 20

// WebhookAck is the acknowledgment returned to the payment notifier.
type WebhookAck struct {
	Status        domain.WebhookOutcome `json:"status"`
	ReservationID int64                 `json:"reservation_id,omitempty"`
}

// WebhookSuccessResponse is the success response envelope for POST /webhooks/paypal.
type WebhookSuccessResponse struct {
	Data  *WebhookAck       `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// WebhookController receives payment notifications.
type WebhookController struct {
	Logger   *slog.Logger
	Verifier domain.WebhookVerifier
	Service  domain.PaymentService
}

func NewWebhookController(logger *slog.Logger, verifier domain.WebhookVerifier, svc domain.PaymentService) *WebhookController {
	return &WebhookController{
		Logger:   logger,
		Verifier: verifier,
		Service:  svc,
	}
}

// PayPal godoc
// @Summary Payment notification
// @Description Verifies the delivery signature, records the reservation of a completed sale once per payment reference and tries to seat it. Seating failures are still acknowledged; the reservation stays unassigned. Other event types are acknowledged and ignored.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param event body domain.WebhookEvent true "Webhook event"
// @Success 200 {object} controllers.WebhookSuccessResponse "data.status: processed, duplicate or ignored"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /webhooks/paypal [post]
func (c *WebhookController) PayPal(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unreadable body")
		return
	}
	if !c.Verifier.Verify(r.Header, body) {
		c.Logger.WarnContext(r.Context(), "webhook signature rejected", "path", r.URL.Path)
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid signature")
		return
	}
	var event domain.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "malformed event")
		return
	}

	outcome, res, err := c.Service.HandleWebhookEvent(r.Context(), &event)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			c.Logger.WarnContext(r.Context(), "webhook rejected", "event_id", event.ID, "err", err)
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "event_id", event.ID, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "payment not recorded")
		return
	}

	ack := &WebhookAck{Status: outcome}
	if res != nil {
		ack.ReservationID = res.ID
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ack)
}
