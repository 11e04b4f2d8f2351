package domain

import (
	"context"
	"net/http"
)

// EventTypeSaleCompleted is the only webhook event that records a reservation.
const EventTypeSaleCompleted = "PAYMENT.SALE.COMPLETED"

// WebhookEvent is the payment notifier envelope.
type WebhookEvent struct {
	ID        string        `json:"id"`
	EventType string        `json:"event_type"`
	Resource  *SaleResource `json:"resource"`
}

// SaleResource is the completed sale carried by PAYMENT.SALE.COMPLETED.
type SaleResource struct {
	ID       string     `json:"id"`
	Amount   SaleAmount `json:"amount"`
	Payer    SalePayer  `json:"payer"`
	ItemList *ItemList  `json:"item_list,omitempty"`
}

// SaleAmount holds the decimal total as sent by the notifier.
type SaleAmount struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

// SalePayer wraps the payer details.
type SalePayer struct {
	PayerInfo PayerInfo `json:"payer_info"`
}

// PayerInfo identifies who paid.
type PayerInfo struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ItemList is the purchased line items.
type ItemList struct {
	Items []Item `json:"items"`
}

// Item is one purchased line item. Name carries the event date and seat count as free text.
type Item struct {
	Name string `json:"name"`
}

// FirstItemName returns the name of the first line item, or "".
func (s *SaleResource) FirstItemName() string {
	if s.ItemList == nil || len(s.ItemList.Items) == 0 {
		return ""
	}
	return s.ItemList.Items[0].Name
}

// WebhookVerifier decides whether a webhook delivery is authentic.
type WebhookVerifier interface {
	Verify(header http.Header, body []byte) bool
}

// WebhookOutcome describes what happened to a verified webhook delivery.
type WebhookOutcome string

const (
	WebhookProcessed WebhookOutcome = "processed"
	WebhookDuplicate WebhookOutcome = "duplicate"
	WebhookIgnored   WebhookOutcome = "ignored"
)

// PaymentService turns payment notifications into reservations.
type PaymentService interface {
	// HandleWebhookEvent records the reservation of a completed sale. Allocation failures are
	// logged, not returned; an error means the payment could not be recorded at all.
	HandleWebhookEvent(ctx context.Context, event *WebhookEvent) (WebhookOutcome, *Reservation, error)
}
