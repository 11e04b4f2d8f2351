package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"eventseating/internal/domain"
)

var (
	itemDateRegexp  = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)
	itemSeatsRegexp = regexp.MustCompile(`(\d+) Seat`)
)

const defaultCurrency = "USD"

type paymentService struct {
	allocator        domain.AllocatorService
	emailService     domain.EmailService
	logger           *slog.Logger
	defaultEventDate string
}

// NewPaymentService returns a PaymentService that records completed sales through the allocator.
func NewPaymentService(allocator domain.AllocatorService, emailService domain.EmailService, logger *slog.Logger, defaultEventDate string) domain.PaymentService {
	return &paymentService{
		allocator:        allocator,
		emailService:     emailService,
		logger:           logger,
		defaultEventDate: defaultEventDate,
	}
}

func (s *paymentService) HandleWebhookEvent(ctx context.Context, event *domain.WebhookEvent) (domain.WebhookOutcome, *domain.Reservation, error) {
	if event == nil || event.EventType != domain.EventTypeSaleCompleted {
		return domain.WebhookIgnored, nil, nil
	}
	if event.Resource == nil {
		return "", nil, fmt.Errorf("%w: %s event %s has no resource", domain.ErrInvalidInput, event.EventType, event.ID)
	}

	intake := ParseSale(event.Resource, s.defaultEventDate)
	r, created, err := s.allocator.IngestPayment(ctx, intake)
	if err != nil {
		return "", nil, fmt.Errorf("ingest payment %s: %w", intake.PaymentRef, err)
	}
	if !created {
		return domain.WebhookDuplicate, r, nil
	}

	s.logger.InfoContext(ctx, "payment processed",
		"payment_ref", r.PaymentRef,
		"party_name", r.PartyName,
		"seat_count", r.SeatCount,
		"event_date", r.EventDate,
		"seated", r.Assigned(),
	)
	s.sendConfirmation(ctx, r)
	return domain.WebhookProcessed, r, nil
}

func (s *paymentService) sendConfirmation(ctx context.Context, r *domain.Reservation) {
	if r.Contact == "" {
		return
	}
	err := s.emailService.SendReservationConfirmation(ctx, &domain.ReservationConfirmationEmailData{
		Email:     r.Contact,
		PartyName: r.PartyName,
		EventDate: r.EventDate,
		SeatCount: r.SeatCount,
		Amount:    r.AmountPaid,
		Currency:  r.Currency,
		Seated:    r.Assigned(),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to send reservation confirmation", "reservation_id", r.ID, "error", err)
	}
}

// ParseSale extracts the reservation details from a completed sale. The event date and seat
// count come from the first item name ("... 2025-06-13 ... 3 Seats"); a missing or impossible
// date falls back to defaultEventDate and a missing seat count to 1.
func ParseSale(sale *domain.SaleResource, defaultEventDate string) *domain.PaymentIntake {
	itemName := sale.FirstItemName()

	eventDate := defaultEventDate
	if m := itemDateRegexp.FindStringSubmatch(itemName); m != nil && domain.ValidEventDate(m[1]) {
		eventDate = m[1]
	}
	seats := 1
	if m := itemSeatsRegexp.FindStringSubmatch(itemName); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			seats = n
		}
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(sale.Amount.Total), 64)
	if err != nil {
		amount = 0
	}
	currency := sale.Amount.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	info := sale.Payer.PayerInfo
	return &domain.PaymentIntake{
		PaymentRef: sale.ID,
		PartyName:  strings.TrimSpace(info.FirstName + " " + info.LastName),
		Contact:    info.Email,
		EventDate:  eventDate,
		SeatCount:  seats,
		Amount:     amount,
		Currency:   currency,
	}
}
