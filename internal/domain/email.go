package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// ReservationConfirmationEmailData holds data for the payment confirmation email.
type ReservationConfirmationEmailData struct {
	Email     string
	PartyName string
	EventDate string
	SeatCount int
	Amount    float64
	Currency  string
	Seated    bool
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendReservationConfirmation(ctx context.Context, data *ReservationConfirmationEmailData) error
}
