package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"refund-service/internal/core/domain"
	"refund-service/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type emailTemplate struct {
	subject string
	body    *template.Template
}

var emailTemplates = map[domain.NotificationKind]emailTemplate{
	domain.NotificationPending: {
		subject: "We received your withdrawal request",
		body: template.Must(template.New("pending").Parse(
			`<p>Hi {{.Name}},</p>
<p>We received your withdrawal request for payment <b>{{.Reference}}</b> ({{.Amount}}).
It is outside the automatic refund period, so our team will review it shortly.</p>`)),
	},
	domain.NotificationAutoRefunded: {
		subject: "Your refund has been processed",
		body: template.Must(template.New("auto_refunded").Parse(
			`<p>Hi {{.Name}},</p>
<p>Your payment <b>{{.Reference}}</b> has been refunded in full ({{.Amount}}).
Your subscription has been cancelled.</p>`)),
	},
	domain.NotificationApproved: {
		subject: "Your withdrawal request was approved",
		body: template.Must(template.New("approved").Parse(
			`<p>Hi {{.Name}},</p>
<p>Your withdrawal request for payment <b>{{.Reference}}</b> was approved and {{.Amount}} has been refunded.</p>
{{if .Notes}}<p>Note from our team: {{.Notes}}</p>{{end}}`)),
	},
	domain.NotificationRejected: {
		subject: "Your withdrawal request was declined",
		body: template.Must(template.New("rejected").Parse(
			`<p>Hi {{.Name}},</p>
<p>Your withdrawal request for payment <b>{{.Reference}}</b> was declined.</p>
<p>Reason: {{.Notes}}</p>`)),
	},
}

type emailData struct {
	Name      string
	Reference string
	Amount    string
	Notes     string
}

// NotificationService implements ports.NotificationDelivery.
type NotificationService struct {
	profiles ports.ProfileDirectory
	mailer   ports.Mailer
	events   ports.EventPublisher
	log      zerolog.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(
	profiles ports.ProfileDirectory,
	mailer ports.Mailer,
	events ports.EventPublisher,
	log zerolog.Logger,
) *NotificationService {
	return &NotificationService{
		profiles: profiles,
		mailer:   mailer,
		events:   events,
		log:      log,
	}
}

// Deliver publishes the status event and e-mails the user.
// The event goes first; the bus drops repeats by DedupKey, so a retry after a
// failed e-mail does not duplicate it.
func (s *NotificationService) Deliver(ctx context.Context, n domain.Notification) error {
	tmpl, ok := emailTemplates[n.Kind]
	if !ok {
		return fmt.Errorf("unknown notification kind %q", n.Kind)
	}

	if err := s.events.Publish(ctx, n.Kind.EventType(), n); err != nil {
		return fmt.Errorf("publish %s: %w", n.Kind.EventType(), err)
	}

	contact, err := s.profiles.ContactOf(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("resolve contact: %w", err)
	}
	if contact == nil || contact.Email == "" {
		s.log.Warn().
			Str("user_id", n.UserID.String()).
			Str("kind", string(n.Kind)).
			Msg("no e-mail address on file, skipping e-mail")
		return nil
	}

	body, err := renderEmail(tmpl, contact, n)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, contact.Email, tmpl.subject, body); err != nil {
		return fmt.Errorf("send e-mail: %w", err)
	}

	s.log.Debug().
		Str("request_id", n.RequestID.String()).
		Str("kind", string(n.Kind)).
		Msg("refund notification delivered")
	return nil
}

func renderEmail(tmpl emailTemplate, contact *domain.Contact, n domain.Notification) (string, error) {
	name := contact.DisplayName
	if name == "" {
		name = "there"
	}
	data := emailData{
		Name:      name,
		Reference: n.PaymentReference,
		Amount:    FormatAmount(n.Amount, n.Currency),
	}
	if n.AdminNotes != nil {
		data.Notes = *n.AdminNotes
	}

	var buf bytes.Buffer
	if err := tmpl.body.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s e-mail: %w", n.Kind, err)
	}
	return buf.String(), nil
}

// FormatAmount renders a minor-unit amount for humans, e.g. "IDR 149000" or "EUR 12.50".
func FormatAmount(amount int64, currency string) string {
	exp := domain.CurrencyExponent(currency)
	return currency + " " + decimal.New(amount, -exp).StringFixed(exp)
}
