package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// sender is satisfied by *gomail.Dialer.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer implements ports.Mailer over SMTP.
type Mailer struct {
	dialer sender
	from   string
	log    zerolog.Logger
}

// NewMailer creates a Mailer that dials the SMTP server for every message.
func NewMailer(host string, port int, username, password, from string, log zerolog.Logger) *Mailer {
	return newMailer(gomail.NewDialer(host, port, username, password), from, log)
}

func newMailer(dialer sender, from string, log zerolog.Logger) *Mailer {
	return &Mailer{dialer: dialer, from: from, log: log}
}

// Send delivers one HTML e-mail. gomail has no context support, so ctx is
// only checked before dialing.
func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	m.log.Debug().Str("to", to).Str("subject", subject).Msg("e-mail sent")
	return nil
}
