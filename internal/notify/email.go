package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"tgscout/internal/components/assert"
	"tgscout/internal/components/telemetry"
	"tgscout/internal/ranking"

	"github.com/jordan-wright/email"
)

type EmailOptions struct {
	Server   string
	Port     int
	Username string
	Password string
	// From defaults to Username.
	From string
	To   []string
}

// Email sends one mail per flagged channel over SMTP with PLAIN auth.
type Email struct {
	opts EmailOptions
	tel  telemetry.API
}

func NewEmail(opts EmailOptions, tel telemetry.API) *Email {
	assert.NotEmptyStr(opts.Server)
	assert.NotNil(tel)
	if opts.From == "" {
		opts.From = opts.Username
	}
	if opts.Port == 0 {
		opts.Port = 587
	}
	return &Email{
		opts: opts,
		tel:  telemetry.NewScopedAPI("notify", tel),
	}
}

func (e *Email) mail(channel ranking.Flagged) *email.Email {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("tgscout <%s>", e.opts.From)
	mail.To = e.opts.To
	mail.Subject = fmt.Sprintf("High-quality channel: %s", channel.Text)
	mail.Text = []byte(Text(channel))
	mail.HTML = []byte(strings.ReplaceAll(Message(channel), "\n", "<br>\n"))
	return mail
}

// Notify does not honor ctx cancellation once the SMTP session started.
func (e *Email) Notify(ctx context.Context, channel ranking.Flagged) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.tel.ReportDebug(report_notify_send, "email", channel.URL)

	mail := e.mail(channel)
	addr := fmt.Sprintf("%s:%d", e.opts.Server, e.opts.Port)

	err := mail.Send(addr, smtp.PlainAuth("", e.opts.Username, e.opts.Password, e.opts.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		return fmt.Errorf("email: send: %w", err)
	}
	return nil
}
