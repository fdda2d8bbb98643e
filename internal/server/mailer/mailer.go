// Package mailer renders and delivers the account emails sent by the auth
// service: the welcome note, email verification and password reset.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"github.com/dmitrijs2005/admagic/internal/logging"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a rendered message.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// LogMailer writes messages to the log instead of an SMTP relay. Links stay
// usable in development because the body is logged verbatim.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(l logging.Logger) *LogMailer {
	return &LogMailer{logger: l}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.Info(ctx, "mail sent", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}

var (
	welcomeTmpl = template.Must(template.New("welcome").Parse(
		`Hi {{.Name}},

Welcome to AdMagic! Your account is ready. Start creating at {{.AppURL}}.
`))

	verificationTmpl = template.Must(template.New("verification").Parse(
		`Hi {{.Name}},

Confirm your email address by opening the link below:

{{.Link}}

The link is valid for {{.TTL}}. If you did not create an account, ignore this message.
`))

	resetTmpl = template.Must(template.New("reset").Parse(
		`Hi {{.Name}},

We received a request to reset your password. Open the link below to choose a new one:

{{.Link}}

The link is valid for {{.TTL}}. If you did not ask for a reset, ignore this message.
`))
)

type mailData struct {
	Name   string
	AppURL string
	Link   string
	TTL    string
}

// Builder renders account emails with links rooted at the frontend URL.
type Builder struct {
	appURL string
}

func NewBuilder(appURL string) *Builder {
	return &Builder{appURL: strings.TrimRight(appURL, "/")}
}

func (b *Builder) Welcome(to, name string) (Message, error) {
	return render(welcomeTmpl, to, "Welcome to AdMagic!", mailData{Name: name, AppURL: b.appURL})
}

func (b *Builder) Verification(to, name, token, ttl string) (Message, error) {
	return render(verificationTmpl, to, "Verify your email address", mailData{
		Name: name,
		Link: b.link("/auth/verify-email", token),
		TTL:  ttl,
	})
}

func (b *Builder) PasswordReset(to, name, token, ttl string) (Message, error) {
	return render(resetTmpl, to, "Reset your password", mailData{
		Name: name,
		Link: b.link("/auth/reset-password", token),
		TTL:  ttl,
	})
}

func (b *Builder) link(path, token string) string {
	return b.appURL + path + "?token=" + url.QueryEscape(token)
}

func render(t *template.Template, to, subject string, d mailData) (Message, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, d); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return Message{To: to, Subject: subject, Body: buf.String()}, nil
}
