// Package mail is the outbound mail port. Delivery is fire-and-forget: the
// services never block a request on SMTP and never fail one because mail
// could not be sent.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Mailer sends a plain-text message to a single recipient.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer delivers through a plain-auth SMTP relay.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPMailer creates a mailer for the given relay address (host:port).
func NewSMTPMailer(addr, username, password, from string) *SMTPMailer {
	host := addr
	if i := strings.Index(addr, ":"); i >= 0 {
		host = addr[:i]
	}
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{addr: addr, auth: auth, from: from}
}

// Send delivers a single message.
func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// NopMailer logs instead of sending. Used when SMTP is unconfigured.
type NopMailer struct {
	logger *zap.Logger
}

// NewNopMailer creates a logging no-op mailer.
func NewNopMailer(logger *zap.Logger) *NopMailer {
	return &NopMailer{logger: logger}
}

// Send logs the message and drops it.
func (m *NopMailer) Send(to, subject, _ string) error {
	m.logger.Info("mail delivery disabled, dropping message",
		zap.String("to", to), zap.String("subject", subject))
	return nil
}

// New returns an SMTP mailer when addr is set, a logging nop otherwise.
func New(addr, username, password, from string, logger *zap.Logger) Mailer {
	if addr == "" {
		return NewNopMailer(logger)
	}
	return NewSMTPMailer(addr, username, password, from)
}
