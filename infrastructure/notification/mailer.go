package notification

import (
	"fmt"
	"net/smtp"
	"strings"

	"social-calendar/infrastructure/configuration"
)

// IMailer sends plain-text email. Used for token expiry warnings.
type IMailer interface {
	Send(to, subject, body string) error
}

type SMTPMailer struct {
	cfg configuration.Mail
}

func NewSMTPMailer(cfg configuration.Mail) IMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	if m.cfg.Host == "" || m.cfg.From == "" {
		return fmt.Errorf("mailer not configured")
	}
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		body,
	}, "\r\n")
	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg))
}
