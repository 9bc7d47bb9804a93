package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"edgesync/internal/config"
	"edgesync/internal/logger"
)

// Mailer delivers the one-time account-setup email for customers created
// by an import. Delivery failures are the caller's to log; they never
// roll back the account.
type Mailer interface {
	SendAccountSetup(to, firstName, lastName, resetURL string) error
}

// New returns an SMTP mailer when SMTP is configured, otherwise a
// log-only mailer so imports keep working in development.
func New(cfg *config.Config, log *logger.Logger) Mailer {
	if cfg.SMTPHost == "" {
		return &logMailer{logger: log}
	}
	return &smtpMailer{cfg: cfg}
}

type smtpMailer struct {
	cfg *config.Config
}

func (m *smtpMailer) SendAccountSetup(to, firstName, lastName, resetURL string) error {
	subject := fmt.Sprintf("Welcome to %s - Set Up Your Account", m.cfg.SiteName)

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s %s,\r\n\r\n", firstName, lastName)
	fmt.Fprintf(&b, "Welcome to %s! An account has been created for you.\r\n\r\n", m.cfg.SiteName)
	b.WriteString("To set up your password and login to your account, visit the following address:\r\n\r\n")
	b.WriteString(resetURL + "\r\n\r\n")
	b.WriteString("This link will expire in 24 hours for security reasons.\r\n\r\n")
	fmt.Fprintf(&b, "Your username: %s\r\n\r\n", to)
	b.WriteString("Thanks!\r\n\r\n")
	b.WriteString(m.cfg.SiteName)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		m.cfg.MailFrom, to, subject, b.String())

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.MailFrom, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send account setup mail to %s: %w", to, err)
	}
	return nil
}

type logMailer struct {
	logger *logger.Logger
}

func (m *logMailer) SendAccountSetup(to, firstName, lastName, resetURL string) error {
	m.logger.Info("SMTP not configured; account setup mail for %s (%s %s) not sent, reset link: %s",
		to, firstName, lastName, resetURL)
	return nil
}
