package notifier

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

type Mailer interface {
	Send(to, subject, body string) error
}

// LogMailer writes mail to the application log instead of delivering it.
// Used whenever SMTP is not configured.
type LogMailer struct {
	Logger *zap.Logger
}

func (m *LogMailer) Send(to, subject, body string) error {
	m.Logger.Info("outgoing mail",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}

type SMTPMailer struct {
	Host     string
	Port     string
	Sender   string
	Password string
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.Sender, to, subject, body)
	auth := smtp.PlainAuth("", m.Sender, m.Password, m.Host)
	return smtp.SendMail(m.Host+":"+m.Port, auth, m.Sender, []string{to}, []byte(msg))
}
