// Package mailer delivers notification emails. The SMTP sender is the
// production path; the log sender keeps local development working without
// a relay.
package mailer

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

type Sender interface {
	Send(to, subject, body string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPSender struct {
	config SMTPConfig
}

func NewSMTPSender(config SMTPConfig) *SMTPSender {
	return &SMTPSender{config: config}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: Shina Boutique <%s>\r\n", s.config.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	if err := smtp.SendMail(addr, auth, s.config.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("email send error: %w", err)
	}

	log.Printf("Email sent to %s: %s", to, subject)
	return nil
}

// LogSender writes emails to the log instead of delivering them.
type LogSender struct{}

func (LogSender) Send(to, subject, _ string) error {
	log.Printf("Email (log only) to %s: %s", to, subject)
	return nil
}

var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = LogSender{}
)
