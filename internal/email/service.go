// Package email sends the gateway's notification mail over SMTP.
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

var ErrNotConfigured = errors.New("email service not configured")

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Email is one outgoing message. Body is HTML.
type Email struct {
	To      []string
	ReplyTo string
	Subject string
	Body    string
}

// sendFunc matches smtp.SendMail
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service handles email sending via SMTP
type Service struct {
	config Config
	send   sendFunc
}

func NewService(config Config) *Service {
	if config.Port == 0 {
		config.Port = 587
	}
	return &Service{config: config, send: smtp.SendMail}
}

// Send delivers email. smtp.SendMail has no context, so ctx is only checked
// before dialing.
func (s *Service) Send(ctx context.Context, email *Email) error {
	if s.config.Host == "" || s.config.From == "" {
		return ErrNotConfigured
	}
	if len(email.To) == 0 {
		return errors.New("email has no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", s.config.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(email.To, ", "))
	if email.ReplyTo != "" {
		fmt.Fprintf(&msg, "Reply-To: %s\r\n", email.ReplyTo)
	}
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", email.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(email.Body)

	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	if err := s.send(addr, auth, s.config.From, email.To, msg.Bytes()); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	slog.Info("email sent", "to", email.To, "subject", email.Subject)
	return nil
}
