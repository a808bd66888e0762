package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
)

// SMTPMailer sends over SMTP with STARTTLS and PLAIN auth.
type SMTPMailer struct {
	host     string
	port     string
	from     string
	password string
	timeout  time.Duration
}

// NewMailer returns an SMTPMailer, or a LogMailer when no credentials are
// configured so development setups still see the codes in the log.
func NewMailer(host, port, from, password string) Mailer {
	if from == "" || password == "" {
		logger.Warn("SMTP credentials not set; emails will only be logged")
		return LogMailer{}
	}
	return &SMTPMailer{
		host:     host,
		port:     port,
		from:     from,
		password: password,
		timeout:  30 * time.Second,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	dialer := &net.Dialer{Timeout: m.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(m.host, m.port))
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}
	if err := client.Auth(smtp.PlainAuth("", m.from, m.password, m.host)); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}
	if _, err := w.Write(buildMIME(m.from, msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	// the message is accepted once Data is closed
	_ = client.Quit()
	return nil
}

func buildMIME(from string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: The Eatsplorer Team <" + from + ">\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	if msg.ID != "" {
		b.WriteString("X-Eatsplorer-Message-ID: " + msg.ID + "\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	logger.Info("[DEV MODE] Email not sent", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
		"kind":    string(msg.Kind),
	})
	return nil
}
