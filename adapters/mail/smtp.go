// Package mail delivers the report email over SMTP.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"kpireport/internal/errors"
	"kpireport/models"

	gomail "github.com/emersion/go-message/mail"
)

// Config holds SMTP configuration
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends multipart emails through an SMTP relay
type SMTPMailer struct {
	config Config
	send   sendFunc
	now    func() time.Time
}

// NewSMTPMailer creates a mailer. Port 465 uses implicit TLS, every other
// port relies on STARTTLS as negotiated by net/smtp.
func NewSMTPMailer(config Config) *SMTPMailer {
	m := &SMTPMailer{config: config, now: time.Now}
	if config.Port == 465 {
		m.send = sendImplicitTLS
	} else {
		m.send = smtp.SendMail
	}
	return m
}

// Send composes the message and hands it to the relay
func (m *SMTPMailer) Send(ctx context.Context, email *models.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.config.Host == "" {
		return errors.ConfigInvalid("SMTP host not configured")
	}
	if m.config.From == "" {
		return errors.ConfigInvalid("from email not configured")
	}
	if len(email.To) == 0 {
		return errors.InvalidInput("email has no recipients")
	}

	msg, err := BuildMessage(m.config.From, m.config.FromName, email, m.now())
	if err != nil {
		return errors.Wrap(err, "failed to build email")
	}

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	addr := net.JoinHostPort(m.config.Host, strconv.Itoa(m.config.Port))
	if err := m.send(addr, auth, m.config.From, email.To, msg); err != nil {
		return errors.ExternalServiceError("smtp", err)
	}

	log.Printf("[Mailer] Sent %q to %d recipients (%d bytes, %d attachments)",
		email.Subject, len(email.To), len(msg), len(email.Attachments))
	return nil
}

// BuildMessage renders an RFC 5322 message: an HTML body followed by the
// attachments, as multipart/mixed
func BuildMessage(from, fromName string, email *models.Email, date time.Time) ([]byte, error) {
	var h gomail.Header
	h.SetDate(date)
	h.SetSubject(email.Subject)
	h.SetAddressList("From", []*gomail.Address{{Name: fromName, Address: from}})

	to := make([]*gomail.Address, 0, len(email.To))
	for _, addr := range email.To {
		to = append(to, &gomail.Address{Address: addr})
	}
	h.SetAddressList("To", to)
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("generate message id: %w", err)
	}

	var buf bytes.Buffer
	mw, err := gomail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create writer: %w", err)
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, fmt.Errorf("create inline: %w", err)
	}
	var th gomail.InlineHeader
	th.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	pw, err := tw.CreatePart(th)
	if err != nil {
		return nil, fmt.Errorf("create html part: %w", err)
	}
	if _, err := io.WriteString(pw, email.HTMLBody); err != nil {
		return nil, fmt.Errorf("write html part: %w", err)
	}
	if err := pw.Close(); err != nil {
		return nil, fmt.Errorf("close html part: %w", err)
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("close inline part: %w", err)
	}

	for _, a := range email.Attachments {
		var ah gomail.AttachmentHeader
		ah.SetFilename(a.Filename)
		ah.SetContentType(a.ContentType, map[string]string{"charset": "utf-8"})
		aw, err := mw.CreateAttachment(ah)
		if err != nil {
			return nil, fmt.Errorf("create attachment %s: %w", a.Filename, err)
		}
		if _, err := aw.Write(a.Content); err != nil {
			return nil, fmt.Errorf("write attachment %s: %w", a.Filename, err)
		}
		if err := aw.Close(); err != nil {
			return nil, fmt.Errorf("close attachment %s: %w", a.Filename, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}
	return buf.Bytes(), nil
}

func sendImplicitTLS(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("tls dial: %w", err)
	}
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Close()

	if a != nil {
		if err := c.Auth(a); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
