package mail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"kpireport/internal"
	"kpireport/internal/errors"
	"kpireport/models"

	gomail "github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEmail() *models.Email {
	return &models.Email{
		To:       []string{"ops@example.com", "lead@example.com"},
		Subject:  "Monthly KPI Report",
		HTMLBody: "<html><body><p>All normal.</p></body></html>",
		Attachments: []models.Attachment{{
			Filename:    "2024-05-31_analysis.txt",
			ContentType: "text/plain",
			Content:     []byte("Detailed Analysis by Area\n-----\n\nBerlin: fine"),
		}},
	}
}

func TestBuildMessage_HTMLAndAttachment(t *testing.T) {
	raw, err := BuildMessage("reports@example.com", "KPI Bot", testEmail(), time.Date(2024, 5, 31, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	mr, err := gomail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)

	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Monthly KPI Report", subject)

	to, err := mr.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 2)
	assert.Equal(t, "lead@example.com", to[1].Address)

	var html, attachment, filename string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		body, err := io.ReadAll(p.Body)
		require.NoError(t, err)

		switch h := p.Header.(type) {
		case *gomail.InlineHeader:
			html = string(body)
		case *gomail.AttachmentHeader:
			filename, _ = h.Filename()
			attachment = string(body)
		}
	}

	assert.Contains(t, html, "<p>All normal.</p>")
	assert.Equal(t, "2024-05-31_analysis.txt", filename)
	assert.True(t, strings.HasPrefix(attachment, "Detailed Analysis by Area"))
}

func TestBuildMessage_EveryAttachmentIsComplete(t *testing.T) {
	email := testEmail()
	email.Attachments = append(email.Attachments, models.Attachment{
		Filename:    "overview.csv",
		ContentType: "text/csv",
		Content:     []byte("KPI,Direction,View,Median\nnOrders,more is better,wow,-2%\n"),
	})

	raw, err := BuildMessage("reports@example.com", "", email, time.Date(2024, 5, 31, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	mr, err := gomail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)

	bodies := map[string]string{}
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if h, ok := p.Header.(*gomail.AttachmentHeader); ok {
			name, _ := h.Filename()
			body, err := io.ReadAll(p.Body)
			require.NoError(t, err)
			bodies[name] = string(body)
		}
	}

	require.Len(t, bodies, 2)
	assert.Equal(t, "Detailed Analysis by Area\n-----\n\nBerlin: fine", bodies["2024-05-31_analysis.txt"])
	assert.Equal(t, "KPI,Direction,View,Median\nnOrders,more is better,wow,-2%\n", bodies["overview.csv"])
}

func TestSMTPMailer_Send(t *testing.T) {
	m := NewSMTPMailer(Config{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "bot",
		Password: "secret",
		From:     "reports@example.com",
	})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotAuth smtp.Auth
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo = addr, a, from, to
		return nil
	}

	require.NoError(t, m.Send(context.Background(), testEmail()))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "reports@example.com", gotFrom)
	assert.Equal(t, []string{"ops@example.com", "lead@example.com"}, gotTo)
	assert.NotNil(t, gotAuth)
}

func TestSMTPMailer_SendErrors(t *testing.T) {
	m := NewSMTPMailer(Config{})
	err := m.Send(context.Background(), testEmail())
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	m = NewSMTPMailer(Config{Host: "smtp.example.com", Port: 25, From: "reports@example.com"})
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return fmt.Errorf("connection refused") }
	err = m.Send(context.Background(), testEmail())
	assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))

	err = m.Send(context.Background(), &models.Email{Subject: "x"})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestLogMailer_Send(t *testing.T) {
	var buf bytes.Buffer
	logger := internal.NewLoggerTo(internal.LogLevelInfo, log.New(&buf, "", 0))

	require.NoError(t, NewLogMailer(logger).Send(context.Background(), testEmail()))
	assert.Contains(t, buf.String(), "DRY RUN")
	assert.Contains(t, buf.String(), "2024-05-31_analysis.txt")
	assert.NotContains(t, buf.String(), "Berlin: fine", "attachment body is DEBUG only")
}
