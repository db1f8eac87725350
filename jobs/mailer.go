package jobs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"

	"github.com/hibiken/asynq"
)

// Mailer sends transactional mail. The SMTP implementation below covers the
// dev stack (Mailpit) and plain production relays.
type Mailer interface {
	Send(ctx context.Context, payload SendEmailPayload) error
}

// SMTPMailer delivers mail through a single SMTP relay.
type SMTPMailer struct {
	Addr     string // host:port
	From     string
	Username string
	Password string
	logger   *slog.Logger
}

// NewSMTPMailer constructs an SMTPMailer.
func NewSMTPMailer(addr, from, username, password string, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{Addr: addr, From: from, Username: username, Password: password, logger: logger}
}

// Send builds a MIME message, attaching the referenced file when present,
// and submits it to the relay.
func (m *SMTPMailer) Send(_ context.Context, payload SendEmailPayload) error {
	msg, err := buildMessage(m.From, payload)
	if err != nil {
		return err
	}
	var auth smtp.Auth
	if m.Username != "" {
		host, _, err := net.SplitHostPort(m.Addr)
		if err != nil {
			host = m.Addr
		}
		auth = smtp.PlainAuth("", m.Username, m.Password, host)
	}
	return smtp.SendMail(m.Addr, auth, m.From, []string{payload.To}, msg)
}

func buildMessage(from string, payload SendEmailPayload) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", payload.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", payload.Subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", writer.Boundary())

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	textPart, err := writer.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(payload.Body)); err != nil {
		return nil, err
	}

	if payload.AttachmentPath != "" {
		data, err := os.ReadFile(payload.AttachmentPath)
		if err != nil {
			return nil, fmt.Errorf("read attachment: %w", err)
		}
		name := payload.AttachmentName
		if name == "" {
			name = filepath.Base(payload.AttachmentPath)
		}
		attHeader := textproto.MIMEHeader{}
		attHeader.Set("Content-Type", "application/pdf")
		attHeader.Set("Content-Transfer-Encoding", "base64")
		attHeader.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
		attPart, err := writer.CreatePart(attHeader)
		if err != nil {
			return nil, err
		}
		encoded := make([]byte, base64.StdEncoding.EncodedLen(len(data)))
		base64.StdEncoding.Encode(encoded, data)
		if _, err := attPart.Write(encoded); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	buf.Write(body.Bytes())
	return buf.Bytes(), nil
}

// NewSendEmailHandler returns the asynq handler for TaskTypeSendEmail.
// A malformed payload is dropped rather than retried.
func NewSendEmailHandler(mailer Mailer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.To == "" {
			return asynq.SkipRetry
		}
		if err := mailer.Send(ctx, payload); err != nil {
			logger.Warn("send email", slog.String("to", payload.To), slog.Any("error", err))
			return err
		}
		logger.Info("email sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
		return nil
	}
}
