package jobs

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

func TestBuildMessageWithAttachment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stored.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7 test"), 0o644))

	msg, err := buildMessage("documents@facetdiamonds.example", SendEmailPayload{
		To:             "buyer@example.com",
		Subject:        "Invoice CD-0001A/1403 from Facet Diamonds",
		Body:           "Please find invoice CD-0001A/1403 attached.",
		AttachmentPath: path,
		AttachmentName: "CD-0001A-1403.pdf",
	})
	require.NoError(t, err)

	text := string(msg)
	require.Contains(t, text, "From: documents@facetdiamonds.example\r\n")
	require.Contains(t, text, "To: buyer@example.com\r\n")
	require.Contains(t, text, "Subject: Invoice CD-0001A/1403 from Facet Diamonds\r\n")
	require.Contains(t, text, "Content-Type: multipart/mixed; boundary=")
	require.Contains(t, text, `attachment; filename="CD-0001A-1403.pdf"`)
	require.Contains(t, text, "Content-Transfer-Encoding: base64")
	require.Contains(t, text, "Please find invoice CD-0001A/1403 attached.")
}

func TestBuildMessageWithoutAttachment(t *testing.T) {
	msg, err := buildMessage("documents@facetdiamonds.example", SendEmailPayload{
		To:      "buyer@example.com",
		Subject: "Memo MO-0002 from Facet Diamonds",
		Body:    "Please find memo MO-0002 attached.",
	})
	require.NoError(t, err)
	require.NotContains(t, string(msg), "Content-Disposition: attachment")
}

func TestBuildMessageMissingAttachmentFails(t *testing.T) {
	_, err := buildMessage("documents@facetdiamonds.example", SendEmailPayload{
		To:             "buyer@example.com",
		Subject:        "Invoice",
		Body:           "body",
		AttachmentPath: filepath.Join(t.TempDir(), "missing.pdf"),
	})
	require.Error(t, err)
}

type recordingMailer struct {
	sent []SendEmailPayload
	err  error
}

func (m *recordingMailer) Send(_ context.Context, payload SendEmailPayload) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, payload)
	return nil
}

func TestSendEmailHandlerDeliversPayload(t *testing.T) {
	mailer := &recordingMailer{}
	handler := NewSendEmailHandler(mailer, slog.New(slog.DiscardHandler))

	task, err := NewSendEmailTask(SendEmailPayload{To: "buyer@example.com", Subject: "hi", Body: "hello"})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Len(t, mailer.sent, 1)
	require.Equal(t, "buyer@example.com", mailer.sent[0].To)
}

func TestSendEmailHandlerDropsMalformedPayload(t *testing.T) {
	mailer := &recordingMailer{}
	handler := NewSendEmailHandler(mailer, slog.New(slog.DiscardHandler))

	err := handler(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte("{not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Empty(t, mailer.sent)
}

func TestSendEmailHandlerReturnsMailerError(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("relay down")}
	handler := NewSendEmailHandler(mailer, slog.New(slog.DiscardHandler))

	task, err := NewSendEmailTask(SendEmailPayload{To: "buyer@example.com"})
	require.NoError(t, err)

	err = handler(context.Background(), task)
	require.Error(t, err)
	require.NotErrorIs(t, err, asynq.SkipRetry)
}
