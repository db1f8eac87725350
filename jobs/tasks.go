package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeDocumentRender is the task type for rendering a document PDF
	// and handing it to the mailer.
	TaskTypeDocumentRender = "document:render"
	// TaskTypeInventoryWarmup refreshes the cached diamond search results.
	TaskTypeInventoryWarmup = "inventory:warmup"
)

// SendEmailPayload describes the information required to send an email.
// AttachmentPath points at a file under the document storage directory.
type SendEmailPayload struct {
	To             string `json:"to"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	AttachmentPath string `json:"attachment_path,omitempty"`
	AttachmentName string `json:"attachment_name,omitempty"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// DocumentRenderPayload identifies the document to render and where to send
// the resulting PDF. Backend is optional; the worker falls back to its
// configured default.
type DocumentRenderPayload struct {
	DocumentID int64  `json:"document_id"`
	Email      string `json:"email"`
	Backend    string `json:"backend,omitempty"`
}

// NewDocumentRenderTask constructs an Asynq task.
func NewDocumentRenderTask(payload DocumentRenderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeDocumentRender, data), nil
}

// NewInventoryWarmupTask constructs the periodic cache warmup task.
func NewInventoryWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeInventoryWarmup, nil)
}
