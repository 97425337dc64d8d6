package documents

import (
	"context"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"github.com/sirupsen/logrus"
)

// Attachment references a rendered document, either archived (URI) or inline.
type Attachment struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	URI         string `json:"uri,omitempty"`
	Data        []byte `json:"data,omitempty"`
}

// Notifier delivers an invoice summary to a customer.
type Notifier interface {
	Send(ctx context.Context, destination string, summary string, snapshot InvoiceSnapshot, attachment Attachment) error
}

type mailRequest struct {
	Destination string          `json:"destination"`
	Summary     string          `json:"summary"`
	Invoice     InvoiceSnapshot `json:"invoice"`
	Attachment  Attachment      `json:"attachment"`
}

// PubSubNotifier publishes a mail request for the mailer service.
type PubSubNotifier struct {
	Topic string
}

func (n PubSubNotifier) Send(ctx context.Context, destination string, summary string, s InvoiceSnapshot, attachment Attachment) error {
	attrs := map[string]string{
		"business_id":    s.BusinessId,
		"event":          s.Event,
		"correlation_id": s.CorrelationId,
	}
	_, err := config.PublishJSON(ctx, n.Topic, attrs, mailRequest{
		Destination: destination,
		Summary:     summary,
		Invoice:     s,
		Attachment:  attachment,
	})
	if err != nil {
		return utils.NewDependencyError("pubsub", err)
	}
	return nil
}

// LogNotifier only records that a notification would have been sent.
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n LogNotifier) Send(ctx context.Context, destination string, summary string, s InvoiceSnapshot, attachment Attachment) error {
	if n.Logger == nil {
		return nil
	}
	n.Logger.WithFields(logrus.Fields{
		"field":          "LogNotifier",
		"business_id":    s.BusinessId,
		"invoice_number": s.InvoiceNumber,
		"destination":    destination,
		"attachment":     attachment.FileName,
	}).Info(summary)
	return nil
}
