// Package processor forwards queued CloudWatch alarm notifications as email.
//
// Every envelope of a batch is handled on its own: a failure is logged with
// the raw envelope and swallowed, so the queue never redelivers the batch.
package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"alert-processor/internal/adapter"
	"alert-processor/internal/config"
	"alert-processor/internal/logger"
	"alert-processor/notifier"
)

// Sender delivers a rendered email and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, email notifier.Email) (string, error)
}

// Mirror copies a sent notification to a secondary channel.
type Mirror interface {
	Mirror(ctx context.Context, alarmName string, n adapter.Notification) (string, error)
}

// Outcome is the result of one envelope: a message id or an error.
type Outcome struct {
	MessageID string
	AlarmName string
	Subject   string
	Err       error
}

type Forwarder struct {
	sender            Sender
	mirror            Mirror
	alertEmail        string
	environmentSuffix string
	now               func() time.Time
}

// NewForwarder builds a forwarder. mirror may be nil.
func NewForwarder(cfg *config.Config, sender Sender, mirror Mirror) *Forwarder {
	return &Forwarder{
		sender:            sender,
		mirror:            mirror,
		alertEmail:        cfg.AlertEmail,
		environmentSuffix: cfg.EnvironmentSuffix,
		now:               time.Now,
	}
}

// Process handles records one at a time, in order, and returns one outcome
// per record. It never fails as a whole.
func (f *Forwarder) Process(ctx context.Context, functionName string, records []events.SQSMessage) []Outcome {
	environment := adapter.EnvironmentLabel(functionName, f.environmentSuffix)
	outcomes := make([]Outcome, 0, len(records))

	for i := range records {
		record := &records[i]
		recordCtx := logger.WithKV(ctx, "sqs_message_id", record.MessageId)

		outcome := f.processRecord(recordCtx, environment, record)
		if outcome.Err != nil {
			logger.ErrorKV(recordCtx, "error processing record",
				"error", outcome.Err.Error(),
				"record", rawRecord(record))
		} else {
			logger.InfoKV(recordCtx, "email sent successfully",
				"alarm", outcome.AlarmName,
				"ses_message_id", outcome.MessageID)
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

func (f *Forwarder) processRecord(ctx context.Context, environment string, record *events.SQSMessage) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome.Err = fmt.Errorf("panic while processing record: %v", r)
		}
	}()

	alarm, err := adapter.AdaptSQSMessage(record.Body, f.now())
	if err != nil {
		return Outcome{Err: err}
	}

	n := adapter.FormatEmail(alarm, environment)

	outcome = Outcome{
		AlarmName: alarm.Name,
		Subject:   n.Subject,
	}

	outcome.MessageID, err = f.sender.Send(ctx, notifier.Email{
		From:    f.alertEmail,
		To:      []string{f.alertEmail},
		Subject: n.Subject,
		Body:    n.Body,
	})
	if err != nil {
		outcome.Err = fmt.Errorf("send email for alarm %q: %w", alarm.Name, err)
		return outcome
	}

	if f.mirror != nil {
		if channel, err := f.mirror.Mirror(ctx, alarm.Name, n); err != nil {
			logger.WarnKV(ctx, "failed to mirror alarm", "alarm", alarm.Name, "error", err.Error())
		} else {
			logger.Debugf(ctx, "mirrored alarm %s to %s", alarm.Name, channel)
		}
	}

	return outcome
}

// rawRecord renders the envelope for the failure log.
func rawRecord(record *events.SQSMessage) string {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return record.Body
	}
	return string(data)
}
