package sqs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"alert-processor/internal/logger"
)

const (
	maxMessages     = 10
	waitTimeSeconds = 10
	receiveBackoff  = 5 * time.Second
)

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// BatchHandler consumes one received batch. The batch is always deleted afterwards.
type BatchHandler func(ctx context.Context, records []events.SQSMessage)

// Poller feeds queue batches to a BatchHandler when running outside Lambda.
type Poller struct {
	Client   sqsAPI
	QueueURL string
	Interval time.Duration
}

func NewPoller(cfg aws.Config, queueURL string, interval time.Duration) *Poller {
	return &Poller{
		Client:   sqs.NewFromConfig(cfg),
		QueueURL: queueURL,
		Interval: interval,
	}
}

// Poll receives batches until ctx is cancelled.
func (p *Poller) Poll(ctx context.Context, handler BatchHandler) {
	for {
		wait := p.Interval

		n, err := p.PollOnce(ctx, handler)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.Errorf(ctx, "Receive error: %v", err)
			wait = receiveBackoff
		} else if n > 0 {
			// Drain without pausing while the queue has work.
			wait = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// PollOnce receives a single batch, hands it to handler and deletes every
// message in it. It returns the number of messages received.
func (p *Poller) PollOnce(ctx context.Context, handler BatchHandler) (int, error) {
	out, err := p.Client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(p.QueueURL),
		MaxNumberOfMessages: maxMessages,
		WaitTimeSeconds:     waitTimeSeconds,
	})
	if err != nil {
		return 0, fmt.Errorf("receive messages: %w", err)
	}

	if len(out.Messages) == 0 {
		return 0, nil
	}

	records := make([]events.SQSMessage, 0, len(out.Messages))
	for _, msg := range out.Messages {
		records = append(records, toRecord(msg))
	}

	handler(ctx, records)

	for _, msg := range out.Messages {
		_, err := p.Client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      aws.String(p.QueueURL),
			ReceiptHandle: msg.ReceiptHandle,
		})
		if err != nil {
			logger.Errorf(ctx, "Delete error for message %s: %v", aws.ToString(msg.MessageId), err)
		}
	}

	return len(out.Messages), nil
}

func toRecord(msg types.Message) events.SQSMessage {
	return events.SQSMessage{
		MessageId:     aws.ToString(msg.MessageId),
		ReceiptHandle: aws.ToString(msg.ReceiptHandle),
		Body:          aws.ToString(msg.Body),
		Md5OfBody:     aws.ToString(msg.MD5OfBody),
		Attributes:    msg.Attributes,
		EventSource:   "aws:sqs",
	}
}
