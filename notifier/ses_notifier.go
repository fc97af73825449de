package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

const charsetUTF8 = "UTF-8"

var errNoMessageID = errors.New("ses returned no message id")

// Email is a plaintext message for SES.
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESNotifier struct {
	client sesAPI
}

func NewSESNotifier(cfg aws.Config) *SESNotifier {
	return &SESNotifier{
		client: ses.NewFromConfig(cfg),
	}
}

// Send delivers email and returns the SES message id. The source address
// must be verified in SES.
func (s *SESNotifier) Send(ctx context.Context, email Email) (string, error) {
	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(email.From),
		Destination: &types.Destination{
			ToAddresses: email.To,
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(email.Subject),
				Charset: aws.String(charsetUTF8),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(email.Body),
					Charset: aws.String(charsetUTF8),
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ses send email: %w", err)
	}

	if out == nil || out.MessageId == nil {
		return "", errNoMessageID
	}

	return *out.MessageId, nil
}
