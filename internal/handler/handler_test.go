package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/stretchr/testify/require"

	"alert-processor/internal/config"
	"alert-processor/internal/processor"
	"alert-processor/notifier"
)

type recordingSender struct {
	emails []notifier.Email
}

func (r *recordingSender) Send(_ context.Context, email notifier.Email) (string, error) {
	r.emails = append(r.emails, email)
	return "msg-1", nil
}

func newTestHandler(sender processor.Sender, functionName string) *Handler {
	cfg := &config.Config{
		AlertEmail:        "ops@example.com",
		EnvironmentSuffix: config.DefaultEnvironmentSuffix,
	}
	return New(processor.NewForwarder(cfg, sender, nil), functionName)
}

func alarmBody(t *testing.T, alarm string) string {
	t.Helper()

	body, err := json.Marshal(map[string]string{"Message": alarm})
	require.NoError(t, err)
	return string(body)
}

func TestHandle_AlwaysAcknowledges(t *testing.T) {
	t.Parallel()

	sender := new(recordingSender)
	h := newTestHandler(sender, "prod-alert-processor")

	resp, err := h.Handle(context.Background(), events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "1", Body: "garbage"},
		{MessageId: "2", Body: `{"Message": 42}`},
		{MessageId: "3", Body: alarmBody(t, `{"AlarmName": "db-cpu-critical", "NewStateValue": "ALARM"}`)},
	}})

	require.NoError(t, err)
	require.Equal(t, Response{StatusCode: http.StatusOK, Body: "Processed successfully"}, resp)
	require.Len(t, sender.emails, 1)
	require.Contains(t, sender.emails[0].Body, "Environment: prod\n")
}

func TestHandle_EmptyBatch(t *testing.T) {
	t.Parallel()

	resp, err := newTestHandler(new(recordingSender), "").Handle(context.Background(), events.SQSEvent{})

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandle_FunctionNameFromLambdaContext(t *testing.T) {
	t.Parallel()

	sender := new(recordingSender)
	h := newTestHandler(sender, "fallback-alert-processor")

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{
		AwsRequestID:       "req-1",
		InvokedFunctionArn: "arn:aws:lambda:us-east-1:123456789012:function:staging-alert-processor:live",
	})

	_, err := h.Handle(ctx, events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "1", Body: alarmBody(t, `{"AlarmName": "db-latency-high"}`)},
	}})

	require.NoError(t, err)
	require.Len(t, sender.emails, 1)
	require.Contains(t, sender.emails[0].Body, "Environment: staging\n")
}

func TestFunctionNameFromARN(t *testing.T) {
	t.Parallel()

	require.Equal(t, "prod-alert-processor",
		functionNameFromARN("arn:aws:lambda:us-east-1:123456789012:function:prod-alert-processor"))
	require.Empty(t, functionNameFromARN(""))
	require.Empty(t, functionNameFromARN("arn:aws:sqs:us-east-1:123456789012:alerts"))
}
