package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"alert-processor/internal/logger"
	"alert-processor/internal/processor"
)

// ProcessedBody is the fixed acknowledgment returned for every batch.
const ProcessedBody = "Processed successfully"

type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

type Handler struct {
	forwarder    *processor.Forwarder
	functionName string
}

// New returns a Lambda handler. functionName is used when the invocation
// context does not name the function.
func New(forwarder *processor.Forwarder, functionName string) *Handler {
	return &Handler{
		forwarder:    forwarder,
		functionName: functionName,
	}
}

// Handle processes an SQS batch. Per-record failures are logged by the
// forwarder; the batch is always acknowledged so SQS does not redeliver it.
func (h *Handler) Handle(ctx context.Context, event events.SQSEvent) (Response, error) {
	functionName := h.functionName
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		ctx = logger.WithKV(ctx, "aws_request_id", lc.AwsRequestID)
		if name := functionNameFromARN(lc.InvokedFunctionArn); name != "" {
			functionName = name
		}
	}

	outcomes := h.forwarder.Process(ctx, functionName, event.Records)

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	logger.InfoKV(ctx, "batch processed", "records", len(outcomes), "failed", failed)

	return Response{
		StatusCode: http.StatusOK,
		Body:       ProcessedBody,
	}, nil
}

// functionNameFromARN extracts NAME from arn:aws:lambda:REGION:ACCOUNT:function:NAME[:QUALIFIER].
func functionNameFromARN(arn string) string {
	parts := strings.Split(arn, ":")
	if len(parts) < 7 || parts[5] != "function" {
		return ""
	}
	return parts[6]
}
