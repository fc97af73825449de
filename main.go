package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"alert-processor/internal/config"
	"alert-processor/internal/handler"
	"alert-processor/internal/logger"
	"alert-processor/internal/processor"
	"alert-processor/internal/server"
	"alert-processor/internal/sqs"
	"alert-processor/notifier"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf(ctx, "Failed to load config: %v", err)
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	} else {
		logger.Warnf(ctx, "Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
	}
	defer logger.Sync()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Fatalf(ctx, "Failed to load AWS config: %v", err)
	}

	var mirror processor.Mirror
	if cfg.SlackBotToken != "" {
		mirror = notifier.NewSlackNotifier(cfg.SlackBotToken, cfg.SlackChannels, cfg.AlarmChannels)
		logger.Infof(ctx, "Mirroring alarms to Slack (%d alarm mappings)", len(cfg.AlarmChannels))
	}

	forwarder := processor.NewForwarder(cfg, notifier.NewSESNotifier(awsCfg), mirror)
	h := handler.New(forwarder, cfg.FunctionName)

	if cfg.InLambda {
		lambda.Start(h.Handle)
		return
	}

	runStandalone(ctx, cfg, awsCfg, h)
}

// runStandalone polls the queue directly and serves /health until SIGINT or SIGTERM.
func runStandalone(ctx context.Context, cfg *config.Config, awsCfg aws.Config, h *handler.Handler) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	poller := sqs.NewPoller(awsCfg, cfg.SQSQueueURL, time.Duration(cfg.PollIntervalSec)*time.Second)
	srv := server.NewServer(cfg.ServerPort)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := srv.Start(ctx); err != nil {
			logger.Errorf(ctx, "Failed to start server: %v", err)
			stop()
		}
	}()

	go func() {
		defer wg.Done()
		logger.Infof(ctx, "Starting SQS polling on %s", cfg.SQSQueueURL)
		poller.Poll(ctx, func(ctx context.Context, records []events.SQSMessage) {
			_, _ = h.Handle(ctx, events.SQSEvent{Records: records})
		})
	}()

	wg.Wait()
	logger.Infof(ctx, "Shutdown complete")
}
