package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"

	"alert-processor/internal/adapter"
)

// ErrNoChannel is returned when no Slack channel is configured for an alarm.
var ErrNoChannel = errors.New("no slack channel for alarm")

type slackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier mirrors rendered alarm emails into Slack.
type SlackNotifier struct {
	client        slackPoster
	channels      map[string]string
	alarmChannels map[string]string
}

// NewSlackNotifier routes by alarm name via alarmChannels first, then by
// severity via channels, then to channels["default"].
func NewSlackNotifier(botToken string, channels, alarmChannels map[string]string) *SlackNotifier {
	return &SlackNotifier{
		client:        slack.New(botToken),
		channels:      channels,
		alarmChannels: alarmChannels,
	}
}

// Channel returns the channel an alarm is routed to, or "" if none is configured.
func (s *SlackNotifier) Channel(alarmName string, severity adapter.Severity) string {
	if channel := s.alarmChannels[alarmName]; channel != "" {
		return channel
	}

	if channel := s.channels[string(severity)]; channel != "" {
		return channel
	}

	return s.channels["default"]
}

// Mirror posts the rendered notification for alarmName and returns the channel used.
func (s *SlackNotifier) Mirror(ctx context.Context, alarmName string, n adapter.Notification) (string, error) {
	channel := s.Channel(alarmName, n.Severity)
	if channel == "" {
		return "", ErrNoChannel
	}

	emoji := "⚠️"
	if n.Severity == adapter.SeverityCritical {
		emoji = "🚨"
	}

	headerSection := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("%s *%s*", emoji, n.Subject), false, false),
		nil, nil,
	)
	bodySection := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("```%s```", n.Body), false, false),
		nil, nil,
	)

	_, _, err := s.client.PostMessageContext(ctx, channel,
		slack.MsgOptionBlocks(headerSection, bodySection),
		slack.MsgOptionText(n.Subject, false),
	)
	if err != nil {
		return channel, fmt.Errorf("post slack message to %s: %w", channel, err)
	}

	return channel, nil
}
