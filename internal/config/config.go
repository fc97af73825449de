package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v2"
)

const (
	// DefaultEnvironmentSuffix is stripped from the function name to get the environment label.
	DefaultEnvironmentSuffix = "-alert-processor"
	DefaultServerPort        = "8088"
	DefaultPollIntervalSec   = 10
	DefaultConfigPath        = "/etc/config"

	alarmChannelsFile = "alarm-channels.yaml"
)

var (
	// ErrAlertEmailRequired is returned when ALERT_EMAIL is not set.
	ErrAlertEmailRequired = errors.New("missing required env var: ALERT_EMAIL")
	// ErrQueueURLRequired is returned in poller mode when SQS_QUEUE_URL is not set.
	ErrQueueURLRequired = errors.New("missing required env var: SQS_QUEUE_URL")
)

type Config struct {
	// AlertEmail is both the SES source and the single recipient. It must be verified in SES.
	AlertEmail        string
	FunctionName      string
	EnvironmentSuffix string
	LogLevel          string

	SlackBotToken string
	SlackChannels map[string]string
	AlarmChannels map[string]string

	// InLambda is true when the Lambda runtime API is reachable.
	InLambda        bool
	SQSQueueURL     string
	PollIntervalSec int
	ServerPort      string
}

type AlarmChannelConfig struct {
	AlarmMappings map[string]string `yaml:"alarm_mappings"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv. A missing ALERT_EMAIL
// fails here, before any envelope is looked at.
func LoadFrom(getenv func(string) string) (*Config, error) {
	alertEmail := getenv("ALERT_EMAIL")
	if alertEmail == "" {
		return nil, ErrAlertEmailRequired
	}

	pollInterval := DefaultPollIntervalSec
	if v := getenv("POLL_INTERVAL_SEC"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			pollInterval = val
		}
	}

	alarmChannels, err := loadAlarmChannelMappings(getEnvOrDefault(getenv, "CONFIG_PATH", DefaultConfigPath))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AlertEmail:        alertEmail,
		FunctionName:      getenv("AWS_LAMBDA_FUNCTION_NAME"),
		EnvironmentSuffix: getEnvOrDefault(getenv, "ENVIRONMENT_SUFFIX", DefaultEnvironmentSuffix),
		LogLevel:          getEnvOrDefault(getenv, "LOG_LEVEL", "info"),
		SlackBotToken:     getenv("SLACK_BOT_TOKEN"),
		SlackChannels: map[string]string{
			"CRITICAL": getenv("SLACK_CHANNEL_CRITICAL"),
			"WARNING":  getenv("SLACK_CHANNEL_WARNING"),
			"default":  getEnvOrDefault(getenv, "SLACK_CHANNEL_DEFAULT", "#alerts"),
		},
		AlarmChannels:   alarmChannels,
		InLambda:        getenv("AWS_LAMBDA_RUNTIME_API") != "",
		SQSQueueURL:     getenv("SQS_QUEUE_URL"),
		PollIntervalSec: pollInterval,
		ServerPort:      getEnvOrDefault(getenv, "SERVER_PORT", DefaultServerPort),
	}

	if !cfg.InLambda && cfg.SQSQueueURL == "" {
		return nil, ErrQueueURLRequired
	}

	return cfg, nil
}

// loadAlarmChannelMappings reads alarm-channels.yaml from dir. A missing
// file yields an empty mapping.
func loadAlarmChannelMappings(dir string) (map[string]string, error) {
	path := filepath.Join(dir, alarmChannelsFile)

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}

		return nil, fmt.Errorf("read alarm channel config: %w", err)
	}

	var config AlarmChannelConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse alarm channel config: %w", err)
	}

	if config.AlarmMappings == nil {
		return map[string]string{}, nil
	}

	return config.AlarmMappings, nil
}

func getEnvOrDefault(getenv func(string) string, key, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}
