package adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	unknown = "Unknown"

	defaultAlarmName   = "Unknown Alarm"
	defaultDescription = "No description"
	defaultReason      = "No reason provided"

	// timestampLayout mirrors an ISO-8601 timestamp with microseconds and no zone.
	timestampLayout = "2006-01-02T15:04:05.000000"
)

var (
	// ErrMissingMessage is returned when the SNS envelope carries no Message field.
	ErrMissingMessage = errors.New("sns envelope has no Message")
	// ErrNullAlarm is returned when the Message decodes to JSON null.
	ErrNullAlarm = errors.New("alarm payload is null")
)

// CloudWatchAlarm is the alarm payload CloudWatch publishes to SNS.
// Every field is optional, so pointers tell absent apart from empty.
type CloudWatchAlarm struct {
	AlarmName        *string  `json:"AlarmName"`
	AlarmDescription *string  `json:"AlarmDescription"`
	NewStateValue    *string  `json:"NewStateValue"`
	OldStateValue    *string  `json:"OldStateValue"`
	NewStateReason   *string  `json:"NewStateReason"`
	StateChangeTime  *string  `json:"StateChangeTime"`
	Trigger          *Trigger `json:"Trigger"`
}

type Trigger struct {
	MetricName *string `json:"MetricName"`
	// Threshold is kept raw: CloudWatch sends a number, but it is rendered verbatim.
	Threshold  json.RawMessage `json:"Threshold"`
	Dimensions []Dimension     `json:"Dimensions"`
}

type Dimension struct {
	Value *string `json:"value"`
}

// Alarm is the decoded alarm with every default applied.
type Alarm struct {
	Name        string
	Description string
	NewState    string
	OldState    string
	Reason      string
	Timestamp   string
	InstanceID  string
	MetricName  string
	Threshold   string
}

// AdaptSQSMessage decodes an SQS body holding an SNS notification whose
// Message is itself the JSON alarm. now supplies the timestamp when the
// alarm has none.
func AdaptSQSMessage(body string, now time.Time) (*Alarm, error) {
	var envelope struct {
		Message *string `json:"Message"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return nil, fmt.Errorf("decode sns envelope: %w", err)
	}

	if envelope.Message == nil {
		return nil, ErrMissingMessage
	}

	var alarm *CloudWatchAlarm
	if err := json.Unmarshal([]byte(*envelope.Message), &alarm); err != nil {
		return nil, fmt.Errorf("decode alarm payload: %w", err)
	}

	if alarm == nil {
		return nil, ErrNullAlarm
	}

	return alarm.withDefaults(now), nil
}

func (a *CloudWatchAlarm) withDefaults(now time.Time) *Alarm {
	out := &Alarm{
		Name:        valueOr(a.AlarmName, defaultAlarmName),
		Description: valueOr(a.AlarmDescription, defaultDescription),
		NewState:    valueOr(a.NewStateValue, unknown),
		OldState:    valueOr(a.OldStateValue, unknown),
		Reason:      valueOr(a.NewStateReason, defaultReason),
		Timestamp:   valueOr(a.StateChangeTime, now.UTC().Format(timestampLayout)),
		InstanceID:  unknown,
		MetricName:  unknown,
		Threshold:   unknown,
	}

	if a.Trigger == nil {
		return out
	}

	// Only the first dimension identifies the instance.
	if len(a.Trigger.Dimensions) > 0 {
		out.InstanceID = valueOr(a.Trigger.Dimensions[0].Value, unknown)
	}

	out.MetricName = valueOr(a.Trigger.MetricName, unknown)
	out.Threshold = formatThreshold(a.Trigger.Threshold)

	return out
}

func formatThreshold(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return unknown
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}

	// Exponent notation is expanded to plain decimal, e.g. 1e2 becomes 100.0.
	if bytes.ContainsAny(raw, "eE") {
		if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
			out := strconv.FormatFloat(f, 'f', -1, 64)
			if !strings.Contains(out, ".") {
				out += ".0"
			}
			return out
		}
	}

	return string(raw)
}

func valueOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
