package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetermineSeverity(t *testing.T) {
	t.Parallel()

	cases := map[string]Severity{
		"db-cpu-critical":   SeverityCritical,
		"CRITICAL-disk":     SeverityCritical,
		"api-Critical-5xx":  SeverityCritical,
		"db-latency-high":   SeverityWarning,
		"":                  SeverityWarning,
		"crit-memory-usage": SeverityWarning,
	}
	for name, want := range cases {
		assert.Equal(t, want, DetermineSeverity(name), name)
	}
}

func TestEnvironmentLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "prod", EnvironmentLabel("prod-alert-processor", "-alert-processor"))
	assert.Equal(t, "staging-db", EnvironmentLabel("staging-db-alert-processor", "-alert-processor"))
	assert.Equal(t, "custom-fn", EnvironmentLabel("custom-fn", "-alert-processor"))
	assert.Equal(t, "", EnvironmentLabel("", "-alert-processor"))
	assert.Equal(t, "prod-alert-processor", EnvironmentLabel("prod-alert-processor", ""))
}

func TestFormatEmail_Subject(t *testing.T) {
	t.Parallel()

	n := FormatEmail(&Alarm{Name: "db-cpu-critical", NewState: "ALARM", OldState: "OK"}, "prod")
	require.Equal(t, SeverityCritical, n.Severity)
	require.Equal(t, "[CRITICAL] db-cpu-critical - ALARM", n.Subject)

	n = FormatEmail(&Alarm{Name: "db-latency-high", NewState: "OK"}, "prod")
	require.Equal(t, SeverityWarning, n.Severity)
	require.Equal(t, "[WARNING] db-latency-high - OK", n.Subject)
}

func TestFormatEmail_Body(t *testing.T) {
	t.Parallel()

	alarm := &Alarm{
		Name:        "db-cpu-critical",
		Description: "CPU above 90%",
		NewState:    "ALARM",
		OldState:    "OK",
		Reason:      "Threshold Crossed",
		Timestamp:   "2025-07-23T13:32:26.882+0000",
		InstanceID:  "i-0abc",
		MetricName:  "CPUUtilization",
		Threshold:   "90.0",
	}

	want := `Drata Compliance Alert - CloudWatch Alarm Notification

ALARM DETAILS:
- Name: db-cpu-critical
- Description: CPU above 90%
- State Change: OK → ALARM
- Timestamp: 2025-07-23T13:32:26.882+0000
- Severity: CRITICAL

INSTANCE INFORMATION:
- Instance ID: i-0abc
- Metric: CPUUtilization
- Threshold: 90.0

REASON:
Threshold Crossed

This is an automated alert from the Drata compliance monitoring system.
Environment: prod

--
Cloudberry Database - Automated Monitoring System`

	require.Equal(t, want, FormatEmail(alarm, "prod").Body)
}
