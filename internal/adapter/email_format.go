package adapter

import (
	"fmt"
	"strings"
)

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
)

// Notification is the rendered email for one alarm.
type Notification struct {
	Severity Severity
	Subject  string
	Body     string
}

// DetermineSeverity is CRITICAL when the alarm name mentions "critical" in any case.
func DetermineSeverity(alarmName string) Severity {
	if strings.Contains(strings.ToLower(alarmName), "critical") {
		return SeverityCritical
	}
	return SeverityWarning
}

// EnvironmentLabel strips suffix from the function name, e.g.
// "prod-alert-processor" becomes "prod".
func EnvironmentLabel(functionName, suffix string) string {
	if suffix == "" {
		return functionName
	}
	return strings.ReplaceAll(functionName, suffix, "")
}

// FormatEmail renders the subject and plaintext body for alarm.
func FormatEmail(alarm *Alarm, environment string) Notification {
	severity := DetermineSeverity(alarm.Name)

	body := fmt.Sprintf(`Drata Compliance Alert - CloudWatch Alarm Notification

ALARM DETAILS:
- Name: %s
- Description: %s
- State Change: %s → %s
- Timestamp: %s
- Severity: %s

INSTANCE INFORMATION:
- Instance ID: %s
- Metric: %s
- Threshold: %s

REASON:
%s

This is an automated alert from the Drata compliance monitoring system.
Environment: %s

--
Cloudberry Database - Automated Monitoring System`,
		alarm.Name,
		alarm.Description,
		alarm.OldState, alarm.NewState,
		alarm.Timestamp,
		severity,
		alarm.InstanceID,
		alarm.MetricName,
		alarm.Threshold,
		alarm.Reason,
		environment)

	return Notification{
		Severity: severity,
		Subject:  fmt.Sprintf("[%s] %s - %s", severity, alarm.Name, alarm.NewState),
		Body:     strings.TrimSpace(body),
	}
}
