// Package health provides delivery health monitoring and status reporting.
package health

// Status represents the health state of the system or a target.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusCritical Status = "critical"
)

// TargetHealth contains delivery health metrics for one webhook target.
type TargetHealth struct {
	Target              string `json:"target"`
	Status              Status `json:"status"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
	Delivered           int64  `json:"delivered"`
	Failed              int64  `json:"failed"`
	LastError           string `json:"last_error,omitempty"`
}

// Report contains the full system health report.
type Report struct {
	SystemStatus Status                  `json:"system_status"`
	Targets      map[string]TargetHealth `json:"targets"`
}
