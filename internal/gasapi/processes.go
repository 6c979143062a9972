package gasapi

import (
	"context"
)

// Process is one execution log entry: a running or completed script
// process.
type Process struct {
	FunctionName string
	State        string
	Type         string
	StartTime    string
	Duration     string
	UserAccess   string
}

// MetricPoint is one datapoint of a project metric series.
type MetricPoint struct {
	Value     int64
	StartTime string
	EndTime   string
}

// Metrics aggregates the three metric series the API exposes.
type Metrics struct {
	ActiveUsers      []MetricPoint
	TotalExecutions  []MetricPoint
	FailedExecutions []MetricPoint
}

// ListProcesses returns execution log entries for the project, optionally
// filtered to a single function name.
func (c *Client) ListProcesses(ctx context.Context, scriptID, functionName string, pageSize int, pageToken string) ([]Process, string, error) {
	srv, err := c.factory.Script(ctx)
	if err != nil {
		return nil, "", err
	}

	if pageSize <= 0 {
		pageSize = 20
	}
	call := srv.Processes.List().
		UserProcessFilterScriptId(scriptID).
		PageSize(int64(pageSize)).
		Context(ctx)
	if functionName != "" {
		call = call.UserProcessFilterFunctionName(functionName)
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	result, err := call.Do()
	if err != nil {
		return nil, "", apiErr("listing processes", err)
	}

	processes := make([]Process, 0, len(result.Processes))
	for _, p := range result.Processes {
		processes = append(processes, Process{
			FunctionName: p.FunctionName,
			State:        p.ProcessStatus,
			Type:         p.ProcessType,
			StartTime:    p.StartTime,
			Duration:     p.Duration,
			UserAccess:   p.UserAccessLevel,
		})
	}
	return processes, result.NextPageToken, nil
}

// GetMetrics returns execution metrics for the project.
func (c *Client) GetMetrics(ctx context.Context, scriptID string) (*Metrics, error) {
	srv, err := c.factory.Script(ctx)
	if err != nil {
		return nil, err
	}

	m, err := srv.Projects.GetMetrics(scriptID).Context(ctx).Do()
	if err != nil {
		return nil, apiErr("getting metrics", err)
	}

	out := &Metrics{}
	for _, v := range m.ActiveUsers {
		out.ActiveUsers = append(out.ActiveUsers, MetricPoint{Value: int64(v.Value), StartTime: v.StartTime, EndTime: v.EndTime})
	}
	for _, v := range m.TotalExecutions {
		out.TotalExecutions = append(out.TotalExecutions, MetricPoint{Value: int64(v.Value), StartTime: v.StartTime, EndTime: v.EndTime})
	}
	for _, v := range m.FailedExecutions {
		out.FailedExecutions = append(out.FailedExecutions, MetricPoint{Value: int64(v.Value), StartTime: v.StartTime, EndTime: v.EndTime})
	}
	return out, nil
}
