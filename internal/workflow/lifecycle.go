// Package workflow holds the Temporal workflows that drive the periodic
// environment lifecycle.
package workflow

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/edvin/branchbox/internal/core"
)

// ScheduleSweepWorkflow runs hourly. It sweeps for the hour at utcOffset that
// the workflow was started in, so a late retry still applies the hour it was
// scheduled for.
func ScheduleSweepWorkflow(ctx workflow.Context, utcOffset int) (*core.SweepResult, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 10 * time.Second,
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	hour := core.CurrentHour(workflow.Now(ctx), utcOffset)

	var result core.SweepResult
	if err := workflow.ExecuteActivity(ctx, "SweepSchedules", hour).Get(ctx, &result); err != nil {
		return nil, fmt.Errorf("sweep hour %d: %w", hour, err)
	}

	workflow.GetLogger(ctx).Info("schedule sweep complete",
		"hour", hour,
		"stopped", len(result.Stopped),
		"started", len(result.Started),
		"errors", len(result.Errors))
	return &result, nil
}

// SyncReadinessWorkflow promotes CREATING environments whose stacks have
// settled.
func SyncReadinessWorkflow(ctx workflow.Context) (*core.ReadinessResult, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 2,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var result core.ReadinessResult
	if err := workflow.ExecuteActivity(ctx, "SyncReadiness").Get(ctx, &result); err != nil {
		return nil, fmt.Errorf("sync readiness: %w", err)
	}
	return &result, nil
}
