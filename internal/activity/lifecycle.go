// Package activity holds the Temporal activities the worker runs against the
// environment services.
package activity

import (
	"context"
	"errors"

	"go.temporal.io/sdk/temporal"

	"github.com/edvin/branchbox/internal/core"
)

// Sweeper applies stop and start schedules.
type Sweeper interface {
	Sweep(ctx context.Context, hour int) (*core.SweepResult, error)
}

// ReadinessSyncer promotes environments whose stacks finished provisioning.
type ReadinessSyncer interface {
	SyncReadiness(ctx context.Context) (*core.ReadinessResult, error)
}

// Lifecycle contains the periodic environment lifecycle activities.
type Lifecycle struct {
	schedule  Sweeper
	readiness ReadinessSyncer
}

func NewLifecycle(schedule Sweeper, readiness ReadinessSyncer) *Lifecycle {
	return &Lifecycle{schedule: schedule, readiness: readiness}
}

// SweepSchedules runs one schedule sweep for hour.
func (a *Lifecycle) SweepSchedules(ctx context.Context, hour int) (*core.SweepResult, error) {
	result, err := a.schedule.Sweep(ctx, hour)
	if err != nil {
		return nil, classify(err)
	}
	return result, nil
}

// SyncReadiness moves finished CREATING environments to RUNNING or FAILED.
func (a *Lifecycle) SyncReadiness(ctx context.Context) (*core.ReadinessResult, error) {
	result, err := a.readiness.SyncReadiness(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return result, nil
}

// classify marks errors that cannot succeed on retry as non-retryable.
func classify(err error) error {
	switch {
	case errors.Is(err, core.ErrValidation):
		return temporal.NewNonRetryableApplicationError(err.Error(), "VALIDATION", err)
	case errors.Is(err, core.ErrNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), "NOT_FOUND", err)
	default:
		return err
	}
}
