package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/branchbox/internal/metrics"
	"github.com/edvin/branchbox/internal/model"
	"github.com/edvin/branchbox/internal/template"
)

// SweepResult reports what one sweep changed. Errors holds per-environment
// failures; they never abort the sweep.
type SweepResult struct {
	Hour    int      `json:"hour"`
	Stopped []string `json:"stopped"`
	Started []string `json:"started"`
	Errors  []string `json:"errors,omitempty"`
}

// CurrentHour returns the hour of day at the given UTC offset.
func CurrentHour(now time.Time, utcOffsetHours int) int {
	return ((now.UTC().Hour()+utcOffsetHours)%24 + 24) % 24
}

// ScheduleService applies the per-environment stop and start times.
//
// The status transition is the authoritative change. When an instance
// controller is configured, the environment host is stopped or started
// after the transition succeeds; a failure there is reported in the sweep
// result and leaves the new status in place.
type ScheduleService struct {
	registry  Registry
	stacks    StackBackend
	instances InstanceController
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewScheduleService creates the reconciler. instances may be nil, in which
// case sweeps only change status.
func NewScheduleService(logger zerolog.Logger, registry Registry, stacks StackBackend, instances InstanceController, timeout time.Duration) *ScheduleService {
	return &ScheduleService{
		registry:  registry,
		stacks:    stacks,
		instances: instances,
		timeout:   timeout,
		logger:    logger.With().Str("component", "schedule").Logger(),
	}
}

type sweepPass struct {
	from, to string
	hourOf   func(*model.Environment) string
	action   string
}

var (
	stopPass = sweepPass{
		from:   model.StatusRunning,
		to:     model.StatusStopped,
		hourOf: func(e *model.Environment) string { return e.StopTime },
		action: "stop",
	}
	startPass = sweepPass{
		from:   model.StatusStopped,
		to:     model.StatusRunning,
		hourOf: func(e *model.Environment) string { return e.StartTime },
		action: "start",
	}
)

// Sweep runs the stop pass and then the start pass for hour. An environment
// stopped by this sweep is never started by the same sweep, even when its
// start and stop times share the hour.
func (s *ScheduleService) Sweep(ctx context.Context, hour int) (*SweepResult, error) {
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("%w: hour %d out of range", ErrValidation, hour)
	}

	result := &SweepResult{Hour: hour, Stopped: []string{}, Started: []string{}}
	touched := map[string]bool{}
	result.Stopped = s.runPass(ctx, stopPass, hour, touched, result)
	result.Started = s.runPass(ctx, startPass, hour, touched, result)

	s.logger.Info().
		Int("hour", hour).
		Int("stopped", len(result.Stopped)).
		Int("started", len(result.Started)).
		Int("errors", len(result.Errors)).
		Msg("schedule sweep finished")
	return result, nil
}

func (s *ScheduleService) runPass(ctx context.Context, pass sweepPass, hour int, touched map[string]bool, result *SweepResult) []string {
	changed := []string{}

	envs, err := s.registry.ListByStatus(ctx, pass.from)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s pass: %v", pass.action, err))
		s.logger.Error().Err(err).Str("pass", pass.action).Msg("list environments failed")
		return changed
	}

	for i := range envs {
		env := &envs[i]
		key := model.IdentityOf(env)
		if touched[key.String()] {
			continue
		}

		h, ok, err := model.ScheduleHour(pass.hourOf(env))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", key, err))
			s.logger.Warn().Err(err).Str("environment", key.String()).Msg("skipping environment with invalid schedule")
			continue
		}
		if !ok || h != hour {
			continue
		}

		if err := s.registry.TransitionFrom(ctx, key, pass.from, pass.to); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", key, err))
			s.logger.Error().Err(err).Str("environment", key.String()).Str("to", pass.to).Msg("scheduled transition failed")
			continue
		}
		metrics.ScheduleTransitions.WithLabelValues(pass.to).Inc()
		touched[key.String()] = true
		changed = append(changed, key.String())

		if err := s.suspend(ctx, env, pass.action); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", key, err))
			s.logger.Warn().Err(err).Str("environment", key.String()).Msg("host suspension failed, status kept")
		}
	}
	return changed
}

func (s *ScheduleService) suspend(ctx context.Context, env *model.Environment, action string) error {
	if s.instances == nil {
		return nil
	}

	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	stack, err := s.stacks.DescribeStack(callCtx, env.StackName)
	if err != nil {
		return fmt.Errorf("%s host: %w", action, err)
	}
	instanceID := stack.Outputs[template.OutputInstanceID]
	if instanceID == "" {
		return fmt.Errorf("%s host: instance id of %s not available", action, env.StackName)
	}

	if action == "stop" {
		return s.instances.Stop(callCtx, instanceID)
	}
	return s.instances.Start(callCtx, instanceID)
}
