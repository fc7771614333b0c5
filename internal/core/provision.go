package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/branchbox/internal/metrics"
	"github.com/edvin/branchbox/internal/model"
	"github.com/edvin/branchbox/internal/platform"
	"github.com/edvin/branchbox/internal/template"
)

// CreateParams describes a new environment. A nil StopTime applies the
// default stop time; a pointer to "" disables auto-stop. A nil StartTime
// disables auto-start.
type CreateParams struct {
	Services  []model.Service
	Alias     string
	StopTime  *string
	StartTime *string
	Owner     string
}

// DeleteRef addresses an environment either by backend stack id or by the
// repository and branch of its key.
type DeleteRef struct {
	StackID string
	Repo    string
	Branch  string
	// Archive keeps the record with status ARCHIVED instead of removing it.
	Archive bool
}

// ProvisionService creates and tears down environments.
type ProvisionService struct {
	registry  Registry
	stacks    StackBackend
	generator *template.Generator
	timeout   time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

func NewProvisionService(logger zerolog.Logger, registry Registry, stacks StackBackend, generator *template.Generator, timeout time.Duration) *ProvisionService {
	return &ProvisionService{
		registry:  registry,
		stacks:    stacks,
		generator: generator,
		timeout:   timeout,
		logger:    logger.With().Str("component", "provision").Logger(),
		now:       time.Now,
	}
}

// Create validates params, submits the environment template and records the
// environment as CREATING. It does not wait for the stack to finish.
func (s *ProvisionService) Create(ctx context.Context, params CreateParams) (*model.Environment, error) {
	stopTime, startTime, err := validateCreate(params)
	if err != nil {
		return nil, err
	}

	key := model.IdentityOf(&model.Environment{Services: params.Services})
	if _, err := s.registry.Get(ctx, key); err == nil {
		return nil, fmt.Errorf("%w: environment %s already exists", ErrConflict, key)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check existing environment %s: %w", key, err)
	}

	now := s.now()
	stackName := platform.StackName(now)
	tpl, err := s.generator.Generate(stackName, params.Services)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	body, err := tpl.JSON()
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	callCtx, cancel := withTimeout(ctx, s.timeout)
	stackID, err := s.stacks.CreateStack(callCtx, stackName, body)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvision, err)
	}

	env := &model.Environment{
		ID:        platform.NewID(),
		StackID:   stackID,
		StackName: stackName,
		Alias:     params.Alias,
		StopTime:  stopTime,
		StartTime: startTime,
		Status:    model.StatusCreating,
		Services:  params.Services,
		Owner:     params.Owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.registry.Create(ctx, env); err != nil {
		s.rollbackStack(ctx, stackID)
		return nil, fmt.Errorf("%w: register environment %s: %v", ErrProvision, key, err)
	}

	metrics.EnvironmentsCreated.Inc()
	s.logger.Info().
		Str("environment", key.String()).
		Str("stack", stackName).
		Int("services", len(params.Services)).
		Msg("environment submitted")
	return env, nil
}

func (s *ProvisionService) rollbackStack(ctx context.Context, stackID string) {
	callCtx, cancel := withTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.stacks.DeleteStack(callCtx, stackID); err != nil {
		s.logger.Error().Err(err).Str("stack", stackID).Msg("failed to delete stack after registry write failed")
	}
}

// Delete tears down the environment's stack and removes (or archives) its
// record. Deletion is allowed from every status.
func (s *ProvisionService) Delete(ctx context.Context, ref DeleteRef) (*model.Environment, error) {
	env, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	key := model.IdentityOf(env)

	if env.StackID != "" || env.StackName != "" {
		stack := env.StackID
		if stack == "" {
			stack = env.StackName
		}
		callCtx, cancel := withTimeout(ctx, s.timeout)
		err := s.stacks.DeleteStack(callCtx, stack)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProvision, err)
		}
	}

	if ref.Archive && env.Status != model.StatusArchived {
		if err := s.registry.TransitionFrom(ctx, key, env.Status, model.StatusArchived); err != nil {
			return nil, err
		}
		env.Status = model.StatusArchived
	} else if !ref.Archive {
		if err := s.registry.Delete(ctx, key); err != nil {
			return nil, err
		}
	}

	s.logger.Info().Str("environment", key.String()).Bool("archived", ref.Archive).Msg("environment deleted")
	return env, nil
}

func (s *ProvisionService) resolve(ctx context.Context, ref DeleteRef) (*model.Environment, error) {
	switch {
	case ref.StackID != "":
		return s.registry.FindByStackID(ctx, ref.StackID)
	case ref.Repo != "" && ref.Branch != "":
		return s.registry.Get(ctx, model.Key{Repo: ref.Repo, Branch: ref.Branch})
	default:
		return nil, fmt.Errorf("%w: stack id or repo and branch are required", ErrValidation)
	}
}

func validateCreate(params CreateParams) (stopTime, startTime string, err error) {
	if len(params.Services) == 0 {
		return "", "", fmt.Errorf("%w: at least one service is required", ErrValidation)
	}
	for i, svc := range params.Services {
		if svc.Repo == "" || svc.Branch == "" {
			return "", "", fmt.Errorf("%w: service %d: repo and branch are required", ErrValidation, i)
		}
		if _, _, err := svc.OwnerRepo(); err != nil {
			return "", "", fmt.Errorf("%w: service %d: %v", ErrValidation, i, err)
		}
	}

	stopTime = model.DefaultStopTime
	if params.StopTime != nil {
		stopTime = *params.StopTime
	}
	if params.StartTime != nil {
		startTime = *params.StartTime
	}
	if stopTime != "" && !model.ValidHour(stopTime) {
		return "", "", fmt.Errorf("%w: stop time %q must be HH:MM", ErrValidation, stopTime)
	}
	if startTime != "" && !model.ValidHour(startTime) {
		return "", "", fmt.Errorf("%w: start time %q must be HH:MM", ErrValidation, startTime)
	}
	return stopTime, startTime, nil
}

// withTimeout bounds one backend call. A zero d keeps ctx as is.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
