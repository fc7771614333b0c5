package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/edvin/branchbox/internal/cloud"
	"github.com/edvin/branchbox/internal/model"
)

// ReadinessResult reports one pass over CREATING environments.
type ReadinessResult struct {
	Ready   []string `json:"ready"`
	Failed  []string `json:"failed"`
	Pending int      `json:"pending"`
	Errors  []string `json:"errors,omitempty"`
}

// SyncReadiness moves CREATING environments to RUNNING once their stack has
// completed, or to FAILED when the stack failed, rolled back or disappeared.
func (s *ProvisionService) SyncReadiness(ctx context.Context) (*ReadinessResult, error) {
	envs, err := s.registry.ListByStatus(ctx, model.StatusCreating)
	if err != nil {
		return nil, fmt.Errorf("list creating environments: %w", err)
	}

	result := &ReadinessResult{Ready: []string{}, Failed: []string{}}
	for i := range envs {
		env := &envs[i]
		key := model.IdentityOf(env)

		to, err := s.observedStatus(ctx, env)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", key, err))
			s.logger.Warn().Err(err).Str("environment", key.String()).Msg("describe stack failed")
			continue
		}
		if to == "" {
			result.Pending++
			continue
		}

		if err := s.registry.TransitionFrom(ctx, key, model.StatusCreating, to); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", key, err))
			continue
		}
		if to == model.StatusRunning {
			result.Ready = append(result.Ready, key.String())
		} else {
			result.Failed = append(result.Failed, key.String())
		}
		s.logger.Info().Str("environment", key.String()).Str("status", to).Msg("environment provisioning finished")
	}
	return result, nil
}

// observedStatus maps the stack state to the environment status it implies,
// or "" while the stack is still in progress.
func (s *ProvisionService) observedStatus(ctx context.Context, env *model.Environment) (string, error) {
	stack := env.StackID
	if stack == "" {
		stack = env.StackName
	}

	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	st, err := s.stacks.DescribeStack(callCtx, stack)
	switch {
	case errors.Is(err, cloud.ErrNotFound):
		return model.StatusFailed, nil
	case err != nil:
		return "", err
	case st.Complete():
		return model.StatusRunning, nil
	case st.Failed():
		return model.StatusFailed, nil
	}
	return "", nil
}
