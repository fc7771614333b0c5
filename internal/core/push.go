package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/edvin/branchbox/internal/metrics"
	"github.com/edvin/branchbox/internal/model"
)

// Push outcomes.
const (
	PushIgnored  = "ignored"
	PushNoToken  = "no_token"
	PushDeployed = "deployed"
	PushPartial  = "partial"
	PushFailed   = "failed"
)

// Deployer uploads an environment's sources.
type Deployer interface {
	Deploy(ctx context.Context, stackName string, services []model.Service, token string) (*model.DeployResult, error)
}

// PushResult describes what a push notification led to.
type PushResult struct {
	Outcome     string              `json:"outcome"`
	Environment string              `json:"environment,omitempty"`
	Deploy      *model.DeployResult `json:"deploy,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// PushService redeploys the environment that tracks a pushed branch.
type PushService struct {
	registry Registry
	deployer Deployer
	logger   zerolog.Logger
}

func NewPushService(logger zerolog.Logger, registry Registry, deployer Deployer) *PushService {
	return &PushService{
		registry: registry,
		deployer: deployer,
		logger:   logger.With().Str("component", "push").Logger(),
	}
}

// OnPush redeploys every service of the environment that has any service on
// repo/branch. Pushes to untracked branches and missing tokens are not
// errors; only registry failures are returned.
func (s *PushService) OnPush(ctx context.Context, repo, branch string, tokens TokenSource) (*PushResult, error) {
	result, err := s.dispatch(ctx, repo, branch, tokens)
	if err != nil {
		return nil, err
	}
	metrics.PushEvents.WithLabelValues(result.Outcome).Inc()
	return result, nil
}

func (s *PushService) dispatch(ctx context.Context, repo, branch string, tokens TokenSource) (*PushResult, error) {
	log := s.logger.With().Str("repo", repo).Str("branch", branch).Logger()

	env, err := s.registry.FindByServiceRef(ctx, repo, branch)
	if errors.Is(err, ErrNotFound) {
		log.Debug().Msg("push to untracked branch ignored")
		return &PushResult{Outcome: PushIgnored}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dispatch push %s@%s: %w", repo, branch, err)
	}

	result := &PushResult{Environment: model.IdentityOf(env).String()}

	token, err := tokens.Token(ctx)
	if err != nil {
		log.Warn().Err(err).Str("environment", result.Environment).Msg("no access token, push redeploy skipped")
		result.Outcome = PushNoToken
		result.Error = err.Error()
		return result, nil
	}

	deploy, err := s.deployer.Deploy(ctx, env.StackName, env.Services, token)
	result.Deploy = deploy
	switch {
	case err == nil:
		result.Outcome = PushDeployed
	case errors.Is(err, ErrPartialDeploy):
		result.Outcome = PushPartial
		result.Error = err.Error()
	default:
		result.Outcome = PushFailed
		result.Error = err.Error()
		log.Error().Err(err).Str("environment", result.Environment).Msg("push redeploy failed")
	}
	return result, nil
}
