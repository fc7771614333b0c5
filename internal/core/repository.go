package core

import (
	"context"
	"fmt"
	"time"

	"github.com/edvin/branchbox/internal/github"
	"github.com/edvin/branchbox/internal/model"
)

// RepositoryService lists what the App installation can see.
type RepositoryService struct {
	source  SourceHost
	timeout time.Duration
}

func NewRepositoryService(source SourceHost, timeout time.Duration) *RepositoryService {
	return &RepositoryService{source: source, timeout: timeout}
}

// ListRepositories needs a token; ErrNotConfigured and ErrAuth are returned
// as is so callers can answer unauthorized.
func (s *RepositoryService) ListRepositories(ctx context.Context, tokens TokenSource) ([]model.Repository, error) {
	token, err := tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	repos, err := s.source.ListRepositories(callCtx, token)
	if err != nil {
		return nil, sourceError(err)
	}
	if repos == nil {
		repos = []model.Repository{}
	}
	return repos, nil
}

func (s *RepositoryService) ListBranches(ctx context.Context, tokens TokenSource, owner, repo string) ([]model.Branch, error) {
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("%w: owner and repo are required", ErrValidation)
	}
	token, err := tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	branches, err := s.source.ListBranches(callCtx, token, owner, repo)
	if err != nil {
		return nil, sourceError(err)
	}
	if branches == nil {
		branches = []model.Branch{}
	}
	return branches, nil
}

func sourceError(err error) error {
	if github.IsUnauthorized(err) {
		return fmt.Errorf("%w: %v", ErrAuth, err)
	}
	return err
}
