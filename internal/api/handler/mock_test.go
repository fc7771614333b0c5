package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edvin/branchbox/internal/core"
	"github.com/edvin/branchbox/internal/model"
)

type mockEnvironments struct {
	mock.Mock
}

func (m *mockEnvironments) List(ctx context.Context) ([]model.Environment, error) {
	args := m.Called(ctx)
	envs, _ := args.Get(0).([]model.Environment)
	return envs, args.Error(1)
}

func (m *mockEnvironments) Create(ctx context.Context, params core.CreateParams) (*model.Environment, error) {
	args := m.Called(ctx, params)
	env, _ := args.Get(0).(*model.Environment)
	return env, args.Error(1)
}

func (m *mockEnvironments) Delete(ctx context.Context, ref core.DeleteRef) (*model.Environment, error) {
	args := m.Called(ctx, ref)
	env, _ := args.Get(0).(*model.Environment)
	return env, args.Error(1)
}

type mockDeployer struct {
	mock.Mock
}

func (m *mockDeployer) DeployEnvironment(ctx context.Context, key model.Key, tokens core.TokenSource) (*model.DeployResult, error) {
	args := m.Called(ctx, key, tokens)
	res, _ := args.Get(0).(*model.DeployResult)
	return res, args.Error(1)
}

func (m *mockDeployer) Deploy(ctx context.Context, stackName string, services []model.Service, token string) (*model.DeployResult, error) {
	args := m.Called(ctx, stackName, services, token)
	res, _ := args.Get(0).(*model.DeployResult)
	return res, args.Error(1)
}

type mockSweeper struct {
	mock.Mock
}

func (m *mockSweeper) Sweep(ctx context.Context, hour int) (*core.SweepResult, error) {
	args := m.Called(ctx, hour)
	res, _ := args.Get(0).(*core.SweepResult)
	return res, args.Error(1)
}

type mockConfigStore struct {
	mock.Mock
}

func (m *mockConfigStore) Config(ctx context.Context) model.SourceConfig {
	return m.Called(ctx).Get(0).(model.SourceConfig)
}

func (m *mockConfigStore) SaveConfig(ctx context.Context, creds model.GitHubCredentials) error {
	return m.Called(ctx, creds).Error(0)
}

type mockRepos struct {
	mock.Mock
}

func (m *mockRepos) ListRepositories(ctx context.Context, tokens core.TokenSource) ([]model.Repository, error) {
	args := m.Called(ctx, tokens)
	repos, _ := args.Get(0).([]model.Repository)
	return repos, args.Error(1)
}

func (m *mockRepos) ListBranches(ctx context.Context, tokens core.TokenSource, owner, repo string) ([]model.Branch, error) {
	args := m.Called(ctx, tokens, owner, repo)
	branches, _ := args.Get(0).([]model.Branch)
	return branches, args.Error(1)
}

type mockPush struct {
	mock.Mock
}

func (m *mockPush) OnPush(ctx context.Context, repo, branch string, tokens core.TokenSource) (*core.PushResult, error) {
	args := m.Called(ctx, repo, branch, tokens)
	res, _ := args.Get(0).(*core.PushResult)
	return res, args.Error(1)
}
