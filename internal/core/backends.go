package core

import (
	"context"

	"github.com/edvin/branchbox/internal/cloud"
	"github.com/edvin/branchbox/internal/model"
)

// Registry is the environment store the lifecycle services work against.
// EnvironmentService is the Postgres implementation.
type Registry interface {
	Create(ctx context.Context, env *model.Environment) error
	Get(ctx context.Context, key model.Key) (*model.Environment, error)
	List(ctx context.Context) ([]model.Environment, error)
	ListByStatus(ctx context.Context, status string) ([]model.Environment, error)
	FindByServiceRef(ctx context.Context, repo, branch string) (*model.Environment, error)
	FindByStackID(ctx context.Context, stackID string) (*model.Environment, error)
	Transition(ctx context.Context, key model.Key, to string) error
	TransitionFrom(ctx context.Context, key model.Key, from, to string) error
	Delete(ctx context.Context, key model.Key) error
}

// StackBackend is the provisioning backend.
type StackBackend interface {
	CreateStack(ctx context.Context, name, templateBody string) (string, error)
	DeleteStack(ctx context.Context, stack string) error
	DescribeStack(ctx context.Context, stack string) (*cloud.Stack, error)
}

// ArtifactStore receives source archives.
type ArtifactStore interface {
	Put(ctx context.Context, bucket, key string, body []byte) error
}

// SourceHost is the source-code host API.
type SourceHost interface {
	ListRepositories(ctx context.Context, token string) ([]model.Repository, error)
	ListBranches(ctx context.Context, token, owner, repo string) ([]model.Branch, error)
	DownloadArchive(ctx context.Context, token, owner, repo, ref string) ([]byte, error)
}

// InstanceController suspends and resumes an environment host.
type InstanceController interface {
	Stop(ctx context.Context, instanceID string) error
	Start(ctx context.Context, instanceID string) error
}
