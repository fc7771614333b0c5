package core

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/branchbox/internal/model"
	"github.com/edvin/branchbox/internal/template"
)

// Deps are the collaborators the services are built from.
type Deps struct {
	DB          DB
	Stacks      StackBackend
	Artifacts   ArtifactStore
	Source      SourceHost
	Credentials CredentialStore
	Exchanger   TokenExchanger
	// Instances enables host suspension on scheduled transitions when non-nil.
	Instances InstanceController
	Generator *template.Generator

	FallbackCredentials model.GitHubCredentials
	TokenTTL            time.Duration
	DeployConcurrency   int
	BackendTimeout      time.Duration
}

type Services struct {
	Environment *EnvironmentService
	Credentials *CredentialBroker
	Provision   *ProvisionService
	Deploy      *DeployService
	Schedule    *ScheduleService
	Push        *PushService
	Repository  *RepositoryService
}

func NewServices(logger zerolog.Logger, d Deps) *Services {
	envs := NewEnvironmentService(d.DB)
	envs.timeout = d.BackendTimeout
	deploy := NewDeployService(logger, envs, d.Stacks, d.Artifacts, d.Source, d.DeployConcurrency, d.BackendTimeout)

	return &Services{
		Environment: envs,
		Credentials: NewCredentialBroker(logger, d.Credentials, d.FallbackCredentials, d.Exchanger, d.TokenTTL, d.BackendTimeout),
		Provision:   NewProvisionService(logger, envs, d.Stacks, d.Generator, d.BackendTimeout),
		Deploy:      deploy,
		Schedule:    NewScheduleService(logger, envs, d.Stacks, d.Instances, d.BackendTimeout),
		Push:        NewPushService(logger, envs, deploy),
		Repository:  NewRepositoryService(d.Source, d.BackendTimeout),
	}
}
