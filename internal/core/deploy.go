package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/branchbox/internal/cloud"
	"github.com/edvin/branchbox/internal/metrics"
	"github.com/edvin/branchbox/internal/model"
	"github.com/edvin/branchbox/internal/template"
)

// DeployService stages source archives into an environment's artifact
// bucket. Each upload lands on the key its pipeline's source stage polls,
// which starts that pipeline.
//
// Up to concurrency services upload at once (DEPLOY_CONCURRENCY, default 3).
// With a limit above 1, services after a failing one may already be in
// flight when it fails: they can still finish as uploaded, or fail with a
// canceled context, instead of being skipped. A limit of 1 uploads in order
// and skips everything after the first failure.
type DeployService struct {
	registry    Registry
	stacks      StackBackend
	artifacts   ArtifactStore
	source      SourceHost
	concurrency int
	timeout     time.Duration
	logger      zerolog.Logger
}

func NewDeployService(logger zerolog.Logger, registry Registry, stacks StackBackend, artifacts ArtifactStore, source SourceHost, concurrency int, timeout time.Duration) *DeployService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &DeployService{
		registry:    registry,
		stacks:      stacks,
		artifacts:   artifacts,
		source:      source,
		concurrency: concurrency,
		timeout:     timeout,
		logger:      logger.With().Str("component", "deploy").Logger(),
	}
}

// DeployEnvironment deploys every service of the environment at key.
func (s *DeployService) DeployEnvironment(ctx context.Context, key model.Key, tokens TokenSource) (*model.DeployResult, error) {
	env, err := s.registry.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	token, err := tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	return s.Deploy(ctx, env.StackName, env.Services, token)
}

// Deploy uploads the source of each service. Once one service fails, services
// not yet started are skipped; uploads that already finished are kept. The
// result always lists every service, and ErrPartialDeploy accompanies it when
// any service was not uploaded.
func (s *DeployService) Deploy(ctx context.Context, stackName string, services []model.Service, token string) (*model.DeployResult, error) {
	if len(services) == 0 {
		return nil, fmt.Errorf("%w: no services to deploy", ErrValidation)
	}

	bucket, err := s.artifactBucket(ctx, stackName)
	if err != nil {
		return nil, err
	}

	result := &model.DeployResult{
		StackName: stackName,
		Bucket:    bucket,
		Services:  make([]model.ServiceUpload, len(services)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, svc := range services {
		id := template.UniqueID(svc, i)
		result.Services[i] = model.ServiceUpload{
			Index:    i,
			Repo:     svc.Repo,
			Branch:   svc.Branch,
			UniqueID: id,
			Key:      template.SourceKey(id),
			Status:   model.UploadSkipped,
		}
		if gctx.Err() != nil {
			continue
		}

		upload := &result.Services[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := s.uploadService(gctx, bucket, svc, upload.Key, token); err != nil {
				upload.Status = model.UploadFailed
				upload.Error = err.Error()
				return err
			}
			upload.Status = model.UploadUploaded
			return nil
		})
	}
	groupErr := g.Wait()

	for _, u := range result.Services {
		metrics.SourceUploads.WithLabelValues(u.Status).Inc()
	}

	if result.Failed() {
		s.logger.Warn().
			Err(groupErr).
			Str("stack", stackName).
			Strs("uploaded", result.Uploaded()).
			Msg("deployment partially failed")
		return result, fmt.Errorf("%w: %d of %d services uploaded", ErrPartialDeploy, len(result.Uploaded()), len(services))
	}

	s.logger.Info().Str("stack", stackName).Int("services", len(services)).Msg("sources uploaded")
	return result, nil
}

func (s *DeployService) uploadService(ctx context.Context, bucket string, svc model.Service, key, token string) error {
	owner, repo, err := svc.OwnerRepo()
	if err != nil {
		return err
	}

	callCtx, cancel := withTimeout(ctx, s.timeout)
	archive, err := s.source.DownloadArchive(callCtx, token, owner, repo, svc.Branch)
	cancel()
	if err != nil {
		return fmt.Errorf("download %s@%s: %w", svc.Repo, svc.Branch, err)
	}

	callCtx, cancel = withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.artifacts.Put(callCtx, bucket, key, archive); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// artifactBucket resolves the bucket from the stack outputs. The outputs
// exist only once the stack finished creating.
func (s *DeployService) artifactBucket(ctx context.Context, stackName string) (string, error) {
	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	stack, err := s.stacks.DescribeStack(callCtx, stackName)
	if err != nil {
		if errors.Is(err, cloud.ErrNotFound) {
			return "", fmt.Errorf("%w: stack %s not found", ErrDeploy, stackName)
		}
		return "", fmt.Errorf("%w: describe stack %s: %v", ErrDeploy, stackName, err)
	}
	bucket := stack.Outputs[template.OutputArtifactBucket]
	if bucket == "" {
		return "", fmt.Errorf("%w: artifact bucket of %s not available yet (stack %s)", ErrDeploy, stackName, stack.Status)
	}
	return bucket, nil
}
