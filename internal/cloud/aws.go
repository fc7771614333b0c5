// Package cloud wraps the AWS services BranchBox provisions against:
// CloudFormation stacks, the per-environment artifact bucket, the SSM
// credential parameters and the environment host instance.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/smithy-go"
)

// ErrNotFound is returned when the addressed stack or parameter does not exist.
var ErrNotFound = errors.New("cloud resource not found")

// Options selects the region and, for local stacks such as LocalStack, an
// endpoint override with static credentials.
type Options struct {
	Region          string
	EndpointURL     string
	AccessKeyID     string
	SecretAccessKey string
}

// LoadConfig resolves an aws.Config from the default credential chain, or from
// static credentials when both keys are given.
func LoadConfig(ctx context.Context, opts Options) (aws.Config, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	if opts.EndpointURL != "" {
		cfg.BaseEndpoint = aws.String(opts.EndpointURL)
	}
	return cfg, nil
}

// Clients bundles the service wrappers built from one aws.Config.
type Clients struct {
	Stacks      *StackBackend
	Artifacts   *ArtifactStore
	Credentials *CredentialStore
	Instances   *InstanceController
}

// NewClients builds every service wrapper. roleARN is the optional
// CloudFormation service role; paramPrefix is the SSM path of the source-host
// credentials.
func NewClients(cfg aws.Config, roleARN, paramPrefix string) *Clients {
	pathStyle := cfg.BaseEndpoint != nil
	return &Clients{
		Stacks: NewStackBackend(cloudformation.NewFromConfig(cfg), roleARN),
		Artifacts: NewArtifactStore(s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.UsePathStyle = pathStyle
		})),
		Credentials: NewCredentialStore(ssm.NewFromConfig(cfg), paramPrefix),
		Instances:   NewInstanceController(ec2.NewFromConfig(cfg)),
	}
}

func apiErrorCode(err error) (code, message string, ok bool) {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode(), apiErr.ErrorMessage(), true
	}
	return "", "", false
}

// isStackMissing matches CloudFormation's "Stack with id X does not exist"
// validation error.
func isStackMissing(err error) bool {
	code, msg, ok := apiErrorCode(err)
	return ok && code == "ValidationError" && strings.Contains(msg, "does not exist")
}
