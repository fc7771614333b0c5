package cloud

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
)

// ManagedTagKey marks stacks created by BranchBox.
const ManagedTagKey = "BranchBoxManaged"

// CloudFormationAPI is the subset of the CloudFormation client used here.
type CloudFormationAPI interface {
	CreateStack(ctx context.Context, params *cloudformation.CreateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error)
	DeleteStack(ctx context.Context, params *cloudformation.DeleteStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error)
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
}

// Stack is the observed state of a provisioned stack. Outputs is only
// populated once the stack reached CREATE_COMPLETE or UPDATE_COMPLETE.
type Stack struct {
	ID      string
	Name    string
	Status  string
	Reason  string
	Outputs map[string]string
}

// Complete reports whether the stack finished creating or updating.
func (s *Stack) Complete() bool {
	return s.Status == string(cfntypes.StackStatusCreateComplete) ||
		s.Status == string(cfntypes.StackStatusUpdateComplete)
}

// Failed reports whether the stack ended in a state it cannot serve from.
func (s *Stack) Failed() bool {
	switch cfntypes.StackStatus(s.Status) {
	case cfntypes.StackStatusCreateFailed,
		cfntypes.StackStatusRollbackComplete,
		cfntypes.StackStatusRollbackFailed,
		cfntypes.StackStatusDeleteComplete,
		cfntypes.StackStatusDeleteFailed:
		return true
	}
	return strings.HasPrefix(s.Status, "ROLLBACK_")
}

// StackBackend submits and inspects CloudFormation stacks.
type StackBackend struct {
	api     CloudFormationAPI
	roleARN string
}

func NewStackBackend(api CloudFormationAPI, roleARN string) *StackBackend {
	return &StackBackend{api: api, roleARN: roleARN}
}

// CreateStack submits templateBody under name and returns the stack id.
// Creation continues asynchronously on the backend.
func (b *StackBackend) CreateStack(ctx context.Context, name, templateBody string) (string, error) {
	input := &cloudformation.CreateStackInput{
		StackName:    aws.String(name),
		TemplateBody: aws.String(templateBody),
		Capabilities: []cfntypes.Capability{
			cfntypes.CapabilityCapabilityIam,
			cfntypes.CapabilityCapabilityNamedIam,
		},
		Tags: []cfntypes.Tag{
			{Key: aws.String(ManagedTagKey), Value: aws.String("true")},
		},
	}
	if b.roleARN != "" {
		input.RoleARN = aws.String(b.roleARN)
	}

	out, err := b.api.CreateStack(ctx, input)
	if err != nil {
		return "", fmt.Errorf("create stack %s: %w", name, err)
	}
	return aws.ToString(out.StackId), nil
}

// DeleteStack requests deletion of the stack by id or name.
func (b *StackBackend) DeleteStack(ctx context.Context, stack string) error {
	_, err := b.api.DeleteStack(ctx, &cloudformation.DeleteStackInput{
		StackName: aws.String(stack),
	})
	if err != nil {
		return fmt.Errorf("delete stack %s: %w", stack, err)
	}
	return nil
}

// DescribeStack returns the stack state, or ErrNotFound when the backend does
// not know it.
func (b *StackBackend) DescribeStack(ctx context.Context, stack string) (*Stack, error) {
	out, err := b.api.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(stack),
	})
	if err != nil {
		if isStackMissing(err) {
			return nil, fmt.Errorf("describe stack %s: %w", stack, ErrNotFound)
		}
		return nil, fmt.Errorf("describe stack %s: %w", stack, err)
	}
	if len(out.Stacks) == 0 {
		return nil, fmt.Errorf("describe stack %s: %w", stack, ErrNotFound)
	}

	s := out.Stacks[0]
	result := &Stack{
		ID:      aws.ToString(s.StackId),
		Name:    aws.ToString(s.StackName),
		Status:  string(s.StackStatus),
		Reason:  aws.ToString(s.StackStatusReason),
		Outputs: map[string]string{},
	}
	if result.Complete() {
		for _, o := range s.Outputs {
			result.Outputs[aws.ToString(o.OutputKey)] = aws.ToString(o.OutputValue)
		}
	}
	return result, nil
}
