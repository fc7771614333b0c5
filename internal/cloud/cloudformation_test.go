package cloud

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateStack_CapabilitiesTagsAndRole(t *testing.T) {
	api := &mockCFN{}
	backend := NewStackBackend(api, "arn:aws:iam::123456789012:role/cfn")

	api.On("CreateStack", mock.Anything, mock.MatchedBy(func(in *cloudformation.CreateStackInput) bool {
		return aws.ToString(in.StackName) == "BB-Env-123456" &&
			aws.ToString(in.TemplateBody) == "{}" &&
			len(in.Capabilities) == 2 &&
			in.Capabilities[0] == cfntypes.CapabilityCapabilityIam &&
			in.Capabilities[1] == cfntypes.CapabilityCapabilityNamedIam &&
			len(in.Tags) == 1 && aws.ToString(in.Tags[0].Key) == ManagedTagKey &&
			aws.ToString(in.RoleARN) == "arn:aws:iam::123456789012:role/cfn"
	})).Return(&cloudformation.CreateStackOutput{StackId: aws.String("arn:stack/BB-Env-123456/abc")}, nil)

	id, err := backend.CreateStack(context.Background(), "BB-Env-123456", "{}")
	require.NoError(t, err)
	assert.Equal(t, "arn:stack/BB-Env-123456/abc", id)
	api.AssertExpectations(t)
}

func TestCreateStack_NoRole(t *testing.T) {
	api := &mockCFN{}
	backend := NewStackBackend(api, "")

	api.On("CreateStack", mock.Anything, mock.MatchedBy(func(in *cloudformation.CreateStackInput) bool {
		return in.RoleARN == nil
	})).Return(&cloudformation.CreateStackOutput{StackId: aws.String("id")}, nil)

	_, err := backend.CreateStack(context.Background(), "BB-Env-1", "{}")
	require.NoError(t, err)
}

func TestCreateStack_Error(t *testing.T) {
	api := &mockCFN{}
	backend := NewStackBackend(api, "")
	api.On("CreateStack", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	_, err := backend.CreateStack(context.Background(), "BB-Env-1", "{}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestDescribeStack_OutputsOnlyWhenComplete(t *testing.T) {
	outputs := []cfntypes.Output{
		{OutputKey: aws.String("ArtifactBucketName"), OutputValue: aws.String("bucket-1")},
		{OutputKey: aws.String("InstanceId"), OutputValue: aws.String("i-123")},
	}

	tests := []struct {
		status      cfntypes.StackStatus
		wantOutputs int
	}{
		{cfntypes.StackStatusCreateComplete, 2},
		{cfntypes.StackStatusUpdateComplete, 2},
		{cfntypes.StackStatusCreateInProgress, 0},
		{cfntypes.StackStatusRollbackComplete, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			api := &mockCFN{}
			api.On("DescribeStacks", mock.Anything, mock.Anything).Return(&cloudformation.DescribeStacksOutput{
				Stacks: []cfntypes.Stack{{
					StackId:     aws.String("id"),
					StackName:   aws.String("BB-Env-1"),
					StackStatus: tt.status,
					Outputs:     outputs,
				}},
			}, nil)

			stack, err := NewStackBackend(api, "").DescribeStack(context.Background(), "BB-Env-1")
			require.NoError(t, err)
			assert.Len(t, stack.Outputs, tt.wantOutputs)
			assert.Equal(t, string(tt.status), stack.Status)
		})
	}
}

func TestDescribeStack_Missing(t *testing.T) {
	api := &mockCFN{}
	api.On("DescribeStacks", mock.Anything, mock.Anything).Return(nil, &smithy.GenericAPIError{
		Code:    "ValidationError",
		Message: "Stack with id BB-Env-1 does not exist",
	})

	_, err := NewStackBackend(api, "").DescribeStack(context.Background(), "BB-Env-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDescribeStack_OtherErrorIsNotNotFound(t *testing.T) {
	api := &mockCFN{}
	api.On("DescribeStacks", mock.Anything, mock.Anything).Return(nil, &smithy.GenericAPIError{
		Code:    "Throttling",
		Message: "Rate exceeded",
	})

	_, err := NewStackBackend(api, "").DescribeStack(context.Background(), "BB-Env-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestDeleteStack(t *testing.T) {
	api := &mockCFN{}
	api.On("DeleteStack", mock.Anything, mock.MatchedBy(func(in *cloudformation.DeleteStackInput) bool {
		return aws.ToString(in.StackName) == "arn:stack/1"
	})).Return(&cloudformation.DeleteStackOutput{}, nil)

	require.NoError(t, NewStackBackend(api, "").DeleteStack(context.Background(), "arn:stack/1"))
	api.AssertExpectations(t)
}

func TestStack_Failed(t *testing.T) {
	assert.True(t, (&Stack{Status: "CREATE_FAILED"}).Failed())
	assert.True(t, (&Stack{Status: "ROLLBACK_IN_PROGRESS"}).Failed())
	assert.True(t, (&Stack{Status: "ROLLBACK_COMPLETE"}).Failed())
	assert.False(t, (&Stack{Status: "CREATE_IN_PROGRESS"}).Failed())
	assert.False(t, (&Stack{Status: "CREATE_COMPLETE"}).Failed())
	assert.False(t, (&Stack{Status: "UPDATE_ROLLBACK_COMPLETE"}).Failed())
}
