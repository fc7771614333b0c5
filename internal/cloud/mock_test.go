package cloud

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/stretchr/testify/mock"
)

type mockCFN struct{ mock.Mock }

func (m *mockCFN) CreateStack(ctx context.Context, in *cloudformation.CreateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*cloudformation.CreateStackOutput)
	return out, args.Error(1)
}

func (m *mockCFN) DeleteStack(ctx context.Context, in *cloudformation.DeleteStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*cloudformation.DeleteStackOutput)
	return out, args.Error(1)
}

func (m *mockCFN) DescribeStacks(ctx context.Context, in *cloudformation.DescribeStacksInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*cloudformation.DescribeStacksOutput)
	return out, args.Error(1)
}

type mockS3 struct{ mock.Mock }

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

type mockSSM struct{ mock.Mock }

func (m *mockSSM) GetParameters(ctx context.Context, in *ssm.GetParametersInput, _ ...func(*ssm.Options)) (*ssm.GetParametersOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*ssm.GetParametersOutput)
	return out, args.Error(1)
}

func (m *mockSSM) PutParameter(ctx context.Context, in *ssm.PutParameterInput, _ ...func(*ssm.Options)) (*ssm.PutParameterOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*ssm.PutParameterOutput)
	return out, args.Error(1)
}

type mockEC2 struct{ mock.Mock }

func (m *mockEC2) StopInstances(ctx context.Context, in *ec2.StopInstancesInput, _ ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*ec2.StopInstancesOutput)
	return out, args.Error(1)
}

func (m *mockEC2) StartInstances(ctx context.Context, in *ec2.StartInstancesInput, _ ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*ec2.StartInstancesOutput)
	return out, args.Error(1)
}
