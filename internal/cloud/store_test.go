package cloud

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/branchbox/internal/model"
)

func TestArtifactStore_Put(t *testing.T) {
	api := &mockS3{}
	var got []byte
	api.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "bucket-1" &&
			aws.ToString(in.Key) == "sources/abmain0.zip" &&
			aws.ToInt64(in.ContentLength) == 3
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(*s3.PutObjectInput)
		got, _ = io.ReadAll(in.Body)
	}).Return(&s3.PutObjectOutput{}, nil)

	err := NewArtifactStore(api).Put(context.Background(), "bucket-1", "sources/abmain0.zip", []byte("zip"))
	require.NoError(t, err)
	assert.Equal(t, []byte("zip"), got)
}

func TestArtifactStore_PutError(t *testing.T) {
	api := &mockS3{}
	api.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	err := NewArtifactStore(api).Put(context.Background(), "b", "k", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://b/k")
}

func TestCredentialStore_Load(t *testing.T) {
	api := &mockSSM{}
	api.On("GetParameters", mock.Anything, mock.MatchedBy(func(in *ssm.GetParametersInput) bool {
		return aws.ToBool(in.WithDecryption) && len(in.Names) == 4 &&
			in.Names[0] == "/branchbox/config/github/appId"
	})).Return(&ssm.GetParametersOutput{
		Parameters: []ssmtypes.Parameter{
			{Name: aws.String("/branchbox/config/github/appId"), Value: aws.String("42")},
			{Name: aws.String("/branchbox/config/github/privateKey"), Value: aws.String("PEM")},
		},
		InvalidParameters: []string{"/branchbox/config/github/installationId"},
	}, nil)

	creds, err := NewCredentialStore(api, "/branchbox/config/github").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "42", creds.AppID)
	assert.Equal(t, "PEM", creds.PrivateKey)
	assert.Empty(t, creds.InstallationID)
}

func TestCredentialStore_SaveSkipsEmptyAndSecuresSecrets(t *testing.T) {
	api := &mockSSM{}
	types := map[string]ssmtypes.ParameterType{}
	api.On("PutParameter", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		in := args.Get(1).(*ssm.PutParameterInput)
		assert.True(t, aws.ToBool(in.Overwrite))
		types[aws.ToString(in.Name)] = in.Type
	}).Return(&ssm.PutParameterOutput{}, nil)

	err := NewCredentialStore(api, "/bb").Save(context.Background(), model.GitHubCredentials{
		AppID:      "42",
		PrivateKey: "PEM",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]ssmtypes.ParameterType{
		"/bb/appId":      ssmtypes.ParameterTypeString,
		"/bb/privateKey": ssmtypes.ParameterTypeSecureString,
	}, types)
}

func TestInstanceController(t *testing.T) {
	api := &mockEC2{}
	api.On("StopInstances", mock.Anything, mock.MatchedBy(func(in *ec2.StopInstancesInput) bool {
		return len(in.InstanceIds) == 1 && in.InstanceIds[0] == "i-1"
	})).Return(&ec2.StopInstancesOutput{}, nil)
	api.On("StartInstances", mock.Anything, mock.Anything).Return(nil, errors.New("insufficient capacity"))

	c := NewInstanceController(api)
	require.NoError(t, c.Stop(context.Background(), "i-1"))
	err := c.Start(context.Background(), "i-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient capacity")
}
