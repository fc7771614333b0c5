package cloud

import (
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/edvin/branchbox/internal/model"
)

// Parameter names below the credential prefix.
const (
	ParamAppID          = "appId"
	ParamInstallationID = "installationId"
	ParamPrivateKey     = "privateKey"
	ParamClientSecret   = "clientSecret"
)

// SSMAPI is the subset of the SSM client used here.
type SSMAPI interface {
	GetParameters(ctx context.Context, params *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
}

// CredentialStore keeps the source-host App credentials in SSM parameters.
type CredentialStore struct {
	api    SSMAPI
	prefix string
}

func NewCredentialStore(api SSMAPI, prefix string) *CredentialStore {
	return &CredentialStore{api: api, prefix: prefix}
}

func (s *CredentialStore) name(param string) string {
	return path.Join(s.prefix, param)
}

// Load reads whichever credential parameters exist. Missing parameters leave
// the corresponding field empty.
func (s *CredentialStore) Load(ctx context.Context) (model.GitHubCredentials, error) {
	out, err := s.api.GetParameters(ctx, &ssm.GetParametersInput{
		Names: []string{
			s.name(ParamAppID),
			s.name(ParamInstallationID),
			s.name(ParamPrivateKey),
			s.name(ParamClientSecret),
		},
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return model.GitHubCredentials{}, fmt.Errorf("get credential parameters: %w", err)
	}

	var creds model.GitHubCredentials
	for _, p := range out.Parameters {
		value := aws.ToString(p.Value)
		switch aws.ToString(p.Name) {
		case s.name(ParamAppID):
			creds.AppID = value
		case s.name(ParamInstallationID):
			creds.InstallationID = value
		case s.name(ParamPrivateKey):
			creds.PrivateKey = value
		case s.name(ParamClientSecret):
			creds.ClientSecret = value
		}
	}
	return creds, nil
}

// Save overwrites the parameters for every non-empty field of creds. The
// private key and client secret are stored as SecureString.
func (s *CredentialStore) Save(ctx context.Context, creds model.GitHubCredentials) error {
	params := []struct {
		name   string
		value  string
		secure bool
	}{
		{ParamAppID, creds.AppID, false},
		{ParamInstallationID, creds.InstallationID, false},
		{ParamPrivateKey, creds.PrivateKey, true},
		{ParamClientSecret, creds.ClientSecret, true},
	}

	for _, p := range params {
		if p.value == "" {
			continue
		}
		paramType := ssmtypes.ParameterTypeString
		if p.secure {
			paramType = ssmtypes.ParameterTypeSecureString
		}
		_, err := s.api.PutParameter(ctx, &ssm.PutParameterInput{
			Name:      aws.String(s.name(p.name)),
			Value:     aws.String(p.value),
			Type:      paramType,
			Overwrite: aws.Bool(true),
		})
		if err != nil {
			return fmt.Errorf("put parameter %s: %w", p.name, err)
		}
	}
	return nil
}
