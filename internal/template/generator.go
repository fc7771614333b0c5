package template

import (
	"errors"
	"fmt"

	"github.com/edvin/branchbox/internal/model"
)

// Stack output names read back by deployments and the schedule sweep.
const (
	OutputArtifactBucket = "ArtifactBucketName"
	OutputInstanceID     = "InstanceId"
)

// Options tune the generated template.
type Options struct {
	// PollSourceChanges enables S3 polling on each pipeline's source action.
	// Uploading a new source archive only starts a pipeline while this is on.
	PollSourceChanges bool
	InstanceType      string
	AMIParameter      string
	BuildImage        string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		PollSourceChanges: true,
		InstanceType:      "t3.medium",
		AMIParameter:      "/aws/service/ami-amazon-linux-latest/al2023-ami-kernel-default-x86_64",
		BuildImage:        "aws/codebuild/amazonlinux2-x86_64-standard:4.0",
	}
}

// Generator builds environment templates.
type Generator struct {
	opts Options
}

// NewGenerator creates a Generator. Zero-valued string options fall back to DefaultOptions.
func NewGenerator(opts Options) *Generator {
	def := DefaultOptions()
	if opts.InstanceType == "" {
		opts.InstanceType = def.InstanceType
	}
	if opts.AMIParameter == "" {
		opts.AMIParameter = def.AMIParameter
	}
	if opts.BuildImage == "" {
		opts.BuildImage = def.BuildImage
	}
	return &Generator{opts: opts}
}

// Generate returns the template for the named environment stack. The output
// depends only on its inputs.
func (g *Generator) Generate(stackName string, services []model.Service) (*Template, error) {
	if stackName == "" {
		return nil, errors.New("stack name is required")
	}
	if len(services) == 0 {
		return nil, errors.New("at least one service is required")
	}

	buildSpec, err := renderBuildSpec()
	if err != nil {
		return nil, err
	}

	t := &Template{
		AWSTemplateFormatVersion: FormatVersion,
		Description:              "BranchBox Environment: " + stackName,
		Parameters: map[string]Parameter{
			"LatestAmiId": {
				Type:    "AWS::SSM::Parameter::Value<AWS::EC2::Image::Id>",
				Default: g.opts.AMIParameter,
			},
		},
		Resources: sharedResources(stackName, g.opts.InstanceType),
		Outputs: map[string]Output{
			"PublicIP":           {Value: GetAtt("DevInstance", "PublicIp")},
			"PublicDNS":          {Value: GetAtt("DevInstance", "PublicDnsName")},
			OutputInstanceID:     {Value: Ref("DevInstance")},
			OutputArtifactBucket: {Value: Ref("ArtifactBucket")},
		},
	}

	for i, svc := range services {
		id := UniqueID(svc, i)
		buildName := "BuildProject" + id
		pipelineName := "Pipeline" + id
		if _, dup := t.Resources[pipelineName]; dup {
			return nil, fmt.Errorf("duplicate service resource id %s", id)
		}
		t.Resources[buildName] = buildProject(stackName, id, svc, g.opts.BuildImage, buildSpec)
		t.Resources[pipelineName] = pipeline(id, buildName, g.opts.PollSourceChanges)
	}

	return t, nil
}

func buildProject(stackName, id string, svc model.Service, image, buildSpec string) Resource {
	return Resource{
		Type: "AWS::CodeBuild::Project",
		Properties: map[string]any{
			"Name":        fmt.Sprintf("BB-%s-%s", stackName, id),
			"ServiceRole": GetAtt("CodeBuildRole", "Arn"),
			"Artifacts":   map[string]any{"Type": "CODEPIPELINE"},
			"Environment": map[string]any{
				"ComputeType": "BUILD_GENERAL1_SMALL",
				"Image":       image,
				"Type":        "LINUX_CONTAINER",
				"EnvironmentVariables": []map[string]string{
					{"Name": "BUILDSPEC_PATH", "Value": svc.BuildSpecPath()},
					{"Name": "APPSPEC_PATH", "Value": svc.AppSpecPath()},
				},
			},
			"Source": map[string]any{
				"Type":      "CODEPIPELINE",
				"BuildSpec": buildSpec,
			},
		},
	}
}

func pipeline(id, buildName string, poll bool) Resource {
	pollValue := "false"
	if poll {
		pollValue = "true"
	}
	return Resource{
		Type: "AWS::CodePipeline::Pipeline",
		Properties: map[string]any{
			"RoleArn": GetAtt("PipelineRole", "Arn"),
			"ArtifactStore": map[string]any{
				"Type":     "S3",
				"Location": Ref("ArtifactBucket"),
			},
			"Stages": []map[string]any{
				stage("Source", action("S3Source", "Source", "S3", nil, "SourceArtifact", map[string]any{
					"S3Bucket":             Ref("ArtifactBucket"),
					"S3ObjectKey":          SourceKey(id),
					"PollForSourceChanges": pollValue,
				})),
				stage("Build", action("CodeBuild", "Build", "CodeBuild", []string{"SourceArtifact"}, "BuildArtifact", map[string]any{
					"ProjectName": Ref(buildName),
				})),
				stage("Deploy", action("CodeDeploy", "Deploy", "CodeDeploy", []string{"BuildArtifact"}, "", map[string]any{
					"ApplicationName":     Ref("SharedApplication"),
					"DeploymentGroupName": Ref("SharedDeploymentGroup"),
				})),
			},
		},
	}
}

func stage(name string, actions ...map[string]any) map[string]any {
	return map[string]any{"Name": name, "Actions": actions}
}

func action(name, category, provider string, inputs []string, output string, configuration map[string]any) map[string]any {
	a := map[string]any{
		"Name": name,
		"ActionTypeId": map[string]string{
			"Category": category,
			"Owner":    "AWS",
			"Provider": provider,
			"Version":  "1",
		},
		"Configuration": configuration,
		"RunOrder":      1,
	}
	if len(inputs) > 0 {
		var in []map[string]string
		for _, n := range inputs {
			in = append(in, map[string]string{"Name": n})
		}
		a["InputArtifacts"] = in
	}
	if output != "" {
		a["OutputArtifacts"] = []map[string]string{{"Name": output}}
	}
	return a
}
