package template

const userDataScript = `#!/bin/bash
dnf update -y
dnf install -y ruby wget
cd /home/ec2-user
wget https://aws-codedeploy-${AWS::Region}.s3.${AWS::Region}.amazonaws.com/latest/install
chmod +x ./install
./install auto

dnf install -y docker
service docker start
systemctl enable docker
usermod -aG docker ec2-user
dnf install -y docker-compose-plugin
`

func sharedResources(stackName, instanceType string) map[string]Resource {
	return map[string]Resource{
		"ArtifactBucket": {
			Type: "AWS::S3::Bucket",
			Properties: map[string]any{
				"BucketEncryption": map[string]any{
					"ServerSideEncryptionConfiguration": []map[string]any{
						{"ServerSideEncryptionByDefault": map[string]string{"SSEAlgorithm": "AES256"}},
					},
				},
				// S3 pipeline sources require versioning.
				"VersioningConfiguration": map[string]string{"Status": "Enabled"},
			},
		},
		"EC2Role": {
			Type: "AWS::IAM::Role",
			Properties: map[string]any{
				"AssumeRolePolicyDocument": assumeRole("ec2.amazonaws.com"),
				"ManagedPolicyArns": []string{
					"arn:aws:iam::aws:policy/service-role/AmazonEC2RoleforAWSCodeDeploy",
					"arn:aws:iam::aws:policy/AmazonSSMManagedInstanceCore",
				},
				"Policies": []map[string]any{
					inlinePolicy("S3Access", statement([]string{"s3:Get*", "s3:List*"})),
				},
			},
		},
		"EC2InstanceProfile": {
			Type:       "AWS::IAM::InstanceProfile",
			Properties: map[string]any{"Roles": []any{Ref("EC2Role")}},
		},
		"PipelineRole": {
			Type: "AWS::IAM::Role",
			Properties: map[string]any{
				"AssumeRolePolicyDocument": assumeRole("codepipeline.amazonaws.com"),
				"Policies": []map[string]any{
					inlinePolicy("PipelinePolicy",
						statement([]string{"s3:*"}),
						statement([]string{"codebuild:*"}),
						statement([]string{"codedeploy:*"}),
						statement([]string{"iam:PassRole"}),
					),
				},
			},
		},
		"CodeBuildRole": {
			Type: "AWS::IAM::Role",
			Properties: map[string]any{
				"AssumeRolePolicyDocument": assumeRole("codebuild.amazonaws.com"),
				"Policies": []map[string]any{
					inlinePolicy("BuildPolicy",
						statement([]string{"logs:*"}),
						statement([]string{"s3:*"}),
					),
				},
			},
		},
		"CodeDeployRole": {
			Type: "AWS::IAM::Role",
			Properties: map[string]any{
				"AssumeRolePolicyDocument": assumeRole("codedeploy.amazonaws.com"),
				"ManagedPolicyArns":        []string{"arn:aws:iam::aws:policy/service-role/AWSCodeDeployRole"},
			},
		},
		"DevInstance": {
			Type: "AWS::EC2::Instance",
			Properties: map[string]any{
				"ImageId":            Ref("LatestAmiId"),
				"InstanceType":       instanceType,
				"IamInstanceProfile": Ref("EC2InstanceProfile"),
				"SecurityGroups":     []string{"default"},
				"Tags": []tag{
					{Key: "Name", Value: HostTag(stackName)},
					{Key: "EnvType", Value: "BranchBox"},
				},
				"UserData": map[string]any{
					"Fn::Base64": map[string]any{"Fn::Sub": userDataScript},
				},
			},
		},
		"SharedApplication": {
			Type:       "AWS::CodeDeploy::Application",
			Properties: map[string]any{"ComputePlatform": "Server"},
		},
		"SharedDeploymentGroup": {
			Type: "AWS::CodeDeploy::DeploymentGroup",
			Properties: map[string]any{
				"ApplicationName":      Ref("SharedApplication"),
				"ServiceRoleArn":       GetAtt("CodeDeployRole", "Arn"),
				"DeploymentConfigName": "CodeDeployDefault.OneAtATime",
				"Ec2TagFilters": []map[string]string{
					{"Key": "Name", "Value": HostTag(stackName), "Type": "KEY_AND_VALUE"},
				},
			},
		},
	}
}

func assumeRole(service string) map[string]any {
	return map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{{
			"Effect":    "Allow",
			"Principal": map[string]string{"Service": service},
			"Action":    "sts:AssumeRole",
		}},
	}
}

func inlinePolicy(name string, statements ...map[string]any) map[string]any {
	return map[string]any{
		"PolicyName": name,
		"PolicyDocument": map[string]any{
			"Version":   "2012-10-17",
			"Statement": statements,
		},
	}
}

func statement(actions []string) map[string]any {
	var action any = actions
	if len(actions) == 1 {
		action = actions[0]
	}
	return map[string]any{"Effect": "Allow", "Action": action, "Resource": "*"}
}
