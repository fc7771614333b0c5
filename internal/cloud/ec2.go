package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

// EC2API is the subset of the EC2 client used here.
type EC2API interface {
	StopInstances(ctx context.Context, params *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
	StartInstances(ctx context.Context, params *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)
}

// InstanceController stops and starts an environment's host instance.
type InstanceController struct {
	api EC2API
}

func NewInstanceController(api EC2API) *InstanceController {
	return &InstanceController{api: api}
}

func (c *InstanceController) Stop(ctx context.Context, instanceID string) error {
	if _, err := c.api.StopInstances(ctx, &ec2.StopInstancesInput{InstanceIds: []string{instanceID}}); err != nil {
		return fmt.Errorf("stop instance %s: %w", instanceID, err)
	}
	return nil
}

func (c *InstanceController) Start(ctx context.Context, instanceID string) error {
	if _, err := c.api.StartInstances(ctx, &ec2.StartInstancesInput{InstanceIds: []string{instanceID}}); err != nil {
		return fmt.Errorf("start instance %s: %w", instanceID, err)
	}
	return nil
}
