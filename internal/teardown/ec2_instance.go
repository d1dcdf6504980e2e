package teardown

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/chainguard-dev/clog"
)

// instanceTerminateTimeout bounds the wait for instance termination. The ENI
// drain later in the plan catches stragglers, so this does not need to be
// generous.
const instanceTerminateTimeout = 5 * time.Minute

var ErrInstanceList = fmt.Errorf("failed to list running instances")

// RunningInstances returns the ids of instances in the running state inside
// the VPC. Terminated and shutting-down instances are the provider's problem,
// not ours.
func (inv *Inventory) RunningInstances(ctx context.Context) ([]string, error) {
	input := &ec2.DescribeInstancesInput{
		Filters: append(inv.vpcFilter(), types.Filter{
			Name:   aws.String("instance-state-name"),
			Values: []string{string(types.InstanceStateNameRunning)},
		}),
	}

	var ids []string
	for {
		result, err := inv.api.DescribeInstances(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInstanceList, err)
		}
		for _, reservation := range result.Reservations {
			for _, instance := range reservation.Instances {
				if instance.InstanceId != nil {
					ids = append(ids, *instance.InstanceId)
				}
			}
		}
		if result.NextToken == nil {
			return ids, nil
		}
		input.NextToken = result.NextToken
	}
}

var ErrInstanceTerminate = fmt.Errorf("failed to terminate instances")

func instancesTerminate(ctx context.Context, api EC2API, instanceIDs []string) error {
	_, err := api.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: instanceIDs,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInstanceTerminate, err)
	}
	return nil
}

// terminateInstances terminates every running instance in the VPC and blocks
// until the provider reports them terminated. Subnet and security group
// deletion later in the plan depend on the instance ENIs being released,
// which only happens once termination completes.
func (x *Executor) terminateInstances(ctx context.Context) (int, error) {
	log := clog.FromContext(ctx)

	instanceIDs, err := x.inv.RunningInstances(ctx)
	if err != nil {
		return 0, err
	}
	if len(instanceIDs) == 0 {
		return 0, nil
	}

	log.Info("terminating instances", "instance_ids", instanceIDs)
	if err := ignoreNotFound(instancesTerminate(ctx, x.api, instanceIDs)); err != nil {
		return 0, err
	}

	log.Info("waiting for instances to terminate", "instance_ids", instanceIDs)
	waiter := ec2.NewInstanceTerminatedWaiter(x.api)
	if err := waiter.Wait(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: instanceIDs,
	}, instanceTerminateTimeout); err != nil {
		return len(instanceIDs), fmt.Errorf("%w: %w", ErrInstanceTerminate, err)
	}
	log.Info("instance termination complete", "count", len(instanceIDs))
	return len(instanceIDs), nil
}
