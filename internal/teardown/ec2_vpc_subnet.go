package teardown

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/chainguard-dev/clog"
)

var ErrSubnetList = fmt.Errorf("failed to list subnets")

// Subnets returns the ids of subnets in the VPC.
func (inv *Inventory) Subnets(ctx context.Context) ([]string, error) {
	input := &ec2.DescribeSubnetsInput{
		Filters: inv.vpcFilter(),
	}

	var ids []string
	for {
		result, err := inv.api.DescribeSubnets(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSubnetList, err)
		}
		for _, subnet := range result.Subnets {
			if subnet.SubnetId != nil {
				ids = append(ids, *subnet.SubnetId)
			}
		}
		if result.NextToken == nil {
			return ids, nil
		}
		input.NextToken = result.NextToken
	}
}

var ErrSubnetDelete = fmt.Errorf("failed to delete subnet")

func subnetDelete(ctx context.Context, api EC2API, subnetID string) error {
	_, err := api.DeleteSubnet(ctx, &ec2.DeleteSubnetInput{
		SubnetId: aws.String(subnetID),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSubnetDelete, err)
	}
	return nil
}

// deleteSubnets removes every subnet. Any ENI still hanging off a subnet at
// this point survived the drain step, so each subnet gets one more purge
// before its delete is attempted.
func (x *Executor) deleteSubnets(ctx context.Context) (int, error) {
	log := clog.FromContext(ctx)

	subnetIDs, err := x.inv.Subnets(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, subnetID := range subnetIDs {
		interfaces, err := x.inv.SubnetNetworkInterfaces(ctx, subnetID)
		if err != nil {
			return deleted, err
		}
		if len(interfaces) > 0 {
			log.Warn("subnet still has network interfaces, purging before delete",
				"subnet_id", subnetID,
				"count", len(interfaces),
			)
			if err := x.purgeNetworkInterfaces(ctx, interfaces); err != nil {
				return deleted, err
			}
		}

		log.Info("deleting subnet", "subnet_id", subnetID)
		if err := ignoreNotFound(subnetDelete(ctx, x.api, subnetID)); err != nil {
			return deleted, err
		}
		log.Info("deleted subnet", "subnet_id", subnetID)
		deleted++
	}
	return deleted, nil
}
