package teardown

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/chainguard-dev/clog"
)

var ErrNATGatewayList = fmt.Errorf("failed to list NAT gateways")

// NATGateways returns the ids of NAT gateways in the VPC that are not
// already on their way out.
func (inv *Inventory) NATGateways(ctx context.Context) ([]string, error) {
	input := &ec2.DescribeNatGatewaysInput{
		Filter: inv.vpcFilter(),
	}

	var ids []string
	for {
		result, err := inv.api.DescribeNatGateways(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNATGatewayList, err)
		}
		for _, gateway := range result.NatGateways {
			switch gateway.State {
			case types.NatGatewayStateDeleted, types.NatGatewayStateDeleting:
				continue
			}
			if gateway.NatGatewayId != nil {
				ids = append(ids, *gateway.NatGatewayId)
			}
		}
		if result.NextToken == nil {
			return ids, nil
		}
		input.NextToken = result.NextToken
	}
}

var ErrNATGatewayDelete = fmt.Errorf("failed to delete NAT gateway")

func natGatewayDelete(ctx context.Context, api EC2API, gatewayID string) error {
	_, err := api.DeleteNatGateway(ctx, &ec2.DeleteNatGatewayInput{
		NatGatewayId: aws.String(gatewayID),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNATGatewayDelete, err)
	}
	return nil
}

// deleteNATGateways appears twice in the plan: once up front, and once after
// the ENI drain to catch gateways that materialized after the first pass
// listed. Deleting a NAT gateway disassociates (but does not release) its
// elastic IP; its ENIs are cleaned up by the provider asynchronously, which
// is what the ENI drain step waits out.
func (x *Executor) deleteNATGateways(ctx context.Context) (int, error) {
	log := clog.FromContext(ctx)

	gatewayIDs, err := x.inv.NATGateways(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, gatewayID := range gatewayIDs {
		log.Info("deleting NAT gateway", "nat_gateway_id", gatewayID)
		if err := ignoreNotFound(natGatewayDelete(ctx, x.api, gatewayID)); err != nil {
			return deleted, err
		}
		log.Info("deleted NAT gateway", "nat_gateway_id", gatewayID)
		deleted++
	}
	return deleted, nil
}
