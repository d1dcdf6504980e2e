package teardown

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/chainguard-dev/clog"
)

var ErrVPCEndpointList = fmt.Errorf("failed to list VPC endpoints")

// VPCEndpoints returns the ids of endpoints in the VPC.
func (inv *Inventory) VPCEndpoints(ctx context.Context) ([]string, error) {
	input := &ec2.DescribeVpcEndpointsInput{
		Filters: inv.vpcFilter(),
	}

	var ids []string
	for {
		result, err := inv.api.DescribeVpcEndpoints(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrVPCEndpointList, err)
		}
		for _, endpoint := range result.VpcEndpoints {
			if endpoint.VpcEndpointId != nil {
				ids = append(ids, *endpoint.VpcEndpointId)
			}
		}
		if result.NextToken == nil {
			return ids, nil
		}
		input.NextToken = result.NextToken
	}
}

var ErrVPCEndpointDelete = fmt.Errorf("failed to delete VPC endpoints")

func vpcEndpointsDelete(ctx context.Context, api EC2API, endpointIDs []string) error {
	_, err := api.DeleteVpcEndpoints(ctx, &ec2.DeleteVpcEndpointsInput{
		VpcEndpointIds: endpointIDs,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVPCEndpointDelete, err)
	}
	return nil
}

// deleteVPCEndpoints removes gateway and interface endpoints. Interface
// endpoint ENIs are detached by the provider asynchronously; the ENI drain
// step later in the plan waits for them.
func (x *Executor) deleteVPCEndpoints(ctx context.Context) (int, error) {
	log := clog.FromContext(ctx)

	endpointIDs, err := x.inv.VPCEndpoints(ctx)
	if err != nil {
		return 0, err
	}
	if len(endpointIDs) == 0 {
		return 0, nil
	}

	log.Info("deleting VPC endpoints", "endpoint_ids", endpointIDs)
	if err := ignoreNotFound(vpcEndpointsDelete(ctx, x.api, endpointIDs)); err != nil {
		return 0, err
	}
	log.Info("deleted VPC endpoints", "count", len(endpointIDs))
	return len(endpointIDs), nil
}
