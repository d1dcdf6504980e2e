package teardown

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/chainguard-dev/clog"
)

var ErrPeeringConnectionList = fmt.Errorf("failed to list VPC peering connections")

// PeeringConnections returns the ids of peering connections in which this
// VPC participates as either accepter or requester. Connections already
// deleted or deleting are skipped; the provider keeps them visible for a
// while after deletion.
func (inv *Inventory) PeeringConnections(ctx context.Context) ([]string, error) {
	input := &ec2.DescribeVpcPeeringConnectionsInput{}

	var ids []string
	for {
		result, err := inv.api.DescribeVpcPeeringConnections(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPeeringConnectionList, err)
		}
		for _, peering := range result.VpcPeeringConnections {
			if peering.Status != nil {
				switch peering.Status.Code {
				case types.VpcPeeringConnectionStateReasonCodeDeleted,
					types.VpcPeeringConnectionStateReasonCodeDeleting:
					continue
				}
			}
			accepter := peering.AccepterVpcInfo != nil && aws.ToString(peering.AccepterVpcInfo.VpcId) == inv.vpcID
			requester := peering.RequesterVpcInfo != nil && aws.ToString(peering.RequesterVpcInfo.VpcId) == inv.vpcID
			if (accepter || requester) && peering.VpcPeeringConnectionId != nil {
				ids = append(ids, *peering.VpcPeeringConnectionId)
			}
		}
		if result.NextToken == nil {
			return ids, nil
		}
		input.NextToken = result.NextToken
	}
}

var ErrPeeringConnectionDelete = fmt.Errorf("failed to delete VPC peering connection")

func peeringConnectionDelete(ctx context.Context, api EC2API, peeringID string) error {
	_, err := api.DeleteVpcPeeringConnection(ctx, &ec2.DeleteVpcPeeringConnectionInput{
		VpcPeeringConnectionId: aws.String(peeringID),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPeeringConnectionDelete, err)
	}
	return nil
}

func (x *Executor) deletePeeringConnections(ctx context.Context) (int, error) {
	log := clog.FromContext(ctx)

	peeringIDs, err := x.inv.PeeringConnections(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, peeringID := range peeringIDs {
		log.Info("deleting VPC peering connection", "peering_id", peeringID)
		if err := ignoreNotFound(peeringConnectionDelete(ctx, x.api, peeringID)); err != nil {
			return deleted, err
		}
		log.Info("deleted VPC peering connection", "peering_id", peeringID)
		deleted++
	}
	return deleted, nil
}
