package teardown

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/chainguard-dev/clog"
)

var ErrInternetGatewayList = fmt.Errorf("failed to list internet gateways")

// InternetGateways returns the ids of internet gateways attached to the VPC.
func (inv *Inventory) InternetGateways(ctx context.Context) ([]string, error) {
	input := &ec2.DescribeInternetGatewaysInput{
		Filters: []types.Filter{
			{
				Name:   aws.String("attachment.vpc-id"),
				Values: []string{inv.vpcID},
			},
		},
	}

	var ids []string
	for {
		result, err := inv.api.DescribeInternetGateways(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInternetGatewayList, err)
		}
		for _, gateway := range result.InternetGateways {
			if gateway.InternetGatewayId != nil {
				ids = append(ids, *gateway.InternetGatewayId)
			}
		}
		if result.NextToken == nil {
			return ids, nil
		}
		input.NextToken = result.NextToken
	}
}

var ErrInternetGatewayDetach = fmt.Errorf("failed to detach internet gateway")

func internetGatewayDetach(ctx context.Context, api EC2API, vpcID, gatewayID string) error {
	_, err := api.DetachInternetGateway(ctx, &ec2.DetachInternetGatewayInput{
		InternetGatewayId: aws.String(gatewayID),
		VpcId:             aws.String(vpcID),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInternetGatewayDetach, err)
	}
	return nil
}

var ErrInternetGatewayDelete = fmt.Errorf("failed to delete internet gateway")

func internetGatewayDelete(ctx context.Context, api EC2API, gatewayID string) error {
	_, err := api.DeleteInternetGateway(ctx, &ec2.DeleteInternetGatewayInput{
		InternetGatewayId: aws.String(gatewayID),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInternetGatewayDelete, err)
	}
	return nil
}

// deleteInternetGateways detaches each gateway from the VPC and deletes it.
// This must come after the public-address holders (NAT gateways, instances
// with EIPs) are gone or the detach is rejected.
func (x *Executor) deleteInternetGateways(ctx context.Context) (int, error) {
	log := clog.FromContext(ctx)

	gatewayIDs, err := x.inv.InternetGateways(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, gatewayID := range gatewayIDs {
		log.Info("detaching internet gateway", "internet_gateway_id", gatewayID)
		if err := ignoreNotFound(internetGatewayDetach(ctx, x.api, x.opts.VPCID, gatewayID)); err != nil {
			return deleted, err
		}
		log.Info("deleting internet gateway", "internet_gateway_id", gatewayID)
		if err := ignoreNotFound(internetGatewayDelete(ctx, x.api, gatewayID)); err != nil {
			return deleted, err
		}
		log.Info("deleted internet gateway", "internet_gateway_id", gatewayID)
		deleted++
	}
	return deleted, nil
}
