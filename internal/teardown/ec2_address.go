package teardown

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/chainguard-dev/clog"
)

var ErrAddressList = fmt.Errorf("failed to list elastic IP addresses")

// InstanceAddresses returns the elastic IP addresses associated with the
// given instance.
func (inv *Inventory) InstanceAddresses(ctx context.Context, instanceID string) ([]types.Address, error) {
	result, err := inv.api.DescribeAddresses(ctx, &ec2.DescribeAddressesInput{
		Filters: []types.Filter{
			{
				Name:   aws.String("instance-id"),
				Values: []string{instanceID},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAddressList, err)
	}
	return result.Addresses, nil
}

var ErrAddressDisassociate = fmt.Errorf("failed to disassociate elastic IP address")

func addressDisassociate(ctx context.Context, api EC2API, associationID string) error {
	_, err := api.DisassociateAddress(ctx, &ec2.DisassociateAddressInput{
		AssociationId: aws.String(associationID),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAddressDisassociate, err)
	}
	return nil
}

var ErrAddressRelease = fmt.Errorf("failed to release elastic IP address")

func addressRelease(ctx context.Context, api EC2API, allocationID string) error {
	_, err := api.ReleaseAddress(ctx, &ec2.ReleaseAddressInput{
		AllocationId: aws.String(allocationID),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAddressRelease, err)
	}
	return nil
}

// releaseInstanceAddresses disassociates and releases every elastic IP bound
// to a running instance in the VPC. This must land before instance
// termination so the allocations do not end up orphaned (the provider
// disassociates on termination but never releases).
func (x *Executor) releaseInstanceAddresses(ctx context.Context) (int, error) {
	log := clog.FromContext(ctx)

	instanceIDs, err := x.inv.RunningInstances(ctx)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, instanceID := range instanceIDs {
		addresses, err := x.inv.InstanceAddresses(ctx, instanceID)
		if err != nil {
			return released, err
		}
		for _, address := range addresses {
			if address.AssociationId != nil {
				log.Info("disassociating elastic IP",
					"association_id", *address.AssociationId,
					"instance_id", instanceID,
				)
				if err := ignoreNotFound(addressDisassociate(ctx, x.api, *address.AssociationId)); err != nil {
					return released, err
				}
			}
			if address.AllocationId == nil {
				continue
			}
			log.Info("releasing elastic IP", "allocation_id", *address.AllocationId)
			if err := ignoreNotFound(addressRelease(ctx, x.api, *address.AllocationId)); err != nil {
				return released, err
			}
			released++
		}
	}
	return released, nil
}
