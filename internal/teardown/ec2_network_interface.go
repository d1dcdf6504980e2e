package teardown

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/chainguard-dev/clog"
)

var ErrNetworkInterfaceList = fmt.Errorf("failed to list network interfaces")

// NetworkInterfaces returns every ENI still present in the VPC. ENIs owned
// by managed resources (NAT gateways, endpoints, instances) linger after
// their owner is deleted until the provider detaches them internally, which
// is why the plan polls this collection rather than reading it once.
func (inv *Inventory) NetworkInterfaces(ctx context.Context) ([]types.NetworkInterface, error) {
	input := &ec2.DescribeNetworkInterfacesInput{
		Filters: inv.vpcFilter(),
	}

	var interfaces []types.NetworkInterface
	for {
		result, err := inv.api.DescribeNetworkInterfaces(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNetworkInterfaceList, err)
		}
		interfaces = append(interfaces, result.NetworkInterfaces...)
		if result.NextToken == nil {
			return interfaces, nil
		}
		input.NextToken = result.NextToken
	}
}

// SubnetNetworkInterfaces returns the ENIs attached to one subnet.
func (inv *Inventory) SubnetNetworkInterfaces(ctx context.Context, subnetID string) ([]types.NetworkInterface, error) {
	result, err := inv.api.DescribeNetworkInterfaces(ctx, &ec2.DescribeNetworkInterfacesInput{
		Filters: []types.Filter{
			{
				Name:   aws.String("subnet-id"),
				Values: []string{subnetID},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetworkInterfaceList, err)
	}
	return result.NetworkInterfaces, nil
}

var ErrNetworkInterfaceDetach = fmt.Errorf("failed to detach network interface")

func networkInterfaceDetach(ctx context.Context, api EC2API, attachmentID string) error {
	_, err := api.DetachNetworkInterface(ctx, &ec2.DetachNetworkInterfaceInput{
		AttachmentId: aws.String(attachmentID),
		Force:        aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetworkInterfaceDetach, err)
	}
	return nil
}

var ErrNetworkInterfaceDelete = fmt.Errorf("failed to delete network interface")

func networkInterfaceDelete(ctx context.Context, api EC2API, interfaceID string) error {
	_, err := api.DeleteNetworkInterface(ctx, &ec2.DeleteNetworkInterfaceInput{
		NetworkInterfaceId: aws.String(interfaceID),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetworkInterfaceDelete, err)
	}
	return nil
}

// purgeNetworkInterfaces is the drain loop's corrective action: force-detach
// anything still attached, then attempt the delete. Rejections of the
// in-use/dependency kind are expected while owners are still winding down;
// they are logged and retried on the next poll rather than failing the run.
func (x *Executor) purgeNetworkInterfaces(ctx context.Context, interfaces []types.NetworkInterface) error {
	log := clog.FromContext(ctx)

	for _, iface := range interfaces {
		if iface.NetworkInterfaceId == nil {
			continue
		}
		interfaceID := *iface.NetworkInterfaceId

		if iface.Attachment != nil && iface.Attachment.AttachmentId != nil {
			log.Info("force-detaching network interface",
				"network_interface_id", interfaceID,
				"attachment_id", *iface.Attachment.AttachmentId,
			)
			err := ignoreNotFound(networkInterfaceDetach(ctx, x.api, *iface.Attachment.AttachmentId))
			if Fatal(err) {
				return err
			}
			if err != nil {
				log.Warn("network interface detach rejected, will retry",
					"network_interface_id", interfaceID,
					"error", err,
				)
				continue
			}
		}

		log.Info("deleting network interface", "network_interface_id", interfaceID)
		err := ignoreNotFound(networkInterfaceDelete(ctx, x.api, interfaceID))
		if Fatal(err) {
			return err
		}
		if err != nil {
			log.Warn("network interface delete rejected, will retry",
				"network_interface_id", interfaceID,
				"error", err,
			)
		}
	}
	return nil
}

// awaitNetworkInterfaces blocks until the VPC's ENI collection drains or the
// waiter gives up. A timeout is reported as a warning and the plan continues;
// if interfaces truly remain, the final VPC delete fails and surfaces it.
func (x *Executor) awaitNetworkInterfaces(ctx context.Context) (int, error) {
	log := clog.FromContext(ctx)

	var remaining []types.NetworkInterface
	purged := 0

	outcome, err := x.waiter.AwaitEmpty(ctx,
		func(ctx context.Context) (int, error) {
			var err error
			remaining, err = x.inv.NetworkInterfaces(ctx)
			return len(remaining), err
		},
		func(ctx context.Context) error {
			log.Info("waiting for network interfaces to clear", "remaining", len(remaining))
			purged += len(remaining)
			return x.purgeNetworkInterfaces(ctx, remaining)
		},
	)
	if err != nil {
		return purged, err
	}
	if outcome == TimedOut {
		return purged, fmt.Errorf("%w: %d network interface(s) remain", ErrDrainTimeout, len(remaining))
	}
	log.Info("no network interfaces remaining")
	return purged, nil
}
