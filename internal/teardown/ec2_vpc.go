package teardown

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/chainguard-dev/clog"
)

var ErrVPCDescribe = fmt.Errorf("failed to describe VPC")

// VPCExists reports whether the VPC is present. A not-found rejection is an
// answer, not an error.
func (inv *Inventory) VPCExists(ctx context.Context) (bool, error) {
	result, err := inv.api.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
		VpcIds: []string{inv.vpcID},
	})
	if err != nil {
		if Classify(err) == ClassNotFound {
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", ErrVPCDescribe, err)
	}
	return len(result.Vpcs) > 0, nil
}

var ErrVPCDelete = fmt.Errorf("failed to delete VPC")

func vpcDelete(ctx context.Context, api EC2API, vpcID string) error {
	_, err := api.DeleteVpc(ctx, &ec2.DeleteVpcInput{
		VpcId: aws.String(vpcID),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVPCDelete, err)
	}
	return nil
}

// deleteVPC is the terminal plan step. By the time it runs every dependent
// collection must report zero members; a DependencyViolation here is the
// surfaced form of whatever an earlier step failed to drain.
func (x *Executor) deleteVPC(ctx context.Context) (int, error) {
	log := clog.FromContext(ctx)

	exists, err := x.inv.VPCExists(ctx)
	if err != nil {
		return 0, err
	}
	if !exists {
		log.Info("VPC does not exist, nothing to delete", "vpc_id", x.opts.VPCID)
		return 0, nil
	}

	log.Info("deleting VPC", "vpc_id", x.opts.VPCID)
	if err := ignoreNotFound(vpcDelete(ctx, x.api, x.opts.VPCID)); err != nil {
		return 0, err
	}
	log.Info("deleted VPC", "vpc_id", x.opts.VPCID)
	return 1, nil
}
