package teardown

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/chainguard-dev/clog"
)

// defaultDHCPOptionsID is the provider's magic id for the default DHCP
// options set; associating it detaches any custom set from the VPC.
const defaultDHCPOptionsID = "default"

var ErrDHCPOptionsReset = fmt.Errorf("failed to reset DHCP options association")

func dhcpOptionsReset(ctx context.Context, api EC2API, vpcID string) error {
	_, err := api.AssociateDhcpOptions(ctx, &ec2.AssociateDhcpOptionsInput{
		DhcpOptionsId: aws.String(defaultDHCPOptionsID),
		VpcId:         aws.String(vpcID),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDHCPOptionsReset, err)
	}
	return nil
}

// resetDHCPOptions re-points the VPC at the default DHCP options set so any
// custom set is left unreferenced and deletable by whoever owns it.
func (x *Executor) resetDHCPOptions(ctx context.Context) (int, error) {
	log := clog.FromContext(ctx)

	log.Info("resetting DHCP options association", "vpc_id", x.opts.VPCID)
	if err := ignoreNotFound(dhcpOptionsReset(ctx, x.api, x.opts.VPCID)); err != nil {
		return 0, err
	}
	return 1, nil
}
