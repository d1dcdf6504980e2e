package teardown

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/chainguard-dev/clog"
)

var ErrNetworkACLList = fmt.Errorf("failed to list network ACLs")

// CustomNetworkACLs returns the ids of non-default network ACLs in the VPC.
// The default ACL cannot be deleted and must never receive a delete call.
func (inv *Inventory) CustomNetworkACLs(ctx context.Context) ([]string, error) {
	input := &ec2.DescribeNetworkAclsInput{
		Filters: inv.vpcFilter(),
	}

	var ids []string
	for {
		result, err := inv.api.DescribeNetworkAcls(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNetworkACLList, err)
		}
		for _, acl := range result.NetworkAcls {
			if aws.ToBool(acl.IsDefault) {
				continue
			}
			if acl.NetworkAclId != nil {
				ids = append(ids, *acl.NetworkAclId)
			}
		}
		if result.NextToken == nil {
			return ids, nil
		}
		input.NextToken = result.NextToken
	}
}

var ErrNetworkACLDelete = fmt.Errorf("failed to delete network ACL")

func networkACLDelete(ctx context.Context, api EC2API, aclID string) error {
	_, err := api.DeleteNetworkAcl(ctx, &ec2.DeleteNetworkAclInput{
		NetworkAclId: aws.String(aclID),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetworkACLDelete, err)
	}
	return nil
}

func (x *Executor) deleteNetworkACLs(ctx context.Context) (int, error) {
	log := clog.FromContext(ctx)

	aclIDs, err := x.inv.CustomNetworkACLs(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, aclID := range aclIDs {
		log.Info("deleting network ACL", "network_acl_id", aclID)
		if err := ignoreNotFound(networkACLDelete(ctx, x.api, aclID)); err != nil {
			return deleted, err
		}
		log.Info("deleted network ACL", "network_acl_id", aclID)
		deleted++
	}
	return deleted, nil
}
