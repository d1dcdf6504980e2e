package teardown

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/chainguard-dev/clog"
)

// defaultSecurityGroupName is the reserved name of the group every VPC is
// born with; it cannot be deleted and must be skipped, not attempted.
const defaultSecurityGroupName = "default"

var ErrSecurityGroupList = fmt.Errorf("failed to list security groups")

// CustomSecurityGroups returns the ids of non-default security groups in the
// VPC.
func (inv *Inventory) CustomSecurityGroups(ctx context.Context) ([]string, error) {
	input := &ec2.DescribeSecurityGroupsInput{
		Filters: inv.vpcFilter(),
	}

	var ids []string
	for {
		result, err := inv.api.DescribeSecurityGroups(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSecurityGroupList, err)
		}
		for _, group := range result.SecurityGroups {
			if aws.ToString(group.GroupName) == defaultSecurityGroupName {
				continue
			}
			if group.GroupId != nil {
				ids = append(ids, *group.GroupId)
			}
		}
		if result.NextToken == nil {
			return ids, nil
		}
		input.NextToken = result.NextToken
	}
}

var ErrSecurityGroupDelete = fmt.Errorf("failed to delete security group")

func securityGroupDelete(ctx context.Context, api EC2API, groupID string) error {
	_, err := api.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{
		GroupId: aws.String(groupID),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSecurityGroupDelete, err)
	}
	return nil
}

func (x *Executor) deleteSecurityGroups(ctx context.Context) (int, error) {
	log := clog.FromContext(ctx)

	groupIDs, err := x.inv.CustomSecurityGroups(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, groupID := range groupIDs {
		log.Info("deleting security group", "security_group_id", groupID)
		if err := ignoreNotFound(securityGroupDelete(ctx, x.api, groupID)); err != nil {
			return deleted, err
		}
		log.Info("deleted security group", "security_group_id", groupID)
		deleted++
	}
	return deleted, nil
}
