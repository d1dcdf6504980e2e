package teardown

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/chainguard-dev/clog"
)

var ErrTransitGatewayAttachmentList = fmt.Errorf("failed to list transit gateway attachments")

// TransitGatewayAttachments returns the ids of transit gateway VPC
// attachments referencing this VPC. The describe call has no vpc-id filter,
// so matching happens client-side on the attachment's resource id. Only VPC
// attachments are handled; VPN attachments never reference a VPC.
func (inv *Inventory) TransitGatewayAttachments(ctx context.Context) ([]string, error) {
	input := &ec2.DescribeTransitGatewayAttachmentsInput{}

	var ids []string
	for {
		result, err := inv.api.DescribeTransitGatewayAttachments(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransitGatewayAttachmentList, err)
		}
		for _, attachment := range result.TransitGatewayAttachments {
			if aws.ToString(attachment.ResourceId) != inv.vpcID {
				continue
			}
			switch attachment.State {
			case types.TransitGatewayAttachmentStateDeleted, types.TransitGatewayAttachmentStateDeleting:
				continue
			}
			if attachment.TransitGatewayAttachmentId != nil {
				ids = append(ids, *attachment.TransitGatewayAttachmentId)
			}
		}
		if result.NextToken == nil {
			return ids, nil
		}
		input.NextToken = result.NextToken
	}
}

var ErrTransitGatewayAttachmentDelete = fmt.Errorf("failed to delete transit gateway attachment")

func transitGatewayAttachmentDelete(ctx context.Context, api EC2API, attachmentID string) error {
	_, err := api.DeleteTransitGatewayVpcAttachment(ctx, &ec2.DeleteTransitGatewayVpcAttachmentInput{
		TransitGatewayAttachmentId: aws.String(attachmentID),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransitGatewayAttachmentDelete, err)
	}
	return nil
}

func (x *Executor) deleteTransitGatewayAttachments(ctx context.Context) (int, error) {
	log := clog.FromContext(ctx)

	attachmentIDs, err := x.inv.TransitGatewayAttachments(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, attachmentID := range attachmentIDs {
		log.Info("deleting transit gateway attachment", "attachment_id", attachmentID)
		if err := ignoreNotFound(transitGatewayAttachmentDelete(ctx, x.api, attachmentID)); err != nil {
			return deleted, err
		}
		log.Info("deleted transit gateway attachment", "attachment_id", attachmentID)
		deleted++
	}
	return deleted, nil
}
