package teardown

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// Inventory reads live resource state for a single VPC. Every call is a
// direct, uncached read: the executor re-lists immediately before each
// deletion attempt because earlier steps change provider-side state, so
// nothing observed previously can be trusted.
//
// Per-kind list methods live next to the matching delete operations in the
// ec2_*.go files.
type Inventory struct {
	api   EC2API
	vpcID string
}

func NewInventory(api EC2API, vpcID string) *Inventory {
	return &Inventory{api: api, vpcID: vpcID}
}

// vpcFilter is the server-side filter shared by most list calls.
func (inv *Inventory) vpcFilter() []types.Filter {
	return []types.Filter{
		{
			Name:   aws.String("vpc-id"),
			Values: []string{inv.vpcID},
		},
	}
}
