package teardown

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
)

func apiError(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: code}
}

// fakeEC2 is a scripted EC2API. Defaults simulate a VPC with no dependent
// resources; tests override the onDescribe* hooks to populate collections
// and deleteErrs to script rejections. Every call is recorded as "Op" or
// "Op:id" so tests can assert on both call sets and ordering.
type fakeEC2 struct {
	vpcID     string
	vpcExists bool

	calls []string

	onDescribeVpcs                      func(*ec2.DescribeVpcsInput) (*ec2.DescribeVpcsOutput, error)
	onDescribeInstances                 func(*ec2.DescribeInstancesInput) (*ec2.DescribeInstancesOutput, error)
	onDescribeAddresses                 func(*ec2.DescribeAddressesInput) (*ec2.DescribeAddressesOutput, error)
	onDescribeTransitGatewayAttachments func(*ec2.DescribeTransitGatewayAttachmentsInput) (*ec2.DescribeTransitGatewayAttachmentsOutput, error)
	onDescribeNatGateways               func(*ec2.DescribeNatGatewaysInput) (*ec2.DescribeNatGatewaysOutput, error)
	onDescribeVpcPeeringConnections     func(*ec2.DescribeVpcPeeringConnectionsInput) (*ec2.DescribeVpcPeeringConnectionsOutput, error)
	onDescribeVpcEndpoints              func(*ec2.DescribeVpcEndpointsInput) (*ec2.DescribeVpcEndpointsOutput, error)
	onDescribeNetworkAcls               func(*ec2.DescribeNetworkAclsInput) (*ec2.DescribeNetworkAclsOutput, error)
	onDescribeNetworkInterfaces         func(*ec2.DescribeNetworkInterfacesInput) (*ec2.DescribeNetworkInterfacesOutput, error)
	onDescribeSubnets                   func(*ec2.DescribeSubnetsInput) (*ec2.DescribeSubnetsOutput, error)
	onDescribeRouteTables               func(*ec2.DescribeRouteTablesInput) (*ec2.DescribeRouteTablesOutput, error)
	onDescribeInternetGateways          func(*ec2.DescribeInternetGatewaysInput) (*ec2.DescribeInternetGatewaysOutput, error)
	onDescribeSecurityGroups            func(*ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error)

	// deleteErrs scripts an error for a mutating op by name.
	deleteErrs map[string]error
}

var _ EC2API = (*fakeEC2)(nil)

func newFakeEC2(vpcID string) *fakeEC2 {
	return &fakeEC2{vpcID: vpcID, vpcExists: true, deleteErrs: map[string]error{}}
}

func (f *fakeEC2) record(op string, ids ...string) {
	if len(ids) > 0 {
		op = op + ":" + strings.Join(ids, ",")
	}
	f.calls = append(f.calls, op)
}

// recorded returns the ids passed to every call of op, in order.
func (f *fakeEC2) recorded(op string) []string {
	var ids []string
	for _, call := range f.calls {
		if rest, ok := strings.CutPrefix(call, op+":"); ok {
			ids = append(ids, rest)
		} else if call == op {
			ids = append(ids, "")
		}
	}
	return ids
}

// callIndex returns the position of the first exact call, or -1.
func (f *fakeEC2) callIndex(call string) int {
	for i, c := range f.calls {
		if c == call {
			return i
		}
	}
	return -1
}

func (f *fakeEC2) mutate(op string, ids ...string) error {
	f.record(op, ids...)
	return f.deleteErrs[op]
}

////////////////////////////////////////////////////////////////////////////////
// VPC

func (f *fakeEC2) DescribeVpcs(_ context.Context, params *ec2.DescribeVpcsInput, _ ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	f.record("DescribeVpcs", params.VpcIds...)
	if f.onDescribeVpcs != nil {
		return f.onDescribeVpcs(params)
	}
	if len(params.VpcIds) == 0 {
		// Credentials probe.
		return &ec2.DescribeVpcsOutput{}, nil
	}
	if !f.vpcExists {
		return nil, apiError("InvalidVpcID.NotFound")
	}
	return &ec2.DescribeVpcsOutput{
		Vpcs: []types.Vpc{{VpcId: aws.String(params.VpcIds[0])}},
	}, nil
}

func (f *fakeEC2) DeleteVpc(_ context.Context, params *ec2.DeleteVpcInput, _ ...func(*ec2.Options)) (*ec2.DeleteVpcOutput, error) {
	if err := f.mutate("DeleteVpc", aws.ToString(params.VpcId)); err != nil {
		return nil, err
	}
	f.vpcExists = false
	return &ec2.DeleteVpcOutput{}, nil
}

////////////////////////////////////////////////////////////////////////////////
// Instances + addresses

func (f *fakeEC2) DescribeInstances(_ context.Context, params *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	f.record("DescribeInstances")
	if f.onDescribeInstances != nil {
		return f.onDescribeInstances(params)
	}
	return &ec2.DescribeInstancesOutput{}, nil
}

func (f *fakeEC2) TerminateInstances(_ context.Context, params *ec2.TerminateInstancesInput, _ ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error) {
	if err := f.mutate("TerminateInstances", params.InstanceIds...); err != nil {
		return nil, err
	}
	return &ec2.TerminateInstancesOutput{}, nil
}

func (f *fakeEC2) DescribeAddresses(_ context.Context, params *ec2.DescribeAddressesInput, _ ...func(*ec2.Options)) (*ec2.DescribeAddressesOutput, error) {
	f.record("DescribeAddresses")
	if f.onDescribeAddresses != nil {
		return f.onDescribeAddresses(params)
	}
	return &ec2.DescribeAddressesOutput{}, nil
}

func (f *fakeEC2) DisassociateAddress(_ context.Context, params *ec2.DisassociateAddressInput, _ ...func(*ec2.Options)) (*ec2.DisassociateAddressOutput, error) {
	if err := f.mutate("DisassociateAddress", aws.ToString(params.AssociationId)); err != nil {
		return nil, err
	}
	return &ec2.DisassociateAddressOutput{}, nil
}

func (f *fakeEC2) ReleaseAddress(_ context.Context, params *ec2.ReleaseAddressInput, _ ...func(*ec2.Options)) (*ec2.ReleaseAddressOutput, error) {
	if err := f.mutate("ReleaseAddress", aws.ToString(params.AllocationId)); err != nil {
		return nil, err
	}
	return &ec2.ReleaseAddressOutput{}, nil
}

////////////////////////////////////////////////////////////////////////////////
// Transit gateways

func (f *fakeEC2) DescribeTransitGatewayAttachments(_ context.Context, params *ec2.DescribeTransitGatewayAttachmentsInput, _ ...func(*ec2.Options)) (*ec2.DescribeTransitGatewayAttachmentsOutput, error) {
	f.record("DescribeTransitGatewayAttachments")
	if f.onDescribeTransitGatewayAttachments != nil {
		return f.onDescribeTransitGatewayAttachments(params)
	}
	return &ec2.DescribeTransitGatewayAttachmentsOutput{}, nil
}

func (f *fakeEC2) DeleteTransitGatewayVpcAttachment(_ context.Context, params *ec2.DeleteTransitGatewayVpcAttachmentInput, _ ...func(*ec2.Options)) (*ec2.DeleteTransitGatewayVpcAttachmentOutput, error) {
	if err := f.mutate("DeleteTransitGatewayVpcAttachment", aws.ToString(params.TransitGatewayAttachmentId)); err != nil {
		return nil, err
	}
	return &ec2.DeleteTransitGatewayVpcAttachmentOutput{}, nil
}

////////////////////////////////////////////////////////////////////////////////
// NAT gateways + DHCP

func (f *fakeEC2) DescribeNatGateways(_ context.Context, params *ec2.DescribeNatGatewaysInput, _ ...func(*ec2.Options)) (*ec2.DescribeNatGatewaysOutput, error) {
	f.record("DescribeNatGateways")
	if f.onDescribeNatGateways != nil {
		return f.onDescribeNatGateways(params)
	}
	return &ec2.DescribeNatGatewaysOutput{}, nil
}

func (f *fakeEC2) DeleteNatGateway(_ context.Context, params *ec2.DeleteNatGatewayInput, _ ...func(*ec2.Options)) (*ec2.DeleteNatGatewayOutput, error) {
	if err := f.mutate("DeleteNatGateway", aws.ToString(params.NatGatewayId)); err != nil {
		return nil, err
	}
	return &ec2.DeleteNatGatewayOutput{}, nil
}

func (f *fakeEC2) AssociateDhcpOptions(_ context.Context, params *ec2.AssociateDhcpOptionsInput, _ ...func(*ec2.Options)) (*ec2.AssociateDhcpOptionsOutput, error) {
	if err := f.mutate("AssociateDhcpOptions", aws.ToString(params.DhcpOptionsId)); err != nil {
		return nil, err
	}
	return &ec2.AssociateDhcpOptionsOutput{}, nil
}

////////////////////////////////////////////////////////////////////////////////
// Peering + endpoints

func (f *fakeEC2) DescribeVpcPeeringConnections(_ context.Context, params *ec2.DescribeVpcPeeringConnectionsInput, _ ...func(*ec2.Options)) (*ec2.DescribeVpcPeeringConnectionsOutput, error) {
	f.record("DescribeVpcPeeringConnections")
	if f.onDescribeVpcPeeringConnections != nil {
		return f.onDescribeVpcPeeringConnections(params)
	}
	return &ec2.DescribeVpcPeeringConnectionsOutput{}, nil
}

func (f *fakeEC2) DeleteVpcPeeringConnection(_ context.Context, params *ec2.DeleteVpcPeeringConnectionInput, _ ...func(*ec2.Options)) (*ec2.DeleteVpcPeeringConnectionOutput, error) {
	if err := f.mutate("DeleteVpcPeeringConnection", aws.ToString(params.VpcPeeringConnectionId)); err != nil {
		return nil, err
	}
	return &ec2.DeleteVpcPeeringConnectionOutput{}, nil
}

func (f *fakeEC2) DescribeVpcEndpoints(_ context.Context, params *ec2.DescribeVpcEndpointsInput, _ ...func(*ec2.Options)) (*ec2.DescribeVpcEndpointsOutput, error) {
	f.record("DescribeVpcEndpoints")
	if f.onDescribeVpcEndpoints != nil {
		return f.onDescribeVpcEndpoints(params)
	}
	return &ec2.DescribeVpcEndpointsOutput{}, nil
}

func (f *fakeEC2) DeleteVpcEndpoints(_ context.Context, params *ec2.DeleteVpcEndpointsInput, _ ...func(*ec2.Options)) (*ec2.DeleteVpcEndpointsOutput, error) {
	if err := f.mutate("DeleteVpcEndpoints", params.VpcEndpointIds...); err != nil {
		return nil, err
	}
	return &ec2.DeleteVpcEndpointsOutput{}, nil
}

////////////////////////////////////////////////////////////////////////////////
// Network ACLs

func (f *fakeEC2) DescribeNetworkAcls(_ context.Context, params *ec2.DescribeNetworkAclsInput, _ ...func(*ec2.Options)) (*ec2.DescribeNetworkAclsOutput, error) {
	f.record("DescribeNetworkAcls")
	if f.onDescribeNetworkAcls != nil {
		return f.onDescribeNetworkAcls(params)
	}
	return &ec2.DescribeNetworkAclsOutput{}, nil
}

func (f *fakeEC2) DeleteNetworkAcl(_ context.Context, params *ec2.DeleteNetworkAclInput, _ ...func(*ec2.Options)) (*ec2.DeleteNetworkAclOutput, error) {
	if err := f.mutate("DeleteNetworkAcl", aws.ToString(params.NetworkAclId)); err != nil {
		return nil, err
	}
	return &ec2.DeleteNetworkAclOutput{}, nil
}

////////////////////////////////////////////////////////////////////////////////
// Network interfaces

func (f *fakeEC2) DescribeNetworkInterfaces(_ context.Context, params *ec2.DescribeNetworkInterfacesInput, _ ...func(*ec2.Options)) (*ec2.DescribeNetworkInterfacesOutput, error) {
	f.record("DescribeNetworkInterfaces")
	if f.onDescribeNetworkInterfaces != nil {
		return f.onDescribeNetworkInterfaces(params)
	}
	return &ec2.DescribeNetworkInterfacesOutput{}, nil
}

func (f *fakeEC2) DetachNetworkInterface(_ context.Context, params *ec2.DetachNetworkInterfaceInput, _ ...func(*ec2.Options)) (*ec2.DetachNetworkInterfaceOutput, error) {
	if err := f.mutate("DetachNetworkInterface", aws.ToString(params.AttachmentId)); err != nil {
		return nil, err
	}
	return &ec2.DetachNetworkInterfaceOutput{}, nil
}

func (f *fakeEC2) DeleteNetworkInterface(_ context.Context, params *ec2.DeleteNetworkInterfaceInput, _ ...func(*ec2.Options)) (*ec2.DeleteNetworkInterfaceOutput, error) {
	if err := f.mutate("DeleteNetworkInterface", aws.ToString(params.NetworkInterfaceId)); err != nil {
		return nil, err
	}
	return &ec2.DeleteNetworkInterfaceOutput{}, nil
}

////////////////////////////////////////////////////////////////////////////////
// Subnets

func (f *fakeEC2) DescribeSubnets(_ context.Context, params *ec2.DescribeSubnetsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
	f.record("DescribeSubnets")
	if f.onDescribeSubnets != nil {
		return f.onDescribeSubnets(params)
	}
	return &ec2.DescribeSubnetsOutput{}, nil
}

func (f *fakeEC2) DeleteSubnet(_ context.Context, params *ec2.DeleteSubnetInput, _ ...func(*ec2.Options)) (*ec2.DeleteSubnetOutput, error) {
	if err := f.mutate("DeleteSubnet", aws.ToString(params.SubnetId)); err != nil {
		return nil, err
	}
	return &ec2.DeleteSubnetOutput{}, nil
}

////////////////////////////////////////////////////////////////////////////////
// Route tables

func (f *fakeEC2) DescribeRouteTables(_ context.Context, params *ec2.DescribeRouteTablesInput, _ ...func(*ec2.Options)) (*ec2.DescribeRouteTablesOutput, error) {
	f.record("DescribeRouteTables")
	if f.onDescribeRouteTables != nil {
		return f.onDescribeRouteTables(params)
	}
	return &ec2.DescribeRouteTablesOutput{}, nil
}

func (f *fakeEC2) DeleteRoute(_ context.Context, params *ec2.DeleteRouteInput, _ ...func(*ec2.Options)) (*ec2.DeleteRouteOutput, error) {
	if err := f.mutate("DeleteRoute", fmt.Sprintf("%s@%s", aws.ToString(params.DestinationCidrBlock), aws.ToString(params.RouteTableId))); err != nil {
		return nil, err
	}
	return &ec2.DeleteRouteOutput{}, nil
}

func (f *fakeEC2) DisassociateRouteTable(_ context.Context, params *ec2.DisassociateRouteTableInput, _ ...func(*ec2.Options)) (*ec2.DisassociateRouteTableOutput, error) {
	if err := f.mutate("DisassociateRouteTable", aws.ToString(params.AssociationId)); err != nil {
		return nil, err
	}
	return &ec2.DisassociateRouteTableOutput{}, nil
}

func (f *fakeEC2) DeleteRouteTable(_ context.Context, params *ec2.DeleteRouteTableInput, _ ...func(*ec2.Options)) (*ec2.DeleteRouteTableOutput, error) {
	if err := f.mutate("DeleteRouteTable", aws.ToString(params.RouteTableId)); err != nil {
		return nil, err
	}
	return &ec2.DeleteRouteTableOutput{}, nil
}

////////////////////////////////////////////////////////////////////////////////
// Internet gateways

func (f *fakeEC2) DescribeInternetGateways(_ context.Context, params *ec2.DescribeInternetGatewaysInput, _ ...func(*ec2.Options)) (*ec2.DescribeInternetGatewaysOutput, error) {
	f.record("DescribeInternetGateways")
	if f.onDescribeInternetGateways != nil {
		return f.onDescribeInternetGateways(params)
	}
	return &ec2.DescribeInternetGatewaysOutput{}, nil
}

func (f *fakeEC2) DetachInternetGateway(_ context.Context, params *ec2.DetachInternetGatewayInput, _ ...func(*ec2.Options)) (*ec2.DetachInternetGatewayOutput, error) {
	if err := f.mutate("DetachInternetGateway", aws.ToString(params.InternetGatewayId)); err != nil {
		return nil, err
	}
	return &ec2.DetachInternetGatewayOutput{}, nil
}

func (f *fakeEC2) DeleteInternetGateway(_ context.Context, params *ec2.DeleteInternetGatewayInput, _ ...func(*ec2.Options)) (*ec2.DeleteInternetGatewayOutput, error) {
	if err := f.mutate("DeleteInternetGateway", aws.ToString(params.InternetGatewayId)); err != nil {
		return nil, err
	}
	return &ec2.DeleteInternetGatewayOutput{}, nil
}

////////////////////////////////////////////////////////////////////////////////
// Security groups

func (f *fakeEC2) DescribeSecurityGroups(_ context.Context, params *ec2.DescribeSecurityGroupsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	f.record("DescribeSecurityGroups")
	if f.onDescribeSecurityGroups != nil {
		return f.onDescribeSecurityGroups(params)
	}
	return &ec2.DescribeSecurityGroupsOutput{}, nil
}

func (f *fakeEC2) DeleteSecurityGroup(_ context.Context, params *ec2.DeleteSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error) {
	if err := f.mutate("DeleteSecurityGroup", aws.ToString(params.GroupId)); err != nil {
		return nil, err
	}
	return &ec2.DeleteSecurityGroupOutput{}, nil
}
