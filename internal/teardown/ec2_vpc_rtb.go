package teardown

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/chainguard-dev/clog"
)

var ErrRouteTableList = fmt.Errorf("failed to list route tables")

// RouteTables returns the route tables of the VPC with their routes and
// associations.
func (inv *Inventory) RouteTables(ctx context.Context) ([]types.RouteTable, error) {
	input := &ec2.DescribeRouteTablesInput{
		Filters: inv.vpcFilter(),
	}

	var tables []types.RouteTable
	for {
		result, err := inv.api.DescribeRouteTables(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRouteTableList, err)
		}
		tables = append(tables, result.RouteTables...)
		if result.NextToken == nil {
			return tables, nil
		}
		input.NextToken = result.NextToken
	}
}

var ErrRouteDelete = fmt.Errorf("failed to delete route")

func routeDelete(ctx context.Context, api EC2API, routeTableID, destinationCIDR string) error {
	_, err := api.DeleteRoute(ctx, &ec2.DeleteRouteInput{
		RouteTableId:         aws.String(routeTableID),
		DestinationCidrBlock: aws.String(destinationCIDR),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRouteDelete, err)
	}
	return nil
}

var ErrRouteTableDisassociate = fmt.Errorf("failed to disassociate route table")

func routeTableDisassociate(ctx context.Context, api EC2API, associationID string) error {
	_, err := api.DisassociateRouteTable(ctx, &ec2.DisassociateRouteTableInput{
		AssociationId: aws.String(associationID),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRouteTableDisassociate, err)
	}
	return nil
}

var ErrRouteTableDelete = fmt.Errorf("failed to delete route table")

func routeTableDelete(ctx context.Context, api EC2API, routeTableID string) error {
	_, err := api.DeleteRouteTable(ctx, &ec2.DeleteRouteTableInput{
		RouteTableId: aws.String(routeTableID),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRouteTableDelete, err)
	}
	return nil
}

// isMainTable reports whether the table carries the VPC's implicit main
// association, which cannot be disassociated; the main table is deleted
// together with the VPC.
func isMainTable(table types.RouteTable) bool {
	for _, association := range table.Associations {
		if aws.ToBool(association.Main) {
			return true
		}
	}
	return false
}

// deleteRouteTables strips user-created routes and explicit associations from
// every route table, deletes each non-main table exactly once, then sweeps
// again for tables left without associations.
func (x *Executor) deleteRouteTables(ctx context.Context) (int, error) {
	log := clog.FromContext(ctx)

	tables, err := x.inv.RouteTables(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, table := range tables {
		if table.RouteTableId == nil {
			continue
		}
		tableID := *table.RouteTableId

		// Routes the provider created (local, propagated) cannot be deleted
		// and do not block table deletion; only user-created ones go.
		for _, route := range table.Routes {
			if route.Origin != types.RouteOriginCreateRoute || route.DestinationCidrBlock == nil {
				continue
			}
			log.Info("deleting route",
				"route_table_id", tableID,
				"destination", *route.DestinationCidrBlock,
			)
			if err := ignoreNotFound(routeDelete(ctx, x.api, tableID, *route.DestinationCidrBlock)); err != nil {
				return deleted, err
			}
		}

		// The main association is implicit and cannot be removed.
		for _, association := range table.Associations {
			if aws.ToBool(association.Main) || association.RouteTableAssociationId == nil {
				continue
			}
			log.Info("disassociating route table",
				"route_table_id", tableID,
				"association_id", *association.RouteTableAssociationId,
			)
			if err := ignoreNotFound(routeTableDisassociate(ctx, x.api, *association.RouteTableAssociationId)); err != nil {
				return deleted, err
			}
		}

		if isMainTable(table) {
			continue
		}
		log.Info("deleting route table", "route_table_id", tableID)
		if err := ignoreNotFound(routeTableDelete(ctx, x.api, tableID)); err != nil {
			return deleted, err
		}
		log.Info("deleted route table", "route_table_id", tableID)
		deleted++
	}

	// Second look with fresh state: anything now association-free that the
	// first pass could not remove.
	tables, err = x.inv.RouteTables(ctx)
	if err != nil {
		return deleted, err
	}
	for _, table := range tables {
		if table.RouteTableId == nil || len(table.Associations) > 0 {
			continue
		}
		tableID := *table.RouteTableId
		log.Info("deleting unassociated route table", "route_table_id", tableID)
		if err := ignoreNotFound(routeTableDelete(ctx, x.api, tableID)); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
