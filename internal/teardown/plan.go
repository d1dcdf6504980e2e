package teardown

import "context"

// Step is one entry in the deletion plan. Run re-reads live state, deletes
// what it observes, and returns how many resources it acted on; zero with a
// nil error means the step had nothing to do.
type Step struct {
	// Name is the human-readable label used in logs, spans, and the report.
	Name string

	// Critical marks a step whose failure is always fatal regardless of
	// error class. Only the terminal VPC delete carries it: an error there
	// is the run's verdict, not something a later step can absorb.
	Critical bool

	Run func(x *Executor, ctx context.Context) (int, error)
}

// Plan returns the fixed order in which resource kinds are torn down. The
// provider rejects deletion of a resource still referenced by another; this
// sequence is consistent with every pairwise ordering constraint EC2
// enforces during VPC teardown. A step with no matching resources is a
// no-op, never a failure, which also makes the whole plan re-runnable.
//
// Instance termination is destructive beyond the network itself, so its two
// steps only join the plan when explicitly requested.
func Plan(terminateInstances bool) []Step {
	var steps []Step
	if terminateInstances {
		steps = append(steps,
			Step{Name: "release instance elastic IPs", Run: (*Executor).releaseInstanceAddresses},
			Step{Name: "terminate instances", Run: (*Executor).terminateInstances},
		)
	}
	return append(steps,
		Step{Name: "delete transit gateway attachments", Run: (*Executor).deleteTransitGatewayAttachments},
		Step{Name: "delete NAT gateways", Run: (*Executor).deleteNATGateways},
		Step{Name: "reset DHCP options", Run: (*Executor).resetDHCPOptions},
		Step{Name: "delete VPC peering connections", Run: (*Executor).deletePeeringConnections},
		Step{Name: "delete VPC endpoints", Run: (*Executor).deleteVPCEndpoints},
		Step{Name: "delete network ACLs", Run: (*Executor).deleteNetworkACLs},
		Step{Name: "wait for network interfaces", Run: (*Executor).awaitNetworkInterfaces},
		Step{Name: "delete subnets", Run: (*Executor).deleteSubnets},
		Step{Name: "delete route tables", Run: (*Executor).deleteRouteTables},
		// NAT gateways can appear between the first pass and here (console
		// users, autoscaling glue); one more sweep before the gateways'
		// internet gateway goes away.
		Step{Name: "delete remaining NAT gateways", Run: (*Executor).deleteNATGateways},
		Step{Name: "delete internet gateways", Run: (*Executor).deleteInternetGateways},
		Step{Name: "delete security groups", Run: (*Executor).deleteSecurityGroups},
		Step{Name: "delete VPC", Critical: true, Run: (*Executor).deleteVPC},
	)
}
