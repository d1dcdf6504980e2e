package teardown

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/chainguard-dev/clog"
)

// Readiness is the preflight verdict for a teardown run. No destructive call
// is issued until the verdict is Ready.
type Readiness int

const (
	// Ready: credentials work, the VPC exists, nothing blocks the run.
	Ready Readiness = iota
	// AlreadyAbsent: the VPC does not exist; the run is a graceful no-op.
	AlreadyAbsent
	// CredentialsInvalid: the credentials cannot list VPCs, or the control
	// plane is unreachable. Fail fast.
	CredentialsInvalid
	// Refused: the VPC holds running instances and instance termination was
	// not requested. Refusing beats both silently skipping them and silently
	// destroying them.
	Refused
)

func (r Readiness) String() string {
	switch r {
	case Ready:
		return "ready"
	case AlreadyAbsent:
		return "already-absent"
	case CredentialsInvalid:
		return "credentials-invalid"
	case Refused:
		return "refused"
	default:
		return fmt.Sprintf("readiness(%d)", int(r))
	}
}

var (
	ErrCredentials = fmt.Errorf("credentials are invalid or lack permission to list VPCs")

	ErrLiveInstances = fmt.Errorf(
		"running instances exist in the VPC; pass --services ec2 to terminate them",
	)
)

// Preflight validates a run before anything destructive happens: a
// credentials probe (an unfiltered VPC list), an existence check on the
// target, and the live-instance refusal when termination was not requested.
func Preflight(ctx context.Context, api EC2API, vpcID string, terminateInstances bool) (Readiness, error) {
	log := clog.FromContext(ctx).With("vpc_id", vpcID)

	if _, err := api.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{}); err != nil {
		return CredentialsInvalid, fmt.Errorf("%w: %w", ErrCredentials, err)
	}

	inv := NewInventory(api, vpcID)
	exists, err := inv.VPCExists(ctx)
	if err != nil {
		return CredentialsInvalid, err
	}
	if !exists {
		log.Info("VPC does not exist")
		return AlreadyAbsent, nil
	}

	if !terminateInstances {
		instanceIDs, err := inv.RunningInstances(ctx)
		if err != nil {
			return CredentialsInvalid, err
		}
		if len(instanceIDs) > 0 {
			log.Warn("refusing teardown, running instances present",
				"instance_ids", instanceIDs,
			)
			return Refused, fmt.Errorf("%w (found %d)", ErrLiveInstances, len(instanceIDs))
		}
	}

	return Ready, nil
}
