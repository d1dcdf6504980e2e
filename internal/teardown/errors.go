package teardown

import (
	"errors"
	"strings"

	"github.com/aws/smithy-go"
)

// Class buckets a provider error by how the executor must react to it.
type Class int

const (
	// ClassOther is any provider rejection that fits no other bucket.
	ClassOther Class = iota

	// ClassNotFound means the resource is already gone. A delete that fails
	// with ClassNotFound counts as success; every step is therefore safe to
	// re-run.
	ClassNotFound

	// ClassCredentials means the call was rejected before it reached the
	// resource. Nothing later in the run can succeed, so this is fatal.
	ClassCredentials

	// ClassUnavailable means we could not talk to the control plane at all.
	// Fatal for the same reason as ClassCredentials.
	ClassUnavailable

	// ClassDependency means the provider refused a delete because a dependent
	// resource still references the target. Either an ordering bug or an
	// unresolved drain timeout; the final VPC delete surfaces the true cause.
	ClassDependency
)

func (c Class) String() string {
	switch c {
	case ClassNotFound:
		return "not-found"
	case ClassCredentials:
		return "credentials-invalid"
	case ClassUnavailable:
		return "provider-unavailable"
	case ClassDependency:
		return "dependency-still-present"
	default:
		return "other"
	}
}

// credentialErrorCodes are the EC2 API codes that indicate the caller, not
// the resource, is the problem.
var credentialErrorCodes = map[string]bool{
	"AuthFailure":           true,
	"UnauthorizedOperation": true,
	"ExpiredToken":          true,
	"RequestExpired":        true,
	"OptInRequired":         true,
}

var unavailableErrorCodes = map[string]bool{
	"RequestLimitExceeded": true,
	"ServiceUnavailable":   true,
	"Unavailable":          true,
	"InternalError":        true,
}

// Classify maps an error from an EC2API call onto the taxonomy above.
// Errors that do not carry an API error code (DNS failures, connection
// resets, deadline overruns on the transport) are ClassUnavailable.
func Classify(err error) Class {
	if err == nil {
		return ClassOther
	}
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return ClassUnavailable
	}
	code := apiErr.ErrorCode()
	switch {
	case credentialErrorCodes[code]:
		return ClassCredentials
	case unavailableErrorCodes[code]:
		return ClassUnavailable
	case code == "DependencyViolation":
		return ClassDependency
	// EC2 spells "gone" many ways: InvalidVpcID.NotFound,
	// InvalidAllocationID.NotFound, NatGatewayNotFound, and for malformed
	// (hence unresolvable) ids InvalidSubnetID.Malformed and friends.
	case strings.HasSuffix(code, ".NotFound"),
		strings.HasSuffix(code, "NotFound"),
		strings.HasSuffix(code, ".Malformed"):
		return ClassNotFound
	default:
		return ClassOther
	}
}

// Fatal reports whether err must abort the remaining deletion plan.
func Fatal(err error) bool {
	switch Classify(err) {
	case ClassCredentials, ClassUnavailable:
		return true
	default:
		return false
	}
}

// ignoreNotFound collapses already-gone deletes into success.
func ignoreNotFound(err error) error {
	if err != nil && Classify(err) == ClassNotFound {
		return nil
	}
	return err
}
