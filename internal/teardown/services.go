package teardown

import (
	"fmt"
	"strings"
)

// Auxiliary services whose resources can be torn down ahead of the network
// itself. Requesting "ec2" enables the instance steps of the deletion plan
// (elastic IP release, then termination).
var knownServices = map[string]bool{
	"ec2": true,
}

var ErrUnknownService = fmt.Errorf("teardown not implemented for service")

// ParseServices validates a comma-separated services list and reports
// whether instance termination was requested. Unknown names fail before any
// deletion starts rather than being skipped mid-run.
func ParseServices(list string) (terminateInstances bool, err error) {
	for name := range strings.SplitSeq(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !knownServices[name] {
			return false, fmt.Errorf("%w: %q", ErrUnknownService, name)
		}
		if name == "ec2" {
			terminateInstances = true
		}
	}
	return terminateInstances, nil
}
