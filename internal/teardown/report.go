package teardown

import (
	"fmt"
	"strings"
)

// Status is the terminal state of one plan step.
type Status string

const (
	// StatusEmpty: the step observed no matching resources.
	StatusEmpty Status = "empty"
	// StatusDone: the step deleted everything it observed.
	StatusDone Status = "done"
	// StatusWarned: the step hit a non-fatal error (drain timeout, lingering
	// dependency). Recorded and carried on; the final VPC delete is the
	// arbiter of whether it mattered.
	StatusWarned Status = "warned"
	// StatusFailed: fatal provider error, the run stopped here.
	StatusFailed Status = "failed"
	// StatusSkipped: an earlier failure prevented the step from running.
	StatusSkipped Status = "skipped"
)

// StepResult records what one plan step did.
type StepResult struct {
	Name    string
	Status  Status
	Deleted int
	Err     error
}

// Report is the outcome of a whole teardown run, one entry per plan step in
// execution order. A partial run (fatal error mid-plan) still carries every
// step, with the untouched tail marked skipped.
type Report struct {
	RunID  string
	VPCID  string
	Region string
	Steps  []StepResult
}

// Failed reports whether any step ended in StatusFailed.
func (r *Report) Failed() bool {
	for _, step := range r.Steps {
		if step.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Summary renders one line per step, operator-readable.
func (r *Report) Summary() string {
	var b strings.Builder
	for _, step := range r.Steps {
		switch {
		case step.Err != nil:
			fmt.Fprintf(&b, "%-36s %s: %v\n", step.Name, step.Status, step.Err)
		case step.Deleted > 0:
			fmt.Fprintf(&b, "%-36s %s (%d)\n", step.Name, step.Status, step.Deleted)
		default:
			fmt.Fprintf(&b, "%-36s %s\n", step.Name, step.Status)
		}
	}
	return b.String()
}
