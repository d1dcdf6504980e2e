package teardown

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/chainguard-dev/vpc-teardown/internal/o11y"
)

// Options configure a teardown run.
type Options struct {
	// VPCID is the target VPC. One run owns this id for its duration;
	// concurrent runs against the same id race on provider side effects and
	// are not guarded against.
	VPCID string

	// Region the VPC lives in. Informational here; the region binding
	// happens in the SDK config behind EC2API.
	Region string

	// TerminateInstances enables the destructive instance steps (elastic IP
	// release and termination). Without it, a VPC holding running instances
	// is refused in preflight rather than silently half-deleted.
	TerminateInstances bool

	// DrainTimeout and DrainInterval bound the network interface drain.
	// Zero values take the package defaults.
	DrainTimeout  time.Duration
	DrainInterval time.Duration
}

// Executor walks the deletion plan against one VPC. Execution is strictly
// sequential: each step, including any poll loop inside it, completes before
// the next starts, because later steps depend on earlier side effects having
// taken hold in the provider.
type Executor struct {
	api    EC2API
	inv    *Inventory
	waiter *Waiter
	opts   Options
	runID  string
	tracer trace.Tracer
}

func NewExecutor(api EC2API, opts Options) *Executor {
	return &Executor{
		api:    api,
		inv:    NewInventory(api, opts.VPCID),
		waiter: NewWaiter(opts.DrainTimeout, opts.DrainInterval),
		opts:   opts,
		runID:  uuid.New().String(),
		tracer: o11y.Tracer(),
	}
}

// ErrRunAborted wraps the step error that stopped a run early.
var ErrRunAborted = fmt.Errorf("teardown aborted")

// Run executes the deletion plan and returns the per-step report. The error
// is non-nil when a fatal step stopped the run; non-fatal step errors live
// only in the report. Re-running against an already-gone VPC is harmless:
// every step observes empty collections and the terminal step reports the
// VPC as absent instead of attempting deletion.
func (x *Executor) Run(ctx context.Context) (*Report, error) {
	log := clog.FromContext(ctx).With(
		"vpc_id", x.opts.VPCID,
		"run_id", x.runID,
	)
	ctx = clog.WithLogger(ctx, log)

	report := &Report{
		RunID:  x.runID,
		VPCID:  x.opts.VPCID,
		Region: x.opts.Region,
	}

	var fatal error
	for _, step := range Plan(x.opts.TerminateInstances) {
		if fatal != nil {
			report.Steps = append(report.Steps, StepResult{Name: step.Name, Status: StatusSkipped})
			continue
		}
		result := x.runStep(ctx, step)
		report.Steps = append(report.Steps, result)
		if result.Status == StatusFailed {
			fatal = result.Err
		}
	}

	if fatal != nil {
		return report, fmt.Errorf("%w: %w", ErrRunAborted, fatal)
	}
	return report, nil
}

func (x *Executor) runStep(ctx context.Context, step Step) StepResult {
	ctx, span := x.tracer.Start(ctx, step.Name, trace.WithAttributes(
		attribute.String(o11y.AttrVPCID, x.opts.VPCID),
		attribute.String(o11y.AttrRunID, x.runID),
		attribute.String(o11y.AttrStep, step.Name),
	))
	defer span.End()

	log := clog.FromContext(ctx).With("step", step.Name)
	ctx = clog.WithLogger(ctx, log)
	log.Info("step starting")

	deleted, err := step.Run(x, ctx)
	result := StepResult{Name: step.Name, Deleted: deleted, Err: err}

	switch {
	case err == nil && deleted == 0:
		result.Status = StatusEmpty
		log.Info("step had nothing to do")
	case err == nil:
		result.Status = StatusDone
		log.Info("step complete", "deleted", deleted)
	case errors.Is(err, ErrDrainTimeout):
		result.Status = StatusWarned
		span.SetStatus(codes.Error, err.Error())
		log.Warn("step did not converge, continuing", "error", err)
	case step.Critical || Fatal(err):
		result.Status = StatusFailed
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("step failed", "class", Classify(err).String(), "error", err)
	default:
		// Dependency violations and other resource-level rejections: record
		// and press on. If the condition persists, the terminal VPC delete
		// fails loudly with the same cause.
		result.Status = StatusWarned
		span.RecordError(err)
		log.Warn("step hit non-fatal error, continuing",
			"class", Classify(err).String(),
			"error", err,
		)
	}
	return result
}
