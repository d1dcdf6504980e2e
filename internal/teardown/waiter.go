package teardown

import (
	"context"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"
)

// Defaults match the original operational ceiling for ENI detachment: the
// provider usually clears interfaces within a couple of minutes of their
// owner's deletion.
const (
	DefaultDrainTimeout  = 5 * time.Minute
	DefaultDrainInterval = 30 * time.Second
)

// ErrDrainTimeout is returned by plan steps whose collection failed to drain
// before the waiter's deadline. The executor records it as a warning and
// continues; if the condition truly was not satisfied, the final VPC delete
// fails and surfaces the root cause.
var ErrDrainTimeout = fmt.Errorf("drain deadline exceeded")

// Clock abstracts time for the Waiter so tests can run the poll loop without
// sleeping.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Outcome is the terminal state of a drain wait.
type Outcome int

const (
	Converged Outcome = iota
	TimedOut
)

func (o Outcome) String() string {
	if o == Converged {
		return "converged"
	}
	return "timed-out"
}

// Waiter polls a resource collection until it is empty or a deadline passes.
type Waiter struct {
	Timeout  time.Duration
	Interval time.Duration

	clock Clock
}

func NewWaiter(timeout, interval time.Duration) *Waiter {
	if timeout <= 0 {
		timeout = DefaultDrainTimeout
	}
	if interval <= 0 {
		interval = DefaultDrainInterval
	}
	return &Waiter{Timeout: timeout, Interval: interval, clock: realClock{}}
}

// AwaitEmpty repeatedly calls list until it reports zero members. After each
// non-empty observation it invokes purge, the corrective action for whatever
// remains, then sleeps for the poll interval. Once the deadline passes the
// wait resolves to TimedOut with whatever is left still present.
//
// Errors from list always propagate. Errors from purge propagate only when
// fatal; the collection is re-listed next round anyway, so a rejected
// corrective action costs one interval, not the run.
func (w *Waiter) AwaitEmpty(
	ctx context.Context,
	list func(context.Context) (int, error),
	purge func(context.Context) error,
) (Outcome, error) {
	log := clog.FromContext(ctx)
	deadline := w.clock.Now().Add(w.Timeout)

	for {
		remaining, err := list(ctx)
		if err != nil {
			return TimedOut, err
		}
		if remaining == 0 {
			return Converged, nil
		}

		if err := purge(ctx); err != nil {
			if Fatal(err) {
				return TimedOut, err
			}
			log.Warn("corrective action rejected, retrying next poll", "error", err)
		}

		if !w.clock.Now().Before(deadline) {
			return TimedOut, nil
		}
		select {
		case <-ctx.Done():
			return TimedOut, ctx.Err()
		case <-w.clock.After(w.Interval):
		}
	}
}
