package engine

import (
	"context"
	"time"

	"github.com/nullbyte-labs/httpcore/pkg/request"
)

// defaultWrapper implements request.ConnectionWrapper per DESIGN NOTES: it
// runs thunk under the remaining budget, then returns whatever budget is
// left for the next blocking step. timeout <= 0 means unbounded.
func defaultWrapper(ctx context.Context, timeout time.Duration, timeoutErr error, thunk func(context.Context) (any, error)) (time.Duration, any, error) {
	if timeout <= 0 {
		v, err := thunk(ctx)
		return 0, v, err
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	v, err := thunk(cctx)
	elapsed := time.Since(start)
	remaining := timeout - elapsed

	if cctx.Err() == context.DeadlineExceeded {
		return 0, v, timeoutErr
	}
	if remaining <= 0 {
		return 0, v, timeoutErr
	}
	return remaining, v, err
}

// budget threads a single request's timeout across its blocking steps,
// wrapping each one through req's GetConnectionWrapper (or defaultWrapper)
// and folding the returned remaining time into the next call. remaining
// <= 0 means unbounded, matching Timeout.Resolve's convention — distinct
// from metrics.Deadline's notion of "exhausted", so the two aren't reused
// for each other here.
type budget struct {
	remaining  time.Duration
	wrap       request.ConnectionWrapper
	timeoutErr func(op string) error
}

func newBudget(timeout time.Duration, wrap request.ConnectionWrapper, timeoutErr func(op string) error) *budget {
	if wrap == nil {
		wrap = defaultWrapper
	}
	return &budget{remaining: timeout, wrap: wrap, timeoutErr: timeoutErr}
}

// run executes thunk under the current budget, updating it from the
// wrapper's returned remaining time.
func (b *budget) run(ctx context.Context, op string, thunk func(context.Context) (any, error)) (any, error) {
	remaining, v, err := b.wrap(ctx, b.remaining, b.timeoutErr(op), thunk)
	b.remaining = remaining
	return v, err
}
