package resolver

import (
	"context"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/timeout"
)

// withCallTimeout runs fn under a failsafe timeout policy. The context passed to fn is
// cancelled when the limit is reached, and timeout.ErrExceeded is returned.
// A non-positive limit runs fn directly.
func withCallTimeout[R any](ctx context.Context, limit time.Duration, fn func(ctx context.Context) (R, error)) (R, error) {
	if limit <= 0 {
		return fn(ctx)
	}
	return failsafe.With[R](timeout.New[R](limit)).
		WithContext(ctx).
		GetWithExecution(func(exec failsafe.Execution[R]) (R, error) {
			return fn(exec.Context())
		})
}
