package workflow

import (
	"context"
	"fmt"
	"time"

	"shoutdesk/internal/services"
)

// Poll invokes predicate up to maxAttempts times, sleeping interval between
// attempts via the supplied sleeper. It returns nil as soon as the predicate
// reports true, the predicate's error if one occurs, and a timeout error once
// the attempt budget is exhausted.
func Poll(ctx context.Context, interval time.Duration, maxAttempts int, sleeper Sleeper, predicate func(context.Context) (bool, error)) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if sleeper == nil {
		sleeper = sleepWithContext
	}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := predicate(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		if err := sleeper(ctx, interval); err != nil {
			return err
		}
	}
	return services.Wrap(services.ErrTimeout, "workflow", "poll",
		fmt.Sprintf("condition not met after %d attempts", maxAttempts), nil)
}

// Sleeper waits for the given duration, returning early with the context's
// error if it is cancelled. Tests substitute an instant implementation.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
