package schedule

import (
	"context"
	"time"
)

// Every calls fn with the current time right away and then once per interval
// until ctx is done.
func Every(ctx context.Context, interval time.Duration, fn func(time.Time)) {
	fn(time.Now())

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			fn(now)
		}
	}
}
