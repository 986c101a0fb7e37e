package loop

import "context"

// loopKeyType keys the loop identity in task contexts.
type loopKeyType struct{}

var loopKey loopKeyType

// FromContext returns the loop whose owner goroutine is executing ctx,
// or nil when ctx did not come from a loop task or run context.
func FromContext(ctx context.Context) *Loop {
	l, _ := ctx.Value(loopKey).(*Loop)
	return l
}
