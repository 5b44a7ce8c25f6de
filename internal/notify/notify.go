package notify

import "context"

// Notifier delivers a human-readable connectivity notification.
type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi fans a notification out to several sinks, returning the first
// failure.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var firstErr error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, title, text); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
