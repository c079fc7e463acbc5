// Package notify tells entry watchers that an owner's entries changed.
// Signals carry no payload; watchers re-read the store on every signal,
// so several changes may be folded into one signal.
package notify

import "context"

type Notifier interface {
	// Publish signals every subscriber of ownerID.
	Publish(ctx context.Context, ownerID string) error
	// Subscribe returns a signal channel for ownerID and a func that ends
	// the subscription. The channel is never closed by the notifier.
	Subscribe(ctx context.Context, ownerID string) (<-chan struct{}, func(), error)
}

// signal does a non-blocking send on a one-slot channel.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
