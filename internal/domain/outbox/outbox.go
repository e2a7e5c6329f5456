package outbox

import "context"

// Event is a named fact published after a state change has been committed.
type Event interface {
	EventName() string
}

// Handler reacts to one event. Returned errors are logged by the bus, never retried.
type Handler func(ctx context.Context, e Event) error

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Subscriber interface {
	Subscribe(eventName string, h Handler)
}

// Bus is both ends of the in-process event channel.
type Bus interface {
	Publisher
	Subscriber
}
