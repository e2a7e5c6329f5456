package workerpresentation

import (
	"context"

	domoutbox "github.com/Zhima-Mochi/lessonshop/internal/domain/outbox"
	"github.com/Zhima-Mochi/lessonshop/internal/observability"
	"github.com/Zhima-Mochi/lessonshop/internal/observability/logctx"
	"github.com/google/uuid"
)

// WithEventContext stores an event-scoped logger on ctx for a background
// handler. It carries event and event_id (generated when attrs has none),
// the trace ids of the span already on ctx, and any extra low-cardinality attrs.
func WithEventContext(ctx context.Context, base observability.Logger, event string, attrs map[string]string) context.Context {
	evtID := attrs["event_id"]
	if evtID == "" {
		evtID = uuid.NewString()
	}
	fields := []observability.Field{
		observability.F("event", event),
		observability.F("event_id", evtID),
	}
	fields = append(fields, observability.TraceFields(ctx)...)
	for k, v := range attrs {
		if k == "event_id" || k == "event" || v == "" {
			continue
		}
		fields = append(fields, observability.F(k, v))
	}
	return logctx.Enrich(ctx, base, fields...)
}

// Register subscribes h to event with WithEventContext applied to every delivery.
func Register(sub domoutbox.Subscriber, base observability.Logger, event string, h domoutbox.Handler) {
	sub.Subscribe(event, func(ctx context.Context, e domoutbox.Event) error {
		return h(WithEventContext(ctx, base, e.EventName(), eventAttrs(e)), e)
	})
}

// keyed is implemented by events that can name the entity they are about.
type keyed interface {
	EventKey() (string, string)
}

func eventAttrs(e domoutbox.Event) map[string]string {
	k, ok := e.(keyed)
	if !ok {
		return nil
	}
	name, value := k.EventKey()
	return map[string]string{name: value}
}
