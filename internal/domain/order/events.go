package order

import "time"

// PlacedEvent is published after an order has been persisted.
type PlacedEvent struct {
	OrderID       string
	LessonIDs     []string
	Quantities    []int
	PaymentMethod string
	PaymentStatus string
	OccurredAt    time.Time
}

func (PlacedEvent) EventName() string { return "order.placed" }

func NewPlacedEvent(o *Order) PlacedEvent {
	return PlacedEvent{
		OrderID:       o.ID,
		LessonIDs:     append([]string(nil), o.LessonIDs...),
		Quantities:    append([]int(nil), o.Quantities...),
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: string(o.PaymentStatus),
		OccurredAt:    time.Now().UTC(),
	}
}

// Seats is the total number of seats the event's order debited.
func (e PlacedEvent) Seats() int {
	n := 0
	for _, q := range e.Quantities {
		n += q
	}
	return n
}

// EventKey names the order for event-scoped logging.
func (e PlacedEvent) EventKey() (string, string) { return "order_id", e.OrderID }
