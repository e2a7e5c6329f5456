package order

import "context"

// Repository is append-only: Append returns the assigned id.
type Repository interface {
	List(ctx context.Context) ([]*Order, error)
	Append(ctx context.Context, o *Order) (string, error)
}
