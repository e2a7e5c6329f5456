package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	domain "github.com/Zhima-Mochi/lessonshop/internal/domain/order"
	"github.com/google/uuid"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders []*domain.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

func (r *OrderRepository) Append(ctx context.Context, order *domain.Order) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if order == nil {
		return "", fmt.Errorf("order repository: order is required")
	}

	stored := order.Clone()
	stored.ID = uuid.NewString()
	if stored.Date.IsZero() {
		stored.Date = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders = append(r.orders, stored)
	return stored.ID, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o.Clone())
	}
	return out, nil
}

// Len reports how many orders have been appended.
func (r *OrderRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}
