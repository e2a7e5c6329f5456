package order

import (
	"context"

	domlesson "github.com/Zhima-Mochi/lessonshop/internal/domain/lesson"
	dompay "github.com/Zhima-Mochi/lessonshop/internal/domain/payment"
)

// Catalog is the slice of the lesson store the coordinator needs.
type Catalog interface {
	Get(ctx context.Context, id string) (*domlesson.Lesson, error)
	DecrementSpace(ctx context.Context, id string, qty int) error
	RestoreSpace(ctx context.Context, id string, qty int) error
}

type PaymentPort interface {
	dompay.Processor
}
