package lesson

import "context"

// Repository is the catalog store. DecrementSpace must check and debit in one
// atomic step: it returns ErrInsufficientSpace without writing when space < qty.
type Repository interface {
	List(ctx context.Context) ([]*Lesson, error)
	Search(ctx context.Context, query string) ([]*Lesson, error)
	Get(ctx context.Context, id string) (*Lesson, error)
	Insert(ctx context.Context, l *Lesson) (string, error)
	Update(ctx context.Context, id string, patch Patch) error
	Delete(ctx context.Context, id string) error
	DecrementSpace(ctx context.Context, id string, qty int) error
	RestoreSpace(ctx context.Context, id string, qty int) error
}
