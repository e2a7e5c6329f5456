package memory

import (
	"context"
	"sync"

	domain "github.com/Zhima-Mochi/lessonshop/internal/domain/lesson"
	"github.com/google/uuid"
)

// LessonRepository keeps lessons in a map. The mutex stands in for the
// document database's single-document atomicity, so DecrementSpace is a
// true check-and-set here as well.
type LessonRepository struct {
	mu      sync.RWMutex
	lessons map[string]*domain.Lesson
	order   []string
}

func NewLessonRepository() *LessonRepository {
	return &LessonRepository{
		lessons: make(map[string]*domain.Lesson),
	}
}

func (r *LessonRepository) List(ctx context.Context) ([]*domain.Lesson, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Lesson, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.lessons[id].Clone())
	}
	return out, nil
}

func (r *LessonRepository) Search(ctx context.Context, query string) ([]*domain.Lesson, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Lesson, 0)
	for _, l := range all {
		if l.Matches(query) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *LessonRepository) Get(ctx context.Context, id string) (*domain.Lesson, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.lessons[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return l.Clone(), nil
}

func (r *LessonRepository) Insert(ctx context.Context, l *domain.Lesson) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if l == nil {
		return "", domain.ErrInvalid
	}
	if err := l.Validate(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := l.Clone()
	stored.ID = uuid.NewString()
	r.lessons[stored.ID] = stored
	r.order = append(r.order, stored.ID)
	return stored.ID, nil
}

func (r *LessonRepository) Update(ctx context.Context, id string, patch domain.Patch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := patch.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.lessons[id]
	if !ok {
		return domain.ErrNotFound
	}
	patch.Apply(l)
	return nil
}

func (r *LessonRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lessons[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.lessons, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *LessonRepository) DecrementSpace(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.lessons[id]
	if !ok {
		return domain.ErrNotFound
	}
	return l.Debit(qty)
}

func (r *LessonRepository) RestoreSpace(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.lessons[id]
	if !ok {
		return domain.ErrNotFound
	}
	l.Space += qty
	return nil
}
