package catalog

import (
	"context"
	"errors"
	"testing"

	domain "github.com/Zhima-Mochi/lessonshop/internal/domain/lesson"
	"github.com/Zhima-Mochi/lessonshop/internal/infrastructure/memory"
)

func TestServiceLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(memory.NewLessonRepository(), nil)

	id, err := svc.Add(ctx, AddLessonInput{Topic: " Yoga ", Location: "Hendon", Price: 20, Space: 5, Image: "yoga.png"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	lessons, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lessons) != 1 || lessons[0].ID != id || lessons[0].Topic != "Yoga" {
		t.Fatalf("list = %+v", lessons)
	}

	space := 9
	if err := svc.Update(ctx, id, domain.Patch{Space: &space}); err != nil {
		t.Fatalf("update: %v", err)
	}
	lessons, _ = svc.List(ctx)
	if lessons[0].Space != 9 {
		t.Fatalf("space = %d, want 9", lessons[0].Space)
	}

	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
	if err := svc.Update(ctx, id, domain.Patch{Space: &space}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update deleted = %v, want ErrNotFound", err)
	}
}

func TestServiceAddValidates(t *testing.T) {
	t.Parallel()

	svc := NewService(memory.NewLessonRepository(), nil)
	_, err := svc.Add(context.Background(), AddLessonInput{Topic: "Yoga", Location: "Hendon", Price: 20, Space: 5})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "image" {
		t.Fatalf("add without image = %v, want image ValidationError", err)
	}
}

func TestServiceUpdateRejectsEmptyPatch(t *testing.T) {
	t.Parallel()

	svc := NewService(memory.NewLessonRepository(), nil)
	if err := svc.Update(context.Background(), "any", domain.Patch{}); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("update = %v, want ErrInvalid", err)
	}
}

func TestServiceSearch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(memory.NewLessonRepository(), nil)
	for _, topic := range []string{"Yoga", "Art", "Music"} {
		if _, err := svc.Add(ctx, AddLessonInput{Topic: topic, Location: "Hendon", Price: 20, Space: 5, Image: "x.png"}); err != nil {
			t.Fatalf("add %s: %v", topic, err)
		}
	}

	cases := []struct {
		q    string
		want int
	}{
		{"yog", 1},
		{"YOG", 1},
		{"hendon", 3},
		{"", 0},
		{"20", 0},
		{"y.*", 0},
	}
	for _, tc := range cases {
		got, err := svc.Search(ctx, tc.q)
		if err != nil {
			t.Fatalf("search %q: %v", tc.q, err)
		}
		if got == nil || len(got) != tc.want {
			t.Fatalf("search %q = %d results, want %d", tc.q, len(got), tc.want)
		}
	}
}
