package lesson

import (
	"errors"
	"testing"
)

func TestNewValidates(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		topic    string
		location string
		price    float64
		space    int
		image    string
		field    string
	}{
		{name: "ok", topic: "Yoga", location: "Hendon", price: 20, space: 5, image: "yoga.png"},
		{name: "blank topic", topic: "  ", location: "Hendon", price: 20, space: 5, image: "y.png", field: "topic"},
		{name: "no location", topic: "Yoga", price: 20, space: 5, image: "y.png", field: "location"},
		{name: "negative price", topic: "Yoga", location: "Hendon", price: -1, space: 5, image: "y.png", field: "price"},
		{name: "negative space", topic: "Yoga", location: "Hendon", price: 1, space: -1, image: "y.png", field: "space"},
		{name: "no image", topic: "Yoga", location: "Hendon", price: 1, space: 1, field: "image"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			l, err := New(tc.topic, tc.location, tc.price, tc.space, tc.image)
			if tc.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if l.Topic != tc.topic {
					t.Fatalf("topic = %q, want %q", l.Topic, tc.topic)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("field = %q, want %q", ve.Field, tc.field)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("errors.Is(err, ErrInvalid) = false")
			}
		})
	}
}

func TestDebitNeverGoesNegative(t *testing.T) {
	t.Parallel()

	l := &Lesson{Topic: "Yoga", Space: 2}
	if err := l.Debit(3); !errors.Is(err, ErrInsufficientSpace) {
		t.Fatalf("Debit(3) = %v, want ErrInsufficientSpace", err)
	}
	if l.Space != 2 {
		t.Fatalf("space = %d, want 2", l.Space)
	}
	if err := l.Debit(0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("Debit(0) = %v, want ErrInvalidQuantity", err)
	}
	if err := l.Debit(2); err != nil {
		t.Fatalf("Debit(2) = %v", err)
	}
	if l.Space != 0 {
		t.Fatalf("space = %d, want 0", l.Space)
	}
}

func TestMatches(t *testing.T) {
	t.Parallel()

	l := &Lesson{Topic: "Yoga", Location: "Hendon", Price: 20, Space: 5}
	for q, want := range map[string]bool{
		"yog":  true,
		"YOG":  true,
		"hend": true,
		"":     false,
		"20":   false,
		"art":  false,
	} {
		if got := l.Matches(q); got != want {
			t.Fatalf("Matches(%q) = %v, want %v", q, got, want)
		}
	}
}

func TestPatch(t *testing.T) {
	t.Parallel()

	if err := (Patch{}).Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("empty patch: %v, want ErrInvalid", err)
	}
	neg := -2
	if err := (Patch{Space: &neg}).Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("negative space: %v, want ErrInvalid", err)
	}

	topic, space := " Art ", 7
	p := Patch{Topic: &topic, Space: &space}
	if err := p.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	l := &Lesson{Topic: "Yoga", Location: "Hendon", Space: 1}
	p.Apply(l)
	if l.Topic != "Art" || l.Space != 7 || l.Location != "Hendon" {
		t.Fatalf("after apply = %+v", l)
	}
}
