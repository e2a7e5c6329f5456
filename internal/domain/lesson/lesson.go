package lesson

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("lesson: not found")
	ErrInvalidQuantity   = errors.New("lesson: quantity must be greater than zero")
	ErrInsufficientSpace = errors.New("lesson: insufficient space")
	ErrInvalid           = errors.New("lesson: invalid")
)

// Lesson is a bookable class session. Space is the number of seats still free.
type Lesson struct {
	ID       string
	Topic    string
	Location string
	Price    float64
	Space    int
	Image    string
}

// ValidationError names the offending field. It matches ErrInvalid with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("lesson: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// New builds a lesson ready to be inserted. The store assigns the ID.
func New(topic, location string, price float64, space int, image string) (*Lesson, error) {
	l := &Lesson{
		Topic:    strings.TrimSpace(topic),
		Location: strings.TrimSpace(location),
		Price:    price,
		Space:    space,
		Image:    image,
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Lesson) Validate() error {
	switch {
	case l.Topic == "":
		return invalid("topic", "is required")
	case l.Location == "":
		return invalid("location", "is required")
	case l.Price < 0:
		return invalid("price", "must be zero or greater")
	case l.Space < 0:
		return invalid("space", "must be zero or greater")
	case l.Image == "":
		return invalid("image", "is required")
	}
	return nil
}

// HasSpace reports whether qty seats can be debited.
func (l *Lesson) HasSpace(qty int) bool {
	return qty > 0 && l.Space >= qty
}

// Debit removes qty seats, refusing to go below zero.
func (l *Lesson) Debit(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if l.Space < qty {
		return ErrInsufficientSpace
	}
	l.Space -= qty
	return nil
}

// Matches reports whether q occurs in the topic or location, ignoring case.
// An empty query matches nothing.
func (l *Lesson) Matches(q string) bool {
	if q == "" {
		return false
	}
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(l.Topic), q) ||
		strings.Contains(strings.ToLower(l.Location), q)
}

func (l *Lesson) Clone() *Lesson {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}
