package order

import (
	"errors"
	"fmt"
)

// Kind classifies why an order was not placed.
type Kind int

const (
	KindInvalid Kind = iota + 1
	KindNotFound
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// PlacementError carries the customer-facing message for a rejected order.
type PlacementError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *PlacementError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *PlacementError) Unwrap() error { return e.Err }

func rejected(kind Kind, msg string, err error) *PlacementError {
	return &PlacementError{Kind: kind, Message: msg, Err: err}
}

// AsPlacement extracts a PlacementError from err.
func AsPlacement(err error) (*PlacementError, bool) {
	var pe *PlacementError
	ok := errors.As(err, &pe)
	return pe, ok
}
