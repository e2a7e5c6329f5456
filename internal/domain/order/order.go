package order

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/Zhima-Mochi/lessonshop/internal/domain/payment"
)

var (
	ErrNotFound             = errors.New("order: not found")
	ErrMissingFields        = errors.New("order: missing required fields")
	ErrInvalidItems         = errors.New("order: invalid lesson ids or quantities")
	ErrInvalidPaymentMethod = errors.New("order: invalid payment method")
	ErrInvalidField         = errors.New("order: invalid field")
)

// Customer holds the buyer's contact details; every field is required.
type Customer struct {
	FirstName string
	LastName  string
	Address   string
	City      string
	Country   string
	Postcode  string
	Phone     string
	Email     string
}

// Order is an accepted checkout. It is written once and never changed.
type Order struct {
	ID             string
	Customer       Customer
	LessonIDs      []string
	Quantities     []int
	PaymentMethod  payment.Method
	PaymentStatus  payment.Status
	PaymentMessage string
	CardLast4      string
	CardBrand      string
	Date           time.Time
}

// FieldError reports a present but malformed field. It matches ErrInvalidField.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string { return fmt.Sprintf("order: invalid %s", e.Field) }

func (e *FieldError) Unwrap() error { return ErrInvalidField }

// Validate checks presence first, then format, so the earliest failing rule wins.
func (c Customer) Validate() error {
	for _, v := range []string{c.FirstName, c.LastName, c.Address, c.City, c.Country, c.Postcode, c.Phone, c.Email} {
		if strings.TrimSpace(v) == "" {
			return ErrMissingFields
		}
	}
	if !isName(c.FirstName) {
		return &FieldError{Field: "firstName"}
	}
	if !isName(c.LastName) {
		return &FieldError{Field: "lastName"}
	}
	if !isDigits(c.Phone) {
		return &FieldError{Field: "phone"}
	}
	return nil
}

// ValidateItems checks the parallel lessonIDs/quantities sequences.
func ValidateItems(lessonIDs []string, quantities []int) error {
	if lessonIDs == nil || quantities == nil {
		return ErrMissingFields
	}
	if len(lessonIDs) == 0 || len(lessonIDs) != len(quantities) {
		return ErrInvalidItems
	}
	for i, id := range lessonIDs {
		if strings.TrimSpace(id) == "" || quantities[i] <= 0 {
			return ErrInvalidItems
		}
	}
	return nil
}

// ValidateCard checks optional card metadata; only last4 has a format.
func ValidateCard(method payment.Method, last4 string) error {
	if method != payment.MethodCard || last4 == "" {
		return nil
	}
	if len(last4) != 4 || !isDigits(last4) {
		return &FieldError{Field: "cardLast4"}
	}
	return nil
}

// Seats is the total number of seats the order debits.
func (o *Order) Seats() int {
	n := 0
	for _, q := range o.Quantities {
		n += q
	}
	return n
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.LessonIDs = append([]string(nil), o.LessonIDs...)
	c.Quantities = append([]int(nil), o.Quantities...)
	return &c
}

func isName(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && r != ' ' {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
