package order

import (
	"errors"
	"testing"

	"github.com/Zhima-Mochi/lessonshop/internal/domain/payment"
)

func validCustomer() Customer {
	return Customer{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Address:   "1 Analytical Way",
		City:      "London",
		Country:   "UK",
		Postcode:  "N1 1AA",
		Phone:     "07123456789",
		Email:     "ada@example.com",
	}
}

func TestCustomerValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Customer)
		want   error
	}{
		{name: "ok", mutate: func(*Customer) {}},
		{name: "missing email", mutate: func(c *Customer) { c.Email = "" }, want: ErrMissingFields},
		{name: "blank country", mutate: func(c *Customer) { c.Country = "   " }, want: ErrMissingFields},
		{name: "digits in name", mutate: func(c *Customer) { c.FirstName = "Ada2" }, want: ErrInvalidField},
		{name: "spaced name", mutate: func(c *Customer) { c.LastName = "King Noel" }},
		{name: "phone with plus", mutate: func(c *Customer) { c.Phone = "+447123" }, want: ErrInvalidField},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := validCustomer()
			tc.mutate(&c)
			err := c.Validate()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestValidateItems(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		ids  []string
		qty  []int
		want error
	}{
		{name: "ok", ids: []string{"a", "b"}, qty: []int{1, 2}},
		{name: "nil ids", qty: []int{1}, want: ErrMissingFields},
		{name: "nil quantities", ids: []string{"a"}, want: ErrMissingFields},
		{name: "empty", ids: []string{}, qty: []int{}, want: ErrInvalidItems},
		{name: "length mismatch", ids: []string{"a", "b"}, qty: []int{1}, want: ErrInvalidItems},
		{name: "zero quantity", ids: []string{"a"}, qty: []int{0}, want: ErrInvalidItems},
		{name: "negative quantity", ids: []string{"a"}, qty: []int{-1}, want: ErrInvalidItems},
		{name: "blank id", ids: []string{""}, qty: []int{1}, want: ErrInvalidItems},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateItems(tc.ids, tc.qty); !errors.Is(err, tc.want) {
				t.Fatalf("ValidateItems = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestValidateCard(t *testing.T) {
	t.Parallel()

	if err := ValidateCard(payment.MethodCard, "4242"); err != nil {
		t.Fatalf("4242: %v", err)
	}
	if err := ValidateCard(payment.MethodCard, ""); err != nil {
		t.Fatalf("empty last4 should be allowed: %v", err)
	}
	if err := ValidateCard(payment.MethodCard, "42a2"); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("42a2: %v, want ErrInvalidField", err)
	}
	if err := ValidateCard(payment.MethodPayPal, "nope"); err != nil {
		t.Fatalf("paypal ignores card fields: %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	o := &Order{LessonIDs: []string{"a"}, Quantities: []int{2}}
	c := o.Clone()
	c.LessonIDs[0] = "b"
	c.Quantities[0] = 9
	if o.LessonIDs[0] != "a" || o.Quantities[0] != 2 {
		t.Fatalf("clone shares backing arrays: %+v", o)
	}
	if c.Seats() != 9 {
		t.Fatalf("Seats = %d, want 9", c.Seats())
	}
}
