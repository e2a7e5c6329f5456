package payment

import "context"

type Method string

const (
	MethodCard   Method = "card"
	MethodPayPal Method = "paypal"
)

func (m Method) Valid() bool {
	return m == MethodCard || m == MethodPayPal
}

type Status string

const (
	StatusPaid   Status = "paid"
	StatusFailed Status = "failed"
)

// Request carries what a processor needs to charge an order. Card fields are
// only meaningful for MethodCard.
type Request struct {
	OrderRef  string
	Method    Method
	CardLast4 string
	CardBrand string
}

// Result is the processor's verdict. Success=false is a decline, not an error.
type Result struct {
	Success bool
	Message string
}

func (r Result) Status() Status {
	if r.Success {
		return StatusPaid
	}
	return StatusFailed
}

type Processor interface {
	Pay(ctx context.Context, req Request) (Result, error)
}
