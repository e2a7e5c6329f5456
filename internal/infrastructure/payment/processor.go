package payment

import (
	"context"
	"fmt"
	"strings"

	dompay "github.com/Zhima-Mochi/lessonshop/internal/domain/payment"
)

// MockProcessor approves every charge. It only shapes the message the
// customer sees for the chosen method.
type MockProcessor struct{}

func NewMockProcessor() *MockProcessor { return &MockProcessor{} }

func (MockProcessor) Pay(ctx context.Context, req dompay.Request) (dompay.Result, error) {
	// respect cancellation even though this is mocked
	select {
	case <-ctx.Done():
		return dompay.Result{}, ctx.Err()
	default:
	}

	switch req.Method {
	case dompay.MethodCard:
		brand := strings.ToUpper(strings.TrimSpace(req.CardBrand))
		if brand == "" {
			brand = "CARD"
		}
		last4 := req.CardLast4
		if last4 == "" {
			last4 = "####"
		}
		return dompay.Result{
			Success: true,
			Message: fmt.Sprintf("Mock card payment succeeded for %s ****%s", brand, last4),
		}, nil
	case dompay.MethodPayPal:
		return dompay.Result{Success: true, Message: "Mock PayPal payment completed"}, nil
	default:
		return dompay.Result{}, fmt.Errorf("payment: unsupported method %q", req.Method)
	}
}
