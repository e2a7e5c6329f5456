package mongo

import (
	"errors"
	"time"

	domlesson "github.com/Zhima-Mochi/lessonshop/internal/domain/lesson"
	domorder "github.com/Zhima-Mochi/lessonshop/internal/domain/order"
	"github.com/Zhima-Mochi/lessonshop/internal/observability"
)

const (
	peerMongo = "mongo"

	outcomeSuccess = "success"
	outcomeRefused = "refused"
	outcomeError   = "error"
)

// calls records every driver round trip as an external request.
type calls struct {
	counter   observability.Counter
	histogram observability.Histogram
}

func newCalls(tel observability.Observability) calls {
	if tel == nil {
		tel = observability.Nop()
	}
	return calls{
		counter:   tel.Metrics().Counter(observability.MExternalRequests),
		histogram: tel.Metrics().Histogram(observability.MExternalRequestDuration),
	}
}

// callOutcome separates a round trip the server answered with a domain
// refusal (no such document, not enough seats) from a driver failure.
func callOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, domlesson.ErrNotFound),
		errors.Is(err, domlesson.ErrInsufficientSpace),
		errors.Is(err, domorder.ErrNotFound):
		return outcomeRefused
	default:
		return outcomeError
	}
}

func (c calls) observe(endpoint string, start time.Time, err error) {
	c.counter.Add(1,
		observability.L("peer", peerMongo),
		observability.L("endpoint", endpoint),
		observability.L("outcome", callOutcome(err)),
	)
	c.histogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", peerMongo),
		observability.L("endpoint", endpoint),
	)
}
