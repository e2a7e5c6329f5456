package order

import (
	"context"
	"time"

	domain "github.com/Zhima-Mochi/lessonshop/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/lessonshop/internal/domain/outbox"
	"github.com/Zhima-Mochi/lessonshop/internal/observability"
	"github.com/Zhima-Mochi/lessonshop/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	workerService      = "order-worker"
	useCaseOrderPlaced = "order.worker.placed"
)

// Worker projects order.placed events into sales metrics and an audit log line.
type Worker struct {
	tel observability.Observability

	log          observability.Logger
	metrics      observability.UseCaseInstruments
	ordersPlaced observability.Counter // orders_placed_total{payment_method,payment_status}
}

func NewWorker(tel observability.Observability) *Worker {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Worker{
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", workerService)),
		metrics:      observability.BindUseCase(tel.Metrics(), useCaseOrderPlaced),
		ordersPlaced: tel.Metrics().Counter(observability.MOrdersPlaced),
	}
}

// HandlePlaced is the order.placed subscriber.
func (w *Worker) HandlePlaced(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domain.PlacedEvent)
	if !ok {
		w.metrics.Count(observability.OutcomeIgnored)
		return nil
	}

	ctx, span := w.tel.Tracer().Start(ctx, spanPrefix+"OrderPlaced",
		attribute.String("use_case", useCaseOrderPlaced),
		attribute.String("event", e.EventName()),
		attribute.String("order.id", evt.OrderID),
	)
	start := time.Now()
	logger := logctx.FromOr(ctx, w.log).With(observability.F("use_case", useCaseOrderPlaced))

	defer func() {
		lat := time.Since(start).Seconds()
		w.metrics.Done(observability.OutcomeSuccess, lat)
		span.SetStatus(codes.Ok, "OK")
		span.End()
	}()

	w.ordersPlaced.Add(1,
		observability.L("payment_method", evt.PaymentMethod),
		observability.L("payment_status", evt.PaymentStatus),
	)
	logger.Info("order_placed",
		observability.F("order_id", evt.OrderID),
		observability.F("lesson_ids", evt.LessonIDs),
		observability.F("seats", evt.Seats()),
		observability.F("payment_method", evt.PaymentMethod),
		observability.F("payment_status", evt.PaymentStatus),
		observability.F("lag_seconds", time.Since(evt.OccurredAt).Seconds()),
	)
	return nil
}
