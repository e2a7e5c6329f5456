package order

import (
	"context"
	"time"

	domain "github.com/Zhima-Mochi/lessonshop/internal/domain/order"
	"github.com/Zhima-Mochi/lessonshop/internal/observability"
	"github.com/Zhima-Mochi/lessonshop/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const useCaseListOrders = "order.list"

type ListOrdersUseCase struct {
	orders domain.Repository
	tel    observability.Observability

	log     observability.Logger
	metrics observability.UseCaseInstruments
}

func NewListOrdersUseCase(orders domain.Repository, tel observability.Observability) *ListOrdersUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	return &ListOrdersUseCase{
		orders:  orders,
		tel:     tel,
		log:     tel.Logger().With(observability.F("service", orderService)),
		metrics: observability.BindUseCase(tel.Metrics(), useCaseListOrders),
	}
}

// Execute returns every order in store order.
func (uc *ListOrdersUseCase) Execute(ctx context.Context, _ struct{}) (_ []*domain.Order, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(observability.F("use_case", useCaseListOrders))
	ctx, span := uc.tel.Tracer().Start(ctx, spanPrefix+"ListOrders",
		attribute.String("use_case", useCaseListOrders),
	)
	start := time.Now()
	outcome, statusText := observability.OutcomeSuccess, "OK"
	var n int

	defer func() {
		lat := time.Since(start).Seconds()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		uc.metrics.Done(outcome, lat)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
			observability.F("count", n),
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Debug("use_case_done", fields...)
	}()

	orders, err := uc.orders.List(ctx)
	if err != nil {
		outcome, statusText = observability.OutcomeError, "REPO_LIST_FAILED"
		return nil, err
	}
	n = len(orders)
	return orders, nil
}
