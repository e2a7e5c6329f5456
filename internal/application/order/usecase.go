package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	domlesson "github.com/Zhima-Mochi/lessonshop/internal/domain/lesson"
	domain "github.com/Zhima-Mochi/lessonshop/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/lessonshop/internal/domain/outbox"
	dompay "github.com/Zhima-Mochi/lessonshop/internal/domain/payment"
	"github.com/Zhima-Mochi/lessonshop/internal/observability"
	"github.com/Zhima-Mochi/lessonshop/internal/observability/logctx"
	"github.com/google/uuid"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService      = "order-service"
	useCasePlaceOrder = "order.place"
	spanPrefix        = "UC."
	publishPeer       = "outbox"
	publishTimeout    = 300 * time.Millisecond

	MsgPlaced          = "Order placed successfully!"
	MsgMissingFields   = "Missing required fields"
	MsgInvalidItems    = "Invalid lessonIDs or quantities"
	MsgInvalidMethod   = "Invalid payment method"
	MsgPlacementFailed = "Failed to add order"
)

type PlaceOrderInput struct {
	Customer      domain.Customer
	LessonIDs     []string
	Quantities    []int
	PaymentMethod string
	CardLast4     string
	CardBrand     string
}

type PlaceOrderResult struct {
	OrderID        string
	PaymentStatus  dompay.Status
	PaymentMessage string
}

type Option func(*PlaceOrderUseCase)

// WithCompensation switches seat debiting to validate-then-debit and gives
// seats back when a later step fails. Off, earlier debits are kept.
func WithCompensation(on bool) Option {
	return func(uc *PlaceOrderUseCase) { uc.compensate = on }
}

func WithClock(now func() time.Time) Option {
	return func(uc *PlaceOrderUseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

// PlaceOrderUseCase validates a checkout, debits seats lesson by lesson,
// charges the customer and appends the order.
type PlaceOrderUseCase struct {
	catalog   Catalog
	orders    domain.Repository
	payments  PaymentPort
	publisher domoutbox.Publisher
	tel       observability.Observability

	compensate bool
	now        func() time.Time

	log          observability.Logger
	metrics      observability.UseCaseInstruments
	extCounter   observability.Counter      // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram    // external_request_duration_seconds{peer,endpoint}
	seatsDebited observability.BoundCounter // seats_debited_total
}

func NewPlaceOrderUseCase(
	catalog Catalog,
	orders domain.Repository,
	payments PaymentPort,
	publisher domoutbox.Publisher,
	tel observability.Observability,
	opts ...Option,
) *PlaceOrderUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := tel.Metrics()

	uc := &PlaceOrderUseCase{
		catalog:      catalog,
		orders:       orders,
		payments:     payments,
		publisher:    publisher,
		tel:          tel,
		now:          time.Now,
		log:          tel.Logger().With(observability.F("service", orderService)),
		metrics:      observability.BindUseCase(metrics, useCasePlaceOrder),
		extCounter:   metrics.Counter(observability.MExternalRequests),
		extHistogram: metrics.Histogram(observability.MExternalRequestDuration),
		seatsDebited: metrics.Counter(observability.MSeatsDebited).Bind(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type debit struct {
	lessonID string
	qty      int
}

// Execute runs the checkout. Rejections come back as *PlacementError.
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, cmd PlaceOrderInput) (_ *PlaceOrderResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(observability.F("use_case", useCasePlaceOrder))

	ctx, span := uc.tel.Tracer().Start(ctx, spanPrefix+"PlaceOrder",
		attribute.String("use_case", useCasePlaceOrder),
		attribute.Int("order.items", len(cmd.LessonIDs)),
		attribute.String("payment.method", cmd.PaymentMethod),
	)
	start := time.Now()
	outcome, statusText := observability.OutcomeSuccess, "OK"

	var (
		orderID    string
		debits     []debit
		publishErr error
		restoreErr error
	)

	defer func() {
		lat := time.Since(start).Seconds()

		if span != nil {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, statusText)
			} else {
				span.SetStatus(codes.Ok, statusText)
			}
			span.End()
		}

		uc.metrics.Done(outcome, lat)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
			observability.F("items", len(cmd.LessonIDs)),
			observability.F("debited_items", len(debits)),
		}
		if orderID != "" {
			fields = append(fields, observability.F("order_id", orderID))
		}
		fields = append(fields, observability.TraceFields(ctx)...)
		if publishErr != nil {
			fields = append(fields, observability.F("event_publish_error", publishErr.Error()))
		}
		if restoreErr != nil {
			fields = append(fields, observability.F("restore_error", restoreErr.Error()))
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	if status, verr := validate(cmd); verr != nil {
		outcome, statusText = observability.OutcomeError, status
		return nil, verr
	}
	method := dompay.Method(cmd.PaymentMethod)

	// From here on the request no longer owns the work: seats taken must be
	// followed through to an order (or a restore) even if the client goes away.
	ctx = context.WithoutCancel(ctx)

	// fail ends the request after seats may have moved.
	fail := func(status string, cause error) (*PlaceOrderResult, error) {
		outcome, statusText = observability.OutcomeError, status
		if uc.compensate && len(debits) > 0 {
			if restoreErr = uc.restore(ctx, debits); restoreErr != nil {
				statusText = "COMPENSATION_FAILED"
				logger.Error("seat_restore_failed",
					observability.F("cause_status", status),
					observability.F("error", restoreErr),
				)
			} else {
				span.AddEvent("order.seats_restored",
					trace.WithAttributes(attribute.Int("order.restored_items", len(debits))),
				)
			}
		}
		return nil, cause
	}

	var status string
	if uc.compensate {
		debits, status, err = uc.debitAll(ctx, cmd)
	} else {
		debits, status, err = uc.debitSequential(ctx, cmd)
	}
	if err != nil {
		return fail(status, err)
	}

	paymentRef := uuid.NewString()
	payRes, err := uc.payments.Pay(ctx, dompay.Request{
		OrderRef:  paymentRef,
		Method:    method,
		CardLast4: cmd.CardLast4,
		CardBrand: cmd.CardBrand,
	})
	if err != nil {
		return fail("PAYMENT_FAILED", rejected(KindInternal, MsgPlacementFailed, fmt.Errorf("order: payment: %w", err)))
	}

	entity := &domain.Order{
		Customer:       cmd.Customer,
		LessonIDs:      append([]string(nil), cmd.LessonIDs...),
		Quantities:     append([]int(nil), cmd.Quantities...),
		PaymentMethod:  method,
		PaymentStatus:  payRes.Status(),
		PaymentMessage: payRes.Message,
		Date:           uc.now().UTC(),
	}
	if method == dompay.MethodCard {
		entity.CardLast4, entity.CardBrand = cmd.CardLast4, cmd.CardBrand
	}

	orderID, err = uc.orders.Append(ctx, entity)
	if err != nil {
		return fail("REPO_APPEND_FAILED", rejected(KindInternal, MsgPlacementFailed, fmt.Errorf("order: append: %w", err)))
	}
	entity.ID = orderID

	if !payRes.Success {
		statusText = "PAYMENT_DECLINED"
	}
	if uc.publisher != nil {
		publishErr = uc.publish(ctx, domain.NewPlacedEvent(entity))
		if publishErr != nil {
			statusText = "EVENT_PUBLISH_FAILED"
		}
	}

	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.String("payment.status", string(entity.PaymentStatus)),
		attribute.String("payment.ref", paymentRef),
	)
	span.AddEvent("order.placed", trace.WithAttributes(attribute.String("order.id", orderID)))

	return &PlaceOrderResult{
		OrderID:        orderID,
		PaymentStatus:  entity.PaymentStatus,
		PaymentMessage: entity.PaymentMessage,
	}, nil
}

// validate reports the earliest failing rule: presence, then item shape,
// then payment method, then field formats.
func validate(cmd PlaceOrderInput) (string, error) {
	customerErr := cmd.Customer.Validate()
	if errors.Is(customerErr, domain.ErrMissingFields) {
		return "MISSING_FIELDS", rejected(KindInvalid, MsgMissingFields, customerErr)
	}
	if err := domain.ValidateItems(cmd.LessonIDs, cmd.Quantities); err != nil {
		if errors.Is(err, domain.ErrMissingFields) {
			return "MISSING_FIELDS", rejected(KindInvalid, MsgMissingFields, err)
		}
		return "ITEMS_INVALID", rejected(KindInvalid, MsgInvalidItems, err)
	}
	method := dompay.Method(cmd.PaymentMethod)
	if !method.Valid() {
		return "PAYMENT_METHOD_INVALID", rejected(KindInvalid, MsgInvalidMethod, domain.ErrInvalidPaymentMethod)
	}
	if customerErr == nil {
		customerErr = domain.ValidateCard(method, cmd.CardLast4)
	}
	var fe *domain.FieldError
	if errors.As(customerErr, &fe) {
		return "FIELD_INVALID", rejected(KindInvalid, "Invalid "+fe.Field, customerErr)
	}
	if customerErr != nil {
		return "FIELD_INVALID", rejected(KindInvalid, MsgMissingFields, customerErr)
	}
	return "", nil
}

// debitSequential checks and debits one lesson at a time and stops at the
// first failure, leaving earlier debits in place.
func (uc *PlaceOrderUseCase) debitSequential(ctx context.Context, cmd PlaceOrderInput) ([]debit, string, error) {
	debits := make([]debit, 0, len(cmd.LessonIDs))
	for i, id := range cmd.LessonIDs {
		qty := cmd.Quantities[i]

		l, err := uc.catalog.Get(ctx, id)
		if err != nil {
			status, perr := lookupError(id, err)
			return debits, status, perr
		}
		if !l.HasSpace(qty) {
			return debits, "INSUFFICIENT_SPACE", notEnoughSpace(l.Topic, domlesson.ErrInsufficientSpace)
		}
		if err := uc.decrement(ctx, id, qty); err != nil {
			status, perr := decrementError(id, l.Topic, err)
			return debits, status, perr
		}
		debits = append(debits, debit{lessonID: id, qty: qty})
	}
	return debits, "", nil
}

// debitAll reads and checks every item before touching any seat. The same
// lesson listed twice is checked against its combined quantity.
func (uc *PlaceOrderUseCase) debitAll(ctx context.Context, cmd PlaceOrderInput) ([]debit, string, error) {
	topics := make(map[string]string, len(cmd.LessonIDs))
	need := make(map[string]int, len(cmd.LessonIDs))
	for i, id := range cmd.LessonIDs {
		qty := cmd.Quantities[i]

		l, err := uc.catalog.Get(ctx, id)
		if err != nil {
			status, perr := lookupError(id, err)
			return nil, status, perr
		}
		need[id] += qty
		topics[id] = l.Topic
		if !l.HasSpace(need[id]) {
			return nil, "INSUFFICIENT_SPACE", notEnoughSpace(l.Topic, domlesson.ErrInsufficientSpace)
		}
	}

	debits := make([]debit, 0, len(cmd.LessonIDs))
	for i, id := range cmd.LessonIDs {
		qty := cmd.Quantities[i]
		if err := uc.decrement(ctx, id, qty); err != nil {
			status, perr := decrementError(id, topics[id], err)
			return debits, status, perr
		}
		debits = append(debits, debit{lessonID: id, qty: qty})
	}
	return debits, "", nil
}

func (uc *PlaceOrderUseCase) decrement(ctx context.Context, id string, qty int) error {
	if err := uc.catalog.DecrementSpace(ctx, id, qty); err != nil {
		return err
	}
	uc.seatsDebited.Add(float64(qty))
	return nil
}

// restore gives seats back newest first.
func (uc *PlaceOrderUseCase) restore(ctx context.Context, debits []debit) error {
	var errs []error
	for i := len(debits) - 1; i >= 0; i-- {
		d := debits[i]
		if err := uc.catalog.RestoreSpace(ctx, d.lessonID, d.qty); err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", d.lessonID, err))
		}
	}
	return errors.Join(errs...)
}

func (uc *PlaceOrderUseCase) publish(ctx context.Context, e domain.PlacedEvent) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	pubStart := time.Now()
	pubOutcome := "success"
	err := uc.publisher.Publish(pubCtx, e)
	switch {
	case err != nil && pubCtx.Err() != nil:
		pubOutcome = "canceled"
	case err != nil:
		pubOutcome = "error"
	}

	uc.extCounter.Add(1,
		observability.L("peer", publishPeer),
		observability.L("endpoint", e.EventName()),
		observability.L("outcome", pubOutcome),
	)
	uc.extHistogram.Observe(time.Since(pubStart).Seconds(),
		observability.L("peer", publishPeer),
		observability.L("endpoint", e.EventName()),
	)
	return err
}

func lookupError(id string, err error) (string, error) {
	if errors.Is(err, domlesson.ErrNotFound) {
		return "LESSON_NOT_FOUND", rejected(KindNotFound, fmt.Sprintf("Lesson not found (ID: %s)", id), err)
	}
	return "LESSON_LOOKUP_FAILED", rejected(KindInternal, MsgPlacementFailed, fmt.Errorf("order: get lesson %s: %w", id, err))
}

func decrementError(id, topic string, err error) (string, error) {
	switch {
	case errors.Is(err, domlesson.ErrInsufficientSpace):
		return "INSUFFICIENT_SPACE", notEnoughSpace(topic, err)
	case errors.Is(err, domlesson.ErrNotFound):
		return "LESSON_NOT_FOUND", rejected(KindNotFound, fmt.Sprintf("Lesson not found (ID: %s)", id), err)
	default:
		return "DECREMENT_FAILED", rejected(KindInternal, MsgPlacementFailed, fmt.Errorf("order: debit lesson %s: %w", id, err))
	}
}

func notEnoughSpace(topic string, err error) error {
	return rejected(KindInvalid, "Not enough space for "+topic, err)
}
