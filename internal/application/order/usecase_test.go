package order

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	domlesson "github.com/Zhima-Mochi/lessonshop/internal/domain/lesson"
	domain "github.com/Zhima-Mochi/lessonshop/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/lessonshop/internal/domain/outbox"
	dompay "github.com/Zhima-Mochi/lessonshop/internal/domain/payment"
	"github.com/Zhima-Mochi/lessonshop/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/lessonshop/internal/infrastructure/payment"
	"github.com/Zhima-Mochi/lessonshop/internal/observability"
	"github.com/Zhima-Mochi/lessonshop/internal/observability/logctx"
)

type fixture struct {
	lessons *memory.LessonRepository
	orders  *memory.OrderRepository
	events  *recordingPublisher
}

func newFixture() *fixture {
	return &fixture{
		lessons: memory.NewLessonRepository(),
		orders:  memory.NewOrderRepository(),
		events:  &recordingPublisher{},
	}
}

func (f *fixture) useCase(opts ...Option) *PlaceOrderUseCase {
	return f.useCaseWith(f.lessons, payment.NewMockProcessor(), opts...)
}

func (f *fixture) useCaseWith(catalog Catalog, payments PaymentPort, opts ...Option) *PlaceOrderUseCase {
	return NewPlaceOrderUseCase(catalog, f.orders, payments, f.events, nil, opts...)
}

func (f *fixture) seed(t *testing.T, topic string, space int) string {
	t.Helper()
	l, err := domlesson.New(topic, "Hendon", 20, space, strings.ToLower(topic)+".png")
	if err != nil {
		t.Fatalf("new lesson: %v", err)
	}
	id, err := f.lessons.Insert(context.Background(), l)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	return id
}

func (f *fixture) space(t *testing.T, id string) int {
	t.Helper()
	l, err := f.lessons.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	return l.Space
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domoutbox.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func customer() domain.Customer {
	return domain.Customer{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Address:   "12 St James's Square",
		City:      "London",
		Country:   "UK",
		Postcode:  "SW1Y 4JH",
		Phone:     "07700900123",
		Email:     "ada@example.com",
	}
}

func input(ids []string, qty []int) PlaceOrderInput {
	return PlaceOrderInput{
		Customer:      customer(),
		LessonIDs:     ids,
		Quantities:    qty,
		PaymentMethod: "card",
		CardLast4:     "4242",
		CardBrand:     "visa",
	}
}

func wantPlacement(t *testing.T, err error, kind Kind, msg string) {
	t.Helper()
	pe, ok := AsPlacement(err)
	if !ok {
		t.Fatalf("err = %v, want *PlacementError", err)
	}
	if pe.Kind != kind {
		t.Fatalf("kind = %v, want %v (err %v)", pe.Kind, kind, err)
	}
	if pe.Message != msg {
		t.Fatalf("message = %q, want %q", pe.Message, msg)
	}
}

func TestPlaceOrderHappyPath(t *testing.T) {
	t.Parallel()
	f := newFixture()
	l1 := f.seed(t, "Yoga", 5)
	l2 := f.seed(t, "Art", 3)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	res, err := f.useCase(WithClock(func() time.Time { return fixed })).
		Execute(context.Background(), input([]string{l1, l2}, []int{2, 1}))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.PaymentStatus != dompay.StatusPaid {
		t.Fatalf("payment status = %q, want paid", res.PaymentStatus)
	}
	if res.PaymentMessage != "Mock card payment succeeded for VISA ****4242" {
		t.Fatalf("payment message = %q", res.PaymentMessage)
	}
	if got := f.space(t, l1); got != 3 {
		t.Fatalf("L1 space = %d, want 3", got)
	}
	if got := f.space(t, l2); got != 2 {
		t.Fatalf("L2 space = %d, want 2", got)
	}

	orders, _ := f.orders.List(context.Background())
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(orders))
	}
	o := orders[0]
	if o.ID != res.OrderID || !o.Date.Equal(fixed) || o.CardLast4 != "4242" || o.PaymentMethod != dompay.MethodCard {
		t.Fatalf("stored order = %+v", o)
	}

	if len(f.events.events) != 1 {
		t.Fatalf("events = %d, want 1", len(f.events.events))
	}
	evt, ok := f.events.events[0].(domain.PlacedEvent)
	if !ok || evt.OrderID != res.OrderID || evt.Seats() != 3 {
		t.Fatalf("event = %+v", f.events.events[0])
	}
}

func TestPlaceOrderPayPalDropsCardFields(t *testing.T) {
	t.Parallel()
	f := newFixture()
	id := f.seed(t, "Yoga", 5)

	cmd := input([]string{id}, []int{1})
	cmd.PaymentMethod = "paypal"
	res, err := f.useCase().Execute(context.Background(), cmd)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.PaymentMessage != "Mock PayPal payment completed" {
		t.Fatalf("message = %q", res.PaymentMessage)
	}
	orders, _ := f.orders.List(context.Background())
	if orders[0].CardLast4 != "" || orders[0].CardBrand != "" {
		t.Fatalf("paypal order kept card fields: %+v", orders[0])
	}
}

func TestPlaceOrderInsufficientSpace(t *testing.T) {
	t.Parallel()
	f := newFixture()
	id := f.seed(t, "Yoga", 1)

	_, err := f.useCase().Execute(context.Background(), input([]string{id}, []int{2}))
	wantPlacement(t, err, KindInvalid, "Not enough space for Yoga")
	if !errors.Is(err, domlesson.ErrInsufficientSpace) {
		t.Fatalf("errors.Is(err, ErrInsufficientSpace) = false")
	}
	if got := f.space(t, id); got != 1 {
		t.Fatalf("space = %d, want 1", got)
	}
	if f.orders.Len() != 0 {
		t.Fatalf("orders = %d, want 0", f.orders.Len())
	}
}

func TestPlaceOrderUnknownLessonKeepsEarlierDebits(t *testing.T) {
	t.Parallel()
	f := newFixture()
	l1 := f.seed(t, "Yoga", 5)
	l2 := f.seed(t, "Art", 5)

	_, err := f.useCase().Execute(context.Background(), input([]string{l1, "nonexistent", l2}, []int{1, 1, 1}))
	wantPlacement(t, err, KindNotFound, "Lesson not found (ID: nonexistent)")
	if got := f.space(t, l1); got != 4 {
		t.Fatalf("L1 space = %d, want 4", got)
	}
	if got := f.space(t, l2); got != 5 {
		t.Fatalf("L2 space = %d, want 5 (after the failure point)", got)
	}
	if f.orders.Len() != 0 {
		t.Fatalf("orders = %d, want 0", f.orders.Len())
	}
	if len(f.events.events) != 0 {
		t.Fatalf("events = %d, want 0", len(f.events.events))
	}
}

func TestPlaceOrderCompensatingModeRestoresSeats(t *testing.T) {
	t.Parallel()
	f := newFixture()
	l1 := f.seed(t, "Yoga", 5)

	_, err := f.useCase(WithCompensation(true)).
		Execute(context.Background(), input([]string{l1, "nonexistent"}, []int{1, 1}))
	wantPlacement(t, err, KindNotFound, "Lesson not found (ID: nonexistent)")
	if got := f.space(t, l1); got != 5 {
		t.Fatalf("L1 space = %d, want 5", got)
	}
}

func TestPlaceOrderCompensatingModeChecksCombinedQuantity(t *testing.T) {
	t.Parallel()
	f := newFixture()
	l1 := f.seed(t, "Yoga", 3)

	_, err := f.useCase(WithCompensation(true)).
		Execute(context.Background(), input([]string{l1, l1}, []int{2, 2}))
	wantPlacement(t, err, KindInvalid, "Not enough space for Yoga")
	if got := f.space(t, l1); got != 3 {
		t.Fatalf("space = %d, want 3", got)
	}
}

// raceCatalog lets reads through but refuses the decrement of one lesson,
// the way a concurrent order taking the last seat would.
type raceCatalog struct {
	*memory.LessonRepository
	refuse string
}

func (c raceCatalog) DecrementSpace(ctx context.Context, id string, qty int) error {
	if id == c.refuse {
		return domlesson.ErrInsufficientSpace
	}
	return c.LessonRepository.DecrementSpace(ctx, id, qty)
}

func TestPlaceOrderDecrementRefusalAfterCheck(t *testing.T) {
	t.Parallel()

	for _, compensate := range []bool{false, true} {
		f := newFixture()
		l1 := f.seed(t, "Yoga", 5)
		l2 := f.seed(t, "Art", 5)
		uc := f.useCaseWith(raceCatalog{LessonRepository: f.lessons, refuse: l2}, payment.NewMockProcessor(), WithCompensation(compensate))

		_, err := uc.Execute(context.Background(), input([]string{l1, l2}, []int{2, 1}))
		wantPlacement(t, err, KindInvalid, "Not enough space for Art")

		want := 3
		if compensate {
			want = 5
		}
		if got := f.space(t, l1); got != want {
			t.Fatalf("compensate=%v: L1 space = %d, want %d", compensate, got, want)
		}
	}
}

type failingPayments struct{}

func (failingPayments) Pay(context.Context, dompay.Request) (dompay.Result, error) {
	return dompay.Result{}, errors.New("gateway down")
}

type decliningPayments struct{}

func (decliningPayments) Pay(context.Context, dompay.Request) (dompay.Result, error) {
	return dompay.Result{Success: false, Message: "Card declined"}, nil
}

func TestPlaceOrderPaymentFailure(t *testing.T) {
	t.Parallel()

	for _, compensate := range []bool{false, true} {
		f := newFixture()
		id := f.seed(t, "Yoga", 5)

		_, err := f.useCaseWith(f.lessons, failingPayments{}, WithCompensation(compensate)).
			Execute(context.Background(), input([]string{id}, []int{2}))
		wantPlacement(t, err, KindInternal, MsgPlacementFailed)

		want := 3
		if compensate {
			want = 5
		}
		if got := f.space(t, id); got != want {
			t.Fatalf("compensate=%v: space = %d, want %d", compensate, got, want)
		}
		if f.orders.Len() != 0 {
			t.Fatalf("orders = %d, want 0", f.orders.Len())
		}
	}
}

// stuckCatalog debits normally but cannot give seats back.
type stuckCatalog struct {
	*memory.LessonRepository
}

func (stuckCatalog) RestoreSpace(context.Context, string, int) error {
	return errors.New("store unreachable")
}

type logEntry struct {
	level, msg string
	fields     []observability.Field
}

// recordingLogger keeps every entry, including those written through With.
type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]logEntry
}

func newRecordingLogger() recordingLogger {
	return recordingLogger{mu: &sync.Mutex{}, entries: &[]logEntry{}}
}

func (l recordingLogger) record(level, msg string, fields []observability.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l recordingLogger) With(...observability.Field) observability.Logger { return l }
func (l recordingLogger) Debug(m string, f ...observability.Field)         { l.record("debug", m, f) }
func (l recordingLogger) Info(m string, f ...observability.Field)          { l.record("info", m, f) }
func (l recordingLogger) Warn(m string, f ...observability.Field)          { l.record("warn", m, f) }
func (l recordingLogger) Error(m string, f ...observability.Field)         { l.record("error", m, f) }

func (l recordingLogger) find(level, msg string) (logEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range *l.entries {
		if e.level == level && e.msg == msg {
			return e, true
		}
	}
	return logEntry{}, false
}

func TestPlaceOrderRestoreFailureKeepsPlacementError(t *testing.T) {
	t.Parallel()
	f := newFixture()
	id := f.seed(t, "Yoga", 5)
	logs := newRecordingLogger()
	ctx := logctx.With(context.Background(), logs)

	_, err := f.useCaseWith(stuckCatalog{f.lessons}, failingPayments{}, WithCompensation(true)).
		Execute(ctx, input([]string{id}, []int{2}))
	wantPlacement(t, err, KindInternal, MsgPlacementFailed)

	e, ok := logs.find("error", "seat_restore_failed")
	if !ok {
		t.Fatalf("seat_restore_failed not logged; entries = %v", *logs.entries)
	}
	var cause string
	for _, fld := range e.fields {
		if fld.Key == "cause_status" {
			cause, _ = fld.Value.(string)
		}
	}
	if cause == "" || cause == "COMPENSATION_FAILED" {
		t.Fatalf("cause_status = %q, want the placement status", cause)
	}
	done, ok := logs.find("info", "use_case_done")
	if !ok {
		t.Fatal("use_case_done not logged")
	}
	var status string
	for _, fld := range done.fields {
		if fld.Key == "status" {
			status, _ = fld.Value.(string)
		}
	}
	if status != "COMPENSATION_FAILED" {
		t.Fatalf("status = %q, want COMPENSATION_FAILED", status)
	}
	if got := f.space(t, id); got != 3 {
		t.Fatalf("space = %d, want 3", got)
	}
	if f.orders.Len() != 0 {
		t.Fatalf("orders = %d, want 0", f.orders.Len())
	}
}

func TestPlaceOrderDeclineIsStillPlaced(t *testing.T) {
	t.Parallel()
	f := newFixture()
	id := f.seed(t, "Yoga", 5)

	res, err := f.useCaseWith(f.lessons, decliningPayments{}).
		Execute(context.Background(), input([]string{id}, []int{1}))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.PaymentStatus != dompay.StatusFailed || res.PaymentMessage != "Card declined" {
		t.Fatalf("result = %+v", res)
	}
	if f.orders.Len() != 1 {
		t.Fatalf("orders = %d, want 1", f.orders.Len())
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*PlaceOrderInput)
		msg    string
	}{
		{"missing email", func(c *PlaceOrderInput) { c.Customer.Email = "" }, MsgMissingFields},
		{"missing lesson ids", func(c *PlaceOrderInput) { c.LessonIDs = nil }, MsgMissingFields},
		{"missing quantities", func(c *PlaceOrderInput) { c.Quantities = nil }, MsgMissingFields},
		{"length mismatch", func(c *PlaceOrderInput) { c.Quantities = []int{1, 1} }, MsgInvalidItems},
		{"empty items", func(c *PlaceOrderInput) { c.LessonIDs, c.Quantities = []string{}, []int{} }, MsgInvalidItems},
		{"zero quantity", func(c *PlaceOrderInput) { c.Quantities = []int{0} }, MsgInvalidItems},
		{"negative quantity", func(c *PlaceOrderInput) { c.Quantities = []int{-1} }, MsgInvalidItems},
		{"unknown method", func(c *PlaceOrderInput) { c.PaymentMethod = "cash" }, MsgInvalidMethod},
		{"no method", func(c *PlaceOrderInput) { c.PaymentMethod = "" }, MsgInvalidMethod},
		{"digits in name", func(c *PlaceOrderInput) { c.Customer.FirstName = "Ada2" }, "Invalid firstName"},
		{"letters in phone", func(c *PlaceOrderInput) { c.Customer.Phone = "0770-090" }, "Invalid phone"},
		{"short card", func(c *PlaceOrderInput) { c.CardLast4 = "42" }, "Invalid cardLast4"},
		{"mismatch beats bad name", func(c *PlaceOrderInput) {
			c.Customer.FirstName = "Ada2"
			c.Quantities = []int{1, 2}
		}, MsgInvalidItems},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture()
			id := f.seed(t, "Yoga", 5)

			cmd := input([]string{id}, []int{1})
			tc.mutate(&cmd)
			_, err := f.useCase().Execute(context.Background(), cmd)
			wantPlacement(t, err, KindInvalid, tc.msg)

			if got := f.space(t, id); got != 5 {
				t.Fatalf("space = %d, want 5", got)
			}
			if f.orders.Len() != 0 {
				t.Fatalf("orders = %d, want 0", f.orders.Len())
			}
		})
	}
}

func TestPlaceOrderLastSeatRace(t *testing.T) {
	t.Parallel()

	const (
		seats   = 7
		clients = 40
	)
	for _, compensate := range []bool{false, true} {
		f := newFixture()
		id := f.seed(t, "Yoga", seats)
		uc := f.useCase(WithCompensation(compensate))

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			placed   int
			rejected int
		)
		for i := 0; i < clients; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := uc.Execute(context.Background(), input([]string{id}, []int{1}))
				mu.Lock()
				defer mu.Unlock()
				switch pe, ok := AsPlacement(err); {
				case err == nil:
					placed++
				case ok && pe.Kind == KindInvalid:
					rejected++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		if placed != seats || rejected != clients-seats {
			t.Fatalf("compensate=%v: placed=%d rejected=%d, want %d/%d", compensate, placed, rejected, seats, clients-seats)
		}
		if got := f.space(t, id); got != 0 {
			t.Fatalf("compensate=%v: space = %d, want 0", compensate, got)
		}
		if f.orders.Len() != seats {
			t.Fatalf("compensate=%v: orders = %d, want %d", compensate, f.orders.Len(), seats)
		}
	}
}

func TestPlaceOrderOutlivesClientCancellation(t *testing.T) {
	t.Parallel()
	f := newFixture()
	id := f.seed(t, "Yoga", 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.useCase().Execute(ctx, input([]string{id}, []int{1})); err != nil {
		t.Fatalf("execute with cancelled ctx: %v", err)
	}
	if got := f.space(t, id); got != 1 {
		t.Fatalf("space = %d, want 1", got)
	}
}

func TestListOrders(t *testing.T) {
	t.Parallel()
	f := newFixture()
	id := f.seed(t, "Yoga", 5)
	uc := f.useCase()
	for i := 0; i < 2; i++ {
		if _, err := uc.Execute(context.Background(), input([]string{id}, []int{1})); err != nil {
			t.Fatalf("execute: %v", err)
		}
	}

	got, err := NewListOrdersUseCase(f.orders, nil).Execute(context.Background(), struct{}{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("orders = %d, want 2", len(got))
	}
}
