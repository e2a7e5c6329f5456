package mongo

import (
	"context"
	"fmt"
	"time"

	domain "github.com/Zhima-Mochi/lessonshop/internal/domain/order"
	"github.com/Zhima-Mochi/lessonshop/internal/domain/payment"
	"github.com/Zhima-Mochi/lessonshop/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type orderDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	FirstName      string             `bson:"firstName"`
	LastName       string             `bson:"lastName"`
	Address        string             `bson:"address"`
	City           string             `bson:"city"`
	Country        string             `bson:"country"`
	Postcode       string             `bson:"postcode"`
	Phone          string             `bson:"phone"`
	Email          string             `bson:"email"`
	LessonIDs      []string           `bson:"lessonIDs"`
	Quantities     []int              `bson:"quantities"`
	PaymentMethod  string             `bson:"paymentMethod"`
	PaymentStatus  string             `bson:"paymentStatus"`
	PaymentMessage string             `bson:"paymentMessage"`
	CardLast4      string             `bson:"cardLast4,omitempty"`
	CardBrand      string             `bson:"cardBrand,omitempty"`
	Date           time.Time          `bson:"date"`
}

func newOrderDocument(o *domain.Order) orderDocument {
	return orderDocument{
		FirstName:      o.Customer.FirstName,
		LastName:       o.Customer.LastName,
		Address:        o.Customer.Address,
		City:           o.Customer.City,
		Country:        o.Customer.Country,
		Postcode:       o.Customer.Postcode,
		Phone:          o.Customer.Phone,
		Email:          o.Customer.Email,
		LessonIDs:      o.LessonIDs,
		Quantities:     o.Quantities,
		PaymentMethod:  string(o.PaymentMethod),
		PaymentStatus:  string(o.PaymentStatus),
		PaymentMessage: o.PaymentMessage,
		CardLast4:      o.CardLast4,
		CardBrand:      o.CardBrand,
		Date:           o.Date,
	}
}

func (d orderDocument) toDomain() *domain.Order {
	return &domain.Order{
		ID: d.ID.Hex(),
		Customer: domain.Customer{
			FirstName: d.FirstName,
			LastName:  d.LastName,
			Address:   d.Address,
			City:      d.City,
			Country:   d.Country,
			Postcode:  d.Postcode,
			Phone:     d.Phone,
			Email:     d.Email,
		},
		LessonIDs:      d.LessonIDs,
		Quantities:     d.Quantities,
		PaymentMethod:  payment.Method(d.PaymentMethod),
		PaymentStatus:  payment.Status(d.PaymentStatus),
		PaymentMessage: d.PaymentMessage,
		CardLast4:      d.CardLast4,
		CardBrand:      d.CardBrand,
		Date:           d.Date,
	}
}

// OrderStore appends to the orders collection. It never updates or deletes.
type OrderStore struct {
	coll  *mongo.Collection
	calls calls
}

func NewOrderStore(db *mongo.Database, tel observability.Observability) *OrderStore {
	return &OrderStore{
		coll:  db.Collection(ordersCollection),
		calls: newCalls(tel),
	}
}

func (s *OrderStore) List(ctx context.Context) (_ []*domain.Order, err error) {
	defer func(start time.Time) { s.calls.observe("orders.find", start, err) }(time.Now())

	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("orders: find: %w", err)
	}
	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("orders: decode: %w", err)
	}
	out := make([]*domain.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (s *OrderStore) Append(ctx context.Context, o *domain.Order) (_ string, err error) {
	if o == nil {
		return "", domain.ErrMissingFields
	}
	defer func(start time.Time) { s.calls.observe("orders.insert", start, err) }(time.Now())

	doc := newOrderDocument(o)
	if doc.Date.IsZero() {
		doc.Date = time.Now().UTC()
	}
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("orders: insert: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("orders: insert: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}
