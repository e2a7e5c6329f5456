package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	domain "github.com/Zhima-Mochi/lessonshop/internal/domain/lesson"
	"github.com/Zhima-Mochi/lessonshop/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type lessonDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Topic    string             `bson:"topic"`
	Location string             `bson:"location"`
	Price    float64            `bson:"price"`
	Space    int                `bson:"space"`
	Image    string             `bson:"image"`
}

func (d lessonDocument) toDomain() *domain.Lesson {
	return &domain.Lesson{
		ID:       d.ID.Hex(),
		Topic:    d.Topic,
		Location: d.Location,
		Price:    d.Price,
		Space:    d.Space,
		Image:    d.Image,
	}
}

// LessonStore is the catalog backed by the lessons collection.
type LessonStore struct {
	coll  *mongo.Collection
	calls calls
}

func NewLessonStore(db *mongo.Database, tel observability.Observability) *LessonStore {
	return &LessonStore{
		coll:  db.Collection(lessonsCollection),
		calls: newCalls(tel),
	}
}

// parseID maps anything that is not an ObjectID to not-found: an id that
// cannot exist cannot be found.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrNotFound
	}
	return oid, nil
}

func (s *LessonStore) List(ctx context.Context) (_ []*domain.Lesson, err error) {
	defer func(start time.Time) { s.calls.observe("lessons.find", start, err) }(time.Now())
	return s.find(ctx, bson.M{})
}

func (s *LessonStore) Search(ctx context.Context, query string) (_ []*domain.Lesson, err error) {
	if query == "" {
		return []*domain.Lesson{}, nil
	}
	defer func(start time.Time) { s.calls.observe("lessons.search", start, err) }(time.Now())

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return s.find(ctx, bson.M{"$or": bson.A{
		bson.M{"topic": pattern},
		bson.M{"location": pattern},
	}})
}

func (s *LessonStore) find(ctx context.Context, filter bson.M) ([]*domain.Lesson, error) {
	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("lessons: find: %w", err)
	}
	var docs []lessonDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("lessons: decode: %w", err)
	}
	out := make([]*domain.Lesson, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (s *LessonStore) Get(ctx context.Context, id string) (_ *domain.Lesson, err error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	defer func(start time.Time) { s.calls.observe("lessons.find_one", start, err) }(time.Now())

	var doc lessonDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lessons: find one: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *LessonStore) Insert(ctx context.Context, l *domain.Lesson) (_ string, err error) {
	if l == nil {
		return "", domain.ErrInvalid
	}
	if err := l.Validate(); err != nil {
		return "", err
	}
	defer func(start time.Time) { s.calls.observe("lessons.insert", start, err) }(time.Now())

	res, err := s.coll.InsertOne(ctx, lessonDocument{
		Topic:    l.Topic,
		Location: l.Location,
		Price:    l.Price,
		Space:    l.Space,
		Image:    l.Image,
	})
	if err != nil {
		return "", fmt.Errorf("lessons: insert: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("lessons: insert: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (s *LessonStore) Update(ctx context.Context, id string, patch domain.Patch) (err error) {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := patch.Validate(); err != nil {
		return err
	}
	set := patchDocument(patch)
	defer func(start time.Time) { s.calls.observe("lessons.update", start, err) }(time.Now())

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("lessons: update: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func patchDocument(p domain.Patch) bson.M {
	set := bson.M{}
	if p.Topic != nil {
		set["topic"] = strings.TrimSpace(*p.Topic)
	}
	if p.Location != nil {
		set["location"] = strings.TrimSpace(*p.Location)
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Space != nil {
		set["space"] = *p.Space
	}
	if p.Image != nil {
		set["image"] = *p.Image
	}
	return set
}

func (s *LessonStore) Delete(ctx context.Context, id string) (err error) {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	defer func(start time.Time) { s.calls.observe("lessons.delete", start, err) }(time.Now())

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("lessons: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DecrementSpace debits qty seats with a single findAndModify whose filter
// carries the availability predicate, so check and write commit together.
func (s *LessonStore) DecrementSpace(ctx context.Context, id string, qty int) (err error) {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	defer func(start time.Time) { s.calls.observe("lessons.decrement_space", start, err) }(time.Now())

	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "space": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"space": -qty}},
		options.FindOneAndUpdate().SetProjection(bson.M{"_id": 1}),
	).Err()
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("lessons: decrement space: %w", err)
	}

	// Nothing matched: either the lesson is gone or it has too few seats.
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("lessons: decrement space: count: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrInsufficientSpace
}

// RestoreSpace gives back seats taken by DecrementSpace.
func (s *LessonStore) RestoreSpace(ctx context.Context, id string, qty int) (err error) {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	defer func(start time.Time) { s.calls.observe("lessons.restore_space", start, err) }(time.Now())

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"space": qty}})
	if err != nil {
		return fmt.Errorf("lessons: restore space: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
