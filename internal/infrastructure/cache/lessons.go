package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	domain "github.com/Zhima-Mochi/lessonshop/internal/domain/lesson"
	"github.com/Zhima-Mochi/lessonshop/internal/observability"
	"github.com/Zhima-Mochi/lessonshop/internal/observability/logctx"
)

const (
	lessonsKey    = "lessonshop:lessons:all"
	generationKey = "lessonshop:lessons:gen"
)

// Client is the part of *redis.Client the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

type cachedLesson struct {
	ID       string  `json:"id"`
	Topic    string  `json:"topic"`
	Location string  `json:"location"`
	Price    float64 `json:"price"`
	Space    int     `json:"space"`
	Image    string  `json:"image"`
}

// Lessons is a read-through cache of the full catalog listing in front of a
// lesson repository. The listing is stored under the current generation and
// every successful write bumps the generation, so a listing read from the
// store before a write can only land under a generation nobody reads again.
// Get and Search always hit the repository. Redis trouble is logged and bypassed.
type Lessons struct {
	domain.Repository
	rdb     Client
	ttl     time.Duration
	log     observability.Logger
	lookups observability.Counter // catalog_cache_lookups_total{result}
}

func NewLessons(repo domain.Repository, rdb Client, ttl time.Duration, tel observability.Observability) *Lessons {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Lessons{
		Repository: repo,
		rdb:        rdb,
		ttl:        ttl,
		log:        tel.Logger().With(observability.F("component", "catalog_cache")),
		lookups:    tel.Metrics().Counter(observability.MCatalogCacheLookups),
	}
}

func (c *Lessons) List(ctx context.Context) ([]*domain.Lesson, error) {
	logger := logctx.FromOr(ctx, c.log)

	gen, err := c.generation(ctx)
	if err != nil {
		c.lookups.Add(1, observability.L("result", "error"))
		logger.Warn("catalog_cache_get_failed", observability.F("error", err))
		return c.Repository.List(ctx)
	}
	key := listingKey(gen)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []cachedLesson
		uerr := json.Unmarshal(raw, &cached)
		if uerr == nil {
			c.lookups.Add(1, observability.L("result", "hit"))
			return fromCache(cached), nil
		}
		c.lookups.Add(1, observability.L("result", "error"))
		logger.Warn("catalog_cache_corrupt", observability.F("error", uerr))
	case errors.Is(err, redis.Nil):
		c.lookups.Add(1, observability.L("result", "miss"))
	default:
		c.lookups.Add(1, observability.L("result", "error"))
		logger.Warn("catalog_cache_get_failed", observability.F("error", err))
	}

	lessons, err := c.Repository.List(ctx)
	if err != nil {
		return nil, err
	}
	if payload, merr := json.Marshal(toCache(lessons)); merr == nil {
		if serr := c.rdb.Set(ctx, key, payload, c.ttl).Err(); serr != nil {
			logger.Warn("catalog_cache_set_failed", observability.F("error", serr))
		}
	}
	return lessons, nil
}

// generation returns the current listing generation; an unset key is 0.
func (c *Lessons) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func listingKey(gen int64) string {
	return lessonsKey + ":" + strconv.FormatInt(gen, 10)
}

func (c *Lessons) Insert(ctx context.Context, l *domain.Lesson) (string, error) {
	id, err := c.Repository.Insert(ctx, l)
	if err == nil {
		c.invalidate(ctx)
	}
	return id, err
}

func (c *Lessons) Update(ctx context.Context, id string, patch domain.Patch) error {
	return c.after(ctx, c.Repository.Update(ctx, id, patch))
}

func (c *Lessons) Delete(ctx context.Context, id string) error {
	return c.after(ctx, c.Repository.Delete(ctx, id))
}

func (c *Lessons) DecrementSpace(ctx context.Context, id string, qty int) error {
	return c.after(ctx, c.Repository.DecrementSpace(ctx, id, qty))
}

func (c *Lessons) RestoreSpace(ctx context.Context, id string, qty int) error {
	return c.after(ctx, c.Repository.RestoreSpace(ctx, id, qty))
}

func (c *Lessons) after(ctx context.Context, err error) error {
	if err == nil {
		c.invalidate(ctx)
	}
	return err
}

// invalidate moves readers to a fresh generation. Listings cached under older
// generations are left to expire with their TTL.
func (c *Lessons) invalidate(ctx context.Context) {
	if err := c.rdb.Incr(context.WithoutCancel(ctx), generationKey).Err(); err != nil {
		logctx.FromOr(ctx, c.log).Warn("catalog_cache_invalidate_failed", observability.F("error", err))
	}
}

func toCache(ls []*domain.Lesson) []cachedLesson {
	out := make([]cachedLesson, 0, len(ls))
	for _, l := range ls {
		out = append(out, cachedLesson{
			ID:       l.ID,
			Topic:    l.Topic,
			Location: l.Location,
			Price:    l.Price,
			Space:    l.Space,
			Image:    l.Image,
		})
	}
	return out
}

func fromCache(cs []cachedLesson) []*domain.Lesson {
	out := make([]*domain.Lesson, 0, len(cs))
	for _, c := range cs {
		out = append(out, &domain.Lesson{
			ID:       c.ID,
			Topic:    c.Topic,
			Location: c.Location,
			Price:    c.Price,
			Space:    c.Space,
			Image:    c.Image,
		})
	}
	return out
}
