package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/Zhima-Mochi/lessonshop/internal/domain/lesson"
	"github.com/Zhima-Mochi/lessonshop/internal/observability"
	"github.com/Zhima-Mochi/lessonshop/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	catalogService = "catalog-service"
	spanPrefix     = "UC."

	useCaseList   = "lesson.list"
	useCaseSearch = "lesson.search"
	useCaseAdd    = "lesson.add"
	useCaseUpdate = "lesson.update"
	useCaseDelete = "lesson.delete"
)

type AddLessonInput struct {
	Topic    string
	Location string
	Price    float64
	Space    int
	Image    string
}

// Service is the admin and browsing side of the catalog.
type Service struct {
	repo domain.Repository
	tel  observability.Observability

	log     observability.Logger
	metrics map[string]observability.UseCaseInstruments
}

func NewService(repo domain.Repository, tel observability.Observability) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := make(map[string]observability.UseCaseInstruments, 5)
	for _, uc := range []string{useCaseList, useCaseSearch, useCaseAdd, useCaseUpdate, useCaseDelete} {
		metrics[uc] = observability.BindUseCase(tel.Metrics(), uc)
	}
	return &Service{
		repo:    repo,
		tel:     tel,
		log:     tel.Logger().With(observability.F("service", catalogService)),
		metrics: metrics,
	}
}

// run wraps one catalog operation in a span, RED metrics and a use_case_done line.
// fn returns the status text to record alongside its error.
func (s *Service) run(ctx context.Context, useCase, spanName string, attrs []attribute.KeyValue, fn func(ctx context.Context) (string, error)) (err error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCase))
	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+spanName,
		append([]attribute.KeyValue{attribute.String("use_case", useCase)}, attrs...)...,
	)
	start := time.Now()
	outcome, statusText := observability.OutcomeSuccess, "OK"

	defer func() {
		lat := time.Since(start).Seconds()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		s.metrics[useCase].Done(outcome, lat)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		fields = append(fields, observability.TraceFields(ctx)...)
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	status, err := fn(logctx.With(ctx, logger))
	if err != nil {
		outcome = observability.OutcomeError
		if status == "" {
			status = "REPO_FAILED"
		}
	}
	if status != "" {
		statusText = status
	}
	return err
}

func (s *Service) List(ctx context.Context) (lessons []*domain.Lesson, err error) {
	err = s.run(ctx, useCaseList, "ListLessons", nil, func(ctx context.Context) (string, error) {
		lessons, err = s.repo.List(ctx)
		return "", err
	})
	return lessons, err
}

// Search returns lessons whose topic or location contains q, ignoring case.
// An empty q matches nothing and never reaches the store.
func (s *Service) Search(ctx context.Context, q string) (lessons []*domain.Lesson, err error) {
	if q == "" {
		return []*domain.Lesson{}, nil
	}
	err = s.run(ctx, useCaseSearch, "SearchLessons",
		[]attribute.KeyValue{attribute.Int("search.query_length", len(q))},
		func(ctx context.Context) (string, error) {
			lessons, err = s.repo.Search(ctx, q)
			return "", err
		})
	return lessons, err
}

func (s *Service) Add(ctx context.Context, in AddLessonInput) (id string, err error) {
	err = s.run(ctx, useCaseAdd, "AddLesson",
		[]attribute.KeyValue{attribute.String("lesson.topic", in.Topic)},
		func(ctx context.Context) (string, error) {
			l, verr := domain.New(in.Topic, in.Location, in.Price, in.Space, in.Image)
			if verr != nil {
				return "VALIDATION_FAILED", verr
			}
			id, err = s.repo.Insert(ctx, l)
			if err != nil {
				return "REPO_INSERT_FAILED", fmt.Errorf("catalog: insert: %w", err)
			}
			return "", nil
		})
	return id, err
}

func (s *Service) Update(ctx context.Context, id string, patch domain.Patch) error {
	return s.run(ctx, useCaseUpdate, "UpdateLesson",
		[]attribute.KeyValue{attribute.String("lesson.id", id)},
		func(ctx context.Context) (string, error) {
			if err := patch.Validate(); err != nil {
				return "VALIDATION_FAILED", err
			}
			if err := s.repo.Update(ctx, id, patch); err != nil {
				return statusFor(err, "REPO_UPDATE_FAILED"), err
			}
			return "", nil
		})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.run(ctx, useCaseDelete, "DeleteLesson",
		[]attribute.KeyValue{attribute.String("lesson.id", id)},
		func(ctx context.Context) (string, error) {
			if err := s.repo.Delete(ctx, id); err != nil {
				return statusFor(err, "REPO_DELETE_FAILED"), err
			}
			return "", nil
		})
}

func statusFor(err error, fallback string) string {
	if errors.Is(err, domain.ErrNotFound) {
		return "NOT_FOUND"
	}
	return fallback
}
