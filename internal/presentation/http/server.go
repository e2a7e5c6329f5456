package httppresentation

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/Zhima-Mochi/lessonshop/internal/application"
	appcatalog "github.com/Zhima-Mochi/lessonshop/internal/application/catalog"
	apporder "github.com/Zhima-Mochi/lessonshop/internal/application/order"
	domlesson "github.com/Zhima-Mochi/lessonshop/internal/domain/lesson"
	domorder "github.com/Zhima-Mochi/lessonshop/internal/domain/order"
	"github.com/Zhima-Mochi/lessonshop/internal/observability"
)

const componentHTTPHandler = "http_server"

type Catalog interface {
	List(ctx context.Context) ([]*domlesson.Lesson, error)
	Search(ctx context.Context, q string) ([]*domlesson.Lesson, error)
	Add(ctx context.Context, in appcatalog.AddLessonInput) (string, error)
	Update(ctx context.Context, id string, patch domlesson.Patch) error
	Delete(ctx context.Context, id string) error
}

type Admin interface {
	Login(username, password string) (string, error)
	CheckKey(key string) error
}

type Images interface {
	Save(original string, r io.Reader) (string, error)
	Remove(name string) error
	Handler() http.Handler
}

type Deps struct {
	Catalog    Catalog
	PlaceOrder application.UseCase[apporder.PlaceOrderInput, *apporder.PlaceOrderResult]
	ListOrders application.UseCase[struct{}, []*domorder.Order]
	Admin      Admin
	Images     Images
	// Metrics, when set, is served at /metrics outside the instrumented chain.
	Metrics http.Handler
}

type Handler struct {
	deps Deps
	log  observability.Logger

	httpRequests observability.Counter   // http_requests_total{method,route,status}
	httpDuration observability.Histogram // http_request_duration_seconds{method,route,status}
}

func NewHandler(deps Deps, tel observability.Observability) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{
		deps:         deps,
		log:          tel.Logger().With(observability.F("component", componentHTTPHandler)),
		httpRequests: tel.Metrics().Counter(observability.MHTTPRequests),
		httpDuration: tel.Metrics().Histogram(observability.MHTTPRequestDuration),
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	h.muxHandle(mux, "GET /{$}", h.handleRoot)
	h.muxHandle(mux, "GET /healthz", h.handleHealth)
	h.muxHandle(mux, "POST /admin/login", h.handleLogin)

	h.muxHandle(mux, "GET /lessons", h.handleListLessons)
	h.muxHandle(mux, "GET /search", h.handleSearch)
	h.muxHandle(mux, "POST /admin/lessons", h.requireAdmin(h.handleAddLesson))
	h.muxHandle(mux, "PUT /lessons/{id}", h.requireAdmin(h.handleUpdateLesson))
	h.muxHandle(mux, "DELETE /lessons/{id}", h.requireAdmin(h.handleDeleteLesson))

	h.muxHandle(mux, "GET /orders", h.handleListOrders)
	h.muxHandle(mux, "POST /orders", h.handlePlaceOrder)

	if h.deps.Images != nil {
		h.muxHandle(mux, "GET /images/", http.StripPrefix("/images/", h.deps.Images.Handler()).ServeHTTP)
	}
	if h.deps.Metrics != nil {
		mux.Handle("GET /metrics", h.deps.Metrics)
	}

	return withCORS(mux)
}

// muxHandle registers pattern behind
// Trace → request logger → HTTP metrics → access log → recover → handler.
func (h *Handler) muxHandle(mux *http.ServeMux, pattern string, handler http.HandlerFunc) {
	route := pattern
	if i := strings.IndexByte(pattern, ' '); i >= 0 {
		route = pattern[i+1:]
	}
	route = strings.TrimSuffix(route, "{$}")
	if route == "" {
		route = "/"
	}

	chain := withTrace(
		ObservabilityMiddleware(h.log)(
			h.withHTTPMetrics(
				h.withAccessLog(
					h.withRecover(handler),
				),
			),
		),
	)
	mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chain.ServeHTTP(w, r.WithContext(contextWithRoute(r.Context(), route)))
	}))
}

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "Server is running!")
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
