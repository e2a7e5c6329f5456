package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Zhima-Mochi/lessonshop/internal/application/admin"
	appcatalog "github.com/Zhima-Mochi/lessonshop/internal/application/catalog"
	apporder "github.com/Zhima-Mochi/lessonshop/internal/application/order"
	"github.com/Zhima-Mochi/lessonshop/internal/config"
	domlesson "github.com/Zhima-Mochi/lessonshop/internal/domain/lesson"
	domorder "github.com/Zhima-Mochi/lessonshop/internal/domain/order"
	"github.com/Zhima-Mochi/lessonshop/internal/infrastructure/cache"
	"github.com/Zhima-Mochi/lessonshop/internal/infrastructure/imagestore"
	"github.com/Zhima-Mochi/lessonshop/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/lessonshop/internal/infrastructure/mongo"
	infraobs "github.com/Zhima-Mochi/lessonshop/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/lessonshop/internal/infrastructure/observability/otelsetup"
	"github.com/Zhima-Mochi/lessonshop/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/lessonshop/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/lessonshop/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/lessonshop/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/lessonshop/internal/infrastructure/payment"
	"github.com/Zhima-Mochi/lessonshop/internal/observability"
	httppresentation "github.com/Zhima-Mochi/lessonshop/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/lessonshop/internal/presentation/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "lessonshop:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	baseLogger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger.Zap())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otelsetup.Setup(ctx, cfg.ServiceName, cfg.OTELEndpoint)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			baseLogger.Warn("otel_shutdown_error", observability.F("error", err))
		}
	}()

	counters, histograms := prometrics.Instruments(prometrics.New("", "", prometheus.DefaultRegisterer))
	tel := infraobs.New(oteltrace.New(cfg.ServiceName), baseLogger, counters, histograms)
	systemLogger := baseLogger.With(
		observability.F("trace_id", "system"),
		observability.F("span_id", "system"),
	)

	lessons, orders, closeStore, err := openStores(ctx, cfg, tel)
	if err != nil {
		return err
	}
	defer closeStore()
	systemLogger.Info("store_ready", observability.F("store", cfg.Store))

	var catalogRepo domlesson.Repository = lessons
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			systemLogger.Warn("redis_unavailable", observability.F("addr", cfg.RedisAddr), observability.F("error", err))
		}
		catalogRepo = cache.NewLessons(lessons, rdb, cfg.CatalogCacheTTL, tel)
		systemLogger.Info("catalog_cache_enabled", observability.F("addr", cfg.RedisAddr), observability.F("ttl", cfg.CatalogCacheTTL.String()))
	}

	images, err := imagestore.New(cfg.ImagesDir)
	if err != nil {
		return err
	}

	// In-memory event bus; order.placed is consumed for metrics and audit logging.
	bus := outbox.NewBus(systemLogger)
	worker := apporder.NewWorker(tel)
	workerpresentation.Register(bus, baseLogger, domorder.PlacedEvent{}.EventName(), worker.HandlePlaced)
	bus.Start(ctx)
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := bus.Stop(stopCtx); err != nil {
			systemLogger.Warn("outbox_stop_error", observability.F("error", err))
		}
	}()

	handler := httppresentation.NewHandler(httppresentation.Deps{
		Catalog: appcatalog.NewService(catalogRepo, tel),
		PlaceOrder: apporder.NewPlaceOrderUseCase(catalogRepo, orders, payment.NewMockProcessor(), bus, tel,
			apporder.WithCompensation(cfg.OrderCompensate),
		),
		ListOrders: apporder.NewListOrdersUseCase(orders, tel),
		Admin:      admin.NewAuthenticator(cfg.AdminUsername, cfg.AdminPassword, cfg.AdminKey),
		Images:     images,
		Metrics:    promhttp.Handler(),
	}, tel)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		systemLogger.Info("http_server_start",
			observability.F("addr", server.Addr),
			observability.F("order_compensate", cfg.OrderCompensate),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			systemLogger.Error("http_server_error", observability.F("error", err))
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error", observability.F("error", err))
		return err
	}
	systemLogger.Info("http_server_stopped")
	return nil
}

func newLogger(cfg config.Config) (*zaplogger.Logger, error) {
	l, err := zaplogger.New(zaplogger.Options{
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
		Fixed: []observability.Field{
			observability.F("service", cfg.ServiceName),
			observability.F("env", cfg.Env),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// openStores returns the lesson and order stores for cfg.Store and a func
// that releases them.
func openStores(ctx context.Context, cfg config.Config, tel observability.Observability) (domlesson.Repository, domorder.Repository, func(), error) {
	if cfg.Store == config.StoreMemory {
		return memory.NewLessonRepository(), memory.NewOrderRepository(), func() {}, nil
	}

	client, err := mongo.Connect(ctx, cfg.MongoConnectionURI(), cfg.ServiceName)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("mongo: %w", err)
	}
	db := client.Database(cfg.DBName)
	closeFn := func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			tel.Logger().Warn("mongo_disconnect_error", observability.F("error", err))
		}
	}
	return mongo.NewLessonStore(db, tel), mongo.NewOrderStore(db, tel), closeFn, nil
}
