package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/md-rashed-zaman/barberbook/libs/config"
	"github.com/md-rashed-zaman/barberbook/libs/db"
	"github.com/md-rashed-zaman/barberbook/libs/httpx"
	"github.com/md-rashed-zaman/barberbook/libs/kafkax"
	otelx "github.com/md-rashed-zaman/barberbook/libs/otel"
	"github.com/md-rashed-zaman/barberbook/libs/runtime"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/catalog"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/guard"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/handlers"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/metrics"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/outbox"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/session"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/storage"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/wizard"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/migrations"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("load .env failed", "err", err)
		os.Exit(1)
	}
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := runtime.NewLogger(cfg.Name, cfg.LogLevel)

	ctx, stop := runtime.SignalContext(logger)
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(cfg.Name))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	cat, err := buildCatalog(cfg, logger)
	if err != nil {
		logger.Error("invalid booking window", "err", err)
		os.Exit(1)
	}
	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)
	var checks []runtime.ReadyCheck

	var store storage.Store
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set; appointments are kept in memory")
		store = storage.NewMemoryStore()
	} else {
		if cfg.AutoMigrate {
			version, err := db.Migrate(cfg.DatabaseURL, migrations.FS)
			if err != nil {
				logger.Error("migrations failed", "err", err)
				os.Exit(1)
			}
			logger.Info("migrations applied", "version", version)
		}
		pool, err := db.Open(ctx, cfg.DatabaseURL, db.PoolConfig{MaxConns: int32(cfg.DBMaxConns)})
		if err != nil {
			logger.Error("db connection failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		checks = append(checks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})

		outboxRepo := outbox.NewRepository()
		store = storage.NewBookingRepository(pool, outboxRepo)

		publisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
			Brokers:   cfg.KafkaBrokers,
			PollEvery: cfg.OutboxPoll,
			BatchSize: cfg.OutboxBatch,
		})
		go publisher.Run(ctx)
		if len(cfg.KafkaBrokers) > 0 {
			checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(cfg.KafkaBrokers)})
		}
	}

	var cache availability.OccupiedCache
	var limiter httpx.Limiter = httpx.NewMemoryLimiter(cfg.RateLimit, cfg.RateWindow)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "err", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer func() { _ = rdb.Close() }()
		cache = availability.NewCache(rdb, cfg.SlotCacheTTL)
		limiter = httpx.NewRedisLimiter(rdb, cfg.RateLimit, cfg.RateWindow, "rl:public")
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	resolver := availability.NewResolver(store, cache, logger, bookingMetrics, cfg.StoreTimeout)
	bookingGuard := guard.New(store, resolver, logger, bookingMetrics, cfg.StoreTimeout)
	sessions := session.NewRegistry(func() *wizard.Wizard {
		return wizard.New(cat, resolver, bookingGuard)
	}, cfg.SessionTTL, logger, bookingMetrics)
	go sessions.Run(ctx, cfg.SweepInterval)

	validate := handlers.NewValidator()
	mux := runtime.NewBaseMux(checks...)
	mux.Handle("/metrics", promhttp.Handler())
	handlers.Register(mux,
		handlers.NewCatalogHandler(cat),
		handlers.NewBookingHandler(cat, resolver, bookingGuard, validate, logger),
		handlers.NewWizardHandler(sessions, validate, logger),
	)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.DefaultCORSPolicy(cfg.CORSOrigins)),
		httpx.ForMethods(
			httpx.RateLimit(limiter, logger, cfg.RateFailOpen),
			[]string{http.MethodPost},
			"/api/v1/public/book", "/api/v1/public/wizard",
		),
		httpx.WithBodyLimit(int64(cfg.MaxBodyBytes)),
		httpx.WithTimeout(cfg.RequestTimeout),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr, "booking_days", len(cat.Days()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

// buildCatalog uses BOOKING_DATES when set, otherwise a rolling window that skips Sundays.
func buildCatalog(cfg serviceConfig, logger *slog.Logger) (*catalog.Catalog, error) {
	if len(cfg.BookingDates) > 0 {
		days, err := catalog.ParseDays(cfg.BookingDates)
		if err != nil {
			return nil, err
		}
		return catalog.New(days), nil
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("unknown BOOKING_TIMEZONE; using UTC", "timezone", cfg.Timezone, "err", err)
		loc = time.UTC
	}
	return catalog.NewRolling(func() time.Time { return time.Now().In(loc) }, cfg.WindowDays, time.Sunday), nil
}
