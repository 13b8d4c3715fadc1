package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/attendance"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/audit"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/auth"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/notifications"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/review"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/platform/config"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/platform/db"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/platform/debounce"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/platform/email"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/platform/events"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/platform/jobs"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/platform/metrics"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/api"
	attendancehandler "github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/handlers/attendance"
	audithandler "github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/handlers/audit"
	authhandler "github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/handlers/auth"
	notificationshandler "github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/handlers/notifications"
	reviewhandler "github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/handlers/review"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/middleware"
)

const shutdownTimeout = 15 * time.Second

// Deps are the services the HTTP layer routes to.
type Deps struct {
	Config        config.Config
	Auth          *auth.Service
	Reviews       *review.Service
	Attendance    *attendance.Service
	Audit         *audit.Service
	Notifications *notifications.Service
	Metrics       *metrics.Collector
	Ready         func(ctx context.Context) error
}

type App struct {
	Config    config.Config
	DB        *pgxpool.Pool
	Router    http.Handler
	jobs      *jobs.Service
	autosave  *debounce.Keyed
	publisher events.Publisher
	stopJobs  context.CancelFunc
}

// New connects to the database, prepares the schema and wires every
// service behind the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	schedule, err := attendance.ParseSchedule(cfg.OfficeAMStart, cfg.OfficeAMEnd, cfg.OfficePMStart, cfg.OfficePMEnd)
	if err != nil {
		return nil, fmt.Errorf("office schedule: %w", err)
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	collector := metrics.New()
	auditService := audit.New(audit.NewStore(pool))
	notificationStore := notifications.NewStore(pool)
	notificationService := notifications.New(notificationStore, email.New(cfg), cfg.EmailFrom)
	publisher := events.New(cfg.KafkaBrokers, cfg.KafkaTopic)

	jobCtx, stopJobs := context.WithCancel(context.Background())
	queue := jobs.New(jobs.NewStore(pool), 0)
	queue.Start(jobCtx)

	sink := review.AsyncSink{
		Dispatcher: queue,
		Sink: review.MultiSink{
			audit.ReviewSink{Service: auditService},
			notifications.ReviewSink{Service: notificationService, Store: notificationStore},
			review.BrokerSink{Publisher: publisher},
			review.SinkFunc(func(_ context.Context, evt review.Event) error {
				if evt.Kind == review.EventTransition {
					collector.RecordTransition(string(evt.To))
				}
				return nil
			}),
		},
	}
	autosave := debounce.New(cfg.AutosaveQuietPeriod)

	deps := Deps{
		Config:        cfg,
		Auth:          auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL),
		Reviews:       review.NewService(review.NewStore(pool), sink, autosave),
		Attendance:    attendance.NewService(attendance.NewStore(pool), schedule),
		Audit:         auditService,
		Notifications: notificationService,
		Metrics:       collector,
		Ready:         pool.Ping,
	}
	if !cfg.MetricsEnabled {
		deps.Metrics = nil
	}

	return &App{
		Config:    cfg,
		DB:        pool,
		Router:    NewRouter(deps),
		jobs:      queue,
		autosave:  autosave,
		publisher: publisher,
		stopJobs:  stopJobs,
	}, nil
}

// Close stops background work. Draft events still inside their quiet
// period are dropped.
func (a *App) Close() {
	a.autosave.Stop()
	a.stopJobs()
	if err := a.publisher.Close(); err != nil {
		slog.Warn("event publisher close failed", "err", err)
	}
	a.DB.Close()
}

func NewRouter(deps Deps) http.Handler {
	perms := auth.StaticPermissions{}
	isProd := deps.Config.Environment == "production"
	var recorder attendancehandler.AuditRecorder
	if deps.Audit != nil {
		recorder = deps.Audit
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(deps.Metrics))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(isProd))
	router.Use(middleware.BodyLimit(deps.Config.MaxBodyBytes))
	router.Use(middleware.Auth(deps.Auth))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if deps.Metrics != nil {
		router.With(middleware.RequirePermission(auth.PermMetricsRead, perms)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, deps.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(deps.Config.RateLimitPerMinute))
		r.Use(middleware.SensitiveMutationRateLimit(deps.Config.RateLimitPerMinute))

		authhandler.NewHandler(deps.Auth, recorder).RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			reviewhandler.NewHandler(deps.Reviews, perms).RegisterRoutes(r)
			attendancehandler.NewHandler(deps.Attendance, perms, recorder).RegisterRoutes(r)
			audithandler.NewHandler(deps.Audit, perms).RegisterRoutes(r)
			notificationshandler.NewHandler(deps.Notifications, perms).RegisterRoutes(r)
		})
	})

	return router
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func Run() error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
