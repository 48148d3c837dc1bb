package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/kosta-developer/DEVELOPER-Back/common/logger"
	commonmetrics "github.com/kosta-developer/DEVELOPER-Back/common/metrics"
	"github.com/kosta-developer/DEVELOPER-Back/common/telemetry"
	"github.com/kosta-developer/DEVELOPER-Back/internal/auth"
	"github.com/kosta-developer/DEVELOPER-Back/internal/config"
	"github.com/kosta-developer/DEVELOPER-Back/internal/db"
	"github.com/kosta-developer/DEVELOPER-Back/internal/events"
	"github.com/kosta-developer/DEVELOPER-Back/internal/health"
	"github.com/kosta-developer/DEVELOPER-Back/internal/host"
	"github.com/kosta-developer/DEVELOPER-Back/internal/kafka"
	"github.com/kosta-developer/DEVELOPER-Back/internal/lesson"
	"github.com/kosta-developer/DEVELOPER-Back/internal/messaging"
	domainmetrics "github.com/kosta-developer/DEVELOPER-Back/internal/metrics"
	"github.com/kosta-developer/DEVELOPER-Back/internal/middleware"
	"github.com/kosta-developer/DEVELOPER-Back/internal/review"
	"github.com/kosta-developer/DEVELOPER-Back/internal/studyroom"
	"github.com/kosta-developer/DEVELOPER-Back/internal/tutor"
	"github.com/kosta-developer/DEVELOPER-Back/internal/user"
	"github.com/kosta-developer/DEVELOPER-Back/internal/workflow"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const healthSyncInterval = 15 * time.Second

type App struct {
	config     *config.Config
	router     chi.Router
	server     *http.Server
	grpcServer *grpc.Server
	db         *bun.DB
	publisher  events.Publisher
	telemetry  *telemetry.Telemetry
	checker    *health.Checker
	health     *grpchealth.Server
	stopWatch  context.CancelFunc
	logger     *slog.Logger
}

func New(ctx context.Context) (*App, error) {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application", "commit", GitCommit, "built", BuildTime)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env, "messaging", cfg.Messaging.Driver)

	tel, err := telemetry.Init(ctx, telemetry.Options{
		ServiceName:    ServiceName,
		ServiceVersion: Version,
		Env:            cfg.Env,
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
	}, slogLogger)
	if err != nil {
		return nil, err
	}
	m := tel.Metrics

	domain, err := domainmetrics.New(m.Meter())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize domain metrics: %w", err)
	}

	database, err := db.New(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := m.Database.RegisterDB(database.DB, m.Meter()); err != nil {
		slogLogger.Warn("failed to register connection pool metrics", "error", err)
	}
	if cfg.Database.MigrateOnBoot {
		if err := db.RunMigrations(ctx, database); err != nil {
			db.Close(database)
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	publisher, err := newPublisher(cfg.Messaging, slogLogger, tel)
	if err != nil {
		db.Close(database)
		return nil, err
	}

	app := &App{
		config:    cfg,
		db:        database,
		publisher: publisher,
		telemetry: tel,
		logger:    slogLogger,
	}

	app.checker = health.NewChecker(m, slogLogger, dependencyChecks(cfg.Messaging.Driver, database, publisher)...)
	app.router = newRouter(cfg, database, m, domain, publisher, app.checker, slogLogger)

	app.grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(m.Grpc.UnaryServerInterceptor()))
	app.health = grpchealth.NewServer()
	grpc_health_v1.RegisterHealthServer(app.grpcServer, app.health)

	slogLogger.Info("application initialized successfully")
	return app, nil
}

// newRouter wires repositories, services and handlers onto one chi router.
// Health routes stay outside the identity middleware.
func newRouter(
	cfg *config.Config,
	database *bun.DB,
	m *commonmetrics.Metrics,
	domain *domainmetrics.Metrics,
	publisher events.Publisher,
	checker *health.Checker,
	logger *slog.Logger,
) chi.Router {
	userRepo := user.NewRepository(database, m)
	tutorRepo := tutor.NewRepository(database, m)
	hostRepo := host.NewRepository(database, m)
	lessonRepo := lesson.NewRepository(database, m)
	studyroomRepo := studyroom.NewRepository(database, m)
	reviewRepo := review.NewRepository(database, m)
	authRepo := auth.NewRepository(database, m)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	cookie := auth.CookieOptions{Secure: cfg.Auth.SecureCookies, MaxAge: cfg.Auth.AccessTokenTTL()}

	authService := auth.NewService(authRepo, userRepo, hostRepo, tokens, cfg.Auth.RefreshTokenTTL(), domain, logger)
	lessonService := lesson.NewService(lessonRepo, tutorRepo, domain)
	reviewService := review.NewService(reviewRepo, lessonRepo, domain)
	workflowService := workflow.NewService(workflow.Stores{
		Users:      userRepo,
		Tutors:     tutorRepo,
		Hosts:      hostRepo,
		Lessons:    lessonRepo,
		Studyrooms: studyroomRepo,
	}, publisher, domain, logger)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	health.NewHandler(checker).RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(auth.IdentityMiddleware(tokens, logger))

		auth.NewHandler(authService, logger, cookie).RegisterRoutes(r)
		lesson.NewHandler(lessonService, logger).RegisterRoutes(r)
		review.NewHandler(reviewService, logger).RegisterRoutes(r)
		workflow.NewHandler(workflowService, logger).RegisterRoutes(r)
	})

	return router
}

// pinger is implemented by publishers holding a live broker connection.
type pinger interface {
	Ping(ctx context.Context) error
}

// dependencyChecks lists what /ready and gRPC health probe: always the
// database, plus the NATS connection when events go there.
func dependencyChecks(driver string, database *bun.DB, publisher events.Publisher) []health.Check {
	checks := []health.Check{{Name: "postgres", Ping: database.PingContext}}
	if p, ok := publisher.(pinger); ok && driver == "nats" {
		checks = append(checks, health.Check{Name: "nats", Ping: p.Ping})
	}
	return checks
}

// newPublisher picks the event sink named by messaging.driver.
func newPublisher(cfg config.MessagingConfig, logger *slog.Logger, tel *telemetry.Telemetry) (events.Publisher, error) {
	switch cfg.Driver {
	case "nats":
		producer, err := messaging.NewProducer(cfg.URL, cfg.Subject, logger, tel.Metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to create NATS producer: %w", err)
		}
		logger.Info("NATS producer initialized", "url", cfg.URL, "subject", cfg.Subject)
		return producer, nil
	case "kafka":
		producer, err := kafka.NewProducer(cfg.Brokers, cfg.Topic, logger, tel.Metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
		}
		logger.Info("Kafka producer initialized", "brokers", cfg.Brokers, "topic", cfg.Topic)
		return producer, nil
	}
	logger.Info("event publishing disabled")
	return events.Nop{}, nil
}

// Run serves HTTP and gRPC until one of them stops.
func (a *App) Run() error {
	watchCtx, cancel := context.WithCancel(context.Background())
	a.stopWatch = cancel
	go health.Watch(watchCtx, a.checker, a.health, healthSyncInterval)

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", a.config.Grpc.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}

	errs := make(chan error, 2)
	go func() {
		a.logger.Info("gRPC server starting", "port", a.config.Grpc.Port)
		errs <- a.grpcServer.Serve(lis)
	}()
	go func() {
		a.logger.Info("server starting", "port", a.config.Server.Port)
		if err := a.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errs <- err
			return
		}
		errs <- nil
	}()

	return <-errs
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	if a.stopWatch != nil {
		a.stopWatch()
	}
	a.health.Shutdown()

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	a.grpcServer.GracefulStop()

	if err := a.publisher.Close(); err != nil {
		a.logger.Error("event publisher close error", "error", err)
	}
	db.Close(a.db)

	if err := a.telemetry.Shutdown(ctx, a.logger); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
