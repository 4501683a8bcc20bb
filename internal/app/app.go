package app

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/posify/internal/broker"
	"github.com/xenking/posify/internal/domain/customer"
	"github.com/xenking/posify/internal/domain/inventory"
	"github.com/xenking/posify/internal/domain/menu"
	"github.com/xenking/posify/internal/domain/payment"
	"github.com/xenking/posify/internal/domain/pos"
	"github.com/xenking/posify/internal/domain/table"
	"github.com/xenking/posify/internal/handler"
	"github.com/xenking/posify/internal/storage/file"
	"github.com/xenking/posify/internal/storage/memory"
	"github.com/xenking/posify/internal/storage/postgres"
	"github.com/xenking/posify/internal/ws"
	"github.com/xenking/posify/pkg/health"
	"github.com/xenking/posify/pkg/httpmiddleware"
)

type repository interface {
	pos.Repository
	health.Pinger
}

// openRepository returns the snapshot repository for the configured driver
// and a func releasing its resources.
func openRepository(ctx context.Context, cfg StorageConfig) (repository, func(), error) {
	switch cfg.Driver {
	case DriverMemory:
		return memory.New(), func() {}, nil
	case DriverFile:
		repo, err := file.New(file.Options{Dir: cfg.Dir, Compress: cfg.Compress})
		if err != nil {
			return nil, nil, errors.Wrap(err, "open file storage")
		}
		return repo, func() {}, nil
	case DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, errors.Wrap(err, "run migrations")
		}
		return postgres.NewRepository(pool), pool.Close, nil
	default:
		return nil, nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// originChecker accepts websocket upgrades from the CORS origins.
func originChecker(origins []string) func(*http.Request) bool {
	if len(origins) == 0 || slices.Contains(origins, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, origin)
	}
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage.Driver),
	)

	repo, closeRepo, err := openRepository(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeRepo()

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("storage", 5*time.Second, health.PingCheck(cfg.Storage.Driver, repo))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	hub := ws.NewHub(lg.Named("ws"))
	publishers := pos.Publishers{hub}

	var events *broker.Publisher
	if cfg.Broker.URL != "" {
		conn, err := broker.Dial(cfg.Broker.URL, cfg.Broker.Exchange)
		if err != nil {
			return errors.Wrap(err, "connect broker")
		}
		defer conn.Close()

		healthSvc.AddReadinessCheck("broker", time.Second, health.PingCheck("rabbitmq", conn))
		events = broker.NewPublisher(conn.Channel(), cfg.Broker.Exchange, lg.Named("broker"))
		publishers = append(publishers, events)
	}

	store, err := pos.Open(ctx, repo,
		pos.WithLogger(lg.Named("pos")),
		pos.WithPublisher(publishers),
		pos.WithMeterProvider(m.MeterProvider()),
	)
	if err != nil {
		return errors.Wrap(err, "open terminal state")
	}

	healthSvc.Start(ctx, 10*time.Second)

	trackLimiter := httpmiddleware.NewLimiter(httpmiddleware.RateLimitConfig{
		Max:    cfg.Track.Max,
		Window: cfg.Track.Window,
	})

	router := handler.NewRouter(handler.Config{
		Store:     store,
		Menu:      menu.NewCatalog(menu.DefaultItems()...),
		Customers: customer.NewDirectory(customer.DefaultCustomers()...),
		Tables:    table.NewFloor(table.DefaultTables()...),
		Inventory: inventory.NewStock(inventory.DefaultItems()...),
		Payments: payment.NewProcessor(
			payment.WithDelayScale(cfg.Payment.DelayScale),
			payment.WithDeclineRate(cfg.Payment.DeclineRate),
		),
		ImageBaseURL: cfg.ImageBaseURL,
		TrackLimiter: trackLimiter,
		Health:       healthSvc,
		Events:       ws.NewHandler(hub, originChecker(cfg.CORS.Origins)),
	})

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		// Card and QR payments block the request for several seconds.
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
		Addr:           cfg.Addr,
		Handler: otelhttp.NewHandler(
			httpmiddleware.Wrap(router,
				httpmiddleware.Recovery(),
				cors.Handler(cors.Options{
					AllowedOrigins:   cfg.CORS.Origins,
					AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
					AllowedHeaders:   []string{"Accept", "Content-Type", httpmiddleware.HeaderRequestID},
					ExposedHeaders:   []string{httpmiddleware.HeaderRequestID, "Retry-After"},
					AllowCredentials: cfg.CORS.AllowCredentials,
					MaxAge:           86400,
				}),
				httpmiddleware.RequestID(),
				httpmiddleware.InjectLogger(zctx.From(ctx)),
				httpmiddleware.LogRequests,
			),
			"posify",
			otelhttp.WithMeterProvider(m.MeterProvider()),
			otelhttp.WithTracerProvider(m.TracerProvider()),
		),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	if events != nil {
		g.Go(func() error {
			return events.Run(gctx)
		})
	}
	g.Go(func() error {
		trackLimiter.RunSweeper(gctx)
		return nil
	})
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		healthSvc.SetReady(true)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	// Graceful shutdown: wait for cancellation, drain, then stop.
	g.Go(func() error {
		<-gctx.Done()
		healthSvc.SetReady(false)
		if ctx.Err() != nil {
			lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
			time.Sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		return nil
	})
	return g.Wait()
}
