package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/whiffwear/internal"
	"github.com/dukerupert/whiffwear/internal/cart"
	"github.com/dukerupert/whiffwear/internal/catalog"
	"github.com/dukerupert/whiffwear/internal/cookie"
	"github.com/dukerupert/whiffwear/internal/crypto"
	"github.com/dukerupert/whiffwear/internal/discount"
	"github.com/dukerupert/whiffwear/internal/domain"
	"github.com/dukerupert/whiffwear/internal/events"
	"github.com/dukerupert/whiffwear/internal/handler"
	"github.com/dukerupert/whiffwear/internal/handler/storefront"
	"github.com/dukerupert/whiffwear/internal/middleware"
	"github.com/dukerupert/whiffwear/internal/persistence"
	"github.com/dukerupert/whiffwear/internal/postgres"
	"github.com/dukerupert/whiffwear/internal/promo"
	"github.com/dukerupert/whiffwear/internal/router"
	"github.com/dukerupert/whiffwear/internal/routes"
	"github.com/dukerupert/whiffwear/internal/telemetry"
	"github.com/dukerupert/whiffwear/internal/worker"
	"github.com/dukerupert/whiffwear/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	// Initialize Sentry
	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Enabled:          cfg.Sentry.Enabled,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Debug:            cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()

	// Catalog database. Without one the storefront runs with an empty catalog.
	var (
		pool        *pgxpool.Pool
		catalogSvc  domain.CatalogService = catalog.Empty{}
		snapshotSvc *postgres.SnapshotStore
	)
	if cfg.DatabaseUrl != "" {
		logger.Info("Connecting to database...")
		pool, err = postgres.Connect(ctx, cfg.DatabaseUrl)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()
		logger.Info("Database connection established")

		logger.Info("Running database migrations...")
		sqlDB := stdlib.OpenDBFromPool(pool)
		err = internal.RunMigrations(sqlDB)
		_ = sqlDB.Close()
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Database migrations completed successfully")

		catalogSvc = postgres.NewCatalogService(pool)
	} else {
		logger.Warn("DATABASE_URL not set, serving an empty catalog")
	}

	// Metrics
	metrics := middleware.NewMetrics("whiffwear", nil)
	businessMetrics := telemetry.NewBusinessMetrics("whiffwear", nil)

	// Cookies and cart persistence
	cookieConfig := cookie.NewConfig(cfg.Cookie.Domain, cfg.Cookie.Secure)
	if cfg.Cookie.Secret != "" {
		key, err := crypto.DecodeKeyBase64(cfg.Cookie.Secret)
		if err != nil {
			return fmt.Errorf("COOKIE_SECRET: %w", err)
		}
		sealer, err := crypto.NewAESEncryptor(key)
		if err != nil {
			return fmt.Errorf("COOKIE_SECRET: %w", err)
		}
		cookieConfig.Sealer = sealer
	}

	var slots storefront.SlotFunc
	switch cfg.Cart.Backend {
	case internal.CartBackendRedis:
		store, err := persistence.NewRedisStore(persistence.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Cart.Retention)
		if err != nil {
			return err
		}
		defer store.Close()
		slots = storefront.SessionSlots(store.Slot)
	case internal.CartBackendPostgres:
		snapshotSvc = postgres.NewSnapshotStore(pool, cfg.Cart.Retention)
		slots = storefront.SessionSlots(snapshotSvc.Slot)
	case internal.CartBackendMemory:
		slots = storefront.SessionSlots(persistence.NewMemoryStore().Slot)
	default:
		slots = storefront.CookieSlots(cookieConfig, cfg.Cart.Retention)
	}
	logger.Info("Cart persistence configured", "backend", cfg.Cart.Backend, "retention", cfg.Cart.Retention)

	// Discount table: the promoted code plus the standing codes
	precision := discount.WholeUnits
	if cfg.Cart.DiscountRounding == "cents" {
		precision = discount.Cents
	}
	codes := append(discount.DefaultCodes(), domain.DiscountCode{
		Code:  cfg.Promo.Code,
		Kind:  domain.DiscountPercentage,
		Value: cfg.Promo.Percent,
	})
	discounts := discount.NewEngine(codes, discount.WithPrecision(precision))

	carts := storefront.NewCarts(slots, discounts,
		storefront.WithRetention(cfg.Cart.Retention),
		storefront.WithObserver(businessMetrics),
		storefront.WithRestoreFailureHook(businessMetrics.RestoreFailed),
	)

	// Checkout handoff
	var handoff cart.Handoff = events.LogHandoff{Logger: logger}
	if cfg.RabbitMQURL != "" {
		conn, err := events.Dial(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			return fmt.Errorf("failed to open RabbitMQ channel: %w", err)
		}
		defer ch.Close()

		publisher, err := events.NewRabbitPublisher(ch, logger)
		if err != nil {
			return err
		}
		handoff = publisher
		logger.Info("Checkout handoff publishing to RabbitMQ", "exchange", events.EventsExchange)
	} else if cfg.NATSURL != "" {
		nc, err := events.ConnectNATS(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer nc.Drain()

		handoff = events.NewNATSPublisher(nc, logger)
		logger.Info("Checkout handoff publishing to NATS", "subject", events.CartCheckedOutSubject)
	} else {
		logger.Warn("No broker configured, checkouts are logged only")
	}

	// Load templates with renderer
	logger.Info("Loading templates...")
	renderer, err := handler.NewRenderer(web.Templates())
	if err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}
	logger.Info("Templates loaded successfully")

	offer := promo.DefaultOffer
	offer.Code = domain.NormalizeDiscountCode(cfg.Promo.Code)
	offer.Message = fmt.Sprintf("checkout for %s%% off your first order!", cfg.Promo.Percent.Shift(2).String())

	storefrontDeps := routes.StorefrontDeps{
		HomeHandler:          storefront.NewHomeHandler(catalogSvc, carts, renderer),
		ProductListHandler:   storefront.NewProductListHandler(catalogSvc, carts, renderer),
		ProductDetailHandler: storefront.NewProductDetailHandler(catalogSvc, carts, renderer, businessMetrics),
		CategoryHandler:      storefront.NewCategoryHandler(catalogSvc, carts, renderer),
		CartHandler:          storefront.NewCartHandler(catalogSvc, carts, renderer, handoff, businessMetrics),
		PromoHandler: storefront.NewPromoHandler(cookieConfig, carts, renderer,
			storefront.WithOffer(offer),
			storefront.WithPromoDelay(cfg.Promo.Delay),
			storefront.WithPromoMetrics(businessMetrics),
		),
	}

	r := router.New(
		telemetry.SentryMiddleware(),
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		middleware.Session(cookieConfig, cfg.Cart.Retention),
		middleware.WithRequestLogger(logger),
		router.Logger(logger),
	)

	r.Static("/static/", web.Static())

	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if pool != nil {
			if err := pool.Ping(req.Context()); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	routes.RegisterStorefrontRoutes(r, storefrontDeps)

	// Sweep expired server-side snapshots
	if snapshotSvc != nil && cfg.Cart.Retention > 0 {
		sweeper := worker.NewWorker(snapshotSvc, worker.Config{Interval: cfg.Cart.SweepInterval}, logger)
		go func() {
			if err := sweeper.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("snapshot sweeper stopped", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30*time.Second + cfg.Promo.Delay,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Starting storefront server", "address", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
