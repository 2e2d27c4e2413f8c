package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/iliyamo/dantour/internal/config"
	"github.com/iliyamo/dantour/internal/crypto"
	"github.com/iliyamo/dantour/internal/database"
	"github.com/iliyamo/dantour/internal/handler"
	"github.com/iliyamo/dantour/internal/logging"
	"github.com/iliyamo/dantour/internal/metrics"
	"github.com/iliyamo/dantour/internal/middleware"
	"github.com/iliyamo/dantour/internal/payment"
	"github.com/iliyamo/dantour/internal/queue"
	"github.com/iliyamo/dantour/internal/repository"
	"github.com/iliyamo/dantour/internal/router"
	"github.com/iliyamo/dantour/internal/service"
	"github.com/iliyamo/dantour/internal/storage"
	"github.com/iliyamo/dantour/internal/tracing"
)

// shutdownTimeout bounds the graceful drain of in-flight requests.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Runs the HTTP API until SIGINT or SIGTERM.  When EVENTS_CONSUMER_ENABLED
is set the booking audit-log consumer runs in the same process.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	obs := config.LoadObservabilityConfig()
	log := logging.Setup(cfg.ServiceName, obs)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if obs.TracingEnabled {
		tp, err := tracing.InitTracerProvider(cfg.ServiceName, obs.JaegerEndpoint)
		if err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := tp.Shutdown(sctx); err != nil {
				log.Warn().Err(err).Msg("tracer shutdown")
			}
		}()
	} else {
		tracing.InitPropagator()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(reg); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	db, err := database.Open(cfg.DB())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	gdb, err := database.OpenGorm(db)
	if err != nil {
		return fmt.Errorf("failed to open gorm: %w", err)
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn().Msg("redis unavailable; cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	var media storage.ObjectStore = storage.Noop{}
	if scfg := config.LoadStorageConfig(); scfg.Enabled {
		s3, err := storage.NewS3Store(ctx, scfg)
		if err != nil {
			log.Warn().Err(err).Msg("object storage disabled")
		} else {
			media = s3
		}
	}

	ccfg := config.LoadCryptoConfig()
	keys, err := crypto.NewStaticKeys(ccfg)
	if err != nil {
		return fmt.Errorf("failed to load encryption keys: %w", err)
	}
	cipher, err := crypto.NewFieldCipherHex(keys, ccfg.FingerprintKey)
	if err != nil {
		return fmt.Errorf("failed to build field cipher: %w", err)
	}

	ecfg := config.LoadEventsConfig()
	publisher := queue.NewPublisher(ecfg)
	defer publisher.Close()

	h := buildHandlers(cfg, db, gdb, media, cipher, publisher)
	e := router.New(h, router.Options{
		JWTSecret: cfg.JWTSecret,
		DB:        db,
		Gatherer:  reg,
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if consumer := queue.NewConsumer(ecfg, queue.NewAuditLog(ecfg.AuditLogPath)); consumer != nil {
		g.Go(func() error {
			log.Info().Str("broker", ecfg.Broker).Str("audit_log", ecfg.AuditLogPath).Msg("booking consumer started")
			if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(sctx)
	})
	return g.Wait()
}

// buildHandlers wires repositories, services and handlers.
func buildHandlers(cfg config.Config, db *sql.DB, gdb *gorm.DB, media storage.ObjectStore,
	cipher *crypto.FieldCipher, publisher queue.Publisher) router.Handlers {
	txm := repository.NewTxManager(db)
	users := repository.NewUserRepo(db)
	products := repository.NewProductRepo(db)
	tours := repository.NewTourRepo(db)
	taxonomy := repository.NewTaxonomyRepo(db)
	amenities := repository.NewAmenityRepo(db)

	catalog := service.NewCatalogService(txm, products, taxonomy, amenities, tours,
		service.DefaultRegistry(tours, repository.NewRentalRepo(db)), media)
	bookings := service.NewBookingService(txm, repository.NewBookingRepo(db), tours, products, publisher)
	accounts := service.NewPaymentAccountService(repository.NewPaymentAccountRepo(db), cipher)

	pcfg := config.LoadPaymentConfig()
	payments := service.NewPaymentService(payment.NewWompi(pcfg.Wompi, nil), payment.NewBlink(pcfg.Blink), bookings, accounts)

	return router.Handlers{
		Auth:            handler.NewAuthHandler(cfg, users, repository.NewTokenRepo(db)),
		Products:        handler.NewProductHandler(catalog, cfg.UploadMaxMB, cfg.UploadTimeout),
		Bookings:        handler.NewBookingHandler(bookings),
		Panel:           handler.NewPanelHandler(service.NewPanelService(repository.NewPanelRepo(db))),
		Ratings:         handler.NewRatingHandler(service.NewRatingService(txm, repository.NewRatingRepo(db), products)),
		Payments:        handler.NewPaymentHandler(payments),
		PaymentAccounts: handler.NewPaymentAccountHandler(accounts),
		Comments:        handler.NewCommentHandler(repository.NewCommentRepo(gdb)),
		FAQs:            handler.NewFAQHandler(repository.NewFAQRepo(gdb), products),
		Favorites:       handler.NewFavoriteHandler(repository.NewFavoriteRepo(db)),
		Taxonomy:        handler.NewTaxonomyHandler(taxonomy, amenities),
		Roles:           handler.NewRoleHandler(repository.NewRoleRepo(db)),
		Users:           handler.NewUserHandler(users),
		Blog:            handler.NewBlogHandler(repository.NewBlogRepo(gdb)),
	}
}
