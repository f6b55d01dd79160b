package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	jwttoken "verigate/internal/jwt_token"
	"verigate/internal/platform/config"
	"verigate/internal/platform/httpserver"
	"verigate/internal/platform/kafka"
	"verigate/internal/platform/logger"
	"verigate/internal/platform/redis"
	"verigate/internal/provider"
	"verigate/internal/provider/bridge"
	"verigate/internal/provider/fake"
	"verigate/internal/provisioning"
	"verigate/internal/verification/documents"
	"verigate/internal/verification/handler"
	"verigate/internal/verification/lock"
	"verigate/internal/verification/metrics"
	"verigate/internal/verification/service"
	"verigate/internal/verification/store"
	"verigate/pkg/platform/audit"
	"verigate/pkg/platform/audit/publisher"
	auditmemory "verigate/pkg/platform/audit/store/memory"
	auditpostgres "verigate/pkg/platform/audit/store/postgres"
	"verigate/pkg/platform/circuit"
	"verigate/pkg/platform/httputil"
	"verigate/pkg/platform/middleware/auth"
	"verigate/pkg/platform/middleware/metadata"
	"verigate/pkg/platform/middleware/request"
	"verigate/pkg/platform/middleware/requesttime"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	configPath := flag.String("config", os.Getenv("VERIGATE_CONFIG"), "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("verigate stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	m := metrics.New()

	deps, cleanup, err := buildInfrastructure(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	auditPublisher := publisher.NewPublisher(deps.auditStore,
		publisher.WithAsyncBuffer(256),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	client := buildProvider(cfg.Provider, m, log)
	deps.checks = append(deps.checks, func(context.Context) error {
		if !client.Healthy() {
			return errors.New("provider circuit open")
		}
		return nil
	})

	svc := service.New(deps.stores, deps.tx, client, documents.NewLocalStore(cfg.Files.Root),
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithAuditPublisher(auditPublisher),
		service.WithProvisioner(deps.provisioner),
		service.WithLocker(deps.locker),
	)

	validator := jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer))

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Recovery(log))
	r.Use(request.Logger(log))
	r.Get("/healthz", deps.healthHandler(log))
	r.Handle("/metrics", promhttp.Handler())
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin(validator, log))
		handler.New(svc, log).Register(r)
	})

	srv := httpserver.New(cfg.Server.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting verigate", "addr", cfg.Server.Addr, "provider_mode", cfg.Provider.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down verigate")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type infrastructure struct {
	stores      service.Stores
	tx          service.StoreTx
	auditStore  audit.Store
	locker      lock.Locker
	provisioner provisioning.Provisioner
	checks      []func(context.Context) error
}

func (d *infrastructure) healthHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range d.checks {
			if err := check(r.Context()); err != nil {
				log.WarnContext(r.Context(), "health check failed", "error", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func buildInfrastructure(ctx context.Context, cfg config.Config, log *slog.Logger) (*infrastructure, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*infrastructure, func(), error) {
		cleanup()
		return nil, func() {}, err
	}

	deps := &infrastructure{provisioner: provisioning.Noop{}}

	if cfg.Database.URL != "" {
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			return fail(fmt.Errorf("open database: %w", err))
		}
		closers = append(closers, func() { _ = db.Close() })
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		if err := db.PingContext(ctx); err != nil {
			return fail(fmt.Errorf("ping database: %w", err))
		}
		if cfg.Database.Migrate {
			if err := store.Migrate(ctx, db); err != nil {
				return fail(fmt.Errorf("migrate: %w", err))
			}
		}
		deps.stores = service.Stores{
			Submissions:  store.NewPostgresSubmissionStore(db),
			Documents:    store.NewPostgresDocumentStore(db),
			Persons:      store.NewPostgresPersonStore(db),
			Integrations: store.NewPostgresIntegrationStore(db),
		}
		deps.tx = newVerificationPostgresTx(db)
		deps.auditStore = auditpostgres.New(db)
		deps.checks = append(deps.checks, db.PingContext)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		deps.stores = service.Stores{
			Submissions:  store.NewInMemorySubmissionStore(),
			Documents:    store.NewInMemoryDocumentStore(),
			Persons:      store.NewInMemoryPersonStore(),
			Integrations: store.NewInMemoryIntegrationStore(),
		}
		deps.tx = store.NewShardedTx()
		deps.auditStore = auditmemory.NewInMemoryStore()
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fail(err)
	}
	if rc != nil {
		closers = append(closers, func() { _ = rc.Close() })
		deps.locker = lock.NewRedisLocker(rc.Client, cfg.Redis.LockTTL)
		deps.checks = append(deps.checks, rc.Health)
	} else {
		deps.locker = lock.NewMemoryLocker(cfg.Redis.LockTTL)
	}

	kc, err := kafka.New(cfg.Kafka)
	if err != nil {
		return fail(err)
	}
	if kc != nil {
		closers = append(closers, kc.Close)
		if err := kafka.EnsureTopic(ctx, kc, cfg.Kafka.ProvisioningTopic, cfg.Kafka.Partitions); err != nil {
			return fail(err)
		}
		deps.provisioner = provisioning.NewKafkaProvisioner(kc, cfg.Kafka.ProvisioningTopic,
			provisioning.WithLogger(log),
		)
		deps.checks = append(deps.checks, kc.Ping)
	}

	return deps, cleanup, nil
}

func buildProvider(cfg config.ProviderConfig, m *metrics.Metrics, log *slog.Logger) *provider.Guarded {
	var inner provider.Client
	if cfg.Mode == "bridge" {
		inner = bridge.New(cfg.BaseURL, cfg.APIKey, cfg.Timeout, bridge.WithObserver(m))
	} else {
		log.Warn("using the in-process fake provider")
		inner = fake.New()
	}
	return provider.NewGuarded(inner, circuit.New("provider"), log)
}
