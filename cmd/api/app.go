package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/auth"
	"github.com/BruksfildServices01/clinic-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/clinic-scheduler/internal/db"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/clinic-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/clinic-scheduler/internal/logging"
	"github.com/BruksfildServices01/clinic-scheduler/internal/metrics"
	"github.com/BruksfildServices01/clinic-scheduler/internal/ratelimit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/routes"
	"github.com/BruksfildServices01/clinic-scheduler/internal/usecase/account"
	usecaseAppointment "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/appointment"
)

// app holds the process-wide singletons shared by every subcommand.
type app struct {
	cfg *config.Config
	log zerolog.Logger

	db           *gorm.DB
	users        user.Repository
	slots        slot.Registry
	appointments domain.Repository
	auditSink    audit.Sink
	audit        *audit.Dispatcher
	tokens       *auth.TokenService

	closers []func()
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	a := &app{
		cfg: cfg,
		log: logging.New(cfg.Env, cfg.LogLevel),
		tokens: auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL,
			auth.WithLeeway(cfg.TokenLeeway),
		),
	}

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store := memory.New()
		a.users, a.slots, a.appointments, a.auditSink = store, store, store, store
		a.log.Warn().Msg("using in-memory store, data is lost on exit")

	default:
		db, err := dbpkg.NewDB(cfg)
		if err != nil {
			return nil, err
		}
		if err := dbpkg.Migrate(db); err != nil {
			return nil, err
		}
		a.db = db
		a.users = repository.NewUserGormRepository(db)
		a.slots = repository.NewSlotGormRepository(db)
		a.appointments = repository.NewAppointmentGormRepository(db)
		a.auditSink = repository.NewAuditGormRepository(db)

		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, func() { _ = sqlDB.Close() })
		}
	}

	a.audit = audit.NewDispatcher(audit.New(a.auditSink), a.log)
	return a, nil
}

// Close drains the audit queue before the store goes away.
func (a *app) Close() {
	a.audit.Close()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) reconcile(ctx context.Context) (int64, error) {
	return usecaseAppointment.NewReconcileSlots(a.slots, a.audit).Execute(a.log.WithContext(ctx))
}

func (a *app) createAdmin(ctx context.Context, email, password string) (*account.Session, error) {
	return account.NewSignup(a.users, a.tokens, a.audit, true).Execute(ctx, account.SignupInput{
		Email:    email,
		Password: password,
		Role:     string(role.Admin),
	})
}

// loginThrottle is Redis-backed when REDIS_URL is set, a no-op otherwise.
func (a *app) loginThrottle(ctx context.Context) ratelimit.LoginThrottle {
	if a.cfg.RedisURL == "" {
		return ratelimit.NopThrottle{}
	}

	client, err := ratelimit.NewRedisClient(a.cfg.RedisURL)
	if err != nil {
		a.log.Warn().Err(err).Msg("login throttle disabled")
		return ratelimit.NopThrottle{}
	}
	a.closers = append(a.closers, func() { _ = client.Close() })

	if err := client.Ping(ctx).Err(); err != nil {
		a.log.Warn().Err(err).Msg("redis unreachable, login throttle fails open until it returns")
	}

	return ratelimit.NewRedisThrottle(client, ratelimit.RedisConfig{
		MaxFailures: a.cfg.LoginMaxFailures,
		Window:      a.cfg.LoginFailureWindow,
	}, a.log)
}

func (a *app) health(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func runServer(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.ReconcileOnStart {
		if _, err := a.reconcile(ctx); err != nil {
			a.log.Error().Err(err).Msg("startup reconcile failed")
		}
	}

	if !a.cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := routes.NewRouter(routes.Deps{
		Config:       a.cfg,
		Logger:       a.log,
		Users:        a.users,
		Slots:        a.slots,
		Appointments: a.appointments,
		AuditSink:    a.auditSink,
		Audit:        a.audit,
		Tokens:       a.tokens,
		Throttle:     a.loginThrottle(ctx),
		Metrics:      metrics.New(reg),
		Gatherer:     reg,
		Health:       a.health,
	})

	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Str("store", a.cfg.StoreDriver).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.log.Info().Msg("server stopped")
	return nil
}
