// The devserver binary runs the development backend: the HTTP auth API the
// portal's gateway client talks to. Stores are selected from configuration:
// memory by default, PostgreSQL when DATABASE_URL is set, Redis-backed
// revocation when REDIS_URL is set.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"educonnect/internal/devbackend"
	"educonnect/internal/devbackend/audit"
	"educonnect/internal/devbackend/handler"
	"educonnect/internal/devbackend/store/authcode"
	"educonnect/internal/devbackend/store/revocation"
	"educonnect/internal/devbackend/store/user"
	"educonnect/internal/devbackend/token"
	"educonnect/internal/platform/config"
	"educonnect/internal/platform/httpserver"
	"educonnect/internal/platform/logger"
	"educonnect/internal/platform/metrics"
	platformredis "educonnect/internal/platform/redis"
)

func main() {
	cfg := config.DevServerFromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, cleanup, err := buildUserStore(ctx, cfg)
	if err != nil {
		log.Error("user store init failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	revocations, err := buildRevocationStore(ctx, cfg)
	if err != nil {
		log.Error("revocation store init failed", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	svc := devbackend.NewService(
		users,
		authcode.NewMemoryStore(),
		revocations,
		token.NewService(cfg.JWTSigningKey, "educonnect-dev", "educonnect"),
		audit.NewPublisher(audit.NewMemoryStore()),
		m,
		log,
		cfg.AccessTTL,
	)

	h := handler.New(svc, log, cfg.RedirectURI)
	srv := httpserver.New(cfg.Addr, h.Router(m, reg))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("dev backend listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("dev backend exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("dev backend stopped")
}

func buildUserStore(ctx context.Context, cfg config.DevServer) (devbackend.UserStore, func(), error) {
	if cfg.DatabaseURL == "" {
		return user.NewMemoryStore(), func() {}, nil
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	store := user.NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool.Close, nil
}

func buildRevocationStore(ctx context.Context, cfg config.DevServer) (devbackend.RevocationStore, error) {
	client, err := platformredis.New(ctx, cfg.RedisConfig)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return revocation.NewMemoryStore(), nil
	}
	return revocation.NewRedisStore(client.Client), nil
}
