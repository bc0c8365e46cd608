package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trivia-service/internal/app"
	"trivia-service/internal/config"
	"trivia-service/internal/infra/memory"
	"trivia-service/internal/infra/postgres"
	rediscache "trivia-service/internal/infra/redis"
	"trivia-service/internal/logger"
	"trivia-service/internal/metrics"
	transport "trivia-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Logging, cfg.Env, os.Stdout)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	set, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to open stores")
		return err
	}
	defer set.close()

	service := app.NewTriviaService(set.questions, set.categories)
	router := transport.NewRouter(transport.RouterConfig{
		Service:        service,
		Logger:         log,
		Metrics:        metrics.NewWithRuntime(),
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Env:            cfg.Env,
		HealthChecks:   set.checks,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  config.Duration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.Duration(cfg.Server.WriteTimeout, 15*time.Second),
		IdleTimeout:  config.Duration(cfg.Server.IdleTimeout, 60*time.Second),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", finalPort).Msg("starting trivia service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	case err := <-serveErr:
		log.Error().Err(err).Msg("server failed")
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

type storeSet struct {
	questions  app.QuestionRepository
	categories app.CategoryRepository
	checks     map[string]transport.HealthCheck
	closers    []func()
}

func (s *storeSet) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStores picks Postgres when configured (migrating it first) and the demo store otherwise,
// then puts the Redis category cache in front of the category source when Redis is configured.
func openStores(ctx context.Context, cfg config.Config, log zerolog.Logger) (*storeSet, error) {
	s := &storeSet{checks: make(map[string]transport.HealthCheck)}

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		store := postgres.NewStore(pool)
		s.questions, s.categories = store, store
		s.checks["database"] = store.Ping
	} else {
		log.Warn().Msg("postgres url not configured, serving in-memory demo data")
		store := memory.NewDemoStore()
		s.questions, s.categories = store, store
		s.checks["database"] = store.Ping
	}

	if cfg.Redis.Addr != "" {
		client := newRedisClient(cfg)
		s.closers = append(s.closers, func() { _ = client.Close() })
		ttl := config.Duration(cfg.Categories.CacheTTL, 10*time.Minute)
		cache := rediscache.NewCategoryCache(client, s.categories, ttl)
		// The cached list may predate the store this process serves from.
		if err := cache.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate category cache")
		}
		s.categories = cache
		s.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}
	return s, nil
}

func newRedisClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
