// Package server wires the spacestar member service together: database and
// migrations, event publishing, rate limiting, the REST API and the gRPC
// health endpoint, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/spacestar/internal/logging"
	"github.com/dmitrijs2005/spacestar/internal/server/config"
	"github.com/dmitrijs2005/spacestar/internal/server/events"
	"github.com/dmitrijs2005/spacestar/internal/server/httpapi"
	"github.com/dmitrijs2005/spacestar/internal/server/ratelimit"
	"github.com/dmitrijs2005/spacestar/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/spacestar/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/spacestar/internal/server/grpc"
)

const (
	startupTimeout         = 30 * time.Second
	limiterCleanupInterval = 10 * time.Minute
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   events.Publisher
	redis       *redis.Client
	limiter     ratelimit.Limiter
	members     *services.MemberService
	profiles    *services.ProfileService
	health      *gs.HealthServer
}

func NewApp(c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogFormat, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: repomanager.NewPostgresRepositoryManager(),
	}

	app.publisher = events.NopPublisher{}
	if len(c.KafkaBrokers) > 0 {
		app.publisher = events.NewKafkaPublisher(c.KafkaBrokers, c.KafkaTopic, logger)
	}

	if c.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr, Password: c.RedisPassword})
		app.limiter = ratelimit.NewRedisLimiter(app.redis, "spacestar:ratelimit:auth", c.RateLimitPerMinute, time.Minute)
	} else {
		app.limiter = ratelimit.NewLocalLimiter(c.RateLimitPerMinute)
	}

	app.members = services.NewMemberService(db, app.repomanager, app.publisher, logger, c)
	app.profiles = services.NewProfileService(db, app.repomanager, services.NewS3ImageStorage(c), logger)
	app.health = gs.NewHealthServer(c.EndpointAddrGRPC, logger)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// prepareDatabase waits for the database and brings the schema up to date.
func (app *App) prepareDatabase(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	if err := app.db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping error: %w", err)
	}
	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}
	return nil
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.health.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := httpapi.NewHandler(app.members, app.profiles, app.logger)
	router := httpapi.NewRouter(h, httpapi.RouterConfig{
		JWTSecret:      []byte(app.config.SecretKey),
		AllowedOrigins: app.config.AllowedOrigins,
		AuthLimiter:    app.limiter,
		Ping:           app.db.PingContext,
	})

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, router, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)
	defer app.close(ctx)

	if err := app.prepareDatabase(ctx); err != nil {
		app.logger.Error(ctx, "startup failed", "error", err)
		return err
	}

	if l, ok := app.limiter.(*ratelimit.LocalLimiter); ok {
		l.StartCleanup(ctx, limiterCleanupInterval)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	app.health.SetServing(true)

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
	return nil
}

func (app *App) close(ctx context.Context) {
	if err := app.publisher.Close(); err != nil {
		app.logger.Warn(ctx, "event publisher close", "error", err)
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "redis close", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close", "error", err)
	}
}
