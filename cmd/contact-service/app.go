package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"

	"seotooler/internal/config"
	"seotooler/internal/constants"
	"seotooler/internal/contact"
	"seotooler/internal/logger"
	"seotooler/internal/relay"
	"seotooler/pkg/bootstrap"
	"seotooler/pkg/health"
	"seotooler/pkg/metrics"
	"seotooler/pkg/middleware"
	"seotooler/pkg/ratelimit"
	"seotooler/pkg/tracing"
)

type App struct {
	config         *config.Config
	logger         logger.Logger
	redisClient    *redis.Client
	server         *http.Server
	router         *gin.Engine
	tracerProvider *tracing.TracerProvider
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		config: cfg,
		logger: log,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	tp, err := tracing.Init(a.config)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	store, err := a.initStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize rate limit store: %w", err)
	}

	if err := a.initRouter(store); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	a.initServer()
	return nil
}

func (a *App) initStore(ctx context.Context) (ratelimit.Store, error) {
	if a.config.RateLimit.Store != constants.StoreRedis {
		a.logger.InfowCtx(ctx, "Using in-memory rate limit store; limits are per instance")
		return ratelimit.NewMemoryStore(), nil
	}

	client, err := bootstrap.InitRedis(ctx, a.config.Redis, a.logger)
	if err != nil {
		return nil, err
	}
	a.redisClient = client

	return ratelimit.NewRedisStore(client,
		ratelimit.WithKeyPrefix(a.config.RateLimit.KeyPrefix),
		ratelimit.WithRecordTTL(a.config.RateLimit.Window),
	), nil
}

func (a *App) initRouter(store ratelimit.Store) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(constants.ServiceName))
	}

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RecoveryMiddleware(a.logger))
	router.Use(middleware.LoggerMiddleware(a.logger))

	limiter := ratelimit.NewLimiter(store, ratelimit.Config{
		MaxRequests:  a.config.RateLimit.MaxRequests,
		Window:       a.config.RateLimit.Window,
		OnStoreError: a.config.RateLimit.OnStoreError,
	}, ratelimit.WithLogger(a.logger))

	tg := relay.NewTelegramRelay(a.config.Relay, relay.WithLogger(a.logger))
	svc := contact.NewService(tg, a.logger)
	handler := contact.NewHandler(svc, limiter, contact.HandlerConfig{
		IdentityHeaders: a.config.RateLimit.IdentityHeaders,
		MaxBodyBytes:    a.config.Server.MaxBodyBytes,
	}, a.logger)
	handler.RegisterRoutes(router, a.config.Server.ContactPath)

	a.logger.InfowCtx(context.Background(), "Contact route registered",
		"path", a.config.Server.ContactPath,
		"max_requests", limiter.MaxRequests(),
		"window", limiter.Window().String(),
		"store", a.config.RateLimit.Store,
	)

	metrics.Register()

	healthRegistry := health.NewCheckerRegistry()
	if rs, ok := store.(*ratelimit.RedisStore); ok {
		healthRegistry.Register(health.NewFuncChecker("redis", rs.Ping))
	}
	relayCfg := a.config.Relay
	healthRegistry.Register(health.NewFuncChecker("relay", func(context.Context) error {
		if !relayCfg.Configured() {
			return fmt.Errorf("relay credentials are not configured: %w", health.ErrDegraded)
		}
		return nil
	}))

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
	return nil
}

func (a *App) initServer() {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.InfowCtx(ctx, "Server listening", "port", a.config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		return a.Shutdown(ctx)
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.InfowCtx(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close error: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.logger.InfowCtx(ctx, "Server exited successfully")
	return nil
}
