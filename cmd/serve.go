package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"eventapi/config"
	"eventapi/db"
	"eventapi/middlewares"
	"eventapi/models"
	"eventapi/models/memstore"
	"eventapi/routes"
	"eventapi/utils"
)

var (
	serverHost string
	serverPort int
	inMemory   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server.

Configuration comes from environment variables (and a .env file when present).
JWT_PRIVATE_KEY is required. Set REDIS_ADDR to enable response caching and
per-user quotas, and ADMIN_EMAIL/ADMIN_PASSWORD to create an admin at startup.

Examples:
  # Start against MongoDB on the default URI
  eventapi serve

  # Start on a specific port with console logs
  eventapi serve --port 9090 --log-format console

  # Start without MongoDB, keeping data in memory
  eventapi serve --in-memory`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
	serveCmd.Flags().BoolVar(&inMemory, "in-memory", false, "keep data in process memory instead of MongoDB")
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("version", Version).Msg("starting eventapi")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, ready, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	rdb := openRedis(ctx, cfg.Redis, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	if cfg.AdminBootstrap.Enabled() {
		if err := bootstrapAdmin(ctx, repos.Users, cfg.AdminBootstrap, logger); err != nil {
			return fmt.Errorf("admin bootstrap: %w", err)
		}
	}

	engine := newEngine(cfg, logger)
	stopLimiters := routes.RegisterRoutes(engine, routes.Options{
		Repos:      repos,
		Tokens:     utils.NewTokenManager(cfg.Auth.JWTPrivateKey, cfg.Auth.JWTExpiry),
		Redis:      rdb,
		CacheTTL:   cfg.Redis.CacheTTL,
		DailyQuota: cfg.Redis.DailyQuota,
		RateLimit:  cfg.RateLimit,
		Ready:      ready,
	})
	defer stopLimiters()

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("shutdown complete")
	return nil
}

// openStore returns the repositories, a readiness probe and a release func.
func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (models.Repositories, func(context.Context) error, func(), error) {
	if inMemory {
		logger.Warn().Msg("using in-memory store; data is lost on exit")
		return memstore.New().Repositories(), nil, func() {}, nil
	}

	client, err := db.Connect(ctx, cfg.Mongo)
	if err != nil {
		return models.Repositories{}, nil, nil, err
	}
	database := client.Database(cfg.Mongo.Database)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		_ = client.Disconnect(context.Background())
		return models.Repositories{}, nil, nil, err
	}
	logger.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	ready := func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
	release := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("mongo disconnect")
		}
	}
	return models.NewMongoRepositories(database, cfg.Mongo.Timeout), ready, release, nil
}

// openRedis returns nil when Redis is not configured or not reachable; the
// API then runs without cache and quota.
func openRedis(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) *redis.Client {
	if !cfg.Enabled() {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis unavailable; cache and quota disabled")
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func newEngine(cfg config.Config, logger zerolog.Logger) *gin.Engine {
	if logger.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		middlewares.Logger(c).Error().Interface("panic", recovered).Msg("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
	}))
	engine.Use(middlewares.RequestLogger(logger))
	engine.Use(middlewares.Metrics())

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AddAllowHeaders(middlewares.TokenHeader)
	corsCfg.AddExposeHeaders(middlewares.TokenHeader, middlewares.RequestIDHeader)
	engine.Use(cors.New(corsCfg))
	return engine
}

// bootstrapAdmin creates the configured admin unless the email is taken.
func bootstrapAdmin(ctx context.Context, users models.UserRepository, cfg config.AdminBootstrapConfig, logger zerolog.Logger) error {
	_, err := users.GetByEmail(ctx, cfg.Email)
	if err == nil {
		logger.Info().Str("email", cfg.Email).Msg("admin already present")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	hashed, err := utils.HashPassword(cfg.Password)
	if err != nil {
		return err
	}
	admin := models.User{Name: cfg.Name, Email: cfg.Email, Password: hashed, IsAdmin: true}
	if err := users.Create(ctx, &admin); err != nil && !errors.Is(err, models.ErrDuplicateEmail) {
		return err
	}
	logger.Info().Str("email", cfg.Email).Msg("admin user created")
	return nil
}
