package routes

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"eventapi/config"
	"eventapi/metrics"
	"eventapi/middlewares"
	"eventapi/models"
	"eventapi/utils"
)

// cached resources; everything else is always served live
var cachedResources = []string{"categories", "locations", "events"}

type Options struct {
	Repos  models.Repositories
	Tokens *utils.TokenManager

	// Redis is optional. When set, public GETs are cached for CacheTTL and
	// authenticated callers get a daily quota of DailyQuota requests.
	Redis      *redis.Client
	CacheTTL   time.Duration
	DailyQuota int

	// Zero RPS disables the corresponding limiter.
	RateLimit config.RateLimitConfig

	// Ready reports storage readiness for /readyz; nil means always ready.
	Ready func(ctx context.Context) error
}

type deps struct {
	categories   models.CategoryRepository
	locations    models.LocationRepository
	events       models.EventRepository
	participants models.ParticipantRepository
	users        models.UserRepository
	tokens       *utils.TokenManager
	inv          *utils.CacheInvalidator
}

// RegisterRoutes mounts the API on server. Per-route chains are:
// public, authed (token required) and admin (token with admin flag).
// The returned func stops the rate limiters' background sweepers.
func RegisterRoutes(server *gin.Engine, opts Options) (stop func()) {
	var limiters []*middlewares.RateLimiter
	newLimiter := func(conf middlewares.LimiterConfig) *middlewares.RateLimiter {
		rl := middlewares.NewRateLimiter(conf)
		limiters = append(limiters, rl)
		return rl
	}
	stop = func() {
		for _, rl := range limiters {
			rl.Close()
		}
	}

	d := &deps{
		categories:   opts.Repos.Categories,
		locations:    opts.Repos.Locations,
		events:       opts.Repos.Events,
		participants: opts.Repos.Participants,
		users:        opts.Repos.Users,
		tokens:       opts.Tokens,
	}

	server.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	server.GET("/readyz", readiness(opts.Ready))
	server.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	if opts.RateLimit.RPS > 0 {
		global := newLimiter(middlewares.LimiterConfig{
			RPS:     opts.RateLimit.RPS,
			Burst:   opts.RateLimit.Burst,
			IdleTTL: 3 * time.Minute,
		})
		server.Use(global.Middleware(middlewares.ClientIPKey("ip")))
	}

	authed := []gin.HandlerFunc{middlewares.Authenticate(opts.Tokens)}
	if opts.RateLimit.UserRPS > 0 {
		perUser := newLimiter(middlewares.LimiterConfig{
			RPS:     opts.RateLimit.UserRPS,
			Burst:   opts.RateLimit.UserBurst,
			IdleTTL: 10 * time.Minute,
		})
		authed = append(authed, perUser.Middleware(middlewares.CallerKey("user")))
	}
	if opts.Redis != nil {
		d.inv = utils.NewCacheInvalidator(opts.Redis)
		server.Use(middlewares.ResponseCache(opts.Redis, opts.CacheTTL, cachedResources...))
		authed = append(authed, middlewares.Quota(opts.Redis, middlewares.PerUserDaily(opts.DailyQuota)))
	}
	admin := slices.Concat(authed, []gin.HandlerFunc{middlewares.RequireAdmin})

	// credential endpoints get a stricter per-IP bucket
	var credential []gin.HandlerFunc
	if opts.RateLimit.AuthRPS > 0 {
		limiter := newLimiter(middlewares.LimiterConfig{
			RPS:     opts.RateLimit.AuthRPS,
			Burst:   opts.RateLimit.AuthBurst,
			IdleTTL: 10 * time.Minute,
		})
		credential = append(credential, limiter.Middleware(middlewares.ClientIPKey("auth")))
	}

	chain := func(pre []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
		return slices.Concat(pre, []gin.HandlerFunc{h})
	}

	api := server.Group("/api")

	api.POST("/auth", chain(credential, d.authenticate)...)

	users := api.Group("/users")
	users.POST("/register", chain(credential, d.register)...)
	users.POST("/login", chain(credential, d.login)...)
	users.GET("/me", chain(authed, middlewares.WithCaller(d.currentUser))...)
	users.GET("/:id", chain(admin, d.getUser)...)

	categories := api.Group("/categories")
	categories.POST("", chain(admin, d.createCategory)...)
	categories.GET("", d.getCategories)
	categories.GET("/:id", d.getCategory)
	categories.PUT("/:id", chain(admin, d.updateCategory)...)
	categories.DELETE("/:id", chain(admin, d.deleteCategory)...)

	locations := api.Group("/locations")
	locations.POST("", chain(admin, d.createLocation)...)
	locations.GET("", d.getLocations)
	locations.GET("/:id", d.getLocation)
	locations.PUT("/:id", chain(admin, d.updateLocation)...)
	locations.DELETE("/:id", chain(admin, d.deleteLocation)...)

	events := api.Group("/events")
	events.POST("", chain(admin, d.createEvent)...)
	events.GET("", d.getEvents)
	events.GET("/:id", d.getEvent)
	events.PUT("/:id", chain(admin, d.updateEvent)...)
	events.DELETE("/:id", chain(admin, d.deleteEvent)...)
	events.POST("/:id/participants", chain(authed, middlewares.WithCaller(d.joinEvent))...)
	events.DELETE("/:id/participants/:userId", chain(admin, d.leaveEvent)...)

	participants := api.Group("/participants")
	participants.POST("", chain(authed, d.createParticipant)...)
	participants.GET("", chain(admin, d.getParticipants)...)
	participants.GET("/event/:eventId", chain(authed, d.getEventParticipants)...)
	participants.GET("/:id", chain(authed, d.getParticipant)...)
	participants.PUT("/:id", chain(admin, d.updateParticipant)...)
	participants.DELETE("/:id", chain(admin, d.deleteParticipant)...)

	return stop
}

func readiness(ready func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready != nil {
			if err := ready(c.Request.Context()); err != nil {
				middlewares.Logger(c).Warn().Err(err).Msg("readiness check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
