package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richxcame/carmarket/internal/cars"
	"github.com/richxcame/carmarket/internal/fraud"
	"github.com/richxcame/carmarket/internal/inquiries"
	"github.com/richxcame/carmarket/internal/notifications"
	"github.com/richxcame/carmarket/internal/reviews"
	"github.com/richxcame/carmarket/internal/subscriptions"
	"github.com/richxcame/carmarket/internal/users"
	"github.com/richxcame/carmarket/pkg/common"
	"github.com/richxcame/carmarket/pkg/config"
	"github.com/richxcame/carmarket/pkg/database"
	"github.com/richxcame/carmarket/pkg/email"
	"github.com/richxcame/carmarket/pkg/eventbus"
	"github.com/richxcame/carmarket/pkg/health"
	"github.com/richxcame/carmarket/pkg/logger"
	"github.com/richxcame/carmarket/pkg/middleware"
	"github.com/richxcame/carmarket/pkg/models"
	redisClient "github.com/richxcame/carmarket/pkg/redis"
	"github.com/richxcame/carmarket/pkg/storage"
	"github.com/richxcame/carmarket/pkg/tracing"
	"github.com/richxcame/carmarket/pkg/validation"
	"go.uber.org/zap"
)

const (
	serviceName  = "carmarket-api"
	maxBodyBytes = 1 << 20
)

// handlers groups the HTTP adapters mounted by setupRouter
type handlers struct {
	users         *users.Handler
	cars          *cars.Handler
	inquiries     *inquiries.Handler
	reviews       *reviews.Handler
	subscriptions *subscriptions.Handler
	notifications *notifications.Handler
	fraud         *fraud.Handler
}

func main() {
	// Load configuration
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("Starting service",
		zap.String("service", serviceName),
		zap.String("version", cfg.Server.Version),
		zap.String("environment", cfg.Server.Environment),
	)

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Server.Environment,
			Release:     serviceName + "@" + cfg.Server.Version,
		}); err != nil {
			logger.Warn("Failed to initialize Sentry", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, serviceName, cfg.Server.Version, cfg.Tracing)
	if err != nil {
		logger.Warn("Tracing disabled", zap.Error(err))
	} else {
		defer shutdownTracing(context.Background())
	}

	if err := validation.RegisterGinValidators(); err != nil {
		logger.Fatal("Failed to register validators", zap.Error(err))
	}

	// Connect to PostgreSQL
	sqlDB, err := database.OpenSQL(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer sqlDB.Close()

	if cfg.Database.MigrationsAuto {
		if err := database.Migrate(sqlDB, cfg.Database.DBName); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	pool, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(pool)
	logger.Info("Connected to database")

	checks := map[string]health.Checker{
		"database": health.DatabaseChecker(sqlDB),
		"pool":     database.PoolChecker(pool),
	}

	// Connect to Redis. The listing cache is optional.
	var cache *redisClient.Client
	if rc, err := redisClient.NewRedisClient(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, listing cache disabled", zap.Error(err))
	} else {
		cache = rc
		defer cache.Close()
		checks["redis"] = health.RedisChecker(cache.Client)
		logger.Info("Connected to Redis")
	}

	var publisher eventbus.Publisher = eventbus.NoopPublisher{}
	if cfg.NATS.Enabled {
		nc, err := eventbus.NewNATSPublisher(cfg.NATS.URL, serviceName)
		if err != nil {
			logger.Warn("NATS unavailable, events disabled", zap.Error(err))
		} else {
			defer nc.Close()
			publisher = nc
			checks["nats"] = nc.Healthy
		}
	}

	var mailer email.Sender = email.NoopSender{}
	if cfg.SMTP.Enabled {
		mailer = email.NewSMTPSender(cfg.SMTP)
	}

	// Repositories
	usersRepo := users.NewRepository(pool)
	carsRepo := cars.NewRepository(pool)
	fraudRepo := fraud.NewRepository(pool)
	inquiriesRepo := inquiries.NewRepository(pool)
	reviewsRepo := reviews.NewRepository(pool)
	subsRepo := subscriptions.NewRepository(pool)
	notificationsRepo := notifications.NewRepository(pool)

	// Services
	notificationsSvc := notifications.NewService(notificationsRepo, usersRepo, publisher)
	subsSvc := subscriptions.NewService(subsRepo, notificationsSvc, publisher)
	fraudSvc := fraud.NewService(fraudRepo, notificationsSvc, nil, publisher, cfg.Fraud)
	inquiriesSvc := inquiries.NewService(inquiriesRepo, usersRepo, notificationsSvc, mailer, publisher)
	fraudSvc.SetResponseRater(inquiriesSvc)

	carsSvc := cars.NewService(carsRepo, fraudSvc, subsSvc, notificationsSvc, publisher, cfg.Search)
	if cache != nil {
		carsSvc.SetCache(cache, time.Duration(cfg.Search.CacheTTLMinutes)*time.Minute)
	}
	if cfg.Storage.Enabled {
		store, err := storage.NewS3Storage(ctx, cfg.Storage)
		if err != nil {
			logger.Warn("Object storage unavailable, image uploads disabled", zap.Error(err))
		} else {
			carsSvc.SetStorage(store, time.Duration(cfg.Storage.UploadExpiryMins)*time.Minute)
		}
	}

	usersSvc := users.NewService(usersRepo, fraudSvc, cfg.JWT.Secret, time.Duration(cfg.JWT.Expiration)*time.Hour)
	reviewsSvc := reviews.NewService(reviewsRepo, fraudSvc, notificationsSvc, publisher)

	h := &handlers{
		users:         users.NewHandler(usersSvc),
		cars:          cars.NewHandler(carsSvc),
		inquiries:     inquiries.NewHandler(inquiriesSvc),
		reviews:       reviews.NewHandler(reviewsSvc),
		subscriptions: subscriptions.NewHandler(subsSvc),
		notifications: notifications.NewHandler(notificationsSvc),
		fraud:         fraud.NewHandler(fraudSvc),
	}

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit)
		go sweepLimiter(ctx, limiter)
	}

	router := setupRouter(cfg, h, health.AsMap(checks), limiter)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
}

func setupRouter(cfg *config.Config, h *handlers, checks map[string]func() error, limiter *middleware.RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics(serviceName))
	if cfg.Sentry.DSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins()
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", middleware.CorrelationIDHeader}
	router.Use(cors.New(corsConfig))

	// Health check and metrics (no auth required)
	router.GET("/healthz", common.HealthCheck(serviceName, cfg.Server.Version))
	router.GET("/health/ready", common.HealthCheckWithDeps(serviceName, cfg.Server.Version, checks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	secret := cfg.JWT.Secret
	auth := middleware.AuthMiddleware(secret)

	api := router.Group("/api/v1")
	api.Use(middleware.MaxBodySize(maxBodyBytes))
	if limiter != nil {
		api.Use(limiter.Middleware())
	}

	// Public
	api.POST("/auth/register", h.users.Register)
	api.POST("/auth/login", h.users.Login)
	api.GET("/cars", h.cars.Search)
	api.GET("/cars/:id", middleware.OptionalAuth(secret), h.cars.GetCar)
	api.GET("/brands", h.cars.ListBrands)
	api.GET("/brands/:id/models", h.cars.ListModels)
	api.GET("/categories", h.cars.ListCategories)
	api.GET("/cities", h.cars.ListCities)
	api.GET("/plans", h.subscriptions.ListPlans)
	api.GET("/sellers/:id", h.users.GetPublicProfile)
	api.GET("/sellers/:id/reviews", h.reviews.ListSellerReviews)

	// Authenticated
	authed := api.Group("")
	authed.Use(auth)
	{
		authed.GET("/me", h.users.GetProfile)
		authed.PUT("/me", h.users.UpdateProfile)
		authed.GET("/me/cars", h.cars.ListMyCars)
		authed.GET("/me/favorites", h.cars.ListFavorites)

		authed.POST("/cars", h.cars.CreateCar)
		authed.PUT("/cars/:id", h.cars.UpdateCar)
		authed.DELETE("/cars/:id", h.cars.DeleteCar)
		authed.POST("/cars/:id/sold", h.cars.MarkSold)
		authed.POST("/cars/:id/submit", h.cars.SubmitForReview)
		authed.POST("/cars/:id/boost", h.cars.BoostCar)
		authed.POST("/cars/:id/images/upload-url", h.cars.RequestImageUpload)
		authed.POST("/cars/:id/images", h.cars.ConfirmImage)
		authed.DELETE("/cars/:id/images/:imageId", h.cars.RemoveImage)
		authed.POST("/cars/:id/favorite", h.cars.AddFavorite)
		authed.DELETE("/cars/:id/favorite", h.cars.RemoveFavorite)

		authed.POST("/inquiries", h.inquiries.CreateInquiry)
		authed.GET("/inquiries", h.inquiries.ListInquiries)
		authed.GET("/inquiries/:id", h.inquiries.GetInquiry)
		authed.POST("/inquiries/:id/responses", h.inquiries.Respond)
		authed.POST("/inquiries/:id/close", h.inquiries.Close)
		authed.POST("/inquiries/:id/archive", h.inquiries.Archive)

		authed.POST("/reviews", h.reviews.CreateReview)

		authed.GET("/notifications", h.notifications.List)
		authed.POST("/notifications/:id/read", h.notifications.MarkRead)
		authed.POST("/notifications/read-all", h.notifications.MarkAllRead)

		authed.POST("/subscriptions", h.subscriptions.Subscribe)
		authed.GET("/subscriptions/me", h.subscriptions.GetSubscription)
		authed.POST("/subscriptions/me/cancel", h.subscriptions.CancelSubscription)
		authed.GET("/subscriptions/payments", h.subscriptions.ListPayments)
	}

	// Admin
	admin := api.Group("/admin")
	admin.Use(auth, middleware.RequireAdmin())
	{
		admin.POST("/cars/:id/approve", h.cars.ApproveCar)
		admin.POST("/cars/:id/reject", h.cars.RejectCar)
		admin.POST("/cars/expire", h.cars.ExpireListings)
		admin.GET("/fraud/indicators", h.fraud.ListIndicators)
		admin.GET("/users/:id/fraud", h.fraud.GetUserRisk)
		admin.PUT("/users/:id/verification", h.users.SetVerification)
		admin.POST("/reviews/:id/hide", h.reviews.HideReview)
	}

	// Admin only, moderators excluded
	superAdmin := api.Group("/admin")
	superAdmin.Use(auth, middleware.RequireRole(models.RoleAdmin))
	{
		superAdmin.PUT("/users/:id/active", h.users.SetActive)
		superAdmin.POST("/payments/:id/confirm", h.subscriptions.ConfirmPayment)
	}

	return router
}

// sweepLimiter drops idle rate limit buckets until ctx is done
func sweepLimiter(ctx context.Context, limiter *middleware.RateLimiter) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := limiter.Cleanup(); removed > 0 {
				logger.Debug("Rate limiter swept", zap.Int("removed", removed))
			}
		}
	}
}
