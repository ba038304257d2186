package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/algospace/algospace-api/config"
	"github.com/algospace/algospace-api/internal/cache"
	"github.com/algospace/algospace-api/internal/collab"
	"github.com/algospace/algospace-api/internal/handlers"
	"github.com/algospace/algospace-api/internal/middleware"
	"github.com/algospace/algospace-api/internal/repository"
	"github.com/algospace/algospace-api/internal/services"
	"github.com/algospace/algospace-api/pkg/coderunner"
	"github.com/algospace/algospace-api/pkg/db"
	"github.com/algospace/algospace-api/pkg/httpclient"
	"github.com/algospace/algospace-api/pkg/jwt"
	"github.com/algospace/algospace-api/pkg/logger"
	"github.com/algospace/algospace-api/pkg/metrics"
	"github.com/algospace/algospace-api/pkg/objstore"
	"github.com/algospace/algospace-api/pkg/profiling"
	"github.com/algospace/algospace-api/pkg/razorpay"
	"github.com/algospace/algospace-api/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// registerAuthRoutes wires the three-phase registration flow and login.
// Phase two and three are guarded by scope-checked short-lived tokens.
func registerAuthRoutes(
	router *gin.Engine,
	authRateLimiter *middleware.RateLimiter,
	authHandler *handlers.AuthHandler,
	tokenManager *jwt.TokenManager,
) {
	auth := router.Group("/api/v1/auth")
	auth.POST("/register", authRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), authHandler.Register)
	auth.POST("/register/role", middleware.RegistrationScopeMiddleware(tokenManager, jwt.ScopeRegistration), authHandler.SelectRole)
	auth.POST("/register/complete-profile", middleware.RegistrationScopeMiddleware(tokenManager, jwt.ScopeProfile), middleware.BodySizeLimitMiddleware(1*1024*1024), authHandler.CompleteProfile)
	auth.POST("/login", authRateLimiter.Middleware(), authHandler.Login)
	auth.GET("/logout", authHandler.Logout)
}

func registerCandidateRoutes(
	router *gin.Engine,
	cfg *config.Config,
	uploadRateLimiter *middleware.RateLimiter,
	candidateHandler *handlers.CandidateHandler,
	tokenManager *jwt.TokenManager,
) {
	candidate := router.Group("/api/v1/candidate")
	candidate.Use(middleware.SessionMiddleware(tokenManager, cfg.Auth.CookieDomain, cfg.Auth.CookieSecure))

	candidate.GET("/profile", candidateHandler.GetProfile)
	candidate.PUT("/profile", candidateHandler.UpdateProfile)
	candidate.PUT("/skills", candidateHandler.UpdateSkills)
	candidate.PUT("/preferred-roles", candidateHandler.UpdatePreferredRoles)
	candidate.PUT("/coding-profiles", candidateHandler.UpdateCodingProfiles)
	candidate.POST("/resume", uploadRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(10*1024*1024), candidateHandler.UploadResume)
	candidate.DELETE("/resume", candidateHandler.DeleteResume)
	candidate.POST("/photo", uploadRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(15*1024*1024), candidateHandler.UploadPhoto)
	candidate.GET("/interviewers", candidateHandler.ListInterviewers)
	candidate.POST("/request-interview", candidateHandler.RequestInterview)
	candidate.GET("/interviews", candidateHandler.ListInterviews)
	candidate.DELETE("/interviews/:id", candidateHandler.CancelInterview)
	candidate.POST("/jobs/:id/apply", candidateHandler.ApplyToJob)
}

func registerInterviewerRoutes(
	router *gin.Engine,
	cfg *config.Config,
	uploadRateLimiter *middleware.RateLimiter,
	interviewerHandler *handlers.InterviewerHandler,
	tokenManager *jwt.TokenManager,
) {
	interviewer := router.Group("/api/v1/interviewer")
	interviewer.Use(middleware.SessionMiddleware(tokenManager, cfg.Auth.CookieDomain, cfg.Auth.CookieSecure))

	interviewer.GET("/profile", interviewerHandler.GetProfile)
	interviewer.PUT("/profile", interviewerHandler.UpdateProfile)
	interviewer.PUT("/expertise", interviewerHandler.UpdateExpertise)
	interviewer.PUT("/company-info", interviewerHandler.UpdateCompanyInfo)
	interviewer.GET("/availability", interviewerHandler.GetAvailability)
	interviewer.PUT("/availability", interviewerHandler.UpdateAvailability)
	interviewer.POST("/availability/block", interviewerHandler.BlockDate)
	interviewer.POST("/availability/unblock", interviewerHandler.UnblockDate)
	interviewer.POST("/photo", uploadRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(15*1024*1024), interviewerHandler.UploadPhoto)

	interviewer.GET("/interviews/pending", interviewerHandler.PendingInterviews)
	interviewer.GET("/interviews/upcoming", interviewerHandler.UpcomingInterviews)
	interviewer.GET("/interviews/past", interviewerHandler.PastInterviews)
	interviewer.GET("/interviews/:id", interviewerHandler.GetInterview)
	interviewer.POST("/interviews/:id/approve", interviewerHandler.ApproveInterview)
	interviewer.POST("/interviews/:id/reject", interviewerHandler.RejectInterview)
	interviewer.POST("/interviews/:id/reschedule", interviewerHandler.RescheduleInterview)
	interviewer.POST("/interviews/:id/complete", interviewerHandler.CompleteInterview)
	interviewer.POST("/interviews/:id/feedback", interviewerHandler.SubmitFeedback)

	interviewer.GET("/candidates", interviewerHandler.SearchCandidates)
	interviewer.GET("/candidates/:id", interviewerHandler.GetCandidate)
	interviewer.GET("/candidates/:id/feedback-history", interviewerHandler.FeedbackHistory)
}

func registerJobRoutes(
	router *gin.Engine,
	cfg *config.Config,
	jobHandler *handlers.JobHandler,
	tokenManager *jwt.TokenManager,
) {
	job := router.Group("/api/v1/job")
	job.Use(middleware.SessionMiddleware(tokenManager, cfg.Auth.CookieDomain, cfg.Auth.CookieSecure))

	job.POST("/create-job", middleware.BodySizeLimitMiddleware(100*1024), jobHandler.CreateJob)
	job.GET("/get-jobs", jobHandler.ListOwnJobs)
	job.GET("/get-all-jobs", jobHandler.ListAllJobs)
	job.GET("/:id", jobHandler.GetJob)
	job.GET("/:id/applications", jobHandler.ListApplications)
	job.GET("/:id/matches", jobHandler.Matches)
	job.PUT("/applications/:id/status", jobHandler.UpdateApplicationStatus)
}

func registerPaymentRoutes(
	router *gin.Engine,
	cfg *config.Config,
	paymentRateLimiter *middleware.RateLimiter,
	paymentHandler *handlers.PaymentHandler,
	tokenManager *jwt.TokenManager,
) {
	payment := router.Group("/api/v1/payment")
	payment.Use(middleware.SessionMiddleware(tokenManager, cfg.Auth.CookieDomain, cfg.Auth.CookieSecure))

	payment.POST("/create-order", paymentRateLimiter.Middleware(), paymentHandler.CreateOrder)
	payment.POST("/verify-payment", paymentRateLimiter.Middleware(), paymentHandler.VerifyPayment)
	payment.GET("/orders", paymentHandler.ListOrders)
}

func registerSessionRoutes(
	router *gin.Engine,
	cfg *config.Config,
	sessionHandler *handlers.SessionHandler,
	tokenManager *jwt.TokenManager,
) {
	session := router.Group("/api/v1/session")
	session.Use(middleware.SessionMiddleware(tokenManager, cfg.Auth.CookieDomain, cfg.Auth.CookieSecure))

	session.GET("/:room/ws", sessionHandler.Connect)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting AlgoSpace API",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
		cfg.Observability.AlloyEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Initialize continuous profiling
	if cfg.Profiling.Enabled {
		stopProfiler, err := profiling.InitProfiler(
			cfg.Profiling,
			cfg.Observability.ServiceName,
			cfg.Observability.ServiceNamespace,
			cfg.Observability.ServiceVersion,
			cfg.Observability.ServiceInstanceID,
			cfg.Server.AppEnv,
		)
		if err != nil {
			logger.Error("Failed to initialize profiler", zap.Error(err))
		} else {
			defer stopProfiler()
		}
	}

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	// Initialize PostgreSQL connection pool
	pool, err := db.NewPool(context.Background(), db.PoolConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	defer pool.Close()

	// NOTE: Database migrations are run separately via the migrate command
	// before starting the app: ./migrate or docker-compose run migrate

	// Initialize object storage client for resumes and photos
	var storageClient *objstore.StorageClient
	if cfg.ObjectStorage.AccessKeyID != "" && cfg.ObjectStorage.SecretAccessKey != "" {
		storageClient, err = objstore.NewStorageClient(
			cfg.ObjectStorage.AccessKeyID,
			cfg.ObjectStorage.SecretAccessKey,
			cfg.ObjectStorage.BucketName,
			cfg.ObjectStorage.Endpoint,
			cfg.ObjectStorage.Region,
		)
		if err != nil {
			logger.Fatal("Failed to initialize object storage client", zap.Error(err))
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool)
	jobRepo := repository.NewJobRepository(pool)
	interviewRepo := repository.NewInterviewRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	// Interviewer directory cache, populated synchronously before the
	// container is marked healthy
	var directoryCache *cache.DirectoryCache
	if cfg.Cache.DisableDirectoryCache {
		logger.Warn("Interviewer directory cache is DISABLED - reading from database on every request (experimental feature)")
	} else {
		directoryCache = cache.NewDirectoryCache(userRepo, cfg.Cache.InterviewerTTLSeconds)
		if err := directoryCache.Initialize(); err != nil {
			logger.Fatal("Failed to initialize interviewer directory cache", zap.Error(err))
		}
	}

	// Initialize HTTP client for external API calls
	httpClient := httpclient.NewStandardClient()

	// External service clients
	gatewayClient := razorpay.NewClient(cfg.Payment.GatewayBaseURL, cfg.Payment.KeyID, cfg.Payment.KeySecret, httpClient)
	runnerClient := coderunner.NewClient(
		cfg.CodeRunner.BaseURL,
		cfg.CodeRunner.APIKey,
		cfg.CodeRunner.APIHost,
		cfg.CodeRunner.PollIntervalMs,
		cfg.CodeRunner.MaxPolls,
		httpClient,
	)

	// Initialize services
	authService := services.NewAuthService(userRepo, storageClient, cfg, httpClient)
	candidateService := services.NewCandidateService(userRepo, interviewRepo, jobRepo, directoryCache, storageClient, cfg, httpClient)
	interviewerService := services.NewInterviewerService(userRepo, interviewRepo, directoryCache, storageClient, cfg, httpClient)
	jobService := services.NewJobService(jobRepo, userRepo)
	matchService := services.NewMatchService(jobRepo, userRepo)
	paymentService := services.NewPaymentService(paymentRepo, userRepo, gatewayClient, cfg)
	executionService := services.NewExecutionService(runnerClient)

	// Collaboration hub for live interview sessions
	hub := collab.NewHub(executionService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	candidateHandler := handlers.NewCandidateHandler(candidateService)
	interviewerHandler := handlers.NewInterviewerHandler(interviewerService)
	jobHandler := handlers.NewJobHandler(jobService, matchService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	sessionHandler := handlers.NewSessionHandler(hub, interviewRepo, cfg.Server.AllowedOrigins)

	// Health check: if the cache is disabled, always report ready
	directoryReadyFunc := func() bool { return true }
	if directoryCache != nil {
		directoryReadyFunc = directoryCache.IsReady
	}
	healthHandler := handlers.NewHealthHandler(directoryReadyFunc)

	tokenManager := authService.GetTokenManager()
	if tokenManager == nil {
		logger.Fatal("JWT_SECRET not configured")
	}

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName)) // OpenTelemetry tracing
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS configuration - SECURITY: Only allow specific origins
	allowedOrigins := cfg.Server.AllowedOrigins
	// Allow localhost in development
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-CSRF-Token", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true, // Required for session cookies
		MaxAge:           12 * time.Hour,
	}))

	// SECURITY: Rate limiters to prevent abuse and DoS attacks
	generalRateLimiter := middleware.NewRateLimiter(100, 200) // 100 req/sec, burst of 200
	authRateLimiter := middleware.NewRateLimiter(1, 5)        // 1 req/sec, burst of 5 (credential abuse prevention)
	uploadRateLimiter := middleware.NewRateLimiter(2, 5)      // 2 req/sec, burst of 5
	paymentRateLimiter := middleware.NewRateLimiter(2, 5)     // 2 req/sec, burst of 5

	// Utility endpoints (not versioned - operational endpoints)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.Handler()))

	// API v1 routes
	registerAuthRoutes(router, authRateLimiter, authHandler, tokenManager)
	registerCandidateRoutes(router, cfg, uploadRateLimiter, candidateHandler, tokenManager)
	registerInterviewerRoutes(router, cfg, uploadRateLimiter, interviewerHandler, tokenManager)
	registerJobRoutes(router, cfg, jobHandler, tokenManager)
	registerPaymentRoutes(router, cfg, paymentRateLimiter, paymentHandler, tokenManager)
	registerSessionRoutes(router, cfg, sessionHandler, tokenManager)

	// Create HTTP server
	// SECURITY: Bind to all interfaces for Docker Compose networking
	// Network isolation is enforced by Docker Compose (backend has no public ports)
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // SECURITY: 1 MB max header size
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	generalRateLimiter.Stop()
	authRateLimiter.Stop()
	uploadRateLimiter.Stop()
	paymentRateLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
