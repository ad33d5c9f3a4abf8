package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	appabuse "github.com/dinesh-git17/debate-lab-sub000/pkg/app/abuse"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/app/validation"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/cache"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/config"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/contentfilter"
	handlers "github.com/dinesh-git17/debate-lab-sub000/pkg/handlers/http"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/database"
	embeddingfactory "github.com/dinesh-git17/debate-lab-sub000/pkg/infra/embedding/factory"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/identity"
	infraLogger "github.com/dinesh-git17/debate-lab-sub000/pkg/infra/logger"
	_ "github.com/dinesh-git17/debate-lab-sub000/pkg/infra/migrations"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/moderationapi"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/prometheus"
	providerfactory "github.com/dinesh-git17/debate-lab-sub000/pkg/infra/providers/factory"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/repository"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/middleware"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/moderation"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/ratelimit"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/server"
	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger("api")

	if err := config.Load("./config"); err != nil {
		logger.WithError(err).Warn("falling back to environment configuration")
	}
	cfg := config.GetConfig()

	prometheus.Initialize()

	db, err := database.NewDB(logger, &database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close()

	cacheInstance, err := cache.NewCache(cfg.Redis)
	if err != nil {
		logger.Fatalf("failed to initialize cache: %v", err)
	}

	// repositories
	trackingRepository := repository.NewTrackingRepository(db.DB)
	banRepository := repository.NewBanRepository(db.DB)
	logRepository := repository.NewLogRepository(db.DB)

	// identity and abuse tracking
	salt := cfg.Security.IPHashSalt
	if salt == "" {
		salt = os.Getenv("IP_HASH_SALT")
	}
	hasher := identity.NewHasher(salt, logger)
	tracker := appabuse.NewTracker(trackingRepository, banRepository, logRepository, logger, appabuse.Opts{})

	// rate limiting
	var store ratelimit.Store
	if cfg.RateLimit.Backend == "memory" {
		store = ratelimit.NewMemoryStore(time.Now)
	} else {
		store = ratelimit.NewRedisStore(cacheInstance.Client())
	}
	limiter := ratelimit.NewLimiter(store, logger, nil)

	// moderation stack
	fasthttpClient := &fasthttp.Client{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	classifier := moderation.NewLLMClassifier(providerfactory.NewProviderLocator(), logger, moderation.ClassifierConfig{
		Provider:  cfg.Moderation.Classifier.Provider,
		Model:     cfg.Moderation.Classifier.Model,
		ApiKey:    cfg.Moderation.Classifier.ApiKey,
		MaxTokens: cfg.Moderation.Classifier.MaxTokens,
		Temp:      cfg.Moderation.Classifier.Temperature,
	})

	embeddingLocator := embeddingfactory.NewEmbeddingServiceLocator(fasthttpClient, logger)
	embeddingCreator, err := embeddingLocator.GetService(embeddingProvider(cfg))
	if err != nil {
		logger.Fatalf("failed to initialize embedding provider: %v", err)
	}
	conceptBank := moderation.NewConceptBank(embeddingCreator, cacheInstance, logger, moderation.ConceptBankConfig{
		Provider:  cfg.Moderation.Embedding.Provider,
		Model:     cfg.Moderation.Embedding.Model,
		ApiKey:    cfg.Moderation.Embedding.ApiKey,
		Threshold: cfg.Moderation.Embedding.Threshold,
	})
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := conceptBank.Seed(seedCtx); err != nil {
		logger.WithError(err).Warn("concept bank seeding failed, similarity layer degraded")
	}
	seedCancel()

	thresholds, err := moderationapi.ParseThresholds(cfg.Moderation.API.Thresholds)
	if err != nil {
		logger.WithError(err).Warn("invalid moderation thresholds, using defaults")
		thresholds = nil
	}
	gate := moderationapi.NewGate(nil, logger, cfg.Moderation.API.ApiKey, thresholds)
	moderator := moderation.NewStack(classifier, conceptBank, gate, logger)

	// orchestrator
	filter := contentfilter.NewFilter(logger)
	validator := validation.NewValidator(filter, moderator, tracker, hasher, logger)

	middlewareTransport := middleware.Transport{
		PanicRecoverMiddleware: middleware.NewPanicRecoverMiddleware(logger),
		CorsMiddleware: middleware.NewCORSGlobalMiddleware(
			[]string{"*"},
			[]string{"GET", "POST", "OPTIONS"},
			false,
			[]string{"Content-Length", "X-RateLimit-Remaining"},
			"12h",
		),
		SecurityMiddleware:  middleware.NewSecurityContextMiddleware(logger, hasher, tracker),
		RateLimitMiddleware: middleware.NewRateLimitMiddleware(logger, limiter, tracker, ratelimit.CategoryIP),
		MetricsMiddleware:   middleware.NewMetricsMiddleware(logger),
	}

	handlerTransport := handlers.HandlerTransport{
		ValidateTopicHandler:  handlers.NewValidateTopicHandler(logger, validator),
		ValidateRulesHandler:  handlers.NewValidateRulesHandler(logger, validator),
		ValidateConfigHandler: handlers.NewValidateConfigHandler(logger, validator),

		TrackDebateHandler:   handlers.NewTrackDebateHandler(logger, limiter),
		ReleaseDebateHandler: handlers.NewReleaseDebateHandler(logger, limiter),

		AbuseStatusHandler:   handlers.NewAbuseStatusHandler(logger, tracker, trackingRepository, logRepository),
		FlagIdentityHandler:  handlers.NewFlagIdentityHandler(logger, tracker),
		BanIdentityHandler:   handlers.NewBanIdentityHandler(logger, tracker),
		UnbanIdentityHandler: handlers.NewUnbanIdentityHandler(logger, tracker),
		RecentEventsHandler:  handlers.NewRecentEventsHandler(logger, tracker),

		GetVersionHandler: handlers.NewGetVersionHandler(logger),
	}

	srv := server.NewApiServer(server.ApiServerDI{
		MiddlewareTransport: middlewareTransport,
		HandlerTransport:    handlerTransport,
		DebateCreationLimit: middleware.NewRateLimitMiddleware(logger, limiter, tracker, ratelimit.CategoryDebateCreation),
		Config:              cfg,
		Logger:              logger,
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	fmt.Println("shutting down server...")
	if err := srv.Shutdown(); err != nil {
		fmt.Println("error shutting down server:", err)
		os.Exit(1)
	}
	fmt.Println("server gracefully stopped")
}

func embeddingProvider(cfg *config.Config) string {
	if cfg.Moderation.Embedding.Provider != "" {
		return cfg.Moderation.Embedding.Provider
	}
	return embeddingfactory.ProviderOpenAI
}
