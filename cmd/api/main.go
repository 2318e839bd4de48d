package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qrsurvey/qrs-api/internal/config"
	"github.com/qrsurvey/qrs-api/internal/domain/auth"
	"github.com/qrsurvey/qrs-api/internal/domain/completion"
	"github.com/qrsurvey/qrs-api/internal/domain/customer"
	"github.com/qrsurvey/qrs-api/internal/domain/store"
	"github.com/qrsurvey/qrs-api/internal/domain/survey"
	"github.com/qrsurvey/qrs-api/internal/domain/transaction"
	"github.com/qrsurvey/qrs-api/internal/middleware"
	"github.com/qrsurvey/qrs-api/internal/pkg/database"
	"github.com/qrsurvey/qrs-api/internal/pkg/errorhandler"
	"github.com/qrsurvey/qrs-api/internal/pkg/imaging"
	"github.com/qrsurvey/qrs-api/internal/pkg/jwt"
	"github.com/qrsurvey/qrs-api/internal/pkg/logger"
	"github.com/qrsurvey/qrs-api/internal/pkg/ratelimit"
	"github.com/qrsurvey/qrs-api/internal/pkg/realtime"
	"github.com/qrsurvey/qrs-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	if err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		LogFile:     cfg.LogFile,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to init logger")
	}
	errorhandler.ExposeStoreErrors(cfg.ExposeErrors)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting QR survey API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTSessionTTL)

	// ---------- Storage ----------
	var logos *store.Logos
	if cfg.StorageEnabled() {
		files, err := storage.NewS3Storage(context.Background(), storage.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 storage")
		}
		logos = &store.Logos{
			Files:     files,
			Processor: imaging.NewProcessor(cfg.LogoMaxHeight),
			MaxBytes:  cfg.LogoMaxBytes,
		}
	} else {
		log.Warn().Msg("S3 storage not configured, logo uploads disabled")
	}

	// ---------- Realtime hub ----------
	hub := realtime.NewHub(redis)
	go hub.Run()
	defer hub.Shutdown()

	// ---------- Repositories ----------
	userRepo := auth.NewRepository(db)
	customerRepo := customer.NewRepository(db)
	surveyRepo := survey.NewRepository(db)
	storeRepo := store.NewRepository(db)
	transactionRepo := transaction.NewRepository(db)
	responseRepo := completion.NewRepository(db)

	// ---------- Services ----------
	// auth and customer depend on each other: customers create store
	// logins, logins check the customer's status.
	revocations := auth.NewRevocations(redis)
	authService := auth.NewService(userRepo, nil, jwtService, revocations)
	customerService := customer.NewService(customerRepo, authService)
	authService.SetCustomers(customerService)

	surveyService := survey.NewService(surveyRepo, survey.QuestionRanks(db), survey.OptionRanks(db))
	storeService := store.NewService(storeRepo, customerService, surveyService, logos)
	transactionService := transaction.NewService(transactionRepo, customerService, storeService, hub)
	completionService := completion.NewService(storeService, customerService, surveyRepo, transactionService, responseRepo, hub)

	// ---------- Handlers ----------
	upgrader := realtime.NewUpgrader(cfg.AllowedOrigins)
	a := &app{
		auth:         auth.NewHandler(authService),
		customers:    customer.NewHandler(customerService),
		surveys:      survey.NewHandler(surveyService),
		stores:       store.NewHandler(storeService, cfg.PublicBaseURL),
		transactions: transaction.NewHandler(transactionService),
		completion:   completion.NewHandler(completionService),

		adminAuth:   middleware.AdminAuth(jwtService, revocations),
		storeAuth:   middleware.StoreAuth(jwtService, revocations, authService.CheckCustomer),
		submitLimit: middleware.RateLimitByIP(ratelimit.New(redis, "submit", cfg.SubmitRatePerMinute, cfg.SubmitBurst)),
		loginLimit:  middleware.RateLimitByIP(ratelimit.New(redis, "login", 10, 5)),
		liveFeed: func(w http.ResponseWriter, r *http.Request) {
			hub.Serve(upgrader, w, r, middleware.GetCustomerID(r.Context()))
		},
		allowedOrigins: cfg.AllowedOrigins,
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
